// ABOUTME: Token service logs in to the upstream site and returns the session cookie
// ABOUTME: The cookie value is the token clients pass back for authenticated actions

package auth

import (
	"context"
	"net/url"

	"newhackers-api/core/errors"
	"newhackers-api/core/fetcher"
	"newhackers-api/core/interfaces"
	"newhackers-api/core/parser"
)

const (
	loginPath    = "login"
	loginAction  = "y"
	cookieName   = "user"
	badLoginText = "Authentication failed. Bad user/password."
)

// Service obtains user tokens
type Service struct {
	fetcher *fetcher.Fetcher
	logger  interfaces.Logger
}

// NewService creates a token service
func NewService(deps interfaces.Dependencies, f *fetcher.Fetcher) *Service {
	return &Service{
		fetcher: f,
		logger:  interfaces.LoggerOrNop(deps.Logger),
	}
}

// GetToken logs in with the given credentials and returns the session token
func (s *Service) GetToken(ctx context.Context, user, password string) (string, error) {
	if user == "" || password == "" {
		return "", &errors.ValidationError{Field: "user", Message: "user and password are required"}
	}

	page, err := s.fetcher.Fetch(ctx, loginPath, fetcher.FetchOptions{})
	if err != nil {
		return "", err
	}

	fnid, ok := parser.FindLoginFnid(page.Body)
	if !ok {
		s.logger.Error("Login form without fnid", map[string]interface{}{
			"path": loginPath,
			"body": page.Body,
		})
		return "", &errors.UpstreamError{Path: loginPath, Message: "login form has no fnid"}
	}

	resp, err := s.fetcher.Fetch(ctx, loginAction, fetcher.FetchOptions{
		Method:      "POST",
		Form:        url.Values{"fnid": {fnid}, "u": {user}, "p": {password}},
		NoRedirects: true,
	})
	if err != nil {
		return "", err
	}

	token, ok := resp.Cookie(cookieName)
	if !ok || token == "" {
		s.logger.Info("Login rejected", map[string]interface{}{
			"user": user,
		})
		return "", &errors.ClientActionRejectedError{Message: badLoginText}
	}
	return token, nil
}
