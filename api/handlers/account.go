// ABOUTME: Account handlers for the Huma API
// ABOUTME: Exchanges credentials for a session token and casts votes with it

package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// TokenService logs in upstream and returns the session token
type TokenService interface {
	GetToken(ctx context.Context, user, password string) (string, error)
}

// VoteService votes on an item on behalf of a token holder
type VoteService interface {
	Vote(ctx context.Context, token, direction, item string) (bool, error)
}

// Vote outcomes reported to clients
const (
	VoteSuccess = "Success"
	VoteFail    = "Fail"
)

// AccountHandler handles requests made on behalf of a user
type AccountHandler struct {
	tokens TokenService
	votes  VoteService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(tokens TokenService, votes VoteService) *AccountHandler {
	return &AccountHandler{tokens: tokens, votes: votes}
}

// RegisterRoutes registers all account routes
func (h *AccountHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getToken",
		Method:      http.MethodPost,
		Path:        "/get_token",
		Summary:     "Log in and get a user token",
		Description: "Credentials are passed through to the upstream site and never stored",
		Tags:        []string{"Account"},
	}, h.GetToken)

	huma.Register(api, huma.Operation{
		OperationID: "vote",
		Method:      http.MethodPost,
		Path:        "/vote",
		Summary:     "Vote on an item",
		Tags:        []string{"Account"},
	}, h.Vote)
}

// GetTokenInput holds user credentials
type GetTokenInput struct {
	Body struct {
		User     string `json:"user" minLength:"1" doc:"Username"`
		Password string `json:"password" minLength:"1" doc:"Password"`
	}
}

// GetTokenOutput returns the session token
type GetTokenOutput struct {
	Body struct {
		Token string `json:"token"`
	}
}

// VoteInput identifies the vote to cast
type VoteInput struct {
	Body struct {
		Token     string `json:"token" minLength:"1" doc:"Token returned by /get_token"`
		Direction string `json:"direction" doc:"up or down"`
		Item      string `json:"item" minLength:"1" doc:"Item id"`
	}
}

// VoteOutput reports whether the upstream accepted the vote
type VoteOutput struct {
	Body struct {
		Vote string `json:"vote" enum:"Success,Fail"`
	}
}

// GetToken handles POST /get_token
func (h *AccountHandler) GetToken(ctx context.Context, input *GetTokenInput) (*GetTokenOutput, error) {
	token, err := h.tokens.GetToken(ctx, input.Body.User, input.Body.Password)
	if err != nil {
		return nil, toHumaError(err)
	}

	out := &GetTokenOutput{}
	out.Body.Token = token
	return out, nil
}

// Vote handles POST /vote
func (h *AccountHandler) Vote(ctx context.Context, input *VoteInput) (*VoteOutput, error) {
	ok, err := h.votes.Vote(ctx, input.Body.Token, input.Body.Direction, input.Body.Item)
	if err != nil {
		return nil, toHumaError(err)
	}

	out := &VoteOutput{}
	out.Body.Vote = VoteFail
	if ok {
		out.Body.Vote = VoteSuccess
	}
	return out, nil
}
