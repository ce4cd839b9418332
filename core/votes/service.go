// ABOUTME: Vote service casts up and down votes on behalf of a token holder
// ABOUTME: Finds the vote arrow on the item page and follows its link with the user's cookie

package votes

import (
	"context"
	"net/http"
	"strings"

	"newhackers-api/core/errors"
	"newhackers-api/core/fetcher"
	"newhackers-api/core/interfaces"
	"newhackers-api/core/parser"
)

// Vote directions
const (
	Up   = "up"
	Down = "down"
)

// Service casts votes
type Service struct {
	fetcher *fetcher.Fetcher
	logger  interfaces.Logger
}

// NewService creates a vote service
func NewService(deps interfaces.Dependencies, f *fetcher.Fetcher) *Service {
	return &Service{
		fetcher: f,
		logger:  interfaces.LoggerOrNop(deps.Logger),
	}
}

// Vote votes on item in direction. It reports whether the upstream accepted
// the vote, which it signals with an empty reply.
func (s *Service) Vote(ctx context.Context, token, direction, item string) (bool, error) {
	if direction != Up && direction != Down {
		return false, &errors.ClientActionRejectedError{Message: "Wrong direction. Must be one of: 'up', 'down'."}
	}
	if token == "" {
		return false, &errors.ValidationError{Field: "token", Message: "is required"}
	}
	if item == "" || strings.Trim(item, "0123456789") != "" {
		return false, &errors.ValidationError{Field: "item", Message: "must be a decimal number"}
	}

	opts := fetcher.FetchOptions{Cookies: []*http.Cookie{{Name: "user", Value: token}}}

	page, err := s.fetcher.Fetch(ctx, "item?id="+item, opts)
	if err != nil {
		return false, err
	}

	link, ok := parser.FindVoteLink(page.Body, item, direction)
	if !ok {
		return false, &errors.ClientActionRejectedError{Message: "Could not find vote link."}
	}

	resp, err := s.fetcher.Fetch(ctx, link, opts)
	if err != nil {
		return false, err
	}

	accepted := strings.TrimSpace(resp.Body) == ""
	s.logger.Info("Vote cast", map[string]interface{}{
		"item":      item,
		"direction": direction,
		"accepted":  accepted,
	})
	return accepted, nil
}
