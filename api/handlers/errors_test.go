package handlers

import (
	"context"
	"fmt"
	"testing"

	"newhackers-api/core/errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
)

func TestToHumaError(t *testing.T) {
	tests := []struct {
		name           string
		input          error
		expectedStatus int
		expectedInMsg  string
	}{
		{
			name:           "nil error returns nil",
			input:          nil,
			expectedStatus: 0,
		},
		{
			name:           "NotFoundError returns 404",
			input:          &errors.NotFoundError{Resource: "item", ID: "item?id=1"},
			expectedStatus: 404,
			expectedInMsg:  "item not found",
		},
		{
			name:           "ValidationError returns 400",
			input:          &errors.ValidationError{Field: "page", Message: "bad cursor"},
			expectedStatus: 400,
			expectedInMsg:  "bad cursor",
		},
		{
			name:           "ClientActionRejectedError returns 403",
			input:          &errors.ClientActionRejectedError{Message: "Can't make that vote."},
			expectedStatus: 403,
			expectedInMsg:  "Can't make that vote.",
		},
		{
			name:           "ParseError returns 502",
			input:          &errors.ParseError{Page: "listing", Message: "expected 30 stories, got 12"},
			expectedStatus: 502,
			expectedInMsg:  "Upstream site returned an unexpected page",
		},
		{
			name:           "UpstreamError returns 502",
			input:          &errors.UpstreamError{Path: "news", Message: "not an html document"},
			expectedStatus: 502,
			expectedInMsg:  "Upstream site returned an unexpected page",
		},
		{
			name:           "wrapped NotFoundError returns 404",
			input:          fmt.Errorf("wrapped: %w", &errors.NotFoundError{Resource: "page", ID: "x?fnid=abc"}),
			expectedStatus: 404,
			expectedInMsg:  "page not found",
		},
		{
			name:           "unknown error returns 500",
			input:          context.DeadlineExceeded,
			expectedStatus: 500,
			expectedInMsg:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := toHumaError(tt.input)

			if tt.input == nil {
				assert.Nil(t, result)
				return
			}

			humaErr, ok := result.(*huma.ErrorModel)
			assert.True(t, ok, "Expected huma.ErrorModel")
			assert.Equal(t, tt.expectedStatus, humaErr.Status)
			assert.Contains(t, humaErr.Detail, tt.expectedInMsg)
		})
	}
}
