// ABOUTME: Error handling utilities for API handlers
// ABOUTME: Converts domain errors to appropriate HTTP responses

package handlers

import (
	"newhackers-api/core/errors"

	"github.com/danielgtaylor/huma/v2"
)

// toHumaError converts domain errors to appropriate Huma HTTP errors
func toHumaError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.IsNotFound(err):
		return huma.Error404NotFound(err.Error())
	case errors.IsValidation(err):
		return huma.Error400BadRequest(err.Error())
	case errors.IsClientActionRejected(err):
		return huma.Error403Forbidden(err.Error())
	case errors.IsParse(err), errors.IsUpstream(err):
		// The upstream site answered with something we could not use
		return huma.Error502BadGateway("Upstream site returned an unexpected page", err)
	}

	return huma.Error500InternalServerError("Internal server error", err)
}
