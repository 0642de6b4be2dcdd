// Package handler contains the Gin handlers for the public HTTP API.
package handler

import (
	"errors"
	"net/http"

	"github.com/use-agent/relcis/models"
)

// statusFor maps an internal error to an HTTP status code. 503 is reserved
// for blocking: an exhausted chain inherits it only when its terminal cause
// was a block or a results page that never loaded; structural failures
// (missing input field, navigation errors, launch failures) are 500.
func statusFor(err error) int {
	var se *models.SearchError
	if !errors.As(err, &se) {
		return http.StatusInternalServerError
	}
	if se.Code == models.ErrCodeExhausted {
		switch models.CodeOf(se.Err) {
		case models.ErrCodeBlocked, models.ErrCodeLoadFailure:
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	}
	switch se.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case models.ErrCodeBlocked:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// detailOf converts any error into an API-facing ErrorDetail. Untagged
// errors surface as INTERNAL_ERROR without leaking their message.
func detailOf(err error) *models.ErrorDetail {
	var se *models.SearchError
	if errors.As(err, &se) {
		return se.ToDetail()
	}
	return &models.ErrorDetail{
		Code:    models.ErrCodeInternal,
		Message: "internal error",
	}
}
