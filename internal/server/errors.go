package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/akshayks13/genai-frontend-sub000/internal/apiclient"
	"github.com/akshayks13/genai-frontend-sub000/internal/explore"
	"github.com/akshayks13/genai-frontend-sub000/internal/listings"
	"github.com/akshayks13/genai-frontend-sub000/internal/roadmap"
	"github.com/go-playground/validator/v10"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrBadRequest is an unreadable request body or parameter.
type ErrBadRequest struct {
	Message string
}

func (e *ErrBadRequest) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error. Backend
// API errors keep the backend's status.
func HTTPStatus(err error) int {
	var apiErr *apiclient.APIError
	var validationErr *ErrValidation
	var badRequest *ErrBadRequest
	var filterErr *listings.FilterError

	switch {
	case errors.As(err, &apiErr):
		return apiErr.Status
	case errors.As(err, &validationErr), errors.As(err, &badRequest), errors.As(err, &filterErr):
		return http.StatusBadRequest
	case errors.Is(err, roadmap.ErrNoGoogleToken), errors.Is(err, explore.ErrEmptyMessage):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage is what a caller may see for err. Failures the caller cannot
// act on are reported with generic, a per-page message.
func clientMessage(err error, generic string) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if HTTPStatus(err) == http.StatusBadRequest {
		return err.Error()
	}
	return generic
}

// validationError converts validator output to ErrValidation, reporting the
// first failing field.
func validationError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return &ErrValidation{Field: ve[0].Field(), Message: ve[0].Tag()}
	}
	return &ErrValidation{Field: "request", Message: "invalid"}
}
