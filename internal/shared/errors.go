package shared

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

var (
	ErrMissingInput    = errors.New("missing input")
	ErrInvalidMedia    = errors.New("invalid media")
	ErrModelInvocation = errors.New("model invocation failed")
)

type APIError struct {
	Code    string `json:"code" example:"invalid_image"`
	Message string `json:"error" example:"Invalid image file"`
	Details any    `json:"details,omitempty" swaggertype:"object"`
}

func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

func (e *APIError) ToHTTP(status int) *echo.HTTPError {
	return echo.NewHTTPError(status, e)
}

func BadRequest(code, message string) *echo.HTTPError {
	return NewAPIError(code, message).ToHTTP(http.StatusBadRequest)
}

func RequestTooLarge(code, message string) *echo.HTTPError {
	return NewAPIError(code, message).ToHTTP(http.StatusRequestEntityTooLarge)
}

func InternalError(code, message string) *echo.HTTPError {
	return NewAPIError(code, message).ToHTTP(http.StatusInternalServerError)
}

// StatusFor maps the error taxonomy onto HTTP status codes. Model failures
// surface as 500; the request is never partially answered.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrMissingInput), errors.Is(err, ErrInvalidMedia):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
