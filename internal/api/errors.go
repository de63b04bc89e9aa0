package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorResponse represents a standard API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(error, message string) *ErrorResponse {
	return &ErrorResponse{
		Error:   error,
		Message: message,
	}
}

// ErrorBadRequest returns a 400 Bad Request error
func ErrorBadRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", message))
}

// ErrorNotFound returns a 404 Not Found error
func ErrorNotFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", message))
}

// ErrorInternal returns a 500 Internal Server Error
func ErrorInternal(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", message))
}

// ErrorServiceUnavailable returns a 503 Service Unavailable error
func ErrorServiceUnavailable(c echo.Context, message string) error {
	return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("service_unavailable", message))
}
