// Package errors defines the API error taxonomy for the gateway.
package errors

import "net/http"

// APIError represents a standardized API error
type APIError struct {
	HTTPStatus int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Predefined API errors
var (
	ErrBadRequest     = &APIError{HTTPStatus: http.StatusBadRequest, Code: "invalid_request_error", Message: "Invalid request parameters"}
	ErrInvalidJSON    = &APIError{HTTPStatus: http.StatusBadRequest, Code: "invalid_request_error", Message: "Invalid JSON format"}
	ErrValidation     = &APIError{HTTPStatus: http.StatusBadRequest, Code: "invalid_request_error", Message: "Validation failed"}
	ErrUnauthorized   = &APIError{HTTPStatus: http.StatusUnauthorized, Code: "authentication_error", Message: "Invalid or missing API key"}
	ErrRateLimited    = &APIError{HTTPStatus: http.StatusTooManyRequests, Code: "rate_limit_exceeded", Message: "Rate limit exceeded"}
	ErrNotFound       = &APIError{HTTPStatus: http.StatusNotFound, Code: "not_found", Message: "Resource not found"}
	ErrInternalServer = &APIError{HTTPStatus: http.StatusInternalServerError, Code: "internal_error", Message: "Internal server error"}
	ErrBadGateway     = &APIError{HTTPStatus: http.StatusBadGateway, Code: "bad_gateway", Message: "Upstream service error"}
)

// NewAPIError creates a new APIError based on a predefined error, with a custom message.
func NewAPIError(base *APIError, message string) *APIError {
	return &APIError{
		HTTPStatus: base.HTTPStatus,
		Code:       base.Code,
		Message:    message,
	}
}

// NewValidationError creates a validation error with a custom message.
func NewValidationError(message string) *APIError {
	return NewAPIError(ErrValidation, message)
}

// NewAuthenticationError creates an authentication error with a custom message.
func NewAuthenticationError(message string) *APIError {
	return NewAPIError(ErrUnauthorized, message)
}
