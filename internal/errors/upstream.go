package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// UpstreamError represents a failed call to the upstream conversational
// service. StatusCode is 0 when the failure happened below HTTP (connect
// refused, timeout, mid-stream drop).
type UpstreamError struct {
	Message    string
	StatusCode int
	Err        error
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

// Unwrap exposes the underlying transport error, if any.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates an UpstreamError carrying an HTTP status.
func NewUpstreamError(message string, statusCode int) *UpstreamError {
	return &UpstreamError{Message: message, StatusCode: statusCode}
}

// WrapUpstreamError creates an UpstreamError from a transport-level failure.
func WrapUpstreamError(message string, err error) *UpstreamError {
	return &UpstreamError{Message: message, Err: err}
}

// AsUpstreamError extracts an UpstreamError from an error chain.
func AsUpstreamError(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// MapUpstreamError maps an upstream failure to the client-facing APIError.
// Auth-class statuses become authentication errors, rate limiting is passed
// through, server-class statuses surface as bad gateway, everything else as
// an invalid request.
func MapUpstreamError(ue *UpstreamError) *APIError {
	switch {
	case ue.StatusCode == http.StatusUnauthorized || ue.StatusCode == http.StatusForbidden:
		return NewAPIError(ErrUnauthorized, ue.Message)
	case ue.StatusCode == http.StatusTooManyRequests:
		return NewAPIError(ErrRateLimited, ue.Message)
	case ue.StatusCode >= http.StatusInternalServerError:
		return NewAPIError(ErrBadGateway, ue.Message)
	default:
		return NewAPIError(ErrBadRequest, ue.Message)
	}
}
