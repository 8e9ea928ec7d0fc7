package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestAPIError_Error tests the Error method implementation
func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		expected string
	}{
		{
			name:     "predefined error",
			apiError: ErrBadRequest,
			expected: "Invalid request parameters",
		},
		{
			name:     "custom error",
			apiError: &APIError{HTTPStatus: 500, Code: "test", Message: "Test message"},
			expected: "Test message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.apiError.Error())
		})
	}
}

// TestPredefinedErrors tests all predefined error constants
func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		statusCode int
		code       string
	}{
		{"ErrBadRequest", ErrBadRequest, http.StatusBadRequest, "invalid_request_error"},
		{"ErrInvalidJSON", ErrInvalidJSON, http.StatusBadRequest, "invalid_request_error"},
		{"ErrValidation", ErrValidation, http.StatusBadRequest, "invalid_request_error"},
		{"ErrUnauthorized", ErrUnauthorized, http.StatusUnauthorized, "authentication_error"},
		{"ErrRateLimited", ErrRateLimited, http.StatusTooManyRequests, "rate_limit_exceeded"},
		{"ErrNotFound", ErrNotFound, http.StatusNotFound, "not_found"},
		{"ErrInternalServer", ErrInternalServer, http.StatusInternalServerError, "internal_error"},
		{"ErrBadGateway", ErrBadGateway, http.StatusBadGateway, "bad_gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.statusCode, tt.err.HTTPStatus)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

// TestNewAPIError tests creating a new API error with custom message
func TestNewAPIError(t *testing.T) {
	customMsg := "Custom error message"
	err := NewAPIError(ErrBadRequest, customMsg)

	assert.Equal(t, ErrBadRequest.HTTPStatus, err.HTTPStatus)
	assert.Equal(t, ErrBadRequest.Code, err.Code)
	assert.Equal(t, customMsg, err.Message)
}

// TestUpstreamError_Error tests formatting with and without a status code
func TestUpstreamError_Error(t *testing.T) {
	withStatus := NewUpstreamError("message send error", 503)
	assert.Equal(t, "message send error (status 503)", withStatus.Error())

	transport := WrapUpstreamError("network error sending message", errors.New("connection refused"))
	assert.Equal(t, "network error sending message", transport.Error())
	assert.EqualError(t, errors.Unwrap(transport), "connection refused")
}

// TestAsUpstreamError tests extraction from a wrapped chain
func TestAsUpstreamError(t *testing.T) {
	ue := NewUpstreamError("boom", 500)
	wrapped := fmt.Errorf("sending message: %w", ue)

	got, ok := AsUpstreamError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, ue, got)

	_, ok = AsUpstreamError(errors.New("plain"))
	assert.False(t, ok)
}

// TestMapUpstreamError tests the boundary mapping table
func TestMapUpstreamError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantStatus int
		wantCode   string
	}{
		{"unauthorized", 401, http.StatusUnauthorized, "authentication_error"},
		{"forbidden", 403, http.StatusUnauthorized, "authentication_error"},
		{"rate limited", 429, http.StatusTooManyRequests, "rate_limit_exceeded"},
		{"server error", 500, http.StatusBadGateway, "bad_gateway"},
		{"service unavailable", 503, http.StatusBadGateway, "bad_gateway"},
		{"client error", 400, http.StatusBadRequest, "invalid_request_error"},
		{"no status", 0, http.StatusBadRequest, "invalid_request_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := MapUpstreamError(NewUpstreamError("upstream failed", tt.statusCode))
			assert.Equal(t, tt.wantStatus, apiErr.HTTPStatus)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, "upstream failed", apiErr.Message)
		})
	}
}
