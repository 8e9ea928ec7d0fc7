// Package response provides standardized JSON response helpers.
package response

import (
	"net/http"

	app_errors "onec-gateway/internal/errors"
	"onec-gateway/internal/i18n"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the OpenAI-compatible error envelope.
type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

// ErrorResponse wraps ErrorBody under the "error" key.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// SuccessResponse defines the standard JSON success response structure.
type SuccessResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Success sends a standardized success response.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, SuccessResponse{
		Code:    0,
		Message: i18n.Message(c, "common.success"),
		Data:    data,
	})
}

// Error sends a standardized error response using an APIError.
func Error(c *gin.Context, apiErr *app_errors.APIError) {
	c.JSON(apiErr.HTTPStatus, ErrorResponse{
		Error: ErrorBody{
			Message: apiErr.Message,
			Type:    apiErr.Code,
			Code:    apiErr.HTTPStatus,
		},
	})
}

// UpstreamError maps an upstream failure at the boundary and sends it.
func UpstreamError(c *gin.Context, ue *app_errors.UpstreamError) {
	Error(c, app_errors.MapUpstreamError(ue))
}

// InternalError logs nothing itself; callers log detail server-side and the
// client only ever sees the generic message.
func InternalError(c *gin.Context) {
	Error(c, app_errors.ErrInternalServer)
}
