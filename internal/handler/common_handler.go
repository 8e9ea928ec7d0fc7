// Package handler implements the HTTP endpoints of the gateway: the chat UI
// API, the OpenAI-compatible API and the MCP transport.
package handler

import (
	"net/http"
	"time"

	app_errors "onec-gateway/internal/errors"
	"onec-gateway/internal/response"
	"onec-gateway/internal/version"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CommonHandler handles health and service info requests.
type CommonHandler struct {
	startTime time.Time
}

// NewCommonHandler creates a new CommonHandler.
func NewCommonHandler() *CommonHandler {
	return &CommonHandler{startTime: time.Now()}
}

// Health returns service liveness.
// GET /health
func (h *CommonHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": version.Version,
		"uptime":  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// respondError translates any error from the upstream path into the proper
// JSON error response.
func respondError(c *gin.Context, err error) {
	if upstreamErr, ok := app_errors.AsUpstreamError(err); ok {
		logrus.Warnf("Upstream error: %v", upstreamErr)
		response.UpstreamError(c, upstreamErr)
		return
	}
	if apiErr, ok := err.(*app_errors.APIError); ok {
		response.Error(c, apiErr)
		return
	}
	logrus.Errorf("Unhandled error: %v", err)
	response.InternalError(c)
}
