package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"onec-gateway/internal/i18n"
	"onec-gateway/internal/mcp"
	"onec-gateway/internal/types"
	"onec-gateway/internal/upstream"
	"onec-gateway/internal/version"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const mcpSessionHeader = "Mcp-Session-Id"

// MCPHandler is the HTTP transport for the MCP JSON-RPC endpoint.
type MCPHandler struct {
	store    *mcp.SessionStore
	handlers *mcp.Handlers
}

// NewMCPHandler creates a new MCPHandler.
func NewMCPHandler(configManager types.ConfigManager, client *upstream.Client, store *mcp.SessionStore) *MCPHandler {
	return &MCPHandler{
		store:    store,
		handlers: mcp.NewHandlers(client, store, configManager.GetUpstreamConfig().InputMaxLength),
	}
}

// Info returns discovery information.
// GET /mcp
func (h *MCPHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":     "code.1c.ai Gateway MCP",
		"version":  version.Version,
		"endpoint": "/mcp",
	})
}

// Endpoint dispatches a single JSON-RPC 2.0 message.
// POST /mcp
func (h *MCPHandler) Endpoint(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil || !gjson.ValidBytes(raw) {
		h.badRequest(c, "Invalid JSON.")
		return
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		h.badRequest(c, "Request body must be a single JSON-RPC object.")
		return
	}

	// Classify the message: request, notification or response-from-client.
	isRequest := root.Get("method").Exists()
	hasID := root.Get("id").Exists() && root.Get("id").Type != gjson.Null
	isNotification := isRequest && !hasID
	isClientResponse := !isRequest && (root.Get("result").Exists() || root.Get("error").Exists())

	// Notifications and client responses get an empty acknowledgement.
	// Initialize is the exception: it must carry an id.
	if isClientResponse || (isNotification && root.Get("method").String() != "initialize") {
		c.Status(http.StatusAccepted)
		return
	}
	if !isRequest {
		h.badRequest(c, "Unsupported JSON-RPC message type.")
		return
	}

	var req mcp.RPCRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		h.badRequest(c, "Invalid JSON-RPC request object.")
		return
	}

	if req.Method == "initialize" {
		h.initialize(c, req)
		return
	}

	// Everything else requires a live session.
	sessionID := c.GetHeader(mcpSessionHeader)
	if sessionID == "" {
		h.badRequest(c, "Missing Mcp-Session-Id header.")
		return
	}
	if _, ok := h.store.Get(sessionID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown or expired session"})
		return
	}

	switch req.Method {
	case "initialized", "notifications/initialized":
		// Reached only with an id: the notification form was acknowledged
		// above.
		c.JSON(http.StatusOK, mcp.NewError(req.ID, mcp.CodeInvalidRequest, "'initialized' must be sent as a notification", nil))

	case "tools/list":
		c.JSON(http.StatusOK, mcp.NewResult(req.ID, h.handlers.ToolsList()))

	case "tools/call":
		h.toolsCall(c, req, sessionID)

	default:
		c.JSON(http.StatusOK, mcp.NewError(req.ID, mcp.CodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), nil))
	}
}

func (h *MCPHandler) initialize(c *gin.Context, req mcp.RPCRequest) {
	var params mcp.InitializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			c.JSON(http.StatusOK, mcp.NewError(req.ID, mcp.CodeInvalidParams, "Invalid params for initialize", nil))
			return
		}
	}

	sess := h.store.Create(params.ProtocolVersion)
	result := h.handlers.Initialize(params)

	logrus.Debugf("MCP session created: %s", sess.ID)
	c.Header(mcpSessionHeader, sess.ID)
	c.JSON(http.StatusOK, mcp.NewResult(req.ID, result))
}

func (h *MCPHandler) toolsCall(c *gin.Context, req mcp.RPCRequest, sessionID string) {
	var params mcp.ToolsCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		c.JSON(http.StatusOK, mcp.NewError(req.ID, mcp.CodeInvalidParams, "Invalid params for tools/call", nil))
		return
	}

	localizer := i18n.GetLocalizerFromContext(c)
	result, err := h.handlers.ToolsCall(c.Request.Context(), localizer, params, sessionID)
	if err != nil {
		if errors.Is(err, mcp.ErrToolNotFound) {
			c.JSON(http.StatusOK, mcp.NewError(req.ID, mcp.CodeMethodNotFound, "Tool not found", gin.H{"name": params.Name}))
			return
		}
		logrus.Warnf("MCP tool %s failed: %v", params.Name, err)
		c.JSON(http.StatusOK, mcp.NewError(req.ID, mcp.CodeInternalError, "Internal error", gin.H{"detail": err.Error()}))
		return
	}

	c.JSON(http.StatusOK, mcp.NewResult(req.ID, result))
}

// badRequest sends a transport-level JSON-RPC error without an id.
func (h *MCPHandler) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, mcp.NewError(nil, mcp.CodeInvalidRequest, message, nil))
}
