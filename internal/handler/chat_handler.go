package handler

import (
	"io"
	"net/http"

	app_errors "onec-gateway/internal/errors"
	"onec-gateway/internal/response"
	"onec-gateway/internal/session"
	"onec-gateway/internal/stream"
	"onec-gateway/internal/types"
	"onec-gateway/internal/upstream"
	"onec-gateway/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ChatHandler serves the browser chat page API.
type ChatHandler struct {
	configManager types.ConfigManager
	client        *upstream.Client
	conversations *session.ConversationStore
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(configManager types.ConfigManager, client *upstream.Client, conversations *session.ConversationStore) *ChatHandler {
	return &ChatHandler{
		configManager: configManager,
		client:        client,
		conversations: conversations,
	}
}

type chatRequest struct {
	Message             string `json:"message" binding:"required"`
	ConversationID      string `json:"conversation_id"`
	CreateNewSession    bool   `json:"create_new_session"`
	ProgrammingLanguage string `json:"programming_language"`
	ParentUUID          string `json:"parent_uuid"`
}

type chatAnswer struct {
	ConversationID string `json:"conversation_id"`
	Answer         string `json:"answer"`
}

// Score is a pointer so an explicit zero reaches the range validation below
// instead of failing the required binding.
type feedbackRequest struct {
	MessageID string `json:"message_id" binding:"required"`
	Score     *int   `json:"score" binding:"required"`
}

// Config returns frontend settings.
// GET /chat/api/config
func (h *ChatHandler) Config(c *gin.Context) {
	response.Success(c, gin.H{
		"model":            h.configManager.GetPublicModelID(),
		"max_input_length": h.configManager.GetUpstreamConfig().InputMaxLength,
	})
}

// Send answers a message in one buffered response.
// POST /chat/api/send
func (h *ChatHandler) Send(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrInvalidJSON, err.Error()))
		return
	}

	conversationID, err := h.conversations.ResolveOrCreate(c.Request.Context(), req.ConversationID, req.CreateNewSession, req.ProgrammingLanguage)
	if err != nil {
		respondError(c, err)
		return
	}

	answer, err := h.client.SendMessageFull(c.Request.Context(), conversationID, req.Message, req.ParentUUID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.conversations.Touch(conversationID)

	c.JSON(http.StatusOK, chatAnswer{
		ConversationID: conversationID,
		Answer:         utils.SanitizeText(answer),
	})
}

// Stream answers a message as a live SSE event stream.
// POST /chat/api/stream
func (h *ChatHandler) Stream(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrInvalidJSON, err.Error()))
		return
	}

	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	writer := stream.NewUIEventWriter(c.Writer)

	conversationID, err := h.conversations.ResolveOrCreate(c.Request.Context(), req.ConversationID, req.CreateNewSession, req.ProgrammingLanguage)
	if err != nil {
		h.streamError(writer, err)
		return
	}
	if err := writer.Meta(conversationID); err != nil {
		return
	}

	// Token accounting uses the message as it goes upstream, after the
	// length limit.
	prepared, _ := utils.PrepareUpstreamMessage(req.Message, h.configManager.GetUpstreamConfig().InputMaxLength)
	inputTokens := utils.EstimateTokens(prepared)

	messageStream, err := h.client.OpenMessageStream(c.Request.Context(), conversationID, req.Message, req.ParentUUID)
	if err != nil {
		h.streamError(writer, err)
		return
	}
	defer messageStream.Close()

	for {
		observation, err := messageStream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			h.streamError(writer, err)
			return
		}
		if err := writer.WriteSnapshot(observation.Text, observation.MessageID); err != nil {
			// Client went away; nothing left to emit.
			return
		}
		if observation.Finished {
			break
		}
	}

	h.conversations.Touch(conversationID)
	writer.Tokens(inputTokens)
	writer.Done()
}

// streamError reports a failure over an already-started SSE stream. The
// error event is always followed by done so the client reader terminates.
func (h *ChatHandler) streamError(writer *stream.UIEventWriter, err error) {
	if upstreamErr, ok := app_errors.AsUpstreamError(err); ok {
		writer.Error(upstreamErr.Message, upstreamErr.StatusCode)
	} else {
		logrus.Errorf("Chat stream error: %v", err)
		writer.Error("Internal server error", 0)
	}
	writer.Done()
}

// Feedback forwards a like or dislike for an assistant message.
// POST /chat/api/feedback
func (h *ChatHandler) Feedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrInvalidJSON, err.Error()))
		return
	}
	score := *req.Score
	if score != 1 && score != -1 {
		response.Error(c, app_errors.NewValidationError("score must be 1 or -1"))
		return
	}

	if err := h.client.SendFeedback(c.Request.Context(), req.MessageID, score); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"message_id": req.MessageID,
		"score":      score,
	})
}
