package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

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

// conversationIDHeader carries the upstream conversation id in both
// directions on the OpenAI surface, since the OpenAI schema has no native
// slot for it.
const (
	conversationIDHeader = "X-1C-Conversation-Id"
	createNewHeader      = "X-1C-Create-New-Session"
)

// OpenAIHandler serves the OpenAI-compatible API.
type OpenAIHandler struct {
	configManager types.ConfigManager
	client        *upstream.Client
	conversations *session.ConversationStore
}

// NewOpenAIHandler creates a new OpenAIHandler.
func NewOpenAIHandler(configManager types.ConfigManager, client *upstream.Client, conversations *session.ConversationStore) *OpenAIHandler {
	return &OpenAIHandler{
		configManager: configManager,
		client:        client,
		conversations: conversations,
	}
}

type modelData struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

type modelList struct {
	Object string      `json:"object"`
	Data   []modelData `json:"data"`
}

type chatCompletionsRequest struct {
	Model    string           `json:"model"`
	Messages []requestMessage `json:"messages" binding:"required"`
	Stream   bool             `json:"stream"`
	Metadata map[string]any   `json:"metadata"`
}

// requestMessage tolerates both string content and OpenAI array-of-parts
// content.
type requestMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// ListModels returns the single public model this gateway fronts.
// GET /v1/models
func (h *OpenAIHandler) ListModels(c *gin.Context) {
	c.JSON(http.StatusOK, modelList{
		Object: "list",
		Data: []modelData{{
			ID:      h.configManager.GetPublicModelID(),
			Object:  "model",
			Created: time.Now().Unix(),
			OwnedBy: "1c",
		}},
	})
}

// ChatCompletions answers a chat completion request, streaming or buffered.
// POST /v1/chat/completions
func (h *OpenAIHandler) ChatCompletions(c *gin.Context) {
	var req chatCompletionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrInvalidJSON, err.Error()))
		return
	}

	model := req.Model
	if model == "" {
		model = h.configManager.GetPublicModelID()
	}

	instruction := extractInstruction(req.Messages)
	if instruction == "" {
		response.Error(c, app_errors.NewValidationError("messages must include at least one user message"))
		return
	}

	suppliedID, forceNew, programmingLanguage := extractConversationMeta(c, req.Metadata)
	conversationID, err := h.conversations.ResolveOrCreate(c.Request.Context(), suppliedID, forceNew, programmingLanguage)
	if err != nil {
		respondError(c, err)
		return
	}

	profile := utils.ClassifyClient(c.Request.Header)

	if req.Stream {
		h.streamCompletion(c, model, conversationID, instruction, profile)
		return
	}

	answer, err := h.client.SendMessageFull(c.Request.Context(), conversationID, instruction, "")
	if err != nil {
		respondError(c, err)
		return
	}
	h.conversations.Touch(conversationID)

	answer = utils.SanitizeText(answer)
	if profile == utils.ProfileBuffered {
		answer = utils.RepairToolMarkup(answer)
		answer = utils.EnsureToolEnvelope(answer)
	}

	c.Header(conversationIDHeader, conversationID)
	c.JSON(http.StatusOK, stream.NewChatCompletion(model, instruction, answer))
}

func (h *OpenAIHandler) streamCompletion(c *gin.Context, model, conversationID, instruction string, profile utils.ClientProfile) {
	messageStream, err := h.client.OpenMessageStream(c.Request.Context(), conversationID, instruction, "")
	if err != nil {
		// Headers are not sent yet, a regular JSON error still works.
		respondError(c, err)
		return
	}
	defer messageStream.Close()

	c.Header(conversationIDHeader, conversationID)
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	writer := stream.NewChunkWriter(c.Writer, model, profile)
	if err := writer.Begin(); err != nil {
		return
	}

	for {
		observation, err := messageStream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			logrus.Warnf("Completion stream error: %v", err)
			writer.Abort()
			return
		}
		if err := writer.WriteSnapshot(observation.Text); err != nil {
			return
		}
		if observation.Finished {
			break
		}
	}

	h.conversations.Touch(conversationID)
	writer.Finish()
}

// extractInstruction builds the upstream prompt: all system messages as a
// preface, then the last user message.
func extractInstruction(messages []requestMessage) string {
	var systemParts []string
	var lastUser string
	hasUser := false

	for _, message := range messages {
		text := contentToText(message.Content)
		switch message.Role {
		case "system":
			if strings.TrimSpace(text) != "" {
				systemParts = append(systemParts, text)
			}
		case "user":
			lastUser = text
			hasUser = true
		}
	}

	if !hasUser {
		return ""
	}

	lastUser = strings.TrimSpace(lastUser)
	preface := strings.TrimSpace(strings.Join(systemParts, "\n\n"))
	if preface != "" {
		return preface + "\n\n" + lastUser
	}
	return lastUser
}

// contentToText flattens OpenAI message content: either a plain string or an
// array of parts where text parts carry a "text" field.
func contentToText(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(content, &asString); err == nil {
		return asString
	}

	var asParts []json.RawMessage
	if err := json.Unmarshal(content, &asParts); err != nil {
		return ""
	}

	var parts []string
	for _, rawPart := range asParts {
		var partString string
		if err := json.Unmarshal(rawPart, &partString); err == nil {
			if partString != "" {
				parts = append(parts, partString)
			}
			continue
		}
		var partObject struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(rawPart, &partObject); err == nil && partObject.Text != "" {
			parts = append(parts, partObject.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// extractConversationMeta resolves conversation routing from headers first,
// request metadata second.
func extractConversationMeta(c *gin.Context, metadata map[string]any) (conversationID string, forceNew bool, programmingLanguage string) {
	conversationID = c.GetHeader(conversationIDHeader)
	if conversationID == "" {
		if v, ok := metadata["conversation_id"].(string); ok {
			conversationID = v
		}
	}

	if v, ok := metadata["create_new_session"].(bool); ok {
		forceNew = v
	}
	switch strings.ToLower(strings.TrimSpace(c.GetHeader(createNewHeader))) {
	case "1", "true", "yes", "y":
		forceNew = true
	}

	if v, ok := metadata["programming_language"].(string); ok {
		programmingLanguage = v
	}
	return conversationID, forceNew, programmingLanguage
}
