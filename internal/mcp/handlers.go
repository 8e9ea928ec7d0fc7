package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	appi18n "onec-gateway/internal/i18n"
	"onec-gateway/internal/utils"
	"onec-gateway/internal/version"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// ErrToolNotFound is returned by ToolsCall for unknown tool names.
var ErrToolNotFound = errors.New("tool not found")

// Conversationalist is the subset of the upstream client the tools need.
type Conversationalist interface {
	CreateConversation(ctx context.Context, programmingLanguage string) (string, error)
	SendMessageFull(ctx context.Context, conversationID, message, parentID string) (string, error)
}

// Handlers implements the MCP methods: initialize, tools/list, tools/call.
type Handlers struct {
	client         Conversationalist
	store          *SessionStore
	inputMaxLength int
}

func NewHandlers(client Conversationalist, store *SessionStore, inputMaxLength int) *Handlers {
	return &Handlers{
		client:         client,
		store:          store,
		inputMaxLength: inputMaxLength,
	}
}

// Initialize answers the handshake, echoing the client's protocol version.
func (h *Handlers) Initialize(params InitializeParams) InitializeResult {
	protocolVersion := params.ProtocolVersion
	if protocolVersion == "" {
		protocolVersion = DefaultProtocolVersion
	}
	return InitializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities:    map[string]any{"tools": map[string]any{}},
		ServerInfo:      ServerInfo{Name: "code.1c.ai Gateway MCP", Version: version.Version},
	}
}

// ToolsList describes the three upstream-backed tools. Descriptions are in
// Russian to match the answers the upstream produces.
func (h *Handlers) ToolsList() ToolsListResult {
	stringProperty := func(title, description string) map[string]any {
		return map[string]any{
			"type":        "string",
			"title":       title,
			"description": description,
			"maxLength":   h.inputMaxLength,
		}
	}

	return ToolsListResult{Tools: []ToolDesc{
		{
			Name:        "ask_1c_ai",
			Description: "Задать вопрос специализированному ИИ-ассистенту по платформе 1С:Предприятие. Используйте для общих вопросов и советов. Не используйте для проверки конкретного кода или объяснения термина — для этого есть другие инструменты.",
			InputSchema: map[string]any{
				"type":        "object",
				"title":       "Ask 1C expert",
				"description": "Задать экспертный вопрос по платформе 1С:Предприятие. Не для проверки конкретного кода.",
				"properties": map[string]any{
					"question": stringProperty("Question", "Чёткая формулировка вопроса/задачи."),
					"programming_language": map[string]any{
						"type":        "string",
						"title":       "Programming language",
						"description": "Язык программирования (опционально).",
						"enum":        []string{"", "BSL", "SQL", "JSON", "HTTP"},
						"default":     "",
					},
					"create_new_session": map[string]any{
						"type":        "boolean",
						"title":       "Create new conversation",
						"description": "Создать новый разговор (сброс контекста).",
						"default":     false,
					},
				},
				"required": []string{"question"},
			},
		},
		{
			Name:        "explain_1c_syntax",
			Description: "Объяснить конкретный элемент синтаксиса/объект платформы 1С (например, HTTPСоединение, HTTPЗапрос, ТаблицаЗначений, Запрос) с примерами. Не использовать для аудита кода.",
			InputSchema: map[string]any{
				"type":        "object",
				"title":       "Explain 1C syntax",
				"description": "Поясняет конкретный элемент синтаксиса/объект платформы 1С с примерами.",
				"properties": map[string]any{
					"syntax_element": stringProperty("Syntax element", "Название элемента (например, HTTPЗапрос, ТаблицаЗначений)."),
					"context":        stringProperty("Context", "Доп. контекст: где/как используется (опционально)."),
				},
				"required": []string{"syntax_element"},
			},
		},
		{
			Name:        "check_1c_code",
			Description: "Проверить присланный BSL/1C код на ошибки/проблемы (syntax/logic/performance). Использовать, когда есть конкретный фрагмент кода.",
			InputSchema: map[string]any{
				"type":        "object",
				"title":       "Check 1C code",
				"description": "Проверяет присланный BSL/1C код на ошибки/проблемы.",
				"properties": map[string]any{
					"code": stringProperty("Code", "Проверяемый код (желательно компактный фрагмент)."),
					"check_type": map[string]any{
						"type":        "string",
						"title":       "Check type",
						"description": "Тип проверки.",
						"enum":        []string{"syntax", "logic", "performance"},
						"default":     "syntax",
					},
				},
				"required": []string{"code"},
			},
		},
	}}
}

// Prompts sent upstream are Russian regardless of the caller's locale: the
// upstream model answers in Russian.
const (
	explainPromptPrefix  = "Объясни синтаксис и использование: "
	explainPromptContext = " в контексте: "
	checkPromptTemplate  = "Проверь этот код 1С на %s и дай рекомендации:\n\n```1c\n%s\n```"
)

var checkPromptDescriptions = map[string]string{
	"syntax":      "синтаксические ошибки",
	"logic":       "логические ошибки и потенциальные проблемы",
	"performance": "проблемы производительности и оптимизации",
}

// ToolsCall dispatches a tools/call invocation. Argument validation failures
// come back as tool-level text results; upstream failures come back as
// errors for the transport to map.
func (h *Handlers) ToolsCall(ctx context.Context, localizer *goi18n.Localizer, params ToolsCallParams, sessionID string) (ToolsCallResult, error) {
	switch params.Name {
	case "ask_1c_ai":
		return h.askTool(ctx, localizer, params.Arguments, sessionID)
	case "explain_1c_syntax":
		return h.explainTool(ctx, localizer, params.Arguments, sessionID)
	case "check_1c_code":
		return h.checkTool(ctx, localizer, params.Arguments, sessionID)
	default:
		return ToolsCallResult{}, ErrToolNotFound
	}
}

func (h *Handlers) askTool(ctx context.Context, localizer *goi18n.Localizer, args []byte, sessionID string) (ToolsCallResult, error) {
	question := strings.TrimSpace(gjson.GetBytes(args, "question").String())
	if question == "" {
		return textResult(appi18n.T(localizer, "mcp.err_empty_question")), nil
	}
	programmingLanguage := strings.TrimSpace(gjson.GetBytes(args, "programming_language").String())
	createNew := gjson.GetBytes(args, "create_new_session").Bool()

	answer, conversationID, err := h.converse(ctx, sessionID, question, programmingLanguage, createNew)
	if err != nil {
		return ToolsCallResult{}, err
	}

	return h.renderAnswer(localizer, appi18n.T(localizer, "mcp.answer_prefix"), answer, sessionID, conversationID), nil
}

func (h *Handlers) explainTool(ctx context.Context, localizer *goi18n.Localizer, args []byte, sessionID string) (ToolsCallResult, error) {
	syntaxElement := strings.TrimSpace(gjson.GetBytes(args, "syntax_element").String())
	if syntaxElement == "" {
		return textResult(appi18n.T(localizer, "mcp.err_empty_syntax")), nil
	}
	elementContext := strings.TrimSpace(gjson.GetBytes(args, "context").String())

	question := explainPromptPrefix + syntaxElement
	if elementContext != "" {
		question += explainPromptContext + elementContext
	}

	answer, conversationID, err := h.converse(ctx, sessionID, question, "", false)
	if err != nil {
		return ToolsCallResult{}, err
	}

	prefix := appi18n.T(localizer, "mcp.explain_prefix", map[string]any{"Element": syntaxElement})
	return h.renderAnswer(localizer, prefix, answer, sessionID, conversationID), nil
}

func (h *Handlers) checkTool(ctx context.Context, localizer *goi18n.Localizer, args []byte, sessionID string) (ToolsCallResult, error) {
	code := strings.TrimSpace(gjson.GetBytes(args, "code").String())
	if code == "" {
		return textResult(appi18n.T(localizer, "mcp.err_empty_code")), nil
	}
	checkType := strings.TrimSpace(gjson.GetBytes(args, "check_type").String())
	if _, known := checkPromptDescriptions[checkType]; !known {
		checkType = "syntax"
	}

	question := fmt.Sprintf(checkPromptTemplate, checkPromptDescriptions[checkType], code)

	answer, conversationID, err := h.converse(ctx, sessionID, question, "", false)
	if err != nil {
		return ToolsCallResult{}, err
	}

	prefix := appi18n.T(localizer, "mcp.check_prefix", map[string]any{
		"CheckType": appi18n.T(localizer, "mcp.check."+checkType),
	})
	return h.renderAnswer(localizer, prefix, answer, sessionID, conversationID), nil
}

// converse resolves the conversation bound to the MCP session (creating and
// binding one when needed), sends the question and returns the full answer.
func (h *Handlers) converse(ctx context.Context, sessionID, question, programmingLanguage string, createNew bool) (answer, conversationID string, err error) {
	prepared, truncated := utils.PrepareUpstreamMessage(question, h.inputMaxLength)
	if truncated {
		logrus.Warnf("MCP tool question truncated to %d characters", h.inputMaxLength)
	}

	if sessionID != "" {
		conversationID = h.store.Conversation(sessionID)
	}
	if createNew || conversationID == "" {
		conversationID, err = h.client.CreateConversation(ctx, programmingLanguage)
		if err != nil {
			return "", "", err
		}
		if sessionID != "" {
			h.store.BindConversation(sessionID, conversationID)
		}
	}

	answer, err = h.client.SendMessageFull(ctx, conversationID, prepared, "")
	if err != nil {
		return "", "", err
	}
	return utils.SanitizeText(answer), conversationID, nil
}

func (h *Handlers) renderAnswer(localizer *goi18n.Localizer, prefix, answer, sessionID, conversationID string) ToolsCallResult {
	sessionLabel := sessionID
	if sessionLabel == "" {
		sessionLabel = "-"
	}
	text := fmt.Sprintf("%s\n\n%s\n\n%s: %s\n%s: %s",
		prefix, answer,
		appi18n.T(localizer, "mcp.session_label"), sessionLabel,
		appi18n.T(localizer, "mcp.conv_label"), conversationID)
	return textResult(text)
}
