package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"onec-gateway/internal/utils"
)

// UIEventWriter streams an upstream answer to the browser chat page as named
// SSE events: meta, delta, reset, tokens, done, error.
type UIEventWriter struct {
	writer    io.Writer
	flusher   http.Flusher
	rec       *Reconciler
	messageID string
}

func NewUIEventWriter(w io.Writer) *UIEventWriter {
	u := &UIEventWriter{
		writer: w,
		rec:    NewReconciler(PolicyReset),
	}
	if flusher, ok := w.(http.Flusher); ok {
		u.flusher = flusher
	}
	return u
}

type metaEvent struct {
	ConversationID string `json:"conversation_id"`
}

type deltaEvent struct {
	Text      string `json:"text"`
	MessageID string `json:"message_id,omitempty"`
}

type tokensEvent struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type errorEvent struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
}

// Meta announces the resolved conversation id. Always the first event.
func (u *UIEventWriter) Meta(conversationID string) error {
	return u.writeEvent("meta", metaEvent{ConversationID: conversationID})
}

// WriteSnapshot ingests the next cumulative answer snapshot. Divergent
// snapshots produce a reset event so the page clears its view before the
// full replacement text arrives.
func (u *UIEventWriter) WriteSnapshot(text, messageID string) error {
	if messageID != "" && u.messageID == "" {
		u.messageID = messageID
	}
	if text == "" {
		return nil
	}

	fragment, ok := u.rec.Apply(text)
	if !ok {
		return nil
	}
	if fragment.Reset {
		if err := u.writeEvent("reset", struct{}{}); err != nil {
			return err
		}
	}
	delta := utils.SanitizeText(fragment.Text)
	if delta == "" {
		return nil
	}
	return u.writeEvent("delta", deltaEvent{Text: delta, MessageID: u.messageID})
}

// Tokens reports estimated token counts for the exchange.
func (u *UIEventWriter) Tokens(inputTokens int) error {
	outputTokens := utils.EstimateTokens(u.rec.Final())
	return u.writeEvent("tokens", tokensEvent{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
	})
}

// Done signals clean completion. Always the last event.
func (u *UIEventWriter) Done() error {
	return u.writeEvent("done", struct{}{})
}

// Error reports a failure mid-stream. The caller still sends done afterwards
// so the client-side reader always terminates.
func (u *UIEventWriter) Error(message string, statusCode int) error {
	return u.writeEvent("error", errorEvent{Message: message, StatusCode: statusCode})
}

func (u *UIEventWriter) writeEvent(event string, payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(u.writer, "event: %s\ndata: %s\n\n", event, encoded); err != nil {
		return err
	}
	if u.flusher != nil {
		u.flusher.Flush()
	}
	return nil
}
