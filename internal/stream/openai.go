package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"onec-gateway/internal/utils"

	"github.com/google/uuid"
)

// OpenAI chat completion wire types. Only the fields this gateway produces.

type ChunkDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

type ChunkChoice struct {
	Index        int        `json:"index"`
	Delta        ChunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason"`
}

type ChatCompletionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CompletionChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ChatCompletion struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []CompletionChoice `json:"choices"`
	Usage   Usage              `json:"usage"`
}

// NewCompletionID generates an OpenAI-style completion id.
func NewCompletionID() string {
	return "chatcmpl-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewChatCompletion builds a non-streaming completion response with
// estimated token usage.
func NewChatCompletion(model, prompt, answer string) ChatCompletion {
	promptTokens := utils.EstimateTokens(prompt)
	completionTokens := utils.EstimateTokens(answer)
	return ChatCompletion{
		ID:      NewCompletionID(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []CompletionChoice{{
			Index:        0,
			Message:      ChatMessage{Role: "assistant", Content: answer},
			FinishReason: "stop",
		}},
		Usage: Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	}
}

// ChunkWriter streams an upstream answer as OpenAI chat.completion.chunk
// events. Standard clients get incremental deltas; buffered clients get the
// whole answer in a single content chunk after tool-markup fixup, because
// their parsers cannot handle partial XML blocks mid-stream.
type ChunkWriter struct {
	writer   io.Writer
	flusher  http.Flusher
	id       string
	model    string
	created  int64
	buffered bool
	rec      *Reconciler
	finalRaw string
}

func NewChunkWriter(w io.Writer, model string, profile utils.ClientProfile) *ChunkWriter {
	cw := &ChunkWriter{
		writer:   w,
		id:       NewCompletionID(),
		model:    model,
		created:  time.Now().Unix(),
		buffered: profile == utils.ProfileBuffered,
		rec:      NewReconciler(PolicyOverlap),
	}
	if flusher, ok := w.(http.Flusher); ok {
		cw.flusher = flusher
	}
	return cw
}

// Begin emits the initial assistant role chunk.
func (cw *ChunkWriter) Begin() error {
	return cw.writeChunk(ChunkDelta{Role: "assistant"}, nil)
}

// WriteSnapshot ingests the next cumulative answer snapshot.
func (cw *ChunkWriter) WriteSnapshot(text string) error {
	if text == "" {
		return nil
	}
	if cw.buffered {
		cw.finalRaw = text
		return nil
	}

	fragment, ok := cw.rec.Apply(text)
	if !ok {
		return nil
	}
	delta := utils.SanitizeText(fragment.Text)
	if delta == "" {
		return nil
	}
	return cw.writeChunk(ChunkDelta{Content: delta}, nil)
}

// Finish flushes buffered content if any, then writes the stop chunk and the
// [DONE] terminator.
func (cw *ChunkWriter) Finish() error {
	if cw.buffered {
		final := utils.SanitizeText(cw.finalRaw)
		final = utils.RepairToolMarkup(final)
		final = utils.EnsureToolEnvelope(final)
		if final != "" {
			if err := cw.writeChunk(ChunkDelta{Content: final}, nil); err != nil {
				return err
			}
		}
	}

	stop := "stop"
	if err := cw.writeChunk(ChunkDelta{}, &stop); err != nil {
		return err
	}
	return cw.writeDone()
}

// Abort terminates the stream without a stop chunk. Response headers are
// long gone at this point, so an upstream failure can only be signaled by
// closing the stream cleanly.
func (cw *ChunkWriter) Abort() error {
	return cw.writeDone()
}

func (cw *ChunkWriter) writeChunk(delta ChunkDelta, finishReason *string) error {
	chunk := ChatCompletionChunk{
		ID:      cw.id,
		Object:  "chat.completion.chunk",
		Created: cw.created,
		Model:   cw.model,
		Choices: []ChunkChoice{{Index: 0, Delta: delta, FinishReason: finishReason}},
	}
	encoded, err := json.Marshal(chunk)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(cw.writer, "data: %s\n\n", encoded); err != nil {
		return err
	}
	cw.flush()
	return nil
}

func (cw *ChunkWriter) writeDone() error {
	if _, err := io.WriteString(cw.writer, "data: [DONE]\n\n"); err != nil {
		return err
	}
	cw.flush()
	return nil
}

func (cw *ChunkWriter) flush() {
	if cw.flusher != nil {
		cw.flusher.Flush()
	}
}
