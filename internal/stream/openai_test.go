package stream

import (
	"bytes"
	"strings"
	"testing"

	"onec-gateway/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// parseSSEData extracts the data payloads from a raw SSE stream.
func parseSSEData(t *testing.T, raw string) []string {
	t.Helper()
	var payloads []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(line, "data: ") {
			payloads = append(payloads, strings.TrimPrefix(line, "data: "))
		}
	}
	return payloads
}

// TestChunkWriter_Incremental tests the standard streaming mode
func TestChunkWriter_Incremental(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChunkWriter(&buf, "1c-buddy", utils.ProfileStandard)

	require.NoError(t, cw.Begin())
	require.NoError(t, cw.WriteSnapshot("Hel"))
	require.NoError(t, cw.WriteSnapshot("Hello"))
	require.NoError(t, cw.WriteSnapshot("Hello"))
	require.NoError(t, cw.Finish())

	payloads := parseSSEData(t, buf.String())
	// role chunk, two content chunks, stop chunk, [DONE]
	require.Len(t, payloads, 5)

	assert.Equal(t, "assistant", gjson.Get(payloads[0], "choices.0.delta.role").String())
	assert.Equal(t, "Hel", gjson.Get(payloads[1], "choices.0.delta.content").String())
	assert.Equal(t, "lo", gjson.Get(payloads[2], "choices.0.delta.content").String())
	assert.Equal(t, "stop", gjson.Get(payloads[3], "choices.0.finish_reason").String())
	assert.Equal(t, "[DONE]", payloads[4])

	// Same id and object type on every chunk
	id := gjson.Get(payloads[0], "id").String()
	assert.True(t, strings.HasPrefix(id, "chatcmpl-"))
	for _, payload := range payloads[:4] {
		assert.Equal(t, id, gjson.Get(payload, "id").String())
		assert.Equal(t, "chat.completion.chunk", gjson.Get(payload, "object").String())
		assert.Equal(t, "1c-buddy", gjson.Get(payload, "model").String())
	}

	// Non-final chunks carry an explicit null finish_reason
	assert.True(t, gjson.Get(payloads[1], "choices.0.finish_reason").Type == gjson.Null)
}

// TestChunkWriter_OverlapDivergence tests splicing on upstream restarts
func TestChunkWriter_OverlapDivergence(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChunkWriter(&buf, "1c-buddy", utils.ProfileStandard)

	require.NoError(t, cw.Begin())
	require.NoError(t, cw.WriteSnapshot("abcdef"))
	require.NoError(t, cw.WriteSnapshot("defghi"))
	require.NoError(t, cw.Finish())

	payloads := parseSSEData(t, buf.String())
	require.Len(t, payloads, 5)
	assert.Equal(t, "abcdef", gjson.Get(payloads[1], "choices.0.delta.content").String())
	assert.Equal(t, "ghi", gjson.Get(payloads[2], "choices.0.delta.content").String())
}

// TestChunkWriter_Buffered tests the single-chunk mode with envelope wrapping
func TestChunkWriter_Buffered(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChunkWriter(&buf, "1c-buddy", utils.ProfileBuffered)

	require.NoError(t, cw.Begin())
	require.NoError(t, cw.WriteSnapshot("4"))
	require.NoError(t, cw.WriteSnapshot("42"))
	require.NoError(t, cw.Finish())

	payloads := parseSSEData(t, buf.String())
	// role chunk, one content chunk, stop chunk, [DONE]
	require.Len(t, payloads, 4)

	content := gjson.Get(payloads[1], "choices.0.delta.content").String()
	assert.Equal(t, "<attempt_completion><result><![CDATA[42]]></result></attempt_completion>", content)
}

// TestChunkWriter_BufferedKeepsMarkup tests that existing tool blocks are
// repaired but not re-wrapped
func TestChunkWriter_BufferedKeepsMarkup(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChunkWriter(&buf, "1c-buddy", utils.ProfileBuffered)

	require.NoError(t, cw.Begin())
	require.NoError(t, cw.WriteSnapshot("<attempt_completion><result>done"))
	require.NoError(t, cw.Finish())

	payloads := parseSSEData(t, buf.String())
	require.Len(t, payloads, 4)
	content := gjson.Get(payloads[1], "choices.0.delta.content").String()
	assert.Equal(t, "<attempt_completion><result>done</result></attempt_completion>", content)
}

// TestChunkWriter_Abort tests the mid-stream failure path
func TestChunkWriter_Abort(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChunkWriter(&buf, "1c-buddy", utils.ProfileStandard)

	require.NoError(t, cw.Begin())
	require.NoError(t, cw.WriteSnapshot("partial"))
	require.NoError(t, cw.Abort())

	payloads := parseSSEData(t, buf.String())
	require.Len(t, payloads, 3)
	assert.Equal(t, "[DONE]", payloads[2])
}

// TestNewChatCompletion tests the non-streaming response shape
func TestNewChatCompletion(t *testing.T) {
	completion := NewChatCompletion("1c-buddy", "привет", "Hello there!")

	assert.True(t, strings.HasPrefix(completion.ID, "chatcmpl-"))
	assert.Equal(t, "chat.completion", completion.Object)
	require.Len(t, completion.Choices, 1)
	assert.Equal(t, "assistant", completion.Choices[0].Message.Role)
	assert.Equal(t, "Hello there!", completion.Choices[0].Message.Content)
	assert.Equal(t, "stop", completion.Choices[0].FinishReason)
	assert.Equal(t, 2, completion.Usage.PromptTokens)
	assert.Equal(t, 3, completion.Usage.CompletionTokens)
	assert.Equal(t, 5, completion.Usage.TotalTokens)
}
