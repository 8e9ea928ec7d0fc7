package upstream

import "github.com/tidwall/gjson"

type chunkKind int

const (
	// chunkUnrecognized covers events without a known content shape. Their
	// role and finished flags are still meaningful.
	chunkUnrecognized chunkKind = iota
	// chunkDelta carries an increment in content_delta.content.
	chunkDelta
	// chunkCumulative carries the full text so far in content.text.
	chunkCumulative
)

// messageChunk is one decoded SSE data event from the upstream.
type messageChunk struct {
	kind      chunkKind
	text      string
	role      string
	messageID string
	finished  bool
}

// parseChunk decodes a single SSE data payload. The upstream emits two
// content shapes depending on backend version, so the decoder probes for
// the delta form first and falls back to the cumulative form.
func parseChunk(data []byte) messageChunk {
	if !gjson.ValidBytes(data) {
		return messageChunk{kind: chunkUnrecognized}
	}

	root := gjson.ParseBytes(data)
	chunk := messageChunk{
		kind:      chunkUnrecognized,
		role:      root.Get("role").String(),
		messageID: root.Get("uuid").String(),
		finished:  root.Get("finished").Bool(),
	}

	if delta := root.Get("content_delta.content"); delta.Exists() {
		chunk.kind = chunkDelta
		chunk.text = delta.String()
		return chunk
	}
	if cumulative := root.Get("content.text"); cumulative.Exists() {
		chunk.kind = chunkCumulative
		chunk.text = cumulative.String()
		return chunk
	}
	return chunk
}
