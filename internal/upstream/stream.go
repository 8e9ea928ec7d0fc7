package upstream

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	apperrors "onec-gateway/internal/errors"
	"onec-gateway/internal/utils"

	"github.com/sirupsen/logrus"
)

// Observation is one normalized view of the assistant answer: the full text
// accumulated so far, regardless of which wire shape the upstream used.
type Observation struct {
	Text      string
	MessageID string
	Finished  bool
}

// MessageStream reads the SSE response of a message and normalizes the two
// upstream chunk shapes into cumulative observations.
type MessageStream struct {
	resp   *http.Response
	reader *bufio.Reader

	accumulated    string
	prevCumulative string
	lastText       string
	lastMessageID  string
	done           bool
}

func newMessageStream(resp *http.Response) *MessageStream {
	return &MessageStream{
		resp:   resp,
		reader: bufio.NewReaderSize(resp.Body, 64*1024),
	}
}

// Recv returns the next observation. It returns io.EOF after the final
// observation, or when the upstream closes the stream without a finished
// marker. Context cancellation surfaces as the context error.
func (s *MessageStream) Recv() (Observation, error) {
	if s.done {
		return Observation{}, io.EOF
	}

	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			s.done = true
			if err == io.EOF {
				return Observation{}, io.EOF
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return Observation{}, err
			}
			return Observation{}, apperrors.WrapUpstreamError("stream read error", err)
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		chunk := parseChunk([]byte(strings.TrimPrefix(line, "data: ")))
		if chunk.messageID != "" {
			s.lastMessageID = chunk.messageID
		}

		// The upstream echoes the stored user message as a finished
		// cumulative event before the assistant starts answering. Events
		// carrying a content delta are answer content whatever role they
		// claim.
		if chunk.role == "user" && chunk.kind != chunkDelta {
			continue
		}

		// Delta chunks carry no role on some backend versions; cumulative
		// chunks must be explicitly assistant-authored.
		isAssistant := chunk.role == "assistant" || chunk.kind == chunkDelta

		if chunk.text != "" && isAssistant {
			var full string
			switch chunk.kind {
			case chunkDelta:
				s.accumulated += chunk.text
				full = s.accumulated
			case chunkCumulative:
				if chunk.text == s.prevCumulative {
					// Heartbeat repeat of the same snapshot.
					if chunk.finished {
						s.done = true
						return Observation{Text: s.lastText, MessageID: s.lastMessageID, Finished: true}, nil
					}
					continue
				}
				s.prevCumulative = chunk.text
				full = chunk.text
			}

			s.lastText = utils.CleanUTF8(full)
			if chunk.finished {
				s.done = true
			}
			return Observation{Text: s.lastText, MessageID: s.lastMessageID, Finished: chunk.finished}, nil
		}

		if chunk.finished && isAssistant {
			s.done = true
			return Observation{Text: s.lastText, MessageID: s.lastMessageID, Finished: true}, nil
		}

		if chunk.kind == chunkUnrecognized && chunk.role == "" {
			logrus.Debugf("Skipping unrecognized stream event: %s", utils.TruncateString(line, 120))
		}
	}
}

// Close releases the underlying response body.
func (s *MessageStream) Close() error {
	return s.resp.Body.Close()
}
