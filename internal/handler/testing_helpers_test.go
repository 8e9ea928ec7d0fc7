package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"onec-gateway/internal/i18n"
	"onec-gateway/internal/session"
	"onec-gateway/internal/types"
	"onec-gateway/internal/upstream"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubConfig implements types.ConfigManager for handler tests.
type stubConfig struct {
	upstreamConfig types.UpstreamConfig
	sessionConfig  types.SessionConfig
}

func (s *stubConfig) GetAuthConfig() types.AuthConfig         { return types.AuthConfig{Key: "sk-test"} }
func (s *stubConfig) GetCORSConfig() types.CORSConfig         { return types.CORSConfig{} }
func (s *stubConfig) GetLogConfig() types.LogConfig           { return types.LogConfig{Level: "info"} }
func (s *stubConfig) GetServerConfig() types.ServerConfig     { return types.ServerConfig{Port: 6002} }
func (s *stubConfig) GetUpstreamConfig() types.UpstreamConfig { return s.upstreamConfig }
func (s *stubConfig) GetSessionConfig() types.SessionConfig   { return s.sessionConfig }
func (s *stubConfig) GetPublicModelID() string                { return "1c-buddy" }
func (s *stubConfig) Validate() error                         { return nil }
func (s *stubConfig) DisplayServerConfig()                    {}
func (s *stubConfig) ReloadConfig() error                     { return nil }

// fakeUpstream is a scripted stand-in for the code.1c.ai service.
type fakeUpstream struct {
	server *httptest.Server

	// events are the SSE payloads of the next message stream.
	events []string
	// failStatus, when set, makes the messages endpoint fail.
	failStatus int

	conversationsCreated int
	lastFeedbackPath     string
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/chat_api/v1/conversations/":
			f.conversationsCreated++
			fmt.Fprintf(w, `{"uuid":"conv-%d"}`, f.conversationsCreated)

		case strings.HasSuffix(r.URL.Path, "/messages"):
			if f.failStatus != 0 {
				w.WriteHeader(f.failStatus)
				return
			}
			w.Header().Set("Content-Type", "text/event-stream")
			flusher := w.(http.Flusher)
			for _, event := range f.events {
				fmt.Fprintf(w, "data: %s\n\n", event)
				flusher.Flush()
			}

		case strings.HasPrefix(r.URL.Path, "/chat_api/v1/feedbacks/"):
			f.lastFeedbackPath = r.URL.Path
			w.WriteHeader(http.StatusNoContent)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(f.server.Close)
	return f
}

// testStack wires real components against the fake upstream.
type testStack struct {
	config        *stubConfig
	client        *upstream.Client
	conversations *session.ConversationStore
	fake          *fakeUpstream
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	require.NoError(t, i18n.Init())

	fake := newFakeUpstream(t)
	config := &stubConfig{
		upstreamConfig: types.UpstreamConfig{
			BaseURL:        fake.server.URL,
			Token:          "test-token",
			ConnectTimeout: 5,
			UILanguage:     "russian",
			InputMaxLength: 100000,
		},
		sessionConfig: types.SessionConfig{
			MaxActiveSessions: 10,
			ConversationTTL:   time.Hour,
			MCPSessionTTL:     time.Hour,
		},
	}
	client := upstream.NewClient(config.GetUpstreamConfig())
	return &testStack{
		config:        config,
		client:        client,
		conversations: session.NewConversationStore(client, config.GetSessionConfig()),
		fake:          fake,
	}
}
