// Package upstream implements the HTTP and SSE client for the code.1c.ai
// conversational service.
package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	apperrors "onec-gateway/internal/errors"
	"onec-gateway/internal/types"
	"onec-gateway/internal/utils"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	conversationsPath = "/chat_api/v1/conversations/"
	feedbacksPath     = "/chat_api/v1/feedbacks/"

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/620.1 (KHTML, like Gecko) JavaFX/22 Safari/620.1"
)

// Client talks to the upstream conversational service. It keeps two HTTP
// clients: one with bounded timeouts for short requests, and one without an
// overall deadline for long-lived SSE streams.
type Client struct {
	config       types.UpstreamConfig
	httpClient   *http.Client
	streamClient *http.Client
}

// NewClient creates an upstream client from the given configuration.
func NewClient(config types.UpstreamConfig) *Client {
	connectTimeout := time.Duration(config.ConnectTimeout) * time.Second

	var httpClient, streamClient *http.Client
	if config.StealthMode {
		httpClient = newStealthClient(connectTimeout)
		streamClient = newStealthClient(0)
	} else {
		transport := &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   connectTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: connectTimeout,
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		}
		httpClient = &http.Client{Transport: transport, Timeout: connectTimeout}
		// No Timeout here: the SSE body stays open for the whole answer.
		streamClient = &http.Client{Transport: transport}
	}

	return &Client{
		config:       config,
		httpClient:   httpClient,
		streamClient: streamClient,
	}
}

// applyHeaders sets the browser-like header set the upstream expects.
func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Charset", "utf-8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Accept-Language", "ru")
	req.Header.Set("Authorization", c.config.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", c.config.BaseURL)
	req.Header.Set("Referer", c.config.BaseURL+"/chat/")
	req.Header.Set("User-Agent", browserUserAgent)
}

// CreateConversation registers a new conversation upstream and returns its id.
// An empty programmingLanguage falls back to the configured default.
func (c *Client) CreateConversation(ctx context.Context, programmingLanguage string) (string, error) {
	if programmingLanguage == "" {
		programmingLanguage = c.config.ProgrammingLanguage
	}

	body, _ := sjson.Set("{}", "is_chat", true)
	body, _ = sjson.Set(body, "skill_name", "custom")
	body, _ = sjson.Set(body, "ui_language", c.config.UILanguage)
	if programmingLanguage != "" {
		body, _ = sjson.Set(body, "programming_language", programmingLanguage)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+conversationsPath, strings.NewReader(body))
	if err != nil {
		return "", apperrors.WrapUpstreamError("failed to build conversation create request", err)
	}
	c.applyHeaders(req)
	req.Header.Set("Session-Id", "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.WrapUpstreamError("network error creating conversation", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.WrapUpstreamError("failed to read conversation create response", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		logrus.Warnf("Conversation create failed: status=%d body=%s", resp.StatusCode, utils.TruncateString(string(raw), 200))
		return "", apperrors.NewUpstreamError(fmt.Sprintf("conversation create error: %d", resp.StatusCode), resp.StatusCode)
	}

	decoded, _ := utils.DecompressResponse(resp.Header.Get("Content-Encoding"), raw)
	conversationID := gjson.GetBytes(decoded, "uuid").String()
	if conversationID == "" {
		return "", apperrors.NewUpstreamError("conversation create response is missing uuid", resp.StatusCode)
	}

	logrus.Debugf("Created upstream conversation %s", conversationID)
	return conversationID, nil
}

// OpenMessageStream posts a user message and returns the live SSE stream of
// the assistant answer. The caller must Close the returned stream.
func (c *Client) OpenMessageStream(ctx context.Context, conversationID, message, parentID string) (*MessageStream, error) {
	prepared, truncated := utils.PrepareUpstreamMessage(message, c.config.InputMaxLength)
	if truncated {
		logrus.Warnf("Message for conversation %s truncated to %d characters", conversationID, c.config.InputMaxLength)
	}

	body := buildMessagePayload(prepared, parentID)
	url := c.config.BaseURL + conversationsPath + conversationID + "/messages"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.WrapUpstreamError("failed to build message request", err)
	}
	c.applyHeaders(req)
	req.Header.Set("Accept", "text/event-stream")
	// SSE frames must arrive uncompressed for line-by-line parsing.
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.WrapUpstreamError("network error sending message", err)
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()
		logrus.Warnf("Message send failed: status=%d body=%s", resp.StatusCode, utils.TruncateString(string(raw), 200))
		return nil, apperrors.NewUpstreamError(fmt.Sprintf("message send error: %d", resp.StatusCode), resp.StatusCode)
	}

	return newMessageStream(resp), nil
}

// SendMessageFull sends a message and collects the complete assistant answer.
func (c *Client) SendMessageFull(ctx context.Context, conversationID, message, parentID string) (string, error) {
	stream, err := c.OpenMessageStream(ctx, conversationID, message, parentID)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var final string
	for {
		observation, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if observation.Text != "" {
			final = observation.Text
		}
		if observation.Finished {
			break
		}
	}
	return strings.TrimSpace(final), nil
}

// SendFeedback submits a like or dislike for an assistant message.
// Score 1 means like, -1 means dislike.
func (c *Client) SendFeedback(ctx context.Context, messageID string, score int) error {
	body, _ := sjson.Set("{}", "score", score)
	url := c.config.BaseURL + feedbacksPath + messageID + "/like"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return apperrors.WrapUpstreamError("failed to build feedback request", err)
	}
	c.applyHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.WrapUpstreamError("network error sending feedback", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return apperrors.NewUpstreamError(fmt.Sprintf("feedback error: %d", resp.StatusCode), resp.StatusCode)
	}
	return nil
}

func buildMessagePayload(instruction, parentID string) []byte {
	body, _ := sjson.Set("{}", "content.content.instruction", instruction)
	body, _ = sjson.Set(body, "content.tools", nil)
	if parentID != "" {
		body, _ = sjson.Set(body, "parent_uuid", parentID)
	}
	body, _ = sjson.Set(body, "role", "user")
	return []byte(body)
}
