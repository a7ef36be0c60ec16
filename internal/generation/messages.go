// Package generation contains clients for the external text generation
// service and the prompts sent to it.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/petrijr/quizforge/pkg/api"
)

const (
	DefaultMessagesBaseURL = "https://api.anthropic.com"
	anthropicVersion       = "2023-06-01"
)

// StatusError is returned for non-2xx responses from the generation service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 300 {
		body = body[:300] + "..."
	}
	return fmt.Sprintf("generation service returned %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), body)
}

// HTTPStatus exposes the status code for retry classification.
func (e *StatusError) HTTPStatus() int { return e.StatusCode }

// statusError builds the error for a failed response. Client errors that a
// retry cannot fix are marked permanent.
func statusError(code int, body []byte) error {
	err := &StatusError{StatusCode: code, Body: string(body)}
	switch code {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return api.Permanent(err)
	}
	return err
}

// MessagesConfig configures MessagesClient.
type MessagesConfig struct {
	APIKey  string
	BaseURL string

	// HTTPClient defaults to a client with a logging transport when Logger
	// is set, otherwise http.DefaultClient.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// MessagesClient talks to a messages-style generation endpoint:
//
//	POST <base>/v1/messages
//	{"model": ..., "max_tokens": ..., "temperature": ..., "messages": [{"role": "user", "content": ...}]}
//
// and returns content[0].text of the response.
type MessagesClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ api.Generator = (*MessagesClient)(nil)

// NewMessagesClient creates a MessagesClient.
func NewMessagesClient(cfg MessagesConfig) *MessagesClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultMessagesBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		if cfg.Logger != nil {
			client = &http.Client{Transport: &loggingTransport{base: http.DefaultTransport, logger: cfg.Logger}}
		} else {
			client = http.DefaultClient
		}
	}
	return &MessagesClient{apiKey: cfg.APIKey, baseURL: base, client: client}
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Generate performs one call. It does not retry.
func (c *MessagesClient) Generate(ctx context.Context, req api.GenerationRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", api.Permanent(fmt.Errorf("encode request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", api.Permanent(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	if c.apiKey != "" {
		httpReq.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", statusError(resp.StatusCode, data)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Content) == 0 {
		return "", errors.New("generation service returned no content")
	}
	text := parsed.Content[0].Text
	api.EmitProgress(ctx, api.ModelOutputChunk{Text: text})
	return text, nil
}

// loggingTransport logs every request and response at debug level.
type loggingTransport struct {
	base   http.RoundTripper
	logger *slog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.logger.DebugContext(req.Context(), "generation_http_request",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Int64("content_length", req.ContentLength),
	)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.logger.DebugContext(req.Context(), "generation_http_error", slog.Any("error", err))
		return nil, err
	}

	t.logger.DebugContext(req.Context(), "generation_http_response",
		slog.String("status", resp.Status),
		slog.Int("status_code", resp.StatusCode),
	)
	return resp, nil
}
