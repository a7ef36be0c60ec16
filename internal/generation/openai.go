package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/petrijr/quizforge/pkg/api"
)

// OpenAIConfig configures OpenAIClient.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string

	// Stream forces streamed completions. Calls whose context carries a
	// ProgressFunc are always streamed so chunks can be forwarded as
	// ModelOutputChunk events.
	Stream bool

	Logger *slog.Logger
}

// OpenAIClient talks to OpenAI-compatible chat completion endpoints.
type OpenAIClient struct {
	client *openai.Client
	stream bool
}

var _ api.Generator = (*OpenAIClient)(nil)

// NewOpenAIClient creates an OpenAIClient.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	if cfg.Logger != nil {
		config.HTTPClient = &http.Client{
			Transport: &loggingTransport{base: http.DefaultTransport, logger: cfg.Logger},
		}
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		stream: cfg.Stream,
	}
}

func toChatRequest(req api.GenerationRequest) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := m.Role
		if role == "" {
			role = openai.ChatMessageRoleUser
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	}
}

// Generate performs one call. It does not retry.
func (c *OpenAIClient) Generate(ctx context.Context, req api.GenerationRequest) (string, error) {
	if c.stream || api.HasProgress(ctx) {
		return c.generateStream(ctx, req)
	}

	resp, err := c.client.CreateChatCompletion(ctx, toChatRequest(req))
	if err != nil {
		return "", wrapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) generateStream(ctx context.Context, req api.GenerationRequest) (string, error) {
	chatReq := toChatRequest(req)
	chatReq.Stream = true

	stream, err := c.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return "", wrapOpenAIError(err)
	}
	defer stream.Close()

	emit := api.ProgressFromContext(ctx)
	var text strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", wrapOpenAIError(err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		text.WriteString(delta)
		emit(api.ModelOutputChunk{Text: delta})
	}
	if text.Len() == 0 {
		return "", errors.New("empty streamed response")
	}
	return text.String(), nil
}

// wrapOpenAIError turns go-openai errors into StatusError so that retry
// classification sees the HTTP status.
func wrapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return statusError(apiErr.HTTPStatusCode, []byte(apiErr.Message))
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return statusError(reqErr.HTTPStatusCode, []byte(fmt.Sprint(reqErr.Err)))
	}
	return err
}
