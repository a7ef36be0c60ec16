package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrijr/quizforge/pkg/api"
)

func TestOpenAIClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"## FillBlank\n\nx ______\n\n- R:= y"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{APIKey: "key", BaseURL: srv.URL + "/v1"})
	text, err := c.Generate(context.Background(), api.GenerationRequest{
		Model:    "gpt-test",
		Messages: []api.Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "## FillBlank\n\nx ______\n\n- R:= y", text)
}

func TestOpenAIClient_StreamsWhenProgressRequested(t *testing.T) {
	parts := []string{"## Single", "Choice\n\nQ\n\n", "- (x) a"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, p := range parts {
			content := strings.ReplaceAll(p, "\n", `\n`)
			_, _ = fmt.Fprintf(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"%s\"}}]}\n\n", content)
		}
		_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	var chunks []string
	ctx := api.WithProgress(context.Background(), func(ev api.ProgressEvent) {
		if c, ok := ev.(api.ModelOutputChunk); ok {
			chunks = append(chunks, c.Text)
		}
	})

	c := NewOpenAIClient(OpenAIConfig{APIKey: "key", BaseURL: srv.URL + "/v1"})
	text, err := c.Generate(ctx, api.GenerationRequest{Model: "gpt-test", Messages: []api.Message{{Content: "hi"}}})
	require.NoError(t, err)
	assert.Equal(t, strings.Join(parts, ""), text)
	assert.Equal(t, parts, chunks)
}

func TestOpenAIClient_MapsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{APIKey: "key", BaseURL: srv.URL + "/v1"})
	_, err := c.Generate(context.Background(), api.GenerationRequest{Model: "gpt-test", Messages: []api.Message{{Content: "hi"}}})
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se), "expected StatusError, got %T: %v", err, err)
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.False(t, api.IsPermanent(err))
}
