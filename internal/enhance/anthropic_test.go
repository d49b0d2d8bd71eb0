package enhance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicProviderComplete(t *testing.T) {
	var gotReq anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"title\":\"ok\"}"}]}`))
	}))
	defer srv.Close()

	p := NewAnthropicProvider(srv.URL, "test-key", "claude-3-haiku-20240307", 5*time.Second)
	text, err := p.Complete(context.Background(), CompletionRequest{
		System:    "be terse",
		Prompt:    "rewrite this",
		MaxTokens: 2000,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"title":"ok"}`, text)

	assert.Equal(t, "claude-3-haiku-20240307", gotReq.Model)
	assert.Equal(t, 2000, gotReq.MaxTokens)
	assert.InDelta(t, completionTemperature, gotReq.Temperature, 0.001)
	assert.Equal(t, "be terse", gotReq.System)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
}

func TestAnthropicProviderAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()

	p := NewAnthropicProvider(srv.URL, "test-key", "claude-3-haiku-20240307", 5*time.Second)
	_, err := p.Complete(context.Background(), CompletionRequest{Prompt: "x", MaxTokens: 100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_limit_error")
}
