package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvparse/cvparse/internal/common"
	"github.com/cvparse/cvparse/internal/provider"
)

func completionBody(content string, promptTokens, completionTokens int) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
		"usage": map[string]any{
			"prompt_tokens":     promptTokens,
			"completion_tokens": completionTokens,
		},
	})
	return string(b)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
}

func TestChatSuccess(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("  {\"ok\": true}  ", 120, 30)))
	})

	resp, err := c.Chat(context.Background(), provider.ChatRequest{
		Model:    "openai/gpt-4o-mini",
		Messages: []provider.Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, resp.Content, "content is trimmed")
	assert.Equal(t, 120, resp.Usage.InputTokens)
	assert.Equal(t, 30, resp.Usage.OutputTokens)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "openai/gpt-4o-mini", gotBody["model"])
	assert.Equal(t, float64(4096), gotBody["max_tokens"], "default cap applies when unset")
}

func TestChatStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{name: "server error retryable", status: http.StatusInternalServerError, sentinel: common.ErrProviderUnavailable},
		{name: "bad gateway retryable", status: http.StatusBadGateway, sentinel: common.ErrProviderUnavailable},
		{name: "rate limited retryable", status: http.StatusTooManyRequests, sentinel: common.ErrProviderUnavailable},
		{name: "bad request rejected", status: http.StatusBadRequest, sentinel: common.ErrProviderRejected},
		{name: "unauthorized rejected", status: http.StatusUnauthorized, sentinel: common.ErrProviderRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "provider said no", tt.status)
			})
			_, err := c.Chat(context.Background(), provider.ChatRequest{Model: "m"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel))
		})
	}
}

func TestChatNetworkErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on
	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)

	_, err := c.Chat(context.Background(), provider.ChatRequest{Model: "m"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrProviderUnavailable))
}

func TestChatMalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	})

	_, err := c.Chat(context.Background(), provider.ChatRequest{Model: "m"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrProviderUnavailable))
}

func TestChatExplicitMaxTokens(t *testing.T) {
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(completionBody("ok", 1, 1)))
	})

	_, err := c.Chat(context.Background(), provider.ChatRequest{Model: "m", MaxTokens: 256})
	require.NoError(t, err)
	assert.Equal(t, float64(256), gotBody["max_tokens"])
}
