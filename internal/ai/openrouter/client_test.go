package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/rie/internal/ai"
)

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
}

// messageText accepts content sent as a plain string or as text parts.
func messageText(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(raw, &parts))
	var out strings.Builder
	for _, part := range parts {
		out.WriteString(part.Text)
	}
	return out.String()
}

func completion(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "cmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(body)
}

func TestGenerate(t *testing.T) {
	var (
		got       chatRequest
		decodeErr error
		headers   http.Header
		path      string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		headers = r.Header.Clone()
		decodeErr = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completion(` {"fitScore": 70, "confidence": 0.6} `)))
	}))
	defer server.Close()

	g, err := NewGenerator(Config{
		APIKey:  "secret",
		Model:   "test-model",
		BaseURL: server.URL + "/api/v1/",
		SiteURL: "https://example.com",
		AppName: "rie",
	})
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), ai.Prompt{System: "sys", User: "user"})
	require.NoError(t, err)

	require.NoError(t, decodeErr)
	assert.Equal(t, `{"fitScore": 70, "confidence": 0.6}`, out)
	assert.Equal(t, "/api/v1/chat/completions", path)
	assert.Equal(t, "Bearer secret", headers.Get("Authorization"))
	assert.Equal(t, "https://example.com", headers.Get("HTTP-Referer"))
	assert.Equal(t, "rie", headers.Get("X-Title"))

	assert.Equal(t, "test-model", got.Model)
	assert.InDelta(t, 0.2, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "sys", messageText(t, got.Messages[0].Content))
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "user", messageText(t, got.Messages[1].Content))
}

func TestGenerateDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": {"message": "overloaded"}}`))
	}))
	defer server.Close()

	g, err := NewGenerator(Config{APIKey: "secret", BaseURL: server.URL + "/"})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), ai.Prompt{User: "user"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion with model "+DefaultModel)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerateEmptyChoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completion("   ")))
	}))
	defer server.Close()

	g, err := NewGenerator(Config{APIKey: "secret", BaseURL: server.URL + "/"})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), ai.Prompt{User: "user"})
	assert.EqualError(t, err, "openrouter returned empty response")
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	_, err := NewGenerator(Config{})
	assert.Error(t, err)
}
