package llm_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/arcanaland/seer/internal/config"
	"github.com/arcanaland/seer/internal/llm"
)

func testConfig(url string, stream bool) config.LLM {
	return config.LLM{
		APIKey:      "test-key",
		BaseURL:     url + "/v1",
		Model:       "test-model",
		Stream:      stream,
		MaxTokens:   1000,
		Temperature: 0.7,
	}
}

func chunk(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion.chunk",
		"created": 1,
		"model":   "test-model",
		"choices": []map[string]any{{"index": 0, "delta": map[string]any{"content": content}}},
	})
	return "data: " + string(b) + "\n\n"
}

func TestChatCompletion(t *testing.T) {
	var gotReq map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotReq)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]any{"role": "assistant", "content": "  The cards favour patience.\n"}},
			},
		})
	}))
	defer srv.Close()

	c := llm.New(testConfig(srv.URL, false), zaptest.NewLogger(t))
	assert.Equal(t, "test-model", c.Model())

	called := false
	text, err := c.Chat(context.Background(), "persona", "question", func(string) { called = true })
	require.NoError(t, err)
	assert.Equal(t, "The cards favour patience.", text)
	assert.False(t, called, "no deltas without streaming")

	assert.Equal(t, "test-model", gotReq["model"])
	assert.EqualValues(t, 1000, gotReq["max_tokens"])
	assert.InDelta(t, 0.7, gotReq["temperature"], 1e-6)
	messages, ok := gotReq["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, map[string]any{"role": "system", "content": "persona"}, messages[0])
	assert.Equal(t, map[string]any{"role": "user", "content": "question"}, messages[1])
}

func TestChatStreaming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)
		assert.Equal(t, true, req["stream"])

		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"The ", "Star ", "", "shines."} {
			fmt.Fprint(w, chunk(part))
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	var deltas []string
	text, err := llm.New(testConfig(srv.URL, true), nil).Chat(context.Background(), "s", "u", func(d string) {
		deltas = append(deltas, d)
	})
	require.NoError(t, err)
	assert.Equal(t, "The Star shines.", text)
	assert.Equal(t, []string{"The ", "Star ", "shines."}, deltas)
}

func TestChatStreamKeepsPartialTextOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, chunk("Partial "))
		fmt.Fprint(w, chunk("reading"))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var received string
	text, err := llm.New(testConfig(srv.URL, true), nil).Chat(ctx, "s", "u", func(d string) {
		received += d
		if received == "Partial reading" {
			cancel()
		}
	})
	require.Error(t, err)
	assert.Equal(t, "Partial reading", text)
}

func TestChatServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"invalid api key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	for _, stream := range []bool{false, true} {
		text, err := llm.New(testConfig(srv.URL, stream), nil).Chat(context.Background(), "s", "u", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid api key")
		assert.Empty(t, text)
	}
}

func TestChatWithoutAPIKey(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:0", false)
	cfg.APIKey = ""

	_, err := llm.New(cfg, nil).Chat(context.Background(), "s", "u", nil)
	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
}
