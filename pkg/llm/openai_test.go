package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/autoapi/pkg/llm"
)

func newOpenAIClient(t *testing.T, url string) llm.Client {
	t.Helper()
	c, err := llm.New("openai", llm.Credentials{APIKey: "sk-test", BaseURL: url}, llm.Options{
		Model:       "gpt-4o-mini",
		Temperature: 0.1,
		MaxTokens:   512,
	})
	require.NoError(t, err)
	return c
}

func TestOpenAI_Generate(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"model": "gpt-4o-mini-2024-07-18",
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "class PostSerializer: pass\n"}},
			},
			"usage": map[string]any{"prompt_tokens": 120, "completion_tokens": 40, "total_tokens": 160},
		})
	}))
	defer server.Close()

	c := newOpenAIClient(t, server.URL)
	assert.Equal(t, "openai", c.Provider())
	assert.Equal(t, "gpt-4o-mini", c.Model())

	resp, err := c.Generate(context.Background(), llm.Request{System: "sys", Prompt: "write it"})
	require.NoError(t, err)
	assert.Equal(t, "class PostSerializer: pass\n", resp.Text)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", resp.Model)
	assert.Equal(t, int64(120), resp.InputTokens)
	assert.Equal(t, int64(40), resp.OutputTokens)

	assert.Equal(t, "gpt-4o-mini", received["model"])
	assert.InDelta(t, 0.1, received["temperature"], 1e-9)
	messages := received["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "write it", messages[1].(map[string]any)["content"])
}

func TestOpenAI_Generate_StripsFences(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "```python\nclass A: pass\n```"}},
			},
		})
	}))
	defer server.Close()

	resp, err := newOpenAIClient(t, server.URL).Generate(context.Background(), llm.Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "class A: pass\n", resp.Text)
	assert.Equal(t, int64(0), resp.InputTokens)
}

func TestOpenAI_Generate_StatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, llm.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, llm.ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, llm.ErrRateLimited},
		{"server error", http.StatusBadGateway, llm.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"error": "nope"}`, tt.status)
			}))
			defer server.Close()

			_, err := newOpenAIClient(t, server.URL).Generate(context.Background(), llm.Request{Prompt: "p"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var llmErr *llm.Error
			require.ErrorAs(t, err, &llmErr)
			assert.Equal(t, tt.status, llmErr.StatusCode)
			assert.Equal(t, "openai", llmErr.Provider)
		})
	}
}

func TestOpenAI_Generate_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	_, err := newOpenAIClient(t, server.URL).Generate(context.Background(), llm.Request{Prompt: "p"})
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestOpenAI_Generate_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := newOpenAIClient(t, server.URL).Generate(context.Background(), llm.Request{Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestOpenAI_Generate_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newOpenAIClient(t, url).Generate(context.Background(), llm.Request{Prompt: "p"})
	require.Error(t, err)

	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, 0, llmErr.StatusCode)
}
