package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	svc, err := NewLLMService(LLMConfig{BaseURL: srv.URL, Model: "llama3.2"})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService_Defaults(t *testing.T) {
	svc, err := NewLLMService(LLMConfig{})
	require.NoError(t, err)
	assert.Equal(t, DefaultLLMModel, svc.ModelName())

	_, err = NewLLMService(LLMConfig{BaseURL: "://bad"})
	assert.Error(t, err)
}

func TestChat(t *testing.T) {
	var got map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3.2","message":{"role":"assistant","content":"Article 21 guarantees life."},"done":true}`))
	})

	out, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "sys"},
		{Role: driven.RoleUser, Content: "q"},
	}, driven.ChatOptions{MaxTokens: 600})

	require.NoError(t, err)
	assert.Equal(t, "Article 21 guarantees life.", out)
	assert.Equal(t, false, got["stream"])
	opts, ok := got["options"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0.0, opts["temperature"])
	assert.Equal(t, 600.0, opts["num_predict"])
}

func TestGenerate(t *testing.T) {
	var got map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"llama3.2","response":"0, 2","done":true}`))
	})

	out, err := svc.Generate(context.Background(), "rank these", driven.GenerateOptions{
		Temperature: 0.7, StopWords: []string{"END"},
	})

	require.NoError(t, err)
	assert.Equal(t, "0, 2", out)
	assert.Equal(t, "rank these", got["prompt"])
	opts := got["options"].(map[string]any)
	assert.Equal(t, 0.7, opts["temperature"])
	assert.Equal(t, []any{"END"}, opts["stop"])
	assert.NotContains(t, opts, "num_predict")
}

func TestChat_ModelMissing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model \"llama3.2\" not found, try pulling it first"}`))
	})

	_, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "q"}}, driven.ChatOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NotErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestPing_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	svc, err := NewLLMService(LLMConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Ping(context.Background()), domain.ErrLLMUnavailable)
}

func TestOptions(t *testing.T) {
	assert.Equal(t, map[string]any{"temperature": 0.0}, options(0, 0, nil))
	assert.Equal(t, map[string]any{"temperature": 0.5, "num_predict": 10, "stop": []string{"x"}},
		options(10, 0.5, []string{"x"}))
}
