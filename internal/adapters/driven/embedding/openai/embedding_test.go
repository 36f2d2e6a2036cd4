package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vidhi/internal/core/domain"
)

func newTestService(t *testing.T, cfg Config, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg.APIKey = "sk-test"
	cfg.BaseURL = srv.URL + "/v1"
	svc, err := NewEmbeddingService(cfg)
	require.NoError(t, err)
	return svc
}

func TestNewEmbeddingService(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	tests := []struct {
		cfg  Config
		dims int
	}{
		{Config{APIKey: "k"}, 3072},
		{Config{APIKey: "k", Model: "text-embedding-3-small"}, 1536},
		{Config{APIKey: "k", Model: "text-embedding-3-large", Dimensions: 256}, 256},
		{Config{APIKey: "k", Model: "custom"}, 1536},
	}
	for _, tt := range tests {
		svc, err := NewEmbeddingService(tt.cfg)
		require.NoError(t, err)
		assert.Equal(t, tt.dims, svc.Dimensions(), tt.cfg.Model)
	}
}

func TestEmbedBatch_OrdersByIndex(t *testing.T) {
	var got map[string]any
	svc := newTestService(t, Config{Model: "text-embedding-3-small"}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"object": "list",
			"model": "text-embedding-3-small",
			"data": [
				{"object": "embedding", "index": 1, "embedding": [0, 1]},
				{"object": "embedding", "index": 0, "embedding": [1, 0]}
			]
		}`))
	})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"Article 21", "Section 302"})

	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vecs)
	assert.Equal(t, "text-embedding-3-small", got["model"])
	assert.Equal(t, []any{"Article 21", "Section 302"}, got["input"])
	assert.NotContains(t, got, "dimensions")
}

func TestEmbedBatch_SendsDimensionsWhenOverridden(t *testing.T) {
	var got map[string]any
	svc := newTestService(t, Config{Model: "text-embedding-3-large", Dimensions: 2}, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[0.5,0.5]}]}`))
	})

	vec, err := svc.Embed(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, vec)
	assert.Equal(t, 2.0, got["dimensions"])
}

func TestEmbedBatch_Empty(t *testing.T) {
	svc := newTestService(t, Config{}, func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("no request expected")
	})

	vecs, err := svc.EmbedBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	svc := newTestService(t, Config{}, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1]}]}`))
	})

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})

	assert.ErrorContains(t, err, "got 1 embeddings for 2 inputs")
}

func TestEmbedBatch_APIError(t *testing.T) {
	svc := newTestService(t, Config{}, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	})

	_, err := svc.Embed(context.Background(), "q")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key")
	assert.NotErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbed_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "q")

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}
