package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragchat/internal/core/domain"
)

type embeddingsHandler struct {
	dim      int
	requests atomic.Int32
	status   int
}

func (h *embeddingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.status != 0 {
		w.WriteHeader(h.status)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "nope", "type": "invalid_request_error"},
		})
		return
	}

	switch r.URL.Path {
	case "/v1/models":
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"id": "text-embedding-3-small", "object": "model"}},
		})
	case "/v1/embeddings":
		h.requests.Add(1)
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		data := make([]map[string]any, len(req.Input))
		for i, in := range req.Input {
			vec := make([]float32, h.dim)
			vec[0] = float32(len(in))
			data[i] = map[string]any{"object": "embedding", "index": i, "embedding": vec}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  req.Model,
			"data":   data,
		})
	default:
		http.NotFound(w, r)
	}
}

func newTestService(t *testing.T, h http.Handler, cfg Config) *EmbeddingService {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg.APIKey = "test-key"
	cfg.BaseURL = srv.URL + "/v1"
	cfg.RequestsPerSecond = 1000
	svc, err := NewEmbeddingService(cfg)
	require.NoError(t, err)
	return svc
}

func TestNewEmbeddingService_RequiresKeyOrBaseURL(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.Error(t, err)

	svc, err := NewEmbeddingService(Config{BaseURL: "http://localhost:11434/v1", Model: "nomic-embed-text"})
	require.NoError(t, err)
	assert.Equal(t, 768, svc.Dimensions())
	assert.Equal(t, "nomic-embed-text", svc.ModelName())
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, 1536, svc.Dimensions())
	assert.Equal(t, DefaultBatchSize, svc.batchSize)
}

func TestEmbedBatch_BatchesAndPreservesOrder(t *testing.T) {
	h := &embeddingsHandler{dim: 4}
	svc := newTestService(t, h, Config{Model: "custom", BatchSize: 2})

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	vecs, err := svc.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vecs, len(texts))

	for i, text := range texts {
		assert.Equal(t, float32(len(text)), vecs[i][0])
	}
	assert.Equal(t, int32(3), h.requests.Load())
	assert.Equal(t, 4, svc.Dimensions(), "dimension learned from the first response")
}

func TestEmbedBatch_Empty(t *testing.T) {
	h := &embeddingsHandler{dim: 4}
	svc := newTestService(t, h, Config{Model: "custom"})

	vecs, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
	assert.Zero(t, h.requests.Load())
}

func TestEmbed_DimensionMismatchIsConfiguration(t *testing.T) {
	h := &embeddingsHandler{dim: 4}
	svc := newTestService(t, h, Config{Model: "custom", Dimensions: 8})

	_, err := svc.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestEmbed_ErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrConfiguration},
		{http.StatusNotFound, domain.ErrConfiguration},
		{http.StatusTooManyRequests, domain.ErrUpstream},
		{http.StatusInternalServerError, domain.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			svc := newTestService(t, &embeddingsHandler{status: tt.status}, Config{Model: "custom"})
			_, err := svc.Embed(context.Background(), "text")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPing(t *testing.T) {
	svc := newTestService(t, &embeddingsHandler{dim: 4}, Config{})
	assert.NoError(t, svc.Ping(context.Background()))

	bad := newTestService(t, &embeddingsHandler{status: http.StatusUnauthorized}, Config{})
	assert.ErrorIs(t, bad.Ping(context.Background()), domain.ErrConfiguration)
}

func TestEmbed_Cancelled(t *testing.T) {
	svc := newTestService(t, &embeddingsHandler{dim: 4}, Config{Model: "custom"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Embed(ctx, "text")
	assert.Error(t, err)
}
