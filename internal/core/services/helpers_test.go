package services

import (
	"context"
	"io"
	"sync"

	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
)

// --- Mock implementations ---

// fakeEmbedder implements driven.EmbeddingService with fixed vectors per text.
// Unknown texts embed to a vector whose first element is the text length.
type fakeEmbedder struct {
	dims    int
	vectors map[string][]float32
	err     error

	// entered, if set, receives once per EmbedBatch call before release is awaited.
	entered chan struct{}
	release chan struct{}

	mu      sync.Mutex
	batches [][]string
	queries []string
}

func (f *fakeEmbedder) vector(text string) []float32 {
	if v, ok := f.vectors[text]; ok {
		return v
	}
	v := make([]float32, f.dims)
	if f.dims > 0 {
		v[0] = float32(len(text))
	}
	return v
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.queries = append(f.queries, text)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.vector(text), nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.batches = append(f.batches, append([]string(nil), texts...))
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vector(t)
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int   { return f.dims }
func (f *fakeEmbedder) ModelName() string { return "fake-embed" }
func (f *fakeEmbedder) Ping(context.Context) error {
	return nil
}
func (f *fakeEmbedder) Close() error { return nil }

func (f *fakeEmbedder) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

// identityPreprocessor implements driven.TextPreprocessor without any dictionaries.
type identityPreprocessor struct{}

func (identityPreprocessor) Preprocess(text string) string { return text }

// fakeLLM implements driven.LLMService with canned completions and chunks.
type fakeLLM struct {
	completion  string
	completeErr error
	chunks      []string
	streamErr   error
	recvErr     error
	models      []string

	// gate, if set, must yield a value before each chunk is returned.
	gate chan struct{}

	mu         sync.Mutex
	completes  []driven.CompletionRequest
	streamReqs []driven.CompletionRequest
}

func (f *fakeLLM) Complete(_ context.Context, req driven.CompletionRequest) (string, error) {
	f.mu.Lock()
	f.completes = append(f.completes, req)
	f.mu.Unlock()
	return f.completion, f.completeErr
}

func (f *fakeLLM) Stream(ctx context.Context, req driven.CompletionRequest) (driven.ChatStream, error) {
	f.mu.Lock()
	f.streamReqs = append(f.streamReqs, req)
	f.mu.Unlock()
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return &fakeStream{ctx: ctx, chunks: f.chunks, recvErr: f.recvErr, gate: f.gate}, nil
}

func (f *fakeLLM) ListModels(context.Context) ([]string, error) { return f.models, nil }
func (f *fakeLLM) ModelName() string                            { return domain.DefaultChatModel }
func (f *fakeLLM) Ping(context.Context) error                   { return nil }
func (f *fakeLLM) Close() error                                 { return nil }

func (f *fakeLLM) lastStream() driven.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.streamReqs[len(f.streamReqs)-1]
}

type fakeStream struct {
	ctx     context.Context
	chunks  []string
	i       int
	recvErr error
	gate    chan struct{}
	closed  bool
}

func (s *fakeStream) Recv() (string, error) {
	if err := s.ctx.Err(); err != nil {
		return "", err
	}
	if s.i >= len(s.chunks) {
		if s.recvErr != nil {
			return "", s.recvErr
		}
		return "", io.EOF
	}
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-s.ctx.Done():
			return "", s.ctx.Err()
		}
	}
	chunk := s.chunks[s.i]
	s.i++
	return chunk, nil
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

// mapPromptStore implements driven.PromptStore from a map.
type mapPromptStore map[string]string

func newTestPrompts() mapPromptStore {
	return mapPromptStore{
		driven.PromptQueryCompose:  "History:\n%s\nQuestion:\n%s\nQuery:",
		driven.PromptChatSystem:    "You are a friendly chatbot named Ragchat. Respond in markdown.",
		driven.PromptContextPrefix: "use the following docs as context information",
	}
}

func (m mapPromptStore) Load(name string) (string, error) {
	p, ok := m[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m mapPromptStore) Reload() {}

// fakeRetriever implements driving.Retriever.
type fakeRetriever struct {
	docs string
	err  error

	mu      sync.Mutex
	queries []string
}

func (f *fakeRetriever) Retrieve(_ context.Context, query, _ string, _ int) (string, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	return f.docs, f.err
}

func (f *fakeRetriever) Search(context.Context, string, string, int) ([]domain.RetrievedPassage, error) {
	return nil, f.err
}
