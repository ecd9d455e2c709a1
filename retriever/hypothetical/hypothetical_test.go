//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package hypothetical

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/llm"
	"trpc.group/trpc-go/trpc-rag-go/retriever"
	"trpc.group/trpc-go/trpc-rag-go/vectorstore"
	"trpc.group/trpc-go/trpc-rag-go/vectorstore/inmemory"
)

// mappedEmbedder returns a fixed vector per input text so tests can steer
// which corpus document a search lands on.
type mappedEmbedder struct {
	vectors  map[string][]float64
	fallback []float64
}

func (m *mappedEmbedder) GetEmbedding(ctx context.Context, text string) ([]float64, error) {
	if vector, ok := m.vectors[text]; ok {
		return vector, nil
	}
	return m.fallback, nil
}

func (m *mappedEmbedder) GetEmbeddingWithUsage(ctx context.Context, text string) ([]float64, map[string]any, error) {
	vector, err := m.GetEmbedding(ctx, text)
	return vector, nil, err
}

func (m *mappedEmbedder) GetDimensions() int { return 2 }

type stubGenerator struct {
	text string
	err  error

	lastPrompt      string
	lastTemperature *float64
}

func (s *stubGenerator) Generate(ctx context.Context, request *llm.Request) (*llm.Response, error) {
	s.lastPrompt = request.Prompt
	s.lastTemperature = request.Temperature
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Text: s.text}, nil
}

func (s *stubGenerator) Info() llm.Info { return llm.Info{Name: "stub-llm"} }

func newTestProvider(t *testing.T) *vectorstore.Registry {
	t.Helper()
	ctx := context.Background()
	store := inmemory.New()

	require.NoError(t, store.Add(ctx, &document.Document{
		ID:      "solar",
		Content: "solar panel efficiency depends on cell temperature",
	}, []float64{1, 0}))
	require.NoError(t, store.Add(ctx, &document.Document{
		ID:      "wind",
		Content: "wind turbine output varies with blade length",
	}, []float64{0, 1}))

	registry := vectorstore.NewRegistry()
	registry.Register("energy", store)
	return registry
}

func TestHypotheticalRetriever_SearchesWithGeneratedPassage(t *testing.T) {
	const passage = "Solar panels convert sunlight into electricity using photovoltaic cells."
	generator := &stubGenerator{text: passage}
	emb := &mappedEmbedder{
		vectors: map[string][]float64{
			passage:              {1, 0},
			"how do panels work": {0, 1},
		},
		fallback: []float64{0, 1},
	}
	r := New(emb, generator, newTestProvider(t))

	result, err := r.Retrieve(context.Background(), &retriever.Query{
		Text:       "how do panels work",
		TopK:       1,
		Collection: "energy",
	})
	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	assert.Equal(t, "solar", result.Documents[0].ID)

	assert.Contains(t, generator.lastPrompt, "how do panels work")
	require.NotNil(t, generator.lastTemperature)
	assert.Equal(t, 0.7, *generator.lastTemperature)
}

func TestHypotheticalRetriever_GenerationFailureUsesOriginalQuery(t *testing.T) {
	generator := &stubGenerator{err: errors.New("model unavailable")}
	emb := &mappedEmbedder{
		vectors: map[string][]float64{
			"how do panels work": {0, 1},
		},
		fallback: []float64{1, 0},
	}
	r := New(emb, generator, newTestProvider(t))

	result, err := r.Retrieve(context.Background(), &retriever.Query{
		Text:       "how do panels work",
		TopK:       1,
		Collection: "energy",
	})
	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	assert.Equal(t, "wind", result.Documents[0].ID)
}

func TestHypotheticalRetriever_NilGeneratorUsesOriginalQuery(t *testing.T) {
	emb := &mappedEmbedder{fallback: []float64{0, 1}}
	r := New(emb, nil, newTestProvider(t))

	result, err := r.Retrieve(context.Background(), &retriever.Query{
		Text:       "anything",
		TopK:       1,
		Collection: "energy",
	})
	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	assert.Equal(t, "wind", result.Documents[0].ID)
}

func TestHypotheticalRetriever_ExplicitFiltersApply(t *testing.T) {
	ctx := context.Background()
	store := inmemory.New()
	require.NoError(t, store.Add(ctx, &document.Document{
		ID:       "recent",
		Content:  "grid storage overview",
		Metadata: map[string]any{"year": 2024},
	}, []float64{1, 0}))
	require.NoError(t, store.Add(ctx, &document.Document{
		ID:       "old",
		Content:  "grid storage history",
		Metadata: map[string]any{"year": 2015},
	}, []float64{1, 0}))
	registry := vectorstore.NewRegistry()
	registry.Register("energy", store)

	emb := &mappedEmbedder{fallback: []float64{1, 0}}
	r := New(emb, &stubGenerator{text: "Grid storage smooths supply."}, registry)

	result, err := r.Retrieve(ctx, &retriever.Query{
		Text:       "grid storage",
		TopK:       5,
		Collection: "energy",
		Filters:    map[string]any{"year": 2024},
	})
	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	assert.Equal(t, "recent", result.Documents[0].ID)
}

func TestHypotheticalRetriever_EmptyQuery(t *testing.T) {
	r := New(&mappedEmbedder{fallback: []float64{1, 0}}, nil, newTestProvider(t))

	_, err := r.Retrieve(context.Background(), &retriever.Query{Collection: "energy"})
	require.Error(t, err)

	_, err = r.Retrieve(context.Background(), nil)
	require.Error(t, err)
}
