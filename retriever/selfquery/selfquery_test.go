//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package selfquery

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

type stubEmbedder struct{}

func (s *stubEmbedder) GetEmbedding(ctx context.Context, text string) ([]float64, error) {
	return []float64{1, 0}, nil
}

func (s *stubEmbedder) GetEmbeddingWithUsage(ctx context.Context, text string) ([]float64, map[string]any, error) {
	return []float64{1, 0}, nil, nil
}

func (s *stubEmbedder) GetDimensions() int { return 2 }

type stubGenerator struct {
	text  string
	err   error
	calls int

	lastPrompt      string
	lastTemperature *float64
}

func (s *stubGenerator) Generate(ctx context.Context, request *llm.Request) (*llm.Response, error) {
	s.calls++
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
		ID:      "solar-2023",
		Content: "solar report 2023",
		Metadata: map[string]any{
			"year":   2023,
			"topics": "solar, storage",
		},
	}, []float64{1, 0}))
	require.NoError(t, store.Add(ctx, &document.Document{
		ID:      "wind-2022",
		Content: "wind report 2022",
		Metadata: map[string]any{
			"year":   2022,
			"topics": "wind",
		},
	}, []float64{1, 0}))

	registry := vectorstore.NewRegistry()
	registry.Register("energy", store)
	return registry
}

func TestSelfQueryRetriever_ExtractedFilters(t *testing.T) {
	generator := &stubGenerator{text: "```json\n{\"year\": 2023}\n```"}
	r := New(&stubEmbedder{}, generator, newTestProvider(t))

	result, err := r.Retrieve(context.Background(), &retriever.Query{
		Text:       "reports from 2023",
		TopK:       5,
		Collection: "energy",
	})
	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	assert.Equal(t, "solar-2023", result.Documents[0].ID)

	// Extraction is deterministic.
	require.NotNil(t, generator.lastTemperature)
	assert.Equal(t, 0.0, *generator.lastTemperature)
	assert.Contains(t, generator.lastPrompt, "reports from 2023")
}

func TestSelfQueryRetriever_ExplicitFiltersSkipLLM(t *testing.T) {
	generator := &stubGenerator{text: `{"year": 2023}`}
	r := New(&stubEmbedder{}, generator, newTestProvider(t))

	result, err := r.Retrieve(context.Background(), &retriever.Query{
		Text:       "wind reports",
		TopK:       5,
		Collection: "energy",
		Filters:    map[string]any{"topics": "wind"},
	})
	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	assert.Equal(t, "wind-2022", result.Documents[0].ID)
	assert.Zero(t, generator.calls)
}

func TestSelfQueryRetriever_InvalidJSONFallsBackUnfiltered(t *testing.T) {
	generator := &stubGenerator{text: "no filters needed here"}
	r := New(&stubEmbedder{}, generator, newTestProvider(t))

	result, err := r.Retrieve(context.Background(), &retriever.Query{
		Text:       "anything",
		TopK:       5,
		Collection: "energy",
	})
	require.NoError(t, err)
	assert.Len(t, result.Documents, 2)
}

func TestSelfQueryRetriever_GeneratorErrorFallsBackUnfiltered(t *testing.T) {
	generator := &stubGenerator{err: errors.New("model unavailable")}
	r := New(&stubEmbedder{}, generator, newTestProvider(t))

	result, err := r.Retrieve(context.Background(), &retriever.Query{
		Text:       "anything",
		TopK:       5,
		Collection: "energy",
	})
	require.NoError(t, err)
	assert.Len(t, result.Documents, 2)
}

func TestSelfQueryRetriever_EmptyObjectMeansNoFilter(t *testing.T) {
	generator := &stubGenerator{text: "{}"}
	r := New(&stubEmbedder{}, generator, newTestProvider(t))

	result, err := r.Retrieve(context.Background(), &retriever.Query{
		Text:       "anything",
		TopK:       5,
		Collection: "energy",
	})
	require.NoError(t, err)
	assert.Len(t, result.Documents, 2)
}
