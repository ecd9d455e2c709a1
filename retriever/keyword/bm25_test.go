//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package keyword

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/retriever"
	"trpc.group/trpc-go/trpc-rag-go/vectorstore"
	"trpc.group/trpc-go/trpc-rag-go/vectorstore/inmemory"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"solar", "power", "plants"}, Tokenize("Solar  Power\nPlants"))
	assert.Empty(t, Tokenize("   "))
}

func newTestProvider(t *testing.T) *vectorstore.Registry {
	t.Helper()
	ctx := context.Background()
	store := inmemory.New()

	corpus := map[string]string{
		"a": "solar power generation from solar panels",
		"b": "wind turbines generate power",
		"c": "hydro dams store excess energy",
	}
	for id, content := range corpus {
		require.NoError(t, store.Add(ctx, &document.Document{ID: id, Content: content}, []float64{1}))
	}

	registry := vectorstore.NewRegistry()
	registry.Register("energy", store)
	return registry
}

func TestBM25Retriever_RanksByTermRelevance(t *testing.T) {
	r := New(newTestProvider(t))

	// "solar" appears twice in document a and nowhere else.
	result, err := r.Retrieve(context.Background(), &retriever.Query{
		Text:       "solar",
		TopK:       2,
		Collection: "energy",
	})
	require.NoError(t, err)
	require.Len(t, result.Documents, 2)
	assert.Equal(t, "a", result.Documents[0].ID)
	assert.Equal(t, 0.6857, *result.Documents[0].Score)
	// The runner-up never mentions the term; it fills the requested depth
	// with a zero score.
	assert.Equal(t, "b", result.Documents[1].ID)
	assert.Equal(t, 0.0, *result.Documents[1].Score)
}

func TestBM25Retriever_LengthNormalizationFavorsShorterDocuments(t *testing.T) {
	r := New(newTestProvider(t))

	// "power" occurs once in both a and b; b is shorter, so it wins. Its
	// IDF is negative (the term is in two of three documents) and gets
	// floored rather than discarded.
	result, err := r.Retrieve(context.Background(), &retriever.Query{
		Text:       "power",
		TopK:       5,
		Collection: "energy",
	})
	require.NoError(t, err)
	require.Len(t, result.Documents, 3)
	assert.Equal(t, "b", result.Documents[0].ID)
	assert.Equal(t, 0.1187, *result.Documents[0].Score)
	assert.Equal(t, "a", result.Documents[1].ID)
	assert.Equal(t, 0.0991, *result.Documents[1].Score)
	assert.Equal(t, "c", result.Documents[2].ID)
	assert.Equal(t, 0.0, *result.Documents[2].Score)
}

func TestBM25Retriever_UnknownTermsReturnZeroScoredCorpus(t *testing.T) {
	r := New(newTestProvider(t))

	result, err := r.Retrieve(context.Background(), &retriever.Query{
		Text:       "zebra",
		TopK:       2,
		Collection: "energy",
	})
	require.NoError(t, err)
	require.Len(t, result.Documents, 2)
	// Ties keep the stable corpus order.
	assert.Equal(t, "a", result.Documents[0].ID)
	assert.Equal(t, "b", result.Documents[1].ID)
	for _, doc := range result.Documents {
		assert.Equal(t, 0.0, *doc.Score)
	}
}

func TestBM25Retriever_EmptyCollection(t *testing.T) {
	registry := vectorstore.NewRegistry()
	registry.Register("empty", inmemory.New())
	r := New(registry)

	result, err := r.Retrieve(context.Background(), &retriever.Query{
		Text:       "anything",
		TopK:       4,
		Collection: "empty",
	})
	require.NoError(t, err)
	assert.Empty(t, result.Documents)
}

func TestBM25Retriever_EmptyQuery(t *testing.T) {
	r := New(newTestProvider(t))

	_, err := r.Retrieve(context.Background(), &retriever.Query{Collection: "energy"})
	require.Error(t, err)
}
