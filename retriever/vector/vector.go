//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package vector implements the vanilla dense retrieval strategy: embed the
// query and rank the collection by cosine similarity.
package vector

import (
	"context"
	"fmt"

	"trpc.group/trpc-go/trpc-rag-go/embedder"
	"trpc.group/trpc-go/trpc-rag-go/retriever"
	"trpc.group/trpc-go/trpc-rag-go/vectorstore"
)

var _ retriever.Retriever = (*Retriever)(nil)

// Retriever performs cosine-similarity search over a collection. No metadata
// filters are applied; ranking relies on vector distance alone.
type Retriever struct {
	embedder embedder.Embedder
	provider retriever.Provider
}

// New creates a vanilla vector retriever.
func New(embedder embedder.Embedder, provider retriever.Provider) *Retriever {
	return &Retriever{
		embedder: embedder,
		provider: provider,
	}
}

// Retrieve implements retriever.Retriever.
func (r *Retriever) Retrieve(ctx context.Context, query *retriever.Query) (*retriever.Result, error) {
	if query == nil || query.Text == "" {
		return nil, fmt.Errorf("vector retrieve: query text cannot be empty")
	}

	embedding, err := r.embedder.GetEmbedding(ctx, query.Text)
	if err != nil {
		return nil, fmt.Errorf("vector retrieve: embed query: %w", err)
	}

	store, err := r.provider.Collection(query.Collection)
	if err != nil {
		return nil, fmt.Errorf("vector retrieve: %w", err)
	}

	result, err := store.Search(ctx, &vectorstore.SearchQuery{
		Vector: embedding,
		Limit:  query.Limit(),
		// Similarity can be negative for opposing vectors; rank, don't threshold.
		MinScore: -1,
	})
	if err != nil {
		return nil, fmt.Errorf("vector retrieve: search: %w", err)
	}

	return &retriever.Result{Documents: retriever.ScoredDocuments(result)}, nil
}
