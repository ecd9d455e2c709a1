//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package hybrid implements ensemble retrieval: a dense vector leg and a
// sparse BM25 leg are fetched independently and fused with reciprocal rank
// fusion.
package hybrid

import (
	"context"
	"fmt"
	"sync"

	"trpc.group/trpc-go/trpc-rag-go/retriever"
	"trpc.group/trpc-go/trpc-rag-go/retriever/fusion"
)

// fetchMultiplier over-fetches each leg so fusion has enough distinct
// candidates to work with.
const fetchMultiplier = 3

var _ retriever.Retriever = (*Retriever)(nil)

// Retriever fuses a vector leg and a keyword leg with RRF.
type Retriever struct {
	vector  retriever.Retriever
	keyword retriever.Retriever

	vectorWeight  float64
	keywordWeight float64
}

// Option represents a functional option for configuring Retriever.
type Option func(*Retriever)

// WithWeights sets the per-leg fusion weights.
func WithWeights(vectorWeight, keywordWeight float64) Option {
	return func(r *Retriever) {
		if vectorWeight > 0 {
			r.vectorWeight = vectorWeight
		}
		if keywordWeight > 0 {
			r.keywordWeight = keywordWeight
		}
	}
}

// New creates a hybrid retriever over the given legs.
func New(vector retriever.Retriever, keyword retriever.Retriever, opts ...Option) *Retriever {
	r := &Retriever{
		vector:        vector,
		keyword:       keyword,
		vectorWeight:  fusion.DefaultWeight,
		keywordWeight: fusion.DefaultWeight,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Retrieve implements retriever.Retriever. The two legs are independent
// read-only searches over separate term spaces, so they run concurrently;
// either leg failing fails the whole retrieval.
func (r *Retriever) Retrieve(ctx context.Context, query *retriever.Query) (*retriever.Result, error) {
	if query == nil || query.Text == "" {
		return nil, fmt.Errorf("hybrid retrieve: query text cannot be empty")
	}

	legQuery := &retriever.Query{
		Text:       query.Text,
		TopK:       query.Limit() * fetchMultiplier,
		Collection: query.Collection,
		Filters:    query.Filters,
	}

	var vectorRes, keywordRes *retriever.Result
	var vectorErr, keywordErr error

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		vectorRes, vectorErr = r.vector.Retrieve(ctx, legQuery)
	}()
	go func() {
		defer wg.Done()
		keywordRes, keywordErr = r.keyword.Retrieve(ctx, legQuery)
	}()
	wg.Wait()

	if vectorErr != nil {
		return nil, fmt.Errorf("hybrid retrieve: vector leg: %w", vectorErr)
	}
	if keywordErr != nil {
		return nil, fmt.Errorf("hybrid retrieve: keyword leg: %w", keywordErr)
	}

	fused := fusion.ReciprocalRankFusion([]fusion.RankedList{
		{Weight: r.vectorWeight, Documents: vectorRes.Documents},
		{Weight: r.keywordWeight, Documents: keywordRes.Documents},
	}, query.Limit())

	return &retriever.Result{Documents: fused}, nil
}
