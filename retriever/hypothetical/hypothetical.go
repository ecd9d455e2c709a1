//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package hypothetical implements HyDE-style retrieval: a language model
// writes a plausible answer passage first, and that passage, not the user's
// question, is embedded for the similarity search. Hypothetical answers
// tend to sit closer to real answer passages in embedding space than short
// questions do, which improves recall.
package hypothetical

import (
	"context"
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-rag-go/embedder"
	"trpc.group/trpc-go/trpc-rag-go/llm"
	"trpc.group/trpc-go/trpc-rag-go/log"
	"trpc.group/trpc-go/trpc-rag-go/retriever"
	"trpc.group/trpc-go/trpc-rag-go/searchfilter"
	"trpc.group/trpc-go/trpc-rag-go/vectorstore"
)

// generationTemperature keeps hypothetical passages varied; a deterministic
// passage would anchor recall to a single phrasing.
const generationTemperature = 0.7

// passagePromptFormat asks for the ideal answer to the question.
const passagePromptFormat = `Write a short factual paragraph that would be the ideal answer to the following question. Be specific and include relevant technical details.

Question: %s

Answer:`

var _ retriever.Retriever = (*Retriever)(nil)

// Retriever generates a hypothetical answer passage and searches with it.
type Retriever struct {
	embedder  embedder.Embedder
	generator llm.Generator
	provider  retriever.Provider
}

// New creates a hypothetical-document retriever.
func New(embedder embedder.Embedder, generator llm.Generator, provider retriever.Provider) *Retriever {
	return &Retriever{
		embedder:  embedder,
		generator: generator,
		provider:  provider,
	}
}

// Retrieve implements retriever.Retriever.
func (r *Retriever) Retrieve(ctx context.Context, query *retriever.Query) (*retriever.Result, error) {
	if query == nil || query.Text == "" {
		return nil, fmt.Errorf("hypothetical retrieve: query text cannot be empty")
	}

	passage := r.generatePassage(ctx, query.Text)

	embedding, err := r.embedder.GetEmbedding(ctx, passage)
	if err != nil {
		return nil, fmt.Errorf("hypothetical retrieve: embed passage: %w", err)
	}

	store, err := r.provider.Collection(query.Collection)
	if err != nil {
		return nil, fmt.Errorf("hypothetical retrieve: %w", err)
	}

	searchQuery := &vectorstore.SearchQuery{
		Vector:   embedding,
		Limit:    query.Limit(),
		MinScore: -1,
	}
	if condition := searchfilter.BuildMetadataFilter(query.Filters); condition != nil {
		searchQuery.Filter = &vectorstore.SearchFilter{FilterCondition: condition}
	}

	result, err := store.Search(ctx, searchQuery)
	if err != nil {
		return nil, fmt.Errorf("hypothetical retrieve: search: %w", err)
	}

	return &retriever.Result{Documents: retriever.ScoredDocuments(result)}, nil
}

// generatePassage asks the language model for a hypothetical answer. On
// failure the original query text is used so retrieval still proceeds.
func (r *Retriever) generatePassage(ctx context.Context, query string) string {
	if r.generator == nil {
		return query
	}

	temperature := generationTemperature
	response, err := r.generator.Generate(ctx, &llm.Request{
		Prompt:      fmt.Sprintf(passagePromptFormat, query),
		Temperature: &temperature,
	})
	if err != nil {
		log.Warnf("hypothetical generation failed (%v), using original query", err)
		return query
	}

	passage := strings.TrimSpace(response.Text)
	if passage == "" {
		return query
	}
	return passage
}
