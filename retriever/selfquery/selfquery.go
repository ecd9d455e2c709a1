//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package selfquery implements the self-querying retrieval strategy: a
// language model decomposes the user query into structured metadata filters
// (year, topics, subtopic) which constrain an otherwise ordinary vector
// search.
package selfquery

import (
	"context"
	"encoding/json"
	"fmt"

	"trpc.group/trpc-go/trpc-rag-go/embedder"
	"trpc.group/trpc-go/trpc-rag-go/internal/textparse"
	"trpc.group/trpc-go/trpc-rag-go/llm"
	"trpc.group/trpc-go/trpc-rag-go/log"
	"trpc.group/trpc-go/trpc-rag-go/retriever"
	"trpc.group/trpc-go/trpc-rag-go/searchfilter"
	"trpc.group/trpc-go/trpc-rag-go/vectorstore"
)

// filterExtractionTemperature keeps filter extraction deterministic.
const filterExtractionTemperature = 0.0

// metadataFieldsDescription enumerates the filterable fields for the
// extraction prompt.
const metadataFieldsDescription = `- year (integer): The publication year of the document.
- topics (string): Comma-separated topic labels attached to the document.
- subtopic (string): Specific subtopic within the broader topic area.`

// filterExtractionPromptFormat carries the field descriptions and the user
// query; the model must answer with bare JSON.
const filterExtractionPromptFormat = `You are a metadata filter extractor. Given the user query, extract any metadata filters that should be applied. Return ONLY valid JSON with filter keys/values. If no filters are applicable, return an empty JSON object {}.

Available metadata fields:
%s

User query: %s

JSON filters:`

var _ retriever.Retriever = (*Retriever)(nil)

// Retriever performs filtered vector search. Explicitly supplied filters
// take precedence; otherwise the language model extracts them from the
// query text.
type Retriever struct {
	embedder  embedder.Embedder
	generator llm.Generator
	provider  retriever.Provider
}

// New creates a self-query retriever.
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
		return nil, fmt.Errorf("self-query retrieve: query text cannot be empty")
	}

	var condition *searchfilter.UniversalFilterCondition
	if len(query.Filters) > 0 {
		condition = searchfilter.BuildMetadataFilter(query.Filters)
	} else {
		condition = r.extractFilters(ctx, query.Text)
	}

	embedding, err := r.embedder.GetEmbedding(ctx, query.Text)
	if err != nil {
		return nil, fmt.Errorf("self-query retrieve: embed query: %w", err)
	}

	store, err := r.provider.Collection(query.Collection)
	if err != nil {
		return nil, fmt.Errorf("self-query retrieve: %w", err)
	}

	searchQuery := &vectorstore.SearchQuery{
		Vector:   embedding,
		Limit:    query.Limit(),
		MinScore: -1,
	}
	if condition != nil {
		searchQuery.Filter = &vectorstore.SearchFilter{FilterCondition: condition}
	}

	result, err := store.Search(ctx, searchQuery)
	if err != nil {
		return nil, fmt.Errorf("self-query retrieve: search: %w", err)
	}

	return &retriever.Result{Documents: retriever.ScoredDocuments(result)}, nil
}

// extractFilters asks the language model for structured filters. Extraction
// failures degrade to an unfiltered search rather than an error.
func (r *Retriever) extractFilters(ctx context.Context, query string) *searchfilter.UniversalFilterCondition {
	if r.generator == nil {
		return nil
	}

	temperature := filterExtractionTemperature
	response, err := r.generator.Generate(ctx, &llm.Request{
		Prompt:      fmt.Sprintf(filterExtractionPromptFormat, metadataFieldsDescription, query),
		Temperature: &temperature,
	})
	if err != nil {
		log.Warnf("LLM filter extraction failed: %v", err)
		return nil
	}

	raw := textparse.StripCodeFences(response.Text)
	if raw == "" {
		return nil
	}

	var filters map[string]any
	if err := json.Unmarshal([]byte(raw), &filters); err != nil {
		log.Warnf("LLM filter extraction returned invalid JSON: %v", err)
		return nil
	}
	if len(filters) == 0 {
		return nil
	}

	return searchfilter.BuildMetadataFilter(filters)
}
