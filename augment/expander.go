//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package augment

import (
	"context"
	"fmt"

	"trpc.group/trpc-go/trpc-rag-go/internal/textparse"
	"trpc.group/trpc-go/trpc-rag-go/llm"
	"trpc.group/trpc-go/trpc-rag-go/log"
)

// expansionTemperature adds mild variation so the rewordings differ from
// each other without drifting off the question.
const expansionTemperature = 0.3

const expansionPromptFormat = `You are an expert in information retrieval systems, particularly skilled in enhancing queries for document search efficiency.

Perform query expansion on the received question by considering alternative phrasings or synonyms commonly used in document retrieval contexts.

If there are multiple ways to phrase the user's question or common synonyms for key terms, provide several reworded versions.

If there are acronyms or words you are not familiar with, do not try to rephrase them.

Return at least 3 versions of the question as a list.
Generate only a list of questions. Do not mention anything before or after the list.

Question:
%s`

// Expander rewrites a query into alternative phrasings to improve recall.
type Expander struct {
	generator llm.Generator
}

// NewExpander creates a query expander backed by the given generator.
func NewExpander(generator llm.Generator) *Expander {
	return &Expander{generator: generator}
}

// Expand returns the query variants, original query first. The variants are
// the model's rewordings, one per line, with list markers stripped. On any
// failure the original query is returned as the sole variant together with
// the error, so callers always have something to search with.
func (e *Expander) Expand(ctx context.Context, query string) ([]string, error) {
	if query == "" {
		return nil, fmt.Errorf("augment expand: query cannot be empty")
	}
	if e.generator == nil {
		return []string{query}, ErrNoGenerator
	}

	temperature := expansionTemperature
	response, err := e.generator.Generate(ctx, &llm.Request{
		Prompt:      fmt.Sprintf(expansionPromptFormat, query),
		Temperature: &temperature,
	})
	if err != nil {
		log.Warnf("query expansion failed (%v), using original query", err)
		return []string{query}, fmt.Errorf("augment expand: %w", err)
	}

	var variants []string
	seenOriginal := false
	for _, line := range textparse.Lines(response.Text) {
		variant := textparse.StripEnumerationMarker(line)
		if variant == "" {
			continue
		}
		if variant == query {
			seenOriginal = true
		}
		variants = append(variants, variant)
	}

	if !seenOriginal {
		variants = append([]string{query}, variants...)
	}
	return variants, nil
}
