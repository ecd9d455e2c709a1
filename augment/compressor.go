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
	"strings"

	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/llm"
	"trpc.group/trpc-go/trpc-rag-go/log"
)

// NoRelevantContent is the fixed reply the extractor is instructed to give
// when a document contains nothing relevant to the query. Callers can
// compare against it to drop empty extractions.
const NoRelevantContent = "No relevant content found."

const (
	// compressionTemperature keeps extraction deterministic.
	compressionTemperature = 0.0

	// maxPromptDocumentChars bounds how much of a document the extractor
	// sees in one prompt.
	maxPromptDocumentChars = 4000

	// fallbackExcerptChars is how much raw content survives when
	// extraction fails for a document.
	fallbackExcerptChars = 500
)

const compressionPromptFormat = `Extract ONLY the sentences from the following document that are directly relevant to the query. Do not add any commentary. If nothing is relevant, respond with 'No relevant content found.'

Query: %s

Document:
%s

Relevant excerpt:`

// Compressor shrinks each retrieved document to the sentences relevant to
// the query, one model call per document.
type Compressor struct {
	generator llm.Generator
}

// NewCompressor creates a context compressor backed by the given generator.
func NewCompressor(generator llm.Generator) *Compressor {
	return &Compressor{generator: generator}
}

// Compress returns the documents in their original order with content
// replaced by the extracted excerpt. Scores and metadata are left untouched.
// A document whose extraction fails keeps a truncated slice of its raw
// content instead; only a compressor-wide failure (no generator) is
// reported as an error, and even then truncated documents are returned.
func (c *Compressor) Compress(ctx context.Context, query string, docs []*document.Document) ([]*document.Document, error) {
	if len(docs) == 0 {
		return docs, nil
	}
	if c.generator == nil {
		compressed := make([]*document.Document, 0, len(docs))
		for _, doc := range docs {
			compressed = append(compressed, excerptFallback(doc))
		}
		return compressed, ErrNoGenerator
	}

	temperature := compressionTemperature
	compressed := make([]*document.Document, 0, len(docs))
	for _, doc := range docs {
		if doc.Content == "" {
			compressed = append(compressed, doc.Clone())
			continue
		}

		prompt := fmt.Sprintf(compressionPromptFormat, query,
			truncateRunes(doc.Content, maxPromptDocumentChars))
		response, err := c.generator.Generate(ctx, &llm.Request{
			Prompt:      prompt,
			Temperature: &temperature,
		})
		if err != nil {
			log.Warnf("compression failed for document %s (%v), keeping truncated content", doc.ID, err)
			compressed = append(compressed, excerptFallback(doc))
			continue
		}

		clone := doc.Clone()
		clone.Content = strings.TrimSpace(response.Text)
		compressed = append(compressed, clone)
	}
	return compressed, nil
}

func excerptFallback(doc *document.Document) *document.Document {
	clone := doc.Clone()
	clone.Content = truncateRunes(doc.Content, fallbackExcerptChars)
	return clone
}
