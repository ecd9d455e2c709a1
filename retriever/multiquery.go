//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package retriever

import (
	"context"
	"fmt"

	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/retriever/fusion"
)

// RetrieveMultiQuery runs the retriever once per query variant and merges
// the results, deduplicating by exact trimmed content. The first occurrence
// wins and variants are not re-ranked against each other. The base query
// supplies top-k, collection and filters; empty variants are skipped.
func RetrieveMultiQuery(ctx context.Context, r Retriever, base *Query, variants []string) (*Result, error) {
	if r == nil {
		return nil, fmt.Errorf("multi-query retrieve: retriever cannot be nil")
	}
	if base == nil {
		base = &Query{}
	}

	var merged []*document.Document
	for _, variant := range variants {
		if variant == "" {
			continue
		}
		result, err := r.Retrieve(ctx, &Query{
			Text:       variant,
			TopK:       base.Limit(),
			Collection: base.Collection,
			Filters:    base.Filters,
		})
		if err != nil {
			return nil, fmt.Errorf("multi-query retrieve %q: %w", variant, err)
		}
		merged = append(merged, result.Documents...)
	}

	return &Result{Documents: fusion.DedupeByContent(merged)}, nil
}
