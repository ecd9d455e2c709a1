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
	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/retriever/fusion"
	"trpc.group/trpc-go/trpc-rag-go/vectorstore"
)

// ScoredDocuments converts vector store search hits to documents with
// rounded similarity scores attached. Shared by the strategies that search
// by embedding.
func ScoredDocuments(result *vectorstore.SearchResult) []*document.Document {
	if result == nil {
		return nil
	}
	docs := make([]*document.Document, 0, len(result.Results))
	for _, scored := range result.Results {
		if scored == nil || scored.Document == nil {
			continue
		}
		docs = append(docs, scored.Document.WithScore(fusion.SimilarityScore(scored.Score)))
	}
	return docs
}
