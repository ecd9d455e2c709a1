//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package retriever defines the contract shared by every retrieval strategy.
//
// A strategy is stateless across calls: each Retrieve builds its result set
// from scratch against the named collection. Zero results is a normal
// outcome, not an error; only unrecoverable backend failures are returned
// as errors.
package retriever

import (
	"context"

	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/vectorstore"
)

// DefaultTopK is the number of documents returned when a query does not set one.
const DefaultTopK = 4

// Retriever is the common contract implemented by every retrieval strategy.
type Retriever interface {
	// Retrieve finds the most relevant documents for a query.
	Retrieve(ctx context.Context, query *Query) (*Result, error)
}

// Query represents a retrieval request.
type Query struct {
	// Text is the query text.
	Text string

	// TopK is the number of documents to return. Non-positive values fall
	// back to DefaultTopK.
	TopK int

	// Collection names the document collection to search. Empty selects the
	// provider's default collection.
	Collection string

	// Filters carries the recognized metadata constraints
	// (year, topics, subtopic). Absent keys mean no constraint.
	Filters map[string]any
}

// Limit returns the effective top-k for the query.
func (q *Query) Limit() int {
	if q == nil || q.TopK <= 0 {
		return DefaultTopK
	}
	return q.TopK
}

// Result represents an ordered set of retrieved documents, most relevant first.
type Result struct {
	// Documents contains the retrieved documents with their scores attached.
	Documents []*document.Document
}

// Provider resolves a collection name to its backing vector store.
// *vectorstore.Registry satisfies it.
type Provider interface {
	Collection(name string) (vectorstore.VectorStore, error)
}
