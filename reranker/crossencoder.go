//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package reranker

import (
	"context"
	"fmt"
	"sort"

	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/internal/numeric"
	"trpc.group/trpc-go/trpc-rag-go/log"
)

const (
	// DefaultCrossEncoderModel is the default cross-encoder model name.
	DefaultCrossEncoderModel = "cross-encoder/ms-marco-MiniLM-L-6-v2"

	// defaultTopN is the default number of results kept after reranking.
	defaultTopN = 5

	// scorePlaces is the decimal precision of attached relevance scores.
	scorePlaces = 4
)

// MetaIsReranked marks documents whose score came from the cross-encoder.
const MetaIsReranked = "is_reranked"

// Scorer scores query-document pairs. Implementations typically wrap a
// cross-encoder model loaded in process or served over the network.
type Scorer interface {
	// ScorePairs returns one relevance score per document, aligned by index.
	ScorePairs(ctx context.Context, query string, documents []string) ([]float64, error)

	// Name returns the model identifier for logging.
	Name() string
}

// CrossEncoderReranker re-scores and re-orders results with a cross-encoder
// model. Evaluating the query and document together is slower than a
// bi-encoder pass but considerably more precise, which is why it runs after
// retrieval on a small candidate set.
type CrossEncoderReranker struct {
	scorer Scorer
	topN   int
}

var _ Reranker = (*CrossEncoderReranker)(nil)

// CrossEncoderOption represents a functional option for configuring CrossEncoderReranker.
type CrossEncoderOption func(*CrossEncoderReranker)

// WithTopN sets the number of results kept after reranking.
func WithTopN(topN int) CrossEncoderOption {
	return func(r *CrossEncoderReranker) {
		if topN <= 0 {
			topN = defaultTopN
		}
		r.topN = topN
	}
}

// NewCrossEncoderReranker creates a cross-encoder reranker backed by the
// given scorer.
func NewCrossEncoderReranker(scorer Scorer, opts ...CrossEncoderOption) *CrossEncoderReranker {
	r := &CrossEncoderReranker{
		scorer: scorer,
		topN:   defaultTopN,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Rerank scores every (query, content) pair, sorts descending by score and
// keeps the top N results. When scoring fails, the first N results are
// returned in their input order together with the error, so callers can
// degrade gracefully instead of dropping the result set.
func (r *CrossEncoderReranker) Rerank(ctx context.Context, query string, results []*Result) ([]*Result, error) {
	if len(results) == 0 {
		return results, nil
	}
	if r.scorer == nil {
		return truncateResults(results, r.topN), fmt.Errorf("cross-encoder scorer is not configured")
	}

	contents := make([]string, len(results))
	for i, result := range results {
		if result.Document != nil {
			contents[i] = result.Document.Content
		}
	}

	scores, err := r.scorer.ScorePairs(ctx, query, contents)
	if err != nil {
		log.Errorf("cross-encoder reranking with %s failed: %v", r.scorer.Name(), err)
		return truncateResults(results, r.topN), fmt.Errorf("cross-encoder scoring: %w", err)
	}
	if len(scores) != len(results) {
		err := fmt.Errorf("scorer returned %d scores for %d documents", len(scores), len(results))
		log.Errorf("cross-encoder reranking with %s failed: %v", r.scorer.Name(), err)
		return truncateResults(results, r.topN), err
	}

	reranked := make([]*Result, len(results))
	for i, result := range results {
		score := numeric.Round(scores[i], scorePlaces)
		doc := result.Document.WithScore(score)
		if doc.Metadata == nil {
			doc.Metadata = make(map[string]any)
		}
		doc.Metadata[MetaIsReranked] = true
		reranked[i] = &Result{Document: doc, Score: score}
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Score > reranked[j].Score
	})

	return truncateResults(reranked, r.topN), nil
}

func truncateResults(results []*Result, n int) []*Result {
	if n <= 0 || len(results) <= n {
		return results
	}
	return results[:n]
}

// ResultsFromDocuments wraps documents as rankable results, carrying over any
// score already attached.
func ResultsFromDocuments(docs []*document.Document) []*Result {
	results := make([]*Result, 0, len(docs))
	for _, doc := range docs {
		result := &Result{Document: doc}
		if doc != nil && doc.Score != nil {
			result.Score = *doc.Score
		}
		results = append(results, result)
	}
	return results
}

// DocumentsFromResults unwraps ranked results back to their documents.
func DocumentsFromResults(results []*Result) []*document.Document {
	docs := make([]*document.Document, 0, len(results))
	for _, result := range results {
		docs = append(docs, result.Document)
	}
	return docs
}
