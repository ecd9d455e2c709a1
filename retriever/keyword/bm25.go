//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package keyword implements sparse lexical retrieval with Okapi BM25. The
// whole collection is tokenized per call; there is no persistent index, so
// results always reflect the current corpus. Acceptable for small corpora,
// a scaling risk beyond that.
package keyword

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/internal/numeric"
	"trpc.group/trpc-go/trpc-rag-go/retriever"
)

const (
	// defaultK1 controls term-frequency saturation.
	defaultK1 = 1.5
	// defaultB controls document-length normalization.
	defaultB = 0.75
	// defaultEpsilon floors negative IDF values as a fraction of the average IDF.
	defaultEpsilon = 0.25

	// scorePlaces is the decimal precision of attached BM25 scores.
	scorePlaces = 4
)

// Tokenize lower-cases and whitespace-splits text. Corpus and query must go
// through the same tokenizer for term statistics to line up.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

var _ retriever.Retriever = (*Retriever)(nil)

// Retriever scores the full collection with Okapi BM25 and returns the
// top-k documents. Scores are preserved as-is, not normalized.
type Retriever struct {
	provider retriever.Provider

	k1      float64
	b       float64
	epsilon float64
}

// Option represents a functional option for configuring Retriever.
type Option func(*Retriever)

// WithK1 sets the term-frequency saturation parameter.
func WithK1(k1 float64) Option {
	return func(r *Retriever) {
		if k1 > 0 {
			r.k1 = k1
		}
	}
}

// WithB sets the document-length normalization parameter.
func WithB(b float64) Option {
	return func(r *Retriever) {
		if b >= 0 && b <= 1 {
			r.b = b
		}
	}
}

// WithEpsilon sets the negative-IDF floor fraction.
func WithEpsilon(epsilon float64) Option {
	return func(r *Retriever) {
		if epsilon >= 0 {
			r.epsilon = epsilon
		}
	}
}

// New creates a BM25 keyword retriever.
func New(provider retriever.Provider, opts ...Option) *Retriever {
	r := &Retriever{
		provider: provider,
		k1:       defaultK1,
		b:        defaultB,
		epsilon:  defaultEpsilon,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Retrieve implements retriever.Retriever. An empty collection yields an
// empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query *retriever.Query) (*retriever.Result, error) {
	if query == nil || query.Text == "" {
		return nil, fmt.Errorf("bm25 retrieve: query text cannot be empty")
	}

	store, err := r.provider.Collection(query.Collection)
	if err != nil {
		return nil, fmt.Errorf("bm25 retrieve: %w", err)
	}

	docs, err := store.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("bm25 retrieve: list documents: %w", err)
	}
	if len(docs) == 0 {
		return &retriever.Result{}, nil
	}

	corpus := make([][]string, len(docs))
	for i, doc := range docs {
		corpus[i] = Tokenize(doc.Content)
	}

	index := newBM25Index(corpus, r.k1, r.b, r.epsilon)
	scores := index.scores(Tokenize(query.Text))

	// Rank corpus positions by score, stable over corpus order.
	order := make([]int, len(docs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	limit := query.Limit()
	if limit > len(order) {
		limit = len(order)
	}

	ranked := make([]*document.Document, 0, limit)
	for _, idx := range order[:limit] {
		ranked = append(ranked, docs[idx].WithScore(numeric.Round(scores[idx], scorePlaces)))
	}

	return &retriever.Result{Documents: ranked}, nil
}

// bm25Index holds the term statistics for a tokenized corpus.
type bm25Index struct {
	termFreqs []map[string]int
	idf       map[string]float64
	docLens   []int
	avgDocLen float64

	k1 float64
	b  float64
}

// newBM25Index builds term statistics for the corpus. IDF uses the Okapi
// formulation ln((N − n + 0.5) / (n + 0.5)); non-positive values are floored
// to epsilon × average IDF so terms present in most documents still
// contribute a little instead of subtracting.
func newBM25Index(corpus [][]string, k1, b, epsilon float64) *bm25Index {
	index := &bm25Index{
		termFreqs: make([]map[string]int, len(corpus)),
		idf:       make(map[string]float64),
		docLens:   make([]int, len(corpus)),
		k1:        k1,
		b:         b,
	}

	docFreq := make(map[string]int)
	totalLen := 0
	for i, tokens := range corpus {
		index.docLens[i] = len(tokens)
		totalLen += len(tokens)

		freqs := make(map[string]int, len(tokens))
		for _, token := range tokens {
			freqs[token]++
		}
		index.termFreqs[i] = freqs

		for token := range freqs {
			docFreq[token]++
		}
	}
	if len(corpus) > 0 {
		index.avgDocLen = float64(totalLen) / float64(len(corpus))
	}

	corpusSize := float64(len(corpus))
	var idfSum float64
	var negative []string
	for token, freq := range docFreq {
		idf := math.Log(corpusSize-float64(freq)+0.5) - math.Log(float64(freq)+0.5)
		index.idf[token] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, token)
		}
	}
	if len(index.idf) > 0 {
		floor := epsilon * (idfSum / float64(len(index.idf)))
		for _, token := range negative {
			index.idf[token] = floor
		}
	}

	return index
}

// scores computes the BM25 score of every corpus document for the query
// tokens. Query terms absent from the corpus contribute nothing.
func (index *bm25Index) scores(query []string) []float64 {
	scores := make([]float64, len(index.termFreqs))
	for _, token := range query {
		idf, ok := index.idf[token]
		if !ok {
			continue
		}
		for i, freqs := range index.termFreqs {
			freq := float64(freqs[token])
			if freq == 0 {
				continue
			}
			lengthNorm := 1 - index.b + index.b*float64(index.docLens[i])/index.avgDocLen
			scores[i] += idf * (freq * (index.k1 + 1) / (freq + index.k1*lengthNorm))
		}
	}
	return scores
}
