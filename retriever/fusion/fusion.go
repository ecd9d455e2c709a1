//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package fusion provides the pure scoring and result-fusion utilities used
// by the retrieval strategies.
package fusion

import (
	"sort"
	"strings"

	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/internal/numeric"
)

const (
	// RRFConstant is the smoothing constant in reciprocal rank fusion.
	RRFConstant = 60

	// DefaultWeight is the per-retriever fusion weight when none is configured.
	DefaultWeight = 0.5

	// similarityPlaces is the decimal precision of similarity scores.
	similarityPlaces = 4

	// fusedPlaces is the decimal precision of fused scores. Reciprocal rank
	// contributions are small (first rank contributes weight/61), so fused
	// scores keep more digits than similarity scores.
	fusedPlaces = 6
)

// DistanceToScore converts a backend cosine distance to a similarity score.
func DistanceToScore(distance float64) float64 {
	return numeric.Round(1.0-distance, similarityPlaces)
}

// SimilarityScore rounds a raw similarity to the precision retrieval
// results carry.
func SimilarityScore(similarity float64) float64 {
	return numeric.Round(similarity, similarityPlaces)
}

// RankedList is one retriever's ranked output with its fusion weight.
type RankedList struct {
	// Weight scales this list's contribution to fused scores.
	Weight float64

	// Documents is the ranked output, most relevant first.
	Documents []*document.Document
}

// ReciprocalRankFusion fuses ranked lists into a single ranking using
//
//	score(d) = Σ_list weight_list / (RRFConstant + rank_list(d) + 1)
//
// with 0-based ranks, so a document at the head of a list contributes
// weight/61. Documents present in only one list still accumulate a score
// from that list alone. The fused ranking is sorted by score descending and
// truncated to topK; a non-positive topK keeps everything. Ties keep the
// order in which documents were first seen across the input lists.
func ReciprocalRankFusion(lists []RankedList, topK int) []*document.Document {
	scores := make(map[string]float64)
	byKey := make(map[string]*document.Document)
	var order []string

	for _, list := range lists {
		for rank, doc := range list.Documents {
			if doc == nil {
				continue
			}
			key := fusionKey(doc)
			if _, seen := byKey[key]; !seen {
				byKey[key] = doc
				order = append(order, key)
			}
			scores[key] += list.Weight / float64(RRFConstant+rank+1)
		}
	}

	fused := make([]*document.Document, 0, len(order))
	for _, key := range order {
		fused = append(fused, byKey[key].WithScore(numeric.Round(scores[key], fusedPlaces)))
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return *fused[i].Score > *fused[j].Score
	})

	if topK > 0 && len(fused) > topK {
		fused = fused[:topK]
	}
	return fused
}

// fusionKey identifies a document across retriever legs. Chunks indexed by
// different backends share IDs, so the ID is the natural key; content is the
// fallback for ad-hoc documents.
func fusionKey(doc *document.Document) string {
	if doc.ID != "" {
		return doc.ID
	}
	return strings.TrimSpace(doc.Content)
}

// DedupeByContent drops documents whose trimmed content exactly matches an
// earlier document's. The first occurrence wins and input order is preserved.
func DedupeByContent(docs []*document.Document) []*document.Document {
	seen := make(map[string]struct{}, len(docs))
	deduped := make([]*document.Document, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		key := strings.TrimSpace(doc.Content)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, doc)
	}
	return deduped
}
