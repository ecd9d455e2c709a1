//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trpc.group/trpc-go/trpc-rag-go/document"
)

func doc(id, content string) *document.Document {
	return &document.Document{ID: id, Content: content}
}

func TestDistanceToScore(t *testing.T) {
	assert.Equal(t, 0.8, DistanceToScore(0.2))
	assert.Equal(t, 1.0, DistanceToScore(0.0))
	assert.Equal(t, 0.1235, DistanceToScore(0.87654))
	// Distances beyond 1 yield negative similarities, preserved as-is.
	assert.Equal(t, -0.5, DistanceToScore(1.5))
}

func TestReciprocalRankFusion_SingleList(t *testing.T) {
	fused := ReciprocalRankFusion([]RankedList{
		{Weight: 0.5, Documents: []*document.Document{doc("a", "A"), doc("b", "B")}},
	}, 0)

	require.Len(t, fused, 2)
	// First rank contributes weight/61.
	assert.Equal(t, 0.008197, *fused[0].Score)
	assert.Equal(t, 0.008065, *fused[1].Score)
	assert.Equal(t, "a", fused[0].ID)
}

func TestReciprocalRankFusion_AccumulatesAcrossLists(t *testing.T) {
	vectorLeg := RankedList{
		Weight:    0.5,
		Documents: []*document.Document{doc("shared", "S"), doc("vector-only", "V")},
	}
	keywordLeg := RankedList{
		Weight:    0.5,
		Documents: []*document.Document{doc("shared", "S"), doc("keyword-only", "K")},
	}

	fused := ReciprocalRankFusion([]RankedList{vectorLeg, keywordLeg}, 0)
	require.Len(t, fused, 3)

	// The doc ranked first in both legs scores 0.5/61 + 0.5/61.
	assert.Equal(t, "shared", fused[0].ID)
	assert.Equal(t, 0.016393, *fused[0].Score)

	// Single-leg documents still accumulate from their one leg.
	assert.Equal(t, 0.008065, *fused[1].Score)
	assert.Equal(t, 0.008065, *fused[2].Score)

	// Ties keep first-seen order: the vector leg was consumed first.
	assert.Equal(t, "vector-only", fused[1].ID)
	assert.Equal(t, "keyword-only", fused[2].ID)
}

func TestReciprocalRankFusion_Truncates(t *testing.T) {
	list := RankedList{
		Weight:    1.0,
		Documents: []*document.Document{doc("a", "A"), doc("b", "B"), doc("c", "C")},
	}

	fused := ReciprocalRankFusion([]RankedList{list}, 2)
	require.Len(t, fused, 2)
	assert.Equal(t, "a", fused[0].ID)
	assert.Equal(t, "b", fused[1].ID)
}

func TestReciprocalRankFusion_ContentKeyFallback(t *testing.T) {
	// Documents without IDs are keyed by trimmed content.
	fused := ReciprocalRankFusion([]RankedList{
		{Weight: 0.5, Documents: []*document.Document{doc("", "same text ")}},
		{Weight: 0.5, Documents: []*document.Document{doc("", "same text")}},
	}, 0)

	require.Len(t, fused, 1)
	assert.Equal(t, 0.016393, *fused[0].Score)
}

func TestReciprocalRankFusion_Empty(t *testing.T) {
	assert.Empty(t, ReciprocalRankFusion(nil, 5))
	assert.Empty(t, ReciprocalRankFusion([]RankedList{{Weight: 0.5}}, 5))
}

func TestDedupeByContent(t *testing.T) {
	first := doc("1", "solar power basics")
	padded := doc("2", "  solar power basics  ")
	other := doc("3", "wind power basics")

	deduped := DedupeByContent([]*document.Document{first, padded, other, nil})
	require.Len(t, deduped, 2)
	assert.Same(t, first, deduped[0])
	assert.Same(t, other, deduped[1])
}
