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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trpc.group/trpc-go/trpc-rag-go/document"
)

type mappedRetriever struct {
	results map[string][]*document.Document
	errs    map[string]error
	queries []*Query
}

func (m *mappedRetriever) Retrieve(ctx context.Context, query *Query) (*Result, error) {
	m.queries = append(m.queries, query)
	if err := m.errs[query.Text]; err != nil {
		return nil, err
	}
	return &Result{Documents: m.results[query.Text]}, nil
}

func TestRetrieveMultiQuery_MergesAndDedupes(t *testing.T) {
	stub := &mappedRetriever{
		results: map[string][]*document.Document{
			"how is solar stored": {
				{ID: "a", Content: "batteries store solar energy"},
				{ID: "b", Content: "battery basics"},
			},
			"solar storage options": {
				{ID: "c", Content: "  batteries store solar energy  "},
				{ID: "d", Content: "pumped hydro"},
			},
		},
	}
	base := &Query{
		TopK:       3,
		Collection: "energy",
		Filters:    map[string]any{"year": 2024},
	}

	result, err := RetrieveMultiQuery(context.Background(), stub, base,
		[]string{"how is solar stored", "solar storage options"})
	require.NoError(t, err)

	// c duplicates a up to surrounding whitespace; the first occurrence wins.
	require.Len(t, result.Documents, 3)
	assert.Equal(t, "a", result.Documents[0].ID)
	assert.Equal(t, "b", result.Documents[1].ID)
	assert.Equal(t, "d", result.Documents[2].ID)

	require.Len(t, stub.queries, 2)
	for _, query := range stub.queries {
		assert.Equal(t, 3, query.TopK)
		assert.Equal(t, "energy", query.Collection)
		assert.Equal(t, map[string]any{"year": 2024}, query.Filters)
	}
}

func TestRetrieveMultiQuery_SkipsEmptyVariants(t *testing.T) {
	stub := &mappedRetriever{
		results: map[string][]*document.Document{
			"only variant": {{ID: "a", Content: "some content"}},
		},
	}

	result, err := RetrieveMultiQuery(context.Background(), stub, &Query{TopK: 2},
		[]string{"", "only variant", ""})
	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	require.Len(t, stub.queries, 1)
	assert.Equal(t, "only variant", stub.queries[0].Text)
}

func TestRetrieveMultiQuery_NilBaseUsesDefaults(t *testing.T) {
	stub := &mappedRetriever{
		results: map[string][]*document.Document{
			"v": {{ID: "a", Content: "content"}},
		},
	}

	result, err := RetrieveMultiQuery(context.Background(), stub, nil, []string{"v"})
	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	require.Len(t, stub.queries, 1)
	assert.Equal(t, DefaultTopK, stub.queries[0].TopK)
}

func TestRetrieveMultiQuery_VariantErrorAborts(t *testing.T) {
	sentinel := errors.New("store down")
	stub := &mappedRetriever{
		results: map[string][]*document.Document{
			"good": {{ID: "a", Content: "content"}},
		},
		errs: map[string]error{"bad": sentinel},
	}

	_, err := RetrieveMultiQuery(context.Background(), stub, &Query{TopK: 2},
		[]string{"good", "bad"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), `"bad"`)

	_, err = RetrieveMultiQuery(context.Background(), nil, &Query{TopK: 2}, []string{"v"})
	require.Error(t, err)
}

func TestQueryLimit(t *testing.T) {
	var query *Query
	assert.Equal(t, DefaultTopK, query.Limit())
	assert.Equal(t, DefaultTopK, (&Query{}).Limit())
	assert.Equal(t, DefaultTopK, (&Query{TopK: -1}).Limit())
	assert.Equal(t, 7, (&Query{TopK: 7}).Limit())
}
