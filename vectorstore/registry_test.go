//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package vectorstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-rag-go/document"
)

// fakeStore is a minimal VectorStore for registry tests.
type fakeStore struct {
	closed   bool
	closeErr error
}

func (f *fakeStore) Add(context.Context, *document.Document, []float64) error { return nil }
func (f *fakeStore) Get(context.Context, string) (*document.Document, []float64, error) {
	return nil, nil, nil
}
func (f *fakeStore) Update(context.Context, *document.Document, []float64) error { return nil }
func (f *fakeStore) Delete(context.Context, string) error                        { return nil }
func (f *fakeStore) Search(context.Context, *SearchQuery) (*SearchResult, error) {
	return &SearchResult{}, nil
}
func (f *fakeStore) ListDocuments(context.Context) ([]*document.Document, error) { return nil, nil }
func (f *fakeStore) DeleteByFilter(context.Context, ...DeleteOption) error       { return nil }
func (f *fakeStore) Count(context.Context, ...CountOption) (int, error)          { return 0, nil }
func (f *fakeStore) GetMetadata(context.Context, ...GetMetadataOption) (map[string]DocumentMetadata, error) {
	return nil, nil
}
func (f *fakeStore) Close() error {
	f.closed = true
	return f.closeErr
}

func TestRegistry_ResolveDefault(t *testing.T) {
	registry := NewRegistry()
	store := &fakeStore{}
	registry.Register("", store)

	// An empty name resolves to the default collection.
	got, err := registry.Collection("")
	require.NoError(t, err)
	assert.Same(t, VectorStore(store), got)

	got, err = registry.Collection(DefaultCollection)
	require.NoError(t, err)
	assert.Same(t, VectorStore(store), got)
}

func TestRegistry_CustomDefault(t *testing.T) {
	registry := NewRegistry(WithDefaultCollection("kb"))
	store := &fakeStore{}
	registry.Register("kb", store)

	got, err := registry.Collection("")
	require.NoError(t, err)
	assert.Same(t, VectorStore(store), got)

	_, err = registry.Collection("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestRegistry_ReplaceBinding(t *testing.T) {
	registry := NewRegistry()
	first := &fakeStore{}
	second := &fakeStore{}

	registry.Register("docs", first)
	registry.Register("docs", second)

	got, err := registry.Collection("docs")
	require.NoError(t, err)
	assert.Same(t, VectorStore(second), got)
}

func TestRegistry_Names(t *testing.T) {
	registry := NewRegistry()
	registry.Register("zebra", &fakeStore{})
	registry.Register("alpha", &fakeStore{})
	registry.Register("mid", &fakeStore{})

	assert.Equal(t, []string{"alpha", "mid", "zebra"}, registry.Names())
}

func TestRegistry_Close(t *testing.T) {
	registry := NewRegistry()
	healthy := &fakeStore{}
	broken := &fakeStore{closeErr: errors.New("connection reset")}
	registry.Register("a", healthy)
	registry.Register("b", broken)

	err := registry.Close()
	require.Error(t, err)
	assert.True(t, healthy.closed)
	assert.True(t, broken.closed)
	assert.Empty(t, registry.Names())
}
