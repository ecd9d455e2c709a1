//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package inline provides a source over in-memory document payloads, the
// path documents take when they arrive through an API request instead of
// from disk.
package inline

import (
	"context"
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/document/reader"
	"trpc.group/trpc-go/trpc-rag-go/document/reader/text"
	"trpc.group/trpc-go/trpc-rag-go/ingest/chunking"
	"trpc.group/trpc-go/trpc-rag-go/ingest/source"
	isource "trpc.group/trpc-go/trpc-rag-go/ingest/source/internal/source"
)

const defaultInlineSourceName = "Inline Source"

// Item is one document payload: a title, its content and optional
// retrieval metadata such as year, topics and subtopic.
type Item struct {
	Title    string
	Content  string
	Metadata map[string]any
}

// Source turns in-memory payloads into index-ready documents. Titles
// drive the document IDs, so re-submitting an item overwrites its
// previous chunks instead of duplicating them.
type Source struct {
	items        []Item
	name         string
	metadata     map[string]any
	reader       reader.Reader
	chunkSize    int
	chunkOverlap int
}

// New creates an inline source for the given items.
func New(items []Item, opts ...Option) *Source {
	s := &Source{
		items:    items,
		name:     defaultInlineSourceName,
		metadata: make(map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.reader == nil {
		s.reader = buildReader(s.chunkSize, s.chunkOverlap)
	}
	return s
}

// buildReader returns a text reader honoring the chunk geometry.
func buildReader(chunkSize, overlap int) reader.Reader {
	if chunkSize <= 0 && overlap <= 0 {
		return text.New()
	}
	var opts []chunking.Option
	if chunkSize > 0 {
		opts = append(opts, chunking.WithChunkSize(chunkSize))
	}
	if overlap > 0 {
		opts = append(opts, chunking.WithOverlap(overlap))
	}
	return text.New(text.WithChunkingStrategy(chunking.NewFixedSizeChunking(opts...)))
}

// ReadDocuments chunks every item into documents.
func (s *Source) ReadDocuments(ctx context.Context) ([]*document.Document, error) {
	var all []*document.Document
	for i, item := range s.items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		docs, err := s.processItem(i, item)
		if err != nil {
			return nil, err
		}
		all = append(all, docs...)
	}
	return all, nil
}

// Name returns the name of this source.
func (s *Source) Name() string {
	return s.name
}

// Type returns the type of this source.
func (s *Source) Type() string {
	return source.TypeInline
}

func (s *Source) processItem(idx int, item Item) ([]*document.Document, error) {
	if strings.TrimSpace(item.Title) == "" {
		return nil, fmt.Errorf("document %d has no title", idx)
	}
	docs, err := s.reader.ReadFromReader(item.Title, strings.NewReader(item.Content))
	if err != nil {
		return nil, fmt.Errorf("process document %q: %w", item.Title, err)
	}
	isource.MergeMetadata(docs, s.itemMetadata(item))
	return docs, nil
}

// itemMetadata builds the metadata merged into every chunk of an item.
// Item metadata overrides source-level metadata; the title and the
// source bookkeeping keys always win.
func (s *Source) itemMetadata(item Item) map[string]any {
	metadata := make(map[string]any, len(s.metadata)+len(item.Metadata)+3)
	for k, v := range s.metadata {
		metadata[k] = v
	}
	for k, v := range item.Metadata {
		metadata[k] = v
	}
	metadata[document.MetaTitle] = item.Title
	metadata[source.MetaSource] = source.TypeInline
	metadata[source.MetaSourceName] = s.name
	return metadata
}
