//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package markdown provides the markdown document reader.
package markdown

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/document/internal/docutil"
	"trpc.group/trpc-go/trpc-rag-go/document/reader"
	"trpc.group/trpc-go/trpc-rag-go/ingest/chunking"
)

func init() {
	reader.RegisterReader([]string{".md", ".markdown"}, func() reader.Reader {
		return New()
	})
}

// Reader reads markdown documents. The default chunking strategy splits
// along the heading structure so chunks follow the document's own
// sections.
type Reader struct {
	chunk            bool
	chunkingStrategy chunking.Strategy
}

// Option configures the markdown reader.
type Option func(*Reader)

// WithChunking enables or disables document chunking.
func WithChunking(chunk bool) Option {
	return func(r *Reader) {
		r.chunk = chunk
	}
}

// WithChunkingStrategy sets the chunking strategy to use.
func WithChunkingStrategy(strategy chunking.Strategy) Option {
	return func(r *Reader) {
		r.chunkingStrategy = strategy
	}
}

// New creates a markdown reader with the given options.
func New(opts ...Option) *Reader {
	r := &Reader{
		chunk:            true,
		chunkingStrategy: chunking.NewMarkdownChunking(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadFromReader reads markdown content from an io.Reader.
func (r *Reader) ReadFromReader(name string, rd io.Reader) ([]*document.Document, error) {
	content, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return r.buildDocuments(string(content), name)
}

// ReadFromFile reads markdown content from a file path.
func (r *Reader) ReadFromFile(filePath string) ([]*document.Document, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}
	name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	return r.buildDocuments(string(content), name)
}

// buildDocuments keeps the raw markdown on the document and lets the
// chunking strategy strip syntax while splitting.
func (r *Reader) buildDocuments(content, name string) ([]*document.Document, error) {
	doc := docutil.CreateDocument(content, name)
	if !r.chunk {
		return []*document.Document{doc}, nil
	}
	if r.chunkingStrategy == nil {
		r.chunkingStrategy = chunking.NewMarkdownChunking()
	}
	return r.chunkingStrategy.Chunk(doc)
}

// Name returns the name of this reader.
func (r *Reader) Name() string {
	return "MarkdownReader"
}
