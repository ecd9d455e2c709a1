//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package text provides the plain-text document reader. It is also the
// fallback reader for unrecognized file types.
package text

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
	"trpc.group/trpc-go/trpc-rag-go/internal/encoding"
)

func init() {
	reader.RegisterReader([]string{".txt", ".text"}, func() reader.Reader {
		return New()
	})
}

// Reader reads plain text documents and applies chunking strategies.
type Reader struct {
	chunk            bool
	chunkingStrategy chunking.Strategy
}

// Option configures the text reader.
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

// New creates a text reader. Chunking is enabled by default with the
// fixed-size strategy.
func New(opts ...Option) *Reader {
	r := &Reader{
		chunk:            true,
		chunkingStrategy: chunking.NewFixedSizeChunking(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadFromReader reads text content from an io.Reader.
func (r *Reader) ReadFromReader(name string, rd io.Reader) ([]*document.Document, error) {
	content, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return r.buildDocuments(string(content), name)
}

// ReadFromFile reads text content from a file path.
func (r *Reader) ReadFromFile(filePath string) ([]*document.Document, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}
	name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	return r.buildDocuments(string(content), name)
}

// buildDocuments normalizes the raw content to UTF-8 and applies chunking
// when enabled.
func (r *Reader) buildDocuments(content, name string) ([]*document.Document, error) {
	doc := docutil.CreateDocument(encoding.NormalizeUTF8(content), name)
	if !r.chunk {
		return []*document.Document{doc}, nil
	}
	if r.chunkingStrategy == nil {
		r.chunkingStrategy = chunking.NewFixedSizeChunking()
	}
	return r.chunkingStrategy.Chunk(doc)
}

// Name returns the name of this reader.
func (r *Reader) Name() string {
	return "TextReader"
}
