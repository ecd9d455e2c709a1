//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package chunking splits documents into index-sized pieces. Chunk IDs are
// derived from the parent document ID, so re-ingesting the same document
// overwrites its previous chunks instead of duplicating them.
package chunking

import (
	"strconv"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/ingest/source"
	"trpc.group/trpc-go/trpc-rag-go/internal/encoding"
)

// Strategy splits one document into smaller chunk documents.
type Strategy interface {
	Chunk(doc *document.Document) ([]*document.Document, error)
}

// Default chunk geometry.
const (
	defaultChunkSize = 1000
	defaultOverlap   = 200
)

// chunkIDSuffix separates the parent document ID from the chunk index.
const chunkIDSuffix = "_chunk_"

// cleanText normalizes ingested content: UTF-8 safe, unix line endings,
// no trailing whitespace per line.
func cleanText(content string) string {
	processed := encoding.NormalizeUTF8(content)
	return normalizeWhitespace(processed)
}

func normalizeWhitespace(content string) string {
	content = strings.TrimSpace(content)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}

// newChunk builds the chunk document for one slice of the parent. Chunk
// indexes are zero based.
func newChunk(parent *document.Document, content string, index int) *document.Document {
	metadata := make(map[string]any, len(parent.Metadata)+2)
	for k, v := range parent.Metadata {
		metadata[k] = v
	}
	metadata[source.MetaChunkIndex] = index
	metadata[source.MetaChunkSize] = encoding.RuneCount(content)

	now := time.Now().UTC()
	return &document.Document{
		ID:        chunkID(parent, index),
		Name:      parent.Name,
		Content:   content,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// chunkID derives the stable chunk identifier from the parent. A parent
// without an ID falls back to its name so re-ingestion stays idempotent
// for named documents.
func chunkID(parent *document.Document, index int) string {
	base := parent.ID
	if base == "" {
		base = parent.Name
	}
	if base == "" {
		base = "document"
	}
	return base + chunkIDSuffix + strconv.Itoa(index)
}
