//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package source provides helpers shared by the source implementations.
package source

import (
	"path/filepath"

	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/document/reader"
	"trpc.group/trpc-go/trpc-rag-go/ingest/chunking"

	// Importing the reader packages triggers their registration.
	"trpc.group/trpc-go/trpc-rag-go/document/reader/docx"
	"trpc.group/trpc-go/trpc-rag-go/document/reader/markdown"
	"trpc.group/trpc-go/trpc-rag-go/document/reader/pdf"
	"trpc.group/trpc-go/trpc-rag-go/document/reader/text"
)

// GetReaders returns all registered readers keyed by file type.
func GetReaders() map[string]reader.Reader {
	return reader.GetAllReaders()
}

// GetFileType maps a file path to the reader type for its extension.
// Unknown extensions fall back to the text reader.
func GetFileType(filePath string) string {
	switch filepath.Ext(filePath) {
	case ".pdf":
		return "pdf"
	case ".md", ".markdown":
		return "markdown"
	case ".docx", ".doc":
		return "docx"
	default:
		return "text"
	}
}

// GetReadersWithChunkConfig returns readers configured with custom chunk
// geometry. Zero or negative values for both parameters fall back to the
// default readers.
func GetReadersWithChunkConfig(chunkSize, overlap int) map[string]reader.Reader {
	if chunkSize <= 0 && overlap <= 0 {
		return GetReaders()
	}

	var fixedOpts []chunking.Option
	var mdOpts []chunking.MarkdownOption
	if chunkSize > 0 {
		fixedOpts = append(fixedOpts, chunking.WithChunkSize(chunkSize))
		mdOpts = append(mdOpts, chunking.WithMarkdownChunkSize(chunkSize))
	}
	if overlap > 0 {
		fixedOpts = append(fixedOpts, chunking.WithOverlap(overlap))
		mdOpts = append(mdOpts, chunking.WithMarkdownOverlap(overlap))
	}

	fixed := chunking.NewFixedSizeChunking(fixedOpts...)
	return map[string]reader.Reader{
		"text":     text.New(text.WithChunkingStrategy(fixed)),
		"markdown": markdown.New(markdown.WithChunkingStrategy(chunking.NewMarkdownChunking(mdOpts...))),
		"pdf":      pdf.New(pdf.WithChunkingStrategy(fixed)),
		"docx":     docx.New(docx.WithChunkingStrategy(fixed)),
	}
}

// MergeMetadata copies metadata into each document, keeping any keys the
// reader already set.
func MergeMetadata(docs []*document.Document, metadata map[string]any) {
	for _, doc := range docs {
		if doc.Metadata == nil {
			doc.Metadata = make(map[string]any, len(metadata))
		}
		for k, v := range metadata {
			if _, exists := doc.Metadata[k]; !exists {
				doc.Metadata[k] = v
			}
		}
	}
}
