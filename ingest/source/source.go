//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package source defines where ingested documents come from. A source
// reads raw files, applies the configured reader and chunking, and hands
// back index-ready documents.
package source

import (
	"context"

	"trpc.group/trpc-go/trpc-rag-go/document"
)

// Source types.
const (
	TypeFile   = "file"
	TypeDir    = "dir"
	TypeInline = "inline"
)

const metaPrefix = "trpc_rag_go_"

// Metadata keys attached to ingested documents. The prefix keeps them
// clear of user metadata used for filtered retrieval.
const (
	MetaSource     = metaPrefix + "source"
	MetaSourceName = metaPrefix + "source_name"
	MetaFilePath   = metaPrefix + "file_path"
	MetaFileName   = metaPrefix + "file_name"
	MetaFileExt    = metaPrefix + "file_ext"
	MetaFileSize   = metaPrefix + "file_size"
	MetaModifiedAt = metaPrefix + "modified_at"
	MetaChunkIndex = metaPrefix + "chunk_index"
	MetaChunkSize  = metaPrefix + "chunk_size"
	MetaURI        = metaPrefix + "uri"
)

// Source is a provider of index-ready documents.
type Source interface {
	// ReadDocuments reads the source and returns its documents, already
	// chunked for indexing.
	ReadDocuments(ctx context.Context) ([]*document.Document, error)

	// Name returns a human-readable name for this source.
	Name() string

	// Type returns the source type, such as "file", "dir" or "inline".
	Type() string
}
