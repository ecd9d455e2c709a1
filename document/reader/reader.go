//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package reader defines the interface for document readers and the
// registry that maps file extensions to them. Reader implementations
// register themselves on import.
package reader

import (
	"io"

	"trpc.group/trpc-go/trpc-rag-go/document"
)

// Reader parses one file format into index-ready documents.
type Reader interface {
	// ReadFromReader reads content from an io.Reader and returns a list of
	// documents. The name identifies the source and seeds the document ID.
	ReadFromReader(name string, r io.Reader) ([]*document.Document, error)

	// ReadFromFile reads content from a file path and returns a list of
	// documents.
	ReadFromFile(filePath string) ([]*document.Document, error)

	// Name returns the name of this reader.
	Name() string
}
