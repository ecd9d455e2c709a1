//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package file provides a source over an explicit list of files.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/document/reader"
	"trpc.group/trpc-go/trpc-rag-go/ingest/source"
	isource "trpc.group/trpc-go/trpc-rag-go/ingest/source/internal/source"
)

const defaultFileSourceName = "File Source"

// Source reads an explicit list of file paths, choosing a reader per
// file extension.
type Source struct {
	filePaths    []string
	name         string
	metadata     map[string]any
	readers      map[string]reader.Reader
	chunkSize    int
	chunkOverlap int
}

// New creates a file source for the given paths.
func New(filePaths []string, opts ...Option) *Source {
	s := &Source{
		filePaths: filePaths,
		name:      defaultFileSourceName,
		metadata:  make(map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.chunkSize > 0 || s.chunkOverlap > 0 {
		s.readers = isource.GetReadersWithChunkConfig(s.chunkSize, s.chunkOverlap)
	} else {
		s.readers = isource.GetReaders()
	}
	return s
}

// ReadDocuments reads every configured file with its matching reader.
func (s *Source) ReadDocuments(ctx context.Context) ([]*document.Document, error) {
	var all []*document.Document
	for _, filePath := range s.filePaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		docs, err := s.processFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("process file %s: %w", filePath, err)
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
	return source.TypeFile
}

// SetReader overrides the reader used for a file type.
func (s *Source) SetReader(fileType string, r reader.Reader) {
	s.readers[fileType] = r
}

func (s *Source) processFile(filePath string) ([]*document.Document, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", filePath)
	}

	fileType := isource.GetFileType(filePath)
	rdr, ok := s.readers[fileType]
	if !ok {
		return nil, fmt.Errorf("no reader for file type %s", fileType)
	}
	docs, err := rdr.ReadFromFile(filePath)
	if err != nil {
		return nil, err
	}

	isource.MergeMetadata(docs, s.fileMetadata(filePath, info))
	return docs, nil
}

// fileMetadata builds the per-file metadata merged into every document.
func (s *Source) fileMetadata(filePath string, info os.FileInfo) map[string]any {
	metadata := make(map[string]any, len(s.metadata)+6)
	for k, v := range s.metadata {
		metadata[k] = v
	}
	metadata[source.MetaSource] = source.TypeFile
	metadata[source.MetaSourceName] = s.name
	metadata[source.MetaFilePath] = filePath
	metadata[source.MetaFileName] = filepath.Base(filePath)
	metadata[source.MetaFileExt] = filepath.Ext(filePath)
	metadata[source.MetaFileSize] = info.Size()
	metadata[source.MetaModifiedAt] = info.ModTime().UTC()
	return metadata
}
