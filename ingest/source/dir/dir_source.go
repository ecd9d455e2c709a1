//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package dir provides a source that walks a directory tree. Files are
// selected with doublestar glob patterns evaluated against paths relative
// to the root.
package dir

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/document/reader"
	"trpc.group/trpc-go/trpc-rag-go/ingest/source"
	isource "trpc.group/trpc-go/trpc-rag-go/ingest/source/internal/source"
)

const defaultDirSourceName = "Directory Source"

// Source walks a directory tree and reads every matching file.
type Source struct {
	root         string
	name         string
	metadata     map[string]any
	readers      map[string]reader.Reader
	includes     []string
	excludes     []string
	recursive    bool
	chunkSize    int
	chunkOverlap int
}

// New creates a directory source rooted at root. By default the walk is
// recursive and includes every file.
func New(root string, opts ...Option) *Source {
	s := &Source{
		root:      root,
		name:      defaultDirSourceName,
		metadata:  make(map[string]any),
		recursive: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	if len(s.includes) == 0 {
		s.includes = []string{"**/*"}
	}
	if s.chunkSize > 0 || s.chunkOverlap > 0 {
		s.readers = isource.GetReadersWithChunkConfig(s.chunkSize, s.chunkOverlap)
	} else {
		s.readers = isource.GetReaders()
	}
	return s
}

// ReadDocuments walks the tree and reads each selected file with its
// matching reader.
func (s *Source) ReadDocuments(ctx context.Context) ([]*document.Document, error) {
	paths, err := s.collectFiles()
	if err != nil {
		return nil, err
	}

	var all []*document.Document
	for _, relPath := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		docs, err := s.processFile(relPath)
		if err != nil {
			return nil, fmt.Errorf("process file %s: %w", relPath, err)
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
	return source.TypeDir
}

// SetReader overrides the reader used for a file type.
func (s *Source) SetReader(fileType string, r reader.Reader) {
	s.readers[fileType] = r
}

// collectFiles returns the selected files as slash-separated paths
// relative to the root, in deterministic order.
func (s *Source) collectFiles() ([]string, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return nil, fmt.Errorf("stat root %s: %w", s.root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", s.root)
	}

	var paths []string
	err = filepath.WalkDir(s.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			if rel == "." {
				return nil
			}
			if !s.recursive || s.matchesAny(s.excludes, rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if s.matchesAny(s.includes, rel) && !s.matchesAny(s.excludes, rel) {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *Source) matchesAny(patterns []string, relPath string) bool {
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, relPath); err == nil && matched {
			return true
		}
	}
	return false
}

func (s *Source) processFile(relPath string) ([]*document.Document, error) {
	filePath := filepath.Join(s.root, filepath.FromSlash(relPath))
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}

	fileType := isource.GetFileType(filePath)
	rdr, ok := s.readers[fileType]
	if !ok {
		return nil, fmt.Errorf("no reader for file type %s", fileType)
	}

	// Documents are named by the root-relative path so files with the same
	// base name in different subdirectories keep distinct IDs.
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	docName := strings.TrimSuffix(relPath, path.Ext(relPath))
	docs, err := rdr.ReadFromReader(docName, f)
	f.Close()
	if err != nil {
		return nil, err
	}

	metadata := make(map[string]any, len(s.metadata)+6)
	for k, v := range s.metadata {
		metadata[k] = v
	}
	metadata[source.MetaSource] = source.TypeDir
	metadata[source.MetaSourceName] = s.name
	metadata[source.MetaFilePath] = filePath
	metadata[source.MetaFileName] = filepath.Base(filePath)
	metadata[source.MetaFileExt] = filepath.Ext(filePath)
	metadata[source.MetaFileSize] = info.Size()
	metadata[source.MetaModifiedAt] = info.ModTime().UTC()
	isource.MergeMetadata(docs, metadata)
	return docs, nil
}
