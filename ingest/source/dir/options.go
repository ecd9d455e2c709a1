//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package dir

// Option configures a directory source.
type Option func(*Source)

// WithName sets the name of the directory source.
func WithName(name string) Option {
	return func(s *Source) {
		s.name = name
	}
}

// WithMetadata merges additional metadata into every document read from
// this source.
func WithMetadata(metadata map[string]any) Option {
	return func(s *Source) {
		for k, v := range metadata {
			s.metadata[k] = v
		}
	}
}

// WithMetadataValue adds a single metadata key-value pair.
func WithMetadataValue(key string, value any) Option {
	return func(s *Source) {
		s.metadata[key] = value
	}
}

// WithIncludePatterns sets doublestar glob patterns selecting files to
// read, evaluated against root-relative paths. Defaults to all files.
func WithIncludePatterns(patterns ...string) Option {
	return func(s *Source) {
		s.includes = patterns
	}
}

// WithExcludePatterns sets doublestar glob patterns for files to skip.
// A pattern ending in "/" excludes whole directories.
func WithExcludePatterns(patterns ...string) Option {
	return func(s *Source) {
		s.excludes = patterns
	}
}

// WithRecursive sets whether subdirectories are walked. Defaults to true.
func WithRecursive(recursive bool) Option {
	return func(s *Source) {
		s.recursive = recursive
	}
}

// WithChunkSize sets the chunk size used when splitting documents.
func WithChunkSize(size int) Option {
	return func(s *Source) {
		s.chunkSize = size
	}
}

// WithChunkOverlap sets the chunk overlap used when splitting documents.
func WithChunkOverlap(overlap int) Option {
	return func(s *Source) {
		s.chunkOverlap = overlap
	}
}
