//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package inline

import "trpc.group/trpc-go/trpc-rag-go/document/reader"

// Option configures an inline source.
type Option func(*Source)

// WithName sets a custom name for the inline source.
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

// WithReader overrides the reader used for all items.
func WithReader(r reader.Reader) Option {
	return func(s *Source) {
		s.reader = r
	}
}
