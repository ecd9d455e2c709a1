//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package http

import (
	"context"

	"trpc.group/trpc-go/trpc-rag-go/a2a"
	"trpc.group/trpc-go/trpc-rag-go/analytics"
	"trpc.group/trpc-go/trpc-rag-go/embedder"
	"trpc.group/trpc-go/trpc-rag-go/ingest"
	"trpc.group/trpc-go/trpc-rag-go/rag"
	"trpc.group/trpc-go/trpc-rag-go/vectorstore"
)

// Option configures the Server instance.
type Option func(*Server)

// WithAgentRegistry replaces the built-in pipeline agent registry backing
// the discovery and routing endpoints.
func WithAgentRegistry(registry *a2a.Registry) Option {
	return func(s *Server) {
		if registry != nil {
			s.agents = registry
		}
	}
}

// WithTaskRouter replaces the message router. Without it the server routes
// over its agent registry with the default supervisor fallback.
func WithTaskRouter(router *a2a.Router) Option {
	return func(s *Server) { s.taskRouter = router }
}

// WithTaskStore sets the store polled by GET /api/tasks/{id}. Pass the
// same store the engine was built with, or async results will never be
// found.
func WithTaskStore(store rag.TaskStore) Option {
	return func(s *Server) { s.tasks = store }
}

// WithRecorder replaces the analytics recorder.
func WithRecorder(recorder *analytics.Recorder) Option {
	return func(s *Server) {
		if recorder != nil {
			s.recorder = recorder
		}
	}
}

// WithVectorStores sets the collection registry backing the document and
// collection endpoints.
func WithVectorStores(stores *vectorstore.Registry) Option {
	return func(s *Server) { s.stores = stores }
}

// WithEmbedder sets the embedder used to index uploaded documents.
func WithEmbedder(e embedder.Embedder) Option {
	return func(s *Server) { s.embedder = e }
}

// WithIngestOptions appends additional ingest.Option values applied when
// the server constructs an Ingestor for a document upload.
func WithIngestOptions(opts ...ingest.Option) Option {
	return func(s *Server) { s.ingestOpts = append(s.ingestOpts, opts...) }
}

// WithHealthCheck registers an extra named dependency ping run by
// GET /api/health.
func WithHealthCheck(name string, ping func(ctx context.Context) error) Option {
	return func(s *Server) {
		if name == "" || ping == nil {
			return
		}
		s.checks = append(s.checks, healthCheck{name: name, ping: ping})
	}
}
