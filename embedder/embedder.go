//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.
// All rights reserved.
//
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the  Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.
//
//

// Package embedder provides interfaces and implementations for text embedding.
package embedder

import (
	"context"
)

// Embedder is the interface that all embedders must implement.
//
// Two failure layers are distinguished: function-level errors cover
// system failures that prevent communication (nil input, network issues),
// while an empty embedding slice signals an API-level failure that was
// communicated successfully (rate limits, content filtering). Callers that
// need a usable vector must check both.
type Embedder interface {
	// GetEmbedding generates an embedding vector for the given text.
	// The returned slice may be empty for API-level errors.
	GetEmbedding(ctx context.Context, text string) ([]float64, error)

	// GetEmbeddingWithUsage generates an embedding vector for the given text
	// and returns provider usage information if available.
	GetEmbeddingWithUsage(ctx context.Context, text string) ([]float64, map[string]any, error)

	// GetDimensions returns the number of dimensions in the embedding
	// vectors produced by this embedder, or a negative value if unknown.
	GetDimensions() int
}
