//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package chunking

import "errors"

var (
	// ErrNilDocument indicates that a nil document was provided.
	ErrNilDocument = errors.New("document cannot be nil")

	// ErrEmptyDocument indicates that the document has no content to chunk.
	ErrEmptyDocument = errors.New("document content is empty")
)
