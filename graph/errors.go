//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package graph

import "errors"

// Errors.
var (
	ErrNoEntryPoint     = errors.New("graph has no entry point")
	ErrMaxStepsExceeded = errors.New("maximum execution steps exceeded")
)
