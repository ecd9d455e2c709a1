//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package augment provides the augmentation stages that wrap a retrieval
// pass: query expansion before retrieval and context compression after it.
// Both stages degrade rather than fail: a broken model call falls back to
// the unaugmented input so the pipeline can still answer.
package augment

import (
	"errors"
)

// ErrNoGenerator is returned when a stage that needs a language model was
// constructed without one. The stage still returns usable fallback output.
var ErrNoGenerator = errors.New("augment: generator not configured")

// truncateRunes caps s at max runes without splitting a multi-byte rune.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
