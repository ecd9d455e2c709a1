//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package telemetry

import "testing"

// Test span name helper for simple formatting and empty model edge case.
func TestNewChatSpanName(t *testing.T) {
	if got := NewChatSpanName("gpt-4o-mini"); got != "chat gpt-4o-mini" {
		t.Fatalf("NewChatSpanName got %q", got)
	}
	if got := NewChatSpanName(""); got != "chat" {
		t.Fatalf("NewChatSpanName empty got %q", got)
	}
}
