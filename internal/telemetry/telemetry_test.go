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

// TestNewGRPCConn ensures lazy dialing accepts an unreachable address.
func TestNewGRPCConn(t *testing.T) {
	conn, err := NewGRPCConn("localhost:1")
	if err != nil {
		t.Fatalf("did not expect error, got %v", err)
	}
	if conn == nil {
		t.Fatalf("expected non-nil connection")
	}
	_ = conn.Close()
}
