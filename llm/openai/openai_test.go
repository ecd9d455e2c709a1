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

package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trpc.group/trpc-go/trpc-rag-go/llm"
)

// TestGeneratorInterface verifies that Model implements the interface.
func TestGeneratorInterface(t *testing.T) {
	var _ llm.Generator = (*Model)(nil)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		modelName string
		expected  string
	}{
		{"explicit name", "gpt-4o", "gpt-4o"},
		{"empty name falls back to default", "", DefaultModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.modelName)
			if got := m.Info().Name; got != tt.expected {
				t.Errorf("Info().Name = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestGenerateValidation(t *testing.T) {
	m := New("gpt-4o-mini")
	ctx := context.Background()

	if _, err := m.Generate(ctx, nil); err == nil {
		t.Error("expected error for nil request, got nil")
	}
	if _, err := m.Generate(ctx, &llm.Request{}); err == nil {
		t.Error("expected error for empty prompt, got nil")
	}
}

func TestGenerate(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		rsp := map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": "The answer is 42.",
					},
				},
			},
			"usage": map[string]any{
				"prompt_tokens":     7,
				"completion_tokens": 5,
				"total_tokens":      12,
			},
		}
		_ = json.NewEncoder(w).Encode(rsp)
	}))
	defer srv.Close()

	m := New("gpt-4o-mini", WithBaseURL(srv.URL), WithAPIKey("dummy"))

	temp := 0.0
	rsp, err := m.Generate(context.Background(), &llm.Request{
		System:      "You are terse.",
		Prompt:      "What is the answer?",
		Temperature: &temp,
	})
	if err != nil {
		t.Fatalf("Generate err: %v", err)
	}
	if rsp.Text != "The answer is 42." {
		t.Errorf("unexpected completion text: %q", rsp.Text)
	}
	if rsp.Usage == nil || rsp.Usage.TotalTokens != 12 {
		t.Errorf("unexpected usage: %+v", rsp.Usage)
	}

	// The request should carry the system message ahead of the user one.
	messages, ok := gotBody["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("expected 2 messages in request, got %v", gotBody["messages"])
	}
	first, _ := messages[0].(map[string]any)
	if first["role"] != "system" {
		t.Errorf("expected first message role system, got %v", first["role"])
	}
}

func TestBuildMessagesWithoutSystem(t *testing.T) {
	messages := buildMessages(&llm.Request{Prompt: "hello"})
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].OfUser == nil {
		t.Fatal("expected a user message")
	}
}
