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

// Package llm defines the chat-completion provider interface used by the
// retrieval pipeline.
package llm

import (
	"context"
)

// Generator produces a single text completion for a prompt.
//
// The pipeline issues deterministic calls (temperature 0) for analysis,
// compression and answer generation, and exploratory calls (temperature
// above 0) for query expansion and hypothetical passages, so
// implementations must honour the per-request temperature.
type Generator interface {
	// Generate produces the completion for the given request.
	Generate(ctx context.Context, request *Request) (*Response, error)

	// Info returns basic information about the underlying model.
	Info() Info
}

// Request is a single completion request.
type Request struct {
	// System is an optional system instruction prepended to the prompt.
	System string

	// Prompt is the user prompt to complete.
	Prompt string

	// Temperature is the sampling temperature. Nil means provider default.
	Temperature *float64

	// MaxTokens bounds the completion length. Nil means provider default.
	MaxTokens *int
}

// Response is the completion result.
type Response struct {
	// Text is the completion text.
	Text string

	// Usage carries token accounting when the provider reports it.
	Usage *Usage
}

// Usage reports token consumption for one request.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Info describes a generator implementation.
type Info struct {
	// Name is the model name.
	Name string
}
