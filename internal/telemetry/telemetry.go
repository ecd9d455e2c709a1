//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package telemetry holds the shared constants and helpers behind the
// tracing and metrics setup.
package telemetry

import (
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// telemetry service constants.
const (
	ServiceName      = "telemetry"
	ServiceVersion   = "v0.1.0"
	ServiceNamespace = "trpc-go-rag"
	InstrumentName   = "trpc.rag.go"
)

const (
	// ProtocolGRPC uses gRPC protocol for OTLP exporter.
	ProtocolGRPC string = "grpc"
	// ProtocolHTTP uses HTTP protocol for OTLP exporter.
	ProtocolHTTP string = "http"
)

// OperationCallLLM is the operation name stamped on chat-completion spans.
const OperationCallLLM = "call_llm"

// telemetry attribute constants.
var (
	KeyOperationName = "gen_ai.operation.name"
	KeyModelName     = "gen_ai.request.model"
	KeyInvocationID  = "trpc.go.rag.invocation_id"
	KeyLLMRequest    = "trpc.go.rag.llm_request"
	KeyLLMResponse   = "trpc.go.rag.llm_response"
	KeyLLMUsage      = "trpc.go.rag.llm_usage"
	KeyError         = "trpc.go.rag.error"
)

// NewChatSpanName returns the span name for a chat completion against the
// named model.
func NewChatSpanName(model string) string {
	if model == "" {
		return "chat"
	}
	return "chat " + model
}

// NewGRPCConn creates a new gRPC connection to the OpenTelemetry Collector.
func NewGRPCConn(endpoint string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(endpoint,
		// Note the use of insecure transport here. TLS is recommended in production.
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to collector: %w", err)
	}
	return conn, nil
}
