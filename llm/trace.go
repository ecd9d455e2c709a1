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

package llm

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel/attribute"

	itelemetry "trpc.group/trpc-go/trpc-rag-go/internal/telemetry"
	"trpc.group/trpc-go/trpc-rag-go/telemetry/trace"
)

// Traced wraps a generator so every completion call produces a chat span
// carrying the request and response payloads. The span nests under
// whatever span is active on the call context.
func Traced(generator Generator) Generator {
	if generator == nil {
		return nil
	}
	return &tracedGenerator{inner: generator}
}

type tracedGenerator struct {
	inner Generator
}

func (t *tracedGenerator) Generate(ctx context.Context, request *Request) (*Response, error) {
	info := t.inner.Info()
	ctx, span := trace.Tracer.Start(ctx, itelemetry.NewChatSpanName(info.Name))
	defer span.End()

	span.SetAttributes(
		attribute.String(itelemetry.KeyOperationName, itelemetry.OperationCallLLM),
		attribute.String(itelemetry.KeyModelName, info.Name),
	)
	if request != nil {
		span.SetAttributes(attribute.String(itelemetry.KeyLLMRequest, request.Prompt))
	}

	response, err := t.inner.Generate(ctx, request)
	if err != nil {
		span.SetAttributes(attribute.String(itelemetry.KeyError, err.Error()))
		return nil, err
	}

	span.SetAttributes(attribute.String(itelemetry.KeyLLMResponse, response.Text))
	if response.Usage != nil {
		if raw, err := json.Marshal(response.Usage); err == nil {
			span.SetAttributes(attribute.String(itelemetry.KeyLLMUsage, string(raw)))
		}
	}
	return response, nil
}

func (t *tracedGenerator) Info() Info { return t.inner.Info() }
