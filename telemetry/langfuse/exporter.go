//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package langfuse

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/trace"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"

	itelemetry "trpc.group/trpc-go/trpc-rag-go/internal/telemetry"
	"trpc.group/trpc-go/trpc-rag-go/telemetry/tracetransform"
)

var _ trace.SpanExporter = (*exporter)(nil)

type exporter struct {
	client otlptrace.Client

	mu      sync.RWMutex
	started bool

	startOnce sync.Once
	stopOnce  sync.Once
}

func newExporter(ctx context.Context, opts ...otlptracehttp.Option) (*exporter, error) {
	e := &exporter{client: otlptracehttp.NewClient(opts...)}
	if err := e.Start(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *exporter) ExportSpans(ctx context.Context, ss []trace.ReadOnlySpan) error {
	protoSpans := tracetransform.Spans(ss)

	protoSpans = transform(protoSpans)

	err := e.client.UploadTraces(ctx, protoSpans)
	if err != nil {
		return fmt.Errorf("exporting spans: uploading traces: %w", err)
	}
	return nil
}

func transform(ss []*tracepb.ResourceSpans) []*tracepb.ResourceSpans {
	if len(ss) == 0 {
		return ss
	}

	for _, rs := range ss {
		if rs == nil {
			continue
		}

		for _, scopeSpans := range rs.ScopeSpans {
			if scopeSpans == nil {
				continue
			}

			for _, span := range scopeSpans.Spans {
				if span == nil {
					continue
				}

				transformSpan(span)
			}
		}
	}

	return ss
}

// transformSpan applies langfuse-specific transformations to a span
func transformSpan(span *tracepb.Span) {
	if span.Attributes == nil {
		return
	}

	// Find the operation name
	var operationName string
	for _, attr := range span.Attributes {
		if attr.Key == itelemetry.KeyOperationName {
			if attr.Value != nil && attr.Value.GetStringValue() != "" {
				operationName = attr.Value.GetStringValue()
				break
			}
		}
	}

	switch operationName {
	case itelemetry.OperationCallLLM:
		transformCallLLM(span)
	default:
	}
}

// transformCallLLM rewrites model call spans into Langfuse generation
// observations. Request, response, model and usage attributes move to
// their langfuse.observation counterparts; everything else is kept.
func transformCallLLM(span *tracepb.Span) {
	var newAttributes []*commonpb.KeyValue

	// Add observation type
	newAttributes = append(newAttributes, &commonpb.KeyValue{
		Key: observationType,
		Value: &commonpb.AnyValue{
			Value: &commonpb.AnyValue_StringValue{StringValue: "generation"},
		},
	})

	// Process existing attributes
	for _, attr := range span.Attributes {
		switch attr.Key {
		case itelemetry.KeyLLMRequest:
			newAttributes = append(newAttributes, stringAttribute(observationInput, attr.Value))
		case itelemetry.KeyLLMResponse:
			newAttributes = append(newAttributes, stringAttribute(observationOutput, attr.Value))
		case itelemetry.KeyModelName:
			newAttributes = append(newAttributes, stringAttribute(observationModel, attr.Value))
		case itelemetry.KeyLLMUsage:
			newAttributes = append(newAttributes, stringAttribute(observationUsageDetails, attr.Value))
		default:
			// Keep other attributes
			newAttributes = append(newAttributes, attr)
		}
	}

	// Replace span attributes
	span.Attributes = newAttributes
}

// stringAttribute rebuilds a key-value under a Langfuse key, falling back
// to "N/A" when the source attribute carries no value.
func stringAttribute(key string, value *commonpb.AnyValue) *commonpb.KeyValue {
	s := "N/A"
	if value != nil {
		s = value.GetStringValue()
	}
	return &commonpb.KeyValue{
		Key: key,
		Value: &commonpb.AnyValue{
			Value: &commonpb.AnyValue_StringValue{StringValue: s},
		},
	}
}

func (e *exporter) Shutdown(ctx context.Context) error {
	e.mu.RLock()
	started := e.started
	e.mu.RUnlock()

	if !started {
		return nil
	}

	var err error

	e.stopOnce.Do(func() {
		err = e.client.Stop(ctx)
		e.mu.Lock()
		e.started = false
		e.mu.Unlock()
	})

	return err
}

var errAlreadyStarted = errors.New("already started")

func (e *exporter) Start(ctx context.Context) error {
	var err = errAlreadyStarted
	e.startOnce.Do(func() {
		e.mu.Lock()
		e.started = true
		e.mu.Unlock()
		err = e.client.Start(ctx)
	})

	return err
}

// MarshalLog is the marshaling function used by the logging system to represent this exporter.
func (e *exporter) MarshalLog() any {
	return struct {
		Type   string
		Client otlptrace.Client
	}{
		Type:   "otlptrace",
		Client: e.client,
	}
}
