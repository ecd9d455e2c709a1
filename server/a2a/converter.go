//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package a2a

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-a2a-go/protocol"

	"trpc.group/trpc-go/trpc-rag-go/graph"
	"trpc.group/trpc-go/trpc-rag-go/rag"
)

// Metadata keys used on protocol messages. Inbound messages may carry a
// run configuration; outbound messages report the execution outcome.
const (
	// MetadataConfigKey holds the pipeline run configuration on inbound
	// messages, shaped like rag.AgentConfig.
	MetadataConfigKey = "config"
	// MetadataTraceKey holds the executed node list on final messages.
	MetadataTraceKey = "execution_trace"
	// MetadataStageKey names the pipeline stage a streaming update is
	// about.
	MetadataStageKey = "stage"
	// MetadataDurationKey holds the stage duration in milliseconds.
	MetadataDurationKey = "duration_ms"
	// MetadataErrorKey holds the failure description on error messages.
	MetadataErrorKey = "error"
)

// Query is the pipeline input extracted from an inbound protocol message.
type Query struct {
	// Text is the query text.
	Text string

	// Config is the run configuration, nil for engine defaults.
	Config *rag.AgentConfig
}

// MessageToQuery converts inbound A2A protocol messages to pipeline
// queries.
type MessageToQuery interface {
	// ConvertToQuery extracts the query text and run configuration from
	// the protocol message.
	ConvertToQuery(ctx context.Context, message protocol.Message) (*Query, error)
}

// ResultToMessage converts pipeline output back to A2A protocol messages.
type ResultToMessage interface {
	// ConvertResult converts a final pipeline result.
	ConvertResult(ctx context.Context, result *rag.Result) (*protocol.Message, error)

	// ConvertStreamingEvent converts one execution event for streaming
	// delivery. A nil message with nil error means the event carries
	// nothing the client needs.
	ConvertStreamingEvent(ctx context.Context, event *graph.Event) (*protocol.Message, error)
}

// defaultMessageToQuery is the default MessageToQuery implementation.
type defaultMessageToQuery struct{}

// ConvertToQuery concatenates the text parts into the query and reads the
// run configuration from the message metadata. Data parts may carry the
// query under a "query" key instead.
func (c *defaultMessageToQuery) ConvertToQuery(
	ctx context.Context,
	message protocol.Message,
) (*Query, error) {
	var text strings.Builder
	for _, part := range message.Parts {
		switch part.GetKind() {
		case protocol.KindText:
			if t, ok := textOfPart(part); ok {
				text.WriteString(t)
			}
		case protocol.KindData:
			data, ok := dataOfPart(part)
			if !ok {
				continue
			}
			if m, ok := data.(map[string]any); ok {
				if q, ok := m["query"].(string); ok {
					text.WriteString(q)
				}
			}
		}
	}

	query := strings.TrimSpace(text.String())
	if query == "" {
		return nil, errors.New("a2aserver: message contains no query text")
	}

	config, err := configFromMetadata(message.Metadata)
	if err != nil {
		return nil, err
	}
	return &Query{Text: query, Config: config}, nil
}

// Parts arrive as values from the protocol constructors and as pointers
// off the wire.

func textOfPart(part protocol.Part) (string, bool) {
	switch p := part.(type) {
	case *protocol.TextPart:
		return p.Text, true
	case protocol.TextPart:
		return p.Text, true
	}
	return "", false
}

func dataOfPart(part protocol.Part) (any, bool) {
	switch p := part.(type) {
	case *protocol.DataPart:
		return p.Data, true
	case protocol.DataPart:
		return p.Data, true
	}
	return nil, false
}

// configFromMetadata decodes the run configuration carried under
// MetadataConfigKey. Absent metadata means engine defaults.
func configFromMetadata(metadata map[string]any) (*rag.AgentConfig, error) {
	value, ok := metadata[MetadataConfigKey]
	if !ok || value == nil {
		return nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("a2aserver: encode config metadata: %w", err)
	}
	config := &rag.AgentConfig{}
	if err := json.Unmarshal(raw, config); err != nil {
		return nil, fmt.Errorf("a2aserver: decode config metadata: %w", err)
	}
	return config, nil
}

// defaultResultToMessage is the default ResultToMessage implementation.
type defaultResultToMessage struct{}

// ConvertResult wraps the answer in a text part and reports the executed
// nodes through the message metadata.
func (c *defaultResultToMessage) ConvertResult(
	ctx context.Context,
	result *rag.Result,
) (*protocol.Message, error) {
	if result == nil {
		return nil, errors.New("a2aserver: nil pipeline result")
	}
	msg := protocol.NewMessage(protocol.MessageRoleAgent,
		[]protocol.Part{protocol.NewTextPart(result.Answer)})
	msg.Metadata = map[string]any{MetadataTraceKey: result.ExecutionTrace}
	if result.Error != "" {
		msg.Metadata[MetadataErrorKey] = result.Error
	}
	return &msg, nil
}

// ConvertStreamingEvent turns node completions into metadata-only stage
// updates and the terminal events into the final answer or error message.
func (c *defaultResultToMessage) ConvertStreamingEvent(
	ctx context.Context,
	event *graph.Event,
) (*protocol.Message, error) {
	if event == nil {
		return nil, nil
	}
	switch event.Type {
	case graph.EventNodeComplete:
		msg := protocol.NewMessage(protocol.MessageRoleAgent, nil)
		msg.Metadata = map[string]any{
			MetadataStageKey:    event.NodeID,
			MetadataDurationKey: event.Duration.Milliseconds(),
		}
		return &msg, nil
	case graph.EventGraphComplete:
		return c.ConvertResult(ctx, rag.ResultFromState(event.FinalState))
	case graph.EventGraphError:
		msg := protocol.NewMessage(protocol.MessageRoleAgent,
			[]protocol.Part{protocol.NewTextPart("pipeline execution failed: " + event.Error)})
		msg.Metadata = map[string]any{MetadataErrorKey: event.Error}
		return &msg, nil
	default:
		return nil, nil
	}
}
