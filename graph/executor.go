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

package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"trpc.group/trpc-go/trpc-rag-go/telemetry/trace"
)

// Executor walks a compiled graph from its entry point until End, merging
// each node's result into the state through the schema reducers and
// streaming progress events.
type Executor struct {
	graph             *Graph
	channelBufferSize int
	maxSteps          int
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*ExecutorOptions)

// ExecutorOptions contains configuration options for creating an Executor.
type ExecutorOptions struct {
	// ChannelBufferSize is the buffer size for event channels (default: 256).
	ChannelBufferSize int
	// MaxSteps is the maximum number of steps for graph execution.
	MaxSteps int
}

// WithChannelBufferSize sets the buffer size for event channels.
func WithChannelBufferSize(size int) ExecutorOption {
	return func(opts *ExecutorOptions) {
		opts.ChannelBufferSize = size
	}
}

// WithMaxSteps sets the maximum number of steps for graph execution.
func WithMaxSteps(maxSteps int) ExecutorOption {
	return func(opts *ExecutorOptions) {
		opts.MaxSteps = maxSteps
	}
}

// NewExecutor creates a new graph executor.
func NewExecutor(graph *Graph, opts ...ExecutorOption) (*Executor, error) {
	if err := graph.validate(); err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}
	var options ExecutorOptions
	options.ChannelBufferSize = 256 // Default buffer size.
	options.MaxSteps = 100          // Default max steps.
	// Apply function options.
	for _, opt := range opts {
		opt(&options)
	}
	return &Executor{
		graph:             graph,
		channelBufferSize: options.ChannelBufferSize,
		maxSteps:          options.MaxSteps,
	}, nil
}

// execContext carries the mutable execution state through one invocation.
type execContext struct {
	state        State
	eventChan    chan<- *Event
	invocationID string
}

// Execute runs the graph with the given initial state. It returns
// immediately with a channel that streams Events; the channel is closed
// after a final EventGraphComplete or EventGraphError. An empty
// invocationID is replaced with a generated one.
func (e *Executor) Execute(
	ctx context.Context,
	initialState State,
	invocationID string,
) (<-chan *Event, error) {
	if invocationID == "" {
		invocationID = uuid.NewString()
	}
	eventChan := make(chan *Event, e.channelBufferSize)
	go func() {
		defer close(eventChan)

		ctx, span := trace.Tracer.Start(ctx, "execute_graph")
		defer span.End()
		span.SetAttributes(attribute.String("trpc.go.rag.invocation_id", invocationID))

		execCtx := &execContext{
			state:        initialState.Clone(),
			eventChan:    eventChan,
			invocationID: invocationID,
		}
		finalState, err := e.executeGraph(ctx, execCtx)
		if err != nil {
			span.SetAttributes(attribute.String("trpc.go.rag.error", err.Error()))
			errorEvent := newEvent(invocationID, EventGraphError)
			errorEvent.Error = err.Error()
			e.emit(ctx, eventChan, errorEvent)
			return
		}
		completionEvent := newEvent(invocationID, EventGraphComplete)
		completionEvent.FinalState = finalState
		e.emit(ctx, eventChan, completionEvent)
	}()
	return eventChan, nil
}

// executeGraph executes the graph starting from the entry point.
func (e *Executor) executeGraph(ctx context.Context, execCtx *execContext) (State, error) {
	currentNodeID := e.graph.EntryPoint()
	if currentNodeID == "" {
		return nil, ErrNoEntryPoint
	}
	var stepCount int
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		// Check step limit to prevent infinite loops.
		stepCount++
		if stepCount > e.maxSteps {
			return nil, fmt.Errorf("%w: limit %d", ErrMaxStepsExceeded, e.maxSteps)
		}
		if currentNodeID == End {
			return execCtx.state, nil
		}
		nextNodeID, err := e.executeNode(ctx, execCtx, currentNodeID)
		if err != nil {
			return nil, fmt.Errorf("error executing node %s: %w", currentNodeID, err)
		}
		currentNodeID = nextNodeID
	}
}

// executeNode executes a single node and returns the next node ID.
func (e *Executor) executeNode(ctx context.Context, execCtx *execContext, nodeID string) (string, error) {
	node, exists := e.graph.Node(nodeID)
	if !exists {
		return "", fmt.Errorf("node %s not found", nodeID)
	}

	ctx, span := trace.Tracer.Start(ctx, fmt.Sprintf("execute_node %s", nodeID))
	defer span.End()

	// Set span attributes for node execution.
	span.SetAttributes(
		attribute.String("trpc.go.rag.node_id", nodeID),
		attribute.String("trpc.go.rag.node_name", node.Name),
		attribute.String("trpc.go.rag.invocation_id", execCtx.invocationID),
	)

	if err := e.emit(ctx, execCtx.eventChan, newNodeEvent(execCtx.invocationID, EventNodeStart, node)); err != nil {
		return "", err
	}

	startTime := time.Now()
	var written []string
	var routedTo string
	if node.Function != nil {
		result, err := node.Function(ctx, execCtx.state)
		if err != nil {
			span.SetAttributes(attribute.String("trpc.go.rag.error", err.Error()))
			return "", fmt.Errorf("node function execution failed: %w", err)
		}
		switch res := result.(type) {
		case nil:
			// Node made no state update.
		case *Command:
			if res.Update != nil {
				execCtx.state = e.graph.Schema().ApplyUpdate(execCtx.state, res.Update)
				written = updatedKeys(res.Update)
			}
			routedTo = res.GoTo
		case State:
			execCtx.state = e.graph.Schema().ApplyUpdate(execCtx.state, res)
			written = updatedKeys(res)
		default:
			return "", fmt.Errorf("node function returned invalid result type: %T", result)
		}
	}

	completeEvent := newNodeEvent(execCtx.invocationID, EventNodeComplete, node)
	completeEvent.Duration = time.Since(startTime)
	completeEvent.UpdatedKeys = written
	if err := e.emit(ctx, execCtx.eventChan, completeEvent); err != nil {
		return "", err
	}

	if routedTo == "" {
		// Determine next node using edges and conditional logic.
		nextNode, err := e.selectNextNode(ctx, execCtx, nodeID)
		if err != nil {
			return "", err
		}
		routedTo = nextNode
	}
	span.SetAttributes(attribute.String("trpc.go.rag.next_node", routedTo))
	return routedTo, nil
}

// selectNextNode selects the next node based on edges and conditional logic.
func (e *Executor) selectNextNode(
	ctx context.Context,
	execCtx *execContext,
	currentNodeID string,
) (string, error) {
	// Conditional edges take precedence over regular edges.
	if condEdge, exists := e.graph.ConditionalEdge(currentNodeID); exists {
		conditionResult, err := condEdge.Condition(ctx, execCtx.state)
		if err != nil {
			return "", fmt.Errorf("conditional edge evaluation failed: %w", err)
		}
		if nextNode, ok := condEdge.PathMap[conditionResult]; ok {
			return nextNode, nil
		}
		return "", fmt.Errorf("condition result %s not found in path map", conditionResult)
	}
	edges := e.graph.Edges(currentNodeID)
	if len(edges) == 0 {
		// No outgoing edges, assume we should go to End.
		return End, nil
	}
	return edges[0].To, nil
}

// emit sends an event on the channel, honoring context cancellation.
func (e *Executor) emit(ctx context.Context, ch chan<- *Event, evt *Event) error {
	select {
	case ch <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
