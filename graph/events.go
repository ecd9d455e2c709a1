//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package graph

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the execution stage an event reports.
type EventType string

// Event types emitted by the executor.
const (
	// EventNodeStart is emitted before a node function runs.
	EventNodeStart EventType = "graph.node.start"
	// EventNodeComplete is emitted after a node function returned and its
	// update was merged into the state.
	EventNodeComplete EventType = "graph.node.complete"
	// EventGraphComplete is emitted once when execution reaches End. It
	// carries the final state.
	EventGraphComplete EventType = "graph.complete"
	// EventGraphError is emitted once when execution aborts with an error.
	EventGraphError EventType = "graph.error"
)

// Event reports graph execution progress. Events stream on the channel
// returned by Executor.Execute in execution order; the stream ends with
// exactly one EventGraphComplete or EventGraphError.
type Event struct {
	// ID uniquely identifies the event.
	ID string `json:"id"`

	// InvocationID ties all events of one execution together.
	InvocationID string `json:"invocation_id"`

	// Type is the execution stage this event reports.
	Type EventType `json:"type"`

	// NodeID and NodeName identify the node for node-scoped events.
	NodeID   string `json:"node_id,omitempty"`
	NodeName string `json:"node_name,omitempty"`

	// Timestamp is when the event was created.
	Timestamp time.Time `json:"timestamp"`

	// Duration is how long the node ran; set on EventNodeComplete.
	Duration time.Duration `json:"duration,omitempty"`

	// UpdatedKeys lists the state keys the node wrote, sorted; set on
	// EventNodeComplete.
	UpdatedKeys []string `json:"updated_keys,omitempty"`

	// Error is the failure description; set on EventGraphError.
	Error string `json:"error,omitempty"`

	// FinalState is the state after execution finished; set on
	// EventGraphComplete. It must be treated as read-only.
	FinalState State `json:"-"`
}

func newEvent(invocationID string, eventType EventType) *Event {
	return &Event{
		ID:           uuid.NewString(),
		InvocationID: invocationID,
		Type:         eventType,
		Timestamp:    time.Now(),
	}
}

func newNodeEvent(invocationID string, eventType EventType, node *Node) *Event {
	evt := newEvent(invocationID, eventType)
	evt.NodeID = node.ID
	evt.NodeName = node.Name
	return evt
}

// updatedKeys extracts the sorted key set of a state update.
func updatedKeys(update State) []string {
	if len(update) == 0 {
		return nil
	}
	keys := make([]string, 0, len(update))
	for key := range update {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
