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
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-rag-go/graph"
)

func nodeEvents(n int) []*graph.Event {
	events := make([]*graph.Event, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, &graph.Event{
			Type:   graph.EventNodeComplete,
			NodeID: fmt.Sprintf("node_%d", i),
		})
	}
	return events
}

func feedAndClose(events []*graph.Event) <-chan *graph.Event {
	ch := make(chan *graph.Event, len(events))
	for _, event := range events {
		ch <- event
	}
	close(ch)
	return ch
}

func TestEventTunnelBatchesBySize(t *testing.T) {
	var batches [][]*graph.Event
	consume := func(batch []*graph.Event) (bool, error) {
		batches = append(batches, batch)
		return true, nil
	}

	tunnel := newEventTunnel(5, time.Minute, feedAndClose(nodeEvents(12)), consume)
	require.NoError(t, tunnel.Run(context.Background()))

	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 5)
	assert.Len(t, batches[1], 5)
	assert.Len(t, batches[2], 2)

	// Order survives the batching.
	assert.Equal(t, "node_0", batches[0][0].NodeID)
	assert.Equal(t, "node_11", batches[2][1].NodeID)
}

func TestEventTunnelFinalFlushOnClose(t *testing.T) {
	var batches [][]*graph.Event
	consume := func(batch []*graph.Event) (bool, error) {
		batches = append(batches, batch)
		return true, nil
	}

	tunnel := newEventTunnel(5, time.Minute, feedAndClose(nodeEvents(3)), consume)
	require.NoError(t, tunnel.Run(context.Background()))

	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 3)
}

func TestEventTunnelConsumerStops(t *testing.T) {
	calls := 0
	consume := func(batch []*graph.Event) (bool, error) {
		calls++
		return false, nil
	}

	tunnel := newEventTunnel(2, time.Minute, feedAndClose(nodeEvents(10)), consume)
	require.NoError(t, tunnel.Run(context.Background()))

	assert.Equal(t, 1, calls, "tunnel must stop after the consumer declines")
}

func TestEventTunnelConsumeError(t *testing.T) {
	wantErr := errors.New("subscriber gone")
	consume := func(batch []*graph.Event) (bool, error) {
		return false, wantErr
	}

	tunnel := newEventTunnel(2, time.Minute, feedAndClose(nodeEvents(4)), consume)
	err := tunnel.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
}

func TestEventTunnelIntervalFlush(t *testing.T) {
	ch := make(chan *graph.Event, 4)
	flushed := make(chan []*graph.Event, 4)
	consume := func(batch []*graph.Event) (bool, error) {
		flushed <- batch
		return true, nil
	}

	tunnel := newEventTunnel(100, 10*time.Millisecond, ch, consume)
	done := make(chan error, 1)
	go func() { done <- tunnel.Run(context.Background()) }()

	// Far below the batch size, so only the timer can flush these.
	ch <- &graph.Event{Type: graph.EventNodeComplete, NodeID: "analyzer"}
	ch <- &graph.Event{Type: graph.EventNodeComplete, NodeID: "retriever"}

	select {
	case batch := <-flushed:
		assert.Len(t, batch, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("interval flush never happened")
	}

	close(ch)
	require.NoError(t, <-done)
}

func TestEventTunnelContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tunnel := newEventTunnel(5, time.Minute, make(chan *graph.Event),
		func([]*graph.Event) (bool, error) { return true, nil })
	err := tunnel.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestEventTunnelDefaults(t *testing.T) {
	tunnel := newEventTunnel(0, 0, make(chan *graph.Event), nil)

	assert.Equal(t, defaultBatchSize, tunnel.batchSize)
	assert.Equal(t, defaultFlushInterval, tunnel.flushInterval)
}

func TestEventTunnelSkipsNilEvents(t *testing.T) {
	ch := make(chan *graph.Event, 3)
	ch <- nil
	ch <- &graph.Event{Type: graph.EventNodeComplete, NodeID: "reranker"}
	ch <- nil
	close(ch)

	var batches [][]*graph.Event
	tunnel := newEventTunnel(5, time.Minute, ch, func(batch []*graph.Event) (bool, error) {
		batches = append(batches, batch)
		return true, nil
	})
	require.NoError(t, tunnel.Run(context.Background()))

	require.Len(t, batches, 1)
	require.Len(t, batches[0], 1)
	assert.Equal(t, "reranker", batches[0][0].NodeID)
}
