//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package rag

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-rag-go/graph"
)

// mapTaskStore is a TTL-less in-memory TaskStore for tests.
type mapTaskStore struct {
	mu     sync.Mutex
	values map[string]any
}

func newMapTaskStore() *mapTaskStore {
	return &mapTaskStore{values: make(map[string]any)}
}

func (s *mapTaskStore) Put(ctx context.Context, id string, value any, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[id] = value
	return nil
}

func (s *mapTaskStore) Get(ctx context.Context, id string) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[id]
	return value, ok, nil
}

func (s *mapTaskStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, id)
	return nil
}

func TestNewRequiresClients(t *testing.T) {
	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedder")

	_, err = New(WithEmbedder(flatEmbedder{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider")
}

func TestGraphIsBuiltOnceAndReused(t *testing.T) {
	engine := newTestEngine(t, newScriptedGenerator())

	first, err := engine.Graph()
	require.NoError(t, err)
	second, err := engine.Graph()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestRebuildSwapsCompiledGraph(t *testing.T) {
	engine := newTestEngine(t, newScriptedGenerator())

	before, err := engine.Graph()
	require.NoError(t, err)

	rebuilt, err := engine.Rebuild()
	require.NoError(t, err)
	assert.NotSame(t, before, rebuilt)

	// New runs pick up the rebuilt instance.
	after, err := engine.Graph()
	require.NoError(t, err)
	assert.Same(t, rebuilt, after)
}

func TestRunAsyncLifecycle(t *testing.T) {
	store := newMapTaskStore()
	generator := newScriptedGenerator()
	engine := newTestEngine(t, generator)
	engine.taskStore = store

	id, err := engine.RunAsync(context.Background(), "how is electricity made", &AgentConfig{})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// The handle is registered before RunAsync returns.
	value, ok, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok)
	task, ok := value.(*Task)
	require.True(t, ok)
	assert.Equal(t, id, task.ID)
	assert.Equal(t, "how is electricity made", task.Query)
	assert.False(t, task.CreatedAt.IsZero())

	require.Eventually(t, func() bool {
		value, ok, err := store.Get(context.Background(), id)
		if err != nil || !ok {
			return false
		}
		task := value.(*Task)
		return task.Status == TaskStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	value, _, err = store.Get(context.Background(), id)
	require.NoError(t, err)
	task = value.(*Task)
	require.NotNil(t, task.Result)
	assert.Equal(t, generator.answer, task.Result.Answer)
	assert.Empty(t, task.Error)
	require.NotNil(t, task.CompletedAt)
	assert.False(t, task.CompletedAt.Before(task.CreatedAt))
}

func TestRunAsyncWithoutStore(t *testing.T) {
	engine := newTestEngine(t, newScriptedGenerator())

	_, err := engine.RunAsync(context.Background(), "q", nil)
	assert.ErrorIs(t, err, ErrNoTaskStore)
}

func TestRunAsyncRejectsEmptyQuery(t *testing.T) {
	engine := newTestEngine(t, newScriptedGenerator())
	engine.taskStore = newMapTaskStore()

	_, err := engine.RunAsync(context.Background(), "  ", nil)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestStreamEmitsNodeEvents(t *testing.T) {
	engine := newTestEngine(t, newScriptedGenerator())

	events, err := engine.Stream(context.Background(), "how is electricity made", &AgentConfig{})
	require.NoError(t, err)

	var started []string
	var completed bool
	for event := range events {
		switch event.Type {
		case graph.EventNodeStart:
			started = append(started, event.NodeID)
		case graph.EventGraphComplete:
			completed = true
		}
	}
	assert.True(t, completed)
	assert.Equal(t, []string{
		NodeQueryAnalyzer,
		NodeSupervisor,
		NodeVectorRetriever,
		NodeAnswerGenerator,
	}, started)
}
