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
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storage "trpc.group/trpc-go/trpc-rag-go/storage/redis"
)

type taskRecord struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func TestMemoryTaskStoreRoundTrip(t *testing.T) {
	store := NewMemoryTaskStore()
	ctx := context.Background()

	record := &taskRecord{ID: "t1", Status: "pending"}
	require.NoError(t, store.Put(ctx, "t1", record, time.Minute))

	value, found, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	require.True(t, found)
	// In-memory storage hands back the stored value itself.
	assert.Same(t, record, value)

	_, found, err = store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryTaskStoreExpiry(t *testing.T) {
	store := NewMemoryTaskStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "short", "value", 20*time.Millisecond))
	time.Sleep(50 * time.Millisecond)

	_, found, err := store.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, found, "entry should have expired")
}

func TestMemoryTaskStoreDefaultTTL(t *testing.T) {
	store := NewMemoryTaskStore()
	ctx := context.Background()

	// A non-positive TTL falls back to the store default instead of
	// expiring immediately.
	require.NoError(t, store.Put(ctx, "lasting", "value", 0))
	time.Sleep(20 * time.Millisecond)

	value, found, err := store.Get(ctx, "lasting")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "value", value)
}

func TestMemoryTaskStoreDelete(t *testing.T) {
	store := NewMemoryTaskStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "t1", "value", time.Minute))
	require.NoError(t, store.Delete(ctx, "t1"))

	_, found, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting an absent id is not an error.
	require.NoError(t, store.Delete(ctx, "t1"))
}

func setupTestRedis(t testing.TB) (string, func()) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	return "redis://" + mr.Addr(), mr.Close
}

func TestNewRedisTaskStoreRequiresTarget(t *testing.T) {
	_, err := NewRedisTaskStore()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis url or instance name is required")
}

func TestNewRedisTaskStoreUnknownInstance(t *testing.T) {
	_, err := NewRedisTaskStore(WithRedisInstance("never-registered"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestRedisTaskStoreRoundTrip(t *testing.T) {
	url, cleanup := setupTestRedis(t)
	defer cleanup()

	store, err := NewRedisTaskStore(WithRedisClientURL(url))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	record := &taskRecord{ID: "t1", Status: "completed"}
	require.NoError(t, store.Put(ctx, "t1", record, time.Minute))

	value, found, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	require.True(t, found)

	// Redis storage hands back the JSON encoding.
	raw, ok := value.(json.RawMessage)
	require.True(t, ok, "expected json.RawMessage, got %T", value)

	var decoded taskRecord
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, *record, decoded)

	_, found, err = store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisTaskStoreExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store, err := NewRedisTaskStore(WithRedisClientURL("redis://" + mr.Addr()))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "short", &taskRecord{ID: "short"}, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL(taskKeyPrefix+"short"))

	mr.FastForward(2 * time.Minute)
	_, found, err := store.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, found, "entry should have expired")
}

func TestRedisTaskStoreDelete(t *testing.T) {
	url, cleanup := setupTestRedis(t)
	defer cleanup()

	store, err := NewRedisTaskStore(WithRedisClientURL(url))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "t1", &taskRecord{ID: "t1"}, time.Minute))
	require.NoError(t, store.Delete(ctx, "t1"))

	_, found, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Delete(ctx, "t1"))
}

func TestRedisTaskStoreFromRegisteredInstance(t *testing.T) {
	url, cleanup := setupTestRedis(t)
	defer cleanup()

	storage.RegisterRedisInstance("a2a-tasks-test", storage.WithClientBuilderURL(url))

	store, err := NewRedisTaskStore(WithRedisInstance("a2a-tasks-test"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "t1", &taskRecord{ID: "t1", Status: "pending"}, 0))

	_, found, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, found)
}
