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
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	// defaultTaskTTL is how long stored values live when the caller passes
	// a non-positive TTL.
	defaultTaskTTL = time.Hour

	// memoryCleanupInterval is how often the in-memory store purges
	// expired entries.
	memoryCleanupInterval = 10 * time.Minute
)

// TaskStore is a TTL key-value store for task handles. The memory and
// redis implementations are interchangeable; the serving layer owns the
// instance and injects it where tasks are tracked.
type TaskStore interface {
	// Put stores the value under the id for the given TTL. A non-positive
	// TTL falls back to the store default.
	Put(ctx context.Context, id string, value any, ttl time.Duration) error

	// Get returns the stored value, reporting whether it exists. Expired
	// entries do not exist.
	Get(ctx context.Context, id string) (any, bool, error)

	// Delete removes the value. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}

// MemoryTaskStore is an in-process TaskStore with janitored expiry.
type MemoryTaskStore struct {
	cache *cache.Cache
}

// NewMemoryTaskStore creates an in-memory task store. Expired entries are
// purged in the background every ten minutes.
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{
		cache: cache.New(defaultTaskTTL, memoryCleanupInterval),
	}
}

// Put implements TaskStore.
func (s *MemoryTaskStore) Put(ctx context.Context, id string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}
	s.cache.Set(id, value, ttl)
	return nil
}

// Get implements TaskStore. The value is returned exactly as stored.
func (s *MemoryTaskStore) Get(ctx context.Context, id string) (any, bool, error) {
	value, found := s.cache.Get(id)
	return value, found, nil
}

// Delete implements TaskStore.
func (s *MemoryTaskStore) Delete(ctx context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}
