//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package vectorstore

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultCollection is the collection used when a request names none.
const DefaultCollection = "default"

// Registry maps collection names to their backing stores. It is safe for
// concurrent use; stores are registered at startup or by the ingestion
// layer and resolved on every retrieval.
type Registry struct {
	mu                sync.RWMutex
	stores            map[string]VectorStore
	defaultCollection string
}

// RegistryOption represents a functional option for configuring Registry.
type RegistryOption func(*Registry)

// WithDefaultCollection sets the collection resolved for an empty name.
func WithDefaultCollection(name string) RegistryOption {
	return func(r *Registry) {
		if name != "" {
			r.defaultCollection = name
		}
	}
}

// NewRegistry creates a collection registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		stores:            make(map[string]VectorStore),
		defaultCollection: DefaultCollection,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register binds a collection name to a store, replacing any previous binding.
func (r *Registry) Register(name string, store VectorStore) {
	if name == "" {
		name = r.defaultCollection
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[name] = store
}

// Collection resolves a collection name to its store. An empty name resolves
// to the default collection.
func (r *Registry) Collection(name string) (VectorStore, error) {
	if name == "" {
		name = r.defaultCollection
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	store, ok := r.stores[name]
	if !ok {
		return nil, fmt.Errorf("collection not registered: %s", name)
	}
	return store, nil
}

// Names returns the registered collection names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes every registered store, returning the first error seen.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for _, store := range r.stores {
		if err := store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.stores = make(map[string]VectorStore)
	return firstErr
}
