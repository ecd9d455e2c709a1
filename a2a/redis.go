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
	"time"

	"github.com/redis/go-redis/v9"

	storage "trpc.group/trpc-go/trpc-rag-go/storage/redis"
)

const taskKeyPrefix = "rag:task:"

// RedisTaskStore persists async task state in redis so pollers can resolve
// tasks across process restarts and replicas. Values are stored as JSON and
// returned as json.RawMessage.
type RedisTaskStore struct {
	client redis.UniversalClient
	prefix string
}

type redisTaskStoreOpts struct {
	url          string
	instanceName string
	extraOptions []storage.ExtraOption
	keyPrefix    string
}

// RedisTaskStoreOpt is the option for the redis task store.
type RedisTaskStoreOpt func(*redisTaskStoreOpts)

// WithRedisClientURL sets the redis client url, e.g. redis://127.0.0.1:6379/0.
func WithRedisClientURL(url string) RedisTaskStoreOpt {
	return func(o *redisTaskStoreOpts) {
		o.url = url
	}
}

// WithRedisInstance sets the name of a redis instance registered through
// storage.RegisterRedisInstance.
func WithRedisInstance(instanceName string) RedisTaskStoreOpt {
	return func(o *redisTaskStoreOpts) {
		o.instanceName = instanceName
	}
}

// WithRedisExtraOptions appends extra options applied when the client is built.
func WithRedisExtraOptions(extra ...storage.ExtraOption) RedisTaskStoreOpt {
	return func(o *redisTaskStoreOpts) {
		o.extraOptions = append(o.extraOptions, extra...)
	}
}

// WithRedisKeyPrefix overrides the key prefix used for task entries.
func WithRedisKeyPrefix(prefix string) RedisTaskStoreOpt {
	return func(o *redisTaskStoreOpts) {
		o.keyPrefix = prefix
	}
}

// NewRedisTaskStore creates a redis backed task store. A client url or a
// registered instance name is required.
func NewRedisTaskStore(opts ...RedisTaskStoreOpt) (*RedisTaskStore, error) {
	o := &redisTaskStoreOpts{keyPrefix: taskKeyPrefix}
	for _, opt := range opts {
		opt(o)
	}
	if o.url == "" && o.instanceName == "" {
		return nil, errors.New("redis url or instance name is required")
	}

	builder := storage.GetClientBuilder()
	var builderOpts []storage.ClientBuilderOpt
	if o.url != "" {
		builderOpts = append(builderOpts, storage.WithClientBuilderURL(o.url))
	} else {
		instanceOpts, ok := storage.GetRedisInstance(o.instanceName)
		if !ok {
			return nil, fmt.Errorf("redis instance %s not registered", o.instanceName)
		}
		builderOpts = append(builderOpts, instanceOpts...)
	}
	if len(o.extraOptions) > 0 {
		builderOpts = append(builderOpts, storage.WithExtraOptions(o.extraOptions...))
	}

	client, err := builder(builderOpts...)
	if err != nil {
		return nil, fmt.Errorf("create redis client: %w", err)
	}
	return &RedisTaskStore{client: client, prefix: o.keyPrefix}, nil
}

// Put stores the JSON encoding of value under the task id.
func (s *RedisTaskStore) Put(ctx context.Context, id string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal task %s: %w", id, err)
	}
	if ttl <= 0 {
		ttl = defaultTaskTTL
	}
	if err := s.client.Set(ctx, s.prefix+id, data, ttl).Err(); err != nil {
		return fmt.Errorf("store task %s: %w", id, err)
	}
	return nil
}

// Get returns the stored task as json.RawMessage, or false when absent or
// expired.
func (s *RedisTaskStore) Get(ctx context.Context, id string) (any, bool, error) {
	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load task %s: %w", id, err)
	}
	return json.RawMessage(data), true, nil
}

// Delete removes the task entry. Deleting an absent task is not an error.
func (s *RedisTaskStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.prefix+id).Err(); err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisTaskStore) Close() error {
	return s.client.Close()
}
