//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package ingest

import (
	"context"
	"fmt"
	"time"

	"trpc.group/trpc-go/trpc-rag-go/log"
)

// RetryPolicy bounds repeated attempts of an operation with a fixed delay
// between them. MaxRetries counts the retries after the first attempt, so
// an operation runs at most MaxRetries+1 times. Retried operations must be
// idempotent; indexing is, because document and chunk IDs are stable.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

// Default policies for the ingestion paths.
var (
	// IndexingRetry covers embedding and upserting a document.
	IndexingRetry = RetryPolicy{MaxRetries: 3, Delay: 30 * time.Second}

	// QuestionRetry covers hypothetical question generation.
	QuestionRetry = RetryPolicy{MaxRetries: 2, Delay: 15 * time.Second}

	// PipelineRetry covers asynchronous query pipeline runs.
	PipelineRetry = RetryPolicy{MaxRetries: 2, Delay: 10 * time.Second}
)

// Do runs fn until it succeeds or the policy is exhausted. The context
// cancels both the waits between attempts and the overall loop.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt < p.MaxRetries {
			log.Warnf("%s failed (attempt %d/%d), retrying in %s: %v",
				op, attempt+1, p.MaxRetries+1, p.Delay, lastErr)
			if err := sleepContext(ctx, p.Delay); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, p.MaxRetries+1, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
