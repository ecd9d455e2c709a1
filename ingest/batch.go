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
	"sync"
	"time"

	"github.com/google/uuid"
)

// BatchStatus is the lifecycle state of an ingestion batch.
type BatchStatus string

// Batch lifecycle states.
const (
	BatchPending    BatchStatus = "pending"
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
	BatchPartial    BatchStatus = "partial"
)

// Batch reports the outcome of one Load call. TotalDocs counts the chunk
// documents produced by the sources; ProcessedDocs counts the ones
// successfully indexed.
type Batch struct {
	ID            string      `json:"id"`
	Status        BatchStatus `json:"status"`
	TotalDocs     int         `json:"total_docs"`
	ProcessedDocs int         `json:"processed_docs"`
	Errors        []string    `json:"errors,omitempty"`
	StartedAt     time.Time   `json:"started_at"`
	CompletedAt   time.Time   `json:"completed_at,omitempty"`

	mu sync.Mutex
}

func newBatch() *Batch {
	return &Batch{
		ID:        uuid.NewString(),
		Status:    BatchPending,
		StartedAt: time.Now().UTC(),
	}
}

// Progress returns the completed share of the batch as a percentage.
func (b *Batch) Progress() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.TotalDocs == 0 {
		if b.Status == BatchCompleted {
			return 100
		}
		return 0
	}
	return float64(b.ProcessedDocs) / float64(b.TotalDocs) * 100
}

func (b *Batch) start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Status = BatchProcessing
}

func (b *Batch) addTotal(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.TotalDocs += n
}

func (b *Batch) markProcessed() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ProcessedDocs++
}

func (b *Batch) addError(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Errors = append(b.Errors, msg)
}

// finish settles the final status: completed when everything indexed,
// failed when nothing did, partial in between.
func (b *Batch) finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.CompletedAt = time.Now().UTC()
	switch {
	case len(b.Errors) == 0:
		b.Status = BatchCompleted
	case b.ProcessedDocs == 0:
		b.Status = BatchFailed
	default:
		b.Status = BatchPartial
	}
}
