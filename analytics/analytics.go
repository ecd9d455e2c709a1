//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package analytics records per-query observations in memory. The recorder
// keeps a bounded window of recent queries and aggregates them on demand;
// nothing is persisted.
package analytics

import (
	"sync"
	"time"
)

// defaultCapacity bounds the number of retained records.
const defaultCapacity = 1000

// QueryRecord is one observed pipeline run.
type QueryRecord struct {
	// Method is the retrieval method the run used.
	Method string `json:"method"`

	// LatencyMS is the end-to-end latency in milliseconds.
	LatencyMS float64 `json:"latency_ms"`

	// ResultCount is the number of context documents in the final state.
	ResultCount int `json:"result_count"`

	// Failed marks runs that ended in an error.
	Failed bool `json:"failed"`

	// Feedback is an optional 1-5 user rating; zero means none given.
	Feedback int `json:"feedback,omitempty"`

	// Timestamp is when the run finished. Zero is filled at record time.
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is the aggregate view of the retained window.
type Snapshot struct {
	// TotalQueries counts every query recorded since startup.
	TotalQueries int `json:"total_queries"`

	// WindowQueries counts the queries currently retained.
	WindowQueries int `json:"window_queries"`

	// ByMethod counts retained queries per retrieval method.
	ByMethod map[string]int `json:"queries_by_method"`

	// AvgLatencyMS is the mean latency over the window.
	AvgLatencyMS float64 `json:"avg_latency_ms"`

	// ErrorRate is the failed share of the window, 0 to 1.
	ErrorRate float64 `json:"error_rate"`

	// AvgFeedback is the mean rating over rated queries, 0 when none.
	AvgFeedback float64 `json:"avg_feedback"`

	// WindowStart is the timestamp of the oldest retained record.
	WindowStart time.Time `json:"window_start,omitempty"`

	// GeneratedAt is when this snapshot was taken.
	GeneratedAt time.Time `json:"generated_at"`
}

// Recorder is a thread-safe ring buffer of query records.
type Recorder struct {
	mu       sync.Mutex
	records  []QueryRecord
	next     int
	size     int
	total    int
	capacity int
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithCapacity sets how many records the window retains.
func WithCapacity(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.capacity = n
		}
	}
}

// NewRecorder creates a recorder with the given options.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(r)
	}
	r.records = make([]QueryRecord, r.capacity)
	return r
}

// Record appends one observation, evicting the oldest when the window is
// full. Feedback outside 1-5 is dropped to zero.
func (r *Recorder) Record(rec QueryRecord) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	if rec.Feedback < 1 || rec.Feedback > 5 {
		rec.Feedback = 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[r.next] = rec
	r.next = (r.next + 1) % r.capacity
	if r.size < r.capacity {
		r.size++
	}
	r.total++
}

// Snapshot aggregates the retained window.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		TotalQueries:  r.total,
		WindowQueries: r.size,
		ByMethod:      make(map[string]int, 8),
		GeneratedAt:   time.Now().UTC(),
	}
	if r.size == 0 {
		return snap
	}

	var latencySum float64
	var failed, feedbackSum, feedbackCount int
	oldest := time.Time{}
	for i := 0; i < r.size; i++ {
		rec := r.at(i)
		snap.ByMethod[rec.Method]++
		latencySum += rec.LatencyMS
		if rec.Failed {
			failed++
		}
		if rec.Feedback > 0 {
			feedbackSum += rec.Feedback
			feedbackCount++
		}
		if oldest.IsZero() || rec.Timestamp.Before(oldest) {
			oldest = rec.Timestamp
		}
	}

	snap.AvgLatencyMS = latencySum / float64(r.size)
	snap.ErrorRate = float64(failed) / float64(r.size)
	if feedbackCount > 0 {
		snap.AvgFeedback = float64(feedbackSum) / float64(feedbackCount)
	}
	snap.WindowStart = oldest
	return snap
}

// at returns the i-th retained record, oldest first. Callers hold the
// lock.
func (r *Recorder) at(i int) QueryRecord {
	if r.size < r.capacity {
		return r.records[i]
	}
	return r.records[(r.next+i)%r.capacity]
}
