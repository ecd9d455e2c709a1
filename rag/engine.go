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
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/embedder"
	"trpc.group/trpc-go/trpc-rag-go/graph"
	"trpc.group/trpc-go/trpc-rag-go/llm"
	"trpc.group/trpc-go/trpc-rag-go/log"
	"trpc.group/trpc-go/trpc-rag-go/reranker"
	"trpc.group/trpc-go/trpc-rag-go/retriever"
)

const (
	// defaultRunTimeout bounds a run whose caller did not set a deadline.
	defaultRunTimeout = 30 * time.Second

	// defaultTaskTTL is how long async task results stay retrievable.
	defaultTaskTTL = time.Hour
)

// Result is the outcome of one pipeline run.
type Result struct {
	// Answer is the generated answer text. It is never empty: failed runs
	// carry an apologetic or error-describing message instead.
	Answer string `json:"answer"`

	// FinalDocuments is the document set the answer was generated from.
	FinalDocuments []*document.Document `json:"final_documents"`

	// ExecutionTrace lists the executed node names in order.
	ExecutionTrace []string `json:"execution_trace"`

	// AgentMessages is the per-node audit trail.
	AgentMessages []AgentMessage `json:"agent_messages"`

	// Error describes the most recent graceful node failure, if any.
	Error string `json:"error,omitempty"`
}

// Task states of an asynchronous run.
const (
	TaskStatusPending   = "pending"
	TaskStatusRunning   = "running"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
)

// Task is the handle stored for an asynchronous run. Its JSON shape is what
// task stores persist and what polling endpoints return.
type Task struct {
	// ID is the task identifier handed back to the submitter.
	ID string `json:"id"`

	// Status is one of the TaskStatus constants.
	Status string `json:"status"`

	// Query is the submitted query text.
	Query string `json:"query"`

	// Result is set once the run completed.
	Result *Result `json:"result,omitempty"`

	// Error is set when the run could not be executed at all.
	Error string `json:"error,omitempty"`

	// CreatedAt is when the task was accepted.
	CreatedAt time.Time `json:"created_at"`

	// CompletedAt is when the run finished, successfully or not.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TaskStore persists async task handles under a TTL. It is declared here,
// at the point of use; the a2a package ships go-cache and redis backed
// implementations that satisfy it.
type TaskStore interface {
	// Put stores a value under the id for the given TTL.
	Put(ctx context.Context, id string, value any, ttl time.Duration) error

	// Get returns the stored value, reporting whether it exists.
	Get(ctx context.Context, id string) (any, bool, error)

	// Delete removes the value. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}

// Engine runs the retrieval pipeline. The compiled graph is built lazily on
// first use and reused by every run; Rebuild swaps in a fresh compiled
// instance without invalidating the one in-flight runs hold.
type Engine struct {
	pipeline *pipeline

	taskStore  TaskStore
	taskTTL    time.Duration
	runTimeout time.Duration

	mu       sync.Mutex
	compiled *graph.Graph
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	embedder   embedder.Embedder
	generator  llm.Generator
	scorer     reranker.Scorer
	provider   retriever.Provider
	collection string
	taskStore  TaskStore
	taskTTL    time.Duration
	runTimeout time.Duration
}

// WithEmbedder sets the embedding client shared by the dense strategies.
func WithEmbedder(e embedder.Embedder) EngineOption {
	return func(opts *engineOptions) {
		opts.embedder = e
	}
}

// WithGenerator sets the chat-completion client shared by every
// model-calling stage.
func WithGenerator(g llm.Generator) EngineOption {
	return func(opts *engineOptions) {
		opts.generator = g
	}
}

// WithScorer sets the cross-encoder used for reranking.
func WithScorer(s reranker.Scorer) EngineOption {
	return func(opts *engineOptions) {
		opts.scorer = s
	}
}

// WithProvider sets the vector store provider resolving collection names.
func WithProvider(p retriever.Provider) EngineOption {
	return func(opts *engineOptions) {
		opts.provider = p
	}
}

// WithCollection sets the collection every retrieval searches. Empty
// selects the provider's default collection.
func WithCollection(name string) EngineOption {
	return func(opts *engineOptions) {
		opts.collection = name
	}
}

// WithTaskStore sets the store RunAsync registers task handles in.
func WithTaskStore(store TaskStore) EngineOption {
	return func(opts *engineOptions) {
		opts.taskStore = store
	}
}

// WithTaskTTL sets how long async task handles stay retrievable.
func WithTaskTTL(ttl time.Duration) EngineOption {
	return func(opts *engineOptions) {
		if ttl > 0 {
			opts.taskTTL = ttl
		}
	}
}

// WithRunTimeout sets the deadline applied to runs whose caller did not
// provide one.
func WithRunTimeout(timeout time.Duration) EngineOption {
	return func(opts *engineOptions) {
		if timeout > 0 {
			opts.runTimeout = timeout
		}
	}
}

// New creates an engine over the injected clients. The clients are shared
// by all runs and must be safe for concurrent use.
func New(opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		taskTTL:    defaultTaskTTL,
		runTimeout: defaultRunTimeout,
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.embedder == nil {
		return nil, errors.New("rag: embedder is required")
	}
	if options.provider == nil {
		return nil, errors.New("rag: vector store provider is required")
	}

	return &Engine{
		pipeline: newPipeline(
			options.embedder,
			options.generator,
			options.scorer,
			options.provider,
			options.collection,
		),
		taskStore:  options.taskStore,
		taskTTL:    options.taskTTL,
		runTimeout: options.runTimeout,
	}, nil
}

// Graph returns the compiled pipeline graph, building it on first use.
func (e *Engine) Graph() (*graph.Graph, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.compiled != nil {
		return e.compiled, nil
	}
	compiled, err := e.pipeline.buildGraph()
	if err != nil {
		return nil, fmt.Errorf("rag: build pipeline graph: %w", err)
	}
	e.compiled = compiled
	return compiled, nil
}

// Rebuild compiles a fresh graph and swaps it in. Runs already holding the
// previous instance keep using it; only new runs see the replacement.
func (e *Engine) Rebuild() (*graph.Graph, error) {
	compiled, err := e.pipeline.buildGraph()
	if err != nil {
		return nil, fmt.Errorf("rag: rebuild pipeline graph: %w", err)
	}
	e.mu.Lock()
	e.compiled = compiled
	e.mu.Unlock()
	return compiled, nil
}

// Run executes the pipeline synchronously and returns the final result.
// Node failures degrade inside the run and surface through Result.Error;
// only an empty query, a broken graph or a cancelled context fail the call.
// A caller context without a deadline is bounded by the engine's run
// timeout.
func (e *Engine) Run(ctx context.Context, query string, config *AgentConfig) (*Result, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.runTimeout)
		defer cancel()
	}

	events, err := e.Stream(ctx, query, config)
	if err != nil {
		return nil, err
	}

	var final graph.State
	var execErr error
	for event := range events {
		switch event.Type {
		case graph.EventGraphComplete:
			final = event.FinalState
		case graph.EventGraphError:
			execErr = fmt.Errorf("rag: pipeline execution: %s", event.Error)
		}
	}
	if execErr != nil {
		return nil, execErr
	}
	if final == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("rag: pipeline finished without a final state")
	}
	return ResultFromState(final), nil
}

// Stream executes the pipeline and streams execution events as they
// happen. The channel closes after a final completion or error event.
func (e *Engine) Stream(ctx context.Context, query string, config *AgentConfig) (<-chan *graph.Event, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	compiled, err := e.Graph()
	if err != nil {
		return nil, err
	}
	executor, err := graph.NewExecutor(compiled)
	if err != nil {
		return nil, fmt.Errorf("rag: create executor: %w", err)
	}
	return executor.Execute(ctx, NewPipelineState(query, config), "")
}

// RunAsync submits the query for background execution and returns a task
// ID immediately. The task handle in the store moves through
// pending -> running -> completed/failed; poll it with TaskStore.Get.
func (e *Engine) RunAsync(ctx context.Context, query string, config *AgentConfig) (string, error) {
	if e.taskStore == nil {
		return "", ErrNoTaskStore
	}
	if strings.TrimSpace(query) == "" {
		return "", ErrEmptyQuery
	}

	task := &Task{
		ID:        uuid.NewString(),
		Status:    TaskStatusPending,
		Query:     query,
		CreatedAt: time.Now(),
	}
	if err := e.taskStore.Put(ctx, task.ID, task, e.taskTTL); err != nil {
		return "", fmt.Errorf("rag: register task: %w", err)
	}

	// The run outlives the submitting request, so it gets its own context
	// bounded by the engine's run timeout.
	go e.runTask(task, config)

	return task.ID, nil
}

// runTask executes one async task and stores the terminal handle.
func (e *Engine) runTask(task *Task, config *AgentConfig) {
	ctx, cancel := context.WithTimeout(context.Background(), e.runTimeout)
	defer cancel()

	running := *task
	running.Status = TaskStatusRunning
	if err := e.taskStore.Put(ctx, task.ID, &running, e.taskTTL); err != nil {
		log.Errorf("async task %s: update status: %v", task.ID, err)
	}

	result, err := e.Run(ctx, task.Query, config)

	done := running
	now := time.Now()
	done.CompletedAt = &now
	if err != nil {
		done.Status = TaskStatusFailed
		done.Error = err.Error()
	} else {
		done.Status = TaskStatusCompleted
		done.Result = result
	}
	// Store with a fresh context: the run context may already be expired.
	storeCtx, storeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer storeCancel()
	if err := e.taskStore.Put(storeCtx, task.ID, &done, e.taskTTL); err != nil {
		log.Errorf("async task %s: store result: %v", task.ID, err)
	}
}

// ResultFromState projects a final pipeline state onto the Result shape.
// Stream consumers use it on the EventGraphComplete final state; Run calls
// it internally.
func ResultFromState(state graph.State) *Result {
	result := &Result{
		Answer:         stateString(state, StateKeyAnswer),
		FinalDocuments: stateDocuments(state, StateKeyFinalDocuments),
		ExecutionTrace: stateStringSlice(state, StateKeyExecutionTrace),
		AgentMessages:  stateMessages(state),
		Error:          stateString(state, StateKeyError),
	}
	if result.FinalDocuments == nil {
		result.FinalDocuments = []*document.Document{}
	}
	return result
}
