//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package ingest loads documents from sources into a vector store. Sources
// are read and indexed concurrently, failures are retried with a bounded
// policy, and every Load returns a batch report of what happened.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/embedder"
	"trpc.group/trpc-go/trpc-rag-go/ingest/source"
	"trpc.group/trpc-go/trpc-rag-go/llm"
	"trpc.group/trpc-go/trpc-rag-go/log"
	"trpc.group/trpc-go/trpc-rag-go/vectorstore"
)

// maxSourceParallel caps the default source-level parallelism; reading
// sources is mostly IO so a small pool is enough.
const maxSourceParallel = 4

// Configuration errors.
var (
	ErrNoEmbedder    = errors.New("ingest: embedder is required")
	ErrNoVectorStore = errors.New("ingest: vector store is required")
)

// Ingestor embeds and indexes documents read from sources.
type Ingestor struct {
	embedder       embedder.Embedder
	store          vectorstore.VectorStore
	generator      llm.Generator
	srcParallelism int
	docParallelism int
	indexingRetry  RetryPolicy
	questionRetry  RetryPolicy
	hypothetical   bool
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithEmbedder sets the embedder used to vectorize documents.
func WithEmbedder(e embedder.Embedder) Option {
	return func(i *Ingestor) {
		i.embedder = e
	}
}

// WithVectorStore sets the destination store.
func WithVectorStore(vs vectorstore.VectorStore) Option {
	return func(i *Ingestor) {
		i.store = vs
	}
}

// WithGenerator sets the language model used for hypothetical question
// generation. Setting a generator enables the augmentation.
func WithGenerator(g llm.Generator) Option {
	return func(i *Ingestor) {
		i.generator = g
		i.hypothetical = true
	}
}

// WithHypotheticalQuestions toggles hypothetical question indexing. It has
// no effect without a generator.
func WithHypotheticalQuestions(enabled bool) Option {
	return func(i *Ingestor) {
		i.hypothetical = enabled
	}
}

// WithSourceParallelism sets how many sources are read concurrently.
func WithSourceParallelism(n int) Option {
	return func(i *Ingestor) {
		if n > 0 {
			i.srcParallelism = n
		}
	}
}

// WithDocParallelism sets how many documents are indexed concurrently.
func WithDocParallelism(n int) Option {
	return func(i *Ingestor) {
		if n > 0 {
			i.docParallelism = n
		}
	}
}

// WithIndexingRetry overrides the retry policy for per-document indexing.
func WithIndexingRetry(p RetryPolicy) Option {
	return func(i *Ingestor) {
		i.indexingRetry = p
	}
}

// WithQuestionRetry overrides the retry policy for hypothetical question
// generation.
func WithQuestionRetry(p RetryPolicy) Option {
	return func(i *Ingestor) {
		i.questionRetry = p
	}
}

// New creates an Ingestor with the given options.
func New(opts ...Option) *Ingestor {
	ing := &Ingestor{
		srcParallelism: maxSourceParallel,
		docParallelism: runtime.NumCPU(),
		indexingRetry:  IndexingRetry,
		questionRetry:  QuestionRetry,
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// Load reads every source, chunks and embeds its documents, and upserts
// them into the vector store. Sources are processed on a source-level
// worker pool and their documents on a shared document-level pool. The
// returned batch reports totals, per-document errors and the final status.
func (i *Ingestor) Load(ctx context.Context, sources ...source.Source) (*Batch, error) {
	if i.embedder == nil {
		return nil, ErrNoEmbedder
	}
	if i.store == nil {
		return nil, ErrNoVectorStore
	}

	batch := newBatch()
	batch.start()

	srcPool, err := ants.NewPool(i.srcParallelism)
	if err != nil {
		return nil, fmt.Errorf("create source worker pool: %w", err)
	}
	defer srcPool.Release()

	docPool, err := ants.NewPool(i.docParallelism)
	if err != nil {
		return nil, fmt.Errorf("create document worker pool: %w", err)
	}
	defer docPool.Release()

	var wg sync.WaitGroup
	for idx, src := range sources {
		wg.Add(1)
		srcIdx := idx
		s := src
		if err := srcPool.Submit(func() {
			defer wg.Done()
			i.loadSource(ctx, srcIdx, len(sources), s, docPool, batch)
		}); err != nil {
			wg.Done()
			batch.addError(fmt.Sprintf("submit source %s: %v", s.Name(), err))
		}
	}
	wg.Wait()

	batch.finish()
	log.Infof("Ingestion batch %s finished: %s, %d/%d documents indexed",
		batch.ID, batch.Status, batch.ProcessedDocs, batch.TotalDocs)
	return batch, nil
}

// loadSource reads one source and indexes its documents on the shared
// document pool.
func (i *Ingestor) loadSource(
	ctx context.Context,
	srcIdx, totalSources int,
	src source.Source,
	docPool *ants.Pool,
	batch *Batch,
) {
	log.Infof("Loading source %d/%d: %s (type: %s)", srcIdx+1, totalSources, src.Name(), src.Type())

	docs, err := src.ReadDocuments(ctx)
	if err != nil {
		batch.addError(fmt.Sprintf("read source %s: %v", src.Name(), err))
		return
	}
	log.Infof("Fetched %d document(s) from source %s", len(docs), src.Name())
	batch.addTotal(len(docs))

	var wgDoc sync.WaitGroup
	for _, doc := range docs {
		wgDoc.Add(1)
		d := doc
		if err := docPool.Submit(func() {
			defer wgDoc.Done()
			i.indexDocument(ctx, d, batch)
		}); err != nil {
			wgDoc.Done()
			batch.addError(fmt.Sprintf("submit document %s: %v", d.ID, err))
		}
	}
	wgDoc.Wait()
}

// indexDocument embeds and upserts one document, retrying per the
// indexing policy, then indexes its hypothetical questions when enabled.
func (i *Ingestor) indexDocument(ctx context.Context, doc *document.Document, batch *Batch) {
	err := i.indexingRetry.Do(ctx, fmt.Sprintf("index document %s", doc.ID), func(ctx context.Context) error {
		return i.upsert(ctx, doc)
	})
	if err != nil {
		batch.addError(err.Error())
		return
	}
	batch.markProcessed()

	if i.hypothetical && i.generator != nil {
		// Question generation failures degrade the augmentation, not the
		// batch: the document itself is already searchable.
		if err := i.indexHypotheticalQuestions(ctx, doc); err != nil {
			log.Warnf("hypothetical questions for document %s: %v", doc.ID, err)
		}
	}
}

// upsert embeds one document and writes it to the store. Stable IDs make
// this idempotent across retries and re-ingestion.
func (i *Ingestor) upsert(ctx context.Context, doc *document.Document) error {
	embedding, err := i.embedder.GetEmbedding(ctx, doc.Content)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if doc.Metadata != nil {
		doc.Metadata = document.SanitizeMetadata(doc.Metadata)
	}
	if err := i.store.Add(ctx, doc, embedding); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}
