//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory vector store. It backs tests and
// single-process deployments where the corpus fits in memory; documents
// and their embeddings live in one map guarded by a read-write mutex.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"sync"
	"time"

	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/searchfilter"
	"trpc.group/trpc-go/trpc-rag-go/vectorstore"
)

var (
	errNilDocument    = errors.New("document cannot be nil")
	errEmptyID        = errors.New("document ID cannot be empty")
	errEmptyEmbedding = errors.New("embedding cannot be empty")
)

// defaultMaxResults bounds a search when the query sets no limit.
const defaultMaxResults = 10

var _ vectorstore.VectorStore = (*VectorStore)(nil)

// entry pairs a stored document with its embedding vector.
type entry struct {
	doc *document.Document
	vec []float64
}

// VectorStore keeps the whole collection in process memory.
type VectorStore struct {
	mu      sync.RWMutex
	entries map[string]*entry

	maxResults      int
	filterConverter searchfilter.Converter[comparisonFunc]
}

// Option represents a functional option for configuring VectorStore.
type Option func(*VectorStore)

// WithMaxResults sets the maximum number of search results.
func WithMaxResults(maxResults int) Option {
	return func(s *VectorStore) {
		if maxResults <= 0 {
			maxResults = defaultMaxResults
		}
		s.maxResults = maxResults
	}
}

// New creates an empty in-memory vector store.
func New(opts ...Option) *VectorStore {
	s := &VectorStore{
		entries:         make(map[string]*entry),
		maxResults:      defaultMaxResults,
		filterConverter: &inmemoryConverter{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validate(doc *document.Document, embedding []float64) error {
	if doc == nil {
		return errNilDocument
	}
	if doc.ID == "" {
		return errEmptyID
	}
	if len(embedding) == 0 {
		return errEmptyEmbedding
	}
	return nil
}

// newEntry clones the document and copies the vector so later mutation by
// the caller cannot reach stored state.
func newEntry(doc *document.Document, embedding []float64) *entry {
	vec := make([]float64, len(embedding))
	copy(vec, embedding)
	return &entry{doc: doc.Clone(), vec: vec}
}

// Add implements vectorstore.VectorStore interface.
func (s *VectorStore) Add(ctx context.Context, doc *document.Document, embedding []float64) error {
	if err := validate(doc, embedding); err != nil {
		return err
	}

	e := newEntry(doc, embedding)
	now := time.Now()
	if e.doc.CreatedAt.IsZero() {
		e.doc.CreatedAt = now
	}
	e.doc.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[doc.ID] = e
	return nil
}

// Get implements vectorstore.VectorStore interface.
func (s *VectorStore) Get(ctx context.Context, id string) (*document.Document, []float64, error) {
	if id == "" {
		return nil, nil, errEmptyID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, nil, fmt.Errorf("document not found: %s", id)
	}

	vec := make([]float64, len(e.vec))
	copy(vec, e.vec)
	return e.doc.Clone(), vec, nil
}

// Update implements vectorstore.VectorStore interface. The document must
// already exist; its original creation time is preserved.
func (s *VectorStore) Update(ctx context.Context, doc *document.Document, embedding []float64) error {
	if err := validate(doc, embedding); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.entries[doc.ID]
	if !ok {
		return fmt.Errorf("document not found: %s", doc.ID)
	}

	e := newEntry(doc, embedding)
	e.doc.CreatedAt = old.doc.CreatedAt
	e.doc.UpdatedAt = time.Now()
	s.entries[doc.ID] = e
	return nil
}

// Delete implements vectorstore.VectorStore interface.
func (s *VectorStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("document not found: %s", id)
	}
	delete(s.entries, id)
	return nil
}

// Search implements vectorstore.VectorStore interface.
func (s *VectorStore) Search(ctx context.Context, query *vectorstore.SearchQuery) (*vectorstore.SearchResult, error) {
	if query == nil {
		return nil, errors.New("query cannot be nil")
	}
	if query.SearchMode == vectorstore.SearchModeFilter {
		return s.filterSearch(query), nil
	}
	return s.vectorSearch(query)
}

// vectorSearch scores every stored embedding against the query vector by
// cosine similarity. Entries whose dimensionality differs from the query
// are skipped rather than scored as zero.
func (s *VectorStore) vectorSearch(query *vectorstore.SearchQuery) (*vectorstore.SearchResult, error) {
	if len(query.Vector) == 0 {
		return nil, fmt.Errorf("query vector cannot be empty for vector search")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var scored []*vectorstore.ScoredDocument
	for _, e := range s.entries {
		if len(e.vec) != len(query.Vector) {
			continue
		}
		if !s.matches(e, query.Filter) {
			continue
		}
		score := cosineSimilarity(query.Vector, e.vec)
		if score < query.MinScore {
			continue
		}
		scored = append(scored, &vectorstore.ScoredDocument{
			Document: e.doc.Clone(),
			Score:    score,
		})
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return &vectorstore.SearchResult{Results: s.trim(scored, query.Limit)}, nil
}

// filterSearch returns every entry matching the filter. Matches carry no
// similarity signal, so they get a neutral score and sort newest first.
func (s *VectorStore) filterSearch(query *vectorstore.SearchQuery) *vectorstore.SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var scored []*vectorstore.ScoredDocument
	for _, e := range s.entries {
		if !s.matches(e, query.Filter) {
			continue
		}
		scored = append(scored, &vectorstore.ScoredDocument{
			Document: e.doc.Clone(),
			Score:    1.0,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].Document.CreatedAt.After(scored[j].Document.CreatedAt)
	})
	return &vectorstore.SearchResult{Results: s.trim(scored, query.Limit)}
}

// ListDocuments implements vectorstore.VectorStore interface. Documents are
// returned as clones in ID order so callers iterate a stable corpus.
func (s *VectorStore) ListDocuments(ctx context.Context) ([]*document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.sortedIDs()
	docs := make([]*document.Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, s.entries[id].doc.Clone())
	}
	return docs, nil
}

// DeleteByFilter deletes documents by ID list, metadata filter, or wholesale.
func (s *VectorStore) DeleteByFilter(ctx context.Context, opts ...vectorstore.DeleteOption) error {
	config := vectorstore.ApplyDeleteOptions(opts...)

	if config.DeleteAll && (len(config.DocumentIDs) > 0 || len(config.Filter) > 0) {
		return fmt.Errorf("inmemory delete all documents, but document ids or filter are provided")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if config.DeleteAll {
		s.entries = make(map[string]*entry)
		return nil
	}
	if len(config.DocumentIDs) == 0 && len(config.Filter) == 0 {
		return fmt.Errorf("inmemory delete by filter: no filter conditions specified")
	}

	filter := &vectorstore.SearchFilter{
		IDs:      config.DocumentIDs,
		Metadata: config.Filter,
	}
	for id, e := range s.entries {
		if s.matches(e, filter) {
			delete(s.entries, id)
		}
	}
	return nil
}

// Count counts the documents matching the optional metadata filter.
func (s *VectorStore) Count(ctx context.Context, opts ...vectorstore.CountOption) (int, error) {
	config := vectorstore.ApplyCountOptions(opts...)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(config.Filter) == 0 {
		return len(s.entries), nil
	}

	filter := &vectorstore.SearchFilter{Metadata: config.Filter}
	count := 0
	for _, e := range s.entries {
		if s.matches(e, filter) {
			count++
		}
	}
	return count, nil
}

// GetMetadata retrieves per-document metadata with filtering and pagination.
func (s *VectorStore) GetMetadata(ctx context.Context, opts ...vectorstore.GetMetadataOption) (map[string]vectorstore.DocumentMetadata, error) {
	config, err := vectorstore.ApplyGetMetadataOptions(opts...)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	filter := &vectorstore.SearchFilter{IDs: config.IDs, Metadata: config.Filter}
	var matched []string
	for id, e := range s.entries {
		if s.matches(e, filter) {
			matched = append(matched, id)
		}
	}

	result := make(map[string]vectorstore.DocumentMetadata)

	// Negative limit disables pagination.
	if config.Limit < 0 {
		for _, id := range matched {
			result[id] = vectorstore.DocumentMetadata{Metadata: s.entries[id].doc.Metadata}
		}
		return result, nil
	}

	// Paginating a map-ordered set needs a stable base.
	sort.Strings(matched)
	if config.Offset >= len(matched) {
		return result, nil
	}
	end := config.Offset + config.Limit
	if end > len(matched) {
		end = len(matched)
	}
	for _, id := range matched[config.Offset:end] {
		result[id] = vectorstore.DocumentMetadata{Metadata: s.entries[id].doc.Metadata}
	}
	return result, nil
}

// Close implements vectorstore.VectorStore interface.
func (s *VectorStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}

// matches reports whether the entry passes the filter. A nil filter matches
// everything. Caller must hold at least the read lock.
func (s *VectorStore) matches(e *entry, filter *vectorstore.SearchFilter) bool {
	if filter == nil {
		return true
	}

	if len(filter.IDs) > 0 {
		ok := false
		for _, id := range filter.IDs {
			if id == e.doc.ID {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	for key, want := range filter.Metadata {
		got, ok := e.doc.Metadata[key]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}

	if filter.FilterCondition != nil {
		pred, err := s.filterConverter.Convert(filter.FilterCondition)
		if err != nil {
			return false
		}
		if pred != nil && !pred(e.doc) {
			return false
		}
	}
	return true
}

// sortedIDs returns the stored IDs in ascending order. Caller must hold at
// least the read lock.
func (s *VectorStore) sortedIDs() []string {
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// trim caps the result list at the query limit, falling back to the store
// default when the query sets none.
func (s *VectorStore) trim(results []*vectorstore.ScoredDocument, limit int) []*vectorstore.ScoredDocument {
	if limit <= 0 {
		limit = s.maxResults
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// cosineSimilarity computes the cosine of the angle between a and b. It
// returns 0 for mismatched dimensions and zero-length vectors.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
