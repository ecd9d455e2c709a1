//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"trpc.group/trpc-go/trpc-rag-go/a2a"
	"trpc.group/trpc-go/trpc-rag-go/analytics"
	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/ingest"
	"trpc.group/trpc-go/trpc-rag-go/ingest/source/inline"
	"trpc.group/trpc-go/trpc-rag-go/log"
	"trpc.group/trpc-go/trpc-rag-go/rag"
)

// QueryRequest is the body of POST /api/query and POST /api/query/async.
// A nil config runs the pipeline with its documented defaults.
type QueryRequest struct {
	Query  string           `json:"query"`
	Config *rag.AgentConfig `json:"config,omitempty"`
}

// QueryResponse is the body returned by POST /api/query.
type QueryResponse struct {
	Query     string      `json:"query"`
	Result    *rag.Result `json:"result"`
	LatencyMS float64     `json:"latency_ms"`
}

// AsyncQueryResponse is the body returned by POST /api/query/async. Poll
// GET /api/tasks/{task_id} for the result.
type AsyncQueryResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// AgentListResponse is the body of GET /api/agents.
type AgentListResponse struct {
	Count  int              `json:"count"`
	Agents []*a2a.AgentCard `json:"agents"`
}

// HealthStatus is the body of GET /api/health.
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// DocumentPayload is one uploaded document in POST /api/documents. Year,
// topics and subtopic feed the self-query strategy's metadata filters.
type DocumentPayload struct {
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Source   string         `json:"source,omitempty"`
	Year     int            `json:"year,omitempty"`
	Topics   []string       `json:"topics,omitempty"`
	Subtopic string         `json:"subtopic,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// DocumentUploadRequest is the body of POST /api/documents.
type DocumentUploadRequest struct {
	Documents  []DocumentPayload `json:"documents"`
	Collection string            `json:"collection_name,omitempty"`
}

// CollectionStats is the body of GET /api/collections/{name}/stats.
type CollectionStats struct {
	Collection       string      `json:"collection"`
	DocumentCount    int         `json:"document_count"`
	YearDistribution map[int]int `json:"year_distribution,omitempty"`
}

// ---- query handlers -----------------------------------------------------

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	defer r.Body.Close()
	log.Infof("handleQuery: %.80q", req.Query)

	start := time.Now()
	result, err := s.engine.Run(r.Context(), req.Query, req.Config)
	latency := float64(time.Since(start)) / float64(time.Millisecond)
	if err != nil {
		s.record(req.Config, nil, latency, true)
		s.writeError(w, queryStatus(err), err)
		return
	}
	s.record(req.Config, result, latency, result.Error != "")

	s.writeJSON(w, &QueryResponse{Query: req.Query, Result: result, LatencyMS: latency})
}

func (s *Server) handleQueryAsync(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	defer r.Body.Close()
	log.Infof("handleQueryAsync: %.80q", req.Query)

	taskID, err := s.engine.RunAsync(r.Context(), req.Query, req.Config)
	if err != nil {
		s.writeError(w, queryStatus(err), err)
		return
	}
	s.writeJSONStatus(w, http.StatusAccepted, &AsyncQueryResponse{
		TaskID: taskID,
		Status: rag.TaskStatusPending,
	})
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	if s.tasks == nil {
		s.writeError(w, http.StatusServiceUnavailable, rag.ErrNoTaskStore)
		return
	}
	id := mux.Vars(r)["id"]
	value, found, err := s.tasks.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !found {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("task not found: %s", id))
		return
	}
	// Redis-backed stores hand back the stored JSON verbatim.
	if raw, ok := value.(json.RawMessage); ok {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(raw)
		return
	}
	s.writeJSON(w, value)
}

// record feeds one run into the analytics recorder.
func (s *Server) record(config *rag.AgentConfig, result *rag.Result, latencyMS float64, failed bool) {
	count := 0
	if result != nil {
		count = len(result.FinalDocuments)
	}
	s.recorder.Record(analytics.QueryRecord{
		Method:      retrievalMethod(config, result),
		LatencyMS:   latencyMS,
		ResultCount: count,
		Failed:      failed,
	})
}

// methodByNode maps the strategy nodes to their route names.
var methodByNode = map[string]string{
	rag.NodeVectorRetriever:       rag.RouteVector.String(),
	rag.NodeBM25Retriever:         rag.RouteBM25.String(),
	rag.NodeHybridMerger:          rag.RouteHybrid.String(),
	rag.NodeSelfQueryConstructor:  rag.RouteSelfQuery.String(),
	rag.NodeHypotheticalRetriever: rag.RouteHypothetical.String(),
}

// retrievalMethod names the strategy for analytics: the strategy node the
// run actually executed, falling back to the requested methods.
func retrievalMethod(config *rag.AgentConfig, result *rag.Result) string {
	if result != nil {
		for _, node := range result.ExecutionTrace {
			if method, ok := methodByNode[node]; ok {
				return method
			}
		}
	}
	if config != nil && len(config.RetrievalMethods) > 0 {
		return strings.Join(config.RetrievalMethods, ",")
	}
	return rag.RouteVector.String()
}

// queryStatus maps a run error to its HTTP status.
func queryStatus(err error) int {
	switch {
	case errors.Is(err, rag.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, rag.ErrNoTaskStore):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ---- agent mesh handlers ------------------------------------------------

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	cards := s.agents.List()
	if agentType := query.Get("type"); agentType != "" {
		cards = filterCards(cards, func(c *a2a.AgentCard) bool { return c.AgentType == agentType })
	}
	if stage := query.Get("stage"); stage != "" {
		cards = filterCards(cards, func(c *a2a.AgentCard) bool { return c.Metadata[a2a.MetaPipelineStage] == stage })
	}
	if capability := query.Get("capability"); capability != "" {
		cards = filterCards(cards, func(c *a2a.AgentCard) bool { return c.HasCapability(capability) })
	}
	if cards == nil {
		cards = []*a2a.AgentCard{}
	}
	s.writeJSON(w, &AgentListResponse{Count: len(cards), Agents: cards})
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	card, err := s.agents.Get(mux.Vars(r)["name"])
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeJSON(w, card)
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.agents.DiscoveryDocument())
}

func (s *Server) handleA2AMessage(w http.ResponseWriter, r *http.Request) {
	var msg a2a.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode message: %w", err))
		return
	}
	defer r.Body.Close()

	card, err := s.taskRouter.Route(&msg)
	if err != nil {
		s.writeJSONStatus(w, http.StatusBadRequest, msg.ReplyError(err.Error()))
		return
	}
	log.Debugf("handleA2AMessage: routed message %s to %s", msg.MessageID, card.Name)

	// The reply is sent on behalf of the routed agent.
	msg.RecipientID = card.Name
	payload := map[string]any{
		"status":    "routed",
		"routed_to": card.Name,
		"message":   fmt.Sprintf("Task routed to %s.", card.Name),
	}
	if card.Endpoint != "" {
		payload["agent_endpoint"] = card.Endpoint
	}
	if stage, ok := card.Metadata[a2a.MetaPipelineStage]; ok {
		payload["pipeline_stage"] = stage
	}
	s.writeJSONStatus(w, http.StatusAccepted, msg.Reply(payload))
}

func filterCards(cards []*a2a.AgentCard, keep func(*a2a.AgentCard) bool) []*a2a.AgentCard {
	var filtered []*a2a.AgentCard
	for _, card := range cards {
		if keep(card) {
			filtered = append(filtered, card)
		}
	}
	return filtered
}

// ---- introspection handlers ---------------------------------------------

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	desc, err := s.engine.DescribeGraph()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, desc)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := &HealthStatus{
		Status:    StatusHealthy,
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]string, len(s.checks)),
	}
	for _, check := range s.checks {
		if err := check.ping(r.Context()); err != nil {
			health.Checks[check.name] = "error: " + err.Error()
			health.Status = StatusDegraded
			continue
		}
		health.Checks[check.name] = "ok"
	}

	code := http.StatusOK
	if health.Status != StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	s.writeJSONStatus(w, code, health)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.recorder.Snapshot())
}

// ---- ingestion handlers -------------------------------------------------

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if s.stores == nil || s.embedder == nil {
		s.writeError(w, http.StatusServiceUnavailable,
			errors.New("document ingestion is not configured"))
		return
	}

	var req DocumentUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	defer r.Body.Close()

	if len(req.Documents) == 0 {
		s.writeError(w, http.StatusBadRequest, errors.New("no documents in request"))
		return
	}
	for i, doc := range req.Documents {
		if strings.TrimSpace(doc.Title) == "" || strings.TrimSpace(doc.Content) == "" {
			s.writeError(w, http.StatusBadRequest,
				fmt.Errorf("document %d: title and content are required", i))
			return
		}
	}

	store, err := s.stores.Collection(req.Collection)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	log.Infof("handleDocuments: indexing %d document(s) into collection %q",
		len(req.Documents), req.Collection)

	items := make([]inline.Item, 0, len(req.Documents))
	for _, doc := range req.Documents {
		items = append(items, inline.Item{
			Title:    doc.Title,
			Content:  doc.Content,
			Metadata: payloadMetadata(doc),
		})
	}

	// User-supplied options first, then the mandatory embedder and store.
	opts := append([]ingest.Option{}, s.ingestOpts...)
	opts = append(opts, ingest.WithEmbedder(s.embedder), ingest.WithVectorStore(store))
	batch, err := ingest.New(opts...).Load(r.Context(), inline.New(items, inline.WithName("API Upload")))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, batch)
}

// payloadMetadata projects an upload payload onto document metadata. The
// typed fields override same-named keys in the free-form map.
func payloadMetadata(doc DocumentPayload) map[string]any {
	metadata := make(map[string]any, len(doc.Metadata)+4)
	for k, v := range doc.Metadata {
		metadata[k] = v
	}
	if doc.Source != "" {
		metadata[document.MetaSource] = doc.Source
	}
	if doc.Year != 0 {
		metadata[document.MetaYear] = doc.Year
	}
	if len(doc.Topics) > 0 {
		metadata[document.MetaTopics] = doc.Topics
	}
	if doc.Subtopic != "" {
		metadata[document.MetaSubtopic] = doc.Subtopic
	}
	return metadata
}

func (s *Server) handleCollectionStats(w http.ResponseWriter, r *http.Request) {
	if s.stores == nil {
		s.writeError(w, http.StatusServiceUnavailable,
			errors.New("no vector store registry configured"))
		return
	}
	name := mux.Vars(r)["name"]
	store, err := s.stores.Collection(name)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}

	count, err := store.Count(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	stats := &CollectionStats{Collection: name, DocumentCount: count}

	metadata, err := store.GetMetadata(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	for _, entry := range metadata {
		if year, ok := yearOf(entry.Metadata[document.MetaYear]); ok {
			if stats.YearDistribution == nil {
				stats.YearDistribution = make(map[int]int)
			}
			stats.YearDistribution[year]++
		}
	}
	s.writeJSON(w, stats)
}

// yearOf extracts a year from a metadata value. JSON decoding and store
// roundtrips turn ints into float64, so both arrive here.
func yearOf(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}
