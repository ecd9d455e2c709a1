//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package a2a implements the agent mesh of the retrieval pipeline: agent
// cards for discovery, a registry, a task router and the message envelope
// agents exchange. The pipeline itself runs in-process; the mesh is the
// directory other agents and serving layers use to find and address its
// stages.
package a2a

import "errors"

// Agent types.
const (
	// AgentTypeWorker marks an agent that handles one pipeline stage.
	AgentTypeWorker = "worker"
	// AgentTypeSupervisor marks the orchestrating agent.
	AgentTypeSupervisor = "supervisor"
)

// Agent statuses.
const (
	// StatusActive marks an agent as routable.
	StatusActive = "active"
	// StatusInactive removes an agent from routing without unregistering it.
	StatusInactive = "inactive"
)

// MetaPipelineStage is the metadata key naming the pipeline stage an agent
// serves: preprocessing, retrieval, postprocessing, generation or
// orchestration.
const MetaPipelineStage = "pipeline_stage"

// defaultCardVersion is the version stamped on the built-in cards.
const defaultCardVersion = "1.0.0"

// ErrCardNotFound reports a lookup for an unregistered agent name.
var ErrCardNotFound = errors.New("a2a: agent card not found")

// ErrNoRoute reports a task no agent can handle.
var ErrNoRoute = errors.New("a2a: no agent can handle the task")

// AgentCard is the descriptor an agent publishes for discovery and task
// routing.
type AgentCard struct {
	// Name uniquely identifies the agent within the mesh.
	Name string `json:"name"`

	// Description is the human-readable summary of what the agent does.
	Description string `json:"description"`

	// Version is the card version.
	Version string `json:"version"`

	// Capabilities lists the abilities the agent advertises for routing.
	Capabilities []string `json:"capabilities"`

	// SupportedMethods lists the task methods the agent accepts.
	SupportedMethods []string `json:"supported_methods"`

	// Endpoint is where the agent receives tasks. Empty for in-process
	// agents addressed through the router.
	Endpoint string `json:"endpoint,omitempty"`

	// AgentType is AgentTypeWorker or AgentTypeSupervisor.
	AgentType string `json:"agent_type"`

	// Status is StatusActive or StatusInactive.
	Status string `json:"status"`

	// Metadata carries free-form annotations such as MetaPipelineStage.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Active reports whether the agent is routable.
func (c *AgentCard) Active() bool {
	return c != nil && c.Status == StatusActive
}

// HasCapability reports whether the card advertises the capability.
func (c *AgentCard) HasCapability(capability string) bool {
	if c == nil {
		return false
	}
	for _, entry := range c.Capabilities {
		if entry == capability {
			return true
		}
	}
	return false
}

// SupportsMethod reports whether the card accepts the task method.
func (c *AgentCard) SupportsMethod(method string) bool {
	if c == nil {
		return false
	}
	for _, entry := range c.SupportedMethods {
		if entry == method {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the card.
func (c *AgentCard) Clone() *AgentCard {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Capabilities != nil {
		clone.Capabilities = append([]string(nil), c.Capabilities...)
	}
	if c.SupportedMethods != nil {
		clone.SupportedMethods = append([]string(nil), c.SupportedMethods...)
	}
	if c.Metadata != nil {
		clone.Metadata = make(map[string]any, len(c.Metadata))
		for key, value := range c.Metadata {
			clone.Metadata[key] = value
		}
	}
	return &clone
}

// Built-in agent names. They match the pipeline node naming so trace
// entries and mesh lookups use the same vocabulary.
const (
	AgentSupervisor         = "supervisor"
	AgentQueryAnalyzer      = "query_analyzer"
	AgentQueryExpander      = "query_expander"
	AgentVectorRetriever    = "vector_retriever"
	AgentBM25Retriever      = "bm25_retriever"
	AgentHybridRetriever    = "hybrid_retriever"
	AgentSelfQueryRetriever = "self_query_retriever"
	AgentReranker           = "reranker"
	AgentAnswerGenerator    = "answer_generator"
)

// BuiltinCards returns the nine cards of the retrieval pipeline, in
// pipeline order. Callers receive fresh copies and may mutate them freely.
func BuiltinCards() []*AgentCard {
	return []*AgentCard{
		{
			Name: AgentSupervisor,
			Description: "Orchestrates the retrieval pipeline, resolving the route " +
				"for each query and delegating to the stage agents.",
			Version:          defaultCardVersion,
			Capabilities:     []string{"orchestration", "pipeline_management", "task_delegation", "error_recovery"},
			SupportedMethods: []string{"run_pipeline"},
			AgentType:        AgentTypeSupervisor,
			Status:           StatusActive,
			Metadata:         map[string]any{MetaPipelineStage: "orchestration"},
		},
		{
			Name: AgentQueryAnalyzer,
			Description: "Analyzes incoming queries to detect intent, extract metadata " +
				"filters and select the retrieval strategy.",
			Version:          defaultCardVersion,
			Capabilities:     []string{"query_analysis", "intent_detection", "filter_extraction", "method_selection"},
			SupportedMethods: []string{"analyze"},
			AgentType:        AgentTypeWorker,
			Status:           StatusActive,
			Metadata:         map[string]any{MetaPipelineStage: "preprocessing"},
		},
		{
			Name: AgentQueryExpander,
			Description: "Generates alternative phrasings of a query to improve " +
				"retrieval recall.",
			Version:          defaultCardVersion,
			Capabilities:     []string{"query_expansion", "query_reformulation", "synonym_generation"},
			SupportedMethods: []string{"expand"},
			AgentType:        AgentTypeWorker,
			Status:           StatusActive,
			Metadata:         map[string]any{MetaPipelineStage: "preprocessing"},
		},
		{
			Name: AgentVectorRetriever,
			Description: "Performs dense similarity search against the vector store " +
				"using embedding lookups.",
			Version:          defaultCardVersion,
			Capabilities:     []string{"vector_search", "semantic_search", "embedding_lookup"},
			SupportedMethods: []string{"vector_search", "similarity_search"},
			AgentType:        AgentTypeWorker,
			Status:           StatusActive,
			Metadata:         map[string]any{MetaPipelineStage: "retrieval"},
		},
		{
			Name: AgentBM25Retriever,
			Description: "Performs sparse keyword retrieval with the Okapi BM25 " +
				"ranking function.",
			Version:          defaultCardVersion,
			Capabilities:     []string{"bm25_search", "keyword_search", "lexical_matching"},
			SupportedMethods: []string{"bm25_search"},
			AgentType:        AgentTypeWorker,
			Status:           StatusActive,
			Metadata:         map[string]any{MetaPipelineStage: "retrieval"},
		},
		{
			Name: AgentHybridRetriever,
			Description: "Fuses dense and keyword result lists with reciprocal-rank " +
				"fusion.",
			Version:          defaultCardVersion,
			Capabilities:     []string{"hybrid_search", "rank_fusion"},
			SupportedMethods: []string{"hybrid_search"},
			AgentType:        AgentTypeWorker,
			Status:           StatusActive,
			Metadata:         map[string]any{MetaPipelineStage: "retrieval"},
		},
		{
			Name: AgentSelfQueryRetriever,
			Description: "Converts natural-language queries into filtered searches " +
				"by extracting structured metadata constraints.",
			Version:          defaultCardVersion,
			Capabilities:     []string{"self_query_construction", "filter_generation", "metadata_extraction"},
			SupportedMethods: []string{"self_query_search"},
			AgentType:        AgentTypeWorker,
			Status:           StatusActive,
			Metadata:         map[string]any{MetaPipelineStage: "retrieval"},
		},
		{
			Name: AgentReranker,
			Description: "Re-ranks candidate documents with a cross-encoder for a " +
				"more accurate relevance ordering.",
			Version:          defaultCardVersion,
			Capabilities:     []string{"reranking", "cross_encoder_scoring", "relevance_reordering"},
			SupportedMethods: []string{"rerank"},
			AgentType:        AgentTypeWorker,
			Status:           StatusActive,
			Metadata:         map[string]any{MetaPipelineStage: "postprocessing"},
		},
		{
			Name: AgentAnswerGenerator,
			Description: "Generates the final grounded answer from the retrieved " +
				"context.",
			Version:          defaultCardVersion,
			Capabilities:     []string{"answer_generation", "context_synthesis"},
			SupportedMethods: []string{"generate"},
			AgentType:        AgentTypeWorker,
			Status:           StatusActive,
			Metadata:         map[string]any{MetaPipelineStage: "generation"},
		},
	}
}
