//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package rag

// Default configuration values.
const (
	// DefaultTopK is the number of documents requested per retrieval call.
	DefaultTopK = 4
	// DefaultRerankerTopN is the number of documents kept after reranking.
	DefaultRerankerTopN = 5
)

// AgentConfig controls one pipeline run. It is read-only once the run
// starts; the only mutation happens before routing, when the query analyzer
// turns on expansion for queries that would benefit from it.
//
// RerankerTopN may exceed TopK: when it does, reranking simply keeps every
// candidate instead of padding the result.
type AgentConfig struct {
	// RetrievalMethods lists the strategies the caller considers
	// acceptable. It is informational; the retrieval_method chosen on the
	// pipeline state drives actual routing.
	RetrievalMethods []string `json:"retrieval_methods,omitempty"`

	// UseReranking applies cross-encoder reranking after retrieval.
	UseReranking bool `json:"use_reranking"`

	// UseCompression applies per-document context compression.
	UseCompression bool `json:"use_compression"`

	// UseQueryExpansion rewrites the query into alternative phrasings
	// before the vector strategy runs.
	UseQueryExpansion bool `json:"use_query_expansion"`

	// UseHypotheticalQuestions forces the hypothetical-questions strategy
	// regardless of what the analyzer chose.
	UseHypotheticalQuestions bool `json:"use_hypothetical_questions"`

	// TopK is the number of documents requested per retrieval call.
	TopK int `json:"top_k"`

	// RerankerTopN is the number of documents kept after reranking.
	RerankerTopN int `json:"reranker_top_n"`
}

// DefaultAgentConfig returns the documented defaults: reranking on,
// everything else off, top_k 4, reranker_top_n 5.
func DefaultAgentConfig() *AgentConfig {
	return &AgentConfig{
		RetrievalMethods: []string{RouteVector.String()},
		UseReranking:     true,
		TopK:             DefaultTopK,
		RerankerTopN:     DefaultRerankerTopN,
	}
}

// Clone returns an independent copy of the config.
func (c *AgentConfig) Clone() *AgentConfig {
	if c == nil {
		return DefaultAgentConfig()
	}
	clone := *c
	if c.RetrievalMethods != nil {
		clone.RetrievalMethods = make([]string, len(c.RetrievalMethods))
		copy(clone.RetrievalMethods, c.RetrievalMethods)
	}
	return &clone
}

// normalized returns a copy safe for a run: nil becomes the default config
// and non-positive limits fall back to their defaults. Boolean flags are
// kept exactly as the caller set them.
func (c *AgentConfig) normalized() *AgentConfig {
	clone := c.Clone()
	if clone.TopK <= 0 {
		clone.TopK = DefaultTopK
	}
	if clone.RerankerTopN <= 0 {
		clone.RerankerTopN = DefaultRerankerTopN
	}
	return clone
}
