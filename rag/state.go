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
	"reflect"
	"time"

	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/graph"
)

// State keys of the pipeline state. Each stage writes only the keys it is
// responsible for; the schema reducers merge the partial updates back into
// the shared state.
const (
	// StateKeyQuery is the current (possibly rewritten) query text.
	StateKeyQuery = "query"
	// StateKeyOriginalQuery is the verbatim user query.
	StateKeyOriginalQuery = "original_query"
	// StateKeyExpandedQueries holds alternative phrasings of the query.
	StateKeyExpandedQueries = "expanded_queries"
	// StateKeyRetrievalMethod is the chosen retrieval route name.
	StateKeyRetrievalMethod = "retrieval_method"
	// StateKeyFilters carries the metadata filters (year, topics, subtopic).
	StateKeyFilters = "filters"
	// StateKeyDocuments accumulates raw retrieval results (append-merge).
	StateKeyDocuments = "documents"
	// StateKeyRerankedDocuments holds the cross-encoder output.
	StateKeyRerankedDocuments = "reranked_documents"
	// StateKeyCompressedDocuments holds the compressor output.
	StateKeyCompressedDocuments = "compressed_documents"
	// StateKeyFinalDocuments is the set the answer was generated from.
	StateKeyFinalDocuments = "final_documents"
	// StateKeyAnswer is the generated answer text.
	StateKeyAnswer = "answer"
	// StateKeyAgentMessages accumulates the audit trail (append-merge).
	StateKeyAgentMessages = "agent_messages"
	// StateKeyMetadata carries per-node annotations (key-wise merge).
	StateKeyMetadata = "metadata"
	// StateKeyExecutionTrace accumulates executed node names (append-merge).
	StateKeyExecutionTrace = "execution_trace"
	// StateKeyError records the most recent graceful node failure.
	StateKeyError = "error"
	// StateKeyConfig holds the *AgentConfig for the run.
	StateKeyConfig = "config"
)

// AgentMessage is one audit-trail entry contributed by a pipeline node.
type AgentMessage struct {
	// Agent is the node that produced the message.
	Agent string `json:"agent"`

	// Message is the human-readable summary of what the node did.
	Message string `json:"message"`

	// Timestamp is when the node produced the message.
	Timestamp time.Time `json:"timestamp"`
}

// NewStateSchema declares the pipeline state fields and their merge
// behavior: document lists, agent messages and the execution trace
// accumulate across nodes, metadata merges key-wise, and everything else is
// overwritten by the most recent writer.
func NewStateSchema() *graph.StateSchema {
	return graph.NewStateSchema().
		AddField(StateKeyQuery, graph.StateField{
			Type: reflect.TypeOf(""),
		}).
		AddField(StateKeyOriginalQuery, graph.StateField{
			Type: reflect.TypeOf(""),
		}).
		AddField(StateKeyExpandedQueries, graph.StateField{
			Type: reflect.TypeOf([]string{}),
		}).
		AddField(StateKeyRetrievalMethod, graph.StateField{
			Type: reflect.TypeOf(""),
		}).
		AddField(StateKeyFilters, graph.StateField{
			Type: reflect.TypeOf(map[string]any{}),
		}).
		AddField(StateKeyDocuments, graph.StateField{
			Type:    reflect.TypeOf([]*document.Document{}),
			Reducer: appendDocumentsReducer,
			Default: func() any { return []*document.Document{} },
		}).
		AddField(StateKeyRerankedDocuments, graph.StateField{
			Type: reflect.TypeOf([]*document.Document{}),
		}).
		AddField(StateKeyCompressedDocuments, graph.StateField{
			Type: reflect.TypeOf([]*document.Document{}),
		}).
		AddField(StateKeyFinalDocuments, graph.StateField{
			Type: reflect.TypeOf([]*document.Document{}),
		}).
		AddField(StateKeyAnswer, graph.StateField{
			Type: reflect.TypeOf(""),
		}).
		AddField(StateKeyAgentMessages, graph.StateField{
			Type:    reflect.TypeOf([]AgentMessage{}),
			Reducer: appendMessagesReducer,
			Default: func() any { return []AgentMessage{} },
		}).
		AddField(StateKeyMetadata, graph.StateField{
			Type:    reflect.TypeOf(map[string]any{}),
			Reducer: graph.MergeReducer,
			Default: func() any { return map[string]any{} },
		}).
		AddField(StateKeyExecutionTrace, graph.StateField{
			Type:    reflect.TypeOf([]string{}),
			Reducer: graph.StringSliceReducer,
			Default: func() any { return []string{} },
		}).
		AddField(StateKeyError, graph.StateField{
			Type: reflect.TypeOf(""),
		}).
		AddField(StateKeyConfig, graph.StateField{
			Type: reflect.TypeOf(&AgentConfig{}),
		})
}

// NewPipelineState seeds the state for one run. The query is stored twice:
// StateKeyQuery may be rewritten by later stages while StateKeyOriginalQuery
// stays verbatim.
func NewPipelineState(query string, config *AgentConfig) graph.State {
	return graph.State{
		StateKeyQuery:               query,
		StateKeyOriginalQuery:       query,
		StateKeyExpandedQueries:     []string{},
		StateKeyRetrievalMethod:     "",
		StateKeyFilters:             map[string]any{},
		StateKeyDocuments:           []*document.Document{},
		StateKeyRerankedDocuments:   []*document.Document{},
		StateKeyCompressedDocuments: []*document.Document{},
		StateKeyFinalDocuments:      []*document.Document{},
		StateKeyAnswer:              "",
		StateKeyAgentMessages:       []AgentMessage{},
		StateKeyMetadata:            map[string]any{},
		StateKeyExecutionTrace:      []string{},
		StateKeyError:               "",
		StateKeyConfig:              config.normalized(),
	}
}

// appendDocumentsReducer concatenates document lists, matching the
// accumulate semantics of the raw documents field.
func appendDocumentsReducer(existing, update any) any {
	if existing == nil {
		existing = []*document.Document{}
	}
	existingDocs, ok1 := existing.([]*document.Document)
	updateDocs, ok2 := update.([]*document.Document)
	if !ok1 || !ok2 {
		return update
	}
	merged := make([]*document.Document, 0, len(existingDocs)+len(updateDocs))
	merged = append(merged, existingDocs...)
	return append(merged, updateDocs...)
}

// appendMessagesReducer concatenates agent message lists.
func appendMessagesReducer(existing, update any) any {
	if existing == nil {
		existing = []AgentMessage{}
	}
	existingMsgs, ok1 := existing.([]AgentMessage)
	updateMsgs, ok2 := update.([]AgentMessage)
	if !ok1 || !ok2 {
		return update
	}
	merged := make([]AgentMessage, 0, len(existingMsgs)+len(updateMsgs))
	merged = append(merged, existingMsgs...)
	return append(merged, updateMsgs...)
}

// stateQuery returns the current query text, falling back to the original
// query when no rewrite happened.
func stateQuery(state graph.State) string {
	if query := stateString(state, StateKeyQuery); query != "" {
		return query
	}
	return stateString(state, StateKeyOriginalQuery)
}

// stateConfig returns the run config, defaulting when absent.
func stateConfig(state graph.State) *AgentConfig {
	if config, ok := state[StateKeyConfig].(*AgentConfig); ok && config != nil {
		return config
	}
	return DefaultAgentConfig()
}

func stateString(state graph.State, key string) string {
	value, _ := state[key].(string)
	return value
}

func stateStringSlice(state graph.State, key string) []string {
	value, _ := state[key].([]string)
	return value
}

func stateFilters(state graph.State) map[string]any {
	value, _ := state[StateKeyFilters].(map[string]any)
	return value
}

func stateDocuments(state graph.State, key string) []*document.Document {
	value, _ := state[key].([]*document.Document)
	return value
}

func stateMessages(state graph.State) []AgentMessage {
	value, _ := state[StateKeyAgentMessages].([]AgentMessage)
	return value
}

// traceContains reports whether the named node already ran.
func traceContains(state graph.State, node string) bool {
	for _, entry := range stateStringSlice(state, StateKeyExecutionTrace) {
		if entry == node {
			return true
		}
	}
	return false
}
