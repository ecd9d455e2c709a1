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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/graph"
)

func TestNewPipelineState(t *testing.T) {
	state := NewPipelineState("what is solar power", nil)

	assert.Equal(t, "what is solar power", state[StateKeyQuery])
	assert.Equal(t, "what is solar power", state[StateKeyOriginalQuery])
	assert.Equal(t, []string{}, state[StateKeyExpandedQueries])
	assert.Equal(t, "", state[StateKeyRetrievalMethod])
	assert.Equal(t, map[string]any{}, state[StateKeyFilters])
	assert.Equal(t, []*document.Document{}, state[StateKeyDocuments])
	assert.Equal(t, []AgentMessage{}, state[StateKeyAgentMessages])
	assert.Equal(t, []string{}, state[StateKeyExecutionTrace])
	assert.Equal(t, "", state[StateKeyAnswer])
	assert.Equal(t, "", state[StateKeyError])

	// Nil config normalizes to the defaults.
	config, ok := state[StateKeyConfig].(*AgentConfig)
	require.True(t, ok)
	assert.Equal(t, DefaultAgentConfig(), config)
}

func TestNewPipelineStateNormalizesLimits(t *testing.T) {
	state := NewPipelineState("q", &AgentConfig{UseCompression: true, TopK: -1})

	config, ok := state[StateKeyConfig].(*AgentConfig)
	require.True(t, ok)
	assert.True(t, config.UseCompression)
	assert.Equal(t, DefaultTopK, config.TopK)
	assert.Equal(t, DefaultRerankerTopN, config.RerankerTopN)
}

func TestStateSchemaMergeBehavior(t *testing.T) {
	schema := NewStateSchema()
	state := NewPipelineState("q", nil)

	docA := &document.Document{ID: "a", Content: "first"}
	docB := &document.Document{ID: "b", Content: "second"}

	state = schema.ApplyUpdate(state, graph.State{
		StateKeyDocuments:      []*document.Document{docA},
		StateKeyAgentMessages:  []AgentMessage{{Agent: "vector_retriever", Message: "one"}},
		StateKeyExecutionTrace: []string{"vector_retriever"},
		StateKeyMetadata:       map[string]any{"first": 1},
		StateKeyAnswer:         "draft",
	})
	state = schema.ApplyUpdate(state, graph.State{
		StateKeyDocuments:      []*document.Document{docB},
		StateKeyAgentMessages:  []AgentMessage{{Agent: "reranker", Message: "two"}},
		StateKeyExecutionTrace: []string{"reranker"},
		StateKeyMetadata:       map[string]any{"second": 2},
		StateKeyAnswer:         "final",
	})

	// Documents, messages and the trace accumulate across updates.
	docs := stateDocuments(state, StateKeyDocuments)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "b", docs[1].ID)

	messages := stateMessages(state)
	require.Len(t, messages, 2)
	assert.Equal(t, "vector_retriever", messages[0].Agent)
	assert.Equal(t, "reranker", messages[1].Agent)

	assert.Equal(t, []string{"vector_retriever", "reranker"},
		stateStringSlice(state, StateKeyExecutionTrace))

	// Metadata merges key-wise; scalar fields take the latest writer.
	assert.Equal(t, map[string]any{"first": 1, "second": 2},
		state[StateKeyMetadata])
	assert.Equal(t, "final", state[StateKeyAnswer])
}

func TestStateQueryFallsBackToOriginal(t *testing.T) {
	state := graph.State{
		StateKeyQuery:         "",
		StateKeyOriginalQuery: "original question",
	}
	assert.Equal(t, "original question", stateQuery(state))

	state[StateKeyQuery] = "rewritten"
	assert.Equal(t, "rewritten", stateQuery(state))
}

func TestStateConfigDefaultsWhenAbsent(t *testing.T) {
	assert.Equal(t, DefaultAgentConfig(), stateConfig(graph.State{}))

	custom := &AgentConfig{UseCompression: true, TopK: 2, RerankerTopN: 1}
	state := graph.State{StateKeyConfig: custom}
	assert.Same(t, custom, stateConfig(state))
}

func TestTraceContains(t *testing.T) {
	state := graph.State{
		StateKeyExecutionTrace: []string{"query_analyzer", "supervisor"},
	}
	assert.True(t, traceContains(state, "supervisor"))
	assert.False(t, traceContains(state, "query_expander"))
	assert.False(t, traceContains(graph.State{}, "supervisor"))
}
