//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package a2a

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteExplicitTarget(t *testing.T) {
	router := NewRouter(NewPipelineRegistry())

	card, err := router.RouteHints(AgentReranker, "", "")
	require.NoError(t, err)
	assert.Equal(t, AgentReranker, card.Name)
}

func TestRouteTargetBeatsWeakerHints(t *testing.T) {
	router := NewRouter(NewPipelineRegistry())

	card, err := router.RouteHints(AgentReranker, "vector_search", "generate")
	require.NoError(t, err)
	assert.Equal(t, AgentReranker, card.Name)
}

func TestRouteInactiveTargetFallsThrough(t *testing.T) {
	registry := NewPipelineRegistry()
	require.NoError(t, registry.Deactivate(AgentVectorRetriever))
	router := NewRouter(registry)

	card, err := router.RouteHints(AgentVectorRetriever, "bm25_search", "")
	require.NoError(t, err)
	assert.Equal(t, AgentBM25Retriever, card.Name)
}

func TestRouteUnknownTargetFallsThrough(t *testing.T) {
	router := NewRouter(NewPipelineRegistry())

	card, err := router.RouteHints("ghost", "", "rerank")
	require.NoError(t, err)
	assert.Equal(t, AgentReranker, card.Name)
}

func TestRouteByCapability(t *testing.T) {
	router := NewRouter(NewPipelineRegistry())

	card, err := router.RouteHints("", "hybrid_search", "")
	require.NoError(t, err)
	assert.Equal(t, AgentHybridRetriever, card.Name)
}

func TestRouteByMethod(t *testing.T) {
	router := NewRouter(NewPipelineRegistry())

	card, err := router.RouteHints("", "", "generate")
	require.NoError(t, err)
	assert.Equal(t, AgentAnswerGenerator, card.Name)
}

func TestRouteFallsBackToSupervisor(t *testing.T) {
	router := NewRouter(NewPipelineRegistry())

	card, err := router.RouteHints("", "", "")
	require.NoError(t, err)
	assert.Equal(t, AgentSupervisor, card.Name)
}

func TestRouteWithoutFallback(t *testing.T) {
	router := NewRouter(NewPipelineRegistry(), WithFallback(""))

	_, err := router.RouteHints("", "teleportation", "")
	require.ErrorIs(t, err, ErrNoRoute)
	assert.Contains(t, err.Error(), `capability="teleportation"`)
}

func TestRouteInactiveFallback(t *testing.T) {
	registry := NewPipelineRegistry()
	require.NoError(t, registry.Deactivate(AgentSupervisor))
	router := NewRouter(registry)

	_, err := router.RouteHints("", "", "")
	require.ErrorIs(t, err, ErrNoRoute)
}

func TestRouteMessageHints(t *testing.T) {
	router := NewRouter(NewPipelineRegistry())

	message := NewRequest("client", "", map[string]any{
		HintCapability: "self_query_construction",
	})
	card, err := router.Route(message)
	require.NoError(t, err)
	assert.Equal(t, AgentSelfQueryRetriever, card.Name)

	_, err = router.Route(nil)
	require.ErrorIs(t, err, ErrNoRoute)
}
