//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.
// All rights reserved.
//
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the  Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.
//
//

// Package rag assembles the retrieval strategies, augmentation stages and
// answer synthesis into one executable pipeline.
//
// The pipeline is a graph.StateGraph: a query analyzer picks a retrieval
// route, a supervisor resolves the route against the run configuration, one
// of five retrieval strategies produces candidate documents, and optional
// reranking and compression stages refine them before the answer generator
// produces the final response. Every node degrades gracefully: failures are
// recorded in the shared state instead of aborting the run.
package rag

import (
	"errors"
	"fmt"
)

// Route identifies a retrieval strategy. The set of routes is closed:
// dispatch happens through exhaustive switches over these constants, and
// anything else is an error.
type Route string

// The five retrieval routes.
const (
	// RouteVector is plain embedding similarity search.
	RouteVector Route = "vector"
	// RouteBM25 is keyword search over the whole collection.
	RouteBM25 Route = "bm25"
	// RouteHybrid fuses vector and BM25 result lists.
	RouteHybrid Route = "hybrid"
	// RouteSelfQuery extracts metadata filters before searching.
	RouteSelfQuery Route = "self_query"
	// RouteHypothetical searches with a model-written hypothetical passage.
	RouteHypothetical Route = "hypothetical_questions"
)

// ErrUnknownRoute reports a retrieval route outside the closed set.
var ErrUnknownRoute = errors.New("rag: unknown retrieval route")

// ErrEmptyQuery reports a run request without query text.
var ErrEmptyQuery = errors.New("rag: empty query")

// ErrNoTaskStore reports an async run without a configured task store.
var ErrNoTaskStore = errors.New("rag: task store not configured")

// Routes returns all retrieval routes in their documented order.
func Routes() []Route {
	return []Route{RouteVector, RouteBM25, RouteHybrid, RouteSelfQuery, RouteHypothetical}
}

// ParseRoute validates a route string against the closed route set.
func ParseRoute(s string) (Route, error) {
	switch route := Route(s); route {
	case RouteVector, RouteBM25, RouteHybrid, RouteSelfQuery, RouteHypothetical:
		return route, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRoute, s)
	}
}

// String returns the wire name of the route.
func (r Route) String() string {
	return string(r)
}
