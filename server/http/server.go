//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package http exposes the retrieval pipeline over a JSON REST API: query
// execution (sync and async), agent discovery, message routing, graph
// introspection, document ingestion, analytics and health.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"trpc.group/trpc-go/trpc-rag-go/a2a"
	"trpc.group/trpc-go/trpc-rag-go/analytics"
	"trpc.group/trpc-go/trpc-rag-go/embedder"
	"trpc.group/trpc-go/trpc-rag-go/ingest"
	"trpc.group/trpc-go/trpc-rag-go/rag"
	"trpc.group/trpc-go/trpc-rag-go/vectorstore"
)

// healthProbeKey is the task-store key used by the health check roundtrip.
const healthProbeKey = "health_probe"

// Health states reported by GET /api/health.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// healthCheck is one named dependency ping.
type healthCheck struct {
	name string
	ping func(ctx context.Context) error
}

// Server serves the pipeline REST API. Construct it with New, mount
// Handler on any http.Server.
type Server struct {
	engine *rag.Engine
	router *mux.Router

	agents     *a2a.Registry
	taskRouter *a2a.Router
	tasks      rag.TaskStore
	recorder   *analytics.Recorder

	stores     *vectorstore.Registry
	embedder   embedder.Embedder
	ingestOpts []ingest.Option

	checks []healthCheck
}

// New creates a server over the engine. The behaviour can be tweaked via
// functional options; without any, the server runs with the built-in
// pipeline agent registry, a fresh analytics recorder and no task store,
// vector store registry or embedder (the endpoints needing them report
// service unavailable).
func New(engine *rag.Engine, opts ...Option) *Server {
	s := &Server{
		engine:   engine,
		router:   mux.NewRouter(),
		agents:   a2a.NewPipelineRegistry(),
		recorder: analytics.NewRecorder(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.taskRouter == nil {
		s.taskRouter = a2a.NewRouter(s.agents)
	}

	// Built-in dependency pings first, user-provided checks after.
	s.checks = append(s.builtinChecks(), s.checks...)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
	})
	s.router.Use(c.Handler)
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler { return s.router }

// registerRoutes sets up all REST endpoints.
func (s *Server) registerRoutes() {
	// Query APIs.
	s.router.HandleFunc("/api/query", s.handleQuery).Methods(http.MethodPost)
	s.router.HandleFunc("/api/query/async", s.handleQueryAsync).Methods(http.MethodPost)
	s.router.HandleFunc("/api/tasks/{id}", s.handleTask).Methods(http.MethodGet)

	// Agent mesh APIs.
	s.router.HandleFunc("/api/agents", s.handleAgents).Methods(http.MethodGet)
	s.router.HandleFunc("/api/agents/{name}", s.handleAgent).Methods(http.MethodGet)
	s.router.HandleFunc("/.well-known/agents.json", s.handleDiscovery).Methods(http.MethodGet)
	s.router.HandleFunc("/api/a2a/message", s.handleA2AMessage).Methods(http.MethodPost)

	// Introspection APIs.
	s.router.HandleFunc("/api/graph", s.handleGraph).Methods(http.MethodGet)
	s.router.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/analytics", s.handleAnalytics).Methods(http.MethodGet)

	// Ingestion APIs.
	s.router.HandleFunc("/api/documents", s.handleDocuments).Methods(http.MethodPost)
	s.router.HandleFunc("/api/collections/{name}/stats", s.handleCollectionStats).Methods(http.MethodGet)

	// OPTIONS handlers to allow CORS pre-flight.
	preflight := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
	s.router.HandleFunc("/api/query", preflight).Methods(http.MethodOptions)
	s.router.HandleFunc("/api/query/async", preflight).Methods(http.MethodOptions)
	s.router.HandleFunc("/api/a2a/message", preflight).Methods(http.MethodOptions)
	s.router.HandleFunc("/api/documents", preflight).Methods(http.MethodOptions)
}

// ---- health checks ------------------------------------------------------

// builtinChecks wires a ping per configured dependency. The pipeline check
// is always present: a broken graph should fail the health endpoint, not
// the first query.
func (s *Server) builtinChecks() []healthCheck {
	checks := []healthCheck{{name: "pipeline", ping: s.pingPipeline}}
	if s.stores != nil {
		checks = append(checks, healthCheck{name: "vector_store", ping: s.pingStores})
	}
	if s.tasks != nil {
		checks = append(checks, healthCheck{name: "task_store", ping: s.pingTasks})
	}
	return checks
}

func (s *Server) pingPipeline(_ context.Context) error {
	_, err := s.engine.DescribeGraph()
	return err
}

func (s *Server) pingStores(ctx context.Context) error {
	for _, name := range s.stores.Names() {
		store, err := s.stores.Collection(name)
		if err != nil {
			return err
		}
		if _, err := store.Count(ctx); err != nil {
			return fmt.Errorf("collection %s: %w", name, err)
		}
	}
	return nil
}

func (s *Server) pingTasks(ctx context.Context) error {
	if err := s.tasks.Put(ctx, healthProbeKey, "ok", time.Minute); err != nil {
		return err
	}
	_, found, err := s.tasks.Get(ctx, healthProbeKey)
	if err != nil {
		return err
	}
	if !found {
		return errors.New("probe entry missing after write")
	}
	return s.tasks.Delete(ctx, healthProbeKey)
}

// ---- response helpers ---------------------------------------------------

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	s.writeJSONStatus(w, http.StatusOK, v)
}

func (s *Server) writeJSONStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	s.writeJSONStatus(w, code, map[string]string{"error": err.Error()})
}
