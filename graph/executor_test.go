package graph

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// retrievalSchema builds a small schema resembling a retrieval pipeline:
// scalar fields overwrite, trace and documents accumulate.
func retrievalSchema() *StateSchema {
	return NewStateSchema().
		AddField("query", StateField{
			Type:    reflect.TypeOf(""),
			Reducer: DefaultReducer,
		}).
		AddField("route", StateField{
			Type:    reflect.TypeOf(""),
			Reducer: DefaultReducer,
		}).
		AddField("documents", StateField{
			Type:    reflect.TypeOf([]string{}),
			Reducer: StringSliceReducer,
			Default: func() any { return []string{} },
		}).
		AddField("trace", StateField{
			Type:    reflect.TypeOf([]string{}),
			Reducer: StringSliceReducer,
			Default: func() any { return []string{} },
		}).
		AddField("answer", StateField{
			Type:    reflect.TypeOf(""),
			Reducer: DefaultReducer,
		})
}

// drainEvents consumes the event channel and returns all events plus the
// final state and error event, if any.
func drainEvents(eventChan <-chan *Event) (events []*Event, finalState State, errEvent *Event) {
	for evt := range eventChan {
		events = append(events, evt)
		switch evt.Type {
		case EventGraphComplete:
			finalState = evt.FinalState
		case EventGraphError:
			errEvent = evt
		}
	}
	return events, finalState, errEvent
}

// TestRetrievalWorkflow runs a classify -> search -> respond pipeline with
// conditional routing and accumulating state fields.
func TestRetrievalWorkflow(t *testing.T) {
	stateGraph := NewStateGraph(retrievalSchema())
	stateGraph.
		AddNode("classify", func(ctx context.Context, state State) (any, error) {
			query := state["query"].(string)
			route := "vector"
			if strings.Contains(query, "error code") {
				route = "keyword"
			}
			return State{
				"route": route,
				"trace": []string{"classify"},
			}, nil
		}).
		AddNode("vector_search", func(ctx context.Context, state State) (any, error) {
			return State{
				"documents": []string{"doc-vector-1", "doc-vector-2"},
				"trace":     []string{"vector_search"},
			}, nil
		}).
		AddNode("keyword_search", func(ctx context.Context, state State) (any, error) {
			return State{
				"documents": []string{"doc-keyword-1"},
				"trace":     []string{"keyword_search"},
			}, nil
		}).
		AddNode("respond", func(ctx context.Context, state State) (any, error) {
			docs := state["documents"].([]string)
			return State{
				"answer": "answered from " + strings.Join(docs, ","),
				"trace":  []string{"respond"},
			}, nil
		}).
		SetEntryPoint("classify").
		SetFinishPoint("respond")
	stateGraph.AddConditionalEdges("classify", func(ctx context.Context, state State) (string, error) {
		return state["route"].(string), nil
	}, map[string]string{
		"vector":  "vector_search",
		"keyword": "keyword_search",
	})
	stateGraph.AddEdge("vector_search", "respond")
	stateGraph.AddEdge("keyword_search", "respond")

	graph, err := stateGraph.Compile()
	if err != nil {
		t.Fatalf("Failed to compile graph: %v", err)
	}
	executor, err := NewExecutor(graph)
	if err != nil {
		t.Fatalf("Failed to create executor: %v", err)
	}

	t.Run("Vector_Route", func(t *testing.T) {
		eventChan, err := executor.Execute(context.Background(), State{"query": "how do solar panels degrade"}, "inv-vector")
		if err != nil {
			t.Fatalf("Failed to execute graph: %v", err)
		}
		_, finalState, errEvent := drainEvents(eventChan)
		if errEvent != nil {
			t.Fatalf("Unexpected error event: %s", errEvent.Error)
		}
		if finalState == nil {
			t.Fatal("No final state received")
		}
		wantTrace := []string{"classify", "vector_search", "respond"}
		if got := finalState["trace"].([]string); !reflect.DeepEqual(got, wantTrace) {
			t.Errorf("Expected trace %v, got %v", wantTrace, got)
		}
		if got := finalState["answer"].(string); !strings.Contains(got, "doc-vector-1") {
			t.Errorf("Expected answer built from vector documents, got: %s", got)
		}
	})

	t.Run("Keyword_Route", func(t *testing.T) {
		eventChan, err := executor.Execute(context.Background(), State{"query": "what does error code 42 mean"}, "inv-keyword")
		if err != nil {
			t.Fatalf("Failed to execute graph: %v", err)
		}
		_, finalState, errEvent := drainEvents(eventChan)
		if errEvent != nil {
			t.Fatalf("Unexpected error event: %s", errEvent.Error)
		}
		wantDocs := []string{"doc-keyword-1"}
		if got := finalState["documents"].([]string); !reflect.DeepEqual(got, wantDocs) {
			t.Errorf("Expected documents %v, got %v", wantDocs, got)
		}
	})
}

// TestExecutorEventStream verifies event ordering and metadata for a
// single-node graph.
func TestExecutorEventStream(t *testing.T) {
	stateGraph := NewStateGraph(retrievalSchema())
	stateGraph.
		AddNode("respond", func(ctx context.Context, state State) (any, error) {
			return State{
				"answer": "done",
				"trace":  []string{"respond"},
			}, nil
		}, WithName("Responder")).
		SetEntryPoint("respond").
		SetFinishPoint("respond")
	graph, err := stateGraph.Compile()
	if err != nil {
		t.Fatalf("Failed to compile graph: %v", err)
	}
	executor, err := NewExecutor(graph)
	if err != nil {
		t.Fatalf("Failed to create executor: %v", err)
	}

	eventChan, err := executor.Execute(context.Background(), State{}, "inv-events")
	if err != nil {
		t.Fatalf("Failed to execute graph: %v", err)
	}
	events, finalState, errEvent := drainEvents(eventChan)
	if errEvent != nil {
		t.Fatalf("Unexpected error event: %s", errEvent.Error)
	}

	wantTypes := []EventType{EventNodeStart, EventNodeComplete, EventGraphComplete}
	if len(events) != len(wantTypes) {
		t.Fatalf("Expected %d events, got %d", len(wantTypes), len(events))
	}
	for i, evt := range events {
		if evt.Type != wantTypes[i] {
			t.Errorf("Event %d: expected type %s, got %s", i, wantTypes[i], evt.Type)
		}
		if evt.InvocationID != "inv-events" {
			t.Errorf("Event %d: expected invocation ID inv-events, got %s", i, evt.InvocationID)
		}
		if evt.ID == "" {
			t.Errorf("Event %d: expected non-empty event ID", i)
		}
	}

	start, complete := events[0], events[1]
	if start.NodeID != "respond" || start.NodeName != "Responder" {
		t.Errorf("Unexpected start event node: %s (%s)", start.NodeName, start.NodeID)
	}
	wantKeys := []string{"answer", "trace"}
	if !reflect.DeepEqual(complete.UpdatedKeys, wantKeys) {
		t.Errorf("Expected updated keys %v, got %v", wantKeys, complete.UpdatedKeys)
	}
	if finalState["answer"].(string) != "done" {
		t.Errorf("Unexpected final answer: %v", finalState["answer"])
	}
}

// TestExecutorCommandRouting verifies that a Command result updates state
// and overrides static edges.
func TestExecutorCommandRouting(t *testing.T) {
	stateGraph := NewStateGraph(retrievalSchema())
	stateGraph.
		AddNode("triage", func(ctx context.Context, state State) (any, error) {
			return &Command{
				Update: State{"trace": []string{"triage"}},
				GoTo:   "fallback",
			}, nil
		}).
		AddNode("primary", func(ctx context.Context, state State) (any, error) {
			return State{"trace": []string{"primary"}}, nil
		}).
		AddNode("fallback", func(ctx context.Context, state State) (any, error) {
			return State{"trace": []string{"fallback"}}, nil
		}).
		SetEntryPoint("triage").
		SetFinishPoint("primary").
		SetFinishPoint("fallback")
	stateGraph.AddEdge("triage", "primary")
	graph, err := stateGraph.Compile()
	if err != nil {
		t.Fatalf("Failed to compile graph: %v", err)
	}
	executor, err := NewExecutor(graph)
	if err != nil {
		t.Fatalf("Failed to create executor: %v", err)
	}

	eventChan, err := executor.Execute(context.Background(), State{}, "inv-command")
	if err != nil {
		t.Fatalf("Failed to execute graph: %v", err)
	}
	_, finalState, errEvent := drainEvents(eventChan)
	if errEvent != nil {
		t.Fatalf("Unexpected error event: %s", errEvent.Error)
	}
	wantTrace := []string{"triage", "fallback"}
	if got := finalState["trace"].([]string); !reflect.DeepEqual(got, wantTrace) {
		t.Errorf("Expected trace %v, got %v", wantTrace, got)
	}
}

// TestExecutorNodeError verifies that a failing node produces exactly one
// error event naming the node.
func TestExecutorNodeError(t *testing.T) {
	stateGraph := NewStateGraph(retrievalSchema())
	stateGraph.
		AddNode("explode", func(ctx context.Context, state State) (any, error) {
			return nil, errors.New("index unavailable")
		}).
		SetEntryPoint("explode").
		SetFinishPoint("explode")
	graph, err := stateGraph.Compile()
	if err != nil {
		t.Fatalf("Failed to compile graph: %v", err)
	}
	executor, err := NewExecutor(graph)
	if err != nil {
		t.Fatalf("Failed to create executor: %v", err)
	}

	eventChan, err := executor.Execute(context.Background(), State{}, "inv-error")
	if err != nil {
		t.Fatalf("Failed to execute graph: %v", err)
	}
	events, finalState, errEvent := drainEvents(eventChan)
	if errEvent == nil {
		t.Fatal("Expected an error event")
	}
	if finalState != nil {
		t.Error("Expected no final state on error")
	}
	if !strings.Contains(errEvent.Error, "explode") || !strings.Contains(errEvent.Error, "index unavailable") {
		t.Errorf("Unexpected error message: %s", errEvent.Error)
	}
	last := events[len(events)-1]
	if last.Type != EventGraphError {
		t.Errorf("Expected the stream to end with %s, got %s", EventGraphError, last.Type)
	}
}

// TestExecutorMaxSteps verifies the step limit aborts cyclic execution.
func TestExecutorMaxSteps(t *testing.T) {
	stateGraph := NewStateGraph(retrievalSchema())
	stateGraph.
		AddNode("ping", func(ctx context.Context, state State) (any, error) {
			return State{"trace": []string{"ping"}}, nil
		}).
		AddNode("pong", func(ctx context.Context, state State) (any, error) {
			return State{"trace": []string{"pong"}}, nil
		}).
		SetEntryPoint("ping")
	stateGraph.AddEdge("ping", "pong")
	stateGraph.AddEdge("pong", "ping")
	graph, err := stateGraph.Compile()
	if err != nil {
		t.Fatalf("Failed to compile graph: %v", err)
	}
	executor, err := NewExecutor(graph, WithMaxSteps(4), WithChannelBufferSize(16))
	if err != nil {
		t.Fatalf("Failed to create executor: %v", err)
	}

	eventChan, err := executor.Execute(context.Background(), State{}, "inv-cycle")
	if err != nil {
		t.Fatalf("Failed to execute graph: %v", err)
	}
	_, _, errEvent := drainEvents(eventChan)
	if errEvent == nil {
		t.Fatal("Expected an error event")
	}
	if !strings.Contains(errEvent.Error, ErrMaxStepsExceeded.Error()) {
		t.Errorf("Expected max steps error, got: %s", errEvent.Error)
	}
}

// TestExecutorConditionalPathMapMiss verifies that an unmapped condition
// result aborts execution.
func TestExecutorConditionalPathMapMiss(t *testing.T) {
	stateGraph := NewStateGraph(retrievalSchema())
	stateGraph.
		AddNode("classify", func(ctx context.Context, state State) (any, error) {
			return State{"route": "graph"}, nil
		}).
		AddNode("vector_search", func(ctx context.Context, state State) (any, error) {
			return nil, nil
		}).
		SetEntryPoint("classify").
		SetFinishPoint("vector_search")
	stateGraph.AddConditionalEdges("classify", func(ctx context.Context, state State) (string, error) {
		return state["route"].(string), nil
	}, map[string]string{
		"vector": "vector_search",
	})
	graph, err := stateGraph.Compile()
	if err != nil {
		t.Fatalf("Failed to compile graph: %v", err)
	}
	executor, err := NewExecutor(graph)
	if err != nil {
		t.Fatalf("Failed to create executor: %v", err)
	}

	eventChan, err := executor.Execute(context.Background(), State{}, "inv-miss")
	if err != nil {
		t.Fatalf("Failed to execute graph: %v", err)
	}
	_, _, errEvent := drainEvents(eventChan)
	if errEvent == nil {
		t.Fatal("Expected an error event")
	}
	if !strings.Contains(errEvent.Error, "not found in path map") {
		t.Errorf("Unexpected error message: %s", errEvent.Error)
	}
}

// TestExecutorGeneratesInvocationID verifies an empty invocation ID is
// replaced and propagated to every event.
func TestExecutorGeneratesInvocationID(t *testing.T) {
	stateGraph := NewStateGraph(retrievalSchema())
	stateGraph.
		AddNode("respond", func(ctx context.Context, state State) (any, error) {
			return nil, nil
		}).
		SetEntryPoint("respond").
		SetFinishPoint("respond")
	executor, err := NewExecutor(stateGraph.MustCompile())
	if err != nil {
		t.Fatalf("Failed to create executor: %v", err)
	}

	eventChan, err := executor.Execute(context.Background(), State{}, "")
	if err != nil {
		t.Fatalf("Failed to execute graph: %v", err)
	}
	events, _, errEvent := drainEvents(eventChan)
	if errEvent != nil {
		t.Fatalf("Unexpected error event: %s", errEvent.Error)
	}
	if len(events) == 0 {
		t.Fatal("Expected events")
	}
	id := events[0].InvocationID
	if id == "" {
		t.Fatal("Expected a generated invocation ID")
	}
	for i, evt := range events {
		if evt.InvocationID != id {
			t.Errorf("Event %d: expected invocation ID %s, got %s", i, id, evt.InvocationID)
		}
	}
}

// TestExecutorInitialStateNotMutated verifies the caller's state map is
// cloned before execution.
func TestExecutorInitialStateNotMutated(t *testing.T) {
	stateGraph := NewStateGraph(retrievalSchema())
	stateGraph.
		AddNode("respond", func(ctx context.Context, state State) (any, error) {
			return State{"answer": "done"}, nil
		}).
		SetEntryPoint("respond").
		SetFinishPoint("respond")
	executor, err := NewExecutor(stateGraph.MustCompile())
	if err != nil {
		t.Fatalf("Failed to create executor: %v", err)
	}

	initial := State{"query": "original"}
	eventChan, err := executor.Execute(context.Background(), initial, "inv-clone")
	if err != nil {
		t.Fatalf("Failed to execute graph: %v", err)
	}
	_, finalState, errEvent := drainEvents(eventChan)
	if errEvent != nil {
		t.Fatalf("Unexpected error event: %s", errEvent.Error)
	}
	if _, exists := initial["answer"]; exists {
		t.Error("Initial state was mutated by execution")
	}
	if finalState["answer"].(string) != "done" {
		t.Errorf("Unexpected final answer: %v", finalState["answer"])
	}
}
