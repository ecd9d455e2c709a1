package graph

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func noopNode(ctx context.Context, state State) (any, error) {
	return nil, nil
}

func TestStateGraphCompile(t *testing.T) {
	graph, err := NewStateGraph(NewStateSchema()).
		AddNode("fetch", noopNode).
		AddNode("respond", noopNode, WithName("Responder"), WithDescription("Builds the final answer.")).
		AddEdge("fetch", "respond").
		SetEntryPoint("fetch").
		SetFinishPoint("respond").
		Compile()
	if err != nil {
		t.Fatalf("Failed to compile graph: %v", err)
	}

	if graph.EntryPoint() != "fetch" {
		t.Errorf("Expected entry point fetch, got %s", graph.EntryPoint())
	}
	node, ok := graph.Node("respond")
	if !ok {
		t.Fatal("Expected node respond to exist")
	}
	if node.Name != "Responder" {
		t.Errorf("Expected node name Responder, got %s", node.Name)
	}
	if node.Description != "Builds the final answer." {
		t.Errorf("Unexpected node description: %s", node.Description)
	}
	// SetEntryPoint adds an explicit Start edge, SetFinishPoint an End edge.
	startEdges := graph.Edges(Start)
	if len(startEdges) != 1 || startEdges[0].To != "fetch" {
		t.Errorf("Expected a single Start edge to fetch, got %v", startEdges)
	}
	respondEdges := graph.Edges("respond")
	if len(respondEdges) != 1 || respondEdges[0].To != End {
		t.Errorf("Expected a single edge from respond to End, got %v", respondEdges)
	}
}

func TestStateGraphMissingEntryPoint(t *testing.T) {
	_, err := NewStateGraph(NewStateSchema()).
		AddNode("fetch", noopNode).
		Compile()
	if err == nil {
		t.Fatal("Expected compile error for a graph without entry point")
	}
	if !errors.Is(err, ErrNoEntryPoint) {
		t.Errorf("Expected ErrNoEntryPoint, got: %v", err)
	}
}

func TestStateGraphCollectsBuildErrors(t *testing.T) {
	_, err := NewStateGraph(NewStateSchema()).
		AddNode("fetch", noopNode).
		AddNode("fetch", noopNode).
		AddEdge("fetch", "missing").
		SetEntryPoint("fetch").
		Compile()
	if err == nil {
		t.Fatal("Expected compile error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "fetch") {
		t.Errorf("Expected duplicate node error mentioning fetch, got: %v", err)
	}
	if !strings.Contains(msg, "missing") {
		t.Errorf("Expected unknown edge target error mentioning missing, got: %v", err)
	}
}

func TestStateGraphConditionalEdgeValidation(t *testing.T) {
	_, err := NewStateGraph(NewStateSchema()).
		AddNode("classify", noopNode).
		AddConditionalEdges("classify", func(ctx context.Context, state State) (string, error) {
			return "vector", nil
		}, map[string]string{"vector": "unknown_target"}).
		SetEntryPoint("classify").
		Compile()
	if err == nil {
		t.Fatal("Expected compile error for unknown conditional target")
	}
	if !strings.Contains(err.Error(), "unknown_target") {
		t.Errorf("Expected error naming the unknown target, got: %v", err)
	}
}

func TestMustCompilePanicsOnInvalidGraph(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("Expected MustCompile to panic")
		}
	}()
	NewStateGraph(NewStateSchema()).MustCompile()
}
