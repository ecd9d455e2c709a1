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
	"sort"

	"trpc.group/trpc-go/trpc-rag-go/graph"
)

// NodeDescription describes one pipeline node.
type NodeDescription struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// EdgeDescription describes one transition between nodes. Conditional
// transitions carry the routing label that selects them.
type EdgeDescription struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Conditional bool   `json:"conditional,omitempty"`
	Label       string `json:"label,omitempty"`
}

// GraphDescription is the introspectable shape of the compiled pipeline.
type GraphDescription struct {
	EntryPoint  string            `json:"entry_point"`
	Nodes       []NodeDescription `json:"nodes"`
	Edges       []EdgeDescription `json:"edges"`
	DiagramText string            `json:"diagram_text"`
}

// DescribeGraph returns the pipeline topology for inspection and display.
// Nodes are ordered by ID and edges by origin, so repeated calls produce
// identical output.
func (e *Engine) DescribeGraph() (*GraphDescription, error) {
	compiled, err := e.Graph()
	if err != nil {
		return nil, err
	}

	desc := &GraphDescription{
		EntryPoint:  compiled.EntryPoint(),
		DiagramText: compiled.DOT(graph.WithRankDir(graph.RankDirTB)),
	}
	for _, node := range compiled.Nodes() {
		desc.Nodes = append(desc.Nodes, NodeDescription{
			ID:          node.ID,
			Name:        node.Name,
			Description: node.Description,
		})
		desc.Edges = append(desc.Edges, describeEdges(compiled, node.ID)...)
	}
	desc.Edges = append(desc.Edges, describeEdges(compiled, graph.Start)...)
	sort.SliceStable(desc.Edges, func(i, j int) bool {
		if desc.Edges[i].From != desc.Edges[j].From {
			return desc.Edges[i].From < desc.Edges[j].From
		}
		return desc.Edges[i].To < desc.Edges[j].To
	})
	return desc, nil
}

// describeEdges collects the plain and conditional transitions leaving a
// node. Conditional branches are expanded to one labeled edge per path.
func describeEdges(g *graph.Graph, nodeID string) []EdgeDescription {
	var edges []EdgeDescription
	for _, edge := range g.Edges(nodeID) {
		edges = append(edges, EdgeDescription{From: edge.From, To: edge.To})
	}
	if cond, ok := g.ConditionalEdge(nodeID); ok {
		labels := make([]string, 0, len(cond.PathMap))
		for label := range cond.PathMap {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			edges = append(edges, EdgeDescription{
				From:        nodeID,
				To:          cond.PathMap[label],
				Conditional: true,
				Label:       label,
			})
		}
	}
	return edges
}
