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
	"context"

	"trpc.group/trpc-go/trpc-rag-go/graph"
	"trpc.group/trpc-go/trpc-rag-go/log"
)

// Pipeline node identifiers. They double as execution_trace entries and as
// the agent names on audit messages.
const (
	NodeQueryAnalyzer         = "query_analyzer"
	NodeSupervisor            = "supervisor"
	NodeQueryExpander         = "query_expander"
	NodeVectorRetriever       = "vector_retriever"
	NodeBM25Retriever         = "bm25_retriever"
	NodeHybridMerger          = "hybrid_merger"
	NodeSelfQueryConstructor  = "self_query_constructor"
	NodeHypotheticalRetriever = "hypothetical_question_retriever"
	NodeReranker              = "reranker"
	NodeCompressor            = "compressor"
	NodeAnswerGenerator       = "answer_generator"
)

// routeExpand is the supervisor's pre-retrieval detour to the query
// expander. It is a routing label, not a retrieval strategy, which is why
// it lives outside the Route enum.
const routeExpand = "expand"

// retrievalNodes lists the five strategy nodes that share the
// post-retrieval conditional ladder.
var retrievalNodes = []string{
	NodeVectorRetriever,
	NodeBM25Retriever,
	NodeHybridMerger,
	NodeSelfQueryConstructor,
	NodeHypotheticalRetriever,
}

// buildGraph assembles the pipeline topology:
//
//	start -> query_analyzer -> supervisor
//	supervisor --(route)--> query_expander | one of five retrieval nodes
//	query_expander -> vector_retriever
//	[retrieval] --(flags)--> reranker | compressor | answer_generator
//	reranker --(flags)--> compressor | answer_generator
//	compressor -> answer_generator -> end
//
// The graph is acyclic and single-pass; the supervisor's decision is
// computed fresh on entry, not iterated.
func (p *pipeline) buildGraph() (*graph.Graph, error) {
	sg := graph.NewStateGraph(NewStateSchema())

	sg.AddNode(NodeQueryAnalyzer, p.analyzeQuery,
		graph.WithDescription("Classifies the query, extracts metadata filters and flags expansion."))
	sg.AddNode(NodeSupervisor, p.superviseRouting,
		graph.WithDescription("Resolves the retrieval route from the analysis and the run config."))
	sg.AddNode(NodeQueryExpander, p.expandQuery,
		graph.WithDescription("Rewrites the query into alternative phrasings."))
	sg.AddNode(NodeVectorRetriever, p.retrieveVector,
		graph.WithDescription("Dense similarity search, multi-query when expansion ran."))
	sg.AddNode(NodeBM25Retriever, p.retrieveBM25,
		graph.WithDescription("Okapi BM25 keyword search over the collection."))
	sg.AddNode(NodeHybridMerger, p.retrieveHybrid,
		graph.WithDescription("Reciprocal-rank fusion of the dense and keyword legs."))
	sg.AddNode(NodeSelfQueryConstructor, p.retrieveSelfQuery,
		graph.WithDescription("Metadata-filtered search with model-extracted filters."))
	sg.AddNode(NodeHypotheticalRetriever, p.retrieveHypothetical,
		graph.WithDescription("Searches with a model-written hypothetical answer passage."))
	sg.AddNode(NodeReranker, p.rerankDocuments,
		graph.WithDescription("Cross-encoder reranking of the retrieved candidates."))
	sg.AddNode(NodeCompressor, p.compressDocuments,
		graph.WithDescription("Per-document extraction of query-relevant content."))
	sg.AddNode(NodeAnswerGenerator, p.generateAnswer,
		graph.WithDescription("Generates the grounded answer from the best document set."))

	sg.SetEntryPoint(NodeQueryAnalyzer)
	sg.AddEdge(NodeQueryAnalyzer, NodeSupervisor)

	sg.AddConditionalEdges(NodeSupervisor, routeFromSupervisor, map[string]string{
		routeExpand:                NodeQueryExpander,
		RouteVector.String():       NodeVectorRetriever,
		RouteBM25.String():         NodeBM25Retriever,
		RouteHybrid.String():       NodeHybridMerger,
		RouteSelfQuery.String():    NodeSelfQueryConstructor,
		RouteHypothetical.String(): NodeHypotheticalRetriever,
	})

	// Expansion is a query rewrite, not a terminal route: it always hands
	// the variants to the dense strategy.
	sg.AddEdge(NodeQueryExpander, NodeVectorRetriever)

	postRetrieval := map[string]string{
		NodeReranker:        NodeReranker,
		NodeCompressor:      NodeCompressor,
		NodeAnswerGenerator: NodeAnswerGenerator,
	}
	for _, node := range retrievalNodes {
		sg.AddConditionalEdges(node, routeAfterRetrieval, postRetrieval)
	}

	sg.AddConditionalEdges(NodeReranker, routeAfterReranker, map[string]string{
		NodeCompressor:      NodeCompressor,
		NodeAnswerGenerator: NodeAnswerGenerator,
	})

	sg.AddEdge(NodeCompressor, NodeAnswerGenerator)
	sg.SetFinishPoint(NodeAnswerGenerator)

	return sg.Compile()
}

// routeFromSupervisor maps the supervisor's decision onto a retrieval
// node. Unknown route names are coerced to vector with a warning rather
// than failing the run.
func routeFromSupervisor(ctx context.Context, state graph.State) (string, error) {
	method := stateString(state, StateKeyRetrievalMethod)
	if method == routeExpand {
		return routeExpand, nil
	}
	if _, err := ParseRoute(method); err != nil {
		log.Warnf("unknown retrieval method %q, defaulting to vector", method)
		return RouteVector.String(), nil
	}
	return method, nil
}

// routeAfterRetrieval decides the first post-retrieval hop from the run
// config flags.
func routeAfterRetrieval(ctx context.Context, state graph.State) (string, error) {
	config := stateConfig(state)
	if config.UseReranking {
		return NodeReranker, nil
	}
	if config.UseCompression {
		return NodeCompressor, nil
	}
	return NodeAnswerGenerator, nil
}

// routeAfterReranker decides whether compression still runs.
func routeAfterReranker(ctx context.Context, state graph.State) (string, error) {
	config := stateConfig(state)
	if config.UseCompression {
		return NodeCompressor, nil
	}
	return NodeAnswerGenerator, nil
}
