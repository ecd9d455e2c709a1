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
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-rag-go/augment"
	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/embedder"
	"trpc.group/trpc-go/trpc-rag-go/graph"
	"trpc.group/trpc-go/trpc-rag-go/internal/textparse"
	"trpc.group/trpc-go/trpc-rag-go/llm"
	"trpc.group/trpc-go/trpc-rag-go/log"
	"trpc.group/trpc-go/trpc-rag-go/reranker"
	"trpc.group/trpc-go/trpc-rag-go/retriever"
	"trpc.group/trpc-go/trpc-rag-go/retriever/hybrid"
	"trpc.group/trpc-go/trpc-rag-go/retriever/hypothetical"
	"trpc.group/trpc-go/trpc-rag-go/retriever/keyword"
	"trpc.group/trpc-go/trpc-rag-go/retriever/selfquery"
	"trpc.group/trpc-go/trpc-rag-go/retriever/vector"
)

// Deterministic stages run at temperature zero; exploratory prompt
// temperatures live with their strategy packages.
const (
	analysisTemperature = 0.0
	answerTemperature   = 0.0
)

// answerApology is returned verbatim when no documents survive retrieval.
// The language model is not consulted in that case.
const answerApology = "I could not find any relevant documents to answer " +
	"your question. Please try rephrasing your query."

const analysisPromptFormat = `You are an expert query analyzer for a document retrieval system.

Given the user query, analyze it and produce a JSON object with the following fields:

1. "retrieval_method": one of "vector", "bm25", "hybrid", "self_query", "hypothetical_questions".
   - Use "self_query" when the query explicitly or implicitly references metadata (year, topic, subtopic).
   - Use "bm25" when the query contains very specific keywords or technical terms.
   - Use "hybrid" when the query mixes keyword terms with semantic intent.
   - Use "hypothetical_questions" when the query is broad or exploratory.
   - Default to "vector" for general semantic similarity searches.

2. "filters": an object (possibly empty) with optional keys "year", "topics", "subtopic".
   - "year" must be an integer if present.
   - "topics" is the topic label the document must carry.
   - "subtopic" is a free-form string if detected.

3. "needs_expansion": boolean -- true when the query would benefit from synonym expansion or alternative phrasings.

4. "reasoning": a short explanation of your choices.

Respond ONLY with valid JSON. No markdown fences.

User query: %s`

const answerPromptFormat = `You are a knowledgeable assistant.

Using ONLY the context provided below, answer the user's question.
If the context does not contain enough information to fully answer, say so honestly and provide what you can.

Context:
%s

Question: %s

Provide a clear, well-structured answer. Cite specific details from the context when possible.`

// contextSeparator joins the numbered documents of the answer prompt.
const contextSeparator = "\n\n---\n\n"

// pipeline bundles the shared clients and the five strategy instances the
// node functions close over. One pipeline serves every run; all fields are
// read-only after construction.
type pipeline struct {
	generator llm.Generator
	scorer    reranker.Scorer

	expander   *augment.Expander
	compressor *augment.Compressor

	vector       retriever.Retriever
	keyword      retriever.Retriever
	hybrid       retriever.Retriever
	selfQuery    retriever.Retriever
	hypothetical retriever.Retriever

	collection string
}

// newPipeline wires the strategy packages to the injected clients. The
// generator is wrapped so every completion call is traced.
func newPipeline(
	embedder embedder.Embedder,
	generator llm.Generator,
	scorer reranker.Scorer,
	provider retriever.Provider,
	collection string,
) *pipeline {
	generator = llm.Traced(generator)
	vectorLeg := vector.New(embedder, provider)
	keywordLeg := keyword.New(provider)
	return &pipeline{
		generator:    generator,
		scorer:       scorer,
		expander:     augment.NewExpander(generator),
		compressor:   augment.NewCompressor(generator),
		vector:       vectorLeg,
		keyword:      keywordLeg,
		hybrid:       hybrid.New(vectorLeg, keywordLeg),
		selfQuery:    selfquery.New(embedder, generator, provider),
		hypothetical: hypothetical.New(embedder, generator, provider),
		collection:   collection,
	}
}

// retrieverFor dispatches a route to its strategy. The route set is closed;
// anything outside it is the single unknown-variant error path.
func (p *pipeline) retrieverFor(route Route) (retriever.Retriever, error) {
	switch route {
	case RouteVector:
		return p.vector, nil
	case RouteBM25:
		return p.keyword, nil
	case RouteHybrid:
		return p.hybrid, nil
	case RouteSelfQuery:
		return p.selfQuery, nil
	case RouteHypothetical:
		return p.hypothetical, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRoute, route)
	}
}

// nodeUpdate builds a node's state update: the given fields plus the trace
// entry and agent message every node must contribute.
func nodeUpdate(node, message string, fields graph.State) graph.State {
	update := graph.State{
		StateKeyAgentMessages: []AgentMessage{{
			Agent:     node,
			Message:   message,
			Timestamp: time.Now(),
		}},
		StateKeyExecutionTrace: []string{node},
	}
	for key, value := range fields {
		update[key] = value
	}
	return update
}

// analyzeQuery classifies the query into a retrieval route, extracts
// metadata filters and decides whether expansion would help. Any failure
// degrades to the vector route with no filters; the run continues.
func (p *pipeline) analyzeQuery(ctx context.Context, state graph.State) (any, error) {
	query := stateQuery(state)
	log.Infof("query_analyzer: analyzing %q", query)

	analysis, err := p.analyzeWithModel(ctx, query)
	if err != nil {
		log.Errorf("query analysis failed: %v", err)
		return nodeUpdate(NodeQueryAnalyzer, fmt.Sprintf("Error: %v", err), graph.State{
			StateKeyRetrievalMethod: RouteVector.String(),
			StateKeyFilters:         map[string]any{},
			StateKeyError:           fmt.Sprintf("Query analysis failed: %v", err),
		}), nil
	}

	method, _ := analysis["retrieval_method"].(string)
	if method == "" {
		method = RouteVector.String()
	}
	filters, _ := analysis["filters"].(map[string]any)
	if filters == nil {
		filters = map[string]any{}
	}
	needsExpansion, _ := analysis["needs_expansion"].(bool)

	config := stateConfig(state).Clone()
	if needsExpansion {
		config.UseQueryExpansion = true
	}

	message := fmt.Sprintf("Selected method=%s, filters=%v, expansion=%t",
		method, filters, needsExpansion)
	return nodeUpdate(NodeQueryAnalyzer, message, graph.State{
		StateKeyRetrievalMethod: method,
		StateKeyFilters:         filters,
		StateKeyConfig:          config,
		StateKeyMetadata:        map[string]any{"query_analysis": analysis},
	}), nil
}

// analyzeWithModel runs the classification prompt. A model error is
// returned for the caller's degradation path; unparsable JSON is treated
// as an empty analysis so the defaults apply, never as an error.
func (p *pipeline) analyzeWithModel(ctx context.Context, query string) (map[string]any, error) {
	if p.generator == nil {
		return nil, augment.ErrNoGenerator
	}

	temperature := analysisTemperature
	response, err := p.generator.Generate(ctx, &llm.Request{
		Prompt:      fmt.Sprintf(analysisPromptFormat, query),
		Temperature: &temperature,
	})
	if err != nil {
		return nil, err
	}

	var analysis map[string]any
	cleaned := textparse.StripCodeFences(response.Text)
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		log.Warnf("failed to parse query analysis response: %.200s", cleaned)
		return map[string]any{}, nil
	}
	return analysis, nil
}

// superviseRouting resolves the next hop. Precedence: the hypothetical
// override wins over everything, then a pending expansion, then the
// analyzer's choice.
func (p *pipeline) superviseRouting(ctx context.Context, state graph.State) (any, error) {
	config := stateConfig(state)
	next := stateString(state, StateKeyRetrievalMethod)
	if next == "" {
		next = RouteVector.String()
	}
	log.Infof("supervisor: method=%s, trace=%v", next,
		stateStringSlice(state, StateKeyExecutionTrace))

	if config.UseQueryExpansion && !traceContains(state, NodeQueryExpander) {
		next = routeExpand
	}
	if config.UseHypotheticalQuestions {
		next = RouteHypothetical.String()
	}

	return nodeUpdate(NodeSupervisor, "Routing to: "+next, graph.State{
		StateKeyRetrievalMethod: next,
	}), nil
}

// expandQuery rewrites the query into alternative phrasings. The original
// query always survives in the variant list, so downstream retrieval never
// sees an empty query set.
func (p *pipeline) expandQuery(ctx context.Context, state graph.State) (any, error) {
	query := stateQuery(state)
	log.Infof("query_expander: expanding %q", query)

	variants, err := p.expander.Expand(ctx, query)
	if err != nil {
		return nodeUpdate(NodeQueryExpander, fmt.Sprintf("Error: %v", err), graph.State{
			StateKeyExpandedQueries: variants,
			StateKeyError:           fmt.Sprintf("Query expansion failed: %v", err),
		}), nil
	}

	message := fmt.Sprintf("Generated %d query variants", len(variants))
	return nodeUpdate(NodeQueryExpander, message, graph.State{
		StateKeyExpandedQueries: variants,
	}), nil
}

// retrieveVector runs the dense strategy. When expansion produced variants
// it searches each one and deduplicates by content, first occurrence wins.
func (p *pipeline) retrieveVector(ctx context.Context, state graph.State) (any, error) {
	config := stateConfig(state)
	queries := stateStringSlice(state, StateKeyExpandedQueries)
	if len(queries) == 0 {
		queries = []string{stateQuery(state)}
	}
	log.Infof("vector_retriever: %d query variant(s)", len(queries))

	base := &retriever.Query{
		Text:       queries[0],
		TopK:       config.TopK,
		Collection: p.collection,
		Filters:    stateFilters(state),
	}

	var result *retriever.Result
	var err error
	if len(queries) > 1 {
		result, err = retriever.RetrieveMultiQuery(ctx, p.vector, base, queries)
	} else {
		result, err = p.vector.Retrieve(ctx, base)
	}
	if err != nil {
		return retrievalFailure(NodeVectorRetriever, "Vector retrieval failed", err), nil
	}

	message := fmt.Sprintf("Retrieved %d unique documents from %d queries",
		len(result.Documents), len(queries))
	return nodeUpdate(NodeVectorRetriever, message, graph.State{
		StateKeyDocuments: result.Documents,
	}), nil
}

// retrieveBM25 runs the sparse keyword strategy over the whole collection.
func (p *pipeline) retrieveBM25(ctx context.Context, state graph.State) (any, error) {
	result, err := p.runStrategy(ctx, state, RouteBM25)
	if err != nil {
		return retrievalFailure(NodeBM25Retriever, "BM25 retrieval failed", err), nil
	}
	message := fmt.Sprintf("BM25 returned %d documents", len(result.Documents))
	return nodeUpdate(NodeBM25Retriever, message, graph.State{
		StateKeyDocuments: result.Documents,
	}), nil
}

// retrieveHybrid fuses the dense and sparse legs with RRF.
func (p *pipeline) retrieveHybrid(ctx context.Context, state graph.State) (any, error) {
	result, err := p.runStrategy(ctx, state, RouteHybrid)
	if err != nil {
		return retrievalFailure(NodeHybridMerger, "Hybrid merge failed", err), nil
	}
	message := fmt.Sprintf("Hybrid retrieval returned %d documents", len(result.Documents))
	return nodeUpdate(NodeHybridMerger, message, graph.State{
		StateKeyDocuments: result.Documents,
	}), nil
}

// retrieveSelfQuery searches with metadata filters, extracting them from
// the query text when the analyzer supplied none.
func (p *pipeline) retrieveSelfQuery(ctx context.Context, state graph.State) (any, error) {
	result, err := p.runStrategy(ctx, state, RouteSelfQuery)
	if err != nil {
		return retrievalFailure(NodeSelfQueryConstructor, "Self-query construction failed", err), nil
	}
	message := fmt.Sprintf("Self-query retrieval returned %d documents", len(result.Documents))
	return nodeUpdate(NodeSelfQueryConstructor, message, graph.State{
		StateKeyDocuments: result.Documents,
	}), nil
}

// retrieveHypothetical searches with a model-written hypothetical passage
// instead of the raw question.
func (p *pipeline) retrieveHypothetical(ctx context.Context, state graph.State) (any, error) {
	result, err := p.runStrategy(ctx, state, RouteHypothetical)
	if err != nil {
		return retrievalFailure(NodeHypotheticalRetriever, "Hypothetical question retrieval failed", err), nil
	}
	message := fmt.Sprintf("Hypothetical question retrieval returned %d documents", len(result.Documents))
	return nodeUpdate(NodeHypotheticalRetriever, message, graph.State{
		StateKeyDocuments: result.Documents,
	}), nil
}

// runStrategy executes one retrieval strategy with the query, filters and
// limits taken from the current state.
func (p *pipeline) runStrategy(ctx context.Context, state graph.State, route Route) (*retriever.Result, error) {
	strategy, err := p.retrieverFor(route)
	if err != nil {
		return nil, err
	}
	config := stateConfig(state)
	return strategy.Retrieve(ctx, &retriever.Query{
		Text:       stateQuery(state),
		TopK:       config.TopK,
		Collection: p.collection,
		Filters:    stateFilters(state),
	})
}

// retrievalFailure is the shared degradation path of the retrieval nodes:
// an empty document set, the recorded error, and the mandatory trace entry.
func retrievalFailure(node, prefix string, err error) graph.State {
	log.Errorf("%s: %v", node, err)
	return nodeUpdate(node, fmt.Sprintf("Error: %v", err), graph.State{
		StateKeyDocuments: []*document.Document{},
		StateKeyError:     fmt.Sprintf("%s: %v", prefix, err),
	})
}

// rerankDocuments re-orders the raw candidates with the cross-encoder and
// keeps reranker_top_n of them. Scoring failure keeps the first
// reranker_top_n candidates in their input order.
func (p *pipeline) rerankDocuments(ctx context.Context, state graph.State) (any, error) {
	config := stateConfig(state)
	query := stateQuery(state)
	docs := stateDocuments(state, StateKeyDocuments)
	log.Infof("reranker: reranking %d documents", len(docs))

	if len(docs) == 0 {
		return nodeUpdate(NodeReranker, "No documents to rerank", graph.State{
			StateKeyRerankedDocuments: []*document.Document{},
		}), nil
	}

	crossEncoder := reranker.NewCrossEncoderReranker(p.scorer,
		reranker.WithTopN(config.RerankerTopN))
	ranked, err := crossEncoder.Rerank(ctx, query, reranker.ResultsFromDocuments(docs))
	top := reranker.DocumentsFromResults(ranked)
	if err != nil {
		log.Errorf("reranking failed: %v", err)
		return nodeUpdate(NodeReranker, fmt.Sprintf("Error: %v", err), graph.State{
			StateKeyRerankedDocuments: top,
			StateKeyError:             fmt.Sprintf("Reranking failed: %v", err),
		}), nil
	}

	message := fmt.Sprintf("Reranked to top %d documents", len(top))
	return nodeUpdate(NodeReranker, message, graph.State{
		StateKeyRerankedDocuments: top,
	}), nil
}

// compressDocuments shrinks each document to the sentences relevant to the
// query. Order is preserved; per-document failures keep a truncated excerpt.
func (p *pipeline) compressDocuments(ctx context.Context, state graph.State) (any, error) {
	query := stateQuery(state)
	docs := stateDocuments(state, StateKeyRerankedDocuments)
	if len(docs) == 0 {
		docs = stateDocuments(state, StateKeyDocuments)
	}
	log.Infof("compressor: compressing %d documents", len(docs))

	if len(docs) == 0 {
		return nodeUpdate(NodeCompressor, "No documents to compress", graph.State{
			StateKeyCompressedDocuments: []*document.Document{},
		}), nil
	}

	compressed, err := p.compressor.Compress(ctx, query, docs)
	if err != nil {
		log.Errorf("compression failed: %v", err)
		return nodeUpdate(NodeCompressor, fmt.Sprintf("Error: %v", err), graph.State{
			StateKeyCompressedDocuments: compressed,
			StateKeyError:               fmt.Sprintf("Compression failed: %v", err),
		}), nil
	}

	message := fmt.Sprintf("Compressed %d docs to %d passages", len(docs), len(compressed))
	return nodeUpdate(NodeCompressor, message, graph.State{
		StateKeyCompressedDocuments: compressed,
	}), nil
}

// generateAnswer produces the final answer from the best available document
// set (compressed, then reranked, then raw). It always yields an answer
// string: the fixed apology for an empty set, or an error description when
// generation fails.
func (p *pipeline) generateAnswer(ctx context.Context, state graph.State) (any, error) {
	query := stateQuery(state)

	docs := stateDocuments(state, StateKeyCompressedDocuments)
	if len(docs) == 0 {
		docs = stateDocuments(state, StateKeyRerankedDocuments)
	}
	if len(docs) == 0 {
		docs = stateDocuments(state, StateKeyDocuments)
	}
	log.Infof("answer_generator: generating answer from %d documents", len(docs))

	if len(docs) == 0 {
		return nodeUpdate(NodeAnswerGenerator, "No documents available for answer generation", graph.State{
			StateKeyAnswer:         answerApology,
			StateKeyFinalDocuments: []*document.Document{},
		}), nil
	}

	answer, err := p.generateWithContext(ctx, query, docs)
	if err != nil {
		log.Errorf("answer generation failed: %v", err)
		return nodeUpdate(NodeAnswerGenerator, fmt.Sprintf("Error: %v", err), graph.State{
			StateKeyAnswer:         fmt.Sprintf("An error occurred while generating the answer: %v", err),
			StateKeyFinalDocuments: docs,
			StateKeyError:          fmt.Sprintf("Answer generation failed: %v", err),
		}), nil
	}

	message := fmt.Sprintf("Generated answer using %d documents", len(docs))
	return nodeUpdate(NodeAnswerGenerator, message, graph.State{
		StateKeyAnswer:         answer,
		StateKeyFinalDocuments: docs,
	}), nil
}

// generateWithContext runs the grounded answer prompt over the numbered
// document context.
func (p *pipeline) generateWithContext(ctx context.Context, query string, docs []*document.Document) (string, error) {
	if p.generator == nil {
		return "", augment.ErrNoGenerator
	}

	entries := make([]string, 0, len(docs))
	for i, doc := range docs {
		entries = append(entries, fmt.Sprintf("[Document %d]\n%s", i+1, doc.Content))
	}
	docContext := strings.Join(entries, contextSeparator)

	temperature := answerTemperature
	response, err := p.generator.Generate(ctx, &llm.Request{
		Prompt:      fmt.Sprintf(answerPromptFormat, docContext, query),
		Temperature: &temperature,
	})
	if err != nil {
		return "", err
	}
	return response.Text, nil
}
