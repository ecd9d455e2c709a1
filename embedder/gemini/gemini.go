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

// Package gemini provides Gemini embedder implementation.
package gemini

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"trpc.group/trpc-go/trpc-rag-go/embedder"
	"trpc.group/trpc-go/trpc-rag-go/log"
)

// Verify that Embedder implements the embedder.Embedder interface.
var _ embedder.Embedder = (*Embedder)(nil)

const (
	// DefaultModel is the default Gemini embedding model.
	DefaultModel = ModelGeminiEmbedding001
	// DefaultDimensions is the default embedding dimension.
	DefaultDimensions = 1536
	// DefaultTaskType is the default task type.
	DefaultTaskType = TaskTypeRetrievalQuery

	// ModelGeminiEmbedding001 represents the gemini-embedding-001 model.
	ModelGeminiEmbedding001 = "gemini-embedding-001"

	// TaskTypeRetrievalDocument is the task type for documents to be
	// retrieved, used when indexing.
	TaskTypeRetrievalDocument = "RETRIEVAL_DOCUMENT"
	// TaskTypeRetrievalQuery is the task type for search queries.
	TaskTypeRetrievalQuery = "RETRIEVAL_QUERY"
	// TaskTypeQuestionAnswering is the task type for question-answering
	// queries.
	TaskTypeQuestionAnswering = "QUESTION_ANSWERING"

	// GoogleAPIKeyEnv is the environment variable name for the Google API key.
	GoogleAPIKeyEnv = "GOOGLE_API_KEY"
)

// Embedder implements the embedder.Embedder interface for the Gemini API.
type Embedder struct {
	client         *genai.Client
	model          string
	dimensions     int
	taskType       string
	apiKey         string
	role           genai.Role
	clientOptions  *genai.ClientConfig
	requestOptions *genai.EmbedContentConfig
}

// Option represents a functional option for configuring the Embedder.
type Option func(*Embedder)

// WithModel sets the embedding model to use.
func WithModel(model string) Option {
	return func(e *Embedder) {
		e.model = model
	}
}

// WithDimensions sets the number of dimensions for the embedding.
func WithDimensions(dimensions int) Option {
	return func(e *Embedder) {
		e.dimensions = dimensions
	}
}

// WithTaskType sets the task type to optimize embedding results.
// Use TaskTypeRetrievalDocument when indexing and TaskTypeRetrievalQuery
// when searching.
func WithTaskType(taskType string) Option {
	return func(e *Embedder) {
		e.taskType = taskType
	}
}

// WithAPIKey sets the Google API key.
// If not provided, the GOOGLE_API_KEY environment variable is used.
// Priority: WithClientOptions > WithAPIKey > environment variable.
func WithAPIKey(apiKey string) Option {
	return func(e *Embedder) {
		e.apiKey = apiKey
	}
}

// WithClientOptions sets additional options for the Gemini client config.
func WithClientOptions(clientOptions *genai.ClientConfig) Option {
	return func(e *Embedder) {
		c := *clientOptions
		e.clientOptions = &c
	}
}

// WithRequestOptions sets additional options for Gemini embed requests.
func WithRequestOptions(requestOptions *genai.EmbedContentConfig) Option {
	return func(e *Embedder) {
		r := *requestOptions
		e.requestOptions = &r
	}
}

// New creates a new Gemini embedder with the given options.
func New(ctx context.Context, opts ...Option) (*Embedder, error) {
	e := &Embedder{
		model:          DefaultModel,
		dimensions:     DefaultDimensions,
		taskType:       DefaultTaskType,
		role:           genai.RoleUser,
		apiKey:         os.Getenv(GoogleAPIKeyEnv),
		clientOptions:  &genai.ClientConfig{},
		requestOptions: &genai.EmbedContentConfig{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.clientOptions.APIKey == "" {
		e.clientOptions.APIKey = e.apiKey
	}
	if e.clientOptions.APIKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY is not provided")
	}
	client, err := genai.NewClient(ctx, e.clientOptions)
	if err != nil {
		return nil, err
	}
	e.client = client
	return e, nil
}

// GetEmbedding implements the embedder.Embedder interface.
func (e *Embedder) GetEmbedding(ctx context.Context, text string) ([]float64, error) {
	response, err := e.embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(response.Embeddings) == 0 || len(response.Embeddings[0].Values) == 0 {
		log.Warn("received empty embedding response from Gemini API")
		return []float64{}, nil
	}
	values := response.Embeddings[0].Values
	embedding := make([]float64, len(values))
	for i, v := range values {
		embedding[i] = float64(v)
	}
	return embedding, nil
}

// GetEmbeddingWithUsage implements the embedder.Embedder interface.
func (e *Embedder) GetEmbeddingWithUsage(ctx context.Context, text string) ([]float64, map[string]any, error) {
	response, err := e.embed(ctx, text)
	if err != nil {
		return nil, nil, err
	}
	usage := make(map[string]any)
	if response.Metadata != nil {
		usage["billable_character_count"] = response.Metadata.BillableCharacterCount
	}
	if len(response.Embeddings) == 0 || len(response.Embeddings[0].Values) == 0 {
		log.Warn("received empty embedding response from Gemini API")
		return []float64{}, nil, nil
	}
	values := response.Embeddings[0].Values
	embedding := make([]float64, len(values))
	for i, v := range values {
		embedding[i] = float64(v)
	}
	return embedding, usage, nil
}

// GetDimensions implements the embedder.Embedder interface.
func (e *Embedder) GetDimensions() int {
	return e.dimensions
}

func (e *Embedder) embed(ctx context.Context, text string) (*genai.EmbedContentResponse, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}
	model := strings.TrimPrefix(e.model, "models/")
	content := genai.NewContentFromText(text, e.role)
	request := *e.requestOptions
	if request.OutputDimensionality == nil {
		d := int32(e.dimensions)
		request.OutputDimensionality = &d
	}
	if request.TaskType == "" {
		request.TaskType = e.taskType
	}
	response, err := e.client.Models.EmbedContent(ctx, model, []*genai.Content{content}, &request)
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	return response, nil
}
