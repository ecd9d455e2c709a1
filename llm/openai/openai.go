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

// Package openai provides an OpenAI-backed llm.Generator.
package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"trpc.group/trpc-go/trpc-rag-go/llm"
)

// Verify that Model implements the llm.Generator interface.
var _ llm.Generator = (*Model)(nil)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gpt-4o-mini"

// Model is an OpenAI chat-completion backed generator.
type Model struct {
	name           string
	client         openai.Client
	apiKey         string
	baseURL        string
	requestOptions []openaiopt.RequestOption
}

// Option configures the Model.
type Option func(*Model)

// WithAPIKey sets the OpenAI API key.
// If not provided, the OPENAI_API_KEY environment variable is used.
func WithAPIKey(apiKey string) Option {
	return func(m *Model) {
		m.apiKey = apiKey
	}
}

// WithBaseURL sets the base URL for OpenAI-compatible APIs.
func WithBaseURL(baseURL string) Option {
	return func(m *Model) {
		m.baseURL = baseURL
	}
}

// WithRequestOptions sets additional options for OpenAI client requests.
func WithRequestOptions(opts ...openaiopt.RequestOption) Option {
	return func(m *Model) {
		m.requestOptions = append(m.requestOptions, opts...)
	}
}

// New creates a generator for the given chat model name.
func New(name string, opts ...Option) *Model {
	if name == "" {
		name = DefaultModel
	}
	m := &Model{name: name}
	for _, opt := range opts {
		opt(m)
	}

	var clientOpts []openaiopt.RequestOption
	if m.apiKey != "" {
		clientOpts = append(clientOpts, openaiopt.WithAPIKey(m.apiKey))
	}
	if m.baseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(m.baseURL))
	}
	m.client = openai.NewClient(clientOpts...)
	return m
}

// Info implements the llm.Generator interface.
func (m *Model) Info() llm.Info {
	return llm.Info{Name: m.name}
}

// Generate implements the llm.Generator interface with a single
// non-streaming chat completion call.
func (m *Model) Generate(ctx context.Context, request *llm.Request) (*llm.Response, error) {
	if request == nil {
		return nil, errors.New("request cannot be nil")
	}
	if request.Prompt == "" {
		return nil, errors.New("prompt cannot be empty")
	}

	chatRequest := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(m.name),
		Messages: buildMessages(request),
	}
	if request.Temperature != nil {
		chatRequest.Temperature = openai.Float(*request.Temperature)
	}
	if request.MaxTokens != nil {
		chatRequest.MaxCompletionTokens = openai.Int(int64(*request.MaxTokens))
	}

	requestOpts := make([]openaiopt.RequestOption, len(m.requestOptions))
	copy(requestOpts, m.requestOptions)

	chatCompletion, err := m.client.Chat.Completions.New(ctx, chatRequest, requestOpts...)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(chatCompletion.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	response := &llm.Response{
		Text: chatCompletion.Choices[0].Message.Content,
	}
	if chatCompletion.Usage.TotalTokens > 0 {
		response.Usage = &llm.Usage{
			PromptTokens:     int(chatCompletion.Usage.PromptTokens),
			CompletionTokens: int(chatCompletion.Usage.CompletionTokens),
			TotalTokens:      int(chatCompletion.Usage.TotalTokens),
		}
	}
	return response, nil
}

func buildMessages(request *llm.Request) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if request.System != "" {
		messages = append(messages, openai.ChatCompletionMessageParamUnion{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(request.System),
				},
			},
		})
	}
	messages = append(messages, openai.ChatCompletionMessageParamUnion{
		OfUser: &openai.ChatCompletionUserMessageParam{
			Content: openai.ChatCompletionUserMessageParamContentUnion{
				OfString: openai.String(request.Prompt),
			},
		},
	})
	return messages
}
