//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package a2a serves the retrieval pipeline as a standard A2A-protocol
// agent. Inbound protocol messages become pipeline queries, the engine
// runs them, and the outcome goes back as protocol messages: the final
// answer for plain requests, batched stage updates plus the answer for
// streaming ones.
package a2a

import (
	"context"
	"errors"
	"fmt"

	"trpc.group/trpc-go/trpc-a2a-go/auth"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"
	a2aserver "trpc.group/trpc-go/trpc-a2a-go/server"
	"trpc.group/trpc-go/trpc-a2a-go/taskmanager"

	mesh "trpc.group/trpc-go/trpc-rag-go/a2a"
	"trpc.group/trpc-go/trpc-rag-go/graph"
	"trpc.group/trpc-go/trpc-rag-go/log"
	"trpc.group/trpc-go/trpc-rag-go/rag"
)

// New creates an A2A server over the pipeline engine. The advertised
// agent card is derived from the mesh registry's supervisor card unless
// an explicit card is given.
func New(opts ...Option) (*a2aserver.A2AServer, error) {
	options := &options{enableStreaming: true}
	for _, opt := range opts {
		opt(options)
	}

	if options.engine == nil {
		return nil, errors.New("a2aserver: engine is required")
	}
	if options.host == "" {
		return nil, errors.New("a2aserver: host is required")
	}
	if options.mesh == nil {
		options.mesh = mesh.NewPipelineRegistry()
	}

	return buildA2AServer(options)
}

func buildAgentCard(options *options) a2aserver.AgentCard {
	if options.agentCard != nil {
		return *options.agentCard
	}
	card := supervisorCard(options.mesh)
	return a2aserver.AgentCard{
		Name:        card.Name,
		Description: card.Description,
		Version:     card.Version,
		URL:         fmt.Sprintf("http://%s", options.host),
		Capabilities: a2aserver.AgentCapabilities{
			Streaming: &options.enableStreaming,
		},
		Skills:             buildSkills(card),
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
	}
}

// supervisorCard resolves the card the served agent presents itself as.
// A custom registry without a supervisor falls back to the built-in one.
func supervisorCard(registry *mesh.Registry) *mesh.AgentCard {
	if card, err := registry.Get(mesh.AgentSupervisor); err == nil {
		return card
	}
	return mesh.BuiltinCards()[0]
}

// buildSkills maps the mesh card onto protocol skills: one default skill
// for the agent itself and one per supported task method.
func buildSkills(card *mesh.AgentCard) []a2aserver.AgentSkill {
	desc := card.Description
	skills := []a2aserver.AgentSkill{
		{
			Name:        card.Name,
			Description: &desc,
			InputModes:  []string{"text"},
			OutputModes: []string{"text"},
			Tags:        []string{"default"},
		},
	}
	for _, method := range card.SupportedMethods {
		methodDesc := fmt.Sprintf("Task method %q of the retrieval pipeline.", method)
		skills = append(skills, a2aserver.AgentSkill{
			Name:        method,
			Description: &methodDesc,
			InputModes:  []string{"text"},
			OutputModes: []string{"text"},
			Tags:        []string{"method"},
		})
	}
	return skills
}

func buildProcessor(options *options) *queryProcessor {
	queryConverter := options.queryConverter
	if queryConverter == nil {
		queryConverter = &defaultMessageToQuery{}
	}
	resultConverter := options.resultConverter
	if resultConverter == nil {
		resultConverter = &defaultResultToMessage{}
	}
	return &queryProcessor{
		engine:          options.engine,
		queryConverter:  queryConverter,
		resultConverter: resultConverter,
	}
}

func buildA2AServer(options *options) (*a2aserver.A2AServer, error) {
	agentCard := buildAgentCard(options)

	var processor taskmanager.MessageProcessor
	if options.processorBuilder != nil {
		processor = options.processorBuilder(options.engine)
	} else {
		processor = buildProcessor(options)
	}
	if options.processorHook != nil {
		processor = options.processorHook(processor)
	}

	var taskManager taskmanager.TaskManager
	var err error
	if options.taskManagerBuilder != nil {
		taskManager = options.taskManagerBuilder(processor)
	} else {
		taskManager, err = taskmanager.NewMemoryTaskManager(processor)
		if err != nil {
			return nil, fmt.Errorf("failed to create task manager: %w", err)
		}
	}

	opts := []a2aserver.Option{
		a2aserver.WithAuthProvider(&defaultAuthProvider{userIDHeader: options.userIDHeader}),
	}
	// A user-provided auth provider in the extra options takes precedence.
	opts = append(opts, options.extraOptions...)

	server, err := a2aserver.NewA2AServer(agentCard, taskManager, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create a2a server: %w", err)
	}
	return server, nil
}

// queryProcessor runs inbound protocol messages through the pipeline
// engine.
type queryProcessor struct {
	engine          *rag.Engine
	queryConverter  MessageToQuery
	resultConverter ResultToMessage
}

// ProcessMessage is the entry point for inbound messages.
func (p *queryProcessor) ProcessMessage(
	ctx context.Context,
	message protocol.Message,
	options taskmanager.ProcessOptions,
	handler taskmanager.TaskHandler,
) (*taskmanager.MessageProcessingResult, error) {
	user, ok := ctx.Value(auth.AuthUserKey).(*auth.User)
	if !ok {
		return nil, errors.New("a2aserver: user identity is required")
	}
	if message.ContextID == nil {
		return nil, errors.New("a2aserver: message has no context id")
	}

	query, err := p.queryConverter.ConvertToQuery(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("a2aserver: convert message: %w", err)
	}
	log.Debugf("a2aserver: user %s context %s query %.80q",
		user.ID, *message.ContextID, query.Text)

	if options.Streaming {
		return p.processStreaming(ctx, query, message.ContextID, handler)
	}
	return p.process(ctx, query)
}

func (p *queryProcessor) process(
	ctx context.Context,
	query *Query,
) (*taskmanager.MessageProcessingResult, error) {
	result, err := p.engine.Run(ctx, query.Text, query.Config)
	if err != nil {
		return nil, fmt.Errorf("a2aserver: run pipeline: %w", err)
	}
	msg, err := p.resultConverter.ConvertResult(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("a2aserver: convert result: %w", err)
	}
	return &taskmanager.MessageProcessingResult{Result: msg}, nil
}

func (p *queryProcessor) processStreaming(
	ctx context.Context,
	query *Query,
	ctxID *string,
	handler taskmanager.TaskHandler,
) (*taskmanager.MessageProcessingResult, error) {
	taskID, err := handler.BuildTask(nil, ctxID)
	if err != nil {
		return nil, fmt.Errorf("failed to build task: %w", err)
	}
	subscriber, err := handler.SubscribeTask(&taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to task: %w", err)
	}

	events, err := p.engine.Stream(ctx, query.Text, query.Config)
	if err != nil {
		return nil, fmt.Errorf("a2aserver: start pipeline stream: %w", err)
	}

	go p.pumpEvents(ctx, events, subscriber)

	return &taskmanager.MessageProcessingResult{
		StreamingEvents: subscriber,
	}, nil
}

// pumpEvents moves execution events to the subscriber in batches until a
// terminal event or the context ends.
func (p *queryProcessor) pumpEvents(
	ctx context.Context,
	events <-chan *graph.Event,
	subscriber taskmanager.TaskSubscriber,
) {
	defer subscriber.Close()

	consume := func(batch []*graph.Event) (bool, error) {
		return p.sendBatch(ctx, batch, subscriber)
	}
	tunnel := newEventTunnel(defaultBatchSize, defaultFlushInterval, events, consume)
	if err := tunnel.Run(ctx); err != nil {
		log.Warnf("a2aserver: event tunnel: %v", err)
	}
}

// sendBatch converts and sends one batch, reporting false after the
// terminal event so the tunnel stops.
func (p *queryProcessor) sendBatch(
	ctx context.Context,
	batch []*graph.Event,
	subscriber taskmanager.TaskSubscriber,
) (bool, error) {
	for _, event := range batch {
		msg, err := p.resultConverter.ConvertStreamingEvent(ctx, event)
		if err != nil {
			log.Errorf("a2aserver: convert streaming event: %v", err)
			continue
		}
		if msg != nil {
			if err := subscriber.Send(protocol.StreamingMessageEvent{Result: msg}); err != nil {
				log.Errorf("a2aserver: send streaming event: %v", err)
			}
		}
		if event.Type == graph.EventGraphComplete || event.Type == graph.EventGraphError {
			return false, nil
		}
	}
	return true, nil
}
