//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package a2a

import (
	"fmt"

	"trpc.group/trpc-go/trpc-rag-go/log"
)

// Routing hint keys read from a message payload.
const (
	// HintTargetAgent addresses an agent by name.
	HintTargetAgent = "target_agent"
	// HintCapability selects an agent by advertised capability.
	HintCapability = "capability"
	// HintMethod selects an agent by supported task method.
	HintMethod = "method"
)

// Router selects the agent that should handle a task. Precedence:
// explicit target, then capability match, then method match, then the
// configured fallback. Only a task that matches nothing and has no
// fallback is a routing error.
type Router struct {
	registry *Registry
	fallback string
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithFallback names the agent that receives unmatched tasks. An empty
// name disables the fallback.
func WithFallback(name string) RouterOption {
	return func(r *Router) {
		r.fallback = name
	}
}

// NewRouter creates a router over the registry. The supervisor is the
// default fallback, matching the pipeline's orchestration model.
func NewRouter(registry *Registry, opts ...RouterOption) *Router {
	router := &Router{
		registry: registry,
		fallback: AgentSupervisor,
	}
	for _, opt := range opts {
		opt(router)
	}
	return router
}

// Route selects the handling agent from the message's payload hints.
func (r *Router) Route(message *Message) (*AgentCard, error) {
	if message == nil {
		return nil, fmt.Errorf("%w: nil message", ErrNoRoute)
	}
	return r.RouteHints(
		message.PayloadString(HintTargetAgent),
		message.PayloadString(HintCapability),
		message.PayloadString(HintMethod),
	)
}

// RouteHints selects the handling agent from explicit hints. An inactive
// or unknown explicit target falls through to the weaker hints rather
// than failing.
func (r *Router) RouteHints(target, capability, method string) (*AgentCard, error) {
	if target != "" {
		card, err := r.registry.Get(target)
		if err == nil && card.Active() {
			log.Debugf("a2a: routed to explicit target %s", target)
			return card, nil
		}
		log.Warnf("a2a: explicit target %q not routable, falling through", target)
	}

	if capability != "" {
		if matches := r.registry.ByCapability(capability); len(matches) > 0 {
			log.Debugf("a2a: routed by capability %s to %s", capability, matches[0].Name)
			return matches[0], nil
		}
	}

	if method != "" {
		if matches := r.registry.ByMethod(method); len(matches) > 0 {
			log.Debugf("a2a: routed by method %s to %s", method, matches[0].Name)
			return matches[0], nil
		}
	}

	if r.fallback != "" {
		card, err := r.registry.Get(r.fallback)
		if err == nil && card.Active() {
			log.Debugf("a2a: no specific route matched, falling back to %s", r.fallback)
			return card, nil
		}
	}

	return nil, fmt.Errorf("%w: target=%q capability=%q method=%q",
		ErrNoRoute, target, capability, method)
}
