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
	"sort"
	"sync"
	"time"
)

// ProtocolVersion is the mesh protocol version advertised in the discovery
// document.
const ProtocolVersion = "1.0"

// Registry is the thread-safe directory of agent cards. Cards are stored
// by value: Register clones its input and lookups return fresh copies, so
// callers never share card instances through the registry.
type Registry struct {
	mu    sync.RWMutex
	cards map[string]*AgentCard
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{cards: make(map[string]*AgentCard)}
}

// NewPipelineRegistry creates a registry preloaded with the built-in
// pipeline cards.
func NewPipelineRegistry() *Registry {
	registry := NewRegistry()
	for _, card := range BuiltinCards() {
		registry.Register(card)
	}
	return registry
}

// Register adds or replaces the card under its name. Cards without a
// status are registered active.
func (r *Registry) Register(card *AgentCard) error {
	if card == nil || card.Name == "" {
		return fmt.Errorf("a2a: register: card must have a name")
	}
	clone := card.Clone()
	if clone.Status == "" {
		clone.Status = StatusActive
	}
	r.mu.Lock()
	r.cards[clone.Name] = clone
	r.mu.Unlock()
	return nil
}

// Get returns the card registered under the name.
func (r *Registry) Get(name string) (*AgentCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	card, ok := r.cards[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCardNotFound, name)
	}
	return card.Clone(), nil
}

// List returns every registered card ordered by name.
func (r *Registry) List() []*AgentCard {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cards := make([]*AgentCard, 0, len(r.cards))
	for _, card := range r.cards {
		cards = append(cards, card.Clone())
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].Name < cards[j].Name })
	return cards
}

// Active returns the active cards ordered by name.
func (r *Registry) Active() []*AgentCard {
	var active []*AgentCard
	for _, card := range r.List() {
		if card.Active() {
			active = append(active, card)
		}
	}
	return active
}

// Deactivate removes the named agent from routing while keeping its card
// registered.
func (r *Registry) Deactivate(name string) error {
	return r.setStatus(name, StatusInactive)
}

// Activate returns the named agent to routing.
func (r *Registry) Activate(name string) error {
	return r.setStatus(name, StatusActive)
}

func (r *Registry) setStatus(name, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	card, ok := r.cards[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrCardNotFound, name)
	}
	card.Status = status
	return nil
}

// ByCapability returns the active cards advertising the capability,
// ordered by name.
func (r *Registry) ByCapability(capability string) []*AgentCard {
	var matches []*AgentCard
	for _, card := range r.Active() {
		if card.HasCapability(capability) {
			matches = append(matches, card)
		}
	}
	return matches
}

// ByMethod returns the active cards accepting the task method, ordered by
// name.
func (r *Registry) ByMethod(method string) []*AgentCard {
	var matches []*AgentCard
	for _, card := range r.Active() {
		if card.SupportsMethod(method) {
			matches = append(matches, card)
		}
	}
	return matches
}

// ByStage returns the active cards whose pipeline_stage metadata equals
// the stage, ordered by name.
func (r *Registry) ByStage(stage string) []*AgentCard {
	var matches []*AgentCard
	for _, card := range r.Active() {
		if card.Metadata[MetaPipelineStage] == stage {
			matches = append(matches, card)
		}
	}
	return matches
}

// DiscoveryDocument is the JSON projection served at
// /.well-known/agents.json.
type DiscoveryDocument struct {
	ProtocolVersion string       `json:"protocol_version"`
	Agents          []*AgentCard `json:"agents"`
	GeneratedAt     time.Time    `json:"generated_at"`
}

// DiscoveryDocument builds the discovery projection of the registry. All
// cards are included, inactive ones too, so clients can observe status.
func (r *Registry) DiscoveryDocument() *DiscoveryDocument {
	return &DiscoveryDocument{
		ProtocolVersion: ProtocolVersion,
		Agents:          r.List(),
		GeneratedAt:     time.Now().UTC(),
	}
}
