//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package augment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trpc.group/trpc-go/trpc-rag-go/llm"
)

// scriptedGenerator answers each call with the next canned response, or the
// error registered for that call index.
type scriptedGenerator struct {
	responses []string
	errs      map[int]error

	calls   int
	prompts []string
	temps   []float64
}

func (s *scriptedGenerator) Generate(ctx context.Context, request *llm.Request) (*llm.Response, error) {
	index := s.calls
	s.calls++
	s.prompts = append(s.prompts, request.Prompt)
	if request.Temperature != nil {
		s.temps = append(s.temps, *request.Temperature)
	}
	if err := s.errs[index]; err != nil {
		return nil, err
	}
	var text string
	if index < len(s.responses) {
		text = s.responses[index]
	}
	return &llm.Response{Text: text}, nil
}

func (s *scriptedGenerator) Info() llm.Info { return llm.Info{Name: "scripted"} }

func TestExpander_StripsMarkersAndPrependsOriginal(t *testing.T) {
	generator := &scriptedGenerator{responses: []string{
		"1. How does solar work?\n2) Mechanisms of solar power\n- Photovoltaic generation explained\n",
	}}
	e := NewExpander(generator)

	variants, err := e.Expand(context.Background(), "how do panels make electricity")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"how do panels make electricity",
		"How does solar work?",
		"Mechanisms of solar power",
		"Photovoltaic generation explained",
	}, variants)

	require.Len(t, generator.prompts, 1)
	assert.Contains(t, generator.prompts[0], "how do panels make electricity")
	require.Len(t, generator.temps, 1)
	assert.Equal(t, 0.3, generator.temps[0])
}

func TestExpander_OriginalNotDuplicated(t *testing.T) {
	generator := &scriptedGenerator{responses: []string{
		"solar power basics\nintroduction to solar energy",
	}}
	e := NewExpander(generator)

	variants, err := e.Expand(context.Background(), "solar power basics")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"solar power basics",
		"introduction to solar energy",
	}, variants)
}

func TestExpander_GenerationFailureReturnsOriginal(t *testing.T) {
	sentinel := errors.New("model unavailable")
	e := NewExpander(&scriptedGenerator{errs: map[int]error{0: sentinel}})

	variants, err := e.Expand(context.Background(), "solar power basics")
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, []string{"solar power basics"}, variants)
}

func TestExpander_NilGenerator(t *testing.T) {
	e := NewExpander(nil)

	variants, err := e.Expand(context.Background(), "solar power basics")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoGenerator)
	assert.Equal(t, []string{"solar power basics"}, variants)
}

func TestExpander_EmptyQuery(t *testing.T) {
	e := NewExpander(&scriptedGenerator{})

	_, err := e.Expand(context.Background(), "")
	require.Error(t, err)
}

func TestExpander_BlankResponseKeepsOriginal(t *testing.T) {
	e := NewExpander(&scriptedGenerator{responses: []string{"  \n \n"}})

	variants, err := e.Expand(context.Background(), "solar power basics")
	require.NoError(t, err)
	assert.Equal(t, []string{"solar power basics"}, variants)
}
