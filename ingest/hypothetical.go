//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/llm"
)

// Hypothetical question generation parameters.
const (
	hypotheticalQuestionCount = 5
	hypotheticalTemperature   = 0.7
	hypotheticalContentLimit  = 3000
)

// hqIDSuffix separates the parent document ID from the question index.
const hqIDSuffix = "_hq_"

const hypotheticalPrompt = "Generate %d diverse hypothetical questions that a user might ask " +
	"which would be answered by the following document. " +
	"Return only the questions, one per line.\n\n" +
	"Document title: %s\n\n" +
	"Document content:\n%s"

// indexHypotheticalQuestions generates questions a user might ask of the
// document and indexes each one as its own searchable entry pointing back
// at the parent. Matching a question at query time surfaces the parent
// document.
func (i *Ingestor) indexHypotheticalQuestions(ctx context.Context, parent *document.Document) error {
	questions, err := i.generateQuestions(ctx, parent)
	if err != nil {
		return err
	}

	for _, qdoc := range buildQuestionDocuments(parent, questions) {
		if err := i.upsert(ctx, qdoc); err != nil {
			return fmt.Errorf("index question %s: %w", qdoc.ID, err)
		}
	}
	return nil
}

// generateQuestions asks the model for hypothetical questions, retrying
// per the question policy.
func (i *Ingestor) generateQuestions(ctx context.Context, parent *document.Document) ([]string, error) {
	temperature := hypotheticalTemperature
	request := &llm.Request{
		Prompt:      buildQuestionPrompt(parent),
		Temperature: &temperature,
	}

	var questions []string
	op := fmt.Sprintf("generate questions for document %s", parent.ID)
	err := i.questionRetry.Do(ctx, op, func(ctx context.Context) error {
		response, err := i.generator.Generate(ctx, request)
		if err != nil {
			return err
		}
		questions = parseQuestions(response.Text)
		if len(questions) == 0 {
			return fmt.Errorf("model returned no questions")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// buildQuestionPrompt fills the generation prompt. Long documents are
// truncated so the prompt stays within context limits.
func buildQuestionPrompt(parent *document.Document) string {
	title := parent.Name
	if t, ok := parent.Metadata[document.MetaTitle].(string); ok && t != "" {
		title = t
	}

	content := parent.Content
	if runes := []rune(content); len(runes) > hypotheticalContentLimit {
		content = string(runes[:hypotheticalContentLimit])
	}
	return fmt.Sprintf(hypotheticalPrompt, hypotheticalQuestionCount, title, content)
}

// parseQuestions splits the model output into individual questions, one
// per line, capped at the requested count.
func parseQuestions(text string) []string {
	var questions []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		questions = append(questions, line)
		if len(questions) == hypotheticalQuestionCount {
			break
		}
	}
	return questions
}

// buildQuestionDocuments wraps each question as an index entry linked to
// its parent document.
func buildQuestionDocuments(parent *document.Document, questions []string) []*document.Document {
	now := time.Now().UTC()
	docs := make([]*document.Document, 0, len(questions))
	for idx, question := range questions {
		metadata := map[string]any{
			document.MetaType:             document.TypeHypotheticalQuestion,
			document.MetaSourceDocumentID: parent.ID,
		}
		if title, ok := parent.Metadata[document.MetaTitle]; ok {
			metadata[document.MetaTitle] = title
		}
		docs = append(docs, &document.Document{
			ID:        parent.ID + hqIDSuffix + strconv.Itoa(idx),
			Name:      parent.Name,
			Content:   question,
			Metadata:  metadata,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return docs
}
