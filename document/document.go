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

// Package document defines the document model shared by retrieval,
// ingestion and serving layers.
package document

import (
	"fmt"
	"strings"
	"time"
)

// Well-known metadata keys.
const (
	// MetaYear is the publication year of the document (stored as int).
	MetaYear = "year"
	// MetaTopics is the topic list of the document (stored as a
	// comma-separated string, see SanitizeMetadata).
	MetaTopics = "topics"
	// MetaSubtopic is the subtopic of the document.
	MetaSubtopic = "subtopic"
	// MetaSource records the origin URL or file path.
	MetaSource = "source"
	// MetaTitle is the human-readable document title.
	MetaTitle = "title"
	// MetaType distinguishes regular chunks from derived entries such as
	// hypothetical questions.
	MetaType = "type"
	// MetaSourceDocumentID links a derived entry back to its parent document.
	MetaSourceDocumentID = "source_document_id"
)

// TypeHypotheticalQuestion marks index entries generated by the
// hypothetical-question augmentation.
const TypeHypotheticalQuestion = "hypothetical_question"

// Document represents a text document with metadata and an optional
// retrieval score.
type Document struct {
	// ID is the unique identifier of the document.
	ID string `json:"id,omitempty"`

	// Name is the name or title of the document.
	Name string `json:"name,omitempty"`

	// Content is the text content of the document.
	Content string `json:"content"`

	// Metadata contains additional information about the document.
	Metadata map[string]any `json:"metadata,omitempty"`

	// Score is the relevance score assigned by a retriever or reranker.
	// Nil means the document has not been scored.
	Score *float64 `json:"score,omitempty"`

	// CreatedAt is the creation timestamp of the document.
	CreatedAt time.Time `json:"created_at,omitempty"`

	// UpdatedAt is the last update timestamp of the document.
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// IsEmpty checks if the document has no content.
func (d *Document) IsEmpty() bool {
	if d == nil || d.Content == "" {
		return true
	}
	return false
}

// Clone creates a deep copy of the document.
func (d *Document) Clone() *Document {
	clone := &Document{
		ID:        d.ID,
		Name:      d.Name,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.Score != nil {
		score := *d.Score
		clone.Score = &score
	}
	if d.Metadata != nil {
		clone.Metadata = make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			clone.Metadata[k] = v
		}
	}
	return clone
}

// WithScore returns a copy of the document carrying the given score.
func (d *Document) WithScore(score float64) *Document {
	clone := d.Clone()
	clone.Score = &score
	return clone
}

// SanitizeMetadata flattens metadata values to the scalar types vector
// stores accept. Slices are joined into a comma-separated string, nil
// entries are dropped, and unsupported types are stringified.
func SanitizeMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}
	clean := make(map[string]any, len(metadata))
	for k, v := range metadata {
		switch val := v.(type) {
		case nil:
			continue
		case string, bool, int, int32, int64, float32, float64:
			clean[k] = val
		case []string:
			clean[k] = strings.Join(val, ", ")
		case []any:
			parts := make([]string, 0, len(val))
			for _, item := range val {
				parts = append(parts, fmt.Sprintf("%v", item))
			}
			clean[k] = strings.Join(parts, ", ")
		default:
			clean[k] = fmt.Sprintf("%v", val)
		}
	}
	return clean
}
