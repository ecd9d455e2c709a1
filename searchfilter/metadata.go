//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package searchfilter

import (
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-rag-go/document"
)

// metadataFields lists the recognized filter keys in the order their
// clauses appear inside a combined predicate.
var metadataFields = []string{document.MetaYear, document.MetaTopics, document.MetaSubtopic}

// BuildMetadataFilter translates a flat filter map with the recognized keys
// year, topics and subtopic into a predicate tree. A single recognized key
// yields a bare clause, two or more are combined under AND, and an empty or
// unrecognized-only map yields nil (unconstrained search).
//
// year compares by equality on an integer value, topics by containment
// (list values are joined with ", "), subtopic by equality.
func BuildMetadataFilter(filters map[string]any) *UniversalFilterCondition {
	if len(filters) == 0 {
		return nil
	}
	conditions := make([]*UniversalFilterCondition, 0, len(metadataFields))
	for _, field := range metadataFields {
		value, ok := filters[field]
		if !ok || value == nil {
			continue
		}
		switch field {
		case document.MetaYear:
			if year, ok := toInt(value); ok {
				conditions = append(conditions, Equal(field, year))
			}
		case document.MetaTopics:
			if topics := toTopicString(value); topics != "" {
				conditions = append(conditions, Contains(field, topics))
			}
		case document.MetaSubtopic:
			if s := strings.TrimSpace(fmt.Sprintf("%v", value)); s != "" {
				conditions = append(conditions, Equal(field, s))
			}
		}
	}
	return And(conditions...)
}

// toInt coerces the numeric representations a JSON decoder may produce.
func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float32:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func toTopicString(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, ", ")
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", value))
	}
}
