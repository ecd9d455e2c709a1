//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package searchfilter provides the metadata filter model shared by the
// retrieval strategies and the vector stores.
package searchfilter

const (
	// OperatorAnd is the "and" operator.
	OperatorAnd = "and"

	// OperatorOr is the "or" operator.
	OperatorOr = "or"

	// OperatorEqual is the "equal" operator.
	OperatorEqual = "eq"

	// OperatorNotEqual is the "not equal" operator.
	OperatorNotEqual = "ne"

	// OperatorGreaterThan is the "greater than" operator.
	OperatorGreaterThan = "gt"

	// OperatorGreaterThanOrEqual is the "greater than or equal" operator.
	OperatorGreaterThanOrEqual = "gte"

	// OperatorLessThan is the "less than" operator.
	OperatorLessThan = "lt"

	// OperatorLessThanOrEqual is the "less than or equal" operator.
	OperatorLessThanOrEqual = "lte"

	// OperatorIn is the "in" operator.
	OperatorIn = "in"

	// OperatorNotIn is the "not in" operator.
	OperatorNotIn = "not in"

	// OperatorLike is the "contains" operator.
	OperatorLike = "like"

	// OperatorNotLike is the "not contains" operator.
	OperatorNotLike = "not like"
)

// UniversalFilterCondition represents a single condition for a search filter.
type UniversalFilterCondition struct {
	// Field is the metadata field to filter on.
	Field string

	// Operator is the comparison operator (e.g., "eq", "ne", "like", "and", "or").
	Operator string

	// Value is the value to compare against.
	// If the Operator is "and" or "or", Value is a slice of
	// *UniversalFilterCondition. If the Operator is "in" or "not in",
	// Value is a slice of any. If the Operator is "like" or "not like",
	// Value is a string.
	Value any
}

// And combines conditions under a logical AND. Nil conditions are skipped.
// Returns nil for zero conditions and the bare condition for exactly one,
// so single-clause filters never carry a redundant combinator.
func And(conditions ...*UniversalFilterCondition) *UniversalFilterCondition {
	kept := make([]*UniversalFilterCondition, 0, len(conditions))
	for _, c := range conditions {
		if c != nil {
			kept = append(kept, c)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return &UniversalFilterCondition{Operator: OperatorAnd, Value: kept}
	}
}

// Equal builds an equality condition.
func Equal(field string, value any) *UniversalFilterCondition {
	return &UniversalFilterCondition{Field: field, Operator: OperatorEqual, Value: value}
}

// Contains builds a substring-containment condition.
func Contains(field string, value string) *UniversalFilterCondition {
	return &UniversalFilterCondition{Field: field, Operator: OperatorLike, Value: value}
}

// Converter is an interface for converting universal filter conditions to
// specific query formats.
type Converter[T any] interface {
	// Convert converts a universal filter condition to a specific query format.
	Convert(condition *UniversalFilterCondition) (T, error)
}
