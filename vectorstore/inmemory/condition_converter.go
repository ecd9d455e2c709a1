//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory vector store implementation.
package inmemory

import (
	"fmt"
	"reflect"
	"regexp"
	"runtime/debug"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/log"
	"trpc.group/trpc-go/trpc-rag-go/searchfilter"
)

const (
	idField        = "id"
	nameField      = "name"
	contentField   = "content"
	createdAtField = "created_at"
	updatedAtField = "updated_at"
	metadataPrefix = "metadata."

	valueTypeString = "string"
	valueTypeNumber = "number"
	valueTypeBool   = "bool"
	valueTypeTime   = "time"
)

type comparisonFunc func(doc *document.Document) bool

// inmemoryConverter converts a filter condition to an in-memory document predicate.
//
// Fields resolve against the document struct first (id, name, content,
// created_at, updated_at); any other field name is looked up as a metadata
// key, with or without the "metadata." prefix. A field that resolves to
// nothing on a given document simply fails the condition for that document.
type inmemoryConverter struct{}

// Convert converts a filter condition to an in-memory document predicate.
func (c *inmemoryConverter) Convert(cond *searchfilter.UniversalFilterCondition) (comparisonFunc, error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			log.Errorf("panic in inmemoryConverter Convert: %v\n%s", r, string(stack))
		}
	}()

	condFunc, err := c.convertCondition(cond)
	if err != nil || condFunc == nil {
		return condFunc, err
	}

	wrapperFunc := func(doc *document.Document) bool {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				log.Errorf("panic in condition function: %v\n%s", r, string(stack))
			}
		}()
		return condFunc(doc)
	}

	return wrapperFunc, nil
}

func (c *inmemoryConverter) convertCondition(cond *searchfilter.UniversalFilterCondition) (comparisonFunc, error) {
	if cond == nil {
		return nil, fmt.Errorf("nil condition")
	}

	switch cond.Operator {
	case searchfilter.OperatorAnd, searchfilter.OperatorOr:
		return c.buildLogicalCondition(cond)
	case searchfilter.OperatorEqual, searchfilter.OperatorNotEqual,
		searchfilter.OperatorGreaterThan, searchfilter.OperatorGreaterThanOrEqual,
		searchfilter.OperatorLessThan, searchfilter.OperatorLessThanOrEqual:
		return c.buildComparisonCondition(cond)
	case searchfilter.OperatorIn, searchfilter.OperatorNotIn:
		return c.buildInCondition(cond)
	case searchfilter.OperatorLike, searchfilter.OperatorNotLike:
		return c.buildLikeCondition(cond)
	default:
		return nil, fmt.Errorf("unsupported operation: %s", cond.Operator)
	}
}

func (c *inmemoryConverter) buildLogicalCondition(cond *searchfilter.UniversalFilterCondition) (comparisonFunc, error) {
	conds, ok := cond.Value.([]*searchfilter.UniversalFilterCondition)
	if !ok {
		return nil, fmt.Errorf("invalid logical condition: value must be of type []*searchfilter.UniversalFilterCondition: %v", cond.Value)
	}
	var condFuncs []comparisonFunc
	for _, child := range conds {
		childFunc, err := c.convertCondition(child)
		if err != nil {
			return nil, err
		}
		if childFunc != nil {
			condFuncs = append(condFuncs, childFunc)
		}
	}

	if len(condFuncs) == 0 {
		return nil, fmt.Errorf("no valid sub-conditions in logical condition")
	}

	condFunc := func(doc *document.Document) bool {
		isAndCondition := cond.Operator == searchfilter.OperatorAnd
		for _, childFunc := range condFuncs {
			preCondResult := childFunc(doc)
			// or condition short circuit
			if !isAndCondition && preCondResult {
				return true
			}

			// and condition short circuit
			if isAndCondition && !preCondResult {
				return false
			}
		}

		return isAndCondition
	}

	return condFunc, nil
}

func (c *inmemoryConverter) buildInCondition(cond *searchfilter.UniversalFilterCondition) (comparisonFunc, error) {
	if cond.Field == "" {
		return nil, fmt.Errorf("in operator requires a field name")
	}
	s := reflect.ValueOf(cond.Value)
	if s.Kind() != reflect.Slice || s.Len() <= 0 {
		return nil, fmt.Errorf("in operator value must be a slice with at least one value: %v", cond.Value)
	}

	itemNum := s.Len()
	condFunc := func(doc *document.Document) bool {
		docValue, ok := fieldValue(doc, cond.Field)
		if !ok {
			return cond.Operator == searchfilter.OperatorNotIn
		}

		var found bool
		for i := 0; i < itemNum; i++ {
			if reflect.DeepEqual(docValue, s.Index(i).Interface()) {
				found = true
				break
			}
		}

		if cond.Operator == searchfilter.OperatorIn {
			return found
		}

		return !found
	}
	return condFunc, nil
}

func (c *inmemoryConverter) buildLikeCondition(cond *searchfilter.UniversalFilterCondition) (comparisonFunc, error) {
	if cond.Field == "" {
		return nil, fmt.Errorf("like operator requires a field name")
	}
	pattern, ok := cond.Value.(string)
	if !ok {
		return nil, fmt.Errorf("like operator requires a string pattern")
	}
	match, err := likeMatcher(pattern)
	if err != nil {
		return nil, err
	}

	condFunc := func(doc *document.Document) bool {
		docValue, ok := fieldValue(doc, cond.Field)
		if !ok {
			return false
		}
		docStr, ok := docValue.(string)
		if !ok {
			log.Debugf("like operator requires string document field value: %v", docValue)
			return false
		}
		matched := match(docStr)
		if cond.Operator == searchfilter.OperatorLike {
			return matched
		}
		return !matched
	}
	return condFunc, nil
}

func (c *inmemoryConverter) buildComparisonCondition(cond *searchfilter.UniversalFilterCondition) (comparisonFunc, error) {
	if cond.Field == "" {
		return nil, fmt.Errorf("comparison operator requires a field name")
	}

	condFunc := func(doc *document.Document) bool {
		docValue, ok := fieldValue(doc, cond.Field)
		if !ok {
			// Missing fields never match; for ne that means no assertion
			// can be made either, so the document is excluded.
			return false
		}

		switch valueType(cond.Value) {
		case valueTypeString:
			return compareString(docValue, cond.Value, cond.Operator)
		case valueTypeNumber:
			return compareNumber(docValue, cond.Value, cond.Operator)
		case valueTypeTime:
			return compareTime(docValue, cond.Value, cond.Operator)
		case valueTypeBool:
			return compareBool(docValue, cond.Value, cond.Operator)
		default:
			log.Debugf("this value is unsupported comparison operator: %v - %v", cond.Value, cond.Operator)
		}
		return false
	}
	return condFunc, nil
}

func valueType(value any) string {
	switch reflect.ValueOf(value).Kind() {
	case reflect.String:
		return valueTypeString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return valueTypeNumber
	case reflect.Bool:
		return valueTypeBool
	default:
		if _, ok := value.(time.Time); ok {
			return valueTypeTime
		}
	}
	return ""
}

func compareString(docValue any, condValue any, operator string) bool {
	docStr, ok1 := docValue.(string)
	condStr, ok2 := condValue.(string)
	if !ok1 || !ok2 {
		log.Debugf("string comparison requires string values: %v, %v", docValue, condValue)
		return false
	}

	switch operator {
	case searchfilter.OperatorEqual:
		return docStr == condStr
	case searchfilter.OperatorNotEqual:
		return docStr != condStr
	case searchfilter.OperatorGreaterThan:
		return docStr > condStr
	case searchfilter.OperatorGreaterThanOrEqual:
		return docStr >= condStr
	case searchfilter.OperatorLessThan:
		return docStr < condStr
	case searchfilter.OperatorLessThanOrEqual:
		return docStr <= condStr
	default:
		log.Debugf("this string comparison operator is unsupported: %s", operator)
	}
	return false
}

func compareBool(docValue any, condValue any, operator string) bool {
	docBool, ok1 := docValue.(bool)
	condBool, ok2 := condValue.(bool)
	if !ok1 || !ok2 {
		log.Debugf("bool comparison requires bool values: %v, %v", docValue, condValue)
		return false
	}

	switch operator {
	case searchfilter.OperatorEqual:
		return docBool == condBool
	case searchfilter.OperatorNotEqual:
		return docBool != condBool
	default:
		log.Debugf("this bool comparison operator is unsupported: %s", operator)
	}
	return false
}

func compareTime(docValue any, condValue any, operator string) bool {
	docTime, ok1 := docValue.(time.Time)
	condTime, ok2 := condValue.(time.Time)
	if !ok1 || !ok2 {
		log.Debugf("time comparison requires time.Time values: %v, %v", docValue, condValue)
		return false
	}

	switch operator {
	case searchfilter.OperatorEqual:
		return docTime.Equal(condTime)
	case searchfilter.OperatorNotEqual:
		return !docTime.Equal(condTime)
	case searchfilter.OperatorGreaterThan:
		return docTime.After(condTime)
	case searchfilter.OperatorGreaterThanOrEqual:
		return docTime.After(condTime) || docTime.Equal(condTime)
	case searchfilter.OperatorLessThan:
		return docTime.Before(condTime)
	case searchfilter.OperatorLessThanOrEqual:
		return docTime.Before(condTime) || docTime.Equal(condTime)
	default:
		log.Debugf("this time comparison operator is unsupported: %s", operator)
	}
	return false
}

func compareNumber(docValue any, condValue any, operator string) bool {
	docNum, ok1 := toFloat64(docValue)
	condNum, ok2 := toFloat64(condValue)
	if !ok1 || !ok2 {
		log.Debugf("number comparison requires numeric values: %v, %v", docValue, condValue)
		return false
	}

	switch operator {
	case searchfilter.OperatorEqual:
		return docNum == condNum
	case searchfilter.OperatorNotEqual:
		return docNum != condNum
	case searchfilter.OperatorGreaterThan:
		return docNum > condNum
	case searchfilter.OperatorGreaterThanOrEqual:
		return docNum >= condNum
	case searchfilter.OperatorLessThan:
		return docNum < condNum
	case searchfilter.OperatorLessThanOrEqual:
		return docNum <= condNum
	default:
		log.Debugf("this number comparison operator is unsupported: %s", operator)
	}
	return false
}

func toFloat64(value any) (float64, bool) {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	default:
		log.Debugf("unsupported value type: %v", value)
	}
	return 0, false
}

func fieldValue(doc *document.Document, field string) (any, bool) {
	if doc == nil || field == "" {
		return nil, false
	}

	switch field {
	case idField:
		return doc.ID, true
	case nameField:
		return doc.Name, true
	case contentField:
		return doc.Content, true
	case createdAtField:
		return doc.CreatedAt, true
	case updatedAtField:
		return doc.UpdatedAt, true
	default:
		key := strings.TrimPrefix(field, metadataPrefix)
		if val, ok := doc.Metadata[key]; ok {
			return val, true
		}
	}
	return nil, false
}

// likeMatcher builds the string predicate for a like pattern. A pattern
// without wildcards matches as a plain substring; % and _ keep their usual
// meaning and anchor the pattern to the whole value.
func likeMatcher(pattern string) (func(string) bool, error) {
	if !strings.ContainsAny(pattern, "%_") {
		return func(s string) bool { return strings.Contains(s, pattern) }, nil
	}

	regexPattern := regexp.QuoteMeta(pattern)
	regexPattern = strings.ReplaceAll(regexPattern, `%`, ".*")
	regexPattern = strings.ReplaceAll(regexPattern, `_`, ".")

	re, err := regexp.Compile("^" + regexPattern + "$")
	if err != nil {
		return nil, fmt.Errorf("invalid like pattern %q: %w", pattern, err)
	}
	return re.MatchString, nil
}
