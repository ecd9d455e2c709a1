//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package docutil provides document construction helpers shared by the
// readers.
package docutil

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-rag-go/document"
)

// CreateDocument builds a document from raw content. The ID is derived
// from the name, so reading the same file again produces the same ID and
// re-ingestion overwrites instead of duplicating.
func CreateDocument(content, name string) *document.Document {
	now := time.Now().UTC()
	return &document.Document{
		ID:        GenerateDocumentID(name),
		Name:      name,
		Content:   content,
		Metadata:  make(map[string]any),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GenerateDocumentID derives a stable identifier from a document name.
// Characters unsafe for store keys collapse to underscores. A name with
// nothing usable in it falls back to a random UUID.
func GenerateDocumentID(name string) string {
	id := sanitizeID(name)
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func sanitizeID(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.':
			b.WriteRune(r)
			lastUnderscore = false
		case lastUnderscore:
			// Collapse runs of unsafe characters.
		default:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}
