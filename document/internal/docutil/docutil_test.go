//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package docutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDocumentIsDeterministic(t *testing.T) {
	first := CreateDocument("content", "Annual Report 2024")
	second := CreateDocument("other content", "Annual Report 2024")

	assert.Equal(t, "Annual_Report_2024", first.ID)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Annual Report 2024", first.Name)
	assert.Equal(t, "content", first.Content)
	assert.NotNil(t, first.Metadata)
	assert.WithinDuration(t, time.Now().UTC(), first.CreatedAt, 5*time.Second)
}

func TestGenerateDocumentID(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"plain", "plain"},
		{"with spaces here", "with_spaces_here"},
		{"semi-colons;and/slashes", "semi-colons_and_slashes"},
		{"  padded  ", "padded"},
		{"v1.2-notes", "v1.2-notes"},
		{"检索指南", "检索指南"},
		{"a   b", "a_b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GenerateDocumentID(tt.name), "name %q", tt.name)
	}
}

func TestGenerateDocumentIDFallsBackToUUID(t *testing.T) {
	id := GenerateDocumentID("///")
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	other := GenerateDocumentID("")
	assert.NotEqual(t, id, other)
}
