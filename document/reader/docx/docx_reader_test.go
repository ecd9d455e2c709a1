//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package docx

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gomutex/godocx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-rag-go/document"
)

type errChunker struct{}

func (errChunker) Chunk(doc *document.Document) ([]*document.Document, error) {
	return nil, errors.New("chunk fail")
}

// createDocx builds a DOCX file with the given paragraphs and returns its
// bytes.
func createDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	doc, err := godocx.NewDocument()
	require.NoError(t, err)
	for _, p := range paragraphs {
		doc.AddParagraph(p)
	}

	var buf bytes.Buffer
	_, err = doc.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestDOCXReaderReadFromReader(t *testing.T) {
	data := createDocx(t, "Hello Docx")

	rdr := New(WithChunking(false))
	docs, err := rdr.ReadFromReader("example", bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "example", docs[0].ID)
	assert.Contains(t, docs[0].Content, "Hello Docx")
}

func TestDOCXReaderJoinsParagraphs(t *testing.T) {
	data := createDocx(t, "First paragraph.", "Second paragraph.")

	rdr := New(WithChunking(false))
	docs, err := rdr.ReadFromReader("multi", bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Content, "First paragraph.")
	assert.Contains(t, docs[0].Content, "Second paragraph.")
}

func TestDOCXReaderReadFromFile(t *testing.T) {
	data := createDocx(t, "File mode content")
	path := filepath.Join(t.TempDir(), "memo.docx")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	rdr := New(WithChunking(false))
	docs, err := rdr.ReadFromFile(path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "memo", docs[0].Name)
	assert.Contains(t, docs[0].Content, "File mode content")

	_, err = rdr.ReadFromFile(filepath.Join(t.TempDir(), "missing.docx"))
	require.Error(t, err)
}

func TestDOCXReaderChunkError(t *testing.T) {
	data := createDocx(t, "Body text")

	rdr := New(WithChunkingStrategy(errChunker{}))
	_, err := rdr.ReadFromReader("broken", bytes.NewReader(data))
	require.Error(t, err)
}

func TestDOCXReaderRejectsGarbage(t *testing.T) {
	_, err := New().ReadFromReader("junk", bytes.NewReader([]byte("not a docx")))
	require.Error(t, err)
}

func TestDOCXReaderName(t *testing.T) {
	assert.Equal(t, "DOCXReader", New().Name())
}
