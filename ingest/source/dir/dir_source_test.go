//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package dir

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/ingest/source"
)

// newTestTree builds a small directory tree:
//
//	a.txt
//	b.md
//	e.bin
//	sub/c.txt
//	skip/d.txt
func newTestTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"a.txt":      "Top level text file.",
		"b.md":       "# Heading\n\nMarkdown body.",
		"e.bin":      "binary-ish payload",
		"sub/c.txt":  "Nested text file.",
		"skip/d.txt": "Should be excludable.",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func readPaths(docs []*document.Document) map[string]bool {
	names := make(map[string]bool)
	for _, doc := range docs {
		names[doc.Metadata[source.MetaFileName].(string)] = true
	}
	return names
}

func TestDirSourceReadsAllFiles(t *testing.T) {
	src := New(newTestTree(t), WithName("corpus"))

	docs, err := src.ReadDocuments(context.Background())
	require.NoError(t, err)

	names := readPaths(docs)
	assert.Len(t, names, 5)
	assert.True(t, names["a.txt"])
	assert.True(t, names["c.txt"])

	for _, doc := range docs {
		assert.Equal(t, source.TypeDir, doc.Metadata[source.MetaSource])
		assert.Equal(t, "corpus", doc.Metadata[source.MetaSourceName])
	}
}

func TestDirSourceNamesDocumentsByRelativePath(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"x/readme.txt", "y/readme.txt"} {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("same name, different dirs"), 0o600))
	}

	docs, err := New(root).ReadDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)

	ids := []string{docs[0].ID, docs[1].ID}
	assert.Contains(t, ids, "x_readme_chunk_0")
	assert.Contains(t, ids, "y_readme_chunk_0")
}

func TestDirSourceIncludePatterns(t *testing.T) {
	src := New(newTestTree(t), WithIncludePatterns("**/*.txt"))

	docs, err := src.ReadDocuments(context.Background())
	require.NoError(t, err)

	names := readPaths(docs)
	assert.Len(t, names, 3)
	assert.True(t, names["a.txt"])
	assert.True(t, names["c.txt"])
	assert.True(t, names["d.txt"])
	assert.False(t, names["b.md"])
}

func TestDirSourceExcludePatterns(t *testing.T) {
	src := New(newTestTree(t), WithExcludePatterns("skip/**", "**/*.bin"))

	docs, err := src.ReadDocuments(context.Background())
	require.NoError(t, err)

	names := readPaths(docs)
	assert.Len(t, names, 3)
	assert.False(t, names["d.txt"])
	assert.False(t, names["e.bin"])
}

func TestDirSourceExcludesWholeDirectory(t *testing.T) {
	src := New(newTestTree(t), WithExcludePatterns("skip/"))

	docs, err := src.ReadDocuments(context.Background())
	require.NoError(t, err)
	assert.False(t, readPaths(docs)["d.txt"])
}

func TestDirSourceNonRecursive(t *testing.T) {
	src := New(newTestTree(t), WithRecursive(false))

	docs, err := src.ReadDocuments(context.Background())
	require.NoError(t, err)

	names := readPaths(docs)
	assert.Len(t, names, 3)
	assert.True(t, names["a.txt"])
	assert.False(t, names["c.txt"])
	assert.False(t, names["d.txt"])
}

func TestDirSourceChunkConfig(t *testing.T) {
	root := t.TempDir()
	content := ""
	for i := 0; i < 12; i++ {
		content += "Another sentence with enough words. "
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "long.txt"), []byte(content), 0o600))

	src := New(root, WithChunkSize(60), WithChunkOverlap(10))
	docs, err := src.ReadDocuments(context.Background())
	require.NoError(t, err)
	assert.Greater(t, len(docs), 1)
}

func TestDirSourceRootErrors(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing")).ReadDocuments(context.Background())
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	_, err = New(file).ReadDocuments(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestDirSourceNameAndType(t *testing.T) {
	src := New(t.TempDir())
	assert.Equal(t, "Directory Source", src.Name())
	assert.Equal(t, source.TypeDir, src.Type())
}
