//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package docx provides the DOCX document reader.
package docx

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gonfva/docxlib"

	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/document/internal/docutil"
	"trpc.group/trpc-go/trpc-rag-go/document/reader"
	"trpc.group/trpc-go/trpc-rag-go/ingest/chunking"
)

func init() {
	reader.RegisterReader([]string{".docx", ".doc"}, func() reader.Reader {
		return New()
	})
}

// Reader extracts paragraph text from DOCX documents.
type Reader struct {
	chunk            bool
	chunkingStrategy chunking.Strategy
}

// Option configures the DOCX reader.
type Option func(*Reader)

// WithChunking enables or disables document chunking.
func WithChunking(chunk bool) Option {
	return func(r *Reader) {
		r.chunk = chunk
	}
}

// WithChunkingStrategy sets the chunking strategy to use.
func WithChunkingStrategy(strategy chunking.Strategy) Option {
	return func(r *Reader) {
		r.chunkingStrategy = strategy
	}
}

// New creates a DOCX reader with the given options.
func New(opts ...Option) *Reader {
	r := &Reader{
		chunk:            true,
		chunkingStrategy: chunking.NewFixedSizeChunking(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadFromReader reads DOCX content from an io.Reader. The content is
// buffered in memory because the underlying zip format needs random
// access.
func (r *Reader) ReadFromReader(name string, rd io.Reader) ([]*document.Document, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return r.parse(bytes.NewReader(data), int64(len(data)), name)
}

// ReadFromFile reads DOCX content from a file path.
func (r *Reader) ReadFromFile(filePath string) ([]*document.Document, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filePath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", filePath, err)
	}
	name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	return r.parse(file, stat.Size(), name)
}

// parse extracts the text and applies chunking when enabled.
func (r *Reader) parse(readerAt io.ReaderAt, size int64, name string) ([]*document.Document, error) {
	parsed, err := docxlib.Parse(readerAt, size)
	if err != nil {
		return nil, fmt.Errorf("parse docx %s: %w", name, err)
	}

	doc := docutil.CreateDocument(extractText(parsed), name)
	if !r.chunk {
		return []*document.Document{doc}, nil
	}
	if r.chunkingStrategy == nil {
		r.chunkingStrategy = chunking.NewFixedSizeChunking()
	}
	return r.chunkingStrategy.Chunk(doc)
}

// extractText joins the document's paragraph text, one line per
// paragraph. Runs and hyperlink runs both contribute.
func extractText(parsed *docxlib.DocxLib) string {
	var content strings.Builder
	for _, paragraph := range parsed.Paragraphs() {
		lineStart := content.Len()
		for _, child := range paragraph.Children() {
			var text string
			switch {
			case child.Run != nil && child.Run.Text != nil:
				text = child.Run.Text.Text
			case child.Link != nil && child.Link.Run.Text != nil:
				text = child.Link.Run.Text.Text
			}
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			if content.Len() > lineStart {
				content.WriteString(" ")
			}
			content.WriteString(text)
		}
		if content.Len() > lineStart {
			content.WriteString("\n")
		}
	}
	return strings.TrimSpace(content.String())
}

// Name returns the name of this reader.
func (r *Reader) Name() string {
	return "DOCXReader"
}
