//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package pdf provides the PDF document reader.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/document/internal/docutil"
	"trpc.group/trpc-go/trpc-rag-go/document/reader"
	"trpc.group/trpc-go/trpc-rag-go/ingest/chunking"
)

func init() {
	reader.RegisterReader([]string{".pdf"}, func() reader.Reader {
		return New()
	})
}

// Reader extracts plain text from PDF documents page by page.
type Reader struct {
	chunk            bool
	chunkingStrategy chunking.Strategy
}

// Option configures the PDF reader.
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

// New creates a PDF reader with the given options.
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

// ReadFromReader reads PDF content from an io.Reader.
func (r *Reader) ReadFromReader(name string, rd io.Reader) ([]*document.Document, error) {
	readerAt, size, err := toReaderAt(rd)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return r.extract(readerAt, size, name)
}

// ReadFromFile reads PDF content from a file path.
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
	return r.extract(file, stat.Size(), name)
}

// extract walks the pages and concatenates their plain text. Pages that
// fail text extraction are skipped rather than failing the whole file.
func (r *Reader) extract(readerAt io.ReaderAt, size int64, name string) ([]*document.Document, error) {
	pdfReader, err := pdf.NewReader(readerAt, size)
	if err != nil {
		return nil, fmt.Errorf("parse pdf %s: %w", name, err)
	}

	var allText strings.Builder
	for pageIndex := 1; pageIndex <= pdfReader.NumPage(); pageIndex++ {
		page := pdfReader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		allText.WriteString(text)
		allText.WriteString("\n")
	}

	doc := docutil.CreateDocument(allText.String(), name)
	if !r.chunk {
		return []*document.Document{doc}, nil
	}
	if r.chunkingStrategy == nil {
		r.chunkingStrategy = chunking.NewFixedSizeChunking()
	}
	return r.chunkingStrategy.Chunk(doc)
}

// toReaderAt adapts an io.Reader for the random access the PDF parser
// needs. Seekable inputs are used in place, anything else is buffered.
func toReaderAt(r io.Reader) (io.ReaderAt, int64, error) {
	if ra, ok := r.(io.ReaderAt); ok {
		if rs, ok := r.(io.ReadSeeker); ok {
			size, err := seekerSize(rs)
			if err != nil {
				return nil, 0, err
			}
			return ra, size, nil
		}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}
	return bytes.NewReader(data), int64(len(data)), nil
}

// seekerSize returns the total size of an io.ReadSeeker without moving
// its current position.
func seekerSize(rs io.ReadSeeker) (int64, error) {
	current, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := rs.Seek(current, io.SeekStart); err != nil {
		return 0, err
	}
	return end, nil
}

// Name returns the name of this reader.
func (r *Reader) Name() string {
	return "PDFReader"
}
