//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package chunking

import (
	"trpc.group/trpc-go/trpc-rag-go/document"
)

// FixedSizeChunking splits text into fixed-size chunks with overlap. Sizes
// are measured in characters, not bytes, so multi-byte text never breaks
// mid-rune. Cut points prefer sentence boundaries, then whitespace.
type FixedSizeChunking struct {
	chunkSize int
	overlap   int
}

// Option configures FixedSizeChunking.
type Option func(*FixedSizeChunking)

// WithChunkSize sets the maximum size of each chunk in characters.
func WithChunkSize(size int) Option {
	return func(fsc *FixedSizeChunking) {
		fsc.chunkSize = size
	}
}

// WithOverlap sets the number of characters repeated between consecutive
// chunks.
func WithOverlap(overlap int) Option {
	return func(fsc *FixedSizeChunking) {
		fsc.overlap = overlap
	}
}

// NewFixedSizeChunking creates a fixed-size chunking strategy. Invalid
// geometry is clamped rather than rejected: a non-positive size falls back
// to the default and the overlap always stays below the chunk size.
func NewFixedSizeChunking(opts ...Option) *FixedSizeChunking {
	fsc := &FixedSizeChunking{
		chunkSize: defaultChunkSize,
		overlap:   defaultOverlap,
	}
	for _, opt := range opts {
		opt(fsc)
	}
	fsc.chunkSize, fsc.overlap = clampGeometry(fsc.chunkSize, fsc.overlap)
	return fsc
}

// Chunk implements Strategy.
func (f *FixedSizeChunking) Chunk(doc *document.Document) ([]*document.Document, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	if doc.IsEmpty() {
		return nil, ErrEmptyDocument
	}

	content := cleanText(doc.Content)
	pieces := splitText(content, f.chunkSize, f.overlap)

	chunks := make([]*document.Document, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, newChunk(doc, piece, i))
	}
	return chunks, nil
}

// clampGeometry normalizes a chunk size and overlap pair.
func clampGeometry(size, overlap int) (int, int) {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = min(defaultOverlap, size-1)
	}
	return size, overlap
}

// splitText cuts content into pieces of at most size characters with the
// given overlap. Cut points prefer sentence boundaries, then whitespace,
// as long as the piece still advances past the overlap window.
func splitText(content string, size, overlap int) []string {
	runes := []rune(content)
	total := len(runes)
	if total <= size {
		return []string{content}
	}

	var pieces []string
	start := 0
	for start < total {
		end := min(start+size, total)
		if end < total {
			sentenceCut, spaceCut := findCuts(runes, start, end)
			switch {
			case sentenceCut-start > overlap:
				end = sentenceCut
			case spaceCut-start > overlap:
				end = spaceCut
			}
		}

		pieces = append(pieces, string(runes[start:end]))
		if end == total {
			break
		}
		start = end - overlap
	}
	return pieces
}

// findCuts scans backwards through the window for the last sentence
// boundary and the last whitespace. Either is -1 when absent.
func findCuts(runes []rune, start, targetEnd int) (sentenceCut, spaceCut int) {
	sentenceCut, spaceCut = -1, -1
	for i := targetEnd - 1; i > start; i-- {
		r := runes[i]
		if sentenceCut == -1 && isSentenceEnd(r) {
			sentenceCut = i + 1
		}
		if spaceCut == -1 && isWhitespace(r) {
			spaceCut = i + 1
		}
		if sentenceCut != -1 && spaceCut != -1 {
			break
		}
	}
	return sentenceCut, spaceCut
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '\n', '。', '！', '？':
		return true
	}
	return false
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\n', '\r', '\t':
		return true
	}
	return false
}
