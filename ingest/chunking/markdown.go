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
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"trpc.group/trpc-go/trpc-rag-go/document"
	"trpc.group/trpc-go/trpc-rag-go/internal/encoding"
)

// Section metadata keys attached to markdown chunks.
const (
	metaMarkdownTitle = "markdown_title"
	metaMarkdownLevel = "markdown_level"
)

// MarkdownChunking splits markdown documents along their heading
// structure. Content is parsed with goldmark and emitted as plain text,
// one chunk per section, with oversized sections falling back to the
// fixed-size splitter.
type MarkdownChunking struct {
	chunkSize int
	overlap   int
	md        goldmark.Markdown
}

// MarkdownOption configures MarkdownChunking.
type MarkdownOption func(*MarkdownChunking)

// WithMarkdownChunkSize sets the maximum size of each chunk in characters.
func WithMarkdownChunkSize(size int) MarkdownOption {
	return func(mc *MarkdownChunking) {
		mc.chunkSize = size
	}
}

// WithMarkdownOverlap sets the overlap used when an oversized section has
// to be split.
func WithMarkdownOverlap(overlap int) MarkdownOption {
	return func(mc *MarkdownChunking) {
		mc.overlap = overlap
	}
}

// NewMarkdownChunking creates a markdown-aware chunking strategy.
func NewMarkdownChunking(opts ...MarkdownOption) *MarkdownChunking {
	mc := &MarkdownChunking{
		chunkSize: defaultChunkSize,
		overlap:   defaultOverlap,
		md:        goldmark.New(),
	}
	for _, opt := range opts {
		opt(mc)
	}
	mc.chunkSize, mc.overlap = clampGeometry(mc.chunkSize, mc.overlap)
	return mc
}

// markdownSection is one heading-delimited span of the document.
type markdownSection struct {
	title string
	level int
	body  string
}

// text renders the section as plain text: the title line followed by the
// body, markdown syntax stripped.
func (s markdownSection) text() string {
	switch {
	case s.title == "":
		return s.body
	case s.body == "":
		return s.title
	}
	return s.title + "\n\n" + s.body
}

// Chunk implements Strategy.
func (m *MarkdownChunking) Chunk(doc *document.Document) ([]*document.Document, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	if doc.IsEmpty() {
		return nil, ErrEmptyDocument
	}

	content := cleanText(doc.Content)
	sections := m.parseSections(content)

	var chunks []*document.Document
	index := 0
	for _, section := range sections {
		sectionText := section.text()
		if sectionText == "" {
			continue
		}

		for _, piece := range m.splitSection(sectionText) {
			chunk := newChunk(doc, piece, index)
			if section.title != "" {
				chunk.Metadata[metaMarkdownTitle] = section.title
				chunk.Metadata[metaMarkdownLevel] = section.level
			}
			chunks = append(chunks, chunk)
			index++
		}
	}

	if len(chunks) == 0 {
		return nil, ErrEmptyDocument
	}
	return chunks, nil
}

// splitSection returns the section text whole, or fixed-size pieces when
// it exceeds the chunk size.
func (m *MarkdownChunking) splitSection(sectionText string) []string {
	if encoding.RuneCount(sectionText) <= m.chunkSize {
		return []string{sectionText}
	}
	return splitText(sectionText, m.chunkSize, m.overlap)
}

// parseSections walks the goldmark AST and groups the top-level blocks
// into heading-delimited sections of plain text.
func (m *MarkdownChunking) parseSections(content string) []markdownSection {
	src := []byte(content)
	root := m.md.Parser().Parse(text.NewReader(src))

	var sections []markdownSection
	var current markdownSection
	var body strings.Builder

	flush := func() {
		current.body = strings.TrimSpace(body.String())
		if current.title != "" || current.body != "" {
			sections = append(sections, current)
		}
		current = markdownSection{}
		body.Reset()
	}

	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		if heading, ok := node.(*ast.Heading); ok {
			flush()
			current.title = extractText(heading, src)
			current.level = heading.Level
			continue
		}

		blockText := extractText(node, src)
		if blockText == "" {
			continue
		}
		if body.Len() > 0 {
			body.WriteString("\n\n")
		}
		body.WriteString(blockText)
	}
	flush()

	return sections
}

// extractText collects the plain text beneath a node, dropping markdown
// syntax.
func extractText(node ast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Text:
			buf.Write(v.Text(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(v.Value)
		case *ast.FencedCodeBlock:
			writeCodeLines(&buf, v, src)
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			writeCodeLines(&buf, v, src)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

// writeCodeLines copies the raw lines of a code block into the buffer.
func writeCodeLines(buf *bytes.Buffer, node ast.Node, src []byte) {
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		buf.Write(segment.Value(src))
	}
}
