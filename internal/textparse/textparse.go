//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

// Package textparse cleans up raw language model output before it is parsed
// as structured data or split into lines.
package textparse

import "strings"

// StripCodeFences removes a surrounding markdown code fence from s, including
// any language tag on the opening fence. Text without a fence is returned
// trimmed but otherwise unchanged.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Drop the opening fence line (which may carry a language tag).
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}

	// Drop everything from the closing fence on.
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}

// StripEnumerationMarker removes a leading list marker such as "1. ", "2) ",
// "- " or "* " from a line. Lines without a marker are returned trimmed.
func StripEnumerationMarker(line string) string {
	line = strings.TrimSpace(line)

	// Bullet markers.
	for _, prefix := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line[len(prefix):])
		}
	}

	// Numbered markers: digits followed by "." or ")".
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i < len(line) && (line[i] == '.' || line[i] == ')') {
		return strings.TrimSpace(line[i+1:])
	}

	return line
}

// Lines splits s into trimmed, non-empty lines.
func Lines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
