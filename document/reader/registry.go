//
// Tencent is pleased to support the open source community by making trpc-rag-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rag-go is licensed under the Apache License Version 2.0.
//
//

package reader

import (
	"strings"
	"sync"
)

// Constructor creates a new Reader instance.
type Constructor func() Reader

// Registry maps file extensions to reader constructors and caches the
// constructed instances.
type Registry struct {
	mu          sync.Mutex
	readers     map[string]Constructor
	initialized map[string]Reader
}

var globalRegistry = &Registry{
	readers:     make(map[string]Constructor),
	initialized: make(map[string]Reader),
}

// RegisterReader registers a reader constructor for the given file
// extensions. Extensions include the dot prefix, such as ".pdf".
func RegisterReader(extensions []string, constructor Constructor) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	for _, ext := range extensions {
		globalRegistry.readers[strings.ToLower(ext)] = constructor
	}
}

// GetReader returns the reader registered for a file extension. The
// instance is constructed on first use and cached. Returns false when no
// reader is registered for the extension.
func GetReader(extension string) (Reader, bool) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	ext := strings.ToLower(extension)
	if r, ok := globalRegistry.initialized[ext]; ok {
		return r, true
	}
	constructor, ok := globalRegistry.readers[ext]
	if !ok {
		return nil, false
	}
	r := constructor()
	globalRegistry.initialized[ext] = r
	return r, true
}

// GetAllReaders returns one reader per registered file type, keyed by the
// simplified type name such as "text" or "pdf".
func GetAllReaders() map[string]Reader {
	globalRegistry.mu.Lock()
	extensions := make([]string, 0, len(globalRegistry.readers))
	for ext := range globalRegistry.readers {
		extensions = append(extensions, ext)
	}
	globalRegistry.mu.Unlock()

	result := make(map[string]Reader, len(extensions))
	for _, ext := range extensions {
		typeName := extensionToType(ext)
		if _, seen := result[typeName]; seen {
			continue
		}
		if r, ok := GetReader(ext); ok {
			result[typeName] = r
		}
	}
	return result
}

// GetRegisteredExtensions returns all registered file extensions.
func GetRegisteredExtensions() []string {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	extensions := make([]string, 0, len(globalRegistry.readers))
	for ext := range globalRegistry.readers {
		extensions = append(extensions, ext)
	}
	return extensions
}

// extensionToType converts a file extension to a simplified type name.
func extensionToType(ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	switch ext {
	case "txt", "text":
		return "text"
	case "md", "markdown":
		return "markdown"
	case "pdf":
		return "pdf"
	case "docx", "doc":
		return "docx"
	default:
		return ext
	}
}
