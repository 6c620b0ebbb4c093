// SPDX-License-Identifier: Apache-2.0

// Package fsread provides reader collaborators for the evidence orchestrator.
package fsread

import (
	"fmt"
	"os"
	"path/filepath"
)

// ReadFile reads a file from disk and returns its text with the absolute,
// symlink-resolved path.
func ReadFile(path string) (string, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", fmt.Errorf("resolving %q: %w", path, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", "", err
	}
	return string(data), abs, nil
}

// Memory serves file contents from a map, keyed by cleaned path. It lets
// callers evaluate items without touching the filesystem.
type Memory map[string]string

// Read implements evidence.ReadFunc.
func (m Memory) Read(path string) (string, string, error) {
	clean := filepath.Clean(path)
	if text, ok := m[clean]; ok {
		return text, clean, nil
	}
	if text, ok := m[path]; ok {
		return text, clean, nil
	}
	return "", "", fmt.Errorf("%w: %s", os.ErrNotExist, path)
}

// NewMemory copies files into a Memory keyed by cleaned path.
func NewMemory(files map[string]string) Memory {
	m := make(Memory, len(files))
	for p, text := range files {
		m[filepath.Clean(p)] = text
	}
	return m
}
