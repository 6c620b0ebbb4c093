// SPDX-License-Identifier: Apache-2.0

// Package parsers holds the built-in extractors that turn file text into
// evidence records.
package parsers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gemaraproj/checklist/internal/evidence"
)

// Parser extracts evidence records from the text of one file.
type Parser interface {
	Name() string
	CanHandle(sourceFile, text string) bool
	Extract(text, sourceFile string) ([]evidence.Record, error)
}

// AutoDetect selects the first registered parser that can handle a file.
const AutoDetect = "auto"

// Dispatcher routes files to registered parsers.
type Dispatcher struct {
	parsers []Parser
}

// NewDispatcher creates a Dispatcher. Registration order is detection order.
func NewDispatcher(parsers ...Parser) *Dispatcher {
	return &Dispatcher{parsers: parsers}
}

// Default registers every built-in parser. Specific formats come before
// generic ones, and the line parser accepts anything.
func Default() *Dispatcher {
	return NewDispatcher(
		NewKubernetesParser(),
		NewMarkdownParser(),
		NewYAMLParser(),
		NewLineParser(),
	)
}

// RegisteredParsers returns the names of all registered parsers.
func (d *Dispatcher) RegisteredParsers() []string {
	names := make([]string, len(d.parsers))
	for i, p := range d.parsers {
		names[i] = p.Name()
	}
	return names
}

// Extractor returns an evidence.ExtractFunc. With name "auto" (or empty)
// each file is routed to the first parser that can handle it; otherwise
// every file goes to the named parser.
func (d *Dispatcher) Extractor(name string) (evidence.ExtractFunc, error) {
	if name == "" || name == AutoDetect {
		return func(text, sourceFile string) ([]evidence.Record, error) {
			p, err := d.selectParser(sourceFile, text)
			if err != nil {
				return nil, err
			}
			return p.Extract(text, sourceFile)
		}, nil
	}
	for _, p := range d.parsers {
		if p.Name() == name {
			return p.Extract, nil
		}
	}
	return nil, fmt.Errorf("unknown extractor %q (registered: %s)", name, strings.Join(d.RegisteredParsers(), ", "))
}

func (d *Dispatcher) selectParser(sourceFile, text string) (Parser, error) {
	for _, p := range d.parsers {
		if p.CanHandle(sourceFile, text) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unsupported evidence format: no parser found for %q", sourceFile)
}

func hasExt(sourceFile string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(sourceFile))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// splitLines splits text into lines without trailing carriage returns.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines
}
