// SPDX-License-Identifier: Apache-2.0

// Package evidence defines evidence records and the orchestrator that
// parses input files into them.
package evidence

import (
	"fmt"
	"strings"
)

// FieldIndirectReference is the Fields key naming one or more files that
// should be parsed after the file the record came from.
const FieldIndirectReference = "indirect_reference"

// Record is a single unit of evidence extracted from a source artifact.
type Record struct {
	Value          string `json:"value" yaml:"value"`
	SourceFile     string `json:"source_file" yaml:"source_file"`
	LineNumber     *int   `json:"line_number" yaml:"line_number"`
	MatchedContent string `json:"matched_content" yaml:"matched_content"`
	// Fields holds any extra data the extractor wants to carry along.
	Fields map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Line returns a pointer suitable for Record.LineNumber.
func Line(n int) *int {
	return &n
}

// IndirectReferences returns the file paths named by the record's
// indirect_reference field. A single string may hold several paths
// separated by commas.
func (r Record) IndirectReferences() []string {
	raw, ok := r.Fields[FieldIndirectReference]
	if !ok || raw == nil {
		return nil
	}
	var refs []string
	add := func(s string) {
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				refs = append(refs, p)
			}
		}
	}
	switch v := raw.(type) {
	case string:
		add(v)
	case []string:
		for _, s := range v {
			add(s)
		}
	case []any:
		for _, s := range v {
			add(fmt.Sprint(s))
		}
	default:
		add(fmt.Sprint(v))
	}
	return refs
}

// CloneFields returns a shallow copy of the record's fields.
func (r Record) CloneFields() map[string]any {
	if len(r.Fields) == 0 {
		return nil
	}
	out := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		out[k] = v
	}
	return out
}

// ReadFunc loads a file and returns its text and canonical absolute path.
type ReadFunc func(path string) (text string, canonical string, err error)

// ExtractFunc turns the text of one file into ordered evidence records.
type ExtractFunc func(text, sourceFile string) ([]Record, error)
