// SPDX-License-Identifier: Apache-2.0

package evidence

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
)

// DefaultMaxDepth bounds indirect-reference resolution when the caller does
// not configure a depth.
const DefaultMaxDepth = 3

// Orchestrator parses a set of input files with an injected reader and
// extractor, following indirect references between files.
type Orchestrator struct {
	read     ReadFunc
	extract  ExtractFunc
	maxDepth int
}

// NewOrchestrator creates an Orchestrator. A negative maxDepth is treated as
// zero, which parses the input files only.
func NewOrchestrator(read ReadFunc, extract ExtractFunc, maxDepth int) *Orchestrator {
	if maxDepth < 0 {
		maxDepth = 0
	}
	return &Orchestrator{read: read, extract: extract, maxDepth: maxDepth}
}

// ParseResult is the output of an orchestrator run.
type ParseResult struct {
	// Records are in discovery order.
	Records []Record
	// SearchedFiles is the sorted, deduplicated list of canonical paths read.
	SearchedFiles []string
	// VisitOrder lists canonical paths in the order they were read.
	VisitOrder []string
}

type pending struct {
	path  string
	depth int
}

// Run parses every input file in caller order. Each file's records are
// appended before any file it references; referenced files are visited in
// reference order. A canonical path is read at most once per run, and files
// deeper than the configured depth are silently skipped.
func (o *Orchestrator) Run(inputFiles []string) (*ParseResult, error) {
	if o.read == nil || o.extract == nil {
		return nil, errors.New("orchestrator requires a reader and an extractor")
	}

	visited := make(map[string]bool)
	result := &ParseResult{}

	for _, root := range inputFiles {
		stack := []pending{{path: root, depth: 0}}
		for len(stack) > 0 {
			next := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			requested := filepath.Clean(next.path)
			if visited[requested] {
				continue
			}
			text, canonical, err := o.read(next.path)
			if err != nil {
				return nil, fmt.Errorf("reading %q: %w", next.path, err)
			}
			if canonical == "" {
				canonical = requested
			}
			if visited[canonical] {
				visited[requested] = true
				continue
			}
			visited[requested] = true
			visited[canonical] = true
			result.VisitOrder = append(result.VisitOrder, canonical)

			records, err := o.extract(text, canonical)
			if err != nil {
				return nil, fmt.Errorf("extracting %q: %w", canonical, err)
			}
			result.Records = append(result.Records, records...)

			if next.depth >= o.maxDepth {
				continue
			}
			var refs []string
			for _, rec := range records {
				for _, ref := range rec.IndirectReferences() {
					resolved := resolveReference(canonical, ref)
					if !visited[resolved] {
						refs = append(refs, resolved)
					}
				}
			}
			// Reverse push so the first reference is popped first.
			for i := len(refs) - 1; i >= 0; i-- {
				stack = append(stack, pending{path: refs[i], depth: next.depth + 1})
			}
		}
	}

	result.SearchedFiles = append([]string(nil), result.VisitOrder...)
	sort.Strings(result.SearchedFiles)
	return result, nil
}

// resolveReference interprets a relative reference against the directory of
// the file that named it.
func resolveReference(from, ref string) string {
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref)
	}
	return filepath.Join(filepath.Dir(from), ref)
}

// SortByLine returns a copy of records ordered by line number within each
// source file. Files are ranked by visitOrder; files missing from it follow
// in the order they first appear. Records without a line number sort last
// within their file.
func SortByLine(records []Record, visitOrder []string) []Record {
	fileRank := make(map[string]int, len(visitOrder))
	for _, f := range visitOrder {
		if _, ok := fileRank[f]; !ok {
			fileRank[f] = len(fileRank)
		}
	}
	for _, r := range records {
		if _, ok := fileRank[r.SourceFile]; !ok {
			fileRank[r.SourceFile] = len(fileRank)
		}
	}
	sorted := append([]Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if ra, rb := fileRank[a.SourceFile], fileRank[b.SourceFile]; ra != rb {
			return ra < rb
		}
		switch {
		case a.LineNumber == nil:
			return false
		case b.LineNumber == nil:
			return true
		default:
			return *a.LineNumber < *b.LineNumber
		}
	})
	return sorted
}
