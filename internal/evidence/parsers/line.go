// SPDX-License-Identifier: Apache-2.0

package parsers

import (
	"regexp"
	"strings"

	"github.com/gemaraproj/checklist/internal/evidence"
)

// referenceLine recognises lines that pull in another file, as written in
// tool logs and scripts: "include x", "source x.tcl", "-f x".
var referenceLine = regexp.MustCompile(`^\s*(?:include|source|-f)\s+["']?([^\s"';]+)["']?\s*;?\s*$`)

// LineParser turns every non-blank line of a text file into a record.
type LineParser struct{}

// NewLineParser creates a new LineParser.
func NewLineParser() *LineParser {
	return &LineParser{}
}

func (p *LineParser) Name() string {
	return "line"
}

// CanHandle accepts any file; the line parser is the fallback.
func (p *LineParser) CanHandle(string, string) bool {
	return true
}

func (p *LineParser) Extract(text, sourceFile string) ([]evidence.Record, error) {
	var records []evidence.Record
	for i, line := range splitLines(text) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		rec := evidence.Record{
			Value:          trimmed,
			SourceFile:     sourceFile,
			LineNumber:     evidence.Line(i + 1),
			MatchedContent: line,
		}
		if category := classify(trimmed); category != "" {
			rec.Fields = map[string]any{FieldCategory: category}
		}
		if m := referenceLine.FindStringSubmatch(line); m != nil {
			if rec.Fields == nil {
				rec.Fields = map[string]any{}
			}
			rec.Fields[evidence.FieldIndirectReference] = m[1]
		}
		records = append(records, rec)
	}
	return records, nil
}
