// SPDX-License-Identifier: Apache-2.0

package parsers

import (
	"regexp"
	"strings"

	"github.com/gemaraproj/checklist/internal/evidence"
)

// localLink matches Markdown links to other local Markdown files.
var localLink = regexp.MustCompile(`\[[^\]]*\]\(([^)\s#]+\.md)(?:#[^)]*)?\)`)

// MarkdownParser turns each heading of a Markdown document into a record.
// Links to local .md files become indirect references on the enclosing
// section's record.
type MarkdownParser struct{}

// NewMarkdownParser creates a new MarkdownParser.
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{}
}

func (p *MarkdownParser) Name() string {
	return "markdown"
}

func (p *MarkdownParser) CanHandle(sourceFile, _ string) bool {
	return hasExt(sourceFile, ".md", ".markdown")
}

func (p *MarkdownParser) Extract(text, sourceFile string) ([]evidence.Record, error) {
	var records []evidence.Record
	current := -1
	inFence := false

	for i, line := range splitLines(text) {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if level, heading, ok := atxHeading(line); ok {
			if heading == "" {
				continue
			}
			records = append(records, evidence.Record{
				Value:          heading,
				SourceFile:     sourceFile,
				LineNumber:     evidence.Line(i + 1),
				MatchedContent: line,
				Fields:         map[string]any{"level": level},
			})
			current = len(records) - 1
			continue
		}

		for _, m := range localLink.FindAllStringSubmatch(line, -1) {
			target := m[1]
			if strings.Contains(target, "://") {
				continue
			}
			if current < 0 {
				records = append(records, evidence.Record{
					Value:          strings.TrimSpace(line),
					SourceFile:     sourceFile,
					LineNumber:     evidence.Line(i + 1),
					MatchedContent: line,
					Fields:         map[string]any{},
				})
				current = len(records) - 1
			}
			refs, _ := records[current].Fields[evidence.FieldIndirectReference].([]string)
			records[current].Fields[evidence.FieldIndirectReference] = append(refs, target)
		}
	}
	return records, nil
}

// atxHeading reports whether line is an ATX heading: one to six '#'
// followed by a space or the end of the line.
func atxHeading(line string) (int, string, bool) {
	rest := strings.TrimLeft(line, "#")
	level := len(line) - len(rest)
	if level == 0 || level > 6 {
		return 0, "", false
	}
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return 0, "", false
	}
	return level, strings.TrimSpace(rest), true
}
