// SPDX-License-Identifier: Apache-2.0

package parsers

import (
	"fmt"
	"strings"

	"github.com/gemaraproj/checklist/internal/evidence"
	"github.com/goccy/go-yaml"
)

// referenceKeys are top-level keys whose values name files to parse next.
var referenceKeys = map[string]bool{"include": true, "includes": true}

// YAMLParser parses YAML and JSON configuration files into records, one per
// top-level key, in document order.
type YAMLParser struct{}

func NewYAMLParser() *YAMLParser {
	return &YAMLParser{}
}

func (p *YAMLParser) Name() string {
	return "yaml"
}

func (p *YAMLParser) CanHandle(sourceFile, text string) bool {
	if hasExt(sourceFile, ".yaml", ".yml", ".json") {
		return true
	}
	return strings.HasPrefix(strings.TrimSpace(text), "{")
}

func (p *YAMLParser) Extract(text, sourceFile string) ([]evidence.Record, error) {
	var doc yaml.MapSlice
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML/JSON: %w", err)
	}

	lines := topLevelKeyLines(text)
	records := make([]evidence.Record, 0, len(doc))
	for _, entry := range doc {
		key := fmt.Sprint(entry.Key)
		rendered := renderValue(entry.Value)
		rec := evidence.Record{
			Value:          fmt.Sprintf("%s: %s", key, rendered),
			SourceFile:     sourceFile,
			MatchedContent: rendered,
			Fields:         map[string]any{"key": key},
		}
		if n, ok := lines[key]; ok {
			rec.LineNumber = evidence.Line(n)
		}
		if referenceKeys[strings.ToLower(key)] {
			rec.Fields[evidence.FieldIndirectReference] = entry.Value
		}
		records = append(records, rec)
	}
	return records, nil
}

// renderValue flattens a decoded YAML value onto a single line.
func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(val)
	}
	rendered, err := yaml.MarshalWithOptions(v, yaml.Flow(true))
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return normalizeValue(string(rendered))
}

func normalizeValue(text string) string {
	lines := strings.Split(text, "\n")
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		trimmed := strings.TrimSpace(l)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}

// topLevelKeyLines maps each unindented "key:" to its first 1-based line.
func topLevelKeyLines(text string) map[string]int {
	out := make(map[string]int)
	for i, line := range splitLines(text) {
		if line == "" || line[0] == ' ' || line[0] == '\t' || line[0] == '#' || line[0] == '-' {
			continue
		}
		key, _, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.Trim(strings.TrimSpace(key), `"'`)
		if _, seen := out[key]; !seen {
			out[key] = i + 1
		}
	}
	return out
}
