// SPDX-License-Identifier: Apache-2.0

// Package report renders filtered results as a text log and a condensed
// summary.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gemaraproj/checklist/internal/checklist"
	"github.com/gemaraproj/checklist/internal/output"
	"github.com/gemaraproj/checklist/internal/result"
)

// maxSearchedShown caps the searched files listed for a missing item.
const maxSearchedShown = 3

type section struct {
	key   output.Key
	title string
}

var sections = []section{
	{output.KeyFound, "Found"},
	{output.KeyMissing, "Missing"},
	{output.KeyExtra, "Extra"},
	{output.KeyWaived, "Waived"},
	{output.KeyUnusedWaivers, "Unused Waivers"},
}

// RenderLog renders a deterministic text report. Sections appear in a fixed
// order and only when the mode's contract includes them.
func RenderLog(rec output.Record, mode checklist.Mode, itemID, itemDesc string) (string, error) {
	keys, err := output.Keys(mode)
	if err != nil {
		return "", err
	}
	inMode := make(map[output.Key]bool, len(keys))
	for _, k := range keys {
		inMode[k] = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Item: %s\n", itemID)
	fmt.Fprintf(&b, "Description: %s\n", itemDesc)
	fmt.Fprintf(&b, "Mode: %s\n", mode)
	fmt.Fprintf(&b, "Status: %s\n", rec.Status())

	for _, s := range sections {
		if !inMode[s.key] {
			continue
		}
		items := rec.Items(s.key)
		fmt.Fprintf(&b, "\n%s (%d):\n", s.title, len(items))
		if len(items) == 0 {
			b.WriteString("  (none)\n")
			continue
		}
		for _, it := range items {
			b.WriteString("  - ")
			b.WriteString(itemLine(it, s.key))
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func itemLine(it result.Item, key output.Key) string {
	var parts []string
	head := it.Description
	if it.Tag != "" {
		head = it.Tag + " " + head
	}
	parts = append(parts, head)

	if it.Expected != "" && it.Value == "" {
		parts = append(parts, "expected: "+it.Expected)
	} else {
		parts = append(parts, "value: "+it.Value)
	}

	if key == output.KeyUnusedWaivers {
		parts = append(parts, "reason: "+it.Reason)
		return strings.Join(parts, " | ")
	}

	source := it.SourceFile
	if it.IsGhost() || source == "" {
		source = "(ghost)"
	}
	parts = append(parts, "source: "+source)

	line := "N/A"
	if it.LineNumber != nil {
		line = fmt.Sprint(*it.LineNumber)
	}
	parts = append(parts, "line: "+line)

	if it.MatchedContent != "" {
		parts = append(parts, "content: "+it.MatchedContent)
	}
	if len(it.Fields) > 0 {
		parts = append(parts, "fields: "+formatFields(it.Fields))
	}
	if it.WaiverPattern != "" {
		waiver := "waiver: " + it.WaiverPattern
		if it.Reason != "" {
			waiver += " (" + it.Reason + ")"
		}
		parts = append(parts, waiver)
	} else if it.Kind == result.KindComment && it.Reason != "" {
		parts = append(parts, "note: "+it.Reason)
	}
	if key == output.KeyMissing {
		parts = append(parts, "searched: "+formatSearched(it.SearchedFiles))
	}
	return strings.Join(parts, " | ")
}

func formatFields(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s=%v", k, fields[k])
	}
	return strings.Join(pairs, ", ")
}

func formatSearched(files []string) string {
	if len(files) == 0 {
		return "(none)"
	}
	if len(files) <= maxSearchedShown {
		return strings.Join(files, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(files[:maxSearchedShown], ", "), len(files)-maxSearchedShown)
}

// Entry is one violation in a summary.
type Entry struct {
	Kind       result.Kind `json:"kind" yaml:"kind"`
	Detail     string      `json:"detail" yaml:"detail"`
	SourceFile string      `json:"source_file" yaml:"source_file"`
	LineNumber *int        `json:"line_number" yaml:"line_number"`
}

// Summary is the condensed form of one item's outcome.
type Summary struct {
	Executed    bool          `json:"executed" yaml:"executed"`
	Status      result.Status `json:"status" yaml:"status"`
	Description string        `json:"description" yaml:"description"`
	Failures    []Entry       `json:"failures" yaml:"failures"`
	Warnings    []Entry       `json:"warnings" yaml:"warnings"`
}

// RenderSummary buckets each missing and extra item into warnings when its
// severity is informational and into failures otherwise.
func RenderSummary(rec output.Record, mode checklist.Mode, itemDesc string) (Summary, error) {
	if _, err := output.Keys(mode); err != nil {
		return Summary{}, err
	}
	s := Summary{
		Executed:    true,
		Status:      rec.Status(),
		Description: itemDesc,
		Failures:    []Entry{},
		Warnings:    []Entry{},
	}
	bucket := func(key output.Key, kind result.Kind) {
		for _, it := range rec.Items(key) {
			e := Entry{
				Kind:       kind,
				Detail:     it.Detail(),
				SourceFile: it.SourceFile,
				LineNumber: it.LineNumber,
			}
			if it.Severity == result.SeverityInfo {
				s.Warnings = append(s.Warnings, e)
			} else {
				s.Failures = append(s.Failures, e)
			}
		}
	}
	bucket(output.KeyMissing, result.KindMissing)
	bucket(output.KeyExtra, result.KindExtra)
	return s, nil
}
