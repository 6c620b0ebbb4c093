// SPDX-License-Identifier: Apache-2.0

// Package result holds the item and result records passed between the check,
// waiver, output and report stages.
package result

import (
	"github.com/gemaraproj/checklist/internal/evidence"
)

type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// Kind says which list an item was produced for.
type Kind string

const (
	KindFound   Kind = "FOUND"
	KindMissing Kind = "MISSING"
	KindExtra   Kind = "EXTRA"
	KindWaiver  Kind = "WAIVER"
	KindComment Kind = "COMMENT"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityInfo  Severity = "info"
)

// Tags attached to items by the waiver engine.
const (
	TagWaivedAsInfo = "[WAIVED_AS_INFO]"
	TagWaiver       = "[WAIVER]"
	TagWaiverNote   = "[WAIVER_NOTE]"
)

// ReasonNotMatched is the reason recorded for waiver patterns that excused
// no violation.
const ReasonNotMatched = "Not matched"

// ExistenceFailed is the expected value of the ghost item produced when an
// existence check finds nothing.
const ExistenceFailed = "Existence check failed"

// Item is an evidence record promoted into a result list, or a synthetic
// entry describing missing evidence or a waiver.
type Item struct {
	Description    string         `json:"description" yaml:"description"`
	Kind           Kind           `json:"kind" yaml:"kind"`
	Value          string         `json:"value,omitempty" yaml:"value,omitempty"`
	Expected       string         `json:"expected,omitempty" yaml:"expected,omitempty"`
	SourceFile     string         `json:"source_file" yaml:"source_file"`
	LineNumber     *int           `json:"line_number" yaml:"line_number"`
	MatchedContent string         `json:"matched_content" yaml:"matched_content"`
	Fields         map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
	SearchedFiles  []string       `json:"searched_files,omitempty" yaml:"searched_files,omitempty"`
	Severity       Severity       `json:"severity" yaml:"severity"`
	Tag            string         `json:"tag,omitempty" yaml:"tag,omitempty"`
	WaiverPattern  string         `json:"waiver_pattern,omitempty" yaml:"waiver_pattern,omitempty"`
	Reason         string         `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// FromRecord copies an evidence record into a new item carrying the given
// description. The record itself is left untouched.
func FromRecord(rec evidence.Record, kind Kind, description string) Item {
	var line *int
	if rec.LineNumber != nil {
		line = evidence.Line(*rec.LineNumber)
	}
	return Item{
		Description:    description,
		Kind:           kind,
		Value:          rec.Value,
		SourceFile:     rec.SourceFile,
		LineNumber:     line,
		MatchedContent: rec.MatchedContent,
		Fields:         rec.CloneFields(),
		Severity:       SeverityError,
	}
}

// Ghost builds a placeholder for evidence that was expected but not found.
func Ghost(expected, description string, searched []string) Item {
	return Item{
		Description:   description,
		Kind:          KindMissing,
		Expected:      expected,
		SearchedFiles: append([]string(nil), searched...),
		Severity:      SeverityError,
	}
}

// IsGhost reports whether the item has no real source location.
func (i Item) IsGhost() bool {
	return i.SourceFile == "" && i.LineNumber == nil
}

// Detail is the expected value when set, otherwise the item's value.
func (i Item) Detail() string {
	if i.Expected != "" {
		return i.Expected
	}
	return i.Value
}

// Clone returns a deep enough copy that mutating the clone's slices, maps
// or line number does not affect the original.
func (i Item) Clone() Item {
	out := i
	if i.LineNumber != nil {
		out.LineNumber = evidence.Line(*i.LineNumber)
	}
	if i.Fields != nil {
		out.Fields = make(map[string]any, len(i.Fields))
		for k, v := range i.Fields {
			out.Fields[k] = v
		}
	}
	out.SearchedFiles = append([]string(nil), i.SearchedFiles...)
	if len(i.SearchedFiles) == 0 {
		out.SearchedFiles = nil
	}
	return out
}

// Result is the superset record produced by the check and waiver stages.
type Result struct {
	Status        Status
	Found         []Item
	Missing       []Item
	Extra         []Item
	Waived        []Item
	UnusedWaivers []Item
}

// Clone copies every list so the returned result can be modified freely.
func (r *Result) Clone() *Result {
	if r == nil {
		return &Result{}
	}
	return &Result{
		Status:        r.Status,
		Found:         cloneItems(r.Found),
		Missing:       cloneItems(r.Missing),
		Extra:         cloneItems(r.Extra),
		Waived:        cloneItems(r.Waived),
		UnusedWaivers: cloneItems(r.UnusedWaivers),
	}
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
