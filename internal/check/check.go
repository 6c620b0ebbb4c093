// SPDX-License-Identifier: Apache-2.0

// Package check assembles found, missing and extra items from evidence
// records, either by pattern consumption or by an existence predicate.
package check

import (
	"errors"
	"fmt"

	"github.com/gemaraproj/checklist/internal/evidence"
	"github.com/gemaraproj/checklist/internal/match"
	"github.com/gemaraproj/checklist/internal/result"
)

// Assembler runs the pattern or existence check with injected collaborators.
type Assembler struct {
	match  match.Func
	exists match.ExistsFunc
}

// NewAssembler creates an Assembler. Either collaborator may be nil when the
// corresponding check is never run.
func NewAssembler(matchFn match.Func, existsFn match.ExistsFunc) *Assembler {
	return &Assembler{match: matchFn, exists: existsFn}
}

// Patterns matches each pattern, in order, to the first record not yet
// consumed by an earlier pattern. Matched records become found items,
// patterns with no match become ghost missing items, and records no pattern
// consumed become extra items.
func (a *Assembler) Patterns(patterns []string, records []evidence.Record, searched []string, description string) (*result.Result, error) {
	if a.match == nil {
		return nil, errors.New("pattern check requires a matcher")
	}

	consumed := make([]bool, len(records))
	res := &result.Result{}

	for _, pattern := range patterns {
		idx, err := a.firstUnconsumed(pattern, records, consumed)
		if err != nil {
			return nil, err
		}
		if idx < 0 {
			res.Missing = append(res.Missing, result.Ghost(pattern, description, searched))
			continue
		}
		consumed[idx] = true
		item := result.FromRecord(records[idx], result.KindFound, description)
		item.Expected = pattern
		res.Found = append(res.Found, item)
	}

	for i, rec := range records {
		if !consumed[i] {
			res.Extra = append(res.Extra, result.FromRecord(rec, result.KindExtra, description))
		}
	}

	res.Status = result.StatusFail
	if len(res.Missing) == 0 && len(res.Extra) == 0 {
		res.Status = result.StatusPass
	}
	return res, nil
}

func (a *Assembler) firstUnconsumed(pattern string, records []evidence.Record, consumed []bool) (int, error) {
	for i, rec := range records {
		if consumed[i] {
			continue
		}
		m, err := a.match(rec.Value, pattern, rec.Fields, match.CheckPolicy)
		if err != nil {
			return -1, fmt.Errorf("matching pattern %q: %w", pattern, err)
		}
		if m.IsMatch {
			return i, nil
		}
	}
	return -1, nil
}

// Existence asks the existence predicate about the full record set.
func (a *Assembler) Existence(records []evidence.Record, searched []string, description string) (*result.Result, error) {
	if a.exists == nil {
		return nil, errors.New("existence check requires a predicate")
	}
	ex, err := a.exists(records)
	if err != nil {
		return nil, fmt.Errorf("existence check: %w", err)
	}
	if !ex.IsMatch {
		return &result.Result{
			Status:  result.StatusFail,
			Missing: []result.Item{result.Ghost(result.ExistenceFailed, description, searched)},
		}, nil
	}
	res := &result.Result{Status: result.StatusPass}
	for _, rec := range ex.Evidence {
		res.Found = append(res.Found, result.FromRecord(rec, result.KindFound, description))
	}
	return res, nil
}
