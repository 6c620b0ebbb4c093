// SPDX-License-Identifier: Apache-2.0

// Package waiver reconciles check violations against configured waivers.
package waiver

import (
	"errors"
	"fmt"

	"github.com/gemaraproj/checklist/internal/checklist"
	"github.com/gemaraproj/checklist/internal/match"
	"github.com/gemaraproj/checklist/internal/result"
)

// Engine applies global or selective waivers to a check result.
type Engine struct {
	match match.Func
}

// NewEngine creates an Engine. The matcher is only needed for selective
// waivers.
func NewEngine(matchFn match.Func) *Engine {
	return &Engine{match: matchFn}
}

// Apply returns a new result with the item's waivers reconciled. The input
// result is never modified. Items whose mode has no waivers get an
// unchanged copy back.
func (e *Engine) Apply(res *result.Result, item *checklist.Item) (*result.Result, error) {
	out := res.Clone()
	switch item.WaiverMode {
	case checklist.WaiverNone:
		return out, nil
	case checklist.WaiverGlobal:
		return applyGlobal(out, item), nil
	case checklist.WaiverSelective:
		return e.applySelective(out, item)
	default:
		return nil, fmt.Errorf("unknown waiver mode %d", item.WaiverMode)
	}
}

// applyGlobal keeps every violation in place but downgrades it to
// informational. Waive items are recorded as notes only.
func applyGlobal(res *result.Result, item *checklist.Item) *result.Result {
	for i := range res.Missing {
		downgrade(&res.Missing[i])
	}
	for i := range res.Extra {
		downgrade(&res.Extra[i])
	}
	for _, w := range item.WaiveItems {
		res.Waived = append(res.Waived, result.Item{
			Description: item.Description,
			Kind:        result.KindComment,
			Value:       w.Pattern,
			Severity:    result.SeverityInfo,
			Tag:         result.TagWaiverNote,
			Reason:      w.Reason,
		})
	}
	res.UnusedWaivers = nil
	res.Status = result.StatusPass
	return res
}

func downgrade(it *result.Item) {
	it.Severity = result.SeverityInfo
	it.Tag = result.TagWaivedAsInfo
}

func (e *Engine) applySelective(res *result.Result, item *checklist.Item) (*result.Result, error) {
	if e.match == nil {
		return nil, errors.New("selective waivers require a matcher")
	}
	used := make([]bool, len(item.WaiveItems))

	reconcile := func(violations []result.Item) ([]result.Item, error) {
		var remaining []result.Item
		for _, v := range violations {
			idx, err := e.firstWaiver(v, item.WaiveItems)
			if err != nil {
				return nil, err
			}
			if idx < 0 {
				remaining = append(remaining, v)
				continue
			}
			used[idx] = true
			w := item.WaiveItems[idx]
			v.Severity = result.SeverityInfo
			v.Tag = result.TagWaiver
			v.WaiverPattern = w.Pattern
			v.Reason = w.Reason
			res.Waived = append(res.Waived, v)
		}
		return remaining, nil
	}

	var err error
	if res.Missing, err = reconcile(res.Missing); err != nil {
		return nil, err
	}
	if res.Extra, err = reconcile(res.Extra); err != nil {
		return nil, err
	}

	res.UnusedWaivers = nil
	for i, w := range item.WaiveItems {
		if used[i] {
			continue
		}
		res.UnusedWaivers = append(res.UnusedWaivers, result.Item{
			Description:   item.Description,
			Kind:          result.KindWaiver,
			Value:         w.Pattern,
			Severity:      result.SeverityInfo,
			WaiverPattern: w.Pattern,
			Reason:        result.ReasonNotMatched,
		})
	}

	res.Status = result.StatusFail
	if len(res.Missing) == 0 && len(res.Extra) == 0 {
		res.Status = result.StatusPass
	}
	return res, nil
}

// firstWaiver returns the index of the first waive item matching the
// violation's expected value, falling back to its value, or -1.
func (e *Engine) firstWaiver(v result.Item, waivers []checklist.Waiver) (int, error) {
	candidates := make([]string, 0, 2)
	if v.Expected != "" {
		candidates = append(candidates, v.Expected)
	}
	if v.Value != "" {
		candidates = append(candidates, v.Value)
	}
	for i, w := range waivers {
		for _, text := range candidates {
			m, err := e.match(text, w.Pattern, nil, match.WaiverPolicy)
			if err != nil {
				return -1, fmt.Errorf("matching waiver %q: %w", w.Pattern, err)
			}
			if m.IsMatch {
				return i, nil
			}
		}
	}
	return -1, nil
}
