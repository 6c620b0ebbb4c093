// SPDX-License-Identifier: Apache-2.0

package checklist

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gemaraproj/checklist/internal/evidence"
)

// RawItem is a checklist item as it appears in configuration, before any
// validation.
type RawItem struct {
	ID           string          `yaml:"id" json:"id"`
	Description  string          `yaml:"description" json:"description"`
	Requirements RawRequirements `yaml:"requirements" json:"requirements"`
	Waivers      RawWaivers      `yaml:"waivers" json:"waivers"`
	InputFiles   []string        `yaml:"input_files" json:"input_files"`
	MaxDepth     *int            `yaml:"max_depth" json:"max_depth,omitempty"`
	Extractor    string          `yaml:"extractor" json:"extractor,omitempty"`
	Existence    string          `yaml:"existence" json:"existence,omitempty"`
}

type RawRequirements struct {
	Value        any      `yaml:"value" json:"value"`
	PatternItems []string `yaml:"pattern_items" json:"pattern_items"`
}

type RawWaivers struct {
	Value any `yaml:"value" json:"value"`
	// WaiveItems entries are either a pattern string or a map with
	// "pattern" and optional "reason".
	WaiveItems []any `yaml:"waive_items" json:"waive_items"`
}

// Classify maps requirement and waiver values to a mode and waiver strategy.
//
//	requirement  waiver   mode                 waiver
//	N/A          N/A      ModeExistence        none
//	N            N/A      ModePattern          none
//	N            0        ModePatternWaiver    global
//	N            M>0      ModePatternWaiver    selective
//	N/A          0        ModeExistenceWaiver  global
//	N/A          M>0      ModeExistenceWaiver  selective
func Classify(req, waiver Value) (Mode, WaiverMode) {
	wm := WaiverNone
	if waiver.Applicable {
		wm = WaiverSelective
		if waiver.N == 0 {
			wm = WaiverGlobal
		}
	}
	switch {
	case req.Applicable && wm == WaiverNone:
		return ModePattern, wm
	case req.Applicable:
		return ModePatternWaiver, wm
	case wm == WaiverNone:
		return ModeExistence, wm
	default:
		return ModeExistenceWaiver, wm
	}
}

// Normalize validates a raw item and returns its canonical form with the
// mode fixed. Every error wraps ErrInvalidConfig.
func Normalize(raw RawItem) (*Item, error) {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		return nil, fmt.Errorf("%w: item id is required", ErrInvalidConfig)
	}
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: item %q: %s", ErrInvalidConfig, id, fmt.Sprintf(format, args...))
	}

	req, err := ParseValue(raw.Requirements.Value)
	if err != nil {
		return nil, fail("requirements.value: %v", err)
	}
	waiver, err := ParseValue(raw.Waivers.Value)
	if err != nil {
		return nil, fail("waivers.value: %v", err)
	}

	item := &Item{
		ID:          id,
		Description: strings.TrimSpace(raw.Description),
		ReqValue:    req,
		WaiverValue: waiver,
		InputFiles:  append([]string(nil), raw.InputFiles...),
		MaxDepth:    evidence.DefaultMaxDepth,
		Extractor:   strings.ToLower(strings.TrimSpace(raw.Extractor)),
		Existence:   ExistencePresent,
	}
	if item.Description == "" {
		item.Description = id
	}
	if raw.MaxDepth != nil {
		if *raw.MaxDepth < 0 {
			return nil, fail("max_depth must not be negative")
		}
		item.MaxDepth = *raw.MaxDepth
	}
	if item.Extractor == "" {
		item.Extractor = "auto"
	}
	switch Existence(strings.ToLower(strings.TrimSpace(raw.Existence))) {
	case "", ExistencePresent:
	case ExistenceAbsent:
		item.Existence = ExistenceAbsent
	default:
		return nil, fail("existence must be %q or %q", ExistencePresent, ExistenceAbsent)
	}

	if req.Applicable {
		if req.N == 0 {
			return nil, fail("requirements.value must be at least 1 or N/A")
		}
		if len(raw.Requirements.PatternItems) != req.N {
			return nil, fail("requirements.value is %d but %d pattern_items are configured", req.N, len(raw.Requirements.PatternItems))
		}
		for i, p := range raw.Requirements.PatternItems {
			if strings.TrimSpace(p) == "" {
				return nil, fail("pattern_items[%d] is empty", i)
			}
		}
		item.PatternItems = append([]string(nil), raw.Requirements.PatternItems...)
	} else if len(raw.Requirements.PatternItems) > 0 {
		return nil, fail("pattern_items require a numeric requirements.value")
	}

	waivers, err := parseWaivers(raw.Waivers.WaiveItems)
	if err != nil {
		return nil, fail("%v", err)
	}
	if !waiver.Applicable && len(waivers) > 0 {
		return nil, fail("waive_items require a numeric waivers.value")
	}
	item.WaiveItems = waivers

	item.Mode, item.WaiverMode = Classify(req, waiver)
	if item.WaiverMode == WaiverSelective && len(waivers) == 0 {
		return nil, fail("waivers.value %d requires at least one waive item", waiver.N)
	}
	return item, nil
}

// ParseValue interprets a configured value as a non-negative count or the
// not-applicable sentinel (absent, null, empty, "N/A", "NA", "not applicable").
func ParseValue(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return NotApplicable, nil
	case string:
		s := strings.TrimSpace(v)
		switch strings.ToLower(s) {
		case "", "n/a", "na", "not applicable":
			return NotApplicable, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return Value{}, fmt.Errorf("%q is neither a number nor N/A", v)
		}
		return countOf(int64(n))
	case int:
		return countOf(int64(v))
	case int64:
		return countOf(v)
	case uint64:
		if v > math.MaxInt32 {
			return Value{}, fmt.Errorf("%d is too large", v)
		}
		return countOf(int64(v))
	case float64:
		if v != math.Trunc(v) {
			return Value{}, fmt.Errorf("%v is not a whole number", v)
		}
		return countOf(int64(v))
	default:
		return Value{}, fmt.Errorf("unsupported value %v (%T)", raw, raw)
	}
}

func countOf(n int64) (Value, error) {
	if n < 0 {
		return Value{}, fmt.Errorf("%d is negative", n)
	}
	if n > math.MaxInt32 {
		return Value{}, fmt.Errorf("%d is too large", n)
	}
	return Count(int(n)), nil
}

func parseWaivers(items []any) ([]Waiver, error) {
	var out []Waiver
	for i, raw := range items {
		var w Waiver
		switch v := raw.(type) {
		case string:
			w.Pattern = v
		case map[string]any:
			w.Pattern, _ = v["pattern"].(string)
			w.Reason, _ = v["reason"].(string)
		default:
			return nil, fmt.Errorf("waive_items[%d] must be a string or {pattern, reason}", i)
		}
		if strings.TrimSpace(w.Pattern) == "" {
			return nil, fmt.Errorf("waive_items[%d] has an empty pattern", i)
		}
		out = append(out, w)
	}
	return out, nil
}
