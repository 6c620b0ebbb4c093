// SPDX-License-Identifier: Apache-2.0

// Package output filters an internal result down to the exact key set of an
// evaluation mode.
package output

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gemaraproj/checklist/internal/checklist"
	"github.com/gemaraproj/checklist/internal/result"
)

// ErrUnknownMode is returned for a mode outside the four evaluation modes.
var ErrUnknownMode = errors.New("unknown evaluation mode")

type Key string

const (
	KeyStatus        Key = "status"
	KeyFound         Key = "found"
	KeyMissing       Key = "missing"
	KeyExtra         Key = "extra"
	KeyWaived        Key = "waived"
	KeyUnusedWaivers Key = "unused_waivers"
)

var contracts = map[checklist.Mode][]Key{
	checklist.ModeExistence:       {KeyStatus, KeyFound, KeyMissing},
	checklist.ModePattern:         {KeyStatus, KeyFound, KeyMissing, KeyExtra},
	checklist.ModePatternWaiver:   {KeyStatus, KeyFound, KeyMissing, KeyExtra, KeyWaived, KeyUnusedWaivers},
	checklist.ModeExistenceWaiver: {KeyStatus, KeyFound, KeyMissing, KeyWaived, KeyUnusedWaivers},
}

// Keys returns the exact key set for a mode, in report order.
func Keys(mode checklist.Mode) ([]Key, error) {
	keys, ok := contracts[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}
	return append([]Key(nil), keys...), nil
}

// Record is a filtered result. The status key holds a result.Status and
// every other key holds a []result.Item.
type Record map[Key]any

// Status returns the record's status, FAIL when absent.
func (r Record) Status() result.Status {
	if s, ok := r[KeyStatus].(result.Status); ok && s != "" {
		return s
	}
	return result.StatusFail
}

// Items returns the list stored under key, or nil.
func (r Record) Items(key Key) []result.Item {
	items, _ := r[key].([]result.Item)
	return items
}

// Has reports whether key is part of the record.
func (r Record) Has(key Key) bool {
	_, ok := r[key]
	return ok
}

// Filter returns a record holding exactly the keys of mode. A missing
// status becomes FAIL and missing lists become empty lists. A nil result is
// treated as having no keys at all.
func Filter(res *result.Result, mode checklist.Mode) (Record, error) {
	keys, err := Keys(mode)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &result.Result{}
	}
	rec := make(Record, len(keys))
	for _, key := range keys {
		switch key {
		case KeyStatus:
			status := res.Status
			if status == "" {
				status = result.StatusFail
			}
			rec[key] = status
		case KeyFound:
			rec[key] = listOrEmpty(res.Found)
		case KeyMissing:
			rec[key] = listOrEmpty(res.Missing)
		case KeyExtra:
			rec[key] = listOrEmpty(res.Extra)
		case KeyWaived:
			rec[key] = listOrEmpty(res.Waived)
		case KeyUnusedWaivers:
			rec[key] = listOrEmpty(res.UnusedWaivers)
		}
	}
	return rec, nil
}

func listOrEmpty(items []result.Item) []result.Item {
	out := make([]result.Item, 0, len(items))
	for _, it := range items {
		out = append(out, it.Clone())
	}
	return out
}

// MissingKeys lists contract keys for mode that rec lacks.
func MissingKeys(rec Record, mode checklist.Mode) ([]Key, error) {
	keys, err := Keys(mode)
	if err != nil {
		return nil, err
	}
	var missing []Key
	for _, k := range keys {
		if !rec.Has(k) {
			missing = append(missing, k)
		}
	}
	return missing, nil
}

// ExtraKeys lists keys in rec that are not part of mode's contract, in a
// stable order.
func ExtraKeys(rec Record, mode checklist.Mode) ([]Key, error) {
	keys, err := Keys(mode)
	if err != nil {
		return nil, err
	}
	allowed := make(map[Key]bool, len(keys))
	for _, k := range keys {
		allowed[k] = true
	}
	var extra []Key
	for _, k := range allKeys {
		if rec.Has(k) && !allowed[k] {
			extra = append(extra, k)
		}
	}
	var unknown []Key
	for k := range rec {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	slices.Sort(unknown)
	return append(extra, unknown...), nil
}

var allKeys = []Key{KeyStatus, KeyFound, KeyMissing, KeyExtra, KeyWaived, KeyUnusedWaivers}

var known = map[Key]bool{
	KeyStatus: true, KeyFound: true, KeyMissing: true,
	KeyExtra: true, KeyWaived: true, KeyUnusedWaivers: true,
}
