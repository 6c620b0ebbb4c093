// SPDX-License-Identifier: Apache-2.0

// Package checklist loads checklist item configuration and classifies each
// item into one of four fixed evaluation modes.
package checklist

import (
	"errors"
	"strconv"
)

// ErrInvalidConfig is wrapped by every configuration and normalization error.
var ErrInvalidConfig = errors.New("invalid checklist configuration")

// Mode selects the check and output contract for an item. It is derived
// once by Normalize and never re-derived downstream.
type Mode int

const (
	ModeUnknown Mode = iota
	// ModeExistence checks that evidence exists. No waivers.
	ModeExistence
	// ModePattern matches evidence against pattern_items. No waivers.
	ModePattern
	// ModePatternWaiver matches patterns and reconciles waivers.
	ModePatternWaiver
	// ModeExistenceWaiver checks existence and reconciles waivers.
	ModeExistenceWaiver
)

func (m Mode) String() string {
	switch m {
	case ModeExistence, ModePattern, ModePatternWaiver, ModeExistenceWaiver:
		return "type" + strconv.Itoa(int(m))
	default:
		return "unknown"
	}
}

// Valid reports whether m is one of the four evaluation modes.
func (m Mode) Valid() bool {
	return m >= ModeExistence && m <= ModeExistenceWaiver
}

// UsesPatterns reports whether the mode runs the pattern check.
func (m Mode) UsesPatterns() bool {
	return m == ModePattern || m == ModePatternWaiver
}

// UsesWaivers reports whether the mode reconciles waivers.
func (m Mode) UsesWaivers() bool {
	return m == ModePatternWaiver || m == ModeExistenceWaiver
}

// WaiverMode is how violations are reconciled against waivers.
type WaiverMode int

const (
	WaiverNone WaiverMode = iota
	// WaiverGlobal downgrades every violation to informational.
	WaiverGlobal
	// WaiverSelective excuses only violations matching a waive item.
	WaiverSelective
)

func (w WaiverMode) String() string {
	switch w {
	case WaiverGlobal:
		return "global"
	case WaiverSelective:
		return "selective"
	default:
		return "none"
	}
}

// Existence picks the built-in existence predicate for existence modes.
type Existence string

const (
	ExistencePresent Existence = "present"
	ExistenceAbsent  Existence = "absent"
)

// Value is a numeric configuration value or the "not applicable" sentinel.
type Value struct {
	N          int
	Applicable bool
}

// NotApplicable is the sentinel value.
var NotApplicable = Value{}

// Count returns an applicable value of n.
func Count(n int) Value {
	return Value{N: n, Applicable: true}
}

func (v Value) String() string {
	if !v.Applicable {
		return "N/A"
	}
	return strconv.Itoa(v.N)
}

// Waiver is one configured waive item.
type Waiver struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Reason  string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Item is the canonical, validated form of one checklist item.
type Item struct {
	ID           string
	Description  string
	ReqValue     Value
	PatternItems []string
	WaiverValue  Value
	WaiveItems   []Waiver
	InputFiles   []string
	MaxDepth     int
	Extractor    string
	Existence    Existence

	Mode       Mode
	WaiverMode WaiverMode
}

// MarshalText renders the mode as "type1".."type4".
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
