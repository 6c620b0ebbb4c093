// SPDX-License-Identifier: Apache-2.0

// Package match provides the default text matcher and existence predicates
// injected into the check and waiver stages.
package match

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/gemaraproj/checklist/internal/evidence"
)

// DefaultMatch is how a literal pattern is compared with text.
type DefaultMatch string

const (
	Contains DefaultMatch = "contains"
	Exact    DefaultMatch = "exact"
)

// RegexMode is how a regular expression pattern is applied to text.
type RegexMode string

const (
	// Search finds the expression anywhere in the text.
	Search RegexMode = "search"
	// Anchored requires the expression to match at the start of the text.
	Anchored RegexMode = "match"
)

// Policy bundles the defaults a caller locks in for one matching pass.
type Policy struct {
	Default DefaultMatch
	Regex   RegexMode
}

var (
	// CheckPolicy is used when matching evidence against requirement patterns.
	CheckPolicy = Policy{Default: Contains, Regex: Search}
	// WaiverPolicy is used when matching violations against waive items.
	WaiverPolicy = Policy{Default: Exact, Regex: Anchored}
)

// Kinds reported in Result.Kind.
const (
	KindContains = "contains"
	KindExact    = "exact"
	KindRegex    = "regex"
	KindWildcard = "wildcard"
)

// RegexPrefix marks a pattern as a regular expression.
const RegexPrefix = "regex:"

// Result is the outcome of a single match attempt.
type Result struct {
	IsMatch bool
	Reason  string
	Kind    string
}

// Func matches text against a pattern. Fields carry extra record data and
// may be nil.
type Func func(text, pattern string, fields map[string]any, policy Policy) (Result, error)

// ExistsResult is the outcome of an existence predicate.
type ExistsResult struct {
	IsMatch  bool
	Evidence []evidence.Record
}

// ExistsFunc decides whether a record set satisfies an existence check.
type ExistsFunc func(records []evidence.Record) (ExistsResult, error)

// Matcher is the built-in Func implementation. Compiled expressions are
// cached, so a Matcher is safe for concurrent use.
type Matcher struct {
	mu    sync.Mutex
	cache map[string]*regexp.Regexp
}

// NewMatcher creates a Matcher.
func NewMatcher() *Matcher {
	return &Matcher{cache: make(map[string]*regexp.Regexp)}
}

// Match implements Func. Patterns prefixed with "regex:" are regular
// expressions, patterns containing '*' or '?' are wildcards matched against
// the whole text, and everything else is a literal compared under the
// policy's default.
func (m *Matcher) Match(text, pattern string, _ map[string]any, policy Policy) (Result, error) {
	switch {
	case strings.HasPrefix(pattern, RegexPrefix):
		expr := strings.TrimPrefix(pattern, RegexPrefix)
		if policy.Regex == Anchored {
			expr = `^(?:` + expr + `)`
		}
		re, err := m.compile(expr)
		if err != nil {
			return Result{}, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
		if re.MatchString(text) {
			return Result{IsMatch: true, Reason: fmt.Sprintf("regex %s matched", policy.Regex), Kind: KindRegex}, nil
		}
		return Result{Reason: "regex did not match", Kind: KindRegex}, nil

	case strings.ContainsAny(pattern, "*?"):
		re, err := m.compile(wildcardToRegex(pattern))
		if err != nil {
			return Result{}, fmt.Errorf("invalid wildcard pattern %q: %w", pattern, err)
		}
		if re.MatchString(text) {
			return Result{IsMatch: true, Reason: "wildcard matched", Kind: KindWildcard}, nil
		}
		return Result{Reason: "wildcard did not match", Kind: KindWildcard}, nil

	case policy.Default == Exact:
		if text == pattern {
			return Result{IsMatch: true, Reason: "exact match", Kind: KindExact}, nil
		}
		return Result{Reason: "text differs from pattern", Kind: KindExact}, nil

	default:
		if strings.Contains(text, pattern) {
			return Result{IsMatch: true, Reason: "substring found", Kind: KindContains}, nil
		}
		return Result{Reason: "substring not found", Kind: KindContains}, nil
	}
}

func (m *Matcher) compile(expr string) (*regexp.Regexp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if re, ok := m.cache[expr]; ok {
		return re, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	m.cache[expr] = re
	return re, nil
}

func wildcardToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return b.String()
}

// Present matches when at least one record exists; every record is evidence.
func Present(records []evidence.Record) (ExistsResult, error) {
	if len(records) == 0 {
		return ExistsResult{}, nil
	}
	return ExistsResult{IsMatch: true, Evidence: records}, nil
}

// Absent matches when no record exists.
func Absent(records []evidence.Record) (ExistsResult, error) {
	return ExistsResult{IsMatch: len(records) == 0}, nil
}
