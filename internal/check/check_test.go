// SPDX-License-Identifier: Apache-2.0

package check_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemaraproj/checklist/internal/check"
	"github.com/gemaraproj/checklist/internal/evidence"
	"github.com/gemaraproj/checklist/internal/match"
	"github.com/gemaraproj/checklist/internal/result"
)

// containsMatcher records every policy it was called with.
type containsMatcher struct {
	policies []match.Policy
	calls    int
}

func (m *containsMatcher) match(text, pattern string, _ map[string]any, policy match.Policy) (match.Result, error) {
	m.calls++
	m.policies = append(m.policies, policy)
	return match.Result{IsMatch: strings.Contains(text, pattern)}, nil
}

func recs(values ...string) []evidence.Record {
	out := make([]evidence.Record, len(values))
	for i, v := range values {
		out[i] = evidence.Record{Value: v, SourceFile: "run.log", LineNumber: evidence.Line(i + 1), MatchedContent: v}
	}
	return out
}

func itemValues(items []result.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Detail()
	}
	return out
}

// ---------------------------------------------------------------------------
// Pattern check
// ---------------------------------------------------------------------------

func TestPatterns_AllFound(t *testing.T) {
	m := &containsMatcher{}
	a := check.NewAssembler(m.match, nil)

	res, err := a.Patterns([]string{"alpha", "beta"}, recs("alpha", "beta"), []string{"run.log"}, "desc")
	require.NoError(t, err)

	assert.Equal(t, result.StatusPass, res.Status)
	assert.Equal(t, []string{"alpha", "beta"}, itemValues(res.Found))
	assert.Empty(t, res.Missing)
	assert.Empty(t, res.Extra)
	for _, it := range res.Found {
		assert.Equal(t, "desc", it.Description)
		assert.Equal(t, result.KindFound, it.Kind)
	}
	for _, p := range m.policies {
		assert.Equal(t, match.CheckPolicy, p)
	}
}

func TestPatterns_MissingBecomesGhost(t *testing.T) {
	m := &containsMatcher{}
	a := check.NewAssembler(m.match, nil)

	res, err := a.Patterns([]string{"alpha", "gamma"}, recs("alpha"), []string{"a.log", "b.log"}, "desc")
	require.NoError(t, err)

	assert.Equal(t, result.StatusFail, res.Status)
	assert.Equal(t, []string{"alpha"}, itemValues(res.Found))
	require.Len(t, res.Missing, 1)

	ghost := res.Missing[0]
	assert.Equal(t, "gamma", ghost.Expected)
	assert.Empty(t, ghost.SourceFile)
	assert.Empty(t, ghost.MatchedContent)
	assert.Nil(t, ghost.LineNumber)
	assert.True(t, ghost.IsGhost())
	assert.Equal(t, []string{"a.log", "b.log"}, ghost.SearchedFiles)
	assert.Equal(t, result.KindMissing, ghost.Kind)
}

func TestPatterns_UnconsumedBecomeExtra(t *testing.T) {
	m := &containsMatcher{}
	a := check.NewAssembler(m.match, nil)

	res, err := a.Patterns([]string{"beta"}, recs("alpha", "beta", "gamma"), nil, "desc")
	require.NoError(t, err)

	assert.Equal(t, result.StatusFail, res.Status)
	assert.Equal(t, []string{"alpha", "gamma"}, itemValues(res.Extra))
	assert.Equal(t, result.KindExtra, res.Extra[0].Kind)
}

func TestPatterns_ConsumeOnce(t *testing.T) {
	m := &containsMatcher{}
	a := check.NewAssembler(m.match, nil)

	// Both patterns match both records; each record may be consumed once.
	res, err := a.Patterns([]string{"cell", "cell", "cell"}, recs("cell_a", "cell_b"), nil, "desc")
	require.NoError(t, err)

	require.Len(t, res.Found, 2)
	assert.Equal(t, "cell_a", res.Found[0].Value)
	assert.Equal(t, "cell_b", res.Found[1].Value)
	assert.Equal(t, 2, *res.Found[1].LineNumber)
	assert.Len(t, res.Missing, 1)
	assert.Empty(t, res.Extra)
}

func TestPatterns_FirstMatchInDiscoveryOrder(t *testing.T) {
	m := &containsMatcher{}
	a := check.NewAssembler(m.match, nil)

	res, err := a.Patterns([]string{"v1"}, recs("x", "v1.0", "v1.1"), nil, "desc")
	require.NoError(t, err)
	require.Len(t, res.Found, 1)
	assert.Equal(t, "v1.0", res.Found[0].Value)
	assert.Equal(t, "v1", res.Found[0].Expected)
	assert.Equal(t, []string{"x", "v1.1"}, itemValues(res.Extra))
}

func TestPatterns_DoesNotMutateRecords(t *testing.T) {
	m := &containsMatcher{}
	a := check.NewAssembler(m.match, nil)
	records := recs("alpha")
	records[0].Fields = map[string]any{"k": "v"}

	res, err := a.Patterns([]string{"alpha"}, records, nil, "desc")
	require.NoError(t, err)
	res.Found[0].Fields["k"] = "changed"
	*res.Found[0].LineNumber = 99

	assert.Equal(t, "v", records[0].Fields["k"])
	assert.Equal(t, 1, *records[0].LineNumber)
}

func TestPatterns_MatcherErrorPropagates(t *testing.T) {
	boom := errors.New("bad pattern")
	a := check.NewAssembler(func(string, string, map[string]any, match.Policy) (match.Result, error) {
		return match.Result{}, boom
	}, nil)
	_, err := a.Patterns([]string{"x"}, recs("x"), nil, "desc")
	require.ErrorIs(t, err, boom)
}

func TestPatterns_NoRecords(t *testing.T) {
	m := &containsMatcher{}
	a := check.NewAssembler(m.match, nil)
	res, err := a.Patterns([]string{"a", "b"}, nil, nil, "desc")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, itemValues(res.Missing))
	assert.Zero(t, m.calls)
}

func TestPatterns_RequiresMatcher(t *testing.T) {
	_, err := check.NewAssembler(nil, nil).Patterns([]string{"a"}, nil, nil, "d")
	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// Existence check
// ---------------------------------------------------------------------------

func TestExistence_Found(t *testing.T) {
	a := check.NewAssembler(nil, match.Present)
	res, err := a.Existence(recs("a", "b"), []string{"run.log"}, "desc")
	require.NoError(t, err)

	assert.Equal(t, result.StatusPass, res.Status)
	assert.Equal(t, []string{"a", "b"}, itemValues(res.Found))
	assert.Empty(t, res.Missing)
	assert.Equal(t, "desc", res.Found[0].Description)
}

func TestExistence_NotFound(t *testing.T) {
	a := check.NewAssembler(nil, match.Present)
	res, err := a.Existence(nil, []string{"run.log"}, "desc")
	require.NoError(t, err)

	assert.Equal(t, result.StatusFail, res.Status)
	assert.Empty(t, res.Found)
	require.Len(t, res.Missing, 1)
	assert.Equal(t, result.ExistenceFailed, res.Missing[0].Expected)
	assert.True(t, res.Missing[0].IsGhost())
	assert.Equal(t, []string{"run.log"}, res.Missing[0].SearchedFiles)
}

func TestExistence_PredicateEvidenceOnly(t *testing.T) {
	a := check.NewAssembler(nil, func(records []evidence.Record) (match.ExistsResult, error) {
		return match.ExistsResult{IsMatch: true, Evidence: records[1:]}, nil
	})
	res, err := a.Existence(recs("a", "b"), nil, "desc")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, itemValues(res.Found))
}

func TestExistence_Errors(t *testing.T) {
	_, err := check.NewAssembler(nil, nil).Existence(nil, nil, "d")
	require.Error(t, err)

	boom := errors.New("boom")
	_, err = check.NewAssembler(nil, func([]evidence.Record) (match.ExistsResult, error) {
		return match.ExistsResult{}, boom
	}).Existence(nil, nil, "d")
	require.ErrorIs(t, err, boom)
}
