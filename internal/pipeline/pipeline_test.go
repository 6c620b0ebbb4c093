// SPDX-License-Identifier: Apache-2.0

package pipeline_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gemaraproj/checklist/internal/checklist"
	"github.com/gemaraproj/checklist/internal/evidence"
	"github.com/gemaraproj/checklist/internal/evidence/parsers"
	"github.com/gemaraproj/checklist/internal/fsread"
	"github.com/gemaraproj/checklist/internal/match"
	"github.com/gemaraproj/checklist/internal/output"
	"github.com/gemaraproj/checklist/internal/pipeline"
	"github.com/gemaraproj/checklist/internal/result"
)

func newEvaluator(t *testing.T, files map[string]string, logger *zap.Logger) *pipeline.Evaluator {
	t.Helper()
	dispatcher := parsers.Default()
	ev, err := pipeline.NewEvaluator(pipeline.Collaborators{
		Read: fsread.NewMemory(files).Read,
		Extractor: func(item *checklist.Item) (evidence.ExtractFunc, error) {
			return dispatcher.Extractor(item.Extractor)
		},
		Match:  match.NewMatcher().Match,
		Exists: pipeline.ExistsByConfig,
	}, logger)
	require.NoError(t, err)
	return ev
}

func item(t *testing.T, doc string) *checklist.Item {
	t.Helper()
	items, err := checklist.Parse([]byte(doc), "/logs")
	require.NoError(t, err)
	require.Len(t, items, 1)
	return items[0]
}

func details(items []result.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Detail()
	}
	return out
}

func TestEvaluate_PatternPass(t *testing.T) {
	ev := newEvaluator(t, map[string]string{"/logs/run.log": "alpha\nbeta\n"}, nil)
	got, err := ev.Evaluate(item(t, `
id: IMP-A
requirements: {value: 2, pattern_items: [alpha, beta]}
input_files: [run.log]
`))
	require.NoError(t, err)

	assert.Equal(t, checklist.ModePattern, got.Mode)
	assert.True(t, got.Passed())
	assert.Equal(t, []string{"alpha", "beta"}, details(got.Output.Items(output.KeyFound)))
	assert.Empty(t, got.Output.Items(output.KeyMissing))
	assert.Empty(t, got.Output.Items(output.KeyExtra))
	assert.Equal(t, []string{"/logs/run.log"}, got.SearchedFiles)
	assert.Equal(t, 2, got.Records)

	extra, err := output.ExtraKeys(got.Output, got.Mode)
	require.NoError(t, err)
	assert.Empty(t, extra)
}

func TestEvaluate_PatternMissingGhost(t *testing.T) {
	ev := newEvaluator(t, map[string]string{"/logs/run.log": "alpha\n"}, nil)
	got, err := ev.Evaluate(item(t, `
id: IMP-B
requirements: {value: 2, pattern_items: [alpha, gamma]}
input_files: [run.log]
`))
	require.NoError(t, err)

	assert.False(t, got.Passed())
	missing := got.Output.Items(output.KeyMissing)
	require.Len(t, missing, 1)
	assert.Equal(t, "gamma", missing[0].Expected)
	assert.True(t, missing[0].IsGhost())
	assert.Equal(t, []string{"/logs/run.log"}, missing[0].SearchedFiles)
	assert.Contains(t, got.Log, "expected: gamma | source: (ghost) | line: N/A")
	require.Len(t, got.Summary.Failures, 1)
	assert.Equal(t, "gamma", got.Summary.Failures[0].Detail)
}

func TestEvaluate_GlobalWaiver(t *testing.T) {
	ev := newEvaluator(t, map[string]string{"/logs/run.log": "alpha\n"}, nil)
	got, err := ev.Evaluate(item(t, `
id: IMP-C
requirements: {value: 1, pattern_items: [gamma]}
waivers: {value: 0, waive_items: ["signed off by lead"]}
input_files: [run.log]
`))
	require.NoError(t, err)

	assert.Equal(t, checklist.ModePatternWaiver, got.Mode)
	assert.True(t, got.Passed())
	missing := got.Output.Items(output.KeyMissing)
	require.Len(t, missing, 1)
	assert.Equal(t, result.TagWaivedAsInfo, missing[0].Tag)
	assert.Equal(t, result.SeverityInfo, missing[0].Severity)
	assert.Empty(t, got.Output.Items(output.KeyUnusedWaivers))
	assert.Empty(t, got.Summary.Failures)
	assert.Len(t, got.Summary.Warnings, 2)
}

func TestEvaluate_SelectiveWaiver(t *testing.T) {
	ev := newEvaluator(t, map[string]string{"/logs/run.log": ""}, nil)
	got, err := ev.Evaluate(item(t, `
id: IMP-D
requirements: {value: 2, pattern_items: [p1, p2]}
waivers: {value: 2, waive_items: [p1, unused]}
input_files: [run.log]
`))
	require.NoError(t, err)

	assert.False(t, got.Passed())
	assert.Equal(t, []string{"p1"}, details(got.Output.Items(output.KeyWaived)))
	assert.Equal(t, []string{"p2"}, details(got.Output.Items(output.KeyMissing)))
	unused := got.Output.Items(output.KeyUnusedWaivers)
	require.Len(t, unused, 1)
	assert.Equal(t, result.ReasonNotMatched, unused[0].Reason)
}

func TestEvaluate_ExistenceFollowsReferences(t *testing.T) {
	ev := newEvaluator(t, map[string]string{
		"/logs/run.log":        "include sub/detail.log\n",
		"/logs/sub/detail.log": "detail line\n",
	}, nil)
	got, err := ev.Evaluate(item(t, `
id: IMP-E
input_files: [run.log]
`))
	require.NoError(t, err)

	assert.Equal(t, checklist.ModeExistence, got.Mode)
	assert.True(t, got.Passed())
	assert.Equal(t, []string{"/logs/run.log", "/logs/sub/detail.log"}, got.SearchedFiles)
	assert.Equal(t, []string{"include sub/detail.log", "detail line"}, details(got.Output.Items(output.KeyFound)))
	assert.False(t, got.Output.Has(output.KeyExtra))
}

func TestEvaluate_ExistenceFailed(t *testing.T) {
	ev := newEvaluator(t, map[string]string{"/logs/run.log": "\n\n"}, nil)
	got, err := ev.Evaluate(item(t, `
id: IMP-F
waivers: {value: 1, waive_items: ["Existence*"]}
input_files: [run.log]
`))
	require.NoError(t, err)

	assert.Equal(t, checklist.ModeExistenceWaiver, got.Mode)
	assert.True(t, got.Passed())
	assert.Equal(t, []string{result.ExistenceFailed}, details(got.Output.Items(output.KeyWaived)))
}

func TestEvaluate_ExistenceAbsent(t *testing.T) {
	ev := newEvaluator(t, map[string]string{"/logs/run.log": ""}, nil)
	got, err := ev.Evaluate(item(t, `
id: IMP-G
existence: absent
input_files: [run.log]
`))
	require.NoError(t, err)
	assert.True(t, got.Passed())
}

func TestEvaluate_Idempotent(t *testing.T) {
	ev := newEvaluator(t, map[string]string{"/logs/run.log": "alpha\nzeta\n"}, nil)
	it := item(t, `
id: IMP-H
requirements: {value: 1, pattern_items: [alpha]}
waivers: {value: 1, waive_items: [zeta]}
input_files: [run.log]
`)
	first, err := ev.Evaluate(it)
	require.NoError(t, err)
	second, err := ev.Evaluate(it)
	require.NoError(t, err)

	assert.Equal(t, first.Output, second.Output)
	assert.Equal(t, first.Log, second.Log)
	assert.Equal(t, first.Summary, second.Summary)
}

func TestEvaluate_Errors(t *testing.T) {
	ev := newEvaluator(t, map[string]string{}, nil)

	_, err := ev.Evaluate(nil)
	require.ErrorIs(t, err, checklist.ErrInvalidConfig)

	_, err = ev.Evaluate(&checklist.Item{ID: "X", Mode: checklist.ModeUnknown})
	require.ErrorIs(t, err, output.ErrUnknownMode)

	_, err = ev.Evaluate(item(t, "id: IMP-I\ninput_files: [missing.log]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `item "IMP-I"`)

	bad := item(t, "id: IMP-J\ninput_files: [run.log]\n")
	bad.Extractor = "pdf"
	_, err = ev.Evaluate(bad)
	require.Error(t, err)
}

func TestNewEvaluator_RequiresCollaborators(t *testing.T) {
	_, err := pipeline.NewEvaluator(pipeline.Collaborators{}, nil)
	require.Error(t, err)
}

func TestEvaluate_Logs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ev := newEvaluator(t, map[string]string{"/logs/run.log": "alpha\n"}, zap.New(core))
	_, err := ev.Evaluate(item(t, "id: IMP-K\nwaivers: {value: 0}\ninput_files: [run.log]\n"))
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("parsed evidence").Len())
	assert.Equal(t, 1, logs.FilterMessage("reconciled waivers").Len())
	done := logs.FilterMessage("evaluated item").All()
	require.Len(t, done, 1)
	assert.Equal(t, "IMP-K", done[0].ContextMap()["item"])
	assert.Equal(t, "PASS", done[0].ContextMap()["status"])
}

func TestExistsByConfig(t *testing.T) {
	records := []evidence.Record{{Value: "x"}}
	present, err := pipeline.ExistsByConfig(&checklist.Item{Existence: checklist.ExistencePresent})(records)
	require.NoError(t, err)
	assert.True(t, present.IsMatch)

	absent, err := pipeline.ExistsByConfig(&checklist.Item{Existence: checklist.ExistenceAbsent})(records)
	require.NoError(t, err)
	assert.False(t, absent.IsMatch)
}

func TestEvaluation_JSON(t *testing.T) {
	ev := newEvaluator(t, map[string]string{"/logs/run.log": "alpha\n"}, nil)
	got, err := ev.Evaluate(item(t, "id: IMP-L\ninput_files: [run.log]\n"))
	require.NoError(t, err)
	require.NotNil(t, got.Result)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.NotContains(t, decoded, "Result")
	assert.Equal(t, "type1", decoded["mode"])
	out, ok := decoded["output"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "PASS", out["status"])
	assert.ElementsMatch(t, []string{"status", "found", "missing"}, keysOf(out))
}

func keysOf(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
