// SPDX-License-Identifier: Apache-2.0

// Package pipeline evaluates one checklist item end to end: parsing, check
// assembly, waiver reconciliation, output filtering and reporting.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gemaraproj/checklist/internal/check"
	"github.com/gemaraproj/checklist/internal/checklist"
	"github.com/gemaraproj/checklist/internal/evidence"
	"github.com/gemaraproj/checklist/internal/logging"
	"github.com/gemaraproj/checklist/internal/match"
	"github.com/gemaraproj/checklist/internal/output"
	"github.com/gemaraproj/checklist/internal/report"
	"github.com/gemaraproj/checklist/internal/result"
	"github.com/gemaraproj/checklist/internal/waiver"
)

// ExtractorFor returns the extract function to use for an item.
type ExtractorFor func(item *checklist.Item) (evidence.ExtractFunc, error)

// ExistsFor returns the existence predicate to use for an item.
type ExistsFor func(item *checklist.Item) match.ExistsFunc

// Collaborators are the injected functions the pipeline calls out to.
type Collaborators struct {
	Read      evidence.ReadFunc
	Extractor ExtractorFor
	Match     match.Func
	Exists    ExistsFor
}

// Evaluation is everything produced for one item.
type Evaluation struct {
	ItemID        string         `json:"item_id" yaml:"item_id"`
	Mode          checklist.Mode `json:"mode" yaml:"mode"`
	SearchedFiles []string       `json:"searched_files" yaml:"searched_files"`
	Records       int            `json:"records" yaml:"records"`
	Result        *result.Result `json:"-" yaml:"-"`
	Output        output.Record  `json:"output" yaml:"output"`
	Log           string         `json:"log" yaml:"log"`
	Summary       report.Summary `json:"summary" yaml:"summary"`
}

// Passed reports whether the filtered status is PASS.
func (e *Evaluation) Passed() bool {
	return e.Output.Status() == result.StatusPass
}

// Evaluator runs the stages in order for one item at a time. It holds no
// per-item state and may be shared between goroutines when its
// collaborators are safe for concurrent use.
type Evaluator struct {
	collab Collaborators
	logger *zap.Logger
}

// NewEvaluator creates an Evaluator. A nil logger disables logging.
func NewEvaluator(collab Collaborators, logger *zap.Logger) (*Evaluator, error) {
	if collab.Read == nil || collab.Extractor == nil || collab.Match == nil || collab.Exists == nil {
		return nil, fmt.Errorf("evaluator requires reader, extractor, matcher and existence collaborators")
	}
	return &Evaluator{collab: collab, logger: logging.OrNop(logger)}, nil
}

// Evaluate runs the full pipeline for a normalized item.
func (e *Evaluator) Evaluate(item *checklist.Item) (*Evaluation, error) {
	if item == nil {
		return nil, fmt.Errorf("%w: nil item", checklist.ErrInvalidConfig)
	}
	if !item.Mode.Valid() {
		return nil, fmt.Errorf("item %q: %w: %d", item.ID, output.ErrUnknownMode, int(item.Mode))
	}
	log := e.logger.With(zap.String("item", item.ID), zap.Stringer("mode", item.Mode))

	extract, err := e.collab.Extractor(item)
	if err != nil {
		return nil, fmt.Errorf("item %q: %w", item.ID, err)
	}
	parsed, err := evidence.NewOrchestrator(e.collab.Read, extract, item.MaxDepth).Run(item.InputFiles)
	if err != nil {
		return nil, fmt.Errorf("item %q: %w", item.ID, err)
	}
	log.Debug("parsed evidence",
		zap.Int("records", len(parsed.Records)),
		zap.Strings("searched", parsed.SearchedFiles))

	assembler := check.NewAssembler(e.collab.Match, e.collab.Exists(item))
	var checked *result.Result
	if item.Mode.UsesPatterns() {
		checked, err = assembler.Patterns(item.PatternItems, parsed.Records, parsed.SearchedFiles, item.Description)
	} else {
		checked, err = assembler.Existence(parsed.Records, parsed.SearchedFiles, item.Description)
	}
	if err != nil {
		return nil, fmt.Errorf("item %q: %w", item.ID, err)
	}
	log.Debug("checked evidence",
		zap.String("status", string(checked.Status)),
		zap.Int("found", len(checked.Found)),
		zap.Int("missing", len(checked.Missing)),
		zap.Int("extra", len(checked.Extra)))

	waived, err := waiver.NewEngine(e.collab.Match).Apply(checked, item)
	if err != nil {
		return nil, fmt.Errorf("item %q: %w", item.ID, err)
	}
	if item.WaiverMode != checklist.WaiverNone {
		log.Debug("reconciled waivers",
			zap.Stringer("waiver_mode", item.WaiverMode),
			zap.String("status", string(waived.Status)),
			zap.Int("waived", len(waived.Waived)),
			zap.Int("unused", len(waived.UnusedWaivers)))
	}

	filtered, err := output.Filter(waived, item.Mode)
	if err != nil {
		return nil, fmt.Errorf("item %q: %w", item.ID, err)
	}
	text, err := report.RenderLog(filtered, item.Mode, item.ID, item.Description)
	if err != nil {
		return nil, fmt.Errorf("item %q: %w", item.ID, err)
	}
	summary, err := report.RenderSummary(filtered, item.Mode, item.Description)
	if err != nil {
		return nil, fmt.Errorf("item %q: %w", item.ID, err)
	}

	log.Info("evaluated item", zap.String("status", string(filtered.Status())))
	return &Evaluation{
		ItemID:        item.ID,
		Mode:          item.Mode,
		SearchedFiles: parsed.SearchedFiles,
		Records:       len(parsed.Records),
		Result:        waived,
		Output:        filtered,
		Log:           text,
		Summary:       summary,
	}, nil
}

// ExistsByConfig picks match.Present or match.Absent from the item's
// existence setting.
func ExistsByConfig(item *checklist.Item) match.ExistsFunc {
	if item.Existence == checklist.ExistenceAbsent {
		return match.Absent
	}
	return match.Present
}
