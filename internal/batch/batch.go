// SPDX-License-Identifier: Apache-2.0

// Package batch evaluates many checklist items with bounded parallelism.
// Items share no state, so each one runs through its own pipeline pass.
package batch

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gemaraproj/checklist/internal/checklist"
	"github.com/gemaraproj/checklist/internal/logging"
	"github.com/gemaraproj/checklist/internal/metrics"
	"github.com/gemaraproj/checklist/internal/pipeline"
)

// Evaluator is the single-item pipeline the runner drives.
type Evaluator interface {
	Evaluate(item *checklist.Item) (*pipeline.Evaluation, error)
}

// Config controls a Runner.
type Config struct {
	// Parallel is the maximum number of items evaluated at once. Values
	// below 1 mean sequential evaluation.
	Parallel int
	// Metrics, when set, records every outcome.
	Metrics *metrics.Collector
	Logger  *zap.Logger
}

// Outcome is the result for one item. Exactly one of Evaluation and Err is
// set.
type Outcome struct {
	ItemID     string
	Evaluation *pipeline.Evaluation
	Err        error
}

// Report holds the outcomes of one run, in input order.
type Report struct {
	RunID    string
	Outcomes []Outcome
}

// Passed reports whether every item evaluated without error and passed.
func (r *Report) Passed() bool {
	for _, o := range r.Outcomes {
		if o.Err != nil || !o.Evaluation.Passed() {
			return false
		}
	}
	return true
}

// Runner evaluates items concurrently.
type Runner struct {
	eval Evaluator
	cfg  Config
}

// NewRunner creates a Runner.
func NewRunner(eval Evaluator, cfg Config) *Runner {
	cfg.Logger = logging.OrNop(cfg.Logger)
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	return &Runner{eval: eval, cfg: cfg}
}

// Run evaluates every item. Per-item failures are recorded in the outcome
// and do not stop other items; cancelling ctx stops scheduling new items
// and marks unstarted ones with the context error.
func (r *Runner) Run(ctx context.Context, items []*checklist.Item) *Report {
	report := &Report{
		RunID:    uuid.NewString(),
		Outcomes: make([]Outcome, len(items)),
	}
	log := r.cfg.Logger.With(zap.String("run_id", report.RunID))
	log.Debug("starting run", zap.Int("items", len(items)), zap.Int("parallel", r.cfg.Parallel))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Parallel)
	for i, item := range items {
		i, item := i, item
		report.Outcomes[i].ItemID = item.ID
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				report.Outcomes[i].Err = err
				return nil
			}
			ev, err := r.eval.Evaluate(item)
			if err != nil {
				log.Warn("item failed", zap.String("item", item.ID), zap.Error(err))
				report.Outcomes[i].Err = fmt.Errorf("evaluating %q: %w", item.ID, err)
				if r.cfg.Metrics != nil {
					r.cfg.Metrics.RecordError()
				}
				return nil
			}
			report.Outcomes[i].Evaluation = ev
			if r.cfg.Metrics != nil {
				r.cfg.Metrics.RecordEvaluation(ev)
			}
			return nil
		})
	}
	_ = g.Wait()
	return report
}
