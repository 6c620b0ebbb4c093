// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes Prometheus counters for checklist evaluations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gemaraproj/checklist/internal/output"
	"github.com/gemaraproj/checklist/internal/pipeline"
	"github.com/gemaraproj/checklist/internal/result"
)

const namespace = "checklist"

// Collector tracks evaluation outcomes.
//
// Metrics:
//   - checklist_item_evaluations_total: evaluations by mode and status
//   - checklist_item_errors_total: items that failed before producing a result
//   - checklist_violations_total: missing/extra items by kind and severity
//   - checklist_waivers_total: waived violations and unused waive items
//   - checklist_files_searched: files visited per item
type Collector struct {
	registry *prometheus.Registry

	evaluations   *prometheus.CounterVec
	errors        prometheus.Counter
	violations    *prometheus.CounterVec
	waivers       *prometheus.CounterVec
	filesSearched prometheus.Histogram
}

// NewCollector creates and registers the metrics. A nil registry gets a
// fresh one.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	c := &Collector{
		registry: registry,
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "item_evaluations_total",
				Help:      "Total number of checklist item evaluations",
			},
			[]string{"mode", "status"},
		),
		errors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "item_errors_total",
				Help:      "Total number of checklist items that could not be evaluated",
			},
		),
		violations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "violations_total",
				Help:      "Total number of reported violations",
			},
			[]string{"kind", "severity"},
		),
		waivers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "waivers_total",
				Help:      "Waiver outcomes: waived violations and unused waive items",
			},
			[]string{"outcome"},
		),
		filesSearched: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "files_searched",
				Help:      "Number of files visited while parsing one item",
				Buckets:   []float64{1, 2, 4, 8, 16, 32, 64},
			},
		),
	}
	registry.MustRegister(c.evaluations, c.errors, c.violations, c.waivers, c.filesSearched)
	return c
}

// Registry returns the registry the collector writes to.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordEvaluation counts one finished evaluation.
func (c *Collector) RecordEvaluation(ev *pipeline.Evaluation) {
	c.evaluations.WithLabelValues(ev.Mode.String(), string(ev.Output.Status())).Inc()
	c.filesSearched.Observe(float64(len(ev.SearchedFiles)))

	for _, key := range []output.Key{output.KeyMissing, output.KeyExtra} {
		kind := result.KindMissing
		if key == output.KeyExtra {
			kind = result.KindExtra
		}
		for _, it := range ev.Output.Items(key) {
			c.violations.WithLabelValues(string(kind), string(it.Severity)).Inc()
		}
	}
	for _, it := range ev.Output.Items(output.KeyWaived) {
		if it.Kind != result.KindComment {
			c.waivers.WithLabelValues("waived").Inc()
		}
	}
	c.waivers.WithLabelValues("unused").Add(float64(len(ev.Output.Items(output.KeyUnusedWaivers))))
}

// RecordError counts an item that failed to evaluate.
func (c *Collector) RecordError() {
	c.errors.Inc()
}
