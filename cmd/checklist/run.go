// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/gemaraproj/checklist/internal/batch"
	"github.com/gemaraproj/checklist/internal/checklist"
	"github.com/gemaraproj/checklist/internal/evidence"
	"github.com/gemaraproj/checklist/internal/evidence/parsers"
	"github.com/gemaraproj/checklist/internal/fsread"
	"github.com/gemaraproj/checklist/internal/match"
	"github.com/gemaraproj/checklist/internal/metrics"
	"github.com/gemaraproj/checklist/internal/output"
	"github.com/gemaraproj/checklist/internal/pipeline"
	"github.com/gemaraproj/checklist/internal/report"
)

var runOpts struct {
	format      string
	summaryOut  string
	parallel    int
	metricsFile string
}

var runCmd = &cobra.Command{
	Use:   "run <config.yaml>...",
	Short: "Evaluate every checklist item in the given configuration files",
	Long: `Evaluates each checklist item and prints its report. The command exits
non-zero when any item fails or cannot be evaluated.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runOpts.format, "format", "f", "text", "report format: text, json or yaml")
	runCmd.Flags().StringVar(&runOpts.summaryOut, "summary-out", "", "write item summaries as YAML to this file")
	runCmd.Flags().IntVarP(&runOpts.parallel, "parallel", "p", 1, "number of items evaluated concurrently")
	runCmd.Flags().StringVar(&runOpts.metricsFile, "metrics-textfile", "", "write Prometheus metrics to this file")
}

func runRun(cmd *cobra.Command, args []string) error {
	switch runOpts.format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unsupported format %q", runOpts.format)
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	items, err := loadItems(args)
	if err != nil {
		return err
	}

	dispatcher := parsers.Default()
	evaluator, err := pipeline.NewEvaluator(pipeline.Collaborators{
		Read: fsread.ReadFile,
		Extractor: func(item *checklist.Item) (evidence.ExtractFunc, error) {
			return dispatcher.Extractor(item.Extractor)
		},
		Match:  match.NewMatcher().Match,
		Exists: pipeline.ExistsByConfig,
	}, logger)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector(nil)
	runner := batch.NewRunner(evaluator, batch.Config{
		Parallel: runOpts.parallel,
		Metrics:  collector,
		Logger:   logger,
	})
	rep := runner.Run(cmd.Context(), items)

	if err := writeReport(cmd.OutOrStdout(), rep, runOpts.format); err != nil {
		return err
	}
	if runOpts.summaryOut != "" {
		if err := writeSummaries(runOpts.summaryOut, rep); err != nil {
			return err
		}
	}
	if runOpts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(runOpts.metricsFile, collector.Registry()); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	if !rep.Passed() {
		failed := 0
		for _, o := range rep.Outcomes {
			if o.Err != nil || !o.Evaluation.Passed() {
				failed++
			}
		}
		return fmt.Errorf("%d of %d checklist items did not pass", failed, len(rep.Outcomes))
	}
	return nil
}

func loadItems(paths []string) ([]*checklist.Item, error) {
	var items []*checklist.Item
	for _, p := range paths {
		loaded, err := checklist.LoadFile(p)
		if err != nil {
			return nil, err
		}
		items = append(items, loaded...)
	}
	return items, nil
}

type itemDocument struct {
	ItemID        string          `json:"item_id" yaml:"item_id"`
	Mode          string          `json:"mode,omitempty" yaml:"mode,omitempty"`
	SearchedFiles []string        `json:"searched_files,omitempty" yaml:"searched_files,omitempty"`
	Result        output.Record   `json:"result,omitempty" yaml:"result,omitempty"`
	Summary       *report.Summary `json:"summary,omitempty" yaml:"summary,omitempty"`
	Error         string          `json:"error,omitempty" yaml:"error,omitempty"`
}

type runDocument struct {
	RunID string         `json:"run_id" yaml:"run_id"`
	Items []itemDocument `json:"items" yaml:"items"`
}

func toDocument(rep *batch.Report) runDocument {
	doc := runDocument{RunID: rep.RunID, Items: make([]itemDocument, 0, len(rep.Outcomes))}
	for _, o := range rep.Outcomes {
		d := itemDocument{ItemID: o.ItemID}
		if o.Err != nil {
			d.Error = o.Err.Error()
		} else {
			summary := o.Evaluation.Summary
			d.Mode = o.Evaluation.Mode.String()
			d.SearchedFiles = o.Evaluation.SearchedFiles
			d.Result = o.Evaluation.Output
			d.Summary = &summary
		}
		doc.Items = append(doc.Items, d)
	}
	return doc
}

func writeReport(w io.Writer, rep *batch.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(toDocument(rep))
	case "yaml":
		data, err := yaml.Marshal(toDocument(rep))
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		for i, o := range rep.Outcomes {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if o.Err != nil {
				fmt.Fprintf(w, "Item: %s\nError: %v\n", o.ItemID, o.Err)
				continue
			}
			fmt.Fprint(w, o.Evaluation.Log)
		}
		return nil
	}
}

type summaryDocument struct {
	ItemID  string         `yaml:"item_id"`
	Summary report.Summary `yaml:"summary"`
}

func writeSummaries(path string, rep *batch.Report) error {
	docs := make([]summaryDocument, 0, len(rep.Outcomes))
	for _, o := range rep.Outcomes {
		s := report.Summary{Executed: false, Failures: []report.Entry{}, Warnings: []report.Entry{}}
		if o.Evaluation != nil {
			s = o.Evaluation.Summary
		} else if o.Err != nil {
			s.Description = o.Err.Error()
		}
		docs = append(docs, summaryDocument{ItemID: o.ItemID, Summary: s})
	}
	data, err := yaml.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encoding summaries: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing summaries: %w", err)
	}
	return nil
}
