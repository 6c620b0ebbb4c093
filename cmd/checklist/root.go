// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gemaraproj/checklist/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootOpts struct {
	debug     bool
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "checklist",
	Short: "Evaluate checklist items against design and log artifacts",
	Long: `checklist extracts evidence from input files, matches it against the
patterns or existence conditions declared for each checklist item, reconciles
violations with approved waivers and reports a PASS/FAIL verdict.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootOpts.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&rootOpts.logFormat, "log-format", "console", "log encoding: console or json")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func newLogger() (*zap.Logger, error) {
	return logging.New(logging.Options{Debug: rootOpts.debug, Format: rootOpts.logFormat})
}
