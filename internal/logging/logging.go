// SPDX-License-Identifier: Apache-2.0

// Package logging builds the zap loggers used by the checklist commands.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// Options controls logger construction.
type Options struct {
	Debug bool
	// Format is "console" (default) or "json".
	Format string
}

// New builds a zap logger. Debug enables the development config; otherwise
// the production config is used at info level.
func New(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	if opts.Debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	switch opts.Format {
	case "", "console":
		cfg.Encoding = "console"
	case "json":
		cfg.Encoding = "json"
	default:
		return nil, fmt.Errorf("unsupported log format %q", opts.Format)
	}
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
