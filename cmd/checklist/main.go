// SPDX-License-Identifier: Apache-2.0

// checklist evaluates checklist items against design and log artifacts.
//
// Usage:
//
//	checklist run <config.yaml>... [--format text|json|yaml] [--summary-out file]
//	checklist validate <config.yaml>...
//	checklist serve
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
