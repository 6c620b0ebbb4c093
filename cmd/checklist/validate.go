// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <config.yaml>...",
	Short: "Check configuration files and print each item's evaluation mode",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := loadItems(args)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, item := range items {
			fmt.Fprintf(w, "%s\t%s\twaiver=%s\tpatterns=%d\tinputs=%d\n",
				item.ID, item.Mode, item.WaiverMode, len(item.PatternItems), len(item.InputFiles))
		}
		return nil
	},
}
