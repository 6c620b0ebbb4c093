// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gemaraproj/checklist/internal/tool"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing the evaluate_checklist_item
tool. Evidence files are passed to the tool inline; the server does not read
the filesystem.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		logger.Info("starting checklist MCP server over stdio", zap.String("version", version))
		return tool.NewServer(version).Run(cmd.Context(), &mcp.StdioTransport{})
	},
}
