package main

import (
	"github.com/spf13/cobra"

	"github.com/couchcryptid/mine-data-normalizer/internal/adapter/mcptool"
)

func newMCPCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
	}
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol server over stdio.

Tools:
  normalize_measurement  convert one raw value
  normalize_record       normalize a flat mine record

Client configuration:
  {
    "mcpServers": {
      "minenorm": {
        "command": "/path/to/minenorm",
        "args": ["mcp", "serve"]
      }
    }
  }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := opts.logger(cmd)
			n, err := opts.normalizer(logger)
			if err != nil {
				return err
			}
			logger.Info("mcp server starting", "version", mcptool.Version)
			return mcptool.NewServer(n).Run(cmd.Context())
		},
	}
	cmd.AddCommand(serve)
	return cmd
}
