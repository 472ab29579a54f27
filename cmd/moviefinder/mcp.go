package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/moviefinder/internal/config"
	mcpserver "github.com/vadimtrunov/moviefinder/internal/mcp"
)

// newMCPServeCmd returns the "mcp-serve" subcommand. It exposes the search
// tools to MCP clients over stdin/stdout, so logs must go to stderr.
func newMCPServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-serve",
		Short: "Start an MCP tool server over stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			logger := config.SetupLogger(cfg.App.LogLevel, os.Stderr)
			srv := mcpserver.NewServer(newFetcher(cfg, logger), version, logger)
			return srv.ServeStdio(cmd.Context())
		},
	}
}
