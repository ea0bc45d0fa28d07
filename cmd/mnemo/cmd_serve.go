package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mnemohq/mnemo/internal/mcp"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: `Serve mnemo's knowledge operations over the Model Context Protocol.

The server speaks MCP on stdin/stdout, so this command is meant to be
launched by an MCP client, not interactively. When the config carries
an auth secret, clients must supply a token via the MNEMO_TOKEN
environment variable; issue one with 'mnemo token'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")

			server, err := mcp.NewServer(&mcp.Config{
				Name:    "mnemo",
				Version: version,
				Root:    root,
			})
			if err != nil {
				return fmt.Errorf("failed to start MCP server: %w", err)
			}

			return server.Run(context.Background())
		},
	}
}
