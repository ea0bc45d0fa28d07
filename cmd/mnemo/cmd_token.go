package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mnemohq/mnemo/internal/auth"
	"github.com/mnemohq/mnemo/internal/config"
	"github.com/mnemohq/mnemo/internal/mcp"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue an access token for the MCP server",
		Long: `Issue a signed access token for a client of the MCP server.

Requires an auth secret in the config. Clients pass the token via the
` + mcp.TokenEnv + ` environment variable. Roles:
  reader  query and recall only
  writer  reader plus learn, save, add, connect, remove
  admin   writer plus prune, backup, restore

Example:
  mnemo token ci-bot --role writer`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			role, _ := cmd.Flags().GetString("role")

			cfg, err := config.Load(root)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.Auth.Secret == "" {
				return fmt.Errorf("no auth secret configured; set auth.secret in %s/config.yaml", config.DataDirName)
			}

			authenticator, err := auth.New(cfg.Auth.Secret, cfg.Auth.TokenTTL)
			if err != nil {
				return err
			}
			token, err := authenticator.Issue(args[0], auth.Role(role))
			if err != nil {
				return err
			}

			if jsonOut {
				return emitJSON(map[string]interface{}{
					"token":   token,
					"subject": args[0],
					"role":    role,
					"ttl":     cfg.Auth.TokenTTL.String(),
				})
			}
			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().String("role", "reader", "Role to grant: reader, writer, or admin")

	return cmd
}
