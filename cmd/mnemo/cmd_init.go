package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mnemohq/mnemo/internal/config"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a mnemo knowledge store in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")

			dataDir := filepath.Join(root, config.DataDirName)
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				return fmt.Errorf("failed to create %s directory: %w", config.DataDirName, err)
			}

			// Write a default config only when none exists.
			cfgPath := filepath.Join(dataDir, "config.yaml")
			created := false
			if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
				data, err := yaml.Marshal(config.Default())
				if err != nil {
					return fmt.Errorf("failed to render default config: %w", err)
				}
				if err := os.WriteFile(cfgPath, data, 0o644); err != nil {
					return fmt.Errorf("failed to write config.yaml: %w", err)
				}
				created = true
			}

			// Open once so the workspace database and schema exist.
			eng, err := openEngines(root)
			if err != nil {
				return err
			}
			defer eng.Close()

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"initialized":    true,
					"config":         cfgPath,
					"config_created": created,
					"workspace":      eng.ws.Active().Name,
				})
			}
			fmt.Printf("Initialized mnemo in %s\n", dataDir)
			if created {
				fmt.Printf("Wrote default config to %s\n", cfgPath)
			}
			fmt.Printf("Active workspace: %s\n", eng.ws.Active().Name)
			return nil
		},
	}
}
