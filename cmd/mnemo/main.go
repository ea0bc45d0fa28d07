package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mnemohq/mnemo/internal/config"
	"github.com/mnemohq/mnemo/internal/intel"
	"github.com/mnemohq/mnemo/internal/logging"
	"github.com/mnemohq/mnemo/internal/workspace"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "mnemo",
		Short: "Mnemo - persistent knowledge store for AI assistants",
		Long: `mnemo stores what AI assistants learn while working on a project.

High-confidence facts become permanent nodes in a typed knowledge graph;
tentative observations become experiences whose relevance decays over
time. Recall, context resolution and cross-workspace search bring the
right knowledge back when it is needed.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")

	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newServeCmd(),
		newLearnCmd(),
		newRecallCmd(),
		newCrossrefCmd(),
		newContextCmd(),
		newRelatedCmd(),
		newAddCmd(),
		newConnectCmd(),
		newQueryCmd(),
		newUpdateCmd(),
		newRemoveCmd(),
		newReindexCmd(),
		newStatusCmd(),
		newSaveCmd(),
		newSearchCmd(),
		newPruneCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newTokenCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(os.Stdout).Encode(map[string]string{"version": version})
			} else {
				fmt.Printf("mnemo version %s\n", version)
			}
		},
	}
}

// engines bundles the opened workspaces and intelligence layer for a
// command invocation.
type engines struct {
	cfg   *config.Config
	ws    *workspace.Manager
	intel *intel.Layer
	trace *logging.TraceLogger
}

// openEngines loads config and opens the configured workspaces.
// Callers must Close.
func openEngines(root string) (*engines, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logging.NewLogger(cfg.Logging.Level, os.Stderr)
	ws, err := workspace.Open(root, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open workspaces: %w", err)
	}

	trace := logging.NewTraceLogger(root, cfg.Logging.Level)
	return &engines{
		cfg:   cfg,
		ws:    ws,
		intel: intel.New(ws, log, trace),
		trace: trace,
	}, nil
}

func (e *engines) Close() {
	e.trace.Close()
	if err := e.ws.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to close workspaces: %v\n", err)
	}
}

// emitJSON writes v as a single JSON document to stdout.
func emitJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
