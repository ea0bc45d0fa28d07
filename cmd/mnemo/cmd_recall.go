package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnemohq/mnemo/internal/intel"
)

func newRecallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recall <topic>",
		Short: "Retrieve knowledge about a topic",
		Long: `Retrieve knowledge about a topic from the active workspace.

Permanent nodes and decaying experiences are merged into one list,
ranked by relevance with recency breaking ties.

Example:
  mnemo recall "database connection pooling"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			limit, _ := cmd.Flags().GetInt("limit")
			minRelevance, _ := cmd.Flags().GetFloat64("min-relevance")

			eng, err := openEngines(root)
			if err != nil {
				return err
			}
			defer eng.Close()

			hits, err := eng.intel.Recall(context.Background(), args[0], limit, minRelevance)
			if err != nil {
				return err
			}

			if jsonOut {
				return emitJSON(map[string]interface{}{"hits": hits, "count": len(hits)})
			}
			printHits(hits)
			return nil
		},
	}

	cmd.Flags().Int("limit", 0, "Maximum results (1-50, default 10)")
	cmd.Flags().Float64("min-relevance", 0, "Drop hits below this relevance")

	return cmd
}

func newCrossrefCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crossref <problem>",
		Short: "Search every open workspace for knowledge about a problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			limit, _ := cmd.Flags().GetInt("limit")

			eng, err := openEngines(root)
			if err != nil {
				return err
			}
			defer eng.Close()

			hits, err := eng.intel.Crossref(context.Background(), args[0], limit)
			if err != nil {
				return err
			}

			if jsonOut {
				return emitJSON(map[string]interface{}{"hits": hits, "count": len(hits)})
			}
			printHits(hits)
			return nil
		},
	}

	cmd.Flags().Int("limit", 0, "Maximum results (1-50, default 10)")

	return cmd
}

// printHits renders recall hits for humans, one per line.
func printHits(hits []intel.RecallHit) {
	if len(hits) == 0 {
		fmt.Println("No knowledge found.")
		return
	}
	for _, h := range hits {
		ws := ""
		if h.Workspace != "" {
			ws = fmt.Sprintf(" [%s]", h.Workspace)
		}
		switch h.Kind {
		case "node":
			fmt.Printf("%.2f  node %s%s  %s (%s)\n", h.Relevance, h.Node.ID, ws, h.Node.Name, h.Node.Type)
		case "experience":
			content := h.Experience.Content
			if len(content) > 80 {
				content = strings.TrimSpace(content[:80]) + "..."
			}
			fmt.Printf("%.2f  exp  %s%s  %s (%s)\n", h.Relevance, h.Experience.ID, ws, content, h.Experience.Type)
		}
	}
}
