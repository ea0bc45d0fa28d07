package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnemohq/mnemo/internal/graph"
	"github.com/mnemohq/mnemo/internal/intel"
)

func newContextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context <query>",
		Short: "Resolve free text into the relevant knowledge subgraph",
		Long: `Resolve free text through the keyword route index into relevant
knowledge nodes, falling back to full-text search when the index has
no match.

Summary detail (the default) keeps responses small; full detail adds
descriptions, properties and edges.

Example:
  mnemo context "auth token rotation" --detail full`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			detail, _ := cmd.Flags().GetString("detail")
			limit, _ := cmd.Flags().GetInt("limit")

			eng, err := openEngines(root)
			if err != nil {
				return err
			}
			defer eng.Close()

			d := intel.Detail(detail)
			if d == "" {
				d = intel.DetailSummary
			}
			res, err := eng.intel.Context(context.Background(), args[0], d, limit)
			if err != nil {
				return err
			}

			if jsonOut {
				return emitJSON(res)
			}
			if len(res.Nodes) == 0 {
				fmt.Println("No matching knowledge.")
				return nil
			}
			source := "route index"
			if !res.FromIndex {
				source = "full-text fallback"
			}
			fmt.Printf("%d nodes via %s:\n", len(res.Nodes), source)
			for _, n := range res.Nodes {
				fmt.Printf("%.2f  %s  %s (%s)\n", n.Confidence, n.ID, n.Name, n.Type)
				if res.Detail == intel.DetailFull && n.Description != "" {
					fmt.Printf("      %s\n", n.Description)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("detail", "summary", "Detail level: summary or full")
	cmd.Flags().Int("limit", 0, "Maximum nodes (1-50, default 10)")

	return cmd
}

func newRelatedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "related <node-id>",
		Short: "Walk the knowledge graph outward from a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			depth, _ := cmd.Flags().GetInt("depth")
			edgeType, _ := cmd.Flags().GetString("edge-type")
			mode, _ := cmd.Flags().GetString("mode")

			eng, err := openEngines(root)
			if err != nil {
				return err
			}
			defer eng.Close()

			hops, err := eng.intel.Related(context.Background(), args[0], depth,
				edgeType, graph.TraversalMode(mode))
			if err != nil {
				return err
			}

			if jsonOut {
				return emitJSON(map[string]interface{}{"hops": hops, "count": len(hops)})
			}
			for _, h := range hops {
				fmt.Printf("%s%s  %s (%s)\n", strings.Repeat("  ", h.Depth), h.Node.ID, h.Node.Name, h.Node.Type)
			}
			return nil
		},
	}

	cmd.Flags().Int("depth", 1, "Traversal depth (1-5)")
	cmd.Flags().String("edge-type", "", "Follow only edges of this type")
	cmd.Flags().String("mode", "bfs", "Traversal mode: bfs or dfs")

	return cmd
}
