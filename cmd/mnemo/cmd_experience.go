package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnemohq/mnemo/internal/model"
	"github.com/mnemohq/mnemo/internal/sanitize"
	"github.com/mnemohq/mnemo/internal/store"
)

func newSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <content>",
		Short: "Store a decaying experience",
		Long: `Store an experience directly, without the confidence routing of
'mnemo learn'. Experiences lose relevance over time unless they are
accessed often enough to be promoted into permanent nodes.

Example:
  mnemo save "the staging LB drops websockets" --type gotcha`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			typ, _ := cmd.Flags().GetString("type")
			confidence, _ := cmd.Flags().GetString("confidence")
			situation, _ := cmd.Flags().GetString("situation")
			tags, _ := cmd.Flags().GetStringSlice("tag")

			content := sanitize.Content(args[0])
			if content == "" {
				return fmt.Errorf("content is empty after sanitization: input contained only unsafe content")
			}

			eng, err := openEngines(root)
			if err != nil {
				return err
			}
			defer eng.Close()

			exp, err := eng.ws.Active().Experience.Save(context.Background(),
				model.ExperienceType(typ), content, sanitize.Content(situation),
				model.Confidence(confidence), tags)
			if err != nil {
				return err
			}

			if jsonOut {
				return emitJSON(exp)
			}
			fmt.Printf("Saved %s experience %s (confidence %s)\n", exp.Type, exp.ID, exp.Confidence)
			return nil
		},
	}

	cmd.Flags().String("type", "", "Experience type: solution, pattern, decision, workaround, or gotcha (required)")
	cmd.Flags().String("confidence", "", "Confidence level: high (default), medium, or low")
	cmd.Flags().String("situation", "", "The situation the experience applies to")
	cmd.Flags().StringSlice("tag", nil, "Tag (repeatable)")
	cmd.MarkFlagRequired("type")

	return cmd
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search experiences with live relevance scores",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			typ, _ := cmd.Flags().GetString("type")
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")
			minRelevance, _ := cmd.Flags().GetFloat64("min-relevance")

			text := ""
			if len(args) > 0 {
				text = args[0]
			}

			eng, err := openEngines(root)
			if err != nil {
				return err
			}
			defer eng.Close()

			hits, err := eng.ws.Active().Experience.Search(context.Background(), store.ExperienceQuery{
				Text:   text,
				Type:   model.ExperienceType(typ),
				Limit:  limit,
				Offset: offset,
			}, minRelevance)
			if err != nil {
				return err
			}

			if jsonOut {
				return emitJSON(map[string]interface{}{"hits": hits, "count": len(hits)})
			}
			if len(hits) == 0 {
				fmt.Println("No experiences found.")
				return nil
			}
			for _, h := range hits {
				content := h.Experience.Content
				if len(content) > 80 {
					content = strings.TrimSpace(content[:80]) + "..."
				}
				marker := ""
				if h.Experience.Promoted() {
					marker = " [promoted]"
				}
				fmt.Printf("%.2f  %s  %s (%s)%s\n", h.Relevance, h.Experience.ID, content, h.Experience.Type, marker)
			}
			return nil
		},
	}

	cmd.Flags().String("type", "", "Restrict to an experience type")
	cmd.Flags().Float64("min-relevance", 0, "Drop hits below this relevance")
	cmd.Flags().Int("limit", 0, "Maximum results (1-50, default 10)")
	cmd.Flags().Int("offset", 0, "Results to skip, for paging")

	return cmd
}

func newPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete experiences whose relevance decayed below a threshold",
		Long: `Delete experiences whose relevance fell strictly below the threshold.
Pruning a promoted experience leaves its permanent node in place.

Example:
  mnemo prune --threshold 0.05`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			threshold, _ := cmd.Flags().GetFloat64("threshold")

			eng, err := openEngines(root)
			if err != nil {
				return err
			}
			defer eng.Close()

			pruned, err := eng.ws.Active().Experience.Prune(context.Background(), threshold)
			if err != nil {
				return err
			}

			if jsonOut {
				return emitJSON(map[string]interface{}{"pruned": pruned, "threshold": threshold})
			}
			fmt.Printf("Pruned %d experiences below relevance %g\n", pruned, threshold)
			return nil
		},
	}

	cmd.Flags().Float64("threshold", 0.01, "Relevance threshold")

	return cmd
}
