package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mnemohq/mnemo/internal/model"
	"github.com/mnemohq/mnemo/internal/sanitize"
)

func newLearnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learn <content>",
		Short: "Store a fact or lesson",
		Long: `Store a fact or lesson learned while working.

High confidence (the default) creates a permanent knowledge node plus a
backing experience; medium and low create only a decaying experience.

Example:
  mnemo learn "migrations must run before the app boots" --type decision
  mnemo learn "flaky DNS in CI" --type gotcha --confidence low`,
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

			res, err := eng.intel.Learn(context.Background(), content,
				model.ExperienceType(typ), sanitize.Content(situation),
				model.Confidence(confidence), tags)
			if err != nil {
				return err
			}

			if jsonOut {
				return emitJSON(res)
			}
			if res.StoredAs == "node" {
				fmt.Printf("Learned as permanent node %s (experience %s)\n", res.NodeID, res.ExperienceID)
			} else {
				fmt.Printf("Learned as decaying experience %s\n", res.ExperienceID)
			}
			return nil
		},
	}

	cmd.Flags().String("type", "", "Experience type: solution, pattern, decision, workaround, or gotcha (required)")
	cmd.Flags().String("confidence", "", "Confidence level: high (default), medium, or low")
	cmd.Flags().String("situation", "", "The situation in which the fact was learned")
	cmd.Flags().StringSlice("tag", nil, "Tag for retrieval (repeatable)")
	cmd.MarkFlagRequired("type")

	return cmd
}
