package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the keyword route index from the live nodes",
		Long: `Rebuild the keyword route index of the active workspace from its
live nodes. Existing routes are discarded first, so stale entries
pointing at removed or renamed nodes disappear.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")

			eng, err := openEngines(root)
			if err != nil {
				return err
			}
			defer eng.Close()

			indexed, err := eng.intel.Reindex(context.Background())
			if err != nil {
				return err
			}

			if jsonOut {
				return emitJSON(map[string]interface{}{"indexed": indexed})
			}
			fmt.Printf("Reindexed %d nodes\n", indexed)
			return nil
		},
	}
}
