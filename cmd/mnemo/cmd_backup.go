package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mnemohq/mnemo/internal/backup"
	"github.com/mnemohq/mnemo/internal/config"
	"github.com/mnemohq/mnemo/internal/pathutil"
)

func defaultBackupDir(root string) string {
	return filepath.Join(root, config.DataDirName, "backups")
}

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export the active workspace to a checksummed archive",
		Long: `Export the active workspace (nodes, edges, experiences, routes) to a
compressed, checksummed archive file.

Default location: .mnemo/backups/mnemo-backup-YYYYMMDD-HHMMSS.mnb
Older archives beyond the retention count are deleted.

Examples:
  mnemo backup                       # Archive to the default location
  mnemo backup --output snap.mnb     # Archive to a specific file
  mnemo backup list                  # List archives
  mnemo backup verify snap.mnb       # Verify archive integrity`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			outputPath, _ := cmd.Flags().GetString("output")
			keep, _ := cmd.Flags().GetInt("keep")

			applyRetention := outputPath == ""
			if outputPath == "" {
				outputPath = filepath.Join(defaultBackupDir(root), backup.Filename(time.Now()))
			} else if err := pathutil.ValidatePath(outputPath, pathutil.AllowedArchiveDirs(root)); err != nil {
				return fmt.Errorf("backup path rejected: %w", err)
			}

			eng, err := openEngines(root)
			if err != nil {
				return err
			}
			defer eng.Close()

			active := eng.ws.Active()
			header, err := backup.Export(context.Background(), active.Store, active.Name, outputPath)
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}

			// Retention only manages the default directory; explicit
			// output paths are the caller's to clean up.
			if applyRetention && keep > 0 {
				policy := &backup.CountPolicy{MaxCount: keep}
				if _, err := backup.ApplyRetention(filepath.Dir(outputPath), policy); err != nil {
					fmt.Fprintf(os.Stderr, "warning: failed to apply retention: %v\n", err)
				}
			}

			if jsonOut {
				return emitJSON(map[string]interface{}{
					"path":        outputPath,
					"workspace":   header.Workspace,
					"nodes":       header.NodeCount,
					"edges":       header.EdgeCount,
					"experiences": header.ExperienceCount,
				})
			}
			fmt.Printf("Backed up workspace %s to %s\n", header.Workspace, outputPath)
			fmt.Printf("  %d nodes, %d edges, %d experiences\n",
				header.NodeCount, header.EdgeCount, header.ExperienceCount)
			return nil
		},
	}

	cmd.Flags().String("output", "", "Archive file path")
	cmd.Flags().Int("keep", 10, "Archives to keep in the default directory (0 disables retention)")

	cmd.AddCommand(newBackupListCmd(), newBackupVerifyCmd())

	return cmd
}

func newBackupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backup archives, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")

			archives, err := backup.List(defaultBackupDir(root))
			if err != nil {
				return err
			}

			if jsonOut {
				return emitJSON(map[string]interface{}{"archives": archives, "count": len(archives)})
			}
			if len(archives) == 0 {
				fmt.Println("No backups found.")
				return nil
			}
			for _, a := range archives {
				fmt.Printf("%s  %d bytes\n", a.Path, a.Size)
			}
			return nil
		},
	}
}

func newBackupVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>",
		Short: "Verify a backup archive's checksum and format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			// Full read verifies checksum and decompression.
			a, err := backup.Read(args[0])
			if err != nil {
				return fmt.Errorf("verification failed: %w", err)
			}

			if jsonOut {
				return emitJSON(map[string]interface{}{
					"valid":       true,
					"workspace":   a.Workspace,
					"created_at":  a.CreatedAt,
					"nodes":       len(a.Nodes),
					"edges":       len(a.Edges),
					"experiences": len(a.Experiences),
				})
			}
			fmt.Printf("OK: workspace %s, created %s\n", a.Workspace, a.CreatedAt.Format(time.RFC3339))
			fmt.Printf("  %d nodes, %d edges, %d experiences\n", len(a.Nodes), len(a.Edges), len(a.Experiences))
			return nil
		},
	}
}

func newRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace the active workspace's contents with an archive",
		Long: `Restore the active workspace from a backup archive. The restore is
transactional and REPLACES everything in the workspace; it does not
merge. Requires --force to confirm.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			force, _ := cmd.Flags().GetBool("force")

			if !force {
				return fmt.Errorf("restore replaces the workspace's contents; re-run with --force to confirm")
			}

			eng, err := openEngines(root)
			if err != nil {
				return err
			}
			defer eng.Close()

			a, err := backup.Import(context.Background(), eng.ws.Active().Store, args[0])
			if err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}
			if _, err := eng.intel.Reindex(context.Background()); err != nil {
				return fmt.Errorf("workspace restored but route reindex failed: %w", err)
			}

			if jsonOut {
				return emitJSON(map[string]interface{}{
					"workspace":   a.Workspace,
					"nodes":       len(a.Nodes),
					"edges":       len(a.Edges),
					"experiences": len(a.Experiences),
				})
			}
			fmt.Printf("Restored %d nodes, %d edges, %d experiences from %s\n",
				len(a.Nodes), len(a.Edges), len(a.Experiences), args[0])
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Confirm replacing the workspace's contents")

	return cmd
}
