package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mnemohq/mnemo/internal/model"
	"github.com/mnemohq/mnemo/internal/sanitize"
	"github.com/mnemohq/mnemo/internal/store"
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a permanent node to the knowledge graph",
		Long: `Add a permanent node to the knowledge graph.

Newly added nodes are automatically linked to textually similar
existing nodes with weak related-to edges.

Example:
  mnemo add "payments service" --type component --tag billing`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			typ, _ := cmd.Flags().GetString("type")
			namespace, _ := cmd.Flags().GetString("namespace")
			description, _ := cmd.Flags().GetString("description")
			tags, _ := cmd.Flags().GetStringSlice("tag")

			eng, err := openEngines(root)
			if err != nil {
				return err
			}
			defer eng.Close()

			node, err := eng.intel.AddNode(context.Background(), model.Node{
				Name:        sanitize.Name(args[0]),
				Type:        typ,
				Namespace:   namespace,
				Description: sanitize.Content(description),
				Tags:        tags,
			})
			if err != nil {
				return err
			}

			if jsonOut {
				return emitJSON(node)
			}
			fmt.Printf("Added node %s (%s) in namespace %s\n", node.ID, node.Name, node.Namespace)
			return nil
		},
	}

	cmd.Flags().String("type", "", "Node type, e.g. concept, component, convention (required)")
	cmd.Flags().String("namespace", "", "Namespace (default: knowledge)")
	cmd.Flags().String("description", "", "Longer description")
	cmd.Flags().StringSlice("tag", nil, "Tag (repeatable)")
	cmd.MarkFlagRequired("type")

	return cmd
}

func newConnectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect <source> <target> <type>",
		Short: "Create or update a typed edge between two nodes",
		Long: `Create a typed edge between two knowledge nodes. Reconnecting the
same pair with the same type overwrites the edge's weight.

Example:
  mnemo connect n-a1b2c3d4 n-e5f6a7b8 depends-on --weight 0.8`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			weight, _ := cmd.Flags().GetFloat64("weight")

			eng, err := openEngines(root)
			if err != nil {
				return err
			}
			defer eng.Close()

			edge, err := eng.ws.Active().Graph.Connect(context.Background(), model.Edge{
				SourceID: args[0],
				TargetID: args[1],
				Type:     args[2],
				Weight:   weight,
			})
			if err != nil {
				return err
			}

			if jsonOut {
				return emitJSON(edge)
			}
			fmt.Printf("Connected %s -[%s %.2f]-> %s\n", edge.SourceID, edge.Type, edge.Weight, edge.TargetID)
			return nil
		},
	}

	cmd.Flags().Float64("weight", 0, "Relationship strength 0-1 (default 1)")

	return cmd
}

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [text]",
		Short: "Search knowledge nodes by text, namespace, type, or tags",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			namespace, _ := cmd.Flags().GetString("namespace")
			typ, _ := cmd.Flags().GetString("type")
			tags, _ := cmd.Flags().GetStringSlice("tag")
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")

			text := ""
			if len(args) > 0 {
				text = args[0]
			}

			eng, err := openEngines(root)
			if err != nil {
				return err
			}
			defer eng.Close()

			nodes, err := eng.ws.Active().Graph.Query(context.Background(), store.NodeQuery{
				Text:      text,
				Namespace: namespace,
				Type:      typ,
				Tags:      tags,
				Limit:     limit,
				Offset:    offset,
			})
			if err != nil {
				return err
			}

			if jsonOut {
				return emitJSON(map[string]interface{}{"nodes": nodes, "count": len(nodes)})
			}
			if len(nodes) == 0 {
				fmt.Println("No nodes found.")
				return nil
			}
			for _, n := range nodes {
				fmt.Printf("%s  %s (%s, %s)\n", n.ID, n.Name, n.Type, n.Namespace)
			}
			return nil
		},
	}

	cmd.Flags().String("namespace", "", "Restrict to a namespace")
	cmd.Flags().String("type", "", "Restrict to a node type")
	cmd.Flags().StringSlice("tag", nil, "Require this tag (repeatable)")
	cmd.Flags().Int("limit", 0, "Maximum results (1-50, default 10)")
	cmd.Flags().Int("offset", 0, "Results to skip, for paging")

	return cmd
}

func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <node-id>",
		Short: "Update a knowledge node's mutable fields",
		Long: `Update a node's name, description, or tags. Flags that are not set
leave the field unchanged.

Example:
  mnemo update n-a1b2c3d4 --description "rotates certs via ACME"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")

			var u store.NodeUpdate
			if cmd.Flags().Changed("name") {
				name, _ := cmd.Flags().GetString("name")
				name = sanitize.Name(name)
				u.Name = &name
			}
			if cmd.Flags().Changed("description") {
				description, _ := cmd.Flags().GetString("description")
				description = sanitize.Content(description)
				u.Description = &description
			}
			if cmd.Flags().Changed("tag") {
				tags, _ := cmd.Flags().GetStringSlice("tag")
				u.Tags = &tags
			}

			eng, err := openEngines(root)
			if err != nil {
				return err
			}
			defer eng.Close()

			node, err := eng.ws.Active().Graph.UpdateNode(context.Background(), args[0], u)
			if err != nil {
				return err
			}

			if jsonOut {
				return emitJSON(node)
			}
			fmt.Printf("Updated node %s (%s)\n", node.ID, node.Name)
			return nil
		},
	}

	cmd.Flags().String("name", "", "New name")
	cmd.Flags().String("description", "", "New description")
	cmd.Flags().StringSlice("tag", nil, "Replacement tag set (repeatable)")

	return cmd
}

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <node-id>",
		Short: "Soft-delete a knowledge node, or restore a removed one",
		Long: `Soft-delete a knowledge node. Removed nodes vanish from queries and
traversals but keep their edges, and can be brought back with
--restore.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			restore, _ := cmd.Flags().GetBool("restore")

			eng, err := openEngines(root)
			if err != nil {
				return err
			}
			defer eng.Close()

			g := eng.ws.Active().Graph
			ctx := context.Background()
			if restore {
				if err := g.RestoreNode(ctx, args[0]); err != nil {
					return err
				}
			} else if err := g.RemoveNode(ctx, args[0]); err != nil {
				return err
			}

			if jsonOut {
				return emitJSON(map[string]interface{}{"node_id": args[0], "restored": restore})
			}
			if restore {
				fmt.Printf("Restored node %s\n", args[0])
			} else {
				fmt.Printf("Removed node %s (restorable with --restore)\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().Bool("restore", false, "Restore a previously removed node")

	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report workspace statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")

			eng, err := openEngines(root)
			if err != nil {
				return err
			}
			defer eng.Close()

			active := eng.ws.Active()
			stats, err := active.Graph.Status(context.Background())
			if err != nil {
				return err
			}

			if jsonOut {
				return emitJSON(map[string]interface{}{"workspace": active.Name, "stats": stats})
			}
			fmt.Printf("Workspace: %s\n", active.Name)
			fmt.Printf("  Nodes:       %d\n", stats.Nodes)
			fmt.Printf("  Edges:       %d\n", stats.Edges)
			fmt.Printf("  Experiences: %d\n", stats.Experiences)
			fmt.Printf("  Routes:      %d\n", stats.Routes)
			if len(stats.PerNamespace) > 0 {
				fmt.Println("  Per namespace:")
				namespaces := make([]string, 0, len(stats.PerNamespace))
				for ns := range stats.PerNamespace {
					namespaces = append(namespaces, ns)
				}
				sort.Strings(namespaces)
				for _, ns := range namespaces {
					fmt.Printf("    %s: %d\n", ns, stats.PerNamespace[ns])
				}
			}
			return nil
		},
	}
}
