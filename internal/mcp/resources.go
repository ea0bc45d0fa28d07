package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerResources registers MCP resources for auto-loading into context.
func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         "mnemo://workspace/status",
		Name:        "mnemo-workspace-status",
		Description: "A summary of the knowledge stored in the active workspace.",
		MIMEType:    "text/markdown",
	}, s.handleStatusResource)

	// Expansion template for retrieving a node's full details, used
	// after a summary-level mnemo_context response.
	s.server.AddResourceTemplate(&sdk.ResourceTemplate{
		URITemplate: "mnemo://nodes/{id}",
		Name:        "mnemo-node-expand",
		Description: "Get full details for a specific knowledge node, including its edges.",
		MIMEType:    "text/markdown",
	}, s.handleNodeResource)
}

// handleStatusResource renders workspace statistics as markdown.
func (s *Server) handleStatusResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	active := s.ws.Active()
	stats, err := active.Graph.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace stats: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Workspace: %s\n\n", active.Name))
	sb.WriteString(fmt.Sprintf("- Nodes: %d\n", stats.Nodes))
	sb.WriteString(fmt.Sprintf("- Edges: %d\n", stats.Edges))
	sb.WriteString(fmt.Sprintf("- Experiences: %d\n", stats.Experiences))
	sb.WriteString(fmt.Sprintf("- Routes: %d\n", stats.Routes))

	if len(stats.PerNamespace) > 0 {
		sb.WriteString("\n## Nodes per namespace\n\n")
		namespaces := make([]string, 0, len(stats.PerNamespace))
		for ns := range stats.PerNamespace {
			namespaces = append(namespaces, ns)
		}
		sort.Strings(namespaces)
		for _, ns := range namespaces {
			sb.WriteString(fmt.Sprintf("- %s: %d\n", ns, stats.PerNamespace[ns]))
		}
	}

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      req.Params.URI,
				MIMEType: "text/markdown",
				Text:     sb.String(),
			},
		},
	}, nil
}

// handleNodeResource returns full details for a specific node.
func (s *Server) handleNodeResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	uri := req.Params.URI
	prefix := "mnemo://nodes/"
	if !strings.HasPrefix(uri, prefix) {
		return nil, fmt.Errorf("invalid URI format: %s", uri)
	}
	nodeID := strings.TrimPrefix(uri, prefix)
	if nodeID == "" {
		return nil, fmt.Errorf("node ID is required")
	}

	active := s.ws.Active()
	node, err := active.Graph.Node(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load node: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", node.Name))
	sb.WriteString(fmt.Sprintf("**ID:** %s\n", node.ID))
	sb.WriteString(fmt.Sprintf("**Type:** %s\n", node.Type))
	sb.WriteString(fmt.Sprintf("**Namespace:** %s\n", node.Namespace))
	if len(node.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("**Tags:** %s\n", strings.Join(node.Tags, ", ")))
	}

	if node.Description != "" {
		sb.WriteString("\n## Description\n\n")
		sb.WriteString(node.Description)
		sb.WriteString("\n")
	}

	if len(node.Properties) > 0 {
		sb.WriteString("\n## Properties\n\n")
		keys := make([]string, 0, len(node.Properties))
		for k := range node.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("- **%s:** %v\n", k, node.Properties[k]))
		}
	}

	edges, err := active.Graph.Edges(ctx, node.ID)
	if err == nil && len(edges) > 0 {
		sb.WriteString("\n## Edges\n\n")
		for _, e := range edges {
			sb.WriteString(fmt.Sprintf("- %s -[%s %.2f]-> %s\n", e.SourceID, e.Type, e.Weight, e.TargetID))
		}
	}

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      uri,
				MIMEType: "text/markdown",
				Text:     sb.String(),
			},
		},
	}, nil
}
