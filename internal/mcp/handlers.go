package mcp

import (
	"context"
	"fmt"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mnemohq/mnemo/internal/graph"
	"github.com/mnemohq/mnemo/internal/intel"
	"github.com/mnemohq/mnemo/internal/model"
	"github.com/mnemohq/mnemo/internal/ratelimit"
	"github.com/mnemohq/mnemo/internal/sanitize"
)

// registerTools registers all mnemo MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "mnemo_learn",
		Description: "Store a fact or lesson. High confidence creates a permanent knowledge node, medium and low a decaying experience",
	}, s.handleLearn)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "mnemo_recall",
		Description: "Retrieve knowledge about a topic from the active workspace, ranked by relevance",
	}, s.handleRecall)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "mnemo_crossref",
		Description: "Search every open workspace for knowledge about a problem",
	}, s.handleCrossref)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "mnemo_context",
		Description: "Resolve free text into the relevant knowledge subgraph via the keyword route index",
	}, s.handleContext)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "mnemo_related",
		Description: "Walk the knowledge graph outward from a node and return everything within reach",
	}, s.handleRelated)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "mnemo_add",
		Description: "Add a permanent node to the knowledge graph",
	}, s.handleAdd)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "mnemo_connect",
		Description: "Create or update a typed edge between two knowledge nodes",
	}, s.handleConnect)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "mnemo_query",
		Description: "Search knowledge nodes by text, namespace, type, or tags",
	}, s.handleQuery)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "mnemo_remove",
		Description: "Soft-delete a knowledge node, or restore a previously removed one",
	}, s.handleRemove)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "mnemo_status",
		Description: "Report workspace statistics: node, edge, experience and route counts",
	}, s.handleStatus)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "mnemo_save",
		Description: "Store a decaying experience without the confidence routing of mnemo_learn",
	}, s.handleSave)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "mnemo_search",
		Description: "Search experiences by text or type, with live relevance scores",
	}, s.handleSearch)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "mnemo_prune",
		Description: "Delete experiences whose relevance decayed below a threshold",
	}, s.handlePrune)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "mnemo_backup",
		Description: "Export the active workspace to a checksummed archive file",
	}, s.handleBackup)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "mnemo_restore",
		Description: "Replace the active workspace's contents with an archive file",
	}, s.handleRestore)
}

// handleLearn implements the mnemo_learn tool.
func (s *Server) handleLearn(ctx context.Context, req *sdk.CallToolRequest, args LearnInput) (_ *sdk.CallToolResult, _ LearnOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("mnemo_learn", start, retErr, sanitizeToolParams(map[string]interface{}{
			"content": args.Content, "type": args.Type, "confidence": args.Confidence,
			"situation": args.Situation, "tags": args.Tags,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "mnemo_learn"); err != nil {
		return nil, LearnOutput{}, err
	}
	if err := s.requireWriter("mnemo_learn"); err != nil {
		return nil, LearnOutput{}, err
	}
	if args.Content == "" {
		return nil, LearnOutput{}, fmt.Errorf("'content' parameter is required")
	}
	if args.Type == "" {
		return nil, LearnOutput{}, fmt.Errorf("'type' parameter is required")
	}

	content := sanitize.Content(args.Content)
	situation := sanitize.Content(args.Situation)

	res, err := s.intel.Learn(ctx, content, model.ExperienceType(args.Type), situation,
		model.Confidence(args.Confidence), args.Tags)
	if err != nil {
		return nil, LearnOutput{}, err
	}

	msg := fmt.Sprintf("Stored as decaying experience %s", res.ExperienceID)
	if res.StoredAs == "node" {
		msg = fmt.Sprintf("Stored as permanent node %s with experience %s", res.NodeID, res.ExperienceID)
	}
	return nil, LearnOutput{
		StoredAs:     res.StoredAs,
		NodeID:       res.NodeID,
		ExperienceID: res.ExperienceID,
		Routing:      res.Routing,
		Message:      msg,
	}, nil
}

// handleRecall implements the mnemo_recall tool.
func (s *Server) handleRecall(ctx context.Context, req *sdk.CallToolRequest, args RecallInput) (_ *sdk.CallToolResult, _ RecallOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("mnemo_recall", start, retErr, sanitizeToolParams(map[string]interface{}{
			"topic": args.Topic, "limit": args.Limit, "min_relevance": args.MinRelevance,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "mnemo_recall"); err != nil {
		return nil, RecallOutput{}, err
	}
	if args.Topic == "" {
		return nil, RecallOutput{}, fmt.Errorf("'topic' parameter is required")
	}

	hits, err := s.intel.Recall(ctx, args.Topic, args.Limit, args.MinRelevance)
	if err != nil {
		return nil, RecallOutput{}, err
	}
	return nil, RecallOutput{Hits: hits, Count: len(hits)}, nil
}

// handleCrossref implements the mnemo_crossref tool.
func (s *Server) handleCrossref(ctx context.Context, req *sdk.CallToolRequest, args CrossrefInput) (_ *sdk.CallToolResult, _ RecallOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("mnemo_crossref", start, retErr, sanitizeToolParams(map[string]interface{}{
			"problem": args.Problem, "limit": args.Limit,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "mnemo_crossref"); err != nil {
		return nil, RecallOutput{}, err
	}
	if args.Problem == "" {
		return nil, RecallOutput{}, fmt.Errorf("'problem' parameter is required")
	}

	hits, err := s.intel.Crossref(ctx, args.Problem, args.Limit)
	if err != nil {
		return nil, RecallOutput{}, err
	}
	return nil, RecallOutput{Hits: hits, Count: len(hits)}, nil
}

// handleContext implements the mnemo_context tool.
func (s *Server) handleContext(ctx context.Context, req *sdk.CallToolRequest, args ContextInput) (_ *sdk.CallToolResult, _ ContextOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("mnemo_context", start, retErr, sanitizeToolParams(map[string]interface{}{
			"query": args.Query, "detail": args.Detail, "limit": args.Limit,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "mnemo_context"); err != nil {
		return nil, ContextOutput{}, err
	}
	if args.Query == "" {
		return nil, ContextOutput{}, fmt.Errorf("'query' parameter is required")
	}

	detail := intel.Detail(args.Detail)
	if detail == "" {
		detail = intel.DetailSummary
	}
	res, err := s.intel.Context(ctx, args.Query, detail, args.Limit)
	if err != nil {
		return nil, ContextOutput{}, err
	}
	return nil, ContextOutput{
		Query:     res.Query,
		Detail:    string(res.Detail),
		FromIndex: res.FromIndex,
		Nodes:     res.Nodes,
		Count:     len(res.Nodes),
	}, nil
}

// handleRelated implements the mnemo_related tool.
func (s *Server) handleRelated(ctx context.Context, req *sdk.CallToolRequest, args RelatedInput) (_ *sdk.CallToolResult, _ RelatedOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("mnemo_related", start, retErr, sanitizeToolParams(map[string]interface{}{
			"node_id": args.NodeID, "depth": args.Depth, "edge_type": args.EdgeType, "mode": args.Mode,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "mnemo_related"); err != nil {
		return nil, RelatedOutput{}, err
	}
	if args.NodeID == "" {
		return nil, RelatedOutput{}, fmt.Errorf("'node_id' parameter is required")
	}

	depth := args.Depth
	if depth == 0 {
		depth = 1
	}
	hops, err := s.intel.Related(ctx, args.NodeID, depth, args.EdgeType, graph.TraversalMode(args.Mode))
	if err != nil {
		return nil, RelatedOutput{}, err
	}
	return nil, RelatedOutput{Hops: hops, Count: len(hops)}, nil
}
