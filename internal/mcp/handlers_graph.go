package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mnemohq/mnemo/internal/backup"
	"github.com/mnemohq/mnemo/internal/model"
	"github.com/mnemohq/mnemo/internal/pathutil"
	"github.com/mnemohq/mnemo/internal/ratelimit"
	"github.com/mnemohq/mnemo/internal/sanitize"
	"github.com/mnemohq/mnemo/internal/store"
)

// handleAdd implements the mnemo_add tool.
func (s *Server) handleAdd(ctx context.Context, req *sdk.CallToolRequest, args AddInput) (_ *sdk.CallToolResult, _ AddOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("mnemo_add", start, retErr, sanitizeToolParams(map[string]interface{}{
			"name": args.Name, "type": args.Type, "namespace": args.Namespace, "tags": args.Tags,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "mnemo_add"); err != nil {
		return nil, AddOutput{}, err
	}
	if err := s.requireWriter("mnemo_add"); err != nil {
		return nil, AddOutput{}, err
	}

	node, err := s.intel.AddNode(ctx, model.Node{
		Name:        sanitize.Name(args.Name),
		Type:        args.Type,
		Namespace:   args.Namespace,
		Description: sanitize.Content(args.Description),
		Tags:        args.Tags,
		Properties:  args.Properties,
	})
	if err != nil {
		return nil, AddOutput{}, err
	}
	return nil, AddOutput{
		Node:    node,
		Message: fmt.Sprintf("Added node %s (%s)", node.ID, node.Name),
	}, nil
}

// handleConnect implements the mnemo_connect tool.
func (s *Server) handleConnect(ctx context.Context, req *sdk.CallToolRequest, args ConnectInput) (_ *sdk.CallToolResult, _ ConnectOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("mnemo_connect", start, retErr, sanitizeToolParams(map[string]interface{}{
			"source": args.Source, "target": args.Target, "type": args.Type, "weight": args.Weight,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "mnemo_connect"); err != nil {
		return nil, ConnectOutput{}, err
	}
	if err := s.requireWriter("mnemo_connect"); err != nil {
		return nil, ConnectOutput{}, err
	}

	edge, err := s.ws.Active().Graph.Connect(ctx, model.Edge{
		SourceID:   args.Source,
		TargetID:   args.Target,
		Type:       args.Type,
		Weight:     args.Weight,
		Properties: args.Properties,
	})
	if err != nil {
		return nil, ConnectOutput{}, err
	}
	return nil, ConnectOutput{
		Edge:    edge,
		Message: fmt.Sprintf("Connected %s -[%s]-> %s", edge.SourceID, edge.Type, edge.TargetID),
	}, nil
}

// handleQuery implements the mnemo_query tool.
func (s *Server) handleQuery(ctx context.Context, req *sdk.CallToolRequest, args QueryInput) (_ *sdk.CallToolResult, _ QueryOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("mnemo_query", start, retErr, sanitizeToolParams(map[string]interface{}{
			"namespace": args.Namespace, "type": args.Type, "limit": args.Limit,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "mnemo_query"); err != nil {
		return nil, QueryOutput{}, err
	}

	nodes, err := s.ws.Active().Graph.Query(ctx, store.NodeQuery{
		Text:      args.Text,
		Namespace: args.Namespace,
		Type:      args.Type,
		Tags:      args.Tags,
		Limit:     args.Limit,
		Offset:    args.Offset,
	})
	if err != nil {
		return nil, QueryOutput{}, err
	}
	return nil, QueryOutput{Nodes: nodes, Count: len(nodes)}, nil
}

// handleRemove implements the mnemo_remove tool.
func (s *Server) handleRemove(ctx context.Context, req *sdk.CallToolRequest, args RemoveInput) (_ *sdk.CallToolResult, _ RemoveOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("mnemo_remove", start, retErr, sanitizeToolParams(map[string]interface{}{
			"node_id": args.NodeID, "restore": args.Restore,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "mnemo_remove"); err != nil {
		return nil, RemoveOutput{}, err
	}
	if err := s.requireWriter("mnemo_remove"); err != nil {
		return nil, RemoveOutput{}, err
	}
	if args.NodeID == "" {
		return nil, RemoveOutput{}, fmt.Errorf("'node_id' parameter is required")
	}

	g := s.ws.Active().Graph
	if args.Restore {
		if err := g.RestoreNode(ctx, args.NodeID); err != nil {
			return nil, RemoveOutput{}, err
		}
		return nil, RemoveOutput{
			NodeID: args.NodeID, Restored: true,
			Message: fmt.Sprintf("Restored node %s", args.NodeID),
		}, nil
	}
	if err := g.RemoveNode(ctx, args.NodeID); err != nil {
		return nil, RemoveOutput{}, err
	}
	return nil, RemoveOutput{
		NodeID:  args.NodeID,
		Message: fmt.Sprintf("Removed node %s (restorable with restore=true)", args.NodeID),
	}, nil
}

// handleStatus implements the mnemo_status tool.
func (s *Server) handleStatus(ctx context.Context, req *sdk.CallToolRequest, args StatusInput) (_ *sdk.CallToolResult, _ StatusOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("mnemo_status", start, retErr, nil)
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "mnemo_status"); err != nil {
		return nil, StatusOutput{}, err
	}

	active := s.ws.Active()
	stats, err := active.Graph.Status(ctx)
	if err != nil {
		return nil, StatusOutput{}, err
	}

	var names []string
	for _, h := range s.ws.All() {
		names = append(names, h.Name)
	}
	return nil, StatusOutput{
		Workspace:  active.Name,
		Workspaces: names,
		Stats:      stats,
	}, nil
}

// handleSave implements the mnemo_save tool.
func (s *Server) handleSave(ctx context.Context, req *sdk.CallToolRequest, args SaveInput) (_ *sdk.CallToolResult, _ SaveOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("mnemo_save", start, retErr, sanitizeToolParams(map[string]interface{}{
			"content": args.Content, "type": args.Type, "confidence": args.Confidence,
			"situation": args.Situation, "tags": args.Tags,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "mnemo_save"); err != nil {
		return nil, SaveOutput{}, err
	}
	if err := s.requireWriter("mnemo_save"); err != nil {
		return nil, SaveOutput{}, err
	}
	if args.Content == "" {
		return nil, SaveOutput{}, fmt.Errorf("'content' parameter is required")
	}

	exp, err := s.ws.Active().Experience.Save(ctx,
		model.ExperienceType(args.Type),
		sanitize.Content(args.Content),
		sanitize.Content(args.Situation),
		model.Confidence(args.Confidence),
		args.Tags)
	if err != nil {
		return nil, SaveOutput{}, err
	}
	return nil, SaveOutput{
		Experience: exp,
		Message:    fmt.Sprintf("Saved %s experience %s", exp.Type, exp.ID),
	}, nil
}

// handleSearch implements the mnemo_search tool.
func (s *Server) handleSearch(ctx context.Context, req *sdk.CallToolRequest, args SearchInput) (_ *sdk.CallToolResult, _ SearchOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("mnemo_search", start, retErr, sanitizeToolParams(map[string]interface{}{
			"query": args.Query, "type": args.Type, "limit": args.Limit, "min_relevance": args.MinRelevance,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "mnemo_search"); err != nil {
		return nil, SearchOutput{}, err
	}

	hits, err := s.ws.Active().Experience.Search(ctx, store.ExperienceQuery{
		Text:   args.Query,
		Type:   model.ExperienceType(args.Type),
		Limit:  args.Limit,
		Offset: args.Offset,
	}, args.MinRelevance)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, SearchOutput{Hits: hits, Count: len(hits)}, nil
}

// handlePrune implements the mnemo_prune tool.
func (s *Server) handlePrune(ctx context.Context, req *sdk.CallToolRequest, args PruneInput) (_ *sdk.CallToolResult, _ PruneOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("mnemo_prune", start, retErr, sanitizeToolParams(map[string]interface{}{
			"threshold": args.Threshold,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "mnemo_prune"); err != nil {
		return nil, PruneOutput{}, err
	}
	if err := s.requireAdmin("mnemo_prune"); err != nil {
		return nil, PruneOutput{}, err
	}

	threshold := args.Threshold
	if threshold == 0 {
		threshold = 0.01
	}
	pruned, err := s.ws.Active().Experience.Prune(ctx, threshold)
	if err != nil {
		return nil, PruneOutput{}, err
	}
	return nil, PruneOutput{
		Pruned:  pruned,
		Message: fmt.Sprintf("Pruned %d experiences below relevance %g", pruned, threshold),
	}, nil
}

// backupDir is where archives land when the caller gives no path.
func (s *Server) backupDir() string {
	return filepath.Join(s.root, ".mnemo", "backups")
}

// handleBackup implements the mnemo_backup tool.
func (s *Server) handleBackup(ctx context.Context, req *sdk.CallToolRequest, args BackupInput) (_ *sdk.CallToolResult, _ BackupOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("mnemo_backup", start, retErr, sanitizeToolParams(map[string]interface{}{
			"path": args.Path,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "mnemo_backup"); err != nil {
		return nil, BackupOutput{}, err
	}
	if err := s.requireAdmin("mnemo_backup"); err != nil {
		return nil, BackupOutput{}, err
	}

	path := args.Path
	if path == "" {
		path = filepath.Join(s.backupDir(), backup.Filename(time.Now()))
	} else if err := pathutil.ValidatePath(path, pathutil.AllowedArchiveDirs(s.root)); err != nil {
		return nil, BackupOutput{}, fmt.Errorf("backup path rejected: %w", err)
	}

	active := s.ws.Active()
	if _, err := backup.Export(ctx, active.Store, active.Name, path); err != nil {
		return nil, BackupOutput{}, err
	}
	header, err := backup.ReadHeader(path)
	if err != nil {
		return nil, BackupOutput{}, err
	}
	return nil, BackupOutput{
		Path:            path,
		Checksum:        header.Checksum,
		NodeCount:       header.NodeCount,
		EdgeCount:       header.EdgeCount,
		ExperienceCount: header.ExperienceCount,
	}, nil
}

// handleRestore implements the mnemo_restore tool.
func (s *Server) handleRestore(ctx context.Context, req *sdk.CallToolRequest, args RestoreInput) (_ *sdk.CallToolResult, _ RestoreOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("mnemo_restore", start, retErr, sanitizeToolParams(map[string]interface{}{
			"path": args.Path,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "mnemo_restore"); err != nil {
		return nil, RestoreOutput{}, err
	}
	if err := s.requireAdmin("mnemo_restore"); err != nil {
		return nil, RestoreOutput{}, err
	}
	if args.Path == "" {
		return nil, RestoreOutput{}, fmt.Errorf("'path' parameter is required")
	}
	if err := pathutil.ValidatePath(args.Path, pathutil.AllowedArchiveDirs(s.root)); err != nil {
		return nil, RestoreOutput{}, fmt.Errorf("restore path rejected: %w", err)
	}

	active := s.ws.Active()
	a, err := backup.Import(ctx, active.Store, args.Path)
	if err != nil {
		return nil, RestoreOutput{}, err
	}

	// Archives may predate keyword extraction changes, so the route
	// index is rebuilt from the restored nodes rather than trusted.
	if _, err := s.intel.Reindex(ctx); err != nil {
		return nil, RestoreOutput{}, fmt.Errorf("workspace restored but route reindex failed: %w", err)
	}

	return nil, RestoreOutput{
		Workspace:       a.Workspace,
		NodeCount:       len(a.Nodes),
		EdgeCount:       len(a.Edges),
		ExperienceCount: len(a.Experiences),
		Message:         fmt.Sprintf("Restored %d nodes, %d edges, %d experiences", len(a.Nodes), len(a.Edges), len(a.Experiences)),
	}, nil
}
