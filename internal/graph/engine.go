// Package graph implements the typed knowledge graph: permanent nodes,
// weighted directed edges, soft deletion, full-text query, and bounded
// traversal.
package graph

import (
	"context"
	"log/slog"
	"time"

	"github.com/mnemohq/mnemo/internal/fault"
	"github.com/mnemohq/mnemo/internal/model"
	"github.com/mnemohq/mnemo/internal/store"
)

const (
	// RelatedEdgeType is the edge type written by auto-linking.
	RelatedEdgeType = "related-to"

	// autoLinkWeight marks auto-created edges as weaker than explicit ones.
	autoLinkWeight = 0.5

	// autoLinkLimit caps how many candidates auto-linking considers.
	autoLinkLimit = 5

	maxQueryLimit = 50
	defaultLimit  = 10
)

// Engine exposes graph operations over a workspace store.
type Engine struct {
	store store.Store
	log   *slog.Logger
	now   func() time.Time
}

// New creates a graph engine.
func New(st store.Store, log *slog.Logger) *Engine {
	return &Engine{store: st, log: log, now: time.Now}
}

// AddNode validates and stores a new node, then auto-links it to
// textually similar existing nodes. The stored node is returned with its
// generated identifier and timestamps.
func (e *Engine) AddNode(ctx context.Context, n model.Node) (*model.Node, error) {
	if n.Type == "" {
		return nil, fault.InvalidArgument("node type is required")
	}
	if n.Name == "" {
		return nil, fault.InvalidArgument("node name is required")
	}
	if n.Namespace == "" {
		n.Namespace = model.DefaultNamespace
	}
	if n.ID == "" {
		n.ID = model.NewID()
	}
	n.CreatedAt = e.now().UTC()
	n.UpdatedAt = nil
	n.DeletedAt = nil

	if err := e.store.InsertNode(ctx, n); err != nil {
		return nil, err
	}

	e.autoLink(ctx, n)
	return &n, nil
}

// autoLink finds nodes whose text matches the new node's name and tags
// and connects them with weak related-to edges. Failures are logged and
// swallowed; the node itself is already stored.
func (e *Engine) autoLink(ctx context.Context, n model.Node) {
	text := n.Name
	for _, tag := range n.Tags {
		text += " " + tag
	}

	candidates, err := e.store.QueryNodes(ctx, store.NodeQuery{
		Text:      text,
		Namespace: n.Namespace,
		Limit:     autoLinkLimit + 1, // the new node may match itself
	})
	if err != nil {
		e.log.Debug("auto-link query failed", "node", n.ID, "error", err)
		return
	}

	linked := 0
	for _, c := range candidates {
		if c.ID == n.ID || linked >= autoLinkLimit {
			continue
		}
		edge := model.Edge{
			SourceID:  n.ID,
			TargetID:  c.ID,
			Type:      RelatedEdgeType,
			Weight:    autoLinkWeight,
			CreatedAt: e.now().UTC(),
		}
		if err := e.store.UpsertEdge(ctx, edge); err != nil {
			e.log.Debug("auto-link edge failed", "source", n.ID, "target", c.ID, "error", err)
			continue
		}
		linked++
	}
	if linked > 0 {
		e.log.Debug("auto-linked node", "node", n.ID, "edges", linked)
	}
}

// Node returns a live node by id.
func (e *Engine) Node(ctx context.Context, id string) (*model.Node, error) {
	if id == "" {
		return nil, fault.InvalidArgument("node id is required")
	}
	return e.store.GetNode(ctx, id)
}

// UpdateNode applies a partial update to a live node.
func (e *Engine) UpdateNode(ctx context.Context, id string, u store.NodeUpdate) (*model.Node, error) {
	if id == "" {
		return nil, fault.InvalidArgument("node id is required")
	}
	if u.Name != nil && *u.Name == "" {
		return nil, fault.InvalidArgument("node name must not be empty")
	}
	return e.store.UpdateNode(ctx, id, u)
}

// RemoveNode soft-deletes a node. Its edges stay in place so a restore
// brings the connections back.
func (e *Engine) RemoveNode(ctx context.Context, id string) error {
	if id == "" {
		return fault.InvalidArgument("node id is required")
	}
	return e.store.SoftDeleteNode(ctx, id)
}

// RestoreNode reverses a soft delete.
func (e *Engine) RestoreNode(ctx context.Context, id string) error {
	if id == "" {
		return fault.InvalidArgument("node id is required")
	}
	return e.store.RestoreNode(ctx, id)
}

// Connect validates both endpoints and upserts an edge between them. A
// repeated (source, target, type) overwrites weight and properties. A
// zero weight takes the default.
func (e *Engine) Connect(ctx context.Context, edge model.Edge) (*model.Edge, error) {
	if edge.SourceID == "" || edge.TargetID == "" {
		return nil, fault.InvalidArgument("edge requires source and target ids")
	}
	if edge.SourceID == edge.TargetID {
		return nil, fault.InvalidArgument("edge cannot connect a node to itself")
	}
	if edge.Type == "" {
		return nil, fault.InvalidArgument("edge type is required")
	}
	if edge.Weight == 0 {
		edge.Weight = model.DefaultEdgeWeight
	}
	if edge.Weight < 0 || edge.Weight > 1 {
		return nil, fault.InvalidArgument("edge weight must be between 0 and 1, got %v", edge.Weight)
	}

	// Both endpoints must be live.
	if _, err := e.store.GetNode(ctx, edge.SourceID); err != nil {
		return nil, err
	}
	if _, err := e.store.GetNode(ctx, edge.TargetID); err != nil {
		return nil, err
	}

	edge.CreatedAt = e.now().UTC()
	if err := e.store.UpsertEdge(ctx, edge); err != nil {
		return nil, err
	}
	return &edge, nil
}

// Disconnect removes a single edge.
func (e *Engine) Disconnect(ctx context.Context, sourceID, targetID, edgeType string) error {
	if sourceID == "" || targetID == "" || edgeType == "" {
		return fault.InvalidArgument("source, target, and type are required")
	}
	return e.store.DeleteEdge(ctx, sourceID, targetID, edgeType)
}

// Edges returns all edges touching the node, in both directions.
func (e *Engine) Edges(ctx context.Context, nodeID string) ([]model.Edge, error) {
	if nodeID == "" {
		return nil, fault.InvalidArgument("node id is required")
	}

	out, err := e.store.GetEdges(ctx, store.EdgeFilter{SourceID: nodeID})
	if err != nil {
		return nil, err
	}
	in, err := e.store.GetEdges(ctx, store.EdgeFilter{TargetID: nodeID})
	if err != nil {
		return nil, err
	}
	return append(out, in...), nil
}

// Query runs a filtered, optionally full-text, node search. The limit is
// clamped to [1, 50] with a default of 10.
func (e *Engine) Query(ctx context.Context, q store.NodeQuery) ([]model.Node, error) {
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxQueryLimit {
		q.Limit = maxQueryLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return e.store.QueryNodes(ctx, q)
}

// Status reports workspace-level counts.
func (e *Engine) Status(ctx context.Context) (store.Stats, error) {
	return e.store.Stats(ctx)
}
