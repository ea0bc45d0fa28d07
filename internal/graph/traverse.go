package graph

import (
	"context"

	"github.com/mnemohq/mnemo/internal/fault"
	"github.com/mnemohq/mnemo/internal/model"
	"github.com/mnemohq/mnemo/internal/store"
)

// TraversalMode selects the visit order for Traverse.
type TraversalMode string

const (
	ModeBFS TraversalMode = "bfs"
	ModeDFS TraversalMode = "dfs"
)

const (
	// MaxTraversalDepth bounds traversal so dense graphs cannot blow up
	// a single call.
	MaxTraversalDepth = 5
)

// TraversalHop is one visited node with its distance from the start.
type TraversalHop struct {
	Node  model.Node `json:"node"`
	Depth int        `json:"depth"`
}

// TraversalOptions tunes Traverse. Depth defaults to 1; EdgeType empty
// means all edge types; Mode defaults to BFS.
type TraversalOptions struct {
	Depth    int
	EdgeType string
	Mode     TraversalMode
}

// Traverse walks the graph from startID following edges in both
// directions, visiting each node at most once. The start node itself is
// included at depth 0, so a cycle A-B-C returns exactly those three
// nodes regardless of depth. Soft-deleted neighbors are skipped.
func (e *Engine) Traverse(ctx context.Context, startID string, opts TraversalOptions) ([]TraversalHop, error) {
	if startID == "" {
		return nil, fault.InvalidArgument("start node id is required")
	}
	if opts.Depth == 0 {
		opts.Depth = 1
	}
	if opts.Depth < 1 || opts.Depth > MaxTraversalDepth {
		return nil, fault.InvalidArgument("depth must be between 1 and %d, got %d", MaxTraversalDepth, opts.Depth)
	}
	if opts.Mode == "" {
		opts.Mode = ModeBFS
	}
	if opts.Mode != ModeBFS && opts.Mode != ModeDFS {
		return nil, fault.InvalidArgument("unknown traversal mode %q", opts.Mode)
	}

	start, err := e.store.GetNode(ctx, startID)
	if err != nil {
		return nil, err
	}

	visited := map[string]bool{startID: true}
	result := []TraversalHop{{Node: *start, Depth: 0}}

	type frame struct {
		id    string
		depth int
	}
	frontier := []frame{{startID, 0}}

	for len(frontier) > 0 {
		var cur frame
		if opts.Mode == ModeBFS {
			cur, frontier = frontier[0], frontier[1:]
		} else {
			cur, frontier = frontier[len(frontier)-1], frontier[:len(frontier)-1]
		}
		if cur.depth >= opts.Depth {
			continue
		}

		neighbors, err := e.neighborIDs(ctx, cur.id, opts.EdgeType)
		if err != nil {
			return nil, err
		}

		for _, id := range neighbors {
			if visited[id] {
				continue
			}
			visited[id] = true

			node, err := e.store.GetNode(ctx, id)
			if err != nil {
				if fault.IsNotFound(err) {
					continue // tombstoned neighbor
				}
				return nil, err
			}
			result = append(result, TraversalHop{Node: *node, Depth: cur.depth + 1})
			frontier = append(frontier, frame{id, cur.depth + 1})
		}
	}
	return result, nil
}

// neighborIDs lists the ids adjacent to nodeID across both edge
// directions, optionally restricted to one edge type.
func (e *Engine) neighborIDs(ctx context.Context, nodeID, edgeType string) ([]string, error) {
	out, err := e.store.GetEdges(ctx, store.EdgeFilter{SourceID: nodeID, Type: edgeType})
	if err != nil {
		return nil, err
	}
	in, err := e.store.GetEdges(ctx, store.EdgeFilter{TargetID: nodeID, Type: edgeType})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(out)+len(in))
	for _, edge := range out {
		ids = append(ids, edge.TargetID)
	}
	for _, edge := range in {
		ids = append(ids, edge.SourceID)
	}
	return ids, nil
}
