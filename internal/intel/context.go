package intel

import (
	"context"

	"github.com/mnemohq/mnemo/internal/fault"
	"github.com/mnemohq/mnemo/internal/graph"
	"github.com/mnemohq/mnemo/internal/model"
	"github.com/mnemohq/mnemo/internal/router"
	"github.com/mnemohq/mnemo/internal/store"
)

// Detail selects how much of each node a context lookup returns.
type Detail string

const (
	// DetailSummary returns only {id, name, type} per node, keeping the
	// first response small so the caller can decide what to expand.
	DetailSummary Detail = "summary"

	// DetailFull returns complete node records plus a bounded set of
	// connected edges.
	DetailFull Detail = "full"
)

// maxContextEdges bounds the edges attached to each full-detail node.
const maxContextEdges = 10

// ContextNode is one routed node at the requested detail level.
type ContextNode struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`

	// Full detail only.
	Namespace   string         `json:"namespace,omitempty"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
	Edges       []model.Edge   `json:"edges,omitempty"`
}

// ContextResult is the subgraph resolved for a keyword query.
type ContextResult struct {
	Query     string        `json:"query"`
	Detail    Detail        `json:"detail"`
	FromIndex bool          `json:"from_index"`
	Nodes     []ContextNode `json:"nodes"`
}

// Context resolves free text through the route index, falling back to a
// graph full-text query when the index has no hit, and shapes the
// result by detail level.
func (l *Layer) Context(ctx context.Context, keywords string, detail Detail, limit int) (*ContextResult, error) {
	if detail == "" {
		detail = DetailSummary
	}
	if detail != DetailSummary && detail != DetailFull {
		return nil, fault.InvalidArgument("unknown detail level %q", detail)
	}
	limit = clampLimit(limit)

	h := l.ws.Active()
	resolved, fromIndex, err := h.Router.Resolve(ctx, keywords, limit)
	if err != nil {
		return nil, err
	}

	if !fromIndex {
		nodes, err := h.Graph.Query(ctx, store.NodeQuery{Text: keywords, Limit: limit})
		if err != nil {
			return nil, err
		}
		for i := range nodes {
			resolved = append(resolved, router.ResolvedNode{
				Node:       nodes[i],
				Confidence: h.Router.FallbackConfidence(),
			})
		}
	}

	result := &ContextResult{Query: keywords, Detail: detail, FromIndex: fromIndex}
	for _, r := range resolved {
		cn := ContextNode{
			ID:         r.Node.ID,
			Name:       r.Node.Name,
			Type:       r.Node.Type,
			Confidence: r.Confidence,
		}
		if detail == DetailFull {
			cn.Namespace = r.Node.Namespace
			cn.Description = r.Node.Description
			cn.Tags = r.Node.Tags
			cn.Properties = r.Node.Properties

			edges, err := h.Graph.Edges(ctx, r.Node.ID)
			if err != nil {
				return nil, err
			}
			if len(edges) > maxContextEdges {
				edges = edges[:maxContextEdges]
			}
			cn.Edges = edges
		}
		result.Nodes = append(result.Nodes, cn)
	}
	return result, nil
}

// Related returns the neighborhood of a node via bounded traversal.
// An empty mode walks breadth-first.
func (l *Layer) Related(ctx context.Context, nodeID string, depth int, edgeType string, mode graph.TraversalMode) ([]graph.TraversalHop, error) {
	return l.ws.Active().Graph.Traverse(ctx, nodeID, graph.TraversalOptions{
		Depth:    depth,
		EdgeType: edgeType,
		Mode:     mode,
	})
}
