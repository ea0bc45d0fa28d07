// Package router maintains the keyword route index: a derived cache
// mapping extracted keywords to node id sets, used to resolve free text
// into a relevant subgraph without a full search.
package router

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/mnemohq/mnemo/internal/model"
	"github.com/mnemohq/mnemo/internal/store"
)

const (
	// DefaultMinConfidence filters route entries too weak to be useful.
	DefaultMinConfidence = 0.3

	// fallbackConfidence is assigned to nodes found by the full-text
	// fallback when the route index has no hit.
	fallbackConfidence = 0.5

	// confidenceFloor keeps heavily shared keywords from vanishing
	// entirely.
	confidenceFloor = 0.1
)

// ResolvedNode is one routed node with the confidence of the strongest
// keyword that reached it.
type ResolvedNode struct {
	Node       model.Node `json:"node"`
	Confidence float64    `json:"confidence"`
}

// Router indexes nodes by keyword and resolves free text to nodes.
type Router struct {
	store         store.Store
	log           *slog.Logger
	maxKeywords   int
	minConfidence float64
}

// Options tunes a Router. Zero values take defaults.
type Options struct {
	MaxKeywords   int
	MinConfidence float64
}

// New creates a router.
func New(st store.Store, log *slog.Logger, opts Options) *Router {
	if opts.MaxKeywords <= 0 {
		opts.MaxKeywords = DefaultMaxKeywords
	}
	if opts.MinConfidence <= 0 {
		opts.MinConfidence = DefaultMinConfidence
	}
	return &Router{
		store:         st,
		log:           log,
		maxKeywords:   opts.MaxKeywords,
		minConfidence: opts.MinConfidence,
	}
}

// Index extracts keywords from the node's name, description, and tags
// and upserts a route entry per keyword. Confidence is recomputed from
// keyword specificity: the fewer nodes a keyword maps to, the higher
// its confidence, 1/sqrt(n) with a floor.
func (r *Router) Index(ctx context.Context, n model.Node) error {
	text := n.Name + " " + n.Description
	for _, tag := range n.Tags {
		text += " " + tag
	}

	for _, kw := range ExtractKeywords(text, r.maxKeywords) {
		existing, err := r.store.GetRoutes(ctx, []string{kw})
		if err != nil {
			return err
		}

		var ids []string
		if len(existing) > 0 {
			ids = existing[0].NodeIDs
		}
		if containsID(ids, n.ID) {
			continue
		}
		ids = append(ids, n.ID)

		route := model.Route{
			Keyword:    kw,
			NodeIDs:    ids,
			Confidence: specificity(len(ids)),
		}
		if err := r.store.UpsertRoute(ctx, route); err != nil {
			return err
		}
	}
	return nil
}

// Resolve extracts keywords from text, unions their route entries, and
// returns matching live nodes ranked by confidence. Entries below the
// minimum confidence are skipped. When the index yields nothing, the
// second return value is false and the caller should fall back to
// full-text search; FallbackConfidence is the confidence to attach to
// those results.
func (r *Router) Resolve(ctx context.Context, text string, limit int) ([]ResolvedNode, bool, error) {
	if limit <= 0 {
		limit = 10
	}

	keywords := ExtractKeywords(text, r.maxKeywords)
	if len(keywords) == 0 {
		return nil, false, nil
	}

	routes, err := r.store.GetRoutes(ctx, keywords)
	if err != nil {
		return nil, false, err
	}

	// Each node keeps the confidence of its strongest keyword.
	scores := make(map[string]float64)
	for _, route := range routes {
		if route.Confidence < r.minConfidence {
			continue
		}
		for _, id := range route.NodeIDs {
			if route.Confidence > scores[id] {
				scores[id] = route.Confidence
			}
		}
	}
	if len(scores) == 0 {
		return nil, false, nil
	}

	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})

	resolved := make([]ResolvedNode, 0, limit)
	for _, id := range ids {
		if len(resolved) >= limit {
			break
		}
		node, err := r.store.GetNode(ctx, id)
		if err != nil {
			// Deleted since indexing; routes are a cache, stale entries
			// are expected.
			continue
		}
		resolved = append(resolved, ResolvedNode{Node: *node, Confidence: scores[id]})
	}
	return resolved, len(resolved) > 0, nil
}

// FallbackConfidence is the confidence attached to full-text fallback
// results.
func (r *Router) FallbackConfidence() float64 { return fallbackConfidence }

// Rebuild discards the route table and re-indexes every live node.
func (r *Router) Rebuild(ctx context.Context, nodes []model.Node) error {
	if err := r.store.DeleteRoutes(ctx); err != nil {
		return err
	}
	for _, n := range nodes {
		if err := r.Index(ctx, n); err != nil {
			return err
		}
	}
	r.log.Info("rebuilt route index", "nodes", len(nodes))
	return nil
}

// specificity maps the number of nodes sharing a keyword to a
// confidence: a unique keyword scores 1.0, shared keywords fall off as
// 1/sqrt(n) down to the floor.
func specificity(n int) float64 {
	if n <= 1 {
		return 1.0
	}
	c := 1 / math.Sqrt(float64(n))
	if c < confidenceFloor {
		return confidenceFloor
	}
	return c
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
