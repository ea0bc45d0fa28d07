package intel

import (
	"context"
	"sort"
	"time"

	"github.com/mnemohq/mnemo/internal/fault"
	"github.com/mnemohq/mnemo/internal/model"
	"github.com/mnemohq/mnemo/internal/store"
	"github.com/mnemohq/mnemo/internal/workspace"
)

const (
	// graphHitRelevance ranks permanent nodes at full strength; they do
	// not decay.
	graphHitRelevance = 1.0

	// crossrefMinRelevance drops long-dead experiences from
	// cross-workspace results.
	crossrefMinRelevance = 0.1
)

// RecallHit is one merged recall result: either a graph node or an
// experience, never both.
type RecallHit struct {
	Kind       string            `json:"kind"` // "node" or "experience"
	Node       *model.Node       `json:"node,omitempty"`
	Experience *model.Experience `json:"experience,omitempty"`
	Relevance  float64           `json:"relevance"`
	Workspace  string            `json:"workspace,omitempty"`
}

// Recall merges a graph text query with an experience relevance search
// over the active workspace. Experiences already promoted to a returned
// node are dropped as duplicates. Results are ranked by relevance,
// recency breaking ties, and hits below minRelevance are filtered.
func (l *Layer) Recall(ctx context.Context, topic string, limit int, minRelevance float64) ([]RecallHit, error) {
	if minRelevance < 0 {
		return nil, fault.InvalidArgument("min relevance must be non-negative, got %v", minRelevance)
	}
	limit = clampLimit(limit)

	hits, err := l.recallIn(ctx, l.ws.Active(), topic, limit, minRelevance)
	if err != nil {
		return nil, err
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Crossref runs the recall retrieval path across every configured
// workspace and merges the results, tagging each hit with its source
// workspace. With a single workspace it degrades to a plain recall.
func (l *Layer) Crossref(ctx context.Context, problem string, limit int) ([]RecallHit, error) {
	limit = clampLimit(limit)

	var merged []RecallHit
	for _, h := range l.ws.All() {
		hits, err := l.recallIn(ctx, h, problem, limit, crossrefMinRelevance)
		if err != nil {
			// A broken secondary workspace should not sink the whole
			// lookup.
			l.log.Warn("crossref workspace failed", "workspace", h.Name, "error", err)
			continue
		}
		for i := range hits {
			hits[i].Workspace = h.Name
		}
		merged = append(merged, hits...)
	}

	sortHits(merged)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// recallIn runs the merged retrieval inside one workspace and sweeps
// promotion-eligible experiences on the way out.
func (l *Layer) recallIn(ctx context.Context, h *workspace.Handle, topic string, limit int, minRelevance float64) ([]RecallHit, error) {
	nodes, err := h.Graph.Query(ctx, store.NodeQuery{Text: topic, Limit: limit})
	if err != nil {
		return nil, err
	}

	expHits, err := h.Experience.Search(ctx, store.ExperienceQuery{Text: topic, Limit: limit}, minRelevance)
	if err != nil {
		return nil, err
	}

	l.sweepPromotions(ctx, h, expHits)

	returnedNodes := make(map[string]bool, len(nodes))
	var hits []RecallHit
	for i := range nodes {
		returnedNodes[nodes[i].ID] = true
		if graphHitRelevance < minRelevance {
			continue
		}
		hits = append(hits, RecallHit{Kind: "node", Node: &nodes[i], Relevance: graphHitRelevance})
	}

	for i := range expHits {
		exp := expHits[i].Experience
		if exp.Promoted() && returnedNodes[exp.PromotedToNodeID] {
			continue // the node already represents this memory
		}
		hits = append(hits, RecallHit{Kind: "experience", Experience: &expHits[i].Experience, Relevance: expHits[i].Relevance})
	}

	sortHits(hits)
	return hits, nil
}

// sortHits orders by relevance descending, then recency descending.
func sortHits(hits []RecallHit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Relevance != hits[j].Relevance {
			return hits[i].Relevance > hits[j].Relevance
		}
		return hitTime(hits[i]).After(hitTime(hits[j]))
	})
}

func hitTime(h RecallHit) time.Time {
	if h.Node != nil {
		return h.Node.CreatedAt
	}
	if h.Experience != nil {
		return h.Experience.CreatedAt
	}
	return time.Time{}
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 10
	case limit > 50:
		return 50
	}
	return limit
}
