// Package intel orchestrates the graph, experience, and router engines
// into the five intelligence operations: learn, recall, crossref,
// context, and related. It owns confidence routing and the
// auto-promotion sweep; it holds no state of its own.
package intel

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mnemohq/mnemo/internal/fault"
	"github.com/mnemohq/mnemo/internal/logging"
	"github.com/mnemohq/mnemo/internal/model"
	"github.com/mnemohq/mnemo/internal/workspace"
)

const (
	// DerivedEdgeType links a learned node to the experience it came from.
	DerivedEdgeType = "derived-from"

	learnTitleLimit   = 60
	promoteTitleLimit = 50
)

// Layer exposes the intelligence operations over a workspace manager.
type Layer struct {
	ws    *workspace.Manager
	log   *slog.Logger
	trace *logging.TraceLogger
}

// New creates an intelligence layer. trace may be nil.
func New(ws *workspace.Manager, log *slog.Logger, trace *logging.TraceLogger) *Layer {
	return &Layer{ws: ws, log: log, trace: trace}
}

// LearnResult reports what learn stored and which path fired.
type LearnResult struct {
	StoredAs     string `json:"stored_as"` // "node" or "experience"
	NodeID       string `json:"node_id,omitempty"`
	ExperienceID string `json:"experience_id"`
	Routing      string `json:"routing"`
}

// Learn stores a fact according to its confidence. High confidence
// yields a permanent node plus an experience joined by a derived-from
// edge; medium and low yield only a decaying experience.
func (l *Layer) Learn(ctx context.Context, content string, typ model.ExperienceType, situation string, confidence model.Confidence, tags []string) (*LearnResult, error) {
	if confidence == "" {
		confidence = model.ConfidenceHigh
	}
	if !confidence.Valid() {
		return nil, fault.InvalidArgument("unknown confidence %q", confidence)
	}

	h := l.ws.Active()
	exp, err := h.Experience.Save(ctx, typ, content, situation, confidence, tags)
	if err != nil {
		return nil, err
	}

	if confidence != model.ConfidenceHigh {
		l.traceEvent(map[string]any{
			"event":         "learn",
			"routing":       "experience-only",
			"experience_id": exp.ID,
			"confidence":    string(confidence),
		})
		return &LearnResult{
			StoredAs:     "experience",
			ExperienceID: exp.ID,
			Routing:      "experience-only: confidence " + string(confidence) + " decays without a permanent node",
		}, nil
	}

	node, err := h.Graph.AddNode(ctx, model.Node{
		Type:        "learned-" + string(typ),
		Name:        title(typ, content, learnTitleLimit),
		Description: content,
		Tags:        tags,
	})
	if err != nil {
		return nil, err
	}

	// The experience is not a graph node, so the provenance edge is
	// written directly rather than through Connect's liveness checks.
	edge := model.Edge{
		SourceID:  node.ID,
		TargetID:  exp.ID,
		Type:      DerivedEdgeType,
		Weight:    model.DefaultEdgeWeight,
		CreatedAt: node.CreatedAt,
	}
	if err := h.Store.UpsertEdge(ctx, edge); err != nil {
		return nil, err
	}

	if err := h.Router.Index(ctx, *node); err != nil {
		l.log.Warn("failed to index learned node", "node", node.ID, "error", err)
	}

	l.traceEvent(map[string]any{
		"event":         "learn",
		"routing":       "node+experience",
		"node_id":       node.ID,
		"experience_id": exp.ID,
	})
	return &LearnResult{
		StoredAs:     "node",
		NodeID:       node.ID,
		ExperienceID: exp.ID,
		Routing:      "node+experience: high confidence earns a permanent node",
	}, nil
}

// AddNode inserts a permanent node and registers its keywords with the
// route index, so context queries reach it immediately.
func (l *Layer) AddNode(ctx context.Context, n model.Node) (*model.Node, error) {
	h := l.ws.Active()
	node, err := h.Graph.AddNode(ctx, n)
	if err != nil {
		return nil, err
	}
	if err := h.Router.Index(ctx, *node); err != nil {
		l.log.Warn("failed to index added node", "node", node.ID, "error", err)
	}
	return node, nil
}

// Reindex rebuilds the route index of the active workspace from its
// live nodes, discarding whatever routes were there. It returns the
// number of nodes indexed.
func (l *Layer) Reindex(ctx context.Context) (int, error) {
	h := l.ws.Active()
	snap, err := h.Store.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	live := make([]model.Node, 0, len(snap.Nodes))
	for _, n := range snap.Nodes {
		if !n.Deleted() {
			live = append(live, n)
		}
	}
	if err := h.Router.Rebuild(ctx, live); err != nil {
		return 0, err
	}
	return len(live), nil
}

// title builds a node name like "Gotcha: sqlite locks during...".
func title(typ model.ExperienceType, content string, limit int) string {
	s := string(typ)
	if s != "" {
		s = strings.ToUpper(s[:1]) + s[1:]
	}
	if len(content) > limit {
		content = content[:limit]
	}
	return s + ": " + content
}

func (l *Layer) traceEvent(record map[string]any) {
	l.trace.Log(record)
}
