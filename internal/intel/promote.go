package intel

import (
	"context"
	"time"

	"github.com/mnemohq/mnemo/internal/experience"
	"github.com/mnemohq/mnemo/internal/model"
	"github.com/mnemohq/mnemo/internal/workspace"
)

// sweepPromotions promotes every eligible experience in hits. A
// promotion creates the permanent node and clears the eligibility flag
// in one store transaction; on failure the experience is left exactly
// as it was and the sweep moves on, so the next qualifying access
// retries. Failures are logged, never surfaced: promotion is an
// optimization, not something the caller asked for.
func (l *Layer) sweepPromotions(ctx context.Context, h *workspace.Handle, hits []experience.Hit) {
	for i := range hits {
		if !hits[i].PromotionEligible {
			continue
		}
		exp := hits[i].Experience

		node := model.Node{
			ID:          model.NewID(),
			Namespace:   model.DefaultNamespace,
			Type:        "promoted-experience",
			Name:        title(exp.Type, exp.Content, promoteTitleLimit),
			Description: exp.Content,
			Tags:        exp.Tags,
			CreatedAt:   time.Now().UTC(),
		}

		if err := h.Store.PromoteExperience(ctx, exp.ID, node); err != nil {
			l.log.Warn("promotion failed", "experience", exp.ID, "error", err)
			continue
		}
		hits[i].Experience.PromotedToNodeID = node.ID
		hits[i].PromotionEligible = false

		// Provenance edge and route entries are best effort; the
		// promotion itself already committed.
		edge := model.Edge{
			SourceID:  node.ID,
			TargetID:  exp.ID,
			Type:      DerivedEdgeType,
			Weight:    model.DefaultEdgeWeight,
			CreatedAt: node.CreatedAt,
		}
		if err := h.Store.UpsertEdge(ctx, edge); err != nil {
			l.log.Warn("promotion edge failed", "experience", exp.ID, "error", err)
		}
		if err := h.Router.Index(ctx, node); err != nil {
			l.log.Warn("promotion indexing failed", "node", node.ID, "error", err)
		}

		l.log.Info("promoted experience", "experience", exp.ID, "node", node.ID, "access_count", exp.AccessCount)
		l.traceEvent(map[string]any{
			"event":         "promotion",
			"experience_id": exp.ID,
			"node_id":       node.ID,
			"access_count":  exp.AccessCount,
		})
	}
}
