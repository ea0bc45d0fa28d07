// Package experience implements the decaying memory pool: experiences
// lose relevance exponentially by type and confidence, are touched on
// every read, and become promotion candidates once accessed often
// enough.
package experience

import (
	"context"
	"log/slog"
	"time"

	"github.com/mnemohq/mnemo/internal/fault"
	"github.com/mnemohq/mnemo/internal/model"
	"github.com/mnemohq/mnemo/internal/store"
)

// DefaultPromoteThreshold is the access count at which an experience
// qualifies for promotion to a permanent node.
const DefaultPromoteThreshold = 5

// Hit is a search result: the experience after its access bump, its
// relevance at query time, and whether it now qualifies for promotion.
type Hit struct {
	Experience        model.Experience `json:"experience"`
	Relevance         float64          `json:"relevance"`
	PromotionEligible bool             `json:"promotion_eligible"`
}

// Engine exposes experience operations over a workspace store.
type Engine struct {
	store     store.Store
	log       *slog.Logger
	lives     map[model.ExperienceType]float64
	promoteAt int
	now       func() time.Time
}

// Options tunes an Engine. Zero values take defaults.
type Options struct {
	// HalfLifeOverrides replaces built-in per-type half-lives, keyed by
	// experience type name.
	HalfLifeOverrides map[string]float64

	// PromoteThreshold is the access count that makes an experience
	// promotion-eligible.
	PromoteThreshold int
}

// New creates an experience engine.
func New(st store.Store, log *slog.Logger, opts Options) *Engine {
	if opts.PromoteThreshold <= 0 {
		opts.PromoteThreshold = DefaultPromoteThreshold
	}
	return &Engine{
		store:     st,
		log:       log,
		lives:     halfLives(opts.HalfLifeOverrides),
		promoteAt: opts.PromoteThreshold,
		now:       time.Now,
	}
}

// PromoteThreshold returns the configured promotion access count.
func (e *Engine) PromoteThreshold() int { return e.promoteAt }

// Save validates and stores a new experience with a full score and the
// decay rate derived from its type and confidence.
func (e *Engine) Save(ctx context.Context, typ model.ExperienceType, content, situation string, confidence model.Confidence, tags []string) (*model.Experience, error) {
	if !typ.Valid() {
		return nil, fault.InvalidArgument("unknown experience type %q", typ)
	}
	if content == "" {
		return nil, fault.InvalidArgument("experience content is required")
	}
	if confidence == "" {
		confidence = model.ConfidenceHigh
	}
	if !confidence.Valid() {
		return nil, fault.InvalidArgument("unknown confidence %q", confidence)
	}

	exp := model.Experience{
		ID:         model.NewID(),
		Type:       typ,
		Content:    content,
		Context:    situation,
		Confidence: confidence,
		Score:      1.0,
		DecayRate:  decayRate(e.lives[typ], confidence),
		Tags:       tags,
		CreatedAt:  e.now().UTC(),
	}
	if err := e.store.InsertExperience(ctx, exp); err != nil {
		return nil, err
	}
	return &exp, nil
}

// Get returns an experience without bumping its access count.
func (e *Engine) Get(ctx context.Context, id string) (*model.Experience, error) {
	if id == "" {
		return nil, fault.InvalidArgument("experience id is required")
	}
	return e.store.GetExperience(ctx, id)
}

// Search runs a full-text query and returns hits with live relevance,
// dropping hits below minRelevance. Every returned experience gets its
// access count bumped; repeated searches therefore walk results toward
// promotion eligibility. Filtered-out hits are not touched.
func (e *Engine) Search(ctx context.Context, q store.ExperienceQuery, minRelevance float64) ([]Hit, error) {
	if minRelevance < 0 {
		return nil, fault.InvalidArgument("min relevance must be non-negative, got %v", minRelevance)
	}
	exps, err := e.store.QueryExperiences(ctx, q)
	if err != nil {
		return nil, err
	}

	at := e.now().UTC()
	hits := make([]Hit, 0, len(exps))
	for _, exp := range exps {
		if exp.Relevance(at) < minRelevance {
			continue
		}
		touched, err := e.store.TouchExperience(ctx, exp.ID)
		if err != nil {
			// A concurrent delete is not worth failing the search over.
			e.log.Debug("touch failed", "experience", exp.ID, "error", err)
			touched = &exp
		}
		hits = append(hits, Hit{
			Experience:        *touched,
			Relevance:         touched.Relevance(at),
			PromotionEligible: e.Eligible(*touched),
		})
	}
	return hits, nil
}

// Eligible reports whether the experience has crossed the promotion
// threshold and has not been promoted yet.
func (e *Engine) Eligible(exp model.Experience) bool {
	return exp.AccessCount >= e.promoteAt && !exp.Promoted()
}

// Delete removes an experience permanently.
func (e *Engine) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fault.InvalidArgument("experience id is required")
	}
	return e.store.DeleteExperience(ctx, id)
}

// Prune deletes experiences whose relevance has decayed strictly below
// threshold and returns how many were removed. An experience exactly at
// the threshold survives, so pruning at 0 never deletes anything.
func (e *Engine) Prune(ctx context.Context, threshold float64) (int, error) {
	if threshold < 0 {
		return 0, fault.InvalidArgument("prune threshold must be non-negative, got %v", threshold)
	}

	// Relevance is computed, not stored, so the cut cannot happen in
	// SQL. Collect doomed ids first; deleting while paging by offset
	// would skip rows.
	const page = 500
	at := e.now().UTC()
	var doomed []string
	for offset := 0; ; offset += page {
		exps, err := e.store.QueryExperiences(ctx, store.ExperienceQuery{Limit: page, Offset: offset})
		if err != nil {
			return 0, err
		}
		for _, exp := range exps {
			if exp.Relevance(at) < threshold {
				doomed = append(doomed, exp.ID)
			}
		}
		if len(exps) < page {
			break
		}
	}

	pruned := 0
	for _, id := range doomed {
		if err := e.store.DeleteExperience(ctx, id); err != nil {
			if fault.IsNotFound(err) {
				continue
			}
			return pruned, err
		}
		pruned++
	}

	if pruned > 0 {
		e.log.Info("pruned experiences", "count", pruned, "threshold", threshold)
	}
	return pruned, nil
}
