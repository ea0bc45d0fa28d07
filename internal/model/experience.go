package model

import (
	"math"
	"time"
)

// ExperienceType classifies a decaying memory. Each type carries its own
// base half-life; see the experience engine.
type ExperienceType string

const (
	TypeSolution   ExperienceType = "solution"
	TypePattern    ExperienceType = "pattern"
	TypeDecision   ExperienceType = "decision"
	TypeWorkaround ExperienceType = "workaround"
	TypeGotcha     ExperienceType = "gotcha"
)

// ExperienceTypes lists the valid types in a stable order.
func ExperienceTypes() []ExperienceType {
	return []ExperienceType{TypeSolution, TypePattern, TypeDecision, TypeWorkaround, TypeGotcha}
}

// Valid reports whether t is a known experience type.
func (t ExperienceType) Valid() bool {
	switch t {
	case TypeSolution, TypePattern, TypeDecision, TypeWorkaround, TypeGotcha:
		return true
	}
	return false
}

// Confidence is the caller-asserted confidence tier of a fact. It routes
// storage durability: high-confidence facts become permanent nodes,
// lower tiers decay faster.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Valid reports whether c is a known confidence tier.
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// Multiplier returns the decay-rate scaling for the tier: lower
// confidence decays proportionally faster.
func (c Confidence) Multiplier() float64 {
	switch c {
	case ConfidenceMedium:
		return 2.0
	case ConfidenceLow:
		return 4.0
	default:
		return 1.0
	}
}

// Experience is a decaying memory. Relevance is never stored; it is
// recomputed from (Score, DecayRate, CreatedAt) on every read, so there
// is no background job to drift or recover.
type Experience struct {
	ID               string         `json:"id"`
	Type             ExperienceType `json:"type"`
	Content          string         `json:"content"`
	Context          string         `json:"context,omitempty"`
	Confidence       Confidence     `json:"confidence"`
	Score            float64        `json:"score"`
	DecayRate        float64        `json:"decay_rate"`
	Tags             []string       `json:"tags,omitempty"`
	AccessCount      int            `json:"access_count"`
	PromotedToNodeID string         `json:"promoted_to_node_id,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	LastAccessed     *time.Time     `json:"last_accessed,omitempty"`
}

// Relevance computes the experience's relevance at the given instant:
// score × exp(−decayRate × ageDays). Monotonically decreasing in time,
// asymptotic to zero, never negative. At the creation instant it equals
// the score exactly.
func (e Experience) Relevance(at time.Time) float64 {
	ageDays := at.Sub(e.CreatedAt).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return e.Score * math.Exp(-e.DecayRate*ageDays)
}

// Promoted reports whether the experience has been materialized into a
// graph node. A promoted experience still decays and stays queryable,
// but is excluded from further promotion checks.
func (e Experience) Promoted() bool { return e.PromotedToNodeID != "" }
