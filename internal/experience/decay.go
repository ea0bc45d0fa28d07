package experience

import (
	"math"

	"github.com/mnemohq/mnemo/internal/model"
)

// Base half-lives in days. A high-confidence experience of each type
// loses half its relevance over this span; medium and low confidence
// halve it twice and four times as fast.
var baseHalfLifeDays = map[model.ExperienceType]float64{
	model.TypeSolution:   200,
	model.TypePattern:    300,
	model.TypeDecision:   100,
	model.TypeWorkaround: 50,
	model.TypeGotcha:     200,
}

// halfLives resolves per-type half-lives, applying any configured
// overrides on top of the built-in table.
func halfLives(overrides map[string]float64) map[model.ExperienceType]float64 {
	out := make(map[model.ExperienceType]float64, len(baseHalfLifeDays))
	for typ, days := range baseHalfLifeDays {
		out[typ] = days
	}
	for typ, days := range overrides {
		if days > 0 {
			out[model.ExperienceType(typ)] = days
		}
	}
	return out
}

// decayRate converts a half-life and confidence tier into a per-day
// exponential decay constant: ln(2) × multiplier / halfLifeDays.
func decayRate(halfLifeDays float64, c model.Confidence) float64 {
	return math.Ln2 * c.Multiplier() / halfLifeDays
}
