package router

import "strings"

// DefaultMaxKeywords caps extraction so a pasted wall of text cannot
// fan out into hundreds of route lookups.
const DefaultMaxKeywords = 20

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "being": {}, "have": {}, "has": {}, "had": {},
	"do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "may": {}, "might": {}, "can": {}, "shall": {},
	"to": {}, "of": {}, "in": {}, "for": {}, "on": {}, "with": {}, "at": {},
	"by": {}, "from": {}, "as": {}, "into": {}, "about": {}, "between": {},
	"through": {}, "after": {}, "before": {}, "above": {}, "below": {},
	"and": {}, "or": {}, "but": {}, "not": {}, "no": {}, "nor": {}, "so": {},
	"yet": {}, "both": {}, "either": {}, "neither": {}, "each": {}, "every": {},
	"all": {}, "any": {}, "few": {}, "more": {}, "most": {}, "other": {},
	"some": {}, "such": {}, "than": {}, "too": {}, "very": {}, "just": {},
	"also": {}, "how": {}, "what": {}, "which": {}, "who": {}, "whom": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "my": {}, "your": {},
	"his": {}, "her": {}, "its": {}, "our": {}, "their": {}, "i": {},
	"me": {}, "we": {}, "us": {}, "you": {}, "he": {}, "she": {}, "it": {},
	"they": {}, "them": {}, "if": {}, "then": {}, "else": {}, "when": {},
	"where": {}, "why": {},
}

// ExtractKeywords lowercases text, splits it on anything outside
// [a-z0-9_-], drops stop words and tokens shorter than three
// characters,
// dedupes preserving order, and caps the result at max (or
// DefaultMaxKeywords when max is zero).
func ExtractKeywords(text string, max int) []string {
	if max <= 0 {
		max = DefaultMaxKeywords
	}

	var (
		keywords []string
		seen     = make(map[string]struct{})
		token    strings.Builder
	)

	flush := func() {
		if token.Len() == 0 {
			return
		}
		kw := token.String()
		token.Reset()
		if len(kw) <= 2 {
			return
		}
		if _, stop := stopWords[kw]; stop {
			return
		}
		if _, dup := seen[kw]; dup {
			return
		}
		seen[kw] = struct{}{}
		keywords = append(keywords, kw)
	}

	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			token.WriteRune(r)
		default:
			flush()
		}
		if len(keywords) >= max {
			return keywords
		}
	}
	flush()

	if len(keywords) > max {
		keywords = keywords[:max]
	}
	return keywords
}
