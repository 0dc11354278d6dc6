// Package match decides whether two ingredient name strings refer to the same
// food. Names come from three vocabularies (vision output, receipt-normalized
// names, recipe text, composition-table names) that commonly differ only by
// added modifiers, e.g. 鶏肉 vs 鶏もも肉.
package match

import "strings"

// Strategy matches two ingredient names. Implementations must be symmetric:
// Matches(a, b) == Matches(b, a).
type Strategy interface {
	Matches(a, b string) bool
}

// Heuristic matches by exact equality, bidirectional substring, then
// character-set containment with a two-character floor. It is approximate and
// tuned for short Japanese noun compounds; very short or generic names can
// produce false positives.
type Heuristic struct{}

// NewHeuristic returns the default matching strategy.
func NewHeuristic() Heuristic {
	return Heuristic{}
}

// Matches reports whether a and b name the same food.
func (Heuristic) Matches(a, b string) bool {
	if a == b {
		return true
	}
	if a == "" || b == "" {
		return false
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}

	return SharesCharSet(a, b)
}

// MatchesAny reports whether name matches any of the candidates.
func (h Heuristic) MatchesAny(name string, candidates []string) bool {
	return Any(h, name, candidates)
}

// Any reports whether name matches any of the candidates under the given
// strategy.
func Any(s Strategy, name string, candidates []string) bool {
	for _, c := range candidates {
		if s.Matches(name, c) {
			return true
		}
	}
	return false
}

// SharesCharSet checks whether every distinct rune of the shorter string
// appears somewhere in the longer one. The length floor of 2 keeps single
// characters from matching everything. Exposed separately so callers that
// stage their lookups (substring first, char set second) can apply the rules
// in their own order.
func SharesCharSet(a, b string) bool {
	shorter, longer := a, b
	if len([]rune(shorter)) > len([]rune(longer)) {
		shorter, longer = longer, shorter
	}

	runes := []rune(shorter)
	if len(runes) < 2 {
		return false
	}

	for _, r := range runes {
		if !strings.ContainsRune(longer, r) {
			return false
		}
	}
	return true
}
