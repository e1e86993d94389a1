package intake

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// similarityThreshold is the minimum sequence-similarity ratio (0..1) the
// fuzzy fallback accepts.
const similarityThreshold = 0.5

// MatchOption resolves an utterance against a closed option set.
//
// Keyword containment runs first: each option is split into lowercase words,
// and the first option (in declared order) with any word appearing as a
// substring of the lowered, trimmed utterance wins. If no keyword hits, a
// Levenshtein-based similarity ratio against each full option decides, with
// the best score accepted at or above the threshold.
//
// The result is deterministic for a given utterance and option set.
func MatchOption(utterance string, options []string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(utterance))
	if normalized == "" || len(options) == 0 {
		return "", false
	}

	for _, option := range options {
		for _, word := range strings.Fields(strings.ToLower(option)) {
			if strings.Contains(normalized, word) {
				return option, true
			}
		}
	}

	best := ""
	bestScore := 0.0
	for _, option := range options {
		score := similarityRatio(normalized, strings.ToLower(option))
		if score > bestScore {
			best = option
			bestScore = score
		}
	}
	if bestScore >= similarityThreshold {
		return best, true
	}
	return "", false
}

// similarityRatio converts edit distance into a 0..1 similarity score.
func similarityRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if lb := len([]rune(b)); lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}
