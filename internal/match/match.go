// Package match scores a suspect domain against the reference set using
// normalized Levenshtein similarity.
package match

import (
	levenshtein "github.com/ka-weihe/fast-levenshtein"

	"github.com/ankitjha412/clone/internal/reference"
)

// CloneThreshold is the similarity percentage above which a suspect is
// classified a clone candidate. The comparison is strict: a score of
// exactly 80.0 is not a clone.
const CloneThreshold = 80.0

// Result is the outcome of matching one suspect domain.
type Result struct {
	Suspect   string
	BestMatch string // empty when the reference set is empty
	Score     float64
	Exact     bool // suspect is itself a reference member
}

// IsClone reports whether the result classifies the suspect as a clone
// candidate. Exact members are verified legitimate, never clones.
func (r Result) IsClone() bool {
	return !r.Exact && r.Score > CloneThreshold
}

// Similarity returns the percentage similarity of two strings derived from
// their Levenshtein edit distance:
//
//	(1 - distance/max(len(a), len(b))) * 100
//
// Lengths are rune counts, matching the rune-based distance. Two empty
// strings are 100% similar; an empty string is 0% similar to any
// non-empty one. The result is symmetric and always within [0, 100].
func Similarity(a, b string) float64 {
	maxLen := len([]rune(a))
	if n := len([]rune(b)); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 100.0
	}
	dist := levenshtein.Distance(a, b)
	return (1.0 - float64(dist)/float64(maxLen)) * 100.0
}

// Best scores suspect against every member of refs and returns the best
// match. Exact membership short-circuits with a 100 score and Exact set,
// bypassing the scan entirely. Otherwise members are scanned in the set's
// lexical order and ties keep the first maximum, so results are
// deterministic across runs.
func Best(suspect string, refs *reference.Set) Result {
	if refs.Contains(suspect) {
		return Result{Suspect: suspect, BestMatch: suspect, Score: 100.0, Exact: true}
	}

	res := Result{Suspect: suspect}
	for _, ref := range refs.Domains() {
		if score := Similarity(suspect, ref); score > res.Score {
			res.BestMatch = ref
			res.Score = score
		}
	}
	return res
}
