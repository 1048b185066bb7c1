package normalize

import (
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Similarity scores two token lists in [0, 1].
type Similarity func(a, b []string) float64

// fuzzyRatio is the Levenshtein ratio above which two tokens count as the
// same word (abbreviations, truncations, typos).
const fuzzyRatio = 0.85

// TokenOverlap is the Dice coefficient of the two token sets:
// 2·|A∩B| / (|A|+|B|).
func TokenOverlap(a, b []string) float64 {
	return dice(a, b, func(x, y string) bool { return x == y })
}

// FuzzyTokenOverlap is TokenOverlap with tokens compared by edit distance.
func FuzzyTokenOverlap(a, b []string) float64 {
	return dice(a, b, func(x, y string) bool {
		if x == y {
			return true
		}

		return levenshtein.RatioForStrings([]rune(x), []rune(y), levenshtein.DefaultOptions) >= fuzzyRatio
	})
}

// dice pairs every token of a with at most one unused equal token of b.
func dice(a, b []string, equal func(x, y string) bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	used := make([]bool, len(b))
	shared := 0

	for _, x := range a {
		for j, y := range b {
			if used[j] || !equal(x, y) {
				continue
			}

			used[j] = true
			shared++

			break
		}
	}

	return 2 * float64(shared) / float64(len(a)+len(b))
}
