package matcher

import "math"

// Weighting constants for the composite score, ported from the published
// weighted-ratio family so screening scores line up with prior runs.
const (
	// unbaseScale discounts the token-order-insensitive variants.
	unbaseScale = 0.95
	// partialScale discounts the windowed variants once the partial branch
	// engages.
	partialScale = 0.90
	// longPartialScale replaces partialScale for extreme length mismatches.
	longPartialScale = 0.60
	// partialCutoff is the longer/shorter length ratio at which the
	// composite switches to the partial variants.
	partialCutoff = 1.5
	// extremeLenRatio is the length ratio beyond which partial matches are
	// discounted harder.
	extremeLenRatio = 8.0
)

// WRatio is the composite similarity used for screening: the maximum of the
// weighted ratio variants, rounded to one decimal place.
//
// Equal canonical forms, or equal token-sorted forms, short-circuit to 100.
// When the two names have comparable lengths the composite considers the
// plain ratio plus the discounted token-sort and token-set ratios; when one
// name is much longer than the other it considers the discounted partial
// variants instead, which handle abbreviations and embedded names.
func WRatio(a, b string) float64 {
	ca := canonical(a)
	cb := canonical(b)

	if ca == "" && cb == "" {
		return 100
	}
	if ca == "" || cb == "" {
		return 0
	}
	if ca == cb {
		return 100
	}

	sa := sortedTokens(ca)
	sb := sortedTokens(cb)
	if sa == sb {
		return 100
	}

	ra := []rune(ca)
	rb := []rune(cb)
	best := ratioRunes(ra, rb)

	shorter := float64(len(ra))
	longer := float64(len(rb))
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	lenRatio := longer / shorter

	if lenRatio < partialCutoff {
		best = math.Max(best, unbaseScale*ratioRunes([]rune(sa), []rune(sb)))
		best = math.Max(best, unbaseScale*tokenSetCompare(ca, cb, ratioRunes))
	} else {
		scale := partialScale
		if lenRatio > extremeLenRatio {
			scale = longPartialScale
		}
		best = math.Max(best, scale*partialRunes(ra, rb))
		best = math.Max(best, unbaseScale*scale*partialRunes([]rune(sa), []rune(sb)))
		best = math.Max(best, unbaseScale*scale*tokenSetCompare(ca, cb, partialRunes))
	}

	return math.Round(best*10) / 10
}
