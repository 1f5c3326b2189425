// Package matcher scores the textual similarity of two names on a 0-100
// scale. It implements the edit-distance ratio family: plain ratio, partial
// (best-window) ratio, token-sort and token-set ratios, and the weighted
// composite WRatio that screening uses. All functions are total over
// arbitrary strings, symmetric, and deterministic.
package matcher

import (
	"sort"
	"strings"
)

// ratioRunes is the base similarity: 100*(1 - dist/maxLen). Empty vs empty
// is 100, empty vs non-empty is 0.
func ratioRunes(a, b []rune) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 100
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	longest := max(len(a), len(b))
	return 100 * (1 - float64(editDistance(a, b))/float64(longest))
}

// partialRunes slides a window the length of the shorter string across the
// longer one and returns the best base ratio of shorter vs window.
func partialRunes(a, b []rune) float64 {
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		if len(long) == 0 {
			return 100
		}
		return 0
	}
	if len(short) == len(long) {
		return ratioRunes(short, long)
	}

	var best float64
	for i := 0; i+len(short) <= len(long); i++ {
		r := ratioRunes(short, long[i:i+len(short)])
		if r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

// Ratio is the plain edit-distance similarity of the two names after case
// folding and trimming.
func Ratio(a, b string) float64 {
	return ratioRunes([]rune(canonical(a)), []rune(canonical(b)))
}

// PartialRatio scores the shorter name against its best-aligned window in
// the longer one, rewarding substring and prefix/suffix relationships.
func PartialRatio(a, b string) float64 {
	return partialRunes([]rune(canonical(a)), []rune(canonical(b)))
}

// TokenSortRatio scores the names after sorting their whitespace tokens,
// making word order irrelevant.
func TokenSortRatio(a, b string) float64 {
	sa := sortedTokens(canonical(a))
	sb := sortedTokens(canonical(b))
	return ratioRunes([]rune(sa), []rune(sb))
}

// PartialTokenSortRatio is PartialRatio applied to the token-sorted forms.
func PartialTokenSortRatio(a, b string) float64 {
	sa := sortedTokens(canonical(a))
	sb := sortedTokens(canonical(b))
	return partialRunes([]rune(sa), []rune(sb))
}

// TokenSetRatio compares the token intersection against each side's
// intersection-plus-difference form, tolerating extra or missing tokens.
func TokenSetRatio(a, b string) float64 {
	return tokenSetCompare(canonical(a), canonical(b), ratioRunes)
}

// PartialTokenSetRatio is the token-set comparison scored with the partial
// (best-window) ratio.
func PartialTokenSetRatio(a, b string) float64 {
	return tokenSetCompare(canonical(a), canonical(b), partialRunes)
}

// tokenSetCompare builds the three token-set comparison strings
// (intersection, intersection+diffA, intersection+diffB) and returns the
// best pairwise score under cmp.
func tokenSetCompare(ca, cb string, cmp func(a, b []rune) float64) float64 {
	setA := tokenSet(ca)
	setB := tokenSet(cb)

	var inter, diffA, diffB []string
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			inter = append(inter, tok)
		} else {
			diffA = append(diffA, tok)
		}
	}
	for tok := range setB {
		if _, ok := setA[tok]; !ok {
			diffB = append(diffB, tok)
		}
	}
	sort.Strings(inter)
	sort.Strings(diffA)
	sort.Strings(diffB)

	sect := strings.Join(inter, " ")
	combA := joinNonEmpty(sect, strings.Join(diffA, " "))
	combB := joinNonEmpty(sect, strings.Join(diffB, " "))

	best := cmp([]rune(sect), []rune(combA))
	if r := cmp([]rune(sect), []rune(combB)); r > best {
		best = r
	}
	if r := cmp([]rune(combA), []rune(combB)); r > best {
		best = r
	}
	return best
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
