package matcher

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// canonical folds case and trims surrounding whitespace. Folding uses
// Unicode simple case folding, never the runtime locale, so a given pair of
// names always canonicalizes the same way.
func canonical(s string) string {
	return strings.TrimSpace(cases.Fold().String(s))
}

// sortedTokens splits on whitespace, sorts the tokens lexicographically and
// rejoins them with single spaces.
func sortedTokens(s string) string {
	t := strings.Fields(s)
	sort.Strings(t)
	return strings.Join(t, " ")
}

// tokenSet returns the deduplicated whitespace tokens of s.
func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}

var legalSuffixes = regexp.MustCompile(
	`(?i)\s*,?\s*(LLC|L\.?L\.?C\.?|INC\.?|INCORPORATED|CORP\.?|CORPORATION|` +
		`CO\.?|COMPANY|LTD\.?|LIMITED|HOLDINGS?|GROUP|` +
		`L\.?P\.?|LLP|L\.?L\.?P\.?|PLC|S\.?A\.?|GMBH|A\.?G\.?|OOO|PAO|JSC)\s*\.?\s*$`)

var multiSpace = regexp.MustCompile(`\s{2,}`)

// NormalizeName strips trailing legal-form suffixes (Ltd, LLC, GmbH, ...)
// and collapses whitespace. Scoring itself never does this; callers opt in
// when they want boilerplate-insensitive queries.
func NormalizeName(name string) string {
	n := strings.TrimSpace(name)
	n = legalSuffixes.ReplaceAllString(n, "")
	n = multiSpace.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}
