// Package fieldmap normalizes raw OCR form labels into line identifiers and
// resolves (form type, line identifier) pairs to canonical field paths via
// immutable per-form lookup tables.
package fieldmap

import (
	"regexp"
	"strings"
)

// lineMatcher is one rule in the normalization chain. The chain is evaluated
// strictly first-match-wins; the ordering is part of the contract.
type lineMatcher struct {
	name  string
	match func(label string) (string, bool)
}

func regexMatcher(name string, re *regexp.Regexp, format func(token string) string) lineMatcher {
	return lineMatcher{
		name: name,
		match: func(label string) (string, bool) {
			m := re.FindStringSubmatch(label)
			if m == nil {
				return "", false
			}
			return format(strings.ToLower(m[1])), true
		},
	}
}

var (
	linePrefixRe   = regexp.MustCompile(`(?i)^line\s+(\d+[a-z]?)\b`)
	leadingTokenRe = regexp.MustCompile(`(?i)^(\d+[a-z]?)[\s.,:;)\-]`)
	bareTokenRe    = regexp.MustCompile(`(?i)^(\d+[a-z]?)$`)
	kTokenRe       = regexp.MustCompile(`(?i)^k[-\s]?(\d+[a-z]?)\b`)
)

// identity keeps the captured token as-is (already lowercased).
func identity(token string) string { return token }

// lineMatchers is the ordered normalization chain. Order matters: "Line 7"
// must not be consumed by the leading-token rule, and the K rule must run
// before the balance-sheet heuristic sees the label.
var lineMatchers = []lineMatcher{
	regexMatcher("line-prefix", linePrefixRe, identity),
	regexMatcher("leading-token", leadingTokenRe, identity),
	regexMatcher("bare-token", bareTokenRe, identity),
	regexMatcher("schedule-k", kTokenRe, func(token string) string { return "k_" + token }),
	{name: "balance-sheet-heading", match: matchBalanceSheetHeading},
}

// balanceSheetConcepts maps a heading keyword to its synthetic identifier
// stem. Matched by substring, case-insensitive.
var balanceSheetConcepts = []struct {
	keyword string
	stem    string
}{
	{"total assets", "schedule_l_total_assets"},
	{"total liabilities", "schedule_l_total_liabilities"},
	{"retained earnings", "schedule_l_retained_earnings"},
	{"partners' capital", "schedule_l_partner_capital"},
	{"partner capital", "schedule_l_partner_capital"},
}

// matchBalanceSheetHeading recognizes balance-sheet headings like
// "Total assets, end of year" that carry no printed line number. It needs
// both a concept keyword and a temporal keyword to fire.
func matchBalanceSheetHeading(label string) (string, bool) {
	lower := strings.ToLower(label)
	var stem string
	for _, c := range balanceSheetConcepts {
		if strings.Contains(lower, c.keyword) {
			stem = c.stem
			break
		}
	}
	if stem == "" {
		return "", false
	}
	switch {
	case strings.Contains(lower, "beginning"):
		return stem + "_boy", true
	case strings.Contains(lower, "ending"), strings.Contains(lower, "end of year"):
		return stem + "_eoy", true
	}
	return "", false
}

// NormalizeLineIdentifier converts a raw OCR label into a normalized line
// identifier. A label no rule recognizes is not an error: it returns
// ok=false and the pair falls through to the unmapped path.
func NormalizeLineIdentifier(rawLabel string) (string, bool) {
	label := strings.TrimSpace(rawLabel)
	if label == "" {
		return "", false
	}
	for _, m := range lineMatchers {
		if id, ok := m.match(label); ok {
			return id, true
		}
	}
	return "", false
}
