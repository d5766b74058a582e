// Package currency converts OCR-extracted monetary strings into decimals.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a monetary string into a decimal. Parentheses and a
// leading minus both denote a negative amount; currency symbols, thousands
// separators and interior whitespace are stripped. An empty string or a lone
// dash returns ok=false: "no value" must stay distinguishable from zero.
func ParseAmount(text string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(text)
	if s == "" || s == "-" || s == "–" || s == "—" {
		return decimal.Decimal{}, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Decimal{}, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}
