package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a statement amount such as "1,00,000.50". Thousands
// separators are dropped regardless of grouping style.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount string '%s': %w", s, err)
	}
	return d, nil
}

// FormatAmount renders d with two decimals and comma thousands separators,
// e.g. 1234567.5 becomes "1,234,567.50".
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// FormatRupees renders d as FormatAmount prefixed by the currency symbol.
func FormatRupees(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + CurrencySymbol + FormatAmount(d.Neg())
	}
	return CurrencySymbol + FormatAmount(d)
}
