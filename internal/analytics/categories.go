package analytics

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// CategoryAmount is the spending total of one category.
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// CategoryShare is a category total with its share of all spending.
type CategoryShare struct {
	CategoryAmount
	Percent float64 `json:"percent"`
}

// CategorySpending sums withdrawals per category, largest first. Categories
// with equal totals are ordered by name.
func (e *Engine) CategorySpending(f Filter) []CategoryAmount {
	totals := map[string]decimal.Decimal{}
	for _, exp := range e.expenses(f) {
		totals[exp.Category] = totals[exp.Category].Add(exp.Amount)
	}

	out := make([]CategoryAmount, 0, len(totals))
	for c, amt := range totals {
		out = append(out, CategoryAmount{Category: c, Amount: amt})
	}
	slices.SortFunc(out, func(a, b CategoryAmount) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return strings.Compare(a.Category, b.Category)
	})
	return out
}

// HighestSpendingCategory returns the category with the largest spending.
func (e *Engine) HighestSpendingCategory(f Filter) (CategoryAmount, bool) {
	spending := e.CategorySpending(f)
	if len(spending) == 0 {
		return CategoryAmount{}, false
	}
	return spending[0], true
}

// CategoryPercentages returns each category's share of total spending.
func (e *Engine) CategoryPercentages(f Filter) []CategoryShare {
	spending := e.CategorySpending(f)
	total := decimal.Zero
	for _, c := range spending {
		total = total.Add(c.Amount)
	}

	out := make([]CategoryShare, len(spending))
	for i, c := range spending {
		out[i] = CategoryShare{CategoryAmount: c, Percent: percentOf(c.Amount, total)}
	}
	return out
}

// CategoryCount is the number of records in one category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CategoryCounts counts records per category, most frequent first.
func (e *Engine) CategoryCounts(f Filter) []CategoryCount {
	counts := map[string]int{}
	for _, r := range e.records(f) {
		counts[r.CategoryOrDefault()]++
	}

	out := make([]CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, CategoryCount{Category: c, Count: n})
	}
	slices.SortFunc(out, func(a, b CategoryCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Category, b.Category)
	})
	return out
}
