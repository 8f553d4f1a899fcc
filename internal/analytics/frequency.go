package analytics

import (
	"slices"

	"github.com/shopspring/decimal"
)

// DaysPerMonth is the average month length used for per-month rates.
const DaysPerMonth = 30.44

// AmountCount is how often one withdrawal amount occurs.
type AmountCount struct {
	Amount decimal.Decimal
	Count  int
}

// FrequencyStats describes how often transactions happen.
type FrequencyStats struct {
	Total    int
	Spending int
	// Days spans the first to last date of the date-filtered records,
	// inclusive, regardless of the category filter.
	Days       int
	PerDay     float64
	PerMonth   float64
	Categories []CategoryCount
	// TopAmounts holds the three most repeated withdrawal amounts.
	TopAmounts []AmountCount
}

// Frequency computes per-day and per-month rates. ok is false when nothing
// matches.
func (e *Engine) Frequency(f Filter) (FrequencyStats, bool) {
	recs := e.records(f)
	if len(recs) == 0 {
		return FrequencyStats{}, false
	}

	first, last, _ := e.DateRange(f.WithoutCategory())
	days := int(last.Sub(first).Hours()/24) + 1

	stats := FrequencyStats{
		Total:      len(recs),
		Days:       days,
		PerDay:     float64(len(recs)) / float64(days),
		PerMonth:   float64(len(recs)) / (float64(days) / DaysPerMonth),
		Categories: e.CategoryCounts(f),
	}

	var amounts []AmountCount
	for _, r := range recs {
		if !r.IsDebit() {
			continue
		}
		stats.Spending++
		i := slices.IndexFunc(amounts, func(a AmountCount) bool { return a.Amount.Equal(r.Debit) })
		if i < 0 {
			amounts = append(amounts, AmountCount{Amount: r.Debit, Count: 1})
			continue
		}
		amounts[i].Count++
	}
	slices.SortStableFunc(amounts, func(a, b AmountCount) int { return b.Count - a.Count })
	stats.TopAmounts = head(amounts, 3)

	return stats, true
}
