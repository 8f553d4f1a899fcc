package analytics

import (
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/pdf-ledger/internal/dateutils"
)

// TrendBand is the percentage change inside which a trend counts as stable.
const TrendBand = 5.0

// Trend directions.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// MonthSummary aggregates one calendar month.
type MonthSummary struct {
	Month    string // YYYY-MM
	Spent    decimal.Decimal
	Received decimal.Decimal
	Count    int
	Net      decimal.Decimal
}

// MonthlySummary groups matching records by month, in ascending order.
func (e *Engine) MonthlySummary(f Filter) []MonthSummary {
	byMonth := map[string]*MonthSummary{}
	for _, r := range e.records(f) {
		key := dateutils.MonthKey(r.Date)
		m, ok := byMonth[key]
		if !ok {
			m = &MonthSummary{Month: key}
			byMonth[key] = m
		}
		m.Spent = m.Spent.Add(r.Debit)
		m.Received = m.Received.Add(r.Credit)
		m.Count++
		m.Net = m.Received.Sub(m.Spent)
	}

	out := make([]MonthSummary, 0, len(byMonth))
	for _, key := range slices.Sorted(maps.Keys(byMonth)) {
		out = append(out, *byMonth[key])
	}
	return out
}

// TrendResult compares the latest month with the one before it.
type TrendResult struct {
	Latest        MonthSummary
	Previous      MonthSummary
	ChangePercent float64
	Direction     string
	// Months holds up to the last six months, oldest first.
	Months []MonthSummary
}

// Trend compares spending of the last two months present. ok is false with
// fewer than two months. The change is zero when the previous month had no
// spending.
func (e *Engine) Trend(f Filter) (TrendResult, bool) {
	months := e.MonthlySummary(f)
	if len(months) < 2 {
		return TrendResult{}, false
	}

	latest, previous := months[len(months)-1], months[len(months)-2]
	change := percentOf(latest.Spent.Sub(previous.Spent), previous.Spent)
	return TrendResult{
		Latest:        latest,
		Previous:      previous,
		ChangePercent: change,
		Direction:     directionOf(change),
		Months:        months[max(0, len(months)-6):],
	}, true
}

func directionOf(change float64) string {
	switch {
	case change > TrendBand:
		return TrendIncreasing
	case change < -TrendBand:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// Comparison is the spending of month A against month B.
type Comparison struct {
	A, B          time.Month
	ASpent        decimal.Decimal
	BSpent        decimal.Decimal
	Difference    decimal.Decimal // A - B
	ChangePercent float64         // relative to B
}

// Significant reports a change of more than 20% either way.
func (c Comparison) Significant() bool {
	return c.ChangePercent > 20 || c.ChangePercent < -20
}

// CompareMonths compares spending in calendar months a and b. The filter's
// month is ignored; its year and category still apply. ok is false when
// either month has no records.
func (e *Engine) CompareMonths(f Filter, a, b time.Month) (Comparison, bool) {
	fa, fb := f, f
	fa.Month, fb.Month = a, b
	if len(e.records(fa)) == 0 || len(e.records(fb)) == 0 {
		return Comparison{}, false
	}

	aSpent, bSpent := e.TotalSpending(fa), e.TotalSpending(fb)
	diff := aSpent.Sub(bSpent)
	return Comparison{
		A:             a,
		B:             b,
		ASpent:        aSpent,
		BSpent:        bSpent,
		Difference:    diff,
		ChangePercent: percentOf(diff, bSpent),
	}, true
}
