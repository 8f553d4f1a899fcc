// Package analytics answers aggregate questions over a ledger. Every
// operation is a pure function of the ledger and the Filter passed to it.
package analytics

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/pdf-ledger/internal/dateutils"
	"fjacquet/pdf-ledger/internal/models"
)

// Filter scopes an operation. The zero value matches every record.
type Filter struct {
	Year     int
	Month    time.Month
	Category string
}

// Match reports whether rec falls inside the filter.
func (f Filter) Match(rec models.TransactionRecord) bool {
	if f.Year != 0 && rec.Date.Year() != f.Year {
		return false
	}
	if f.Month != 0 && rec.Date.Month() != f.Month {
		return false
	}
	if f.Category != "" && rec.CategoryOrDefault() != f.Category {
		return false
	}
	return true
}

// WithoutCategory returns the date part of the filter.
func (f Filter) WithoutCategory() Filter {
	f.Category = ""
	return f
}

// Period renders the date part of the filter as "in April 2024", "in 2024" or
// "overall".
func (f Filter) Period() string {
	switch {
	case f.Month != 0 && f.Year != 0:
		return fmt.Sprintf("in %s", dateutils.FormatMonth(f.Year, f.Month))
	case f.Month != 0:
		return fmt.Sprintf("in %s", f.Month)
	case f.Year != 0:
		return fmt.Sprintf("in %d", f.Year)
	default:
		return "overall"
	}
}

// Engine computes analytics over a single ledger.
type Engine struct {
	ledger *models.Ledger
	source string
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithSource names the snapshot the ledger was loaded from in the FAQ
// metadata.
func WithSource(source string) Option {
	return func(e *Engine) { e.source = source }
}

// WithClock overrides the FAQ generation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine. A nil ledger behaves as an empty one.
func NewEngine(ledger *models.Ledger, opts ...Option) *Engine {
	if ledger == nil {
		ledger = models.NewLedger(nil)
	}
	e := &Engine{ledger: ledger, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ledger returns the analysed ledger.
func (e *Engine) Ledger() *models.Ledger {
	return e.ledger
}

func (e *Engine) records(f Filter) []models.TransactionRecord {
	if f == (Filter{}) {
		return e.ledger.Records
	}
	var out []models.TransactionRecord
	for _, r := range e.ledger.Records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// TotalSpending sums withdrawals.
func (e *Engine) TotalSpending(f Filter) decimal.Decimal {
	total := decimal.Zero
	for _, r := range e.records(f) {
		total = total.Add(r.Debit)
	}
	return total
}

// TotalIncome sums deposits.
func (e *Engine) TotalIncome(f Filter) decimal.Decimal {
	total := decimal.Zero
	for _, r := range e.records(f) {
		total = total.Add(r.Credit)
	}
	return total
}

// NetChange is income minus spending.
func (e *Engine) NetChange(f Filter) decimal.Decimal {
	return e.TotalIncome(f).Sub(e.TotalSpending(f))
}

// AverageSpending is the mean withdrawal over every matching record, credits
// counting as zero. ok is false when nothing matches.
func (e *Engine) AverageSpending(f Filter) (decimal.Decimal, bool) {
	recs := e.records(f)
	if len(recs) == 0 {
		return decimal.Zero, false
	}
	return e.TotalSpending(f).Div(decimal.NewFromInt(int64(len(recs)))), true
}

// Counts splits the matching records by direction.
type Counts struct {
	Total   int `json:"total"`
	Income  int `json:"income_transactions"`
	Expense int `json:"expense_transactions"`
}

// Counts returns total, income and expense counts.
func (e *Engine) Counts(f Filter) Counts {
	var c Counts
	for _, r := range e.records(f) {
		c.Total++
		if r.IsCredit() {
			c.Income++
		}
		if r.IsDebit() {
			c.Expense++
		}
	}
	return c
}

// CurrentBalance is the declared balance of the last matching record.
func (e *Engine) CurrentBalance(f Filter) (decimal.Decimal, bool) {
	recs := e.records(f)
	if len(recs) == 0 {
		return decimal.Zero, false
	}
	return recs[len(recs)-1].Balance, true
}

// DateRange returns the first and last matching dates.
func (e *Engine) DateRange(f Filter) (first, last time.Time, ok bool) {
	recs := e.records(f)
	if len(recs) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return recs[0].Date, recs[len(recs)-1].Date, true
}

// SavingsRate is (income - spending) / income as a percentage. ok is false
// when there is no income.
func (e *Engine) SavingsRate(f Filter) (float64, bool) {
	income := e.TotalIncome(f)
	if !income.IsPositive() {
		return 0, false
	}
	return percentOf(income.Sub(e.TotalSpending(f)), income), true
}

// percentOf returns part/whole*100, or zero for a non-positive whole.
func percentOf(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).InexactFloat64()
}
