package analytics

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/pdf-ledger/internal/models"
)

// Expense is a single withdrawal.
type Expense struct {
	Amount    decimal.Decimal
	Narration string
	Date      time.Time
	Category  string
}

func expenseOf(r models.TransactionRecord) Expense {
	return Expense{Amount: r.Debit, Narration: r.Narration, Date: r.Date, Category: r.CategoryOrDefault()}
}

func (e *Engine) expenses(f Filter) []Expense {
	var out []Expense
	for _, r := range e.records(f) {
		if r.IsDebit() {
			out = append(out, expenseOf(r))
		}
	}
	return out
}

// HighestExpense returns the largest withdrawal. The earliest record wins a
// tie. ok is false when there are no debits.
func (e *Engine) HighestExpense(f Filter) (Expense, bool) {
	top := e.TopExpenses(f, 1)
	if len(top) == 0 {
		return Expense{}, false
	}
	return top[0], true
}

// TopExpenses returns up to n withdrawals, largest first.
func (e *Engine) TopExpenses(f Filter, n int) []Expense {
	return head(RankExpenses(e.expenses(f)), n)
}

// RankExpenses returns a copy of exp sorted largest first. Equal amounts keep
// their input order.
func RankExpenses(exp []Expense) []Expense {
	out := slices.Clone(exp)
	slices.SortStableFunc(out, func(a, b Expense) int { return b.Amount.Cmp(a.Amount) })
	return out
}

// LowestExpenses returns up to n withdrawals, smallest first.
func (e *Engine) LowestExpenses(f Filter, n int) []Expense {
	exp := e.expenses(f)
	slices.SortStableFunc(exp, func(a, b Expense) int { return a.Amount.Cmp(b.Amount) })
	return head(exp, n)
}

func head[T any](s []T, n int) []T {
	if n >= 0 && len(s) > n {
		return s[:n]
	}
	return s
}

// Search returns records whose narration contains any of terms, ignoring
// case, most recent first.
func (e *Engine) Search(f Filter, terms ...string) []models.TransactionRecord {
	var needles []string
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			needles = append(needles, t)
		}
	}
	if len(needles) == 0 {
		return nil
	}

	recs := e.records(f)
	var out []models.TransactionRecord
	for i := len(recs) - 1; i >= 0; i-- {
		narration := strings.ToLower(recs[i].Narration)
		for _, n := range needles {
			if strings.Contains(narration, n) {
				out = append(out, recs[i])
				break
			}
		}
	}
	return out
}

// ThresholdKind selects how Criteria compares amounts.
type ThresholdKind string

// Threshold kinds.
const (
	ThresholdAbove ThresholdKind = "above"
	ThresholdBelow ThresholdKind = "below"
	ThresholdRange ThresholdKind = "range"
	ThresholdExact ThresholdKind = "exact"
)

// Criteria is an amount condition applied to withdrawals. Min is used by
// above and range, Max by below and range, Exact by exact.
type Criteria struct {
	Kind  ThresholdKind
	Min   decimal.Decimal
	Max   decimal.Decimal
	Exact decimal.Decimal
}

// ErrUnknownThreshold is returned for a Criteria with an unsupported kind.
var ErrUnknownThreshold = errors.New("unknown threshold kind")

// Match reports whether amount satisfies the criteria. Above and below are
// strict, range is inclusive.
func (c Criteria) Match(amount decimal.Decimal) (bool, error) {
	switch c.Kind {
	case ThresholdAbove:
		return amount.GreaterThan(c.Min), nil
	case ThresholdBelow:
		return amount.LessThan(c.Max), nil
	case ThresholdRange:
		return amount.GreaterThanOrEqual(c.Min) && amount.LessThanOrEqual(c.Max), nil
	case ThresholdExact:
		return amount.Equal(c.Exact), nil
	default:
		return false, ErrUnknownThreshold
	}
}

// Threshold returns the withdrawals matching c in ledger order.
func (e *Engine) Threshold(f Filter, c Criteria) ([]Expense, error) {
	if _, err := c.Match(decimal.Zero); err != nil {
		return nil, err
	}
	var out []Expense
	for _, exp := range e.expenses(f) {
		if ok, _ := c.Match(exp.Amount); ok {
			out = append(out, exp)
		}
	}
	return out, nil
}

// SumExpenses totals a slice of expenses.
func SumExpenses(exp []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, x := range exp {
		total = total.Add(x.Amount)
	}
	return total
}
