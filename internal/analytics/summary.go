package analytics

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/pdf-ledger/internal/dateutils"
	"fjacquet/pdf-ledger/internal/models"
)

// FAQ questions, in bundle order.
const (
	QuestionTotalSpending    = "What is my total spending?"
	QuestionTotalIncome      = "What is my total income?"
	QuestionNetChange        = "What is my net balance change?"
	QuestionHighestExpense   = "What is my highest single expense?"
	QuestionHighestCategory  = "Which category do I spend the most on?"
	QuestionCategorySpending = "How much did I spend on each category?"
	QuestionCounts           = "How many transactions do I have?"
	QuestionMonthly          = "What is my monthly spending breakdown?"
)

// FAQ is the generated question and answer bundle.
type FAQ struct {
	FinancialAnalysis FinancialAnalysis `json:"financial_analysis"`
}

// FinancialAnalysis holds the bundle body.
type FinancialAnalysis struct {
	Metadata            Metadata `json:"metadata"`
	QuestionsAndAnswers []QA     `json:"questions_and_answers"`
}

// Metadata describes how the bundle was produced.
type Metadata struct {
	GeneratedAt               time.Time `json:"generated_at"`
	TotalTransactionsAnalyzed int       `json:"total_transactions_analyzed"`
	SourceFile                string    `json:"source_file"`
}

// QA is one question with its rendered answer and the raw value behind it.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	RawData  any    `json:"raw_data"`
}

// Find returns the answer to question, if present.
func (f FAQ) Find(question string) (QA, bool) {
	for _, qa := range f.FinancialAnalysis.QuestionsAndAnswers {
		if qa.Question == question {
			return qa, true
		}
	}
	return QA{}, false
}

// Number renders an amount as an exact JSON number.
func Number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// Truncate cuts s to n runes and appends an ellipsis. The ellipsis is
// appended even when s is short.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r) + "..."
}

// Summary builds the FAQ bundle over the whole ledger.
func (e *Engine) Summary() FAQ {
	return e.SummaryFor(Filter{})
}

// SummaryFor builds the FAQ bundle over the records matching f.
func (e *Engine) SummaryFor(f Filter) FAQ {
	return FAQ{FinancialAnalysis: FinancialAnalysis{
		Metadata: Metadata{
			GeneratedAt:               e.now(),
			TotalTransactionsAnalyzed: len(e.records(f)),
			SourceFile:                e.source,
		},
		QuestionsAndAnswers: []QA{
			e.TotalSpendingQA(f),
			e.TotalIncomeQA(f),
			e.NetChangeQA(f),
			e.HighestExpenseQA(f),
			e.HighestCategoryQA(f),
			e.CategorySpendingQA(f),
			e.CountsQA(f),
			e.MonthlyQA(f),
		},
	}}
}

// TotalSpendingQA answers QuestionTotalSpending.
func (e *Engine) TotalSpendingQA(f Filter) QA {
	total := e.TotalSpending(f)
	return QA{
		Question: QuestionTotalSpending,
		Answer:   fmt.Sprintf("Your total spending is %s", models.FormatRupees(total)),
		RawData:  Number(total),
	}
}

// TotalIncomeQA answers QuestionTotalIncome.
func (e *Engine) TotalIncomeQA(f Filter) QA {
	total := e.TotalIncome(f)
	return QA{
		Question: QuestionTotalIncome,
		Answer:   fmt.Sprintf("Your total income is %s", models.FormatRupees(total)),
		RawData:  Number(total),
	}
}

// NetChangeQA answers QuestionNetChange.
func (e *Engine) NetChangeQA(f Filter) QA {
	net := e.NetChange(f)
	label := "profit"
	if net.IsNegative() {
		label = "loss"
	}
	return QA{
		Question: QuestionNetChange,
		Answer:   fmt.Sprintf("Your net balance change is %s (%s)", models.FormatRupees(net), label),
		RawData:  Number(net),
	}
}

// HighestExpenseQA answers QuestionHighestExpense.
func (e *Engine) HighestExpenseQA(f Filter) QA {
	exp, ok := e.HighestExpense(f)
	if !ok {
		narration := "No expense transactions found"
		if len(e.records(f)) == 0 {
			narration = "No transactions found"
		}
		return QA{
			Question: QuestionHighestExpense,
			Answer:   narration,
			RawData:  map[string]any{"amount": json.Number("0"), "narration": narration, "date": nil},
		}
	}
	return QA{
		Question: QuestionHighestExpense,
		Answer: fmt.Sprintf("Your highest single expense is %s for '%s' in the %s category",
			models.FormatRupees(exp.Amount), Truncate(exp.Narration, 50), exp.Category),
		RawData: map[string]any{
			"amount":    Number(exp.Amount),
			"narration": exp.Narration,
			"date":      dateutils.ToISODate(exp.Date),
			"category":  exp.Category,
		},
	}
}

// HighestCategoryQA answers QuestionHighestCategory.
func (e *Engine) HighestCategoryQA(f Filter) QA {
	top, ok := e.HighestSpendingCategory(f)
	if !ok {
		top = CategoryAmount{Category: "No categories found"}
	}
	return QA{
		Question: QuestionHighestCategory,
		Answer: fmt.Sprintf("You spend the most on %s with a total of %s",
			top.Category, models.FormatRupees(top.Amount)),
		RawData: map[string]any{"category": top.Category, "amount": Number(top.Amount)},
	}
}

// CategorySpendingQA answers QuestionCategorySpending.
func (e *Engine) CategorySpendingQA(f Filter) QA {
	spending := e.CategorySpending(f)
	raw := make(map[string]json.Number, len(spending))
	lines := make([]string, 0, len(spending))
	for _, c := range spending {
		raw[c.Category] = Number(c.Amount)
		lines = append(lines, fmt.Sprintf("• %s: %s", c.Category, models.FormatRupees(c.Amount)))
	}
	return QA{
		Question: QuestionCategorySpending,
		Answer:   "Here's your spending by category:\n" + strings.Join(lines, "\n"),
		RawData:  raw,
	}
}

// CountsQA answers QuestionCounts.
func (e *Engine) CountsQA(f Filter) QA {
	c := e.Counts(f)
	return QA{
		Question: QuestionCounts,
		Answer: fmt.Sprintf("You have %d total transactions: %d income transactions and %d expense transactions",
			c.Total, c.Income, c.Expense),
		RawData: c,
	}
}

// MonthlyQA answers QuestionMonthly. Only months with spending are listed.
func (e *Engine) MonthlyQA(f Filter) QA {
	raw := map[string]json.Number{}
	var lines []string
	for _, m := range e.MonthlySummary(f) {
		if !m.Spent.IsPositive() {
			continue
		}
		raw[m.Month] = Number(m.Spent)
		lines = append(lines, fmt.Sprintf("• %s: %s", m.Month, models.FormatRupees(m.Spent)))
	}
	breakdown := "Monthly data not available"
	if len(lines) > 0 {
		breakdown = strings.Join(lines, "\n")
	}
	return QA{
		Question: QuestionMonthly,
		Answer:   "Your monthly spending breakdown:\n" + breakdown,
		RawData:  raw,
	}
}

// Stats is the quick overview served to the chat front end.
type Stats struct {
	TotalTransactions int         `json:"total_transactions"`
	DateRange         *DateSpan   `json:"date_range,omitempty"`
	TotalDebits       json.Number `json:"total_debits"`
	TotalCredits      json.Number `json:"total_credits"`
	CurrentBalance    json.Number `json:"current_balance"`
	Categories        []string    `json:"categories"`
}

// DateSpan is an inclusive ISO date range.
type DateSpan struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Stats returns the overview for the whole ledger.
func (e *Engine) Stats() Stats {
	var all Filter
	balance, _ := e.CurrentBalance(all)
	s := Stats{
		TotalTransactions: e.ledger.Len(),
		TotalDebits:       Number(e.TotalSpending(all)),
		TotalCredits:      Number(e.TotalIncome(all)),
		CurrentBalance:    Number(balance),
		Categories:        e.ledger.Categories(),
	}
	if s.Categories == nil {
		s.Categories = []string{}
	}
	if first, last, ok := e.DateRange(all); ok {
		s.DateRange = &DateSpan{Start: dateutils.ToISODate(first), End: dateutils.ToISODate(last)}
	}
	return s
}
