package chatbot

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"fjacquet/pdf-ledger/internal/analytics"
	"fjacquet/pdf-ledger/internal/dateutils"
	"fjacquet/pdf-ledger/internal/models"
)

const (
	topLimit     = 5
	searchLimit  = 10
	shortSnippet = 30
	longSnippet  = 40
)

func rupees(d decimal.Decimal) string {
	return models.FormatRupees(d)
}

func wholeRupees(d decimal.Decimal) string {
	return strings.TrimSuffix(models.FormatRupees(d.Round(0)), ".00")
}

func signedRupees(d decimal.Decimal) string {
	if d.IsNegative() {
		return models.FormatRupees(d)
	}
	return "+" + models.FormatRupees(d)
}

func noTransactions(f analytics.Filter) string {
	if p := f.Period(); p != "overall" {
		return fmt.Sprintf("No transactions found %s.", p)
	}
	return "No transactions found."
}

// dateEmpty reports whether the date scope of f matches nothing.
func (b *Bot) dateEmpty(f analytics.Filter) bool {
	return b.engine.Counts(f.WithoutCategory()).Total == 0
}

func (b *Bot) average(intent Intent) string {
	f := intent.Filter()
	if b.dateEmpty(f) {
		return noTransactions(f)
	}
	avg, ok := b.engine.AverageSpending(f)
	if intent.Category == "" {
		return fmt.Sprintf("Average transaction amount %s: %s", f.Period(), rupees(avg))
	}
	if !ok {
		return fmt.Sprintf("No %s transactions found %s.", intent.Category, f.Period())
	}
	return fmt.Sprintf("Average spending for %s %s: %s\nTotal transactions: %d\nTotal spent: %s",
		intent.Category, f.Period(), rupees(avg), b.engine.Counts(f).Total, rupees(b.engine.TotalSpending(f)))
}

func (b *Bot) total(intent Intent) string {
	f := intent.Filter()
	if b.dateEmpty(f) {
		return noTransactions(f)
	}
	if intent.Category != "" {
		return fmt.Sprintf("Total for %s %s:\n• Spent: %s\n• Received: %s\n• Transactions: %d",
			intent.Category, f.Period(),
			rupees(b.engine.TotalSpending(f)), rupees(b.engine.TotalIncome(f)), b.engine.Counts(f).Total)
	}
	return fmt.Sprintf("Totals %s:\n• Total spent: %s\n• Total received: %s\n• Net flow: %s",
		f.Period(), rupees(b.engine.TotalSpending(f)), rupees(b.engine.TotalIncome(f)), rupees(b.engine.NetChange(f)))
}

func (b *Bot) count(intent Intent) string {
	f := intent.Filter()
	if b.dateEmpty(f) {
		return noTransactions(f)
	}
	c := b.engine.Counts(f)
	if intent.Category != "" {
		return fmt.Sprintf("Transaction count for %s %s:\n• Total: %d\n• Spending: %d\n• Credits: %d",
			intent.Category, f.Period(), c.Total, c.Expense, c.Income)
	}
	return fmt.Sprintf("Total transactions %s: %d", f.Period(), c.Total)
}

func (b *Bot) top(intent Intent) string {
	f := intent.Filter()
	if b.dateEmpty(f) {
		return noTransactions(f)
	}
	expenses := b.engine.TopExpenses(f, topLimit)
	if len(expenses) == 0 {
		return "No spending transactions found for the specified period."
	}

	var sb strings.Builder
	if intent.Category != "" {
		fmt.Fprintf(&sb, "Top expenses in %s %s:\n", intent.Category, f.Period())
	} else {
		fmt.Fprintf(&sb, "Top %d expenses %s:\n", topLimit, f.Period())
	}
	for i, exp := range expenses {
		fmt.Fprintf(&sb, "%d. %s - %s\n", i+1, rupees(exp.Amount), analytics.Truncate(exp.Narration, shortSnippet))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *Bot) balance(intent Intent) string {
	f := intent.Date.Filter()
	bal, ok := b.engine.CurrentBalance(f)
	if !ok {
		return noTransactions(f)
	}
	return fmt.Sprintf("Current balance: %s", rupees(bal))
}

func (b *Bot) categoryBreakdown(intent Intent) string {
	f := intent.Date.Filter()
	if b.dateEmpty(f) {
		return noTransactions(f)
	}
	var sb strings.Builder
	for _, c := range b.engine.CategorySpending(f) {
		if c.Amount.IsPositive() {
			fmt.Fprintf(&sb, "• %s: %s\n", c.Category, rupees(c.Amount))
		}
	}
	if sb.Len() == 0 {
		return "No spending found for the specified period."
	}
	return fmt.Sprintf("Category breakdown %s:\n%s", f.Period(), strings.TrimRight(sb.String(), "\n"))
}

// trend ignores the date scope and looks at the last months present.
func (b *Bot) trend(intent Intent) string {
	if len(b.engine.MonthlySummary(analytics.Filter{})) < 2 {
		return "Not enough data to show trends. Need at least 2 months of data."
	}
	f := analytics.Filter{Category: intent.Category}
	t, ok := b.engine.Trend(f)
	if !ok {
		return fmt.Sprintf("Not enough %s data to show trends.", intent.Category)
	}

	var sb strings.Builder
	if intent.Category != "" {
		fmt.Fprintf(&sb, "%s spending trend:\n", intent.Category)
	} else {
		sb.WriteString("Overall spending trend:\n")
	}
	fmt.Fprintf(&sb, "• Latest month: %s\n", rupees(t.Latest.Spent))
	fmt.Fprintf(&sb, "• Previous month: %s\n", rupees(t.Previous.Spent))
	fmt.Fprintf(&sb, "• Change: %+.1f%% (%s)\n\nMonthly breakdown:", t.ChangePercent, t.Direction)
	for _, m := range t.Months {
		fmt.Fprintf(&sb, "\n• %s: %s", m.Month, rupees(m.Spent))
	}
	return sb.String()
}

// comparison compares the first two months named in the question, in order
// of mention, or else the last two months present.
func (b *Bot) comparison(intent Intent, question string) string {
	if months := dateutils.FindMonths(question); len(months) >= 2 {
		f := analytics.Filter{Year: intent.Date.Year, Category: intent.Category}
		c, ok := b.engine.CompareMonths(f, months[0], months[1])
		if !ok {
			return fmt.Sprintf("No data available for comparison between %s and %s.", months[0], months[1])
		}
		text := fmt.Sprintf("Comparison: %s vs %s\n• %s: %s\n• %s: %s\n• Difference: %s\n• Change: %+.1f%%",
			c.A, c.B, c.A, rupees(c.ASpent), c.B, rupees(c.BSpent), signedRupees(c.Difference), c.ChangePercent)
		if c.Significant() {
			direction := "increase"
			if c.ChangePercent < 0 {
				direction = "decrease"
			}
			text += fmt.Sprintf("\n• Significant %s in spending!", direction)
		}
		return text
	}

	t, ok := b.engine.Trend(analytics.Filter{Category: intent.Category})
	if !ok {
		return "Not enough data for comparison. Need at least 2 months."
	}
	return fmt.Sprintf("Last two months comparison:\n• Latest (%s): %s\n• Previous (%s): %s\n• Difference: %s (%+.1f%%)",
		t.Latest.Month, rupees(t.Latest.Spent), t.Previous.Month, rupees(t.Previous.Spent),
		signedRupees(t.Latest.Spent.Sub(t.Previous.Spent)), t.ChangePercent)
}

func (b *Bot) search(intent Intent) string {
	if len(intent.SearchTerms) == 0 {
		return "Please specify what you want to search for (e.g., 'Amazon', 'ATM', 'Swiggy')."
	}
	f := intent.Date.Filter()
	if b.dateEmpty(f) {
		return noTransactions(f)
	}
	terms := strings.Join(intent.SearchTerms, ", ")
	found := b.engine.Search(f, intent.SearchTerms...)
	if len(found) == 0 {
		return strings.TrimSpace(fmt.Sprintf("No transactions found containing '%s' %s", terms, periodSuffix(f))) + "."
	}

	spent, received := decimal.Zero, decimal.Zero
	for _, r := range found {
		spent = spent.Add(r.Debit)
		received = received.Add(r.Credit)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d transactions containing '%s':\n", len(found), terms)
	fmt.Fprintf(&sb, "• Total spent: %s\n• Total received: %s\n\nRecent transactions:", rupees(spent), rupees(received))
	for _, r := range found[:min(searchLimit, len(found))] {
		dir := "Cr"
		if r.IsDebit() {
			dir = "Dr"
		}
		fmt.Fprintf(&sb, "\n• %s: %s (%s) - %s",
			dateutils.ToISODate(r.Date), rupees(r.Amount()), dir, analytics.Truncate(r.Narration, longSnippet))
	}
	if len(found) > searchLimit {
		fmt.Fprintf(&sb, "\n... and %d more transactions", len(found)-searchLimit)
	}
	return sb.String()
}

func periodSuffix(f analytics.Filter) string {
	if p := f.Period(); p != "overall" {
		return p
	}
	return ""
}

func describeCriteria(c analytics.Criteria) string {
	switch c.Kind {
	case analytics.ThresholdAbove:
		return "above " + wholeRupees(c.Min)
	case analytics.ThresholdBelow:
		return "below " + wholeRupees(c.Max)
	case analytics.ThresholdRange:
		return fmt.Sprintf("between %s and %s", wholeRupees(c.Min), wholeRupees(c.Max))
	default:
		return "of exactly " + wholeRupees(c.Exact)
	}
}

func (b *Bot) threshold(intent Intent) string {
	if intent.Amount == nil {
		return "Please specify an amount threshold (e.g., 'above 1000', 'between 100 and 500')."
	}
	f := intent.Filter()
	if b.dateEmpty(f) {
		return noTransactions(f)
	}
	if intent.Category != "" && b.engine.Counts(f).Total == 0 {
		return fmt.Sprintf("No %s transactions found for the specified period.", intent.Category)
	}
	matched, err := b.engine.Threshold(f, *intent.Amount)
	if err != nil || len(matched) == 0 {
		return "No transactions found matching the amount criteria."
	}

	total := analytics.SumExpenses(matched)
	avg := total.Div(decimal.NewFromInt(int64(len(matched))))
	scope := ""
	if intent.Category != "" {
		scope = " in " + intent.Category
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Transactions %s%s %s:\n", describeCriteria(*intent.Amount), scope, f.Period())
	fmt.Fprintf(&sb, "• Count: %d transactions\n• Total amount: %s\n• Average amount: %s\n\nTop transactions:",
		len(matched), rupees(total), rupees(avg))
	ranked := analytics.RankExpenses(matched)
	for _, exp := range ranked[:min(topLimit, len(ranked))] {
		fmt.Fprintf(&sb, "\n• %s: %s - %s",
			dateutils.ToISODate(exp.Date), rupees(exp.Amount), analytics.Truncate(exp.Narration, shortSnippet))
	}
	return sb.String()
}

func (b *Bot) minimum(intent Intent) string {
	f := intent.Filter()
	if intent.Category != "" && b.engine.Counts(f).Total == 0 {
		return fmt.Sprintf("No %s transactions found %s.", intent.Category, f.Period())
	}
	lowest := b.engine.LowestExpenses(f, topLimit)
	if len(lowest) == 0 {
		if intent.Category != "" {
			return fmt.Sprintf("No spending transactions found for %s.", intent.Category)
		}
		return "No spending transactions found."
	}

	var sb strings.Builder
	if intent.Category != "" {
		fmt.Fprintf(&sb, "Lowest expenses in %s %s:", intent.Category, f.Period())
	} else {
		fmt.Fprintf(&sb, "Lowest expenses %s:", f.Period())
	}
	for i, exp := range lowest {
		fmt.Fprintf(&sb, "\n%d. %s - %s (%s)",
			i+1, rupees(exp.Amount), analytics.Truncate(exp.Narration, shortSnippet), dateutils.ToISODate(exp.Date))
	}
	return sb.String()
}

func (b *Bot) percentage(intent Intent) string {
	f := intent.Filter()
	if b.dateEmpty(f) {
		return noTransactions(f)
	}
	dateScope := f.WithoutCategory()
	totalSpent := b.engine.TotalSpending(dateScope)

	if intent.Category != "" {
		if !totalSpent.IsPositive() {
			return "No spending data available for percentage calculation."
		}
		spent := b.engine.TotalSpending(f)
		share := spent.Div(totalSpent).Mul(decimal.NewFromInt(100)).InexactFloat64()
		return fmt.Sprintf("%s spending %s:\n• Amount: %s\n• Percentage of total spending: %.1f%%\n• Total spending: %s",
			intent.Category, f.Period(), rupees(spent), share, rupees(totalSpent))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Financial ratios %s:\n", f.Period())
	if rate, ok := b.engine.SavingsRate(dateScope); ok {
		fmt.Fprintf(&sb, "• Savings rate: %.1f%%\n• Spending rate: %.1f%%\n", rate, 100-rate)
	}
	fmt.Fprintf(&sb, "• Total income: %s\n• Total spending: %s\n• Net flow: %s",
		rupees(b.engine.TotalIncome(dateScope)), rupees(totalSpent), rupees(b.engine.NetChange(dateScope)))

	shares := b.engine.CategoryPercentages(dateScope)
	if len(shares) > 0 {
		sb.WriteString("\n\nCategory breakdown:")
		for _, s := range shares[:min(topLimit, len(shares))] {
			fmt.Fprintf(&sb, "\n• %s: %.1f%% (%s)", s.Category, s.Percent, rupees(s.Amount))
		}
	}
	return sb.String()
}

func (b *Bot) frequency(intent Intent) string {
	f := intent.Filter()
	if b.dateEmpty(f) {
		return noTransactions(f)
	}
	stats, ok := b.engine.Frequency(f)
	if !ok {
		return fmt.Sprintf("No %s transactions found %s.", intent.Category, f.Period())
	}

	var sb strings.Builder
	if intent.Category != "" {
		fmt.Fprintf(&sb, "%s transaction frequency %s:\n", intent.Category, f.Period())
		fmt.Fprintf(&sb, "• Total transactions: %d\n• Spending transactions: %d\n• Average per month: %.1f transactions",
			stats.Total, stats.Spending, stats.PerMonth)
		if len(stats.TopAmounts) > 0 {
			sb.WriteString("\n\nMost frequent amounts:")
			for _, a := range stats.TopAmounts {
				fmt.Fprintf(&sb, "\n• %s: %d times", rupees(a.Amount), a.Count)
			}
		}
		return sb.String()
	}

	fmt.Fprintf(&sb, "Transaction frequency %s:\n", f.Period())
	fmt.Fprintf(&sb, "• Total transactions: %d\n• Average per day: %.1f\n• Average per month: %.1f",
		stats.Total, stats.PerDay, stats.PerMonth)
	if len(stats.Categories) > 0 {
		sb.WriteString("\n\nMost frequent categories:")
		for _, c := range stats.Categories[:min(topLimit, len(stats.Categories))] {
			fmt.Fprintf(&sb, "\n• %s: %d transactions", c.Category, c.Count)
		}
	}
	return sb.String()
}

func (b *Bot) general(intent Intent) string {
	f := intent.Date.Filter()
	if b.dateEmpty(f) {
		return noTransactions(f)
	}
	return fmt.Sprintf("Account Overview %s:\n• Total transactions: %d\n• Total spent: %s\n• Total received: %s\n• Net flow: %s",
		f.Period(), b.engine.Counts(f).Total,
		rupees(b.engine.TotalSpending(f)), rupees(b.engine.TotalIncome(f)), rupees(b.engine.NetChange(f)))
}
