package chatbot

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/pdf-ledger/internal/analytics"
	"fjacquet/pdf-ledger/internal/dateutils"
	"fjacquet/pdf-ledger/internal/models"
)

// IntentType is the kind of question asked.
type IntentType string

// Intent types, listed in matching priority.
const (
	IntentGreeting          IntentType = "greeting"
	IntentHelp              IntentType = "help"
	IntentTrend             IntentType = "trend"
	IntentComparison        IntentType = "comparison"
	IntentSearch            IntentType = "search"
	IntentThreshold         IntentType = "threshold"
	IntentMinimum           IntentType = "minimum"
	IntentPercentage        IntentType = "percentage"
	IntentFrequency         IntentType = "frequency"
	IntentAverage           IntentType = "average"
	IntentTotal             IntentType = "total"
	IntentCount             IntentType = "count"
	IntentTop               IntentType = "top"
	IntentBalance           IntentType = "balance"
	IntentCategoryBreakdown IntentType = "category_breakdown"
	IntentGeneral           IntentType = "general"
)

// Period hints recognised in a question.
const (
	PeriodThisWeek = "this_week"
	PeriodLastWeek = "last_week"
	PeriodWeekly   = "weekly"
	PeriodDaily    = "daily"
)

// DateInfo is the date scope named in a question.
type DateInfo struct {
	Month  time.Month `json:"month,omitempty"`
	Year   int        `json:"year,omitempty"`
	Period string     `json:"period,omitempty"`
}

// Filter converts the date scope to an analytics filter.
func (d DateInfo) Filter() analytics.Filter {
	return analytics.Filter{Year: d.Year, Month: d.Month}
}

// Intent is the structured reading of a question.
type Intent struct {
	Type            IntentType          `json:"type"`
	Category        string              `json:"category,omitempty"`
	Date            DateInfo            `json:"date"`
	Amount          *analytics.Criteria `json:"amount,omitempty"`
	SearchTerms     []string            `json:"search_terms,omitempty"`
	TransactionType string              `json:"transaction_type,omitempty"`
	Relevant        bool                `json:"relevant"`
}

// Filter returns the date and category scope of the intent.
func (i Intent) Filter() analytics.Filter {
	f := i.Date.Filter()
	f.Category = i.Category
	return f
}

type intentRule struct {
	kind     IntentType
	keywords []string
}

var intentRules = []intentRule{
	{IntentGreeting, []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"}},
	{IntentHelp, []string{"help", "what can you do", "capabilities", "features"}},
	{IntentTrend, []string{"trend", "trending", "pattern", "over time", "growth", "increase", "decrease"}},
	{IntentComparison, []string{"compare", "comparison", "vs", "versus", "against"}},
	{IntentSearch, []string{"find", "search", "containing", "show me", "payments to"}},
	{IntentThreshold, []string{"above", "below", "greater than", "less than", "between", "over", "under"}},
	{IntentMinimum, []string{"lowest", "minimum", "smallest", "least", "bottom"}},
	{IntentPercentage, []string{"percentage", "percent", "%", "ratio", "proportion"}},
	{IntentFrequency, []string{"frequency", "often", "how many times", "frequent"}},
	{IntentAverage, []string{"average", "avg", "mean"}},
	{IntentTotal, []string{"total", "sum", "how much"}},
	{IntentCount, []string{"count", "number", "how many"}},
	{IntentTop, []string{"top", "highest", "largest", "biggest", "maximum"}},
	{IntentBalance, []string{"balance", "current"}},
	{IntentCategoryBreakdown, []string{"category", "categories", "breakdown"}},
}

type categoryRule struct {
	keyword  string
	category string
}

// First match wins.
var categoryRules = []categoryRule{
	{"food", models.CategoryFoodDining},
	{"dining", models.CategoryFoodDining},
	{"restaurant", models.CategoryFoodDining},
	{"healthcare", models.CategoryHealthcare},
	{"health", models.CategoryHealthcare},
	{"medical", models.CategoryHealthcare},
	{"financial", models.CategoryFinancialServices},
	{"finance", models.CategoryFinancialServices},
	{"transport", models.CategoryTransportation},
	{"transportation", models.CategoryTransportation},
	{"travel", models.CategoryTransportation},
	{"education", models.CategoryEducation},
	{"shopping", models.CategoryShopping},
	{"personal", models.CategoryPersonalCare},
	{"care", models.CategoryPersonalCare},
	{"utilities", models.CategoryUtilitiesBills},
	{"bills", models.CategoryUtilitiesBills},
	{"refund", models.CategoryTransferRefund},
	{"transfer", models.CategoryTransferRefund},
	{"miscellaneous", models.CategoryMiscellaneous},
	{"uncategorized", models.CategoryUncategorized},
}

var (
	creditWords = []string{"credited", "credit", "received", "deposit"}
	debitWords  = []string{"debited", "debit", "withdrawn", "spent", "expense"}
)

var (
	financialKeywords = []string{
		"transaction", "transactions", "spend", "spent", "spending", "expense", "expenses",
		"income", "salary", "payment", "payments", "balance", "money", "amount", "cost",
		"budget", "category", "categories", "debit", "credit", "withdraw", "withdrawal",
		"deposit", "account", "bank", "upi", "atm", "purchase", "bought", "paid", "rs", "₹",
		"rupees", "total", "average", "highest", "lowest", "top", "how many", "how much",
		"trend", "compare", "month", "monthly", "year", "yearly", "week", "weekly",
		"food", "dining", "healthcare", "shopping", "transport", "transportation",
		"education", "financial", "personal care", "utilities", "bills", "refund", "transfer",
	}
	nonFinancialKeywords = []string{
		"weather", "climate", "temperature", "rain", "sunny", "cloudy",
		"recipe", "cooking", "ingredients", "food recipe", "how to cook",
		"movie", "film", "actor", "actress", "cinema", "entertainment",
		"sports", "football", "cricket", "basketball", "game", "match",
		"politics", "government", "election", "politician", "policy",
	}
	smallTalk = []string{"how are you", "what can you do", "help", "what is your name"}
)

const amountNumber = `₹?\s*([\d,]+(?:\.\d+)?)`

var (
	yearPattern    = regexp.MustCompile(`\b(20\d{2})\b`)
	datePattern    = regexp.MustCompile(`\d{4}(-\d{1,2})?`)
	betweenPattern = regexp.MustCompile(`between\s+` + amountNumber + `\s+and\s+` + amountNumber)
	abovePattern   = regexp.MustCompile(`(?:above|greater than|more than|over)\s+` + amountNumber)
	belowPattern   = regexp.MustCompile(`(?:below|less than|under)\s+` + amountNumber)
	exactPattern   = regexp.MustCompile(`(?:equals?|exactly)\s+` + amountNumber)
	quotedPattern  = regexp.MustCompile(`(?:^|\s)["']([^"']+)["'](?:$|[\s?.!,])`)
)

var searchPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:find|search|show|containing|with)\s+(?:all\s+)?(?:transactions?\s+)?(?:containing\s+|with\s+)?["']?([^"'\s]+)["']?`),
	regexp.MustCompile(`(?i)payments?\s+to\s+([^"'\s]+)`),
	regexp.MustCompile(`(?i)transactions?\s+from\s+([^"'\s]+)`),
}

var searchStopWords = []string{"me", "my", "all", "the", "any", "transaction", "transactions", "payment", "payments"}

// Understand reads a question into an Intent.
func Understand(question string) Intent {
	q := strings.ToLower(strings.TrimSpace(question))
	return Intent{
		Type:            intentType(q),
		Category:        categoryOf(q),
		Date:            dateInfo(q),
		Amount:          amountInfo(q),
		SearchTerms:     searchTerms(question),
		TransactionType: transactionType(q),
		Relevant:        isRelevant(q),
	}
}

func intentType(q string) IntentType {
	for _, rule := range intentRules {
		if containsAny(q, rule.keywords) {
			return rule.kind
		}
	}
	return IntentGeneral
}

func categoryOf(q string) string {
	for _, rule := range categoryRules {
		if containsTerm(q, rule.keyword) {
			return rule.category
		}
	}
	return ""
}

func transactionType(q string) string {
	switch {
	case containsAny(q, creditWords):
		return models.DirectionCredit
	case containsAny(q, debitWords):
		return models.DirectionDebit
	default:
		return ""
	}
}

func dateInfo(q string) DateInfo {
	var info DateInfo
	if m, ok := dateutils.FindMonth(q); ok {
		info.Month = m
	}
	if m := yearPattern.FindStringSubmatch(q); m != nil {
		info.Year, _ = strconv.Atoi(m[1])
	}
	switch {
	case strings.Contains(q, "this week"):
		info.Period = PeriodThisWeek
	case strings.Contains(q, "last week"):
		info.Period = PeriodLastWeek
	case containsTerm(q, "weekly"):
		info.Period = PeriodWeekly
	case containsTerm(q, "daily"):
		info.Period = PeriodDaily
	}
	return info
}

func amountInfo(q string) *analytics.Criteria {
	if m := betweenPattern.FindStringSubmatch(q); m != nil {
		lo, errLo := parseAmount(m[1])
		hi, errHi := parseAmount(m[2])
		if errLo == nil && errHi == nil {
			return &analytics.Criteria{Kind: analytics.ThresholdRange, Min: lo, Max: hi}
		}
	}
	if m := abovePattern.FindStringSubmatch(q); m != nil {
		if v, err := parseAmount(m[1]); err == nil {
			return &analytics.Criteria{Kind: analytics.ThresholdAbove, Min: v}
		}
	}
	if m := belowPattern.FindStringSubmatch(q); m != nil {
		if v, err := parseAmount(m[1]); err == nil {
			return &analytics.Criteria{Kind: analytics.ThresholdBelow, Max: v}
		}
	}
	if m := exactPattern.FindStringSubmatch(q); m != nil {
		if v, err := parseAmount(m[1]); err == nil {
			return &analytics.Criteria{Kind: analytics.ThresholdExact, Exact: v}
		}
	}
	return nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
}

// searchTerms keeps the casing of the question. Matching ignores case.
func searchTerms(question string) []string {
	var terms []string
	add := func(t string) {
		t = strings.Trim(strings.TrimSpace(t), "?.,!;:")
		if len([]rune(t)) <= 1 {
			return
		}
		for _, existing := range terms {
			if strings.EqualFold(existing, t) {
				return
			}
		}
		for _, stop := range searchStopWords {
			if strings.EqualFold(stop, t) {
				return
			}
		}
		terms = append(terms, t)
	}

	for _, m := range quotedPattern.FindAllStringSubmatch(question, -1) {
		add(m[1])
	}
	for _, p := range searchPatterns {
		for _, m := range p.FindAllStringSubmatch(question, -1) {
			add(m[1])
		}
	}
	return terms
}

func isRelevant(q string) bool {
	if containsAny(q, nonFinancialKeywords) {
		return false
	}
	if containsAny(q, financialKeywords) || datePattern.MatchString(q) {
		return true
	}
	if containsAny(q, smallTalk) || intentType(q) == IntentGreeting {
		return true
	}
	_, ok := dateutils.FindMonth(q)
	return ok
}

func containsAny(q string, terms []string) bool {
	for _, t := range terms {
		if containsTerm(q, t) {
			return true
		}
	}
	return false
}

// containsTerm matches term in q on word boundaries. A trailing plural "s"
// is accepted for terms longer than two letters.
func containsTerm(q, term string) bool {
	for start := 0; start < len(q); {
		i := strings.Index(q[start:], term)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(term)
		if boundaryBefore(q, i, term) && boundaryAfter(q, end, term) {
			return true
		}
		start = i + 1
	}
	return false
}

func boundaryBefore(q string, i int, term string) bool {
	if i == 0 || !isWordByte(term[0]) {
		return true
	}
	return !isWordByte(q[i-1])
}

func boundaryAfter(q string, end int, term string) bool {
	if end >= len(q) || !isWordByte(term[len(term)-1]) {
		return true
	}
	if q[end] == 's' && len(term) > 2 {
		end++
		if end >= len(q) {
			return true
		}
	}
	return !isWordByte(q[end])
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '_'
}
