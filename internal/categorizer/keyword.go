package categorizer

import (
	"context"
	"strings"

	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/models"
)

// keywordRule maps lowercase substrings to a category. Rules are checked in
// order and the first hit wins.
type keywordRule struct {
	category string
	keywords []string
}

var specialRules = []keywordRule{
	{category: models.CategoryTransferRefund, keywords: []string{"cashback", "earned"}},
	{category: models.CategoryFinancialServices, keywords: []string{"int.pd", "interest"}},
	{category: models.CategoryShopping, keywords: []string{"adidas", "nike"}},
}

var builtinRules = []keywordRule{
	{category: models.CategoryFoodDining, keywords: []string{
		"super", "restaurant", "food", "zomato", "swiggy", "cafe", "hotel",
		"mess", "canteen", "dhaba", "bakery", "pizza", "burger", "grocery",
		"mart", "store", "fresh", "fruits", "vegetables", "milk", "bread", "mingos",
	}},
	{category: models.CategoryHealthcare, keywords: []string{
		"chemist", "pharmacy", "medical", "hospital", "clinic", "health",
		"doctor", "medicine", "pharma", "apollo", "care", "diagnostics",
		"pathology", "lab", "dental", "eye", "skin",
	}},
	{category: models.CategoryTransportation, keywords: []string{
		"uber", "ola", "petrol", "fuel", "metro", "bus", "taxi", "auto",
		"rickshaw", "transport", "travel", "booking", "irctc", "railway",
		"airlines", "flight", "cab", "bike", "scooter",
	}},
	{category: models.CategoryFinancialServices, keywords: []string{
		"groww", "mutual", "fund", "bank", "loan", "insurance", "invest",
		"sip", "rd", "fd", "policy", "premium", "emi", "interest", "zerodha",
		"upstox", "icicidirect", "hdfc", "axis", "kotak",
	}},
	{category: models.CategoryTransferRefund, keywords: []string{
		"transfer", "refund", "neft", "imps", "rtgs", "cashback", "reversal",
		"credited", "debited",
	}},
	{category: models.CategoryUtilitiesBills, keywords: []string{
		"electricity", "water", "gas", "bill", "recharge", "mobile",
		"broadband", "internet", "wifi", "jio", "airtel", "vodafone", "bsnl",
		"rent", "maintenance",
	}},
	{category: models.CategoryShopping, keywords: []string{
		"amazon", "flipkart", "myntra", "ajio", "shop", "store", "mall",
		"online", "purchase", "buy", "order", "delivery", "ecommerce",
		"fashion", "clothing", "electronics", "mobile", "laptop",
	}},
	{category: models.CategoryEntertainment, keywords: []string{
		"movie", "netflix", "prime", "hotstar", "spotify", "youtube", "game",
		"gaming", "cinema", "theatre", "show", "concert", "music",
		"subscription", "entertainment",
	}},
	{category: models.CategoryPersonalCare, keywords: []string{
		"salon", "spa", "parlour", "beauty", "cosmetic", "skincare",
		"haircut", "facial", "massage", "grooming",
	}},
	{category: models.CategoryEducation, keywords: []string{
		"school", "college", "university", "course", "training", "education",
		"tuition", "coaching", "book", "study",
	}},
}

// UPI narrations to people carry one of these markers.
var personIndicators = []string{
	"upi/", "/upi", "aditya", "kalpana", "pushpa", "nagamma", "fathima",
	"suhara", "clive", "allen", "savitha", "debnat", "mohan", "kumar",
}

// A person marker next to one of these is a shop run under a person's name.
var businessKeywords = []string{"super", "store", "shop", "mart", "services", "pvt", "ltd"}

// KeywordClassifier is the offline rule-based classifier. It never fails and
// always returns a category from models.Categories.
type KeywordClassifier struct {
	rules  []keywordRule
	logger logging.Logger
}

// NewKeywordClassifier creates a classifier using the YAML rules from store
// ahead of the built-in table. store may be nil.
func NewKeywordClassifier(store CategoryStoreInterface, logger logging.Logger) *KeywordClassifier {
	k := &KeywordClassifier{logger: logging.OrDefault(logger)}
	if store == nil {
		return k
	}

	categories, err := store.LoadCategories()
	if err != nil {
		k.logger.WithError(err).Warn("Failed to load categories")
		return k
	}
	for _, c := range categories {
		if !models.IsValidCategory(c.Name) {
			k.logger.Warn("Ignoring rules for unknown category", logging.F(logging.FieldCategory, c.Name))
			continue
		}
		rule := keywordRule{category: c.Name}
		for _, kw := range c.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				rule.keywords = append(rule.keywords, kw)
			}
		}
		if len(rule.keywords) > 0 {
			k.rules = append(k.rules, rule)
		}
	}
	return k
}

// Name returns the classifier name for logging and stats.
func (k *KeywordClassifier) Name() string {
	return "keyword"
}

// Classify labels every item. It never returns an error.
func (k *KeywordClassifier) Classify(_ context.Context, items []Item) ([]string, error) {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = k.Categorize(it.Narration)
	}
	return out, nil
}

// Categorize labels a single narration.
func (k *KeywordClassifier) Categorize(narration string) string {
	n := strings.ToLower(narration)

	if c, ok := matchRules(specialRules, n); ok {
		return c
	}
	if containsAny(n, personIndicators) && !containsAny(n, businessKeywords) {
		return models.CategoryTransferRefund
	}
	if c, ok := matchRules(k.rules, n); ok {
		return c
	}
	if c, ok := matchRules(builtinRules, n); ok {
		return c
	}
	return models.CategoryMiscellaneous
}

func matchRules(rules []keywordRule, narration string) (string, bool) {
	for _, r := range rules {
		if containsAny(narration, r.keywords) {
			return r.category, true
		}
	}
	return "", false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
