package categorizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fjacquet/pdf-ledger/internal/models"
)

const promptHeader = `You are a financial transaction categorizer. Categorize these bank transactions based on their narration.

Available Categories: %s

Categorization Rules:
1. Food & Dining: Restaurants, food delivery, groceries, cafes, supermarkets, food vendors
2. Transportation: Uber, Ola, petrol, metro, bus, taxi, parking, fuel
3. Shopping: Online shopping, retail stores, clothing, electronics, Amazon, Flipkart
4. Healthcare: Hospitals, clinics, pharmacies, medical stores, health insurance, chemists
5. Entertainment: Movies, games, streaming services, sports, recreation
6. Utilities & Bills: Electricity, water, gas, internet, phone bills, rent, recharge
7. Financial Services: Bank charges, loan payments, insurance, investments, mutual funds, SIP
8. Personal Care: Salon, spa, cosmetics, personal hygiene products
9. Education: Schools, courses, books, training, tuition
10. Transfer/Refund: Money transfers to/from individuals, refunds, reversals, person names
11. Miscellaneous: Everything else that doesn't fit the above categories

Key Guidelines:
- For UPI transactions with person names (like "ADITYA ANIL", "KALPANA DEBNAT"), use "Transfer/Refund"
- For business names, categorize based on the business type
- Look for keywords in merchant names
- When uncertain, use "Transfer/Refund" for person-to-person transfers, otherwise "Miscellaneous"

Transactions to categorize:
`

const promptFooter = `
Return ONLY a JSON array with format: [{"id": 0, "category": "Category Name"}, ...]`

// promptCategories lists the categories in the order the rules describe them.
var promptCategories = []string{
	models.CategoryFoodDining,
	models.CategoryTransportation,
	models.CategoryShopping,
	models.CategoryHealthcare,
	models.CategoryEntertainment,
	models.CategoryUtilitiesBills,
	models.CategoryFinancialServices,
	models.CategoryPersonalCare,
	models.CategoryEducation,
	models.CategoryTransferRefund,
	models.CategoryMiscellaneous,
}

// ErrMalformedResponse is returned when the model reply is not the expected
// JSON array.
var ErrMalformedResponse = errors.New("malformed classifier response")

// BuildPrompt renders the batch prompt sent to the model.
func BuildPrompt(items []Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, promptHeader, strings.Join(promptCategories, ", "))
	for _, it := range items {
		fmt.Fprintf(&b, "ID %d: %s (%s%s - %s)\n",
			it.ID, it.Narration, models.CurrencySymbol, it.Amount.StringFixed(2), it.typeLabel())
	}
	b.WriteString(promptFooter)
	return b.String()
}

// CleanResponse strips the markdown code fence models like to wrap JSON in.
func CleanResponse(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

type labelledID struct {
	ID       *int   `json:"id"`
	Category string `json:"category"`
}

// ParseResponse maps the reply onto items by ID. Items the reply does not
// mention get an empty label; entries with unknown IDs are ignored.
func ParseResponse(reply string, items []Item) ([]string, error) {
	var entries []labelledID
	if err := json.Unmarshal([]byte(CleanResponse(reply)), &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	pos := make(map[int]int, len(items))
	for i, it := range items {
		pos[it.ID] = i
	}

	out := make([]string, len(items))
	for _, e := range entries {
		if e.ID == nil {
			continue
		}
		if i, ok := pos[*e.ID]; ok {
			out[i] = strings.TrimSpace(e.Category)
		}
	}
	return out, nil
}
