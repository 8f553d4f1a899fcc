package categorizer

import (
	"context"

	"github.com/shopspring/decimal"

	"fjacquet/pdf-ledger/internal/models"
)

// Classifier assigns one category label per item. The returned slice has the
// same length as items; an empty string marks an item the classifier could
// not label.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, items []Item) ([]string, error)
}

// Item is the view of a transaction a classifier sees.
type Item struct {
	ID        int
	Narration string
	Amount    decimal.Decimal
	Direction string
}

// ItemFromRecord builds the classifier input for a ledger record.
func ItemFromRecord(id int, rec models.TransactionRecord) Item {
	return Item{
		ID:        id,
		Narration: rec.Narration,
		Amount:    rec.Amount(),
		Direction: rec.Direction(),
	}
}

// typeLabel renders the direction the way the prompt describes it.
func (i Item) typeLabel() string {
	if i.Direction == models.DirectionDebit {
		return "debit"
	}
	return "credit"
}

// CategoryStoreInterface is the subset of store.CategoryStore used here.
type CategoryStoreInterface interface {
	LoadCategories() ([]models.CategoryConfig, error)
	LoadMappings() (map[string]string, error)
	SaveMappings(mappings map[string]string) error
}
