package categorizer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/models"
	"fjacquet/pdf-ledger/internal/store"
)

func narrationLedger(narrations ...string) *models.Ledger {
	records := make([]models.TransactionRecord, len(narrations))
	for i, n := range narrations {
		records[i] = models.NewTransactionBuilder().WithIndex(i).WithDateString("01-04-2024").
			WithNarration(n).AsDebit("100").WithBalance("1000").MustBuild()
	}
	return models.NewLedger(records)
}

func batchOf(n int) interface{} {
	return mock.MatchedBy(func(items []Item) bool { return len(items) == n })
}

func TestCategorizer_NoAIUsesKeywordRules(t *testing.T) {
	c := NewCategorizer(nil, nil, Options{}, logging.NewMockLogger())
	assert.False(t, c.HasAI())

	src := narrationLedger("ZOMATO ORDER", "UPI/ADITYA ANIL GUJ/409403199750/UPI")
	out, stats := c.CategorizeLedger(context.Background(), src)

	assert.Equal(t, models.CategoryFoodDining, out.Records[0].Category)
	assert.Equal(t, models.CategoryTransferRefund, out.Records[1].Category)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Fallback)
	assert.Empty(t, src.Records[0].Category, "source ledger must not be modified")
}

func TestCategorizer_AILabelsAreValidated(t *testing.T) {
	ai := &MockClassifier{}
	ai.On("Classify", mock.Anything, batchOf(3)).
		Return([]string{models.CategoryShopping, "Groceries", ""}, nil).Once()

	c := NewCategorizer(ai, nil, Options{}, logging.NewMockLogger())
	out, stats := c.CategorizeLedger(context.Background(), narrationLedger("A", "B", "C"))

	assert.Equal(t, models.CategoryShopping, out.Records[0].Category)
	assert.Equal(t, models.CategoryMiscellaneous, out.Records[1].Category)
	assert.Equal(t, models.CategoryUncategorized, out.Records[2].Category)
	assert.Equal(t, models.CategorizationStats{Total: 3, Successful: 1, Invalid: 1, Uncategorized: 1}, stats)
	ai.AssertExpectations(t)
}

func TestCategorizer_FallbackCategoryForBlankLabels(t *testing.T) {
	ai := &MockClassifier{}
	ai.On("Classify", mock.Anything, batchOf(1)).Return([]string{""}, nil).Once()

	c := NewCategorizer(ai, nil, Options{FallbackCategory: models.CategoryMiscellaneous}, nil)
	out, stats := c.CategorizeLedger(context.Background(), narrationLedger("A"))

	assert.Equal(t, models.CategoryMiscellaneous, out.Records[0].Category)
	assert.Equal(t, 1, stats.Uncategorized)
}

func TestCategorizer_BatchFailureFallsBackPerBatch(t *testing.T) {
	ai := &MockClassifier{}
	ai.On("Classify", mock.Anything, batchOf(2)).
		Return([]string{models.CategoryEducation, models.CategoryEducation}, nil).Once()
	ai.On("Classify", mock.Anything, batchOf(1)).
		Return(nil, errors.New("rate limited")).Once()

	logger := logging.NewMockLogger()
	c := NewCategorizer(ai, nil, Options{BatchSize: 2}, logger)
	out, stats := c.CategorizeLedger(context.Background(), narrationLedger("X", "Y", "UBER TRIP"))

	assert.Equal(t, models.CategoryEducation, out.Records[0].Category)
	assert.Equal(t, models.CategoryEducation, out.Records[1].Category)
	assert.Equal(t, models.CategoryTransportation, out.Records[2].Category)
	assert.Equal(t, 2, stats.Successful)
	assert.Equal(t, 1, stats.Fallback)
	assert.True(t, logger.HasEntry("WARN", "Classifier batch failed, using keyword rules"))
	ai.AssertNumberOfCalls(t, "Classify", 2)
}

func TestCategorizer_ShortResultIsTreatedAsFailure(t *testing.T) {
	ai := &MockClassifier{}
	ai.On("Classify", mock.Anything, mock.Anything).Return([]string{models.CategoryShopping}, nil)

	c := NewCategorizer(ai, nil, Options{}, nil)
	out, stats := c.CategorizeLedger(context.Background(), narrationLedger("NETFLIX", "ZZZ"))

	assert.Equal(t, models.CategoryEntertainment, out.Records[0].Category)
	assert.Equal(t, models.CategoryMiscellaneous, out.Records[1].Category)
	assert.Equal(t, 2, stats.Fallback)
}

func TestCategorizer_EmptyLedger(t *testing.T) {
	ai := &MockClassifier{}
	c := NewCategorizer(ai, nil, Options{}, nil)

	out, stats := c.CategorizeLedger(context.Background(), models.NewLedger(nil))
	assert.True(t, out.IsEmpty())
	assert.Zero(t, stats.Total)
	ai.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
}

func TestCategorizer_MappingsShortCircuitAndLearn(t *testing.T) {
	st := &store.MockCategoryStore{Mappings: map[string]string{
		"Known   Merchant": models.CategoryHealthcare,
		"stale entry":      "Groceries",
	}}
	ai := &MockClassifier{}
	ai.On("Classify", mock.Anything, batchOf(2)).
		Return([]string{models.CategoryPersonalCare, models.CategoryShopping}, nil).Once()

	c := NewCategorizer(ai, st, Options{LearnMappings: true}, nil)
	out, stats := c.CategorizeLedger(context.Background(),
		narrationLedger("KNOWN MERCHANT", "New Salon", "STALE ENTRY"))

	assert.Equal(t, models.CategoryHealthcare, out.Records[0].Category)
	assert.Equal(t, models.CategoryPersonalCare, out.Records[1].Category)
	assert.Equal(t, models.CategoryShopping, out.Records[2].Category)
	assert.Equal(t, 3, stats.Successful)

	require.Equal(t, 1, st.SaveCalls)
	assert.Equal(t, models.CategoryPersonalCare, st.Mappings["new salon"])

	// second run is served from mappings and does not save again
	out, _ = c.CategorizeLedger(context.Background(), narrationLedger("new salon"))
	assert.Equal(t, models.CategoryPersonalCare, out.Records[0].Category)
	assert.Equal(t, 1, st.SaveCalls)
	ai.AssertExpectations(t)
}

func TestCategorizer_NoLearningByDefault(t *testing.T) {
	st := &store.MockCategoryStore{}
	ai := &MockClassifier{}
	ai.On("Classify", mock.Anything, mock.Anything).Return([]string{models.CategoryShopping}, nil)

	c := NewCategorizer(ai, st, Options{}, nil)
	c.CategorizeLedger(context.Background(), narrationLedger("AMAZON"))
	assert.Zero(t, st.SaveCalls)
}

func TestCategorizer_MappingStoreErrorsAreLogged(t *testing.T) {
	logger := logging.NewMockLogger()
	st := &store.MockCategoryStore{
		LoadMappingsError: errors.New("unreadable"),
		SaveMappingsError: errors.New("read-only"),
	}
	ai := &MockClassifier{}
	ai.On("Classify", mock.Anything, mock.Anything).Return([]string{models.CategoryShopping}, nil)

	c := NewCategorizer(ai, st, Options{LearnMappings: true}, logger)
	out, _ := c.CategorizeLedger(context.Background(), narrationLedger("AMAZON"))

	assert.Equal(t, models.CategoryShopping, out.Records[0].Category)
	assert.True(t, logger.HasEntry("WARN", "Failed to load narration mappings"))
	assert.True(t, logger.HasEntry("WARN", "Failed to save narration mappings"))
}

func TestCategorizer_CategorizeNarrations(t *testing.T) {
	c := NewCategorizer(nil, nil, Options{}, nil)
	labels := c.CategorizeNarrations(context.Background(), []string{
		"UPI/Premsagar super/409326729134/UPI",
		"NACH-MUT-DR-GROWW PAY SERVICES",
		"UPI/ADIDAS NEXUS KO/102159664527/UPI",
	})
	assert.Equal(t, []string{
		models.CategoryFoodDining,
		models.CategoryFinancialServices,
		models.CategoryShopping,
	}, labels)
	assert.Empty(t, c.CategorizeNarrations(context.Background(), nil))
}
