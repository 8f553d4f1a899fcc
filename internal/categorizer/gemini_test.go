package categorizer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/models"
)

func fastOptions(retries int) GeminiOptions {
	return GeminiOptions{
		MaxRetries:      retries,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	}
}

func TestGeminiClassifier_Classify(t *testing.T) {
	var prompts []string
	g := NewGeminiClassifierWithGenerator(func(_ context.Context, prompt string) (string, error) {
		prompts = append(prompts, prompt)
		return "```json\n[{\"id\": 0, \"category\": \"Food & Dining\"}]\n```", nil
	}, fastOptions(2), logging.NewMockLogger())

	assert.Equal(t, "gemini", g.Name())
	labels, err := g.Classify(context.Background(), []Item{
		{ID: 0, Narration: "ZOMATO", Direction: models.DirectionDebit},
		{ID: 1, Narration: "UNKNOWN", Direction: models.DirectionCredit},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{models.CategoryFoodDining, ""}, labels)
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "ID 1: UNKNOWN")
	assert.NoError(t, g.Close())
}

func TestGeminiClassifier_EmptyBatchSkipsRequest(t *testing.T) {
	g := NewGeminiClassifierWithGenerator(func(context.Context, string) (string, error) {
		t.Fatal("generate must not be called")
		return "", nil
	}, fastOptions(0), nil)

	labels, err := g.Classify(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, labels)
}

func TestGeminiClassifier_RetriesTransientFailures(t *testing.T) {
	calls := 0
	logger := logging.NewMockLogger()
	g := NewGeminiClassifierWithGenerator(func(context.Context, string) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("503 unavailable")
		}
		return `[{"id": 0, "category": "Shopping"}]`, nil
	}, fastOptions(3), logger)

	labels, err := g.Classify(context.Background(), []Item{{ID: 0, Narration: "AMAZON"}})
	require.NoError(t, err)
	assert.Equal(t, []string{models.CategoryShopping}, labels)
	assert.Equal(t, 3, calls)
	assert.Len(t, logger.GetEntriesByLevel("WARN"), 2)
}

func TestGeminiClassifier_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	g := NewGeminiClassifierWithGenerator(func(context.Context, string) (string, error) {
		calls++
		return "", errors.New("quota exceeded")
	}, fastOptions(2), nil)

	_, err := g.Classify(context.Background(), []Item{{ID: 0}})
	assert.ErrorContains(t, err, "quota exceeded")
	assert.Equal(t, 3, calls)
}

func TestGeminiClassifier_MalformedReplyIsNotRetried(t *testing.T) {
	calls := 0
	g := NewGeminiClassifierWithGenerator(func(context.Context, string) (string, error) {
		calls++
		return "I think it's food", nil
	}, fastOptions(3), nil)

	_, err := g.Classify(context.Background(), []Item{{ID: 0}})
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.Equal(t, 1, calls)
}

func TestGeminiClassifier_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGeminiClassifierWithGenerator(func(ctx context.Context, _ string) (string, error) {
		return "", ctx.Err()
	}, fastOptions(5), nil)

	_, err := g.Classify(ctx, []Item{{ID: 0}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewGeminiClassifier_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiClassifier(context.Background(), GeminiOptions{}, nil)
	assert.ErrorContains(t, err, "API key")
}
