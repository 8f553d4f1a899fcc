package categorizer

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClassifier is a testify mock of Classifier.
type MockClassifier struct {
	mock.Mock
}

// Name returns a fixed name so tests only need to mock Classify.
func (m *MockClassifier) Name() string {
	return "mock"
}

// Classify returns the mocked labels and error.
func (m *MockClassifier) Classify(ctx context.Context, items []Item) ([]string, error) {
	args := m.Called(ctx, items)
	labels, _ := args.Get(0).([]string)
	return labels, args.Error(1)
}
