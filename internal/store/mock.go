package store

import (
	"maps"

	"fjacquet/pdf-ledger/internal/models"
)

// MockCategoryStore is a mock implementation of CategoryStore for testing.
type MockCategoryStore struct {
	Categories []models.CategoryConfig
	Mappings   map[string]string

	LoadCategoriesError error
	LoadMappingsError   error
	SaveMappingsError   error
	SaveCalls           int
}

// LoadCategories returns the mock categories.
func (m *MockCategoryStore) LoadCategories() ([]models.CategoryConfig, error) {
	if m.LoadCategoriesError != nil {
		return nil, m.LoadCategoriesError
	}
	return m.Categories, nil
}

// LoadMappings returns a copy of the mock mappings.
func (m *MockCategoryStore) LoadMappings() (map[string]string, error) {
	if m.LoadMappingsError != nil {
		return nil, m.LoadMappingsError
	}
	if m.Mappings == nil {
		return map[string]string{}, nil
	}
	return maps.Clone(m.Mappings), nil
}

// SaveMappings replaces the mock mappings.
func (m *MockCategoryStore) SaveMappings(mappings map[string]string) error {
	m.SaveCalls++
	if m.SaveMappingsError != nil {
		return m.SaveMappingsError
	}
	m.Mappings = maps.Clone(mappings)
	return nil
}
