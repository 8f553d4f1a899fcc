// Package store provides functionality for storing and retrieving application
// data: the category rules, learned narration mappings and the processed
// ledger snapshot.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/models"
)

// Default file names looked up by CategoryStore.
const (
	DefaultCategoriesFile = "categories.yaml"
	DefaultMappingsFile   = "mappings.yaml"
)

// CategoryStore manages loading and saving of category data
type CategoryStore struct {
	CategoriesFile string
	MappingsFile   string
	logger         logging.Logger
}

// NewCategoryStore creates a new store for category-related data
func NewCategoryStore(categoriesFile, mappingsFile string, logger logging.Logger) *CategoryStore {
	return &CategoryStore{
		CategoriesFile: categoriesFile,
		MappingsFile:   mappingsFile,
		logger:         logging.OrDefault(logger),
	}
}

// FindConfigFile looks for a configuration file in standard locations
func (s *CategoryStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
		filepath.Join("database", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "pdf-ledger", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadCategories loads keyword rules from the YAML file. A missing file
// yields no rules and no error.
func (s *CategoryStore) LoadCategories() ([]models.CategoryConfig, error) {
	filename := s.CategoriesFile
	if filename == "" {
		filename = DefaultCategoriesFile
	}

	filePath, err := s.FindConfigFile(filename)
	if err != nil {
		s.logger.Debug("Categories file not found", logging.F(logging.FieldFile, filename))
		return []models.CategoryConfig{}, nil
	}

	data, err := os.ReadFile(filePath) // #nosec G304 -- path resolved from configured locations
	if err != nil {
		return nil, fmt.Errorf("error reading categories file: %w", err)
	}

	// "categories: [...]"
	var categoriesConfig models.CategoriesConfig
	if err := yaml.Unmarshal(data, &categoriesConfig); err == nil && len(categoriesConfig.Categories) > 0 {
		s.logger.Debug("Loaded categories",
			logging.F(logging.FieldFile, filePath),
			logging.F(logging.FieldCount, len(categoriesConfig.Categories)))
		return categoriesConfig.Categories, nil
	}

	// bare list without the top-level key
	var categories []models.CategoryConfig
	if err := yaml.Unmarshal(data, &categories); err == nil && len(categories) > 0 {
		return categories, nil
	}

	return s.parseCategoryMap(data)
}

// parseCategoryMap reads the loose "Name: {keywords: [...]}" form.
func (s *CategoryStore) parseCategoryMap(data []byte) ([]models.CategoryConfig, error) {
	var categoriesMap map[string]interface{}
	if err := yaml.Unmarshal(data, &categoriesMap); err != nil {
		return nil, fmt.Errorf("error parsing categories file: %w", err)
	}

	var categories []models.CategoryConfig
	for name, value := range categoriesMap {
		category := models.CategoryConfig{Name: name}
		if v, ok := value.(map[string]interface{}); ok {
			if keywordsList, ok := v["keywords"].([]interface{}); ok {
				for _, k := range keywordsList {
					if keyword, ok := k.(string); ok {
						category.Keywords = append(category.Keywords, strings.ToLower(keyword))
					}
				}
			}
		}
		categories = append(categories, category)
	}
	return categories, nil
}

// LoadMappings loads the narration to category mappings. A missing file
// yields an empty map.
func (s *CategoryStore) LoadMappings() (map[string]string, error) {
	filename := s.MappingsFile
	if filename == "" {
		filename = DefaultMappingsFile
	}

	filePath, err := s.FindConfigFile(filename)
	if err != nil {
		return map[string]string{}, nil
	}

	data, err := os.ReadFile(filePath) // #nosec G304 -- path resolved from configured locations
	if err != nil {
		return nil, fmt.Errorf("error reading mappings file: %w", err)
	}

	mappings := map[string]string{}
	if err := yaml.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("error parsing mappings: %w", err)
	}

	s.logger.Debug("Loaded narration mappings",
		logging.F(logging.FieldFile, filePath),
		logging.F(logging.FieldCount, len(mappings)))
	return mappings, nil
}

// SaveMappings writes the narration to category mappings, defaulting to the
// database directory when the file does not exist yet.
func (s *CategoryStore) SaveMappings(mappings map[string]string) error {
	filename := s.MappingsFile
	if filename == "" {
		filename = DefaultMappingsFile
	}

	filePath, err := s.FindConfigFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		filePath = filename
		if !filepath.IsAbs(filename) {
			filePath = filepath.Join("database", filename)
		}
	}

	if err := os.MkdirAll(filepath.Dir(filePath), models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	data, err := yaml.Marshal(mappings)
	if err != nil {
		return fmt.Errorf("error marshaling mappings: %w", err)
	}
	if err := os.WriteFile(filePath, data, models.PermissionReportFile); err != nil {
		return fmt.Errorf("error writing mappings: %w", err)
	}

	s.logger.Debug("Saved narration mappings",
		logging.F(logging.FieldFile, filePath),
		logging.F(logging.FieldCount, len(mappings)))
	return nil
}
