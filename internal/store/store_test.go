package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/models"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

// NewTestCategoryStore returns a CategoryStore for tests with specific test paths
func NewTestCategoryStore(dir string) *CategoryStore {
	return NewCategoryStore(
		filepath.Join(dir, DefaultCategoriesFile),
		filepath.Join(dir, DefaultMappingsFile),
		logging.NewMockLogger(),
	)
}

func TestNewCategoryStore(t *testing.T) {
	store := NewCategoryStore("categories.yaml", "mappings.yaml", nil)
	assert.Equal(t, "categories.yaml", store.CategoriesFile)
	assert.Equal(t, "mappings.yaml", store.MappingsFile)
	assert.NotNil(t, store.logger)
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	testFile := filepath.Join(dir, "test.yaml")
	writeFile(t, testFile, "test content")

	store := NewCategoryStore("", "", nil)

	file, err := store.FindConfigFile(testFile)
	assert.NoError(t, err)
	assert.Equal(t, testFile, file)

	_, err = store.FindConfigFile(filepath.Join(dir, "nonexistent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadCategories(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantNames []string
		wantErr   bool
	}{
		{
			name: "top level key",
			content: `categories:
  - name: Food & Dining
    keywords: ["bistro", "tiffin"]
`,
			wantNames: []string{models.CategoryFoodDining},
		},
		{
			name: "bare list",
			content: `- name: Shopping
  keywords: ["decathlon"]
- name: Education
  keywords: ["udemy"]
`,
			wantNames: []string{models.CategoryShopping, models.CategoryEducation},
		},
		{
			name: "map form",
			content: `Healthcare:
  keywords: ["Physio"]
`,
			wantNames: []string{models.CategoryHealthcare},
		},
		{
			name:    "malformed",
			content: "categories: [unclosed",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, DefaultCategoriesFile), tt.content)

			cats, err := NewTestCategoryStore(dir).LoadCategories()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			var names []string
			for _, c := range cats {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestLoadCategories_MapFormLowercasesKeywords(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DefaultCategoriesFile), "Healthcare:\n  keywords: [\"Physio\"]\n")

	cats, err := NewTestCategoryStore(dir).LoadCategories()
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, []string{"physio"}, cats[0].Keywords)
}

func TestLoadCategories_MissingFile(t *testing.T) {
	store := NewTestCategoryStore(t.TempDir())
	cats, err := store.LoadCategories()
	assert.NoError(t, err)
	assert.Empty(t, cats)
}

func TestMappings_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	store := NewTestCategoryStore(dir)

	empty, err := store.LoadMappings()
	require.NoError(t, err)
	assert.Empty(t, empty)

	in := map[string]string{
		"upi/premsagar super": models.CategoryFoodDining,
		"nach-mut-dr-groww":   models.CategoryFinancialServices,
	}
	require.NoError(t, store.SaveMappings(in))

	data, err := os.ReadFile(filepath.Join(dir, DefaultMappingsFile))
	require.NoError(t, err)
	var onDisk map[string]string
	require.NoError(t, yaml.Unmarshal(data, &onDisk))
	assert.Equal(t, in, onDisk)

	out, err := store.LoadMappings()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadMappings_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DefaultMappingsFile), "- not\n- a map\n")

	_, err := NewTestCategoryStore(dir).LoadMappings()
	assert.ErrorContains(t, err, "error parsing mappings")
}

func TestMockCategoryStore(t *testing.T) {
	mock := &MockCategoryStore{Categories: []models.CategoryConfig{{Name: models.CategoryShopping}}}

	cats, err := mock.LoadCategories()
	require.NoError(t, err)
	assert.Len(t, cats, 1)

	mappings, err := mock.LoadMappings()
	require.NoError(t, err)
	assert.Empty(t, mappings)

	require.NoError(t, mock.SaveMappings(map[string]string{"a": "b"}))
	assert.Equal(t, 1, mock.SaveCalls)

	mock.LoadCategoriesError = os.ErrPermission
	_, err = mock.LoadCategories()
	assert.ErrorIs(t, err, os.ErrPermission)
}
