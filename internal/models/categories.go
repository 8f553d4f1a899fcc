package models

// Categories
const (
	CategoryFoodDining        = "Food & Dining"
	CategoryHealthcare        = "Healthcare"
	CategoryTransportation    = "Transportation"
	CategoryFinancialServices = "Financial Services"
	CategoryTransferRefund    = "Transfer/Refund"
	CategoryUtilitiesBills    = "Utilities & Bills"
	CategoryShopping          = "Shopping"
	CategoryEntertainment     = "Entertainment"
	CategoryPersonalCare      = "Personal Care"
	CategoryEducation         = "Education"
	CategoryMiscellaneous     = "Miscellaneous"
	CategoryUncategorized     = "Uncategorized"
)

// Categories lists the fixed category set in display order. Uncategorized is
// not part of the set; it marks records that were never classified.
var Categories = []string{
	CategoryFoodDining,
	CategoryHealthcare,
	CategoryTransportation,
	CategoryFinancialServices,
	CategoryTransferRefund,
	CategoryUtilitiesBills,
	CategoryShopping,
	CategoryEntertainment,
	CategoryPersonalCare,
	CategoryEducation,
	CategoryMiscellaneous,
}

var categorySet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		m[c] = struct{}{}
	}
	return m
}()

// IsValidCategory reports whether name belongs to the fixed category set.
func IsValidCategory(name string) bool {
	_, ok := categorySet[name]
	return ok
}

// CategoryConfig represents a category with its keywords loaded from YAML.
type CategoryConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// CategoriesConfig is the root structure of the categories YAML file.
type CategoriesConfig struct {
	Categories []CategoryConfig `yaml:"categories"`
}
