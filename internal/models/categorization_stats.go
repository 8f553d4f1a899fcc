package models

import (
	"fjacquet/pdf-ledger/internal/logging"
)

// CategorizationStats tracks how each record of a ledger got its category.
type CategorizationStats struct {
	Total         int // records seen
	Successful    int // accepted from the primary classifier
	Fallback      int // assigned by the keyword rules after a failed batch
	Invalid       int // replaced because the classifier returned an unknown category
	Uncategorized int // left without a category
}

// LogSummary logs a summary of categorization statistics
func (cs CategorizationStats) LogSummary(logger logging.Logger, source string) {
	if logger == nil {
		return
	}

	logger.Info("Categorization summary",
		logging.F(logging.FieldClassifier, source),
		logging.F("total_transactions", cs.Total),
		logging.F("successful", cs.Successful),
		logging.F("fallback", cs.Fallback),
		logging.F("invalid", cs.Invalid),
		logging.F("uncategorized", cs.Uncategorized),
		logging.F("success_rate", cs.GetSuccessRate()),
	)
}

// GetSuccessRate returns the share of records categorized by the primary
// classifier, as a percentage.
func (cs CategorizationStats) GetSuccessRate() float64 {
	if cs.Total == 0 {
		return 0.0
	}
	return float64(cs.Successful) / float64(cs.Total) * 100.0
}

// Merge adds other into cs.
func (cs *CategorizationStats) Merge(other CategorizationStats) {
	cs.Total += other.Total
	cs.Successful += other.Successful
	cs.Fallback += other.Fallback
	cs.Invalid += other.Invalid
	cs.Uncategorized += other.Uncategorized
}
