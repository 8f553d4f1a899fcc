// Package categorizer assigns spending categories to ledger records. Labels
// come from, in order: learned narration mappings, an optional AI classifier
// and the offline keyword rules. Categorization is best effort and never
// fails a ledger.
package categorizer

import (
	"context"
	"strings"
	"sync"

	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/models"
)

// DefaultBatchSize is the number of records sent to the AI classifier per
// request.
const DefaultBatchSize = 8

// Options configures a Categorizer.
type Options struct {
	// BatchSize defaults to DefaultBatchSize when not positive.
	BatchSize int
	// LearnMappings stores AI labels as narration mappings for later runs.
	LearnMappings bool
	// FallbackCategory labels records the classifier left blank. Defaults
	// to models.CategoryUncategorized.
	FallbackCategory string
}

// Categorizer labels ledgers in batches.
type Categorizer struct {
	ai       Classifier
	keyword  *KeywordClassifier
	store    CategoryStoreInterface
	opts     Options
	logger   logging.Logger
	mu       sync.RWMutex
	mappings map[string]string
	isDirty  bool
}

// NewCategorizer creates a categorizer. ai may be nil, in which case only
// mappings and keyword rules are used. store may be nil.
func NewCategorizer(ai Classifier, store CategoryStoreInterface, opts Options, logger logging.Logger) *Categorizer {
	logger = logging.OrDefault(logger)
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.FallbackCategory == "" {
		opts.FallbackCategory = models.CategoryUncategorized
	}

	c := &Categorizer{
		ai:       ai,
		keyword:  NewKeywordClassifier(store, logger),
		store:    store,
		opts:     opts,
		logger:   logger,
		mappings: map[string]string{},
	}

	if store != nil {
		mappings, err := store.LoadMappings()
		if err != nil {
			logger.WithError(err).Warn("Failed to load narration mappings")
		}
		for k, v := range mappings {
			c.mappings[normalizeNarration(k)] = v
		}
	}
	return c
}

// HasAI reports whether an AI classifier is configured.
func (c *Categorizer) HasAI() bool {
	return c.ai != nil
}

// CategorizeLedger returns a copy of ledger with every record labelled, plus
// statistics. The source ledger is not modified.
func (c *Categorizer) CategorizeLedger(ctx context.Context, ledger *models.Ledger) (*models.Ledger, models.CategorizationStats) {
	out := ledger.Clone()
	items := make([]Item, len(out.Records))
	for i, rec := range out.Records {
		items[i] = ItemFromRecord(i, rec)
	}

	labels, stats := c.classify(ctx, items)
	for i := range out.Records {
		out.Records[i].Category = labels[i]
	}
	return out, stats
}

// CategorizeNarrations labels bare narrations. The result has one label per
// input, in order.
func (c *Categorizer) CategorizeNarrations(ctx context.Context, narrations []string) []string {
	items := make([]Item, len(narrations))
	for i, n := range narrations {
		items[i] = Item{ID: i, Narration: n, Direction: models.DirectionDebit}
	}
	labels, _ := c.classify(ctx, items)
	return labels
}

func (c *Categorizer) classify(ctx context.Context, items []Item) ([]string, models.CategorizationStats) {
	stats := models.CategorizationStats{Total: len(items)}
	labels := make([]string, len(items))

	var pending []Item
	for _, it := range items {
		if label, ok := c.lookupMapping(it.Narration); ok {
			labels[it.ID] = label
			stats.Successful++
			continue
		}
		pending = append(pending, it)
	}

	for start, batchNum := 0, 1; start < len(pending); start, batchNum = start+c.opts.BatchSize, batchNum+1 {
		end := min(start+c.opts.BatchSize, len(pending))
		batch := pending[start:end]
		c.classifyBatch(ctx, batchNum, batch, labels, &stats)
	}

	c.saveMappings()
	return labels, stats
}

func (c *Categorizer) classifyBatch(ctx context.Context, batchNum int, batch []Item, labels []string, stats *models.CategorizationStats) {
	if c.ai == nil {
		fallback, _ := c.keyword.Classify(ctx, batch)
		for i, it := range batch {
			labels[it.ID] = fallback[i]
		}
		stats.Fallback += len(batch)
		return
	}

	result, err := c.ai.Classify(ctx, batch)
	if err != nil || len(result) != len(batch) {
		c.logger.WithError(err).Warn("Classifier batch failed, using keyword rules",
			logging.F(logging.FieldClassifier, c.ai.Name()),
			logging.F(logging.FieldBatch, batchNum),
			logging.F(logging.FieldCount, len(batch)))
		fallback, _ := c.keyword.Classify(ctx, batch)
		for i, it := range batch {
			labels[it.ID] = fallback[i]
		}
		stats.Fallback += len(batch)
		return
	}

	for i, it := range batch {
		label := result[i]
		switch {
		case label == "":
			labels[it.ID] = c.opts.FallbackCategory
			stats.Uncategorized++
		case !models.IsValidCategory(label):
			c.logger.Warn("Classifier returned an unknown category",
				logging.F(logging.FieldCategory, label),
				logging.F(logging.FieldBatch, batchNum))
			labels[it.ID] = models.CategoryMiscellaneous
			stats.Invalid++
		default:
			labels[it.ID] = label
			stats.Successful++
			c.learn(it.Narration, label)
		}
	}

	c.logger.Debug("Classifier batch completed",
		logging.F(logging.FieldClassifier, c.ai.Name()),
		logging.F(logging.FieldBatch, batchNum),
		logging.F(logging.FieldCount, len(batch)))
}

func (c *Categorizer) lookupMapping(narration string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	label, ok := c.mappings[normalizeNarration(narration)]
	if !ok || !models.IsValidCategory(label) {
		return "", false
	}
	return label, true
}

func (c *Categorizer) learn(narration, label string) {
	if !c.opts.LearnMappings || c.store == nil {
		return
	}
	key := normalizeNarration(narration)
	if key == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mappings[key] != label {
		c.mappings[key] = label
		c.isDirty = true
	}
}

func (c *Categorizer) saveMappings() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isDirty || c.store == nil {
		return
	}
	if err := c.store.SaveMappings(c.mappings); err != nil {
		c.logger.WithError(err).Warn("Failed to save narration mappings")
		return
	}
	c.isDirty = false
}

func normalizeNarration(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
