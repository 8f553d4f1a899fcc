// Package container provides dependency injection for the pdf-ledger
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"fjacquet/pdf-ledger/internal/analytics"
	"fjacquet/pdf-ledger/internal/categorizer"
	"fjacquet/pdf-ledger/internal/chatbot"
	"fjacquet/pdf-ledger/internal/common"
	"fjacquet/pdf-ledger/internal/config"
	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/metrics"
	"fjacquet/pdf-ledger/internal/parser"
	"fjacquet/pdf-ledger/internal/pdfparser"
	"fjacquet/pdf-ledger/internal/pipeline"
	"fjacquet/pdf-ledger/internal/report"
	"fjacquet/pdf-ledger/internal/store"
)

// Option overrides a dependency the container would otherwise build from
// configuration.
type Option func(*overrides)

type overrides struct {
	logger     logging.Logger
	classifier categorizer.Classifier
	extractor  pdfparser.PageExtractor
}

// WithLogger replaces the logger built from the log section.
func WithLogger(l logging.Logger) Option {
	return func(o *overrides) { o.logger = l }
}

// WithClassifier replaces the Gemini classifier. It applies whether or not
// ai.enabled is set.
func WithClassifier(c categorizer.Classifier) Option {
	return func(o *overrides) { o.classifier = c }
}

// WithExtractor replaces the configured page extractor.
func WithExtractor(e pdfparser.PageExtractor) Option {
	return func(o *overrides) { o.extractor = e }
}

// Container holds all application dependencies and provides methods to access them.
// It is immutable after creation; dependencies are reached through getters.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	store       *store.CategoryStore
	snapshots   *store.SnapshotStore
	classifier  categorizer.Classifier
	categorizer *categorizer.Categorizer
	parser      *pdfparser.Parser
	converter   *pdfparser.Adapter
	registry    *prometheus.Registry
	metrics     *metrics.Metrics
	pipeline    *pipeline.Pipeline
	reports     *report.Generator
}

// NewContainer creates and wires all application dependencies.
// This is the main entry point for dependency injection in the application.
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	var o overrides
	for _, opt := range opts {
		opt(&o)
	}

	// Create logger first as it's needed by other components
	logger := o.logger
	if logger == nil {
		logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}

	if len(cfg.CSV.Delimiter) == 1 {
		common.SetDelimiter(rune(cfg.CSV.Delimiter[0]))
	}

	categoryStore := store.NewCategoryStore(cfg.Categories.File, cfg.Categories.MappingsFile, logger)
	snapshots := store.NewSnapshotStore(cfg.Data.Directory, logger)

	classifier := o.classifier
	if classifier == nil && cfg.AI.Enabled {
		gemini, err := categorizer.NewGeminiClassifier(ctx, categorizer.GeminiOptions{
			APIKey:     cfg.AI.APIKey,
			Model:      cfg.AI.Model,
			Timeout:    cfg.AITimeout(),
			MaxRetries: cfg.AI.MaxRetries,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create AI classifier: %w", err)
		}
		classifier = gemini
	}
	if classifier != nil {
		logger.Info("AI categorization enabled",
			logging.F(logging.FieldClassifier, classifier.Name()))
	} else {
		logger.Info("AI categorization disabled")
	}

	cat := categorizer.NewCategorizer(classifier, categoryStore, categorizer.Options{
		BatchSize:        cfg.AI.BatchSize,
		LearnMappings:    cfg.Categories.LearnMappings,
		FallbackCategory: cfg.AI.FallbackCategory,
	}, logger)

	extractor := o.extractor
	if extractor == nil {
		var err error
		extractor, err = pdfparser.NewExtractor(cfg.Parsers.PDF.Extractor)
		if err != nil {
			return nil, err
		}
	}
	parserOpts := pdfparser.Options{
		Layout:    pdfparser.NewDrCrLayout(cfg.Parsers.PDF.LookaheadLines),
		Extractor: extractor,
		Logger:    logger,
		Workers:   cfg.Parsers.PDF.Workers,
	}
	pdf := pdfparser.NewParser(parserOpts)

	registry := metrics.NewRegistry()
	m := metrics.New(registry)

	p := pipeline.New(pipeline.Options{
		Parser:       pdf,
		Categorizer:  cat,
		Store:        snapshots,
		Metrics:      m,
		BalanceCheck: cfg.Validation.BalanceCheck,
		Logger:       logger,
	})

	logger.Info("Container initialized successfully",
		logging.F("extractor", cfg.Parsers.PDF.Extractor),
		logging.F("ai_enabled", classifier != nil),
		logging.F("data_dir", snapshots.Dir()))

	return &Container{
		logger:      logger,
		config:      cfg,
		store:       categoryStore,
		snapshots:   snapshots,
		classifier:  classifier,
		categorizer: cat,
		parser:      pdf,
		converter:   pdfparser.NewAdapter(logger, parserOpts),
		registry:    registry,
		metrics:     m,
		pipeline:    p,
		reports:     report.NewGenerator(logger),
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the category rule and mapping store.
func (c *Container) GetStore() *store.CategoryStore {
	return c.store
}

// GetSnapshots returns the processed-ledger store.
func (c *Container) GetSnapshots() *store.SnapshotStore {
	return c.snapshots
}

// GetClassifier returns the AI classifier, or nil when AI is not enabled.
func (c *Container) GetClassifier() categorizer.Classifier {
	return c.classifier
}

// GetCategorizer returns the container's categorizer instance.
func (c *Container) GetCategorizer() *categorizer.Categorizer {
	return c.categorizer
}

// GetParser returns the statement parser.
func (c *Container) GetParser() *pdfparser.Parser {
	return c.parser
}

// GetConverter returns the parse-only statement converter.
func (c *Container) GetConverter() parser.FullParser {
	return c.converter
}

// GetMetrics returns the application metrics.
func (c *Container) GetMetrics() *metrics.Metrics {
	return c.metrics
}

// GetRegistry returns the Prometheus registry the metrics are registered on.
func (c *Container) GetRegistry() *prometheus.Registry {
	return c.registry
}

// GetPipeline returns the statement pipeline.
func (c *Container) GetPipeline() *pipeline.Pipeline {
	return c.pipeline
}

// GetReports returns the report generator.
func (c *Container) GetReports() *report.Generator {
	return c.reports
}

// Engine loads the latest snapshot into an analytics engine. It returns
// store.ErrSnapshotNotFound when nothing has been processed.
func (c *Container) Engine() (*analytics.Engine, error) {
	ledger, err := c.snapshots.Load()
	if err != nil {
		return nil, err
	}
	return analytics.NewEngine(ledger, analytics.WithSource(c.snapshots.SnapshotPath())), nil
}

// Chatbot returns a bot over the latest snapshot. With no snapshot the bot
// answers every question with chatbot.NoDataMessage.
func (c *Container) Chatbot() (*chatbot.Bot, error) {
	engine, err := c.Engine()
	if err != nil && !errors.Is(err, store.ErrSnapshotNotFound) {
		return nil, err
	}
	return chatbot.New(engine, c.logger), nil
}

// Close releases the AI client if one was created.
func (c *Container) Close() error {
	if closer, ok := c.classifier.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("failed to close AI classifier: %w", err)
		}
	}
	c.logger.Debug("Container closed")
	return nil
}
