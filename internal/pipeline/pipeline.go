// Package pipeline runs one statement end to end: parse, balance check,
// categorization, snapshot and metrics.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/metrics"
	"fjacquet/pdf-ledger/internal/models"
	"fjacquet/pdf-ledger/internal/pdfparser"
	"fjacquet/pdf-ledger/internal/validation"
)

// ErrNoInput is returned when an Input names neither a path nor a reader.
var ErrNoInput = errors.New("no statement given: set a path or a reader")

// StatementParser parses a statement from a file or a stream.
type StatementParser interface {
	Parse(ctx context.Context, r io.Reader) (*pdfparser.ParseResult, error)
	ParseFile(ctx context.Context, path string) (*pdfparser.ParseResult, error)
}

// LedgerCategorizer labels the records of a ledger.
type LedgerCategorizer interface {
	CategorizeLedger(ctx context.Context, ledger *models.Ledger) (*models.Ledger, models.CategorizationStats)
}

// SnapshotStore persists the processed ledger and the raw upload.
type SnapshotStore interface {
	Save(ledger *models.Ledger) error
	SaveRaw(name string, r io.Reader) (string, error)
}

// Options configures a Pipeline. Parser and Store are required; the rest are
// optional.
type Options struct {
	Parser       StatementParser
	Categorizer  LedgerCategorizer
	Store        SnapshotStore
	Metrics      *metrics.Metrics
	BalanceCheck bool
	Logger       logging.Logger
}

// Input names the statement to process. Path wins when both are set. When a
// Reader is given with a Name, the upload is kept under the raw directory
// before parsing.
type Input struct {
	Path   string
	Reader io.Reader
	Name   string
	// SkipCategorize leaves every record uncategorized.
	SkipCategorize bool
}

// Result describes one run.
type Result struct {
	RunID    string
	Outcome  models.Outcome
	Ledger   *models.Ledger
	Stats    models.CategorizationStats
	Warnings []validation.BalanceWarning
	Dropped  int
	Duration time.Duration
}

// Message is the user-facing text for the run's outcome.
func (r *Result) Message() string {
	return r.Outcome.Message()
}

// Pipeline processes statements.
type Pipeline struct {
	parser       StatementParser
	categorizer  LedgerCategorizer
	store        SnapshotStore
	metrics      *metrics.Metrics
	balanceCheck bool
	logger       logging.Logger
	now          func() time.Time
}

// New creates a Pipeline.
func New(opts Options) *Pipeline {
	return &Pipeline{
		parser:       opts.Parser,
		categorizer:  opts.Categorizer,
		store:        opts.Store,
		metrics:      opts.Metrics,
		balanceCheck: opts.BalanceCheck,
		logger:       logging.OrDefault(opts.Logger),
		now:          time.Now,
	}
}

// Run processes one statement. On a hard failure the returned Result has
// Outcome OutcomeFailed and the error is returned alongside it. An empty
// ledger is not an error and still replaces the snapshot.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	start := p.now()
	res := &Result{RunID: uuid.NewString(), Outcome: models.OutcomeFailed}
	log := p.logger.WithField(logging.FieldRunID, res.RunID)

	defer func() {
		res.Duration = p.now().Sub(start)
		p.metrics.ObserveRun(res.Outcome, res.Ledger.Len(), res.Dropped, len(res.Warnings), res.Duration)
		log.Info("Pipeline run finished",
			logging.F(logging.FieldOutcome, res.Outcome.String()),
			logging.F(logging.FieldCount, res.Ledger.Len()),
			logging.F(logging.FieldDuration, res.Duration.Milliseconds()))
	}()

	parsed, err := p.parse(ctx, in, log)
	if err != nil {
		log.WithError(err).Error("Statement could not be processed")
		return res, err
	}
	ledger := parsed.Ledger
	res.Dropped = parsed.Dropped

	if p.balanceCheck {
		res.Warnings = validation.CheckBalances(ledger, log)
	}

	if !ledger.IsEmpty() && p.categorizer != nil && !in.SkipCategorize {
		ledger, res.Stats = p.categorizer.CategorizeLedger(ctx, ledger)
		p.metrics.ObserveCategorization(res.Stats)
	}

	if err := p.store.Save(ledger); err != nil {
		log.WithError(err).Error("Failed to save transaction snapshot")
		return res, fmt.Errorf("failed to save snapshot: %w", err)
	}

	res.Ledger = ledger
	res.Outcome = models.OutcomeSuccess
	if ledger.IsEmpty() {
		res.Outcome = models.OutcomeEmpty
	}
	return res, nil
}

func (p *Pipeline) parse(ctx context.Context, in Input, log logging.Logger) (*pdfparser.ParseResult, error) {
	switch {
	case in.Path != "":
		log.Info("Pipeline run started", logging.F(logging.FieldInputFile, in.Path))
		return p.parser.ParseFile(ctx, in.Path)
	case in.Reader != nil && in.Name != "":
		path, err := p.store.SaveRaw(in.Name, in.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to store upload: %w", err)
		}
		log.Info("Pipeline run started", logging.F(logging.FieldInputFile, path))
		return p.parser.ParseFile(ctx, path)
	case in.Reader != nil:
		log.Info("Pipeline run started")
		return p.parser.Parse(ctx, in.Reader)
	default:
		return nil, ErrNoInput
	}
}
