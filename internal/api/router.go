// Package api serves the pipeline, the FAQ bundle and the chatbot over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/metrics"
	"fjacquet/pdf-ledger/internal/models"
	"fjacquet/pdf-ledger/internal/pipeline"
)

// Default limits applied when RouterConfig leaves them unset.
const (
	DefaultMaxUploadBytes = 10 << 20
	DefaultRequestTimeout = 60 * time.Second
)

// PipelineRunner processes one uploaded statement.
type PipelineRunner interface {
	Run(ctx context.Context, in pipeline.Input) (*pipeline.Result, error)
}

// SnapshotStore gives the API access to the processed ledger.
type SnapshotStore interface {
	Load() (*models.Ledger, error)
	LoadRaw() ([]byte, error)
	SaveFAQ(bundle any) error
	SnapshotPath() string
	FAQPath() string
	Clear() error
}

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	Pipeline       PipelineRunner
	Snapshots      SnapshotStore
	Metrics        *metrics.Metrics
	Logger         logging.Logger
	MaxUploadBytes int64
	RequestTimeout time.Duration
}

// NewRouter creates the HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	logger := logging.OrDefault(cfg.Logger)
	h := &Handler{
		pipeline:  cfg.Pipeline,
		snapshots: cfg.Snapshots,
		logger:    logger,
		maxUpload: cfg.MaxUploadBytes,
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(Recovery(logger))
	r.Use(cfg.Metrics.Middleware)

	r.Get("/health", h.Health)
	r.Get("/api-info", h.APIInfo)
	r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

		r.Post("/pipeline/run-pipeline", h.RunPipeline)

		r.Get("/data/processed/categorized_transactions.json", h.Transactions)
		r.Delete("/refresh-data", h.RefreshData)

		r.Route("/faq", func(r chi.Router) {
			r.Get("/get-answers", h.Answers)
			r.Get("/total-spending", h.TotalSpending)
			r.Get("/total-income", h.TotalIncome)
			r.Get("/highest-expense", h.HighestExpense)
			r.Get("/highest-category", h.HighestCategory)
			r.Get("/category-spending", h.CategorySpending)
			r.Get("/summary", h.Summary)
		})

		r.Route("/chatbot", func(r chi.Router) {
			r.Post("/chat", h.Chat)
			r.Get("/stats", h.ChatStats)
			r.Get("/status", h.ChatStatus)
		})
	})

	return r
}
