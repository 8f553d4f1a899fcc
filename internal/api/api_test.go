package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/pdf-ledger/internal/analytics"
	"fjacquet/pdf-ledger/internal/chatbot"
	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/metrics"
	"fjacquet/pdf-ledger/internal/models"
	"fjacquet/pdf-ledger/internal/pdfparser"
	"fjacquet/pdf-ledger/internal/pipeline"
	"fjacquet/pdf-ledger/internal/store"
)

var statementPage = strings.Join([]string{
	"02-04-2024 SALARY CREDIT 10,000.00(Cr) 20,000.00(Cr)",
	"05-04-2024 UPI/SWIGGY/ORDER 250.00(Dr) 19,750.00(Cr)",
}, "\n")

type testServer struct {
	router    http.Handler
	snapshots *store.SnapshotStore
	metrics   *metrics.Metrics
	logger    *logging.MockLogger
	dataDir   string
}

func newTestServer(t *testing.T, pages []string, extractErr error, opts ...func(*RouterConfig)) *testServer {
	t.Helper()
	dataDir := filepath.Join(t.TempDir(), "data")
	logger := logging.NewMockLogger()
	snapshots := store.NewSnapshotStore(dataDir, logger)
	m := metrics.New(prometheus.NewRegistry())

	p := pipeline.New(pipeline.Options{
		Parser: pdfparser.NewParser(pdfparser.Options{
			Extractor: pdfparser.NewMockExtractor(pages, extractErr),
			Logger:    logger,
		}),
		Store:   snapshots,
		Metrics: m,
		Logger:  logger,
	})

	cfg := RouterConfig{
		Pipeline:  p,
		Snapshots: snapshots,
		Metrics:   m,
		Logger:    logger,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &testServer{router: NewRouter(cfg), snapshots: snapshots, metrics: m, logger: logger, dataDir: dataDir}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// seed stores a categorized three-record ledger as the current snapshot.
func (s *testServer) seed(t *testing.T) {
	t.Helper()
	rows := []struct {
		date, narration, amount, balance, category string
		credit                                     bool
	}{
		{"01-04-2024", "SALARY", "10000", "10000", models.CategoryTransferRefund, true},
		{"05-04-2024", "SWIGGY ORDER", "250", "9750", models.CategoryFoodDining, false},
		{"10-04-2024", "AMAZON ORDER", "1000", "8750", models.CategoryShopping, false},
	}
	records := make([]models.TransactionRecord, len(rows))
	for i, r := range rows {
		b := models.NewTransactionBuilder().WithIndex(i).WithDateString(r.date).
			WithNarration(r.narration).WithBalance(r.balance).WithCategory(r.category)
		if r.credit {
			b = b.AsCredit(r.amount)
		} else {
			b = b.AsDebit(r.amount)
		}
		records[i] = b.MustBuild()
	}
	require.NoError(t, s.snapshots.Save(models.NewLedger(records)))
}

func uploadRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/pipeline/run-pipeline", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := s.get("/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = s.get("/api-info")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/pipeline/run-pipeline")
}

func TestRunPipeline_Outcomes(t *testing.T) {
	tests := []struct {
		name        string
		pages       []string
		extractErr  error
		wantStatus  int
		wantMessage string
		wantCount   int
	}{
		{
			name:        "success",
			pages:       []string{statementPage},
			wantStatus:  http.StatusOK,
			wantMessage: "statement processed successfully",
			wantCount:   2,
		},
		{
			name:        "no transactions",
			pages:       []string{"Account summary only"},
			wantStatus:  http.StatusOK,
			wantMessage: "no transactions found, check the file",
			wantCount:   0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.pages, tt.extractErr)

			rec := s.do(uploadRequest(t, UploadField, "statement.pdf", []byte("%PDF-1.5\n")))
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			resp := decode[runResponse](t, rec)
			assert.Equal(t, tt.wantMessage, resp.Message)
			assert.Equal(t, tt.wantCount, resp.Count)
			assert.NotEmpty(t, resp.RunID)

			_, err := os.Stat(filepath.Join(s.dataDir, store.RawDir, "statement.pdf"))
			assert.NoError(t, err, "upload should be kept")

			saved, err := s.snapshots.Load()
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, saved.Len())
		})
	}
}

func TestRunPipeline_UnreadablePDF(t *testing.T) {
	s := newTestServer(t, nil, errors.New("not a pdf"))

	rec := s.do(uploadRequest(t, UploadField, "broken.pdf", []byte("garbage")))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "statement could not be processed", resp.Error)
	assert.NotEmpty(t, resp.Message)

	_, err := s.snapshots.Load()
	assert.ErrorIs(t, err, store.ErrSnapshotNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.StatementsProcessed.WithLabelValues("failed")))
}

func TestRunPipeline_BadUploads(t *testing.T) {
	t.Run("missing field", func(t *testing.T) {
		s := newTestServer(t, []string{statementPage}, nil)
		rec := s.do(uploadRequest(t, "file", "statement.pdf", []byte("%PDF")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode[ErrorResponse](t, rec).Message, `"pdf"`)
	})

	t.Run("too large", func(t *testing.T) {
		s := newTestServer(t, []string{statementPage}, nil, func(c *RouterConfig) {
			c.MaxUploadBytes = 64
		})
		rec := s.do(uploadRequest(t, UploadField, "statement.pdf", bytes.Repeat([]byte("x"), 1024)))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestTransactions(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := s.get("/data/processed/categorized_transactions.json")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	s.seed(t)
	rec = s.get("/data/processed/categorized_transactions.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	assert.Len(t, rows, 3)
}

func TestRefreshData(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.seed(t)

	rec := s.do(httptest.NewRequest(http.MethodDelete, "/refresh-data", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Processed data cleared successfully"}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, s.get("/data/processed/categorized_transactions.json").Code)
}

func TestFAQ_NoSnapshot(t *testing.T) {
	s := newTestServer(t, nil, nil)
	for _, path := range []string{
		"/faq/get-answers",
		"/faq/total-spending",
		"/faq/total-income",
		"/faq/highest-expense",
		"/faq/highest-category",
		"/faq/category-spending",
		"/faq/summary",
	} {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, http.StatusNotFound, s.get(path).Code)
		})
	}
}

func TestFAQ_Answers(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.seed(t)

	rec := s.get("/faq/get-answers")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Message        string        `json:"message"`
		TotalQuestions int           `json:"total_questions"`
		OutputFile     string        `json:"output_file"`
		Data           analytics.FAQ `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Financial analysis completed successfully", resp.Message)
	assert.Equal(t, 8, resp.TotalQuestions)
	assert.Equal(t, s.snapshots.FAQPath(), resp.OutputFile)
	assert.Equal(t, 3, resp.Data.FinancialAnalysis.Metadata.TotalTransactionsAnalyzed)
	assert.Equal(t, s.snapshots.SnapshotPath(), resp.Data.FinancialAnalysis.Metadata.SourceFile)

	_, err := os.Stat(s.snapshots.FAQPath())
	assert.NoError(t, err, "bundle should be persisted")
}

func TestFAQ_SingleQuestions(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.seed(t)

	tests := []struct {
		path     string
		question string
		answer   string
	}{
		{
			path:     "/faq/total-spending",
			question: analytics.QuestionTotalSpending,
			answer:   "Your total spending is ₹1,250.00",
		},
		{
			path:     "/faq/total-income",
			question: analytics.QuestionTotalIncome,
		},
		{
			path:     "/faq/highest-expense",
			question: analytics.QuestionHighestExpense,
		},
		{
			path:     "/faq/highest-category",
			question: analytics.QuestionHighestCategory,
		},
		{
			path:     "/faq/category-spending",
			question: analytics.QuestionCategorySpending,
		},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := s.get(tt.path)
			require.Equal(t, http.StatusOK, rec.Code)

			resp := decode[qaResponse](t, rec)
			assert.Equal(t, tt.question, resp.Question)
			assert.NotEmpty(t, resp.Answer)
			if tt.answer != "" {
				assert.Equal(t, tt.answer, resp.Answer)
			}
		})
	}
}

func TestFAQ_Summary(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.seed(t)

	rec := s.get("/faq/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[summaryResponse](t, rec)
	assert.Equal(t, financialSummary{
		TotalSpending:           "₹1,250.00",
		TotalIncome:             "₹10,000.00",
		NetBalance:              "₹8,750.00",
		Status:                  "profit",
		HighestSpendingCategory: models.CategoryShopping,
		HighestCategoryAmount:   "₹1,000.00",
		TotalTransactions:       3,
		IncomeTransactions:      1,
		ExpenseTransactions:     2,
	}, resp.FinancialSummary)
}

func TestChat(t *testing.T) {
	s := newTestServer(t, nil, nil)

	chat := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/chatbot/chat", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return s.do(req)
	}

	rec := chat(`{"message":"how much did I spend"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[chatbot.Response](t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, chatbot.NoDataMessage, resp.Text)

	s.seed(t)
	rec = chat(`{"message":"how many transactions"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[chatbot.Response](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "Total transactions overall: 3", resp.Text)
	assert.Equal(t, chatbot.IntentCount, resp.Intent.Type)

	assert.Equal(t, http.StatusBadRequest, chat(`{not json`).Code)
	assert.Equal(t, http.StatusBadRequest, chat(`{"message":""}`).Code)
}

func TestChatStatsAndStatus(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := s.get("/chatbot/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	empty := decode[statsResponse](t, rec)
	assert.False(t, empty.Success)
	assert.Equal(t, "No transaction data available", empty.Message)
	assert.Zero(t, empty.Analytics.TotalTransactions)

	s.seed(t)
	rec = s.get("/chatbot/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[statsResponse](t, rec)
	assert.True(t, stats.Success)
	assert.Equal(t, 3, stats.Analytics.TotalTransactions)
	assert.Equal(t, "1250", stats.Analytics.TotalDebits.String())
	require.NotNil(t, stats.Analytics.DateRange)
	assert.Equal(t, analytics.DateSpan{Start: "2024-04-01", End: "2024-04-10"}, *stats.Analytics.DateRange)

	rec = s.get("/chatbot/status")
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[statusResponse](t, rec)
	assert.Equal(t, "active", status.Status)
	assert.True(t, status.DataAvailable)
	assert.Equal(t, 3, status.TotalTransactions)
	assert.ElementsMatch(t, []string{models.CategoryTransferRefund, models.CategoryFoodDining, models.CategoryShopping}, status.Categories)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil, nil)

	require.Equal(t, http.StatusOK, s.get("/health").Code)
	require.Equal(t, http.StatusNotFound, s.get("/faq/summary").Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.HTTPRequests.WithLabelValues("GET", "/health", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.HTTPRequests.WithLabelValues("GET", "/faq/summary", "404")))

	rec := s.get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/health",status="200"} 1`)
}

func TestRequestLogger(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.get("/health")

	entries := s.logger.GetEntriesByLevel("INFO")
	var found bool
	for _, e := range entries {
		if e.Message != "Request completed" {
			continue
		}
		found = true
		status, _ := e.FieldValue(logging.FieldStatus)
		path, _ := e.FieldValue(logging.FieldPath)
		reqID, _ := e.FieldValue(logging.FieldRequestID)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "/health", path)
		assert.NotEmpty(t, reqID)
	}
	assert.True(t, found)
}

func TestRecovery(t *testing.T) {
	logger := logging.NewMockLogger()
	h := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	assert.True(t, logger.HasEntry("ERROR", "Panic recovered"))
}

func TestServer_ServeAndShutdown(t *testing.T) {
	s := newTestServer(t, nil, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(ln.Addr().String(), s.router, logging.NewMockLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get(fmt.Sprintf("http://%s/health", ln.Addr()))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
