package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"fjacquet/pdf-ledger/internal/analytics"
	"fjacquet/pdf-ledger/internal/chatbot"
	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/models"
	"fjacquet/pdf-ledger/internal/parsererror"
	"fjacquet/pdf-ledger/internal/pipeline"
	"fjacquet/pdf-ledger/internal/store"
)

// UploadField is the multipart field carrying the statement PDF.
const UploadField = "pdf"

const (
	msgNoSnapshot = "Categorized transactions file not found. Please run the pipeline first."
	msgNoData     = "Transaction data not found. Please upload and process your bank statement first."
)

// Handler serves every API route.
type Handler struct {
	pipeline  PipelineRunner
	snapshots SnapshotStore
	logger    logging.Logger
	maxUpload int64
}

// Health returns 200 while the process is alive.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// APIInfo lists the available endpoints.
func (h *Handler) APIInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apiInfo)
}

// RunPipeline processes an uploaded statement.
func (h *Handler) RunPipeline(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxUpload {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large",
			fmt.Sprintf("statement exceeds %d bytes", h.maxUpload))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	file, header, err := r.FormFile(UploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large",
				fmt.Sprintf("statement exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid upload",
			fmt.Sprintf("multipart field %q is required", UploadField))
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			h.logger.WithError(err).Warn("Failed to close upload")
		}
	}()

	name := header.Filename
	if name == "" {
		name = "statement.pdf"
	}

	res, err := h.pipeline.Run(r.Context(), pipeline.Input{Reader: file, Name: name})
	if err != nil {
		msg := models.OutcomeFailed.Message()
		if parsererror.IsHardFailure(err) {
			writeError(w, http.StatusUnprocessableEntity, msg, err.Error())
			return
		}
		h.logger.WithError(err).Error("Pipeline run failed")
		writeError(w, http.StatusInternalServerError, msg, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, runResponse{
		Message: res.Message(),
		RunID:   res.RunID,
		Count:   res.Ledger.Len(),
	})
}

// Transactions serves the processed snapshot as stored.
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	data, err := h.snapshots.LoadRaw()
	if errors.Is(err, store.ErrSnapshotNotFound) {
		writeError(w, http.StatusNotFound, "not found", msgNoData)
		return
	}
	if err != nil {
		h.internalError(w, "failed to read transactions", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.WithError(err).Warn("Failed to write snapshot response")
	}
}

// RefreshData clears the processed data.
func (h *Handler) RefreshData(w http.ResponseWriter, r *http.Request) {
	if err := h.snapshots.Clear(); err != nil {
		h.internalError(w, "failed to clear processed data", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Processed data cleared successfully"})
}

// Answers builds the full FAQ bundle and persists it next to the snapshot.
func (h *Handler) Answers(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w)
	if !ok {
		return
	}
	faq := engine.Summary()
	if err := h.snapshots.SaveFAQ(faq); err != nil {
		h.internalError(w, "failed to save financial analysis", err)
		return
	}
	writeJSON(w, http.StatusOK, answersResponse{
		Message:        "Financial analysis completed successfully",
		TotalQuestions: len(faq.FinancialAnalysis.QuestionsAndAnswers),
		OutputFile:     h.snapshots.FAQPath(),
		Data:           faq,
	})
}

// TotalSpending answers the total spending question.
func (h *Handler) TotalSpending(w http.ResponseWriter, r *http.Request) {
	h.single(w, (*analytics.Engine).TotalSpendingQA)
}

// TotalIncome answers the total income question.
func (h *Handler) TotalIncome(w http.ResponseWriter, r *http.Request) {
	h.single(w, (*analytics.Engine).TotalIncomeQA)
}

// HighestExpense answers the highest single expense question.
func (h *Handler) HighestExpense(w http.ResponseWriter, r *http.Request) {
	h.single(w, (*analytics.Engine).HighestExpenseQA)
}

// HighestCategory answers the highest spending category question.
func (h *Handler) HighestCategory(w http.ResponseWriter, r *http.Request) {
	h.single(w, (*analytics.Engine).HighestCategoryQA)
}

// CategorySpending answers the per-category spending question.
func (h *Handler) CategorySpending(w http.ResponseWriter, r *http.Request) {
	h.single(w, (*analytics.Engine).CategorySpendingQA)
}

// Summary returns the headline figures.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w)
	if !ok {
		return
	}
	var all analytics.Filter
	net := engine.NetChange(all)
	top, _ := engine.HighestSpendingCategory(all)
	counts := engine.Counts(all)

	status := "profit"
	if net.IsNegative() {
		status = "loss"
	}
	writeJSON(w, http.StatusOK, summaryResponse{FinancialSummary: financialSummary{
		TotalSpending:           models.FormatRupees(engine.TotalSpending(all)),
		TotalIncome:             models.FormatRupees(engine.TotalIncome(all)),
		NetBalance:              models.FormatRupees(net),
		Status:                  status,
		HighestSpendingCategory: top.Category,
		HighestCategoryAmount:   models.FormatRupees(top.Amount),
		TotalTransactions:       counts.Total,
		IncomeTransactions:      counts.Income,
		ExpenseTransactions:     counts.Expense,
	}})
}

// Chat answers one question about the processed ledger.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "invalid request body", "message is required")
		return
	}

	ledger, err := h.snapshots.Load()
	if err != nil && !errors.Is(err, store.ErrSnapshotNotFound) {
		h.internalError(w, "failed to load transactions", err)
		return
	}
	bot := chatbot.New(analytics.NewEngine(ledger), h.logger)
	writeJSON(w, http.StatusOK, bot.Respond(req.Message))
}

// ChatStats returns the overview the chat front end shows.
func (h *Handler) ChatStats(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.snapshots.Load()
	switch {
	case errors.Is(err, store.ErrSnapshotNotFound) || (err == nil && ledger.IsEmpty()):
		writeJSON(w, http.StatusOK, statsResponse{
			Analytics: analytics.NewEngine(nil).Stats(),
			Message:   "No transaction data available",
		})
	case err != nil:
		h.internalError(w, "failed to load transactions", err)
	default:
		writeJSON(w, http.StatusOK, statsResponse{
			Analytics: analytics.NewEngine(ledger).Stats(),
			Success:   true,
		})
	}
}

// ChatStatus reports whether the chatbot has data to work with.
func (h *Handler) ChatStatus(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.snapshots.Load()
	if err != nil && !errors.Is(err, store.ErrSnapshotNotFound) {
		h.internalError(w, "failed to load transactions", err)
		return
	}
	stats := analytics.NewEngine(ledger).Stats()
	writeJSON(w, http.StatusOK, statusResponse{
		Status:            "active",
		DataAvailable:     stats.TotalTransactions > 0,
		TotalTransactions: stats.TotalTransactions,
		DateRange:         stats.DateRange,
		Categories:        stats.Categories,
	})
}

func (h *Handler) single(w http.ResponseWriter, answer func(*analytics.Engine, analytics.Filter) analytics.QA) {
	engine, ok := h.engine(w)
	if !ok {
		return
	}
	qa := answer(engine, analytics.Filter{})
	writeJSON(w, http.StatusOK, qaResponse{Question: qa.Question, Answer: qa.Answer})
}

// engine loads the snapshot, writing a 404 when there is none.
func (h *Handler) engine(w http.ResponseWriter) (*analytics.Engine, bool) {
	ledger, err := h.snapshots.Load()
	if errors.Is(err, store.ErrSnapshotNotFound) {
		writeError(w, http.StatusNotFound, "not found", msgNoSnapshot)
		return nil, false
	}
	if err != nil {
		h.internalError(w, "failed to load transactions", err)
		return nil, false
	}
	return analytics.NewEngine(ledger, analytics.WithSource(h.snapshots.SnapshotPath())), true
}

func (h *Handler) internalError(w http.ResponseWriter, msg string, err error) {
	h.logger.WithError(err).Error("Request failed", logging.F(logging.FieldReason, msg))
	writeError(w, http.StatusInternalServerError, msg, err.Error())
}
