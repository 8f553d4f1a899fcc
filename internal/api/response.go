package api

import (
	"encoding/json"
	"net/http"

	"fjacquet/pdf-ledger/internal/analytics"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type runResponse struct {
	Message string `json:"message"`
	RunID   string `json:"run_id"`
	Count   int    `json:"count"`
}

type answersResponse struct {
	Message        string        `json:"message"`
	TotalQuestions int           `json:"total_questions"`
	OutputFile     string        `json:"output_file"`
	Data           analytics.FAQ `json:"data"`
}

type qaResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type summaryResponse struct {
	FinancialSummary financialSummary `json:"financial_summary"`
}

type financialSummary struct {
	TotalSpending           string `json:"total_spending"`
	TotalIncome             string `json:"total_income"`
	NetBalance              string `json:"net_balance"`
	Status                  string `json:"status"`
	HighestSpendingCategory string `json:"highest_spending_category"`
	HighestCategoryAmount   string `json:"highest_category_amount"`
	TotalTransactions       int    `json:"total_transactions"`
	IncomeTransactions      int    `json:"income_transactions"`
	ExpenseTransactions     int    `json:"expense_transactions"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type statsResponse struct {
	Analytics analytics.Stats `json:"analytics"`
	Success   bool            `json:"success"`
	Message   string          `json:"message,omitempty"`
}

type statusResponse struct {
	Status            string              `json:"status"`
	DataAvailable     bool                `json:"data_available"`
	TotalTransactions int                 `json:"total_transactions"`
	DateRange         *analytics.DateSpan `json:"date_range,omitempty"`
	Categories        []string            `json:"categories"`
}

var apiInfo = map[string]any{
	"message": "Welcome to the Transaction Tracker API",
	"version": "1.0",
	"available_endpoints": map[string]any{
		"pipeline": map[string]string{
			"run_pipeline": "/pipeline/run-pipeline",
		},
		"financial_analysis": map[string]string{
			"complete_analysis": "/faq/get-answers",
			"total_spending":    "/faq/total-spending",
			"total_income":      "/faq/total-income",
			"highest_expense":   "/faq/highest-expense",
			"highest_category":  "/faq/highest-category",
			"category_spending": "/faq/category-spending",
			"financial_summary": "/faq/summary",
		},
		"chatbot": map[string]string{
			"chat":   "/chatbot/chat",
			"stats":  "/chatbot/stats",
			"status": "/chatbot/status",
		},
		"data": map[string]string{
			"transaction_data": "/data/processed/categorized_transactions.json",
			"refresh":          "/refresh-data",
		},
		"metrics": "/metrics",
	},
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, ErrorResponse{Error: message, Message: details})
}
