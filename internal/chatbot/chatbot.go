// Package chatbot answers natural-language questions about a ledger. A
// question is read into an Intent by keyword rules and answered from the
// analytics engine.
package chatbot

import (
	"fjacquet/pdf-ledger/internal/analytics"
	"fjacquet/pdf-ledger/internal/logging"
)

// Fixed replies.
const (
	OutOfContextMessage = "Sorry, I can only help with questions about your transaction data. " +
		"Try asking about your spending, categories, balances, or transaction trends."
	NoDataMessage = "Sorry, I don't have any transaction data to analyze. " +
		"Please upload your transaction data first."
	GreetingMessage = "Hello! I'm your transaction analysis assistant. I can help you understand " +
		"your financial data, spending patterns, and transaction history. What would you like to know?"
	HelpMessage = "I can help you with:\n" +
		"• Calculate averages, totals, and counts for any category\n" +
		"• Show spending trends and patterns over time\n" +
		"• Find top/bottom transactions and minimum spending\n" +
		"• Search transactions by description or merchant\n" +
		"• Filter transactions by amount thresholds\n" +
		"• Compare spending between different periods\n" +
		"• Calculate percentages and ratios\n" +
		"• Analyze frequency of transactions\n" +
		"• Break down spending by categories and time periods"
)

// Response is the reply to one question.
type Response struct {
	Text    string `json:"response"`
	Intent  Intent `json:"intent"`
	Success bool   `json:"success"`
}

// Bot answers questions over one ledger.
type Bot struct {
	engine *analytics.Engine
	logger logging.Logger
}

// New creates a bot over engine. A nil engine behaves as an empty ledger.
func New(engine *analytics.Engine, logger logging.Logger) *Bot {
	if engine == nil {
		engine = analytics.NewEngine(nil)
	}
	return &Bot{engine: engine, logger: logging.OrDefault(logger)}
}

// Answer returns the text reply to question.
func (b *Bot) Answer(question string) string {
	return b.Respond(question).Text
}

// Respond reads question and answers it. Success is false only when there is
// no data to analyse.
func (b *Bot) Respond(question string) Response {
	intent := Understand(question)
	resp := Response{Intent: intent, Success: true}

	switch {
	case b.engine.Ledger().IsEmpty():
		resp.Text, resp.Success = NoDataMessage, false
	case !intent.Relevant:
		resp.Text = OutOfContextMessage
	default:
		resp.Text = b.handle(intent, question)
	}

	b.logger.WithFields(
		logging.F(logging.FieldIntent, string(intent.Type)),
		logging.F(logging.FieldCategory, intent.Category),
	).Debug("Answered question")
	return resp
}

func (b *Bot) handle(intent Intent, question string) string {
	switch intent.Type {
	case IntentGreeting:
		return GreetingMessage
	case IntentHelp:
		return HelpMessage
	case IntentTrend:
		return b.trend(intent)
	case IntentComparison:
		return b.comparison(intent, question)
	case IntentSearch:
		return b.search(intent)
	case IntentThreshold:
		return b.threshold(intent)
	case IntentMinimum:
		return b.minimum(intent)
	case IntentPercentage:
		return b.percentage(intent)
	case IntentFrequency:
		return b.frequency(intent)
	case IntentAverage:
		return b.average(intent)
	case IntentTotal:
		return b.total(intent)
	case IntentCount:
		return b.count(intent)
	case IntentTop:
		return b.top(intent)
	case IntentBalance:
		return b.balance(intent)
	case IntentCategoryBreakdown:
		return b.categoryBreakdown(intent)
	default:
		return b.general(intent)
	}
}
