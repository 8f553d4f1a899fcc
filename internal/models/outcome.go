package models

// Outcome classifies the result of processing one statement.
type Outcome int

const (
	// OutcomeSuccess means at least one record was extracted.
	OutcomeSuccess Outcome = iota
	// OutcomeEmpty means the statement was readable but held no transactions.
	OutcomeEmpty
	// OutcomeFailed means the statement could not be processed.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Message returns the user-facing text for the outcome. An empty result must
// read differently from a failure.
func (o Outcome) Message() string {
	switch o {
	case OutcomeSuccess:
		return "statement processed successfully"
	case OutcomeEmpty:
		return "no transactions found, check the file"
	default:
		return "statement could not be processed"
	}
}
