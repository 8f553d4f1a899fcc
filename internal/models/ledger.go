package models

import (
	"fmt"
	"time"
)

// Ledger is an ordered sequence of records. Records are sorted by date
// ascending with statement order preserved among equal dates, and Index is
// dense from zero.
type Ledger struct {
	Records []TransactionRecord
}

// NewLedger wraps records, never returning a ledger with a nil slice.
func NewLedger(records []TransactionRecord) *Ledger {
	if records == nil {
		records = []TransactionRecord{}
	}
	return &Ledger{Records: records}
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Records)
}

// IsEmpty reports whether the ledger has no records.
func (l *Ledger) IsEmpty() bool {
	return l.Len() == 0
}

// Validate checks every record and the ordering invariants.
func (l *Ledger) Validate() error {
	for i, r := range l.Records {
		if r.Index != i {
			return &LedgerError{Index: i, Reason: "index is not dense"}
		}
		if err := r.Validate(); err != nil {
			return err
		}
		if i > 0 && r.Date.Before(l.Records[i-1].Date) {
			return &LedgerError{Index: i, Reason: "records are not in date order"}
		}
	}
	return nil
}

// DateRange returns the first and last dates. ok is false for an empty ledger.
func (l *Ledger) DateRange() (first, last time.Time, ok bool) {
	if l.IsEmpty() {
		return time.Time{}, time.Time{}, false
	}
	return l.Records[0].Date, l.Records[len(l.Records)-1].Date, true
}

// Categories returns the distinct categories in first-seen order.
func (l *Ledger) Categories() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range l.Records {
		c := r.CategoryOrDefault()
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Clone returns a deep copy so callers can annotate records without touching
// the source ledger.
func (l *Ledger) Clone() *Ledger {
	out := make([]TransactionRecord, l.Len())
	if l != nil {
		copy(out, l.Records)
	}
	return &Ledger{Records: out}
}

// LedgerError reports a violated ledger invariant.
type LedgerError struct {
	Index  int
	Reason string
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger record %d: %s", e.Index, e.Reason)
}
