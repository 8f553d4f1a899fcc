// Package models provides the data structures shared by the extraction
// pipeline, the categorizer and the analytics engine.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord is one canonical ledger entry.
//
// Exactly one of Debit and Credit is nonzero and both are non-negative; the
// sign of a transaction is carried by which field is populated. Balance is the
// running balance printed on the statement, never recomputed.
type TransactionRecord struct {
	Index     int
	Date      time.Time
	Narration string
	Reference string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Balance   decimal.Decimal
	Category  string
}

// RawRecord is what a statement layout emits for one line, before the ledger
// assembler has parsed the date and filled absent amounts.
type RawRecord struct {
	DateText  string
	Narration string
	Reference string
	Debit     decimal.NullDecimal
	Credit    decimal.NullDecimal
	Balance   decimal.Decimal
	Page      int
	Line      int
}

// IsDebit reports whether the record moves money out of the account.
func (r TransactionRecord) IsDebit() bool {
	return r.Debit.IsPositive()
}

// IsCredit reports whether the record moves money into the account.
func (r TransactionRecord) IsCredit() bool {
	return r.Credit.IsPositive()
}

// Amount returns the populated amount regardless of direction.
func (r TransactionRecord) Amount() decimal.Decimal {
	if r.IsDebit() {
		return r.Debit
	}
	return r.Credit
}

// Direction returns "Dr" for debits and "Cr" for credits.
func (r TransactionRecord) Direction() string {
	if r.IsDebit() {
		return DirectionDebit
	}
	return DirectionCredit
}

// CategoryOrDefault returns the assigned category, or Uncategorized.
func (r TransactionRecord) CategoryOrDefault() string {
	if r.Category == "" {
		return CategoryUncategorized
	}
	return r.Category
}

// Validate checks the per-record invariants.
func (r TransactionRecord) Validate() error {
	if r.Date.IsZero() {
		return fmt.Errorf("record %d: missing date", r.Index)
	}
	if r.Debit.IsNegative() || r.Credit.IsNegative() {
		return fmt.Errorf("record %d: negative amount", r.Index)
	}
	if r.Debit.IsZero() == r.Credit.IsZero() {
		return fmt.Errorf("record %d: exactly one of debit and credit must be nonzero (debit=%s credit=%s)",
			r.Index, r.Debit, r.Credit)
	}
	return nil
}

// snapshotRecord is the persisted JSON shape. The key names are a
// compatibility contract with every reader of the snapshot.
type snapshotRecord struct {
	Date      string      `json:"Date"`
	Narration string      `json:"Narration"`
	Reference string      `json:"Chq/Ref No"`
	Debit     json.Number `json:"Withdrawal(Dr)"`
	Credit    json.Number `json:"Deposit(Cr)"`
	Balance   json.Number `json:"Balance"`
	Category  string      `json:"Category,omitempty"`
}

// MarshalJSON renders the record in the snapshot schema with an ISO date.
func (r TransactionRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotRecord{
		Date:      r.Date.Format(DateLayoutISO),
		Narration: r.Narration,
		Reference: r.Reference,
		Debit:     json.Number(r.Debit.String()),
		Credit:    json.Number(r.Credit.String()),
		Balance:   json.Number(r.Balance.String()),
		Category:  r.Category,
	})
}

// UnmarshalJSON reads a record from the snapshot schema. Absent amounts are
// treated as zero.
func (r *TransactionRecord) UnmarshalJSON(data []byte) error {
	var s snapshotRecord
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&s); err != nil {
		return err
	}

	date, err := time.Parse(DateLayoutISO, s.Date)
	if err != nil {
		return fmt.Errorf("invalid Date %q: %w", s.Date, err)
	}

	debit, err := numberToDecimal(s.Debit)
	if err != nil {
		return fmt.Errorf("invalid Withdrawal(Dr): %w", err)
	}
	credit, err := numberToDecimal(s.Credit)
	if err != nil {
		return fmt.Errorf("invalid Deposit(Cr): %w", err)
	}
	balance, err := numberToDecimal(s.Balance)
	if err != nil {
		return fmt.Errorf("invalid Balance: %w", err)
	}

	*r = TransactionRecord{
		Date:      date,
		Narration: s.Narration,
		Reference: s.Reference,
		Debit:     debit,
		Credit:    credit,
		Balance:   balance,
		Category:  s.Category,
	}
	return nil
}

func numberToDecimal(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(n.String())
}
