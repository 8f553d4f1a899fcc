package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionBuilder provides a fluent API for constructing records, mostly
// in tests and fixtures.
type TransactionBuilder struct {
	rec TransactionRecord
	err error
}

// NewTransactionBuilder creates a new TransactionBuilder with default values
func NewTransactionBuilder() *TransactionBuilder {
	return &TransactionBuilder{
		rec: TransactionRecord{
			Debit:   decimal.Zero,
			Credit:  decimal.Zero,
			Balance: decimal.Zero,
		},
	}
}

// WithIndex sets the record position in its ledger
func (b *TransactionBuilder) WithIndex(i int) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.rec.Index = i
	return b
}

// WithDate sets the transaction date
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	if date.IsZero() {
		b.err = errors.New("date cannot be zero")
		return b
	}
	b.rec.Date = date
	return b
}

// WithDateString sets the transaction date from a DD-MM-YYYY string
func (b *TransactionBuilder) WithDateString(s string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	d, err := time.Parse(DateLayoutStatement, strings.TrimSpace(s))
	if err != nil {
		b.err = fmt.Errorf("invalid date %q: %w", s, err)
		return b
	}
	b.rec.Date = d
	return b
}

// WithNarration sets the free-text description
func (b *TransactionBuilder) WithNarration(n string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.rec.Narration = n
	return b
}

// WithReference sets the cheque or reference number
func (b *TransactionBuilder) WithReference(ref string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.rec.Reference = ref
	return b
}

// AsDebit marks the record as a withdrawal of the given amount
func (b *TransactionBuilder) AsDebit(amount string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	d, err := ParseAmount(amount)
	if err != nil {
		b.err = err
		return b
	}
	b.rec.Debit = d
	b.rec.Credit = decimal.Zero
	return b
}

// AsCredit marks the record as a deposit of the given amount
func (b *TransactionBuilder) AsCredit(amount string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	d, err := ParseAmount(amount)
	if err != nil {
		b.err = err
		return b
	}
	b.rec.Credit = d
	b.rec.Debit = decimal.Zero
	return b
}

// WithBalance sets the running balance
func (b *TransactionBuilder) WithBalance(amount string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	d, err := ParseAmount(amount)
	if err != nil {
		b.err = err
		return b
	}
	b.rec.Balance = d
	return b
}

// WithCategory sets the category
func (b *TransactionBuilder) WithCategory(c string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.rec.Category = c
	return b
}

// Build validates and returns the record
func (b *TransactionBuilder) Build() (TransactionRecord, error) {
	if b.err != nil {
		return TransactionRecord{}, b.err
	}
	if err := b.rec.Validate(); err != nil {
		return TransactionRecord{}, err
	}
	return b.rec, nil
}

// MustBuild is Build for fixtures; it panics on error.
func (b *TransactionBuilder) MustBuild() TransactionRecord {
	rec, err := b.Build()
	if err != nil {
		panic(err)
	}
	return rec
}
