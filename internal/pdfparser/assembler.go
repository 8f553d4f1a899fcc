package pdfparser

import (
	"sort"

	"github.com/shopspring/decimal"

	"fjacquet/pdf-ledger/internal/dateutils"
	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/models"
	"fjacquet/pdf-ledger/internal/parsererror"
)

// AssembleResult is the assembled ledger plus the number of raw records that
// violated the single-amount invariant and were left out.
type AssembleResult struct {
	Ledger  *models.Ledger
	Invalid int
}

// Assemble converts raw records into the canonical ledger. Any date that does
// not match the statement layout aborts the whole batch with a
// *parsererror.DateFormatError. Records are ordered by date with ties kept in
// input order. An empty input yields an empty ledger.
func Assemble(raw []models.RawRecord, logger logging.Logger) (AssembleResult, error) {
	logger = logging.OrDefault(logger)

	records := make([]models.TransactionRecord, 0, len(raw))
	for i, r := range raw {
		date, err := dateutils.ParseStatementDate(r.DateText)
		if err != nil {
			return AssembleResult{}, &parsererror.DateFormatError{
				Value:    r.DateText,
				Layout:   dateutils.DateLayoutStatement,
				Position: i,
				Err:      err,
			}
		}
		records = append(records, models.TransactionRecord{
			Date:      date,
			Narration: r.Narration,
			Reference: r.Reference,
			Debit:     orZero(r.Debit),
			Credit:    orZero(r.Credit),
			Balance:   r.Balance,
		})
	}

	sort.SliceStable(records, func(a, b int) bool {
		return records[a].Date.Before(records[b].Date)
	})

	out := make([]models.TransactionRecord, 0, len(records))
	invalid := 0
	for _, rec := range records {
		rec.Index = len(out)
		if err := rec.Validate(); err != nil {
			invalid++
			logger.WithError(err).Warn("Dropping record that violates the single-amount rule",
				logging.F(logging.FieldExcerpt, logging.Excerpt(rec.Narration)))
			continue
		}
		out = append(out, rec)
	}

	return AssembleResult{Ledger: models.NewLedger(out), Invalid: invalid}, nil
}

func orZero(n decimal.NullDecimal) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	return n.Decimal
}
