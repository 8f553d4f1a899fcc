package validation

import (
	"github.com/shopspring/decimal"

	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/models"
)

// BalanceWarning records a row whose declared balance disagrees with the
// previous balance carried forward by the row's movement.
type BalanceWarning struct {
	Index      int
	Expected   decimal.Decimal
	Declared   decimal.Decimal
	Difference decimal.Decimal
}

// CheckBalances compares each record's declared balance with
// prev.Balance - Debit + Credit. The statement's balance stays authoritative:
// mismatches are logged and returned, and the ledger is never modified.
func CheckBalances(ledger *models.Ledger, logger logging.Logger) []BalanceWarning {
	if ledger.Len() < 2 {
		return nil
	}
	logger = logging.OrDefault(logger)

	var warnings []BalanceWarning
	for i := 1; i < len(ledger.Records); i++ {
		prev, cur := ledger.Records[i-1], ledger.Records[i]
		expected := prev.Balance.Sub(cur.Debit).Add(cur.Credit)
		if expected.Equal(cur.Balance) {
			continue
		}
		w := BalanceWarning{
			Index:      cur.Index,
			Expected:   expected,
			Declared:   cur.Balance,
			Difference: cur.Balance.Sub(expected),
		}
		warnings = append(warnings, w)
		logger.Warn("Declared balance does not match running balance",
			logging.F("index", w.Index),
			logging.F("expected", w.Expected.String()),
			logging.F("declared", w.Declared.String()),
			logging.F("difference", w.Difference.String()))
	}

	if len(warnings) > 0 {
		logger.Info("Balance check finished",
			logging.F(logging.FieldCount, len(warnings)))
	}
	return warnings
}
