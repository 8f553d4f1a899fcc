package pdfparser

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/pdf-ledger/internal/parsererror"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDrCrLayout_ParseLine(t *testing.T) {
	layout := NewDrCrLayout(DefaultLookaheadLines)

	tests := []struct {
		name          string
		line          string
		lookahead     []string
		wantDate      string
		wantNarration string
		wantReference string
		wantDebit     string
		wantCredit    string
		wantBalance   string
	}{
		{
			name:          "debit with reference",
			line:          "01-04-2024 NEFT TRANSFER XYZ123 5,000.00(Dr) 45,230.50(Cr)",
			wantDate:      "01-04-2024",
			wantNarration: "NEFT TRANSFER",
			wantReference: "XYZ123",
			wantDebit:     "5000.00",
			wantBalance:   "45230.50",
		},
		{
			name:          "credit without reference",
			line:          "02-04-2024 SALARY APRIL 50,000.00(Cr) 95,230.50(Cr)",
			wantDate:      "02-04-2024",
			wantNarration: "SALARY APRIL",
			wantCredit:    "50000",
			wantBalance:   "95230.50",
		},
		{
			name:          "balance is last token even with middle tokens",
			line:          "03-04-2024 REVERSAL 10.00(Cr) 5.00(Dr) 95,240.50(Cr)",
			wantDate:      "03-04-2024",
			wantNarration: "REVERSAL",
			wantCredit:    "10",
			wantBalance:   "95240.50",
		},
		{
			name:          "space before suffix",
			line:          "04-04-2024 ATM WDL 500.00 (Dr) 94,740.50 (Cr)",
			wantDate:      "04-04-2024",
			wantNarration: "ATM WDL",
			wantDebit:     "500",
			wantBalance:   "94740.50",
		},
		{
			name:          "single token narration keeps its code",
			line:          "05-04-2024 UPI123 10.00(Dr) 94,730.50(Cr)",
			wantDate:      "05-04-2024",
			wantNarration: "UPI123",
			wantDebit:     "10",
			wantBalance:   "94730.50",
		},
		{
			name:          "reference inside another word is kept",
			line:          "01-04-2024 UPI-98765 PAYMENT 5 100.00(Dr) 900.00(Cr)",
			wantDate:      "01-04-2024",
			wantNarration: "UPI-98765 PAYMENT",
			wantReference: "5",
			wantDebit:     "100",
			wantBalance:   "900",
		},
		{
			name:          "lowercase trailing token is not a reference",
			line:          "06-04-2024 PAID TO shop42 10.00(Dr) 94,720.50(Cr)",
			wantDate:      "06-04-2024",
			wantNarration: "PAID TO shop42",
			wantDebit:     "10",
			wantBalance:   "94720.50",
		},
		{
			name:          "letters-only trailing token is not a reference",
			line:          "07-04-2024 CASH DEPOSIT BRANCH 1,000.00(Cr) 95,720.50(Cr)",
			wantDate:      "07-04-2024",
			wantNarration: "CASH DEPOSIT BRANCH",
			wantCredit:    "1000",
			wantBalance:   "95720.50",
		},
		{
			name:          "every occurrence of the reference is excised",
			line:          "08-04-2024 CHQ 000451 CLEARING 000451 2,000.00(Dr) 93,720.50(Cr)",
			wantDate:      "08-04-2024",
			wantNarration: "CHQ CLEARING",
			wantReference: "000451",
			wantDebit:     "2000",
			wantBalance:   "93720.50",
		},
		{
			name:          "wrapped balance on continuation line",
			line:          "09-04-2024 CHEQUE DEPOSIT CHQ-0042 10,000.00(Cr)",
			lookahead:     []string{"   1,03,720.50(Cr)", "10-04-2024 NEXT 1.00(Dr) 2.00(Cr)"},
			wantDate:      "09-04-2024",
			wantNarration: "CHEQUE DEPOSIT",
			wantReference: "CHQ-0042",
			wantCredit:    "10000",
			wantBalance:   "103720.50",
		},
		{
			name:          "both amounts on continuation lines",
			line:          "11-04-2024 LONG NARRATION",
			lookahead:     []string{"100.00(Dr)", "200.00(Cr)"},
			wantDate:      "11-04-2024",
			wantNarration: "LONG NARRATION",
			wantDebit:     "100",
			wantBalance:   "200",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := layout.ParseLine(tt.line, tt.lookahead)
			require.NoError(t, err)

			assert.Equal(t, tt.wantDate, rec.DateText)
			assert.Equal(t, tt.wantNarration, rec.Narration)
			assert.Equal(t, tt.wantReference, rec.Reference)
			assert.True(t, rec.Balance.Equal(dec(tt.wantBalance)), "balance %s", rec.Balance)

			if tt.wantDebit != "" {
				require.True(t, rec.Debit.Valid)
				assert.False(t, rec.Credit.Valid)
				assert.True(t, rec.Debit.Decimal.Equal(dec(tt.wantDebit)), "debit %s", rec.Debit.Decimal)
			} else {
				require.True(t, rec.Credit.Valid)
				assert.False(t, rec.Debit.Valid)
				assert.True(t, rec.Credit.Decimal.Equal(dec(tt.wantCredit)), "credit %s", rec.Credit.Decimal)
			}
		})
	}
}

func TestDrCrLayout_ParseLineFailures(t *testing.T) {
	tests := []struct {
		name      string
		lookahead int
		line      string
		following []string
		wantErr   error
	}{
		{
			name:    "single amount token",
			line:    "15-04-2024 FEE 100.00(Dr)",
			wantErr: ErrInsufficientAmounts,
		},
		{
			name:      "continuation line with text is not borrowed",
			line:      "15-04-2024 FEE 100.00(Dr)",
			following: []string{"SERVICE CHARGE 900.00(Cr)"},
			wantErr:   ErrInsufficientAmounts,
		},
		{
			name:      "continuation beyond the window",
			lookahead: 1,
			line:      "15-04-2024 LONG NARRATION",
			following: []string{"100.00(Dr)", "200.00(Cr)"},
			wantErr:   ErrInsufficientAmounts,
		},
		{
			name:      "continuation disabled",
			lookahead: -1,
			line:      "15-04-2024 FEE 100.00(Dr)",
			following: []string{"900.00(Cr)"},
			wantErr:   ErrInsufficientAmounts,
		},
		{
			name:    "zero amount",
			line:    "15-04-2024 REVERSAL 0.00(Dr) 900.00(Cr)",
			wantErr: ErrZeroAmount,
		},
		{
			name:    "no date",
			line:    "FEE 100.00(Dr) 900.00(Cr)",
			wantErr: ErrNoDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout := NewDrCrLayout(tt.lookahead)
			_, err := layout.ParseLine(tt.line, tt.following)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			var parseErr *parsererror.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, "DrCr", parseErr.Parser)
		})
	}
}

func TestDrCrLayout_MalformedNumber(t *testing.T) {
	layout := NewDrCrLayout(0)
	_, err := layout.ParseLine("15-04-2024 FEE ,(Dr) 900.00(Cr)", nil)

	var parseErr *parsererror.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "amount", parseErr.Field)
}

func TestDrCrLayout_IsTransactionLine(t *testing.T) {
	layout := NewDrCrLayout(0)
	assert.True(t, layout.IsTransactionLine("01-04-2024 NEFT 1.00(Dr) 2.00(Cr)"))
	assert.False(t, layout.IsTransactionLine("Date Narration Withdrawal(Dr) Deposit(Cr) Balance 01-04-2024"))
	assert.False(t, layout.IsTransactionLine("Opening balance 2.00(Cr)"))
	assert.Equal(t, "DrCr", layout.Name())
}

func TestSplitReference(t *testing.T) {
	tests := []struct {
		in        string
		narration string
		reference string
	}{
		{"NEFT TRANSFER XYZ123", "NEFT TRANSFER", "XYZ123"},
		{"XYZ123", "XYZ123", ""},
		{"", "", ""},
		{"IMPS 12-34", "IMPS", "12-34"},
		{"IMPS ABC-DEF", "IMPS ABC-DEF", ""},
		{"BILL  PAY   R1", "BILL PAY", "R1"},
		{"UPI-98765 PAYMENT 5", "UPI-98765 PAYMENT", "5"},
		{"R1 REFUND R1", "REFUND", "R1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, r := splitReference(tt.in)
			assert.Equal(t, tt.narration, n)
			assert.Equal(t, tt.reference, r)
		})
	}
}
