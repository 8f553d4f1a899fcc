package pdfparser

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/models"
	"fjacquet/pdf-ledger/internal/parsererror"
)

var statementPages = []string{
	strings.Join([]string{
		"HDFC BANK Statement of account",
		"Date Narration Withdrawal(Dr) Deposit(Cr) Balance 01-04-2024",
		"05-04-2024 UPI/SWIGGY/ORDER 250.00(Dr) 19,750.00(Cr)",
		"15-04-2024 FEE 100.00(Dr)",
		"01-04-2024 NEFT TRANSFER XYZ123 5,000.00(Dr) 45,230.50(Cr)",
	}, "\n"),
	strings.Join([]string{
		"Page 2",
		"02-04-2024 SALARY CREDIT 10,000.00(Cr) 20,000.00(Cr)",
		"20-04-2024 CHEQUE DEPOSIT CHQ-77 1,000.00(Cr)",
		"   20,750.00(Cr)",
	}, "\n"),
}

func writeDummyPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statement.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.5\n"), 0600))
	return path
}

func newTestParser(pages []string, err error, workers int, logger logging.Logger) *Parser {
	return NewParser(Options{
		Extractor: NewMockExtractor(pages, err),
		Logger:    logger,
		Workers:   workers,
	})
}

func TestParser_ParseFile(t *testing.T) {
	logger := logging.NewMockLogger()
	p := newTestParser(statementPages, nil, 0, logger)

	res, err := p.ParseFile(context.Background(), writeDummyPDF(t))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, 0, res.Invalid)
	require.Equal(t, 4, res.Ledger.Len())
	require.NoError(t, res.Ledger.Validate())

	var narrations []string
	for _, r := range res.Ledger.Records {
		narrations = append(narrations, r.Narration)
	}
	assert.Equal(t, []string{"NEFT TRANSFER", "SALARY CREDIT", "UPI/SWIGGY/ORDER", "CHEQUE DEPOSIT"}, narrations)

	first := res.Ledger.Records[0]
	assert.Equal(t, "2024-04-01", first.Date.Format(models.DateLayoutISO))
	assert.Equal(t, "XYZ123", first.Reference)
	assert.True(t, first.Debit.Equal(dec("5000.00")))
	assert.True(t, first.Credit.IsZero())
	assert.True(t, first.Balance.Equal(dec("45230.50")))

	last := res.Ledger.Records[3]
	assert.Equal(t, "CHQ-77", last.Reference)
	assert.True(t, last.Balance.Equal(dec("20750")))

	warns := logger.GetEntriesByLevel("WARN")
	require.Len(t, warns, 1)
	excerpt, ok := warns[0].FieldValue(logging.FieldExcerpt)
	require.True(t, ok)
	assert.Equal(t, "15-04-2024 FEE 100.00(Dr)", excerpt)
	page, _ := warns[0].FieldValue(logging.FieldPage)
	assert.Equal(t, 1, page)
}

func TestParser_SingleAmountLineIsDroppedSilently(t *testing.T) {
	p := newTestParser([]string{"15-04-2024 FEE 100.00(Dr)"}, nil, 0, logging.NewMockLogger())

	res, err := p.ParseFile(context.Background(), writeDummyPDF(t))
	require.NoError(t, err)
	assert.True(t, res.Ledger.IsEmpty())
	assert.Equal(t, 1, res.Dropped)
}

func TestParser_EmptyPagesYieldEmptyLedger(t *testing.T) {
	p := newTestParser([]string{"", "", ""}, nil, 0, logging.NewMockLogger())

	res, err := p.ParseFile(context.Background(), writeDummyPDF(t))
	require.NoError(t, err)
	require.NotNil(t, res.Ledger)
	assert.True(t, res.Ledger.IsEmpty())
	assert.Equal(t, 3, res.Pages)
	assert.Zero(t, res.Dropped)
}

func TestParser_ConcurrentPagesMatchSequential(t *testing.T) {
	pages := make([]string, 0, 12)
	for i := 0; i < 6; i++ {
		pages = append(pages, statementPages...)
	}

	seq, err := newTestParser(pages, nil, 1, logging.NewMockLogger()).ParseFile(context.Background(), writeDummyPDF(t))
	require.NoError(t, err)
	par, err := newTestParser(pages, nil, 4, logging.NewMockLogger()).ParseFile(context.Background(), writeDummyPDF(t))
	require.NoError(t, err)

	assert.Equal(t, seq.Dropped, par.Dropped)
	require.Equal(t, seq.Ledger.Len(), par.Ledger.Len())
	for i := range seq.Ledger.Records {
		assert.Equal(t, seq.Ledger.Records[i], par.Ledger.Records[i])
	}
}

func TestParser_Idempotent(t *testing.T) {
	p := newTestParser(statementPages, nil, 0, logging.NewMockLogger())
	path := writeDummyPDF(t)

	a, err := p.ParseFile(context.Background(), path)
	require.NoError(t, err)
	b, err := p.ParseFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, a.Ledger, b.Ledger)
}

func TestParser_ExtractionFailureIsInvalidFormat(t *testing.T) {
	p := newTestParser(nil, errors.New("not a pdf"), 0, logging.NewMockLogger())

	_, err := p.ParseFile(context.Background(), writeDummyPDF(t))
	require.Error(t, err)

	var formatErr *parsererror.InvalidFormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "PDF", formatErr.ExpectedFormat)
	assert.True(t, parsererror.IsHardFailure(err))
}

func TestParser_BadDateIsHardFailure(t *testing.T) {
	p := newTestParser([]string{"31-02-2024 BAD 1.00(Dr) 2.00(Cr)"}, nil, 0, logging.NewMockLogger())

	_, err := p.ParseFile(context.Background(), writeDummyPDF(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, parsererror.ErrUnsupportedDateFormat))
	assert.True(t, parsererror.IsHardFailure(err))
}

func TestParser_ParseFromReader(t *testing.T) {
	p := newTestParser(statementPages, nil, 0, logging.NewMockLogger())

	res, err := p.Parse(context.Background(), bytes.NewReader([]byte("%PDF-1.5")))
	require.NoError(t, err)
	assert.Equal(t, 4, res.Ledger.Len())
}

func TestParser_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestParser(statementPages, nil, 0, logging.NewMockLogger())
	_, err := p.ParseFile(ctx, writeDummyPDF(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAdapter(t *testing.T) {
	logger := logging.NewMockLogger()
	a := NewAdapter(logger, Options{Extractor: NewMockExtractor(statementPages, nil)})
	ctx := context.Background()
	input := writeDummyPDF(t)

	ledger, err := a.Parse(ctx, bytes.NewReader([]byte("%PDF")))
	require.NoError(t, err)
	assert.Equal(t, 4, ledger.Len())

	out := filepath.Join(t.TempDir(), "out", "ledger.csv")
	require.NoError(t, a.ConvertToCSV(ctx, input, out))
	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), "NEFT TRANSFER")

	ok, err := a.ValidateFormat(ctx, input)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = a.ValidateFormat(ctx, filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)

	bad := NewAdapter(logger, Options{Extractor: NewMockExtractor(nil, errors.New("corrupt"))})
	ok, err = bad.ValidateFormat(ctx, input)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewExtractor(t *testing.T) {
	for _, name := range []string{"", "native", "NATIVE", "pdftotext"} {
		e, err := NewExtractor(name)
		require.NoError(t, err, name)
		assert.NotNil(t, e)
	}
	_, err := NewExtractor("ocr")
	assert.Error(t, err)
}

func TestNativeExtractor_RejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.pdf")
	require.NoError(t, os.WriteFile(path, []byte("This is not a PDF file"), 0600))

	_, err := NewNativeExtractor().ExtractPages(context.Background(), path)
	assert.Error(t, err)
}

func TestPdftotextExtractor_MissingBinary(t *testing.T) {
	e := &PdftotextExtractor{Binary: "pdftotext-does-not-exist"}
	_, err := e.ExtractPages(context.Background(), writeDummyPDF(t))
	assert.ErrorContains(t, err, "pdftotext")
}
