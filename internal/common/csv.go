// Package common provides shared functionality across the pipeline and CLI.
package common

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"fjacquet/pdf-ledger/internal/dateutils"
	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/models"
)

// Delimiter is the CSV field separator. It is set from configuration.
var Delimiter rune = ','

// SetDelimiter allows setting the delimiter for CSV output
func SetDelimiter(delim rune) {
	Delimiter = delim
}

// ledgerRow is the CSV shape of a ledger record. Column names match the JSON
// snapshot keys.
type ledgerRow struct {
	Date      string `csv:"Date"`
	Narration string `csv:"Narration"`
	Reference string `csv:"Chq/Ref No"`
	Debit     string `csv:"Withdrawal(Dr)"`
	Credit    string `csv:"Deposit(Cr)"`
	Balance   string `csv:"Balance"`
	Category  string `csv:"Category"`
}

// ReadCSVFile reads CSV data into a slice of structs using gocsv.
// TCSVRow is the struct type that maps to the CSV columns.
func ReadCSVFile[TCSVRow any](filePath string, logger logging.Logger) ([]TCSVRow, error) {
	logger = logging.OrDefault(logger)
	logger.Info("Reading CSV file", logging.F(logging.FieldFile, filePath))

	file, err := os.Open(filePath) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	reader := csv.NewReader(file)
	reader.Comma = Delimiter

	var rows []TCSVRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}

	logger.Debug("Read CSV data", logging.F(logging.FieldCount, len(rows)))
	return rows, nil
}

// ExportLedgerToCSV writes a ledger to csvFile, creating parent directories.
// An empty ledger produces a header-only file; gocsv writes the header from
// the row type.
func ExportLedgerToCSV(ledger *models.Ledger, csvFile string, logger logging.Logger) error {
	if ledger == nil {
		return fmt.Errorf("cannot write nil ledger to CSV")
	}
	logger = logging.OrDefault(logger)
	logger.Info("Writing ledger to CSV file",
		logging.F(logging.FieldOutputFile, csvFile),
		logging.F(logging.FieldCount, ledger.Len()),
		logging.F(logging.FieldDelimiter, string(Delimiter)))

	dir := filepath.Dir(csvFile)
	if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.Create(csvFile) // #nosec G304 -- output path is user-provided
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	rows := make([]ledgerRow, 0, ledger.Len())
	for _, r := range ledger.Records {
		rows = append(rows, ledgerRow{
			Date:      dateutils.ToISODate(r.Date),
			Narration: r.Narration,
			Reference: r.Reference,
			Debit:     r.Debit.StringFixed(2),
			Credit:    r.Credit.StringFixed(2),
			Balance:   r.Balance.StringFixed(2),
			Category:  r.Category,
		})
	}

	csvWriter := csv.NewWriter(file)
	csvWriter.Comma = Delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// ImportLedgerFromCSV reads a ledger previously written by ExportLedgerToCSV.
func ImportLedgerFromCSV(csvFile string, logger logging.Logger) (*models.Ledger, error) {
	rows, err := ReadCSVFile[ledgerRow](csvFile, logger)
	if err != nil {
		return nil, err
	}

	records := make([]models.TransactionRecord, 0, len(rows))
	for i, row := range rows {
		date, err := time.Parse(dateutils.DateLayoutISO, row.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid date %q: %w", i+1, row.Date, err)
		}
		rec := models.TransactionRecord{
			Index:     i,
			Date:      date,
			Narration: row.Narration,
			Reference: row.Reference,
			Category:  row.Category,
		}
		if rec.Debit, err = parseColumn(row.Debit); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if rec.Credit, err = parseColumn(row.Credit); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if rec.Balance, err = parseColumn(row.Balance); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return models.NewLedger(records), nil
}

func parseColumn(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return models.ParseAmount(s)
}
