package parser

import (
	"fjacquet/pdf-ledger/internal/common"
	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/models"
)

// BaseParser provides the logger and CSV output shared by parser
// implementations. Parsers embed it:
//
//	type MyParser struct {
//		BaseParser
//		// parser-specific fields
//	}
type BaseParser struct {
	logger logging.Logger
}

// NewBaseParser creates a new BaseParser. If logger is nil the process
// default is used.
func NewBaseParser(logger logging.Logger) BaseParser {
	return BaseParser{logger: logging.OrDefault(logger)}
}

// SetLogger replaces the logger; nil is ignored.
func (b *BaseParser) SetLogger(logger logging.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// GetLogger returns the current logger instance.
func (b *BaseParser) GetLogger() logging.Logger {
	return b.logger
}

// WriteToCSV writes the ledger with the common CSV writer so every parser
// produces the same columns.
func (b *BaseParser) WriteToCSV(ledger *models.Ledger, csvFile string) error {
	return common.ExportLedgerToCSV(ledger, csvFile, b.logger)
}
