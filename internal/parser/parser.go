// Package parser defines the statement parser contract and the shared base
// that parser implementations embed.
package parser

import (
	"context"
	"io"

	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/models"
)

// Parser turns statement bytes into a ledger.
type Parser interface {
	// Parse reads a statement from r. Implementations return
	// *parsererror.InvalidFormatError for unreadable input and
	// *parsererror.DateFormatError when the statement's dates do not match
	// its layout. An empty ledger is not an error.
	Parse(ctx context.Context, r io.Reader) (*models.Ledger, error)
}

// FileConverter converts a statement file to CSV.
type FileConverter interface {
	ConvertToCSV(ctx context.Context, inputFile, outputFile string) error
}

// FormatValidator reports whether a file is something the parser can read.
type FormatValidator interface {
	ValidateFormat(ctx context.Context, file string) (bool, error)
}

// FullParser is a parser usable by the convert command.
type FullParser interface {
	Parser
	FileConverter
	FormatValidator
	SetLogger(logger logging.Logger)
}
