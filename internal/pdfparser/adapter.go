package pdfparser

import (
	"context"
	"fmt"
	"io"
	"os"

	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/models"
	"fjacquet/pdf-ledger/internal/parser"
)

// Adapter exposes a Parser through the parser.Parser and
// parser.FileConverter interfaces.
type Adapter struct {
	parser.BaseParser
	parser    *Parser
	extractor PageExtractor
}

var _ parser.FullParser = (*Adapter)(nil)

// NewAdapter creates a new adapter for the pdfparser with dependency injection.
func NewAdapter(logger logging.Logger, opts Options) *Adapter {
	opts.Logger = logging.OrDefault(logger)
	p := NewParser(opts)
	return &Adapter{
		BaseParser: parser.NewBaseParser(opts.Logger),
		parser:     p,
		extractor:  p.extractor,
	}
}

// Parse implements parser.Parser.
func (a *Adapter) Parse(ctx context.Context, r io.Reader) (*models.Ledger, error) {
	res, err := a.parser.Parse(ctx, r)
	if err != nil {
		return nil, err
	}
	return res.Ledger, nil
}

// ParseFile parses a statement on disk and returns the full result.
func (a *Adapter) ParseFile(ctx context.Context, path string) (*ParseResult, error) {
	return a.parser.ParseFile(ctx, path)
}

// ConvertToCSV implements parser.FileConverter.
func (a *Adapter) ConvertToCSV(ctx context.Context, inputFile, outputFile string) error {
	file, err := os.Open(inputFile) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return fmt.Errorf("error opening input file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			a.GetLogger().WithError(err).Warn("Failed to close input file",
				logging.F(logging.FieldFile, inputFile))
		}
	}()

	ledger, err := a.Parse(ctx, file)
	if err != nil {
		return err
	}
	if ledger.IsEmpty() {
		a.GetLogger().Info("No transactions found, writing CSV with headers only",
			logging.F(logging.FieldOutputFile, outputFile))
	}
	return a.WriteToCSV(ledger, outputFile)
}

// ValidateFormat reports whether file can be read as a PDF.
func (a *Adapter) ValidateFormat(ctx context.Context, file string) (bool, error) {
	if _, err := os.Stat(file); err != nil {
		return false, err
	}
	if _, err := a.extractor.ExtractPages(ctx, file); err != nil {
		a.GetLogger().WithError(err).Warn("PDF validation failed",
			logging.F(logging.FieldFile, file))
		return false, nil
	}
	return true, nil
}
