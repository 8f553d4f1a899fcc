// Package pdfparser turns bank-statement PDFs into a ledger. A page extractor
// produces page text; each page is tokenized and parsed by a StatementLayout
// independently; the per-page results are folded in page order and handed to
// the assembler.
package pdfparser

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/models"
	"fjacquet/pdf-ledger/internal/parsererror"
)

// Options configures a Parser.
type Options struct {
	Layout    StatementLayout
	Extractor PageExtractor
	Logger    logging.Logger
	// Workers bounds how many pages are parsed at once. Values below 2 parse
	// sequentially.
	Workers int
}

// Parser extracts a ledger from a statement PDF.
type Parser struct {
	layout    StatementLayout
	extractor PageExtractor
	logger    logging.Logger
	workers   int
}

// PageResult is what one page contributes to the ledger.
type PageResult struct {
	Page    int
	Records []models.RawRecord
	Dropped int
}

// ParseResult is the outcome of parsing one statement.
type ParseResult struct {
	Ledger  *models.Ledger
	Pages   int
	Dropped int // candidate lines the layout could not parse
	Invalid int // parsed records rejected by the assembler
}

// NewParser creates a Parser, filling unset options with defaults.
func NewParser(opts Options) *Parser {
	if opts.Layout == nil {
		opts.Layout = NewDrCrLayout(DefaultLookaheadLines)
	}
	if opts.Extractor == nil {
		opts.Extractor = NewNativeExtractor()
	}
	return &Parser{
		layout:    opts.Layout,
		extractor: opts.Extractor,
		logger:    logging.OrDefault(opts.Logger),
		workers:   opts.Workers,
	}
}

// Parse copies r into a temporary file and parses it.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*ParseResult, error) {
	tempFile, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary PDF file: %w", err)
	}
	defer func() {
		if err := os.Remove(tempFile.Name()); err != nil {
			p.logger.WithError(err).Warn("Failed to remove temporary file",
				logging.F(logging.FieldFile, tempFile.Name()))
		}
	}()

	if _, err := io.Copy(tempFile, r); err != nil {
		_ = tempFile.Close()
		return nil, fmt.Errorf("failed to write to temporary PDF file: %w", err)
	}
	// the extractor reopens the file, possibly from another process
	if err := tempFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temporary PDF file: %w", err)
	}

	return p.ParseFile(ctx, tempFile.Name())
}

// ParseFile parses the statement at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*ParseResult, error) {
	log := p.logger.WithFields(
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldLayout, p.layout.Name()),
	)
	log.Info("Parsing PDF statement")

	pages, err := p.extractor.ExtractPages(ctx, path)
	if err != nil {
		return nil, &parsererror.InvalidFormatError{
			FilePath:       path,
			ExpectedFormat: "PDF",
			Msg:            "file is not a readable PDF",
			Err:            err,
		}
	}

	results, err := p.parsePages(ctx, pages, log)
	if err != nil {
		return nil, err
	}

	var acc foldState
	for _, r := range results {
		acc = foldPage(acc, r)
	}

	assembled, err := Assemble(acc.records, log)
	if err != nil {
		return nil, err
	}

	log.Info("Parsed PDF statement",
		logging.F(logging.FieldCount, assembled.Ledger.Len()),
		logging.F(logging.FieldDropped, acc.dropped),
		logging.F("pages", len(pages)))

	return &ParseResult{
		Ledger:  assembled.Ledger,
		Pages:   len(pages),
		Dropped: acc.dropped,
		Invalid: assembled.Invalid,
	}, nil
}

// parsePages parses every page, concurrently when workers allow. Results are
// slotted by page index so the fold sees them in document order.
func (p *Parser) parsePages(ctx context.Context, pages []string, log logging.Logger) ([]PageResult, error) {
	results := make([]PageResult, len(pages))
	if p.workers < 2 {
		for i, text := range pages {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = ParsePage(p.layout, i+1, text, log)
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, text := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = ParsePage(p.layout, i+1, text, log)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ParsePage runs the tokenizer and layout over one page. Lines the layout
// rejects are logged with an excerpt and dropped.
func ParsePage(layout StatementLayout, page int, text string, logger logging.Logger) PageResult {
	lines := Tokenize(text)
	result := PageResult{Page: page}

	for i := range Candidates(lines) {
		line := lines[i]
		if !layout.IsTransactionLine(line.Text) {
			continue
		}
		rec, err := layout.ParseLine(line.Text, followingText(lines, i))
		if err != nil {
			result.Dropped++
			logger.WithError(err).Warn("Dropping unparseable transaction line",
				logging.F(logging.FieldPage, page),
				logging.F(logging.FieldLine, line.Number),
				logging.F(logging.FieldExcerpt, logging.Excerpt(line.Text)))
			continue
		}
		rec.Page = page
		rec.Line = line.Number
		result.Records = append(result.Records, rec)
	}
	return result
}

func followingText(lines []Line, i int) []string {
	rest := lines[i+1:]
	out := make([]string, len(rest))
	for j, l := range rest {
		out[j] = l.Text
	}
	return out
}

type foldState struct {
	records []models.RawRecord
	dropped int
}

func foldPage(acc foldState, page PageResult) foldState {
	return foldState{
		records: append(acc.records, page.Records...),
		dropped: acc.dropped + page.Dropped,
	}
}
