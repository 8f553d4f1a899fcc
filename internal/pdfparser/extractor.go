package pdfparser

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extractor names accepted by configuration.
const (
	ExtractorNative    = "native"
	ExtractorPdftotext = "pdftotext"
)

// PageExtractor returns the text of each page of a PDF, in page order.
// Implementations can be swapped for testing.
type PageExtractor interface {
	ExtractPages(ctx context.Context, pdfPath string) ([]string, error)
}

// NewExtractor returns the extractor registered under name.
func NewExtractor(name string) (PageExtractor, error) {
	switch strings.ToLower(name) {
	case "", ExtractorNative:
		return NewNativeExtractor(), nil
	case ExtractorPdftotext:
		return NewPdftotextExtractor(), nil
	default:
		return nil, fmt.Errorf("unknown pdf extractor %q", name)
	}
}

// NativeExtractor reads page text in-process with github.com/ledongthuc/pdf.
type NativeExtractor struct {
	// GapFactor scales the font size to decide when two glyph runs on a row
	// are separated by a space.
	GapFactor float64
}

// NewNativeExtractor creates a NativeExtractor with default spacing.
func NewNativeExtractor() *NativeExtractor {
	return &NativeExtractor{GapFactor: 0.25}
}

// ExtractPages implements PageExtractor. The pdf library panics on some
// malformed inputs; those panics are returned as errors.
func (e *NativeExtractor) ExtractPages(ctx context.Context, pdfPath string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("pdf reader panicked: %v", r)
		}
	}()

	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("error opening pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	n := r.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("error reading page %d: %w", i, err)
		}
		pages = append(pages, e.renderRows(rows))
	}
	return pages, nil
}

func (e *NativeExtractor) renderRows(rows pdf.Rows) string {
	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Position > rows[b].Position
	})

	var out strings.Builder
	for i, row := range rows {
		if i > 0 {
			out.WriteByte('\n')
		}
		texts := row.Content
		sort.SliceStable(texts, func(a, b int) bool { return texts[a].X < texts[b].X })

		var prevEnd float64
		for j, t := range texts {
			if j > 0 && t.X-prevEnd > e.GapFactor*t.FontSize {
				out.WriteByte(' ')
			}
			out.WriteString(t.S)
			prevEnd = t.X + t.W
		}
	}
	return out.String()
}

// PdftotextExtractor shells out to the poppler pdftotext tool in layout mode.
type PdftotextExtractor struct {
	Binary string
}

// NewPdftotextExtractor creates a PdftotextExtractor using pdftotext from PATH.
func NewPdftotextExtractor() *PdftotextExtractor {
	return &PdftotextExtractor{Binary: "pdftotext"}
}

// ExtractPages implements PageExtractor. pdftotext separates pages with form
// feeds.
func (e *PdftotextExtractor) ExtractPages(ctx context.Context, pdfPath string) ([]string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.Binary, "-layout", pdfPath, "-") // #nosec G204 -- binary is configured, path is a temp file we created
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("error running pdftotext: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	pages := strings.Split(stdout.String(), "\f")
	// pdftotext terminates the last page with a form feed too
	if len(pages) > 0 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages, nil
}

// MockExtractor returns predefined pages or a predefined error.
type MockExtractor struct {
	Pages []string
	Err   error
}

// NewMockExtractor creates a new MockExtractor with the given pages and error.
func NewMockExtractor(pages []string, err error) *MockExtractor {
	return &MockExtractor{Pages: pages, Err: err}
}

// ExtractPages implements PageExtractor.
func (e *MockExtractor) ExtractPages(ctx context.Context, pdfPath string) ([]string, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	out := make([]string, len(e.Pages))
	copy(out, e.Pages)
	return out, nil
}
