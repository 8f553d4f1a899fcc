package pdfparser

import (
	"iter"
	"strings"

	"fjacquet/pdf-ledger/internal/dateutils"
)

// Words that only appear on the statement's column header row.
var headerMarkers = []string{"Date", "Narration"}

// Line is one source line of a page, annotated with whether it opens a
// transaction.
type Line struct {
	Number             int
	Text               string
	IsTransactionStart bool
}

// Tokenize splits one page of text into lines and flags the candidate
// transaction starts. Lines are returned in source order and unmodified.
func Tokenize(page string) []Line {
	if page == "" {
		return nil
	}
	raw := strings.Split(strings.ReplaceAll(page, "\r\n", "\n"), "\n")
	lines := make([]Line, 0, len(raw))
	for i, text := range raw {
		lines = append(lines, Line{
			Number:             i + 1,
			Text:               text,
			IsTransactionStart: isTransactionStart(text),
		})
	}
	return lines
}

// Candidates yields the positions of the transaction-start lines.
func Candidates(lines []Line) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i, l := range lines {
			if l.IsTransactionStart && !yield(i) {
				return
			}
		}
	}
}

func isTransactionStart(text string) bool {
	if !dateutils.StatementDatePattern.MatchString(text) {
		return false
	}
	return !isHeaderLine(text)
}

// isHeaderLine is case-sensitive: lowercase "date" inside a narration does
// not disqualify a line.
func isHeaderLine(text string) bool {
	for _, marker := range headerMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
