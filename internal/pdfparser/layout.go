package pdfparser

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"fjacquet/pdf-ledger/internal/dateutils"
	"fjacquet/pdf-ledger/internal/models"
	"fjacquet/pdf-ledger/internal/parsererror"
)

// DefaultLookaheadLines is how many following lines a layout may borrow
// amount tokens from when a row wraps.
const DefaultLookaheadLines = 2

var (
	// ErrNoDate is returned for a line without a DD-MM-YYYY token.
	ErrNoDate = errors.New("no transaction date on line")
	// ErrInsufficientAmounts is returned when a line carries fewer than two
	// amount tokens (a movement and a balance).
	ErrInsufficientAmounts = errors.New("fewer than two amount tokens")
	// ErrZeroAmount is returned when the movement amount is zero, which would
	// leave both debit and credit empty.
	ErrZeroAmount = errors.New("transaction amount is zero")
)

var (
	amountPattern    = regexp.MustCompile(`([\d,]+\.?\d*)\s*\((Dr|Cr)\)`)
	referencePattern = regexp.MustCompile(`^[A-Z0-9-]+$`)
)

// StatementLayout turns the text lines of one bank's statement format into
// raw records. Implementations must be free of side effects so pages can be
// parsed concurrently.
type StatementLayout interface {
	// Name identifies the layout in logs.
	Name() string
	// IsTransactionLine reports whether line opens a transaction.
	IsTransactionLine(line string) bool
	// ParseLine parses a transaction line. lookahead holds the lines that
	// follow it on the same page, for layouts whose rows may wrap.
	ParseLine(line string, lookahead []string) (models.RawRecord, error)
}

// DrCrLayout handles statements whose amount columns are printed as
// "1,234.00(Dr)" and "1,234.00(Cr)", with the running balance last.
type DrCrLayout struct {
	lookahead int
}

// NewDrCrLayout creates the layout. A negative lookahead disables row
// continuation; zero selects DefaultLookaheadLines.
func NewDrCrLayout(lookaheadLines int) *DrCrLayout {
	switch {
	case lookaheadLines < 0:
		lookaheadLines = 0
	case lookaheadLines == 0:
		lookaheadLines = DefaultLookaheadLines
	}
	return &DrCrLayout{lookahead: lookaheadLines}
}

// Name implements StatementLayout.
func (l *DrCrLayout) Name() string {
	return "DrCr"
}

// IsTransactionLine implements StatementLayout.
func (l *DrCrLayout) IsTransactionLine(line string) bool {
	return isTransactionStart(line)
}

type amountToken struct {
	value  string
	suffix string
}

// ParseLine implements StatementLayout.
func (l *DrCrLayout) ParseLine(line string, lookahead []string) (models.RawRecord, error) {
	loc := dateutils.StatementDatePattern.FindStringIndex(line)
	if loc == nil {
		return models.RawRecord{}, l.fail("date", line, ErrNoDate)
	}
	dateText := line[loc[0]:loc[1]]
	rest := line[loc[1]:]

	matches := amountPattern.FindAllStringSubmatchIndex(rest, -1)
	tokens := make([]amountToken, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, amountToken{value: rest[m[2]:m[3]], suffix: rest[m[4]:m[5]]})
	}

	narrationEnd := len(rest)
	if len(matches) > 0 {
		narrationEnd = matches[0][0]
	}

	if len(tokens) < 2 {
		tokens = append(tokens, l.continuationTokens(lookahead)...)
	}
	if len(tokens) < 2 {
		return models.RawRecord{}, l.fail("amounts", line, ErrInsufficientAmounts)
	}

	narration, reference := splitReference(strings.TrimSpace(rest[:narrationEnd]))

	amount, err := models.ParseAmount(tokens[0].value)
	if err != nil {
		return models.RawRecord{}, l.fail("amount", tokens[0].value, err)
	}
	if amount.IsZero() {
		return models.RawRecord{}, l.fail("amount", tokens[0].value, ErrZeroAmount)
	}
	balance, err := models.ParseAmount(tokens[len(tokens)-1].value)
	if err != nil {
		return models.RawRecord{}, l.fail("balance", tokens[len(tokens)-1].value, err)
	}

	rec := models.RawRecord{
		DateText:  dateText,
		Narration: narration,
		Reference: reference,
		Balance:   balance,
	}
	if tokens[0].suffix == models.DirectionDebit {
		rec.Debit = decimal.NewNullDecimal(amount)
	} else {
		rec.Credit = decimal.NewNullDecimal(amount)
	}
	return rec, nil
}

// continuationTokens collects amount tokens from the following lines while
// they hold nothing but amount tokens. The window is evaluated once.
func (l *DrCrLayout) continuationTokens(lookahead []string) []amountToken {
	var tokens []amountToken
	for i, next := range lookahead {
		if i >= l.lookahead || !isAmountOnly(next) {
			break
		}
		for _, m := range amountPattern.FindAllStringSubmatch(next, -1) {
			tokens = append(tokens, amountToken{value: m[1], suffix: m[2]})
		}
	}
	return tokens
}

func (l *DrCrLayout) fail(field, value string, err error) error {
	return &parsererror.ParseError{Parser: l.Name(), Field: field, Value: value, Err: err}
}

func isAmountOnly(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	return strings.TrimSpace(amountPattern.ReplaceAllString(line, "")) == ""
}

// splitReference detaches a trailing reference number from a narration.
// The last token qualifies when it is upper-case alphanumeric with at least
// one digit and is not the only token. Every token equal to it is removed
// from the narration; longer words containing it are left alone. This is a
// heuristic and can misfire on merchant codes.
func splitReference(narration string) (string, string) {
	fields := strings.Fields(narration)
	if len(fields) < 2 {
		return narration, ""
	}
	last := fields[len(fields)-1]
	if !referencePattern.MatchString(last) || !strings.ContainsAny(last, "0123456789") {
		return narration, ""
	}
	kept := fields[:0]
	for _, f := range fields {
		if f != last {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " "), last
}
