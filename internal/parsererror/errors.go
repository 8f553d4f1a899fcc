// Package parsererror defines the typed errors raised while turning a
// statement into a ledger. Line-level errors are recovered by the caller;
// DateFormatError and InvalidFormatError abort the whole statement.
package parsererror

import (
	"errors"
	"fmt"
)

// ErrUnsupportedDateFormat is wrapped by DateFormatError so callers can match
// batch-level date failures with errors.Is.
var ErrUnsupportedDateFormat = errors.New("unsupported date format")

// ParseError represents a failure to parse one field of one source line.
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DateFormatError is raised by the ledger assembler when a record's date does
// not match the statement's fixed day-month-year layout.
type DateFormatError struct {
	Value    string
	Layout   string
	Position int
	Err      error
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("record %d: date '%s' does not match layout %s: %v",
		e.Position, e.Value, e.Layout, e.Err)
}

// Unwrap exposes both the sentinel and the underlying time.Parse error.
func (e *DateFormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUnsupportedDateFormat}
	}
	return []error{ErrUnsupportedDateFormat, e.Err}
}

// ValidationError represents a validation failure
type ValidationError struct {
	FilePath string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.FilePath, e.Reason)
}

// CategorizationError represents a categorization failure. It never aborts a
// ledger; the categorizer logs it and falls back.
type CategorizationError struct {
	Transaction string
	Strategy    string
	Err         error
}

func (e *CategorizationError) Error() string {
	return fmt.Sprintf("categorization failed for %s using %s: %v",
		e.Transaction, e.Strategy, e.Err)
}

func (e *CategorizationError) Unwrap() error {
	return e.Err
}

// InvalidFormatError represents an input that is not a readable PDF statement.
type InvalidFormatError struct {
	FilePath             string
	ExpectedFormat       string
	ActualContentSnippet string
	Msg                  string
	Err                  error
}

func (e *InvalidFormatError) Error() string {
	if e.ActualContentSnippet != "" {
		return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s. Content snippet: '%s'",
			e.FilePath, e.Msg, e.ExpectedFormat, e.ActualContentSnippet)
	}
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
}

func (e *InvalidFormatError) Unwrap() error {
	return e.Err
}

// DataExtractionError represents required data that could not be extracted
// from a file whose format is otherwise valid.
type DataExtractionError struct {
	FilePath       string
	FieldName      string
	RawDataSnippet string
	Reason         string
	Msg            string
}

func (e *DataExtractionError) Error() string {
	if e.RawDataSnippet != "" {
		return fmt.Sprintf("data extraction failed in file '%s' for field '%s': %s. Reason: %s. Raw data snippet: '%s'",
			e.FilePath, e.FieldName, e.Msg, e.Reason, e.RawDataSnippet)
	}
	return fmt.Sprintf("data extraction failed in file '%s' for field '%s': %s. Reason: %s",
		e.FilePath, e.FieldName, e.Msg, e.Reason)
}

// IsHardFailure reports whether err should be surfaced to the user as a
// failed extraction rather than an empty result.
func IsHardFailure(err error) bool {
	if err == nil {
		return false
	}
	var formatErr *InvalidFormatError
	return errors.Is(err, ErrUnsupportedDateFormat) || errors.As(err, &formatErr)
}
