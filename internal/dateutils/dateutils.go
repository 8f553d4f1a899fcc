// Package dateutils provides the date operations shared by the parser, the
// analytics engine and the chatbot.
package dateutils

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
)

// Date layouts used throughout the application
const (
	DateLayoutStatement = "02-01-2006"
	DateLayoutISO       = "2006-01-02"
	DateLayoutMonth     = "2006-01"
	DateLayoutFull      = "2006-01-02 15:04:05"
	DateLayoutLong      = "January 2006"
)

// StatementDatePattern matches a DD-MM-YYYY date anywhere in a line.
var StatementDatePattern = regexp.MustCompile(`\d{2}-\d{2}-\d{4}`)

var whitespace = regexp.MustCompile(`\s+`)

// ParseStatementDate parses a date in the statement's fixed DD-MM-YYYY
// layout. No other layout is tried.
func ParseStatementDate(s string) (time.Time, error) {
	return time.Parse(DateLayoutStatement, strings.TrimSpace(s))
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// MonthKey returns the YYYY-MM bucket a date belongs to.
func MonthKey(date time.Time) string {
	return date.Format(DateLayoutMonth)
}

// CleanDateString removes unwanted characters and normalizes a date string
func CleanDateString(dateStr string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// StartOfMonth returns the first day of the month for a given date
func StartOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
}

// EndOfMonth returns the last day of the month for a given date
func EndOfMonth(date time.Time) time.Time {
	return StartOfMonth(date).AddDate(0, 1, -1)
}

// CompareDates compares two dates and returns:
//
//	-1 if date1 is before date2
//	 0 if date1 is equal to date2
//	 1 if date1 is after date2
func CompareDates(date1, date2 time.Time) int {
	date1 = time.Date(date1.Year(), date1.Month(), date1.Day(), 0, 0, 0, 0, time.UTC)
	date2 = time.Date(date2.Year(), date2.Month(), date2.Day(), 0, 0, 0, 0, time.UTC)

	switch {
	case date1.Before(date2):
		return -1
	case date1.After(date2):
		return 1
	default:
		return 0
	}
}

// DaysBetween returns the whole days from a to b, inclusive of neither end.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// MonthFromName resolves a full or abbreviated English month name.
func MonthFromName(name string) (time.Month, bool) {
	m, ok := monthNames[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

// FindMonth returns the first month named in text as a whole word.
func FindMonth(text string) (time.Month, bool) {
	months := FindMonths(text)
	if len(months) == 0 {
		return 0, false
	}
	return months[0], true
}

// FindMonths returns the distinct months named in text as whole words, in
// order of first mention.
func FindMonths(text string) []time.Month {
	var out []time.Month
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	}) {
		m, ok := monthNames[word]
		if !ok || slices.Contains(out, m) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// FormatMonth renders a year and month as "April 2024".
func FormatMonth(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", month, year)
}
