package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatementDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "valid", input: "05-04-2024", want: time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC)},
		{name: "surrounding spaces", input: " 31-12-2023 ", want: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)},
		{name: "impossible day", input: "31-02-2024", wantErr: true},
		{name: "month out of range", input: "01-13-2024", wantErr: true},
		{name: "iso layout rejected", input: "2024-04-05", wantErr: true},
		{name: "slashes rejected", input: "05/04/2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatementDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatementDatePattern(t *testing.T) {
	assert.True(t, StatementDatePattern.MatchString("01-04-2024 NEFT SALARY"))
	assert.True(t, StatementDatePattern.MatchString("txn on 99-99-9999"))
	assert.False(t, StatementDatePattern.MatchString("2024-04-01 NEFT"))
	assert.False(t, StatementDatePattern.MatchString("1-4-2024"))
}

func TestFormatting(t *testing.T) {
	d := time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-04-05", ToISODate(d))
	assert.Equal(t, "2024-04", MonthKey(d))
	assert.Equal(t, "April 2024", FormatMonth(2024, time.April))
	assert.Equal(t, "a b", CleanDateString("  a   b "))
}

func TestMonthBoundaries(t *testing.T) {
	d := time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(d))
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), EndOfMonth(d))
}

func TestCompareDates(t *testing.T) {
	a := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	b := time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)
	c := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, CompareDates(a, b))
	assert.Equal(t, -1, CompareDates(a, c))
	assert.Equal(t, 1, CompareDates(c, a))
	assert.Equal(t, 1, DaysBetween(a, c.Add(10*time.Hour)))
}

func TestMonthNames(t *testing.T) {
	tests := []struct {
		input string
		want  time.Month
		ok    bool
	}{
		{"January", time.January, true},
		{"sept", time.September, true},
		{"DEC", time.December, true},
		{"smarch", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := MonthFromName(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	m, ok := FindMonth("How much did I spend in March 2024?")
	require.True(t, ok)
	assert.Equal(t, time.March, m)

	_, ok = FindMonth("total spending")
	assert.False(t, ok)

	// "mar" only matches as a whole word
	_, ok = FindMonth("supermarket purchases")
	assert.False(t, ok)

	assert.Equal(t, []time.Month{time.April, time.March}, FindMonths("compare April vs mar, then april again"))
	assert.Empty(t, FindMonths("no months here"))
}
