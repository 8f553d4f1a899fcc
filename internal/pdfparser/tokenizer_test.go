package pdfparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name       string
		page       string
		wantLines  int
		wantStarts []int
	}{
		{
			name:       "transaction lines",
			page:       "01-04-2024 NEFT 5,000.00(Dr) 45,230.50(Cr)\nfooter\n02-04-2024 ATM 100.00(Dr) 45,130.50(Cr)",
			wantLines:  3,
			wantStarts: []int{0, 2},
		},
		{
			name:       "header row with date is excluded",
			page:       "Date Narration Withdrawal(Dr) Deposit(Cr) Balance 01-04-2024\n01-04-2024 NEFT 5,000.00(Dr) 45,230.50(Cr)",
			wantLines:  2,
			wantStarts: []int{1},
		},
		{
			name:       "either header word excludes",
			page:       "Narration 01-04-2024\nValue Date 01-04-2024",
			wantLines:  2,
			wantStarts: nil,
		},
		{
			name:       "header match is case sensitive",
			page:       "01-04-2024 update date fee 10.00(Dr) 90.00(Cr)",
			wantLines:  1,
			wantStarts: []int{0},
		},
		{
			name:       "no dates",
			page:       "Statement of account\nPage 1 of 3",
			wantLines:  2,
			wantStarts: nil,
		},
		{
			name:       "windows line endings",
			page:       "01-04-2024 A 1.00(Dr) 2.00(Cr)\r\n02-04-2024 B 1.00(Dr) 1.00(Cr)",
			wantLines:  2,
			wantStarts: []int{0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := Tokenize(tt.page)
			require.Len(t, lines, tt.wantLines)

			var starts []int
			for i := range Candidates(lines) {
				starts = append(starts, i)
			}
			assert.Equal(t, tt.wantStarts, starts)
		})
	}
}

func TestTokenize_PreservesSourceLines(t *testing.T) {
	page := "  indented 01-04-2024 text  \nsecond"
	lines := Tokenize(page)
	require.Len(t, lines, 2)
	assert.Equal(t, "  indented 01-04-2024 text  ", lines[0].Text)
	assert.Equal(t, 1, lines[0].Number)
	assert.Equal(t, 2, lines[1].Number)
}

func TestTokenize_EmptyPage(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	for range Candidates(nil) {
		t.Fatal("no candidates expected")
	}
}

func TestCandidates_StopsEarly(t *testing.T) {
	lines := Tokenize("01-04-2024 a\n02-04-2024 b\n03-04-2024 c")
	var seen []int
	for i := range Candidates(lines) {
		seen = append(seen, i)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []int{0, 1}, seen)
}
