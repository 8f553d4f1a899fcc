// Package analyze prints the financial FAQ for the processed ledger.
package analyze

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fjacquet/pdf-ledger/cmd/root"
	"fjacquet/pdf-ledger/internal/analytics"
	"fjacquet/pdf-ledger/internal/dateutils"
	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/models"
	"fjacquet/pdf-ledger/internal/store"
	"fjacquet/pdf-ledger/internal/validation"
)

var (
	format   string
	year     int
	month    string
	category string
)

// Cmd represents the analyze command
var Cmd = &cobra.Command{
	Use:   "analyze",
	Short: "Answer the standard financial questions over processed transactions",
	Long: `Answer the standard financial questions (spending, income, net change,
categories, monthly breakdown) over the current snapshot.

Without filters the full analysis is also saved next to the snapshot.

Example:
  pdf-ledger analyze --format yaml --year 2024 --month april`,
	RunE: analyzeFunc,
}

func init() {
	Cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (json, yaml or text)")
	Cmd.Flags().IntVar(&year, "year", 0, "Only analyse transactions from this year")
	Cmd.Flags().StringVar(&month, "month", "", "Only analyse transactions from this month (name or 1-12)")
	Cmd.Flags().StringVar(&category, "category", "", "Only analyse transactions in this category")
}

// ParseMonth accepts a month name, an abbreviation or a number from 1 to 12.
func ParseMonth(s string) (time.Month, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("month must be between 1 and 12: %d", n)
		}
		return time.Month(n), nil
	}
	if m, ok := dateutils.MonthFromName(s); ok {
		return m, nil
	}
	return 0, fmt.Errorf("unknown month: %s", s)
}

func analyzeFunc(cmd *cobra.Command, args []string) error {
	format = strings.ToLower(format)
	if err := validation.IsValidOutputFormat(format); err != nil {
		return err
	}
	m, err := ParseMonth(month)
	if err != nil {
		return err
	}
	if category != "" && !models.IsValidCategory(category) && category != models.CategoryUncategorized {
		return fmt.Errorf("unknown category: %s", category)
	}
	filter := analytics.Filter{Year: year, Month: m, Category: category}

	c, err := root.GetContainer(cmd)
	if err != nil {
		return err
	}
	engine, err := c.Engine()
	if errors.Is(err, store.ErrSnapshotNotFound) {
		return errors.New("no processed transactions found, run extract first")
	}
	if err != nil {
		return err
	}

	faq := engine.SummaryFor(filter)
	if filter == (analytics.Filter{}) {
		if err := c.GetSnapshots().SaveFAQ(faq); err != nil {
			c.GetLogger().WithError(err).Warn("Failed to save financial analysis")
		}
	}

	w := cmd.OutOrStdout()
	if output := root.SharedFlags.Output; output != "" {
		f, err := os.Create(output) // #nosec G304 -- CLI tool requires user-provided output paths
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				c.GetLogger().WithError(err).Warn("Failed to close report",
					logging.F(logging.FieldOutputFile, output))
			}
		}()
		w = f
	}
	return c.GetReports().Write(w, faq, format)
}
