// Package extract runs the full statement pipeline from the command line.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"fjacquet/pdf-ledger/cmd/root"
	"fjacquet/pdf-ledger/internal/common"
	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/models"
	"fjacquet/pdf-ledger/internal/pipeline"
	"fjacquet/pdf-ledger/internal/validation"
)

var (
	noCategorize bool
	workers      int
)

// Cmd represents the extract command
var Cmd = &cobra.Command{
	Use:   "extract [statement.pdf]",
	Short: "Extract and categorize transactions from a PDF statement",
	Long: `Extract transactions from a Dr/Cr bank statement PDF, categorize them and
store the result as the current snapshot. With --output the ledger is also
written as CSV.

Example:
  pdf-ledger extract -i statement.pdf -o transactions.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: extractFunc,
}

func init() {
	Cmd.Flags().BoolVar(&noCategorize, "no-categorize", false, "Skip transaction categorization")
	Cmd.Flags().IntVar(&workers, "workers", 0, "Pages parsed concurrently (0 keeps the configured value)")
}

func extractFunc(cmd *cobra.Command, args []string) error {
	input := root.SharedFlags.Input
	if input == "" && len(args) == 1 {
		input = args[0]
	}
	if input == "" {
		return errors.New("an input statement is required (--input)")
	}

	// The pipeline only sees absolute statement paths.
	abs, err := filepath.Abs(input)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", input, err)
	}
	input = abs
	if root.SharedFlags.Validate {
		if err := validation.IsStatementFile(input); err != nil {
			return err
		}
	}
	if workers > 0 {
		root.GetConfig().Parsers.PDF.Workers = workers
	}

	c, err := root.GetContainer(cmd)
	if err != nil {
		return err
	}
	log := c.GetLogger()
	out := cmd.OutOrStdout()

	res, err := c.GetPipeline().Run(cmd.Context(), pipeline.Input{Path: input, SkipCategorize: noCategorize})
	if err != nil {
		_, _ = fmt.Fprintln(out, models.OutcomeFailed.Message())
		return fmt.Errorf("failed to process %s: %w", input, err)
	}
	_, _ = fmt.Fprintln(out, res.Message())

	if res.Ledger.IsEmpty() {
		return nil
	}
	_, _ = fmt.Fprintf(out, "Extracted %d transactions (%d lines dropped, %d balance warnings)\n",
		res.Ledger.Len(), res.Dropped, len(res.Warnings))

	if output := root.SharedFlags.Output; output != "" {
		if err := common.ExportLedgerToCSV(res.Ledger, output, log); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
		log.Info("Wrote ledger CSV", logging.F(logging.FieldOutputFile, output))
		_, _ = fmt.Fprintf(out, "Wrote %s\n", output)
	}
	return nil
}
