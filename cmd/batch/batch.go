// Package batch handles batch conversion of statement directories
package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/pdf-ledger/cmd/common"
	"fjacquet/pdf-ledger/cmd/root"
	"fjacquet/pdf-ledger/internal/fileutils"
	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/parser"
)

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch process statements from a directory",
	Long: `Batch process files from an input directory and output them to another directory.

The batch command converts every PDF statement in the input directory to a CSV
file of the same name. Each file is validated and converted independently; a
failed file is reported and the rest are still processed.

Example:
  pdf-ledger batch -i statements/ -o csv/`,
	RunE: batchFunc,
}

// Summary counts the outcome of a batch run.
type Summary struct {
	Converted int
	Failed    []string
}

func batchFunc(cmd *cobra.Command, args []string) error {
	inputDir := root.SharedFlags.Input
	outputDir := root.SharedFlags.Output
	if inputDir == "" || outputDir == "" {
		return errors.New("input and output directories must be specified")
	}

	c, err := root.GetContainer(cmd)
	if err != nil {
		return err
	}

	summary, err := Convert(cmd.Context(), c.GetConverter(), inputDir, outputDir, root.SharedFlags.Validate, c.GetLogger())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Batch processing completed. %d files converted, %d failed.\n",
		summary.Converted, len(summary.Failed))
	for _, f := range summary.Failed {
		_, _ = fmt.Fprintf(out, "  failed: %s\n", f)
	}
	return nil
}

// Convert converts every statement in inputDir into outputDir.
func Convert(ctx context.Context, p parser.FullParser, inputDir, outputDir string, validate bool, logger logging.Logger) (Summary, error) {
	var summary Summary
	logger = logging.OrDefault(logger)

	files, err := fileutils.ListStatements(inputDir)
	if err != nil {
		return summary, err
	}
	if len(files) == 0 {
		logger.Warn("No statements found in input directory", logging.F(logging.FieldFile, inputDir))
		return summary, nil
	}
	if err := fileutils.EnsureDirectoryExists(outputDir); err != nil {
		return summary, fmt.Errorf("failed to create output directory: %w", err)
	}

	logger.Info("Found files for processing", logging.F(logging.FieldCount, len(files)))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		out := fileutils.OutputPath(outputDir, file, ".csv")
		if err := common.ProcessFile(ctx, p, file, out, validate, logger); err != nil {
			logger.WithError(err).Error("Failed to convert statement",
				logging.F(logging.FieldInputFile, file))
			summary.Failed = append(summary.Failed, file)
			continue
		}
		summary.Converted++
	}
	return summary, nil
}
