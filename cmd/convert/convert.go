// Package convert handles PDF statement to CSV conversion without
// categorization or snapshot storage.
package convert

import (
	"errors"

	"github.com/spf13/cobra"

	"fjacquet/pdf-ledger/cmd/common"
	"fjacquet/pdf-ledger/cmd/root"
)

// Cmd represents the convert command
var Cmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a PDF statement to CSV",
	Long: `Convert a PDF statement to CSV format. Transactions are neither categorized
nor stored as the current snapshot.`,
	RunE: convertFunc,
}

func convertFunc(cmd *cobra.Command, args []string) error {
	flags := root.SharedFlags
	if flags.Input == "" || flags.Output == "" {
		return errors.New("both --input and --output are required")
	}

	c, err := root.GetContainer(cmd)
	if err != nil {
		return err
	}
	log := c.GetLogger()
	log.Info("PDF convert command called")

	return common.ProcessFile(cmd.Context(), c.GetConverter(), flags.Input, flags.Output, flags.Validate, log)
}
