// Package ask sends one question to the transaction chatbot.
package ask

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fjacquet/pdf-ledger/cmd/root"
)

// Cmd represents the ask command
var Cmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about your transactions",
	Long: `Ask a question about the processed transactions in plain English.

Example:
  pdf-ledger ask "how much did I spend on food in april"`,
	Args: cobra.MinimumNArgs(1),
	RunE: askFunc,
}

func askFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer(cmd)
	if err != nil {
		return err
	}
	bot, err := c.Chatbot()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), bot.Answer(strings.Join(args, " ")))
	return err
}
