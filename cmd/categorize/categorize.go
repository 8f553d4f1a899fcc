// Package categorize handles transaction categorization commands
package categorize

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"fjacquet/pdf-ledger/cmd/root"
	"fjacquet/pdf-ledger/internal/store"
)

// Narration is the single narration to classify, if any.
var Narration string

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Categorize transactions using keyword rules or Gemini",
	Long: `Categorize transactions based on their narration, using Gemini when AI is
enabled and the keyword rules otherwise.

Without --narration the current snapshot is re-categorized and saved.`,
	RunE: categorizeFunc,
}

func init() {
	Cmd.Flags().StringVarP(&Narration, "narration", "n", "", "Single narration to categorize")
}

func categorizeFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	cat := c.GetCategorizer()

	if Narration != "" {
		labels := cat.CategorizeNarrations(cmd.Context(), []string{Narration})
		_, _ = fmt.Fprintf(out, "Category: %s\n", labels[0])
		return nil
	}

	snapshots := c.GetSnapshots()
	ledger, err := snapshots.Load()
	if errors.Is(err, store.ErrSnapshotNotFound) {
		return errors.New("no processed transactions found, run extract first")
	}
	if err != nil {
		return err
	}

	categorized, stats := cat.CategorizeLedger(cmd.Context(), ledger)
	c.GetMetrics().ObserveCategorization(stats)
	if err := snapshots.Save(categorized); err != nil {
		return err
	}

	counts := map[string]int{}
	for _, rec := range categorized.Records {
		counts[rec.CategoryOrDefault()]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	_, _ = fmt.Fprintf(out, "Categorized %d transactions\n", categorized.Len())
	for _, name := range names {
		_, _ = fmt.Fprintf(out, "  %-20s %d\n", name, counts[name])
	}
	return nil
}
