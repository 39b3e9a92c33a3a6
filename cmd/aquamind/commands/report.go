package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// reportCmd prints a plain-text planning digest over every persisted
// ContainerForecastSummary: how many assignments need planning attention and
// the mean harvest variance among those with a pinned plan to compare
// against. Grounded on the original Django implementation's
// generate_metrics_report.py, expressed here as a thin read-side convenience
// over the Forecast Summarizer's existing output rather than a new engine.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a planning digest over stored forecast summaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer db.Close()
		ctx := cmd.Context()

		summaries, err := repo.ListForecastSummaries(ctx)
		if err != nil {
			return err
		}

		var needsAttention int
		var varianceTotal, varianceCount int
		for _, s := range summaries {
			if s.NeedsPlanningAttention {
				needsAttention++
			}
			if s.HarvestVarianceDays != nil {
				varianceTotal += *s.HarvestVarianceDays
				varianceCount++
			}
		}

		fmt.Printf("forecast summaries: %d\n", len(summaries))
		fmt.Printf("needs planning attention: %d\n", needsAttention)
		if varianceCount > 0 {
			fmt.Printf("mean harvest variance (days): %.1f\n", float64(varianceTotal)/float64(varianceCount))
		} else {
			fmt.Printf("mean harvest variance (days): n/a\n")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
