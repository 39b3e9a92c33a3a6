package commands

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	recomputeBatchID string
	recomputeDays    int
	recomputeDryRun  bool
)

var recomputeRecentDailyStatesCmd = &cobra.Command{
	Use:   "recompute_recent_daily_states",
	Short: "Rerun the Assimilation Engine over the last N days for one batch, or every active batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer db.Close()
		ctx := cmd.Context()

		batchIDs := []string{recomputeBatchID}
		if recomputeBatchID == "" {
			ids, err := repo.ListActiveBatchIDs(ctx)
			if err != nil {
				return err
			}
			batchIDs = ids
		}

		now := time.Now()
		start := now.AddDate(0, 0, -recomputeDays)

		for _, batchID := range batchIDs {
			assignments, err := repo.LoadActiveAssignmentsForBatch(ctx, batchID)
			if err != nil {
				log.Error().Err(err).Str("batch_id", batchID).Msg("failed to load assignments")
				continue
			}
			for _, a := range assignments {
				if recomputeDryRun {
					log.Info().Str("batch_id", batchID).Str("assignment_id", a.ID).Msg("dry-run: would recompute assignment")
					continue
				}
				if err := recomputeAssignment(ctx, a.ID, start, now); err != nil {
					log.Error().Err(err).Str("assignment_id", a.ID).Msg("recompute failed")
				}
			}
		}
		return nil
	},
}

func init() {
	recomputeRecentDailyStatesCmd.Flags().StringVar(&recomputeBatchID, "batch-id", "", "batch to recompute (default: every active batch)")
	recomputeRecentDailyStatesCmd.Flags().IntVar(&recomputeDays, "days", 7, "lookback window in days")
	recomputeRecentDailyStatesCmd.Flags().BoolVar(&recomputeDryRun, "dry-run", false, "enumerate without writing")
}
