package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	regenerateAll      bool
	regenerateScenario string
	regenerateDryRun   bool
)

var regenerateProjectionsCmd = &cobra.Command{
	Use:   "regenerate_projections",
	Short: "Rerun the Projection Engine for one scenario, or every scenario",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer db.Close()
		ctx := cmd.Context()

		var scenarioIDs []string
		switch {
		case regenerateScenario != "":
			scenarioIDs = []string{regenerateScenario}
		case regenerateAll:
			ids, err := repo.ListScenarioIDs(ctx)
			if err != nil {
				return err
			}
			scenarioIDs = ids
		default:
			return cmd.Usage()
		}

		for _, scenarioID := range scenarioIDs {
			if regenerateDryRun {
				log.Info().Str("scenario_id", scenarioID).Msg("dry-run: would regenerate projection")
				continue
			}
			_, summary, result := projectionEngine.RunProjection(ctx, scenarioID)
			if !result.Success {
				log.Error().Strs("errors", result.Errors).Str("scenario_id", scenarioID).Msg("projection run failed")
				continue
			}
			log.Info().Str("scenario_id", scenarioID).Float64("final_weight_g", summary.FinalWeightG).Msg("projection regenerated")
		}
		return nil
	},
}

func init() {
	regenerateProjectionsCmd.Flags().BoolVar(&regenerateAll, "all", false, "regenerate every scenario")
	regenerateProjectionsCmd.Flags().StringVar(&regenerateScenario, "scenario", "", "regenerate a single scenario by ID")
	regenerateProjectionsCmd.Flags().BoolVar(&regenerateDryRun, "dry-run", false, "enumerate without writing")
}
