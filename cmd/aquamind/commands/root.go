// Package commands implements the aquamind CLI's cobra command tree,
// grounded on bbak-mcs-mcp's cmd/mcs-mcp/commands.
package commands

import (
	"os"

	"github.com/aquamind/growthengine/internal/config"
	"github.com/aquamind/growthengine/internal/database"
	"github.com/aquamind/growthengine/internal/dispatch"
	"github.com/aquamind/growthengine/internal/logging"
	"github.com/aquamind/growthengine/internal/scheduler"
	"github.com/aquamind/growthengine/pkg/assimilation"
	"github.com/aquamind/growthengine/pkg/forecast"
	"github.com/aquamind/growthengine/pkg/liveprojection"
	"github.com/aquamind/growthengine/pkg/projection"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig

	db   *database.DB
	repo *database.Repository

	assimilationEngine  *assimilation.Engine
	projectionEngine    *projection.Engine
	liveProjectionEngine *liveprojection.Engine
	forecastEngine      *forecast.Engine
	dispatcher          *dispatch.Dispatcher
	catchupScheduler    *scheduler.Scheduler
)

var rootCmd = &cobra.Command{
	Use:   "aquamind",
	Short: "AquaMind is a salmon growth engine: assimilation, projection, and live forward forecasting",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			os.Setenv("VERBOSE", "true")
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load configuration")
		}

		logging.Init(cfg.DataPath)

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("aquamind starting")

		db, err = database.NewDatabase(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open database")
		}
		repo = database.NewRepository(db)

		dispatcher = dispatch.NewDispatcher(repo, log.Logger)
		assimilationEngine = assimilation.NewEngine(repo, log.Logger)
		projectionEngine = projection.NewEngine(repo)
		liveProjectionEngine = liveprojection.NewEngine(repo, liveprojection.Config{
			WindowDays:     cfg.LiveForwardTempBiasWindowDays,
			ClampMinC:      cfg.LiveForwardTempBiasClampMinC,
			ClampMaxC:      cfg.LiveForwardTempBiasClampMaxC,
			MaxHorizonDays: cfg.LiveForwardMaxHorizonDays,
		})
		forecastEngine = forecast.NewEngine(repo)

		catchupScheduler = scheduler.NewScheduler(repo, repo, log.Logger)
		catchupScheduler.Workers = cfg.SchedulerWorkers
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(recomputeRecentDailyStatesCmd)
	rootCmd.AddCommand(regenerateProjectionsCmd)
}
