package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aquamind/growthengine/internal/api"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API, the catch-up scheduler, and the recompute worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer db.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		catchupScheduler.Start(ctx, cfg.CatchupInterval())
		defer catchupScheduler.Stop()

		go runRecomputeWorker(ctx)

		server := api.NewServer(repo, cfg.Port, projectionEngine, liveProjectionEngine, forecastEngine, dispatcher)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			log.Info().Str("signal", sig.String()).Msg("shutting down")
			return nil
		}
	},
}
