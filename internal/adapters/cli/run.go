package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/altruan/pulpobot/internal/infrastructure/config"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Plan the picking queue once and exit",
		Long: `Run one planning pass over the fulfillment queue.

The pass pauses delivery-service orders, cleans or refreshes according to
the hour, creates single picks for palette and Partnerkunde orders, batches
single-product orders and fills picking carts until the backlog is full.

Example:
  pulpobot run --config /etc/pulpobot/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if verbose {
				cfg.Logging.Level = "debug"
			}

			logger, err := config.NewLogger(cfg.Logging)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			orchestrator, err := buildOrchestrator(ctx, cfg, logger)
			if err != nil {
				logger.Error("failed to assemble run", zap.Error(err))
				return err
			}

			result, err := orchestrator.Run(ctx)
			if err != nil {
				logger.Error("run aborted", zap.Error(err))
				return err
			}

			out, err := json.Marshal(result)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	return cmd
}
