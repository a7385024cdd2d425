package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/darianmavgo/tabconv/config"
	"github.com/darianmavgo/tabconv/converters"
	"github.com/darianmavgo/tabconv/logging"
	"github.com/darianmavgo/tabconv/server"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Resolve(*configPath)
			if err != nil {
				return err
			}
			logging.Setup(cfg.LogLevel, cfg.LogFormat)

			store, err := converters.NewTempStore(cfg.TempDir)
			if err != nil {
				return err
			}
			pipeline := converters.NewPipeline(store).WithBatchSize(cfg.BatchSize)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := server.NewServer(cfg, pipeline).Run(ctx); err != nil {
				slog.Error("server stopped", "error", err)
				return err
			}
			slog.Info("server stopped")
			return nil
		},
	}
}
