package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dori/sweet/internal/config"
	"github.com/dori/sweet/internal/logging"
	"github.com/dori/sweet/internal/pgstore"
	"github.com/dori/sweet/internal/server"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sync server",
		Long:  "Run the HTTP sync server and webhook endpoint backed by Postgres (database_url / SWEET_DATABASE_URL).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("database_url is not configured")
			}
			if addr == "" {
				addr = cfg.ListenAddr
			}

			logger, err := logging.New(logging.Options{Debug: flags.verbose || cfg.Debug})
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg.DatabaseURL, addr, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func serve(ctx context.Context, dsn, addr string, logger *zap.Logger) error {
	store, err := pgstore.Open(ctx, dsn, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	return server.New(store, logger).Run(ctx, addr)
}
