package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/area/postgres"
	"github.com/meikuraledutech/area/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the area HTTP API",
	Long:  `Starts the area API backed by PostgreSQL, with Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DatabaseURL == "" {
			return errors.New("database url is not set")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer pool.Close()

		store := postgres.New(pool)
		if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
			if err := store.CreateSchema(ctx); err != nil {
				return fmt.Errorf("schema: %w", err)
			}
		}

		app := server.New(store, server.WithLogger(logger))

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("starting area server", "listen", cfg.Listen)
			return app.Listen(cfg.Listen)
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return app.ShutdownWithContext(shutdownCtx)
		})

		if err := g.Wait(); err != nil {
			return fmt.Errorf("server: %w", err)
		}
		logger.Info("area server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("migrate", false, "Create the schema before serving")
}
