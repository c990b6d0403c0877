package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/meikuraledutech/area/config"
	"github.com/meikuraledutech/area/internal/logging"
	"github.com/meikuraledutech/area/redis"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "areaflow",
	Short: "Areaflow edits and stores action/reaction workflows",
	Long:  `Areaflow serves the area API, validates save payloads and renders stored areas as SVG.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		c, err := config.Load(path)
		if err != nil {
			return err
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			c.LogLevel = lvl
		}
		cfg = c
		logger = logging.New(logging.ParseLevel(c.LogLevel))
		return nil
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "areaflow.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level")
}

// draftStore returns the configured redis draft store, or nil when redis
// is not configured.
func draftStore() *redis.Store {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
		redis.WithTTL(cfg.Redis.TTL),
		redis.WithPrefix(cfg.Redis.Prefix),
	)
}
