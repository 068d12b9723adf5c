// Package commands implements the gamecatalog command line.
package commands

import (
	"context"
	"fmt"
	"os"

	"gamecatalog/cache"
	"gamecatalog/config"
	"gamecatalog/db"
	"gamecatalog/utils"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	// Global flags
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "gamecatalog",
	Short: "Game catalog API with moderated reviews",
	Long: `gamecatalog serves the game catalog HTTP API: paginated game search,
user reviews with an admin moderation queue, and user administration.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to an optional .env file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

// app is what every command needs before touching the store.
type app struct {
	cfg *config.Config
	log *logrus.Logger
	db  *gorm.DB
}

func bootstrap() (*app, error) {
	cfg := config.Load(envFile)
	if verbose {
		cfg.LogLevel = "debug"
	}
	log := utils.NewLogger(cfg)

	gdb, err := db.Open(cfg, log)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, db: gdb}, nil
}

func (rt *app) close() {
	if err := db.Close(rt.db); err != nil {
		rt.log.WithError(err).Warn("Failed to close database")
	}
}

// openCache connects to redis when configured. The API works without it,
// so a failed connection only disables caching and rate limiting.
func (rt *app) openCache(ctx context.Context) *cache.Cache {
	if rt.cfg.RedisURL == "" {
		rt.log.Info("REDIS_URL not set; caching and rate limiting disabled")
		return nil
	}
	c, err := cache.New(ctx, cache.Options{Addr: rt.cfg.RedisURL, Password: rt.cfg.RedisPassword})
	if err != nil {
		rt.log.WithError(err).Warn("Redis unavailable; caching and rate limiting disabled")
		return nil
	}
	rt.log.WithField("addr", rt.cfg.RedisURL).Info("Redis connected")
	return c
}
