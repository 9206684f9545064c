// Package main is the entry point for the planet viewer server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/genesisforge/internal/config"
	"github.com/Faultbox/genesisforge/internal/engine/quadtree"
	"github.com/Faultbox/genesisforge/internal/engine/scheduler"
	"github.com/Faultbox/genesisforge/internal/logger"
	"github.com/Faultbox/genesisforge/internal/viewer"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== GenesisForge planet server ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("server error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("server stopped normally")
}

func run(cfg *config.Config) error {
	opts, err := quadtree.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(scheduler.Config{
		Workers:     cfg.Generation.Workers,
		PendingWarn: cfg.Generation.PendingWarn,
	})
	sched.Start(ctx)
	defer sched.Close()

	logger.Info("planet",
		zap.Float64("radius", opts.Radius),
		zap.Int("max_level", opts.MaxLevel),
		zap.Int("resolution", opts.Resolution),
		zap.Int64("seed", opts.Params.Seed),
	)

	return viewer.NewServer(sched, opts, cfg.Server).ListenAndServe(ctx)
}
