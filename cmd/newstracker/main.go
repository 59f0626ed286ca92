package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"newstracker/internal/app"
	"newstracker/internal/config"
	"newstracker/internal/logging"
)

// Options are the command-line flags; everything else lives in the
// YAML config and environment.
type Options struct {
	ConfigPath string `long:"config" env:"NEWSTRACKER_CONFIG" description:"Path to YAML configuration file"`
	Once       bool   `long:"once" description:"Run a single tracking pass and exit"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	cfg := config.Load(opts.ConfigPath)
	logger := logging.New(cfg.Logging.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	if opts.Once {
		err := application.RunOnce(ctx)
		if shutdownErr := application.Shutdown(context.Background()); shutdownErr != nil {
			logger.Warn("shutdown error", "error", shutdownErr)
		}
		if err != nil {
			logger.Error("run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := application.Start(ctx); err != nil {
		logger.Error("scheduler start failed", "error", err)
		os.Exit(1)
	}
	logger.Info("news tracker started", "interval", cfg.Scheduler.Interval().String())

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
