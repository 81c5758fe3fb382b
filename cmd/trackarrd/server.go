package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vmunix/trackarr/internal/config"
	"github.com/vmunix/trackarr/internal/server"
)

// loadConfig finds and loads the config, then applies the flag overrides
// and validates the result.
func loadConfig(opts options) (*config.Config, string, error) {
	path := opts.configPath
	if path == "" {
		var err error
		if path, err = config.Discover(); err != nil {
			return nil, "", err
		}
	}
	cfg, err := config.LoadWithoutValidation(path)
	if err != nil {
		return nil, path, fmt.Errorf("config: %w", err)
	}
	applyOverrides(cfg, opts)
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, path, &config.ConfigError{Path: path, Errors: errs}
	}
	return cfg, path, nil
}

func applyOverrides(cfg *config.Config, opts options) {
	if opts.logLevel != "" {
		cfg.Server.LogLevel = opts.logLevel
	}
	if opts.poll != "" {
		cfg.Tracking.PollSchedule = opts.poll
	}
	if opts.metricsAddr != "" {
		cfg.Server.MetricsAddr = opts.metricsAddr
	}
	if opts.noReconcile {
		off := false
		cfg.Tracking.ReconcileParts = &off
	}
}

// describe prints what the daemon would run with cfg.
func describe(w io.Writer, path string, cfg *config.Config) {
	fmt.Fprintf(w, "config:     %s\n", path)
	fmt.Fprintf(w, "database:   %s\n", cfg.Database.Path)
	fmt.Fprintf(w, "poll:       %s\n", cfg.Tracking.PollSchedule)
	fmt.Fprintf(w, "reconcile:  %t\n", cfg.Tracking.ReconcileEnabled())
	if cfg.Downloaders.SABnzbd != nil {
		fmt.Fprintf(w, "sabnzbd:    %s\n", cfg.Downloaders.SABnzbd.URL)
	}
	if cfg.Downloaders.QBittorrent != nil {
		fmt.Fprintf(w, "qbittorrent: %s\n", cfg.Downloaders.QBittorrent.URL)
	}
	if cfg.Metadata.TVDB != nil {
		fmt.Fprintf(w, "tvdb:       %d series, refresh %s\n", len(cfg.Metadata.Series), cfg.Metadata.RefreshSchedule)
	}
	if cfg.Server.MetricsAddr != "" {
		fmt.Fprintf(w, "metrics:    %s\n", cfg.Server.MetricsAddr)
	}
}

func run(opts options, stdout io.Writer) error {
	cfg, path, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if opts.check {
		describe(stdout, path, cfg)
		return nil
	}

	logger := slog.New(slog.NewTextHandler(stdout, &slog.HandlerOptions{
		Level: cfg.Server.Level(),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting trackarrd", "version", version, "config", path, "database", cfg.Database.Path)
	if err := server.NewRunner(cfg, logger).Run(ctx); err != nil {
		return err
	}
	logger.Info("trackarrd stopped")
	return nil
}
