// Package server wires the tracker daemon together.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/vmunix/trackarr/internal/catalog"
	"github.com/vmunix/trackarr/internal/config"
	"github.com/vmunix/trackarr/internal/download"
	"github.com/vmunix/trackarr/internal/events"
	"github.com/vmunix/trackarr/internal/handlers"
	"github.com/vmunix/trackarr/internal/history"
	"github.com/vmunix/trackarr/internal/matching"
	"github.com/vmunix/trackarr/internal/metadata"
	"github.com/vmunix/trackarr/internal/migrations"
	"github.com/vmunix/trackarr/internal/tracking"
	"github.com/vmunix/trackarr/pkg/tvdb"
)

// ErrAlreadyRunning is returned when another daemon holds the lock.
var ErrAlreadyRunning = errors.New("another trackarr daemon is already running")

const pruneSchedule = "@daily"

// Runner manages the daemon components.
type Runner struct {
	cfg     *config.Config
	clients []download.Client
	logger  *slog.Logger

	// Tracker is set once Run has built it.
	Tracker *tracking.Service
	ready   chan struct{}
}

// NewRunner creates a new runner. Without clients, the download clients
// come from cfg.
func NewRunner(cfg *config.Config, logger *slog.Logger, clients ...download.Client) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if len(clients) == 0 {
		clients = Clients(cfg, logger)
	}
	return &Runner{
		cfg:     cfg,
		clients: clients,
		logger:  logger,
		ready:   make(chan struct{}),
	}
}

// Ready is closed once Run has started every component.
func (r *Runner) Ready() <-chan struct{} {
	return r.ready
}

// Clients builds the download clients configured in cfg.
func Clients(cfg *config.Config, logger *slog.Logger) []download.Client {
	var clients []download.Client
	if sab := cfg.Downloaders.SABnzbd; sab != nil {
		info := download.ClientInfo{ID: 1, Name: "SABnzbd", Protocol: download.ProtocolUsenet}
		clients = append(clients, download.NewSABnzbdClient(info, sab.URL, sab.APIKey, sab.Category, logger))
	}
	if qb := cfg.Downloaders.QBittorrent; qb != nil {
		info := download.ClientInfo{ID: 2, Name: "qBittorrent", Protocol: download.ProtocolTorrent}
		clients = append(clients, download.NewQBittorrentClient(info, qb.URL, qb.Username, qb.Password, qb.Category, logger))
	}
	return clients
}

// OpenDB opens the SQLite database at path, creating its directory, and
// applies migrations.
func OpenDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Run starts all components.
// It blocks until the context is canceled or a component fails.
func (r *Runner) Run(ctx context.Context) error {
	lock, err := AcquireLock(r.cfg.Tracking.LockPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release lock", "path", r.cfg.Tracking.LockPath, "error", err)
		}
	}()

	db, err := OpenDB(r.cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	// Create event bus with persistence
	eventLog := events.NewEventLog(db)
	bus := events.NewBus(eventLog, r.logger.With("component", "bus"))
	defer func() { _ = bus.Close() }()

	formats, err := matching.NewFormatCalculator(r.cfg.FormatSpecs())
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store := catalog.NewStore(db)
	tracker := tracking.New(tracking.Deps{
		Mapper:          matching.NewMapper(store, r.logger),
		Catalog:         store,
		History:         history.NewStore(db),
		DownloadHistory: history.NewDownloadStore(db),
		Scorer:          formats,
		Bus:             bus,
		Metrics:         tracking.NewMetrics(reg),
		SkipReconcile:   !r.cfg.Tracking.ReconcileEnabled(),
	}, r.logger)
	r.Tracker = tracker

	listener := tracking.NewListener(tracker, bus, r.logger)
	poller := NewPoller(download.NewManager(r.logger, r.clients...), tracker, r.logger)

	sched := cron.New()
	if _, err := sched.AddFunc(r.cfg.Tracking.PollSchedule, func() { poller.Poll(ctx) }); err != nil {
		return fmt.Errorf("poll schedule: %w", err)
	}
	cache := metadata.NewCache(db)
	if _, err := sched.AddFunc(pruneSchedule, func() { r.prune(ctx, eventLog, cache) }); err != nil {
		return fmt.Errorf("prune schedule: %w", err)
	}
	syncer := NewSyncer(r.cfg.Metadata, cache, catalog.NewService(store, bus, r.logger), r.logger)
	if syncer != nil {
		if _, err := sched.AddFunc(r.cfg.Metadata.RefreshSchedule, func() { r.sync(ctx, syncer) }); err != nil {
			return fmt.Errorf("refresh schedule: %w", err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return handlers.Run(ctx, r.logger, listener)
	})
	g.Go(func() error {
		if syncer != nil {
			r.sync(ctx, syncer)
		}
		poller.Poll(ctx)
		sched.Start()
		<-ctx.Done()
		<-sched.Stop().Done()
		return nil
	})
	if addr := r.cfg.Server.MetricsAddr; addr != "" {
		g.Go(func() error {
			return r.serveMetrics(ctx, addr, reg)
		})
	}

	r.logger.Info("trackarr started",
		"clients", len(r.clients),
		"poll_schedule", r.cfg.Tracking.PollSchedule,
		"metadata_sync", syncer != nil,
		"reconcile_parts", r.cfg.Tracking.ReconcileEnabled())
	close(r.ready)

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// AcquireLock takes the single-instance lock at path without blocking.
// Returns ErrAlreadyRunning when a daemon holds it.
func AcquireLock(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}
	return lock, nil
}

// NewSyncer builds the TVDB catalog syncer, or returns nil when no TVDB
// key is configured.
func NewSyncer(meta config.MetadataConfig, cache *metadata.Cache, svc *catalog.Service, logger *slog.Logger) *metadata.Syncer {
	if meta.TVDB == nil {
		return nil
	}
	opts := []tvdb.Option{tvdb.WithLogger(logger)}
	if meta.TVDB.URL != "" {
		opts = append(opts, tvdb.WithBaseURL(meta.TVDB.URL))
	}
	source := metadata.NewCachedSource(tvdb.New(meta.TVDB.APIKey, opts...), cache, meta.CacheTTL.Duration, logger)
	return metadata.NewSyncer(source, svc, logger)
}

// Wanted lists the configured series for the syncer.
func Wanted(meta config.MetadataConfig) []metadata.Wanted {
	wanted := make([]metadata.Wanted, len(meta.Series))
	for i, s := range meta.Series {
		wanted[i] = metadata.Wanted{TVDBID: s.TVDBID, Type: catalog.SeriesType(s.Type)}
	}
	return wanted
}

func (r *Runner) sync(ctx context.Context, syncer *metadata.Syncer) {
	if err := syncer.Sync(ctx, Wanted(r.cfg.Metadata)); err != nil && ctx.Err() == nil {
		r.logger.Warn("metadata sync incomplete", "error", err)
	}
}

func (r *Runner) prune(ctx context.Context, log *events.EventLog, cache *metadata.Cache) {
	n, err := log.Prune(ctx, r.cfg.Tracking.EventRetention.Duration)
	if err != nil {
		r.logger.Warn("failed to prune event log", "error", err)
	} else {
		r.logger.Debug("pruned event log", "removed", n)
	}
	if n, err := cache.Prune(ctx); err != nil {
		r.logger.Warn("failed to prune metadata cache", "error", err)
	} else {
		r.logger.Debug("pruned metadata cache", "removed", n)
	}
}

func (r *Runner) serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("metrics listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
