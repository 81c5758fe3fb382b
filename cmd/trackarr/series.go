package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/trackarr/internal/catalog"
	"github.com/vmunix/trackarr/internal/config"
	"github.com/vmunix/trackarr/internal/events"
	"github.com/vmunix/trackarr/internal/metadata"
	"github.com/vmunix/trackarr/internal/server"
)

// SeriesJSON is the JSON form of a catalog series.
type SeriesJSON struct {
	ID       int64    `json:"id"`
	TVDBID   int64    `json:"tvdb_id,omitempty"`
	Title    string   `json:"title"`
	Type     string   `json:"type"`
	Year     int      `json:"year,omitempty"`
	Episodes int      `json:"episodes"`
	Finales  []string `json:"finales,omitempty"`
}

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Inspect and sync the series catalog",
}

var seriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog series with their finale markers",
	Args:  cobra.NoArgs,
	RunE:  runSeriesListCmd,
}

var seriesSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Add configured series and refresh episodes from TVDB",
	Long: `Add every series listed under [[metadata.series]] that is missing from
the catalog and refresh the episodes of every series with a TVDB id.

Refused while the daemon is running; it syncs on metadata.refresh_schedule.`,
	Args: cobra.NoArgs,
	RunE: runSeriesSyncCmd,
}

func init() {
	rootCmd.AddCommand(seriesCmd)
	seriesCmd.AddCommand(seriesListCmd, seriesSyncCmd)
}

func runSeriesListCmd(cmd *cobra.Command, args []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadWithoutValidation(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	db, err := server.OpenDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return printSeries(cmd, catalog.NewStore(db))
}

func runSeriesSyncCmd(cmd *cobra.Command, args []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.Metadata.TVDB == nil {
		return errors.New("metadata.tvdb is not configured")
	}

	lock, err := server.AcquireLock(cfg.Tracking.LockPath)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	db, err := server.OpenDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.Server.Level()}))
	bus := events.NewBus(events.NewEventLog(db), logger)
	defer func() { _ = bus.Close() }()

	store := catalog.NewStore(db)
	syncer := server.NewSyncer(cfg.Metadata, metadata.NewCache(db), catalog.NewService(store, bus, logger), logger)
	syncErr := syncer.Sync(cmd.Context(), server.Wanted(cfg.Metadata))

	if err := printSeries(cmd, store); err != nil {
		return err
	}
	if syncErr != nil {
		return fmt.Errorf("sync incomplete: %w", syncErr)
	}
	return nil
}

func printSeries(cmd *cobra.Command, store *catalog.Store) error {
	all, err := store.ListSeries()
	if err != nil {
		return fmt.Errorf("list series: %w", err)
	}

	items := make([]SeriesJSON, len(all))
	for i, s := range all {
		eps, err := store.EpisodesForSeries(s.ID)
		if err != nil {
			return fmt.Errorf("list episodes: %w", err)
		}
		items[i] = SeriesJSON{
			ID:       s.ID,
			TVDBID:   s.TVDBID,
			Title:    s.Title,
			Type:     string(s.Type),
			Year:     s.Year,
			Episodes: len(eps),
			Finales:  finales(eps),
		}
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, items)
	}
	if len(items) == 0 {
		_, err := fmt.Fprintln(out, "No series")
		return err
	}

	rows := make([][]string, len(items))
	for i, s := range items {
		tvdbID := "-"
		if s.TVDBID > 0 {
			tvdbID = strconv.FormatInt(s.TVDBID, 10)
		}
		rows[i] = []string{
			strconv.FormatInt(s.ID, 10),
			tvdbID,
			s.Title,
			s.Type,
			strconv.Itoa(s.Episodes),
			strings.Join(s.Finales, ", "),
		}
	}
	_, err = fmt.Fprintln(out, renderTable(
		[]string{"ID", "TVDB", "TITLE", "TYPE", "EPISODES", "FINALES"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight},
	))
	return err
}

// finales lists the finale episodes as "S01E12 midseason".
func finales(eps []*catalog.Episode) []string {
	var out []string
	for _, e := range eps {
		if e.IsFinale() {
			out = append(out, fmt.Sprintf("S%02dE%02d %s", e.Season, e.Episode, e.FinaleType))
		}
	}
	return out
}
