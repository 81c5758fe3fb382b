package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/trackarr/internal/catalog"
	"github.com/vmunix/trackarr/internal/config"
	"github.com/vmunix/trackarr/internal/events"
	"github.com/vmunix/trackarr/internal/server"
	"github.com/vmunix/trackarr/internal/tracking"
)

// EventJSON is the JSON form of a logged event.
type EventJSON struct {
	ID         int64     `json:"id"`
	Type       string    `json:"type"`
	EntityType string    `json:"entity_type"`
	EntityID   int64     `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Summary    string    `json:"summary"`
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent events from the event log",
	RunE:  runEventsCmd,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	eventsCmd.Flags().StringP("type", "t", "", "Only show events of this type")
	eventsCmd.Flags().Duration("since", 24*time.Hour, "With --type, how far back to look")
}

func runEventsCmd(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	eventType, _ := cmd.Flags().GetString("type")
	since, _ := cmd.Flags().GetDuration("since")

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

	log := events.NewEventLog(db)
	var raws []events.RawEvent
	if eventType != "" {
		raws, err = log.ForType(cmd.Context(), eventType, time.Now().Add(-since))
		if len(raws) > limit {
			raws = raws[len(raws)-limit:]
		}
	} else {
		raws, err = log.Recent(cmd.Context(), limit)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch events: %w", err)
	}

	reg := events.NewRegistry()
	catalog.RegisterEvents(reg)
	tracking.RegisterEvents(reg)

	items := make([]EventJSON, len(raws))
	for i, raw := range raws {
		items[i] = EventJSON{
			ID:         raw.ID,
			Type:       raw.EventType,
			EntityType: raw.EntityType,
			EntityID:   raw.EntityID,
			OccurredAt: raw.OccurredAt,
			Summary:    summarize(reg, raw),
		}
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, items)
	}
	if len(items) == 0 {
		_, err := fmt.Fprintln(out, "No events")
		return err
	}

	rows := make([][]string, len(items))
	for i, e := range items {
		rows[i] = []string{
			strconv.FormatInt(e.ID, 10),
			e.OccurredAt.Local().Format(time.DateTime),
			e.Type,
			fmt.Sprintf("%s/%d", e.EntityType, e.EntityID),
			e.Summary,
		}
	}
	_, err = fmt.Fprintln(out, renderTable(
		[]string{"ID", "TIME", "TYPE", "ENTITY", "SUMMARY"},
		rows,
		[]columnAlignment{alignRight},
	))
	return err
}

// summarize describes a logged event in a few words.
func summarize(reg *events.Registry, raw events.RawEvent) string {
	e, err := reg.Unmarshal(raw)
	if err != nil {
		return ""
	}
	switch ev := e.(type) {
	case *tracking.TrackedDownloadsRefreshed:
		return fmt.Sprintf("%d tracked", len(ev.DownloadIDs))
	case *tracking.TrackedDownloadsRemoved:
		return "removed " + strings.Join(ev.DownloadIDs, ", ")
	case *catalog.SeriesAdded:
		if ev.Series != nil {
			return ev.Series.Title
		}
	case *catalog.SeriesDeleted:
		titles := make([]string, len(ev.Series))
		for i, s := range ev.Series {
			titles[i] = s.Title
		}
		return strings.Join(titles, ", ")
	case *catalog.EpisodeInfoRefreshed:
		return fmt.Sprintf("+%d ~%d -%d episodes", len(ev.Added), len(ev.Updated), len(ev.Removed))
	}
	return ""
}
