package catalog

import (
	"github.com/vmunix/trackarr/internal/events"
)

// Catalog event types.
const (
	EventSeriesAdded          = "series.added"
	EventSeriesDeleted        = "series.deleted"
	EventEpisodeInfoRefreshed = "episodes.refreshed"
)

// SeriesAdded is emitted after a series is added to the catalog.
type SeriesAdded struct {
	events.BaseEvent
	Series *Series `json:"series"`
}

// SeriesDeleted is emitted after one or more series are removed.
type SeriesDeleted struct {
	events.BaseEvent
	Series []*Series `json:"series"`
}

// EpisodeInfoRefreshed is emitted after a series' episode list was synced.
type EpisodeInfoRefreshed struct {
	events.BaseEvent
	SeriesID int64      `json:"series_id"`
	Added    []*Episode `json:"added,omitempty"`
	Updated  []*Episode `json:"updated,omitempty"`
	Removed  []*Episode `json:"removed,omitempty"`
}

// RegisterEvents adds the catalog event types to r.
func RegisterEvents(r *events.Registry) {
	r.Register(EventSeriesAdded, func() events.Event { return &SeriesAdded{} })
	r.Register(EventSeriesDeleted, func() events.Event { return &SeriesDeleted{} })
	r.Register(EventEpisodeInfoRefreshed, func() events.Event { return &EpisodeInfoRefreshed{} })
}
