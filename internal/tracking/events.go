package tracking

import (
	"github.com/vmunix/trackarr/internal/events"
)

// Tracker event types.
const (
	EventTrackedDownloadsRemoved   = "tracked_downloads.removed"
	EventTrackedDownloadsRefreshed = "tracked_downloads.refreshed"
)

// TrackedDownloadsRemoved is emitted when downloads stop being tracked.
type TrackedDownloadsRemoved struct {
	events.BaseEvent
	DownloadIDs []string           `json:"download_ids"`
	Downloads   []*TrackedDownload `json:"-"`
}

// TrackedDownloadsRefreshed is emitted when tracked downloads changed
// outside a poll, e.g. after a catalog change. Downloads holds the full
// tracked set at publish time.
type TrackedDownloadsRefreshed struct {
	events.BaseEvent
	DownloadIDs []string           `json:"download_ids"`
	Downloads   []*TrackedDownload `json:"-"`
}

func newRemovedEvent(removed []*TrackedDownload) *TrackedDownloadsRemoved {
	return &TrackedDownloadsRemoved{
		BaseEvent:   events.NewBaseEvent(EventTrackedDownloadsRemoved, events.EntityTrackedDownload, 0),
		DownloadIDs: downloadIDs(removed),
		Downloads:   removed,
	}
}

func newRefreshedEvent(all []*TrackedDownload) *TrackedDownloadsRefreshed {
	return &TrackedDownloadsRefreshed{
		BaseEvent:   events.NewBaseEvent(EventTrackedDownloadsRefreshed, events.EntityTrackedDownload, 0),
		DownloadIDs: downloadIDs(all),
		Downloads:   all,
	}
}

func downloadIDs(tds []*TrackedDownload) []string {
	ids := make([]string, len(tds))
	for i, td := range tds {
		ids[i] = td.DownloadID
	}
	return ids
}

// RegisterEvents adds the tracker event types to r.
func RegisterEvents(r *events.Registry) {
	r.Register(EventTrackedDownloadsRemoved, func() events.Event { return &TrackedDownloadsRemoved{} })
	r.Register(EventTrackedDownloadsRefreshed, func() events.Event { return &TrackedDownloadsRefreshed{} })
}
