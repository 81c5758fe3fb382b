package tracking

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/vmunix/trackarr/internal/catalog"
	"github.com/vmunix/trackarr/internal/events"
	"github.com/vmunix/trackarr/internal/handlers"
)

// Listener re-matches tracked downloads when the catalog changes under
// them. Handlers run one at a time.
type Listener struct {
	*handlers.BaseHandler
	svc *Service
	mu  sync.Mutex
}

// NewListener creates a listener for svc fed from bus.
func NewListener(svc *Service, bus *events.Bus, logger *slog.Logger) *Listener {
	return &Listener{
		BaseHandler: handlers.NewBaseHandler("tracking", bus, logger),
		svc:         svc,
	}
}

// Name returns the handler name.
func (l *Listener) Name() string {
	return "tracking"
}

// Start dispatches catalog events until ctx ends or the bus closes.
func (l *Listener) Start(ctx context.Context) error {
	ch := l.Bus().Subscribe(100,
		catalog.EventSeriesAdded,
		catalog.EventSeriesDeleted,
		catalog.EventEpisodeInfoRefreshed)

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return nil // Channel closed
			}
			switch ev := e.(type) {
			case *catalog.SeriesAdded:
				l.HandleSeriesAdded(ctx, ev)
			case *catalog.SeriesDeleted:
				l.HandleSeriesDeleted(ctx, ev)
			case *catalog.EpisodeInfoRefreshed:
				l.HandleEpisodeInfoRefreshed(ctx, ev)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// HandleEpisodeInfoRefreshed re-matches downloads matched to an episode
// that was removed from the catalog.
func (l *Listener) HandleEpisodeInfoRefreshed(ctx context.Context, e *catalog.EpisodeInfoRefreshed) {
	if len(e.Removed) == 0 {
		return
	}
	removed := make([]int64, len(e.Removed))
	for i, ep := range e.Removed {
		removed[i] = ep.ID
	}
	l.refresh(ctx, catalog.EventEpisodeInfoRefreshed, func(td *TrackedDownload) bool {
		for _, id := range td.RemoteEpisode.EpisodeIDs() {
			if slices.Contains(removed, id) {
				return true
			}
		}
		return false
	})
}

// HandleSeriesAdded re-matches unmatched downloads and those matched to
// a series with the new series' TVDB id.
func (l *Listener) HandleSeriesAdded(ctx context.Context, e *catalog.SeriesAdded) {
	if e.Series == nil {
		return
	}
	l.refresh(ctx, catalog.EventSeriesAdded, func(td *TrackedDownload) bool {
		if td.RemoteEpisode == nil || td.RemoteEpisode.Series == nil {
			return true
		}
		return e.Series.TVDBID > 0 && td.RemoteEpisode.Series.TVDBID == e.Series.TVDBID
	})
}

// HandleSeriesDeleted re-matches downloads matched to a deleted series.
func (l *Listener) HandleSeriesDeleted(ctx context.Context, e *catalog.SeriesDeleted) {
	if len(e.Series) == 0 {
		return
	}
	l.refresh(ctx, catalog.EventSeriesDeleted, func(td *TrackedDownload) bool {
		if td.RemoteEpisode == nil || td.RemoteEpisode.Series == nil {
			return false
		}
		matched := td.RemoteEpisode.Series
		for _, s := range e.Series {
			if matched.ID == s.ID || (s.TVDBID > 0 && matched.TVDBID == s.TVDBID) {
				return true
			}
		}
		return false
	})
}

// refresh re-matches every download affected reports and, if any were,
// publishes one refreshed event carrying the whole tracked set.
func (l *Listener) refresh(ctx context.Context, event string, affected func(td *TrackedDownload) bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	changed := l.svc.cache.update(func(td *TrackedDownload) bool {
		if td.ClientItem == nil || !affected(td) {
			return false
		}
		td.Warnings = nil
		l.svc.rematch(td)
		return true
	})
	if len(changed) == 0 {
		return
	}

	l.svc.metrics.refreshed(event, len(changed))
	l.Logger().Debug("re-matched tracked downloads", "event", event, "count", len(changed))
	l.svc.publish(ctx, newRefreshedEvent(l.svc.cache.list()))
}
