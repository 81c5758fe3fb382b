package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vmunix/trackarr/internal/events"
)

// Publisher delivers catalog events.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Service wraps Store mutations and announces them on the event bus.
type Service struct {
	store  *Store
	bus    Publisher
	logger *slog.Logger
}

// NewService creates a catalog service. bus may be nil.
func NewService(store *Store, bus Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		bus:    bus,
		logger: logger.With("component", "catalog"),
	}
}

// Store returns the underlying store for read access.
func (s *Service) Store() *Store {
	return s.store
}

// AddSeries stores a series with its episodes in one transaction and
// publishes SeriesAdded. Nothing is stored when any insert fails.
func (s *Service) AddSeries(ctx context.Context, series *Series, episodes []*Episode) error {
	tx, err := s.store.Begin()
	if err != nil {
		return err
	}
	if err := tx.AddSeries(series); err != nil {
		_ = tx.Rollback()
		series.ID = 0
		return fmt.Errorf("add series: %w", err)
	}
	for _, e := range episodes {
		e.SeriesID = series.ID
		if err := tx.AddEpisode(e); err != nil {
			_ = tx.Rollback()
			series.ID = 0
			return fmt.Errorf("add series episodes: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		series.ID = 0
		return fmt.Errorf("commit series: %w", err)
	}

	s.logger.Info("series added", "series_id", series.ID, "title", series.Title, "episodes", len(episodes))
	s.publish(ctx, &SeriesAdded{
		BaseEvent: events.NewBaseEvent(EventSeriesAdded, events.EntitySeries, series.ID),
		Series:    series,
	})
	return nil
}

// DeleteSeries removes the given series and publishes one SeriesDeleted
// for those that existed.
func (s *Service) DeleteSeries(ctx context.Context, ids ...int64) error {
	var deleted []*Series
	for _, id := range ids {
		series, err := s.store.GetSeries(id)
		if err != nil {
			s.logger.Debug("skip delete of unknown series", "series_id", id)
			continue
		}
		if err := s.store.DeleteSeries(id); err != nil {
			return err
		}
		deleted = append(deleted, series)
	}
	if len(deleted) == 0 {
		return nil
	}

	s.logger.Info("series deleted", "count", len(deleted))
	s.publish(ctx, &SeriesDeleted{
		BaseEvent: events.NewBaseEvent(EventSeriesDeleted, events.EntitySeries, deleted[0].ID),
		Series:    deleted,
	})
	return nil
}

// RefreshEpisodes syncs a series' episode list with the given one. Episodes
// are keyed by season and episode number; stored episodes missing from the
// list are removed. Publishes EpisodeInfoRefreshed when anything changed.
func (s *Service) RefreshEpisodes(ctx context.Context, seriesID int64, episodes []*Episode) (*EpisodeInfoRefreshed, error) {
	existing, err := s.store.EpisodesForSeries(seriesID)
	if err != nil {
		return nil, fmt.Errorf("refresh episodes: %w", err)
	}

	type key struct{ season, episode int }
	byKey := make(map[key]*Episode, len(existing))
	for _, e := range existing {
		byKey[key{e.Season, e.Episode}] = e
	}

	ev := &EpisodeInfoRefreshed{
		BaseEvent: events.NewBaseEvent(EventEpisodeInfoRefreshed, events.EntitySeries, seriesID),
		SeriesID:  seriesID,
	}

	tx, err := s.store.Begin()
	if err != nil {
		return nil, err
	}
	for _, e := range episodes {
		e.SeriesID = seriesID
		k := key{e.Season, e.Episode}
		if cur, ok := byKey[k]; ok {
			delete(byKey, k)
			e.ID = cur.ID
			if episodeEqual(cur, e) {
				continue
			}
			if err := tx.UpdateEpisode(e); err != nil {
				_ = tx.Rollback()
				return nil, err
			}
			ev.Updated = append(ev.Updated, e)
			continue
		}
		if err := tx.AddEpisode(e); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		ev.Added = append(ev.Added, e)
	}

	var removedIDs []int64
	for _, e := range existing {
		if _, gone := byKey[key{e.Season, e.Episode}]; gone {
			ev.Removed = append(ev.Removed, e)
			removedIDs = append(removedIDs, e.ID)
		}
	}
	if err := tx.DeleteEpisodes(removedIDs...); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit episode refresh: %w", err)
	}

	if len(ev.Added)+len(ev.Updated)+len(ev.Removed) > 0 {
		s.logger.Info("episodes refreshed", "series_id", seriesID,
			"added", len(ev.Added), "updated", len(ev.Updated), "removed", len(ev.Removed))
		s.publish(ctx, ev)
	}
	return ev, nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, e); err != nil {
		s.logger.Warn("publish event failed", "type", e.EventType(), "error", err)
	}
}

func episodeEqual(a, b *Episode) bool {
	if a.Title != b.Title || a.FinaleType != b.FinaleType {
		return false
	}
	if (a.AbsoluteEpisode == nil) != (b.AbsoluteEpisode == nil) {
		return false
	}
	if a.AbsoluteEpisode != nil && *a.AbsoluteEpisode != *b.AbsoluteEpisode {
		return false
	}
	if (a.AirDate == nil) != (b.AirDate == nil) {
		return false
	}
	return a.AirDate == nil || a.AirDate.Equal(*b.AirDate)
}
