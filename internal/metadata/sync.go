package metadata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vmunix/trackarr/internal/catalog"
	"github.com/vmunix/trackarr/pkg/tvdb"
)

// Wanted is a series the catalog should hold.
type Wanted struct {
	TVDBID int
	Type   catalog.SeriesType
}

// Syncer adds series to the catalog and refreshes their episodes from a
// Source. Catalog changes are announced by the catalog service.
type Syncer struct {
	source  Source
	catalog *catalog.Service
	log     *slog.Logger
}

// NewSyncer creates a syncer writing through svc.
func NewSyncer(source Source, svc *catalog.Service, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		source:  source,
		catalog: svc,
		log:     logger.With("component", "metadata"),
	}
}

// AddSeries fetches a series and its episodes and stores them. A series
// already in the catalog is returned as is.
func (s *Syncer) AddSeries(ctx context.Context, w Wanted) (*catalog.Series, error) {
	existing, err := s.catalog.Store().FindSeriesByTVDBID(int64(w.TVDBID))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, catalog.ErrNotFound) {
		return nil, err
	}

	info, err := s.source.GetSeries(ctx, w.TVDBID)
	if err != nil {
		return nil, fmt.Errorf("tvdb series %d: %w", w.TVDBID, err)
	}
	eps, err := s.source.GetEpisodes(ctx, w.TVDBID)
	if err != nil {
		return nil, fmt.Errorf("tvdb episodes %d: %w", w.TVDBID, err)
	}

	series := &catalog.Series{
		TVDBID: int64(info.ID),
		Title:  info.Name,
		Type:   w.Type,
		Year:   info.Year,
	}
	if err := s.catalog.AddSeries(ctx, series, toEpisodes(eps)); err != nil {
		return nil, err
	}
	return series, nil
}

// Refresh syncs the episodes of a catalog series with TVDB.
func (s *Syncer) Refresh(ctx context.Context, series *catalog.Series) (*catalog.EpisodeInfoRefreshed, error) {
	if series.TVDBID <= 0 {
		return nil, fmt.Errorf("series %d has no tvdb id", series.ID)
	}
	eps, err := s.source.GetEpisodes(ctx, int(series.TVDBID))
	if err != nil {
		return nil, fmt.Errorf("tvdb episodes %d: %w", series.TVDBID, err)
	}
	return s.catalog.RefreshEpisodes(ctx, series.ID, toEpisodes(eps))
}

// Sync adds every wanted series missing from the catalog and refreshes
// every series that has a TVDB id. One failing series does not stop the
// others; their errors are joined.
func (s *Syncer) Sync(ctx context.Context, wanted []Wanted) error {
	var errs []error
	added := make(map[int64]bool)
	for _, w := range wanted {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := s.catalog.Store().FindSeriesByTVDBID(int64(w.TVDBID)); err == nil {
			continue
		}
		series, err := s.AddSeries(ctx, w)
		if err != nil {
			s.log.Warn("failed to add series", "tvdb_id", w.TVDBID, "error", err)
			errs = append(errs, err)
			continue
		}
		added[series.ID] = true
	}

	all, err := s.catalog.Store().ListSeries()
	if err != nil {
		return errors.Join(append(errs, err)...)
	}
	for _, series := range all {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if added[series.ID] || series.TVDBID <= 0 {
			continue
		}
		if _, err := s.Refresh(ctx, series); err != nil {
			s.log.Warn("failed to refresh series", "series_id", series.ID, "title", series.Title, "error", err)
			errs = append(errs, err)
		}
	}

	s.log.Debug("metadata sync finished", "wanted", len(wanted), "added", len(added), "series", len(all))
	return errors.Join(errs...)
}

// toEpisodes converts TVDB episodes for the catalog. Only the first of
// several episodes sharing a season and number is kept.
func toEpisodes(eps []tvdb.Episode) []*catalog.Episode {
	type key struct{ season, episode int }
	seen := make(map[key]bool, len(eps))
	out := make([]*catalog.Episode, 0, len(eps))
	for _, e := range eps {
		k := key{e.Season, e.Episode}
		if seen[k] {
			continue
		}
		seen[k] = true

		ep := &catalog.Episode{
			Season:     e.Season,
			Episode:    e.Episode,
			Title:      e.Name,
			FinaleType: finaleType(e.FinaleType),
		}
		if e.Absolute > 0 {
			abs := e.Absolute
			ep.AbsoluteEpisode = &abs
		}
		if !e.AirDate.IsZero() {
			aired := e.AirDate
			ep.AirDate = &aired
		}
		out = append(out, ep)
	}
	return out
}

func finaleType(t string) catalog.FinaleType {
	switch t {
	case tvdb.FinaleMidseason:
		return catalog.FinaleMidseason
	case tvdb.FinaleSeason:
		return catalog.FinaleSeason
	case tvdb.FinaleSeries:
		return catalog.FinaleSeries
	default:
		return catalog.FinaleNone
	}
}
