package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/vmunix/trackarr/pkg/tvdb"
)

// DefaultTTL is how long a TVDB response is served from the cache.
const DefaultTTL = 12 * time.Hour

const (
	keyPrefixSeries   = "tvdb:series:"
	keyPrefixEpisodes = "tvdb:episodes:"
)

// Source supplies series metadata by TVDB id. *tvdb.Client is a Source.
type Source interface {
	GetSeries(ctx context.Context, tvdbID int) (*tvdb.Series, error)
	GetEpisodes(ctx context.Context, tvdbID int) ([]tvdb.Episode, error)
}

var _ Source = (*tvdb.Client)(nil)

// CachedSource serves a Source through a Cache.
type CachedSource struct {
	src   Source
	cache *Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewCachedSource wraps src. A ttl of zero uses DefaultTTL.
func NewCachedSource(src Source, cache *Cache, ttl time.Duration, logger *slog.Logger) *CachedSource {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedSource{
		src:   src,
		cache: cache,
		ttl:   ttl,
		log:   logger.With("component", "metadata"),
	}
}

// GetSeries fetches series metadata by TVDB id.
func (s *CachedSource) GetSeries(ctx context.Context, tvdbID int) (*tvdb.Series, error) {
	return cached(ctx, s, fmt.Sprintf("%s%d", keyPrefixSeries, tvdbID), func() (*tvdb.Series, error) {
		return s.src.GetSeries(ctx, tvdbID)
	})
}

// GetEpisodes fetches every episode of a series by TVDB id.
func (s *CachedSource) GetEpisodes(ctx context.Context, tvdbID int) ([]tvdb.Episode, error) {
	return cached(ctx, s, fmt.Sprintf("%s%d", keyPrefixEpisodes, tvdbID), func() ([]tvdb.Episode, error) {
		return s.src.GetEpisodes(ctx, tvdbID)
	})
}

// Invalidate drops the cached series and episodes for tvdbID.
func (s *CachedSource) Invalidate(ctx context.Context, tvdbID int) error {
	return s.cache.Delete(ctx,
		fmt.Sprintf("%s%d", keyPrefixSeries, tvdbID),
		fmt.Sprintf("%s%d", keyPrefixEpisodes, tvdbID))
}

// cached returns the value under key, calling fetch on a miss. Failing to
// write the cache is logged, not returned.
func cached[T any](ctx context.Context, s *CachedSource, key string, fetch func() (T, error)) (T, error) {
	if data, ok := s.cache.Get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			s.log.Debug("cache hit", "key", key)
			return v, nil
		}
		s.log.Warn("discarding unreadable cache entry", "key", key)
	}

	v, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("failed to encode for cache", "key", key, "error", err)
		return v, nil
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.log.Warn("failed to cache response", "key", key, "error", err)
	}
	return v, nil
}
