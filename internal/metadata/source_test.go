package metadata

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/trackarr/pkg/tvdb"
)

// fakeSource serves series and episodes from maps and counts calls.
type fakeSource struct {
	mu           sync.Mutex
	series       map[int]*tvdb.Series
	episodes     map[int][]tvdb.Episode
	seriesCalls  int
	episodeCalls int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		series:   make(map[int]*tvdb.Series),
		episodes: make(map[int][]tvdb.Episode),
	}
}

func (f *fakeSource) add(s tvdb.Series, eps ...tvdb.Episode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.series[s.ID] = &s
	f.episodes[s.ID] = eps
}

func (f *fakeSource) GetSeries(_ context.Context, id int) (*tvdb.Series, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seriesCalls++
	s, ok := f.series[id]
	if !ok {
		return nil, tvdb.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSource) GetEpisodes(_ context.Context, id int) ([]tvdb.Episode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.episodeCalls++
	eps, ok := f.episodes[id]
	if !ok {
		return nil, tvdb.ErrNotFound
	}
	return append([]tvdb.Episode(nil), eps...), nil
}

func aired(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestCachedSource_GetSeries(t *testing.T) {
	src := newFakeSource()
	src.add(tvdb.Series{ID: 81189, Name: "Breaking Bad", Year: 2008, Status: "Ended"})
	cache, _ := newTestCache(t)
	cs := NewCachedSource(src, cache, time.Hour, nil)
	ctx := context.Background()

	first, err := cs.GetSeries(ctx, 81189)
	require.NoError(t, err)
	second, err := cs.GetSeries(ctx, 81189)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "Breaking Bad", second.Name)
	assert.Equal(t, 1, src.seriesCalls, "second call should be served from cache")
}

func TestCachedSource_GetEpisodes(t *testing.T) {
	src := newFakeSource()
	src.add(tvdb.Series{ID: 200, Name: "Split Show"},
		tvdb.Episode{ID: 1, Season: 1, Episode: 1, Absolute: 1, Name: "Start", AirDate: aired("2024-01-05")},
		tvdb.Episode{ID: 2, Season: 1, Episode: 2, Absolute: 2, Name: "Break", FinaleType: tvdb.FinaleMidseason})
	cache, _ := newTestCache(t)
	cs := NewCachedSource(src, cache, time.Hour, nil)
	ctx := context.Background()

	_, err := cs.GetEpisodes(ctx, 200)
	require.NoError(t, err)
	eps, err := cs.GetEpisodes(ctx, 200)
	require.NoError(t, err)

	require.Len(t, eps, 2)
	assert.Equal(t, 1, src.episodeCalls)
	assert.True(t, aired("2024-01-05").Equal(eps[0].AirDate))
	assert.Equal(t, tvdb.FinaleMidseason, eps[1].FinaleType)
	assert.Equal(t, 2, eps[1].Absolute)
}

func TestCachedSource_ErrorsAreNotCached(t *testing.T) {
	src := newFakeSource()
	cache, _ := newTestCache(t)
	cs := NewCachedSource(src, cache, time.Hour, nil)
	ctx := context.Background()

	_, err := cs.GetSeries(ctx, 9999)
	assert.ErrorIs(t, err, tvdb.ErrNotFound)
	_, err = cs.GetSeries(ctx, 9999)
	assert.ErrorIs(t, err, tvdb.ErrNotFound)

	assert.Equal(t, 2, src.seriesCalls)
}

func TestCachedSource_Expiry(t *testing.T) {
	src := newFakeSource()
	src.add(tvdb.Series{ID: 1, Name: "Show"})
	cache, clock := newTestCache(t)
	cs := NewCachedSource(src, cache, time.Hour, nil)
	ctx := context.Background()

	_, err := cs.GetSeries(ctx, 1)
	require.NoError(t, err)
	clock.Advance(2 * time.Hour)
	_, err = cs.GetSeries(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, src.seriesCalls)
}

func TestCachedSource_Invalidate(t *testing.T) {
	src := newFakeSource()
	src.add(tvdb.Series{ID: 1, Name: "Show"}, tvdb.Episode{Season: 1, Episode: 1})
	cache, _ := newTestCache(t)
	cs := NewCachedSource(src, cache, time.Hour, nil)
	ctx := context.Background()

	_, err := cs.GetSeries(ctx, 1)
	require.NoError(t, err)
	_, err = cs.GetEpisodes(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, cs.Invalidate(ctx, 1))

	src.add(tvdb.Series{ID: 1, Name: "Show (Renamed)"}, tvdb.Episode{Season: 1, Episode: 1}, tvdb.Episode{Season: 1, Episode: 2})
	series, err := cs.GetSeries(ctx, 1)
	require.NoError(t, err)
	eps, err := cs.GetEpisodes(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, "Show (Renamed)", series.Name)
	assert.Len(t, eps, 2)
	assert.Equal(t, 2, src.seriesCalls)
	assert.Equal(t, 2, src.episodeCalls)
}

func TestCachedSource_CorruptedEntry(t *testing.T) {
	src := newFakeSource()
	src.add(tvdb.Series{ID: 7, Name: "Show"})
	cache, _ := newTestCache(t)
	cs := NewCachedSource(src, cache, time.Hour, nil)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "tvdb:series:7", []byte("{not json"), time.Hour))

	series, err := cs.GetSeries(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Show", series.Name)
	assert.Equal(t, 1, src.seriesCalls)

	// The bad entry was replaced
	_, err = cs.GetSeries(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, src.seriesCalls)
}

func TestNewCachedSource_DefaultTTL(t *testing.T) {
	cache, _ := newTestCache(t)
	cs := NewCachedSource(newFakeSource(), cache, 0, nil)
	assert.Equal(t, DefaultTTL, cs.ttl)
	assert.NotNil(t, cs.log)
}
