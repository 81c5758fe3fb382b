package matching

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/vmunix/trackarr/internal/catalog"
	"github.com/vmunix/trackarr/pkg/release"
)

// Catalog is the read side of the series catalog the mapper needs.
type Catalog interface {
	GetSeries(id int64) (*catalog.Series, error)
	FindSeriesByTitle(title string) ([]*catalog.Series, error)
	GetEpisodes(ids ...int64) ([]*catalog.Episode, error)
	EpisodesInSeason(seriesID int64, season int) ([]*catalog.Episode, error)
	EpisodesForSeries(seriesID int64) ([]*catalog.Episode, error)
	FindEpisode(seriesID int64, season, episode int) (*catalog.Episode, error)
	FindEpisodesByAbsolute(seriesID int64, absolute ...int) ([]*catalog.Episode, error)
}

// Mapper resolves parsed titles to catalog series and episodes.
type Mapper struct {
	catalog Catalog
	logger  *slog.Logger
}

// NewMapper creates a mapper over the given catalog.
func NewMapper(c Catalog, logger *slog.Logger) *Mapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mapper{catalog: c, logger: logger.With("component", "mapper")}
}

// Map resolves info to a series and its episodes. A positive seriesID pins
// the series; episodeIDs, when given, pin the episodes instead of the
// numbers in info. Catalog failures are returned as errors; a title that
// names several series yields an Ambiguous outcome.
func (m *Mapper) Map(info *release.ParsedEpisodeInfo, seriesID int64, episodeIDs []int64) (Outcome, error) {
	out := Outcome{ParsedInfo: info}
	if info == nil {
		return out, nil
	}

	series, candidates, err := m.findSeries(info, seriesID)
	if err != nil {
		return out, err
	}
	if len(candidates) > 1 {
		out.Kind = Ambiguous
		out.Candidates = candidates
		return out, nil
	}
	if series == nil {
		m.logger.Debug("no series matched", "title", info.SeriesTitle)
		return out, nil
	}
	out.Series = series

	var episodes []*catalog.Episode
	if len(episodeIDs) > 0 {
		episodes, err = m.episodesByID(series.ID, episodeIDs)
	} else {
		episodes, err = m.episodesForInfo(series, info)
	}
	if err != nil {
		return out, err
	}
	out.Episodes = episodes
	if len(episodes) > 0 {
		out.Kind = Matched
	}
	return out, nil
}

func (m *Mapper) findSeries(info *release.ParsedEpisodeInfo, seriesID int64) (*catalog.Series, []*catalog.Series, error) {
	if seriesID > 0 {
		series, err := m.catalog.GetSeries(seriesID)
		switch {
		case err == nil:
			return series, nil, nil
		case !errors.Is(err, catalog.ErrNotFound):
			return nil, nil, fmt.Errorf("get series %d: %w", seriesID, err)
		}
		m.logger.Debug("series from history no longer exists", "series_id", seriesID)
	}

	titles := info.SeriesTitleInfo.AllTitles
	if len(titles) == 0 {
		titles = []string{info.SeriesTitle}
	}
	for _, title := range titles {
		found, err := m.catalog.FindSeriesByTitle(title)
		if err != nil {
			return nil, nil, fmt.Errorf("find series %q: %w", title, err)
		}
		found = preferYear(found, info.SeriesTitleInfo.Year)
		switch len(found) {
		case 0:
			continue
		case 1:
			return found[0], nil, nil
		default:
			return nil, found, nil
		}
	}
	return nil, nil, nil
}

// preferYear narrows candidates to those from the parsed year, if any are.
func preferYear(found []*catalog.Series, year int) []*catalog.Series {
	if year == 0 || len(found) < 2 {
		return found
	}
	var sameYear []*catalog.Series
	for _, s := range found {
		if s.Year == year {
			sameYear = append(sameYear, s)
		}
	}
	if len(sameYear) == 0 {
		return found
	}
	return sameYear
}

func (m *Mapper) episodesByID(seriesID int64, ids []int64) ([]*catalog.Episode, error) {
	eps, err := m.catalog.GetEpisodes(ids...)
	if err != nil {
		return nil, fmt.Errorf("get episodes: %w", err)
	}
	return slices.DeleteFunc(eps, func(e *catalog.Episode) bool { return e.SeriesID != seriesID }), nil
}

func (m *Mapper) episodesForInfo(series *catalog.Series, info *release.ParsedEpisodeInfo) ([]*catalog.Episode, error) {
	switch {
	case info.FullSeason:
		eps, err := m.catalog.EpisodesInSeason(series.ID, info.SeasonNumber)
		if err != nil {
			return nil, fmt.Errorf("season episodes: %w", err)
		}
		return eps, nil

	case len(info.EpisodeNumbers) > 0:
		return m.findEach(series.ID, info.SeasonNumber, info.EpisodeNumbers)

	case len(info.AbsoluteEpisodeNumbers) > 0:
		// Absolute numbers of a season-scoped release count from the
		// start of that season.
		if info.SeasonNumber > 0 {
			return m.findEach(series.ID, info.SeasonNumber, info.AbsoluteEpisodeNumbers)
		}
		eps, err := m.catalog.FindEpisodesByAbsolute(series.ID, info.AbsoluteEpisodeNumbers...)
		if err != nil {
			return nil, fmt.Errorf("absolute episodes: %w", err)
		}
		return eps, nil
	}
	return nil, nil
}

func (m *Mapper) findEach(seriesID int64, season int, numbers []int) ([]*catalog.Episode, error) {
	var eps []*catalog.Episode
	for _, n := range numbers {
		e, err := m.catalog.FindEpisode(seriesID, season, n)
		if errors.Is(err, catalog.ErrNotFound) {
			m.logger.Debug("episode not in catalog", "series_id", seriesID, "season", season, "episode", n)
			continue
		}
		if err != nil {
			return nil, err
		}
		eps = append(eps, e)
	}
	return eps, nil
}

// ParseSpecialEpisodeTitle interprets a title that carries no usable
// numbering for a known series. An episode whose title appears in the
// release title wins, specials first; otherwise the given episode ids
// seed the numbering when they share one season. Returns nil when
// neither applies.
func (m *Mapper) ParseSpecialEpisodeTitle(info *release.ParsedEpisodeInfo, title string, seriesID int64, episodeIDs []int64) *release.ParsedEpisodeInfo {
	series, err := m.catalog.GetSeries(seriesID)
	if err != nil {
		m.logger.Debug("special parse without series", "series_id", seriesID, "error", err)
		return nil
	}

	out := info.Clone()
	if out == nil {
		out = &release.ParsedEpisodeInfo{ReleaseTitle: title}
	}
	out.SeriesTitle = series.Title
	out.SeriesTitleInfo = release.SeriesTitleInfo{
		Title:            series.Title,
		TitleWithoutYear: series.Title,
		Year:             series.Year,
		AllTitles:        []string{series.Title},
	}
	out.FullSeason = false
	out.AbsoluteEpisodeNumbers = nil

	if e := m.episodeNamedIn(series.ID, title); e != nil {
		out.SeasonNumber = e.Season
		out.EpisodeNumbers = []int{e.Episode}
		out.Special = e.Season == 0
		return out
	}

	if len(episodeIDs) == 0 {
		return nil
	}
	eps, err := m.episodesByID(series.ID, episodeIDs)
	if err != nil || len(eps) == 0 {
		return nil
	}
	out.SeasonNumber = eps[0].Season
	out.EpisodeNumbers = nil
	for _, e := range eps {
		if e.Season != out.SeasonNumber {
			return nil
		}
		out.EpisodeNumbers = append(out.EpisodeNumbers, e.Episode)
	}
	out.Special = out.SeasonNumber == 0
	return out
}

func (m *Mapper) episodeNamedIn(seriesID int64, title string) *catalog.Episode {
	eps, err := m.catalog.EpisodesForSeries(seriesID)
	if err != nil {
		return nil
	}
	cleaned := " " + release.CleanTitle(title) + " "

	// Specials first, then regular episodes; longest title wins so that
	// "Christmas Special Part 2" beats "Christmas Special".
	var best *catalog.Episode
	bestLen := 0
	for _, pass := range []bool{true, false} {
		for _, e := range eps {
			if (e.Season == 0) != pass {
				continue
			}
			et := release.CleanTitle(e.Title)
			if et == "" || !strings.Contains(cleaned, " "+et+" ") {
				continue
			}
			if len(et) > bestLen {
				best, bestLen = e, len(et)
			}
		}
		if best != nil {
			return best
		}
	}
	return nil
}
