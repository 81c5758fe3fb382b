package catalog

import (
	"fmt"
	"time"

	"github.com/vmunix/trackarr/pkg/release"
)

const seriesColumns = "id, tvdb_id, title, clean_title, series_type, year, added_at"

func scanSeries(row interface{ Scan(...any) error }) (*Series, error) {
	s := &Series{}
	if err := row.Scan(&s.ID, &s.TVDBID, &s.Title, &s.CleanTitle, &s.Type, &s.Year, &s.AddedAt); err != nil {
		return nil, err
	}
	return s, nil
}

func addSeries(q querier, series *Series) error {
	if series.Type == "" {
		series.Type = SeriesTypeStandard
	}
	series.CleanTitle = release.CleanTitleWithoutYear(series.Title)
	series.AddedAt = time.Now()

	result, err := q.Exec(`
		INSERT INTO series (tvdb_id, title, clean_title, series_type, year, added_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		series.TVDBID, series.Title, series.CleanTitle, series.Type, series.Year, series.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("insert series: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	series.ID = id
	return nil
}

// AddSeries inserts a series and sets its ID, clean title and AddedAt.
func (s *Store) AddSeries(series *Series) error { return addSeries(s.db, series) }

// AddSeries inserts a series within a transaction.
func (t *Tx) AddSeries(series *Series) error { return addSeries(t.tx, series) }

// GetSeries retrieves a series by ID.
// Returns ErrNotFound if the series does not exist.
func (s *Store) GetSeries(id int64) (*Series, error) {
	series, err := scanSeries(s.db.QueryRow("SELECT "+seriesColumns+" FROM series WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("get series %d: %w", id, mapSQLiteError(err))
	}
	return series, nil
}

// FindSeriesByTVDBID retrieves a series by its TVDB id.
func (s *Store) FindSeriesByTVDBID(tvdbID int64) (*Series, error) {
	series, err := scanSeries(s.db.QueryRow("SELECT "+seriesColumns+" FROM series WHERE tvdb_id = ? ORDER BY id LIMIT 1", tvdbID))
	if err != nil {
		return nil, fmt.Errorf("find series tvdb %d: %w", tvdbID, mapSQLiteError(err))
	}
	return series, nil
}

// ListSeries returns every series ordered by ID.
func (s *Store) ListSeries() ([]*Series, error) {
	return s.querySeries("SELECT " + seriesColumns + " FROM series ORDER BY id")
}

// FindSeriesByTitle returns every series whose clean title equals the
// cleaned input. When none match exactly, series whose titles are a high
// confidence fuzzy match are returned instead. More than one result means
// the title is ambiguous.
func (s *Store) FindSeriesByTitle(title string) ([]*Series, error) {
	clean := release.CleanTitleWithoutYear(title)
	if clean == "" {
		return nil, nil
	}

	exact, err := s.querySeries("SELECT "+seriesColumns+" FROM series WHERE clean_title = ? ORDER BY id", clean)
	if err != nil {
		return nil, err
	}
	if len(exact) > 0 {
		return exact, nil
	}

	all, err := s.ListSeries()
	if err != nil {
		return nil, err
	}
	titles := make([]string, len(all))
	for i, series := range all {
		titles[i] = series.Title
	}

	var matched []*Series
	for _, m := range release.MatchTitles(title, titles, release.ConfidenceHigh) {
		matched = append(matched, all[m.Index])
	}
	return matched, nil
}

// DeleteSeries removes a series and, through the foreign key, its episodes.
// Deleting a missing series is not an error.
func (s *Store) DeleteSeries(id int64) error {
	if _, err := s.db.Exec("DELETE FROM series WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete series %d: %w", id, mapSQLiteError(err))
	}
	return nil
}

func (s *Store) querySeries(query string, args ...any) ([]*Series, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Series
	for rows.Next() {
		series, err := scanSeries(rows)
		if err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		results = append(results, series)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate series: %w", err)
	}
	return results, nil
}
