package catalog

import (
	"fmt"
)

const episodeColumns = "id, series_id, season, episode, absolute_episode, title, finale_type, air_date"

func scanEpisode(row interface{ Scan(...any) error }) (*Episode, error) {
	e := &Episode{}
	if err := row.Scan(&e.ID, &e.SeriesID, &e.Season, &e.Episode, &e.AbsoluteEpisode, &e.Title, &e.FinaleType, &e.AirDate); err != nil {
		return nil, err
	}
	return e, nil
}

func addEpisode(q querier, e *Episode) error {
	result, err := q.Exec(`
		INSERT INTO episodes (series_id, season, episode, absolute_episode, title, finale_type, air_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.SeriesID, e.Season, e.Episode, e.AbsoluteEpisode, e.Title, e.FinaleType, e.AirDate,
	)
	if err != nil {
		return fmt.Errorf("insert episode: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	e.ID = id
	return nil
}

// AddEpisode inserts a new episode. Sets ID on the struct.
func (s *Store) AddEpisode(e *Episode) error { return addEpisode(s.db, e) }

// AddEpisode inserts a new episode within a transaction.
func (t *Tx) AddEpisode(e *Episode) error { return addEpisode(t.tx, e) }

func updateEpisode(q querier, e *Episode) error {
	result, err := q.Exec(`
		UPDATE episodes SET season = ?, episode = ?, absolute_episode = ?, title = ?, finale_type = ?, air_date = ?
		WHERE id = ?`,
		e.Season, e.Episode, e.AbsoluteEpisode, e.Title, e.FinaleType, e.AirDate, e.ID,
	)
	if err != nil {
		return fmt.Errorf("update episode %d: %w", e.ID, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update episode %d: %w", e.ID, ErrNotFound)
	}
	return nil
}

// UpdateEpisode updates an existing episode.
func (s *Store) UpdateEpisode(e *Episode) error { return updateEpisode(s.db, e) }

// UpdateEpisode updates an existing episode within a transaction.
func (t *Tx) UpdateEpisode(e *Episode) error { return updateEpisode(t.tx, e) }

func deleteEpisodes(q querier, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err := q.Exec("DELETE FROM episodes WHERE id IN ("+placeholders(len(ids))+")", args...); err != nil {
		return fmt.Errorf("delete episodes: %w", mapSQLiteError(err))
	}
	return nil
}

// DeleteEpisodes removes episodes by ID. Missing IDs are ignored.
func (s *Store) DeleteEpisodes(ids ...int64) error { return deleteEpisodes(s.db, ids) }

// DeleteEpisodes removes episodes by ID within a transaction.
func (t *Tx) DeleteEpisodes(ids ...int64) error { return deleteEpisodes(t.tx, ids) }

// GetEpisode retrieves an episode by ID.
// Returns ErrNotFound if the episode does not exist.
func (s *Store) GetEpisode(id int64) (*Episode, error) {
	e, err := scanEpisode(s.db.QueryRow("SELECT "+episodeColumns+" FROM episodes WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("get episode %d: %w", id, mapSQLiteError(err))
	}
	return e, nil
}

// GetEpisodes returns the episodes with the given IDs ordered by season
// and episode. Missing IDs are skipped.
func (s *Store) GetEpisodes(ids ...int64) ([]*Episode, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return s.queryEpisodes("SELECT "+episodeColumns+" FROM episodes WHERE id IN ("+placeholders(len(ids))+") ORDER BY season, episode", args...)
}

// EpisodesInSeason returns every episode of one season ordered by episode number.
func (s *Store) EpisodesInSeason(seriesID int64, season int) ([]*Episode, error) {
	return s.queryEpisodes("SELECT "+episodeColumns+" FROM episodes WHERE series_id = ? AND season = ? ORDER BY episode", seriesID, season)
}

// EpisodesForSeries returns every episode of a series.
func (s *Store) EpisodesForSeries(seriesID int64) ([]*Episode, error) {
	return s.queryEpisodes("SELECT "+episodeColumns+" FROM episodes WHERE series_id = ? ORDER BY season, episode", seriesID)
}

// FindEpisode looks up one episode by season and episode number.
func (s *Store) FindEpisode(seriesID int64, season, episode int) (*Episode, error) {
	e, err := scanEpisode(s.db.QueryRow(
		"SELECT "+episodeColumns+" FROM episodes WHERE series_id = ? AND season = ? AND episode = ?",
		seriesID, season, episode,
	))
	if err != nil {
		return nil, fmt.Errorf("find episode s%02de%02d: %w", season, episode, mapSQLiteError(err))
	}
	return e, nil
}

// FindEpisodesByAbsolute returns the episodes carrying the given absolute
// numbers, in the order the numbers were given. Unknown numbers are skipped.
func (s *Store) FindEpisodesByAbsolute(seriesID int64, absolute ...int) ([]*Episode, error) {
	if len(absolute) == 0 {
		return nil, nil
	}
	args := []any{seriesID}
	for _, n := range absolute {
		args = append(args, n)
	}
	found, err := s.queryEpisodes(
		"SELECT "+episodeColumns+" FROM episodes WHERE series_id = ? AND absolute_episode IN ("+placeholders(len(absolute))+")",
		args...,
	)
	if err != nil {
		return nil, err
	}

	byAbs := make(map[int]*Episode, len(found))
	for _, e := range found {
		byAbs[*e.AbsoluteEpisode] = e
	}
	ordered := make([]*Episode, 0, len(found))
	for _, n := range absolute {
		if e, ok := byAbs[n]; ok {
			ordered = append(ordered, e)
			delete(byAbs, n)
		}
	}
	return ordered, nil
}

func (s *Store) queryEpisodes(query string, args ...any) ([]*Episode, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Episode
	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate episodes: %w", err)
	}
	return results, nil
}
