// Package history records grab and import events per download so the
// tracker can recover what was originally grabbed for a download id.
package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// EventType is the kind of a history record.
type EventType string

// Episode history event types.
const (
	EventGrabbed                EventType = "grabbed"
	EventDownloadFolderImported EventType = "downloadFolderImported"
	EventDownloadFailed         EventType = "downloadFailed"
	EventDownloadIgnored        EventType = "downloadIgnored"
	EventEpisodeFileDeleted     EventType = "episodeFileDeleted"
)

// Keys of Record.Data written at grab time.
const (
	DataIndexer      = "indexer"
	DataIndexerFlags = "indexerFlags"
	DataSize         = "size"
	DataReleaseGroup = "releaseGroup"
)

// ErrNotFound indicates no record exists for the download id.
var ErrNotFound = errors.New("not found")

// Record is one episode history row.
type Record struct {
	ID          int64
	DownloadID  string
	SeriesID    int64
	EpisodeID   int64
	EventType   EventType
	SourceTitle string
	Data        map[string]string
	Date        time.Time
}

// Store persists episode history records.
type Store struct {
	db *sql.DB
}

// NewStore creates a history store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Add inserts a record. A zero Date is stamped with the current time.
func (s *Store) Add(r *Record) error {
	if r.Date.IsZero() {
		r.Date = time.Now()
	}
	data := r.Data
	if data == nil {
		data = map[string]string{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal history data: %w", err)
	}

	result, err := s.db.Exec(`
		INSERT INTO history (download_id, series_id, episode_id, event_type, source_title, data, date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.DownloadID, r.SeriesID, r.EpisodeID, r.EventType, r.SourceTitle, string(payload), r.Date,
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	r.ID = id
	return nil
}

// FindByDownloadID returns every record for a download, newest first.
func (s *Store) FindByDownloadID(downloadID string) ([]*Record, error) {
	rows, err := s.db.Query(`
		SELECT id, download_id, series_id, episode_id, event_type, source_title, data, date
		FROM history
		WHERE download_id = ?
		ORDER BY date DESC, id DESC`,
		downloadID,
	)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Record
	for rows.Next() {
		r := &Record{}
		var data string
		if err := rows.Scan(&r.ID, &r.DownloadID, &r.SeriesID, &r.EpisodeID, &r.EventType, &r.SourceTitle, &data, &r.Date); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &r.Data); err != nil {
			return nil, fmt.Errorf("decode history data %d: %w", r.ID, err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return results, nil
}

// Grabbed returns the first grabbed record of a newest-first list.
func Grabbed(records []*Record) *Record {
	for _, r := range records {
		if r.EventType == EventGrabbed {
			return r
		}
	}
	return nil
}
