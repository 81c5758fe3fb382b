package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DownloadEventType is the kind of a download history record.
type DownloadEventType string

// Download history event types.
const (
	DownloadGrabbed      DownloadEventType = "grabbed"
	DownloadImported     DownloadEventType = "downloadImported"
	DownloadFailed       DownloadEventType = "downloadFailed"
	DownloadIgnored      DownloadEventType = "downloadIgnored"
	DownloadFileImported DownloadEventType = "fileImported"
)

// DownloadRecord is one outcome recorded for a download.
type DownloadRecord struct {
	ID          int64
	DownloadID  string
	SeriesID    int64
	IndexerID   int64
	EventType   DownloadEventType
	SourceTitle string
	Date        time.Time
}

// DownloadStore persists per-download outcome records.
type DownloadStore struct {
	db *sql.DB
}

// NewDownloadStore creates a download history store.
func NewDownloadStore(db *sql.DB) *DownloadStore {
	return &DownloadStore{db: db}
}

// Add inserts a record. A zero Date is stamped with the current time.
func (s *DownloadStore) Add(r *DownloadRecord) error {
	if r.Date.IsZero() {
		r.Date = time.Now()
	}
	result, err := s.db.Exec(`
		INSERT INTO download_history (download_id, series_id, indexer_id, event_type, source_title, date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.DownloadID, r.SeriesID, r.IndexerID, r.EventType, r.SourceTitle, r.Date,
	)
	if err != nil {
		return fmt.Errorf("insert download history: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	r.ID = id
	return nil
}

// LatestByDownloadID returns the newest record for a download.
// Returns ErrNotFound when the download has no history.
func (s *DownloadStore) LatestByDownloadID(downloadID string) (*DownloadRecord, error) {
	r := &DownloadRecord{}
	err := s.db.QueryRow(`
		SELECT id, download_id, series_id, indexer_id, event_type, source_title, date
		FROM download_history
		WHERE download_id = ?
		ORDER BY date DESC, id DESC
		LIMIT 1`,
		downloadID,
	).Scan(&r.ID, &r.DownloadID, &r.SeriesID, &r.IndexerID, &r.EventType, &r.SourceTitle, &r.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("download %s: %w", downloadID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest download history: %w", err)
	}
	return r, nil
}
