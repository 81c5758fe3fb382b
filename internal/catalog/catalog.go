// Package catalog stores series and their episodes, including the finale
// markers used to split a season into parts.
package catalog

import (
	"time"
)

// SeriesType selects the numbering scheme a series is released under.
type SeriesType string

const (
	SeriesTypeStandard SeriesType = "standard"
	SeriesTypeAnime    SeriesType = "anime"
	SeriesTypeDaily    SeriesType = "daily"
)

// FinaleType marks an episode that closes an arc.
type FinaleType string

const (
	FinaleNone      FinaleType = ""
	FinaleMidseason FinaleType = "midseason"
	FinaleSeason    FinaleType = "season"
	FinaleSeries    FinaleType = "series"
)

// Series is a catalog series.
type Series struct {
	ID         int64
	TVDBID     int64
	Title      string
	CleanTitle string
	Type       SeriesType
	Year       int
	AddedAt    time.Time
}

// Episode is a single catalog episode.
type Episode struct {
	ID              int64
	SeriesID        int64
	Season          int
	Episode         int
	AbsoluteEpisode *int
	Title           string
	FinaleType      FinaleType
	AirDate         *time.Time
}

// IsFinale reports whether the episode carries any finale marker.
func (e *Episode) IsFinale() bool {
	return e.FinaleType != FinaleNone
}
