// Package tvdb provides a client for the TVDB API v4.
package tvdb

import "time"

// Finale types TVDB reports on episodes.
const (
	FinaleMidseason = "midseason"
	FinaleSeason    = "season"
	FinaleSeries    = "series"
)

// Series represents a TV series from TVDB.
type Series struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Year   int    `json:"year"`   // Extracted from firstAired
	Status string `json:"status"` // "Continuing" or "Ended"
}

// Episode represents a single episode from TVDB.
type Episode struct {
	ID         int       `json:"id"`
	Season     int       `json:"seasonNumber"`
	Episode    int       `json:"number"`
	Absolute   int       `json:"absoluteNumber,omitempty"`
	Name       string    `json:"name"`
	AirDate    time.Time `json:"aired"`
	FinaleType string    `json:"finaleType,omitempty"` // One of the Finale constants, or empty
}

// loginResponse is the TVDB login API response.
type loginResponse struct {
	Status string `json:"status"`
	Data   struct {
		Token string `json:"token"`
	} `json:"data"`
}

// seriesResponse is the TVDB get series API response.
type seriesResponse struct {
	Status string `json:"status"`
	Data   struct {
		ID     int    `json:"id"`
		Name   string `json:"name"`
		Status struct {
			Name string `json:"name"`
		} `json:"status"`
		FirstAired string `json:"firstAired"` // YYYY-MM-DD
	} `json:"data"`
}

type episodeRecord struct {
	ID             int    `json:"id"`
	SeasonNumber   int    `json:"seasonNumber"`
	Number         int    `json:"number"`
	AbsoluteNumber int    `json:"absoluteNumber"`
	Name           string `json:"name"`
	Aired          string `json:"aired"` // YYYY-MM-DD
	FinaleType     string `json:"finaleType"`
}

// episodesResponse is the TVDB get episodes API response.
type episodesResponse struct {
	Status string `json:"status"`
	Data   struct {
		Episodes []episodeRecord `json:"episodes"`
	} `json:"data"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}
