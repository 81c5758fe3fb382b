// Package release parses release titles into structured episode information.
package release

import (
	"fmt"
	"strings"
)

// Resolution represents the video resolution of a release.
type Resolution int

const (
	ResolutionUnknown Resolution = iota
	Resolution480p
	Resolution720p
	Resolution1080p
	Resolution2160p
)

// unknownStr is the string representation for unknown values.
const unknownStr = "unknown"

func (r Resolution) String() string {
	switch r {
	case Resolution480p:
		return "480p"
	case Resolution720p:
		return "720p"
	case Resolution1080p:
		return "1080p"
	case Resolution2160p:
		return "2160p"
	default:
		return unknownStr
	}
}

// Source represents the media source type of a release.
type Source int

const (
	SourceUnknown Source = iota
	SourceBluRay
	SourceWEBDL
	SourceWEBRip
	SourceHDTV
	SourceDVD
)

func (s Source) String() string {
	switch s {
	case SourceBluRay:
		return "bluray"
	case SourceWEBDL:
		return "webdl"
	case SourceWEBRip:
		return "webrip"
	case SourceHDTV:
		return "hdtv"
	case SourceDVD:
		return "dvd"
	default:
		return unknownStr
	}
}

// SeriesTitleInfo holds the series title variants found in a release title.
type SeriesTitleInfo struct {
	Title            string
	TitleWithoutYear string
	Year             int
	AllTitles        []string // Alternate titles, e.g. "Title A / Title B"
}

// ParsedEpisodeInfo is the structured form of a TV release title.
type ParsedEpisodeInfo struct {
	ReleaseTitle    string
	SeriesTitle     string
	SeriesTitleInfo SeriesTitleInfo

	SeasonNumber           int
	EpisodeNumbers         []int
	AbsoluteEpisodeNumbers []int

	FullSeason      bool
	IsPartialSeason bool // "Season 1 Part 2"
	SeasonPart      int
	Special         bool

	ReleaseGroup string
	Resolution   Resolution
	Source       Source
	Version      int // Revision, e.g. v2
}

// IsAbsoluteNumbering reports whether the release is numbered by absolute episode.
func (p *ParsedEpisodeInfo) IsAbsoluteNumbering() bool {
	return p != nil && len(p.AbsoluteEpisodeNumbers) > 0
}

// HasSeasonEpisode reports whether the release carries an explicit season and episode.
func (p *ParsedEpisodeInfo) HasSeasonEpisode() bool {
	return p != nil && p.SeasonNumber > 0 && len(p.EpisodeNumbers) > 0
}

// IsPossibleSpecialEpisode reports whether the title might name a special
// that can only be resolved against the series' episode titles.
func (p *ParsedEpisodeInfo) IsPossibleSpecialEpisode() bool {
	if p == nil || p.FullSeason {
		return false
	}
	if p.Special {
		return true
	}
	return len(p.AbsoluteEpisodeNumbers) == 0 && len(p.EpisodeNumbers) == 0
}

// Clone returns a deep copy so callers can rewrite numbering without
// touching a shared value.
func (p *ParsedEpisodeInfo) Clone() *ParsedEpisodeInfo {
	if p == nil {
		return nil
	}
	c := *p
	c.EpisodeNumbers = append([]int(nil), p.EpisodeNumbers...)
	c.AbsoluteEpisodeNumbers = append([]int(nil), p.AbsoluteEpisodeNumbers...)
	c.SeriesTitleInfo.AllTitles = append([]string(nil), p.SeriesTitleInfo.AllTitles...)
	return &c
}

func (p *ParsedEpisodeInfo) String() string {
	if p == nil {
		return ""
	}
	var numbering string
	switch {
	case p.FullSeason:
		numbering = fmt.Sprintf("Season %02d", p.SeasonNumber)
	case len(p.EpisodeNumbers) > 0:
		numbering = fmt.Sprintf("S%02dE%s", p.SeasonNumber, joinNumbers(p.EpisodeNumbers, "-"))
	case len(p.AbsoluteEpisodeNumbers) > 0:
		numbering = joinNumbers(p.AbsoluteEpisodeNumbers, "-")
	default:
		numbering = unknownStr
	}
	return fmt.Sprintf("[%s - %s]", p.SeriesTitle, numbering)
}

func joinNumbers(nums []int, sep string) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprintf("%02d", n)
	}
	return strings.Join(parts, sep)
}
