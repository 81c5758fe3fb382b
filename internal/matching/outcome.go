package matching

import (
	"strings"

	"github.com/vmunix/trackarr/internal/catalog"
	"github.com/vmunix/trackarr/pkg/release"
)

// Kind is the shape of a mapping result.
type Kind int

const (
	Unmatched Kind = iota
	Matched
	Ambiguous
)

func (k Kind) String() string {
	switch k {
	case Matched:
		return "matched"
	case Ambiguous:
		return "ambiguous"
	default:
		return "unmatched"
	}
}

// Outcome is the result of mapping a parsed title. Matched outcomes carry
// a series and at least one episode. Ambiguous outcomes carry the
// candidate series. Unmatched outcomes may still carry a series when no
// episodes could be resolved.
type Outcome struct {
	Kind       Kind
	Series     *catalog.Series
	Episodes   []*catalog.Episode
	ParsedInfo *release.ParsedEpisodeInfo
	Candidates []*catalog.Series
}

// CandidateTitles joins the candidate series titles for display.
func (o Outcome) CandidateTitles() string {
	titles := make([]string, len(o.Candidates))
	for i, s := range o.Candidates {
		titles[i] = s.Title
	}
	return strings.Join(titles, ", ")
}

// RemoteEpisode converts a matched outcome into a remote episode.
// Returns nil for any other outcome.
func (o Outcome) RemoteEpisode() *RemoteEpisode {
	if o.Kind != Matched || o.Series == nil || len(o.Episodes) == 0 {
		return nil
	}
	return &RemoteEpisode{
		Series:     o.Series,
		Episodes:   o.Episodes,
		ParsedInfo: o.ParsedInfo,
	}
}
