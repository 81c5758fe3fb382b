// Package matching resolves parsed release titles to catalog series and
// episodes and decorates the result with quality and custom formats.
package matching

import (
	"strconv"
	"strings"
	"time"

	"github.com/vmunix/trackarr/internal/catalog"
	"github.com/vmunix/trackarr/pkg/release"
)

// IndexerFlags are the release flags an indexer reported at grab time.
type IndexerFlags uint8

const (
	FlagFreeleech IndexerFlags = 1 << iota
	FlagHalfleech
	FlagDoubleUpload
	FlagInternal
	FlagScene
	FlagNuked
)

var flagNames = []struct {
	flag IndexerFlags
	name string
}{
	{FlagFreeleech, "freeleech"},
	{FlagHalfleech, "halfleech"},
	{FlagDoubleUpload, "doubleupload"},
	{FlagInternal, "internal"},
	{FlagScene, "scene"},
	{FlagNuked, "nuked"},
}

// ParseIndexerFlags parses a comma separated, case-insensitive flag list
// such as "Freeleech, Internal". Unknown names are ignored.
func ParseIndexerFlags(s string) IndexerFlags {
	var flags IndexerFlags
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		for _, f := range flagNames {
			if f.name == part {
				flags |= f.flag
			}
		}
	}
	return flags
}

// Has reports whether every bit of f is set.
func (fl IndexerFlags) Has(f IndexerFlags) bool {
	return fl&f == f
}

func (fl IndexerFlags) String() string {
	var names []string
	for _, f := range flagNames {
		if fl.Has(f.flag) {
			names = append(names, f.name)
		}
	}
	return strings.Join(names, ", ")
}

// ReleaseInfo is what the indexer told us when the release was grabbed.
type ReleaseInfo struct {
	Indexer   string
	IndexerID int64
	Title     string
	Flags     IndexerFlags
	GrabbedAt time.Time
	Size      int64
}

// Quality is the decoded video quality of a release.
type Quality struct {
	Resolution release.Resolution
	Source     release.Source
	Revision   int
}

func (q Quality) String() string {
	s := q.Source.String() + "-" + q.Resolution.String()
	if q.Revision > 1 {
		s += " v" + strconv.Itoa(q.Revision)
	}
	return s
}

// CustomFormat is a named format a release satisfied, with its score.
type CustomFormat struct {
	Name  string
	Score int
}

// RemoteEpisode is a release resolved against the catalog.
type RemoteEpisode struct {
	Series     *catalog.Series
	Episodes   []*catalog.Episode
	ParsedInfo *release.ParsedEpisodeInfo
	Release    *ReleaseInfo

	ReleaseGroup      string
	Quality           Quality
	CustomFormats     []CustomFormat
	CustomFormatScore int
}

// EpisodeIDs returns the matched episode ids in order.
func (r *RemoteEpisode) EpisodeIDs() []int64 {
	if r == nil {
		return nil
	}
	ids := make([]int64, len(r.Episodes))
	for i, e := range r.Episodes {
		ids[i] = e.ID
	}
	return ids
}

// Clone copies the remote episode. Catalog records are shared; slices
// and parsed info are copied.
func (r *RemoteEpisode) Clone() *RemoteEpisode {
	if r == nil {
		return nil
	}
	c := *r
	c.Episodes = append([]*catalog.Episode(nil), r.Episodes...)
	c.ParsedInfo = r.ParsedInfo.Clone()
	c.CustomFormats = append([]CustomFormat(nil), r.CustomFormats...)
	if r.Release != nil {
		rel := *r.Release
		c.Release = &rel
	}
	return &c
}
