package matching

import (
	"path/filepath"
	"strings"

	"github.com/vmunix/trackarr/pkg/release"
)

// LocalEpisode gathers the parses available for one file on disk.
type LocalEpisode struct {
	Path               string
	FileInfo           *release.ParsedEpisodeInfo
	FolderInfo         *release.ParsedEpisodeInfo
	DownloadClientInfo *release.ParsedEpisodeInfo
	OtherVideoFiles    bool
}

// BestEpisodeInfo picks the parse to map a local file with. A file parse
// with an explicit season and episode always wins. Otherwise, unless the
// file name is a scene name or the folder holds other videos, the
// download client's parse is preferred, then the folder's, skipping full
// season parses and any absolute parse that would replace a season-based
// file parse. May return nil or a possible special.
func BestEpisodeInfo(local LocalEpisode) *release.ParsedEpisodeInfo {
	best := local.FileInfo
	if best.HasSeasonEpisode() {
		return best
	}

	name := strings.TrimSuffix(filepath.Base(local.Path), filepath.Ext(local.Path))
	if local.OtherVideoFiles || IsSceneTitle(name) {
		return best
	}

	if c := local.DownloadClientInfo; c != nil && !c.FullSeason && preferOther(best, c) {
		return c
	}
	if f := local.FolderInfo; f != nil && !f.FullSeason && preferOther(best, f) {
		return f
	}
	return best
}

func preferOther(file, other *release.ParsedEpisodeInfo) bool {
	if file == nil {
		return true
	}
	// Absolute numbering aligns worse with a season based catalog than
	// the file's own season numbering.
	if !file.IsAbsoluteNumbering() && other.IsAbsoluteNumbering() {
		return false
	}
	return true
}

// IsSceneTitle reports whether name looks like an untouched scene release
// name: dotted, no spaces, with a group and a known resolution.
func IsSceneTitle(name string) bool {
	if !strings.Contains(name, ".") || strings.Contains(name, " ") {
		return false
	}
	info := release.ParseTitle(name)
	return info != nil &&
		info.SeriesTitle != "" &&
		info.ReleaseGroup != "" &&
		info.Resolution != release.ResolutionUnknown
}

// ResolveLocal applies BestEpisodeInfo and, when that yields nothing or a
// possible special, tries a special-episode parse of the file name against
// seriesID.
func (m *Mapper) ResolveLocal(local LocalEpisode, seriesID int64) *release.ParsedEpisodeInfo {
	best := BestEpisodeInfo(local)
	if best != nil && !best.IsPossibleSpecialEpisode() {
		return best
	}
	if seriesID <= 0 {
		return best
	}
	name := strings.TrimSuffix(filepath.Base(local.Path), filepath.Ext(local.Path))
	if special := m.ParseSpecialEpisodeTitle(best, name, seriesID, nil); special != nil {
		return special
	}
	return best
}
