package tracking

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/vmunix/trackarr/internal/download"
	"github.com/vmunix/trackarr/internal/matching"
	"github.com/vmunix/trackarr/pkg/release"
)

// reconcileResult reports what the reconciler did. applied means the
// parsed absolute numbers were shifted; renamed means the download's
// name on disk, and therefore its client item, changed.
type reconcileResult struct {
	applied    bool
	renamed    bool
	episodeIDs []int64 // Season episodes at the shifted numbers
}

// reconcile aligns a "Part N" release with its season. Parts after the
// first number their episodes from 1; the catalog numbers them after the
// finale that closed the previous part. The parsed absolute numbers of
// remote are shifted by that finale's episode number and the download is
// renamed to match. partTitle is the title the part number is read from.
// Nothing on disk is renamed when item is nil or its client does not
// allow moving its files. item is only changed when the rename on disk
// succeeded.
func (s *Service) reconcile(remote *matching.RemoteEpisode, partTitle string, item *download.ClientItem) reconcileResult {
	var res reconcileResult
	part, ok := s.parser.ParsePartNumber(partTitle)
	if !ok || part <= 1 {
		return res
	}
	if remote == nil || len(remote.Episodes) == 0 || remote.ParsedInfo == nil {
		return res
	}
	parsed := remote.ParsedInfo
	if len(parsed.AbsoluteEpisodeNumbers) == 0 {
		return res
	}

	first := remote.Episodes[0]
	season, err := s.catalog.EpisodesInSeason(first.SeriesID, first.Season)
	if err != nil {
		s.log.Warn("failed to load season for part offset", "series_id", first.SeriesID, "season", first.Season, "error", err)
		return res
	}

	var finales []int
	for _, e := range season {
		if e.IsFinale() {
			finales = append(finales, e.Episode)
		}
	}
	slices.Sort(finales)
	if part-1 > len(finales) {
		s.log.Debug("not enough finales for part", "part", part, "finales", len(finales))
		return res
	}
	offset := finales[part-2]

	originals := slices.Clone(parsed.AbsoluteEpisodeNumbers)
	for _, n := range originals {
		if n+offset > len(season) {
			s.log.Debug("part offset exceeds season", "part", part, "offset", offset, "episode", n, "season_episodes", len(season))
			return res
		}
	}

	shifted := make([]int, len(originals))
	for i, n := range originals {
		shifted[i] = n + offset
	}
	parsed.AbsoluteEpisodeNumbers = shifted
	res.applied = true
	for _, e := range season {
		if slices.Contains(shifted, e.Episode) {
			res.episodeIDs = append(res.episodeIDs, e.ID)
		}
	}
	s.metrics.offsetApplied()
	s.log.Info("applied part offset", "part", part, "offset", offset, "from", originals, "to", shifted)

	if item == nil || item.OutputPath == "" {
		return res
	}
	if !item.CanMoveFiles {
		s.log.Debug("client does not allow moving files, skipping rename", "download_id", item.DownloadID, "path", item.OutputPath)
		return res
	}

	partRe := release.PartPattern(part)
	base := filepath.Base(item.OutputPath)
	ext := filepath.Ext(base)

	switch {
	case ext == "" || s.fs.DirExists(item.OutputPath):
		res.renamed = s.renameFolder(item, partRe, offset, originals, shifted, parsed.SeriesTitleInfo.AllTitles)
	case len(remote.Episodes) == 1:
		stem := strings.TrimSuffix(base, ext)
		name := collapseSpaces(partRe.ReplaceAllString(stem, ""))
		name = MapEpisodesInName(name, offset, originals, parsed.SeriesTitleInfo.AllTitles)
		newBase := name + ext
		dst := filepath.Join(filepath.Dir(item.OutputPath), newBase)
		if !strings.EqualFold(item.OutputPath, dst) && s.renameFile(item.OutputPath, dst) {
			applyRename(item, stem, name, dst)
			res.renamed = true
		}
	}
	return res
}

// renameFolder renames a season-pack folder and then the files directly
// inside it. When the folder cannot be renamed nothing inside is touched.
func (s *Service) renameFolder(item *download.ClientItem, partRe *regexp.Regexp, offset int, originals, shifted []int, titles []string) bool {
	base := filepath.Base(item.OutputPath)
	name := collapseSpaces(partRe.ReplaceAllString(base, ""))
	name = rewriteRange(name, slices.Min(originals), slices.Max(originals), slices.Min(shifted), slices.Max(shifted))

	dir := item.OutputPath
	renamed := false
	if name != base {
		dst := filepath.Join(filepath.Dir(item.OutputPath), name)
		if err := s.fs.MoveDir(item.OutputPath, dst); err != nil {
			s.metrics.renameFailed()
			s.log.Warn("failed to rename folder", "from", item.OutputPath, "to", dst, "error", err)
			return false
		}
		applyRename(item, base, name, dst)
		dir = dst
		renamed = true
	}

	files, err := s.fs.ListFiles(dir)
	if err != nil {
		s.log.Warn("failed to list folder", "path", dir, "error", err)
		return renamed
	}
	for _, file := range files {
		ext := filepath.Ext(file)
		stem := strings.TrimSuffix(file, ext)
		newStem := collapseSpaces(partRe.ReplaceAllString(stem, ""))
		newStem = MapEpisodesInName(newStem, offset, originals, titles)
		target := newStem + ext
		if strings.EqualFold(file, target) {
			continue
		}
		if s.renameFile(filepath.Join(dir, file), filepath.Join(dir, target)) {
			renamed = true
		}
	}
	return renamed
}

// renameFile moves src to dst unless src is missing or dst is taken.
func (s *Service) renameFile(src, dst string) bool {
	switch {
	case !s.fs.FileExists(src):
		s.log.Warn("original file not found", "path", src)
	case s.fs.FileExists(dst):
		s.log.Warn("target file already exists, skipping rename", "path", dst)
	default:
		err := s.fs.MoveFile(src, dst)
		if err == nil {
			s.log.Info("renamed file", "from", src, "to", dst)
			return true
		}
		s.log.Warn("failed to rename file", "from", src, "to", dst, "error", err)
	}
	s.metrics.renameFailed()
	return false
}

// applyRename points item at its renamed path. Id and title change with
// the path, never apart from it.
func applyRename(item *download.ClientItem, oldName, newName, newPath string) {
	item.OutputPath = newPath
	item.DownloadID = strings.ReplaceAll(item.DownloadID, oldName, newName)
	item.Title = strings.ReplaceAll(item.Title, oldName, newName)
}

// rewriteRange rewrites "01-12" and "01 ~ 12" style ranges spanning
// oldMin to oldMax to span newMin to newMax.
func rewriteRange(name string, oldMin, oldMax, newMin, newMax int) string {
	dash := regexp.MustCompile(fmt.Sprintf(`(^|[^0-9])0?%d\s*-\s*0?%d([^0-9]|$)`, oldMin, oldMax))
	tilde := regexp.MustCompile(fmt.Sprintf(`(^|[^0-9])0?%d\s*~\s*0?%d([^0-9]|$)`, oldMin, oldMax))
	name = dash.ReplaceAllString(name, fmt.Sprintf("${1}%02d-%02d${2}", newMin, newMax))
	name = tilde.ReplaceAllString(name, fmt.Sprintf("${1}%02d ~ %02d${2}", newMin, newMax))
	return collapseSpaces(name)
}
