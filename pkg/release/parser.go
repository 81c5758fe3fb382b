package release

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/moistari/rls"
)

var videoExtensions = map[string]bool{
	".mkv": true, ".mp4": true, ".avi": true, ".m4v": true,
	".ts": true, ".wmv": true, ".mov": true, ".webm": true,
}

// IsVideoFile reports whether path has a known video extension.
func IsVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

var (
	// Show.Name.S01E05, S01E05E06, S01E05-E07, S01E05-07
	standardEpisodeRe = regexp.MustCompile(`(?i)^(?P<title>.+?)[ ._\-\[(]+S(?P<season>\d{1,2})[ ._\-]?E(?P<episode>\d{1,3})(?P<extra>(?:(?:-?E|-)\d{1,3}\b)*)`)

	// [Group] Show Name - 05, Show Name - 01-12, Show Name - 01 ~ 12
	dashAbsoluteRe = regexp.MustCompile(`(?i)^(?:\[(?P<group>[^\]]+)\][ ._\-]*)?(?P<title>.+?)[ ._]+-[ ._]+(?:E|EP)?(?P<abs>\d{2,3})(?:[ ._]*[\-~][ ._]*(?P<absend>\d{2,3}))?(?:v(?P<version>\d+))?(?:[ ._\-\[(]|$)`)

	// [Group] Show Name 05 [1080p]
	bracketAbsoluteRe = regexp.MustCompile(`(?i)^\[(?P<group>[^\]]+)\][ ._\-]*(?P<title>.+?)[ ._]+(?:E|EP)?(?P<abs>\d{2,3})(?:[ ._]*[\-~][ ._]*(?P<absend>\d{2,3}))?(?:v(?P<version>\d+))?(?:[ ._\-\[(]|$)`)

	// Show.Name.S01, Show Name Season 1
	seasonPackRe = regexp.MustCompile(`(?i)^(?P<title>.+?)[ ._\-\[(]+(?:S(?P<season>\d{1,2})|Season[ ._\-]?(?P<season2>\d{1,2}))(?:[ ._\-\])]|$)`)

	// Season token left inside a title, e.g. "Show S01 Part 2".
	titleSeasonRe = regexp.MustCompile(`(?i)(?:^|[ ._\-])(?:S|Season[ ._]?)(\d{1,2})(?:[ ._\-]|$)`)

	leadingGroupRe = regexp.MustCompile(`^\[([^\]]*)\][ ._\-]*`)
	digitsRe       = regexp.MustCompile(`\d+`)
	sceneGroupRe   = regexp.MustCompile(`[^ ]-([A-Za-z0-9]*[A-Za-z][A-Za-z0-9]*)$`)

	partRe     = regexp.MustCompile(`(?i)\bPart[ _.\-]*0?(\d{1,2})\b`)
	specialRe  = regexp.MustCompile(`(?i)\b(?:special|ova|oav|ona)\b`)
	yearRe     = regexp.MustCompile(`[ (\[]((?:19|20)\d{2})[)\]]?$`)
	altTitleRe = regexp.MustCompile(`(?i)\s+(?:/|\||aka)\s+`)
	spacesRe   = regexp.MustCompile(`\s{2,}`)
)

// Parser exposes the package parse functions behind a value that can be
// handed to services expecting a title parser.
type Parser struct{}

// NewParser returns a title parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseTitle parses a release title.
func (*Parser) ParseTitle(title string) *ParsedEpisodeInfo {
	return ParseTitle(title)
}

// ParsePartNumber extracts a "Part N" marker.
func (*Parser) ParsePartNumber(title string) (int, bool) {
	return ParsePartNumber(title)
}

// ParsePartNumber returns N for titles carrying a "Part N" marker.
func ParsePartNumber(title string) (int, bool) {
	m := partRe.FindStringSubmatch(title)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// PartPattern returns a pattern matching the "Part N" token for a given part.
func PartPattern(part int) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\bPart[ _.\-]*0?` + strconv.Itoa(part) + `\b`)
}

// ParseTitle extracts series and episode numbering from a release title.
// Returns nil when the title carries no usable series title or numbering.
func ParseTitle(title string) *ParsedEpisodeInfo {
	name := strings.TrimSpace(title)
	if name == "" {
		return nil
	}
	if IsVideoFile(name) {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	info := &ParsedEpisodeInfo{ReleaseTitle: name}
	r := rls.ParseString(name)

	var rawTitle string
	switch {
	case matchStandard(name, info, &rawTitle):
	case matchAbsolute(dashAbsoluteRe, name, info, &rawTitle):
	case matchSeasonPack(name, info, &rawTitle):
	case matchAbsolute(bracketAbsoluteRe, name, info, &rawTitle):
	case r.Series > 0 && r.Title != "":
		rawTitle = r.Title
		info.SeasonNumber = r.Series
		if r.Episode > 0 {
			info.EpisodeNumbers = []int{r.Episode}
		} else {
			info.FullSeason = true
		}
	default:
		return nil
	}

	applyTitle(info, rawTitle)
	if info.SeriesTitle == "" {
		return nil
	}

	if part, ok := ParsePartNumber(name); ok {
		info.SeasonPart = part
		info.IsPartialSeason = info.FullSeason
	}
	info.Special = specialRe.MatchString(name)

	if info.ReleaseGroup == "" {
		info.ReleaseGroup = r.Group
	}
	if info.ReleaseGroup == "" {
		if m := sceneGroupRe.FindStringSubmatch(name); m != nil {
			info.ReleaseGroup = m[1]
		}
	}
	info.Resolution = parseResolution(r.Resolution)
	info.Source = parseSource(r.Source)
	if info.Version == 0 && r.Version != "" {
		info.Version, _ = strconv.Atoi(strings.TrimPrefix(strings.ToLower(r.Version), "v"))
	}

	return info
}

func matchStandard(name string, info *ParsedEpisodeInfo, rawTitle *string) bool {
	m := standardEpisodeRe.FindStringSubmatch(name)
	if m == nil {
		return false
	}
	groups := namedGroups(standardEpisodeRe, m)
	*rawTitle = groups["title"]
	info.SeasonNumber, _ = strconv.Atoi(groups["season"])

	first, _ := strconv.Atoi(groups["episode"])
	episodes := []int{first}
	extra := groups["extra"]
	var extraNums []int
	for _, s := range digitsRe.FindAllString(extra, -1) {
		n, _ := strconv.Atoi(s)
		extraNums = append(extraNums, n)
	}
	switch {
	case len(extraNums) == 1 && strings.HasPrefix(extra, "-") && extraNums[0] > first:
		for n := first + 1; n <= extraNums[0]; n++ {
			episodes = append(episodes, n)
		}
	default:
		episodes = append(episodes, extraNums...)
	}
	info.EpisodeNumbers = episodes
	return true
}

func matchAbsolute(re *regexp.Regexp, name string, info *ParsedEpisodeInfo, rawTitle *string) bool {
	m := re.FindStringSubmatch(name)
	if m == nil {
		return false
	}
	groups := namedGroups(re, m)
	*rawTitle = groups["title"]
	info.ReleaseGroup = groups["group"]

	start, _ := strconv.Atoi(groups["abs"])
	end := start
	if groups["absend"] != "" {
		end, _ = strconv.Atoi(groups["absend"])
	}
	if end < start {
		end = start
	}
	for n := start; n <= end; n++ {
		info.AbsoluteEpisodeNumbers = append(info.AbsoluteEpisodeNumbers, n)
	}
	if groups["version"] != "" {
		info.Version, _ = strconv.Atoi(groups["version"])
	}
	return true
}

func matchSeasonPack(name string, info *ParsedEpisodeInfo, rawTitle *string) bool {
	m := seasonPackRe.FindStringSubmatch(name)
	if m == nil {
		return false
	}
	groups := namedGroups(seasonPackRe, m)
	season := groups["season"]
	if season == "" {
		season = groups["season2"]
	}
	*rawTitle = groups["title"]
	info.SeasonNumber, _ = strconv.Atoi(season)
	info.FullSeason = true
	return true
}

// applyTitle fills the series title fields from the raw title capture,
// lifting any season or part token embedded in it.
func applyTitle(info *ParsedEpisodeInfo, raw string) {
	if m := leadingGroupRe.FindStringSubmatch(raw); m != nil {
		if info.ReleaseGroup == "" {
			info.ReleaseGroup = m[1]
		}
		raw = raw[len(m[0]):]
	}
	t := strings.NewReplacer(".", " ", "_", " ").Replace(raw)
	t = strings.TrimRight(strings.TrimLeft(t, "-[( "), " -[(")

	if loc := partRe.FindStringIndex(t); loc != nil {
		t = strings.TrimSpace(t[:loc[0]] + t[loc[1]:])
	}
	if m := titleSeasonRe.FindStringSubmatchIndex(t); m != nil {
		if info.SeasonNumber == 0 {
			info.SeasonNumber, _ = strconv.Atoi(t[m[2]:m[3]])
		}
		t = strings.TrimSpace(t[:m[0]])
	}
	t = strings.TrimSpace(strings.TrimRight(spacesRe.ReplaceAllString(t, " "), " -"))

	info.SeriesTitle = t
	info.SeriesTitleInfo = SeriesTitleInfo{Title: t, TitleWithoutYear: t}
	if m := yearRe.FindStringSubmatchIndex(t); m != nil {
		info.SeriesTitleInfo.Year, _ = strconv.Atoi(t[m[2]:m[3]])
		info.SeriesTitleInfo.TitleWithoutYear = strings.TrimSpace(t[:m[0]])
	}

	all := []string{t}
	if parts := altTitleRe.Split(t, -1); len(parts) > 1 {
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				all = append(all, p)
			}
		}
	}
	info.SeriesTitleInfo.AllTitles = all
}

func namedGroups(re *regexp.Regexp, m []string) map[string]string {
	groups := make(map[string]string, len(m))
	for i, name := range re.SubexpNames() {
		if name != "" && i < len(m) {
			groups[name] = m[i]
		}
	}
	return groups
}

func parseResolution(s string) Resolution {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "2160"), strings.Contains(s, "4k"):
		return Resolution2160p
	case strings.Contains(s, "1080"):
		return Resolution1080p
	case strings.Contains(s, "720"):
		return Resolution720p
	case strings.Contains(s, "480"), strings.Contains(s, "576"):
		return Resolution480p
	default:
		return ResolutionUnknown
	}
}

func parseSource(s string) Source {
	s = strings.ToLower(strings.ReplaceAll(s, "-", ""))
	switch {
	case strings.Contains(s, "bluray"), strings.Contains(s, "bdrip"), strings.Contains(s, "uhd.bd"):
		return SourceBluRay
	case strings.Contains(s, "webdl"), s == "web":
		return SourceWEBDL
	case strings.Contains(s, "webrip"):
		return SourceWEBRip
	case strings.Contains(s, "hdtv"):
		return SourceHDTV
	case strings.Contains(s, "dvd"):
		return SourceDVD
	default:
		return SourceUnknown
	}
}
