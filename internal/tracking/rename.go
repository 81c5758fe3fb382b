package tracking

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var (
	seasonWordRe   = regexp.MustCompile(`(?i)Season\s*\d{1,2}`)
	seasonTokenRe  = regexp.MustCompile(`(?i)S\s*0?\d{1,2}`)
	episodeAfterRe = regexp.MustCompile(`^\s*[Ee]\s*\d`)
	bracketRe      = regexp.MustCompile(`\[[^\]]*\]`)
	multiSpaceRe   = regexp.MustCompile(`\s{2,}`)
)

// episodeToken is an episode number found in a name. start and end
// delimit the digits only, so prefixes and revision suffixes survive a
// rewrite.
type episodeToken struct {
	start, end int
	value      int
}

// MapEpisodesInName shifts the episode numbers in name that belong to
// originals by offset, writing them as two digits. Season markers and
// series titles are never treated as episode numbers. When the remaining
// numbers repeat, bracketed tags are ignored; if they still repeat the
// name is left alone. One-digit numbers are only considered when no
// two-digit number was found.
func MapEpisodesInName(name string, offset int, originals []int, seriesTitles []string) string {
	if strings.TrimSpace(name) == "" || len(originals) == 0 {
		return name
	}

	scan := maskNonEpisodes(name, seriesTitles)
	tokens, ok := uniqueTokens(scan, 2)
	if ok && len(tokens) == 0 {
		tokens, ok = uniqueTokens(scan, 1)
	}
	if !ok {
		return name
	}

	var b strings.Builder
	last := 0
	changed := false
	for _, t := range tokens {
		if !slices.Contains(originals, t.value) {
			continue
		}
		b.WriteString(name[last:t.start])
		fmt.Fprintf(&b, "%02d", t.value+offset)
		last = t.end
		changed = true
	}
	if !changed {
		return name
	}
	b.WriteString(name[last:])
	return collapseSpaces(b.String())
}

// uniqueTokens scans for episode numbers of the given width, retrying
// without bracketed tags when a number repeats. ok is false when the
// numbers still repeat.
func uniqueTokens(scan string, width int) (tokens []episodeToken, ok bool) {
	tokens = findEpisodeTokens(scan, width)
	if !hasDuplicates(tokens) {
		return tokens, true
	}
	tokens = findEpisodeTokens(mask(scan, bracketRe, nil), width)
	if hasDuplicates(tokens) {
		return nil, false
	}
	return tokens, true
}

func hasDuplicates(tokens []episodeToken) bool {
	seen := make(map[int]bool, len(tokens))
	for _, t := range tokens {
		if seen[t.value] {
			return true
		}
		seen[t.value] = true
	}
	return false
}

// maskNonEpisodes blanks season markers and series titles in name. The
// result has the same length as name so token offsets carry over.
func maskNonEpisodes(name string, seriesTitles []string) string {
	scan := mask(name, seasonWordRe, func(s string, start, end int) bool {
		return delimitedBefore(s, start) && delimitedAfter(s, end)
	})
	// S01 directly followed by an episode marker, as in S01E05.
	scan = mask(scan, seasonTokenRe, func(s string, start, end int) bool {
		return episodeAfterRe.MatchString(s[end:])
	})
	scan = mask(scan, seasonTokenRe, func(s string, start, end int) bool {
		return delimitedBefore(s, start) && delimitedAfter(s, end)
	})
	for _, title := range seriesTitles {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		scan = mask(scan, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(title)), nil)
	}
	return scan
}

// mask replaces every match of re accepted by keep with spaces.
func mask(s string, re *regexp.Regexp, keep func(s string, start, end int) bool) string {
	matches := re.FindAllStringIndex(s, -1)
	if len(matches) == 0 {
		return s
	}
	b := []byte(s)
	for _, m := range matches {
		if keep != nil && !keep(s, m[0], m[1]) {
			continue
		}
		for i := m[0]; i < m[1]; i++ {
			b[i] = ' '
		}
	}
	return string(b)
}

// findEpisodeTokens finds numbers of exactly width digits (no leading
// zero for one digit, 01-99 for two) that either stand between
// delimiters, optionally after an E marker, or directly follow an E
// marker. An optional vN revision may trail the number.
func findEpisodeTokens(s string, width int) []episodeToken {
	var tokens []episodeToken
	for i := 0; i < len(s); {
		if t, next, ok := matchDelimited(s, i, width); ok {
			tokens = append(tokens, t)
			i = next
			continue
		}
		if t, next, ok := matchAfterMarker(s, i, width); ok {
			tokens = append(tokens, t)
			i = next
			continue
		}
		i++
	}
	return tokens
}

func matchDelimited(s string, i, width int) (episodeToken, int, bool) {
	if !delimitedBefore(s, i) {
		return episodeToken{}, 0, false
	}
	j := i
	if j < len(s) && (s[j] == 'E' || s[j] == 'e') {
		j++
	}
	j = skipSpaces(s, j)
	t, k, ok := matchNumber(s, j, width)
	if !ok || !delimitedAfter(s, k) {
		return episodeToken{}, 0, false
	}
	return t, k, true
}

func matchAfterMarker(s string, i, width int) (episodeToken, int, bool) {
	if i == 0 || (s[i-1] != 'E' && s[i-1] != 'e') {
		return episodeToken{}, 0, false
	}
	j := skipSpaces(s, i)
	t, k, ok := matchNumber(s, j, width)
	if !ok || (k < len(s) && isDigit(s[k])) {
		return episodeToken{}, 0, false
	}
	return t, k, true
}

// matchNumber reads the episode digits at j plus any revision suffix and
// returns the position after both.
func matchNumber(s string, j, width int) (episodeToken, int, bool) {
	if j+width > len(s) {
		return episodeToken{}, 0, false
	}
	var value int
	switch width {
	case 2:
		a, b := s[j], s[j+1]
		if !isDigit(a) || !isDigit(b) || (a == '0' && b == '0') {
			return episodeToken{}, 0, false
		}
		value = int(a-'0')*10 + int(b-'0')
	case 1:
		if s[j] < '1' || s[j] > '9' {
			return episodeToken{}, 0, false
		}
		value = int(s[j] - '0')
	default:
		return episodeToken{}, 0, false
	}

	t := episodeToken{start: j, end: j + width, value: value}
	k := j + width
	if k+1 < len(s) && (s[k] == 'v' || s[k] == 'V') && isDigit(s[k+1]) {
		k += 2
		for k < len(s) && isDigit(s[k]) {
			k++
		}
	}
	return t, k, true
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '.', '-', '_', '/':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func delimitedBefore(s string, i int) bool {
	return i == 0 || isDelimiter(s[i-1])
}

func delimitedAfter(s string, i int) bool {
	return i >= len(s) || isDelimiter(s[i])
}

func skipSpaces(s string, j int) int {
	for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
		j++
	}
	return j
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))
}
