package release

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Roman numerals II-IX after a space. A lone "I" or "X" and a leading
// numeral are left alone ("I Robot", "SPY x FAMILY", "VII Days").
var romanNumeralRe = regexp.MustCompile(`(?i) (ii|iii|iv|v|vi|vii|viii|ix)\b`)

var romanToArabic = map[string]string{
	"II": "2", "III": "3", "IV": "4", "V": "5",
	"VI": "6", "VII": "7", "VIII": "8", "IX": "9",
}

var trailingYearRe = regexp.MustCompile(`\s*[(\[]?(?:19|20)\d{2}[)\]]?$`)

var articles = []string{"the ", "a ", "an "}

// NormalizeRomanNumerals converts Roman numerals II-IX to Arabic numbers.
func NormalizeRomanNumerals(s string) string {
	return romanNumeralRe.ReplaceAllStringFunc(s, func(match string) string {
		if arabic, ok := romanToArabic[strings.ToUpper(strings.TrimSpace(match))]; ok {
			return " " + arabic
		}
		return match
	})
}

// CleanTitle normalizes a series title for comparison: lower case, no
// accents, articles or punctuation, Roman numerals as digits and single
// spaces.
func CleanTitle(title string) string {
	s := strings.ToLower(title)
	s = NormalizeRomanNumerals(s)
	s = removeAccents(s)

	s = strings.NewReplacer(
		"&", " and ",
		"-", " ",
		"_", " ",
		".", " ",
		"'", "",
	).Replace(s)

	// "Show: Subtitle" is compared as "show subtitle" with articles removed
	// from each side.
	parts := strings.Split(s, ":")
	for i, part := range parts {
		parts[i] = stripLeadingArticle(part)
	}
	s = strings.Join(parts, " ")

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// CleanTitleWithoutYear is CleanTitle with a trailing year removed, so
// "Show (2019)" and "Show" compare equal.
func CleanTitleWithoutYear(title string) string {
	t := strings.TrimSpace(title)
	if stripped := trailingYearRe.ReplaceAllString(t, ""); stripped != "" {
		t = stripped
	}
	return CleanTitle(t)
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

func stripLeadingArticle(s string) string {
	s = strings.TrimSpace(s)
	for _, art := range articles {
		if strings.HasPrefix(s, art) {
			return strings.TrimPrefix(s, art)
		}
	}
	return s
}
