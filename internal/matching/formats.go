package matching

import (
	"fmt"
	"regexp"
)

// FormatSpec defines one custom format: a pattern tested against the
// release title plus optional size bounds in bytes.
type FormatSpec struct {
	Name    string
	Pattern string
	Score   int
	MinSize int64
	MaxSize int64
}

type compiledFormat struct {
	FormatSpec
	re *regexp.Regexp
}

// FormatCalculator scores releases against configured custom formats.
type FormatCalculator struct {
	formats []compiledFormat
}

// NewFormatCalculator compiles the given specs.
func NewFormatCalculator(specs []FormatSpec) (*FormatCalculator, error) {
	c := &FormatCalculator{}
	for _, spec := range specs {
		re, err := regexp.Compile("(?i)" + spec.Pattern)
		if err != nil {
			return nil, fmt.Errorf("custom format %q: %w", spec.Name, err)
		}
		c.formats = append(c.formats, compiledFormat{FormatSpec: spec, re: re})
	}
	return c, nil
}

// Score returns the formats the release satisfies. The grabbed release
// title is tested when known, otherwise the parsed title.
func (c *FormatCalculator) Score(remote *RemoteEpisode, size int64) []CustomFormat {
	if remote == nil {
		return nil
	}
	title := ""
	if remote.Release != nil {
		title = remote.Release.Title
	}
	if title == "" && remote.ParsedInfo != nil {
		title = remote.ParsedInfo.ReleaseTitle
	}

	var matched []CustomFormat
	for _, f := range c.formats {
		if !f.re.MatchString(title) {
			continue
		}
		if f.MinSize > 0 && size < f.MinSize {
			continue
		}
		if f.MaxSize > 0 && size > f.MaxSize {
			continue
		}
		matched = append(matched, CustomFormat{Name: f.Name, Score: f.Score})
	}
	return matched
}

// TotalScore sums the scores of formats.
func TotalScore(formats []CustomFormat) int {
	total := 0
	for _, f := range formats {
		total += f.Score
	}
	return total
}
