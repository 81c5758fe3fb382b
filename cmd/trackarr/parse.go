package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/trackarr/internal/config"
	"github.com/vmunix/trackarr/internal/matching"
	"github.com/vmunix/trackarr/pkg/release"
)

// ParseResult is the JSON form of one parsed release title.
type ParseResult struct {
	Input         string   `json:"input"`
	Parsed        bool     `json:"parsed"`
	SeriesTitle   string   `json:"series_title,omitempty"`
	Season        int      `json:"season,omitempty"`
	Episodes      []int    `json:"episodes,omitempty"`
	Absolute      []int    `json:"absolute,omitempty"`
	FullSeason    bool     `json:"full_season,omitempty"`
	Part          int      `json:"part,omitempty"`
	Special       bool     `json:"special,omitempty"`
	Resolution    string   `json:"resolution,omitempty"`
	Source        string   `json:"source,omitempty"`
	Group         string   `json:"group,omitempty"`
	Version       int      `json:"version,omitempty"`
	CustomFormats []string `json:"custom_formats,omitempty"`
	FormatScore   int      `json:"format_score,omitempty"`
}

var parseCmd = &cobra.Command{
	Use:   "parse [flags] <release-title>",
	Short: "Parse release titles (local, no daemon needed)",
	Long: `Parse a release title and show the episode information found in it.

Examples:
  trackarr parse "[Group] Show S01 Part 2 - 03 [1080p]"
  trackarr parse --formats "Show.S01E05.1080p.WEB-DL.x265-GRP"
  trackarr parse --file titles.txt --json`,
	RunE: runParseCmd,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringP("file", "f", "", "Read release titles from file (one per line)")
	parseCmd.Flags().Bool("formats", false, "Score against the configured custom formats")
}

func runParseCmd(cmd *cobra.Command, args []string) error {
	inputFile, _ := cmd.Flags().GetString("file")
	withFormats, _ := cmd.Flags().GetBool("formats")

	var titles []string
	switch {
	case inputFile != "":
		names, err := readReleaseFile(inputFile)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
		titles = names
	case len(args) > 0:
		titles = []string{args[0]}
	default:
		return fmt.Errorf("usage: trackarr parse <release-title> or trackarr parse --file <filename>")
	}

	var scorer *matching.FormatCalculator
	if withFormats {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		cfg, err := config.LoadWithoutValidation(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if scorer, err = matching.NewFormatCalculator(cfg.FormatSpecs()); err != nil {
			return err
		}
	}

	results := make([]ParseResult, len(titles))
	for i, title := range titles {
		results[i] = parseTitle(title, scorer)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, results)
	}
	_, err := fmt.Fprintln(out, renderParseResults(results, scorer != nil))
	return err
}

func parseTitle(title string, scorer *matching.FormatCalculator) ParseResult {
	r := ParseResult{Input: title}
	if part, ok := release.ParsePartNumber(title); ok {
		r.Part = part
	}
	info := release.ParseTitle(title)
	if info == nil {
		return r
	}
	r.Parsed = true
	r.SeriesTitle = info.SeriesTitle
	r.Season = info.SeasonNumber
	r.Episodes = info.EpisodeNumbers
	r.Absolute = info.AbsoluteEpisodeNumbers
	r.FullSeason = info.FullSeason
	r.Special = info.Special
	r.Resolution = info.Resolution.String()
	r.Source = info.Source.String()
	r.Group = info.ReleaseGroup
	r.Version = info.Version

	if scorer != nil {
		for _, f := range scorer.Score(&matching.RemoteEpisode{ParsedInfo: info}, 0) {
			r.CustomFormats = append(r.CustomFormats, f.Name)
			r.FormatScore += f.Score
		}
	}
	return r
}

func renderParseResults(results []ParseResult, withFormats bool) string {
	headers := []string{"TITLE", "SERIES", "SEASON", "EPISODES", "ABSOLUTE", "PART", "QUALITY", "GROUP"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft}
	if withFormats {
		headers = append(headers, "FORMATS", "SCORE")
		aligns = append(aligns, alignLeft, alignRight)
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		if !r.Parsed {
			rows = append(rows, []string{r.Input, "(unparsed)"})
			continue
		}
		season := strconv.Itoa(r.Season)
		if r.FullSeason {
			season += " (pack)"
		}
		row := []string{
			r.Input,
			r.SeriesTitle,
			season,
			joinInts(r.Episodes),
			joinInts(r.Absolute),
			optionalInt(r.Part),
			r.Resolution + " " + r.Source,
			r.Group,
		}
		if withFormats {
			row = append(row, strings.Join(r.CustomFormats, ", "), strconv.Itoa(r.FormatScore))
		}
		rows = append(rows, row)
	}
	return renderTable(headers, rows, aligns)
}

// readReleaseFile reads release titles from a file, one per line.
func readReleaseFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			names = append(names, line)
		}
	}
	return names, scanner.Err()
}

func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func optionalInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
