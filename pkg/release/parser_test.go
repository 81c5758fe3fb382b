package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTitle_SeasonEpisode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		title    string
		season   int
		episodes []int
	}{
		{"dotted", "Show.Name.S01E05.1080p.WEB-DL-GRP.mkv", "Show Name", 1, []int{5}},
		{"range", "Show Name S01E05-07 720p", "Show Name", 1, []int{5, 6, 7}},
		{"multi", "Show.Name.S02E05E06.HDTV", "Show Name", 2, []int{5, 6}},
		{"lowercase", "show.name.s03e10", "show name", 3, []int{10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTitle(tt.input)
			require.NotNil(t, got)
			assert.Equal(t, tt.title, got.SeriesTitle)
			assert.Equal(t, tt.season, got.SeasonNumber)
			assert.Equal(t, tt.episodes, got.EpisodeNumbers)
			assert.Empty(t, got.AbsoluteEpisodeNumbers)
			assert.True(t, got.HasSeasonEpisode())
		})
	}
}

func TestParseTitle_StripsVideoExtension(t *testing.T) {
	got := ParseTitle("Show.Name.S01E05.mkv")
	require.NotNil(t, got)
	assert.Equal(t, "Show.Name.S01E05", got.ReleaseTitle)
}

func TestParseTitle_Absolute(t *testing.T) {
	got := ParseTitle("[SubsPlease] Show Name - 05 (1080p) [ABCD1234].mkv")
	require.NotNil(t, got)

	assert.Equal(t, "Show Name", got.SeriesTitle)
	assert.Equal(t, "SubsPlease", got.ReleaseGroup)
	assert.Equal(t, []int{5}, got.AbsoluteEpisodeNumbers)
	assert.True(t, got.IsAbsoluteNumbering())
	assert.False(t, got.HasSeasonEpisode())
}

func TestParseTitle_AbsoluteRangeWithPart(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"dash", "[Group] Show Name S2 Part 2 - 01-12 [1080p]"},
		{"tilde", "[Group] Show Name S2 Part 2 - 01 ~ 12 [1080p]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTitle(tt.input)
			require.NotNil(t, got)

			assert.Equal(t, "Show Name", got.SeriesTitle)
			assert.Equal(t, 2, got.SeasonNumber)
			assert.Equal(t, 2, got.SeasonPart)
			assert.False(t, got.IsPartialSeason)
			assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, got.AbsoluteEpisodeNumbers)
		})
	}
}

func TestParseTitle_Version(t *testing.T) {
	got := ParseTitle("[Group] Show Name - 07v2 [720p]")
	require.NotNil(t, got)
	assert.Equal(t, []int{7}, got.AbsoluteEpisodeNumbers)
	assert.Equal(t, 2, got.Version)
}

func TestParseTitle_SeasonPack(t *testing.T) {
	got := ParseTitle("Show Name Season 1 Part 2 1080p")
	require.NotNil(t, got)

	assert.Equal(t, "Show Name", got.SeriesTitle)
	assert.Equal(t, 1, got.SeasonNumber)
	assert.True(t, got.FullSeason)
	assert.True(t, got.IsPartialSeason)
	assert.Equal(t, 2, got.SeasonPart)
	assert.False(t, got.IsPossibleSpecialEpisode())
}

func TestParseTitle_Year(t *testing.T) {
	got := ParseTitle("Show Name (2019) S01E01")
	require.NotNil(t, got)

	assert.Equal(t, "Show Name (2019)", got.SeriesTitle)
	assert.Equal(t, 2019, got.SeriesTitleInfo.Year)
	assert.Equal(t, "Show Name", got.SeriesTitleInfo.TitleWithoutYear)
}

func TestParseTitle_AlternateTitles(t *testing.T) {
	got := ParseTitle("Title A / Title B - 03")
	require.NotNil(t, got)
	assert.Equal(t, []string{"Title A / Title B", "Title A", "Title B"}, got.SeriesTitleInfo.AllTitles)
}

func TestParseTitle_Unparseable(t *testing.T) {
	assert.Nil(t, ParseTitle(""))
	assert.Nil(t, ParseTitle("   "))
	assert.Nil(t, ParseTitle("just some words"))
}

func TestParsePartNumber(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"Show Part 2", 2, true},
		{"Show.Part.02.1080p", 2, true},
		{"Show Part_3 - 01", 3, true},
		{"Show part 4", 4, true},
		{"Show Party 2", 0, false},
		{"Show Part 0", 0, false},
		{"Show S01E01", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParsePartNumber(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPartPattern(t *testing.T) {
	re := PartPattern(2)
	assert.True(t, re.MatchString("Show Part 2 - 01"))
	assert.True(t, re.MatchString("Show part.02"))
	assert.False(t, re.MatchString("Show Part 3"))
	assert.False(t, re.MatchString("Show Part 22"))
}

func TestParsedEpisodeInfo_String(t *testing.T) {
	assert.Equal(t, "[Show - S01E01-02]", (&ParsedEpisodeInfo{SeriesTitle: "Show", SeasonNumber: 1, EpisodeNumbers: []int{1, 2}}).String())
	assert.Equal(t, "[Show - 13-14]", (&ParsedEpisodeInfo{SeriesTitle: "Show", AbsoluteEpisodeNumbers: []int{13, 14}}).String())
	assert.Equal(t, "[Show - Season 02]", (&ParsedEpisodeInfo{SeriesTitle: "Show", SeasonNumber: 2, FullSeason: true}).String())
}

func TestParsedEpisodeInfo_Clone(t *testing.T) {
	orig := &ParsedEpisodeInfo{SeriesTitle: "Show", AbsoluteEpisodeNumbers: []int{1, 2}}
	c := orig.Clone()
	c.AbsoluteEpisodeNumbers[0] = 11

	assert.Equal(t, []int{1, 2}, orig.AbsoluteEpisodeNumbers)
	assert.Nil(t, (*ParsedEpisodeInfo)(nil).Clone())
}

func TestIsVideoFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"episode.mkv", true},
		{"episode.MKV", true},
		{"/downloads/Show - 01.mp4", true},
		{"episode.nfo", false},
		{"episode.srt", false},
		{"/downloads/Show - 01-12", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsVideoFile(tt.path), tt.path)
	}
}
