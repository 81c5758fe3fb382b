package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapEpisodesInName(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		offset    int
		originals []int
		titles    []string
		want      string
	}{
		{
			name:      "range endpoints",
			in:        "Show - 02-05 [1080p]",
			offset:    10,
			originals: []int{2, 5},
			titles:    []string{"Show"},
			want:      "Show - 12-15 [1080p]",
		},
		{
			name:      "season episode marker",
			in:        "Show S01E05 1080p",
			offset:    12,
			originals: []int{5},
			titles:    []string{"Show"},
			want:      "Show S01E17 1080p",
		},
		{
			name:      "season word is not an episode",
			in:        "Show Season 2 - 03",
			offset:    12,
			originals: []int{2, 3},
			titles:    []string{"Show"},
			want:      "Show Season 2 - 15",
		},
		{
			name:      "digits in series title",
			in:        "Show 24 - 03 [720p]",
			offset:    12,
			originals: []int{3},
			titles:    []string{"Show 24"},
			want:      "Show 24 - 15 [720p]",
		},
		{
			name:      "revision suffix kept",
			in:        "Show - 03v2 [720p]",
			offset:    12,
			originals: []int{3},
			titles:    []string{"Show"},
			want:      "Show - 15v2 [720p]",
		},
		{
			name:      "single digit fallback",
			in:        "Show - 5",
			offset:    12,
			originals: []int{5},
			titles:    []string{"Show"},
			want:      "Show - 17",
		},
		{
			name:      "bracket duplicate ignored",
			in:        "Show - 03 [ 03 ]",
			offset:    12,
			originals: []int{3},
			titles:    []string{"Show"},
			want:      "Show - 15 [ 03 ]",
		},
		{
			name:      "duplicates outside brackets",
			in:        "Show 03 - 03",
			offset:    12,
			originals: []int{3},
			titles:    []string{"Show"},
			want:      "Show 03 - 03",
		},
		{
			name:      "two episodes of a twelve episode season",
			in:        "Show - 02 - 05",
			offset:    10,
			originals: []int{2, 5},
			titles:    []string{"Show"},
			want:      "Show - 12 - 15",
		},
		{
			name:      "bracketed duplicate forces rescan",
			in:        "Show - 02 - 05 [ 02 ]",
			offset:    10,
			originals: []int{2, 5},
			titles:    []string{"Show"},
			want:      "Show - 12 - 15 [ 02 ]",
		},
		{
			name:      "repeated two digit numbers block single digit fallback",
			in:        "Show 12 - 12 - 5",
			offset:    12,
			originals: []int{5},
			titles:    []string{"Show"},
			want:      "Show 12 - 12 - 5",
		},
		{
			name:      "repeated single digit numbers",
			in:        "Show 5 - 5",
			offset:    12,
			originals: []int{5},
			titles:    []string{"Show"},
			want:      "Show 5 - 5",
		},
		{
			name:      "not an original number",
			in:        "Show - 07",
			offset:    12,
			originals: []int{3},
			titles:    []string{"Show"},
			want:      "Show - 07",
		},
		{
			name:      "resolution untouched",
			in:        "Show - 10 1080p",
			offset:    12,
			originals: []int{10},
			want:      "Show - 22 1080p",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapEpisodesInName(tt.in, tt.offset, tt.originals, tt.titles))
		})
	}
}
