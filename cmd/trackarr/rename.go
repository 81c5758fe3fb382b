package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/trackarr/internal/tracking"
	"github.com/vmunix/trackarr/pkg/release"
)

// RenamePreview is the JSON form of a rename preview.
type RenamePreview struct {
	From string `json:"from"`
	To   string `json:"to"`
}

var renameCmd = &cobra.Command{
	Use:   "rename [flags] <name>...",
	Short: "Preview how a split-season part would be renamed",
	Long: `Preview the names the reconciler gives to files of a "Part N" release.
Nothing on disk is touched.

Examples:
  trackarr rename --offset 12 --episodes 1,2,3 "Show S01 Part 2 - 01 [1080p].mkv"
  trackarr rename --offset 12 --episodes 3 --titles "Show 2" "Show 2 - 03.mkv"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRenameCmd,
}

func init() {
	rootCmd.AddCommand(renameCmd)
	renameCmd.Flags().Int("offset", 0, "Episode number of the finale closing the previous part")
	renameCmd.Flags().IntSlice("episodes", nil, "Episode numbers as released in the part")
	renameCmd.Flags().StringSlice("titles", nil, "Series titles whose digits are not episode numbers")
	renameCmd.Flags().Int("part", 0, "Part number to strip from the name (default: parsed from the name)")
	_ = renameCmd.MarkFlagRequired("offset")
	_ = renameCmd.MarkFlagRequired("episodes")
}

func runRenameCmd(cmd *cobra.Command, args []string) error {
	offset, _ := cmd.Flags().GetInt("offset")
	episodes, _ := cmd.Flags().GetIntSlice("episodes")
	titles, _ := cmd.Flags().GetStringSlice("titles")
	part, _ := cmd.Flags().GetInt("part")

	if offset <= 0 {
		return fmt.Errorf("--offset must be positive")
	}

	previews := make([]RenamePreview, len(args))
	for i, name := range args {
		previews[i] = RenamePreview{From: name, To: previewRename(name, part, offset, episodes, titles)}
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, previews)
	}
	rows := make([][]string, len(previews))
	for i, p := range previews {
		to := p.To
		if to == p.From {
			to = "(unchanged)"
		}
		rows[i] = []string{p.From, to}
	}
	_, err := fmt.Fprintln(out, renderTable([]string{"FROM", "TO"}, rows, nil))
	return err
}

// previewRename strips the part token from name and remaps its episode
// numbers, keeping the extension.
func previewRename(name string, part, offset int, episodes []int, titles []string) string {
	if part == 0 {
		part, _ = release.ParsePartNumber(name)
	}
	ext := filepath.Ext(name)
	if !release.IsVideoFile(name) {
		ext = ""
	}
	stem := strings.TrimSuffix(name, ext)
	if part > 1 {
		stem = strings.Join(strings.Fields(release.PartPattern(part).ReplaceAllString(stem, "")), " ")
	}
	return tracking.MapEpisodesInName(stem, offset, episodes, titles) + ext
}
