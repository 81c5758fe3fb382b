package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vmunix/trackarr/internal/config"
)

var version = "dev"

var (
	configPath string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "trackarr",
	Short: "Download tracking and release reconciliation",
	Long: `trackarr - download tracking and release reconciliation

Tracks what your download clients hold, matches each download to
catalog episodes and renames split-season "Part N" releases so their
numbering follows the catalog.

Run 'trackarrd' or 'trackarr serve' to start the daemon.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: discovered)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("trackarr {{.Version}}\n")
}

// resolveConfigPath returns --config or the discovered config file.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.Discover()
}
