// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/vmunix/trackarr/internal/matching"
)

// Config is the root configuration structure.
type Config struct {
	Server        ServerConfig         `toml:"server"`
	Database      DatabaseConfig       `toml:"database"`
	Tracking      TrackingConfig       `toml:"tracking"`
	Downloaders   DownloadersConfig    `toml:"downloaders"`
	Metadata      MetadataConfig       `toml:"metadata"`
	CustomFormats []CustomFormatConfig `toml:"custom_formats"`
}

type ServerConfig struct {
	LogLevel    string `toml:"log_level"`
	MetricsAddr string `toml:"metrics_addr"` // Empty disables /metrics
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// TrackingConfig controls the download poller.
type TrackingConfig struct {
	PollSchedule   string   `toml:"poll_schedule"` // cron spec, e.g. "@every 1m"
	LockPath       string   `toml:"lock_path"`
	ReconcileParts *bool    `toml:"reconcile_parts"`
	EventRetention Duration `toml:"event_retention"`
}

type DownloadersConfig struct {
	SABnzbd     *SABnzbdConfig     `toml:"sabnzbd"`
	QBittorrent *QBittorrentConfig `toml:"qbittorrent"`
}

type SABnzbdConfig struct {
	URL      string `toml:"url"`
	APIKey   string `toml:"api_key"`
	Category string `toml:"category"`
}

type QBittorrentConfig struct {
	URL      string `toml:"url"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Category string `toml:"category"`
}

// MetadataConfig controls catalog sync from TVDB. Sync is off unless
// [metadata.tvdb] is set.
type MetadataConfig struct {
	TVDB            *TVDBConfig    `toml:"tvdb"`
	RefreshSchedule string         `toml:"refresh_schedule"` // cron spec
	CacheTTL        Duration       `toml:"cache_ttl"`
	Series          []SeriesConfig `toml:"series"`
}

type TVDBConfig struct {
	APIKey string `toml:"api_key"`
	URL    string `toml:"url"` // Empty uses the public API
}

// SeriesConfig is a series the catalog should hold.
type SeriesConfig struct {
	TVDBID int    `toml:"tvdb_id"`
	Type   string `toml:"type"` // standard, anime or daily
}

// CustomFormatConfig is one scored release pattern.
type CustomFormatConfig struct {
	Name    string `toml:"name"`
	Pattern string `toml:"pattern"`
	Score   int    `toml:"score"`
	MinSize int64  `toml:"min_size"`
	MaxSize int64  `toml:"max_size"`
}

// Duration is a time.Duration written as a Go duration string.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// ReconcileEnabled reports whether split-season parts are reconciled.
// Defaults to true.
func (t TrackingConfig) ReconcileEnabled() bool {
	return t.ReconcileParts == nil || *t.ReconcileParts
}

// Level converts log_level to a slog level.
func (s ServerConfig) Level() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FormatSpecs converts the configured custom formats for the scorer.
func (c *Config) FormatSpecs() []matching.FormatSpec {
	specs := make([]matching.FormatSpec, len(c.CustomFormats))
	for i, f := range c.CustomFormats {
		specs[i] = matching.FormatSpec{
			Name:    f.Name,
			Pattern: f.Pattern,
			Score:   f.Score,
			MinSize: f.MinSize,
			MaxSize: f.MaxSize,
		}
	}
	return specs
}

// Load reads, parses and validates the configuration file.
func Load(path string) (*Config, error) {
	cfg, err := LoadWithoutValidation(path)
	if err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &ConfigError{Path: path, Errors: errs}
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file. Missing
// environment variables are still an error.
func LoadWithoutValidation(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))
	if len(missing) > 0 {
		return nil, &ConfigError{Path: path, Missing: missing}
	}

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/trackarr.db"
	}
	if c.Tracking.PollSchedule == "" {
		c.Tracking.PollSchedule = "@every 1m"
	}
	if c.Tracking.LockPath == "" {
		c.Tracking.LockPath = c.Database.Path + ".lock"
	}
	if c.Tracking.EventRetention.Duration == 0 {
		c.Tracking.EventRetention.Duration = 30 * 24 * time.Hour
	}
	if c.Metadata.RefreshSchedule == "" {
		c.Metadata.RefreshSchedule = "@every 6h"
	}
	if c.Metadata.CacheTTL.Duration == 0 {
		c.Metadata.CacheTTL.Duration = 12 * time.Hour
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// substituteEnvVars expands environment references in content. Unset
// variables without a default are left in place and reported in missing;
// ${VAR:?message} reports "VAR: message". For :- and :? an empty value
// counts as unset.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		name, op, arg := m[1], m[2], m[3]
		value, ok := os.LookupEnv(name)

		switch op {
		case ":-":
			if value == "" {
				return arg
			}
			return value
		case ":?":
			if value == "" {
				missing = append(missing, name+": "+arg)
				return match
			}
			return value
		}
		if !ok {
			missing = append(missing, name)
			return match
		}
		return value
	})
	return out, missing
}
