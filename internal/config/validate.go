package config

import (
	"fmt"
	"net"
	"net/url"
	"regexp"

	"github.com/robfig/cron/v3"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}
	if c.Server.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(c.Server.MetricsAddr); err != nil {
			errs = append(errs, fmt.Sprintf("server.metrics_addr: %v", err))
		}
	}

	if c.Tracking.PollSchedule != "" {
		if _, err := cron.ParseStandard(c.Tracking.PollSchedule); err != nil {
			errs = append(errs, fmt.Sprintf("tracking.poll_schedule: %v", err))
		}
	}
	if c.Tracking.EventRetention.Duration < 0 {
		errs = append(errs, "tracking.event_retention: must not be negative")
	}

	if c.Downloaders.SABnzbd == nil && c.Downloaders.QBittorrent == nil {
		errs = append(errs, "downloaders: at least one download client must be configured")
	}
	if sab := c.Downloaders.SABnzbd; sab != nil {
		errs = append(errs, validateURL("downloaders.sabnzbd.url", sab.URL)...)
		if sab.APIKey == "" {
			errs = append(errs, "downloaders.sabnzbd.api_key: required when sabnzbd is configured")
		}
	}
	if qb := c.Downloaders.QBittorrent; qb != nil {
		errs = append(errs, validateURL("downloaders.qbittorrent.url", qb.URL)...)
	}

	errs = append(errs, c.Metadata.validate()...)

	seen := make(map[string]bool)
	for i, f := range c.CustomFormats {
		field := fmt.Sprintf("custom_formats[%d]", i)
		switch {
		case f.Name == "":
			errs = append(errs, field+".name: required")
		case seen[f.Name]:
			errs = append(errs, fmt.Sprintf("%s.name: duplicate %q", field, f.Name))
		}
		seen[f.Name] = true
		if _, err := regexp.Compile(f.Pattern); err != nil || f.Pattern == "" {
			errs = append(errs, fmt.Sprintf("%s.pattern: invalid regular expression %q", field, f.Pattern))
		}
		if f.MaxSize > 0 && f.MinSize > f.MaxSize {
			errs = append(errs, field+": min_size exceeds max_size")
		}
	}

	return errs
}

var validSeriesTypes = map[string]bool{
	"standard": true, "anime": true, "daily": true, "": true,
}

func (m MetadataConfig) validate() []string {
	var errs []string
	if m.TVDB == nil {
		if len(m.Series) > 0 {
			errs = append(errs, "metadata.series: requires [metadata.tvdb]")
		}
		return errs
	}
	if m.TVDB.APIKey == "" {
		errs = append(errs, "metadata.tvdb.api_key: required when tvdb is configured")
	}
	if m.TVDB.URL != "" {
		errs = append(errs, validateURL("metadata.tvdb.url", m.TVDB.URL)...)
	}
	if m.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(m.RefreshSchedule); err != nil {
			errs = append(errs, fmt.Sprintf("metadata.refresh_schedule: %v", err))
		}
	}
	if m.CacheTTL.Duration < 0 {
		errs = append(errs, "metadata.cache_ttl: must not be negative")
	}

	seen := make(map[int]bool)
	for i, s := range m.Series {
		field := fmt.Sprintf("metadata.series[%d]", i)
		switch {
		case s.TVDBID <= 0:
			errs = append(errs, field+".tvdb_id: must be positive")
		case seen[s.TVDBID]:
			errs = append(errs, fmt.Sprintf("%s.tvdb_id: duplicate %d", field, s.TVDBID))
		}
		seen[s.TVDBID] = true
		if !validSeriesTypes[s.Type] {
			errs = append(errs, fmt.Sprintf("%s.type: must be one of standard, anime, daily; got %q", field, s.Type))
		}
	}
	return errs
}

func validateURL(field, raw string) []string {
	if raw == "" {
		return []string{field + ": required"}
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return []string{fmt.Sprintf("%s: invalid URL %q", field, raw)}
	}
	return nil
}
