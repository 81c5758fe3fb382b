package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/trackarr/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sabConfig = `
[database]
path = "/var/lib/trackarr/trackarr.db"

[downloaders.sabnzbd]
url = "http://localhost:8080"
api_key = "key"
`

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{
		"-config", "/etc/trackarr/config.toml",
		"-log-level", "debug",
		"-poll", "@every 30s",
		"-metrics-addr", ":9090",
		"-no-reconcile",
		"-check",
	}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, options{
		configPath:  "/etc/trackarr/config.toml",
		logLevel:    "debug",
		poll:        "@every 30s",
		metricsAddr: ":9090",
		noReconcile: true,
		check:       true,
	}, opts)
}

func TestParseFlags_Unknown(t *testing.T) {
	_, err := parseFlags([]string{"-port", "8484"}, io.Discard)
	assert.Error(t, err)
}

func TestLoadConfig_Overrides(t *testing.T) {
	path := writeConfig(t, sabConfig)

	cfg, got, err := loadConfig(options{
		configPath:  path,
		logLevel:    "warn",
		poll:        "@every 30s",
		metricsAddr: "127.0.0.1:9090",
		noReconcile: true,
	})
	require.NoError(t, err)

	assert.Equal(t, path, got)
	assert.Equal(t, "warn", cfg.Server.LogLevel)
	assert.Equal(t, "@every 30s", cfg.Tracking.PollSchedule)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.MetricsAddr)
	assert.False(t, cfg.Tracking.ReconcileEnabled())
}

func TestLoadConfig_NoOverridesKeepsFile(t *testing.T) {
	path := writeConfig(t, sabConfig+`
[tracking]
poll_schedule = "@every 2m"
`)

	cfg, _, err := loadConfig(options{configPath: path})
	require.NoError(t, err)

	assert.Equal(t, "@every 2m", cfg.Tracking.PollSchedule)
	assert.True(t, cfg.Tracking.ReconcileEnabled())
}

func TestLoadConfig_InvalidOverride(t *testing.T) {
	path := writeConfig(t, sabConfig)

	_, _, err := loadConfig(options{configPath: path, poll: "every now and then"})

	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "tracking.poll_schedule")
}

func TestRun_Check(t *testing.T) {
	path := writeConfig(t, sabConfig+`
[metadata.tvdb]
api_key = "tvdb-key"

[[metadata.series]]
tvdb_id = 81189
`)

	var out bytes.Buffer
	require.NoError(t, run(options{configPath: path, check: true}, &out))

	got := out.String()
	assert.Contains(t, got, "database:   /var/lib/trackarr/trackarr.db")
	assert.Contains(t, got, "poll:       @every 1m")
	assert.Contains(t, got, "reconcile:  true")
	assert.Contains(t, got, "sabnzbd:    http://localhost:8080")
	assert.Contains(t, got, "tvdb:       1 series, refresh @every 6h")
	assert.NotContains(t, got, "qbittorrent")
}
