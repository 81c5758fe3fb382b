package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfig names the environment variable that pins the config file.
const EnvConfig = "TRACKARR_CONFIG"

// DefaultPath returns the per-user config path under XDG_CONFIG_HOME,
// falling back to ~/.config.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./config.toml"
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "trackarr", "config.toml")
}

// searchPaths lists the files Discover tries when TRACKARR_CONFIG is unset.
func searchPaths() []string {
	return []string{
		"./config.toml",
		DefaultPath(),
		"/etc/trackarr/config.toml",
	}
}

// Discover returns the config file trackarr and trackarrd use when no
// path is given: TRACKARR_CONFIG if set (it must exist), otherwise the
// first existing file of ./config.toml, the XDG path and
// /etc/trackarr/config.toml.
func Discover() (string, error) {
	if pinned := os.Getenv(EnvConfig); pinned != "" {
		if _, err := os.Stat(pinned); err != nil {
			return "", fmt.Errorf("%s=%s: %w", EnvConfig, pinned, err)
		}
		return pinned, nil
	}

	paths := searchPaths()
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("config not found, checked: %s (run 'trackarr config init')", strings.Join(paths, ", "))
}
