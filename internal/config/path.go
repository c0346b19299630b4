// Package config resolves depcat settings and default file locations.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

const appDir = "depcat"

// ExpandPath resolves a leading ~ to the home directory and expands $VAR references.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + path[1:]
		}
	}
	return os.ExpandEnv(path)
}

// ConfigDir is where config.yaml and the default profile live:
// $XDG_CONFIG_HOME/depcat, or ~/.config/depcat.
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", "~/.config")
}

// DataDir is where the metadata database lives: $XDG_DATA_HOME/depcat, or
// ~/.local/share/depcat.
func DataDir() string {
	return xdgDir("XDG_DATA_HOME", "~/.local/share")
}

func xdgDir(env, fallback string) string {
	base := os.Getenv(env)
	if base == "" || !filepath.IsAbs(base) {
		base = ExpandPath(fallback)
	}
	return filepath.Join(base, appDir)
}
