// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultDatabasePath is where the money book database lives unless the
// database.path setting overrides it.
const DefaultDatabasePath = "$HOME/.local/share/moneybook/moneybook.db"

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	// First expand tilde if present
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	// Then expand environment variables
	return os.ExpandEnv(path)
}

// DatabasePath resolves the configured database location, falling back to
// the default when the setting is empty.
func DatabasePath(configured string) string {
	if configured == "" {
		configured = DefaultDatabasePath
	}
	return ExpandPath(configured)
}
