package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const appDirName = "taskchat"

// DefaultDatabasePath returns the default sqlite database location under
// XDG_STATE_HOME.
func DefaultDatabasePath() string {
	return filepath.Join(xdg.StateHome, appDirName, "taskchat.db")
}

// DefaultConfigPath returns the default user config file location under
// XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appDirName, "config.json")
}
