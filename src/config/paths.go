package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const appDir = "ollamadesk"

// StoragePaths contains paths for application storage.
type StoragePaths struct {
	DatabasePath string
	SettingsPath string
	LogPath      string
}

// GetDefaultStoragePaths returns default storage paths using XDG base
// directories. Runtime state (the conversation database, logs) lives under
// XDG_STATE_HOME; the key-value settings file under XDG_DATA_HOME.
func GetDefaultStoragePaths() StoragePaths {
	return StoragePaths{
		DatabasePath: filepath.Join(xdg.StateHome, appDir, "conversations.db"),
		SettingsPath: filepath.Join(xdg.DataHome, appDir, "settings.json"),
		LogPath:      filepath.Join(xdg.StateHome, appDir, "logs"),
	}
}

// GetDefaultConfigPath returns the config file location under
// XDG_CONFIG_HOME.
func GetDefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appDir, "config.json")
}
