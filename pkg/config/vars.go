package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "fim"
	// DefaultCRS is NAD83 / Conus Albers.
	DefaultCRS = 5070
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/fim by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files.
// Returns ~/.cache/fim by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// NetworkCacheDir returns the directory of the derived network cache.
// Returns ~/.cache/fim/network by default.
func NetworkCacheDir(homeDir string) string {
	return filepath.Join(CacheDir(homeDir), "network")
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/fim/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/fim/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}
