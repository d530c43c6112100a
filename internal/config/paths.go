package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath is the environment variable for an explicit config file
	EnvConfigPath = "HORAO_CONFIG"
	// ConfigDirName is the config directory name under /etc and XDG
	ConfigDirName = "horao"
	// DefaultFileName is the base layer inside each config directory
	DefaultFileName = "default.yaml"
)

// SearchDirs returns the config directories in overlay order:
// 1. /etc/horao (system-wide)
// 2. $XDG_CONFIG_HOME/horao, or ~/.config/horao (user)
func SearchDirs() []string {
	dirs := []string{filepath.Join("/etc", ConfigDirName)}

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		dirs = append(dirs, filepath.Join(xdgHome, ConfigDirName))
	} else if home := os.Getenv("HOME"); home != "" {
		dirs = append(dirs, filepath.Join(home, ".config", ConfigDirName))
	}

	return dirs
}

// LayerPaths lists the existing config files for a run mode, lowest
// priority first: each directory contributes default.yaml then
// <run_mode>.yaml, and an explicit file comes last.
func LayerPaths(dirs []string, mode RunMode, explicit string) []string {
	var paths []string
	for _, dir := range dirs {
		for _, name := range []string{DefaultFileName, string(mode) + ".yaml"} {
			path := filepath.Join(dir, name)
			if fileExists(path) {
				paths = append(paths, path)
			}
		}
	}
	if explicit != "" {
		paths = append(paths, explicit)
	}
	return paths
}

// DefaultConfigPath returns the preferred location for a new config file
// Prefers XDG config home, falls back to working directory
func DefaultConfigPath() string {
	// Prefer XDG config home
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, ConfigDirName, DefaultFileName)
	}

	// Default XDG location
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", ConfigDirName, DefaultFileName)
	}

	// Fallback to working directory
	return "horao.yaml"
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir(configPath string) error {
	dir := filepath.Dir(configPath)
	return os.MkdirAll(dir, 0755)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
