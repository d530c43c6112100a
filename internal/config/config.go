// Package config provides layered configuration for horao.
//
// Files are overlaid in priority order (later wins):
//  1. built-in defaults
//  2. /etc/horao/default.yaml, then /etc/horao/<run_mode>.yaml
//  3. ~/.config/horao/default.yaml, then ~/.config/horao/<run_mode>.yaml
//  4. $HORAO_CONFIG (or the -config flag)
//  5. HORAO_* environment variables
//
// The run mode comes from $RUN_MODE and defaults to development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"horao/internal/validation"

	"gopkg.in/yaml.v3"
)

// Environment overrides
const (
	EnvLogLevel          = "HORAO_LOG_LEVEL"
	EnvDatabasePath      = "HORAO_DATABASE_PATH"
	EnvHTTPAddr          = "HORAO_HTTP_ADDR"
	EnvInventoryPath     = "HORAO_INVENTORY_PATH"
	EnvInventoryWatch    = "HORAO_INVENTORY_WATCH"
	EnvInventoryDebounce = "HORAO_INVENTORY_DEBOUNCE"
)

// Load resolves the configuration for the current process environment.
// It returns the files that contributed, lowest priority first.
func Load() (*Config, []string, error) {
	return LoadLayers(SearchDirs(), RunModeFromEnv(), os.Getenv(EnvConfigPath))
}

// LoadLayers overlays the config files found in dirs for the given run mode,
// then the explicit file (which must exist when set), then the environment.
func LoadLayers(dirs []string, mode RunMode, explicit string) (*Config, []string, error) {
	cfg := DefaultConfig()
	cfg.RunMode = mode

	paths := LayerPaths(dirs, mode, explicit)
	for _, path := range paths {
		if err := cfg.overlay(path); err != nil {
			return nil, paths, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, paths, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, paths, err
	}
	return cfg, paths, nil
}

// LoadFromPath loads defaults overlaid with a single file
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.overlay(path); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// overlay decodes a YAML file on top of the current values; keys absent
// from the file keep their previous value
func (c *Config) overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv applies HORAO_* overrides
func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = LogLevel(v)
	}
	if v := os.Getenv(EnvDatabasePath); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvHTTPAddr); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv(EnvInventoryPath); v != "" {
		c.Inventory.Path = v
	}
	if v := os.Getenv(EnvInventoryWatch); v != "" {
		watch, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvInventoryWatch, err)
		}
		c.Inventory.Watch = watch
	}
	if v := os.Getenv(EnvInventoryDebounce); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvInventoryDebounce, err)
		}
		c.Inventory.Debounce = Duration(d)
	}
	return nil
}

// Validate checks the merged configuration
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		RunMode:  RunModeDevelopment,
		Log:      LogConfig{Level: LogInfo},
		Database: DatabaseConfig{Path: "./horao.db", History: 100},
		HTTP:     HTTPConfig{Addr: ":8080"},
		Inventory: InventoryConfig{
			Debounce: Duration(500 * time.Millisecond),
		},
	}
}

// applyDefaults fills in values a layer blanked out
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.RunMode == "" {
		c.RunMode = RunModeDevelopment
	}
	if c.Log.Level == "" {
		c.Log.Level = LogInfo
	}
	if c.Database.Path == "" {
		c.Database.Path = "./horao.db"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Inventory.Debounce <= 0 {
		c.Inventory.Debounce = Duration(500 * time.Millisecond)
	}
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Run mode: %s, Log level: %s\n", c.RunMode, c.Log.Level)
	summary += fmt.Sprintf("Database: %s (history %d), HTTP: %s\n", c.Database.Path, c.Database.History, c.HTTP.Addr)
	if c.Inventory.Path != "" {
		summary += fmt.Sprintf("Inventory: %s (watch %t, debounce %s)", c.Inventory.Path, c.Inventory.Watch, c.Inventory.Debounce.Duration())
	} else {
		summary += "Inventory: none"
	}
	return summary
}
