package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version   int             `yaml:"version"`
	RunMode   RunMode         `yaml:"-" validate:"oneof=development testing production"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	HTTP      HTTPConfig      `yaml:"http"`
	Inventory InventoryConfig `yaml:"inventory"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level LogLevel `yaml:"level" validate:"oneof=debug info warn error"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path    string `yaml:"path" validate:"required"`
	History int    `yaml:"history" validate:"min=0"` // Classification rows kept per network, 0 = unlimited
}

// HTTPConfig holds API server settings
type HTTPConfig struct {
	Addr string `yaml:"addr" validate:"required,hostname_port"`
}

// InventoryConfig points at the inventory file networks are loaded from
type InventoryConfig struct {
	Path     string   `yaml:"path,omitempty"`
	Watch    bool     `yaml:"watch"`
	Debounce Duration `yaml:"debounce"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
