// Package config loads the optional allium.yaml project file: defaults for
// driver settings that command-line flags override.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up next to the
// sources.
const FileName = "allium.yaml"

// Config holds driver defaults.
type Config struct {
	// LogLevel is the interpreter trace verbosity, 0 through 3.
	LogLevel int `yaml:"log-level"`

	// Color toggles colored diagnostics.
	Color bool `yaml:"color"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{LogLevel: 0, Color: true}
}

// Load reads the configuration file from dir, falling back to defaults
// when the file does not exist.
func Load(dir string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", FileName, err)
	}
	if cfg.LogLevel < 0 || cfg.LogLevel > 3 {
		return cfg, fmt.Errorf("%s: log-level must be between 0 and 3", FileName)
	}
	return cfg, nil
}
