package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvConfig names the environment variable that may point at a config file.
const EnvConfig = "WALLSHADOW_CONFIG"

// Load layers defaults, the resolved config file and command-line flags, then
// validates the result.
func Load() (*Config, error) {
	cfg, err := LoadFile(resolveConfigPath())
	if err != nil {
		return nil, err
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFile returns the defaults overlaid with the YAML at path. An empty
// path yields the defaults alone. The result is not validated.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if err := loadFromFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	return cfg, nil
}

// resolveConfigPath prefers -config, then $WALLSHADOW_CONFIG, then the
// search locations.
func resolveConfigPath() string {
	if p := ConfigPath(); p != "" {
		return p
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return findConfigFile()
}

// findConfigFile returns the first existing file among ./wallshadow.yaml and
// ConfigDir()/config.yaml.
func findConfigFile() string {
	for _, path := range []string{
		"wallshadow.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	} {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir is the per-user directory holding config.yaml.
func ConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "wallshadow")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".wallshadow")
}

// loadFromFile merges the YAML at path into cfg. Unknown keys are errors so
// a misspelt setting does not silently fall back to its default.
func loadFromFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
