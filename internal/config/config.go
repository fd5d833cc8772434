// Package config handles calculator configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all settings.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Wall     WallConfig     `yaml:"wall"`
	Terrain  TerrainConfig  `yaml:"terrain"`
	Geocoder GeocoderConfig `yaml:"geocoder"`
	Server   ServerConfig   `yaml:"server"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SiteConfig holds the default place and local time.
type SiteConfig struct {
	Place          string `yaml:"place"`
	DateTime       string `yaml:"datetime"`        // Local wall-clock time at Place
	DateTimeLayout string `yaml:"datetime_layout"` // Go reference layout for DateTime
}

// WallConfig holds wall dimensions.
type WallConfig struct {
	HeightM float64 `yaml:"height_m"`
}

// TerrainConfig holds ground inclination.
type TerrainConfig struct {
	SlopeDeg  float64 `yaml:"slope_deg"`
	AspectDeg float64 `yaml:"aspect_deg"` // Compass bearing the ground inclines toward
}

// GeocoderConfig holds place-name lookup settings.
type GeocoderConfig struct {
	BaseURL   string        `yaml:"base_url"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MetricsPath string `yaml:"metrics_path"`
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Exporter    string  `yaml:"exporter"` // stdout
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"` // console | json
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			Place:          "Cuiabá",
			DateTime:       "2025-04-08 09:00",
			DateTimeLayout: "2006-01-02 15:04",
		},
		Wall: WallConfig{
			HeightM: 2.5,
		},
		Terrain: TerrainConfig{
			SlopeDeg:  5.0,
			AspectDeg: 180.0,
		},
		Geocoder: GeocoderConfig{
			BaseURL:   "https://nominatim.openstreetmap.org",
			UserAgent: "sombra_web",
			Timeout:   10 * time.Second,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			MetricsPath: "/metrics",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Exporter:    "stdout",
			ServiceName: "wallshadow",
			SampleRatio: 1.0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "console",
			LogFile: "",
		},
	}
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	var errs []error
	if !(c.Wall.HeightM > 0) {
		errs = append(errs, fmt.Errorf("wall.height_m must be positive, got %g", c.Wall.HeightM))
	}
	if c.Site.DateTimeLayout == "" {
		errs = append(errs, errors.New("site.datetime_layout is empty"))
	}
	if c.Geocoder.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("geocoder.timeout must be positive, got %s", c.Geocoder.Timeout))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is empty"))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_ratio must be in [0, 1], got %g", c.Tracing.SampleRatio))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}
