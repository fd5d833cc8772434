package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Site.Place != "Cuiabá" {
		t.Errorf("expected place Cuiabá, got %s", cfg.Site.Place)
	}
	if cfg.Site.DateTime != "2025-04-08 09:00" {
		t.Errorf("expected datetime 2025-04-08 09:00, got %s", cfg.Site.DateTime)
	}
	if _, err := time.Parse(cfg.Site.DateTimeLayout, cfg.Site.DateTime); err != nil {
		t.Errorf("default datetime does not match layout: %v", err)
	}

	if cfg.Wall.HeightM != 2.5 {
		t.Errorf("expected wall height 2.5, got %f", cfg.Wall.HeightM)
	}
	if cfg.Terrain.SlopeDeg != 5 {
		t.Errorf("expected slope 5, got %f", cfg.Terrain.SlopeDeg)
	}
	if cfg.Terrain.AspectDeg != 180 {
		t.Errorf("expected aspect 180, got %f", cfg.Terrain.AspectDeg)
	}

	if cfg.Geocoder.UserAgent != "sombra_web" {
		t.Errorf("expected user agent sombra_web, got %s", cfg.Geocoder.UserAgent)
	}
	if cfg.Geocoder.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", cfg.Geocoder.Timeout)
	}

	if cfg.Tracing.Enabled {
		t.Error("expected tracing to be disabled by default")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
site:
  place: "Lisboa"
  datetime: "2025-06-21 17:30"

wall:
  height_m: 3.2

terrain:
  slope_deg: 12.5
  aspect_deg: 270

geocoder:
  base_url: "http://localhost:9999"
  timeout: 5s

server:
  addr: ":9090"

logging:
  level: "debug"
  format: "json"
  log_file: "shadow.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Site.Place != "Lisboa" {
		t.Errorf("expected place Lisboa, got %s", cfg.Site.Place)
	}
	if cfg.Site.DateTimeLayout != "2006-01-02 15:04" {
		t.Errorf("layout should keep its default, got %s", cfg.Site.DateTimeLayout)
	}
	if cfg.Wall.HeightM != 3.2 {
		t.Errorf("expected height 3.2, got %f", cfg.Wall.HeightM)
	}
	if cfg.Terrain.SlopeDeg != 12.5 || cfg.Terrain.AspectDeg != 270 {
		t.Errorf("unexpected terrain %+v", cfg.Terrain)
	}
	if cfg.Geocoder.BaseURL != "http://localhost:9999" {
		t.Errorf("expected base url override, got %s", cfg.Geocoder.BaseURL)
	}
	if cfg.Geocoder.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.Geocoder.Timeout)
	}
	if cfg.Geocoder.UserAgent != "sombra_web" {
		t.Errorf("user agent should keep its default, got %s", cfg.Geocoder.UserAgent)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected addr :9090, got %s", cfg.Server.Addr)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" || cfg.Logging.LogFile != "shadow.log" {
		t.Errorf("unexpected logging %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
wall:
  height_m: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestLoadFromFileUnknownKey(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("wall:\n  heigth_m: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error for misspelt key")
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("empty file should keep defaults: %v", err)
	}
	if cfg.Wall.HeightM != 2.5 {
		t.Errorf("expected default height, got %f", cfg.Wall.HeightM)
	}
}

func TestLoadFromEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "env.yaml")
	if err := os.WriteFile(configPath, []byte("site:\n  place: \"Manaus\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfig, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Site.Place != "Manaus" {
		t.Errorf("expected place Manaus from %s, got %s", EnvConfig, cfg.Site.Place)
	}
}

func TestLoadFileEmptyPath(t *testing.T) {
	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Site.Place != Default().Site.Place {
		t.Errorf("expected defaults, got %+v", cfg.Site)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero height", func(c *Config) { c.Wall.HeightM = 0 }, "wall.height_m"},
		{"empty layout", func(c *Config) { c.Site.DateTimeLayout = "" }, "datetime_layout"},
		{"zero timeout", func(c *Config) { c.Geocoder.Timeout = 0 }, "geocoder.timeout"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"bad ratio", func(c *Config) { c.Tracing.SampleRatio = 1.5 }, "sample_ratio"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "wallshadow.yaml")
	if err := os.WriteFile(configPath, []byte("wall:\n  height_m: 1.8\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find wallshadow.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "addr flag",
			setup: func() { *flagAddr = "127.0.0.1:7000" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Server.Addr != "127.0.0.1:7000" {
					t.Errorf("expected addr 127.0.0.1:7000, got %s", cfg.Server.Addr)
				}
			},
			teardown: func() { *flagAddr = "" },
		},
		{
			name:  "json logs flag",
			setup: func() { *flagJSON = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Format != "json" {
					t.Errorf("expected json format, got %s", cfg.Logging.Format)
				}
			},
			teardown: func() { *flagJSON = false },
		},
		{
			name:  "tracing flag",
			setup: func() { *flagTracing = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Tracing.Enabled {
					t.Error("expected tracing to be enabled")
				}
			},
			teardown: func() { *flagTracing = false },
		},
		{
			name:  "log file flag",
			setup: func() { *flagLogFile = "/tmp/ws.log" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.LogFile != "/tmp/ws.log" {
					t.Errorf("expected log file /tmp/ws.log, got %s", cfg.Logging.LogFile)
				}
			},
			teardown: func() { *flagLogFile = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  addr: ":7070"
wall:
  height_m: 4
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagAddr = ":6060"
	defer func() {
		*flagConfig = ""
		*flagAddr = ""
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Addr != ":6060" {
		t.Errorf("expected addr :6060 from flag, got %s", cfg.Server.Addr)
	}
	if cfg.Wall.HeightM != 4 {
		t.Errorf("expected height 4 from file, got %f", cfg.Wall.HeightM)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("wall:\n  height_m: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected Load to reject negative wall height")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Site.Place = "Recife"
	cfg.Geocoder.Timeout = 3 * time.Second
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.Site.Place != "Recife" {
		t.Errorf("expected place Recife, got %s", loaded.Site.Place)
	}
	if loaded.Geocoder.Timeout != 3*time.Second {
		t.Errorf("expected timeout 3s, got %v", loaded.Geocoder.Timeout)
	}
}
