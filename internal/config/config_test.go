package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Planet.Radius != 10 {
		t.Errorf("expected radius 10, got %v", cfg.Planet.Radius)
	}
	if cfg.Planet.Frequency != 1.0 {
		t.Errorf("expected frequency 1.0, got %v", cfg.Planet.Frequency)
	}
	if cfg.Planet.HeightMultiplier != 0.1 {
		t.Errorf("expected height multiplier 0.1, got %v", cfg.Planet.HeightMultiplier)
	}
	if cfg.Planet.Seed != 42 {
		t.Errorf("expected seed 42, got %d", cfg.Planet.Seed)
	}

	if cfg.LOD.MaxLevel != 5 {
		t.Errorf("expected max level 5, got %d", cfg.LOD.MaxLevel)
	}
	if cfg.LOD.SplitDistance != 20 {
		t.Errorf("expected split distance 20, got %v", cfg.LOD.SplitDistance)
	}
	if cfg.LOD.Resolution != 16 {
		t.Errorf("expected resolution 16, got %d", cfg.LOD.Resolution)
	}

	if cfg.Server.UpdateInterval != 50*time.Millisecond {
		t.Errorf("expected update interval 50ms, got %v", cfg.Server.UpdateInterval)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero radius", func(c *Config) { c.Planet.Radius = 0 }},
		{"zero frequency", func(c *Config) { c.Planet.Frequency = 0 }},
		{"negative height", func(c *Config) { c.Planet.HeightMultiplier = -0.1 }},
		{"negative max level", func(c *Config) { c.LOD.MaxLevel = -1 }},
		{"zero split distance", func(c *Config) { c.LOD.SplitDistance = 0 }},
		{"zero resolution", func(c *Config) { c.LOD.Resolution = 0 }},
		{"negative workers", func(c *Config) { c.Generation.Workers = -2 }},
		{"zero update interval", func(c *Config) { c.Server.UpdateInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestValidatePresetSkipsNoiseFields(t *testing.T) {
	cfg := Default()
	cfg.Planet.Preset = "Mars-like"
	cfg.Planet.Frequency = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset should override noise fields, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
planet:
  radius: 25
  frequency: 1.5
  height_multiplier: 0.25
  seed: 512

lod:
  max_level: 7
  split_distance: 40
  resolution: 32

generation:
  workers: 3
  pending_warn: 64

server:
  addr: "0.0.0.0:9000"
  update_interval: 100ms

logging:
  level: "debug"
  log_file: "planet.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Planet.Radius != 25 {
		t.Errorf("expected radius 25, got %v", cfg.Planet.Radius)
	}
	if cfg.Planet.Seed != 512 {
		t.Errorf("expected seed 512, got %d", cfg.Planet.Seed)
	}
	if cfg.LOD.MaxLevel != 7 {
		t.Errorf("expected max level 7, got %d", cfg.LOD.MaxLevel)
	}
	if cfg.LOD.Resolution != 32 {
		t.Errorf("expected resolution 32, got %d", cfg.LOD.Resolution)
	}
	if cfg.Generation.Workers != 3 {
		t.Errorf("expected 3 workers, got %d", cfg.Generation.Workers)
	}
	if cfg.Server.Addr != "0.0.0.0:9000" {
		t.Errorf("expected addr 0.0.0.0:9000, got %s", cfg.Server.Addr)
	}
	if cfg.Server.UpdateInterval != 100*time.Millisecond {
		t.Errorf("expected update interval 100ms, got %v", cfg.Server.UpdateInterval)
	}
	// Untouched by the file.
	if cfg.Server.WriteTimeout != 5*time.Second {
		t.Errorf("expected default write timeout 5s, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
planet:
  radius: not a number
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

func TestLoadFileRejectsInvalidValues(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("lod:\n  resolution: 0\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if _, err := LoadFile(configPath); !errors.Is(err, ErrInvalid) {
		t.Errorf("LoadFile() = %v, want ErrInvalid", err)
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

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("planet:\n  radius: 12\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "seed flag",
			setup: func() { *flagSeed = 0 },
			verify: func(cfg *Config) {
				if cfg.Planet.Seed != 0 {
					t.Errorf("expected seed 0, got %d", cfg.Planet.Seed)
				}
			},
			teardown: func() { *flagSeed = -1 },
		},
		{
			name:  "preset flag",
			setup: func() { *flagPreset = "Chaotic" },
			verify: func(cfg *Config) {
				if cfg.Planet.Preset != "Chaotic" {
					t.Errorf("expected preset Chaotic, got %s", cfg.Planet.Preset)
				}
			},
			teardown: func() { *flagPreset = "" },
		},
		{
			name: "radius and workers flags",
			setup: func() {
				*flagRadius = 6371
				*flagWorkers = 8
			},
			verify: func(cfg *Config) {
				if cfg.Planet.Radius != 6371 {
					t.Errorf("expected radius 6371, got %v", cfg.Planet.Radius)
				}
				if cfg.Generation.Workers != 8 {
					t.Errorf("expected 8 workers, got %d", cfg.Generation.Workers)
				}
			},
			teardown: func() {
				*flagRadius = 0
				*flagWorkers = 0
			},
		},
		{
			name:  "addr flag",
			setup: func() { *flagAddr = ":9999" },
			verify: func(cfg *Config) {
				if cfg.Server.Addr != ":9999" {
					t.Errorf("expected addr :9999, got %s", cfg.Server.Addr)
				}
			},
			teardown: func() { *flagAddr = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
planet:
  radius: 30
  seed: 7
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagRadius = 50
	defer func() {
		*flagConfig = ""
		*flagRadius = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Radius should be from flag (50), not file (30)
	if cfg.Planet.Radius != 50 {
		t.Errorf("expected radius 50 from flag, got %v", cfg.Planet.Radius)
	}

	// Seed should be from file (7) since no flag override
	if cfg.Planet.Seed != 7 {
		t.Errorf("expected seed 7 from file, got %d", cfg.Planet.Seed)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Planet.Preset = "Water World"
	cfg.LOD.MaxLevel = 3
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if loaded.Planet.Preset != "Water World" {
		t.Errorf("expected preset Water World, got %s", loaded.Planet.Preset)
	}
	if loaded.LOD.MaxLevel != 3 {
		t.Errorf("expected max level 3, got %d", loaded.LOD.MaxLevel)
	}
}
