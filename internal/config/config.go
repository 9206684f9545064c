// Package config handles planet engine configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid config")

// Config holds all engine settings.
type Config struct {
	Planet     PlanetConfig     `yaml:"planet"`
	LOD        LODConfig        `yaml:"lod"`
	Generation GenerationConfig `yaml:"generation"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// PlanetConfig holds the globe shape and noise parameters.
// A non-empty Preset overrides Frequency, HeightMultiplier and Seed.
type PlanetConfig struct {
	Radius           float64 `yaml:"radius"`
	Preset           string  `yaml:"preset"`
	Frequency        float64 `yaml:"frequency"`
	HeightMultiplier float64 `yaml:"height_multiplier"`
	Seed             int64   `yaml:"seed"`
}

// LODConfig holds quadtree subdivision settings.
type LODConfig struct {
	MaxLevel      int     `yaml:"max_level"`
	SplitDistance float64 `yaml:"split_distance"` // K in K/(level+1)
	Resolution    int     `yaml:"resolution"`     // grid cells per patch edge
}

// GenerationConfig holds mesh generation worker settings.
type GenerationConfig struct {
	Workers     int `yaml:"workers"`      // 0 = GOMAXPROCS
	PendingWarn int `yaml:"pending_warn"` // pending requests before a leak warning
}

// ServerConfig holds viewer stream settings.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	UpdateInterval time.Duration `yaml:"update_interval"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Planet: PlanetConfig{
			Radius:           10,
			Frequency:        1.0,
			HeightMultiplier: 0.1,
			Seed:             42,
		},
		LOD: LODConfig{
			MaxLevel:      5,
			SplitDistance: 20,
			Resolution:    16,
		},
		Generation: GenerationConfig{
			Workers:     0,
			PendingWarn: 512,
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8088",
			UpdateInterval: 50 * time.Millisecond,
			WriteTimeout:   5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks that every setting is usable by the engine.
func (c *Config) Validate() error {
	switch {
	case c.Planet.Radius <= 0:
		return fmt.Errorf("%w: planet.radius must be > 0, got %v", ErrInvalid, c.Planet.Radius)
	case c.Planet.Preset == "" && c.Planet.Frequency <= 0:
		return fmt.Errorf("%w: planet.frequency must be > 0, got %v", ErrInvalid, c.Planet.Frequency)
	case c.Planet.Preset == "" && c.Planet.HeightMultiplier < 0:
		return fmt.Errorf("%w: planet.height_multiplier must be >= 0, got %v", ErrInvalid, c.Planet.HeightMultiplier)
	case c.LOD.MaxLevel < 0:
		return fmt.Errorf("%w: lod.max_level must be >= 0, got %d", ErrInvalid, c.LOD.MaxLevel)
	case c.LOD.SplitDistance <= 0:
		return fmt.Errorf("%w: lod.split_distance must be > 0, got %v", ErrInvalid, c.LOD.SplitDistance)
	case c.LOD.Resolution <= 0:
		return fmt.Errorf("%w: lod.resolution must be > 0, got %d", ErrInvalid, c.LOD.Resolution)
	case c.Generation.Workers < 0:
		return fmt.Errorf("%w: generation.workers must be >= 0, got %d", ErrInvalid, c.Generation.Workers)
	case c.Server.UpdateInterval <= 0:
		return fmt.Errorf("%w: server.update_interval must be > 0, got %v", ErrInvalid, c.Server.UpdateInterval)
	}
	return nil
}
