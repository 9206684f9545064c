package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagSeed    = flag.Int64("seed", -1, "Terrain noise seed")
	flagPreset  = flag.String("preset", "", "Planet preset name")
	flagRadius  = flag.Float64("radius", 0, "Planet radius")
	flagWorkers = flag.Int("workers", 0, "Mesh generation workers")
	flagAddr    = flag.String("addr", "", "Viewer listen address")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSeed >= 0 {
		cfg.Planet.Seed = *flagSeed
	}
	if *flagPreset != "" {
		cfg.Planet.Preset = *flagPreset
	}
	if *flagRadius > 0 {
		cfg.Planet.Radius = *flagRadius
	}
	if *flagWorkers > 0 {
		cfg.Generation.Workers = *flagWorkers
	}
	if *flagAddr != "" {
		cfg.Server.Addr = *flagAddr
	}
}
