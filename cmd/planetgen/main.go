// planetgen is a CLI utility for generating and inspecting planet terrain.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/genesisforge/internal/config"
	"github.com/Faultbox/genesisforge/internal/engine/terrain"
	"github.com/Faultbox/genesisforge/internal/logger"
	"github.com/Faultbox/genesisforge/pkg/math"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "presets":
		cmdPresets(args)
	case "legend":
		cmdLegend(args)
	case "patch":
		cmdPatch(args)
	case "fly":
		cmdFly(args)
	case "export", "x":
		cmdExport(args)
	case "watch":
		cmdWatch(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`planetgen - cube-sphere planet terrain utility

Usage:
  planetgen <command> [options]

Commands:
  presets                            List planet presets
  legend                             Show biome bands and colors
  patch [-face +x] [-uv a,b,c,d]     Generate one patch and print stats
  fly [-from 60] [-to 12] [-frames]  Simulate a camera approach, print LOD per frame
  export -o <file.obj[.zst]>         Settle the tree for a camera and write OBJ
  watch [-url ws://host/ws]          Connect to planetd and print the stream
  config [-o path]                   Write the effective config as YAML

Common options:
  -config <file>   Config file (defaults < file < flags)
  -preset <name>   Planet preset
  -seed <n>        Noise seed
  -debug           Debug logging

Examples:
  planetgen patch -face -y -res 8
  planetgen fly -preset "Mountain World" -frames 120
  planetgen export -camera 12,0,0 -lod-colors -o globe.obj.zst`)
}

// commonFlags are shared by commands that build a globe.
type commonFlags struct {
	configPath string
	preset     string
	seed       int64
	debug      bool
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	c := &commonFlags{}
	fs.StringVar(&c.configPath, "config", "", "Path to config file")
	fs.StringVar(&c.preset, "preset", "", "Planet preset name")
	fs.Int64Var(&c.seed, "seed", -1, "Terrain noise seed")
	fs.BoolVar(&c.debug, "debug", false, "Enable debug logging")
	return c
}

// load resolves the config and initialises the logger. Commands print their
// own results, so logging defaults to warnings only.
func (c *commonFlags) load() *config.Config {
	cfg := config.Default()
	if c.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(c.configPath); err != nil {
			fatalf("Config error: %v", err)
		}
	}
	if c.preset != "" {
		cfg.Planet.Preset = c.preset
	}
	if cfg.Planet.Preset != "" {
		// flatten so -seed can override a preset's seed
		p, err := terrain.PresetByName(cfg.Planet.Preset)
		if err != nil {
			fatalf("Error: %v", err)
		}
		cfg.Planet.Preset = ""
		cfg.Planet.Frequency = p.Params.Frequency
		cfg.Planet.HeightMultiplier = p.Params.HeightMultiplier
		cfg.Planet.Seed = p.Params.Seed
	}
	if c.seed >= 0 {
		cfg.Planet.Seed = c.seed
	}

	level := "warn"
	if c.debug {
		level = "debug"
	}
	if err := logger.Init(level, cfg.Logging.LogFile); err != nil {
		fatalf("Logger error: %v", err)
	}
	return cfg
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	logger.Sync()
	os.Exit(1)
}

// parseFloats parses exactly n comma-separated numbers.
func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma-separated numbers, got %q", n, s)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseVec3(s string) (math.Vec3, error) {
	v, err := parseFloats(s, 3)
	if err != nil {
		return math.Vec3{}, err
	}
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}
