package terrain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPreset is returned by PresetByName.
var ErrUnknownPreset = errors.New("unknown planet preset")

// Preset is a named set of noise parameters.
type Preset struct {
	Name        string
	Description string
	Params      NoiseParams
}

var presets = []Preset{
	{Name: "Earth-like", Description: "Balanced continents and oceans", Params: NoiseParams{Frequency: 1.0, HeightMultiplier: 0.1, Seed: 42}},
	{Name: "Mars-like", Description: "Rocky desert world", Params: NoiseParams{Frequency: 0.8, HeightMultiplier: 0.15, Seed: 128}},
	{Name: "Water World", Description: "Mostly ocean with small islands", Params: NoiseParams{Frequency: 1.2, HeightMultiplier: 0.05, Seed: 256}},
	{Name: "Mountain World", Description: "Extreme terrain with high peaks", Params: NoiseParams{Frequency: 1.5, HeightMultiplier: 0.25, Seed: 512}},
	{Name: "Smooth Planet", Description: "Gentle rolling hills", Params: NoiseParams{Frequency: 0.5, HeightMultiplier: 0.08, Seed: 1024}},
	{Name: "Chaotic", Description: "Wild, unpredictable terrain", Params: NoiseParams{Frequency: 3.0, HeightMultiplier: 0.2, Seed: 2048}},
}

// Presets returns a copy of the built-in planet presets.
func Presets() []Preset {
	return append([]Preset(nil), presets...)
}

// PresetByName looks a preset up case-insensitively.
func PresetByName(name string) (Preset, error) {
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}
