package terrain

import "math"

// Biome is a contiguous elevation band with a fixed color rule.
type Biome int

const (
	BiomeSeaFloor Biome = iota
	BiomeBeach
	BiomeCoastal
	BiomeLowlandForest
	BiomeHighland
	BiomeRocky
	BiomeSnow
)

// Band thresholds. Each band is [lower, next lower).
const (
	BeachMin    = 0.0
	CoastalMin  = 0.005
	LowlandMin  = 0.02
	HighlandMin = 0.04
	RockyMin    = 0.07
	SnowMin     = 0.10
)

var biomeNames = [...]string{
	BiomeSeaFloor:      "Sea Floor",
	BiomeBeach:         "Beach",
	BiomeCoastal:       "Coastal Vegetation",
	BiomeLowlandForest: "Lowland Forest",
	BiomeHighland:      "Highland",
	BiomeRocky:         "Rocky Mountain",
	BiomeSnow:          "Snow Peaks",
}

// legend swatches, RGB hex
var biomeLegend = [...]uint32{
	BiomeSeaFloor:      0x4d8c73,
	BiomeBeach:         0xede0b1,
	BiomeCoastal:       0x80b34d,
	BiomeLowlandForest: 0x339933,
	BiomeHighland:      0x6b5c33,
	BiomeRocky:         0x807366,
	BiomeSnow:          0xe6e6f0,
}

func (b Biome) String() string {
	if b < BiomeSeaFloor || b > BiomeSnow {
		return "Unknown"
	}
	return biomeNames[b]
}

// LegendColor returns the representative swatch of the biome as 0xRRGGBB.
func (b Biome) LegendColor() uint32 {
	if b < BiomeSeaFloor || b > BiomeSnow {
		return 0
	}
	return biomeLegend[b]
}

var biomeFloors = [...]float64{
	BiomeSeaFloor:      math.Inf(-1),
	BiomeBeach:         BeachMin,
	BiomeCoastal:       CoastalMin,
	BiomeLowlandForest: LowlandMin,
	BiomeHighland:      HighlandMin,
	BiomeRocky:         RockyMin,
	BiomeSnow:          SnowMin,
}

// Range returns the band's elevation interval [lo, hi).
func (b Biome) Range() (lo, hi float64) {
	if b < BiomeSeaFloor || b > BiomeSnow {
		return math.NaN(), math.NaN()
	}
	if b == BiomeSnow {
		return SnowMin, math.Inf(1)
	}
	return biomeFloors[b], biomeFloors[b+1]
}

// Biomes lists every biome from lowest to highest band.
func Biomes() []Biome {
	return []Biome{BiomeSeaFloor, BiomeBeach, BiomeCoastal, BiomeLowlandForest, BiomeHighland, BiomeRocky, BiomeSnow}
}

// BiomeAt classifies an elevation into its band.
func BiomeAt(elevation float64) Biome {
	switch {
	case elevation < BeachMin:
		return BiomeSeaFloor
	case elevation < CoastalMin:
		return BiomeBeach
	case elevation < LowlandMin:
		return BiomeCoastal
	case elevation < HighlandMin:
		return BiomeLowlandForest
	case elevation < RockyMin:
		return BiomeHighland
	case elevation < SnowMin:
		return BiomeRocky
	default:
		return BiomeSnow
	}
}

// BiomeColor returns the vertex color for an elevation.
func BiomeColor(elevation float64) [3]float32 {
	var r, g, b float64

	switch BiomeAt(elevation) {
	case BiomeSeaFloor:
		// darker with depth, clamped at 20% below sea level
		depth := math.Max(-1.0, elevation*5.0)
		factor := 1.0 + depth*0.5
		r, g, b = 0.6*factor, 0.55*factor, 0.4*factor
	case BiomeBeach:
		r, g, b = 0.93, 0.87, 0.69
	case BiomeCoastal:
		r, g, b = 0.5, 0.7, 0.3
	case BiomeLowlandForest:
		r, g, b = 0.2, 0.6, 0.2
	case BiomeHighland:
		t := (elevation - HighlandMin) / (RockyMin - HighlandMin)
		r, g, b = 0.2+t*0.3, 0.5-t*0.2, 0.1
	case BiomeRocky:
		r, g, b = 0.5, 0.45, 0.4
	default:
		snow := math.Min(1.0, (elevation-SnowMin)*5.0)
		r, g, b = 0.7+snow*0.3, 0.7+snow*0.3, 0.75+snow*0.25
	}

	return [3]float32{float32(r), float32(g), float32(b)}
}
