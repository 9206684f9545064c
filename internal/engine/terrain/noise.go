package terrain

import (
	"sync"

	"github.com/ojrac/opensimplex-go"

	"github.com/Faultbox/genesisforge/pkg/math"
)

// Fractal Brownian motion constants.
const (
	Octaves     = 5
	Persistence = 0.5
	Lacunarity  = 2.0
)

// Noise is a 3D coherent noise source returning values roughly in [-1, 1].
type Noise interface {
	Eval3(x, y, z float64) float64
}

var noiseBySeed sync.Map // int64 -> Noise

// NoiseForSeed returns the simplex noise source for a seed. Sources are
// immutable after construction and shared between workers.
func NoiseForSeed(seed int64) Noise {
	if n, ok := noiseBySeed.Load(seed); ok {
		return n.(Noise)
	}
	n, _ := noiseBySeed.LoadOrStore(seed, opensimplex.New(seed))
	return n.(Noise)
}

// Elevation evaluates fractal noise at a unit-sphere direction and scales it
// by the height multiplier. The result is a fraction of the planet radius.
func Elevation(n Noise, dir math.Vec3, params NoiseParams) float64 {
	elevation := 0.0
	amplitude := 1.0
	frequency := params.Frequency

	for i := 0; i < Octaves; i++ {
		elevation += n.Eval3(dir.X*frequency, dir.Y*frequency, dir.Z*frequency) * amplitude
		amplitude *= Persistence
		frequency *= Lacunarity
	}

	return elevation * params.HeightMultiplier
}

// SurfacePoint returns the world-space position for a direction and elevation.
// Negative elevation sinks below the nominal radius.
func SurfacePoint(dir math.Vec3, radius, elevation float64) math.Vec3 {
	return dir.Scale(radius * (1 + elevation))
}
