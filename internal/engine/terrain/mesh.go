package terrain

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/genesisforge/internal/engine/cubesphere"
	"github.com/Faultbox/genesisforge/pkg/math"
)

// ValidatePatch rejects requests that cannot produce a mesh.
func ValidatePatch(faceNormal math.Vec3, uv UVRange, resolution int, radius float64, params NoiseParams) error {
	if gomath.Abs(faceNormal.Length()-1) > 1e-9 {
		return fmt.Errorf("%w: face normal %v is not unit length", ErrInvalidPatch, faceNormal)
	}
	if err := uv.Validate(); err != nil {
		return err
	}
	if resolution <= 0 || resolution > MaxResolution {
		return fmt.Errorf("%w: resolution must be in [1, %d], got %d", ErrInvalidPatch, MaxResolution, resolution)
	}
	if !(radius > 0) {
		return fmt.Errorf("%w: radius must be > 0, got %v", ErrInvalidPatch, radius)
	}
	return params.Validate()
}

// GeneratePatch builds a (resolution+1)² vertex grid over uv, row-major,
// displaced by fractal noise and colored by biome. Identical inputs always
// produce bit-identical buffers.
func GeneratePatch(faceNormal math.Vec3, uv UVRange, resolution int, radius float64, params NoiseParams) (*Mesh, error) {
	if err := ValidatePatch(faceNormal, uv, resolution, radius, params); err != nil {
		return nil, err
	}

	noise := NoiseForSeed(params.Seed)
	side := resolution + 1
	vertexCount := side * side

	mesh := &Mesh{
		Positions: make([][3]float32, vertexCount),
		Colors:    make([][3]float32, vertexCount),
		Indices:   GridIndices(resolution),
		Bounds: Bounds{
			Min: [3]float32{gomath.MaxFloat32, gomath.MaxFloat32, gomath.MaxFloat32},
			Max: [3]float32{-gomath.MaxFloat32, -gomath.MaxFloat32, -gomath.MaxFloat32},
		},
	}

	span := uv.Max.Sub(uv.Min)
	for y := 0; y <= resolution; y++ {
		v := uv.Min.Y + span.Y*(float64(y)/float64(resolution))
		for x := 0; x <= resolution; x++ {
			u := uv.Min.X + span.X*(float64(x)/float64(resolution))

			dir := cubesphere.MapToSphere(faceNormal, u, v)
			elevation := Elevation(noise, dir, params)
			pos := SurfacePoint(dir, radius, elevation).Array32()

			i := y*side + x
			mesh.Positions[i] = pos
			mesh.Colors[i] = BiomeColor(elevation)
			updateBounds(&mesh.Bounds, pos)
		}
	}

	mid := uv.Mid()
	centerDir := cubesphere.MapToSphere(faceNormal, mid.X, mid.Y)
	mesh.Center = SurfacePoint(centerDir, radius, Elevation(noise, centerDir, params))

	return mesh, nil
}

// GridIndices triangulates a resolution×resolution cell grid. For the cell
// corners a (x,y), b (x+1,y), c (x,y+1), d (x+1,y+1) it emits (a,c,b) and
// (b,c,d), keeping the same winding for every cell.
func GridIndices(resolution int) []uint32 {
	if resolution <= 0 {
		return nil
	}
	side := uint32(resolution + 1)
	indices := make([]uint32, 0, resolution*resolution*6)

	for y := uint32(0); y < uint32(resolution); y++ {
		for x := uint32(0); x < uint32(resolution); x++ {
			a := y*side + x
			b := y*side + x + 1
			c := (y+1)*side + x
			d := (y+1)*side + x + 1

			indices = append(indices, a, c, b)
			indices = append(indices, b, c, d)
		}
	}
	return indices
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}
