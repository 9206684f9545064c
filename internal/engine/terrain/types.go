// Package terrain synthesizes cube-sphere terrain patches: fractal elevation,
// biome coloring and the triangle mesh handed to the renderer.
package terrain

import (
	"errors"
	"fmt"

	"github.com/Faultbox/genesisforge/pkg/math"
)

// ErrInvalidPatch is returned for requests that must never reach a worker.
var ErrInvalidPatch = errors.New("invalid patch request")

// MaxResolution bounds the grid size of a single patch.
const MaxResolution = 1024

// NoiseParams are the global noise settings of a generation session.
type NoiseParams struct {
	Frequency        float64 `json:"frequency" yaml:"frequency"`
	HeightMultiplier float64 `json:"heightMultiplier" yaml:"height_multiplier"`
	Seed             int64   `json:"seed" yaml:"seed"`
}

// DefaultNoiseParams returns the Earth-like defaults.
func DefaultNoiseParams() NoiseParams {
	return NoiseParams{Frequency: 1.0, HeightMultiplier: 0.1, Seed: 42}
}

// Validate checks frequency > 0 and height multiplier >= 0.
func (p NoiseParams) Validate() error {
	if !(p.Frequency > 0) {
		return fmt.Errorf("%w: frequency must be > 0, got %v", ErrInvalidPatch, p.Frequency)
	}
	if !(p.HeightMultiplier >= 0) {
		return fmt.Errorf("%w: height multiplier must be >= 0, got %v", ErrInvalidPatch, p.HeightMultiplier)
	}
	return nil
}

// UVRange is a rectangle of face-local parameter space, components in [-1, 1].
type UVRange struct {
	Min math.Vec2 `json:"min"`
	Max math.Vec2 `json:"max"`
}

// FullFace covers an entire cube face.
var FullFace = UVRange{Min: math.Vec2{X: -1, Y: -1}, Max: math.Vec2{X: 1, Y: 1}}

// Validate checks ordering and bounds.
func (r UVRange) Validate() error {
	inside := func(x float64) bool { return x >= -1 && x <= 1 }
	if !inside(r.Min.X) || !inside(r.Min.Y) || !inside(r.Max.X) || !inside(r.Max.Y) {
		return fmt.Errorf("%w: uv range %v outside [-1, 1]", ErrInvalidPatch, r)
	}
	if !(r.Min.X < r.Max.X) || !(r.Min.Y < r.Max.Y) {
		return fmt.Errorf("%w: degenerate uv range %v", ErrInvalidPatch, r)
	}
	return nil
}

// Mid returns the center of the range.
func (r UVRange) Mid() math.Vec2 {
	return r.Min.Mid(r.Max)
}

// Quadrants splits the range at its midpoint into bottom-left, bottom-right,
// top-left and top-right, in that order.
func (r UVRange) Quadrants() [4]UVRange {
	mid := r.Mid()
	return [4]UVRange{
		{Min: math.Vec2{X: r.Min.X, Y: r.Min.Y}, Max: math.Vec2{X: mid.X, Y: mid.Y}},
		{Min: math.Vec2{X: mid.X, Y: r.Min.Y}, Max: math.Vec2{X: r.Max.X, Y: mid.Y}},
		{Min: math.Vec2{X: r.Min.X, Y: mid.Y}, Max: math.Vec2{X: mid.X, Y: r.Max.Y}},
		{Min: math.Vec2{X: mid.X, Y: mid.Y}, Max: math.Vec2{X: r.Max.X, Y: r.Max.Y}},
	}
}

func (r UVRange) String() string {
	return fmt.Sprintf("[%g,%g]-[%g,%g]", r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}

// Mesh is the generated geometry of one patch, ready for GPU upload.
// Positions are world space, already scaled by radius and elevation.
// It is read-only once returned; Release drops the buffers.
type Mesh struct {
	Positions [][3]float32
	Colors    [][3]float32 // one per vertex, may be nil
	Indices   []uint32     // triangle list
	Center    math.Vec3    // surface point at the patch's uv midpoint
	Bounds    Bounds
}

// Bounds holds the axis-aligned bounding box of a patch.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	if m == nil {
		return 0
	}
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Indices) / 3
}

// Released reports whether Release has been called.
func (m *Mesh) Released() bool {
	return m == nil || m.Positions == nil
}

// Release drops the vertex, color and index buffers.
func (m *Mesh) Release() {
	if m == nil {
		return
	}
	m.Positions = nil
	m.Colors = nil
	m.Indices = nil
}
