// Package quadtree drives level of detail for a cube-sphere planet. Each
// cube face is a quadtree of patches refined around the camera.
package quadtree

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/genesisforge/internal/config"
	"github.com/Faultbox/genesisforge/internal/engine/cubesphere"
	"github.com/Faultbox/genesisforge/internal/engine/scheduler"
	"github.com/Faultbox/genesisforge/internal/engine/terrain"
	"github.com/Faultbox/genesisforge/internal/logger"
	"github.com/Faultbox/genesisforge/pkg/math"
)

// ErrInvalidParams is returned for unusable globe options or noise parameters.
var ErrInvalidParams = errors.New("invalid globe parameters")

// Scheduler is the generation handle shared by every node of a globe.
type Scheduler interface {
	Submit(req scheduler.Request) (*scheduler.Future, error)
	Cancel(id uint64) bool
}

// Options configures a globe.
type Options struct {
	Radius        float64
	Resolution    int     // grid cells per patch edge
	MaxLevel      int     // deepest subdivision level
	SplitDistance float64 // K in K/(level+1)
	Params        terrain.NoiseParams
}

// DefaultOptions returns the reference globe settings.
func DefaultOptions() Options {
	return Options{
		Radius:        10,
		Resolution:    16,
		MaxLevel:      5,
		SplitDistance: 20,
		Params:        terrain.DefaultNoiseParams(),
	}
}

// OptionsFromConfig builds globe options, resolving a named preset.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	params := terrain.NoiseParams{
		Frequency:        cfg.Planet.Frequency,
		HeightMultiplier: cfg.Planet.HeightMultiplier,
		Seed:             cfg.Planet.Seed,
	}
	if cfg.Planet.Preset != "" {
		p, err := terrain.PresetByName(cfg.Planet.Preset)
		if err != nil {
			return Options{}, err
		}
		params = p.Params
	}
	opts := Options{
		Radius:        cfg.Planet.Radius,
		Resolution:    cfg.LOD.Resolution,
		MaxLevel:      cfg.LOD.MaxLevel,
		SplitDistance: cfg.LOD.SplitDistance,
		Params:        params,
	}
	return opts, opts.Validate()
}

// Validate reports whether the options can drive a globe.
func (o Options) Validate() error {
	switch {
	case o.Radius <= 0:
		return fmt.Errorf("%w: radius must be > 0, got %v", ErrInvalidParams, o.Radius)
	case o.Resolution < 1 || o.Resolution > terrain.MaxResolution:
		return fmt.Errorf("%w: resolution must be in [1, %d], got %d", ErrInvalidParams, terrain.MaxResolution, o.Resolution)
	case o.MaxLevel < 0:
		return fmt.Errorf("%w: max level must be >= 0, got %d", ErrInvalidParams, o.MaxLevel)
	case o.SplitDistance <= 0:
		return fmt.Errorf("%w: split distance must be > 0, got %v", ErrInvalidParams, o.SplitDistance)
	}
	if err := o.Params.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return nil
}

// Renderable is an active node's payload as seen by a rendering layer.
// The mesh is read-only.
type Renderable struct {
	Key   string
	Face  cubesphere.Face
	Level int
	UV    terrain.UVRange
	Mesh  *terrain.Mesh
}

// Stats summarises the current tree.
type Stats struct {
	Nodes     int `json:"nodes"`
	Leaves    int `json:"leaves"`
	Visible   int `json:"visible"`
	Requested int `json:"requested"`
	Ready     int `json:"ready"`
	Split     int `json:"split"`
	MaxDepth  int `json:"maxDepth"`
	Triangles int `json:"triangles"` // across visible nodes
}

// Globe owns one root node per cube face. It is driven from a single
// update goroutine and is not safe for concurrent use.
type Globe struct {
	sched  Scheduler
	opts   Options
	roots  []*Node
	log    *zap.Logger
	frames uint64
}

// New creates a globe and requests the six root patches.
func New(sched Scheduler, opts Options) (*Globe, error) {
	if sched == nil {
		return nil, errors.New("quadtree: nil scheduler")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	g := &Globe{
		sched: sched,
		opts:  opts,
		log:   logger.Named("quadtree"),
	}
	g.build()
	return g, nil
}

func (g *Globe) build() {
	faces := cubesphere.Faces()
	g.roots = make([]*Node, len(faces))
	for i, f := range faces {
		g.roots[i] = newNode(g, f, terrain.FullFace, 0, nil, f.String()+"/")
	}
}

// Options returns the globe settings.
func (g *Globe) Options() Options { return g.opts }

// Params returns the current noise parameters.
func (g *Globe) Params() terrain.NoiseParams { return g.opts.Params }

// Roots returns the six face roots in cubesphere.Faces order.
func (g *Globe) Roots() []*Node { return g.roots }

// Frames returns how many times Update has run.
func (g *Globe) Frames() uint64 { return g.frames }

// Update runs one LOD pass for the camera position.
func (g *Globe) Update(camera math.Vec3) {
	g.frames++
	for _, r := range g.roots {
		r.UpdateLOD(camera)
	}
}

// Rebuild tears the whole tree down and regenerates it with new noise
// parameters. Every previously generated payload is released.
func (g *Globe) Rebuild(params terrain.NoiseParams) error {
	if err := params.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	g.destroyRoots()
	g.opts.Params = params
	g.build()

	g.log.Info("globe rebuilt",
		zap.Float64("frequency", params.Frequency),
		zap.Float64("height_multiplier", params.HeightMultiplier),
		zap.Int64("seed", params.Seed),
	)
	return nil
}

// Close releases every node. The globe must not be used afterwards.
func (g *Globe) Close() {
	g.destroyRoots()
}

func (g *Globe) destroyRoots() {
	for _, r := range g.roots {
		r.destroy()
	}
	g.roots = nil
}

// Walk visits nodes depth first, parents before children. Returning false
// from fn skips the node's subtree.
func (g *Globe) Walk(fn func(n *Node) bool) {
	for _, r := range g.roots {
		walk(r, fn)
	}
}

func walk(n *Node, fn func(n *Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		walk(c, fn)
	}
}

// Renderables returns the payloads the rendering layer should display.
func (g *Globe) Renderables() []Renderable {
	var out []Renderable
	g.Walk(func(n *Node) bool {
		if n.Visible() {
			out = append(out, Renderable{
				Key:   n.key,
				Face:  n.face,
				Level: n.level,
				UV:    n.uv,
				Mesh:  n.mesh,
			})
			return false
		}
		return true
	})
	return out
}

// Stats walks the tree and counts nodes by state.
func (g *Globe) Stats() Stats {
	var s Stats
	g.Walk(func(n *Node) bool {
		s.Nodes++
		if n.level > s.MaxDepth {
			s.MaxDepth = n.level
		}
		switch n.State() {
		case StateRequested:
			s.Requested++
			s.Leaves++
		case StateReady:
			s.Ready++
			s.Leaves++
		case StateSplit:
			s.Split++
		}
		if n.Visible() {
			s.Visible++
			s.Triangles += n.mesh.TriangleCount()
		}
		return true
	})
	return s
}

var levelColors = [...][3]float32{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
	{1, 1, 0},
	{0, 1, 1},
	{1, 0, 1},
}

// LevelColor returns the debug tint for a subdivision level.
func LevelColor(level int) [3]float32 {
	if level < 0 {
		level = 0
	}
	return levelColors[level%len(levelColors)]
}
