package quadtree

import (
	gomath "math"
	"strconv"

	"go.uber.org/zap"

	"github.com/Faultbox/genesisforge/internal/engine/cubesphere"
	"github.com/Faultbox/genesisforge/internal/engine/scheduler"
	"github.com/Faultbox/genesisforge/internal/engine/terrain"
	"github.com/Faultbox/genesisforge/pkg/math"
)

// State is the LOD state of a node.
type State int

const (
	// StateRequested means generation was dispatched and no payload has arrived.
	StateRequested State = iota
	// StateReady means the node holds a payload and has no children.
	StateReady
	// StateSplit means the node holds a hidden payload and four children.
	StateSplit
)

var stateNames = [...]string{"requested", "ready", "split"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Node is one region of a cube face. Children are owned; parent is a
// back-reference only.
type Node struct {
	globe    *Globe
	face     cubesphere.Face
	uv       terrain.UVRange
	level    int
	key      string
	parent   *Node
	children []*Node

	future *scheduler.Future
	mesh   *terrain.Mesh
	err    error
	alive  bool
}

func newNode(g *Globe, face cubesphere.Face, uv terrain.UVRange, level int, parent *Node, key string) *Node {
	n := &Node{
		globe:  g,
		face:   face,
		uv:     uv,
		level:  level,
		key:    key,
		parent: parent,
		alive:  true,
	}
	n.request()
	return n
}

func (n *Node) request() {
	g := n.globe
	f, err := g.sched.Submit(scheduler.Request{
		FaceNormal: n.face.Normal(),
		UV:         n.uv,
		Resolution: g.opts.Resolution,
		Radius:     g.opts.Radius,
		Params:     g.opts.Params,
	})
	if err != nil {
		// the node stays Requested; siblings are unaffected
		n.err = err
		g.log.Warn("patch request rejected", zap.String("node", n.key), zap.Error(err))
		return
	}
	n.future = f
}

// Face returns the cube face the node belongs to.
func (n *Node) Face() cubesphere.Face { return n.face }

// UV returns the face-local region covered by the node.
func (n *Node) UV() terrain.UVRange { return n.uv }

// Level returns the subdivision depth, 0 for roots.
func (n *Node) Level() int { return n.level }

// Key identifies the node by face and quadrant path, e.g. "+x/031".
func (n *Node) Key() string { return n.key }

// Parent returns the parent node, nil for roots.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the four children or nil.
func (n *Node) Children() []*Node { return n.children }

// Mesh returns the payload, nil until generation completes.
func (n *Node) Mesh() *terrain.Mesh { return n.mesh }

// Err returns the submit or generation error that left the node without a payload.
func (n *Node) Err() error { return n.err }

// State returns the node's LOD state.
func (n *Node) State() State {
	switch {
	case len(n.children) > 0:
		return StateSplit
	case n.mesh != nil:
		return StateReady
	default:
		return StateRequested
	}
}

// UpdateLOD collects a finished payload, then splits or merges the node
// for the camera position, recursing into any children it keeps.
func (n *Node) UpdateLOD(camera math.Vec3) {
	n.poll()

	opts := n.globe.opts
	threshold := opts.SplitDistance / float64(n.level+1)
	if n.distance(camera) < threshold && n.level < opts.MaxLevel {
		n.Split()
		for _, c := range n.children {
			c.UpdateLOD(camera)
		}
		return
	}
	n.Merge()
}

// distance is infinite until a payload exists, so ungenerated nodes never split.
func (n *Node) distance(camera math.Vec3) float64 {
	if n.mesh == nil {
		return gomath.Inf(1)
	}
	return n.mesh.Center.Distance(camera)
}

func (n *Node) poll() {
	if n.future == nil || !n.future.Ready() {
		return
	}
	mesh, err := n.future.Result()
	n.future = nil
	if !n.alive {
		mesh.Release()
		return
	}
	if err != nil {
		n.err = err
		return
	}
	n.mesh = mesh
	n.err = nil
}

// Split creates the four quadrant children, each requesting its own patch.
// The node keeps its payload for a later merge. It returns false when the
// node already has children or sits at the maximum level.
func (n *Node) Split() bool {
	if !n.alive || len(n.children) > 0 || n.level >= n.globe.opts.MaxLevel {
		return false
	}
	quads := n.uv.Quadrants()
	n.children = make([]*Node, len(quads))
	for i, uv := range quads {
		n.children[i] = newNode(n.globe, n.face, uv, n.level+1, n, n.key+strconv.Itoa(i))
	}
	return true
}

// Merge destroys the children and makes the node the active renderable
// again. It returns false for a leaf.
func (n *Node) Merge() bool {
	if len(n.children) == 0 {
		return false
	}
	for _, c := range n.children {
		c.destroy()
	}
	n.children = nil
	return true
}

// destroy cancels outstanding generation and releases payloads for the
// whole subtree.
func (n *Node) destroy() {
	for _, c := range n.children {
		c.destroy()
	}
	n.children = nil
	n.alive = false

	if n.future != nil {
		if !n.globe.sched.Cancel(n.future.ID()) && n.future.Ready() {
			// fulfilled but never polled
			mesh, _ := n.future.Result()
			mesh.Release()
		}
		n.future = nil
	}
	n.mesh.Release()
	n.mesh = nil
}

// childrenReady reports whether all four children hold a payload.
func (n *Node) childrenReady() bool {
	if len(n.children) == 0 {
		return false
	}
	for _, c := range n.children {
		if c.mesh == nil {
			return false
		}
	}
	return true
}

// Visible reports whether the node is an active renderable. A split node
// stays visible until every child has a payload, so a region is never
// drawn twice and never left empty once generated.
func (n *Node) Visible() bool {
	if !n.alive || n.mesh == nil || n.childrenReady() {
		return false
	}
	for a := n.parent; a != nil; a = a.parent {
		if !a.childrenReady() {
			return false
		}
	}
	return true
}
