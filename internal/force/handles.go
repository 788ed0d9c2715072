package force

import (
	"github.com/go-gl/mathgl/mgl64"

	"hinge-builder/internal/scenegraph"
)

// HandleSize is the extent of a handle marker.
const HandleSize = 1.0

var axes = [6]mgl64.Vec3{
	{0, 1, 0},
	{0, -1, 0},
	{-1, 0, 0},
	{1, 0, 0},
	{0, 0, 1},
	{0, 0, -1},
}

// Handle is a directional marker next to the selected cube.
type Handle struct {
	// Axis is the unit direction from the cube center to the handle.
	Axis     mgl64.Vec3
	Position mgl64.Vec3
	Node     scenegraph.Node
}

// Handles manages the six axis handles shown around one cube.
type Handles struct {
	graph  scenegraph.Graph
	offset float64
	list   []*Handle
}

// NewHandles places handles gap units outside the faces of a cube of cubeSize.
func NewHandles(graph scenegraph.Graph, cubeSize, gap float64) *Handles {
	return &Handles{graph: graph, offset: cubeSize/2 + gap}
}

// Show replaces any current handles with six new ones around center.
func (h *Handles) Show(center mgl64.Vec3) {
	h.Hide()
	up := mgl64.Vec3{0, 1, 0}
	for _, axis := range axes {
		pos := center.Add(axis.Mul(h.offset))
		n := h.graph.CreateNode(scenegraph.KindHandle, HandleSize, pos)
		n.SetTransform(pos, mgl64.QuatBetweenVectors(up, axis))
		h.list = append(h.list, &Handle{Axis: axis, Position: pos, Node: n})
	}
}

// Follow moves the handles to surround center.
func (h *Handles) Follow(center mgl64.Vec3) {
	for _, hd := range h.list {
		hd.Position = center.Add(hd.Axis.Mul(h.offset))
		hd.Node.SetTransform(hd.Position, hd.Node.Transform().Rotation)
	}
}

// Hide removes every handle.
func (h *Handles) Hide() {
	for _, hd := range h.list {
		h.graph.RemoveNode(hd.Node)
	}
	h.list = nil
}

// Active reports whether handles are shown.
func (h *Handles) Active() bool { return len(h.list) > 0 }

// All returns the shown handles.
func (h *Handles) All() []*Handle { return append([]*Handle(nil), h.list...) }

// ByNode returns the handle drawn by n.
func (h *Handles) ByNode(n scenegraph.Node) (*Handle, bool) {
	for _, hd := range h.list {
		if hd.Node == n {
			return hd, true
		}
	}
	return nil, false
}

// Nodes returns the handle nodes, for hit-testing.
func (h *Handles) Nodes() []scenegraph.Node {
	out := make([]scenegraph.Node, 0, len(h.list))
	for _, hd := range h.list {
		out = append(out, hd.Node)
	}
	return out
}
