package scenegraph

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// MemNode is the node type created by Memory.
type MemNode struct {
	kind      Kind
	size      float64
	transform Transform
	material  Material
	visible   bool
	removed   bool
}

func (n *MemNode) Kind() Kind           { return n.kind }
func (n *MemNode) Size() float64        { return n.size }
func (n *MemNode) Transform() Transform { return n.transform }
func (n *MemNode) Material() Material   { return n.material }
func (n *MemNode) Visible() bool        { return n.visible }
func (n *MemNode) SetMaterial(m Material) {
	n.material = m
}
func (n *MemNode) SetVisible(visible bool) {
	n.visible = visible
}

func (n *MemNode) SetTransform(position mgl64.Vec3, rotation mgl64.Quat) {
	n.transform = Transform{Position: position, Rotation: rotation}
}

// Removed reports whether the node was handed back to the graph.
func (n *MemNode) Removed() bool { return n.removed }

// Memory is an in-process scene graph. Nodes keep creation order so renderers draw them stably.
type Memory struct {
	nodes []*MemNode
}

// NewMemory returns an empty graph.
func NewMemory() *Memory {
	return &Memory{}
}

func defaultMaterial(kind Kind) Material {
	switch kind {
	case KindHinge:
		return MaterialHinge
	case KindHandle:
		return MaterialHandle
	default:
		return MaterialCube
	}
}

// CreateNode adds a visible node with the default material for its kind and no rotation.
func (m *Memory) CreateNode(kind Kind, size float64, position mgl64.Vec3) Node {
	n := &MemNode{
		kind:      kind,
		size:      size,
		transform: Transform{Position: position, Rotation: mgl64.QuatIdent()},
		material:  defaultMaterial(kind),
		visible:   true,
	}
	m.nodes = append(m.nodes, n)
	return n
}

// RemoveNode drops n from the graph. Unknown nodes are ignored.
func (m *Memory) RemoveNode(n Node) {
	for i, cur := range m.nodes {
		if Node(cur) == n {
			cur.removed = true
			m.nodes = append(m.nodes[:i], m.nodes[i+1:]...)
			return
		}
	}
}

// Nodes returns the live nodes in creation order.
func (m *Memory) Nodes() []*MemNode {
	out := make([]*MemNode, len(m.nodes))
	copy(out, m.nodes)
	return out
}

// Len returns the number of live nodes.
func (m *Memory) Len() int { return len(m.nodes) }

// HitTest intersects ray with the visible candidates. Cubes are treated as axis-aligned boxes
// around their position, every other kind as a sphere of diameter Size.
func (m *Memory) HitTest(ray Ray, candidates []Node) []Hit {
	dir := ray.Direction
	if dir.Len() == 0 {
		return nil
	}
	dir = dir.Normalize()
	var hits []Hit
	for _, n := range candidates {
		if n == nil || !n.Visible() {
			continue
		}
		var (
			d  float64
			ok bool
		)
		center := n.Transform().Position
		if n.Kind() == KindCube {
			half := n.Size() / 2
			d, ok = RayBox(ray.Origin, dir, center.Sub(mgl64.Vec3{half, half, half}), center.Add(mgl64.Vec3{half, half, half}))
		} else {
			d, ok = RaySphere(ray.Origin, dir, center, n.Size()/2)
		}
		if ok {
			hits = append(hits, Hit{Node: n, Distance: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

// RayBox is the slab test. dir must be normalized. A ray starting inside the box hits at 0.
func RayBox(origin, dir, lo, hi mgl64.Vec3) (float64, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	for i := 0; i < 3; i++ {
		if dir[i] == 0 {
			if origin[i] < lo[i] || origin[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - origin[i]) / dir[i]
		t2 := (hi[i] - origin[i]) / dir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return 0, true
	}
	return tmin, true
}

// RaySphere returns the nearest non-negative intersection distance. dir must be normalized.
func RaySphere(origin, dir, center mgl64.Vec3, radius float64) (float64, bool) {
	oc := origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// RayPlaneY intersects ray with the horizontal plane y = height.
func RayPlaneY(ray Ray, height float64) (mgl64.Vec3, bool) {
	if ray.Direction.Y() == 0 {
		return mgl64.Vec3{}, false
	}
	t := (height - ray.Origin.Y()) / ray.Direction.Y()
	if t < 0 {
		return mgl64.Vec3{}, false
	}
	return ray.Origin.Add(ray.Direction.Mul(t)), true
}
