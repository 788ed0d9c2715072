// Package scenegraph is the narrow view the builder core has of a rendering engine.
// The core only creates and removes nodes, changes their transform, material and visibility,
// and asks for ray hit-tests. It never draws. Memory is a headless implementation used by
// tests and as the node store for the raylib scene.
package scenegraph

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Kind tells the renderer which primitive a node is drawn as.
type Kind int

const (
	KindCube Kind = iota
	KindHinge
	KindHandle
)

func (k Kind) String() string {
	switch k {
	case KindCube:
		return "cube"
	case KindHinge:
		return "hinge"
	case KindHandle:
		return "handle"
	default:
		return "unknown"
	}
}

// Material is a named look. The renderer maps each one to its own colors.
type Material int

const (
	MaterialCube Material = iota
	MaterialCubeSelected
	MaterialCubeFixed
	MaterialHinge
	MaterialHingeHover
	MaterialHingeSelected
	MaterialHandle
)

// Transform is a node's world position and orientation.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// Node is one visual object owned by the scene graph.
type Node interface {
	Kind() Kind
	// Size is the edge length for cubes and the diameter for hinge markers and handles.
	Size() float64
	Transform() Transform
	SetTransform(position mgl64.Vec3, rotation mgl64.Quat)
	Material() Material
	SetMaterial(m Material)
	Visible() bool
	SetVisible(visible bool)
}

// Ray is a half-line used for picking. Direction does not need to be normalized.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// Hit is one node crossed by a ray, Distance measured along the normalized direction.
type Hit struct {
	Node     Node
	Distance float64
}

// Graph creates, removes and hit-tests nodes.
type Graph interface {
	CreateNode(kind Kind, size float64, position mgl64.Vec3) Node
	RemoveNode(n Node)
	// HitTest returns the visible nodes among candidates crossed by ray, nearest first.
	HitTest(ray Ray, candidates []Node) []Hit
}
