// Package primitives turns scene nodes into raylib draw calls: one unit mesh per node kind,
// one material per palette entry.
package primitives

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"hinge-builder/internal/scenegraph"
)

type meshSet struct {
	mesh rl.Mesh
	// model-space shift that puts the node position at the mesh center
	pivot rl.Matrix
	mtls  map[scenegraph.Material]rl.Material
}

var wireColor = rl.NewColor(20, 20, 20, 160)

// Registry is created before the window exists; GPU resources are allocated on first Draw.
type Registry struct {
	palette  Palette
	sets     map[scenegraph.Kind]*meshSet
	lit      litShader
	shaderUp bool

	viewPos  [3]float32
	lightDir [3]float32
}

// NewRegistry returns a registry drawing with palette.
func NewRegistry(palette Palette) *Registry {
	return &Registry{
		palette:  palette,
		sets:     make(map[scenegraph.Kind]*meshSet),
		lightDir: [3]float32{0.5, 1, 0.5},
	}
}

// SetView sets the camera position and the direction to the light. Call once per frame.
func (r *Registry) SetView(viewPos, lightDir [3]float32) {
	r.viewPos, r.lightDir = viewPos, lightDir
}

func (r *Registry) set(kind scenegraph.Kind) *meshSet {
	if s, ok := r.sets[kind]; ok {
		return s
	}
	if !r.shaderUp {
		r.lit = loadLitShader()
		r.shaderUp = true
	}
	s := &meshSet{pivot: rl.MatrixIdentity(), mtls: make(map[scenegraph.Material]rl.Material, len(r.palette))}
	switch kind {
	case scenegraph.KindHinge:
		s.mesh = rl.GenMeshSphere(0.5, 16, 16)
	case scenegraph.KindHandle:
		// cone base sits at y=0
		s.mesh = rl.GenMeshCone(0.5, 1, 24)
		s.pivot = rl.MatrixTranslate(0, -0.5, 0)
	default:
		s.mesh = rl.GenMeshCube(1, 1, 1)
	}
	for m, col := range r.palette {
		mtl := rl.LoadMaterialDefault()
		if albedo := mtl.GetMap(rl.MapAlbedo); albedo != nil {
			albedo.Color = col
		}
		if r.lit.ok {
			mtl.Shader = r.lit.shader
		}
		s.mtls[m] = mtl
	}
	r.sets[kind] = s
	return s
}

// Draw draws n if it is visible. Call between BeginMode3D and EndMode3D.
func (r *Registry) Draw(n scenegraph.Node) {
	if !n.Visible() {
		return
	}
	s := r.set(n.Kind())
	mtl, ok := s.mtls[n.Material()]
	if !ok {
		return
	}
	r.lit.apply(r.viewPos, r.lightDir)

	t := n.Transform()
	size := float32(n.Size())
	pos := rl.NewVector3(float32(t.Position[0]), float32(t.Position[1]), float32(t.Position[2]))
	rot := rl.QuaternionToMatrix(rl.NewQuaternion(
		float32(t.Rotation.V[0]), float32(t.Rotation.V[1]), float32(t.Rotation.V[2]), float32(t.Rotation.W)))

	m := rl.MatrixMultiply(s.pivot, rl.MatrixScale(size, size, size))
	m = rl.MatrixMultiply(m, rot)
	m = rl.MatrixMultiply(m, rl.MatrixTranslate(pos.X, pos.Y, pos.Z))
	rl.DrawMesh(s.mesh, mtl, m)

	// dynamic cubes rotate, so the outline is only exact for unrotated ones
	if n.Kind() == scenegraph.KindCube {
		rl.DrawCubeWiresV(pos, rl.NewVector3(size, size, size), wireColor)
	}
}

// Unload releases every GPU resource. Call before the window closes.
func (r *Registry) Unload() {
	for _, s := range r.sets {
		rl.UnloadMesh(&s.mesh)
	}
	r.lit.unload()
	r.sets = make(map[scenegraph.Kind]*meshSet)
	r.shaderUp = false
}
