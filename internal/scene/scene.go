package scene

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	rl "github.com/gen2brain/raylib-go/raylib"

	"hinge-builder/internal/grid"
	"hinge-builder/internal/primitives"
	"hinge-builder/internal/scenegraph"
)

const (
	gridExtent     = 12 // cells from the origin in each direction
	gridMinorAlpha = 60
	gridMajorAlpha = 140
	axisLineAlpha  = 220
	moveSpeed      = 0.1
	lookSpeed      = 0.1
)

// Scene is the raylib scene graph. Nodes are kept by the embedded in-memory graph; Scene adds
// raylib ray picking, a camera and drawing. The camera moves with WASD, Space and Shift, and
// looks around while the right mouse button is held.
type Scene struct {
	*scenegraph.Memory

	Camera      rl.Camera3D
	GridVisible bool

	grid   grid.Grid
	layerY func() float64
	prims  *primitives.Registry
}

// New returns a scene drawing the build grid g. layerY reports the current placement height;
// the editor grid is drawn half a cell below it.
func New(g grid.Grid, layerY func() float64, prims *primitives.Registry) *Scene {
	s := &Scene{
		Memory: scenegraph.NewMemory(),
		grid:   g,
		layerY: layerY,
		prims:  prims,
	}
	s.Camera.Position = rl.NewVector3(24, 20, 24)
	s.Camera.Target = rl.NewVector3(0, -3, 0)
	s.Camera.Up = rl.NewVector3(0, 1, 0)
	s.Camera.Fovy = 45
	s.Camera.Projection = rl.CameraPerspective
	s.GridVisible = true
	return s
}

// SetGridVisible sets whether the editor grid is drawn.
func (s *Scene) SetGridVisible(visible bool) {
	s.GridVisible = visible
}

// HitTest intersects ray with the visible candidates using raylib's collision helpers.
// Cubes are tested as boxes, other nodes as spheres of their size.
func (s *Scene) HitTest(ray scenegraph.Ray, candidates []scenegraph.Node) []scenegraph.Hit {
	r := rl.NewRay(toRL(ray.Origin), toRL(ray.Direction.Normalize()))
	var hits []scenegraph.Hit
	for _, n := range candidates {
		if n == nil || !n.Visible() {
			continue
		}
		p := n.Transform().Position
		h := float32(n.Size() / 2)
		var col rl.RayCollision
		if n.Kind() == scenegraph.KindCube {
			c := toRL(p)
			box := rl.NewBoundingBox(
				rl.NewVector3(c.X-h, c.Y-h, c.Z-h),
				rl.NewVector3(c.X+h, c.Y+h, c.Z+h))
			col = rl.GetRayCollisionBox(r, box)
		} else {
			col = rl.GetRayCollisionSphere(r, toRL(p), h)
		}
		if col.Hit {
			hits = append(hits, scenegraph.Hit{Node: n, Distance: float64(col.Distance)})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

// MouseRay is the pick ray under the mouse cursor.
func (s *Scene) MouseRay() scenegraph.Ray {
	r := rl.GetScreenToWorldRay(rl.GetMousePosition(), s.Camera)
	return scenegraph.Ray{Origin: fromRL(r.Position), Direction: fromRL(r.Direction)}
}

// Update moves the camera. Call once per frame unless the console has the keyboard.
func (s *Scene) Update() {
	move := rl.NewVector3(0, 0, 0)
	if rl.IsKeyDown(rl.KeyW) {
		move.X += moveSpeed
	}
	if rl.IsKeyDown(rl.KeyS) {
		move.X -= moveSpeed
	}
	if rl.IsKeyDown(rl.KeyD) {
		move.Y += moveSpeed
	}
	if rl.IsKeyDown(rl.KeyA) {
		move.Y -= moveSpeed
	}
	if rl.IsKeyDown(rl.KeySpace) {
		move.Z += moveSpeed
	}
	if rl.IsKeyDown(rl.KeyLeftShift) {
		move.Z -= moveSpeed
	}
	look := rl.NewVector3(0, 0, 0)
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		look.X = d.X * lookSpeed
		look.Y = d.Y * lookSpeed
	}
	rl.UpdateCameraPro(&s.Camera, move, look, -rl.GetMouseWheelMove())
}

// Draw renders the grid and every node of the graph. Call after ClearBackground and before
// 2D overlays.
func (s *Scene) Draw() {
	pos := s.Camera.Position
	s.prims.SetView([3]float32{pos.X, pos.Y, pos.Z}, [3]float32{0.5, 1, 0.5})
	rl.BeginMode3D(s.Camera)
	if s.GridVisible {
		s.drawBuildGrid()
	}
	for _, n := range s.Memory.Nodes() {
		s.prims.Draw(n)
	}
	rl.EndMode3D()
}

// drawBuildGrid draws cell borders on the floor of the current layer, plus axis lines through
// the grid origin. Reuses start/end vectors to avoid per-frame allocations in the hot loop.
func (s *Scene) drawBuildGrid() {
	minor := rl.NewColor(128, 128, 128, gridMinorAlpha)
	major := rl.NewColor(160, 160, 160, gridMajorAlpha)
	axisX := rl.NewColor(220, 80, 80, axisLineAlpha)
	axisZ := rl.NewColor(80, 80, 220, axisLineAlpha)

	cell := float32(s.grid.Cell)
	half := cell / 2
	ox, oz := float32(s.grid.Origin.X()), float32(s.grid.Origin.Z())
	y := float32(s.layerY()) - half
	lo, hi := -float32(gridExtent)*cell-half, float32(gridExtent)*cell+half

	var start, end rl.Vector3
	for i := -gridExtent; i <= gridExtent+1; i++ {
		c := minor
		if i == 0 || i == 1 {
			c = major
		}
		line := float32(i)*cell - half
		start.X, start.Y, start.Z = ox+line, y, oz+lo
		end.X, end.Y, end.Z = ox+line, y, oz+hi
		rl.DrawLine3D(start, end, c)
		start.X, start.Y, start.Z = ox+lo, y, oz+line
		end.X, end.Y, end.Z = ox+hi, y, oz+line
		rl.DrawLine3D(start, end, c)
	}

	start.X, start.Y, start.Z = ox+lo, y, oz
	end.X, end.Y, end.Z = ox+hi, y, oz
	rl.DrawLine3D(start, end, axisX)
	start.X, start.Y, start.Z = ox, y, oz+lo
	end.X, end.Y, end.Z = ox, y, oz+hi
	rl.DrawLine3D(start, end, axisZ)
}

func toRL(v mgl64.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v[0]), float32(v[1]), float32(v[2]))
}

func fromRL(v rl.Vector3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v.X), float64(v.Y), float64(v.Z)}
}
