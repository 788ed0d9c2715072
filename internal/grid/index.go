package grid

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"hinge-builder/internal/scenegraph"
)

// Index holds the placed cubes. It keeps two explicit maps, one by cell and one by id.
// Every cube in the index has a body; a cube whose body cannot be created is never inserted.
type Index struct {
	grid      Grid
	cubeSize  float64
	graph     scenegraph.Graph
	bodies    Bodies
	byKey     map[Key]*Cube
	byID      map[string]*Cube
	listeners []RemoveListener
}

// NewIndex returns an empty index placing cubes of cubeSize on g.
func NewIndex(g Grid, cubeSize float64, graph scenegraph.Graph, bodies Bodies) *Index {
	return &Index{
		grid:     g,
		cubeSize: cubeSize,
		graph:    graph,
		bodies:   bodies,
		byKey:    make(map[Key]*Cube),
		byID:     make(map[string]*Cube),
	}
}

// Grid returns the quantization used by the index.
func (x *Index) Grid() Grid { return x.grid }

// CubeSize returns the edge length of placed cubes.
func (x *Index) CubeSize() float64 { return x.cubeSize }

// OnRemove registers fn to run after a cube is removed (including by Clear).
func (x *Index) OnRemove(fn RemoveListener) {
	x.listeners = append(x.listeners, fn)
}

// Place puts a new dynamic cube in the cell containing position.
func (x *Index) Place(position mgl64.Vec3) (*Cube, error) {
	return x.PlaceWithID(uuid.NewString(), position, false)
}

// PlaceWithID places a cube with a known id, used when a saved scene is restored.
// It fails with ErrCellOccupied if the cell or the id is taken. If the body cannot be
// created the visual node is released and nothing is inserted.
func (x *Index) PlaceWithID(id string, position mgl64.Vec3, fixed bool) (*Cube, error) {
	key := x.grid.KeyOf(position)
	if c, ok := x.byKey[key]; ok {
		return nil, fmt.Errorf("%w: %v holds %s", ErrCellOccupied, key, c.ID)
	}
	if _, ok := x.byID[id]; ok {
		return nil, fmt.Errorf("%w: id %s already placed", ErrCellOccupied, id)
	}
	center := x.grid.Center(key)
	c := &Cube{
		ID:       id,
		Key:      key,
		Position: center,
		Size:     x.cubeSize,
		Fixed:    fixed,
		Node:     x.graph.CreateNode(scenegraph.KindCube, x.cubeSize, center),
	}
	if fixed {
		c.Node.SetMaterial(scenegraph.MaterialCubeFixed)
	}
	if err := x.bodies.CreateBody(c); err != nil {
		x.graph.RemoveNode(c.Node)
		return nil, err
	}
	x.byKey[key] = c
	x.byID[id] = c
	return c, nil
}

// Remove takes c out of the index, releases its body and node and notifies listeners.
// It reports false if c was not in the index.
func (x *Index) Remove(c *Cube) bool {
	if c == nil || x.byID[c.ID] != c {
		return false
	}
	delete(x.byKey, c.Key)
	delete(x.byID, c.ID)
	x.bodies.RemoveBody(c)
	x.graph.RemoveNode(c.Node)
	for _, fn := range x.listeners {
		fn(c)
	}
	return true
}

// At returns the cube occupying the cell that contains position.
func (x *Index) At(position mgl64.Vec3) (*Cube, bool) {
	c, ok := x.byKey[x.grid.KeyOf(position)]
	return c, ok
}

// AtKey returns the cube in cell k.
func (x *Index) AtKey(k Key) (*Cube, bool) {
	c, ok := x.byKey[k]
	return c, ok
}

// ByID returns the cube with the given id.
func (x *Index) ByID(id string) (*Cube, bool) {
	c, ok := x.byID[id]
	return c, ok
}

// ByNode returns the cube drawn by n.
func (x *Index) ByNode(n scenegraph.Node) (*Cube, bool) {
	for _, c := range x.byID {
		if c.Node == n {
			return c, true
		}
	}
	return nil, false
}

// All returns every cube. Order is unspecified.
func (x *Index) All() []*Cube {
	out := make([]*Cube, 0, len(x.byID))
	for _, c := range x.byID {
		out = append(out, c)
	}
	return out
}

// Nodes returns the visual nodes of every cube, for hit-testing.
func (x *Index) Nodes() []scenegraph.Node {
	out := make([]scenegraph.Node, 0, len(x.byID))
	for _, c := range x.byID {
		out = append(out, c.Node)
	}
	return out
}

// Len returns the number of cubes.
func (x *Index) Len() int { return len(x.byID) }

// Clear removes every cube, releasing all bodies.
func (x *Index) Clear() {
	for _, c := range x.All() {
		x.Remove(c)
	}
}
