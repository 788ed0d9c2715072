// Package grid stores placed cubes by grid cell and by id.
package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"hinge-builder/internal/physics"
	"hinge-builder/internal/scenegraph"
)

// ErrCellOccupied is returned by Place when the target cell already holds a cube.
var ErrCellOccupied = errors.New("grid: cell occupied")

// Grid maps world positions to integer cell coordinates. Cell centers sit at Origin + k*Cell.
type Grid struct {
	Cell        float64
	Origin      mgl64.Vec3
	LayerHeight float64
}

// Key is a cell address. Two positions share a cell exactly when their keys are equal.
type Key [3]int

// KeyOf quantizes p to its cell: floor((p - Origin)/Cell + 0.5) per axis.
func (g Grid) KeyOf(p mgl64.Vec3) Key {
	var k Key
	for i := 0; i < 3; i++ {
		k[i] = int(math.Floor((p[i]-g.Origin[i])/g.Cell + 0.5))
	}
	return k
}

// Center returns the world position of cell k.
func (g Grid) Center(k Key) mgl64.Vec3 {
	return mgl64.Vec3{
		g.Origin[0] + float64(k[0])*g.Cell,
		g.Origin[1] + float64(k[1])*g.Cell,
		g.Origin[2] + float64(k[2])*g.Cell,
	}
}

// Snap moves p to the center of its cell.
func (g Grid) Snap(p mgl64.Vec3) mgl64.Vec3 {
	return g.Center(g.KeyOf(p))
}

// LayerY is the height of cube centers on the given build layer.
func (g Grid) LayerY(layer int) float64 {
	return g.Origin.Y() + float64(layer)*g.LayerHeight
}

// Cube is one placed unit cube.
type Cube struct {
	ID string
	// Key and Position are the placement cell. Physics may move the visual node away from it.
	Key      Key
	Position mgl64.Vec3
	Size     float64
	Fixed    bool

	// Selectable and Hingeable are the interaction capabilities granted by the current mode.
	Selectable bool
	Hingeable  bool

	Node scenegraph.Node
	Body physics.Body
}

func (c *Cube) String() string {
	return fmt.Sprintf("cube %s at %v", c.ID, c.Key)
}

// Bodies creates and releases the rigid body of a cube. The physics bridge implements it.
type Bodies interface {
	CreateBody(c *Cube) error
	RemoveBody(c *Cube)
}

// RemoveListener is told about every cube leaving the index.
type RemoveListener func(c *Cube)
