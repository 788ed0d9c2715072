// Package adjacency decides where hinge points may sit between two cubes.
package adjacency

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrNoSharedEdge means two cubes share neither a face nor a horizontal corner.
var ErrNoSharedEdge = errors.New("adjacency: no shared edge or vertex")

// Edge classifies a hinge candidate.
type Edge string

const (
	Front  Edge = "front"
	Back   Edge = "back"
	Left   Edge = "left"
	Right  Edge = "right"
	Corner Edge = "corner"
)

// Valid reports whether e is one of the five classifications.
func (e Edge) Valid() bool {
	switch e {
	case Front, Back, Left, Right, Corner:
		return true
	}
	return false
}

// Candidate is one possible hinge location.
type Candidate struct {
	Position mgl64.Vec3
	Edge     Edge
}

// HingeCandidates returns the hinge locations between cubes centered at a and b.
// Comparisons are exact; positions are expected to be grid-snapped.
//
// Cubes on different heights have none. Cubes sharing a face along x or z get four, one per
// edge of the shared face, in the order front, back, left, right: front and back are the lower
// and upper edges, left and right the two vertical edges. Cubes one step apart on both
// horizontal axes get one, at the shared vertical edge midpoint. Any other pair has none.
// The result depends only on the arguments.
func HingeCandidates(a, b mgl64.Vec3, cubeSize float64) []Candidate {
	dx, dy, dz := b.X()-a.X(), b.Y()-a.Y(), b.Z()-a.Z()
	if dy != 0 {
		return nil
	}
	half := cubeSize / 2
	adx, adz := math.Abs(dx), math.Abs(dz)
	mid := mgl64.Vec3{a.X() + dx/2, a.Y(), a.Z() + dz/2}

	switch {
	case (adx == cubeSize && dz == 0) || (dx == 0 && adz == cubeSize):
		// the vertical edges of the shared face run across the axis of adjacency
		var side mgl64.Vec3
		if dz == 0 {
			side = mgl64.Vec3{0, 0, half}
		} else {
			side = mgl64.Vec3{half, 0, 0}
		}
		return []Candidate{
			{Position: mid.Sub(mgl64.Vec3{0, half, 0}), Edge: Front},
			{Position: mid.Add(mgl64.Vec3{0, half, 0}), Edge: Back},
			{Position: mid.Sub(side), Edge: Left},
			{Position: mid.Add(side), Edge: Right},
		}
	case adx == cubeSize && adz == cubeSize:
		return []Candidate{{Position: mid, Edge: Corner}}
	}
	return nil
}

// Analyze is HingeCandidates with the empty case reported as ErrNoSharedEdge.
func Analyze(a, b mgl64.Vec3, cubeSize float64) ([]Candidate, error) {
	c := HingeCandidates(a, b, cubeSize)
	if len(c) == 0 {
		return nil, fmt.Errorf("%w: %v and %v", ErrNoSharedEdge, a, b)
	}
	return c, nil
}
