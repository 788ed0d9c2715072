// Package physics is the rigid-body engine the builder drives through the Engine interface.
// World is a small box simulation: gravity and forces are integrated per fixed sub-step,
// then overlapping boxes are pushed apart along the axis of least penetration.
package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidShape is returned by AddBody when the box has no positive, finite extent.
var ErrInvalidShape = errors.New("physics: invalid box shape")

const (
	groundHalfExtent    = 100
	groundHalfThickness = 0.1
	sleepSpeedLimit     = 0.1
	sleepTimeLimit      = 1.0
)

// Config holds world-construction parameters. Changing them later requires a new World.
type Config struct {
	Gravity        mgl64.Vec3
	Iterations     int
	Tolerance      float64
	Friction       float64
	Restitution    float64
	LinearDamping  float64
	AngularDamping float64
	// Ground adds a static slab whose top face sits at GroundY.
	Ground  bool
	GroundY float64
}

// DefaultConfig mirrors the builder defaults: gravity 9.8 down, 30 iterations.
func DefaultConfig() Config {
	return Config{
		Gravity:     mgl64.Vec3{0, -9.8, 0},
		Iterations:  30,
		Tolerance:   0.0001,
		Friction:    0.5,
		Restitution: 0.3,
		Ground:      true,
		GroundY:     -5,
	}
}

// World holds the bodies and runs the fixed-step simulation.
type World struct {
	cfg         Config
	bodies      []*RigidBody
	ground      *RigidBody
	accumulator float64
	time        float64
}

// NewWorld returns a world built from cfg. Iterations below 1 are raised to 1.
func NewWorld(cfg Config) *World {
	if cfg.Iterations < 1 {
		cfg.Iterations = 1
	}
	w := &World{cfg: cfg}
	if cfg.Ground {
		w.ground = NewRigidBody(BodyDesc{
			HalfExtents: mgl64.Vec3{groundHalfExtent, groundHalfThickness, groundHalfExtent},
			Position:    mgl64.Vec3{0, cfg.GroundY - groundHalfThickness, 0},
			Type:        Static,
			UserData:    "ground",
		})
		w.bodies = append(w.bodies, w.ground)
	}
	return w
}

// Gravity returns the world's gravity vector.
func (w *World) Gravity() mgl64.Vec3 { return w.cfg.Gravity }

// Time returns the simulated seconds so far.
func (w *World) Time() float64 { return w.time }

// Bodies returns every body including the ground, in insertion order.
func (w *World) Bodies() []Body {
	out := make([]Body, 0, len(w.bodies))
	for _, b := range w.bodies {
		out = append(out, b)
	}
	return out
}

// AddBody creates a box body and adds it to the simulation.
func (w *World) AddBody(desc BodyDesc) (Body, error) {
	for i := 0; i < 3; i++ {
		e := desc.HalfExtents[i]
		if !(e > 0) || math.IsInf(e, 0) {
			return nil, fmt.Errorf("%w: half extents %v", ErrInvalidShape, desc.HalfExtents)
		}
	}
	b := NewRigidBody(desc)
	w.bodies = append(w.bodies, b)
	return b, nil
}

// RemoveBody detaches b. Bodies not owned by this world are ignored.
func (w *World) RemoveBody(b Body) {
	for i, cur := range w.bodies {
		if Body(cur) == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			return
		}
	}
}

// Step accumulates dt and runs whole sub-steps of fixedDt, never more than maxSubSteps.
// When the cap is hit the remaining backlog is dropped so a long frame cannot snowball.
func (w *World) Step(fixedDt, dt float64, maxSubSteps int) int {
	if fixedDt <= 0 || dt <= 0 || maxSubSteps < 1 {
		return 0
	}
	w.accumulator += dt
	n := 0
	for w.accumulator >= fixedDt && n < maxSubSteps {
		w.internalStep(fixedDt)
		w.accumulator -= fixedDt
		n++
	}
	if n == maxSubSteps && w.accumulator >= fixedDt {
		w.accumulator = math.Mod(w.accumulator, fixedDt)
	}
	return n
}

// internalStep integrates dynamic bodies, clears forces, then resolves contacts.
func (w *World) internalStep(dt float64) {
	for _, b := range w.bodies {
		if b.moves() {
			b.integrate(w.cfg.Gravity, dt, w.cfg.LinearDamping, w.cfg.AngularDamping)
		}
		b.ResetForces()
	}
	for i := 0; i < w.cfg.Iterations; i++ {
		if !w.resolveContacts() {
			break
		}
	}
	for _, b := range w.bodies {
		w.updateSleep(b, dt)
	}
	w.time += dt
}

// penetrationAxis returns the overlap depth and axis index (0=X, 1=Y, 2=Z) of least penetration.
// If the boxes do not overlap it returns (0, -1).
func penetrationAxis(aLo, aHi, bLo, bHi mgl64.Vec3) (depth float64, axis int) {
	axis = -1
	for i := 0; i < 3; i++ {
		overlap := math.Min(aHi[i], bHi[i]) - math.Max(aLo[i], bLo[i])
		if overlap <= 0 {
			return 0, -1
		}
		if axis < 0 || overlap < depth {
			depth, axis = overlap, i
		}
	}
	return depth, axis
}

// resolveContacts runs one push-apart pass and reports whether any pair was separated.
func (w *World) resolveContacts() bool {
	resolved := false
	for i := 0; i < len(w.bodies); i++ {
		bi := w.bodies[i]
		for j := i + 1; j < len(w.bodies); j++ {
			bj := w.bodies[j]
			if !bi.moves() && !bj.moves() {
				continue
			}
			aLo, aHi := bi.aabb()
			bLo, bHi := bj.aabb()
			depth, axis := penetrationAxis(aLo, aHi, bLo, bHi)
			if axis < 0 || depth <= w.cfg.Tolerance {
				continue
			}
			w.separate(bi, bj, depth, axis)
			resolved = true
		}
	}
	return resolved
}

// separate pushes bi and bj apart along axis in proportion to inverse mass, then removes
// the approaching normal velocity (scaled by restitution) and damps tangential velocity.
func (w *World) separate(bi, bj *RigidBody, depth float64, axis int) {
	sign := 1.0
	if bi.position[axis] < bj.position[axis] {
		sign = -1
	}
	wi, wj := 0.0, 0.0
	if bi.moves() {
		wi = bi.invMass
	}
	if bj.moves() {
		wj = bj.invMass
	}
	// a sleeping dynamic body is woken by contact instead of acting as a wall
	if wj == 0 && bj.bodyType == Dynamic && bj.invMass > 0 {
		bj.WakeUp()
		wj = bj.invMass
	}
	if wi == 0 && bi.bodyType == Dynamic && bi.invMass > 0 {
		bi.WakeUp()
		wi = bi.invMass
	}
	total := wi + wj
	if total == 0 {
		return
	}
	bi.position[axis] += sign * depth * wi / total
	bj.position[axis] -= sign * depth * wj / total

	// normal points from bj to bi along axis
	rel := bi.velocity[axis] - bj.velocity[axis]
	if rel*sign >= 0 {
		return
	}
	impulse := -(1 + w.cfg.Restitution) * rel / total
	bi.velocity[axis] += impulse * wi
	bj.velocity[axis] -= impulse * wj
	keep := 1 - w.cfg.Friction
	if keep < 0 {
		keep = 0
	}
	for k := 0; k < 3; k++ {
		if k == axis {
			continue
		}
		if wi > 0 {
			bi.velocity[k] *= keep
		}
		if wj > 0 {
			bj.velocity[k] *= keep
		}
	}
}

// updateSleep puts slow bodies that allow sleeping to sleep after sleepTimeLimit seconds.
func (w *World) updateSleep(b *RigidBody, dt float64) {
	if !b.allowSleep || !b.moves() {
		return
	}
	if b.velocity.Len() < sleepSpeedLimit && b.angularVel.Len() < sleepSpeedLimit {
		b.idleTime += dt
		if b.idleTime >= sleepTimeLimit {
			b.Sleep()
		}
		return
	}
	b.idleTime = 0
}
