// Package bridge owns the rigid bodies of placed cubes. It creates and releases them with the
// cube lifecycle, switches them between fixed and dynamic, applies drag forces, steps the
// engine and copies body transforms back to the cube nodes.
package bridge

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"hinge-builder/internal/grid"
	"hinge-builder/internal/physics"
)

var (
	// ErrBodyCreation means the cube geometry cannot back a box body.
	ErrBodyCreation = errors.New("bridge: physics body creation failed")
	// ErrNoBody means the cube has no body in this bridge.
	ErrNoBody = errors.New("bridge: cube has no body")
)

const (
	fixedMass   = 0
	dynamicMass = 1
)

// Config holds the stepping and collider parameters.
type Config struct {
	// Inset shrinks each half extent so neighbouring colliders do not share a surface.
	Inset         float64
	FixedTimeStep float64
	MaxSubSteps   int
}

// DefaultConfig is a 0.01 inset, 1/60 s sub-steps and at most three of them per step.
func DefaultConfig() Config {
	return Config{Inset: 0.01, FixedTimeStep: 1.0 / 60, MaxSubSteps: 3}
}

// Bridge maps cube ids to engine bodies. It is the only component that talks to the engine.
type Bridge struct {
	engine physics.Engine
	cfg    Config
	bodies map[string]physics.Body
	log    *log.Logger
}

// New returns a bridge over engine. A nil logger discards diagnostics.
func New(engine physics.Engine, cfg Config, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Bridge{
		engine: engine,
		cfg:    cfg,
		bodies: make(map[string]physics.Body),
		log:    logger,
	}
}

// CreateBody builds the box body for c. Fixed cubes get a static, massless, rotation-locked
// body that is put to sleep; other cubes get a dynamic body of mass 1 that never sleeps.
// Velocities, force and torque start at zero. A cube that already has a body gets a fresh one.
func (b *Bridge) CreateBody(c *grid.Cube) error {
	if c == nil {
		return fmt.Errorf("%w: nil cube", ErrBodyCreation)
	}
	half := c.Size/2 - b.cfg.Inset
	if !(half > 0) || math.IsInf(half, 0) {
		return fmt.Errorf("%w: cube %s has size %v", ErrBodyCreation, c.ID, c.Size)
	}
	if _, ok := b.bodies[c.ID]; ok {
		b.RemoveBody(c)
	}
	desc := physics.BodyDesc{
		HalfExtents: mgl64.Vec3{half, half, half},
		Position:    c.Position,
		Rotation:    mgl64.QuatIdent(),
		UserData:    c.ID,
	}
	if c.Fixed {
		desc.Mass = fixedMass
		desc.Type = physics.Static
		desc.FixedRotation = true
		desc.AllowSleep = true
	} else {
		desc.Mass = dynamicMass
		desc.Type = physics.Dynamic
		desc.AllowSleep = false
	}
	body, err := b.engine.AddBody(desc)
	if err != nil {
		return fmt.Errorf("%w: cube %s: %v", ErrBodyCreation, c.ID, err)
	}
	body.SetVelocity(mgl64.Vec3{})
	body.SetAngularVelocity(mgl64.Vec3{})
	body.ResetForces()
	body.UpdateMassProperties()
	if c.Fixed {
		body.Sleep()
	}
	c.Body = body
	b.bodies[c.ID] = body
	return nil
}

// SetFixed switches the body of c between static and dynamic and records the flag on c.
// Fixing zeroes mass and every velocity, locks rotation and sleeps the body immediately.
func (b *Bridge) SetFixed(c *grid.Cube, fixed bool) error {
	body, ok := b.bodies[c.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoBody, c.ID)
	}
	c.Fixed = fixed
	if fixed {
		body.SetMass(fixedMass)
		body.SetType(physics.Static)
		body.SetFixedRotation(true)
		body.SetAllowSleep(true)
		body.SetVelocity(mgl64.Vec3{})
		body.SetAngularVelocity(mgl64.Vec3{})
		body.ResetForces()
		body.UpdateMassProperties()
		body.Sleep()
		return nil
	}
	body.SetMass(dynamicMass)
	body.SetType(physics.Dynamic)
	body.SetFixedRotation(false)
	body.SetAllowSleep(false)
	body.UpdateMassProperties()
	body.WakeUp()
	return nil
}

// ApplyForce zeroes the body's linear and angular velocity, then applies force at the body
// origin. Each drag sample is a directed nudge and never adds to earlier momentum.
func (b *Bridge) ApplyForce(c *grid.Cube, force mgl64.Vec3) error {
	body, ok := b.bodies[c.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoBody, c.ID)
	}
	body.SetVelocity(mgl64.Vec3{})
	body.SetAngularVelocity(mgl64.Vec3{})
	body.ApplyForce(force, mgl64.Vec3{})
	return nil
}

// Step advances the engine by dt seconds in fixed sub-steps, bounded by MaxSubSteps
// whatever dt is. It returns the sub-steps taken.
func (b *Bridge) Step(dt float64) int {
	return b.engine.Step(b.cfg.FixedTimeStep, dt, b.cfg.MaxSubSteps)
}

// Sync copies a dynamic body's position and orientation to the cube node.
// Static bodies are never synced; the node is their source of truth.
func (b *Bridge) Sync(c *grid.Cube) {
	body, ok := b.bodies[c.ID]
	if !ok || c.Node == nil || body.Type() != physics.Dynamic {
		return
	}
	c.Node.SetTransform(body.Position(), body.Quaternion())
}

// RemoveBody detaches and forgets the body of c. It is a no-op when there is none.
func (b *Bridge) RemoveBody(c *grid.Cube) {
	body, ok := b.bodies[c.ID]
	if !ok {
		return
	}
	b.engine.RemoveBody(body)
	delete(b.bodies, c.ID)
	c.Body = nil
}

// Body returns the body of c.
func (b *Bridge) Body(c *grid.Cube) (physics.Body, bool) {
	body, ok := b.bodies[c.ID]
	return body, ok
}

// Len returns the number of live bodies.
func (b *Bridge) Len() int { return len(b.bodies) }
