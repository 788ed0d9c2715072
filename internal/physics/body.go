package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyType says whether the solver moves a body.
type BodyType int

const (
	// Dynamic bodies have mass and respond to gravity, forces and contacts.
	Dynamic BodyType = iota
	// Static bodies never move. Their mass is treated as infinite.
	Static
)

func (t BodyType) String() string {
	if t == Static {
		return "static"
	}
	return "dynamic"
}

// BodyDesc describes a box body to add to an Engine.
type BodyDesc struct {
	HalfExtents   mgl64.Vec3
	Position      mgl64.Vec3
	Rotation      mgl64.Quat
	Mass          float64
	Type          BodyType
	FixedRotation bool
	AllowSleep    bool
	// UserData is an opaque tag, the builder stores the cube id here.
	UserData string
}

// Body is the handle an Engine returns for a rigid body.
type Body interface {
	UserData() string
	HalfExtents() mgl64.Vec3
	Position() mgl64.Vec3
	Quaternion() mgl64.Quat
	Velocity() mgl64.Vec3
	AngularVelocity() mgl64.Vec3
	Force() mgl64.Vec3
	Torque() mgl64.Vec3
	Mass() float64
	Type() BodyType
	FixedRotation() bool
	AllowSleep() bool
	Sleeping() bool

	SetMass(mass float64)
	SetType(t BodyType)
	SetFixedRotation(fixed bool)
	SetAllowSleep(allow bool)
	SetVelocity(v mgl64.Vec3)
	SetAngularVelocity(w mgl64.Vec3)
	// ResetForces zeroes the accumulated force and torque.
	ResetForces()
	// ApplyForce accumulates force at a point given in body-local coordinates.
	// The force is consumed by the next internal step.
	ApplyForce(force, localPoint mgl64.Vec3)
	// UpdateMassProperties recomputes inverse mass and inertia after SetMass or SetType.
	UpdateMassProperties()
	Sleep()
	WakeUp()
}

// Engine is the rigid-body simulation the bridge drives.
type Engine interface {
	AddBody(desc BodyDesc) (Body, error)
	RemoveBody(b Body)
	// Step advances the world by dt using sub-steps of fixedDt, at most maxSubSteps of them.
	// It returns the number of sub-steps taken.
	Step(fixedDt, dt float64, maxSubSteps int) int
}

// RigidBody is the box body used by World.
type RigidBody struct {
	userData    string
	halfExtents mgl64.Vec3
	position    mgl64.Vec3
	quaternion  mgl64.Quat
	velocity    mgl64.Vec3
	angularVel  mgl64.Vec3
	force       mgl64.Vec3
	torque      mgl64.Vec3

	mass          float64
	invMass       float64
	invInertia    mgl64.Vec3
	bodyType      BodyType
	fixedRotation bool
	allowSleep    bool
	sleeping      bool
	idleTime      float64
}

// NewRigidBody builds a body from desc. A zero rotation is replaced with identity.
func NewRigidBody(desc BodyDesc) *RigidBody {
	q := desc.Rotation
	if q.Len() == 0 {
		q = mgl64.QuatIdent()
	}
	b := &RigidBody{
		userData:      desc.UserData,
		halfExtents:   desc.HalfExtents,
		position:      desc.Position,
		quaternion:    q.Normalize(),
		mass:          desc.Mass,
		bodyType:      desc.Type,
		fixedRotation: desc.FixedRotation,
		allowSleep:    desc.AllowSleep,
	}
	b.UpdateMassProperties()
	return b
}

func (b *RigidBody) UserData() string            { return b.userData }
func (b *RigidBody) HalfExtents() mgl64.Vec3     { return b.halfExtents }
func (b *RigidBody) Position() mgl64.Vec3        { return b.position }
func (b *RigidBody) Quaternion() mgl64.Quat      { return b.quaternion }
func (b *RigidBody) Velocity() mgl64.Vec3        { return b.velocity }
func (b *RigidBody) AngularVelocity() mgl64.Vec3 { return b.angularVel }
func (b *RigidBody) Force() mgl64.Vec3           { return b.force }
func (b *RigidBody) Torque() mgl64.Vec3          { return b.torque }
func (b *RigidBody) Mass() float64               { return b.mass }
func (b *RigidBody) Type() BodyType              { return b.bodyType }
func (b *RigidBody) FixedRotation() bool         { return b.fixedRotation }
func (b *RigidBody) AllowSleep() bool            { return b.allowSleep }
func (b *RigidBody) Sleeping() bool              { return b.sleeping }

func (b *RigidBody) SetMass(mass float64)            { b.mass = mass }
func (b *RigidBody) SetType(t BodyType)              { b.bodyType = t }
func (b *RigidBody) SetFixedRotation(fixed bool)     { b.fixedRotation = fixed }
func (b *RigidBody) SetAllowSleep(allow bool)        { b.allowSleep = allow }
func (b *RigidBody) SetVelocity(v mgl64.Vec3)        { b.velocity = v }
func (b *RigidBody) SetAngularVelocity(w mgl64.Vec3) { b.angularVel = w }

// SetPosition teleports the body. Used when a fixed cube is re-seated on its grid cell.
func (b *RigidBody) SetPosition(p mgl64.Vec3) { b.position = p }

func (b *RigidBody) ResetForces() {
	b.force = mgl64.Vec3{}
	b.torque = mgl64.Vec3{}
}

// ApplyForce wakes the body and accumulates force plus the torque r x F.
// Static bodies ignore forces.
func (b *RigidBody) ApplyForce(force, localPoint mgl64.Vec3) {
	if b.bodyType == Static {
		return
	}
	b.WakeUp()
	b.force = b.force.Add(force)
	r := b.quaternion.Rotate(localPoint)
	b.torque = b.torque.Add(r.Cross(force))
}

// UpdateMassProperties derives inverse mass and the diagonal box inertia.
// Static bodies and bodies without mass get zero inverse mass.
func (b *RigidBody) UpdateMassProperties() {
	if b.bodyType == Static || b.mass <= 0 {
		b.invMass = 0
		b.invInertia = mgl64.Vec3{}
		return
	}
	b.invMass = 1 / b.mass
	w, h, d := 2*b.halfExtents.X(), 2*b.halfExtents.Y(), 2*b.halfExtents.Z()
	ix := b.mass / 12 * (h*h + d*d)
	iy := b.mass / 12 * (w*w + d*d)
	iz := b.mass / 12 * (w*w + h*h)
	b.invInertia = mgl64.Vec3{inv(ix), inv(iy), inv(iz)}
}

func inv(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return 1 / v
}

func (b *RigidBody) Sleep() {
	b.sleeping = true
	b.velocity = mgl64.Vec3{}
	b.angularVel = mgl64.Vec3{}
}

func (b *RigidBody) WakeUp() {
	b.sleeping = false
	b.idleTime = 0
}

// moves reports whether the body is integrated this step.
func (b *RigidBody) moves() bool {
	return b.bodyType == Dynamic && b.invMass > 0 && !b.sleeping
}

// integrate applies gravity and accumulated force, then advances position and orientation.
func (b *RigidBody) integrate(gravity mgl64.Vec3, dt, linearDamping, angularDamping float64) {
	acc := gravity.Add(b.force.Mul(b.invMass))
	b.velocity = b.velocity.Add(acc.Mul(dt))
	if linearDamping > 0 {
		b.velocity = b.velocity.Mul(math.Pow(1-linearDamping, dt))
	}
	if b.fixedRotation {
		b.angularVel = mgl64.Vec3{}
	} else {
		dw := mgl64.Vec3{b.torque.X() * b.invInertia.X(), b.torque.Y() * b.invInertia.Y(), b.torque.Z() * b.invInertia.Z()}
		b.angularVel = b.angularVel.Add(dw.Mul(dt))
		if angularDamping > 0 {
			b.angularVel = b.angularVel.Mul(math.Pow(1-angularDamping, dt))
		}
		if b.angularVel.Len() > 0 {
			// q' = q + 0.5 * (w, 0) * q * dt
			spin := mgl64.Quat{W: 0, V: b.angularVel}.Mul(b.quaternion).Scale(0.5 * dt)
			b.quaternion = b.quaternion.Add(spin).Normalize()
		}
	}
	b.position = b.position.Add(b.velocity.Mul(dt))
}

// aabb returns the body's axis-aligned bounds. Orientation is ignored, like the contact solver.
func (b *RigidBody) aabb() (lo, hi mgl64.Vec3) {
	return b.position.Sub(b.halfExtents), b.position.Add(b.halfExtents)
}
