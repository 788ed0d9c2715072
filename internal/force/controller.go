// Package force turns drags on control handles into forces on the selected cube.
package force

import (
	"errors"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"hinge-builder/internal/grid"
)

var (
	ErrNoHandle    = errors.New("force: no handle under the pointer")
	ErrNoSelection = errors.New("force: exactly one cube must be selected")
	ErrNotDragging = errors.New("force: no drag in progress")
)

// DefaultMagnitude is the force applied per drag sample.
const DefaultMagnitude = 1000.0

// Selection yields the single selected cube.
type Selection interface {
	SelectedCube() (*grid.Cube, bool)
}

// Pusher applies a force to a cube's body.
type Pusher interface {
	ApplyForce(c *grid.Cube, force mgl64.Vec3) error
}

// Stepper advances the simulation to an instant, as bridge.Scheduler does.
type Stepper interface {
	Prime(now time.Time)
	Advance(now time.Time) (time.Duration, int)
}

// Sample describes one drag update.
type Sample struct {
	Force    mgl64.Vec3
	Elapsed  time.Duration
	SubSteps int
}

// Controller runs one drag gesture at a time. Every pointer move while dragging applies a
// force toward the handle and steps the simulation through the scheduler.
type Controller struct {
	pusher    Pusher
	stepper   Stepper
	selection Selection
	clock     func() time.Time
	magnitude float64

	dragging bool
	start    time.Time
	last     time.Time
}

// NewController returns a controller. A nil clock uses time.Now and a non-positive
// magnitude uses DefaultMagnitude.
func NewController(p Pusher, s Stepper, sel Selection, clock func() time.Time, magnitude float64) *Controller {
	if clock == nil {
		clock = time.Now
	}
	if magnitude <= 0 {
		magnitude = DefaultMagnitude
	}
	return &Controller{pusher: p, stepper: s, selection: sel, clock: clock, magnitude: magnitude}
}

// BeginDrag starts a drag on h. It needs a handle and exactly one selected cube.
func (c *Controller) BeginDrag(h *Handle) error {
	if h == nil {
		return ErrNoHandle
	}
	if _, ok := c.selection.SelectedCube(); !ok {
		return ErrNoSelection
	}
	now := c.clock()
	c.dragging = true
	c.start = now
	c.last = now
	c.stepper.Prime(now)
	return nil
}

// UpdateDrag pushes the selected cube toward h and steps the world to now.
// The push direction is from the cube's current position to the handle.
func (c *Controller) UpdateDrag(h *Handle) (Sample, error) {
	if !c.dragging {
		return Sample{}, ErrNotDragging
	}
	if h == nil {
		return Sample{}, ErrNoHandle
	}
	cube, ok := c.selection.SelectedCube()
	if !ok {
		return Sample{}, ErrNoSelection
	}
	now := c.clock()
	s := Sample{Elapsed: now.Sub(c.last)}
	c.last = now

	dir := h.Position.Sub(cubePosition(cube))
	if dir.Len() == 0 {
		return s, nil
	}
	s.Force = dir.Normalize().Mul(c.magnitude)
	if err := c.pusher.ApplyForce(cube, s.Force); err != nil {
		return s, err
	}
	_, s.SubSteps = c.stepper.Advance(now)
	return s, nil
}

// EndDrag stops the gesture. The body keeps whatever motion it has.
func (c *Controller) EndDrag() error {
	if !c.dragging {
		return ErrNotDragging
	}
	c.dragging = false
	return nil
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool { return c.dragging }

// Started returns when the current or last drag began.
func (c *Controller) Started() time.Time { return c.start }

func cubePosition(c *grid.Cube) mgl64.Vec3 {
	if c.Node != nil {
		return c.Node.Transform().Position
	}
	return c.Position
}
