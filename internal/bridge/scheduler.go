package bridge

import (
	"time"

	"hinge-builder/internal/grid"
)

// CubeSource lists the cubes to sync after a step.
type CubeSource interface {
	All() []*grid.Cube
}

// Scheduler is the single entry point for stepping. Both the frame tick and the drag stream
// call Advance with the current time; each call steps only the interval since the last
// covered instant, so overlapping callers never simulate the same interval twice.
type Scheduler struct {
	bridge  *Bridge
	cubes   CubeSource
	last    time.Time
	primed  bool
	onSteps []func()
}

// NewScheduler returns a scheduler that steps b and syncs the cubes of src.
func NewScheduler(b *Bridge, src CubeSource) *Scheduler {
	return &Scheduler{bridge: b, cubes: src}
}

// OnAdvance registers fn to run after each advance that stepped the world.
func (s *Scheduler) OnAdvance(fn func()) {
	s.onSteps = append(s.onSteps, fn)
}

// Prime sets the starting instant if nothing has been covered yet.
func (s *Scheduler) Prime(now time.Time) {
	if !s.primed {
		s.last = now
		s.primed = true
	}
}

// Advance steps the world from the last covered instant to now and syncs every dynamic cube.
// The first call only primes the scheduler. Calls with a time at or before the last covered
// instant do nothing.
func (s *Scheduler) Advance(now time.Time) (time.Duration, int) {
	if !s.primed {
		s.Prime(now)
		return 0, 0
	}
	dt := now.Sub(s.last)
	if dt <= 0 {
		return 0, 0
	}
	s.last = now
	n := s.bridge.Step(dt.Seconds())
	for _, c := range s.cubes.All() {
		s.bridge.Sync(c)
	}
	for _, fn := range s.onSteps {
		fn()
	}
	return dt, n
}
