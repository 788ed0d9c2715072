package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestWorld_AddBodyRejectsBadShape(t *testing.T) {
	w := NewWorld(DefaultConfig())
	for _, half := range []mgl64.Vec3{{0, 1, 1}, {1, -1, 1}, {1, 1, math.Inf(1)}, {math.NaN(), 1, 1}} {
		if _, err := w.AddBody(BodyDesc{HalfExtents: half, Mass: 1}); !errors.Is(err, ErrInvalidShape) {
			t.Fatalf("half %v: err=%v want ErrInvalidShape", half, err)
		}
	}
}

func TestWorld_DynamicBoxSettlesOnGround(t *testing.T) {
	w := NewWorld(DefaultConfig())
	b, err := w.AddBody(BodyDesc{
		HalfExtents: mgl64.Vec3{1.99, 1.99, 1.99},
		Position:    mgl64.Vec3{0, 5, 0},
		Mass:        1,
		Type:        Dynamic,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	for i := 0; i < 600; i++ {
		w.Step(1.0/60, 1.0/60, 3)
	}
	want := -5 + 1.99
	if got := b.Position().Y(); math.Abs(got-want) > 0.05 {
		t.Fatalf("rest height=%v want about %v", got, want)
	}
}

func TestWorld_StaticBodyNeverMoves(t *testing.T) {
	w := NewWorld(DefaultConfig())
	pos := mgl64.Vec3{2, 1, 2}
	b, err := w.AddBody(BodyDesc{HalfExtents: mgl64.Vec3{1, 1, 1}, Position: pos, Type: Static})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	b.ApplyForce(mgl64.Vec3{1000, 0, 0}, mgl64.Vec3{})
	for i := 0; i < 60; i++ {
		w.Step(1.0/60, 1.0/60, 3)
	}
	if b.Position() != pos {
		t.Fatalf("static moved to %v", b.Position())
	}
}

func TestWorld_StepCapsSubSteps(t *testing.T) {
	w := NewWorld(DefaultConfig())
	if n := w.Step(1.0/60, 1.0, 3); n != 3 {
		t.Fatalf("long frame took %d sub-steps, want 3", n)
	}
	if n := w.Step(1.0/60, 0, 3); n != 0 {
		t.Fatalf("zero dt took %d sub-steps", n)
	}
	if w.Time() <= 0 {
		t.Fatalf("time did not advance")
	}
}

func TestRigidBody_ForceIsConsumedByOneStep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = mgl64.Vec3{}
	cfg.Ground = false
	w := NewWorld(cfg)
	b, err := w.AddBody(BodyDesc{HalfExtents: mgl64.Vec3{1, 1, 1}, Mass: 1, Type: Dynamic})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	b.ApplyForce(mgl64.Vec3{60, 0, 0}, mgl64.Vec3{})
	w.Step(1.0/60, 1.0/60, 3)
	if b.Force() != (mgl64.Vec3{}) {
		t.Fatalf("force not reset: %v", b.Force())
	}
	v := b.Velocity().X()
	if math.Abs(v-1) > 1e-9 {
		t.Fatalf("velocity=%v want 1", v)
	}
	w.Step(1.0/60, 1.0/60, 3)
	if got := b.Velocity().X(); math.Abs(got-v) > 1e-9 {
		t.Fatalf("velocity changed without force: %v", got)
	}
}
