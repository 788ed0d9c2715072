package input_test

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"hinge-builder/internal/app"
	"hinge-builder/internal/engineconfig"
	"hinge-builder/internal/input"
	"hinge-builder/internal/mode"
	"hinge-builder/internal/scenegraph"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func down(x, z float64) scenegraph.Ray {
	return scenegraph.Ray{Origin: mgl64.Vec3{x, 20, z}, Direction: mgl64.Vec3{0, -1, 0}}
}

func press(ray scenegraph.Ray, b input.Button) input.Event {
	return input.Event{Kind: input.Press, Button: b, Ray: ray, Modifier: true}
}

func newApp(t *testing.T) (*app.App, *clock) {
	t.Helper()
	clk := &clock{now: time.Unix(5000, 0)}
	return app.New(engineconfig.Default(), app.Options{Graph: scenegraph.NewMemory(), Clock: clk.Now}), clk
}

func handle(t *testing.T, a *app.App, ev input.Event) {
	t.Helper()
	if err := a.Input.Handle(ev); err != nil {
		t.Fatalf("handle %+v: %v", ev, err)
	}
}

func TestDecoder_CreatePlacesAndRemoves(t *testing.T) {
	a, _ := newApp(t)
	handle(t, a, input.Event{Kind: input.Press, Button: input.Primary, Ray: down(2, 2)})
	if a.Cubes.Len() != 0 {
		t.Fatalf("press without modifier placed a cube")
	}
	handle(t, a, press(down(2.7, 1.2), input.Primary))
	handle(t, a, press(down(2, 2), input.Primary))
	if a.Cubes.Len() != 1 {
		t.Fatalf("cubes=%d want 1", a.Cubes.Len())
	}
	if _, ok := a.Cubes.At(mgl64.Vec3{2, -3, 2}); !ok {
		t.Fatalf("cube not in cell (2,-3,2)")
	}
	handle(t, a, press(down(2, 2), input.Secondary))
	if a.Cubes.Len() != 0 {
		t.Fatalf("secondary press did not remove")
	}
}

func TestDecoder_HingePicksPointsBeforeCubes(t *testing.T) {
	a, _ := newApp(t)
	handle(t, a, press(down(2, 2), input.Primary))
	handle(t, a, press(down(6, 2), input.Primary))
	a.Machine.SetMode(mode.Hinge)

	handle(t, a, press(down(2, 2), input.Primary))
	handle(t, a, press(down(6, 2), input.Primary))
	if len(a.Machine.Selected()) != 2 || a.Hinges.Len() != 4 {
		t.Fatalf("selected=%d points=%d", len(a.Machine.Selected()), a.Hinges.Len())
	}

	handle(t, a, input.Event{Kind: input.Move, Ray: down(4, 0)})
	hov := a.Hinges.Hovered()
	if hov == nil || hov.Position != (mgl64.Vec3{4, -3, 0}) || hov.Node.Material() != scenegraph.MaterialHingeHover {
		t.Fatalf("hovered=%+v", hov)
	}

	// straight down through x=4,z=2 crosses the back point first, then front, then the cubes
	handle(t, a, press(down(4, 2), input.Primary))
	sel := a.Hinges.Selected()
	if len(sel) != 1 {
		t.Fatalf("selected hinges=%v", sel)
	}
	if p, _ := a.Hinges.Point(sel[0]); p.Position != (mgl64.Vec3{4, -1, 2}) {
		t.Fatalf("picked %v want the back point", p.Position)
	}
	if len(a.Machine.Selected()) != 2 {
		t.Fatalf("hinge click changed the cube selection")
	}

	handle(t, a, input.Event{Kind: input.Move, Ray: down(30, 30)})
	if a.Hinges.Hovered() != nil {
		t.Fatalf("hover not cleared")
	}
}

func TestDecoder_DemoDragLiftsCube(t *testing.T) {
	a, clk := newApp(t)
	handle(t, a, press(down(2, 2), input.Primary))
	a.Machine.SetMode(mode.Demo)
	handle(t, a, press(down(2, 2), input.Primary))
	c, ok := a.Machine.SelectedCube()
	if !ok || !a.Handles.Active() {
		t.Fatalf("DEMO click did not select")
	}

	// the ray from above meets the up handle before the cube
	handle(t, a, press(down(2, 2), input.Primary))
	if !a.Drag.Dragging() {
		t.Fatalf("press on handle did not start a drag")
	}
	startY := c.Node.Transform().Position.Y()
	for i := 0; i < 3; i++ {
		clk.now = clk.now.Add(20 * time.Millisecond)
		handle(t, a, input.Event{Kind: input.Move, Ray: down(2, 2)})
	}
	if y := c.Node.Transform().Position.Y(); y <= startY {
		t.Fatalf("cube did not rise: %v -> %v", startY, y)
	}
	up := a.Handles.All()[0]
	if got := c.Node.Transform().Position.Add(mgl64.Vec3{0, 3, 0}); !up.Position.ApproxEqualThreshold(got, 1e-9) {
		t.Fatalf("handles did not follow: %v vs %v", up.Position, got)
	}
	handle(t, a, input.Event{Kind: input.Release, Button: input.Primary})
	if a.Drag.Dragging() {
		t.Fatalf("release did not end the drag")
	}
}
