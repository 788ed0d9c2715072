package force

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"hinge-builder/internal/bridge"
	"hinge-builder/internal/grid"
	"hinge-builder/internal/physics"
	"hinge-builder/internal/scenegraph"
)

type oneCube struct{ c *grid.Cube }

func (s oneCube) SelectedCube() (*grid.Cube, bool) { return s.c, s.c != nil }

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time            { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func TestHandles_ShowPlacesSixAroundCube(t *testing.T) {
	g := scenegraph.NewMemory()
	h := NewHandles(g, 4, 1)
	h.Show(mgl64.Vec3{2, -3, 2})
	if len(h.All()) != 6 || g.Len() != 6 || !h.Active() {
		t.Fatalf("handles=%d nodes=%d", len(h.All()), g.Len())
	}
	want := []mgl64.Vec3{{2, 0, 2}, {2, -6, 2}, {-1, -3, 2}, {5, -3, 2}, {2, -3, 5}, {2, -3, -1}}
	for i, hd := range h.All() {
		if hd.Position != want[i] {
			t.Fatalf("handle %d at %v want %v", i, hd.Position, want[i])
		}
		// the cone tip (+y in model space) points along the axis
		tip := hd.Node.Transform().Rotation.Rotate(mgl64.Vec3{0, 1, 0})
		if !tip.ApproxEqualThreshold(hd.Axis, 1e-9) {
			t.Fatalf("handle %d tip %v want %v", i, tip, hd.Axis)
		}
	}
	h.Follow(mgl64.Vec3{6, -3, 2})
	if h.All()[3].Position != (mgl64.Vec3{9, -3, 2}) || h.All()[3].Node.Transform().Position != (mgl64.Vec3{9, -3, 2}) {
		t.Fatalf("follow did not move +x handle")
	}
	h.Show(mgl64.Vec3{})
	if g.Len() != 6 {
		t.Fatalf("re-show leaked nodes: %d", g.Len())
	}
	h.Hide()
	if h.Active() || g.Len() != 0 {
		t.Fatalf("hide left handles")
	}
}

func TestController_DragPushesTowardHandle(t *testing.T) {
	g := scenegraph.NewMemory()
	world := physics.NewWorld(physics.DefaultConfig())
	br := bridge.New(world, bridge.DefaultConfig(), nil)
	x := grid.NewIndex(grid.Grid{Cell: 4, Origin: mgl64.Vec3{2, -3, 2}, LayerHeight: 4}, 4, g, br)
	cube, err := x.Place(mgl64.Vec3{2, -3, 2})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	sched := bridge.NewScheduler(br, x)
	clock := &fakeClock{now: time.Unix(1000, 0)}
	handles := NewHandles(g, 4, 1)
	handles.Show(cube.Position)
	plusX := handles.All()[3]

	c := NewController(br, sched, oneCube{cube}, clock.Now, 0)
	if err := c.BeginDrag(plusX); err != nil {
		t.Fatalf("begin: %v", err)
	}
	lastX := cube.Node.Transform().Position.X()
	for i := 0; i < 5; i++ {
		clock.Advance(20 * time.Millisecond)
		s, err := c.UpdateDrag(plusX)
		if err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
		if math.Abs(s.Force.Len()-DefaultMagnitude) > 1e-6 || s.Force.X() <= 0 {
			t.Fatalf("update %d force=%v", i, s.Force)
		}
		if s.Elapsed != 20*time.Millisecond || s.SubSteps < 1 {
			t.Fatalf("update %d elapsed=%v substeps=%d", i, s.Elapsed, s.SubSteps)
		}
		nowX := cube.Node.Transform().Position.X()
		if nowX <= lastX {
			t.Fatalf("update %d: x went from %v to %v", i, lastX, nowX)
		}
		lastX = nowX
	}
	if err := c.EndDrag(); err != nil || c.Dragging() {
		t.Fatalf("end: %v", err)
	}
	if err := c.EndDrag(); !errors.Is(err, ErrNotDragging) {
		t.Fatalf("second end err=%v", err)
	}
}

func TestController_Errors(t *testing.T) {
	c := NewController(nil, nil, oneCube{}, nil, 0)
	if err := c.BeginDrag(nil); !errors.Is(err, ErrNoHandle) {
		t.Fatalf("nil handle err=%v", err)
	}
	if err := c.BeginDrag(&Handle{}); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("no selection err=%v", err)
	}
	if _, err := c.UpdateDrag(&Handle{}); !errors.Is(err, ErrNotDragging) {
		t.Fatalf("update without drag err=%v", err)
	}
}
