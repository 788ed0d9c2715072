package grid

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"hinge-builder/internal/scenegraph"
)

var testGrid = Grid{Cell: 4, Origin: mgl64.Vec3{2, -3, 2}, LayerHeight: 4}

type fakeBodies struct {
	fail    bool
	live    map[string]bool
	removed []string
}

func newFakeBodies() *fakeBodies { return &fakeBodies{live: map[string]bool{}} }

func (f *fakeBodies) CreateBody(c *Cube) error {
	if f.fail {
		return errors.New("no body")
	}
	f.live[c.ID] = true
	return nil
}

func (f *fakeBodies) RemoveBody(c *Cube) {
	delete(f.live, c.ID)
	f.removed = append(f.removed, c.ID)
}

func TestGrid_KeyOfRoundsToNearestCenter(t *testing.T) {
	cases := []struct {
		p    mgl64.Vec3
		want Key
	}{
		{mgl64.Vec3{2, -3, 2}, Key{0, 0, 0}},
		{mgl64.Vec3{3.9, -3, 2}, Key{0, 0, 0}},
		{mgl64.Vec3{4.1, -3, 2}, Key{1, 0, 0}},
		{mgl64.Vec3{-2.1, 1, 2}, Key{-1, 1, 0}},
	}
	for _, tc := range cases {
		if got := testGrid.KeyOf(tc.p); got != tc.want {
			t.Fatalf("KeyOf(%v)=%v want %v", tc.p, got, tc.want)
		}
	}
	if got := testGrid.Snap(mgl64.Vec3{4.1, -2, 1}); got != (mgl64.Vec3{6, -3, 2}) {
		t.Fatalf("Snap=%v", got)
	}
	if got := testGrid.LayerY(2); got != 5 {
		t.Fatalf("LayerY(2)=%v want 5", got)
	}
}

func TestIndex_PlaceRejectsOccupiedCell(t *testing.T) {
	g := scenegraph.NewMemory()
	x := NewIndex(testGrid, 4, g, newFakeBodies())
	a, err := x.Place(mgl64.Vec3{2, -3, 2})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if a.Position != (mgl64.Vec3{2, -3, 2}) || a.Node.Transform().Position != a.Position {
		t.Fatalf("cube not at cell center: %v", a.Position)
	}
	if _, err := x.Place(mgl64.Vec3{3, -2.5, 1}); !errors.Is(err, ErrCellOccupied) {
		t.Fatalf("err=%v want ErrCellOccupied", err)
	}
	if _, err := x.PlaceWithID(a.ID, mgl64.Vec3{10, -3, 2}, false); !errors.Is(err, ErrCellOccupied) {
		t.Fatalf("duplicate id err=%v", err)
	}
	if x.Len() != 1 || g.Len() != 1 {
		t.Fatalf("len=%d nodes=%d", x.Len(), g.Len())
	}
}

func TestIndex_FailedBodyInsertsNothing(t *testing.T) {
	g := scenegraph.NewMemory()
	bodies := newFakeBodies()
	bodies.fail = true
	x := NewIndex(testGrid, 4, g, bodies)
	if _, err := x.Place(mgl64.Vec3{2, -3, 2}); err == nil {
		t.Fatalf("expected body error")
	}
	if x.Len() != 0 || g.Len() != 0 {
		t.Fatalf("len=%d nodes=%d after failed place", x.Len(), g.Len())
	}
}

func TestIndex_RemoveNotifiesAndReleases(t *testing.T) {
	g := scenegraph.NewMemory()
	bodies := newFakeBodies()
	x := NewIndex(testGrid, 4, g, bodies)
	var gone []string
	x.OnRemove(func(c *Cube) { gone = append(gone, c.ID) })

	a, _ := x.PlaceWithID("a", mgl64.Vec3{2, -3, 2}, true)
	b, _ := x.PlaceWithID("b", mgl64.Vec3{6, -3, 2}, false)
	if a.Node.Material() != scenegraph.MaterialCubeFixed {
		t.Fatalf("fixed cube material=%v", a.Node.Material())
	}
	if got, ok := x.ByNode(b.Node); !ok || got != b {
		t.Fatalf("ByNode lookup failed")
	}
	if !x.Remove(a) || x.Remove(a) {
		t.Fatalf("remove should succeed once")
	}
	if _, ok := x.At(mgl64.Vec3{2, -3, 2}); ok {
		t.Fatalf("cell still occupied")
	}
	x.Clear()
	if x.Len() != 0 || len(bodies.live) != 0 || g.Len() != 0 {
		t.Fatalf("clear left len=%d bodies=%d nodes=%d", x.Len(), len(bodies.live), g.Len())
	}
	if len(gone) != 2 || gone[0] != "a" || gone[1] != "b" {
		t.Fatalf("listeners saw %v", gone)
	}
}
