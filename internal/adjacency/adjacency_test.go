package adjacency

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestHingeCandidates_FaceAlongX(t *testing.T) {
	got := HingeCandidates(mgl64.Vec3{0, -3, 0}, mgl64.Vec3{4, -3, 0}, 4)
	want := []Candidate{
		{Position: mgl64.Vec3{2, -5, 0}, Edge: Front},
		{Position: mgl64.Vec3{2, -1, 0}, Edge: Back},
		{Position: mgl64.Vec3{2, -3, -2}, Edge: Left},
		{Position: mgl64.Vec3{2, -3, 2}, Edge: Right},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d candidates want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidate %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestHingeCandidates_FaceAlongZ(t *testing.T) {
	got := HingeCandidates(mgl64.Vec3{2, -3, 6}, mgl64.Vec3{2, -3, 2}, 4)
	want := []Candidate{
		{Position: mgl64.Vec3{2, -5, 4}, Edge: Front},
		{Position: mgl64.Vec3{2, -1, 4}, Edge: Back},
		{Position: mgl64.Vec3{0, -3, 4}, Edge: Left},
		{Position: mgl64.Vec3{4, -3, 4}, Edge: Right},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidate %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestHingeCandidates_Corner(t *testing.T) {
	got := HingeCandidates(mgl64.Vec3{0, -3, 0}, mgl64.Vec3{-4, -3, 4}, 4)
	if len(got) != 1 || got[0] != (Candidate{Position: mgl64.Vec3{-2, -3, 2}, Edge: Corner}) {
		t.Fatalf("corner: %+v", got)
	}
}

func TestHingeCandidates_None(t *testing.T) {
	cases := [][2]mgl64.Vec3{
		{{0, -3, 0}, {0, 1, 0}},  // stacked
		{{0, -3, 0}, {8, -3, 0}}, // gap
		{{0, -3, 0}, {4, 1, 0}},  // different layer
		{{0, -3, 0}, {0, -3, 0}}, // same cell
		{{0, -3, 0}, {4, -3, 8}},
	}
	for _, tc := range cases {
		if got := HingeCandidates(tc[0], tc[1], 4); len(got) != 0 {
			t.Fatalf("%v %v: got %+v", tc[0], tc[1], got)
		}
		if _, err := Analyze(tc[0], tc[1], 4); !errors.Is(err, ErrNoSharedEdge) {
			t.Fatalf("%v %v: err=%v", tc[0], tc[1], err)
		}
	}
}

func TestEdge_Valid(t *testing.T) {
	for _, e := range []Edge{Front, Back, Left, Right, Corner} {
		if !e.Valid() {
			t.Fatalf("%s should be valid", e)
		}
	}
	if Edge("top").Valid() {
		t.Fatalf("top should be invalid")
	}
}
