// Package hinge owns the hinge point markers between adjacent cubes and the persistent record
// of which of them the user selected.
package hinge

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"hinge-builder/internal/adjacency"
	"hinge-builder/internal/grid"
	"hinge-builder/internal/scenegraph"
)

var (
	// ErrOrphanedReference marks a stored entry whose hinge point no longer exists.
	// Restore drops such entries and only counts them.
	ErrOrphanedReference = errors.New("hinge: entry references a missing hinge point")
	// ErrUnknownPoint is returned when a point does not belong to the registry.
	ErrUnknownPoint = errors.New("hinge: unknown point")
)

// PointSize is the diameter of a hinge marker.
const PointSize = 1.0

var pointNamespace = uuid.MustParse("6f1c8a3e-93c4-4b2e-9a57-0d3f4e2b8c11")

// PointID is the id of the hinge point on edge between two cubes. It does not depend on the
// order of the cube ids, so a reloaded scene gets back the same ids.
func PointID(cubeA, cubeB string, edge adjacency.Edge) string {
	lo, hi := cubeA, cubeB
	if hi < lo {
		lo, hi = hi, lo
	}
	return uuid.NewSHA1(pointNamespace, []byte(lo+"|"+hi+"|"+string(edge))).String()
}

// Entry is the persisted record of a selected point.
type Entry struct {
	Cube1ID  string
	Cube2ID  string
	Edge     adjacency.Edge
	Position mgl64.Vec3
}

// Point is one hinge marker.
type Point struct {
	ID       string
	Position mgl64.Vec3
	Edge     adjacency.Edge
	// Cubes are the connected cube ids in the order the pair was given.
	Cubes [2]string
	Node  scenegraph.Node

	selected bool
}

// Selected reports the selection status.
func (p *Point) Selected() bool { return p.selected }

// Connects reports whether the point joins the cube with the given id.
func (p *Point) Connects(cubeID string) bool {
	return p.Cubes[0] == cubeID || p.Cubes[1] == cubeID
}

func (p *Point) entry() Entry {
	return Entry{Cube1ID: p.Cubes[0], Cube2ID: p.Cubes[1], Edge: p.Edge, Position: p.Position}
}

type pairKey [2]string

func pairOf(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a, b}
}

// CubeLookup resolves cube ids. The grid index implements it.
type CubeLookup interface {
	ByID(id string) (*grid.Cube, bool)
}

// Snapshot is the hinge part of a saved scene.
type Snapshot struct {
	Selected []string
	Entries  map[string]Entry
}

// Registry holds every hinge point, grouped by the unordered cube pair that produced it,
// and the entry of every selected point. An entry exists exactly when its point is selected.
type Registry struct {
	graph    scenegraph.Graph
	cubes    CubeLookup
	cubeSize float64
	log      *log.Logger

	visible bool
	order   []*Point
	byID    map[string]*Point
	byPair  map[pairKey][]*Point
	entries map[string]Entry
	hovered *Point
	orphans int

	onChange []func()
}

// NewRegistry returns an empty registry. Points start hidden until SetVisible(true).
func NewRegistry(graph scenegraph.Graph, cubes CubeLookup, cubeSize float64, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Registry{
		graph:    graph,
		cubes:    cubes,
		cubeSize: cubeSize,
		log:      logger,
		byID:     make(map[string]*Point),
		byPair:   make(map[pairKey][]*Point),
		entries:  make(map[string]Entry),
	}
}

// OnChange registers fn to run after every selection toggle.
func (r *Registry) OnChange(fn func()) {
	r.onChange = append(r.onChange, fn)
}

func (r *Registry) changed() {
	for _, fn := range r.onChange {
		fn()
	}
}

// EnsureHingePoints makes sure the points between a and b exist. An existing set for the
// unordered pair only gets its visibility refreshed. Otherwise one point per adjacency
// candidate is created, unselected, visible when the registry is visible.
// It returns the pair's points, or adjacency.ErrNoSharedEdge.
func (r *Registry) EnsureHingePoints(a, b *grid.Cube) ([]*Point, error) {
	if a == nil || b == nil || a.ID == b.ID {
		return nil, fmt.Errorf("%w: need two distinct cubes", adjacency.ErrNoSharedEdge)
	}
	key := pairOf(a.ID, b.ID)
	if existing, ok := r.byPair[key]; ok {
		for _, p := range existing {
			p.Node.SetVisible(r.visible)
		}
		return existing, nil
	}
	candidates, err := adjacency.Analyze(a.Position, b.Position, r.cubeSize)
	if err != nil {
		return nil, err
	}
	points := make([]*Point, 0, len(candidates))
	for _, c := range candidates {
		p := &Point{
			ID:       PointID(a.ID, b.ID, c.Edge),
			Position: c.Position,
			Edge:     c.Edge,
			Cubes:    [2]string{a.ID, b.ID},
			Node:     r.graph.CreateNode(scenegraph.KindHinge, PointSize, c.Position),
		}
		p.Node.SetVisible(r.visible)
		r.byID[p.ID] = p
		r.order = append(r.order, p)
		points = append(points, p)
	}
	r.byPair[key] = points
	return points, nil
}

// ToggleSelection flips the selection of p and reports the new status. Selecting records an
// entry with the connected cubes, edge and position; deselecting drops it.
func (r *Registry) ToggleSelection(p *Point) (bool, error) {
	if p == nil || r.byID[p.ID] != p {
		return false, ErrUnknownPoint
	}
	if p.selected {
		r.deselect(p)
	} else {
		r.selectPoint(p, p.entry())
	}
	r.changed()
	return p.selected, nil
}

func (r *Registry) selectPoint(p *Point, e Entry) {
	p.selected = true
	r.entries[p.ID] = e
	p.Node.SetMaterial(scenegraph.MaterialHingeSelected)
}

func (r *Registry) deselect(p *Point) {
	p.selected = false
	delete(r.entries, p.ID)
	if p == r.hovered {
		p.Node.SetMaterial(scenegraph.MaterialHingeHover)
		return
	}
	p.Node.SetMaterial(scenegraph.MaterialHinge)
}

// Hover moves the transient highlight to p, or removes it for nil.
// Selected points keep their selected material.
func (r *Registry) Hover(p *Point) {
	if prev := r.hovered; prev != nil && prev != p && !prev.selected {
		prev.Node.SetMaterial(scenegraph.MaterialHinge)
	}
	r.hovered = p
	if p != nil && !p.selected {
		p.Node.SetMaterial(scenegraph.MaterialHingeHover)
	}
}

// Refresh re-applies the material matching the selection and hover state of each point.
func (r *Registry) Refresh(points []*Point) {
	for _, p := range points {
		switch {
		case p.selected:
			p.Node.SetMaterial(scenegraph.MaterialHingeSelected)
		case p == r.hovered:
			p.Node.SetMaterial(scenegraph.MaterialHingeHover)
		default:
			p.Node.SetMaterial(scenegraph.MaterialHinge)
		}
	}
}

// Hovered returns the highlighted point.
func (r *Registry) Hovered() *Point { return r.hovered }

// SetVisible shows or hides every point. New points take the same visibility.
func (r *Registry) SetVisible(visible bool) {
	r.visible = visible
	for _, p := range r.order {
		p.Node.SetVisible(visible)
	}
	if !visible {
		r.Hover(nil)
	}
}

// Visible reports the current point visibility.
func (r *Registry) Visible() bool { return r.visible }

// ClearSelection deselects every point and drops all entries.
func (r *Registry) ClearSelection() {
	for _, p := range r.order {
		if p.selected {
			r.deselect(p)
		}
	}
	r.entries = make(map[string]Entry)
}

// Serialize returns the selected ids, sorted, and a copy of the entries.
func (r *Registry) Serialize() Snapshot {
	s := Snapshot{
		Selected: r.Selected(),
		Entries:  make(map[string]Entry, len(r.entries)),
	}
	for id, e := range r.entries {
		s.Entries[id] = e
	}
	return s
}

// Restore replaces the selection with the one in s. Points for a stored pair whose cubes both
// exist are created first, so their deterministic ids resolve again. Entries and ids naming a
// point that cannot be found are dropped; the number dropped is returned.
func (r *Registry) Restore(s Snapshot) int {
	r.ClearSelection()
	for _, e := range s.Entries {
		r.rematerialize(e)
	}
	dropped := 0
	for id, e := range s.Entries {
		p, ok := r.byID[id]
		if !ok {
			dropped++
			r.log.Printf("%v: %s", ErrOrphanedReference, id)
			continue
		}
		r.selectPoint(p, e)
	}
	for _, id := range s.Selected {
		if _, ok := r.entries[id]; ok {
			continue
		}
		p, ok := r.byID[id]
		if !ok {
			dropped++
			r.log.Printf("%v: %s", ErrOrphanedReference, id)
			continue
		}
		r.selectPoint(p, p.entry())
	}
	r.orphans += dropped
	return dropped
}

func (r *Registry) rematerialize(e Entry) {
	if r.cubes == nil {
		return
	}
	a, okA := r.cubes.ByID(e.Cube1ID)
	b, okB := r.cubes.ByID(e.Cube2ID)
	if !okA || !okB {
		return
	}
	if _, err := r.EnsureHingePoints(a, b); err != nil {
		r.log.Printf("restore pair %s/%s: %v", a.ID, b.ID, err)
	}
}

// RemoveCube deletes every point connected to the cube, selected or not, and returns how many
// were removed.
func (r *Registry) RemoveCube(c *grid.Cube) int {
	removed := 0
	kept := r.order[:0]
	for _, p := range r.order {
		if !p.Connects(c.ID) {
			kept = append(kept, p)
			continue
		}
		r.drop(p)
		removed++
	}
	r.order = kept
	for key := range r.byPair {
		if key[0] == c.ID || key[1] == c.ID {
			delete(r.byPair, key)
		}
	}
	return removed
}

func (r *Registry) drop(p *Point) {
	delete(r.byID, p.ID)
	delete(r.entries, p.ID)
	if r.hovered == p {
		r.hovered = nil
	}
	r.graph.RemoveNode(p.Node)
}

// Clear removes every point and entry.
func (r *Registry) Clear() {
	for _, p := range r.order {
		r.drop(p)
	}
	r.order = nil
	r.byPair = make(map[pairKey][]*Point)
	r.entries = make(map[string]Entry)
}

// Points returns every point in creation order.
func (r *Registry) Points() []*Point {
	return append([]*Point(nil), r.order...)
}

// Point returns the point with the given id.
func (r *Registry) Point(id string) (*Point, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// PointsFor returns the points between two cubes, in either order.
func (r *Registry) PointsFor(a, b string) []*Point {
	return append([]*Point(nil), r.byPair[pairOf(a, b)]...)
}

// ByNode returns the point drawn by n.
func (r *Registry) ByNode(n scenegraph.Node) (*Point, bool) {
	for _, p := range r.order {
		if p.Node == n {
			return p, true
		}
	}
	return nil, false
}

// Nodes returns the marker nodes, for hit-testing.
func (r *Registry) Nodes() []scenegraph.Node {
	out := make([]scenegraph.Node, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, p.Node)
	}
	return out
}

// Selected returns the selected ids, sorted.
func (r *Registry) Selected() []string {
	out := make([]string, 0, len(r.entries))
	for id := range r.entries {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Entry returns the entry of a selected point.
func (r *Registry) Entry(id string) (Entry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// Len returns the number of points.
func (r *Registry) Len() int { return len(r.order) }

// Orphans returns how many stored references restore has dropped so far.
func (r *Registry) Orphans() int { return r.orphans }
