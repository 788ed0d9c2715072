// Package input turns decoded pointer events into builder operations. It knows nothing about
// devices: the caller supplies the pick ray and whether the modifier key was held.
package input

import (
	"errors"
	"io"
	"log"

	"hinge-builder/internal/force"
	"hinge-builder/internal/grid"
	"hinge-builder/internal/hinge"
	"hinge-builder/internal/mode"
	"hinge-builder/internal/scenegraph"
)

// Button is a pointer button.
type Button int

const (
	Primary Button = iota
	Secondary
)

// Kind is the kind of pointer event.
type Kind int

const (
	Press Kind = iota
	Move
	Release
)

// Event is one pointer event.
type Event struct {
	Kind   Kind
	Button Button
	Ray    scenegraph.Ray
	// Modifier is true while the action modifier is held. Presses without it belong to
	// camera navigation and are ignored.
	Modifier bool
}

// Decoder dispatches events to the mode machine and the drag controller.
type Decoder struct {
	machine *mode.Machine
	graph   scenegraph.Graph
	drag    *force.Controller
	log     *log.Logger
}

// NewDecoder returns a decoder. A nil logger discards diagnostics.
func NewDecoder(m *mode.Machine, graph scenegraph.Graph, drag *force.Controller, logger *log.Logger) *Decoder {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Decoder{machine: m, graph: graph, drag: drag, log: logger}
}

// Handle applies ev. Recoverable outcomes such as clicking an occupied cell are not errors.
func (d *Decoder) Handle(ev Event) error {
	switch ev.Kind {
	case Press:
		if !ev.Modifier {
			return nil
		}
		if ev.Button == Secondary {
			return d.secondary(ev.Ray)
		}
		return d.primary(ev.Ray)
	case Move:
		return d.move(ev.Ray)
	case Release:
		if ev.Button == Primary && d.drag.Dragging() {
			return d.drag.EndDrag()
		}
	}
	return nil
}

func (d *Decoder) primary(ray scenegraph.Ray) error {
	m := d.machine
	// hinge points take priority over the cubes behind them
	if m.Mode() == mode.Hinge {
		if n, ok := d.first(ray, m.Hinges().Nodes()); ok {
			if p, ok := m.Hinges().ByNode(n); ok {
				return m.ClickHinge(p)
			}
		}
	}
	if h, ok := d.handleUnder(ray); ok {
		return d.drag.BeginDrag(h)
	}

	switch m.Mode() {
	case mode.Create:
		at, ok := scenegraph.RayPlaneY(ray, m.PlacementHeight())
		if !ok {
			return nil
		}
		_, err := m.PlaceAt(at)
		if errors.Is(err, grid.ErrCellOccupied) {
			return nil
		}
		return err
	case mode.Hinge, mode.Demo:
		c, ok := d.cubeUnder(ray)
		if !ok {
			return nil
		}
		if m.Mode() == mode.Hinge && !c.Hingeable {
			return nil
		}
		return m.ClickCube(c)
	}
	return nil
}

func (d *Decoder) secondary(ray scenegraph.Ray) error {
	m := d.machine
	if m.Mode() != mode.Create {
		return nil
	}
	c, ok := d.cubeUnder(ray)
	if !ok {
		return nil
	}
	return m.RemoveCube(c)
}

func (d *Decoder) move(ray scenegraph.Ray) error {
	m := d.machine
	if m.Mode() == mode.Hinge {
		var hovered *hinge.Point
		if n, ok := d.first(ray, m.Hinges().Nodes()); ok {
			if p, ok := m.Hinges().ByNode(n); ok {
				hovered = p
			}
		}
		m.HoverHinge(hovered)
	}
	if !d.drag.Dragging() {
		return nil
	}
	h, ok := d.handleUnder(ray)
	if !ok {
		return nil
	}
	s, err := d.drag.UpdateDrag(h)
	if err != nil {
		return err
	}
	d.log.Printf("drag force=%v elapsed=%s substeps=%d", s.Force, s.Elapsed, s.SubSteps)
	return nil
}

func (d *Decoder) first(ray scenegraph.Ray, nodes []scenegraph.Node) (scenegraph.Node, bool) {
	if len(nodes) == 0 {
		return nil, false
	}
	hits := d.graph.HitTest(ray, nodes)
	if len(hits) == 0 {
		return nil, false
	}
	return hits[0].Node, true
}

func (d *Decoder) cubeUnder(ray scenegraph.Ray) (*grid.Cube, bool) {
	n, ok := d.first(ray, d.machine.Cubes().Nodes())
	if !ok {
		return nil, false
	}
	return d.machine.Cubes().ByNode(n)
}

func (d *Decoder) handleUnder(ray scenegraph.Ray) (*force.Handle, bool) {
	hs := d.machine.Handles()
	if hs == nil || !hs.Active() {
		return nil, false
	}
	n, ok := d.first(ray, hs.Nodes())
	if !ok {
		return nil, false
	}
	return hs.ByNode(n)
}
