package mode

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"hinge-builder/internal/adjacency"
	"hinge-builder/internal/bridge"
	"hinge-builder/internal/force"
	"hinge-builder/internal/grid"
	"hinge-builder/internal/hinge"
	"hinge-builder/internal/scenegraph"
	"hinge-builder/internal/scenestate"
)

// Fixer switches cube bodies between fixed and dynamic. bridge.Bridge implements it.
type Fixer interface {
	SetFixed(c *grid.Cube, fixed bool) error
}

// Saver takes snapshots after mutating operations. scenestate.AutoSaver implements it.
type Saver interface {
	Request(s *scenestate.SceneState)
}

// Config caps the cube selection per mode.
type Config struct {
	MaxHingeCubes int
	MaxDemoCubes  int
}

// DefaultConfig allows two cubes in HINGE mode and one in DEMO mode.
func DefaultConfig() Config {
	return Config{MaxHingeCubes: 2, MaxDemoCubes: 1}
}

// Machine owns the mode, the layer and the cube selection. Other components read them
// through accessors and never change them directly.
type Machine struct {
	cfg     Config
	cubes   *grid.Index
	hinges  *hinge.Registry
	fixer   Fixer
	handles *force.Handles
	status  Status
	saver   Saver

	mode     Mode
	layer    int
	selected []*grid.Cube
	loading  bool
	hooks    []func(from, to Mode)
}

// New returns a machine in CREATE mode on layer 0. It subscribes to cube removal so hinge
// points and selections never outlive their cubes. status and saver may be nil.
func New(cfg Config, cubes *grid.Index, hinges *hinge.Registry, fixer Fixer, handles *force.Handles, status Status, saver Saver) *Machine {
	if status == nil {
		status = noStatus{}
	}
	m := &Machine{
		cfg:     cfg,
		cubes:   cubes,
		hinges:  hinges,
		fixer:   fixer,
		handles: handles,
		status:  status,
		saver:   saver,
	}
	cubes.OnRemove(m.cubeRemoved)
	hinges.OnChange(m.persist)
	hinges.SetVisible(false)
	return m
}

// OnModeChange registers fn to run after every SetMode.
func (m *Machine) OnModeChange(fn func(from, to Mode)) {
	m.hooks = append(m.hooks, fn)
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode { return m.mode }

// Layer returns the current build layer.
func (m *Machine) Layer() int { return m.layer }

// PlacementHeight is the y of cube centers on the current layer.
func (m *Machine) PlacementHeight() float64 {
	return m.cubes.Grid().LayerY(m.layer)
}

// Selected returns the selected cubes in selection order.
func (m *Machine) Selected() []*grid.Cube {
	return append([]*grid.Cube(nil), m.selected...)
}

// SelectedCube returns the selected cube when exactly one is selected.
func (m *Machine) SelectedCube() (*grid.Cube, bool) {
	if len(m.selected) != 1 {
		return nil, false
	}
	return m.selected[0], true
}

// Cubes returns the cube index.
func (m *Machine) Cubes() *grid.Index { return m.cubes }

// Hinges returns the hinge registry.
func (m *Machine) Hinges() *hinge.Registry { return m.hinges }

// Handles returns the control handles.
func (m *Machine) Handles() *force.Handles { return m.handles }

// SetMode switches to next. Any mode may follow any other. Cube and hinge selections and the
// control handles are cleared, hinge points are shown only in HINGE mode and every cube gets
// the capabilities of the new mode.
func (m *Machine) SetMode(next Mode) {
	from := m.mode
	m.clearSelection()
	m.mode = next
	m.hinges.SetVisible(next == Hinge)
	for _, c := range m.cubes.All() {
		m.applyCapabilities(c)
	}
	for _, fn := range m.hooks {
		fn(from, next)
	}
	m.status.Info("Mode: " + next.String())
	m.persist()
}

func (m *Machine) applyCapabilities(c *grid.Cube) {
	c.Selectable = m.mode == Create
	c.Hingeable = m.mode == Hinge
}

// PlaceAt places a cube in the cell under p on the current layer. The y of p is ignored.
func (m *Machine) PlaceAt(p mgl64.Vec3) (*grid.Cube, error) {
	if m.mode != Create {
		return nil, fmt.Errorf("%w: place in %s", ErrWrongMode, m.mode)
	}
	pos := mgl64.Vec3{p.X(), m.PlacementHeight(), p.Z()}
	c, err := m.cubes.Place(pos)
	switch {
	case errors.Is(err, grid.ErrCellOccupied):
		return nil, err
	case errors.Is(err, bridge.ErrBodyCreation):
		m.status.Error("Could not create a body for the cube")
		return nil, err
	case err != nil:
		return nil, err
	}
	m.applyCapabilities(c)
	m.persist()
	return c, nil
}

// RemoveCube deletes c in CREATE mode. Its hinge points go with it.
func (m *Machine) RemoveCube(c *grid.Cube) error {
	if m.mode != Create {
		return fmt.Errorf("%w: remove in %s", ErrWrongMode, m.mode)
	}
	if !m.cubes.Remove(c) {
		return nil
	}
	m.persist()
	return nil
}

func (m *Machine) cubeRemoved(c *grid.Cube) {
	m.hinges.RemoveCube(c)
	for i, s := range m.selected {
		if s == c {
			m.selected = append(m.selected[:i], m.selected[i+1:]...)
			if m.handles != nil && m.mode == Demo {
				m.handles.Hide()
			}
			break
		}
	}
}

// ClickCube toggles the selection of c.
//
// HINGE mode holds at most two cubes; clicking a third while two are held clears the
// selection. Reaching two cubes shows their hinge points. DEMO mode holds one cube and shows
// the control handles around it.
func (m *Machine) ClickCube(c *grid.Cube) error {
	switch m.mode {
	case Hinge:
		return m.clickHingeCube(c)
	case Demo:
		return m.clickDemoCube(c)
	}
	return fmt.Errorf("%w: select cube in %s", ErrWrongMode, m.mode)
}

func (m *Machine) clickHingeCube(c *grid.Cube) error {
	if m.deselectCube(c) {
		m.persist()
		return nil
	}
	if len(m.selected) >= m.cfg.MaxHingeCubes {
		m.clearSelection()
		m.persist()
		return nil
	}
	m.selectCube(c)
	if len(m.selected) == 2 {
		points, err := m.hinges.EnsureHingePoints(m.selected[0], m.selected[1])
		if errors.Is(err, adjacency.ErrNoSharedEdge) {
			m.status.Info("The cubes have no shared edge or vertex")
			m.clearSelection()
			m.persist()
			return nil
		}
		if err != nil {
			return err
		}
		m.hinges.Refresh(points)
	}
	m.persist()
	return nil
}

func (m *Machine) clickDemoCube(c *grid.Cube) error {
	if m.deselectCube(c) {
		m.handles.Hide()
		m.persist()
		return nil
	}
	if len(m.selected) >= m.cfg.MaxDemoCubes {
		m.clearSelection()
		m.persist()
		return nil
	}
	m.selectCube(c)
	m.handles.Show(cubeCenter(c))
	m.persist()
	return nil
}

func (m *Machine) selectCube(c *grid.Cube) {
	m.selected = append(m.selected, c)
	m.paint(c)
}

func (m *Machine) deselectCube(c *grid.Cube) bool {
	for i, s := range m.selected {
		if s == c {
			m.selected = append(m.selected[:i], m.selected[i+1:]...)
			m.paint(c)
			return true
		}
	}
	return false
}

func (m *Machine) isSelected(c *grid.Cube) bool {
	for _, s := range m.selected {
		if s == c {
			return true
		}
	}
	return false
}

func (m *Machine) paint(c *grid.Cube) {
	switch {
	case m.isSelected(c):
		c.Node.SetMaterial(scenegraph.MaterialCubeSelected)
	case c.Fixed:
		c.Node.SetMaterial(scenegraph.MaterialCubeFixed)
	default:
		c.Node.SetMaterial(scenegraph.MaterialCube)
	}
}

// ClearSelection drops the cube and hinge selections and hides the handles.
func (m *Machine) ClearSelection() {
	m.clearSelection()
	m.persist()
}

func (m *Machine) clearSelection() {
	sel := m.selected
	m.selected = nil
	for _, c := range sel {
		m.paint(c)
	}
	m.hinges.ClearSelection()
	if m.handles != nil {
		m.handles.Hide()
	}
}

// ClickHinge toggles the selection of p in HINGE mode.
func (m *Machine) ClickHinge(p *hinge.Point) error {
	if m.mode != Hinge {
		return fmt.Errorf("%w: select hinge in %s", ErrWrongMode, m.mode)
	}
	_, err := m.hinges.ToggleSelection(p)
	return err
}

// HoverHinge highlights p, or clears the highlight for nil. Outside HINGE mode it clears.
func (m *Machine) HoverHinge(p *hinge.Point) {
	if m.mode != Hinge {
		p = nil
	}
	m.hinges.Hover(p)
}

// ToggleFixed flips c between fixed and dynamic.
func (m *Machine) ToggleFixed(c *grid.Cube) error {
	if err := m.fixer.SetFixed(c, !c.Fixed); err != nil {
		m.status.Error("Could not change the cube body")
		return err
	}
	m.paint(c)
	if c.Fixed {
		m.status.Success("Cube fixed")
	} else {
		m.status.Success("Cube released")
	}
	m.persist()
	return nil
}

// LayerUp raises the build layer in CREATE mode.
func (m *Machine) LayerUp() error {
	return m.SetLayer(m.layer + 1)
}

// LayerDown lowers the build layer in CREATE mode, stopping at 0.
func (m *Machine) LayerDown() error {
	if m.layer == 0 {
		if m.mode != Create {
			return fmt.Errorf("%w: change layer in %s", ErrWrongMode, m.mode)
		}
		return nil
	}
	return m.SetLayer(m.layer - 1)
}

// SetLayer sets the build layer in CREATE mode.
func (m *Machine) SetLayer(layer int) error {
	if m.mode != Create {
		return fmt.Errorf("%w: change layer in %s", ErrWrongMode, m.mode)
	}
	if layer < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLayer, layer)
	}
	m.layer = layer
	m.status.Info(fmt.Sprintf("Layer %d", layer))
	m.persist()
	return nil
}

// ClearScene removes every cube and hinge point.
func (m *Machine) ClearScene() {
	m.clearSelection()
	m.hinges.Clear()
	m.cubes.Clear()
	m.status.Info("Scene cleared")
	m.persist()
}

// FollowSelection moves the control handles to the selected cube's current position.
// It runs after every physics advance.
func (m *Machine) FollowSelection() {
	c, ok := m.SelectedCube()
	if !ok || m.handles == nil || !m.handles.Active() {
		return
	}
	m.handles.Follow(cubeCenter(c))
}

// Persist requests a snapshot of the scene.
func (m *Machine) Persist() { m.persist() }

func (m *Machine) persist() {
	if m.saver == nil || m.loading {
		return
	}
	m.saver.Request(m.Snapshot())
}

func cubeCenter(c *grid.Cube) mgl64.Vec3 {
	if c.Node != nil {
		return c.Node.Transform().Position
	}
	return c.Position
}
