package mode

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"hinge-builder/internal/adjacency"
	"hinge-builder/internal/grid"
	"hinge-builder/internal/hinge"
	"hinge-builder/internal/scenestate"
)

// Snapshot captures the scene and selections. Cube positions are their grid cells, so a
// restored scene starts from the placed layout.
func (m *Machine) Snapshot() *scenestate.SceneState {
	s := scenestate.New()
	s.Mode = m.mode.String()
	s.Layer = m.layer
	for _, c := range m.cubes.All() {
		s.Cubes = append(s.Cubes, scenestate.Cube{
			ID:       c.ID,
			Position: [3]float64(c.Position),
			Fixed:    c.Fixed,
		})
	}
	for _, c := range m.selected {
		s.SelectedCubes = append(s.SelectedCubes, c.ID)
	}
	h := m.hinges.Serialize()
	s.SelectedHinges = append(s.SelectedHinges, h.Selected...)
	for id, e := range h.Entries {
		s.HingeMap[id] = scenestate.HingeEntry{
			Cube1ID:  e.Cube1ID,
			Cube2ID:  e.Cube2ID,
			Edge:     string(e.Edge),
			Position: [3]float64(e.Position),
		}
	}
	s.Normalize()
	return s
}

// Load replaces the scene with s. Cubes that cannot be placed are skipped with a warning,
// hinge references to missing points are dropped, and selected cubes are kept only within
// the cap of the restored mode. Nothing is persisted while loading.
func (m *Machine) Load(s *scenestate.SceneState) error {
	next, err := Parse(s.Mode)
	if err != nil {
		return err
	}
	if s.Layer < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLayer, s.Layer)
	}
	m.loading = true
	defer func() { m.loading = false }()

	m.clearSelection()
	m.hinges.Clear()
	m.cubes.Clear()
	m.mode = next
	m.layer = s.Layer

	skipped := 0
	for _, sc := range s.Cubes {
		c, err := m.cubes.PlaceWithID(sc.ID, mgl64.Vec3(sc.Position), sc.Fixed)
		if err != nil {
			skipped++
			continue
		}
		m.applyCapabilities(c)
	}
	m.hinges.SetVisible(next == Hinge)

	snap := hinge.Snapshot{
		Selected: append([]string(nil), s.SelectedHinges...),
		Entries:  make(map[string]hinge.Entry, len(s.HingeMap)),
	}
	for id, e := range s.HingeMap {
		snap.Entries[id] = hinge.Entry{
			Cube1ID:  e.Cube1ID,
			Cube2ID:  e.Cube2ID,
			Edge:     adjacency.Edge(e.Edge),
			Position: mgl64.Vec3(e.Position),
		}
	}
	dropped := m.hinges.Restore(snap)

	m.restoreSelection(s.SelectedCubes)

	if skipped > 0 {
		m.status.Warning(fmt.Sprintf("Skipped %d cubes that could not be placed", skipped))
	}
	if dropped > 0 {
		m.status.Warning(fmt.Sprintf("Dropped %d hinge references", dropped))
	}
	m.status.Success(fmt.Sprintf("Loaded %d cubes", m.cubes.Len()))
	return nil
}

func (m *Machine) restoreSelection(ids []string) {
	limit := 0
	switch m.mode {
	case Hinge:
		limit = m.cfg.MaxHingeCubes
	case Demo:
		limit = m.cfg.MaxDemoCubes
	}
	var picked []*grid.Cube
	for _, id := range ids {
		if len(picked) == limit {
			break
		}
		if c, ok := m.cubes.ByID(id); ok {
			picked = append(picked, c)
		}
	}
	for _, c := range picked {
		m.selectCube(c)
	}
	switch {
	case m.mode == Hinge && len(m.selected) == 2:
		if points, err := m.hinges.EnsureHingePoints(m.selected[0], m.selected[1]); err == nil {
			m.hinges.Refresh(points)
		}
	case m.mode == Demo && len(m.selected) == 1:
		m.handles.Show(cubeCenter(m.selected[0]))
	}
}
