// Package scenestate is the persisted form of a builder scene and the stores that keep it.
package scenestate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Version is the current blob format.
const Version = 1

var (
	// ErrInvalidState is returned for blobs that fail schema validation.
	ErrInvalidState = errors.New("scenestate: invalid scene state")
	// ErrNotFound is returned by stores holding no saved scene.
	ErrNotFound = errors.New("scenestate: no saved scene")
)

// Cube is one placed cube.
type Cube struct {
	ID       string     `json:"id"`
	Position [3]float64 `json:"position"`
	Fixed    bool       `json:"fixed"`
}

// HingeEntry is the record of one selected hinge point.
type HingeEntry struct {
	Cube1ID  string     `json:"cube1_id"`
	Cube2ID  string     `json:"cube2_id"`
	Edge     string     `json:"edge"`
	Position [3]float64 `json:"position"`
}

// SceneState is a restorable snapshot of the scene and its selections.
type SceneState struct {
	Version        int                   `json:"version"`
	Mode           string                `json:"mode"`
	Layer          int                   `json:"layer"`
	Cubes          []Cube                `json:"cubes"`
	SelectedCubes  []string              `json:"selected_cubes"`
	SelectedHinges []string              `json:"selected_hinges"`
	HingeMap       map[string]HingeEntry `json:"hinge_map"`
}

// New returns an empty state of the current version.
func New() *SceneState {
	return &SceneState{
		Version:        Version,
		Mode:           "CREATE",
		Cubes:          []Cube{},
		SelectedCubes:  []string{},
		SelectedHinges: []string{},
		HingeMap:       map[string]HingeEntry{},
	}
}

// Normalize fills nil collections and sorts cubes by id so equal scenes encode equally.
func (s *SceneState) Normalize() {
	if s.Version == 0 {
		s.Version = Version
	}
	if s.Cubes == nil {
		s.Cubes = []Cube{}
	}
	if s.SelectedCubes == nil {
		s.SelectedCubes = []string{}
	}
	if s.SelectedHinges == nil {
		s.SelectedHinges = []string{}
	}
	if s.HingeMap == nil {
		s.HingeMap = map[string]HingeEntry{}
	}
	sort.Slice(s.Cubes, func(i, j int) bool { return s.Cubes[i].ID < s.Cubes[j].ID })
}

// Encode normalizes s and returns its JSON form.
func Encode(s *SceneState) ([]byte, error) {
	s.Normalize()
	return json.Marshal(s)
}

// Decode validates data against the scene schema and parses it.
func Decode(data []byte) (*SceneState, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	s := New()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	s.Normalize()
	return s, nil
}

// Store keeps the latest scene.
type Store interface {
	Save(ctx context.Context, s *SceneState) error
	// Load returns ErrNotFound when nothing was saved yet.
	Load(ctx context.Context) (*SceneState, error)
	Close() error
}
