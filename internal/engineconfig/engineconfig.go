package engineconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EngineConfigPath is the path to the config file, relative to the process working directory.
const EngineConfigPath = "config/engine.yaml"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("engineconfig: invalid value")

// Config holds everything fixed at world construction, plus display preferences that the
// console may change and save.
type Config struct {
	Grid        GridConfig        `yaml:"grid"`
	Cube        CubeConfig        `yaml:"cube"`
	Physics     PhysicsConfig     `yaml:"physics"`
	Interaction InteractionConfig `yaml:"interaction"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Display     DisplayConfig     `yaml:"display"`
	Observer    ObserverConfig    `yaml:"observer"`
}

type GridConfig struct {
	CellSize    float64    `yaml:"cell_size"`
	Origin      [3]float64 `yaml:"origin"`
	LayerHeight float64    `yaml:"layer_height"`
}

type CubeConfig struct {
	Size      float64 `yaml:"size"`
	BodyInset float64 `yaml:"body_inset"`
}

type PhysicsConfig struct {
	Gravity     float64 `yaml:"gravity"`
	Iterations  int     `yaml:"iterations"`
	Tolerance   float64 `yaml:"tolerance"`
	Friction    float64 `yaml:"friction"`
	Restitution float64 `yaml:"restitution"`
	FixedStep   float64 `yaml:"fixed_step"`
	MaxSubSteps int     `yaml:"max_sub_steps"`
	GroundY     float64 `yaml:"ground_y"`
}

type InteractionConfig struct {
	ForceMagnitude float64 `yaml:"force_magnitude"`
	HandleOffset   float64 `yaml:"handle_offset"`
	MaxHingeCubes  int     `yaml:"max_hinge_cubes"`
	MaxDemoCubes   int     `yaml:"max_demo_cubes"`
}

// PersistenceConfig selects the scene store. Store is "file", "sqlite" or "none".
type PersistenceConfig struct {
	Store    string        `yaml:"store"`
	Path     string        `yaml:"path"`
	Debounce time.Duration `yaml:"debounce"`
}

type DisplayConfig struct {
	ShowFPS      bool `yaml:"show_fps"`
	ShowMemAlloc bool `yaml:"show_memalloc"`
	GridVisible  bool `yaml:"grid_visible"`
}

// ObserverConfig enables the scene stream when Addr is set, e.g. "127.0.0.1:8089".
type ObserverConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the builder defaults: 4-unit cells and cubes, gravity 9.8, 30 solver
// iterations, a file store debounced by 500ms, overlays off and the grid on.
func Default() Config {
	return Config{
		Grid: GridConfig{CellSize: 4, Origin: [3]float64{2, -3, 2}, LayerHeight: 4},
		Cube: CubeConfig{Size: 4, BodyInset: 0.01},
		Physics: PhysicsConfig{
			Gravity:     9.8,
			Iterations:  30,
			Tolerance:   0.0001,
			Friction:    0.5,
			Restitution: 0.3,
			FixedStep:   1.0 / 60,
			MaxSubSteps: 3,
			GroundY:     -5,
		},
		Interaction: InteractionConfig{
			ForceMagnitude: 1000,
			HandleOffset:   1,
			MaxHingeCubes:  2,
			MaxDemoCubes:   1,
		},
		Persistence: PersistenceConfig{
			Store:    "file",
			Path:     "saves/scene.json.zst",
			Debounce: 500 * time.Millisecond,
		},
		Display: DisplayConfig{GridVisible: true},
	}
}

// Validate reports the first value that cannot build a world.
func (c Config) Validate() error {
	switch {
	case !(c.Grid.CellSize > 0):
		return fmt.Errorf("%w: grid.cell_size %v", ErrInvalid, c.Grid.CellSize)
	case !(c.Grid.LayerHeight > 0):
		return fmt.Errorf("%w: grid.layer_height %v", ErrInvalid, c.Grid.LayerHeight)
	case !(c.Cube.Size > 0):
		return fmt.Errorf("%w: cube.size %v", ErrInvalid, c.Cube.Size)
	case c.Cube.BodyInset < 0 || c.Cube.BodyInset >= c.Cube.Size/2:
		return fmt.Errorf("%w: cube.body_inset %v", ErrInvalid, c.Cube.BodyInset)
	case c.Physics.Iterations < 1:
		return fmt.Errorf("%w: physics.iterations %d", ErrInvalid, c.Physics.Iterations)
	case !(c.Physics.FixedStep > 0):
		return fmt.Errorf("%w: physics.fixed_step %v", ErrInvalid, c.Physics.FixedStep)
	case c.Physics.MaxSubSteps < 1:
		return fmt.Errorf("%w: physics.max_sub_steps %d", ErrInvalid, c.Physics.MaxSubSteps)
	case c.Interaction.MaxHingeCubes < 2:
		return fmt.Errorf("%w: interaction.max_hinge_cubes %d", ErrInvalid, c.Interaction.MaxHingeCubes)
	case c.Interaction.MaxDemoCubes < 1:
		return fmt.Errorf("%w: interaction.max_demo_cubes %d", ErrInvalid, c.Interaction.MaxDemoCubes)
	case c.Persistence.Debounce < 0:
		return fmt.Errorf("%w: persistence.debounce %s", ErrInvalid, c.Persistence.Debounce)
	}
	switch c.Persistence.Store {
	case "file", "sqlite", "none":
	default:
		return fmt.Errorf("%w: persistence.store %q", ErrInvalid, c.Persistence.Store)
	}
	return nil
}

// Load reads EngineConfigPath. See LoadFile.
func Load() (Config, error) {
	return LoadFile(EngineConfigPath)
}

// LoadFile reads the config at path over the defaults. A missing file returns Default()
// without error and does not create a file. Malformed yaml or invalid values are errors.
func LoadFile(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Default(), err
	}
	return c, nil
}

// Environment variables read by ApplyEnv.
const (
	EnvStore        = "HINGE_STORE"
	EnvStorePath    = "HINGE_STORE_PATH"
	EnvDebounce     = "HINGE_DEBOUNCE"
	EnvObserverAddr = "HINGE_OBSERVER_ADDR"
)

// ApplyEnv overrides the persistence and observer settings of c from lookup (os.LookupEnv in
// the binary) and validates the result. Unset variables leave c unchanged.
func ApplyEnv(c *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvStore); ok {
		c.Persistence.Store = v
	}
	if v, ok := lookup(EnvStorePath); ok {
		c.Persistence.Path = v
	}
	if v, ok := lookup(EnvDebounce); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s %q", ErrInvalid, EnvDebounce, v)
		}
		c.Persistence.Debounce = d
	}
	if v, ok := lookup(EnvObserverAddr); ok {
		c.Observer.Addr = v
	}
	return c.Validate()
}

// Save writes c to EngineConfigPath.
func Save(c Config) error {
	return SaveFile(EngineConfigPath, c)
}

// SaveFile writes c as yaml, creating the directory if needed.
func SaveFile(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
