// Package app assembles the builder core from a config: the physics world and bridge, the cube
// index, hinge registry, control handles, mode machine, drag controller and input decoder.
// The binary adds a window around it; tests run it on the in-memory scene graph.
package app

import (
	"io"
	"log"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"hinge-builder/internal/bridge"
	"hinge-builder/internal/engineconfig"
	"hinge-builder/internal/force"
	"hinge-builder/internal/grid"
	"hinge-builder/internal/hinge"
	"hinge-builder/internal/input"
	"hinge-builder/internal/mode"
	"hinge-builder/internal/physics"
	"hinge-builder/internal/scenegraph"
)

// Options are the collaborators that differ between the binary and tests.
type Options struct {
	Graph  scenegraph.Graph
	Status mode.Status
	Saver  mode.Saver
	// Clock drives the scheduler and drag timing. Nil uses time.Now.
	Clock func() time.Time
	// Diag receives component diagnostics. Nil discards them.
	Diag io.Writer
}

// App is an assembled builder.
type App struct {
	World     *physics.World
	Bridge    *bridge.Bridge
	Scheduler *bridge.Scheduler
	Cubes     *grid.Index
	Hinges    *hinge.Registry
	Handles   *force.Handles
	Machine   *mode.Machine
	Drag      *force.Controller
	Input     *input.Decoder

	clock func() time.Time
}

// New builds an App from cfg. cfg must already be valid.
func New(cfg engineconfig.Config, opt Options) *App {
	if opt.Clock == nil {
		opt.Clock = time.Now
	}
	if opt.Diag == nil {
		opt.Diag = io.Discard
	}
	diag := func(component string) *log.Logger {
		return log.New(opt.Diag, "["+component+"] ", log.LstdFlags)
	}

	pc := physics.DefaultConfig()
	pc.Gravity = mgl64.Vec3{0, -cfg.Physics.Gravity, 0}
	pc.Iterations = cfg.Physics.Iterations
	pc.Tolerance = cfg.Physics.Tolerance
	pc.Friction = cfg.Physics.Friction
	pc.Restitution = cfg.Physics.Restitution
	pc.GroundY = cfg.Physics.GroundY
	world := physics.NewWorld(pc)

	br := bridge.New(world, bridge.Config{
		Inset:         cfg.Cube.BodyInset,
		FixedTimeStep: cfg.Physics.FixedStep,
		MaxSubSteps:   cfg.Physics.MaxSubSteps,
	}, diag("bridge"))

	g := grid.Grid{
		Cell:        cfg.Grid.CellSize,
		Origin:      mgl64.Vec3(cfg.Grid.Origin),
		LayerHeight: cfg.Grid.LayerHeight,
	}
	cubes := grid.NewIndex(g, cfg.Cube.Size, opt.Graph, br)
	hinges := hinge.NewRegistry(opt.Graph, cubes, cfg.Cube.Size, diag("hinge"))
	handles := force.NewHandles(opt.Graph, cfg.Cube.Size, cfg.Interaction.HandleOffset)
	machine := mode.New(mode.Config{
		MaxHingeCubes: cfg.Interaction.MaxHingeCubes,
		MaxDemoCubes:  cfg.Interaction.MaxDemoCubes,
	}, cubes, hinges, br, handles, opt.Status, opt.Saver)

	sched := bridge.NewScheduler(br, cubes)
	sched.OnAdvance(machine.FollowSelection)
	drag := force.NewController(br, sched, machine, opt.Clock, cfg.Interaction.ForceMagnitude)

	return &App{
		World:     world,
		Bridge:    br,
		Scheduler: sched,
		Cubes:     cubes,
		Hinges:    hinges,
		Handles:   handles,
		Machine:   machine,
		Drag:      drag,
		Input:     input.NewDecoder(machine, opt.Graph, drag, diag("input")),
		clock:     opt.Clock,
	}
}

// Tick advances the simulation to the current time. Call once per frame.
func (a *App) Tick() {
	a.Scheduler.Advance(a.clock())
}
