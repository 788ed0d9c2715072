package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"

	"hinge-builder/internal/app"
	"hinge-builder/internal/commands"
	"hinge-builder/internal/console"
	"hinge-builder/internal/engineconfig"
	"hinge-builder/internal/env"
	"hinge-builder/internal/graphics"
	"hinge-builder/internal/grid"
	"hinge-builder/internal/hud"
	"hinge-builder/internal/input"
	"hinge-builder/internal/logger"
	"hinge-builder/internal/mode"
	"hinge-builder/internal/observer"
	"hinge-builder/internal/primitives"
	"hinge-builder/internal/scene"
	"hinge-builder/internal/scenestate"
	"hinge-builder/internal/terminal"
)

func main() {
	var (
		configPath = flag.String("config", engineconfig.EngineConfigPath, "engine config (yaml)")
		windowed   = flag.Bool("windowed", false, "run in a 1600x900 window instead of fullscreen")
	)
	flag.Parse()

	diag := log.New(os.Stderr, "[builder] ", log.LstdFlags)
	if err := env.Load(".env"); err != nil {
		diag.Printf("load .env: %v", err)
	}
	cfg, err := engineconfig.LoadFile(*configPath)
	if err != nil {
		diag.Fatalf("config: %v", err)
	}
	// preferences are written back without the environment overrides
	fileCfg := cfg
	if err := engineconfig.ApplyEnv(&cfg, os.LookupEnv); err != nil {
		diag.Fatalf("config from environment: %v", err)
	}

	status := logger.New()

	store, err := openStore(cfg.Persistence)
	if err != nil {
		diag.Fatalf("store: %v", err)
	}
	var saver *scenestate.AutoSaver
	var modeSaver mode.Saver
	if store != nil {
		saver = scenestate.NewAutoSaver(store, cfg.Persistence.Debounce, log.New(os.Stderr, "[store] ", log.LstdFlags))
		modeSaver = saver
	}

	var obs *observer.Server
	if cfg.Observer.Addr != "" && saver != nil {
		obs = observer.NewServer(log.New(os.Stderr, "[observer] ", log.LstdFlags))
		saver.OnSaved(obs.Publish)
		go func() {
			if err := obs.ListenAndServe(cfg.Observer.Addr); err != nil {
				diag.Printf("observer: %v", err)
			}
		}()
	}

	// the scene draws the grid at the current layer, which the machine owns
	var machine *mode.Machine
	layerY := func() float64 { return machine.PlacementHeight() }
	g := grid.Grid{Cell: cfg.Grid.CellSize, Origin: mgl64.Vec3(cfg.Grid.Origin), LayerHeight: cfg.Grid.LayerHeight}
	prims := primitives.NewRegistry(primitives.DefaultPalette())
	scn := scene.New(g, layerY, prims)
	scn.SetGridVisible(cfg.Display.GridVisible)

	a := app.New(cfg, app.Options{Graph: scn, Status: status, Saver: modeSaver, Diag: os.Stderr})
	machine = a.Machine

	restore(store, machine, status, diag)

	overlay := hud.New(status, func() string {
		return fmt.Sprintf("%s  layer %d  cubes %d", machine.Mode(), machine.Layer(), machine.Cubes().Len())
	})
	overlay.SetShowFPS(cfg.Display.ShowFPS)
	overlay.SetShowMemAlloc(cfg.Display.ShowMemAlloc)

	display := &display{hud: overlay, scene: scn}
	reg := commands.NewRegistry()
	var flusher console.Flusher
	if saver != nil {
		flusher = saver
	}
	console.Register(reg, console.Deps{
		Machine: machine,
		Display: display,
		Saver:   flusher,
		Out:     status,
		OnPrefsChanged: func() {
			fileCfg.Display = engineconfig.DisplayConfig{
				ShowFPS:      overlay.ShowFPS,
				ShowMemAlloc: overlay.ShowMemAlloc,
				GridVisible:  scn.GridVisible,
			}
			if err := engineconfig.SaveFile(*configPath, fileCfg); err != nil {
				status.Error("Could not save preferences: " + err.Error())
			}
		},
	})
	term := terminal.New(status, reg)

	update := func() {
		term.Update()
		if !term.IsOpen() {
			scn.Update()
			handleKeys(machine, status)
		}
		for _, ev := range pointerEvents(scn) {
			if err := a.Input.Handle(ev); err != nil && !errors.Is(err, mode.ErrWrongMode) {
				diag.Printf("input: %v", err)
			}
		}
		a.Tick()
	}
	draw := func() {
		scn.Draw()
		overlay.Draw()
		term.Draw()
	}
	onClose := func() {
		if saver != nil {
			if err := saver.Close(); err != nil {
				diag.Printf("final save: %v", err)
			}
		}
		if store != nil {
			_ = store.Close()
		}
		if obs != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			_ = obs.Shutdown(ctx)
			cancel()
		}
		prims.Unload()
	}

	graphics.Run(graphics.Window{
		Title:      "Hinge Builder",
		Width:      1600,
		Height:     900,
		Fullscreen: !*windowed,
	}, update, draw, onClose)
}

func openStore(p engineconfig.PersistenceConfig) (scenestate.Store, error) {
	switch p.Store {
	case "file":
		return scenestate.NewFileStore(p.Path), nil
	case "sqlite":
		db, err := scenestate.OpenSQLite(p.Path)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	return nil, nil
}

func restore(store scenestate.Store, m *mode.Machine, status *logger.Logger, diag *log.Logger) {
	if store == nil {
		status.Info("Welcome! Hold Ctrl and click to place cubes")
		return
	}
	st, err := store.Load(context.Background())
	switch {
	case errors.Is(err, scenestate.ErrNotFound):
		status.Info("Welcome! Hold Ctrl and click to place cubes")
		return
	case err != nil:
		diag.Printf("load scene: %v", err)
		status.Warning("Saved scene could not be read, starting empty")
		return
	}
	if err := m.Load(st); err != nil {
		diag.Printf("restore scene: %v", err)
		status.Warning("Saved scene could not be restored, starting empty")
	}
}

// handleKeys maps the shortcut keys: 1-3 switch modes, the arrows change the build layer and
// F toggles fixed on the selected cube.
func handleKeys(m *mode.Machine, status *logger.Logger) {
	switch {
	case rl.IsKeyPressed(rl.KeyOne):
		m.SetMode(mode.Create)
	case rl.IsKeyPressed(rl.KeyTwo):
		m.SetMode(mode.Hinge)
	case rl.IsKeyPressed(rl.KeyThree):
		m.SetMode(mode.Demo)
	case rl.IsKeyPressed(rl.KeyUp):
		if m.Mode() == mode.Create {
			_ = m.LayerUp()
		}
	case rl.IsKeyPressed(rl.KeyDown):
		if m.Mode() == mode.Create {
			_ = m.LayerDown()
		}
	case rl.IsKeyPressed(rl.KeyF):
		if c, ok := m.SelectedCube(); ok {
			_ = m.ToggleFixed(c)
		} else {
			status.Info("Select one cube to fix it")
		}
	}
}

func pointerEvents(scn *scene.Scene) []input.Event {
	modifier := rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl) ||
		rl.IsKeyDown(rl.KeyLeftSuper) || rl.IsKeyDown(rl.KeyRightSuper)
	ray := scn.MouseRay()
	var evs []input.Event
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		evs = append(evs, input.Event{Kind: input.Press, Button: input.Primary, Ray: ray, Modifier: modifier})
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		evs = append(evs, input.Event{Kind: input.Press, Button: input.Secondary, Ray: ray, Modifier: modifier})
	}
	if d := rl.GetMouseDelta(); d.X != 0 || d.Y != 0 {
		evs = append(evs, input.Event{Kind: input.Move, Ray: ray, Modifier: modifier})
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		evs = append(evs, input.Event{Kind: input.Release, Button: input.Primary, Ray: ray, Modifier: modifier})
	}
	return evs
}

// display routes overlay toggles to the HUD and the scene.
type display struct {
	hud   *hud.HUD
	scene *scene.Scene
}

func (d *display) SetShowFPS(show bool)      { d.hud.SetShowFPS(show) }
func (d *display) SetShowMemAlloc(show bool) { d.hud.SetShowMemAlloc(show) }
func (d *display) SetGridVisible(show bool)  { d.scene.SetGridVisible(show) }
