// Package console registers the builder's "cmd ..." commands on a command registry.
package console

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"hinge-builder/internal/commands"
	"hinge-builder/internal/mode"
)

// Display receives the overlay toggles.
type Display interface {
	SetShowFPS(show bool)
	SetShowMemAlloc(show bool)
	SetGridVisible(show bool)
}

// Flusher writes pending scene saves.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Output receives command results.
type Output interface {
	Info(msg string)
	Success(msg string)
}

// Deps are the collaborators the commands act on. Display, Saver and OnPrefsChanged may be nil.
type Deps struct {
	Machine *mode.Machine
	Display Display
	Saver   Flusher
	Out     Output
	// OnPrefsChanged runs after a display toggle so the caller can persist preferences.
	OnPrefsChanged func()
}

var errShowHide = errors.New("use --show or --hide")

// Register adds every builder command to reg.
func Register(reg *commands.Registry, d Deps) {
	m := d.Machine

	reg.Register("mode", "mode <create|hinge|demo>", func(fs *flag.FlagSet) func([]string) error {
		return func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("mode: want one of create, hinge, demo")
			}
			next, err := mode.Parse(args[0])
			if err != nil {
				return err
			}
			m.SetMode(next)
			return nil
		}
	})

	reg.Register("layer", "layer --up | --down | --set N", func(fs *flag.FlagSet) func([]string) error {
		up := fs.Bool("up", false, "raise the build layer")
		down := fs.Bool("down", false, "lower the build layer")
		set := fs.Int("set", -1, "set the build layer")
		return func([]string) error {
			switch {
			case *up:
				return m.LayerUp()
			case *down:
				return m.LayerDown()
			case *set >= 0:
				return m.SetLayer(*set)
			}
			d.Out.Info(fmt.Sprintf("Layer %d", m.Layer()))
			return nil
		}
	})

	reg.Register("fix", "toggle fixed on the selected cube", func(fs *flag.FlagSet) func([]string) error {
		return func([]string) error {
			c, ok := m.SelectedCube()
			if !ok {
				return fmt.Errorf("fix: select exactly one cube")
			}
			return m.ToggleFixed(c)
		}
	})

	reg.Register("save", "write the scene now", func(fs *flag.FlagSet) func([]string) error {
		return func([]string) error {
			m.Persist()
			if d.Saver != nil {
				if err := d.Saver.Flush(context.Background()); err != nil {
					return err
				}
			}
			d.Out.Success("Scene saved")
			return nil
		}
	})

	reg.Register("clear", "remove every cube and hinge point", func(fs *flag.FlagSet) func([]string) error {
		return func([]string) error {
			m.ClearScene()
			return nil
		}
	})

	registerToggle(reg, "grid", "editor grid", d, func(show bool) {
		if d.Display != nil {
			d.Display.SetGridVisible(show)
		}
	})
	registerToggle(reg, "fps", "FPS counter", d, func(show bool) {
		if d.Display != nil {
			d.Display.SetShowFPS(show)
		}
	})
	registerToggle(reg, "memalloc", "heap allocation counter", d, func(show bool) {
		if d.Display != nil {
			d.Display.SetShowMemAlloc(show)
		}
	})

	reg.Register("status", "show mode, layer and counts", func(fs *flag.FlagSet) func([]string) error {
		return func([]string) error {
			d.Out.Info(Status(m))
			return nil
		}
	})

	reg.Register("help", "list commands", func(fs *flag.FlagSet) func([]string) error {
		return func([]string) error {
			for _, line := range reg.Help() {
				d.Out.Info(line)
			}
			return nil
		}
	})
}

func registerToggle(reg *commands.Registry, name, what string, d Deps, apply func(bool)) {
	reg.Register(name, "--show | --hide the "+what, func(fs *flag.FlagSet) func([]string) error {
		show := fs.Bool("show", false, "show the "+what)
		hide := fs.Bool("hide", false, "hide the "+what)
		return func([]string) error {
			if *show == *hide {
				return fmt.Errorf("%s: %w", name, errShowHide)
			}
			apply(*show)
			if d.OnPrefsChanged != nil {
				d.OnPrefsChanged()
			}
			return nil
		}
	})
}

// Status is a one-line summary of the machine state.
func Status(m *mode.Machine) string {
	return fmt.Sprintf("mode=%s layer=%d cubes=%d hinges=%d selected_hinges=%d selected_cubes=%d",
		m.Mode(), m.Layer(), m.Cubes().Len(), m.Hinges().Len(), len(m.Hinges().Selected()), len(m.Selected()))
}
