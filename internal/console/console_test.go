package console

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"hinge-builder/internal/app"
	"hinge-builder/internal/commands"
	"hinge-builder/internal/engineconfig"
	"hinge-builder/internal/logger"
	"hinge-builder/internal/mode"
	"hinge-builder/internal/scenegraph"
)

type fakeDisplay struct{ fps, mem, grid bool }

func (d *fakeDisplay) SetShowFPS(show bool)      { d.fps = show }
func (d *fakeDisplay) SetShowMemAlloc(show bool) { d.mem = show }
func (d *fakeDisplay) SetGridVisible(show bool)  { d.grid = show }

type countingFlusher struct{ n int }

func (f *countingFlusher) Flush(context.Context) error { f.n++; return nil }

type harness struct {
	m       *mode.Machine
	reg     *commands.Registry
	out     *logger.Logger
	display *fakeDisplay
	flusher *countingFlusher
	prefs   int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	a := app.New(engineconfig.Default(), app.Options{Graph: scenegraph.NewMemory()})
	h := &harness{
		m:       a.Machine,
		reg:     commands.NewRegistry(),
		out:     logger.NewAt(""),
		display: &fakeDisplay{},
		flusher: &countingFlusher{},
	}
	Register(h.reg, Deps{
		Machine:        h.m,
		Display:        h.display,
		Saver:          h.flusher,
		Out:            h.out,
		OnPrefsChanged: func() { h.prefs++ },
	})
	return h
}

func (h *harness) run(t *testing.T, line string) error {
	t.Helper()
	args, ok := commands.Parse(line)
	if !ok {
		t.Fatalf("not a command: %q", line)
	}
	return h.reg.Execute(args)
}

func TestConsole_ModeAndLayer(t *testing.T) {
	h := newHarness(t)
	if err := h.run(t, "cmd layer --up"); err != nil || h.m.Layer() != 1 {
		t.Fatalf("layer up: %v layer=%d", err, h.m.Layer())
	}
	if err := h.run(t, "cmd layer --set 3"); err != nil || h.m.Layer() != 3 {
		t.Fatalf("layer set: %v layer=%d", err, h.m.Layer())
	}
	if err := h.run(t, "cmd layer --down"); err != nil || h.m.Layer() != 2 {
		t.Fatalf("layer down: %v layer=%d", err, h.m.Layer())
	}
	if err := h.run(t, "cmd mode hinge"); err != nil || h.m.Mode() != mode.Hinge {
		t.Fatalf("mode: %v %v", err, h.m.Mode())
	}
	if err := h.run(t, "cmd layer --up"); !errors.Is(err, mode.ErrWrongMode) {
		t.Fatalf("layer in HINGE err=%v", err)
	}
	if err := h.run(t, "cmd mode build"); !errors.Is(err, mode.ErrUnknownMode) {
		t.Fatalf("bad mode err=%v", err)
	}
}

func TestConsole_FixSaveClearStatus(t *testing.T) {
	h := newHarness(t)
	if err := h.run(t, "cmd fix"); err == nil {
		t.Fatalf("fix without selection should fail")
	}
	c, err := h.m.PlaceAt(mgl64.Vec3{2, 0, 2})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	h.m.SetMode(mode.Demo)
	_ = h.m.ClickCube(c)
	if err := h.run(t, "cmd fix"); err != nil || !c.Fixed {
		t.Fatalf("fix: %v fixed=%v", err, c.Fixed)
	}
	if err := h.run(t, "cmd save"); err != nil || h.flusher.n != 1 {
		t.Fatalf("save: %v flushes=%d", err, h.flusher.n)
	}
	if err := h.run(t, "cmd status"); err != nil {
		t.Fatalf("status: %v", err)
	}
	if last, _ := h.out.Last(); !strings.Contains(last.Text, "mode=DEMO") || !strings.Contains(last.Text, "cubes=1") {
		t.Fatalf("status line %q", last.Text)
	}
	if err := h.run(t, "cmd clear"); err != nil || h.m.Cubes().Len() != 0 {
		t.Fatalf("clear: %v cubes=%d", err, h.m.Cubes().Len())
	}
}

func TestConsole_Toggles(t *testing.T) {
	h := newHarness(t)
	if err := h.run(t, "cmd fps --show"); err != nil || !h.display.fps {
		t.Fatalf("fps: %v", err)
	}
	if err := h.run(t, "cmd memalloc --show"); err != nil || !h.display.mem {
		t.Fatalf("memalloc: %v", err)
	}
	h.display.grid = true
	if err := h.run(t, "cmd grid --hide"); err != nil || h.display.grid {
		t.Fatalf("grid: %v", err)
	}
	if h.prefs != 3 {
		t.Fatalf("prefs saved %d times", h.prefs)
	}
	if err := h.run(t, "cmd grid"); !errors.Is(err, errShowHide) {
		t.Fatalf("no flag err=%v", err)
	}
	if err := h.run(t, "cmd grid --show --hide"); !errors.Is(err, errShowHide) {
		t.Fatalf("both flags err=%v", err)
	}
	if h.prefs != 3 {
		t.Fatalf("failed toggles saved prefs")
	}
}

func TestConsole_Help(t *testing.T) {
	h := newHarness(t)
	if err := h.run(t, "cmd help"); err != nil {
		t.Fatalf("help: %v", err)
	}
	joined := strings.Join(h.out.Lines(), "\n")
	for _, name := range []string{"mode:", "layer:", "fix:", "save:", "clear:", "grid:", "fps:", "memalloc:", "status:"} {
		if !strings.Contains(joined, name) {
			t.Fatalf("help missing %s:\n%s", name, joined)
		}
	}
}
