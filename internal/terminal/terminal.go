// Package terminal is the in-window console: a bar at the bottom of the screen with the recent
// status lines above it.
package terminal

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"hinge-builder/internal/commands"
	"hinge-builder/internal/logger"
)

const (
	barHeight = 40
	// windowed mode loses the bottom of the screen to the title bar
	windowedLift = 56
	fontSize     = 20
	padding      = 8
	visibleLines = 14
	lineHeight   = fontSize + 4
	maxLineLen   = 200
)

var (
	barColor     = rl.NewColor(40, 40, 40, 255)
	barEdgeColor = rl.NewColor(80, 80, 80, 255)
	backlogColor = rl.NewColor(24, 24, 24, 240)
)

// Terminal is toggled with the backtick key. Lines starting with "cmd " run through the command
// registry. While open it owns the keyboard, so the builder shortcuts are ignored.
type Terminal struct {
	log  *logger.Logger
	reg  *commands.Registry
	ed   editor
	open bool
}

// New returns a closed terminal.
func New(log *logger.Logger, reg *commands.Registry) *Terminal {
	return &Terminal{log: log, reg: reg}
}

func (t *Terminal) IsOpen() bool { return t.open }

// Submit runs one console line as if it had been typed and entered.
func (t *Terminal) Submit(line string) {
	t.log.Log(line)
	args, isCmd := commands.Parse(line)
	if !isCmd {
		t.log.Info(`Commands start with "cmd ", try "cmd help"`)
		return
	}
	if err := t.reg.Execute(args); err != nil {
		t.log.Error(err.Error())
	}
}

// Update reads the keyboard. Call once per frame.
func (t *Terminal) Update() {
	if rl.IsKeyPressed(rl.KeyGrave) {
		t.open = !t.open
		for rl.GetCharPressed() != 0 {
		}
		return
	}
	if !t.open {
		return
	}

	switch {
	case rl.IsKeyPressed(rl.KeyEscape):
		t.open = false
		return
	case rl.IsKeyPressed(rl.KeyUp):
		t.ed.prev()
	case rl.IsKeyPressed(rl.KeyDown):
		t.ed.next()
	case rl.IsKeyPressed(rl.KeyBackspace):
		t.ed.backspace()
	case rl.IsKeyPressed(rl.KeyV) && ctrlDown():
		t.ed.insert(rl.GetClipboardText())
	}
	for c := rl.GetCharPressed(); c != 0; c = rl.GetCharPressed() {
		t.ed.insert(string(c))
	}
	if rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeyKpEnter) {
		if line, ok := t.ed.submit(); ok {
			t.Submit(line)
		}
	}
}

func ctrlDown() bool {
	return rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl) ||
		rl.IsKeyDown(rl.KeyLeftSuper) || rl.IsKeyDown(rl.KeyRightSuper)
}

// Draw draws the bar and backlog when open.
func (t *Terminal) Draw() {
	if !t.open {
		return
	}
	w := int32(rl.GetScreenWidth())
	barY := int32(rl.GetScreenHeight()) - barHeight
	if !rl.IsWindowFullscreen() {
		barY -= windowedLift
	}

	backlogY := max(barY-visibleLines*lineHeight, int32(0))
	if barY > backlogY {
		rl.DrawRectangle(0, backlogY, w, barY-backlogY, backlogColor)
	}
	for i, m := range t.log.Tail(visibleLines) {
		text := m.Text
		if len(text) > maxLineLen {
			text = text[:maxLineLen-3] + "..."
		}
		rl.DrawText(text, padding, backlogY+int32(i*lineHeight)+padding, fontSize, levelColor(m.Level))
	}

	rl.DrawRectangle(0, barY, w, barHeight, barColor)
	rl.DrawRectangle(0, barY, w, 1, barEdgeColor)
	rl.DrawText("> "+t.ed.text()+"|", padding, barY+padding, fontSize, rl.White)
}

func levelColor(l logger.Level) rl.Color {
	switch l {
	case logger.LevelSuccess:
		return rl.Green
	case logger.LevelWarning:
		return rl.Yellow
	case logger.LevelError:
		return rl.Red
	}
	return rl.LightGray
}
