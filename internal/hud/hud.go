package hud

import (
	"fmt"
	"runtime"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"hinge-builder/internal/logger"
)

const (
	fontSize   = 20
	padding    = 12
	lineHeight = fontSize + 4
	// updateInterval: only refresh FPS/Mem text every N frames to reduce allocations.
	updateInterval = 30
	// statusTTL is how long the last status message stays on screen.
	statusTTL = 4 * time.Second
)

var levelColors = map[logger.Level]rl.Color{
	logger.LevelInfo:    rl.RayWhite,
	logger.LevelSuccess: rl.Green,
	logger.LevelWarning: rl.Orange,
	logger.LevelError:   rl.Red,
}

// HUD draws the overlays: the mode line at the top-left, the latest status message under it
// and the optional FPS/heap counters at the top-right. Counters are off by default.
type HUD struct {
	ShowFPS      bool
	ShowMemAlloc bool

	status  *logger.Logger
	modeLine func() string
	now      func() time.Time

	frameCount   uint32
	lastFpsText  string
	lastMemText  string
	lastMemStats runtime.MemStats
}

// New returns a HUD reading messages from status and the mode line from modeLine.
func New(status *logger.Logger, modeLine func() string) *HUD {
	return &HUD{status: status, modeLine: modeLine, now: time.Now}
}

// SetShowFPS sets whether the FPS counter is drawn.
func (h *HUD) SetShowFPS(show bool) {
	h.ShowFPS = show
}

// SetShowMemAlloc sets whether the heap allocation counter is drawn.
func (h *HUD) SetShowMemAlloc(show bool) {
	h.ShowMemAlloc = show
}

// Draw renders the overlays. Call after the scene and before the terminal.
func (h *HUD) Draw() {
	y := int32(padding)
	if h.modeLine != nil {
		rl.DrawText(h.modeLine(), padding, y, fontSize, rl.RayWhite)
		y += lineHeight
	}
	if m, ok := h.status.Last(); ok && h.now().Sub(m.Time) < statusTTL {
		rl.DrawText(m.Text, padding, y, fontSize, levelColors[m.Level])
	}
	h.drawCounters()
}

func (h *HUD) drawCounters() {
	h.frameCount++
	update := (h.frameCount % updateInterval) == 0
	if h.ShowFPS && h.lastFpsText == "" {
		update = true
	}
	if h.ShowMemAlloc && h.lastMemText == "" {
		update = true
	}

	screenW := int32(rl.GetScreenWidth())
	y := int32(padding)
	if h.ShowFPS {
		if update {
			h.lastFpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		drawRight(h.lastFpsText, screenW, y)
		y += lineHeight
	}
	if h.ShowMemAlloc {
		if update {
			runtime.ReadMemStats(&h.lastMemStats)
			h.lastMemText = fmt.Sprintf("Mem: %.2f MiB", float64(h.lastMemStats.Alloc)/(1024*1024))
		}
		drawRight(h.lastMemText, screenW, y)
	}
}

func drawRight(text string, screenW, y int32) {
	if text == "" {
		return
	}
	w := rl.MeasureText(text, fontSize)
	rl.DrawText(text, screenW-w-padding, y, fontSize, rl.Green)
}
