package primitives

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"hinge-builder/internal/scenegraph"
)

// Palette maps node materials to draw colors.
type Palette map[scenegraph.Material]rl.Color

// DefaultPalette: sea-green translucent cubes, green selection, grey fixed cubes,
// yellow hinge markers that turn red when selected.
func DefaultPalette() Palette {
	return Palette{
		scenegraph.MaterialCube:          rl.NewColor(32, 178, 170, 204),
		scenegraph.MaterialCubeSelected:  rl.NewColor(0, 255, 0, 128),
		scenegraph.MaterialCubeFixed:     rl.NewColor(128, 128, 128, 204),
		scenegraph.MaterialHinge:         rl.NewColor(255, 215, 0, 255),
		scenegraph.MaterialHingeHover:    rl.NewColor(255, 165, 0, 255),
		scenegraph.MaterialHingeSelected: rl.NewColor(255, 40, 40, 255),
		scenegraph.MaterialHandle:        rl.NewColor(120, 160, 255, 255),
	}
}
