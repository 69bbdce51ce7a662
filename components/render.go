// @focus: #render { types }
package components

import (
	"image/color"

	"github.com/lixenwraith/keymaze/asset"
)

// RenderKind selects how the terminal renderer draws an entity
type RenderKind uint8

const (
	RenderFloor RenderKind = iota
	RenderWall
	RenderDoor
	RenderKey
	RenderGoal
	RenderPlayer
)

// RenderComponent holds shared asset handles and the terminal appearance
// Model and Material may be nil when the level ships no assets
type RenderComponent struct {
	Kind     RenderKind
	Model    *asset.Model
	Material *asset.Material
	Glyph    rune
	Color    color.RGBA
}

// DecalComponent is a screen overlay shown when Enabled
type DecalComponent struct {
	Enabled bool
	Image   *asset.Texture
	Text    string
}
