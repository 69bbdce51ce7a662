// Package level holds the map model, its legacy text and structured (JSON/YAML)
// encodings, and the construction of a World from a map.
package level

import (
	"image/color"

	"github.com/pkg/errors"
)

// Point is a tile coordinate; X is the column and Y the row
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Dims is the size of the map in tiles
type Dims struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// KeyPlacement places a key on a floor tile
type KeyPlacement struct {
	X      int    `json:"x" yaml:"x"`
	Y      int    `json:"y" yaml:"y"`
	Letter Letter `json:"letter" yaml:"letter"`
}

// RGBA is a colour with float channels in [0, 1]
type RGBA [4]float32

// Color converts to an 8-bit colour, clamping out of range channels
func (c RGBA) Color() color.RGBA {
	ch := func(v float32) uint8 {
		switch {
		case v <= 0:
			return 0
		case v >= 1:
			return 0xff
		default:
			return uint8(v*255 + 0.5)
		}
	}
	return color.RGBA{R: ch(c[0]), G: ch(c[1]), B: ch(c[2]), A: ch(c[3])}
}

// Assets names the files used to draw the level; empty paths fall back to built-in shapes
// Relative paths resolve against the map file's directory
type Assets struct {
	MaterialFloor  string `json:"material_floor,omitempty" yaml:"material_floor,omitempty"`
	MaterialWall   string `json:"material_wall,omitempty" yaml:"material_wall,omitempty"`
	MaterialDoor   string `json:"material_door,omitempty" yaml:"material_door,omitempty"`
	ModelCharacter string `json:"model_character,omitempty" yaml:"model_character,omitempty"`
	ModelKey       string `json:"model_key,omitempty" yaml:"model_key,omitempty"`
	ModelGoal      string `json:"model_goal,omitempty" yaml:"model_goal,omitempty"`
	DecalWin       string `json:"decal_win,omitempty" yaml:"decal_win,omitempty"`
}

// Map is a parsed level
type Map struct {
	Dims       Dims            `json:"dims" yaml:"dims"`
	Floor      []Tile          `json:"floor" yaml:"floor"` // Row-major, Width*Height tiles
	Start      Point           `json:"start" yaml:"start"`
	Goal       *Point          `json:"goal,omitempty" yaml:"goal,omitempty"`
	Keys       []KeyPlacement  `json:"keys" yaml:"keys"`
	ClearColor RGBA            `json:"clear_color" yaml:"clear_color"`
	DoorColors map[string]RGBA `json:"door_colors,omitempty" yaml:"door_colors,omitempty"` // Door letter to colour
	Assets     Assets          `json:"assets" yaml:"assets"`
}

// DefaultClearColor is the background of maps that do not set one
var DefaultClearColor = RGBA{0.05, 0.05, 0.08, 1}

// DefaultDoorColors is the palette for doors A to E
var DefaultDoorColors = map[rune]RGBA{
	'A': {0.9, 0.2, 0.2, 1},
	'B': {0.2, 0.5, 0.95, 1},
	'C': {0.25, 0.8, 0.3, 1},
	'D': {0.95, 0.8, 0.2, 1},
	'E': {0.7, 0.3, 0.85, 1},
}

// MaxDimension bounds map width and height
const MaxDimension = 4096

func checkDims(width, height int) error {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return errors.Errorf("invalid map dimensions %dx%d, each side must be 1 to %d", width, height, MaxDimension)
	}
	return nil
}

// NewMap creates a map of the given size filled with empty tiles
func NewMap(width, height int) *Map {
	m := &Map{
		Dims:       Dims{Width: width, Height: height},
		Floor:      make([]Tile, width*height),
		ClearColor: DefaultClearColor,
	}
	return m
}

// In reports whether p lies inside the map
func (m *Map) In(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < m.Dims.Width && p.Y < m.Dims.Height
}

// At returns the tile at p, which must be inside the map
func (m *Map) At(p Point) Tile {
	return m.Floor[p.Y*m.Dims.Width+p.X]
}

// Set replaces the tile at p, which must be inside the map
func (m *Map) Set(p Point, t Tile) {
	m.Floor[p.Y*m.Dims.Width+p.X] = t
}

// DoorColor returns the colour for a door letter, from the map or the default palette
func (m *Map) DoorColor(letter rune) RGBA {
	if c, ok := m.DoorColors[string(letter)]; ok {
		return c
	}
	if c, ok := DefaultDoorColors[letter]; ok {
		return c
	}
	return RGBA{0.6, 0.6, 0.6, 1}
}

// Validate checks that the map is internally consistent
func (m *Map) Validate() error {
	if err := checkDims(m.Dims.Width, m.Dims.Height); err != nil {
		return err
	}
	if want := m.Dims.Width * m.Dims.Height; len(m.Floor) != want {
		return errors.Errorf("floor has %d tiles, expected %d", len(m.Floor), want)
	}
	if !m.In(m.Start) {
		return errors.Errorf("start (%d, %d) is outside the map", m.Start.X, m.Start.Y)
	}
	if m.At(m.Start).Solid() {
		return errors.Errorf("start (%d, %d) is not on a floor tile", m.Start.X, m.Start.Y)
	}
	if m.Goal != nil {
		if !m.In(*m.Goal) {
			return errors.Errorf("goal (%d, %d) is outside the map", m.Goal.X, m.Goal.Y)
		}
		if m.At(*m.Goal).Solid() {
			return errors.Errorf("goal (%d, %d) is not on a floor tile", m.Goal.X, m.Goal.Y)
		}
	}
	for _, k := range m.Keys {
		p := Point{X: k.X, Y: k.Y}
		if !IsKeyLetter(rune(k.Letter)) {
			return errors.Errorf("invalid key letter %q at (%d, %d)", rune(k.Letter), k.X, k.Y)
		}
		if !m.In(p) {
			return errors.Errorf("key %q at (%d, %d) is outside the map", rune(k.Letter), k.X, k.Y)
		}
		if m.At(p).Solid() {
			return errors.Errorf("key %q at (%d, %d) is not on a floor tile", rune(k.Letter), k.X, k.Y)
		}
	}
	for letter := range m.DoorColors {
		r := []rune(letter)
		if len(r) != 1 || !IsDoorLetter(r[0]) {
			return errors.Errorf("door colour for invalid letter %q", letter)
		}
	}
	return nil
}
