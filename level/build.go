package level

import (
	"image/color"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lixenwraith/keymaze/asset"
	"github.com/lixenwraith/keymaze/components"
	"github.com/lixenwraith/keymaze/engine"
)

// Scales and heights of spawned objects
const (
	WallScale   = 0.5
	KeyScale    = 0.2
	GoalScale   = 0.25
	CameraScale = 0.25
	FloorHeight = -0.5
)

// WinText is shown by the win decal
const WinText = "YOU WIN"

var (
	wallGray  = color.RGBA{R: 0x9a, G: 0x9a, B: 0xa6, A: 0xff}
	floorGray = color.RGBA{R: 0x40, G: 0x40, B: 0x48, A: 0xff}
	goalGold  = color.RGBA{R: 0xff, G: 0xd7, B: 0x00, A: 0xff}
)

// resources are the shared handles for one world build
type resources struct {
	cube, quad           *asset.Model
	character, key, goal *asset.Model
	floor, wall, door    *asset.Material
	floorCol, wallCol    color.RGBA
	doorTint             *color.RGBA
	decal                *asset.Texture
}

// Build spawns the entities of m into w
// dir resolves relative asset paths, normally the map file's directory
func Build(w *engine.World, m *Map, dir string) error {
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid map")
	}
	res, err := loadResources(m.Assets, dir)
	if err != nil {
		return err
	}

	for y := 0; y < m.Dims.Height; y++ {
		for x := 0; x < m.Dims.Width; x++ {
			tile := m.At(Point{X: x, Y: y})
			fx, fz := float32(x), float32(y)

			switch tile.Kind {
			case TileWall:
				w.Spawn(
					components.At(fx, 0, fz).WithScale(WallScale),
					components.CollidableComponent{Active: true},
					components.RenderComponent{Kind: components.RenderWall, Model: res.cube, Material: res.wall, Glyph: '#', Color: res.wallCol},
				)
			case TileDoor:
				col := m.DoorColor(tile.Door).Color()
				if res.doorTint != nil {
					col = multiply(col, *res.doorTint)
				}
				w.Spawn(
					components.At(fx, 0, fz).WithScale(WallScale),
					components.CollidableComponent{Active: true},
					components.DoorComponent{Letter: tile.Door},
					components.RenderComponent{Kind: components.RenderDoor, Model: res.cube, Material: res.door, Glyph: tile.Door, Color: col},
				)
			default:
				w.Spawn(
					components.At(fx, FloorHeight, fz),
					components.RenderComponent{Kind: components.RenderFloor, Model: res.quad, Material: res.floor, Glyph: '.', Color: res.floorCol},
				)
			}
		}
	}

	for _, k := range m.Keys {
		letter := rune(k.Letter)
		b := w.NewEntity()
		engine.With(b, w.Locations, components.At(float32(k.X), 0, float32(k.Y)).WithScale(KeyScale))
		engine.With(b, w.Keys, components.KeyComponent{Letter: letter})
		engine.With(b, w.Renderables, components.RenderComponent{Kind: components.RenderKey, Model: res.key, Glyph: letter, Color: m.DoorColor(components.DoorLetterFor(letter)).Color()})
		b.Build()
	}

	if m.Goal != nil {
		b := w.NewEntity()
		engine.With(b, w.Locations, components.At(float32(m.Goal.X), 0, float32(m.Goal.Y)).WithScale(GoalScale))
		engine.With(b, w.Goals, components.GoalComponent{})
		engine.With(b, w.Renderables, components.RenderComponent{Kind: components.RenderGoal, Model: res.goal, Glyph: '*', Color: goalGold})
		b.Build()
	}

	camera := components.At(float32(m.Start.X), 0, float32(m.Start.Y)).WithScale(CameraScale)
	camera = camera.RotateBy(0, openHeading(m, m.Start))
	player := w.NewEntity()
	engine.With(player, w.Locations, camera)
	engine.With(player, w.Cameras, components.CameraComponent{})
	engine.With(player, w.Renderables, components.RenderComponent{Kind: components.RenderPlayer, Model: res.character, Glyph: '@', Color: goalGold})
	player.Build()

	w.Spawn(components.DecalComponent{Image: res.decal, Text: WinText})

	zap.L().Info("built world from map",
		zap.Int("width", m.Dims.Width),
		zap.Int("height", m.Dims.Height),
		zap.Int("keys", len(m.Keys)),
		zap.Bool("goal", m.Goal != nil),
		zap.Int("entities", w.EntityCount()))
	return nil
}

// openHeading turns the player towards the first open neighbour of p
// Yaw 0 faces +Z (down the rows), 90 faces +X
func openHeading(m *Map, p Point) float32 {
	dirs := []struct {
		dx, dy int
		yaw    float32
	}{
		{0, 1, 0}, {1, 0, 90}, {0, -1, 180}, {-1, 0, -90},
	}
	for _, d := range dirs {
		n := Point{X: p.X + d.dx, Y: p.Y + d.dy}
		if m.In(n) && !m.At(n).Solid() {
			return d.yaw
		}
	}
	return 0
}

func loadResources(a Assets, dir string) (*resources, error) {
	res := &resources{
		cube:     asset.Cube("cube"),
		quad:     asset.Quad("floor", mgl32.Vec3{-0.5, 0, -0.5}, mgl32.Vec3{-0.5, 0, 0.5}, mgl32.Vec3{0.5, 0, 0.5}, mgl32.Vec3{0.5, 0, -0.5}),
		floorCol: floorGray,
		wallCol:  wallGray,
	}
	res.character, res.key, res.goal = res.cube, res.cube, res.cube

	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}

	models := []struct {
		path string
		dst  **asset.Model
	}{
		{a.ModelCharacter, &res.character},
		{a.ModelKey, &res.key},
		{a.ModelGoal, &res.goal},
	}
	for _, mdl := range models {
		if mdl.path == "" {
			continue
		}
		v, err := asset.LoadModel(resolve(mdl.path))
		if err != nil {
			return nil, err
		}
		*mdl.dst = v
	}

	materials := []struct {
		path string
		dst  **asset.Material
		col  *color.RGBA
	}{
		{a.MaterialFloor, &res.floor, &res.floorCol},
		{a.MaterialWall, &res.wall, &res.wallCol},
		{a.MaterialDoor, &res.door, nil},
	}
	for _, mat := range materials {
		if mat.path == "" {
			continue
		}
		v, err := asset.LoadMaterial(resolve(mat.path))
		if err != nil {
			return nil, err
		}
		*mat.dst = v

		tint, err := materialColor(v)
		if err != nil {
			return nil, err
		}
		if mat.col != nil {
			*mat.col = tint
		} else {
			res.doorTint = &tint
		}
	}

	if a.DecalWin != "" {
		tex, err := asset.LoadTexture(resolve(a.DecalWin))
		if err != nil {
			return nil, err
		}
		res.decal = tex
	}
	return res, nil
}

// materialColor is the diffuse colour, modulated by the texture average when there is one
func materialColor(m *asset.Material) (color.RGBA, error) {
	base := RGBA{m.Diffuse[0], m.Diffuse[1], m.Diffuse[2], 1}.Color()
	if m.Texture == "" {
		return base, nil
	}
	tex, err := asset.LoadTexture(m.Texture)
	if err != nil {
		return color.RGBA{}, err
	}
	return multiply(base, tex.Average()), nil
}

func multiply(a, b color.RGBA) color.RGBA {
	mul := func(x, y uint8) uint8 { return uint8(uint16(x) * uint16(y) / 0xff) }
	return color.RGBA{R: mul(a.R, b.R), G: mul(a.G, b.G), B: mul(a.B, b.B), A: 0xff}
}
