package systems

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/keymaze/components"
	"github.com/lixenwraith/keymaze/engine"
)

// RenderOptions configures the terminal view
type RenderOptions struct {
	FOV        float32 // Horizontal field of view in degrees
	MaxDepth   float32 // Rays stop after this many tiles
	Minimap    bool
	Background color.RGBA
}

// DefaultRenderOptions returns the stock view settings
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		FOV:        70,
		MaxDepth:   24,
		Minimap:    true,
		Background: color.RGBA{A: 255},
	}
}

const (
	minimapRadius = 5
	floorGlyph    = '.'
)

var (
	shadeGlyphs = []rune{'█', '▓', '▒', '░'}
	floorColor  = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	hudColor    = color.RGBA{R: 220, G: 220, B: 220, A: 255}
)

// gridCell is a wall or door tile as seen by the ray caster
type gridCell struct {
	color  color.RGBA
	height float32 // Visible fraction of a full wall
	door   rune
}

// rayHit is one tile struck by a ray
type rayHit struct {
	cell gridCell
	dist float64 // Perpendicular distance
	side int     // 0 when an X face was hit, 1 for a Z face
}

// RenderSystem draws a first-person ray cast view of the world to a terminal
type RenderSystem struct {
	screen tcell.Screen
	opts   RenderOptions

	cells map[[2]int]gridCell
	depth []float64
}

// NewRenderSystem creates a render system drawing to screen
func NewRenderSystem(screen tcell.Screen, opts RenderOptions) *RenderSystem {
	if opts.FOV <= 0 || opts.FOV >= 180 {
		opts.FOV = DefaultRenderOptions().FOV
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultRenderOptions().MaxDepth
	}
	return &RenderSystem{
		screen: screen,
		opts:   opts,
		cells:  make(map[[2]int]gridCell),
	}
}

// view holds the per-frame projection parameters
type view struct {
	width, height int
	horizon       float64
	scale         float64 // Rows per world unit at distance 1
	yaw           float64 // Radians
	fov           float64 // Radians
	eye           float64 // Camera height
}

// Step draws one frame
func (s *RenderSystem) Step(state *engine.State, dt uint64) {
	world := state.World()
	if world == nil {
		return
	}

	bg := tcell.StyleDefault.Background(rgb(s.opts.Background))
	s.screen.Fill(' ', bg)

	w, h := s.screen.Size()
	_, cam, ok := camera(world)
	if !ok || w <= 0 || h <= 1 {
		s.screen.Show()
		return
	}

	v := s.project(cam, w, h-1)
	s.buildGrid(world)
	s.drawWalls(cam, v, bg)
	s.drawSprites(world, cam, v)
	if s.opts.Minimap {
		s.drawMinimap(world, cam)
	}
	s.drawHUD(world, state, w, h)
	s.drawDecal(world, w, h)

	s.screen.Show()
}

func (s *RenderSystem) project(cam components.LocationComponent, w, h int) view {
	fov := float64(s.opts.FOV) * math.Pi / 180
	focal := float64(w) / 2 / math.Tan(fov/2)
	pitch := float64(cam.Pitch()) * math.Pi / 180

	// Terminal cells are about twice as tall as they are wide
	scale := focal / 2
	return view{
		width:   w,
		height:  h,
		horizon: float64(h)/2 - math.Tan(pitch)*scale,
		scale:   scale,
		yaw:     float64(cam.Yaw()) * math.Pi / 180,
		fov:     fov,
		eye:     float64(cam.Position[1]),
	}
}

// buildGrid collects every collidable wall and door into tile cells
func (s *RenderSystem) buildGrid(world *engine.World) {
	clear(s.cells)
	for e, t := range engine.Join3(world.Renderables, world.Locations, world.Collidables).All() {
		if t.First.Kind != components.RenderWall && t.First.Kind != components.RenderDoor {
			continue
		}
		cell := gridCell{
			color:  t.First.Color,
			height: min(max(t.Second.Position[1]+1, 0), 1),
		}
		if door, ok := world.Doors.Get(e); ok {
			cell.door = door.Letter
		}
		s.cells[tileOf(t.Second)] = cell
	}
}

func tileOf(loc components.LocationComponent) [2]int {
	return [2]int{
		int(math.Floor(float64(loc.Position[0]) + 0.5)),
		int(math.Floor(float64(loc.Position[2]) + 0.5)),
	}
}

// cast walks the tile grid along a ray with a DDA
// Returns the first full-height hit and the nearest partial one in front of it
func (s *RenderSystem) cast(px, pz, dx, dz float64) (full, partial rayHit, hitFull, hitPartial bool) {
	// Tiles are centred on integer coordinates
	px += 0.5
	pz += 0.5
	mapX, mapZ := int(math.Floor(px)), int(math.Floor(pz))

	deltaX, deltaZ := math.Inf(1), math.Inf(1)
	if dx != 0 {
		deltaX = math.Abs(1 / dx)
	}
	if dz != 0 {
		deltaZ = math.Abs(1 / dz)
	}

	stepX, sideX := 1, (float64(mapX)+1-px)*deltaX
	if dx < 0 {
		stepX, sideX = -1, (px-float64(mapX))*deltaX
	}
	stepZ, sideZ := 1, (float64(mapZ)+1-pz)*deltaZ
	if dz < 0 {
		stepZ, sideZ = -1, (pz-float64(mapZ))*deltaZ
	}

	maxDepth := float64(s.opts.MaxDepth)
	for {
		var dist float64
		var side int
		if sideX < sideZ {
			dist, side = sideX, 0
			sideX += deltaX
			mapX += stepX
		} else {
			dist, side = sideZ, 1
			sideZ += deltaZ
			mapZ += stepZ
		}
		if dist > maxDepth {
			return full, partial, false, hitPartial
		}

		cell, ok := s.cells[[2]int{mapX, mapZ}]
		if !ok {
			continue
		}
		hit := rayHit{cell: cell, dist: dist, side: side}
		if cell.height >= 1 {
			return hit, partial, true, hitPartial
		}
		if !hitPartial {
			partial, hitPartial = hit, true
		}
	}
}

func (s *RenderSystem) drawWalls(cam components.LocationComponent, v view, bg tcell.Style) {
	if cap(s.depth) < v.width {
		s.depth = make([]float64, v.width)
	}
	s.depth = s.depth[:v.width]

	floorStyle := bg.Foreground(rgb(floorColor))
	px, pz := float64(cam.Position[0]), float64(cam.Position[2])

	for col := 0; col < v.width; col++ {
		offset := v.fov * (0.5 - (float64(col)+0.5)/float64(v.width))
		ray := v.yaw + offset
		fix := math.Cos(offset)

		// Floor below the horizon
		for row := max(int(math.Ceil(v.horizon)), 0); row < v.height; row++ {
			s.screen.SetContent(col, row, floorGlyph, nil, floorStyle)
		}

		full, partial, hitFull, hitPartial := s.cast(px, pz, math.Sin(ray), math.Cos(ray))
		s.depth[col] = float64(s.opts.MaxDepth)
		if hitFull {
			full.dist *= fix
			s.depth[col] = full.dist
			s.drawSlice(col, v, full, bg)
		}
		if hitPartial {
			partial.dist *= fix
			s.depth[col] = min(s.depth[col], partial.dist)
			s.drawSlice(col, v, partial, bg)
		}
	}
}

// drawSlice draws one tile's vertical span in a column
func (s *RenderSystem) drawSlice(col int, v view, hit rayHit, bg tcell.Style) {
	dist := max(hit.dist, 0.05)
	bottom := v.horizon - (-0.5-v.eye)*v.scale/dist
	top := v.horizon - (-0.5+float64(hit.cell.height)-v.eye)*v.scale/dist

	shade := 1 / (1 + dist*0.2)
	if hit.side == 1 {
		shade *= 0.8
	}
	glyph := shadeGlyphs[min(int(dist/3), len(shadeGlyphs)-1)]
	style := bg.Foreground(rgb(scaleColor(hit.cell.color, shade)))

	first := max(int(math.Ceil(top)), 0)
	last := min(int(math.Floor(bottom)), v.height-1)
	for row := first; row <= last; row++ {
		s.screen.SetContent(col, row, glyph, nil, style)
	}
}

// drawSprites places keys lying in the maze and the goal
func (s *RenderSystem) drawSprites(world *engine.World, cam components.LocationComponent, v view) {
	half := v.fov / 2
	for e, p := range engine.Join2(world.Renderables, world.Locations).All() {
		r, loc := p.First, p.Second
		switch r.Kind {
		case components.RenderKey:
			if k, ok := world.Keys.Get(e); ok && k.Held {
				continue
			}
		case components.RenderGoal:
		default:
			continue
		}

		rx := float64(loc.Position[0] - cam.Position[0])
		rz := float64(loc.Position[2] - cam.Position[2])
		dist := math.Hypot(rx, rz)
		if dist < 0.05 {
			continue
		}
		delta := wrapAngle(math.Atan2(rx, rz) - v.yaw)
		if math.Abs(delta) > half {
			continue
		}
		col := int(float64(v.width) * (0.5 - delta/v.fov))
		perp := dist * math.Cos(delta)
		if col < 0 || col >= v.width || perp >= s.depth[col] {
			continue
		}
		row := int(math.Round(v.horizon - (float64(loc.Position[1])-v.eye)*v.scale/perp))
		if row < 0 || row >= v.height {
			continue
		}
		glyph := r.Glyph
		if k, ok := world.Keys.Get(e); ok {
			glyph = k.Letter
		}
		s.screen.SetContent(col, row, glyph, nil, tcell.StyleDefault.Foreground(rgb(r.Color)).Bold(true))
	}
}

// wrapAngle maps radians into (-pi, pi]
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

func (s *RenderSystem) drawMinimap(world *engine.World, cam components.LocationComponent) {
	size := 2*minimapRadius + 1
	style := tcell.StyleDefault.Background(tcell.ColorBlack)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			s.screen.SetContent(x, y, ' ', nil, style)
		}
	}

	center := tileOf(cam)
	layer := func(kind components.RenderKind) int {
		switch kind {
		case components.RenderFloor:
			return 0
		case components.RenderWall, components.RenderDoor:
			return 1
		default:
			return 2
		}
	}

	type mark struct {
		x, y  int
		layer int
		glyph rune
		color color.RGBA
	}
	marks := make([]mark, 0, size*size)
	for e, p := range engine.Join2(world.Renderables, world.Locations).All() {
		r := p.First
		if r.Kind == components.RenderPlayer {
			continue
		}
		tile := tileOf(p.Second)
		x, y := tile[0]-center[0]+minimapRadius, tile[1]-center[1]+minimapRadius
		if x < 0 || y < 0 || x >= size || y >= size {
			continue
		}
		glyph := r.Glyph
		if d, ok := world.Doors.Get(e); ok {
			glyph = d.Letter
			if c, ok := world.Collidables.Get(e); ok && !c.Active {
				glyph = '_'
			}
		}
		if k, ok := world.Keys.Get(e); ok {
			if k.Held {
				continue
			}
			glyph = k.Letter
		}
		marks = append(marks, mark{x: x, y: y, layer: layer(r.Kind), glyph: glyph, color: r.Color})
	}
	sort.SliceStable(marks, func(i, j int) bool { return marks[i].layer < marks[j].layer })
	for _, m := range marks {
		s.screen.SetContent(m.x, m.y, m.glyph, nil, style.Foreground(rgb(m.color)))
	}

	s.screen.SetContent(minimapRadius, minimapRadius, headingGlyph(cam.Yaw()), nil,
		style.Foreground(tcell.ColorWhite).Bold(true))
}

// headingGlyph points along the yaw on a map with +X right and +Z down
func headingGlyph(yaw float32) rune {
	a := math.Mod(float64(yaw), 360)
	if a < 0 {
		a += 360
	}
	switch {
	case a < 45 || a >= 315:
		return 'v'
	case a < 135:
		return '>'
	case a < 225:
		return '^'
	default:
		return '<'
	}
}

func (s *RenderSystem) drawHUD(world *engine.World, state *engine.State, w, h int) {
	held := make([]string, 0, 4)
	for _, k := range engine.Join1(world.Keys).All() {
		if k.Held {
			held = append(held, string(k.Letter))
		}
	}
	sort.Strings(held)

	keys := "-"
	if len(held) > 0 {
		keys = strings.Join(held, " ")
	}
	line := " keys: " + keys + " | " + state.Phase().String()
	if state.Phase() == engine.PhaseDone && state.Elapsed() < engine.DoneLingerMs {
		left := engine.DoneLingerMs - state.Elapsed()
		line += fmt.Sprintf(", closing in %.1fs", float64(left)/1000)
	}

	style := tcell.StyleDefault.Foreground(rgb(hudColor)).Reverse(true)
	drawText(s.screen, 0, h-1, w, line, style)
}

func (s *RenderSystem) drawDecal(world *engine.World, w, h int) {
	for _, d := range engine.Join1(world.Decals).All() {
		if !d.Enabled {
			continue
		}

		fill := color.RGBA{R: 255, G: 215, A: 255}
		if d.Image != nil {
			fill = d.Image.Average()
		}
		text := color.RGBA{A: 255}
		if luminance(fill) < 128 {
			text = color.RGBA{R: 255, G: 255, B: 255, A: 255}
		}
		style := tcell.StyleDefault.Background(rgb(fill)).Foreground(rgb(text)).Bold(true)

		boxW := min(len([]rune(d.Text))+6, w)
		boxH := min(5, h)
		x0, y0 := (w-boxW)/2, (h-boxH)/2
		for y := y0; y < y0+boxH; y++ {
			drawText(s.screen, x0, y, boxW, "", style)
		}
		drawText(s.screen, x0+(boxW-len([]rune(d.Text)))/2, y0+boxH/2, boxW, d.Text, style)
	}
}

// drawText writes text from x, padding with spaces up to width cells
func drawText(screen tcell.Screen, x, y, width int, text string, style tcell.Style) {
	col := 0
	for _, r := range text {
		if col >= width {
			return
		}
		screen.SetContent(x+col, y, r, nil, style)
		col++
	}
	for ; col < width; col++ {
		screen.SetContent(x+col, y, ' ', nil, style)
	}
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func scaleColor(c color.RGBA, f float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: c.A,
	}
}

func luminance(c color.RGBA) float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}
