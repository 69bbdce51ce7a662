// Package maze generates random keymaze levels: a recursive-backtracker maze,
// optionally braided, with locked doors along the solution and their keys placed
// where the player can reach them first.
package maze

import (
	"math/rand"
	"time"

	"github.com/zyedidia/generic/mapset"

	"github.com/lixenwraith/keymaze/level"
)

// Cell types
const (
	Wall    = true
	Passage = false
)

// MaxDoors is the number of door letters the legacy format can express (A to E)
const MaxDoors = 5

// Config controls generation
type Config struct {
	Width, Height int // Rounded down to odd, minimum 5

	// Braiding: 0.0 keeps a perfect maze (a tree), 1.0 removes every dead end it safely can
	// Cycles can let the player walk around a door, so braided mazes may get fewer doors
	Braiding float64

	Doors int   // Locked doors along the solution, at most MaxDoors
	Seed  int64 // 0 picks a time-based seed

	StartPos *level.Point // Optional (nil = top left room)
	EndPos   *level.Point // Optional (nil = bottom right room)
}

// Result is a generated grid before conversion to a map
type Result struct {
	Grid         [][]bool // [row][col], Wall or Passage
	Start, End   level.Point
	SolutionPath []level.Point
	Seed         int64
}

// Generate carves the maze grid
func Generate(cfg Config) Result {
	// Round down to odd sizes so rooms sit on odd coordinates inside a wall border
	rows := ensureOdd(cfg.Height)
	cols := ensureOdd(cfg.Width)

	grid := make([][]bool, rows)
	for i := range grid {
		grid[i] = make([]bool, cols)
		for j := range grid[i] {
			grid[i][j] = Wall
		}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	start := resolvePoint(rows, cols, cfg.StartPos, 1, 1)
	end := resolvePoint(rows, cols, cfg.EndPos, cols-2, rows-2)

	recursiveBacktracker(grid, start, rng)

	if cfg.Braiding > 0 {
		applySmartBraiding(grid, cfg.Braiding, rng)
	}

	forceOpen(grid, start)
	forceOpen(grid, end)

	return Result{
		Grid:         grid,
		Start:        start,
		End:          end,
		SolutionPath: solveBFS(grid, start, end),
		Seed:         seed,
	}
}

// recursiveBacktracker carves a uniform spanning tree over the odd cells
func recursiveBacktracker(grid [][]bool, start level.Point, rng *rand.Rand) {
	rows, cols := len(grid), len(grid[0])

	// Carving must begin on a room cell
	if start.X <= 0 || start.X >= cols-1 || start.Y <= 0 || start.Y >= rows-1 || start.X%2 == 0 || start.Y%2 == 0 {
		start = level.Point{X: 1, Y: 1}
	}

	stack := []level.Point{start}
	grid[start.Y][start.X] = Passage

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		candidates := make([]level.Point, 0, 4)

		for _, d := range jumps {
			nx, ny := curr.X+d.X, curr.Y+d.Y
			// Stay inside the one cell wall border
			if nx > 0 && nx < cols-1 && ny > 0 && ny < rows-1 && grid[ny][nx] == Wall {
				candidates = append(candidates, d)
			}
		}

		if len(candidates) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		d := candidates[rng.Intn(len(candidates))]
		grid[curr.Y+d.Y/2][curr.X+d.X/2] = Passage
		next := level.Point{X: curr.X + d.X, Y: curr.Y + d.Y}
		grid[next.Y][next.X] = Passage
		stack = append(stack, next)
	}
}

var (
	steps = []level.Point{{X: 0, Y: -1}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 1, Y: 0}}
	jumps = []level.Point{{X: 0, Y: -2}, {X: 0, Y: 2}, {X: -2, Y: 0}, {X: 2, Y: 0}}
)

// applySmartBraiding opens a wall next to dead ends with the given probability
// Walls are only removed where no 2x2 open plaza or free-standing pillar results
func applySmartBraiding(grid [][]bool, probability float64, rng *rand.Rand) {
	rows, cols := len(grid), len(grid[0])

	for y := 1; y < rows-1; y += 2 {
		for x := 1; x < cols-1; x += 2 {
			if grid[y][x] == Wall {
				continue
			}

			exits := 0
			for _, d := range steps {
				if grid[y+d.Y][x+d.X] == Passage {
					exits++
				}
			}
			if exits != 1 || rng.Float64() >= probability {
				continue
			}

			candidates := make([]level.Point, 0, 4)
			for _, jd := range jumps {
				nx, ny := x+jd.X, y+jd.Y
				wx, wy := x+jd.X/2, y+jd.Y/2
				if nx <= 0 || nx >= cols-1 || ny <= 0 || ny >= rows-1 {
					continue
				}
				if grid[ny][nx] == Passage && grid[wy][wx] == Wall && canSafelyRemoveWall(grid, wx, wy) {
					candidates = append(candidates, level.Point{X: wx, Y: wy})
				}
			}

			if len(candidates) > 0 {
				c := candidates[rng.Intn(len(candidates))]
				grid[c.Y][c.X] = Passage
			}
		}
	}
}

// canSafelyRemoveWall reports whether opening grid[y][x] avoids plazas and pillars
func canSafelyRemoveWall(grid [][]bool, x, y int) bool {
	rows, cols := len(grid), len(grid[0])

	open := func(tx, ty int) bool {
		if tx < 0 || tx >= cols || ty < 0 || ty >= rows {
			return false
		}
		return grid[ty][tx] == Passage
	}

	// Any of the four 2x2 squares containing (x, y) fully open
	for _, q := range [][2]int{{-1, -1}, {0, -1}, {-1, 0}, {0, 0}} {
		qx, qy := x+q[0], y+q[1]
		cells := [][2]int{{qx, qy}, {qx + 1, qy}, {qx, qy + 1}, {qx + 1, qy + 1}}
		plaza := true
		for _, c := range cells {
			if c[0] == x && c[1] == y {
				continue
			}
			if !open(c[0], c[1]) {
				plaza = false
				break
			}
		}
		if plaza {
			return false
		}
	}

	// A neighbouring wall left with no other wall neighbour becomes a pillar
	for _, d := range steps {
		nx, ny := x+d.X, y+d.Y
		if nx < 0 || nx >= cols || ny < 0 || ny >= rows || grid[ny][nx] != Wall {
			continue
		}
		connections := 0
		for _, d2 := range steps {
			nnx, nny := nx+d2.X, ny+d2.Y
			if nnx == x && nny == y {
				continue
			}
			if nnx >= 0 && nnx < cols && nny >= 0 && nny < rows && grid[nny][nnx] == Wall {
				connections++
			}
		}
		if connections == 0 {
			return false
		}
	}

	return true
}

func ensureOdd(n int) int {
	if n < 5 {
		return 5
	}
	if n%2 == 0 {
		return n - 1
	}
	return n
}

// resolvePoint clamps an explicit point into the interior or returns the default
func resolvePoint(rows, cols int, p *level.Point, defX, defY int) level.Point {
	if p == nil {
		return level.Point{X: defX, Y: defY}
	}
	return level.Point{
		X: min(max(p.X, 1), cols-2),
		Y: min(max(p.Y, 1), rows-2),
	}
}

// forceOpen makes p walkable and joins it to a neighbour if it is isolated
func forceOpen(grid [][]bool, p level.Point) {
	rows, cols := len(grid), len(grid[0])
	grid[p.Y][p.X] = Passage

	for _, d := range steps {
		nx, ny := p.X+d.X, p.Y+d.Y
		if nx >= 0 && nx < cols && ny >= 0 && ny < rows && grid[ny][nx] == Passage {
			return
		}
	}
	for _, d := range steps {
		nx, ny := p.X+d.X, p.Y+d.Y
		if nx > 0 && nx < cols-1 && ny > 0 && ny < rows-1 {
			grid[ny][nx] = Passage
			return
		}
	}
}

// solveBFS returns the shortest passage path from start to end, nil if there is none
func solveBFS(grid [][]bool, start, end level.Point) []level.Point {
	rows, cols := len(grid), len(grid[0])
	walkable := func(p level.Point) bool {
		return p.X >= 0 && p.X < cols && p.Y >= 0 && p.Y < rows && grid[p.Y][p.X] == Passage
	}
	if !walkable(start) || !walkable(end) {
		return nil
	}

	queue := []level.Point{start}
	cameFrom := make(map[level.Point]level.Point)
	visited := mapset.New[level.Point]()
	visited.Put(start)

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		if curr == end {
			var path []level.Point
			for curr != start {
				path = append(path, curr)
				curr = cameFrom[curr]
			}
			path = append(path, start)
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path
		}

		for _, d := range steps {
			next := level.Point{X: curr.X + d.X, Y: curr.Y + d.Y}
			if walkable(next) && !visited.Has(next) {
				visited.Put(next)
				cameFrom[next] = curr
				queue = append(queue, next)
			}
		}
	}
	return nil
}
