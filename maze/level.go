package maze

import (
	"math/rand"
	"sort"

	"github.com/pkg/errors"
	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"

	"github.com/lixenwraith/keymaze/level"
)

// Level generates a maze and converts it into a playable map
// Doors go on corridor cells of the solution path that cut the goal off; each key is
// placed where it can be reached with only the earlier doors opened
func Level(cfg Config) (*level.Map, Result, error) {
	if cfg.Doors < 0 || cfg.Doors > MaxDoors {
		return nil, Result{}, errors.Errorf("door count %d out of range 0..%d", cfg.Doors, MaxDoors)
	}
	if cfg.Width > level.MaxDimension || cfg.Height > level.MaxDimension {
		return nil, Result{}, errors.Errorf("maze %dx%d exceeds %d tiles per side", cfg.Width, cfg.Height, level.MaxDimension)
	}

	res := Generate(cfg)
	if res.SolutionPath == nil {
		return nil, res, errors.Errorf("generated maze (seed %d) has no path from start to goal", res.Seed)
	}

	rows, cols := len(res.Grid), len(res.Grid[0])
	m := level.NewMap(cols, rows)
	for y, row := range res.Grid {
		for x, wall := range row {
			if wall {
				m.Set(level.Point{X: x, Y: y}, level.Wall())
			}
		}
	}
	m.Start = res.Start
	goal := res.End
	m.Goal = &goal

	rng := rand.New(rand.NewSource(res.Seed))
	doors := placeDoors(m, res.SolutionPath, cfg.Doors)
	if len(doors) < cfg.Doors {
		zap.L().Warn("maze has fewer chokepoints than requested doors",
			zap.Int("requested", cfg.Doors), zap.Int("placed", len(doors)), zap.Int64("seed", res.Seed))
	}

	if err := placeKeys(m, doors, rng); err != nil {
		return nil, res, errors.Wrapf(err, "seed %d", res.Seed)
	}

	if report := Check(m); !report.Solvable() {
		return nil, res, errors.Errorf("generated level (seed %d) is not solvable", res.Seed)
	}
	return m, res, nil
}

// placeDoors puts up to n doors at evenly spaced chokepoints along path
func placeDoors(m *level.Map, path []level.Point, n int) []level.Point {
	var doors []level.Point
	if n == 0 || len(path) < 3 {
		return doors
	}

	used := mapset.New[int]()
	for i := 0; i < n; i++ {
		target := (i + 1) * len(path) / (n + 1)
		idx := nearestChokepoint(m, path, target, &used)
		if idx < 0 {
			continue
		}
		used.Put(idx)
		doors = append(doors, path[idx])
	}

	// Letters follow the order the player meets the doors
	sortByPath(doors, path)
	for i, p := range doors {
		m.Set(p, level.Door(rune('A'+i)))
	}
	return doors
}

// nearestChokepoint searches outwards from target for a path cell whose blocking cuts
// the start off from the goal
func nearestChokepoint(m *level.Map, path []level.Point, target int, used *mapset.Set[int]) int {
	for off := 0; off < len(path); off++ {
		for _, idx := range []int{target - off, target + off} {
			// Never the start, the goal, or a neighbour of a used index
			if idx <= 0 || idx >= len(path)-1 || used.Has(idx) || used.Has(idx-1) || used.Has(idx+1) {
				continue
			}
			if isChokepoint(m, path[idx]) {
				return idx
			}
		}
	}
	return -1
}

func isChokepoint(m *level.Map, p level.Point) bool {
	prev := m.At(p)
	m.Set(p, level.Wall())
	defer m.Set(p, prev)

	none := mapset.New[level.Point]()
	reach := reachable(m, m.Start, &none)
	return !reach.Has(*m.Goal)
}

func sortByPath(doors []level.Point, path []level.Point) {
	order := make(map[level.Point]int, len(path))
	for i, p := range path {
		order[p] = i
	}
	sort.Slice(doors, func(i, j int) bool { return order[doors[i]] < order[doors[j]] })
}

// placeKeys puts the key for door i somewhere reachable with doors i and later shut
// Dead ends are preferred so keys sit off the direct route
func placeKeys(m *level.Map, doors []level.Point, rng *rand.Rand) error {
	avoid := mapset.New[level.Point]()
	avoid.Put(m.Start)
	avoid.Put(*m.Goal)

	for i := range doors {
		opened := mapset.New[level.Point]()
		for _, d := range doors[:i] {
			opened.Put(d)
		}
		reach := reachable(m, m.Start, &opened)

		var deadEnds, others []level.Point
		reach.Each(func(p level.Point) {
			if avoid.Has(p) || m.At(p).Solid() {
				return
			}
			if exits(m, p) == 1 {
				deadEnds = append(deadEnds, p)
			} else {
				others = append(others, p)
			}
		})

		candidates := deadEnds
		if len(candidates) == 0 {
			candidates = others
		}
		if len(candidates) == 0 {
			return errors.Errorf("no free tile for key %q", rune('a'+i))
		}
		// Set iteration order is random; sort for seed reproducibility
		sortPoints(candidates)
		p := candidates[rng.Intn(len(candidates))]
		avoid.Put(p)
		m.Keys = append(m.Keys, level.KeyPlacement{X: p.X, Y: p.Y, Letter: level.Letter('a' + i)})
	}
	return nil
}

func exits(m *level.Map, p level.Point) int {
	n := 0
	for _, d := range steps {
		q := level.Point{X: p.X + d.X, Y: p.Y + d.Y}
		if m.In(q) && !m.At(q).Solid() {
			n++
		}
	}
	return n
}

func sortPoints(ps []level.Point) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Y != ps[j].Y {
			return ps[i].Y < ps[j].Y
		}
		return ps[i].X < ps[j].X
	})
}
