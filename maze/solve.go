package maze

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/lixenwraith/keymaze/level"
)

// Report describes how far a player can get through a map
type Report struct {
	GoalReachable bool
	HasGoal       bool
	Collected     []rune // Key letters in pickup order
	Opened        []rune // Door letters in unlock order
	LockedDoors   int    // Door tiles that stay shut
	Reachable     int    // Floor tiles the player can stand on at the end
}

// Solvable reports whether the map has a goal the player can reach
func (r Report) Solvable() bool {
	return r.HasGoal && r.GoalReachable
}

// Check explores m from the start, picking up every reachable key and opening every
// door a held key fits, until nothing changes
func Check(m *level.Map) Report {
	opened := mapset.New[level.Point]()
	collected := mapset.New[int]() // Index into m.Keys
	var report Report
	report.HasGoal = m.Goal != nil

	held := make(map[rune]int) // Key letter to unused count
	for {
		reach := reachable(m, m.Start, &opened)
		progress := false

		for i, k := range m.Keys {
			if collected.Has(i) || !reach.Has(level.Point{X: k.X, Y: k.Y}) {
				continue
			}
			collected.Put(i)
			held[rune(k.Letter)]++
			report.Collected = append(report.Collected, rune(k.Letter))
			progress = true
		}

		// A key is used up by the door it opens
		for y := 0; y < m.Dims.Height; y++ {
			for x := 0; x < m.Dims.Width; x++ {
				p := level.Point{X: x, Y: y}
				t := m.At(p)
				if t.Kind != level.TileDoor || opened.Has(p) || !adjacent(m, p, &reach) {
					continue
				}
				key := t.Door + ('a' - 'A')
				if held[key] == 0 {
					continue
				}
				held[key]--
				opened.Put(p)
				report.Opened = append(report.Opened, t.Door)
				progress = true
			}
		}

		if !progress {
			report.Reachable = reach.Size()
			if m.Goal != nil {
				report.GoalReachable = reach.Has(*m.Goal)
			}
			break
		}
	}

	for _, t := range m.Floor {
		if t.Kind == level.TileDoor {
			report.LockedDoors++
		}
	}
	report.LockedDoors -= opened.Size()
	return report
}

// reachable flood-fills floor tiles and opened doors from start
func reachable(m *level.Map, start level.Point, opened *mapset.Set[level.Point]) mapset.Set[level.Point] {
	seen := mapset.New[level.Point]()
	queue := []level.Point{start}
	seen.Put(start)

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, d := range steps {
			next := level.Point{X: curr.X + d.X, Y: curr.Y + d.Y}
			if !m.In(next) || seen.Has(next) {
				continue
			}
			if m.At(next).Solid() && !opened.Has(next) {
				continue
			}
			seen.Put(next)
			queue = append(queue, next)
		}
	}
	return seen
}

func adjacent(m *level.Map, p level.Point, reach *mapset.Set[level.Point]) bool {
	for _, d := range steps {
		n := level.Point{X: p.X + d.X, Y: p.Y + d.Y}
		if m.In(n) && reach.Has(n) {
			return true
		}
	}
	return false
}
