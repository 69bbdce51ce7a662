package maze

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/keymaze/level"
)

func TestGenerateIsDeterministicPerSeed(t *testing.T) {
	cfg := Config{Width: 21, Height: 15, Seed: 7}
	a := Generate(cfg)
	b := Generate(cfg)

	assert.Equal(t, a.Grid, b.Grid)
	assert.Equal(t, int64(7), a.Seed)
	assert.Len(t, a.Grid, 15)
	assert.Len(t, a.Grid[0], 21)
}

func TestGenerateRoundsToOdd(t *testing.T) {
	r := Generate(Config{Width: 10, Height: 2, Seed: 1})
	assert.Len(t, r.Grid, 5)
	assert.Len(t, r.Grid[0], 9)
}

func TestGenerateKeepsBorderAndPath(t *testing.T) {
	r := Generate(Config{Width: 31, Height: 21, Braiding: 0.5, Seed: 99})
	rows, cols := len(r.Grid), len(r.Grid[0])

	for x := 0; x < cols; x++ {
		assert.Equal(t, Wall, r.Grid[0][x])
		assert.Equal(t, Wall, r.Grid[rows-1][x])
	}
	for y := 0; y < rows; y++ {
		assert.Equal(t, Wall, r.Grid[y][0])
		assert.Equal(t, Wall, r.Grid[y][cols-1])
	}

	require.NotEmpty(t, r.SolutionPath)
	assert.Equal(t, r.Start, r.SolutionPath[0])
	assert.Equal(t, r.End, r.SolutionPath[len(r.SolutionPath)-1])
	for i := 1; i < len(r.SolutionPath); i++ {
		a, b := r.SolutionPath[i-1], r.SolutionPath[i]
		assert.Equal(t, 1, abs(a.X-b.X)+abs(a.Y-b.Y), "path step %d is not adjacent", i)
		assert.Equal(t, Passage, r.Grid[b.Y][b.X])
	}
}

func TestBraidingAvoidsPlazas(t *testing.T) {
	r := Generate(Config{Width: 41, Height: 41, Braiding: 1, Seed: 3})
	for y := 0; y+1 < len(r.Grid); y++ {
		for x := 0; x+1 < len(r.Grid[0]); x++ {
			open := !r.Grid[y][x] && !r.Grid[y][x+1] && !r.Grid[y+1][x] && !r.Grid[y+1][x+1]
			assert.False(t, open, "2x2 open area at (%d, %d)", x, y)
		}
	}
}

func TestLevelPlacesSolvableDoorsAndKeys(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		m, _, err := Level(Config{Width: 25, Height: 19, Doors: 3, Seed: seed})
		require.NoError(t, err, "seed %d", seed)

		doors := 0
		for _, tile := range m.Floor {
			if tile.Kind == level.TileDoor {
				doors++
			}
		}
		assert.Equal(t, 3, doors, "a perfect maze always has enough chokepoints")
		assert.Len(t, m.Keys, 3)

		report := Check(m)
		assert.True(t, report.Solvable(), "seed %d", seed)
		assert.Equal(t, []rune{'A', 'B', 'C'}, report.Opened)
		assert.Zero(t, report.LockedDoors)

		// Generated maps must survive the legacy text format
		var sb strings.Builder
		require.NoError(t, level.EncodeLegacy(&sb, m))
		back, err := level.ParseLegacyString(sb.String())
		require.NoError(t, err)
		assert.Equal(t, m.Floor, back.Floor)
	}
}

func TestLevelRejectsTooManyDoors(t *testing.T) {
	_, _, err := Level(Config{Width: 11, Height: 11, Doors: MaxDoors + 1})
	assert.Error(t, err)
}

func TestLevelRejectsOversizedMaze(t *testing.T) {
	_, _, err := Level(Config{Width: level.MaxDimension + 2, Height: 11})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		legacy    string
		solvable  bool
		collected string
		locked    int
	}{
		{"open path", "3 1\nS0G\n", true, "", 0},
		{"key before door", "4 1\nSaAG\n", true, "a", 0},
		{"key behind its door", "4 1\nSAaG\n", false, "", 1},
		{"wrong key", "4 1\nSbAG\n", false, "b", 1},
		{"no goal", "2 1\nS0\n", false, "", 0},
		{"walled in", "3 3\nWWW\nWSW\nWWG\n", false, "", 0},
		{"two doors one key", "5 1\nSaAAG\n", false, "a", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := level.ParseLegacyString(tt.legacy)
			require.NoError(t, err)

			report := Check(m)
			assert.Equal(t, tt.solvable, report.Solvable())
			assert.Equal(t, tt.collected, string(report.Collected))
			assert.Equal(t, tt.locked, report.LockedDoors)
		})
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
