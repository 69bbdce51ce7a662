package level

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseError locates a problem in a legacy map body
// Line and Col are 1-based
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Col, e.Msg)
}

// Legacy tile characters
const (
	legacyFloor = '0'
	legacyWall  = 'W'
	legacyStart = 'S'
	legacyGoal  = 'G'
)

// ParseLegacy reads the legacy text format: a "<width> <height>" line followed by
// exactly width*height tile characters, whitespace ignored
func ParseLegacy(r io.Reader) (*Map, error) {
	br := bufio.NewReader(r)

	header, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "couldn't read map header")
	}
	fields := strings.Fields(header)
	if len(fields) != 2 {
		return nil, &ParseError{Line: 1, Col: 1, Msg: fmt.Sprintf("expected \"<width> <height>\", found %q", strings.TrimSpace(header))}
	}
	width, err := strconv.Atoi(fields[0])
	if err != nil || width <= 0 {
		return nil, &ParseError{Line: 1, Col: 1, Msg: fmt.Sprintf("invalid width %q", fields[0])}
	}
	height, err := strconv.Atoi(fields[1])
	if err != nil || height <= 0 {
		return nil, &ParseError{Line: 1, Col: len(fields[0]) + 2, Msg: fmt.Sprintf("invalid height %q", fields[1])}
	}

	if err := checkDims(width, height); err != nil {
		return nil, &ParseError{Line: 1, Col: 1, Msg: err.Error()}
	}

	// The body may be shorter than the header claims, so grow as tiles arrive
	m := &Map{
		Dims:       Dims{Width: width, Height: height},
		Floor:      make([]Tile, 0, min(width*height, 1024)),
		ClearColor: DefaultClearColor,
	}
	line, col := 2, 0
	hasStart := false

	for len(m.Floor) < width*height {
		ch, _, err := br.ReadRune()
		if err == io.EOF {
			return nil, &ParseError{Line: line, Col: col + 1, Msg: fmt.Sprintf("unexpected end of file while parsing map body (%d of %d tiles)", len(m.Floor), width*height)}
		}
		if err != nil {
			return nil, errors.Wrap(err, "couldn't read map body")
		}
		col++

		idx := len(m.Floor)
		here := Point{X: idx % width, Y: idx / width}

		switch {
		case ch == '\n':
			line++
			col = 0
			continue
		case ch == '\r' || ch == '\t' || ch == ' ':
			continue
		case ch == legacyFloor:
			m.Floor = append(m.Floor, Empty())
		case ch == legacyWall:
			m.Floor = append(m.Floor, Wall())
		case ch == legacyStart:
			if hasStart {
				return nil, &ParseError{Line: line, Col: col, Msg: "second start tile 'S'"}
			}
			hasStart = true
			m.Start = here
			m.Floor = append(m.Floor, Empty())
		case ch == legacyGoal:
			if m.Goal != nil {
				return nil, &ParseError{Line: line, Col: col, Msg: "second goal tile 'G'"}
			}
			goal := here
			m.Goal = &goal
			m.Floor = append(m.Floor, Empty())
		case ch >= 'A' && ch <= 'E':
			m.Floor = append(m.Floor, Door(ch))
		case ch >= 'a' && ch <= 'e':
			m.Keys = append(m.Keys, KeyPlacement{X: here.X, Y: here.Y, Letter: Letter(ch)})
			m.Floor = append(m.Floor, Empty())
		default:
			return nil, &ParseError{Line: line, Col: col, Msg: fmt.Sprintf("invalid tile %q", ch)}
		}
	}

	rest, err := io.ReadAll(br)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't read map body")
	}
	if trimmed := strings.TrimSpace(string(rest)); trimmed != "" {
		// Report the first non-space character
		for _, ch := range string(rest) {
			if ch == '\n' {
				line++
				col = 0
				continue
			}
			col++
			if !strings.ContainsRune(" \t\r", ch) {
				break
			}
		}
		if len(trimmed) > 16 {
			trimmed = trimmed[:16] + "..."
		}
		return nil, &ParseError{Line: line, Col: col, Msg: fmt.Sprintf("expected end of file, found %q", trimmed)}
	}

	if !hasStart {
		return nil, errors.New("map has no start tile 'S'")
	}
	return m, nil
}

// ParseLegacyString parses a legacy map held in memory
func ParseLegacyString(s string) (*Map, error) {
	return ParseLegacy(strings.NewReader(s))
}

// EncodeLegacy writes m in the legacy text format
// Fails for maps the legacy format cannot express: door or key letters beyond E, or
// more than one key on a tile
func EncodeLegacy(w io.Writer, m *Map) error {
	if err := m.Validate(); err != nil {
		return err
	}

	grid := make([]rune, len(m.Floor))
	for i, t := range m.Floor {
		switch t.Kind {
		case TileWall:
			grid[i] = legacyWall
		case TileDoor:
			if t.Door > 'E' {
				return errors.Errorf("door %q cannot be written in the legacy format", t.Door)
			}
			grid[i] = t.Door
		default:
			grid[i] = legacyFloor
		}
	}
	place := func(p Point, ch rune) error {
		i := p.Y*m.Dims.Width + p.X
		if grid[i] != legacyFloor {
			return errors.Errorf("tile (%d, %d) holds both %q and %q", p.X, p.Y, grid[i], ch)
		}
		grid[i] = ch
		return nil
	}
	if err := place(m.Start, legacyStart); err != nil {
		return err
	}
	if m.Goal != nil {
		if err := place(*m.Goal, legacyGoal); err != nil {
			return err
		}
	}
	for _, k := range m.Keys {
		if rune(k.Letter) > 'e' {
			return errors.Errorf("key %q cannot be written in the legacy format", rune(k.Letter))
		}
		if err := place(Point{X: k.X, Y: k.Y}, rune(k.Letter)); err != nil {
			return err
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d\n", m.Dims.Width, m.Dims.Height)
	for y := 0; y < m.Dims.Height; y++ {
		bw.WriteString(string(grid[y*m.Dims.Width : (y+1)*m.Dims.Width]))
		bw.WriteByte('\n')
	}
	return errors.Wrap(bw.Flush(), "couldn't write legacy map")
}
