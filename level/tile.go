package level

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// TileKind is the floor layout of one grid cell
type TileKind uint8

const (
	TileEmpty TileKind = iota
	TileWall
	TileDoor
)

// Tile is one cell of the floor; Door holds the letter of a door tile
// Encoded as text: "e" empty, "w" wall, "d:A" door A
type Tile struct {
	Kind TileKind
	Door rune
}

// Empty is a walkable floor tile
func Empty() Tile { return Tile{Kind: TileEmpty} }

// Wall is a solid tile
func Wall() Tile { return Tile{Kind: TileWall} }

// Door is a locked door tile
func Door(letter rune) Tile { return Tile{Kind: TileDoor, Door: letter} }

// Solid reports whether the tile blocks movement before any door opens
func (t Tile) Solid() bool { return t.Kind != TileEmpty }

func (t Tile) String() string {
	b, err := t.MarshalText()
	if err != nil {
		return fmt.Sprintf("tile(%d)", t.Kind)
	}
	return string(b)
}

// MarshalText implements encoding.TextMarshaler
func (t Tile) MarshalText() ([]byte, error) {
	switch t.Kind {
	case TileEmpty:
		return []byte("e"), nil
	case TileWall:
		return []byte("w"), nil
	case TileDoor:
		if !IsDoorLetter(t.Door) {
			return nil, errors.Errorf("invalid door letter %q", t.Door)
		}
		return []byte("d:" + string(t.Door)), nil
	default:
		return nil, errors.Errorf("unknown tile kind %d", t.Kind)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *Tile) UnmarshalText(b []byte) error {
	s := string(b)
	switch {
	case s == "e":
		*t = Empty()
	case s == "w":
		*t = Wall()
	case strings.HasPrefix(s, "d:"):
		r := []rune(s[2:])
		if len(r) != 1 || !IsDoorLetter(r[0]) {
			return errors.Errorf("invalid door tile %q", s)
		}
		*t = Door(r[0])
	default:
		return errors.Errorf("invalid tile %q", s)
	}
	return nil
}

// Letter is a single character encoded as a one-character string
type Letter rune

// MarshalText implements encoding.TextMarshaler
func (l Letter) MarshalText() ([]byte, error) {
	return []byte(string(rune(l))), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (l *Letter) UnmarshalText(b []byte) error {
	r := []rune(string(b))
	if len(r) != 1 {
		return errors.Errorf("letter must be one character, found %q", string(b))
	}
	*l = Letter(r[0])
	return nil
}

// IsDoorLetter reports whether r can label a door
func IsDoorLetter(r rune) bool { return r >= 'A' && r <= 'Z' }

// IsKeyLetter reports whether r can label a key
func IsKeyLetter(r rune) bool { return r >= 'a' && r <= 'z' }
