package level

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "dims": {"width": 3, "height": 2},
  "floor": ["w", "e", "d:B", "e", "e", "e"],
  "start": {"x": 0, "y": 1},
  "goal": {"x": 2, "y": 1},
  "keys": [{"x": 1, "y": 0, "letter": "b"}],
  "clear_color": [0, 0, 0, 1],
  "door_colors": {"B": [0, 0, 1, 1]},
  "assets": {"model_key": "key.obj"}
}`

func TestDecodeStructuredJSON(t *testing.T) {
	m, err := DecodeStructured([]byte(sampleJSON), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, Dims{Width: 3, Height: 2}, m.Dims)
	assert.Equal(t, Door('B'), m.Floor[2])
	assert.Equal(t, Point{X: 0, Y: 1}, m.Start)
	assert.Equal(t, []KeyPlacement{{X: 1, Y: 0, Letter: 'b'}}, m.Keys)
	assert.Equal(t, RGBA{0, 0, 1, 1}, m.DoorColor('B'))
	assert.Equal(t, DefaultDoorColors['A'], m.DoorColor('A'))
	assert.Equal(t, "key.obj", m.Assets.ModelKey)
}

func TestDecodeStructuredRejects(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		format   Format
		contains string
	}{
		{"legacy text as JSON", "3 3\nWWW\nWSW\nWWW\n", FormatJSON, "invalid JSON map"},
		{"legacy text as YAML", "3 3\nWWW\nWSW\nWWW\n", FormatYAML, "invalid YAML map"},
		{"unknown field", `{"dims":{"width":1,"height":1},"floor":["e"],"start":{"x":0,"y":0},"extra":1}`, FormatJSON, "unknown field"},
		{"bad tile", `{"dims":{"width":1,"height":1},"floor":["x"],"start":{"x":0,"y":0}}`, FormatJSON, "invalid tile"},
		{"short floor", `{"dims":{"width":2,"height":1},"floor":["e"],"start":{"x":0,"y":0}}`, FormatJSON, "expected 2"},
		{"start in wall", `{"dims":{"width":1,"height":1},"floor":["w"],"start":{"x":0,"y":0}}`, FormatJSON, "not on a floor tile"},
		{"overflowing dims", `{"dims":{"width":4294967296,"height":4294967296},"floor":[],"start":{"x":0,"y":0}}`, FormatJSON, "invalid map dimensions"},
		{"oversized side", `{"dims":{"width":5000,"height":1},"floor":[],"start":{"x":0,"y":0}}`, FormatJSON, "invalid map dimensions"},
		{"key outside", `{"dims":{"width":1,"height":1},"floor":["e"],"start":{"x":0,"y":0},"keys":[{"x":4,"y":0,"letter":"a"}]}`, FormatJSON, "outside the map"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() { _, err = DecodeStructured([]byte(tt.data), tt.format) })
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestUpgradeLegacyToStructured(t *testing.T) {
	legacy, err := ParseLegacyString("4 3\nWWWW\nSaAG\nWWWW\n")
	require.NoError(t, err)

	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, EncodeStructured(&buf, legacy, format, true))

			back, err := DecodeStructured(buf.Bytes(), format)
			require.NoError(t, err)
			assert.Equal(t, legacy.Floor, back.Floor)
			assert.Equal(t, legacy.Start, back.Start)
			assert.Equal(t, legacy.Goal, back.Goal)
			assert.Equal(t, legacy.Keys, back.Keys)
		})
	}
}

func TestEncodeJSONCompactIsOneLine(t *testing.T) {
	m := NewMap(1, 1)
	var buf bytes.Buffer
	require.NoError(t, EncodeStructured(&buf, m, FormatJSON, false))
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
	assert.Contains(t, buf.String(), `"floor":["e"]`)
}

func TestLoadFallsBackToLegacy(t *testing.T) {
	dir := t.TempDir()

	legacyPath := filepath.Join(dir, "level.txt")
	require.NoError(t, os.WriteFile(legacyPath, []byte("3 3\nWWW\nWSW\nWWW\n"), 0o644))
	m, err := Load(legacyPath)
	require.NoError(t, err)
	assert.Equal(t, Point{X: 1, Y: 1}, m.Start)

	jsonPath := filepath.Join(dir, "level.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(sampleJSON), 0o644))
	m, err = Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Dims.Width)

	badPath := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(badPath, []byte("3 3\nWWW\nWXW\nWWW\n"), 0o644))
	_, err = Load(badPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON map")
	assert.Contains(t, err.Error(), "invalid tile 'X'")

	_, err = Load(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "couldn't read from")
}

func TestFormatSelection(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFor("maps/a.YML"))
	assert.Equal(t, FormatJSON, FormatFor("maps/a.map"))
	f, err := ParseFormat("yml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
	_, err = ParseFormat("toml")
	assert.Error(t, err)
}
