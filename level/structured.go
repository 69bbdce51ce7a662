package level

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Format is a structured map encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml"
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", errors.Errorf("unknown map format %q", s)
	}
}

// FormatFor picks the structured format from a file extension, defaulting to JSON
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// DecodeStructured parses and validates a structured map
// Unknown fields are rejected
func DecodeStructured(data []byte, format Format) (*Map, error) {
	m := &Map{ClearColor: DefaultClearColor}

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(m); err != nil {
			return nil, errors.Wrap(err, "invalid YAML map")
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(m); err != nil {
			return nil, errors.Wrap(err, "invalid JSON map")
		}
		if dec.More() {
			return nil, errors.New("invalid JSON map: trailing data after map object")
		}
	default:
		return nil, errors.Errorf("unknown map format %q", format)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// EncodeStructured writes m; pretty indents JSON output (YAML is always indented)
func EncodeStructured(w io.Writer, m *Map, format Format, pretty bool) error {
	if err := m.Validate(); err != nil {
		return err
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return errors.Wrap(err, "couldn't encode YAML map")
		}
		return errors.Wrap(enc.Close(), "couldn't encode YAML map")
	case FormatJSON:
		enc := json.NewEncoder(w)
		if pretty {
			enc.SetIndent("", "  ")
		}
		return errors.Wrap(enc.Encode(m), "couldn't encode JSON map")
	default:
		return errors.Errorf("unknown map format %q", format)
	}
}
