package level

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Load reads a map file, trying the structured format before the legacy one
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't read from %s", path)
	}

	m, structErr := DecodeStructured(data, FormatFor(path))
	if structErr == nil {
		return m, nil
	}
	zap.L().Warn("couldn't load map as structured, falling back to legacy format",
		zap.String("path", path), zap.Error(structErr))

	m, legacyErr := ParseLegacy(bytes.NewReader(data))
	if legacyErr != nil {
		return nil, errors.Wrapf(multierr.Combine(structErr, legacyErr), "couldn't parse %s", path)
	}
	return m, nil
}
