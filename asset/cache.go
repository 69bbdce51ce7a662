// Package asset loads models, materials and textures through process-wide caches.
//
// Each cache is keyed by canonical file path and holds weak pointers, so an asset is
// loaded at most once while any component still owns it and is dropped from the cache
// once the last owner is collected. Loaded values are immutable.
package asset

import (
	"path/filepath"
	"sync"
	"weak"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// LoadFunc reads one asset from a canonical path
type LoadFunc[T any] func(path string) (*T, error)

// Cache deduplicates loads of one asset kind
type Cache[T any] struct {
	kind    string
	load    LoadFunc[T]
	mu      sync.Mutex
	entries map[string]weak.Pointer[T]
}

// NewCache creates an empty cache; kind names the asset in errors and logs
func NewCache[T any](kind string, load LoadFunc[T]) *Cache[T] {
	return &Cache[T]{
		kind:    kind,
		load:    load,
		entries: make(map[string]weak.Pointer[T]),
	}
}

// Load returns the cached asset for path, loading it if no live copy exists
func (c *Cache[T]) Load(path string) (*T, error) {
	canon, err := Canonicalize(path)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't resolve %s %s", c.kind, path)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if wp, ok := c.entries[canon]; ok {
		if v := wp.Value(); v != nil {
			zap.L().Debug("asset cache hit", zap.String("kind", c.kind), zap.String("path", canon))
			return v, nil
		}
		delete(c.entries, canon)
	}

	v, err := c.load(canon)
	if err != nil {
		return nil, errors.Wrapf(err, "when loading %s %s", c.kind, canon)
	}
	c.entries[canon] = weak.Make(v)
	zap.L().Debug("asset loaded", zap.String("kind", c.kind), zap.String("path", canon), zap.Int("live", c.live()))
	return v, nil
}

// live counts entries whose asset is still owned somewhere, pruning the rest
// c.mu must be held
func (c *Cache[T]) live() int {
	n := 0
	for path, wp := range c.entries {
		if wp.Value() == nil {
			delete(c.entries, path)
			continue
		}
		n++
	}
	return n
}

// Canonicalize resolves path to an absolute path with symlinks evaluated
// The file must exist
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

var (
	models    = NewCache("model", loadOBJ)
	materials = NewCache("material", loadMTL)
	textures  = NewCache("texture", loadTexture)
)

// LoadModel loads a Wavefront .obj model through the shared cache
func LoadModel(path string) (*Model, error) { return models.Load(path) }

// LoadMaterial loads a single-material .mtl file through the shared cache
func LoadMaterial(path string) (*Material, error) { return materials.Load(path) }

// LoadTexture loads an image through the shared cache
func LoadTexture(path string) (*Texture, error) { return textures.Load(path) }
