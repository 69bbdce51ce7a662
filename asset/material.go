package asset

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Material is the single material described by a .mtl file
type Material struct {
	Name    string
	Diffuse [3]float32 // Kd, linear RGB in [0, 1]
	Texture string     // map_Kd resolved against the material file's directory
}

// loadMTL reads a material file that must define exactly one material
func loadMTL(path string) (*Material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't open %s", path)
	}
	defer f.Close()

	var found []*Material
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		if fields[0] == "newmtl" {
			name := ""
			if len(fields) > 1 {
				name = fields[1]
			}
			found = append(found, &Material{Name: name, Diffuse: [3]float32{1, 1, 1}})
			continue
		}
		if len(found) == 0 {
			continue
		}
		cur := found[len(found)-1]

		switch fields[0] {
		case "Kd":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, errors.Wrapf(err, "%s:%d: bad diffuse colour", path, line)
			}
			cur.Diffuse = [3]float32{v[0], v[1], v[2]}
		case "map_Kd":
			if len(fields) > 1 {
				cur.Texture = filepath.Join(filepath.Dir(path), fields[len(fields)-1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "couldn't read from %s", path)
	}

	switch len(found) {
	case 0:
		return nil, errors.Errorf("no materials found in %s", path)
	case 1:
		return found[0], nil
	default:
		return nil, errors.Errorf("multiple materials found in %s (%d)", path, len(found))
	}
}
