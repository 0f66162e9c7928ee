// Package obj reads the geometry of Wavefront OBJ files.
//
// Only positions, normals and faces are kept. Texture coordinates,
// materials, groups and smoothing are skipped.
package obj

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Vec3 is a position or a normal
type Vec3 [3]float32

// Corner references a position and optionally a normal,
// Normal is -1 when absent. Indices are zero based.
type Corner struct {
	Position int
	Normal   int
}

// Face is a polygon with three or more corners
type Face []Corner

// File is the parsed geometry
type File struct {
	Positions []Vec3
	Normals   []Vec3
	Faces     []Face
}

// Triangles returns every face fanned out into triangles
func (f *File) Triangles() [][3]Corner {
	var tris [][3]Corner
	for _, face := range f.Faces {
		for i := 1; i+1 < len(face); i++ {
			tris = append(tris, [3]Corner{face[0], face[i], face[i+1]})
		}
	}
	return tris
}

// Parse reads an OBJ file
func Parse(r io.Reader) (*File, error) {
	var (
		f       File
		lineNum int
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, errors.Wrapf(err, "obj: line %d", lineNum)
			}
			f.Positions = append(f.Positions, v)
		case "vn":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, errors.Wrapf(err, "obj: line %d", lineNum)
			}
			f.Normals = append(f.Normals, v)
		case "f":
			if len(fields) < 4 {
				return nil, errors.Errorf("obj: line %d: face needs at least 3 corners", lineNum)
			}
			face := make(Face, 0, len(fields)-1)
			for _, field := range fields[1:] {
				c, err := parseCorner(field, len(f.Positions), len(f.Normals))
				if err != nil {
					return nil, errors.Wrapf(err, "obj: line %d", lineNum)
				}
				face = append(face, c)
			}
			f.Faces = append(f.Faces, face)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "obj")
	}
	return &f, nil
}

func parseVec3(fields []string) (Vec3, error) {
	var v Vec3
	if len(fields) < 3 {
		return v, errors.Errorf("expected 3 components, got %d", len(fields))
	}
	for i := 0; i < 3; i++ {
		n, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return v, err
		}
		v[i] = float32(n)
	}
	return v, nil
}

// parseCorner reads v, v/vt, v//vn or v/vt/vn
func parseCorner(field string, positions, normals int) (Corner, error) {
	parts := strings.Split(field, "/")
	if len(parts) > 3 {
		return Corner{}, errors.Errorf("bad face corner %q", field)
	}

	pos, err := resolveIndex(parts[0], positions)
	if err != nil {
		return Corner{}, errors.Wrapf(err, "position of %q", field)
	}

	c := Corner{Position: pos, Normal: -1}
	if len(parts) == 3 && parts[2] != "" {
		if c.Normal, err = resolveIndex(parts[2], normals); err != nil {
			return Corner{}, errors.Wrapf(err, "normal of %q", field)
		}
	}
	return c, nil
}

// resolveIndex turns a one based or negative relative index
// into a zero based one
func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0 && i <= count:
		return i - 1, nil
	case i < 0 && -i <= count:
		return count + i, nil
	}
	return 0, errors.Errorf("index %d out of range", i)
}
