package model

import (
	"io"

	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/epona/util/obj"
)

// ImportObj reads a Wavefront OBJ file. Polygons are fanned into
// triangles, faces without normals are flat shaded.
func ImportObj(r io.Reader) (Mesh, error) {
	f, err := obj.Parse(r)
	if err != nil {
		return Mesh{}, err
	}

	builder := NewMeshBuilder()
	for _, tri := range f.Triangles() {
		var (
			corners    [3]Vertex
			hasNormals = true
		)
		for i, c := range tri {
			corners[i] = Vertex{
				Position: glm.Vec3(f.Positions[c.Position]),
				Colour:   DefaultColour,
			}
			if c.Normal < 0 {
				hasNormals = false
				continue
			}
			corners[i].Normal = glm.Vec3(f.Normals[c.Normal])
		}
		if !hasNormals {
			flatShade(&corners)
		}
		builder.Triangle(corners[0], corners[1], corners[2])
	}
	return builder.Mesh(), nil
}
