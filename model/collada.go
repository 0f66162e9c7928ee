package model

import (
	"github.com/pkg/errors"

	"github.com/devblok/epona/util/collada"
	glm "github.com/go-gl/mathgl/mgl32"
)

// DefaultColour is given to imported vertices, files carry no colour
var DefaultColour = glm.Vec3{1, 1, 1}

// ImportCollada reads the first geometry of a COLLADA document
func ImportCollada(fileContents []byte) (Mesh, error) {
	doc, err := collada.Decode(fileContents)
	if err != nil {
		return Mesh{}, err
	}
	if len(doc.Geometries) == 0 {
		return Mesh{}, errors.New("collada: no geometry")
	}

	mesh := &doc.Geometries[0].Mesh
	tris := &mesh.Triangles
	vertexInput, ok := tris.Input("VERTEX")
	if !ok {
		return Mesh{}, errors.New("collada: triangles have no VERTEX input")
	}
	positions, err := mesh.Resolve(vertexInput, "POSITION")
	if err != nil {
		return Mesh{}, err
	}

	var normals *collada.Source
	normalInput, hasNormals := tris.Input("NORMAL")
	if hasNormals {
		if normals, err = mesh.Resolve(normalInput, "NORMAL"); err != nil {
			return Mesh{}, err
		}
	}

	stride := tris.Stride()
	if stride == 0 || len(tris.Index)%(stride*3) != 0 {
		return Mesh{}, errors.Errorf("collada: %d indices do not form triangles of stride %d", len(tris.Index), stride)
	}

	builder := NewMeshBuilder()
	var corners [3]Vertex
	for corner := 0; corner < len(tris.Index)/stride; corner++ {
		idx := tris.Index[corner*stride : corner*stride+stride]

		p, err := positions.Vec3(idx[vertexInput.Offset])
		if err != nil {
			return Mesh{}, err
		}
		v := Vertex{Position: glm.Vec3(p), Colour: DefaultColour}
		if hasNormals {
			n, err := normals.Vec3(idx[normalInput.Offset])
			if err != nil {
				return Mesh{}, err
			}
			v.Normal = glm.Vec3(n)
		}

		corners[corner%3] = v
		if corner%3 == 2 {
			if !hasNormals {
				flatShade(&corners)
			}
			builder.Triangle(corners[0], corners[1], corners[2])
		}
	}
	return builder.Mesh(), nil
}

// flatShade gives a triangle its face normal
func flatShade(tri *[3]Vertex) {
	n := tri[1].Position.Sub(tri[0].Position).Cross(tri[2].Position.Sub(tri[0].Position))
	if n.Len() > 0 {
		n = n.Normalize()
	}
	for i := range tri {
		tri[i].Normal = n
	}
}
