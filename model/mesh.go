package model

import (
	"math"

	glm "github.com/go-gl/mathgl/mgl32"
)

// Mesh is indexed triangle geometry
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// Bounds returns the corners of the axis aligned box around the mesh
func (m *Mesh) Bounds() (min, max glm.Vec3) {
	if len(m.Vertices) == 0 {
		return glm.Vec3{}, glm.Vec3{}
	}
	min = glm.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	max = glm.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, v := range m.Vertices {
		for i := 0; i < 3; i++ {
			if v.Position[i] < min[i] {
				min[i] = v.Position[i]
			}
			if v.Position[i] > max[i] {
				max[i] = v.Position[i]
			}
		}
	}
	return min, max
}

// Recolour sets the colour of every vertex
func (m *Mesh) Recolour(c glm.Vec3) {
	for i := range m.Vertices {
		m.Vertices[i].Colour = c
	}
}

// MeshBuilder assembles a mesh, identical vertices are stored once
// and referenced through the index list
type MeshBuilder struct {
	mesh   Mesh
	unique map[Vertex]uint32
}

// NewMeshBuilder creates an empty builder
func NewMeshBuilder() *MeshBuilder {
	return &MeshBuilder{unique: make(map[Vertex]uint32)}
}

// Add appends v to the index list
func (b *MeshBuilder) Add(v Vertex) {
	idx, ok := b.unique[v]
	if !ok {
		idx = uint32(len(b.mesh.Vertices))
		b.unique[v] = idx
		b.mesh.Vertices = append(b.mesh.Vertices, v)
	}
	b.mesh.Indices = append(b.mesh.Indices, idx)
}

// Triangle adds three vertices in counter clockwise order
func (b *MeshBuilder) Triangle(a, c, d Vertex) {
	b.Add(a)
	b.Add(c)
	b.Add(d)
}

// Mesh returns the assembled mesh
func (b *MeshBuilder) Mesh() Mesh {
	return b.mesh
}
