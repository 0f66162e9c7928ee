package model

import (
	glm "github.com/go-gl/mathgl/mgl32"
)

// Cube returns a unit cube centered at the origin, every face
// has its own four vertices so normals stay flat
func Cube(colour glm.Vec3) Mesh {
	faces := []struct {
		normal, u, v glm.Vec3
	}{
		{glm.Vec3{1, 0, 0}, glm.Vec3{0, 0, -1}, glm.Vec3{0, 1, 0}},
		{glm.Vec3{-1, 0, 0}, glm.Vec3{0, 0, 1}, glm.Vec3{0, 1, 0}},
		{glm.Vec3{0, 1, 0}, glm.Vec3{1, 0, 0}, glm.Vec3{0, 0, -1}},
		{glm.Vec3{0, -1, 0}, glm.Vec3{1, 0, 0}, glm.Vec3{0, 0, 1}},
		{glm.Vec3{0, 0, 1}, glm.Vec3{1, 0, 0}, glm.Vec3{0, 1, 0}},
		{glm.Vec3{0, 0, -1}, glm.Vec3{-1, 0, 0}, glm.Vec3{0, 1, 0}},
	}

	builder := NewMeshBuilder()
	for _, f := range faces {
		center := f.normal.Mul(0.5)
		corner := func(su, sv float32) Vertex {
			return Vertex{
				Position: center.Add(f.u.Mul(su * 0.5)).Add(f.v.Mul(sv * 0.5)),
				Normal:   f.normal,
				Colour:   colour,
			}
		}
		a, b, c, d := corner(-1, -1), corner(1, -1), corner(1, 1), corner(-1, 1)
		builder.Triangle(a, b, c)
		builder.Triangle(a, c, d)
	}
	return builder.Mesh()
}

// Plane returns a square grid in the XZ plane facing up, size wide
// and split into divisions cells per side
func Plane(size float32, divisions int, colour glm.Vec3) Mesh {
	if divisions < 1 {
		divisions = 1
	}
	step := size / float32(divisions)
	half := size / 2
	up := glm.Vec3{0, 1, 0}

	at := func(i, j int) Vertex {
		return Vertex{
			Position: glm.Vec3{-half + float32(i)*step, 0, -half + float32(j)*step},
			Normal:   up,
			Colour:   colour,
		}
	}

	builder := NewMeshBuilder()
	for i := 0; i < divisions; i++ {
		for j := 0; j < divisions; j++ {
			a, b, c, d := at(i, j), at(i, j+1), at(i+1, j+1), at(i+1, j)
			builder.Triangle(a, b, c)
			builder.Triangle(a, c, d)
		}
	}
	return builder.Mesh()
}
