// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package watersim builds the water simulation sample scene: a pool
// with a water surface and floating crates, drawn through a renderer
// that can upload meshes.
package watersim

import (
	glm "github.com/go-gl/mathgl/mgl32"
)

// Transform places an entity in the world
type Transform struct {
	Translate glm.Mat4
	Scale     glm.Mat4
}

// NewTransform creates a transform from a position and per axis scale
func NewTransform(position, scale glm.Vec3) Transform {
	return Transform{
		Translate: glm.Translate3D(position.X(), position.Y(), position.Z()),
		Scale:     glm.Scale3D(scale.X(), scale.Y(), scale.Z()),
	}
}

// Model returns the model matrix, scale is applied first
func (t Transform) Model() glm.Mat4 {
	return t.Translate.Mul4(t.Scale)
}

// Render marks an entity as drawable
type Render struct {
	Mesh   *Renderable
	Colour glm.Vec3
}

// BoxCollider is an axis aligned box around an entity
type BoxCollider struct {
	Center   glm.Vec3
	HalfSize glm.Vec3
}

// Bounds returns the minimum and maximum corners
func (b BoxCollider) Bounds() (min, max glm.Vec3) {
	return b.Center.Sub(b.HalfSize), b.Center.Add(b.HalfSize)
}

// Intersects reports whether the boxes overlap, touching counts
func (b BoxCollider) Intersects(o BoxCollider) bool {
	for i := 0; i < 3; i++ {
		d := b.Center[i] - o.Center[i]
		if d < 0 {
			d = -d
		}
		if d > b.HalfSize[i]+o.HalfSize[i] {
			return false
		}
	}
	return true
}

// colliderFor fits a collider to a unit sized mesh under t
func colliderFor(t Transform) BoxCollider {
	return BoxCollider{
		Center:   t.Translate.Col(3).Vec3(),
		HalfSize: glm.Vec3{t.Scale.At(0, 0), t.Scale.At(1, 1), t.Scale.At(2, 2)}.Mul(0.5),
	}
}
