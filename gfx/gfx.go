// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package gfx defines the renderer facing types that do not depend
// on a graphics API.
package gfx

import "github.com/go-gl/mathgl/mgl32"

// Releasable defines any memory-occupying item that can be freed.
type Releasable interface {

	// Release releases memory occupied by the implementing structure.
	Release()
}

// ReleaseFunc adapts a function to Releasable.
type ReleaseFunc func()

// Release calls f.
func (f ReleaseFunc) Release() {
	f()
}

// Mesh is geometry that lives on the device.
type Mesh interface {
	Releasable

	// IndexCount is the number of indices drawn for the mesh.
	IndexCount() uint32
}

// DrawItem is one mesh drawn with a model matrix and a flat colour.
type DrawItem struct {
	Mesh   Mesh
	Model  mgl32.Mat4
	Colour mgl32.Vec3
}

// Extent2D is a width and height in pixels.
type Extent2D struct {
	Width, Height uint32
}

// Aspect returns width over height, or 1 when the extent is empty.
func (e Extent2D) Aspect() float32 {
	if e.Width == 0 || e.Height == 0 {
		return 1
	}
	return float32(e.Width) / float32(e.Height)
}

// Extent3D is a three dimensional extent.
type Extent3D struct {
	Width, Height, Depth uint32
}
