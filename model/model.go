// Package model holds mesh geometry and the camera in the form the
// renderer uploads them.
package model

import (
	glm "github.com/go-gl/mathgl/mgl32"
)

// Vertex is a model vertex. The layout is read by the vertex
// input state of the pipeline, so fields must stay tightly packed.
type Vertex struct {
	Position glm.Vec3
	Normal   glm.Vec3
	Colour   glm.Vec3
}

// Camera defines the view-projection part of the transform,
// the model matrix is pushed per draw
type Camera struct {
	View       glm.Mat4
	Projection glm.Mat4
}

// NewCamera creates a perspective camera looking from eye at center.
// The projection is flipped on Y for Vulkan clip space.
func NewCamera(eye, center, up glm.Vec3, fovy, aspect, near, far float32) Camera {
	cam := Camera{
		View:       glm.LookAtV(eye, center, up),
		Projection: glm.Perspective(glm.DegToRad(fovy), aspect, near, far),
	}
	cam.Projection[5] *= -1
	return cam
}
