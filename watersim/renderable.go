// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package watersim

import (
	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/devblok/epona/gfx"
	"github.com/devblok/epona/model"
)

// MeshUploader moves mesh geometry to the device
type MeshUploader interface {
	UploadMesh(model.Mesh) (gfx.Mesh, error)
}

// Renderable is an uploaded mesh with the matrix that fits it
// into a unit cube at the origin
type Renderable struct {
	Mesh  gfx.Mesh
	Model glm.Mat4
}

// CreateRenderable uploads mesh and centers it
func CreateRenderable(uploader MeshUploader, mesh model.Mesh) (*Renderable, error) {
	gm, err := uploader.UploadMesh(mesh)
	if err != nil {
		return nil, errors.Wrap(err, "uploading mesh")
	}
	return &Renderable{
		Mesh:  gm,
		Model: fitUnit(mesh),
	}, nil
}

// Release frees the device mesh
func (r *Renderable) Release() {
	if r.Mesh != nil {
		r.Mesh.Release()
	}
}

func fitUnit(mesh model.Mesh) glm.Mat4 {
	min, max := mesh.Bounds()
	size := max.Sub(min)

	largest := size.X()
	if size.Y() > largest {
		largest = size.Y()
	}
	if size.Z() > largest {
		largest = size.Z()
	}
	if largest == 0 {
		return glm.Ident4()
	}

	center := min.Add(size.Mul(0.5))
	s := 1 / largest
	return glm.Scale3D(s, s, s).Mul4(glm.Translate3D(-center.X(), -center.Y(), -center.Z()))
}
