// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package watersim

import (
	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"github.com/devblok/epona/gfx"
	"github.com/devblok/epona/model"
	"github.com/devblok/epona/scene"
)

// Pool dimensions in world units
const (
	PoolSize   = 10
	PoolDepth  = 2
	WallWidth  = 0.5
	WaterLevel = -0.3
)

// Colours of the scene
var (
	FloorColour = glm.Vec3{0.76, 0.70, 0.50}
	WallColour  = glm.Vec3{0.55, 0.55, 0.60}
	WaterColour = glm.Vec3{0.10, 0.35, 0.80}
	CrateColour = glm.Vec3{0.60, 0.40, 0.20}
)

// Meshes are the meshes the world is built from, zero values
// are replaced by the built in primitives. Vertex colours are
// tinted by the colour of the entity.
type Meshes struct {
	Crate model.Mesh
	Block model.Mesh
	Water model.Mesh
}

func (m Meshes) withDefaults() Meshes {
	white := glm.Vec3{1, 1, 1}
	if len(m.Crate.Vertices) == 0 {
		m.Crate = model.Cube(white)
	}
	if len(m.Block.Vertices) == 0 {
		m.Block = model.Cube(white)
	}
	if len(m.Water.Vertices) == 0 {
		m.Water = model.Plane(1, 32, white)
	}
	return m
}

// World owns the scene registry and the renderables its entities use
type World struct {
	Registry *scene.Registry

	resources gfx.ReleaseStack
	log       logrus.FieldLogger
}

// NewWorld uploads meshes and populates the pool scene
func NewWorld(uploader MeshUploader, meshes Meshes, log logrus.FieldLogger) (*World, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	meshes = meshes.withDefaults()

	w := &World{
		Registry: scene.NewRegistry(),
		log:      log,
	}

	crate, err := w.renderable(uploader, meshes.Crate)
	if err != nil {
		w.Release()
		return nil, err
	}
	block, err := w.renderable(uploader, meshes.Block)
	if err != nil {
		w.Release()
		return nil, err
	}
	water, err := w.renderable(uploader, meshes.Water)
	if err != nil {
		w.Release()
		return nil, err
	}

	const half = PoolSize / 2
	floorY := float32(-PoolDepth)

	// floor
	w.spawn(block, FloorColour, glm.Vec3{0, floorY - WallWidth/2, 0}, glm.Vec3{PoolSize, WallWidth, PoolSize}, true)

	// walls
	wallY := floorY / 2
	for _, wall := range []struct{ position, scale glm.Vec3 }{
		{glm.Vec3{half + WallWidth/2, wallY, 0}, glm.Vec3{WallWidth, PoolDepth, PoolSize + 2*WallWidth}},
		{glm.Vec3{-half - WallWidth/2, wallY, 0}, glm.Vec3{WallWidth, PoolDepth, PoolSize + 2*WallWidth}},
		{glm.Vec3{0, wallY, half + WallWidth/2}, glm.Vec3{PoolSize, PoolDepth, WallWidth}},
		{glm.Vec3{0, wallY, -half - WallWidth/2}, glm.Vec3{PoolSize, PoolDepth, WallWidth}},
	} {
		w.spawn(block, WallColour, wall.position, wall.scale, true)
	}

	// water surface, a plane has no height so it gets no collider
	w.spawn(water, WaterColour, glm.Vec3{0, WaterLevel, 0}, glm.Vec3{PoolSize, 1, PoolSize}, false)

	// crates float half submerged
	for _, p := range []glm.Vec3{{-2.5, 0, -1.5}, {1.5, 0, 2}, {2.5, 0, -2.5}} {
		p[1] = WaterLevel
		w.spawn(crate, CrateColour, p, glm.Vec3{1, 1, 1}, true)
	}

	log.WithField("entities", w.Registry.Len()).Info("World created")
	return w, nil
}

func (w *World) renderable(uploader MeshUploader, mesh model.Mesh) (*Renderable, error) {
	r, err := CreateRenderable(uploader, mesh)
	if err != nil {
		return nil, err
	}
	w.resources.Push(r)
	return r, nil
}

func (w *World) spawn(r *Renderable, colour, position, scale glm.Vec3, collides bool) scene.Entity {
	e := w.Registry.Create()
	t := NewTransform(position, scale)
	// entities are live, Assign cannot fail
	_ = w.Registry.Assign(e, t)
	_ = w.Registry.Assign(e, Render{Mesh: r, Colour: colour})
	if collides {
		_ = w.Registry.Assign(e, colliderFor(t))
	}
	return e
}

// DrawItems returns an item for every entity with a transform and
// a render component, in entity order
func (w *World) DrawItems() []gfx.DrawItem {
	return DrawItems(w.Registry)
}

// DrawItems collects the drawable entities of reg
func DrawItems(reg *scene.Registry) []gfx.DrawItem {
	view := reg.View(Transform{}, Render{})
	items := make([]gfx.DrawItem, 0, len(view))
	for _, e := range view {
		var (
			t Transform
			r Render
		)
		reg.Get(e, &t)
		reg.Get(e, &r)
		if r.Mesh == nil || r.Mesh.Mesh == nil {
			continue
		}
		items = append(items, gfx.DrawItem{
			Mesh:   r.Mesh.Mesh,
			Model:  t.Model().Mul4(r.Mesh.Model),
			Colour: r.Colour,
		})
	}
	return items
}

// Colliding returns the pairs of entities whose colliders overlap
func (w *World) Colliding() [][2]scene.Entity {
	view := w.Registry.View(BoxCollider{})
	var pairs [][2]scene.Entity
	for i := range view {
		var a BoxCollider
		w.Registry.Get(view[i], &a)
		for j := i + 1; j < len(view); j++ {
			var b BoxCollider
			w.Registry.Get(view[j], &b)
			if a.Intersects(b) {
				pairs = append(pairs, [2]scene.Entity{view[i], view[j]})
			}
		}
	}
	return pairs
}

// Camera returns the camera looking into the pool from above one corner
func (w *World) Camera(aspect float32) model.Camera {
	return model.NewCamera(
		glm.Vec3{PoolSize * 0.8, PoolSize * 0.7, PoolSize * 0.8},
		glm.Vec3{0, -PoolDepth / 2, 0},
		glm.Vec3{0, 1, 0},
		45, aspect, 0.1, 100,
	)
}

// Release frees every renderable of the world in reverse upload order
func (w *World) Release() {
	w.resources.Release()
}
