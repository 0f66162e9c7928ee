package model_test

import (
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/epona/model"
)

func TestMeshBuilderDeduplicates(t *testing.T) {
	c := qt.New(t)
	a := model.Vertex{Position: glm.Vec3{0, 0, 0}}
	b := model.Vertex{Position: glm.Vec3{1, 0, 0}}
	d := model.Vertex{Position: glm.Vec3{1, 1, 0}}
	e := model.Vertex{Position: glm.Vec3{0, 1, 0}}

	builder := model.NewMeshBuilder()
	builder.Triangle(a, b, d)
	builder.Triangle(a, d, e)
	mesh := builder.Mesh()

	c.Assert(mesh.Vertices, qt.DeepEquals, []model.Vertex{a, b, d, e})
	c.Assert(mesh.Indices, qt.DeepEquals, []uint32{0, 1, 2, 0, 2, 3})
}

func TestCube(t *testing.T) {
	c := qt.New(t)
	red := glm.Vec3{1, 0, 0}
	cube := model.Cube(red)
	c.Assert(cube.Vertices, qt.HasLen, 24)
	c.Assert(cube.Indices, qt.HasLen, 36)

	min, max := cube.Bounds()
	c.Assert(min, qt.Equals, glm.Vec3{-0.5, -0.5, -0.5})
	c.Assert(max, qt.Equals, glm.Vec3{0.5, 0.5, 0.5})

	for _, v := range cube.Vertices {
		c.Assert(v.Colour, qt.Equals, red)
		c.Assert(v.Normal.Len(), qt.Equals, float32(1))
	}
}

func TestPlane(t *testing.T) {
	c := qt.New(t)
	plane := model.Plane(4, 2, glm.Vec3{0, 0, 1})
	c.Assert(plane.Vertices, qt.HasLen, 9)
	c.Assert(plane.Indices, qt.HasLen, 24)

	min, max := plane.Bounds()
	c.Assert(min, qt.Equals, glm.Vec3{-2, 0, -2})
	c.Assert(max, qt.Equals, glm.Vec3{2, 0, 2})

	plane.Recolour(glm.Vec3{1, 1, 1})
	c.Assert(plane.Vertices[4].Colour, qt.Equals, glm.Vec3{1, 1, 1})

	c.Assert(model.Plane(1, 0, glm.Vec3{}).Indices, qt.HasLen, 6)
}

func TestEmptyBounds(t *testing.T) {
	c := qt.New(t)
	var m model.Mesh
	min, max := m.Bounds()
	c.Assert(min, qt.Equals, glm.Vec3{})
	c.Assert(max, qt.Equals, glm.Vec3{})
}

func TestImportObj(t *testing.T) {
	c := qt.New(t)
	mesh, err := model.ImportObj(strings.NewReader(`
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
f 1 2 3 4
`))
	c.Assert(err, qt.IsNil)
	c.Assert(mesh.Vertices, qt.HasLen, 4)
	c.Assert(mesh.Indices, qt.DeepEquals, []uint32{0, 1, 2, 0, 2, 3})
	for _, v := range mesh.Vertices {
		c.Assert(v.Normal, qt.Equals, glm.Vec3{0, 0, 1})
		c.Assert(v.Colour, qt.Equals, model.DefaultColour)
	}
}

func TestImportObjSharedPositionsSplitByNormal(t *testing.T) {
	c := qt.New(t)
	mesh, err := model.ImportObj(strings.NewReader(`
v 0 0 0
v 1 0 0
v 0 1 0
v 0 0 1
vn 0 0 1
vn 0 1 0
f 1//1 2//1 3//1
f 1//2 4//2 2//2
`))
	c.Assert(err, qt.IsNil)
	// positions 1 and 2 appear with two normals each
	c.Assert(mesh.Vertices, qt.HasLen, 6)
	c.Assert(mesh.Indices, qt.HasLen, 6)
}

const quad = `<COLLADA>
  <library_geometries>
    <geometry id="Quad-mesh" name="Quad">
      <mesh>
        <source id="Quad-mesh-positions">
          <float_array id="Quad-mesh-positions-array" count="12">-1 -1 0 1 -1 0 1 1 0 -1 1 0</float_array>
          <technique_common><accessor count="4" stride="3"/></technique_common>
        </source>
        <source id="Quad-mesh-normals">
          <float_array id="Quad-mesh-normals-array" count="3">0 0 1</float_array>
        </source>
        <vertices id="Quad-mesh-vertices">
          <input semantic="POSITION" source="#Quad-mesh-positions"/>
        </vertices>
        <triangles count="2">
          <input semantic="VERTEX" source="#Quad-mesh-vertices" offset="0"/>
          <input semantic="NORMAL" source="#Quad-mesh-normals" offset="1"/>
          <p>0 0 1 0 2 0 0 0 2 0 3 0</p>
        </triangles>
      </mesh>
    </geometry>
  </library_geometries>
</COLLADA>`

func TestImportCollada(t *testing.T) {
	c := qt.New(t)
	mesh, err := model.ImportCollada([]byte(quad))
	c.Assert(err, qt.IsNil)
	c.Assert(mesh.Vertices, qt.HasLen, 4)
	c.Assert(mesh.Indices, qt.DeepEquals, []uint32{0, 1, 2, 0, 2, 3})
	c.Assert(mesh.Vertices[2].Position, qt.Equals, glm.Vec3{1, 1, 0})
	c.Assert(mesh.Vertices[2].Normal, qt.Equals, glm.Vec3{0, 0, 1})
}

func TestImportColladaErrors(t *testing.T) {
	c := qt.New(t)
	_, err := model.ImportCollada([]byte("<COLLADA></COLLADA>"))
	c.Assert(err, qt.ErrorMatches, "collada: no geometry")

	broken := strings.Replace(quad, "0 0 1 0 2 0 0 0 2 0 3 0", "0 0 1 0 2 0 0 0 2 0", 1)
	_, err = model.ImportCollada([]byte(broken))
	c.Assert(err, qt.ErrorMatches, "collada: 10 indices do not form triangles of stride 2")

	outOfRange := strings.Replace(quad, "0 0 1 0 2 0 0 0 2 0 3 0", "0 0 1 0 2 0 0 0 2 0 9 0", 1)
	_, err = model.ImportCollada([]byte(outOfRange))
	c.Assert(err, qt.ErrorMatches, `collada: element 9 out of range in "Quad-mesh-positions"`)
}

func TestLoad(t *testing.T) {
	c := qt.New(t)

	mesh, err := model.Load("assets/quad.DAE", []byte(quad))
	c.Assert(err, qt.IsNil)
	c.Assert(mesh.Indices, qt.HasLen, 6)

	mesh, err = model.Load("tri.obj", []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"))
	c.Assert(err, qt.IsNil)
	c.Assert(mesh.Indices, qt.HasLen, 3)

	_, err = model.Load("bad.obj", []byte("f 1 2 3\n"))
	c.Assert(err, qt.ErrorMatches, `bad.obj: obj: line 1: .*`)

	_, err = model.Load("mesh.fbx", nil)
	c.Assert(err, qt.ErrorMatches, "mesh.fbx: unsupported mesh format")
}

func TestCameraFlipsY(t *testing.T) {
	c := qt.New(t)
	cam := model.NewCamera(glm.Vec3{0, 0, 5}, glm.Vec3{}, glm.Vec3{0, 1, 0}, 45, 1, 0.1, 100)
	proj := glm.Perspective(glm.DegToRad(45), 1, 0.1, 100)
	c.Assert(cam.Projection[5], qt.Equals, -proj[5])
	c.Assert(cam.View, qt.Equals, glm.LookAtV(glm.Vec3{0, 0, 5}, glm.Vec3{}, glm.Vec3{0, 1, 0}))
}
