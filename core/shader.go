// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"path"
	"sort"
	"strings"

	"github.com/gobuffalo/packd"
	"github.com/pkg/errors"

	vk "github.com/devblok/vulkan"
)

const shaderSuffix = ".spv"

// ShaderSource lists and reads compiled shaders, a packr box
// or a packd memory box
type ShaderSource interface {
	packd.Lister
	packd.Finder
}

type shaderFile struct {
	path string
	name string
	typ  ShaderType
}

// parseShaderFile splits a file name of the form name.type.spv,
// the first part is always the name of the shader, second is type,
// and the suffix ensures that the shader is compiled
func parseShaderFile(file string) (shaderFile, bool) {
	base := path.Base(file)
	if !strings.HasSuffix(base, shaderSuffix) {
		return shaderFile{}, false
	}

	nodes := strings.Split(strings.TrimSuffix(base, shaderSuffix), ".")
	if len(nodes) != 2 || nodes[0] == "" {
		return shaderFile{}, false
	}

	sf := shaderFile{path: file, name: nodes[0]}
	switch nodes[1] {
	case "vert":
		sf.typ = VertexShaderType
	case "frag":
		sf.typ = FragmentShaderType
	default:
		return shaderFile{}, false
	}
	return sf, true
}

// shaderFiles returns the compiled shaders of program in src,
// vertex stage first
func shaderFiles(src ShaderSource, program string) []shaderFile {
	var files []shaderFile
	for _, file := range src.List() {
		if sf, ok := parseShaderFile(file); ok && sf.name == program {
			files = append(files, sf)
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].typ < files[j].typ
	})
	return files
}

// Shader is a compiled shader module
type Shader struct {
	name   string
	typ    ShaderType
	device vk.Device
	module vk.ShaderModule
}

// NewShader creates a shader module from SPIR-V code
func NewShader(device vk.Device, name string, typ ShaderType, code []byte) (*Shader, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, errors.Errorf("shader %s.%s: code size %d is not a multiple of 4", name, typ, len(code))
	}

	smci := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    SliceUint32(code),
	}

	var module vk.ShaderModule
	if err := vk.Error(vk.CreateShaderModule(device, &smci, nil, &module)); err != nil {
		return nil, errors.Wrapf(err, "vk.CreateShaderModule(%s.%s)", name, typ)
	}

	return &Shader{
		name:   name,
		typ:    typ,
		device: device,
		module: module,
	}, nil
}

// LoadShaders creates the vertex and fragment shaders of program
func LoadShaders(device vk.Device, src ShaderSource, program string) ([]*Shader, error) {
	files := shaderFiles(src, program)
	if len(files) != 2 || files[0].typ != VertexShaderType || files[1].typ != FragmentShaderType {
		return nil, errors.Errorf("shader program %q needs one vertex and one fragment shader, found %d shaders", program, len(files))
	}

	var shaders []*Shader
	for _, file := range files {
		code, err := src.Find(file.path)
		if err != nil {
			releaseShaders(shaders)
			return nil, errors.Wrapf(err, "reading %s", file.path)
		}

		shader, err := NewShader(device, file.name, file.typ, code)
		if err != nil {
			releaseShaders(shaders)
			return nil, err
		}
		shaders = append(shaders, shader)
	}
	return shaders, nil
}

func releaseShaders(shaders []*Shader) {
	for _, s := range shaders {
		s.Release()
	}
}

// Name returns the program name
func (s *Shader) Name() string {
	return s.name
}

// Type returns the pipeline stage
func (s *Shader) Type() ShaderType {
	return s.typ
}

// Module returns the vk.ShaderModule handle
func (s *Shader) Module() vk.ShaderModule {
	return s.module
}

func (s *Shader) stage() vk.ShaderStageFlagBits {
	if s.typ == FragmentShaderType {
		return vk.ShaderStageFragmentBit
	}
	return vk.ShaderStageVertexBit
}

// Release destroys the shader module
func (s *Shader) Release() {
	vk.DestroyShaderModule(s.device, s.module, nil)
}
