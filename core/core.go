// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package core wraps the Vulkan API: instance, physical device selection,
// logical device, swapchain and the renderer that draws the sample scenes.
package core

import (
	"unsafe"

	"github.com/devblok/epona/gfx"
	"github.com/devblok/epona/model"
	"github.com/devblok/epona/vkn"
	vk "github.com/devblok/vulkan"
)

// Instance describes a Vulkan instance and supporting methods.
// Once created it is ready to use.
type Instance interface {
	// PhysicalDevicesInfo describes every physical device
	// in enumeration order
	PhysicalDevicesInfo() ([]vkn.Description, error)

	// Platform exposes the device queries used by the selector
	Platform() vkn.Platform

	// SetSurface sets the window surface for rendering
	SetSurface(unsafe.Pointer)

	// Surface returns the window surface, if it's not set
	// it should return a valid but empty surface
	Surface() vk.Surface

	// Extensions returns enabled instance extensions
	Extensions() []string

	// Inner returns the inner handle of the underlying API
	Inner() interface{}

	// Destroy destroys internal members
	Destroy()
}

// Renderer describes the rendering machinery.
// It's created only with internal values set,
// it needs to be initialised with Initialise() before use.
type Renderer interface {
	// Initialise sets up the configured rendering pipeline
	Initialise() error

	// UploadMesh copies mesh geometry to the device
	UploadMesh(model.Mesh) (gfx.Mesh, error)

	// Draw records and submits one frame
	Draw(camera model.Camera, items []gfx.DrawItem) error

	// Present queues the last drawn frame for presentation
	Present() error

	// Resize marks the swapchain for recreation
	Resize(width, height uint32)

	// Wait blocks until the device is idle
	Wait()

	// Destroy destroys internal members
	Destroy()
}

// ShaderType represents the type of shader thats loaded
type ShaderType int

// Identifies shader objects with their types
const (
	VertexShaderType ShaderType = iota
	FragmentShaderType
	UnknownShaderType
)

func (t ShaderType) String() string {
	switch t {
	case VertexShaderType:
		return "vert"
	case FragmentShaderType:
		return "frag"
	default:
		return "unknown"
	}
}

// MaxFramesInFlight is how many frames the CPU may record
// ahead of the GPU
const MaxFramesInFlight = 2
