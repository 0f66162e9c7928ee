// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config holds the engine configuration and loads it
// from a file and the environment.
package config

import (
	"github.com/pkg/errors"

	"github.com/devblok/epona/vkn"
)

// Configuration defines a global engine configuration setting
type Configuration struct {
	Log      LogConfiguration      `yaml:"log"`
	Time     TimeConfiguration     `yaml:"time"`
	Instance InstanceConfiguration `yaml:"instance"`
	Device   DeviceConfiguration   `yaml:"device"`
	Renderer RendererConfiguration `yaml:"renderer"`
	Assets   AssetsConfiguration   `yaml:"assets"`
}

// LogConfiguration sets up the logger
type LogConfiguration struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`

	// Format is text or json
	Format string `yaml:"format"`
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int `yaml:"framesPerSecond"`

	// EventPollDelay is the delay between event polls in milliseconds
	EventPollDelay int `yaml:"eventPollDelay"`
}

// InstanceConfiguration configures the Vulkan instance
type InstanceConfiguration struct {
	ApplicationName string   `yaml:"applicationName"`
	Validation      bool     `yaml:"validation"`
	Extensions      []string `yaml:"extensions"`
	Layers          []string `yaml:"layers"`
}

// DeviceConfiguration decides which physical device is used
type DeviceConfiguration struct {
	PreferredType            string       `yaml:"preferredType"`
	AllowAnyType             bool         `yaml:"allowAnyType"`
	RequirePresent           bool         `yaml:"requirePresent"`
	RequireDedicatedCompute  bool         `yaml:"requireDedicatedCompute"`
	RequireDedicatedTransfer bool         `yaml:"requireDedicatedTransfer"`
	RequireSeparatedCompute  bool         `yaml:"requireSeparatedCompute"`
	RequireSeparatedTransfer bool         `yaml:"requireSeparatedTransfer"`
	SelectFirst              bool         `yaml:"selectFirst"`
	Extensions               []string     `yaml:"extensions"`
	Features                 vkn.Features `yaml:"features"`
}

// Requirements converts the configuration for the device selector
func (d DeviceConfiguration) Requirements() (vkn.Requirements, error) {
	typ := vkn.DeviceTypeDiscrete
	if d.PreferredType != "" {
		var err error
		if typ, err = vkn.ParseDeviceType(d.PreferredType); err != nil {
			return vkn.Requirements{}, errors.Wrap(err, "device.preferredType")
		}
	}

	return vkn.Requirements{
		PreferredType:            typ,
		AllowAnyType:             d.AllowAnyType,
		RequirePresent:           d.RequirePresent,
		RequireDedicatedCompute:  d.RequireDedicatedCompute,
		RequireDedicatedTransfer: d.RequireDedicatedTransfer,
		RequireSeparatedCompute:  d.RequireSeparatedCompute,
		RequireSeparatedTransfer: d.RequireSeparatedTransfer,
		SelectFirst:              d.SelectFirst,
		Extensions:               append([]string(nil), d.Extensions...),
		Features:                 d.Features,
	}, nil
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	SwapchainSize uint32 `yaml:"swapchainSize"`
	ScreenWidth   uint32 `yaml:"screenWidth"`
	ScreenHeight  uint32 `yaml:"screenHeight"`
	VSync         bool   `yaml:"vsync"`

	// ShaderDirectory is where compiled shaders are looked up
	ShaderDirectory string `yaml:"shaderDirectory"`
}

// AssetsConfiguration points at the mesh assets
type AssetsConfiguration struct {
	// Archive is a kar archive with meshes, when empty
	// the built in meshes are used
	Archive string   `yaml:"archive"`
	Meshes  []string `yaml:"meshes"`
}

// Default returns the configuration used when nothing overrides it
func Default() Configuration {
	return Configuration{
		Log: LogConfiguration{
			Level:  "info",
			Format: "text",
		},
		Time: TimeConfiguration{
			FramesPerSecond: 60,
			EventPollDelay:  50,
		},
		Instance: InstanceConfiguration{
			ApplicationName: "epona",
		},
		Device: DeviceConfiguration{
			PreferredType:  vkn.DeviceTypeDiscrete.String(),
			AllowAnyType:   true,
			RequirePresent: true,
			Extensions:     []string{"VK_KHR_swapchain"},
		},
		Renderer: RendererConfiguration{
			SwapchainSize:   3,
			ScreenWidth:     800,
			ScreenHeight:    600,
			VSync:           true,
			ShaderDirectory: "./shaders",
		},
	}
}
