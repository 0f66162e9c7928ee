// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkn

// SurfaceSupporter answers whether a queue family of a device
// can present to a surface
type SurfaceSupporter interface {
	SurfaceSupport(device Handle, queueFamily uint32, surface Handle) (bool, error)
}

// Platform is the graphics API as seen by the selector.
// Enumeration is split in two calls, first the count
// then the handles, the way the API reports them.
type Platform interface {
	SurfaceSupporter

	PhysicalDeviceCount() (uint32, error)
	PhysicalDevices(count uint32) ([]Handle, error)

	QueueFamilies(device Handle) []QueueFamily
	Features(device Handle) Features
	Properties(device Handle) Properties
	MemoryProperties(device Handle) MemoryProperties
	Extensions(device Handle) ([]string, error)
}
