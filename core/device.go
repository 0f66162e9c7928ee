// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/devblok/epona/config"
	"github.com/devblok/epona/vkn"
	vk "github.com/devblok/vulkan"
)

// ErrNoGraphicsQueue is returned when the physical
// device has no family that can draw
var ErrNoGraphicsQueue = errors.New("physical device has no graphics queue family")

// Device is a logical device created on a selected physical device.
// It holds the first queue of every family the physical device uses.
type Device struct {
	physical *vkn.PhysicalDevice
	handle   vk.PhysicalDevice
	device   vk.Device

	extensions []string
	queues     map[uint32]vk.Queue
}

// NewDevice creates the logical device with one queue per unique
// queue family, the configured extensions and required features
func NewDevice(physical *vkn.PhysicalDevice, cfg config.DeviceConfiguration, log logrus.FieldLogger) (*Device, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if !physical.Graphics.Valid {
		return nil, ErrNoGraphicsQueue
	}

	families := physical.UniqueQueueFamilies()
	queueInfos := make([]vk.DeviceQueueCreateInfo, 0, len(families))
	for _, family := range families {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}

	extensions := append([]string(nil), cfg.Extensions...)
	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{deviceFeatures(cfg.Features)},
	}

	handle := physicalDevice(physical.Handle)
	var device vk.Device
	if err := vk.Error(vk.CreateDevice(handle, &dci, nil, &device)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateDevice()")
	}

	queues := make(map[uint32]vk.Queue, len(families))
	for _, family := range families {
		var queue vk.Queue
		vk.GetDeviceQueue(device, family, 0, &queue)
		queues[family] = queue
	}

	log.WithFields(logrus.Fields{
		"device":     physical.Properties.Name,
		"families":   families,
		"extensions": extensions,
	}).Info("created logical device")

	return &Device{
		physical:   physical,
		handle:     handle,
		device:     device,
		extensions: extensions,
		queues:     queues,
	}, nil
}

// Physical returns the physical device the device was created on
func (d *Device) Physical() *vkn.PhysicalDevice {
	return d.physical
}

// Inner returns the vk.Device handle
func (d *Device) Inner() vk.Device {
	return d.device
}

// Extensions returns the enabled device extensions
func (d *Device) Extensions() []string {
	return d.extensions
}

func (d *Device) family(q vkn.QueueIndex) uint32 {
	if idx, ok := q.Get(); ok {
		return idx
	}
	return d.physical.Graphics.Index
}

// GraphicsFamily returns the graphics queue family index
func (d *Device) GraphicsFamily() uint32 {
	return d.physical.Graphics.Index
}

// PresentFamily returns the present queue family, the graphics
// family when the device has no surface
func (d *Device) PresentFamily() uint32 {
	return d.family(d.physical.Present)
}

// ComputeFamily returns the compute family, the graphics
// family when there is no separate one
func (d *Device) ComputeFamily() uint32 {
	return d.family(d.physical.Compute)
}

// TransferFamily returns the transfer family, the graphics
// family when there is no separate one
func (d *Device) TransferFamily() uint32 {
	return d.family(d.physical.Transfer)
}

// GraphicsQueue returns the graphics queue
func (d *Device) GraphicsQueue() vk.Queue {
	return d.queues[d.GraphicsFamily()]
}

// PresentQueue returns the present queue
func (d *Device) PresentQueue() vk.Queue {
	return d.queues[d.PresentFamily()]
}

// ComputeQueue returns the compute queue
func (d *Device) ComputeQueue() vk.Queue {
	return d.queues[d.ComputeFamily()]
}

// TransferQueue returns the transfer queue
func (d *Device) TransferQueue() vk.Queue {
	return d.queues[d.TransferFamily()]
}

// WaitIdle blocks until all queues are idle
func (d *Device) WaitIdle() error {
	return errors.Wrap(vk.Error(vk.DeviceWaitIdle(d.device)), "vk.DeviceWaitIdle()")
}

// Destroy destroys the logical device, everything
// created from it must be released first
func (d *Device) Destroy() {
	vk.DestroyDevice(d.device, nil)
	d.queues = nil
}
