// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/pkg/errors"

	"github.com/devblok/epona/vkn"
	vk "github.com/devblok/vulkan"
)

// vulkanPlatform answers the selector's device queries
// for one instance. Handles are vk.PhysicalDevice values.
type vulkanPlatform struct {
	instance vk.Instance
}

func physicalDevice(h vkn.Handle) vk.PhysicalDevice {
	return h.(vk.PhysicalDevice)
}

func (p vulkanPlatform) PhysicalDeviceCount() (uint32, error) {
	var count uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(p.instance, &count, nil)); err != nil {
		return 0, errors.Wrap(err, "vk.EnumeratePhysicalDevices(count)")
	}
	return count, nil
}

func (p vulkanPlatform) PhysicalDevices(count uint32) ([]vkn.Handle, error) {
	devices := make([]vk.PhysicalDevice, count)
	if err := vk.Error(vk.EnumeratePhysicalDevices(p.instance, &count, devices)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumeratePhysicalDevices(devices)")
	}

	handles := make([]vkn.Handle, 0, count)
	for _, d := range devices[:count] {
		handles = append(handles, d)
	}
	return handles, nil
}

func (p vulkanPlatform) QueueFamilies(h vkn.Handle) []vkn.QueueFamily {
	device := physicalDevice(h)

	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &count, nil)
	properties := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &count, properties)

	families := make([]vkn.QueueFamily, 0, count)
	for i, props := range properties[:count] {
		props.Deref()
		families = append(families, vkn.QueueFamily{
			Index:              uint32(i),
			Flags:              vkn.QueueFlags(props.QueueFlags),
			QueueCount:         props.QueueCount,
			TimestampValidBits: props.TimestampValidBits,
		})
	}
	return families
}

func (p vulkanPlatform) Features(h vkn.Handle) vkn.Features {
	var f vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(physicalDevice(h), &f)
	f.Deref()

	return vkn.Features{
		GeometryShader:       f.GeometryShader.B(),
		TessellationShader:   f.TessellationShader.B(),
		SamplerAnisotropy:    f.SamplerAnisotropy.B(),
		FillModeNonSolid:     f.FillModeNonSolid.B(),
		WideLines:            f.WideLines.B(),
		LargePoints:          f.LargePoints.B(),
		MultiDrawIndirect:    f.MultiDrawIndirect.B(),
		ShaderFloat64:        f.ShaderFloat64.B(),
		ShaderInt64:          f.ShaderInt64.B(),
		TextureCompressionBC: f.TextureCompressionBC.B(),
	}
}

func deviceType(t vk.PhysicalDeviceType) vkn.DeviceType {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return vkn.DeviceTypeIntegrated
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return vkn.DeviceTypeDiscrete
	case vk.PhysicalDeviceTypeVirtualGpu:
		return vkn.DeviceTypeVirtual
	case vk.PhysicalDeviceTypeCpu:
		return vkn.DeviceTypeCPU
	default:
		return vkn.DeviceTypeOther
	}
}

func (p vulkanPlatform) Properties(h vkn.Handle) vkn.Properties {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(physicalDevice(h), &props)
	props.Deref()
	props.Limits.Deref()

	return vkn.Properties{
		Name:          vk.ToString(props.DeviceName[:]),
		Type:          deviceType(props.DeviceType),
		VendorID:      props.VendorID,
		DeviceID:      props.DeviceID,
		APIVersion:    props.ApiVersion,
		DriverVersion: props.DriverVersion,
		Limits: vkn.Limits{
			MaxImageDimension2D:            props.Limits.MaxImageDimension2D,
			MaxBoundDescriptorSets:         props.Limits.MaxBoundDescriptorSets,
			MaxPushConstantsSize:           props.Limits.MaxPushConstantsSize,
			MaxMemoryAllocationCount:       props.Limits.MaxMemoryAllocationCount,
			MaxComputeSharedMemorySize:     props.Limits.MaxComputeSharedMemorySize,
			MaxComputeWorkGroupInvocations: props.Limits.MaxComputeWorkGroupInvocations,
			MaxSamplerAnisotropy:           props.Limits.MaxSamplerAnisotropy,
		},
	}
}

func (p vulkanPlatform) MemoryProperties(h vkn.Handle) vkn.MemoryProperties {
	var props vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(physicalDevice(h), &props)
	props.Deref()

	var mem vkn.MemoryProperties
	for i := uint32(0); i < props.MemoryHeapCount; i++ {
		props.MemoryHeaps[i].Deref()
		heap := props.MemoryHeaps[i]
		mem.Heaps = append(mem.Heaps, vkn.MemoryHeap{
			Size:        uint64(heap.Size),
			DeviceLocal: heap.Flags&vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit) != 0,
		})
	}
	for i := uint32(0); i < props.MemoryTypeCount; i++ {
		props.MemoryTypes[i].Deref()
		mem.Types = append(mem.Types, vkn.MemoryType{
			HeapIndex: props.MemoryTypes[i].HeapIndex,
			Flags:     uint32(props.MemoryTypes[i].PropertyFlags),
		})
	}
	return mem
}

func (p vulkanPlatform) Extensions(h vkn.Handle) ([]string, error) {
	device := physicalDevice(h)

	var count uint32
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(device, "", &count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateDeviceExtensionProperties(count)")
	}
	properties := make([]vk.ExtensionProperties, count)
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(device, "", &count, properties)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateDeviceExtensionProperties(properties)")
	}

	extensions := make([]string, 0, count)
	for _, ext := range properties[:count] {
		ext.Deref()
		extensions = append(extensions, vk.ToString(ext.ExtensionName[:]))
	}
	return extensions, nil
}

func (p vulkanPlatform) SurfaceSupport(h vkn.Handle, queueFamily uint32, surface vkn.Handle) (bool, error) {
	var supported vk.Bool32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceSupport(physicalDevice(h), queueFamily, surface.(vk.Surface), &supported)); err != nil {
		return false, errors.Wrap(err, "vk.GetPhysicalDeviceSurfaceSupport()")
	}
	return supported.B(), nil
}
