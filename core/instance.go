// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"unsafe"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/devblok/epona/config"
	"github.com/devblok/epona/vkn"
	vk "github.com/devblok/vulkan"
)

const (
	validationLayer      = "VK_LAYER_KHRONOS_validation"
	debugReportExtension = "VK_EXT_debug_report"
)

var _ Instance = (*VulkanInstance)(nil)

// NewApplicationInfo describes a Vulkan application
func NewApplicationInfo(name string) *vk.ApplicationInfo {
	return &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         vk.MakeVersion(1, 0, 0),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PApplicationName:   safeString(name),
		PEngineName:        safeString("epona"),
	}
}

// NewVulkanInstance creates a Vulkan instance. procAddr is the loader's
// vkGetInstanceProcAddr, when nil the system loader is used.
func NewVulkanInstance(appInfo *vk.ApplicationInfo, procAddr unsafe.Pointer, cfg config.InstanceConfiguration) (*VulkanInstance, error) {
	extensions := append([]string(nil), cfg.Extensions...)
	layers := append([]string(nil), cfg.Layers...)
	if cfg.Validation {
		layers = append(layers, validationLayer)
		extensions = append(extensions, debugReportExtension)
	}

	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return nil, errors.Wrap(err, "vk.SetDefaultGetInstanceProcAddr()")
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}

	if err := vk.Init(); err != nil {
		return nil, errors.Wrap(err, "vk.Init()")
	}

	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
	}

	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(&instanceInfo, nil, &instance)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateInstance()")
	}
	vk.InitInstance(instance)

	return &VulkanInstance{
		extensions: extensions,
		instance:   instance,
		surface:    vk.NullSurface,
	}, nil
}

// VulkanInstance describes a Vulkan API Instance
type VulkanInstance struct {
	extensions []string

	surface  vk.Surface
	instance vk.Instance
}

// PhysicalDevicesInfo implements interface
func (v *VulkanInstance) PhysicalDevicesInfo() ([]vkn.Description, error) {
	selector := vkn.NewSelector(v.Platform(), surfaceHandle(v.Surface()), vkn.Requirements{}, nil)
	return selector.Candidates()
}

// Platform implements interface
func (v *VulkanInstance) Platform() vkn.Platform {
	return vulkanPlatform{instance: v.instance}
}

// SetSurface implements interface
func (v *VulkanInstance) SetSurface(pSurface unsafe.Pointer) {
	v.surface = vk.SurfaceFromPointer(uintptr(pSurface))
}

// Surface implements interface
func (v *VulkanInstance) Surface() vk.Surface {
	if v.surface == nil {
		return vk.NullSurface
	}
	return v.surface
}

// surfaceHandle hides the empty surface from the selector,
// which then skips present queries
func surfaceHandle(s vk.Surface) vkn.Handle {
	if s == vk.NullSurface {
		return nil
	}
	return s
}

// Inner implements interface
func (v *VulkanInstance) Inner() interface{} {
	return v.instance
}

// Extensions implements interface
func (v *VulkanInstance) Extensions() []string {
	return v.extensions
}

// Destroy implements interface
func (v *VulkanInstance) Destroy() {
	if v.surface != vk.NullSurface {
		vk.DestroySurface(v.instance, v.surface, nil)
		v.surface = vk.NullSurface
	}
	vk.DestroyInstance(v.instance, nil)
}

// SelectPhysicalDevice picks the device the renderer runs on,
// checking presentation against the instance surface
func SelectPhysicalDevice(instance Instance, requirements vkn.Requirements, log logrus.FieldLogger) (*vkn.PhysicalDevice, error) {
	selector := vkn.NewSelector(instance.Platform(), surfaceHandle(instance.Surface()), requirements, log)
	return selector.Select()
}
