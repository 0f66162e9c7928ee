// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"math"

	"github.com/pkg/errors"

	"github.com/devblok/epona/config"
	"github.com/devblok/epona/gfx"
	vk "github.com/devblok/vulkan"
)

// Swapchain owns the presentable images and their views.
type Swapchain struct {
	device    vk.Device
	swapchain vk.Swapchain

	format vk.SurfaceFormat
	extent gfx.Extent2D

	images []vk.Image
	views  []vk.ImageView
}

// NewSwapchain creates a swapchain for surface. The previous swapchain,
// when given, is handed to the driver and destroyed afterwards.
func NewSwapchain(device *Device, surface vk.Surface, cfg config.RendererConfiguration, old *Swapchain) (*Swapchain, error) {
	pd := device.handle

	var caps vk.SurfaceCapabilities
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceCapabilities(pd, surface, &caps)); err != nil {
		return nil, errors.Wrap(err, "vk.GetPhysicalDeviceSurfaceCapabilities()")
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	var formatCount uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &formatCount, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.GetPhysicalDeviceSurfaceFormats(count)")
	}
	formats := make([]vk.SurfaceFormat, formatCount)
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &formatCount, formats)); err != nil {
		return nil, errors.Wrap(err, "vk.GetPhysicalDeviceSurfaceFormats(formats)")
	}
	for i := range formats {
		formats[i].Deref()
	}

	var modeCount uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(pd, surface, &modeCount, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.GetPhysicalDeviceSurfacePresentModes(count)")
	}
	modes := make([]vk.PresentMode, modeCount)
	if err := vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(pd, surface, &modeCount, modes)); err != nil {
		return nil, errors.Wrap(err, "vk.GetPhysicalDeviceSurfacePresentModes(modes)")
	}

	format, err := chooseSurfaceFormat(formats)
	if err != nil {
		return nil, err
	}

	extent := chooseExtent(
		gfx.Extent2D{Width: caps.CurrentExtent.Width, Height: caps.CurrentExtent.Height},
		gfx.Extent2D{Width: caps.MinImageExtent.Width, Height: caps.MinImageExtent.Height},
		gfx.Extent2D{Width: caps.MaxImageExtent.Width, Height: caps.MaxImageExtent.Height},
		gfx.Extent2D{Width: cfg.ScreenWidth, Height: cfg.ScreenHeight},
	)

	compositeAlpha := vk.CompositeAlphaOpaqueBit
	for _, flag := range []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaOpaqueBit,
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaInheritBit,
	} {
		if caps.SupportedCompositeAlpha&vk.CompositeAlphaFlags(flag) != 0 {
			compositeAlpha = flag
			break
		}
	}

	scci := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    chooseImageCount(cfg.SwapchainSize, caps.MinImageCount, caps.MaxImageCount),
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      vk.Extent2D{Width: extent.Width, Height: extent.Height},
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   compositeAlpha,
		PresentMode:      choosePresentMode(modes, cfg.VSync),
		Clipped:          vk.True,
	}

	// images are shared when drawing and presenting
	// happen on different families
	if graphics, present := device.GraphicsFamily(), device.PresentFamily(); graphics != present {
		scci.ImageSharingMode = vk.SharingModeConcurrent
		scci.QueueFamilyIndexCount = 2
		scci.PQueueFamilyIndices = []uint32{graphics, present}
	}

	if old != nil {
		scci.OldSwapchain = old.swapchain
	}

	var swapchain vk.Swapchain
	if err := vk.Error(vk.CreateSwapchain(device.device, &scci, nil, &swapchain)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateSwapchain()")
	}
	if old != nil {
		old.Release()
	}

	s := &Swapchain{
		device:    device.device,
		swapchain: swapchain,
		format:    format,
		extent:    extent,
	}

	if err := s.createImageViews(); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}

func (s *Swapchain) createImageViews() error {
	var count uint32
	if err := vk.Error(vk.GetSwapchainImages(s.device, s.swapchain, &count, nil)); err != nil {
		return errors.Wrap(err, "vk.GetSwapchainImages(count)")
	}
	s.images = make([]vk.Image, count)
	if err := vk.Error(vk.GetSwapchainImages(s.device, s.swapchain, &count, s.images)); err != nil {
		return errors.Wrap(err, "vk.GetSwapchainImages(images)")
	}

	for idx, image := range s.images {
		ivci := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    image,
			ViewType: vk.ImageViewType2d,
			Format:   s.format.Format,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}

		var view vk.ImageView
		if err := vk.Error(vk.CreateImageView(s.device, &ivci, nil, &view)); err != nil {
			return errors.Wrapf(err, "vk.CreateImageView(%d)", idx)
		}
		s.views = append(s.views, view)
	}
	return nil
}

// Inner returns the vk.Swapchain handle
func (s *Swapchain) Inner() vk.Swapchain {
	return s.swapchain
}

// Format returns the image format
func (s *Swapchain) Format() vk.Format {
	return s.format.Format
}

// Extent returns the size of the images
func (s *Swapchain) Extent() gfx.Extent2D {
	return s.extent
}

// Views returns one view per swapchain image
func (s *Swapchain) Views() []vk.ImageView {
	return s.views
}

// Release destroys the views and the swapchain, the images
// belong to the swapchain and go with it
func (s *Swapchain) Release() {
	for _, view := range s.views {
		vk.DestroyImageView(s.device, view, nil)
	}
	s.views = nil
	s.images = nil
	vk.DestroySwapchain(s.device, s.swapchain, nil)
}

func chooseSurfaceFormat(formats []vk.SurfaceFormat) (vk.SurfaceFormat, error) {
	preferred := vk.SurfaceFormat{
		Format:     vk.FormatB8g8r8a8Unorm,
		ColorSpace: vk.ColorSpaceSrgbNonlinear,
	}

	switch {
	case len(formats) == 0:
		return vk.SurfaceFormat{}, errors.New("surface reports no formats")
	case len(formats) == 1 && formats[0].Format == vk.FormatUndefined:
		// the surface has no preference
		return preferred, nil
	}

	for _, f := range formats {
		if f.Format == preferred.Format && f.ColorSpace == preferred.ColorSpace {
			return f, nil
		}
	}
	return formats[0], nil
}

func choosePresentMode(modes []vk.PresentMode, vsync bool) vk.PresentMode {
	if vsync {
		return vk.PresentModeFifo
	}
	best := vk.PresentModeFifo
	for _, m := range modes {
		switch m {
		case vk.PresentModeMailbox:
			return m
		case vk.PresentModeImmediate:
			best = m
		}
	}
	return best
}

// chooseExtent uses the surface extent, or the requested one
// clamped to the limits when the surface leaves it to the swapchain
func chooseExtent(current, min, max, requested gfx.Extent2D) gfx.Extent2D {
	if current.Width != math.MaxUint32 {
		return current
	}
	return gfx.Extent2D{
		Width:  clamp(requested.Width, min.Width, max.Width),
		Height: clamp(requested.Height, min.Height, max.Height),
	}
}

// chooseImageCount clamps requested to the surface limits,
// max of 0 means no upper limit
func chooseImageCount(requested, min, max uint32) uint32 {
	if requested < min {
		requested = min
	}
	if max > 0 && requested > max {
		requested = max
	}
	return requested
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
