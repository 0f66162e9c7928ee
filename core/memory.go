// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"unsafe"

	"github.com/pkg/errors"

	"github.com/devblok/epona/vkn"
	vk "github.com/devblok/vulkan"
)

// ErrMemoryTypeNotFound is returned when no memory type
// matches both the filter and the requested properties
var ErrMemoryTypeNotFound = errors.New("suitable memory type not found")

// Memory defines a usable memory region.
type Memory struct {
	mapped bool
	size   vk.DeviceSize
	device vk.Device
	memory vk.DeviceMemory
}

// Size returns the length of assigned memory.
func (m *Memory) Size() vk.DeviceSize {
	return m.size
}

// Get returns the vulkan memory handle.
func (m *Memory) Get() vk.DeviceMemory {
	return m.memory
}

// Map maps the entire memory region and
// returns a pointer to the mapped area.
func (m *Memory) Map() (unsafe.Pointer, error) {
	var mapped unsafe.Pointer
	if err := vk.Error(vk.MapMemory(m.device, m.memory, 0, m.size, 0, &mapped)); err != nil {
		return nil, errors.Wrap(err, "vk.MapMemory()")
	}
	m.mapped = true
	return mapped, nil
}

// Unmap removes the memory mapping if it was mapped.
func (m *Memory) Unmap() {
	if m.mapped {
		vk.UnmapMemory(m.device, m.memory)
		m.mapped = false
	}
}

// Write maps the memory, copies data to its start and unmaps it.
func (m *Memory) Write(data []byte) error {
	if vk.DeviceSize(len(data)) > m.size {
		return errors.Errorf("writing %d bytes into %d bytes of memory", len(data), m.size)
	}
	mapped, err := m.Map()
	if err != nil {
		return err
	}
	copy(bytesAt(mapped, len(data)), data)
	m.Unmap()
	return nil
}

// Release frees memory after unmapping it if previously mapped.
func (m *Memory) Release() {
	m.Unmap()
	vk.FreeMemory(m.device, m.memory, nil)
}

// NewMemoryAllocator creates a new memory allocator for the logical device.
// The physical device memory properties steer the allocation.
func NewMemoryAllocator(device vk.Device, props vkn.MemoryProperties) *MemoryAllocator {
	return &MemoryAllocator{
		device: device,
		props:  props,
	}
}

// MemoryAllocator is responsible returning usable
// memory for any resources that may need it.
type MemoryAllocator struct {
	device vk.Device
	props  vkn.MemoryProperties
}

// Malloc returns a usable memory chunk ready for use.
func (ma *MemoryAllocator) Malloc(req vk.MemoryRequirements, prop vk.MemoryPropertyFlagBits) (Memory, error) {
	memTypeIdx, err := findMemoryType(ma.props, req.MemoryTypeBits, uint32(prop))
	if err != nil {
		return Memory{}, err
	}

	mai := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: memTypeIdx,
	}

	var memory vk.DeviceMemory
	if err := vk.Error(vk.AllocateMemory(ma.device, &mai, nil, &memory)); err != nil {
		return Memory{}, errors.Wrap(err, "vk.AllocateMemory()")
	}

	return Memory{
		size:   req.Size,
		device: ma.device,
		memory: memory,
	}, nil
}

// findMemoryType returns the first memory type allowed by filter
// that has every requested property flag
func findMemoryType(props vkn.MemoryProperties, filter uint32, flags uint32) (uint32, error) {
	for idx, t := range props.Types {
		if filter&(1<<uint(idx)) != 0 && t.Flags&flags == flags {
			return uint32(idx), nil
		}
	}
	return 0, errors.WithMessagef(ErrMemoryTypeNotFound, "filter %#x, flags %#x", filter, flags)
}

// NewBuffer creates, allocates and binds a new buffer.
func NewBuffer(dev vk.Device, ma *MemoryAllocator, size int, usage vk.BufferUsageFlagBits, prop vk.MemoryPropertyFlagBits) (Buffer, error) {
	createInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}
	var buffer vk.Buffer
	if err := vk.Error(vk.CreateBuffer(dev, &createInfo, nil, &buffer)); err != nil {
		return Buffer{}, errors.Wrap(err, "vk.CreateBuffer()")
	}

	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(dev, buffer, &req)
	req.Deref()

	memory, err := ma.Malloc(req, prop)
	if err != nil {
		vk.DestroyBuffer(dev, buffer, nil)
		return Buffer{}, err
	}

	if err := vk.Error(vk.BindBufferMemory(dev, buffer, memory.Get(), 0)); err != nil {
		memory.Release()
		vk.DestroyBuffer(dev, buffer, nil)
		return Buffer{}, errors.Wrap(err, "vk.BindBufferMemory()")
	}

	return Buffer{
		device: dev,
		buffer: buffer,
		size:   vk.DeviceSize(size),
		memory: memory,
	}, nil
}

// Buffer implements a generic vulkan buffer.
type Buffer struct {
	device vk.Device
	buffer vk.Buffer
	size   vk.DeviceSize

	memory Memory
}

// Mem returns the Memory that the buffer is based on.
func (b *Buffer) Mem() *Memory {
	return &b.memory
}

// Get returns the vulkan Buffer handle.
func (b *Buffer) Get() vk.Buffer {
	return b.buffer
}

// Size is the requested size of the buffer.
func (b *Buffer) Size() vk.DeviceSize {
	return b.size
}

// Release destroys the buffer and memory asociated with it.
func (b *Buffer) Release() {
	vk.DestroyBuffer(b.device, b.buffer, nil)
	b.memory.Release()
}

// Image is a device image with its memory and view.
type Image struct {
	device vk.Device
	image  vk.Image
	view   vk.ImageView
	format vk.Format
	memory Memory
}

// NewImage creates a device local 2D image with a view over it.
func NewImage(dev vk.Device, ma *MemoryAllocator, width, height uint32, format vk.Format, usage vk.ImageUsageFlagBits, aspect vk.ImageAspectFlagBits) (Image, error) {
	ici := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}

	var image vk.Image
	if err := vk.Error(vk.CreateImage(dev, &ici, nil, &image)); err != nil {
		return Image{}, errors.Wrap(err, "vk.CreateImage()")
	}

	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(dev, image, &req)
	req.Deref()

	memory, err := ma.Malloc(req, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		vk.DestroyImage(dev, image, nil)
		return Image{}, err
	}

	if err := vk.Error(vk.BindImageMemory(dev, image, memory.Get(), 0)); err != nil {
		memory.Release()
		vk.DestroyImage(dev, image, nil)
		return Image{}, errors.Wrap(err, "vk.BindImageMemory()")
	}

	ivci := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(aspect),
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	var view vk.ImageView
	if err := vk.Error(vk.CreateImageView(dev, &ivci, nil, &view)); err != nil {
		memory.Release()
		vk.DestroyImage(dev, image, nil)
		return Image{}, errors.Wrap(err, "vk.CreateImageView()")
	}

	return Image{
		device: dev,
		image:  image,
		view:   view,
		format: format,
		memory: memory,
	}, nil
}

// View returns the image view.
func (i *Image) View() vk.ImageView {
	return i.view
}

// Format returns the image format.
func (i *Image) Format() vk.Format {
	return i.format
}

// Release destroys the view, the image and frees its memory.
func (i *Image) Release() {
	vk.DestroyImageView(i.device, i.view, nil)
	vk.DestroyImage(i.device, i.image, nil)
	i.memory.Release()
}
