// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkn

// PhysicalDevice is the result of a selection: the chosen device
// and the queue families the logical device should be built from
type PhysicalDevice struct {
	Description

	// Surface the device was selected for, may be nil
	Surface Handle

	Graphics QueueIndex
	Present  QueueIndex

	// Compute and Transfer prefer a dedicated family
	// and fall back to a separated one
	Compute  QueueIndex
	Transfer QueueIndex
}

// NewPhysicalDevice classifies the queue families of desc
func NewPhysicalDevice(querier SurfaceSupporter, surface Handle, desc Description) *PhysicalDevice {
	p := &PhysicalDevice{
		Description: desc,
		Surface:     surface,
		Graphics:    GraphicsQueueIndex(desc.QueueFamilies),
		Present:     PresentQueueIndex(querier, desc.Handle, surface, desc.QueueFamilies),
		Compute:     DedicatedComputeQueueIndex(desc.QueueFamilies),
		Transfer:    DedicatedTransferQueueIndex(desc.QueueFamilies),
	}
	if !p.Compute.Valid {
		p.Compute = SeparatedComputeQueueIndex(desc.QueueFamilies)
	}
	if !p.Transfer.Valid {
		p.Transfer = SeparatedTransferQueueIndex(desc.QueueFamilies)
	}
	return p
}

// HasDedicatedComputeQueue reports whether the device has
// a compute family without graphics or transfer
func (p *PhysicalDevice) HasDedicatedComputeQueue() bool {
	return DedicatedComputeQueueIndex(p.QueueFamilies).Valid
}

// HasDedicatedTransferQueue reports whether the device has
// a transfer family without graphics or compute
func (p *PhysicalDevice) HasDedicatedTransferQueue() bool {
	return DedicatedTransferQueueIndex(p.QueueFamilies).Valid
}

// HasSeparatedComputeQueue reports whether the device has
// a compute family without graphics
func (p *PhysicalDevice) HasSeparatedComputeQueue() bool {
	return SeparatedComputeQueueIndex(p.QueueFamilies).Valid
}

// HasSeparatedTransferQueue reports whether the device has
// a transfer family without graphics
func (p *PhysicalDevice) HasSeparatedTransferQueue() bool {
	return SeparatedTransferQueueIndex(p.QueueFamilies).Valid
}

// UniqueQueueFamilies lists the distinct present indices in graphics,
// present, compute, transfer order. One queue is created per entry.
func (p *PhysicalDevice) UniqueQueueFamilies() []uint32 {
	var unique []uint32
	seen := make(map[uint32]bool, 4)
	for _, q := range []QueueIndex{p.Graphics, p.Present, p.Compute, p.Transfer} {
		if idx, ok := q.Get(); ok && !seen[idx] {
			seen[idx] = true
			unique = append(unique, idx)
		}
	}
	return unique
}
