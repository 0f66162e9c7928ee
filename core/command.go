// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/pkg/errors"

	vk "github.com/devblok/vulkan"
)

// CommandPool allocates command buffers for one queue family
// and submits one-shot work to a queue of that family.
type CommandPool struct {
	device vk.Device
	queue  vk.Queue
	pool   vk.CommandPool
}

// NewCommandPool creates a pool whose buffers can be reset individually
func NewCommandPool(device vk.Device, family uint32, queue vk.Queue) (*CommandPool, error) {
	cpci := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}

	var pool vk.CommandPool
	if err := vk.Error(vk.CreateCommandPool(device, &cpci, nil, &pool)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateCommandPool()")
	}

	return &CommandPool{
		device: device,
		queue:  queue,
		pool:   pool,
	}, nil
}

// Allocate allocates count primary command buffers
func (c *CommandPool) Allocate(count int) ([]vk.CommandBuffer, error) {
	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}

	buffers := make([]vk.CommandBuffer, count)
	if err := vk.Error(vk.AllocateCommandBuffers(c.device, &cbai, buffers)); err != nil {
		return nil, errors.Wrap(err, "vk.AllocateCommandBuffers()")
	}
	return buffers, nil
}

// Free returns command buffers to the pool
func (c *CommandPool) Free(buffers []vk.CommandBuffer) {
	if len(buffers) == 0 {
		return
	}
	vk.FreeCommandBuffers(c.device, c.pool, uint32(len(buffers)), buffers)
}

// Submit records commands with record into a one time buffer,
// submits it and waits for the queue to finish
func (c *CommandPool) Submit(record func(cmd vk.CommandBuffer)) error {
	buffers, err := c.Allocate(1)
	if err != nil {
		return err
	}
	defer c.Free(buffers)
	cmd := buffers[0]

	cbbi := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if err := vk.Error(vk.BeginCommandBuffer(cmd, &cbbi)); err != nil {
		return errors.Wrap(err, "vk.BeginCommandBuffer()")
	}

	record(cmd)

	if err := vk.Error(vk.EndCommandBuffer(cmd)); err != nil {
		return errors.Wrap(err, "vk.EndCommandBuffer()")
	}

	si := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    buffers,
	}
	if err := vk.Error(vk.QueueSubmit(c.queue, 1, []vk.SubmitInfo{si}, nil)); err != nil {
		return errors.Wrap(err, "vk.QueueSubmit()")
	}
	return errors.Wrap(vk.Error(vk.QueueWaitIdle(c.queue)), "vk.QueueWaitIdle()")
}

// CopyBuffer copies size bytes from src to dst
func (c *CommandPool) CopyBuffer(src, dst vk.Buffer, size vk.DeviceSize) error {
	return c.Submit(func(cmd vk.CommandBuffer) {
		vk.CmdCopyBuffer(cmd, src, dst, 1, []vk.BufferCopy{{Size: size}})
	})
}

// Release destroys the pool and every buffer allocated from it
func (c *CommandPool) Release() {
	vk.DestroyCommandPool(c.device, c.pool, nil)
}
