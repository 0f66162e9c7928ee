// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"math"

	"github.com/pkg/errors"

	vk "github.com/devblok/vulkan"
)

// frameSync guards one frame in flight
type frameSync struct {
	device vk.Device

	imageAvailable vk.Semaphore
	renderFinished vk.Semaphore
	inFlight       vk.Fence
}

func newFrameSync(device vk.Device) (*frameSync, error) {
	sci := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	fci := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}

	s := &frameSync{device: device}
	if err := vk.Error(vk.CreateSemaphore(device, &sci, nil, &s.imageAvailable)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateSemaphore()")
	}
	if err := vk.Error(vk.CreateSemaphore(device, &sci, nil, &s.renderFinished)); err != nil {
		vk.DestroySemaphore(device, s.imageAvailable, nil)
		return nil, errors.Wrap(err, "vk.CreateSemaphore()")
	}
	if err := vk.Error(vk.CreateFence(device, &fci, nil, &s.inFlight)); err != nil {
		vk.DestroySemaphore(device, s.imageAvailable, nil)
		vk.DestroySemaphore(device, s.renderFinished, nil)
		return nil, errors.Wrap(err, "vk.CreateFence()")
	}
	return s, nil
}

// wait blocks until the frame's previous submission is done
func (s *frameSync) wait() error {
	fences := []vk.Fence{s.inFlight}
	return errors.Wrap(vk.Error(vk.WaitForFences(s.device, 1, fences, vk.True, math.MaxUint32)), "vk.WaitForFences()")
}

func (s *frameSync) reset() error {
	return errors.Wrap(vk.Error(vk.ResetFences(s.device, 1, []vk.Fence{s.inFlight})), "vk.ResetFences()")
}

func (s *frameSync) Release() {
	vk.DestroySemaphore(s.device, s.imageAvailable, nil)
	vk.DestroySemaphore(s.device, s.renderFinished, nil)
	vk.DestroyFence(s.device, s.inFlight, nil)
}
