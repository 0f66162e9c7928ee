// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkn

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Selector picks a physical device that satisfies Requirements.
// It keeps no state between calls, Select can be run again
// after a device is lost.
type Selector struct {
	platform     Platform
	surface      Handle
	requirements Requirements
	log          logrus.FieldLogger
}

// NewSelector creates a selector. surface may be nil when
// presentation is not needed, log may be nil to use the
// standard logger.
func NewSelector(platform Platform, surface Handle, requirements Requirements, log logrus.FieldLogger) *Selector {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Selector{
		platform:     platform,
		surface:      surface,
		requirements: requirements,
		log:          log,
	}
}

// Requirements returns the requirements the selector checks against
func (s *Selector) Requirements() Requirements {
	return s.requirements
}

// Select enumerates the devices, evaluates each one and returns the chosen
// device along with its queue family indices
func (s *Selector) Select() (*PhysicalDevice, error) {
	candidates, err := s.Candidates()
	if err != nil {
		return nil, err
	}

	desc, err := s.Choose(candidates)
	if err != nil {
		return nil, err
	}

	device := NewPhysicalDevice(s.platform, s.surface, desc)
	s.log.WithFields(logrus.Fields{
		"device":   desc.Properties.Name,
		"type":     desc.Properties.Type,
		"graphics": device.Graphics,
		"present":  device.Present,
		"compute":  device.Compute,
		"transfer": device.Transfer,
	}).Info("selected physical device")
	return device, nil
}

// Candidates enumerates the physical devices and describes
// every one of them, in enumeration order
func (s *Selector) Candidates() ([]Description, error) {
	count, err := s.platform.PhysicalDeviceCount()
	if err != nil {
		return nil, errors.WithMessagef(ErrFailedToRetrievePhysicalDeviceCount, "%v", err)
	}
	if count == 0 {
		return nil, ErrNoPhysicalDeviceFound
	}

	handles, err := s.platform.PhysicalDevices(count)
	if err != nil {
		return nil, errors.WithMessagef(ErrFailedToEnumeratePhysicalDevices, "%v", err)
	}
	if len(handles) == 0 {
		return nil, ErrNoPhysicalDeviceFound
	}

	candidates := make([]Description, 0, len(handles))
	for _, h := range handles {
		candidates = append(candidates, s.Describe(h))
	}
	return candidates, nil
}

// Describe gathers everything the evaluator needs about a device.
// Queue families keep the platform's order.
func (s *Selector) Describe(device Handle) Description {
	reported := s.platform.QueueFamilies(device)
	families := make([]QueueFamily, len(reported))
	for i, f := range reported {
		f.Index = uint32(i)
		families[i] = f
	}

	desc := Description{
		Handle:           device,
		QueueFamilies:    families,
		Features:         s.platform.Features(device),
		Properties:       s.platform.Properties(device),
		MemoryProperties: s.platform.MemoryProperties(device),
	}

	exts, err := s.platform.Extensions(device)
	if err != nil {
		s.log.WithError(err).WithField("device", desc.Properties.Name).Warn("could not enumerate device extensions")
	}
	desc.Extensions = exts
	return desc
}

// Choose picks among described devices. The first suitable device
// wins, otherwise the last partially suitable one, otherwise the
// first device when Requirements.SelectFirst is set.
func (s *Selector) Choose(candidates []Description) (Description, error) {
	if len(candidates) == 0 {
		return Description{}, ErrNoPhysicalDeviceFound
	}

	var (
		partial    Description
		hasPartial bool
	)
	for _, desc := range candidates {
		verdict, reason := s.Evaluate(desc)
		s.log.WithFields(logrus.Fields{
			"device":  desc.Properties.Name,
			"type":    desc.Properties.Type,
			"verdict": verdict,
			"reason":  reason,
		}).Debug("evaluated physical device")

		switch verdict {
		case Suitable:
			return desc, nil
		case PartiallySuitable:
			partial, hasPartial = desc, true
		}
	}

	if hasPartial {
		return partial, nil
	}
	if s.requirements.SelectFirst {
		s.log.WithField("device", candidates[0].Properties.Name).Warn("no device meets requirements, using the first one")
		return candidates[0], nil
	}
	return Description{}, ErrNoSuitableDevice
}
