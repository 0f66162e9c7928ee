// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkn

import (
	"fmt"
	"strings"
)

// Requirements describe what the application needs from a device
type Requirements struct {
	// PreferredType is the device type that makes a device fully suitable
	PreferredType DeviceType

	// AllowAnyType lets devices of other types be partially suitable,
	// when false they are rejected
	AllowAnyType bool

	RequirePresent           bool
	RequireDedicatedCompute  bool
	RequireDedicatedTransfer bool
	RequireSeparatedCompute  bool
	RequireSeparatedTransfer bool

	// SelectFirst picks the first enumerated device when
	// nothing else matched
	SelectFirst bool

	// Extensions and Features must all be supported
	Extensions []string
	Features   Features
}

// DefaultRequirements prefers a discrete device that can present,
// and accepts any other type as a fallback
func DefaultRequirements() Requirements {
	return Requirements{
		PreferredType:  DeviceTypeDiscrete,
		AllowAnyType:   true,
		RequirePresent: true,
	}
}

// Verdict is the outcome of evaluating a device against requirements
type Verdict int

// Verdicts
const (
	Unsuitable Verdict = iota
	PartiallySuitable
	Suitable
)

func (v Verdict) String() string {
	switch v {
	case Unsuitable:
		return "unsuitable"
	case PartiallySuitable:
		return "partially suitable"
	case Suitable:
		return "suitable"
	}
	return fmt.Sprintf("Verdict(%d)", int(v))
}

// Evaluate checks a device against the selector requirements.
// The string holds the reason of the verdict.
func (s *Selector) Evaluate(desc Description) (Verdict, string) {
	r := s.requirements

	if !r.AllowAnyType && desc.Properties.Type != r.PreferredType {
		return Unsuitable, fmt.Sprintf("device is %s, %s required", desc.Properties.Type, r.PreferredType)
	}

	if len(desc.QueueFamilies) == 0 {
		return Unsuitable, "device has no queue families"
	}

	if r.RequirePresent {
		if !PresentQueueIndex(s.platform, desc.Handle, s.surface, desc.QueueFamilies).Valid {
			return Unsuitable, "no queue family can present to the surface"
		}
	}

	for _, c := range []struct {
		required bool
		index    func([]QueueFamily) QueueIndex
		name     string
	}{
		{r.RequireDedicatedCompute, DedicatedComputeQueueIndex, "dedicated compute"},
		{r.RequireDedicatedTransfer, DedicatedTransferQueueIndex, "dedicated transfer"},
		{r.RequireSeparatedCompute, SeparatedComputeQueueIndex, "separated compute"},
		{r.RequireSeparatedTransfer, SeparatedTransferQueueIndex, "separated transfer"},
	} {
		if c.required && !c.index(desc.QueueFamilies).Valid {
			return Unsuitable, "no " + c.name + " queue family"
		}
	}

	var missing []string
	for _, ext := range r.Extensions {
		if !desc.HasExtension(ext) {
			missing = append(missing, ext)
		}
	}
	if len(missing) > 0 {
		return Unsuitable, "missing extensions: " + strings.Join(missing, ", ")
	}

	if missing := desc.Features.Missing(r.Features); len(missing) > 0 {
		return Unsuitable, "missing features: " + strings.Join(missing, ", ")
	}

	if desc.Properties.Type != r.PreferredType {
		return PartiallySuitable, fmt.Sprintf("device is %s, %s preferred", desc.Properties.Type, r.PreferredType)
	}
	return Suitable, "all requirements met"
}
