// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkn_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/epona/vkn"
)

func TestEvaluate(t *testing.T) {
	withReqs := func(f func(r *vkn.Requirements)) vkn.Requirements {
		r := vkn.DefaultRequirements()
		f(&r)
		return r
	}

	cases := []struct {
		name    string
		device  *fakeDevice
		reqs    vkn.Requirements
		verdict vkn.Verdict
		reason  string
	}{
		{
			name:    "preferred type with present",
			device:  &fakeDevice{typ: vkn.DeviceTypeDiscrete, families: families(G), present: presenting(0)},
			reqs:    vkn.DefaultRequirements(),
			verdict: vkn.Suitable,
			reason:  "all requirements met",
		},
		{
			name:    "other type is partial",
			device:  &fakeDevice{typ: vkn.DeviceTypeIntegrated, families: families(G), present: presenting(0)},
			reqs:    vkn.DefaultRequirements(),
			verdict: vkn.PartiallySuitable,
			reason:  "device is integrated, discrete preferred",
		},
		{
			name:    "other type rejected without fallback",
			device:  &fakeDevice{typ: vkn.DeviceTypeIntegrated, families: families(G), present: presenting(0)},
			reqs:    withReqs(func(r *vkn.Requirements) { r.AllowAnyType = false }),
			verdict: vkn.Unsuitable,
			reason:  "device is integrated, discrete required",
		},
		{
			name:    "type checked before queue families",
			device:  &fakeDevice{typ: vkn.DeviceTypeCPU},
			reqs:    withReqs(func(r *vkn.Requirements) { r.AllowAnyType = false }),
			verdict: vkn.Unsuitable,
			reason:  "device is cpu, discrete required",
		},
		{
			name:    "no queue families",
			device:  &fakeDevice{typ: vkn.DeviceTypeDiscrete},
			reqs:    withReqs(func(r *vkn.Requirements) { r.RequirePresent = false }),
			verdict: vkn.Unsuitable,
			reason:  "device has no queue families",
		},
		{
			name:    "no present family",
			device:  &fakeDevice{typ: vkn.DeviceTypeDiscrete, families: families(G, C)},
			reqs:    vkn.DefaultRequirements(),
			verdict: vkn.Unsuitable,
			reason:  "no queue family can present to the surface",
		},
		{
			name:    "present not required",
			device:  &fakeDevice{typ: vkn.DeviceTypeDiscrete, families: families(G)},
			reqs:    withReqs(func(r *vkn.Requirements) { r.RequirePresent = false }),
			verdict: vkn.Suitable,
			reason:  "all requirements met",
		},
		{
			name:   "dedicated compute missing",
			device: &fakeDevice{typ: vkn.DeviceTypeDiscrete, families: families(G|C|T, C|T), present: presenting(0)},
			reqs: withReqs(func(r *vkn.Requirements) {
				r.RequireDedicatedCompute = true
			}),
			verdict: vkn.Unsuitable,
			reason:  "no dedicated compute queue family",
		},
		{
			name:   "dedicated transfer missing",
			device: &fakeDevice{typ: vkn.DeviceTypeDiscrete, families: families(G|C|T, C), present: presenting(0)},
			reqs: withReqs(func(r *vkn.Requirements) {
				r.RequireDedicatedCompute = true
				r.RequireDedicatedTransfer = true
			}),
			verdict: vkn.Unsuitable,
			reason:  "no dedicated transfer queue family",
		},
		{
			name:   "separated compute missing",
			device: &fakeDevice{typ: vkn.DeviceTypeDiscrete, families: families(G|C|T, T), present: presenting(0)},
			reqs: withReqs(func(r *vkn.Requirements) {
				r.RequireSeparatedTransfer = true
				r.RequireSeparatedCompute = true
			}),
			verdict: vkn.Unsuitable,
			reason:  "no separated compute queue family",
		},
		{
			name:   "separated transfer missing",
			device: &fakeDevice{typ: vkn.DeviceTypeDiscrete, families: families(G|C|T, C), present: presenting(0)},
			reqs: withReqs(func(r *vkn.Requirements) {
				r.RequireSeparatedCompute = true
				r.RequireSeparatedTransfer = true
			}),
			verdict: vkn.Unsuitable,
			reason:  "no separated transfer queue family",
		},
		{
			name:   "all async queues present",
			device: &fakeDevice{typ: vkn.DeviceTypeDiscrete, families: families(G|C|T, C, T), present: presenting(0)},
			reqs: withReqs(func(r *vkn.Requirements) {
				r.RequireDedicatedCompute = true
				r.RequireDedicatedTransfer = true
				r.RequireSeparatedCompute = true
				r.RequireSeparatedTransfer = true
			}),
			verdict: vkn.Suitable,
			reason:  "all requirements met",
		},
		{
			name:    "missing extensions",
			device:  &fakeDevice{typ: vkn.DeviceTypeDiscrete, families: families(G), present: presenting(0), extensions: []string{"VK_KHR_maintenance1"}},
			reqs:    withReqs(func(r *vkn.Requirements) { r.Extensions = []string{"VK_KHR_swapchain", "VK_KHR_maintenance1", "VK_EXT_debug_marker"} }),
			verdict: vkn.Unsuitable,
			reason:  "missing extensions: VK_KHR_swapchain, VK_EXT_debug_marker",
		},
		{
			name:    "missing features",
			device:  &fakeDevice{typ: vkn.DeviceTypeDiscrete, families: families(G), present: presenting(0), features: vkn.Features{WideLines: true}},
			reqs:    withReqs(func(r *vkn.Requirements) { r.Features = vkn.Features{WideLines: true, SamplerAnisotropy: true} }),
			verdict: vkn.Unsuitable,
			reason:  "missing features: samplerAnisotropy",
		},
		{
			name:    "partial with every requirement met",
			device:  &fakeDevice{typ: vkn.DeviceTypeVirtual, families: families(G), present: presenting(0), extensions: []string{"VK_KHR_swapchain"}},
			reqs:    withReqs(func(r *vkn.Requirements) { r.Extensions = []string{"VK_KHR_swapchain"} }),
			verdict: vkn.PartiallySuitable,
			reason:  "device is virtual, discrete preferred",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := qt.New(t)
			p := &fakePlatform{devices: []*fakeDevice{tc.device}}
			s := newSelector(p, &surface{}, tc.reqs)
			desc := s.Describe(tc.device)

			verdict, reason := s.Evaluate(desc)
			c.Assert(verdict, qt.Equals, tc.verdict)
			c.Assert(reason, qt.Equals, tc.reason)

			// evaluation has no side effects on the outcome
			again, _ := s.Evaluate(desc)
			c.Assert(again, qt.Equals, verdict)
		})
	}
}

func TestVerdictString(t *testing.T) {
	c := qt.New(t)
	c.Assert(vkn.Unsuitable.String(), qt.Equals, "unsuitable")
	c.Assert(vkn.PartiallySuitable.String(), qt.Equals, "partially suitable")
	c.Assert(vkn.Suitable.String(), qt.Equals, "suitable")
}

func TestParseDeviceType(t *testing.T) {
	c := qt.New(t)
	for _, typ := range []vkn.DeviceType{
		vkn.DeviceTypeOther,
		vkn.DeviceTypeIntegrated,
		vkn.DeviceTypeDiscrete,
		vkn.DeviceTypeVirtual,
		vkn.DeviceTypeCPU,
	} {
		parsed, err := vkn.ParseDeviceType(typ.String())
		c.Assert(err, qt.IsNil)
		c.Assert(parsed, qt.Equals, typ)
	}

	parsed, err := vkn.ParseDeviceType(" Discrete ")
	c.Assert(err, qt.IsNil)
	c.Assert(parsed, qt.Equals, vkn.DeviceTypeDiscrete)

	_, err = vkn.ParseDeviceType("gpu")
	c.Assert(err, qt.ErrorMatches, `unknown device type "gpu"`)
}

func TestFeaturesMissing(t *testing.T) {
	c := qt.New(t)
	have := vkn.Features{GeometryShader: true, ShaderInt64: true}

	c.Assert(have.Missing(vkn.Features{}), qt.HasLen, 0)
	c.Assert(have.Missing(vkn.Features{GeometryShader: true}), qt.HasLen, 0)
	c.Assert(have.Missing(vkn.Features{
		GeometryShader:       true,
		TessellationShader:   true,
		TextureCompressionBC: true,
	}), qt.DeepEquals, []string{"tessellationShader", "textureCompressionBC"})
}
