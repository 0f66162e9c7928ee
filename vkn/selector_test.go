// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkn_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/pkg/errors"

	"github.com/devblok/epona/vkn"
)

func newSelector(p *fakePlatform, surf vkn.Handle, reqs vkn.Requirements) *vkn.Selector {
	return vkn.NewSelector(p, surf, reqs, quietLogger())
}

func TestDefaultRequirements(t *testing.T) {
	c := qt.New(t)
	c.Assert(vkn.DefaultRequirements(), qt.DeepEquals, vkn.Requirements{
		PreferredType:  vkn.DeviceTypeDiscrete,
		AllowAnyType:   true,
		RequirePresent: true,
	})
}

func TestSelectPrefersDiscrete(t *testing.T) {
	c := qt.New(t)
	integrated := &fakeDevice{name: "igpu", typ: vkn.DeviceTypeIntegrated, families: families(G | C | T), present: presenting(0)}
	discrete := &fakeDevice{name: "dgpu", typ: vkn.DeviceTypeDiscrete, families: families(G|C|T, C, T), present: presenting(0)}
	p := &fakePlatform{devices: []*fakeDevice{integrated, discrete}}

	pd, err := newSelector(p, &surface{}, vkn.DefaultRequirements()).Select()
	c.Assert(err, qt.IsNil)
	c.Assert(pd.Handle, qt.Equals, vkn.Handle(discrete))
	c.Assert(pd.Properties.Name, qt.Equals, "dgpu")
	c.Assert(pd.Graphics, qt.Equals, some(0))
	c.Assert(pd.Present, qt.Equals, some(0))
	c.Assert(pd.Compute, qt.Equals, some(1))
	c.Assert(pd.Transfer, qt.Equals, some(2))
	c.Assert(pd.HasDedicatedComputeQueue(), qt.Equals, true)
	c.Assert(pd.HasDedicatedTransferQueue(), qt.Equals, true)
	c.Assert(pd.UniqueQueueFamilies(), qt.DeepEquals, []uint32{0, 1, 2})
}

func TestSelectSeparatedCompute(t *testing.T) {
	c := qt.New(t)
	d := &fakeDevice{name: "dgpu", typ: vkn.DeviceTypeDiscrete, families: families(G|C|T, C|T), present: presenting(0)}
	p := &fakePlatform{devices: []*fakeDevice{d}}

	reqs := vkn.DefaultRequirements()
	reqs.RequireSeparatedCompute = true

	pd, err := newSelector(p, &surface{}, reqs).Select()
	c.Assert(err, qt.IsNil)
	c.Assert(pd.Compute, qt.Equals, some(1))
	c.Assert(pd.Transfer, qt.Equals, some(1))
	c.Assert(pd.HasDedicatedComputeQueue(), qt.Equals, false)
	c.Assert(pd.HasSeparatedComputeQueue(), qt.Equals, true)
	c.Assert(pd.HasSeparatedTransferQueue(), qt.Equals, true)
	c.Assert(pd.UniqueQueueFamilies(), qt.DeepEquals, []uint32{0, 1})
}

func TestSelectRejectsWrongTypeWithoutFallback(t *testing.T) {
	c := qt.New(t)
	d := &fakeDevice{name: "igpu", typ: vkn.DeviceTypeIntegrated, families: families(G | C | T), present: presenting(0)}
	p := &fakePlatform{devices: []*fakeDevice{d}}

	reqs := vkn.DefaultRequirements()
	reqs.AllowAnyType = false

	_, err := newSelector(p, &surface{}, reqs).Select()
	c.Assert(errors.Cause(err), qt.Equals, vkn.ErrNoSuitableDevice)
}

func TestSelectDedicatedComputeWithoutFallback(t *testing.T) {
	c := qt.New(t)
	integrated := &fakeDevice{name: "igpu", typ: vkn.DeviceTypeIntegrated, families: families(G | T), present: presenting(0)}
	discrete := &fakeDevice{name: "dgpu", typ: vkn.DeviceTypeDiscrete, families: families(G|C|T, C), present: presenting(0)}
	p := &fakePlatform{devices: []*fakeDevice{integrated, discrete}}

	reqs := vkn.DefaultRequirements()
	reqs.AllowAnyType = false
	reqs.RequireDedicatedCompute = true

	s := newSelector(p, &surface{}, reqs)
	candidates, err := s.Candidates()
	c.Assert(err, qt.IsNil)
	verdict, _ := s.Evaluate(candidates[1])
	c.Assert(verdict, qt.Equals, vkn.Suitable)

	pd, err := s.Select()
	c.Assert(err, qt.IsNil)
	c.Assert(pd.Handle, qt.Equals, vkn.Handle(discrete))
	c.Assert(pd.Compute, qt.Equals, some(1))
}

func TestSelectNoPresentSupport(t *testing.T) {
	c := qt.New(t)
	d := &fakeDevice{name: "dgpu", typ: vkn.DeviceTypeDiscrete, families: families(G|C|T, T), present: presenting()}
	p := &fakePlatform{devices: []*fakeDevice{d}}

	reqs := vkn.DefaultRequirements()
	reqs.RequirePresent = true

	_, err := newSelector(p, &surface{}, reqs).Select()
	c.Assert(errors.Cause(err), qt.Equals, vkn.ErrNoSuitableDevice)
	// every family was asked before giving up
	c.Assert(p.surfaceQueries >= 2, qt.Equals, true)
}

func TestSelectPresentWithoutSurface(t *testing.T) {
	c := qt.New(t)
	d := &fakeDevice{name: "dgpu", typ: vkn.DeviceTypeDiscrete, families: families(G), present: presenting(0)}
	p := &fakePlatform{devices: []*fakeDevice{d}}

	_, err := newSelector(p, nil, vkn.Requirements{RequirePresent: true, PreferredType: vkn.DeviceTypeDiscrete}).Select()
	c.Assert(errors.Cause(err), qt.Equals, vkn.ErrNoSuitableDevice)
	c.Assert(p.surfaceQueries, qt.Equals, 0)
}

func TestSelectHeadless(t *testing.T) {
	c := qt.New(t)
	d := &fakeDevice{name: "dgpu", typ: vkn.DeviceTypeDiscrete, families: families(G|C|T, T)}
	p := &fakePlatform{devices: []*fakeDevice{d}}

	reqs := vkn.DefaultRequirements()
	reqs.RequirePresent = false

	pd, err := newSelector(p, nil, reqs).Select()
	c.Assert(err, qt.IsNil)
	c.Assert(pd.Present, qt.Equals, none)
	c.Assert(pd.Compute, qt.Equals, none)
	c.Assert(pd.Transfer, qt.Equals, some(1))
	c.Assert(pd.UniqueQueueFamilies(), qt.DeepEquals, []uint32{0, 1})
}

func TestChooseFirstSuitableWins(t *testing.T) {
	c := qt.New(t)
	a := &fakeDevice{name: "a", typ: vkn.DeviceTypeDiscrete, families: families(G), present: presenting(0)}
	b := &fakeDevice{name: "b", typ: vkn.DeviceTypeDiscrete, families: families(G), present: presenting(0)}
	p := &fakePlatform{devices: []*fakeDevice{a, b}}

	pd, err := newSelector(p, &surface{}, vkn.DefaultRequirements()).Select()
	c.Assert(err, qt.IsNil)
	c.Assert(pd.Properties.Name, qt.Equals, "a")
	// one query to evaluate a, one to derive its present index, b is never asked
	c.Assert(p.surfaceQueries, qt.Equals, 2)
}

func TestChooseLastPartialWins(t *testing.T) {
	c := qt.New(t)
	var devices []*fakeDevice
	for _, d := range []struct {
		name string
		typ  vkn.DeviceType
	}{
		{"integrated", vkn.DeviceTypeIntegrated},
		{"virtual", vkn.DeviceTypeVirtual},
		{"cpu", vkn.DeviceTypeCPU},
	} {
		devices = append(devices, &fakeDevice{name: d.name, typ: d.typ, families: families(G), present: presenting(0)})
	}
	p := &fakePlatform{devices: devices}

	pd, err := newSelector(p, &surface{}, vkn.DefaultRequirements()).Select()
	c.Assert(err, qt.IsNil)
	c.Assert(pd.Properties.Name, qt.Equals, "cpu")
}

func TestChooseSuitableAfterPartial(t *testing.T) {
	c := qt.New(t)
	p := &fakePlatform{devices: []*fakeDevice{
		{name: "igpu", typ: vkn.DeviceTypeIntegrated, families: families(G), present: presenting(0)},
		{name: "dgpu", typ: vkn.DeviceTypeDiscrete, families: families(G), present: presenting(0)},
		{name: "igpu2", typ: vkn.DeviceTypeIntegrated, families: families(G), present: presenting(0)},
	}}

	pd, err := newSelector(p, &surface{}, vkn.DefaultRequirements()).Select()
	c.Assert(err, qt.IsNil)
	c.Assert(pd.Properties.Name, qt.Equals, "dgpu")
}

func TestChooseSelectFirst(t *testing.T) {
	p := &fakePlatform{devices: []*fakeDevice{
		{name: "first", typ: vkn.DeviceTypeIntegrated, families: families(G)},
		{name: "second", typ: vkn.DeviceTypeDiscrete, families: families(G)},
	}}

	t.Run("override", func(t *testing.T) {
		c := qt.New(t)
		reqs := vkn.DefaultRequirements()
		reqs.SelectFirst = true

		pd, err := newSelector(p, &surface{}, reqs).Select()
		c.Assert(err, qt.IsNil)
		c.Assert(pd.Properties.Name, qt.Equals, "first")
		c.Assert(pd.Present, qt.Equals, none)
	})

	t.Run("no override", func(t *testing.T) {
		c := qt.New(t)
		_, err := newSelector(p, &surface{}, vkn.DefaultRequirements()).Select()
		c.Assert(errors.Cause(err), qt.Equals, vkn.ErrNoSuitableDevice)
	})

	t.Run("partial beats override", func(t *testing.T) {
		c := qt.New(t)
		q := &fakePlatform{devices: []*fakeDevice{
			{name: "first", typ: vkn.DeviceTypeIntegrated, families: families(G)},
			{name: "second", typ: vkn.DeviceTypeCPU, families: families(G), present: presenting(0)},
		}}
		reqs := vkn.DefaultRequirements()
		reqs.SelectFirst = true

		pd, err := newSelector(q, &surface{}, reqs).Select()
		c.Assert(err, qt.IsNil)
		c.Assert(pd.Properties.Name, qt.Equals, "second")
	})
}

func TestSelectErrors(t *testing.T) {
	zero := uint32(0)
	d := &fakeDevice{name: "dgpu", typ: vkn.DeviceTypeDiscrete, families: families(G), present: presenting(0)}

	cases := []struct {
		name     string
		platform *fakePlatform
		want     error
	}{
		{"count fails", &fakePlatform{devices: []*fakeDevice{d}, countErr: errPlatform}, vkn.ErrFailedToRetrievePhysicalDeviceCount},
		{"enumeration fails", &fakePlatform{devices: []*fakeDevice{d}, enumErr: errPlatform}, vkn.ErrFailedToEnumeratePhysicalDevices},
		{"no devices", &fakePlatform{}, vkn.ErrNoPhysicalDeviceFound},
		{"count of zero", &fakePlatform{devices: []*fakeDevice{d}, count: &zero}, vkn.ErrNoPhysicalDeviceFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := qt.New(t)
			pd, err := newSelector(tc.platform, &surface{}, vkn.DefaultRequirements()).Select()
			c.Assert(pd == nil, qt.Equals, true)
			c.Assert(errors.Cause(err), qt.Equals, tc.want)
		})
	}

	t.Run("platform cause is kept in the message", func(t *testing.T) {
		c := qt.New(t)
		p := &fakePlatform{countErr: errPlatform}
		_, err := newSelector(p, nil, vkn.DefaultRequirements()).Select()
		c.Assert(err, qt.ErrorMatches, "device lost: failed to retrieve physical device count")
	})
}

func TestChooseEmpty(t *testing.T) {
	c := qt.New(t)
	_, err := newSelector(&fakePlatform{}, nil, vkn.DefaultRequirements()).Choose(nil)
	c.Assert(err, qt.Equals, vkn.ErrNoPhysicalDeviceFound)
}

func TestSelectIsDeterministic(t *testing.T) {
	c := qt.New(t)
	p := &fakePlatform{devices: []*fakeDevice{
		{name: "igpu", typ: vkn.DeviceTypeIntegrated, families: families(G|C|T, C), present: presenting(0)},
		{name: "vgpu", typ: vkn.DeviceTypeVirtual, families: families(G|C|T, T), present: presenting(1)},
	}}
	s := newSelector(p, &surface{}, vkn.DefaultRequirements())

	first, err := s.Select()
	c.Assert(err, qt.IsNil)
	for i := 0; i < 5; i++ {
		again, err := s.Select()
		c.Assert(err, qt.IsNil)
		c.Assert(again.Handle, qt.Equals, first.Handle)
		c.Assert([]vkn.QueueIndex{again.Graphics, again.Present, again.Compute, again.Transfer}, qt.DeepEquals,
			[]vkn.QueueIndex{first.Graphics, first.Present, first.Compute, first.Transfer})
	}
	c.Assert(first.Properties.Name, qt.Equals, "vgpu")
	c.Assert(first.Present, qt.Equals, some(1))
}

func TestDescribe(t *testing.T) {
	c := qt.New(t)
	reported := []vkn.QueueFamily{
		{Index: 7, Flags: G, QueueCount: 16},
		{Index: 7, Flags: T, QueueCount: 2},
	}
	d := &fakeDevice{name: "dgpu", typ: vkn.DeviceTypeDiscrete, families: reported, extensions: []string{"VK_KHR_swapchain"}}
	p := &fakePlatform{devices: []*fakeDevice{d}}

	desc := newSelector(p, nil, vkn.DefaultRequirements()).Describe(d)
	c.Assert(desc.Handle, qt.Equals, vkn.Handle(d))
	c.Assert(desc.QueueFamilies, qt.DeepEquals, []vkn.QueueFamily{
		{Index: 0, Flags: G, QueueCount: 16},
		{Index: 1, Flags: T, QueueCount: 2},
	})
	c.Assert(reported[0].Index, qt.Equals, uint32(7))
	c.Assert(desc.Extensions, qt.DeepEquals, []string{"VK_KHR_swapchain"})
	c.Assert(desc.HasExtension("VK_KHR_swapchain"), qt.Equals, true)
	c.Assert(desc.MemoryProperties.DeviceLocalSize(), qt.Equals, uint64(1<<30))
}

func TestDescribeExtensionFailure(t *testing.T) {
	c := qt.New(t)
	d := &fakeDevice{name: "dgpu", typ: vkn.DeviceTypeDiscrete, families: families(G), present: presenting(0), extErr: errPlatform}
	p := &fakePlatform{devices: []*fakeDevice{d}}

	reqs := vkn.DefaultRequirements()
	s := newSelector(p, &surface{}, reqs)
	desc := s.Describe(d)
	c.Assert(desc.Extensions, qt.HasLen, 0)

	verdict, _ := s.Evaluate(desc)
	c.Assert(verdict, qt.Equals, vkn.Suitable)

	reqs.Extensions = []string{"VK_KHR_swapchain"}
	verdict, _ = newSelector(p, &surface{}, reqs).Evaluate(desc)
	c.Assert(verdict, qt.Equals, vkn.Unsuitable)
}
