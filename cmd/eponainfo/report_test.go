// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"bytes"
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/devblok/epona/vkn"
)

func candidates() []vkn.Description {
	return []vkn.Description{{
		Handle: "igpu",
		QueueFamilies: []vkn.QueueFamily{
			{Flags: vkn.QueueGraphicsBit | vkn.QueueComputeBit | vkn.QueueTransferBit, QueueCount: 1},
		},
		Properties: vkn.Properties{Name: "Integrated", Type: vkn.DeviceTypeIntegrated, APIVersion: 1<<22 | 2<<12 | 131},
	}, {
		Handle: "dgpu",
		QueueFamilies: []vkn.QueueFamily{
			{Index: 0, Flags: vkn.QueueGraphicsBit | vkn.QueueComputeBit | vkn.QueueTransferBit, QueueCount: 16},
			{Index: 1, Flags: vkn.QueueComputeBit, QueueCount: 8},
			{Index: 2, Flags: vkn.QueueTransferBit, QueueCount: 2},
		},
		Properties: vkn.Properties{Name: "Discrete", Type: vkn.DeviceTypeDiscrete},
		MemoryProperties: vkn.MemoryProperties{
			Heaps: []vkn.MemoryHeap{{Size: 8 << 30, DeviceLocal: true}, {Size: 16 << 30}},
		},
	}}
}

func selector(req vkn.Requirements) *vkn.Selector {
	log, _ := test.NewNullLogger()
	return vkn.NewSelector(nil, nil, req, log)
}

func TestReportSelection(t *testing.T) {
	c := qt.New(t)
	req := vkn.DefaultRequirements()
	req.RequirePresent = false

	rep := newReport(selector(req), candidates())
	c.Assert(rep.Devices, qt.HasLen, 2)
	c.Assert(rep.Devices[0].Verdict, qt.Equals, "partially suitable")
	c.Assert(rep.Devices[1].Verdict, qt.Equals, "suitable")
	c.Assert(rep.Error, qt.Equals, "")

	s := rep.Selection
	c.Assert(s, qt.Not(qt.IsNil))
	c.Assert(s.Device, qt.Equals, "Discrete")
	c.Assert(*s.Graphics, qt.Equals, uint32(0))
	c.Assert(s.Present, qt.IsNil)
	c.Assert(*s.Compute, qt.Equals, uint32(1))
	c.Assert(*s.Transfer, qt.Equals, uint32(2))

	var buf bytes.Buffer
	c.Assert(rep.WriteText(&buf), qt.IsNil)
	c.Assert(buf.String(), qt.Contains, "Selected:")
	c.Assert(buf.String(), qt.Contains, "graphics 0, present none, compute 1, transfer 2")
	c.Assert(buf.String(), qt.Contains, "8192 MiB")
	c.Assert(buf.String(), qt.Contains, "1.2.131")
}

func TestReportNoSuitableDevice(t *testing.T) {
	c := qt.New(t)
	req := vkn.Requirements{PreferredType: vkn.DeviceTypeCPU}

	rep := newReport(selector(req), candidates())
	c.Assert(rep.Selection, qt.IsNil)
	c.Assert(rep.Error, qt.Equals, vkn.ErrNoSuitableDevice.Error())

	var buf bytes.Buffer
	c.Assert(rep.WriteText(&buf), qt.IsNil)
	c.Assert(buf.String(), qt.Contains, "none ("+vkn.ErrNoSuitableDevice.Error()+")")
}

func TestReportJSON(t *testing.T) {
	c := qt.New(t)
	req := vkn.DefaultRequirements()
	req.RequirePresent = false

	data, err := json.Marshal(newReport(selector(req), candidates()))
	c.Assert(err, qt.IsNil)

	var decoded struct {
		Devices []struct {
			Properties struct {
				Name string `json:"name"`
				Type string `json:"type"`
			} `json:"properties"`
			Verdict string `json:"verdict"`
		} `json:"devices"`
		Selection struct {
			Device  string  `json:"device"`
			Present *uint32 `json:"present"`
		} `json:"selection"`
	}
	c.Assert(json.Unmarshal(data, &decoded), qt.IsNil)
	c.Assert(decoded.Devices, qt.HasLen, 2)
	c.Assert(decoded.Devices[1].Properties.Type, qt.Equals, "discrete")
	c.Assert(decoded.Selection.Device, qt.Equals, "Discrete")
	c.Assert(decoded.Selection.Present, qt.IsNil)
}
