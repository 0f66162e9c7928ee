// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkn_test

import (
	"errors"
	"io/ioutil"

	"github.com/devblok/epona/vkn"
	"github.com/sirupsen/logrus"
)

const (
	G = vkn.QueueGraphicsBit
	C = vkn.QueueComputeBit
	T = vkn.QueueTransferBit
)

func families(flags ...vkn.QueueFlags) []vkn.QueueFamily {
	fs := make([]vkn.QueueFamily, len(flags))
	for i, f := range flags {
		fs[i] = vkn.QueueFamily{Index: uint32(i), Flags: f, QueueCount: 1}
	}
	return fs
}

type fakeDevice struct {
	name       string
	typ        vkn.DeviceType
	families   []vkn.QueueFamily
	extensions []string
	extErr     error
	features   vkn.Features

	// present lists families able to present, presentErr
	// fails the query for a family
	present    map[uint32]bool
	presentErr map[uint32]error
}

func presenting(indices ...uint32) map[uint32]bool {
	m := make(map[uint32]bool, len(indices))
	for _, i := range indices {
		m[i] = true
	}
	return m
}

type fakePlatform struct {
	devices  []*fakeDevice
	countErr error
	enumErr  error

	// forced count, when set it overrides len(devices)
	count *uint32

	surfaceQueries int
}

func (p *fakePlatform) PhysicalDeviceCount() (uint32, error) {
	if p.countErr != nil {
		return 0, p.countErr
	}
	if p.count != nil {
		return *p.count, nil
	}
	return uint32(len(p.devices)), nil
}

func (p *fakePlatform) PhysicalDevices(count uint32) ([]vkn.Handle, error) {
	if p.enumErr != nil {
		return nil, p.enumErr
	}
	handles := make([]vkn.Handle, 0, count)
	for i := 0; i < int(count) && i < len(p.devices); i++ {
		handles = append(handles, p.devices[i])
	}
	return handles, nil
}

func device(h vkn.Handle) *fakeDevice {
	return h.(*fakeDevice)
}

func (p *fakePlatform) QueueFamilies(h vkn.Handle) []vkn.QueueFamily {
	return device(h).families
}

func (p *fakePlatform) Features(h vkn.Handle) vkn.Features {
	return device(h).features
}

func (p *fakePlatform) Properties(h vkn.Handle) vkn.Properties {
	d := device(h)
	return vkn.Properties{Name: d.name, Type: d.typ}
}

func (p *fakePlatform) MemoryProperties(h vkn.Handle) vkn.MemoryProperties {
	return vkn.MemoryProperties{
		Heaps: []vkn.MemoryHeap{{Size: 1 << 30, DeviceLocal: true}},
	}
}

func (p *fakePlatform) Extensions(h vkn.Handle) ([]string, error) {
	d := device(h)
	return d.extensions, d.extErr
}

func (p *fakePlatform) SurfaceSupport(h vkn.Handle, queueFamily uint32, surface vkn.Handle) (bool, error) {
	p.surfaceQueries++
	d := device(h)
	if err := d.presentErr[queueFamily]; err != nil {
		return false, err
	}
	return d.present[queueFamily], nil
}

var errPlatform = errors.New("device lost")

type surface struct{}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.Out = ioutil.Discard
	return l
}
