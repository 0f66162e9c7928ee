// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"encoding/binary"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/epona/core"
)

func TestSliceUint32(t *testing.T) {
	c := qt.New(t)

	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:], 0x07230203)
	binary.LittleEndian.PutUint32(data[4:], 1)
	binary.LittleEndian.PutUint32(data[8:], 0xffffffff)

	words := core.SliceUint32(data)
	c.Assert(words, qt.HasLen, 3)
	c.Assert(words[0], qt.Equals, uint32(0x07230203))
	c.Assert(words[2], qt.Equals, uint32(0xffffffff))

	c.Assert(core.SliceUint32(data[:7]), qt.HasLen, 1)
	c.Assert(core.SliceUint32(nil), qt.HasLen, 0)
}

func BenchmarkSliceUint32Small(b *testing.B) {
	data := make([]byte, 100)
	for idx := 0; idx < b.N; idx++ {
		core.SliceUint32(data)
	}
}

func BenchmarkSliceUint32Medium(b *testing.B) {
	data := make([]byte, 1000)
	for idx := 0; idx < b.N; idx++ {
		core.SliceUint32(data)
	}
}

func BenchmarkSliceUint32Big(b *testing.B) {
	data := make([]byte, 100000)
	for idx := 0; idx < b.N; idx++ {
		core.SliceUint32(data)
	}
}
