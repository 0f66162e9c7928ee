// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"unsafe"

	"github.com/devblok/epona/vkn"
	vk "github.com/devblok/vulkan"
)

type sliceHeader struct {
	Data uintptr
	Len  int
	Cap  int
}

// SliceUint32 reslices bytes into a uint32, that is used
// to sumbit vulkan shaders for processing
func SliceUint32(data []byte) []uint32 {
	if len(data) < 4 {
		return nil
	}
	const m = 0x7fffffff
	return (*[m / 4]uint32)(unsafe.Pointer((*sliceHeader)(unsafe.Pointer(&data)).Data))[:len(data)/4]
}

// bytesAt views size bytes starting at p, used to fill mapped memory
func bytesAt(p unsafe.Pointer, size int) []byte {
	return *(*[]byte)(unsafe.Pointer(&sliceHeader{
		Data: uintptr(p),
		Len:  size,
		Cap:  size,
	}))
}

func safeString(s string) string {
	return fmt.Sprintf("%s\x00", s)
}

func safeStrings(sgs []string) []string {
	safe := []string{}
	for _, s := range sgs {
		safe = append(safe, fmt.Sprintf("%s\x00", s))
	}
	return safe
}

func bool32(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

// deviceFeatures converts the requested feature set
// for device creation
func deviceFeatures(f vkn.Features) vk.PhysicalDeviceFeatures {
	return vk.PhysicalDeviceFeatures{
		GeometryShader:       bool32(f.GeometryShader),
		TessellationShader:   bool32(f.TessellationShader),
		SamplerAnisotropy:    bool32(f.SamplerAnisotropy),
		FillModeNonSolid:     bool32(f.FillModeNonSolid),
		WideLines:            bool32(f.WideLines),
		LargePoints:          bool32(f.LargePoints),
		MultiDrawIndirect:    bool32(f.MultiDrawIndirect),
		ShaderFloat64:        bool32(f.ShaderFloat64),
		ShaderInt64:          bool32(f.ShaderInt64),
		TextureCompressionBC: bool32(f.TextureCompressionBC),
	}
}
