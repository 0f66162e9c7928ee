// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkn

import (
	"fmt"
	"reflect"
	"strings"
)

// Handle is an opaque platform handle. Adapters and surfaces
// are passed around as handles, only the platform knows what
// is inside.
type Handle interface{}

// IsNullHandle reports whether h refers to nothing. A nil
// interface and a typed nil pointer are both null.
func IsNullHandle(h Handle) bool {
	if h == nil {
		return true
	}
	v := reflect.ValueOf(h)
	switch v.Kind() {
	case reflect.Ptr, reflect.UnsafePointer, reflect.Interface,
		reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// QueueFlags is a set of queue family capabilities.
// Bit values match the Vulkan ones.
type QueueFlags uint32

// Queue capability bits
const (
	QueueGraphicsBit QueueFlags = 1 << iota
	QueueComputeBit
	QueueTransferBit
	QueueSparseBindingBit
)

// Has reports whether every bit in bits is set
func (f QueueFlags) Has(bits QueueFlags) bool {
	return f&bits == bits
}

func (f QueueFlags) String() string {
	if f == 0 {
		return "none"
	}
	var names []string
	for _, b := range []struct {
		bit  QueueFlags
		name string
	}{
		{QueueGraphicsBit, "graphics"},
		{QueueComputeBit, "compute"},
		{QueueTransferBit, "transfer"},
		{QueueSparseBindingBit, "sparse"},
	} {
		if f.Has(b.bit) {
			names = append(names, b.name)
		}
	}
	if rest := f &^ (QueueGraphicsBit | QueueComputeBit | QueueTransferBit | QueueSparseBindingBit); rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(names, "|")
}

// QueueFamily describes one queue family of a physical device.
// Index is the position of the family in the device's list.
type QueueFamily struct {
	Index              uint32
	Flags              QueueFlags
	QueueCount         uint32
	TimestampValidBits uint32
}

// QueueIndex is an optional queue family index. The zero
// value is absent, which is distinct from a present index 0.
type QueueIndex struct {
	Index uint32
	Valid bool
}

// SomeQueueIndex returns a present queue index
func SomeQueueIndex(i uint32) QueueIndex {
	return QueueIndex{Index: i, Valid: true}
}

// Get returns the index and whether it is present
func (q QueueIndex) Get() (uint32, bool) {
	return q.Index, q.Valid
}

func (q QueueIndex) String() string {
	if !q.Valid {
		return "none"
	}
	return fmt.Sprintf("%d", q.Index)
}

// DeviceType is the kind of physical device. Values match
// the Vulkan physical device types.
type DeviceType int

// Device types
const (
	DeviceTypeOther DeviceType = iota
	DeviceTypeIntegrated
	DeviceTypeDiscrete
	DeviceTypeVirtual
	DeviceTypeCPU
)

var deviceTypeNames = [...]string{
	DeviceTypeOther:      "other",
	DeviceTypeIntegrated: "integrated",
	DeviceTypeDiscrete:   "discrete",
	DeviceTypeVirtual:    "virtual",
	DeviceTypeCPU:        "cpu",
}

func (t DeviceType) String() string {
	if t < 0 || int(t) >= len(deviceTypeNames) {
		return fmt.Sprintf("DeviceType(%d)", int(t))
	}
	return deviceTypeNames[t]
}

// ParseDeviceType parses the names produced by DeviceType.String
func ParseDeviceType(s string) (DeviceType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range deviceTypeNames {
		if s == name {
			return DeviceType(i), nil
		}
	}
	return DeviceTypeOther, fmt.Errorf("unknown device type %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (t DeviceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *DeviceType) UnmarshalText(text []byte) error {
	parsed, err := ParseDeviceType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Features are the optional device features the renderer cares about
type Features struct {
	GeometryShader       bool `json:"geometryShader,omitempty" yaml:"geometryShader"`
	TessellationShader   bool `json:"tessellationShader,omitempty" yaml:"tessellationShader"`
	SamplerAnisotropy    bool `json:"samplerAnisotropy,omitempty" yaml:"samplerAnisotropy"`
	FillModeNonSolid     bool `json:"fillModeNonSolid,omitempty" yaml:"fillModeNonSolid"`
	WideLines            bool `json:"wideLines,omitempty" yaml:"wideLines"`
	LargePoints          bool `json:"largePoints,omitempty" yaml:"largePoints"`
	MultiDrawIndirect    bool `json:"multiDrawIndirect,omitempty" yaml:"multiDrawIndirect"`
	ShaderFloat64        bool `json:"shaderFloat64,omitempty" yaml:"shaderFloat64"`
	ShaderInt64          bool `json:"shaderInt64,omitempty" yaml:"shaderInt64"`
	TextureCompressionBC bool `json:"textureCompressionBC,omitempty" yaml:"textureCompressionBC"`
}

func (f Features) list() []struct {
	name string
	on   bool
} {
	return []struct {
		name string
		on   bool
	}{
		{"geometryShader", f.GeometryShader},
		{"tessellationShader", f.TessellationShader},
		{"samplerAnisotropy", f.SamplerAnisotropy},
		{"fillModeNonSolid", f.FillModeNonSolid},
		{"wideLines", f.WideLines},
		{"largePoints", f.LargePoints},
		{"multiDrawIndirect", f.MultiDrawIndirect},
		{"shaderFloat64", f.ShaderFloat64},
		{"shaderInt64", f.ShaderInt64},
		{"textureCompressionBC", f.TextureCompressionBC},
	}
}

// Missing returns the names of features that are set in
// required but not in f
func (f Features) Missing(required Features) []string {
	var missing []string
	have := f.list()
	for i, r := range required.list() {
		if r.on && !have[i].on {
			missing = append(missing, r.name)
		}
	}
	return missing
}

// Limits is a subset of the device limits
type Limits struct {
	MaxImageDimension2D            uint32  `json:"maxImageDimension2D"`
	MaxBoundDescriptorSets         uint32  `json:"maxBoundDescriptorSets"`
	MaxPushConstantsSize           uint32  `json:"maxPushConstantsSize"`
	MaxMemoryAllocationCount       uint32  `json:"maxMemoryAllocationCount"`
	MaxComputeSharedMemorySize     uint32  `json:"maxComputeSharedMemorySize"`
	MaxComputeWorkGroupInvocations uint32  `json:"maxComputeWorkGroupInvocations"`
	MaxSamplerAnisotropy           float32 `json:"maxSamplerAnisotropy"`
}

// Properties of a physical device
type Properties struct {
	Name          string     `json:"name"`
	Type          DeviceType `json:"type"`
	VendorID      uint32     `json:"vendorId"`
	DeviceID      uint32     `json:"deviceId"`
	APIVersion    uint32     `json:"apiVersion"`
	DriverVersion uint32     `json:"driverVersion"`
	Limits        Limits     `json:"limits"`
}

// MemoryHeap is one memory heap of a device
type MemoryHeap struct {
	Size        uint64 `json:"size"`
	DeviceLocal bool   `json:"deviceLocal"`
}

// MemoryType is one memory type of a device, Flags holds the
// raw memory property bits
type MemoryType struct {
	HeapIndex uint32 `json:"heapIndex"`
	Flags     uint32 `json:"flags"`
}

// MemoryProperties lists the memory heaps and types of a device
type MemoryProperties struct {
	Heaps []MemoryHeap `json:"heaps"`
	Types []MemoryType `json:"types"`
}

// DeviceLocalSize sums the sizes of device local heaps
func (m MemoryProperties) DeviceLocalSize() uint64 {
	var size uint64
	for _, h := range m.Heaps {
		if h.DeviceLocal {
			size += h.Size
		}
	}
	return size
}

// Description is everything known about one physical device.
// QueueFamilies keeps the order the platform reported.
type Description struct {
	Handle           Handle           `json:"-"`
	QueueFamilies    []QueueFamily    `json:"queueFamilies"`
	Extensions       []string         `json:"extensions"`
	Features         Features         `json:"features"`
	Properties       Properties       `json:"properties"`
	MemoryProperties MemoryProperties `json:"memoryProperties"`
}

// HasExtension reports whether the device supports the named extension
func (d *Description) HasExtension(name string) bool {
	for _, ext := range d.Extensions {
		if ext == name {
			return true
		}
	}
	return false
}
