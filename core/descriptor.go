// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/pkg/errors"

	vk "github.com/devblok/vulkan"
)

// DescriptorSetLayoutBuilder collects bindings for a descriptor set layout
type DescriptorSetLayoutBuilder struct {
	bindings []vk.DescriptorSetLayoutBinding
}

// NewDescriptorSetLayoutBuilder returns an empty builder
func NewDescriptorSetLayoutBuilder() *DescriptorSetLayoutBuilder {
	return &DescriptorSetLayoutBuilder{}
}

// AddBinding appends a binding of count descriptors visible to stages
func (b *DescriptorSetLayoutBuilder) AddBinding(binding uint32, typ vk.DescriptorType, count uint32, stages vk.ShaderStageFlagBits) *DescriptorSetLayoutBuilder {
	b.bindings = append(b.bindings, vk.DescriptorSetLayoutBinding{
		Binding:         binding,
		DescriptorType:  typ,
		DescriptorCount: count,
		StageFlags:      vk.ShaderStageFlags(stages),
	})
	return b
}

// SetBindings replaces every binding added so far
func (b *DescriptorSetLayoutBuilder) SetBindings(bindings []vk.DescriptorSetLayoutBinding) *DescriptorSetLayoutBuilder {
	b.bindings = append([]vk.DescriptorSetLayoutBinding(nil), bindings...)
	return b
}

// Bindings returns the collected bindings
func (b *DescriptorSetLayoutBuilder) Bindings() []vk.DescriptorSetLayoutBinding {
	return b.bindings
}

// PoolSizes returns how many descriptors of each type
// sets of this layout need, for sets copies of it
func (b *DescriptorSetLayoutBuilder) PoolSizes(sets uint32) []vk.DescriptorPoolSize {
	var sizes []vk.DescriptorPoolSize
	positions := make(map[vk.DescriptorType]int)
	for _, binding := range b.bindings {
		pos, ok := positions[binding.DescriptorType]
		if !ok {
			pos = len(sizes)
			positions[binding.DescriptorType] = pos
			sizes = append(sizes, vk.DescriptorPoolSize{Type: binding.DescriptorType})
		}
		sizes[pos].DescriptorCount += binding.DescriptorCount * sets
	}
	return sizes
}

// Build creates the descriptor set layout
func (b *DescriptorSetLayoutBuilder) Build(device vk.Device) (vk.DescriptorSetLayout, error) {
	dslci := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(b.bindings)),
		PBindings:    b.bindings,
	}

	var layout vk.DescriptorSetLayout
	if err := vk.Error(vk.CreateDescriptorSetLayout(device, &dslci, nil, &layout)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateDescriptorSetLayout()")
	}
	return layout, nil
}

// DescriptorPool allocates descriptor sets
type DescriptorPool struct {
	device vk.Device
	pool   vk.DescriptorPool
}

// NewDescriptorPool creates a pool for maxSets sets
func NewDescriptorPool(device vk.Device, maxSets uint32, sizes []vk.DescriptorPoolSize) (*DescriptorPool, error) {
	dpci := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       maxSets,
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
	}

	var pool vk.DescriptorPool
	if err := vk.Error(vk.CreateDescriptorPool(device, &dpci, nil, &pool)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateDescriptorPool()")
	}
	return &DescriptorPool{device: device, pool: pool}, nil
}

// Allocate allocates one set per layout
func (p *DescriptorPool) Allocate(layouts ...vk.DescriptorSetLayout) ([]vk.DescriptorSet, error) {
	sets := make([]vk.DescriptorSet, len(layouts))
	for idx, layout := range layouts {
		dsai := vk.DescriptorSetAllocateInfo{
			SType:              vk.StructureTypeDescriptorSetAllocateInfo,
			DescriptorPool:     p.pool,
			DescriptorSetCount: 1,
			PSetLayouts:        []vk.DescriptorSetLayout{layout},
		}
		if err := vk.Error(vk.AllocateDescriptorSets(p.device, &dsai, &sets[idx])); err != nil {
			return nil, errors.Wrap(err, "vk.AllocateDescriptorSets()")
		}
	}
	return sets, nil
}

// Reset returns every set to the pool
func (p *DescriptorPool) Reset() error {
	return errors.Wrap(vk.Error(vk.ResetDescriptorPool(p.device, p.pool, 0)), "vk.ResetDescriptorPool()")
}

// Release destroys the pool and its sets
func (p *DescriptorPool) Release() {
	vk.DestroyDescriptorPool(p.device, p.pool, nil)
}

// writeUniformBuffer points binding of set at the whole buffer
func writeUniformBuffer(device vk.Device, set vk.DescriptorSet, binding uint32, buffer *Buffer) {
	wds := []vk.WriteDescriptorSet{{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      binding,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		PBufferInfo: []vk.DescriptorBufferInfo{{
			Buffer: buffer.Get(),
			Range:  buffer.Size(),
		}},
	}}
	vk.UpdateDescriptorSets(device, uint32(len(wds)), wds, 0, nil)
}
