// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"math"
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/devblok/epona/config"
	"github.com/devblok/epona/gfx"
	"github.com/devblok/epona/model"
	vk "github.com/devblok/vulkan"
)

// sceneProgram is the shader pair the renderer draws with,
// scene.vert.spv and scene.frag.spv
const sceneProgram = "scene"

// ErrForeignMesh is returned when a draw item carries
// a mesh that another renderer uploaded
var ErrForeignMesh = errors.New("mesh was not uploaded by this renderer")

var _ Renderer = (*VulkanRenderer)(nil)

// NewVulkanRenderer creates a not yet initialised Vulkan API renderer
func NewVulkanRenderer(instance Instance, device *Device, shaders ShaderSource, cfg config.RendererConfiguration, log logrus.FieldLogger) *VulkanRenderer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &VulkanRenderer{
		configuration: cfg,
		log:           log,
		surface:       instance.Surface(),
		device:        device,
		shaderSource:  shaders,
	}
}

// VulkanRenderer draws flat shaded meshes with a depth buffer.
// It is driven from a single goroutine.
type VulkanRenderer struct {
	configuration config.RendererConfiguration
	log           logrus.FieldLogger

	surface      vk.Surface
	device       *Device
	shaderSource ShaderSource

	allocator      *MemoryAllocator
	commands       *CommandPool
	pipelineCache  vk.PipelineCache
	shaders        []*Shader
	setLayout      vk.DescriptorSetLayout
	pipelineLayout vk.PipelineLayout
	descriptors    *DescriptorPool

	uniforms       [MaxFramesInFlight]Buffer
	descriptorSets []vk.DescriptorSet
	frames         [MaxFramesInFlight]*frameSync
	commandBuffers []vk.CommandBuffer

	// rebuilt with the swapchain
	swapchain    *Swapchain
	renderPass   vk.RenderPass
	depth        Image
	framebuffers []vk.Framebuffer
	pipeline     vk.Pipeline

	resources          gfx.ReleaseStack
	swapchainResources gfx.ReleaseStack

	frame      int
	imageIndex uint32
	drawn      bool
	resized    bool
}

// Initialise implements interface
func (v *VulkanRenderer) Initialise() error {
	dev := v.device.Inner()
	v.allocator = NewMemoryAllocator(dev, v.device.Physical().MemoryProperties)

	commands, err := NewCommandPool(dev, v.device.GraphicsFamily(), v.device.GraphicsQueue())
	if err != nil {
		return err
	}
	v.commands = commands
	v.resources.Push(commands)

	if v.pipelineCache, err = NewPipelineCache(dev); err != nil {
		return err
	}
	v.resources.PushFunc(func() { vk.DestroyPipelineCache(dev, v.pipelineCache, nil) })

	if v.shaders, err = LoadShaders(dev, v.shaderSource, sceneProgram); err != nil {
		return err
	}
	for _, s := range v.shaders {
		v.resources.Push(s)
	}

	layoutBuilder := NewDescriptorSetLayoutBuilder().
		AddBinding(0, vk.DescriptorTypeUniformBuffer, 1, vk.ShaderStageVertexBit)
	if v.setLayout, err = layoutBuilder.Build(dev); err != nil {
		return err
	}
	v.resources.PushFunc(func() { vk.DestroyDescriptorSetLayout(dev, v.setLayout, nil) })

	if v.pipelineLayout, err = NewPipelineLayout(dev, []vk.DescriptorSetLayout{v.setLayout}); err != nil {
		return err
	}
	v.resources.PushFunc(func() { vk.DestroyPipelineLayout(dev, v.pipelineLayout, nil) })

	if v.descriptors, err = NewDescriptorPool(dev, MaxFramesInFlight, layoutBuilder.PoolSizes(MaxFramesInFlight)); err != nil {
		return err
	}
	v.resources.Push(v.descriptors)

	layouts := make([]vk.DescriptorSetLayout, MaxFramesInFlight)
	for i := range layouts {
		layouts[i] = v.setLayout
	}
	if v.descriptorSets, err = v.descriptors.Allocate(layouts...); err != nil {
		return err
	}

	for i := range v.uniforms {
		buf, err := NewBuffer(dev, v.allocator, int(unsafe.Sizeof(model.Camera{})),
			vk.BufferUsageUniformBufferBit, vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
		if err != nil {
			return err
		}
		v.uniforms[i] = buf
		v.resources.Push(&v.uniforms[i])
		writeUniformBuffer(dev, v.descriptorSets[i], 0, &v.uniforms[i])
	}

	for i := range v.frames {
		frame, err := newFrameSync(dev)
		if err != nil {
			return err
		}
		v.frames[i] = frame
		v.resources.Push(frame)
	}

	if v.commandBuffers, err = v.commands.Allocate(MaxFramesInFlight); err != nil {
		return err
	}

	if err := v.createSwapchainResources(); err != nil {
		return err
	}

	v.log.WithFields(logrus.Fields{
		"extent":    v.swapchain.Extent(),
		"images":    len(v.swapchain.Views()),
		"graphics":  v.device.GraphicsFamily(),
		"present":   v.device.PresentFamily(),
		"resources": v.resources.Len(),
	}).Info("renderer initialised")
	return nil
}

func (v *VulkanRenderer) createSwapchainResources() error {
	dev := v.device.Inner()

	// the old swapchain is released only once its successor exists
	swapchain, err := NewSwapchain(v.device, v.surface, v.configuration, v.swapchain)
	if err != nil {
		return err
	}
	v.swapchain = swapchain

	if v.renderPass, err = NewRenderPass(dev, swapchain.Format()); err != nil {
		return err
	}
	v.swapchainResources.PushFunc(func() { vk.DestroyRenderPass(dev, v.renderPass, nil) })

	if v.depth, err = NewDepthImage(dev, v.allocator, swapchain.Extent()); err != nil {
		return err
	}
	v.swapchainResources.Push(&v.depth)

	if v.framebuffers, err = NewFramebuffers(dev, v.renderPass, swapchain.Views(), v.depth.View(), swapchain.Extent()); err != nil {
		return err
	}
	v.swapchainResources.PushFunc(func() {
		for _, fb := range v.framebuffers {
			vk.DestroyFramebuffer(dev, fb, nil)
		}
		v.framebuffers = nil
	})

	if v.pipeline, err = NewGraphicsPipeline(dev, v.pipelineCache, v.pipelineLayout, v.renderPass, v.shaders); err != nil {
		return err
	}
	v.swapchainResources.PushFunc(func() { vk.DestroyPipeline(dev, v.pipeline, nil) })

	return nil
}

func (v *VulkanRenderer) recreateSwapchain() error {
	v.Wait()
	v.swapchainResources.Release()

	if err := v.createSwapchainResources(); err != nil {
		return errors.Wrap(err, "recreating swapchain")
	}
	v.resized = false

	v.log.WithField("extent", v.swapchain.Extent()).Debug("swapchain recreated")
	return nil
}

// Resize implements interface
func (v *VulkanRenderer) Resize(width, height uint32) {
	v.configuration.ScreenWidth = width
	v.configuration.ScreenHeight = height
	v.resized = true
}

func (v *VulkanRenderer) minimised() bool {
	return v.configuration.ScreenWidth == 0 || v.configuration.ScreenHeight == 0
}

// UploadMesh implements interface
func (v *VulkanRenderer) UploadMesh(m model.Mesh) (gfx.Mesh, error) {
	if len(m.Indices) == 0 || len(m.Vertices) == 0 {
		return nil, errors.New("mesh has no geometry")
	}

	vertexSize := len(m.Vertices) * int(unsafe.Sizeof(model.Vertex{}))
	vertices, err := v.uploadBuffer(bytesAt(unsafe.Pointer(&m.Vertices[0]), vertexSize), vk.BufferUsageVertexBufferBit)
	if err != nil {
		return nil, errors.Wrap(err, "uploading vertices")
	}

	indexSize := len(m.Indices) * int(unsafe.Sizeof(uint32(0)))
	indices, err := v.uploadBuffer(bytesAt(unsafe.Pointer(&m.Indices[0]), indexSize), vk.BufferUsageIndexBufferBit)
	if err != nil {
		vertices.Release()
		return nil, errors.Wrap(err, "uploading indices")
	}

	mesh := &vulkanMesh{
		owner:    v,
		vertices: vertices,
		indices:  indices,
		count:    uint32(len(m.Indices)),
	}
	v.resources.Push(mesh)
	return mesh, nil
}

// uploadBuffer copies data into a device local buffer through
// a host visible staging buffer
func (v *VulkanRenderer) uploadBuffer(data []byte, usage vk.BufferUsageFlagBits) (Buffer, error) {
	dev := v.device.Inner()

	staging, err := NewBuffer(dev, v.allocator, len(data), vk.BufferUsageTransferSrcBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return Buffer{}, err
	}
	defer staging.Release()

	if err := staging.Mem().Write(data); err != nil {
		return Buffer{}, err
	}

	buffer, err := NewBuffer(dev, v.allocator, len(data), usage|vk.BufferUsageTransferDstBit, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return Buffer{}, err
	}

	if err := v.commands.CopyBuffer(staging.Get(), buffer.Get(), vk.DeviceSize(len(data))); err != nil {
		buffer.Release()
		return Buffer{}, err
	}
	return buffer, nil
}

// Draw implements interface
func (v *VulkanRenderer) Draw(camera model.Camera, items []gfx.DrawItem) error {
	meshes := make([]*vulkanMesh, len(items))
	for i, item := range items {
		mesh, ok := item.Mesh.(*vulkanMesh)
		if !ok || mesh.owner != v {
			return ErrForeignMesh
		}
		meshes[i] = mesh
	}

	if v.resized {
		if v.minimised() {
			return nil
		}
		if err := v.recreateSwapchain(); err != nil {
			return err
		}
	}

	frame := v.frames[v.frame]
	if err := frame.wait(); err != nil {
		return err
	}

	result := vk.AcquireNextImage(v.device.Inner(), v.swapchain.Inner(), math.MaxUint64, frame.imageAvailable, nil, &v.imageIndex)
	switch result {
	case vk.Success, vk.Suboptimal:
	case vk.ErrorOutOfDate:
		return v.recreateSwapchain()
	default:
		return errors.Wrap(vk.Error(result), "vk.AcquireNextImage()")
	}

	if err := frame.reset(); err != nil {
		return err
	}

	if err := v.uniforms[v.frame].Mem().Write(bytesAt(unsafe.Pointer(&camera), int(unsafe.Sizeof(camera)))); err != nil {
		return err
	}

	cmd := v.commandBuffers[v.frame]
	if err := v.record(cmd, items, meshes); err != nil {
		return err
	}

	submit := []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{frame.imageAvailable},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cmd},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{frame.renderFinished},
	}}
	if err := vk.Error(vk.QueueSubmit(v.device.GraphicsQueue(), 1, submit, frame.inFlight)); err != nil {
		return errors.Wrap(err, "vk.QueueSubmit()")
	}

	v.drawn = true
	return nil
}

func (v *VulkanRenderer) record(cmd vk.CommandBuffer, items []gfx.DrawItem, meshes []*vulkanMesh) error {
	if err := vk.Error(vk.ResetCommandBuffer(cmd, 0)); err != nil {
		return errors.Wrap(err, "vk.ResetCommandBuffer()")
	}

	cbbi := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if err := vk.Error(vk.BeginCommandBuffer(cmd, &cbbi)); err != nil {
		return errors.Wrapf(err, "vk.BeginCommandBuffer()[%d]", v.frame)
	}

	extent := v.swapchain.Extent()
	clearValues := make([]vk.ClearValue, 2)
	clearValues[0].SetColor([]float32{0.02, 0.03, 0.05, 1})
	clearValues[1].SetDepthStencil(1, 0)

	rpbi := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  v.renderPass,
		Framebuffer: v.framebuffers[v.imageIndex],
		RenderArea: vk.Rect2D{
			Extent: vk.Extent2D{Width: extent.Width, Height: extent.Height},
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}

	viewport := vk.Viewport{
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
	scissor := vk.Rect2D{
		Extent: vk.Extent2D{Width: extent.Width, Height: extent.Height},
	}

	vk.CmdBeginRenderPass(cmd, &rpbi, vk.SubpassContentsInline)
	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, v.pipeline)
	vk.CmdSetViewport(cmd, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(cmd, 0, 1, []vk.Rect2D{scissor})
	vk.CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, v.pipelineLayout, 0, 1,
		[]vk.DescriptorSet{v.descriptorSets[v.frame]}, 0, nil)

	for i, item := range items {
		mesh := meshes[i]
		pc := pushConstant{
			Model:  item.Model,
			Colour: item.Colour,
		}
		vk.CmdPushConstants(cmd, v.pipelineLayout, vk.ShaderStageFlags(vk.ShaderStageVertexBit), 0,
			uint32(unsafe.Sizeof(pc)), unsafe.Pointer(&pc))
		vk.CmdBindVertexBuffers(cmd, 0, 1, []vk.Buffer{mesh.vertices.Get()}, []vk.DeviceSize{0})
		vk.CmdBindIndexBuffer(cmd, mesh.indices.Get(), 0, vk.IndexTypeUint32)
		vk.CmdDrawIndexed(cmd, mesh.count, 1, 0, 0, 0)
	}

	vk.CmdEndRenderPass(cmd)

	if err := vk.Error(vk.EndCommandBuffer(cmd)); err != nil {
		return errors.Wrapf(err, "vk.EndCommandBuffer()[%d]", v.frame)
	}
	return nil
}

// Present implements interface
func (v *VulkanRenderer) Present() error {
	if !v.drawn {
		return nil
	}
	v.drawn = false

	frame := v.frames[v.frame]
	v.frame = (v.frame + 1) % MaxFramesInFlight

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{frame.renderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{v.swapchain.Inner()},
		PImageIndices:      []uint32{v.imageIndex},
	}

	result := vk.QueuePresent(v.device.PresentQueue(), &presentInfo)
	switch {
	case result == vk.ErrorOutOfDate, result == vk.Suboptimal:
		return v.recreateSwapchain()
	case result != vk.Success:
		return errors.Wrap(vk.Error(result), "vk.QueuePresent()")
	}
	return nil
}

// Wait implements interface
func (v *VulkanRenderer) Wait() {
	if err := v.device.WaitIdle(); err != nil {
		v.log.WithError(err).Warn("waiting for device")
	}
}

// Destroy implements interface
func (v *VulkanRenderer) Destroy() {
	v.Wait()
	v.swapchainResources.Release()
	if v.swapchain != nil {
		v.swapchain.Release()
		v.swapchain = nil
	}
	v.resources.Release()
}

// vulkanMesh is device local geometry drawn with
// an index buffer. Release may be called more than once.
type vulkanMesh struct {
	owner    *VulkanRenderer
	vertices Buffer
	indices  Buffer
	count    uint32

	once sync.Once
}

func (m *vulkanMesh) IndexCount() uint32 {
	return m.count
}

func (m *vulkanMesh) Release() {
	m.once.Do(func() {
		m.vertices.Release()
		m.indices.Release()
	})
}
