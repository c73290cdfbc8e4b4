package vulkan

import (
	"math"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/config"
	"github.com/droune2001/vulkan-sub000/engine/core"
	"github.com/droune2001/vulkan-sub000/engine/scene"
	vk "github.com/goki/vulkan"
)

// SurfaceProvider is the window side the renderer needs: the loader entry
// point, the instance extensions and the surface itself.
type SurfaceProvider interface {
	VulkanProcAddr() unsafe.Pointer
	RequiredInstanceExtensions() []string
	CreateSurface(instance interface{}) (uintptr, error)
	FramebufferSize() (uint32, uint32)
}

// ShaderLibrary hands out SPIR-V words by shader file name.
type ShaderLibrary interface {
	Shader(name string) []uint32
}

type VulkanRenderer struct {
	provider SurfaceProvider
	shaders  ShaderLibrary
	config   config.Renderer

	FrameNumber uint64
	context     *VulkanContext

	stager      *Stager
	descriptors *VulkanDescriptors
	pipelines   *VulkanPipelines
	resources   *SceneResources

	graphicsCommands *VulkanCommandBuffer
	computeCommands  *VulkanCommandBuffer

	presentComplete vk.Semaphore
	computeDone     vk.Semaphore
	renderComplete  vk.Semaphore
	acquireFence    *VulkanFence
	renderFence     *VulkanFence

	// Bumped on every resize event; the swapchain is rebuilt when the two
	// generations differ.
	framebufferSizeGeneration     uint64
	framebufferSizeLastGeneration uint64
	// Set when acquire or present reported an out-of-date swapchain.
	swapchainStale bool
}

func New(provider SurfaceProvider, shaders ShaderLibrary, cfg config.Renderer) *VulkanRenderer {
	return &VulkanRenderer{
		provider: provider,
		shaders:  shaders,
		config:   cfg,
		context: &VulkanContext{
			Allocator:    nil,
			CheckResults: cfg.CheckResults,
		},
	}
}

func (vr *VulkanRenderer) clearColor() [4]float32 {
	var c [4]float32
	copy(c[:], vr.config.ClearColor)
	return c
}

// Initialize brings the device, the presentation chain, the pipelines and
// the scene's GPU resources up, in that order.
func (vr *VulkanRenderer) Initialize(appName string, sc *scene.Scene) error {
	context := vr.context

	if err := InstanceCreate(context, vr.provider, appName, vr.config.Validation); err != nil {
		return err
	}

	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.provider.CreateSurface(context.Instance)
	if err != nil {
		return errors.Wrap(err, "failed to create platform surface")
	}
	context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	if err := DeviceCreate(context); err != nil {
		return err
	}

	width, height := vr.provider.FramebufferSize()
	swapchain, err := SwapchainCreate(context, width, height, nil)
	if err != nil {
		return err
	}
	context.Swapchain = swapchain
	context.FramebufferWidth = swapchain.Extent.Width
	context.FramebufferHeight = swapchain.Extent.Height

	rp, err := RenderpassCreate(context, swapchain.ImageFormat.Format, context.Device.DepthFormat, vr.clearColor(), 1.0, 0)
	if err != nil {
		return err
	}
	context.MainRenderpass = rp

	if err := swapchain.RegenerateFramebuffers(context, rp); err != nil {
		return err
	}

	if err := vr.createCommandBuffers(); err != nil {
		return err
	}
	if err := vr.createSyncObjects(); err != nil {
		return err
	}

	if vr.stager, err = NewStager(context, vr.config.StagingSize); err != nil {
		return err
	}
	if vr.descriptors, err = DescriptorsCreate(context, vr.config.MaxMaterials, vr.config.MaxInstanceSets); err != nil {
		return err
	}
	if vr.pipelines, err = PipelinesCreate(context, vr.descriptors, rp, vr.shaders); err != nil {
		return err
	}
	if vr.resources, err = NewSceneResources(context, sc, vr.descriptors, vr.stager, vr.config.WorkgroupSize); err != nil {
		return err
	}

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) createCommandBuffers() error {
	device := vr.context.Device
	var err error
	if vr.graphicsCommands, err = NewVulkanCommandBuffer(vr.context, device.GraphicsCommandPool, true); err != nil {
		return errors.Wrap(err, "graphics command buffer")
	}
	if vr.computeCommands, err = NewVulkanCommandBuffer(vr.context, device.ComputeCommandPool, true); err != nil {
		return errors.Wrap(err, "compute command buffer")
	}
	core.LogDebug("Vulkan command buffers created.")
	return nil
}

func (vr *VulkanRenderer) createSyncObjects() error {
	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	for _, s := range []*vk.Semaphore{&vr.presentComplete, &vr.computeDone, &vr.renderComplete} {
		if err := ResultError(vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, s), "vkCreateSemaphore"); err != nil {
			return err
		}
	}

	var err error
	if vr.acquireFence, err = NewFence(vr.context, false); err != nil {
		return err
	}
	if vr.renderFence, err = NewFence(vr.context, false); err != nil {
		return err
	}
	return nil
}

// Shutdown waits for the device and destroys everything in reverse order of
// dependency. It is safe after a partial Initialize.
func (vr *VulkanRenderer) Shutdown() error {
	context := vr.context
	if context.Device == nil || context.Device.LogicalDevice == nil {
		InstanceDestroy(context)
		return nil
	}
	if err := vr.WaitIdle(); err != nil {
		core.LogWarn("device wait idle before shutdown: %s", err)
	}

	if vr.pipelines != nil {
		vr.pipelines.Destroy(context)
		vr.pipelines = nil
	}
	if vr.descriptors != nil {
		vr.descriptors.Destroy(context)
		vr.descriptors = nil
	}
	if vr.resources != nil {
		vr.resources.Destroy(context)
		vr.resources = nil
	}

	if context.Swapchain != nil {
		context.Swapchain.Destroy(context)
		context.Swapchain = nil
	}
	if context.MainRenderpass != nil {
		context.MainRenderpass.Destroy(context)
		context.MainRenderpass = nil
	}

	if vr.stager != nil {
		vr.stager.Destroy(context)
		vr.stager = nil
	}
	for _, f := range []*VulkanFence{vr.renderFence, vr.acquireFence} {
		if f != nil {
			f.Destroy(context)
		}
	}
	vr.renderFence, vr.acquireFence = nil, nil
	for _, s := range []*vk.Semaphore{&vr.renderComplete, &vr.computeDone, &vr.presentComplete} {
		if *s != vk.NullSemaphore {
			vk.DestroySemaphore(context.Device.LogicalDevice, *s, context.Allocator)
			*s = vk.NullSemaphore
		}
	}
	for _, cb := range []*VulkanCommandBuffer{vr.computeCommands, vr.graphicsCommands} {
		if cb != nil {
			cb.Free(context)
		}
	}
	vr.computeCommands, vr.graphicsCommands = nil, nil

	core.LogDebug("Destroying Vulkan device...")
	DeviceDestroy(context)

	core.LogDebug("Destroying Vulkan surface...")
	if context.Surface != vk.NullSurface {
		vk.DestroySurface(context.Instance, context.Surface, context.Allocator)
		context.Surface = vk.NullSurface
	}

	InstanceDestroy(context)
	return nil
}

func (vr *VulkanRenderer) Resized(width, height uint32) {
	// Update the "framebuffer size generation", a counter which indicates when the
	// framebuffer size has been updated.
	vr.framebufferSizeGeneration++
	core.LogInfo("Vulkan renderer backend->resized: w/h/gen: %d/%d/%d", width, height, vr.framebufferSizeGeneration)
}

func (vr *VulkanRenderer) NeedsRebuild() bool {
	return vr.swapchainStale || vr.framebufferSizeGeneration != vr.framebufferSizeLastGeneration
}

// Rebuild recreates the swapchain for the current framebuffer size. The
// render pass and the pipelines are recreated only when a format changed.
// A zero-sized framebuffer defers the rebuild; NeedsRebuild stays true.
func (vr *VulkanRenderer) Rebuild() error {
	context := vr.context
	width, height := vr.provider.FramebufferSize()
	if width == 0 || height == 0 {
		core.LogDebug("Rebuild called when window is < 1 in a dimension. Booting.")
		return nil
	}

	if err := vr.WaitIdle(); err != nil {
		return err
	}

	swapchain, err := SwapchainCreate(context, width, height, context.Swapchain)
	context.Swapchain = swapchain
	if err != nil {
		vr.swapchainStale = true
		return errors.Wrap(err, "failed to recreate the swapchain")
	}

	if !context.MainRenderpass.Matches(swapchain.ImageFormat.Format, context.Device.DepthFormat) {
		core.LogInfo("Surface formats changed, recreating render pass and pipelines.")
		rp, err := RenderpassCreate(context, swapchain.ImageFormat.Format, context.Device.DepthFormat, vr.clearColor(), 1.0, 0)
		if err != nil {
			return err
		}
		if err := vr.pipelines.Rebuild(context, rp, vr.shaders); err != nil {
			rp.Destroy(context)
			return err
		}
		context.MainRenderpass.Destroy(context)
		context.MainRenderpass = rp
	}

	if err := swapchain.RegenerateFramebuffers(context, context.MainRenderpass); err != nil {
		return err
	}

	// Sync the framebuffer size with the swapchain.
	context.FramebufferWidth = swapchain.Extent.Width
	context.FramebufferHeight = swapchain.Extent.Height
	vr.framebufferSizeLastGeneration = vr.framebufferSizeGeneration
	vr.swapchainStale = false
	return nil
}

func (vr *VulkanRenderer) Extent() (uint32, uint32) {
	return vr.context.FramebufferWidth, vr.context.FramebufferHeight
}

// Upload writes this frame's uniforms and stages anything the scene queued.
// The previous frame has completed by the time it runs.
func (vr *VulkanRenderer) Upload(dt, elapsed float64) error {
	var aspect float32 = 1
	if vr.context.FramebufferHeight > 0 {
		aspect = float32(vr.context.FramebufferWidth) / float32(vr.context.FramebufferHeight)
	}
	return vr.resources.Upload(vr.context, aspect, dt, elapsed)
}

func (vr *VulkanRenderer) AcquireImage() (uint32, error) {
	index, err := vr.context.Swapchain.AcquireImage(vr.context, vr.presentComplete, vr.acquireFence)
	if errors.Is(err, core.ErrSwapchainOutOfDate) {
		vr.swapchainStale = true
	}
	return index, err
}

func (vr *VulkanRenderer) RecordCompute() error {
	cmd := vr.computeCommands
	if err := cmd.Reset(); err != nil {
		return err
	}
	if err := cmd.Begin(true, false, false); err != nil {
		return err
	}
	vr.resources.RecordCompute(cmd, vr.pipelines)
	return cmd.End()
}

func (vr *VulkanRenderer) RecordGraphics(imageIndex uint32) error {
	context := vr.context
	cmd := vr.graphicsCommands
	if err := cmd.Reset(); err != nil {
		return err
	}
	if err := cmd.Begin(true, false, false); err != nil {
		return err
	}

	recordHostWriteBarrier(cmd.Handle)
	vr.resources.RecordGraphicsAcquire(cmd)

	extent := context.Swapchain.Extent
	viewport := vk.Viewport{
		X:        0.0,
		Y:        0.0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: extent,
	}
	vk.CmdSetViewport(cmd.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(cmd.Handle, 0, 1, []vk.Rect2D{scissor})

	context.MainRenderpass.Begin(cmd, context.Swapchain.Framebuffers[imageIndex].Handle, extent)
	vr.resources.RecordDraws(cmd, vr.pipelines)
	context.MainRenderpass.End(cmd)

	vr.resources.RecordGraphicsRelease(cmd)
	return cmd.End()
}

// SubmitCompute signals computeDone; the graphics submission waits on it.
func (vr *VulkanRenderer) SubmitCompute() error {
	device := vr.context.Device
	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{vr.computeCommands.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{vr.computeDone},
	}
	if err := vr.context.submit(device.ComputeQueue, device.QueueFamilies.Compute, []vk.SubmitInfo{submitInfo}, vk.NullFence); err != nil {
		return err
	}
	vr.computeCommands.UpdateSubmitted()
	return nil
}

func (vr *VulkanRenderer) SubmitGraphics() error {
	device := vr.context.Device
	if err := vr.renderFence.Reset(vr.context); err != nil {
		return err
	}

	// Color writes wait for the image, vertex input waits for the
	// simulation that wrote the instance buffers.
	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 2,
		PWaitSemaphores:    []vk.Semaphore{vr.presentComplete, vr.computeDone},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
			vk.PipelineStageFlags(vk.PipelineStageVertexInputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{vr.graphicsCommands.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{vr.renderComplete},
	}
	if err := vr.context.submit(device.GraphicsQueue, device.QueueFamilies.Graphics, []vk.SubmitInfo{submitInfo}, vr.renderFence.Handle); err != nil {
		return err
	}
	vr.renderFence.MarkPending()
	vr.graphicsCommands.UpdateSubmitted()
	return nil
}

func (vr *VulkanRenderer) WaitRender() error {
	return vr.renderFence.Wait(vr.context, math.MaxUint64)
}

func (vr *VulkanRenderer) Present(imageIndex uint32) error {
	err := vr.context.Swapchain.Present(vr.context, vr.renderComplete, imageIndex)
	vr.FrameNumber++
	if errors.Is(err, core.ErrSwapchainOutOfDate) {
		vr.swapchainStale = true
	}
	return err
}

func (vr *VulkanRenderer) WaitIdle() error {
	return ResultError(vk.DeviceWaitIdle(vr.context.Device.LogicalDevice), "vkDeviceWaitIdle")
}

// ReloadPipelines rebuilds the pipelines from the shader library's current
// bytecode. On failure the previous pipelines stay bound.
func (vr *VulkanRenderer) ReloadPipelines() error {
	if err := vr.WaitIdle(); err != nil {
		return err
	}
	if err := vr.pipelines.Rebuild(vr.context, vr.context.MainRenderpass, vr.shaders); err != nil {
		core.LogError("Pipeline reload failed, keeping the previous pipelines: %s", err)
		return nil
	}
	core.LogInfo("Pipelines reloaded.")
	return nil
}
