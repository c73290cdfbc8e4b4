package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/core"
	vk "github.com/goki/vulkan"
)

type VulkanContext struct {
	// The framebuffer's current width.
	FramebufferWidth uint32
	// The framebuffer's current height.
	FramebufferHeight uint32

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugCallback vk.DebugReportCallback

	Device *VulkanDevice

	Swapchain      *VulkanSwapchain
	MainRenderpass *VulkanRenderpass

	// Also check results of flushes and waits, not only of creation calls.
	CheckResults bool

	queueLocks *QueueLocks
}

// FindMemoryIndex returns the memory type index for a resource whose
// requirements allow typeFilter and which needs every flag in propertyFlags.
func (vc *VulkanContext) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) (uint32, error) {
	index := FindMemoryType(vc.Device.MemoryTypes, typeFilter, propertyFlags)
	if index < 0 {
		core.LogWarn("Unable to find suitable memory type!")
		return 0, errors.Wrapf(core.ErrOutOfMemory, "no suitable memory type for flags 0x%x", uint32(propertyFlags))
	}
	return uint32(index), nil
}

// check reports a failed auxiliary call. Errors are returned only when the
// context checks results; the fatal classes are always returned.
func (vc *VulkanContext) check(result vk.Result, op string) error {
	err := ResultError(result, op)
	if err == nil {
		return nil
	}
	if vc.CheckResults || core.IsFatal(err) {
		return err
	}
	core.LogWarn("%s", err)
	return nil
}

// submit hands cmds to a queue under the family's queue lock.
func (vc *VulkanContext) submit(queue vk.Queue, family uint32, infos []vk.SubmitInfo, fence vk.Fence) error {
	return vc.queueLocks.SafeQueueCall(family, func() error {
		return ResultError(vk.QueueSubmit(queue, uint32(len(infos)), infos, fence), "vkQueueSubmit")
	})
}
