package vulkan

import (
	"math"

	"github.com/droune2001/vulkan-sub000/engine/core"
	vk "github.com/goki/vulkan"
)

// AcquireImage returns the index of the next swapchain image. presentComplete
// is signaled once the image can be rendered to. The fence is reset before the
// acquire and waited on after it.
func (vs *VulkanSwapchain) AcquireImage(context *VulkanContext, presentComplete vk.Semaphore, fence *VulkanFence) (uint32, error) {
	if err := fence.Reset(context); err != nil {
		return 0, err
	}

	var index uint32
	result := vk.AcquireNextImage(context.Device.LogicalDevice, vs.Handle, math.MaxUint64, presentComplete, fence.Handle, &index)
	switch result {
	case vk.Success, vk.Suboptimal:
		// Suboptimal still delivered an image; present reports it.
	case vk.ErrorOutOfDate:
		return 0, core.ErrSwapchainOutOfDate
	default:
		return 0, ResultError(result, "vkAcquireNextImageKHR")
	}

	fence.MarkPending()
	if err := fence.Wait(context, math.MaxUint64); err != nil {
		return 0, err
	}
	return index, nil
}

// Present queues image index for presentation once renderComplete signals.
// Out-of-date and suboptimal results come back as core.ErrSwapchainOutOfDate.
func (vs *VulkanSwapchain) Present(context *VulkanContext, renderComplete vk.Semaphore, index uint32) error {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderComplete},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{vs.Handle},
		PImageIndices:      []uint32{index},
	}

	device := context.Device
	return context.queueLocks.SafeQueueCall(device.QueueFamilies.Present, func() error {
		vs.LastPresentResult = vk.QueuePresent(device.PresentQueue, &presentInfo)
		return ResultError(vs.LastPresentResult, "vkQueuePresentKHR")
	})
}
