package vulkan

import (
	"github.com/droune2001/vulkan-sub000/engine/core"
	vk "github.com/goki/vulkan"
)

type VulkanSwapchain struct {
	ImageFormat vk.SurfaceFormat
	PresentMode vk.PresentMode
	Extent      vk.Extent2D
	Handle      vk.Swapchain
	ImageCount  uint32
	Images      []vk.Image
	Views       []vk.ImageView

	DepthAttachment *VulkanImage

	// framebuffers used for on-screen rendering.
	Framebuffers []*VulkanFramebuffer

	LastPresentResult vk.Result
}

// SwapchainCreate builds a swapchain for the surface at the requested size.
// old may be nil; when given, it is passed as oldSwapchain and then destroyed,
// also when creation fails.
func SwapchainCreate(context *VulkanContext, width, height uint32, old *VulkanSwapchain) (*VulkanSwapchain, error) {
	device := context.Device
	support, err := DeviceQuerySwapchainSupport(device.PhysicalDevice, context.Surface)
	if err != nil {
		if old != nil {
			old.Destroy(context)
		}
		return nil, err
	}
	device.SwapchainSupport = support
	caps := support.Capabilities

	swapchain := &VulkanSwapchain{
		ImageFormat: ChooseSurfaceFormat(support.Formats),
		PresentMode: ChoosePresentMode(support.PresentModes),
		Extent:      ChooseExtent(caps, width, height),
	}
	imageCount := ChooseImageCount(caps)

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchain.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      swapchain.PresentMode,
		Clipped:          vk.True,
	}
	if old != nil {
		swapchainCreateInfo.OldSwapchain = old.Handle
	}

	// Setup the queue family indices
	families := device.QueueFamilies
	if families.Graphics != families.Present {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = []uint32{families.Graphics, families.Present}
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var handle vk.Swapchain
	res := vk.CreateSwapchain(device.LogicalDevice, &swapchainCreateInfo, context.Allocator, &handle)
	// The old swapchain is retired either way.
	if old != nil {
		old.Destroy(context)
	}
	if err := ResultError(res, "vkCreateSwapchainKHR"); err != nil {
		return nil, err
	}
	swapchain.Handle = handle

	// Images
	if err := ResultError(vk.GetSwapchainImages(device.LogicalDevice, handle, &swapchain.ImageCount, nil), "vkGetSwapchainImagesKHR"); err != nil {
		swapchain.Destroy(context)
		return nil, err
	}
	swapchain.Images = make([]vk.Image, swapchain.ImageCount)
	if err := ResultError(vk.GetSwapchainImages(device.LogicalDevice, handle, &swapchain.ImageCount, swapchain.Images), "vkGetSwapchainImagesKHR"); err != nil {
		swapchain.Destroy(context)
		return nil, err
	}

	// Views
	swapchain.Views = make([]vk.ImageView, swapchain.ImageCount)
	for i := range swapchain.Images {
		view, err := ImageViewCreate(context, swapchain.Images[i], swapchain.ImageFormat.Format, vk.ImageAspectFlags(vk.ImageAspectColorBit))
		if err != nil {
			swapchain.Destroy(context)
			return nil, err
		}
		swapchain.Views[i] = view
	}

	// Depth resources
	if !DeviceDetectDepthFormat(device) {
		swapchain.Destroy(context)
		return nil, core.ErrInitialization
	}
	depthAttachment, err := ImageCreate(
		context,
		swapchain.Extent.Width,
		swapchain.Extent.Height,
		device.DepthFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		DepthAspect(device.DepthFormat))
	if err != nil {
		swapchain.Destroy(context)
		return nil, err
	}
	swapchain.DepthAttachment = depthAttachment

	core.LogInfo("Swapchain created: %dx%d, %d images.", swapchain.Extent.Width, swapchain.Extent.Height, swapchain.ImageCount)
	return swapchain, nil
}

// Destroy releases the framebuffers, views, depth image and the swapchain.
// Swapchain images belong to the swapchain and go with it.
func (vs *VulkanSwapchain) Destroy(context *VulkanContext) {
	device := context.Device.LogicalDevice
	vs.destroyFramebuffers(context)
	if vs.DepthAttachment != nil {
		vs.DepthAttachment.Destroy(context)
		vs.DepthAttachment = nil
	}
	for i := range vs.Views {
		if vs.Views[i] != vk.NullImageView {
			vk.DestroyImageView(device, vs.Views[i], context.Allocator)
		}
	}
	vs.Views = nil
	vs.Images = nil
	if vs.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(device, vs.Handle, context.Allocator)
		vs.Handle = vk.NullSwapchain
	}
}

// RegenerateFramebuffers creates framebuffer i over {depth view, view i}.
func (vs *VulkanSwapchain) RegenerateFramebuffers(context *VulkanContext, renderpass *VulkanRenderpass) error {
	vs.destroyFramebuffers(context)
	vs.Framebuffers = make([]*VulkanFramebuffer, vs.ImageCount)
	for i := range vs.Views {
		attachments := []vk.ImageView{
			vs.DepthAttachment.View,
			vs.Views[i],
		}
		fb, err := FramebufferCreate(context, renderpass, vs.Extent.Width, vs.Extent.Height, attachments)
		if err != nil {
			return err
		}
		vs.Framebuffers[i] = fb
	}
	return nil
}

func (vs *VulkanSwapchain) destroyFramebuffers(context *VulkanContext) {
	for _, fb := range vs.Framebuffers {
		if fb != nil {
			fb.Destroy(context)
		}
	}
	vs.Framebuffers = nil
}
