package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/core"
	vk "github.com/goki/vulkan"
)

type VulkanImage struct {
	Handle vk.Image
	Memory vk.DeviceMemory
	View   vk.ImageView
	Width  uint32
	Height uint32
	Format vk.Format
	Layout vk.ImageLayout
}

// ImageCreate creates a 2D image with its memory and, when createView is set,
// a view over the given aspect.
func ImageCreate(
	context *VulkanContext,
	width, height uint32,
	format vk.Format,
	tiling vk.ImageTiling,
	usage vk.ImageUsageFlags,
	memoryFlags vk.MemoryPropertyFlags,
	createView bool,
	viewAspectFlags vk.ImageAspectFlags,
) (*VulkanImage, error) {
	device := context.Device.LogicalDevice
	out := &VulkanImage{
		Width:  width,
		Height: height,
		Format: format,
		Layout: vk.ImageLayoutUndefined,
	}

	imageCreateInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        format,
		Tiling:        tiling,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         usage,
		Samples:       vk.SampleCount1Bit,
		SharingMode:   vk.SharingModeExclusive,
	}
	if err := ResultError(vk.CreateImage(device, &imageCreateInfo, context.Allocator, &out.Handle), "vkCreateImage"); err != nil {
		return nil, err
	}

	var memoryRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(device, out.Handle, &memoryRequirements)
	memoryRequirements.Deref()

	memoryType, err := context.FindMemoryIndex(memoryRequirements.MemoryTypeBits, memoryFlags)
	if err != nil {
		out.Destroy(context)
		return nil, errors.Wrap(err, "required memory type not found, image not valid")
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memoryRequirements.Size,
		MemoryTypeIndex: memoryType,
	}
	if err := ResultError(vk.AllocateMemory(device, &allocateInfo, context.Allocator, &out.Memory), "vkAllocateMemory"); err != nil {
		out.Destroy(context)
		return nil, err
	}
	if err := ResultError(vk.BindImageMemory(device, out.Handle, out.Memory, 0), "vkBindImageMemory"); err != nil {
		out.Destroy(context)
		return nil, err
	}

	if createView {
		view, err := ImageViewCreate(context, out.Handle, format, viewAspectFlags)
		if err != nil {
			out.Destroy(context)
			return nil, err
		}
		out.View = view
	}
	return out, nil
}

func ImageViewCreate(context *VulkanContext, image vk.Image, format vk.Format, aspectFlags vk.ImageAspectFlags) (vk.ImageView, error) {
	viewCreateInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspectFlags,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	var view vk.ImageView
	err := ResultError(vk.CreateImageView(context.Device.LogicalDevice, &viewCreateInfo, context.Allocator, &view), "vkCreateImageView")
	return view, err
}

// TransitionLayout records a layout transition barrier for the whole image.
func (img *VulkanImage) TransitionLayout(cmd vk.CommandBuffer, aspect vk.ImageAspectFlags, newLayout vk.ImageLayout) error {
	srcAccess, dstAccess, srcStage, dstStage, ok := LayoutTransition(img.Layout, newLayout)
	if !ok {
		return errors.Newf("unsupported layout transition %d -> %d", img.Layout, newLayout)
	}
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           img.Layout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img.Handle,
		SrcAccessMask:       srcAccess,
		DstAccessMask:       dstAccess,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspect,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	vk.CmdPipelineBarrier(cmd, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
	img.Layout = newLayout
	return nil
}

func (img *VulkanImage) Destroy(context *VulkanContext) {
	device := context.Device.LogicalDevice
	if img.View != vk.NullImageView {
		vk.DestroyImageView(device, img.View, context.Allocator)
		img.View = vk.NullImageView
	}
	if img.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(device, img.Memory, context.Allocator)
		img.Memory = vk.NullDeviceMemory
	}
	if img.Handle != vk.NullImage {
		vk.DestroyImage(device, img.Handle, context.Allocator)
		img.Handle = vk.NullImage
	}
}

// VulkanTexture is a sampled image with its sampler.
type VulkanTexture struct {
	Image   *VulkanImage
	Sampler vk.Sampler
}

// TextureCreate uploads RGBA8 pixels through the stager and creates a linear,
// repeating sampler for them.
func TextureCreate(context *VulkanContext, stager *Stager, width, height uint32, pixels []byte) (*VulkanTexture, error) {
	if uint64(len(pixels)) != uint64(width)*uint64(height)*4 {
		return nil, errors.Newf("texture of %dx%d needs %d bytes, got %d", width, height, width*height*4, len(pixels))
	}
	image, err := ImageCreate(
		context,
		width, height,
		vk.FormatR8g8b8a8Unorm,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit)|vk.ImageUsageFlags(vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return nil, err
	}
	if err := stager.CopyToImage(context, image, pixels); err != nil {
		image.Destroy(context)
		return nil, err
	}

	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
	}
	if context.Device.SamplerAnisotropy {
		samplerInfo.AnisotropyEnable = vk.True
		samplerInfo.MaxAnisotropy = context.Device.Limits.MaxSamplerAnisotropy
	}

	texture := &VulkanTexture{Image: image}
	if err := ResultError(vk.CreateSampler(context.Device.LogicalDevice, &samplerInfo, context.Allocator, &texture.Sampler), "vkCreateSampler"); err != nil {
		image.Destroy(context)
		return nil, err
	}
	core.LogDebug("Texture %dx%d created.", width, height)
	return texture, nil
}

func (t *VulkanTexture) Destroy(context *VulkanContext) {
	if t.Sampler != vk.NullSampler {
		vk.DestroySampler(context.Device.LogicalDevice, t.Sampler, context.Allocator)
		t.Sampler = vk.NullSampler
	}
	if t.Image != nil {
		t.Image.Destroy(context)
		t.Image = nil
	}
}
