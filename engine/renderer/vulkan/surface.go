package vulkan

import (
	"math"

	emath "github.com/droune2001/vulkan-sub000/engine/math"
	vk "github.com/goki/vulkan"
)

// Fallback when the surface accepts any format.
var defaultSurfaceFormat = vk.SurfaceFormat{
	Format:     vk.FormatB8g8r8a8Unorm,
	ColorSpace: vk.ColorSpaceSrgbNonlinear,
}

// ChooseSurfaceFormat takes the first reported format, or BGRA8 unorm with
// nonlinear sRGB when the surface reports a single undefined entry.
func ChooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	if len(formats) == 0 || (len(formats) == 1 && formats[0].Format == vk.FormatUndefined) {
		return defaultSurfaceFormat
	}
	return formats[0]
}

// ChoosePresentMode prefers mailbox. FIFO is always available.
func ChoosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, mode := range modes {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}
	return vk.PresentModeFifo
}

// ChooseExtent returns the surface's fixed extent when it reports one, or the
// requested size clamped to the supported range.
func ChooseExtent(caps vk.SurfaceCapabilities, width, height uint32) vk.Extent2D {
	if caps.CurrentExtent.Width != math.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  emath.Clamp(width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: emath.Clamp(height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// ChooseImageCount asks for one image more than the minimum. A zero maximum
// means unbounded.
func ChooseImageCount(caps vk.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// DepthFormatCandidates in priority order.
var DepthFormatCandidates = []vk.Format{
	vk.FormatD32SfloatS8Uint,
	vk.FormatD24UnormS8Uint,
	vk.FormatD16UnormS8Uint,
	vk.FormatD32Sfloat,
	vk.FormatD16Unorm,
}

// SelectDepthFormat returns the first candidate whose optimal tiling
// features include depth/stencil attachment, and whether it has stencil.
func SelectDepthFormat(optimalFeatures func(vk.Format) vk.FormatFeatureFlags) (format vk.Format, hasStencil bool, ok bool) {
	want := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	for _, candidate := range DepthFormatCandidates {
		if optimalFeatures(candidate)&want == want {
			return candidate, FormatHasStencil(candidate), true
		}
	}
	return vk.FormatUndefined, false, false
}

func FormatHasStencil(format vk.Format) bool {
	switch format {
	case vk.FormatD32SfloatS8Uint, vk.FormatD24UnormS8Uint, vk.FormatD16UnormS8Uint, vk.FormatS8Uint:
		return true
	}
	return false
}

// DepthAspect is the image view aspect of a depth format; stencil is included
// only when the format carries it.
func DepthAspect(format vk.Format) vk.ImageAspectFlags {
	aspect := vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	if FormatHasStencil(format) {
		aspect |= vk.ImageAspectFlags(vk.ImageAspectStencilBit)
	}
	return aspect
}
