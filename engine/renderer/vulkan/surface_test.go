package vulkan

import (
	"math"
	"testing"

	vk "github.com/goki/vulkan"
)

func TestChooseSurfaceFormat(t *testing.T) {
	if got := ChooseSurfaceFormat(nil); got != defaultSurfaceFormat {
		t.Errorf("empty list: got %+v", got)
	}
	undefined := []vk.SurfaceFormat{{Format: vk.FormatUndefined}}
	if got := ChooseSurfaceFormat(undefined); got != defaultSurfaceFormat {
		t.Errorf("undefined: got %+v", got)
	}
	first := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	got := ChooseSurfaceFormat([]vk.SurfaceFormat{first, defaultSurfaceFormat})
	if got != first {
		t.Errorf("got %+v, want first reported %+v", got, first)
	}
}

func TestChoosePresentMode(t *testing.T) {
	if got := ChoosePresentMode([]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}); got != vk.PresentModeMailbox {
		t.Errorf("got %d, want mailbox", got)
	}
	if got := ChoosePresentMode([]vk.PresentMode{vk.PresentModeImmediate}); got != vk.PresentModeFifo {
		t.Errorf("got %d, want fifo", got)
	}
	if got := ChoosePresentMode(nil); got != vk.PresentModeFifo {
		t.Errorf("got %d, want fifo", got)
	}
}

func TestChooseExtent(t *testing.T) {
	fixed := vk.SurfaceCapabilities{CurrentExtent: vk.Extent2D{Width: 800, Height: 600}}
	if got := ChooseExtent(fixed, 1920, 1080); got.Width != 800 || got.Height != 600 {
		t.Errorf("fixed extent: got %dx%d", got.Width, got.Height)
	}

	free := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 64, Height: 64},
		MaxImageExtent: vk.Extent2D{Width: 1024, Height: 1024},
	}
	cases := []struct {
		w, h, wantW, wantH uint32
	}{
		{640, 480, 640, 480},
		{4096, 10, 1024, 64},
		{0, 0, 64, 64},
	}
	for _, c := range cases {
		got := ChooseExtent(free, c.w, c.h)
		if got.Width != c.wantW || got.Height != c.wantH {
			t.Errorf("ChooseExtent(%d, %d) = %dx%d, want %dx%d", c.w, c.h, got.Width, got.Height, c.wantW, c.wantH)
		}
	}
}

func TestChooseImageCount(t *testing.T) {
	cases := []struct {
		min, max, want uint32
	}{
		{2, 0, 3},
		{2, 8, 3},
		{3, 3, 3},
		{1, 2, 2},
	}
	for _, c := range cases {
		caps := vk.SurfaceCapabilities{MinImageCount: c.min, MaxImageCount: c.max}
		if got := ChooseImageCount(caps); got != c.want {
			t.Errorf("min %d max %d: got %d, want %d", c.min, c.max, got, c.want)
		}
	}
}

func TestSelectDepthFormat(t *testing.T) {
	attachment := vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit)
	only := func(supported ...vk.Format) func(vk.Format) vk.FormatFeatureFlags {
		return func(f vk.Format) vk.FormatFeatureFlags {
			for _, s := range supported {
				if s == f {
					return attachment
				}
			}
			return 0
		}
	}

	format, stencil, ok := SelectDepthFormat(only(vk.FormatD16Unorm, vk.FormatD24UnormS8Uint))
	if !ok || format != vk.FormatD24UnormS8Uint || !stencil {
		t.Errorf("got %d stencil=%v ok=%v, want D24S8", format, stencil, ok)
	}

	format, stencil, ok = SelectDepthFormat(only(vk.FormatD32Sfloat))
	if !ok || format != vk.FormatD32Sfloat || stencil {
		t.Errorf("got %d stencil=%v ok=%v, want D32 without stencil", format, stencil, ok)
	}

	if _, _, ok = SelectDepthFormat(only()); ok {
		t.Error("selected a format with no support")
	}
}

func TestDepthAspect(t *testing.T) {
	depth := vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	stencil := vk.ImageAspectFlags(vk.ImageAspectStencilBit)
	if got := DepthAspect(vk.FormatD32Sfloat); got != depth {
		t.Errorf("D32: got %d", got)
	}
	if got := DepthAspect(vk.FormatD32SfloatS8Uint); got != depth|stencil {
		t.Errorf("D32S8: got %d", got)
	}
}
