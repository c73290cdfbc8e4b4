package vulkan

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/core"
	vk "github.com/goki/vulkan"
)

func TestResultError(t *testing.T) {
	cases := []struct {
		result vk.Result
		want   error
	}{
		{vk.ErrorOutOfDate, core.ErrSwapchainOutOfDate},
		{vk.Suboptimal, core.ErrSwapchainOutOfDate},
		{vk.ErrorDeviceLost, core.ErrDeviceLost},
		{vk.ErrorOutOfHostMemory, core.ErrOutOfMemory},
		{vk.ErrorOutOfDeviceMemory, core.ErrOutOfMemory},
		{vk.ErrorOutOfPoolMemory, core.ErrOutOfMemory},
	}
	for _, c := range cases {
		err := ResultError(c.result, "vkTest")
		if !errors.Is(err, c.want) {
			t.Errorf("ResultError(%s) = %v, want %v", VulkanResultString(c.result), err, c.want)
		}
	}

	if err := ResultError(vk.Success, "vkTest"); err != nil {
		t.Errorf("success mapped to %v", err)
	}
	if err := ResultError(vk.Timeout, "vkTest"); err != nil {
		t.Errorf("timeout mapped to %v", err)
	}

	err := ResultError(vk.ErrorInitializationFailed, "vkCreateDevice")
	if err == nil {
		t.Fatal("initialization failure mapped to nil")
	}
	if core.IsFatal(err) || errors.Is(err, core.ErrSwapchainOutOfDate) {
		t.Errorf("generic failure matched a sentinel: %v", err)
	}
}

func TestResultErrorFatal(t *testing.T) {
	if !core.IsFatal(ResultError(vk.ErrorDeviceLost, "vkQueueSubmit")) {
		t.Error("device lost is not fatal")
	}
	if core.IsFatal(ResultError(vk.ErrorOutOfDate, "vkQueuePresentKHR")) {
		t.Error("out of date is fatal")
	}
}

func TestVulkanResultString(t *testing.T) {
	if got := VulkanResultString(vk.ErrorDeviceLost); got != "VK_ERROR_DEVICE_LOST" {
		t.Errorf("got %q", got)
	}
	if got := VulkanResultString(vk.Result(-12345)); got != "VkResult(-12345)" {
		t.Errorf("got %q", got)
	}
}

func TestVulkanSafeString(t *testing.T) {
	cases := map[string]string{
		"":         "\x00",
		"main":     "main\x00",
		"main\x00": "main\x00",
	}
	for in, want := range cases {
		if got := VulkanSafeString(in); got != want {
			t.Errorf("VulkanSafeString(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestVulkanString(t *testing.T) {
	var name [16]byte
	copy(name[:], "VK_LAYER_X")
	if got := vulkanString(name[:]); got != "VK_LAYER_X" {
		t.Errorf("got %q", got)
	}
	if got := vulkanString([]byte("full")); got != "full" {
		t.Errorf("unterminated: got %q", got)
	}
}
