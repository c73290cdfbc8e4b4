package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/core"
	vk "github.com/goki/vulkan"
)

/**
 * @brief Represents a single shader stage.
 */
type VulkanShaderStage struct {
	/** @brief The internal shader module Handle. */
	Handle vk.ShaderModule
	/** @brief The pipeline shader stage creation info. */
	ShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
}

// NewShaderStage creates a module from SPIR-V words with entry point main.
func NewShaderStage(context *VulkanContext, name string, code []uint32, stage vk.ShaderStageFlagBits) (*VulkanShaderStage, error) {
	if len(code) == 0 {
		return nil, errors.Wrapf(core.ErrAssetNotFound, "shader %s has no bytecode", name)
	}
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: shaderCodeSize(code),
		PCode:    code,
	}

	out := &VulkanShaderStage{}
	if err := ResultError(vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &out.Handle), "vkCreateShaderModule"); err != nil {
		return nil, errors.Wrapf(err, "shader %s", name)
	}
	out.ShaderStageCreateInfo = vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stage,
		Module: out.Handle,
		PName:  VulkanSafeString("main"),
	}
	return out, nil
}

func (s *VulkanShaderStage) Destroy(context *VulkanContext) {
	if s.Handle != vk.NullShaderModule {
		vk.DestroyShaderModule(context.Device.LogicalDevice, s.Handle, context.Allocator)
		s.Handle = vk.NullShaderModule
	}
}

// shaderCodeSize is the SPIR-V byte length vkCreateShaderModule expects.
func shaderCodeSize(code []uint32) uint64 {
	return uint64(len(code) * 4)
}
