package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/core"
	vk "github.com/goki/vulkan"
)

// Descriptor set indices.
const (
	/** @brief Scene uniforms: camera, time and lights. */
	SetScene uint32 = iota
	/** @brief Material textures: base color and specular. */
	SetMaterial
	/** @brief Per-object dynamic uniforms: model matrix and material override. */
	SetObject
	/** @brief Compute: instance storage buffer and simulation parameters. */
	SetCompute

	setCount
)

var (
	stageVertexFragment = vk.ShaderStageFlags(vk.ShaderStageVertexBit) | vk.ShaderStageFlags(vk.ShaderStageFragmentBit)
	stageFragmentOnly   = vk.ShaderStageFlags(vk.ShaderStageFragmentBit)
	stageComputeOnly    = vk.ShaderStageFlags(vk.ShaderStageComputeBit)
)

// SetLayoutBindings returns the bindings of one descriptor set layout.
func SetLayoutBindings(set uint32) []vk.DescriptorSetLayoutBinding {
	binding := func(b uint32, t vk.DescriptorType, stages vk.ShaderStageFlags) vk.DescriptorSetLayoutBinding {
		return vk.DescriptorSetLayoutBinding{
			Binding:         b,
			DescriptorType:  t,
			DescriptorCount: 1,
			StageFlags:      stages,
		}
	}
	switch set {
	case SetScene:
		return []vk.DescriptorSetLayoutBinding{
			binding(0, vk.DescriptorTypeUniformBuffer, stageVertexFragment),
		}
	case SetMaterial:
		return []vk.DescriptorSetLayoutBinding{
			binding(0, vk.DescriptorTypeCombinedImageSampler, stageFragmentOnly),
			binding(1, vk.DescriptorTypeCombinedImageSampler, stageFragmentOnly),
		}
	case SetObject:
		return []vk.DescriptorSetLayoutBinding{
			binding(0, vk.DescriptorTypeUniformBufferDynamic, stageVertexFragment),
			binding(1, vk.DescriptorTypeUniformBufferDynamic, stageVertexFragment),
		}
	case SetCompute:
		return []vk.DescriptorSetLayoutBinding{
			binding(0, vk.DescriptorTypeStorageBuffer, stageComputeOnly),
			binding(1, vk.DescriptorTypeUniformBuffer, stageComputeOnly),
		}
	}
	return nil
}

// DescriptorPoolSizes sizes the pool for one scene set, one object set, a
// material set per material and a compute set per instance set.
func DescriptorPoolSizes(maxMaterials, maxInstanceSets uint32) ([]vk.DescriptorPoolSize, uint32) {
	sizes := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: 1 + maxInstanceSets},
		{Type: vk.DescriptorTypeUniformBufferDynamic, DescriptorCount: 2},
		{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: 2 * maxMaterials},
		{Type: vk.DescriptorTypeStorageBuffer, DescriptorCount: maxInstanceSets},
	}
	maxSets := 2 + maxMaterials + maxInstanceSets
	return sizes, maxSets
}

/**
 * @brief The set layouts and the pool every descriptor set comes from.
 */
type VulkanDescriptors struct {
	Pool    vk.DescriptorPool
	Layouts [setCount]vk.DescriptorSetLayout
}

func DescriptorsCreate(context *VulkanContext, maxMaterials, maxInstanceSets uint32) (*VulkanDescriptors, error) {
	device := context.Device.LogicalDevice
	out := &VulkanDescriptors{}

	for set := uint32(0); set < setCount; set++ {
		bindings := SetLayoutBindings(set)
		layoutInfo := vk.DescriptorSetLayoutCreateInfo{
			SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
			BindingCount: uint32(len(bindings)),
			PBindings:    bindings,
		}
		if err := ResultError(vk.CreateDescriptorSetLayout(device, &layoutInfo, context.Allocator, &out.Layouts[set]), "vkCreateDescriptorSetLayout"); err != nil {
			out.Destroy(context)
			return nil, errors.Wrapf(err, "set %d", set)
		}
	}

	sizes, maxSets := DescriptorPoolSizes(maxMaterials, maxInstanceSets)
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       maxSets,
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
	}
	if err := ResultError(vk.CreateDescriptorPool(device, &poolInfo, context.Allocator, &out.Pool), "vkCreateDescriptorPool"); err != nil {
		out.Destroy(context)
		return nil, err
	}
	core.LogDebug("Descriptor pool created for %d sets.", maxSets)
	return out, nil
}

// Allocate takes one set with the given layout from the pool.
func (d *VulkanDescriptors) Allocate(context *VulkanContext, set uint32) (vk.DescriptorSet, error) {
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     d.Pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{d.Layouts[set]},
	}
	sets := make([]vk.DescriptorSet, 1)
	if err := ResultError(vk.AllocateDescriptorSets(context.Device.LogicalDevice, &allocInfo, &sets[0]), "vkAllocateDescriptorSets"); err != nil {
		if errors.Is(err, core.ErrOutOfMemory) {
			return nil, errors.Wrapf(core.ErrCapacityExceeded, "descriptor pool exhausted allocating set %d", set)
		}
		return nil, err
	}
	return sets[0], nil
}

func (d *VulkanDescriptors) Update(context *VulkanContext, writes []vk.WriteDescriptorSet) {
	if len(writes) == 0 {
		return
	}
	vk.UpdateDescriptorSets(context.Device.LogicalDevice, uint32(len(writes)), writes, 0, nil)
}

func (d *VulkanDescriptors) Destroy(context *VulkanContext) {
	device := context.Device.LogicalDevice
	if d.Pool != nil {
		vk.DestroyDescriptorPool(device, d.Pool, context.Allocator)
		d.Pool = nil
	}
	for i := range d.Layouts {
		if d.Layouts[i] != nil {
			vk.DestroyDescriptorSetLayout(device, d.Layouts[i], context.Allocator)
			d.Layouts[i] = nil
		}
	}
}

// BufferWrite points one buffer binding of set at [offset, offset+size).
func BufferWrite(set vk.DescriptorSet, binding uint32, kind vk.DescriptorType, buffer vk.Buffer, offset, size uint64) vk.WriteDescriptorSet {
	return vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      binding,
		DstArrayElement: 0,
		DescriptorCount: 1,
		DescriptorType:  kind,
		PBufferInfo: []vk.DescriptorBufferInfo{{
			Buffer: buffer,
			Offset: vk.DeviceSize(offset),
			Range:  vk.DeviceSize(size),
		}},
	}
}

func TextureWrite(set vk.DescriptorSet, binding uint32, texture *VulkanTexture) vk.WriteDescriptorSet {
	return vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      binding,
		DstArrayElement: 0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		PImageInfo: []vk.DescriptorImageInfo{{
			Sampler:     texture.Sampler,
			ImageView:   texture.Image.View,
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		}},
	}
}
