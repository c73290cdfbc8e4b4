package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/assets"
	"github.com/droune2001/vulkan-sub000/engine/core"
	vk "github.com/goki/vulkan"
)

/**
 * @brief Holds a Vulkan pipeline. The layout is shared and owned by VulkanPipelines.
 */
type VulkanPipeline struct {
	/** @brief The internal pipeline handle. */
	Handle vk.Pipeline
	/** @brief The pipeline layout. */
	PipelineLayout vk.PipelineLayout
	BindPoint      vk.PipelineBindPoint
}

type VulkanPipelineConfig struct {
	/** @brief The renderpass to associate with the pipeline. */
	Renderpass *VulkanRenderpass
	Layout     vk.PipelineLayout
	/** @brief Adds the per-instance vertex binding. */
	Instanced bool
	Stages    []vk.PipelineShaderStageCreateInfo
}

// NewGraphicsPipeline builds a triangle-list pipeline with dynamic viewport
// and scissor, depth test less-or-equal with writes, no culling, no blending
// and a single sample.
func NewGraphicsPipeline(context *VulkanContext, config *VulkanPipelineConfig) (*VulkanPipeline, error) {
	outPipeline := &VulkanPipeline{
		PipelineLayout: config.Layout,
		BindPoint:      vk.PipelineBindPointGraphics,
	}

	// Viewport and scissor are set at record time.
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	rasterizerCreateInfo := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		LineWidth:               1.0,
		CullMode:                vk.CullModeFlags(vk.CullModeNone),
		FrontFace:               vk.FrontFaceCounterClockwise,
		DepthBiasEnable:         vk.False,
	}

	multisamplingCreateInfo := vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:   vk.False,
		RasterizationSamples:  vk.SampleCount1Bit,
		MinSampleShading:      1.0,
		AlphaToCoverageEnable: vk.False,
		AlphaToOneEnable:      vk.False,
	}

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:       vk.True,
		DepthWriteEnable:      vk.True,
		DepthCompareOp:        vk.CompareOpLessOrEqual,
		DepthBoundsTestEnable: vk.False,
		StencilTestEnable:     vk.False,
	}

	colorBlendAttachmentState := vk.PipelineColorBlendAttachmentState{
		BlendEnable: vk.False,
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit) | vk.ColorComponentFlags(vk.ColorComponentGBit) |
			vk.ColorComponentFlags(vk.ColorComponentBBit) | vk.ColorComponentFlags(vk.ColorComponentABit),
	}
	colorBlendStateCreateInfo := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{colorBlendAttachmentState},
	}

	dynamicStates := []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
	}
	dynamicStateCreateInfo := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	bindings := VertexBindings(config.Instanced)
	attributes := VertexAttributes(config.Instanced)
	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindings)),
		PVertexBindingDescriptions:      bindings,
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}

	pipelineCreateInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(config.Stages)),
		PStages:             config.Stages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizerCreateInfo,
		PMultisampleState:   &multisamplingCreateInfo,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlendStateCreateInfo,
		PDynamicState:       &dynamicStateCreateInfo,
		Layout:              config.Layout,
		RenderPass:          config.Renderpass.Handle,
		Subpass:             0,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   -1,
	}

	pPipelines := make([]vk.Pipeline, 1)
	if err := ResultError(vk.CreateGraphicsPipelines(
		context.Device.LogicalDevice,
		vk.NullPipelineCache,
		1,
		[]vk.GraphicsPipelineCreateInfo{pipelineCreateInfo},
		context.Allocator,
		pPipelines), "vkCreateGraphicsPipelines"); err != nil {
		return nil, err
	}
	outPipeline.Handle = pPipelines[0]

	core.LogDebug("Graphics pipeline created!")
	return outPipeline, nil
}

func NewComputePipeline(context *VulkanContext, layout vk.PipelineLayout, stage vk.PipelineShaderStageCreateInfo) (*VulkanPipeline, error) {
	createInfo := vk.ComputePipelineCreateInfo{
		SType:              vk.StructureTypeComputePipelineCreateInfo,
		Stage:              stage,
		Layout:             layout,
		BasePipelineHandle: vk.NullPipeline,
		BasePipelineIndex:  -1,
	}
	pPipelines := make([]vk.Pipeline, 1)
	if err := ResultError(vk.CreateComputePipelines(
		context.Device.LogicalDevice,
		vk.NullPipelineCache,
		1,
		[]vk.ComputePipelineCreateInfo{createInfo},
		context.Allocator,
		pPipelines), "vkCreateComputePipelines"); err != nil {
		return nil, err
	}
	core.LogDebug("Compute pipeline created!")
	return &VulkanPipeline{
		Handle:         pPipelines[0],
		PipelineLayout: layout,
		BindPoint:      vk.PipelineBindPointCompute,
	}, nil
}

func PipelineLayoutCreate(context *VulkanContext, setLayouts []vk.DescriptorSetLayout) (vk.PipelineLayout, error) {
	pipelineLayoutCreateInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(setLayouts)),
		PSetLayouts:    setLayouts,
	}
	var layout vk.PipelineLayout
	err := ResultError(vk.CreatePipelineLayout(context.Device.LogicalDevice, &pipelineLayoutCreateInfo, context.Allocator, &layout), "vkCreatePipelineLayout")
	return layout, err
}

func (pipeline *VulkanPipeline) Destroy(context *VulkanContext) {
	if pipeline.Handle != vk.NullPipeline {
		vk.DestroyPipeline(context.Device.LogicalDevice, pipeline.Handle, context.Allocator)
		pipeline.Handle = vk.NullPipeline
	}
}

func (pipeline *VulkanPipeline) Bind(commandBuffer *VulkanCommandBuffer) {
	vk.CmdBindPipeline(commandBuffer.Handle, pipeline.BindPoint, pipeline.Handle)
}

// VulkanPipelines is the fixed pipeline set: opaque and instanced graphics
// over sets 0 to 2, particles compute over sets 0 to 3.
type VulkanPipelines struct {
	GraphicsLayout vk.PipelineLayout
	ComputeLayout  vk.PipelineLayout

	Opaque    *VulkanPipeline
	Instanced *VulkanPipeline
	Particles *VulkanPipeline
}

func PipelinesCreate(context *VulkanContext, descriptors *VulkanDescriptors, renderpass *VulkanRenderpass, shaders ShaderLibrary) (*VulkanPipelines, error) {
	out := &VulkanPipelines{}
	var err error
	if out.GraphicsLayout, err = PipelineLayoutCreate(context, descriptors.Layouts[:SetCompute]); err != nil {
		return nil, err
	}
	if out.ComputeLayout, err = PipelineLayoutCreate(context, descriptors.Layouts[:]); err != nil {
		out.Destroy(context)
		return nil, err
	}
	if err := out.Rebuild(context, renderpass, shaders); err != nil {
		out.Destroy(context)
		return nil, err
	}
	return out, nil
}

// Rebuild recreates the three pipelines from the library's current
// bytecode. Layouts are kept. The device must be idle.
func (p *VulkanPipelines) Rebuild(context *VulkanContext, renderpass *VulkanRenderpass, shaders ShaderLibrary) error {
	stages := map[string]vk.ShaderStageFlagBits{
		assets.ShaderOpaqueVert:    vk.ShaderStageVertexBit,
		assets.ShaderOpaqueFrag:    vk.ShaderStageFragmentBit,
		assets.ShaderInstancedVert: vk.ShaderStageVertexBit,
		assets.ShaderInstancedFrag: vk.ShaderStageFragmentBit,
		assets.ShaderParticlesComp: vk.ShaderStageComputeBit,
	}
	modules := make(map[string]*VulkanShaderStage, len(stages))
	defer func() {
		// Modules are only needed while pipelines are created.
		for _, m := range modules {
			m.Destroy(context)
		}
	}()
	for _, name := range assets.ShaderNames {
		m, err := NewShaderStage(context, name, shaders.Shader(name), stages[name])
		if err != nil {
			return err
		}
		modules[name] = m
	}

	opaque, err := NewGraphicsPipeline(context, &VulkanPipelineConfig{
		Renderpass: renderpass,
		Layout:     p.GraphicsLayout,
		Stages: []vk.PipelineShaderStageCreateInfo{
			modules[assets.ShaderOpaqueVert].ShaderStageCreateInfo,
			modules[assets.ShaderOpaqueFrag].ShaderStageCreateInfo,
		},
	})
	if err != nil {
		return errors.Wrap(err, "opaque pipeline")
	}
	instanced, err := NewGraphicsPipeline(context, &VulkanPipelineConfig{
		Renderpass: renderpass,
		Layout:     p.GraphicsLayout,
		Instanced:  true,
		Stages: []vk.PipelineShaderStageCreateInfo{
			modules[assets.ShaderInstancedVert].ShaderStageCreateInfo,
			modules[assets.ShaderInstancedFrag].ShaderStageCreateInfo,
		},
	})
	if err != nil {
		opaque.Destroy(context)
		return errors.Wrap(err, "instanced pipeline")
	}
	particles, err := NewComputePipeline(context, p.ComputeLayout, modules[assets.ShaderParticlesComp].ShaderStageCreateInfo)
	if err != nil {
		opaque.Destroy(context)
		instanced.Destroy(context)
		return errors.Wrap(err, "particles pipeline")
	}

	p.destroyPipelines(context)
	p.Opaque, p.Instanced, p.Particles = opaque, instanced, particles
	return nil
}

func (p *VulkanPipelines) destroyPipelines(context *VulkanContext) {
	for _, pipeline := range []*VulkanPipeline{p.Opaque, p.Instanced, p.Particles} {
		if pipeline != nil {
			pipeline.Destroy(context)
		}
	}
	p.Opaque, p.Instanced, p.Particles = nil, nil, nil
}

func (p *VulkanPipelines) Destroy(context *VulkanContext) {
	p.destroyPipelines(context)
	device := context.Device.LogicalDevice
	if p.ComputeLayout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(device, p.ComputeLayout, context.Allocator)
		p.ComputeLayout = vk.NullPipelineLayout
	}
	if p.GraphicsLayout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(device, p.GraphicsLayout, context.Allocator)
		p.GraphicsLayout = vk.NullPipelineLayout
	}
}
