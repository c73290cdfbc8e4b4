package vulkan

import (
	"github.com/droune2001/vulkan-sub000/engine/geometry"
	"github.com/droune2001/vulkan-sub000/engine/scene"
	vk "github.com/goki/vulkan"
)

const (
	VertexBinding   uint32 = 0
	InstanceBinding uint32 = 1

	// First location of the per-instance attributes.
	InstanceLocation uint32 = 3
	// Every instance record member is a vec4.
	instanceAttributeCount = scene.InstanceRecordSize / 16
)

// VertexBindings describes binding 0 (geometry.Vertex, per vertex) and, for
// the instanced pipeline, binding 1 (scene.InstanceRecord, per instance).
func VertexBindings(instanced bool) []vk.VertexInputBindingDescription {
	bindings := []vk.VertexInputBindingDescription{{
		Binding:   VertexBinding,
		Stride:    geometry.VertexSize,
		InputRate: vk.VertexInputRateVertex,
	}}
	if instanced {
		bindings = append(bindings, vk.VertexInputBindingDescription{
			Binding:   InstanceBinding,
			Stride:    scene.InstanceRecordSize,
			InputRate: vk.VertexInputRateInstance,
		})
	}
	return bindings
}

// VertexAttributes maps position, normal and uv to locations 0 to 2 and the
// seven instance vec4s to locations 3 to 9.
func VertexAttributes(instanced bool) []vk.VertexInputAttributeDescription {
	attributes := []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: VertexBinding, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
		{Location: 1, Binding: VertexBinding, Format: vk.FormatR32g32b32Sfloat, Offset: 12},
		{Location: 2, Binding: VertexBinding, Format: vk.FormatR32g32Sfloat, Offset: 24},
	}
	if !instanced {
		return attributes
	}
	for i := uint32(0); i < instanceAttributeCount; i++ {
		attributes = append(attributes, vk.VertexInputAttributeDescription{
			Location: InstanceLocation + i,
			Binding:  InstanceBinding,
			Format:   vk.FormatR32g32b32a32Sfloat,
			Offset:   i * 16,
		})
	}
	return attributes
}
