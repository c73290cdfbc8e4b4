package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
)

func TestSetLayoutBindings(t *testing.T) {
	cases := []struct {
		set   uint32
		types []vk.DescriptorType
	}{
		{SetScene, []vk.DescriptorType{vk.DescriptorTypeUniformBuffer}},
		{SetMaterial, []vk.DescriptorType{vk.DescriptorTypeCombinedImageSampler, vk.DescriptorTypeCombinedImageSampler}},
		{SetObject, []vk.DescriptorType{vk.DescriptorTypeUniformBufferDynamic, vk.DescriptorTypeUniformBufferDynamic}},
		{SetCompute, []vk.DescriptorType{vk.DescriptorTypeStorageBuffer, vk.DescriptorTypeUniformBuffer}},
	}
	for _, c := range cases {
		bindings := SetLayoutBindings(c.set)
		if len(bindings) != len(c.types) {
			t.Errorf("set %d: %d bindings, want %d", c.set, len(bindings), len(c.types))
			continue
		}
		for i, b := range bindings {
			if b.Binding != uint32(i) || b.DescriptorType != c.types[i] || b.DescriptorCount != 1 {
				t.Errorf("set %d binding %d = %+v", c.set, i, b)
			}
		}
	}

	for _, b := range SetLayoutBindings(SetCompute) {
		if b.StageFlags != stageComputeOnly {
			t.Errorf("compute binding %d visible to stages %d", b.Binding, b.StageFlags)
		}
	}
	if SetLayoutBindings(setCount) != nil {
		t.Error("bindings for an unknown set")
	}
}

func TestDescriptorPoolSizes(t *testing.T) {
	sizes, maxSets := DescriptorPoolSizes(8, 4)
	if maxSets != 2+8+4 {
		t.Errorf("maxSets = %d", maxSets)
	}
	want := map[vk.DescriptorType]uint32{
		vk.DescriptorTypeUniformBuffer:        5,
		vk.DescriptorTypeUniformBufferDynamic: 2,
		vk.DescriptorTypeCombinedImageSampler: 16,
		vk.DescriptorTypeStorageBuffer:        4,
	}
	if len(sizes) != len(want) {
		t.Fatalf("%d pool sizes", len(sizes))
	}
	for _, s := range sizes {
		if s.DescriptorCount != want[s.Type] {
			t.Errorf("type %d: %d descriptors, want %d", s.Type, s.DescriptorCount, want[s.Type])
		}
	}
}
