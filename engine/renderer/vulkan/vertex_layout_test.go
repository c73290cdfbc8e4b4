package vulkan

import (
	"testing"

	"github.com/droune2001/vulkan-sub000/engine/geometry"
	"github.com/droune2001/vulkan-sub000/engine/scene"
	vk "github.com/goki/vulkan"
)

func TestVertexBindings(t *testing.T) {
	b := VertexBindings(false)
	if len(b) != 1 || b[0].Stride != geometry.VertexSize || b[0].InputRate != vk.VertexInputRateVertex {
		t.Fatalf("opaque bindings = %+v", b)
	}

	b = VertexBindings(true)
	if len(b) != 2 {
		t.Fatalf("instanced bindings = %d", len(b))
	}
	if b[1].Binding != InstanceBinding || b[1].Stride != scene.InstanceRecordSize || b[1].InputRate != vk.VertexInputRateInstance {
		t.Errorf("instance binding = %+v", b[1])
	}
}

func TestVertexAttributes(t *testing.T) {
	if got := len(VertexAttributes(false)); got != 3 {
		t.Errorf("opaque attributes = %d, want 3", got)
	}

	attrs := VertexAttributes(true)
	if len(attrs) != 10 {
		t.Fatalf("instanced attributes = %d, want 10", len(attrs))
	}
	for i, a := range attrs[3:] {
		if a.Location != InstanceLocation+uint32(i) {
			t.Errorf("attribute %d at location %d", i, a.Location)
		}
		if a.Binding != InstanceBinding || a.Offset != uint32(i)*16 || a.Format != vk.FormatR32g32b32a32Sfloat {
			t.Errorf("attribute %d = %+v", i, a)
		}
	}
	last := attrs[len(attrs)-1]
	if last.Offset+16 != scene.InstanceRecordSize {
		t.Errorf("instance attributes cover %d bytes, record is %d", last.Offset+16, scene.InstanceRecordSize)
	}
}
