package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
)

const testBufferSize = 1024 * 112

func TestPlanInstanceHandoffSharedFamily(t *testing.T) {
	h := PlanInstanceHandoff(vk.NullBuffer, testBufferSize, 0, 0)
	if h.GraphicsAcquire != nil || h.GraphicsRelease != nil {
		t.Fatal("shared family planned graphics ownership transfers")
	}
	for name, b := range map[string]BufferBarrier{"acquire": h.ComputeAcquire, "release": h.ComputeRelease} {
		if b.Barrier.SrcQueueFamilyIndex != vk.QueueFamilyIgnored || b.Barrier.DstQueueFamilyIndex != vk.QueueFamilyIgnored {
			t.Errorf("%s: families %d -> %d, want ignored", name, b.Barrier.SrcQueueFamilyIndex, b.Barrier.DstQueueFamilyIndex)
		}
		if b.Barrier.Size != vk.DeviceSize(testBufferSize) {
			t.Errorf("%s: size %d", name, b.Barrier.Size)
		}
	}
	if h.ComputeAcquire.SrcStage != stageVertexInput || h.ComputeAcquire.DstStage != stageCompute {
		t.Error("compute acquire does not wait for vertex input")
	}
	if h.ComputeRelease.SrcStage != stageCompute || h.ComputeRelease.DstStage != stageVertexInput {
		t.Error("compute release does not block vertex input")
	}
	if h.ComputeRelease.Barrier.DstAccessMask != vertexAttributeRead {
		t.Errorf("release dst access %d", h.ComputeRelease.Barrier.DstAccessMask)
	}
}

func TestPlanInstanceHandoffSplitFamilies(t *testing.T) {
	const gfx, compute = 0, 2
	h := PlanInstanceHandoff(vk.NullBuffer, testBufferSize, gfx, compute)
	if h.GraphicsAcquire == nil || h.GraphicsRelease == nil {
		t.Fatal("split families without graphics transfers")
	}

	pairs := []struct {
		name             string
		release, acquire BufferBarrier
		from, to         uint32
	}{
		{"compute to graphics", h.ComputeRelease, *h.GraphicsAcquire, compute, gfx},
		{"graphics to compute", *h.GraphicsRelease, h.ComputeAcquire, gfx, compute},
	}
	for _, p := range pairs {
		for _, b := range []BufferBarrier{p.release, p.acquire} {
			if b.Barrier.SrcQueueFamilyIndex != p.from || b.Barrier.DstQueueFamilyIndex != p.to {
				t.Errorf("%s: families %d -> %d, want %d -> %d", p.name,
					b.Barrier.SrcQueueFamilyIndex, b.Barrier.DstQueueFamilyIndex, p.from, p.to)
			}
		}
		if p.release.Barrier.DstAccessMask != 0 {
			t.Errorf("%s: release has dst access %d", p.name, p.release.Barrier.DstAccessMask)
		}
		if p.acquire.Barrier.SrcAccessMask != 0 {
			t.Errorf("%s: acquire has src access %d", p.name, p.acquire.Barrier.SrcAccessMask)
		}
	}
	if h.GraphicsAcquire.DstStage != stageVertexInput {
		t.Error("graphics acquire does not target vertex input")
	}
}

func TestUploadBarriers(t *testing.T) {
	before, after := UploadBarriers(vk.NullBuffer, testBufferSize, 0, 0, false)
	if len(before) != 0 {
		t.Errorf("fresh buffer: %d barriers before copy", len(before))
	}
	if len(after) != 1 || after[0].SrcStage != stageTransfer || after[0].DstStage != stageCompute {
		t.Fatalf("after = %+v", after)
	}
	if after[0].Barrier.DstAccessMask != shaderReadWrite {
		t.Errorf("after dst access %d", after[0].Barrier.DstAccessMask)
	}

	before, _ = UploadBarriers(vk.NullBuffer, testBufferSize, 0, 0, true)
	if len(before) != 1 || before[0].Barrier.SrcQueueFamilyIndex != vk.QueueFamilyIgnored {
		t.Fatalf("shared family before = %+v", before)
	}
	if before[0].SrcStage != stageVertexInput || before[0].DstStage != stageTransfer {
		t.Error("shared family upload does not wait for vertex input")
	}

	before, _ = UploadBarriers(vk.NullBuffer, testBufferSize, 0, 1, true)
	if len(before) != 1 {
		t.Fatalf("split family before = %+v", before)
	}
	b := before[0].Barrier
	if b.SrcQueueFamilyIndex != 0 || b.DstQueueFamilyIndex != 1 || b.SrcAccessMask != 0 {
		t.Errorf("split family acquire = %d -> %d src access %d", b.SrcQueueFamilyIndex, b.DstQueueFamilyIndex, b.SrcAccessMask)
	}
}

func TestHostWriteBarrier(t *testing.T) {
	src, dst, barrier := HostWriteBarrier()
	if src != vk.PipelineStageFlags(vk.PipelineStageHostBit) {
		t.Errorf("src stage %d", src)
	}
	if dst&vk.PipelineStageFlags(vk.PipelineStageVertexShaderBit) == 0 || dst&vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit) == 0 {
		t.Errorf("dst stage %d misses a shader stage", dst)
	}
	if barrier.DstAccessMask != vk.AccessFlags(vk.AccessUniformReadBit) {
		t.Errorf("dst access %d", barrier.DstAccessMask)
	}
}

func TestLayoutTransition(t *testing.T) {
	known := [][2]vk.ImageLayout{
		{vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal},
		{vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal},
		{vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal},
		{vk.ImageLayoutUndefined, vk.ImageLayoutShaderReadOnlyOptimal},
	}
	for _, k := range known {
		if _, _, _, _, ok := LayoutTransition(k[0], k[1]); !ok {
			t.Errorf("transition %d -> %d unknown", k[0], k[1])
		}
	}

	_, dstAccess, srcStage, dstStage, _ := LayoutTransition(vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
	if dstAccess != transferWrite || srcStage != stageTop || dstStage != stageTransfer {
		t.Errorf("upload transition = %d %d %d", dstAccess, srcStage, dstStage)
	}

	if _, _, _, _, ok := LayoutTransition(vk.ImageLayoutShaderReadOnlyOptimal, vk.ImageLayoutTransferDstOptimal); ok {
		t.Error("unsupported transition accepted")
	}
}
