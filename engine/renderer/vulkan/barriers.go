package vulkan

import (
	vk "github.com/goki/vulkan"
)

// BufferBarrier is a buffer memory barrier together with the stages it
// separates.
type BufferBarrier struct {
	SrcStage vk.PipelineStageFlags
	DstStage vk.PipelineStageFlags
	Barrier  vk.BufferMemoryBarrier
}

func (b BufferBarrier) Record(cmd vk.CommandBuffer) {
	vk.CmdPipelineBarrier(cmd, b.SrcStage, b.DstStage, 0,
		0, nil,
		1, []vk.BufferMemoryBarrier{b.Barrier},
		0, nil)
}

func recordBufferBarriers(cmd vk.CommandBuffer, barriers []BufferBarrier) {
	for _, b := range barriers {
		b.Record(cmd)
	}
}

func bufferBarrier(buffer vk.Buffer, size uint64, srcAccess, dstAccess vk.AccessFlags, srcFamily, dstFamily uint32) vk.BufferMemoryBarrier {
	return vk.BufferMemoryBarrier{
		SType:               vk.StructureTypeBufferMemoryBarrier,
		SrcAccessMask:       srcAccess,
		DstAccessMask:       dstAccess,
		SrcQueueFamilyIndex: srcFamily,
		DstQueueFamilyIndex: dstFamily,
		Buffer:              buffer,
		Offset:              0,
		Size:                vk.DeviceSize(size),
	}
}

// InstanceHandoff is the barrier schedule of one instance buffer per frame.
// Compute acquires it, writes it and releases it; graphics reads it as vertex
// input. With split queue families the graphics side records the matching
// acquire before drawing and a release back to compute afterwards. With a
// shared family those two are nil and the compute pair are memory barriers.
// InstanceOwnership decides which of them a frame records.
type InstanceHandoff struct {
	ComputeAcquire  BufferBarrier
	ComputeRelease  BufferBarrier
	GraphicsAcquire *BufferBarrier
	GraphicsRelease *BufferBarrier
}

var (
	vertexAttributeRead = vk.AccessFlags(vk.AccessVertexAttributeReadBit)
	shaderReadWrite     = vk.AccessFlags(vk.AccessShaderReadBit) | vk.AccessFlags(vk.AccessShaderWriteBit)
	shaderWrite         = vk.AccessFlags(vk.AccessShaderWriteBit)
	transferWrite       = vk.AccessFlags(vk.AccessTransferWriteBit)

	stageVertexInput = vk.PipelineStageFlags(vk.PipelineStageVertexInputBit)
	stageCompute     = vk.PipelineStageFlags(vk.PipelineStageComputeShaderBit)
	stageTransfer    = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	stageTop         = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
	stageBottom      = vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit)
)

func PlanInstanceHandoff(buffer vk.Buffer, size uint64, graphicsFamily, computeFamily uint32) InstanceHandoff {
	if graphicsFamily == computeFamily {
		ignored := uint32(vk.QueueFamilyIgnored)
		return InstanceHandoff{
			ComputeAcquire: BufferBarrier{
				SrcStage: stageVertexInput,
				DstStage: stageCompute,
				Barrier:  bufferBarrier(buffer, size, vertexAttributeRead, shaderReadWrite, ignored, ignored),
			},
			ComputeRelease: BufferBarrier{
				SrcStage: stageCompute,
				DstStage: stageVertexInput,
				Barrier:  bufferBarrier(buffer, size, shaderWrite, vertexAttributeRead, ignored, ignored),
			},
		}
	}

	// The acquiring half of a transfer ignores the source access mask and
	// the releasing half ignores the destination one.
	return InstanceHandoff{
		ComputeAcquire: BufferBarrier{
			SrcStage: stageTop,
			DstStage: stageCompute,
			Barrier:  bufferBarrier(buffer, size, 0, shaderReadWrite, graphicsFamily, computeFamily),
		},
		ComputeRelease: BufferBarrier{
			SrcStage: stageCompute,
			DstStage: stageBottom,
			Barrier:  bufferBarrier(buffer, size, shaderWrite, 0, computeFamily, graphicsFamily),
		},
		GraphicsAcquire: &BufferBarrier{
			SrcStage: stageTop,
			DstStage: stageVertexInput,
			Barrier:  bufferBarrier(buffer, size, 0, vertexAttributeRead, computeFamily, graphicsFamily),
		},
		GraphicsRelease: &BufferBarrier{
			SrcStage: stageVertexInput,
			DstStage: stageBottom,
			Barrier:  bufferBarrier(buffer, size, vertexAttributeRead, 0, graphicsFamily, computeFamily),
		},
	}
}

// UploadBarriers surround a staging copy into an instance buffer recorded on
// the compute queue. A buffer the graphics queue released at the end of the
// last frame is acquired first; after the copy the data is made visible to
// the simulation.
func UploadBarriers(buffer vk.Buffer, size uint64, graphicsFamily, computeFamily uint32, releasedByGraphics bool) (before, after []BufferBarrier) {
	if releasedByGraphics {
		acquire := BufferBarrier{
			SrcStage: stageVertexInput,
			DstStage: stageTransfer,
			Barrier:  bufferBarrier(buffer, size, vertexAttributeRead, transferWrite, vk.QueueFamilyIgnored, vk.QueueFamilyIgnored),
		}
		if graphicsFamily != computeFamily {
			acquire.SrcStage = stageTop
			acquire.Barrier = bufferBarrier(buffer, size, 0, transferWrite, graphicsFamily, computeFamily)
		}
		before = []BufferBarrier{acquire}
	}
	after = []BufferBarrier{{
		SrcStage: stageTransfer,
		DstStage: stageCompute,
		Barrier:  bufferBarrier(buffer, size, transferWrite, shaderReadWrite, vk.QueueFamilyIgnored, vk.QueueFamilyIgnored),
	}}
	return before, after
}

// HostWriteBarrier makes mapped uniform writes visible to shader uniform reads.
func HostWriteBarrier() (vk.PipelineStageFlags, vk.PipelineStageFlags, vk.MemoryBarrier) {
	return vk.PipelineStageFlags(vk.PipelineStageHostBit),
		vk.PipelineStageFlags(vk.PipelineStageVertexShaderBit) | vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		vk.MemoryBarrier{
			SType:         vk.StructureTypeMemoryBarrier,
			SrcAccessMask: vk.AccessFlags(vk.AccessHostWriteBit),
			DstAccessMask: vk.AccessFlags(vk.AccessUniformReadBit),
		}
}

func recordHostWriteBarrier(cmd vk.CommandBuffer) {
	src, dst, barrier := HostWriteBarrier()
	vk.CmdPipelineBarrier(cmd, src, dst, 0, 1, []vk.MemoryBarrier{barrier}, 0, nil, 0, nil)
}

// LayoutTransition returns the access masks and stages of an image layout
// transition. Only the transitions the renderer performs are known.
func LayoutTransition(oldLayout, newLayout vk.ImageLayout) (srcAccess, dstAccess vk.AccessFlags, srcStage, dstStage vk.PipelineStageFlags, ok bool) {
	switch {
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutTransferDstOptimal:
		return 0, transferWrite, stageTop, stageTransfer, true
	case oldLayout == vk.ImageLayoutTransferDstOptimal && newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		return transferWrite, vk.AccessFlags(vk.AccessShaderReadBit),
			stageTransfer, vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit), true
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutDepthStencilAttachmentOptimal:
		return 0, vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit) | vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit),
			stageTop, vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit), true
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		return 0, vk.AccessFlags(vk.AccessShaderReadBit),
			stageTop, vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit), true
	}
	return 0, 0, 0, 0, false
}
