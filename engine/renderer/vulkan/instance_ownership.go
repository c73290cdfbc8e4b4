package vulkan

import vk "github.com/goki/vulkan"

// InstanceOwnership follows one instance buffer between the compute and the
// graphics queue and hands out the barriers each step records. A frame is
// Upload (only when the records changed), Compute, GraphicsAcquire, the
// draws and GraphicsRelease. With split families the buffer is released to
// graphics at the end of the compute pass and back to compute after the
// draws; a compute step following an upload finds it already on compute.
type InstanceOwnership struct {
	buffer   vk.Buffer
	size     uint64
	graphics uint32
	compute  uint32
	handoff  InstanceHandoff

	// False once graphics read the buffer and compute has not taken it back.
	computeOwned bool
}

// NewInstanceOwnership starts with the buffer on the compute queue, where its
// first upload runs.
func NewInstanceOwnership(buffer vk.Buffer, size uint64, graphicsFamily, computeFamily uint32) *InstanceOwnership {
	return &InstanceOwnership{
		buffer:       buffer,
		size:         size,
		graphics:     graphicsFamily,
		compute:      computeFamily,
		handoff:      PlanInstanceHandoff(buffer, size, graphicsFamily, computeFamily),
		computeOwned: true,
	}
}

func (o *InstanceOwnership) ComputeOwned() bool {
	return o.computeOwned
}

// Upload returns the barriers around a staging copy on the compute queue.
func (o *InstanceOwnership) Upload() (before, after []BufferBarrier) {
	before, after = UploadBarriers(o.buffer, o.size, o.graphics, o.compute, !o.computeOwned)
	o.computeOwned = true
	return before, after
}

// Compute returns the barriers around the dispatch. The acquire is skipped
// only when the buffer never left compute since the last upload and the
// families are split; a shared family always waits for the vertex reads.
func (o *InstanceOwnership) Compute() (before, after []BufferBarrier) {
	if o.graphics == o.compute || !o.computeOwned {
		before = []BufferBarrier{o.handoff.ComputeAcquire}
	}
	o.computeOwned = true
	return before, []BufferBarrier{o.handoff.ComputeRelease}
}

// GraphicsAcquire is recorded before the render pass.
func (o *InstanceOwnership) GraphicsAcquire() []BufferBarrier {
	if o.handoff.GraphicsAcquire == nil {
		return nil
	}
	return []BufferBarrier{*o.handoff.GraphicsAcquire}
}

// GraphicsRelease is recorded after the render pass.
func (o *InstanceOwnership) GraphicsRelease() []BufferBarrier {
	o.computeOwned = false
	if o.handoff.GraphicsRelease == nil {
		return nil
	}
	return []BufferBarrier{*o.handoff.GraphicsRelease}
}
