package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/core"
	vk "github.com/goki/vulkan"
)

// Stager copies host data into device-local buffers and images through one
// reusable host-visible buffer. Every copy waits for completion before
// returning, so the staging memory is free again for the next one.
type Stager struct {
	buffer *VulkanBuffer
}

// StagingQueue selects the queue a copy runs on. Instance buffers are
// uploaded on the compute queue, which owns them between frames.
type StagingQueue int

const (
	StagingGraphics StagingQueue = iota
	StagingCompute
)

type stagingChunk struct {
	Offset uint64
	Size   uint64
}

// stagingChunks splits total bytes into pieces that fit the staging buffer.
func stagingChunks(total, capacity uint64) []stagingChunk {
	if total == 0 || capacity == 0 {
		return nil
	}
	chunks := make([]stagingChunk, 0, (total+capacity-1)/capacity)
	for offset := uint64(0); offset < total; offset += capacity {
		size := capacity
		if total-offset < size {
			size = total - offset
		}
		chunks = append(chunks, stagingChunk{Offset: offset, Size: size})
	}
	return chunks
}

func NewStager(context *VulkanContext, size uint64) (*Stager, error) {
	buffer, err := HostVisibleBuffer(context, size, vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit), true)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create staging buffer")
	}
	if err := buffer.Map(context); err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	core.LogDebug("Staging buffer of %d bytes created.", size)
	return &Stager{buffer: buffer}, nil
}

func (s *Stager) Capacity() uint64 {
	return s.buffer.Size
}

// CopyToBuffer copies data into dst at dstOffset.
func (s *Stager) CopyToBuffer(context *VulkanContext, dst *VulkanBuffer, dstOffset uint64, data []byte) error {
	return s.CopyToBufferWithBarriers(context, StagingGraphics, dst, dstOffset, data, nil, nil)
}

// CopyToBufferWithBarriers records before ahead of the first chunk and after
// behind the last one.
func (s *Stager) CopyToBufferWithBarriers(context *VulkanContext, queue StagingQueue, dst *VulkanBuffer, dstOffset uint64, data []byte, before, after []BufferBarrier) error {
	if dstOffset+uint64(len(data)) > dst.Size {
		return errors.Wrapf(core.ErrCapacityExceeded, "copy of %d bytes at %d into buffer of %d", len(data), dstOffset, dst.Size)
	}
	chunks := stagingChunks(uint64(len(data)), s.buffer.Size)
	for i, chunk := range chunks {
		if err := s.buffer.Upload(context, 0, data[chunk.Offset:chunk.Offset+chunk.Size]); err != nil {
			return err
		}
		err := s.oneShot(context, queue, func(cmd vk.CommandBuffer) error {
			if i == 0 {
				recordBufferBarriers(cmd, before)
			}
			region := vk.BufferCopy{
				SrcOffset: 0,
				DstOffset: vk.DeviceSize(dstOffset + chunk.Offset),
				Size:      vk.DeviceSize(chunk.Size),
			}
			vk.CmdCopyBuffer(cmd, s.buffer.Handle, dst.Handle, 1, []vk.BufferCopy{region})
			if i == len(chunks)-1 {
				recordBufferBarriers(cmd, after)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// CopyToImage uploads tightly packed RGBA8 pixels and leaves the image ready
// for sampling.
func (s *Stager) CopyToImage(context *VulkanContext, img *VulkanImage, pixels []byte) error {
	if uint64(len(pixels)) > s.buffer.Size {
		return errors.Wrapf(core.ErrCapacityExceeded, "image of %d bytes exceeds staging buffer of %d", len(pixels), s.buffer.Size)
	}
	if err := s.buffer.Upload(context, 0, pixels); err != nil {
		return err
	}
	aspect := vk.ImageAspectFlags(vk.ImageAspectColorBit)
	return s.oneShot(context, StagingGraphics, func(cmd vk.CommandBuffer) error {
		if err := img.TransitionLayout(cmd, aspect, vk.ImageLayoutTransferDstOptimal); err != nil {
			return err
		}
		region := vk.BufferImageCopy{
			BufferOffset:      0,
			BufferRowLength:   0,
			BufferImageHeight: 0,
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask:     aspect,
				MipLevel:       0,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			ImageOffset: vk.Offset3D{X: 0, Y: 0, Z: 0},
			ImageExtent: vk.Extent3D{Width: img.Width, Height: img.Height, Depth: 1},
		}
		vk.CmdCopyBufferToImage(cmd, s.buffer.Handle, img.Handle, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})
		return img.TransitionLayout(cmd, aspect, vk.ImageLayoutShaderReadOnlyOptimal)
	})
}

// oneShot records with a short-lived command buffer and waits for it.
func (s *Stager) oneShot(context *VulkanContext, queue StagingQueue, record func(cmd vk.CommandBuffer) error) error {
	device := context.Device
	pool, q, family := device.TransientCommandPool, device.GraphicsQueue, device.QueueFamilies.Graphics
	if queue == StagingCompute {
		pool, q, family = device.ComputeCommandPool, device.ComputeQueue, device.QueueFamilies.Compute
	}
	cb, err := AllocateAndBeginSingleUse(context, pool)
	if err != nil {
		return err
	}
	if err := record(cb.Handle); err != nil {
		cb.Free(context)
		return err
	}
	return cb.EndSingleUse(context, q, family)
}

func (s *Stager) Destroy(context *VulkanContext) {
	if s.buffer != nil {
		s.buffer.Destroy(context)
		s.buffer = nil
	}
}
