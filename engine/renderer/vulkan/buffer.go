package vulkan

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

// VulkanBuffer is a buffer with its own memory allocation. Host-visible
// buffers stay mapped from the first Map until Unmap or Destroy.
type VulkanBuffer struct {
	Handle     vk.Buffer
	Memory     vk.DeviceMemory
	Size       uint64
	Usage      vk.BufferUsageFlags
	Properties vk.MemoryPropertyFlags

	allocationSize uint64
	mapped         unsafe.Pointer
	coherent       bool
	atomSize       uint64
}

func BufferCreate(context *VulkanContext, size uint64, usage vk.BufferUsageFlags, properties vk.MemoryPropertyFlags) (*VulkanBuffer, error) {
	if size == 0 {
		return nil, errors.New("buffer size must be positive")
	}
	device := context.Device.LogicalDevice
	out := &VulkanBuffer{
		Size:       size,
		Usage:      usage,
		Properties: properties,
		coherent:   properties&vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit) != 0,
		atomSize:   context.Device.NonCoherentAtomSize(),
	}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}
	if err := ResultError(vk.CreateBuffer(device, &bufferInfo, context.Allocator, &out.Handle), "vkCreateBuffer"); err != nil {
		return nil, err
	}

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, out.Handle, &requirements)
	requirements.Deref()

	memoryType, err := context.FindMemoryIndex(requirements.MemoryTypeBits, properties)
	if err != nil {
		out.Destroy(context)
		return nil, errors.Wrap(err, "unable to create vulkan buffer")
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memoryType,
	}
	if err := ResultError(vk.AllocateMemory(device, &allocateInfo, context.Allocator, &out.Memory), "vkAllocateMemory"); err != nil {
		out.Destroy(context)
		return nil, err
	}
	out.allocationSize = uint64(requirements.Size)

	if err := ResultError(vk.BindBufferMemory(device, out.Handle, out.Memory, 0), "vkBindBufferMemory"); err != nil {
		out.Destroy(context)
		return nil, err
	}
	return out, nil
}

// HostVisibleBuffer is mappable memory, coherent when coherent is set.
func HostVisibleBuffer(context *VulkanContext, size uint64, usage vk.BufferUsageFlags, coherent bool) (*VulkanBuffer, error) {
	props := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)
	if coherent {
		props |= vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit)
	}
	return BufferCreate(context, size, usage, props)
}

// DeviceLocalBuffer can only be filled through a transfer, so
// transfer-dst usage is always added.
func DeviceLocalBuffer(context *VulkanContext, size uint64, usage vk.BufferUsageFlags) (*VulkanBuffer, error) {
	return BufferCreate(context, size, usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
}

// Map maps the whole allocation once.
func (b *VulkanBuffer) Map(context *VulkanContext) error {
	if b.mapped != nil {
		return nil
	}
	if b.Properties&vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) == 0 {
		return errors.New("cannot map a buffer without host-visible memory")
	}
	var ptr unsafe.Pointer
	if err := ResultError(vk.MapMemory(context.Device.LogicalDevice, b.Memory, 0, vk.DeviceSize(vk.WholeSize), 0, &ptr), "vkMapMemory"); err != nil {
		return err
	}
	b.mapped = ptr
	return nil
}

// Write copies data into the mapped range at offset. Non-coherent memory also
// needs a Flush before the device reads it.
func (b *VulkanBuffer) Write(offset uint64, data []byte) error {
	if b.mapped == nil {
		return errors.New("buffer is not mapped")
	}
	if offset+uint64(len(data)) > b.Size {
		return errors.Newf("write of %d bytes at %d overflows buffer of %d", len(data), offset, b.Size)
	}
	if len(data) == 0 {
		return nil
	}
	vk.Memcopy(unsafe.Add(b.mapped, offset), data)
	return nil
}

// Flush makes host writes in [offset, offset+size) visible to the device.
func (b *VulkanBuffer) Flush(context *VulkanContext, offset, size uint64) error {
	if b.coherent || size == 0 {
		return nil
	}
	start, length := FlushRange(offset, size, b.atomSize, b.allocationSize)
	memoryRange := vk.MappedMemoryRange{
		SType:  vk.StructureTypeMappedMemoryRange,
		Memory: b.Memory,
		Offset: vk.DeviceSize(start),
		Size:   vk.DeviceSize(length),
	}
	return context.check(vk.FlushMappedMemoryRanges(context.Device.LogicalDevice, 1, []vk.MappedMemoryRange{memoryRange}), "vkFlushMappedMemoryRanges")
}

// Upload writes and flushes in one step.
func (b *VulkanBuffer) Upload(context *VulkanContext, offset uint64, data []byte) error {
	if err := b.Write(offset, data); err != nil {
		return err
	}
	return b.Flush(context, offset, uint64(len(data)))
}

func (b *VulkanBuffer) Unmap(context *VulkanContext) {
	if b.mapped == nil {
		return
	}
	vk.UnmapMemory(context.Device.LogicalDevice, b.Memory)
	b.mapped = nil
}

func (b *VulkanBuffer) Destroy(context *VulkanContext) {
	b.Unmap(context)
	device := context.Device.LogicalDevice
	if b.Handle != vk.NullBuffer {
		vk.DestroyBuffer(device, b.Handle, context.Allocator)
		b.Handle = vk.NullBuffer
	}
	if b.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(device, b.Memory, context.Allocator)
		b.Memory = vk.NullDeviceMemory
	}
	b.Size = 0
}
