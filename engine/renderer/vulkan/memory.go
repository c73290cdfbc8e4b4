package vulkan

import (
	emath "github.com/droune2001/vulkan-sub000/engine/math"
	vk "github.com/goki/vulkan"
)

// FindMemoryType returns the first memory type allowed by typeBits whose
// property flags contain all of wanted, or -1.
func FindMemoryType(types []vk.MemoryPropertyFlags, typeBits uint32, wanted vk.MemoryPropertyFlags) int32 {
	for i, flags := range types {
		if i >= 32 {
			break
		}
		if typeBits&(1<<uint(i)) != 0 && flags&wanted == wanted {
			return int32(i)
		}
	}
	return -1
}

func memoryTypeFlags(props vk.PhysicalDeviceMemoryProperties) []vk.MemoryPropertyFlags {
	props.Deref()
	out := make([]vk.MemoryPropertyFlags, props.MemoryTypeCount)
	for i := uint32(0); i < props.MemoryTypeCount; i++ {
		props.MemoryTypes[i].Deref()
		out[i] = props.MemoryTypes[i].PropertyFlags
	}
	return out
}

// FlushRange widens [offset, offset+size) to nonCoherentAtomSize boundaries
// without running past the allocation.
func FlushRange(offset, size, atom, allocation uint64) (uint64, uint64) {
	if atom == 0 {
		atom = 1
	}
	start := offset - offset%atom
	stop := emath.AlignUp(offset+size, atom)
	if stop > allocation {
		stop = allocation
	}
	return start, stop - start
}
