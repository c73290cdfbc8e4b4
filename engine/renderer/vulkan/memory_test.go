package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
)

func TestFindMemoryType(t *testing.T) {
	deviceLocal := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	hostVisible := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)
	hostCoherent := vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit)
	types := []vk.MemoryPropertyFlags{
		deviceLocal,
		hostVisible,
		hostVisible | hostCoherent,
		deviceLocal | hostVisible,
	}

	cases := []struct {
		name     string
		typeBits uint32
		wanted   vk.MemoryPropertyFlags
		want     int32
	}{
		{"device local", 0xF, deviceLocal, 0},
		{"host visible", 0xF, hostVisible, 1},
		{"coherent", 0xF, hostVisible | hostCoherent, 2},
		{"masked out", 0x9, hostVisible, 3},
		{"no match", 0x1, hostVisible, -1},
		{"none allowed", 0, deviceLocal, -1},
	}
	for _, c := range cases {
		if got := FindMemoryType(types, c.typeBits, c.wanted); got != c.want {
			t.Errorf("%s: got %d, want %d", c.name, got, c.want)
		}
	}
}

func TestFlushRange(t *testing.T) {
	cases := []struct {
		offset, size, atom, allocation uint64
		wantOffset, wantSize           uint64
	}{
		{0, 64, 64, 1024, 0, 64},
		{10, 20, 64, 1024, 0, 64},
		{70, 100, 64, 1024, 64, 128},
		{1000, 20, 64, 1020, 960, 60},
		{5, 3, 0, 16, 5, 3},
	}
	for _, c := range cases {
		off, size := FlushRange(c.offset, c.size, c.atom, c.allocation)
		if off != c.wantOffset || size != c.wantSize {
			t.Errorf("FlushRange(%d, %d, %d, %d) = (%d, %d), want (%d, %d)",
				c.offset, c.size, c.atom, c.allocation, off, size, c.wantOffset, c.wantSize)
		}
	}
}
