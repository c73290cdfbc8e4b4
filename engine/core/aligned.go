package core

import "unsafe"

// AlignedAlloc returns a zeroed slice of length size whose first byte sits on
// an align boundary. align must be a power of two.
func AlignedAlloc(size, align uint64) []byte {
	if align <= 1 {
		return make([]byte, size)
	}
	raw := make([]byte, size+align-1)
	addr := uint64(uintptr(unsafe.Pointer(unsafe.SliceData(raw))))
	shift := (align - addr&(align-1)) & (align - 1)
	return raw[shift : shift+size : shift+size]
}

// IsAligned reports whether the first byte of b sits on an align boundary.
func IsAligned(b []byte, align uint64) bool {
	if len(b) == 0 || align <= 1 {
		return true
	}
	return uint64(uintptr(unsafe.Pointer(unsafe.SliceData(b))))&(align-1) == 0
}
