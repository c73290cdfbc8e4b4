package scene

import (
	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/core"
	"github.com/droune2001/vulkan-sub000/engine/math"
)

// DynamicSlots is the host shadow of a dynamic uniform buffer: capacity
// records of recordSize bytes, each starting on an Alignment() boundary so
// that slot i can be bound with dynamic offset i*Alignment().
type DynamicSlots struct {
	recordSize uint64
	alignment  uint64
	capacity   uint32
	shadow     []byte
}

// NewDynamicSlots sizes the shadow for capacity records. minAlign is the
// device's minUniformBufferOffsetAlignment; zero means records are packed.
func NewDynamicSlots(recordSize, minAlign uint64, capacity uint32) *DynamicSlots {
	alignment := recordSize
	if minAlign > 0 {
		alignment = math.AlignUp(recordSize, minAlign)
	}
	hostAlign := uint64(16)
	if math.IsPowerOfTwo(minAlign) && minAlign > hostAlign {
		hostAlign = minAlign
	}
	return &DynamicSlots{
		recordSize: recordSize,
		alignment:  alignment,
		capacity:   capacity,
		shadow:     core.AlignedAlloc(alignment*uint64(capacity), hostAlign),
	}
}

func (d *DynamicSlots) Alignment() uint64  { return d.alignment }
func (d *DynamicSlots) RecordSize() uint64 { return d.recordSize }
func (d *DynamicSlots) Capacity() uint32   { return d.capacity }

// Size is the byte size of the whole buffer.
func (d *DynamicSlots) Size() uint64 {
	return d.alignment * uint64(d.capacity)
}

// Offset is the dynamic offset of slot i.
func (d *DynamicSlots) Offset(i uint32) uint32 {
	return uint32(uint64(i) * d.alignment)
}

// Put copies one record into slot i.
func (d *DynamicSlots) Put(i uint32, record []byte) error {
	if i >= d.capacity {
		return errors.Wrapf(core.ErrCapacityExceeded, "dynamic slot %d of %d", i, d.capacity)
	}
	if uint64(len(record)) > d.recordSize {
		return errors.Newf("record of %d bytes does not fit a %d byte slot", len(record), d.recordSize)
	}
	start := uint64(d.Offset(i))
	copy(d.shadow[start:start+d.recordSize], record)
	return nil
}

// Bytes returns the whole shadow, ready to be copied into the mapped buffer.
func (d *DynamicSlots) Bytes() []byte {
	return d.shadow
}
