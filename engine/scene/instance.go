package scene

import (
	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/core"
)

// InstanceSet is a mesh drawn once per record of a bounded instance buffer.
// The GPU buffer is both per-instance vertex input and a compute storage
// buffer.
type InstanceSet struct {
	ID       string
	Mesh     MeshRecord
	Capacity uint32
	Records  []InstanceRecord

	// Index among the scene's instance sets, also the set 3 descriptor index.
	Index uint32
	dirty bool
}

func newInstanceSet(id string, mesh MeshRecord, capacity, index uint32) *InstanceSet {
	return &InstanceSet{
		ID:       id,
		Mesh:     mesh,
		Capacity: capacity,
		Records:  make([]InstanceRecord, 0, capacity),
		Index:    index,
	}
}

// Add writes rec at slot Count() and returns that slot.
func (s *InstanceSet) Add(rec InstanceRecord) (uint32, error) {
	if uint32(len(s.Records)) >= s.Capacity {
		return 0, errors.Wrapf(core.ErrCapacityExceeded, "instance set %q holds %d instances", s.ID, s.Capacity)
	}
	s.Records = append(s.Records, rec)
	s.dirty = true
	return uint32(len(s.Records) - 1), nil
}

func (s *InstanceSet) Count() uint32 {
	return uint32(len(s.Records))
}

// DrawCount is the number of instances a draw may read.
func (s *InstanceSet) DrawCount() uint32 {
	return min(s.Count(), s.Capacity)
}

// BufferSize is the byte size of the GPU instance buffer.
func (s *InstanceSet) BufferSize() uint64 {
	return uint64(s.Capacity) * InstanceRecordSize
}

// Bytes packs the live records.
func (s *InstanceSet) Bytes() []byte {
	return Pack(s.Records)
}

// Dirty reports whether CPU records changed since the last upload.
func (s *InstanceSet) Dirty() bool { return s.dirty }

func (s *InstanceSet) ClearDirty() { s.dirty = false }
