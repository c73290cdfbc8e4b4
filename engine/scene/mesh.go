package scene

import (
	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/core"
	"github.com/droune2001/vulkan-sub000/engine/geometry"
)

// MeshRecord locates one mesh inside the global vertex and index buffers.
// Offsets are in bytes.
type MeshRecord struct {
	ID           uint32
	Name         string
	VertexCount  uint32
	IndexCount   uint32
	VertexOffset uint64
	IndexOffset  uint64
}

// MeshArena bump-allocates byte ranges in the global vertex and index
// buffers. Meshes are append-only: cursors never move backwards, so ranges
// never overlap.
type MeshArena struct {
	vertexCapacity uint64
	indexCapacity  uint64
	vertexCursor   uint64
	indexCursor    uint64
	records        []MeshRecord
}

func NewMeshArena(maxVertices, maxIndices uint32) *MeshArena {
	return &MeshArena{
		vertexCapacity: uint64(maxVertices) * geometry.VertexSize,
		indexCapacity:  uint64(maxIndices) * geometry.IndexSize,
	}
}

// Allocate reserves room for vertexCount vertices and indexCount indices.
func (a *MeshArena) Allocate(vertexCount, indexCount uint32) (MeshRecord, error) {
	vsize := uint64(vertexCount) * geometry.VertexSize
	isize := uint64(indexCount) * geometry.IndexSize
	if a.vertexCursor+vsize > a.vertexCapacity {
		return MeshRecord{}, errors.Wrapf(core.ErrCapacityExceeded,
			"vertex buffer: %d bytes requested, %d of %d used", vsize, a.vertexCursor, a.vertexCapacity)
	}
	if a.indexCursor+isize > a.indexCapacity {
		return MeshRecord{}, errors.Wrapf(core.ErrCapacityExceeded,
			"index buffer: %d bytes requested, %d of %d used", isize, a.indexCursor, a.indexCapacity)
	}

	rec := MeshRecord{
		ID:           uint32(len(a.records)),
		VertexCount:  vertexCount,
		IndexCount:   indexCount,
		VertexOffset: a.vertexCursor,
		IndexOffset:  a.indexCursor,
	}
	a.vertexCursor += vsize
	a.indexCursor += isize
	a.records = append(a.records, rec)
	return rec, nil
}

func (a *MeshArena) VertexCapacity() uint64 { return a.vertexCapacity }
func (a *MeshArena) IndexCapacity() uint64  { return a.indexCapacity }
func (a *MeshArena) VertexUsed() uint64     { return a.vertexCursor }
func (a *MeshArena) IndexUsed() uint64      { return a.indexCursor }

// Records returns every allocation in allocation order.
func (a *MeshArena) Records() []MeshRecord {
	return a.records
}
