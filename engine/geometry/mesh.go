package geometry

import (
	"bytes"
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the per-vertex layout consumed by binding 0 of every graphics
// pipeline: position, normal and texture coordinate, 32 bytes tightly packed.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

const (
	VertexSize = 32
	IndexSize  = 2
	// Indices are half-words, so a single mesh addresses at most this many vertices.
	MaxMeshVertices = 1 << 16
)

// Mesh is CPU side geometry ready to be copied into the global vertex and
// index buffers.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint16
}

func (m *Mesh) VertexCount() uint32 { return uint32(len(m.Vertices)) }
func (m *Mesh) IndexCount() uint32  { return uint32(len(m.Indices)) }

// VertexBytes returns the little-endian packed vertex data.
func (m *Mesh) VertexBytes() []byte {
	buf := &bytes.Buffer{}
	buf.Grow(len(m.Vertices) * VertexSize)
	// Writing fixed-size values into a bytes.Buffer cannot fail.
	_ = binary.Write(buf, binary.LittleEndian, m.Vertices)
	return buf.Bytes()
}

// IndexBytes returns the little-endian packed uint16 index data.
func (m *Mesh) IndexBytes() []byte {
	out := make([]byte, len(m.Indices)*IndexSize)
	for i, idx := range m.Indices {
		binary.LittleEndian.PutUint16(out[i*IndexSize:], idx)
	}
	return out
}

// builder de-duplicates nothing; generators push faces directly.
type builder struct {
	vertices []Vertex
	indices  []uint16
}

func (b *builder) vertex(p, n mgl32.Vec3, uv mgl32.Vec2) uint16 {
	b.vertices = append(b.vertices, Vertex{Position: p, Normal: n, UV: uv})
	return uint16(len(b.vertices) - 1)
}

func (b *builder) triangle(i0, i1, i2 uint16) {
	b.indices = append(b.indices, i0, i1, i2)
}

func (b *builder) quad(i0, i1, i2, i3 uint16) {
	b.triangle(i0, i1, i2)
	b.triangle(i0, i2, i3)
}

func (b *builder) mesh(name string) Mesh {
	return Mesh{Name: name, Vertices: b.vertices, Indices: b.indices}
}
