package geometry

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func checkMesh(t *testing.T, m Mesh, wantVertices, wantIndices int) {
	t.Helper()
	if len(m.Vertices) != wantVertices {
		t.Errorf("%s: %d vertices, want %d", m.Name, len(m.Vertices), wantVertices)
	}
	if len(m.Indices) != wantIndices {
		t.Errorf("%s: %d indices, want %d", m.Name, len(m.Indices), wantIndices)
	}
	if len(m.Indices)%3 != 0 {
		t.Errorf("%s: index count %d is not a triangle list", m.Name, len(m.Indices))
	}
	for _, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			t.Fatalf("%s: index %d out of range", m.Name, idx)
		}
	}
	for i, v := range m.Vertices {
		if l := v.Normal.Len(); math.Abs(float64(l-1)) > 1e-4 {
			t.Fatalf("%s: vertex %d normal length %f", m.Name, i, l)
		}
	}
}

func TestCube(t *testing.T) {
	m := Cube(2)
	checkMesh(t, m, 24, 36)
	for _, v := range m.Vertices {
		for i := 0; i < 3; i++ {
			if c := float32(math.Abs(float64(v.Position[i]))); c > 1.0001 {
				t.Fatalf("vertex %v lies outside the cube", v.Position)
			}
		}
		// Every vertex sits on the face its normal points out of.
		if d := v.Position.Dot(v.Normal); math.Abs(float64(d-1)) > 1e-5 {
			t.Fatalf("vertex %v is not on the face with normal %v", v.Position, v.Normal)
		}
	}
}

func TestIcosphere(t *testing.T) {
	checkMesh(t, Icosphere(1, 0), 12, 60)
	m := Icosphere(0.5, 2)
	checkMesh(t, m, 162, 960)
	for _, v := range m.Vertices {
		if l := v.Position.Len(); math.Abs(float64(l-0.5)) > 1e-4 {
			t.Fatalf("vertex %v is not on the sphere (len %f)", v.Position, l)
		}
	}
	big := Icosphere(1, 99)
	if len(big.Vertices) > MaxMeshVertices {
		t.Errorf("subdivisions should be clamped, got %d vertices", len(big.Vertices))
	}
}

func TestHexagon(t *testing.T) {
	m := Hexagon(1, 2)
	checkMesh(t, m, 38, 72)
	top := 0
	for _, v := range m.Vertices {
		if v.Normal.ApproxEqual(mgl32.Vec3{0, 1, 0}) {
			top++
			if v.Position.Y() != 1 {
				t.Errorf("top cap vertex at y=%f", v.Position.Y())
			}
		}
	}
	if top != 7 {
		t.Errorf("top cap has %d vertices, want 7", top)
	}
}

func TestMeshBytes(t *testing.T) {
	m := Mesh{
		Vertices: []Vertex{{Position: mgl32.Vec3{1, 2, 3}, Normal: mgl32.Vec3{0, 1, 0}, UV: mgl32.Vec2{0.25, 0.75}}},
		Indices:  []uint16{0, 0, 0x0102},
	}
	vb := m.VertexBytes()
	if len(vb) != VertexSize {
		t.Fatalf("vertex bytes = %d, want %d", len(vb), VertexSize)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(vb[8:])); got != 3 {
		t.Errorf("position.z = %f, want 3", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(vb[28:])); got != 0.75 {
		t.Errorf("uv.y = %f, want 0.75", got)
	}

	ib := m.IndexBytes()
	if len(ib) != 3*IndexSize || ib[4] != 0x02 || ib[5] != 0x01 {
		t.Errorf("unexpected index bytes %v", ib)
	}
}
