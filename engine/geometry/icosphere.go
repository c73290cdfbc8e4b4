package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Subdivision levels above this would overflow uint16 indices.
const MaxIcosphereSubdivisions = 6

// Icosphere returns a sphere built by repeatedly splitting the faces of an
// icosahedron and pushing the new vertices onto the sphere. Normals are the
// normalized positions; uvs are spherical.
func Icosphere(radius float32, subdivisions int) Mesh {
	if subdivisions < 0 {
		subdivisions = 0
	}
	if subdivisions > MaxIcosphereSubdivisions {
		subdivisions = MaxIcosphereSubdivisions
	}

	t := float32((1.0 + math.Sqrt(5.0)) / 2.0)
	positions := []mgl32.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	for i := range positions {
		positions[i] = positions[i].Normalize()
	}
	faces := [][3]uint32{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}

	for s := 0; s < subdivisions; s++ {
		midpoints := make(map[[2]uint32]uint32)
		midpoint := func(a, b uint32) uint32 {
			key := [2]uint32{a, b}
			if a > b {
				key = [2]uint32{b, a}
			}
			if idx, ok := midpoints[key]; ok {
				return idx
			}
			p := positions[a].Add(positions[b]).Mul(0.5).Normalize()
			positions = append(positions, p)
			idx := uint32(len(positions) - 1)
			midpoints[key] = idx
			return idx
		}

		next := make([][3]uint32, 0, len(faces)*4)
		for _, f := range faces {
			ab := midpoint(f[0], f[1])
			bc := midpoint(f[1], f[2])
			ca := midpoint(f[2], f[0])
			next = append(next,
				[3]uint32{f[0], ab, ca},
				[3]uint32{f[1], bc, ab},
				[3]uint32{f[2], ca, bc},
				[3]uint32{ab, bc, ca},
			)
		}
		faces = next
	}

	b := &builder{}
	for _, p := range positions {
		u := 0.5 + float32(math.Atan2(float64(p.Z()), float64(p.X())))/(2*math.Pi)
		v := 0.5 - float32(math.Asin(float64(mgl32.Clamp(p.Y(), -1, 1))))/math.Pi
		b.vertex(p.Mul(radius), p, mgl32.Vec2{u, v})
	}
	for _, f := range faces {
		b.triangle(uint16(f[0]), uint16(f[1]), uint16(f[2]))
	}
	return b.mesh("icosphere")
}
