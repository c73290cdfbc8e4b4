package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Hexagon returns a hexagonal prism standing on the XZ plane, centered on the
// origin, with flat caps and flat sides.
func Hexagon(radius, height float32) Mesh {
	h := height * 0.5
	ring := make([]mgl32.Vec3, 6)
	for i := range ring {
		a := float64(i) * math.Pi / 3
		ring[i] = mgl32.Vec3{radius * float32(math.Cos(a)), 0, radius * float32(math.Sin(a))}
	}

	b := &builder{}

	for _, lid := range []struct {
		y float32
		n mgl32.Vec3
	}{{h, mgl32.Vec3{0, 1, 0}}, {-h, mgl32.Vec3{0, -1, 0}}} {
		center := b.vertex(mgl32.Vec3{0, lid.y, 0}, lid.n, mgl32.Vec2{0.5, 0.5})
		first := uint16(len(b.vertices))
		for _, p := range ring {
			uv := mgl32.Vec2{0.5 + 0.5*p.X()/radius, 0.5 + 0.5*p.Z()/radius}
			b.vertex(mgl32.Vec3{p.X(), lid.y, p.Z()}, lid.n, uv)
		}
		for i := uint16(0); i < 6; i++ {
			a, c := first+i, first+(i+1)%6
			if lid.y > 0 {
				b.triangle(center, c, a)
			} else {
				b.triangle(center, a, c)
			}
		}
	}

	for i := 0; i < 6; i++ {
		p0, p1 := ring[i], ring[(i+1)%6]
		n := p0.Add(p1).Mul(0.5).Normalize()
		i0 := b.vertex(mgl32.Vec3{p0.X(), -h, p0.Z()}, n, mgl32.Vec2{0, 1})
		i1 := b.vertex(mgl32.Vec3{p1.X(), -h, p1.Z()}, n, mgl32.Vec2{1, 1})
		i2 := b.vertex(mgl32.Vec3{p1.X(), h, p1.Z()}, n, mgl32.Vec2{1, 0})
		i3 := b.vertex(mgl32.Vec3{p0.X(), h, p0.Z()}, n, mgl32.Vec2{0, 0})
		b.quad(i0, i3, i2, i1)
	}
	return b.mesh("hexagon")
}
