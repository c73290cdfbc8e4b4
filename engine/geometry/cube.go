package geometry

import "github.com/go-gl/mathgl/mgl32"

// Cube returns an axis aligned cube centered on the origin with flat normals.
// Each face has its own four vertices so normals and uvs do not bleed.
func Cube(size float32) Mesh {
	h := size * 0.5
	faces := []struct {
		normal, u, v mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	}

	b := &builder{}
	for _, f := range faces {
		c := f.normal.Mul(h)
		u := f.u.Mul(h)
		v := f.v.Mul(h)
		i0 := b.vertex(c.Sub(u).Sub(v), f.normal, mgl32.Vec2{0, 1})
		i1 := b.vertex(c.Add(u).Sub(v), f.normal, mgl32.Vec2{1, 1})
		i2 := b.vertex(c.Add(u).Add(v), f.normal, mgl32.Vec2{1, 0})
		i3 := b.vertex(c.Sub(u).Add(v), f.normal, mgl32.Vec2{0, 0})
		b.quad(i0, i1, i2, i3)
	}
	return b.mesh("cube")
}
