package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type AnimationFlags uint32

const (
	AnimateCamera AnimationFlags = 1 << iota
	AnimateObjects
	AnimateLights
)

const (
	cameraOrbitSpeed float32 = 0.25
	lightOrbitSpeed  float32 = 0.8
)

func (f AnimationFlags) Has(flag AnimationFlags) bool {
	return f&flag != 0
}

// orbitY rotates p around the vertical axis through center.
func orbitY(p, center mgl32.Vec3, angle float32) mgl32.Vec3 {
	s, c := math.Sincos(float64(angle))
	d := p.Sub(center)
	x := d.X()*float32(c) - d.Z()*float32(s)
	z := d.X()*float32(s) + d.Z()*float32(c)
	return mgl32.Vec3{center.X() + x, p.Y(), center.Z() + z}
}

func animateCamera(c *Camera, dt float32) {
	c.Position = orbitY(c.Position, c.Target, cameraOrbitSpeed*dt)
}

func animateObjects(objects []*Object, dt float32) {
	for _, o := range objects {
		o.Rotation = float32(math.Mod(float64(o.Rotation+o.Spin*dt), 2*math.Pi))
	}
}

func animateLights(lights []Light, dt float32) {
	for i := range lights {
		if lights[i].Type() == LightDirectional {
			continue
		}
		p := orbitY(lights[i].Position.Vec3(), mgl32.Vec3{}, lightOrbitSpeed*dt)
		lights[i].Position = p.Vec4(1)
	}
}
