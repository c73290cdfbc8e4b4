package scene

import "github.com/go-gl/mathgl/mgl32"

type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	// Vertical field of view in degrees.
	FovY float32
	Near float32
	Far  float32
}

func DefaultCamera() Camera {
	return Camera{
		Position: mgl32.Vec3{0, 2, 6},
		Target:   mgl32.Vec3{0, 0, 0},
		Up:       mgl32.Vec3{0, 1, 0},
		FovY:     60,
		Near:     0.1,
		Far:      100,
	}
}

func (c Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// Projection returns a right handed perspective matrix for Vulkan clip space:
// Y points down and depth maps to [0, 1].
func (c Camera) Projection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	p := mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
	// Remap depth from [-1, 1] to [0, 1].
	clip := mgl32.Mat4{
		1, 0, 0, 0,
		0, -1, 0, 0,
		0, 0, 0.5, 0,
		0, 0, 0.5, 1,
	}
	return clip.Mul4(p)
}
