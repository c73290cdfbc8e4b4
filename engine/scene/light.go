package scene

import "github.com/go-gl/mathgl/mgl32"

// Matches the capacity of the light array in the scene uniform block.
const MaxLights = 4

type LightType float32

const (
	LightDirectional LightType = 0
	LightPoint       LightType = 1
	LightSpot        LightType = 2
)

// Light is one entry of the scene uniform light array.
type Light struct {
	Position mgl32.Vec4
	// rgb color, a intensity.
	Color mgl32.Vec4
	// xyz direction, w LightType.
	Direction mgl32.Vec4
	// x range, y inner cone cosine, z outer cone cosine.
	Properties mgl32.Vec4
}

func NewPointLight(position mgl32.Vec3, color mgl32.Vec3, intensity, lightRange float32) Light {
	return Light{
		Position:   position.Vec4(1),
		Color:      color.Vec4(intensity),
		Direction:  mgl32.Vec4{0, -1, 0, float32(LightPoint)},
		Properties: mgl32.Vec4{lightRange, 0, 0, 0},
	}
}

func NewDirectionalLight(direction mgl32.Vec3, color mgl32.Vec3, intensity float32) Light {
	return Light{
		Color:     color.Vec4(intensity),
		Direction: direction.Normalize().Vec4(float32(LightDirectional)),
	}
}

func (l Light) Type() LightType {
	return LightType(l.Direction.W())
}
