package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Object is one opaque draw. Index selects its slot in the two dynamic
// uniform buffers of set 2.
type Object struct {
	Index     uint32
	Mesh      MeshRecord
	Material  uuid.UUID
	BaseColor mgl32.Vec4
	Specular  mgl32.Vec4
	Position  mgl32.Vec3
	// Rotation about Y in radians.
	Rotation float32
	Scale    float32
	// Radians per second applied by the object animator.
	Spin float32
}

func (o *Object) Model() mgl32.Mat4 {
	return mgl32.Translate3D(o.Position.X(), o.Position.Y(), o.Position.Z()).
		Mul4(mgl32.HomogRotate3DY(o.Rotation)).
		Mul4(mgl32.Scale3D(o.Scale, o.Scale, o.Scale))
}

func (o *Object) uniform() ObjectUniform {
	return ObjectUniform{Model: o.Model()}
}

func (o *Object) override() MaterialOverride {
	return MaterialOverride{BaseColor: o.BaseColor, Specular: o.Specular}
}
