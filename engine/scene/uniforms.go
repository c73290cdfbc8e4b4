package scene

import (
	"bytes"
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"
)

// Records below are laid out for std140 (uniform) and std430 (storage)
// blocks: every member is a vec4 or mat4, so both layouts agree with the
// tight Go packing.

const (
	SceneUniformsSize    = 416
	ObjectUniformSize    = 64
	MaterialOverrideSize = 32
	ComputeParamsSize    = 16
	InstanceRecordSize   = 112
	LightSize            = 64
)

// SceneUniforms is bound at set 0, binding 0.
type SceneUniforms struct {
	View      mgl32.Mat4
	Proj      mgl32.Mat4
	CameraPos mgl32.Vec4
	// x = accumulated seconds, y = delta seconds, z = light count.
	Time   mgl32.Vec4
	Lights [MaxLights]Light
}

// ObjectUniform is slot i of the first dynamic buffer of set 2.
type ObjectUniform struct {
	Model mgl32.Mat4
}

// MaterialOverride is slot i of the second dynamic buffer of set 2.
type MaterialOverride struct {
	BaseColor mgl32.Vec4
	Specular  mgl32.Vec4
}

// ComputeParams is bound at set 3, binding 1.
type ComputeParams struct {
	DeltaTime float32
	Time      float32
	Count     uint32
	_         uint32
}

// InstanceRecord is one element of an instance buffer. It is read as
// per-instance vertex input (binding 1, locations 3 to 9) and written by the
// particle compute shader.
type InstanceRecord struct {
	// xyz position, w unused.
	Position mgl32.Vec4
	// xyz euler angles in radians, w unused.
	Rotation mgl32.Vec4
	// xyz scale, w unused.
	Scale mgl32.Vec4
	// xyz velocity in units per second, w unused.
	Speed mgl32.Vec4
	// xyz jitter amplitude, w phase.
	Jitter    mgl32.Vec4
	BaseColor mgl32.Vec4
	Specular  mgl32.Vec4
}

// Pack encodes a fixed-size record little-endian.
func Pack(v any) []byte {
	buf := &bytes.Buffer{}
	// Every record is fixed size, binary.Write into a bytes.Buffer cannot fail.
	if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
