package scene

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/core"
	"github.com/droune2001/vulkan-sub000/engine/geometry"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

func testLimits() Limits {
	return Limits{
		MaxObjects:      4,
		MaxMaterials:    3,
		MaxInstanceSets: 2,
		MaxLights:       MaxLights,
		MaxVertices:     1024,
		MaxIndices:      4096,
	}
}

func TestRecordSizes(t *testing.T) {
	cases := []struct {
		name string
		v    any
		want int
	}{
		{"SceneUniforms", SceneUniforms{}, SceneUniformsSize},
		{"ObjectUniform", ObjectUniform{}, ObjectUniformSize},
		{"MaterialOverride", MaterialOverride{}, MaterialOverrideSize},
		{"ComputeParams", ComputeParams{}, ComputeParamsSize},
		{"InstanceRecord", InstanceRecord{}, InstanceRecordSize},
		{"Light", Light{}, LightSize},
		{"Vertex", geometry.Vertex{}, geometry.VertexSize},
	}
	for _, c := range cases {
		if got := binary.Size(c.v); got != c.want {
			t.Errorf("%s is %d bytes, want %d", c.name, got, c.want)
		}
		if got := len(Pack(c.v)); got != c.want {
			t.Errorf("Pack(%s) is %d bytes, want %d", c.name, got, c.want)
		}
	}
}

func TestMeshArenaRangesNeverOverlap(t *testing.T) {
	a := NewMeshArena(100, 300)
	sizes := [][2]uint32{{24, 36}, {12, 60}, {38, 72}}
	for _, s := range sizes {
		if _, err := a.Allocate(s[0], s[1]); err != nil {
			t.Fatalf("allocate %v: %v", s, err)
		}
	}
	recs := a.Records()
	for i := 1; i < len(recs); i++ {
		prev, cur := recs[i-1], recs[i]
		if cur.VertexOffset != prev.VertexOffset+uint64(prev.VertexCount)*geometry.VertexSize {
			t.Errorf("vertex range %d does not follow range %d", i, i-1)
		}
		if cur.IndexOffset != prev.IndexOffset+uint64(prev.IndexCount)*geometry.IndexSize {
			t.Errorf("index range %d does not follow range %d", i, i-1)
		}
	}

	used := a.VertexUsed()
	if _, err := a.Allocate(100, 1); !errors.Is(err, core.ErrCapacityExceeded) {
		t.Fatalf("expected capacity error, got %v", err)
	}
	if a.VertexUsed() != used {
		t.Error("a failed allocation must not move the cursor")
	}
	// The remaining room is still usable.
	if _, err := a.Allocate(26, 1); err != nil {
		t.Errorf("allocation filling the buffer exactly failed: %v", err)
	}
}

func TestDynamicSlotsOffsets(t *testing.T) {
	d := NewDynamicSlots(ObjectUniformSize, 256, 8)
	if d.Alignment() != 256 {
		t.Fatalf("alignment = %d, want 256", d.Alignment())
	}
	if d.Size() != 8*256 {
		t.Errorf("size = %d", d.Size())
	}
	for i := uint32(0); i < d.Capacity(); i++ {
		if d.Offset(i) != i*256 {
			t.Errorf("offset(%d) = %d", i, d.Offset(i))
		}
		if uint64(d.Offset(i))+d.RecordSize() > d.Size() {
			t.Errorf("slot %d overflows the buffer", i)
		}
	}
	if !core.IsAligned(d.Bytes(), 256) {
		t.Error("host shadow is not aligned to the device alignment")
	}

	rec := bytes.Repeat([]byte{0xAB}, ObjectUniformSize)
	if err := d.Put(3, rec); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(d.Bytes()[768:768+64], rec) {
		t.Error("slot 3 does not hold the record")
	}
	if d.Bytes()[768+64] != 0 {
		t.Error("record spilled into padding")
	}
	if err := d.Put(8, rec); !errors.Is(err, core.ErrCapacityExceeded) {
		t.Errorf("expected capacity error for slot 8, got %v", err)
	}

	packed := NewDynamicSlots(MaterialOverrideSize, 0, 4)
	if packed.Alignment() != MaterialOverrideSize {
		t.Errorf("zero device alignment should pack records, got %d", packed.Alignment())
	}
	odd := NewDynamicSlots(MaterialOverrideSize, 48, 4)
	if odd.Alignment() != 48 {
		t.Errorf("alignment = %d, want 48", odd.Alignment())
	}
}

func TestSceneObjectsAndMaterials(t *testing.T) {
	s := NewScene(testLimits())
	cube, err := s.AddMesh(geometry.Cube(1))
	if err != nil {
		t.Fatal(err)
	}
	sphere, err := s.AddMesh(geometry.Icosphere(1, 1))
	if err != nil {
		t.Fatal(err)
	}
	if sphere.VertexOffset != uint64(cube.VertexCount)*geometry.VertexSize {
		t.Errorf("second mesh vertex offset = %d", sphere.VertexOffset)
	}

	red, err := s.AddMaterial("red", SolidTexture(255, 0, 0, 255), SolidTexture(0, 0, 0, 255))
	if err != nil {
		t.Fatal(err)
	}
	base := mgl32.Vec4{0.8, 0.8, 0.8, 1}
	spec := mgl32.Vec4{0.04, 0.04, 0.04, 1}

	o0, _ := s.AddObject(sphere.ID, red.ID, base, spec)
	o1, _ := s.AddObject(cube.ID, uuid.Nil, base, spec)
	o2, _ := s.AddObject(cube.ID, red.ID, base, spec)
	if o0.Index != 0 || o1.Index != 1 || o2.Index != 2 {
		t.Fatalf("slot indices %d %d %d", o0.Index, o1.Index, o2.Index)
	}
	if o1.Material != s.DefaultMaterial() {
		t.Error("nil material should resolve to the default material")
	}

	batches := s.ObjectsByMaterial()
	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2", len(batches))
	}
	if batches[0].Material.ID != s.DefaultMaterial() || len(batches[0].Objects) != 1 {
		t.Errorf("first batch should be the default material with one object")
	}
	if batches[1].Material.ID != red.ID || len(batches[1].Objects) != 2 {
		t.Errorf("second batch should be red with two objects")
	}

	if _, err := s.AddObject(99, red.ID, base, spec); !errors.Is(err, core.ErrUnknownMesh) {
		t.Errorf("expected unknown mesh, got %v", err)
	}
	if _, err := s.AddObject(cube.ID, uuid.New(), base, spec); !errors.Is(err, core.ErrUnknownMaterial) {
		t.Errorf("expected unknown material, got %v", err)
	}
	s.AddObject(cube.ID, red.ID, base, spec)
	if _, err := s.AddObject(cube.ID, red.ID, base, spec); !errors.Is(err, core.ErrCapacityExceeded) {
		t.Errorf("expected capacity error on the fifth object, got %v", err)
	}

	if got := len(s.TakePendingMeshes()); got != 2 {
		t.Errorf("pending meshes = %d, want 2", got)
	}
	if got := len(s.TakePendingMeshes()); got != 0 {
		t.Errorf("pending meshes should drain, got %d", got)
	}
	if got := len(s.TakePendingMaterials()); got != 2 {
		t.Errorf("pending materials = %d, want 2", got)
	}
}

func TestInstanceSetBounds(t *testing.T) {
	s := NewScene(testLimits())
	cube, _ := s.AddMesh(geometry.Cube(1))

	set, err := s.AddInstanceSet("particles", cube.ID, 3)
	if err != nil {
		t.Fatal(err)
	}
	if set.DrawCount() != 0 {
		t.Errorf("empty set draws %d instances", set.DrawCount())
	}
	for i := 0; i < 3; i++ {
		slot, err := s.AddObjectToInstanceSet(InstanceRecord{Position: mgl32.Vec4{float32(i), 0, 0, 1}}, "particles")
		if err != nil || slot != uint32(i) {
			t.Fatalf("add %d: slot %d err %v", i, slot, err)
		}
	}
	if _, err := s.AddObjectToInstanceSet(InstanceRecord{}, "particles"); !errors.Is(err, core.ErrCapacityExceeded) {
		t.Errorf("expected capacity error, got %v", err)
	}
	if set.DrawCount() != set.Capacity {
		t.Errorf("full set draws %d, want %d", set.DrawCount(), set.Capacity)
	}
	if uint64(len(set.Bytes())) != set.BufferSize() {
		t.Errorf("full set packs %d bytes, buffer is %d", len(set.Bytes()), set.BufferSize())
	}
	if !set.Dirty() {
		t.Error("set should be dirty after adds")
	}

	if _, err := s.AddObjectToInstanceSet(InstanceRecord{}, "missing"); !errors.Is(err, core.ErrUnknownInstanceSet) {
		t.Errorf("expected unknown instance set, got %v", err)
	}
	if _, err := s.AddInstanceSet("particles", cube.ID, 3); err == nil {
		t.Error("duplicate instance set id should be refused")
	}
	anon, err := s.AddInstanceSet("", cube.ID, 1)
	if err != nil || anon.ID == "" {
		t.Errorf("empty id should be generated, got %q err %v", anon.ID, err)
	}
	if _, err := s.AddInstanceSet("third", cube.ID, 1); !errors.Is(err, core.ErrCapacityExceeded) {
		t.Errorf("expected capacity error, got %v", err)
	}
}

func TestUpdateWritesSlotsDeterministically(t *testing.T) {
	s := NewScene(testLimits())
	s.ConfigureSlots(256)
	cube, _ := s.AddMesh(geometry.Cube(1))
	o, _ := s.AddObject(cube.ID, uuid.Nil, mgl32.Vec4{1, 0, 0, 1}, mgl32.Vec4{0.5, 0.5, 0.5, 1})
	o.Position = mgl32.Vec3{1, 2, 3}
	s.AddLight(NewPointLight(mgl32.Vec3{2, 2, 0}, mgl32.Vec3{1, 1, 1}, 1, 10))

	if err := s.Update(1.0/60.0, 1); err != nil {
		t.Fatal(err)
	}
	models := append([]byte(nil), s.ModelSlots().Bytes()...)
	uniforms := s.SceneUniforms(16.0/9.0, 1, 1.0/60.0)

	if err := s.Update(1.0/60.0, 1); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(models, s.ModelSlots().Bytes()) {
		t.Error("model slots differ between two identical updates")
	}
	if !bytes.Equal(uniforms, s.SceneUniforms(16.0/9.0, 1, 1.0/60.0)) {
		t.Error("scene uniforms differ between two identical packs")
	}

	// Translation lives in the last column of the model matrix.
	tx := math.Float32frombits(binary.LittleEndian.Uint32(models[48:]))
	ty := math.Float32frombits(binary.LittleEndian.Uint32(models[52:]))
	if tx != 1 || ty != 2 {
		t.Errorf("model translation = (%f, %f), want (1, 2)", tx, ty)
	}
	override := s.MaterialOverrideSlots().Bytes()
	if r := math.Float32frombits(binary.LittleEndian.Uint32(override[0:])); r != 1 {
		t.Errorf("base color red = %f", r)
	}

	// Light count sits in Time.z.
	lightCount := math.Float32frombits(binary.LittleEndian.Uint32(uniforms[128+16+8:]))
	if lightCount != 1 {
		t.Errorf("light count = %f, want 1", lightCount)
	}
}

func TestProjectionFlipsY(t *testing.T) {
	c := DefaultCamera()
	c.Position = mgl32.Vec3{0, 0, 5}
	c.Target = mgl32.Vec3{}
	vp := c.Projection(1).Mul4(c.View())

	up := vp.Mul4x1(mgl32.Vec4{0, 1, 0, 1})
	if up.Y()/up.W() >= 0 {
		t.Errorf("a point above the target should land in the upper half (negative y), got %f", up.Y()/up.W())
	}
	near := vp.Mul4x1(mgl32.Vec4{0, 0, 5 - c.Near, 1})
	if d := near.Z() / near.W(); math.Abs(float64(d)) > 1e-4 {
		t.Errorf("near plane depth = %f, want 0", d)
	}
	far := vp.Mul4x1(mgl32.Vec4{0, 0, 5 - c.Far, 1})
	if d := far.Z() / far.W(); math.Abs(float64(d-1)) > 1e-3 {
		t.Errorf("far plane depth = %f, want 1", d)
	}
}

func TestAnimatorsKeepOrbitRadius(t *testing.T) {
	s := NewScene(testLimits())
	s.Animation = AnimateCamera | AnimateLights | AnimateObjects
	start := s.Camera()
	s.AddLight(NewPointLight(mgl32.Vec3{3, 1, 0}, mgl32.Vec3{1, 1, 1}, 1, 10))
	s.AddLight(NewDirectionalLight(mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 1, 1}, 1))

	for i := 0; i < 100; i++ {
		s.Update(0.05, float64(i)*0.05)
	}

	radius := func(p, c mgl32.Vec3) float32 {
		d := p.Sub(c)
		return mgl32.Vec2{d.X(), d.Z()}.Len()
	}
	cam := s.Camera()
	if cam.Position.ApproxEqualThreshold(start.Position, 1e-3) {
		t.Error("camera did not move")
	}
	if d := radius(cam.Position, cam.Target) - radius(start.Position, start.Target); math.Abs(float64(d)) > 1e-3 {
		t.Errorf("camera orbit radius drifted by %f", d)
	}
	if cam.Position.Y() != start.Position.Y() {
		t.Error("camera orbit should keep its height")
	}

	l := s.Lights()[0]
	if d := radius(l.Position.Vec3(), mgl32.Vec3{}) - 3; math.Abs(float64(d)) > 1e-3 {
		t.Errorf("light orbit radius drifted by %f", d)
	}
	if s.Lights()[1].Position != (mgl32.Vec4{}) {
		t.Error("directional lights should not move")
	}
}
