package scene

import (
	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/core"
	"github.com/droune2001/vulkan-sub000/engine/geometry"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Limits bounds every catalog of the scene.
type Limits struct {
	MaxObjects      uint32
	MaxMaterials    uint32
	MaxInstanceSets uint32
	MaxLights       uint32
	MaxVertices     uint32
	MaxIndices      uint32
}

// PendingMesh is mesh data waiting to be staged into the global buffers at
// the offsets its record carries.
type PendingMesh struct {
	Record MeshRecord
	Vertex []byte
	Index  []byte
}

// MaterialBatch groups the objects drawn with one material.
type MaterialBatch struct {
	Material *Material
	Objects  []*Object
}

// Scene is the CPU side of the renderer's scene state: mesh bookkeeping,
// objects, materials, instance sets, lights, the camera and the host shadows
// of the per-object dynamic uniform buffers. It is not safe for concurrent
// use; the render loop owns it.
type Scene struct {
	limits Limits
	arena  *MeshArena

	meshes        []MeshRecord
	pendingMeshes []PendingMesh

	objects []*Object

	materials        []*Material
	materialsByID    map[uuid.UUID]*Material
	pendingMaterials []*Material
	defaultMaterial  uuid.UUID

	instanceSets     []*InstanceSet
	instanceSetsByID map[string]*InstanceSet

	lights []Light
	camera Camera

	Animation AnimationFlags

	models    *DynamicSlots
	overrides *DynamicSlots
}

func NewScene(limits Limits) *Scene {
	s := &Scene{
		limits:           limits,
		arena:            NewMeshArena(limits.MaxVertices, limits.MaxIndices),
		materialsByID:    make(map[uuid.UUID]*Material),
		instanceSetsByID: make(map[string]*InstanceSet),
		camera:           DefaultCamera(),
	}
	if limits.MaxLights > MaxLights {
		s.limits.MaxLights = MaxLights
	}
	// White base color, low specular.
	m, _ := s.AddMaterial("default", SolidTexture(255, 255, 255, 255), SolidTexture(10, 10, 10, 255))
	if m != nil {
		s.defaultMaterial = m.ID
	}
	return s
}

// ConfigureSlots sizes the per-object dynamic uniform shadows for the
// device's minimum uniform buffer offset alignment. Objects added before the
// call are written on the next Update.
func (s *Scene) ConfigureSlots(minUniformAlignment uint64) {
	s.models = NewDynamicSlots(ObjectUniformSize, minUniformAlignment, s.limits.MaxObjects)
	s.overrides = NewDynamicSlots(MaterialOverrideSize, minUniformAlignment, s.limits.MaxObjects)
}

func (s *Scene) Limits() Limits                       { return s.limits }
func (s *Scene) Arena() *MeshArena                    { return s.arena }
func (s *Scene) Objects() []*Object                   { return s.objects }
func (s *Scene) Materials() []*Material               { return s.materials }
func (s *Scene) InstanceSets() []*InstanceSet         { return s.instanceSets }
func (s *Scene) Lights() []Light                      { return s.lights }
func (s *Scene) Camera() Camera                       { return s.camera }
func (s *Scene) SetCamera(c Camera)                   { s.camera = c }
func (s *Scene) DefaultMaterial() uuid.UUID           { return s.defaultMaterial }
func (s *Scene) ModelSlots() *DynamicSlots            { return s.models }
func (s *Scene) MaterialOverrideSlots() *DynamicSlots { return s.overrides }

// AddMesh reserves room for m in the global buffers and queues its data for
// upload.
func (s *Scene) AddMesh(m geometry.Mesh) (MeshRecord, error) {
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return MeshRecord{}, errors.Newf("mesh %q is empty", m.Name)
	}
	if len(m.Vertices) > geometry.MaxMeshVertices {
		return MeshRecord{}, errors.Newf("mesh %q has %d vertices, 16 bit indices address %d",
			m.Name, len(m.Vertices), geometry.MaxMeshVertices)
	}
	rec, err := s.arena.Allocate(m.VertexCount(), m.IndexCount())
	if err != nil {
		return MeshRecord{}, errors.Wrapf(err, "mesh %q", m.Name)
	}
	rec.Name = m.Name
	s.meshes = append(s.meshes, rec)
	s.pendingMeshes = append(s.pendingMeshes, PendingMesh{
		Record: rec,
		Vertex: m.VertexBytes(),
		Index:  m.IndexBytes(),
	})
	return rec, nil
}

func (s *Scene) Mesh(id uint32) (MeshRecord, error) {
	if int(id) >= len(s.meshes) {
		return MeshRecord{}, errors.Wrapf(core.ErrUnknownMesh, "mesh %d", id)
	}
	return s.meshes[id], nil
}

// AddObject places a mesh in the scene. A nil material selects the default
// material.
func (s *Scene) AddObject(meshID uint32, material uuid.UUID, base, specular mgl32.Vec4) (*Object, error) {
	if uint32(len(s.objects)) >= s.limits.MaxObjects {
		return nil, errors.Wrapf(core.ErrCapacityExceeded, "scene holds %d objects", s.limits.MaxObjects)
	}
	mesh, err := s.Mesh(meshID)
	if err != nil {
		return nil, err
	}
	if material == uuid.Nil {
		material = s.defaultMaterial
	}
	if _, ok := s.materialsByID[material]; !ok {
		return nil, errors.Wrapf(core.ErrUnknownMaterial, "material %s", material)
	}

	o := &Object{
		Index:     uint32(len(s.objects)),
		Mesh:      mesh,
		Material:  material,
		BaseColor: base,
		Specular:  specular,
		Scale:     1,
	}
	s.objects = append(s.objects, o)
	return o, nil
}

func (s *Scene) AddMaterial(name string, base, specular Texture) (*Material, error) {
	if uint32(len(s.materials)) >= s.limits.MaxMaterials {
		return nil, errors.Wrapf(core.ErrCapacityExceeded, "scene holds %d materials", s.limits.MaxMaterials)
	}
	for _, t := range []Texture{base, specular} {
		if t.Width == 0 || t.Height == 0 || len(t.Pixels) != int(t.Width*t.Height*4) {
			return nil, errors.Newf("material %q: texture is not %dx%d RGBA", name, t.Width, t.Height)
		}
	}
	m := &Material{
		ID:        uuid.New(),
		Name:      name,
		BaseColor: base,
		Specular:  specular,
		Index:     uint32(len(s.materials)),
	}
	s.materials = append(s.materials, m)
	s.materialsByID[m.ID] = m
	s.pendingMaterials = append(s.pendingMaterials, m)
	return m, nil
}

func (s *Scene) Material(id uuid.UUID) (*Material, error) {
	m, ok := s.materialsByID[id]
	if !ok {
		return nil, errors.Wrapf(core.ErrUnknownMaterial, "material %s", id)
	}
	return m, nil
}

// AddInstanceSet publishes an empty instance set under id. An empty id gets a
// generated one.
func (s *Scene) AddInstanceSet(id string, meshID uint32, capacity uint32) (*InstanceSet, error) {
	if uint32(len(s.instanceSets)) >= s.limits.MaxInstanceSets {
		return nil, errors.Wrapf(core.ErrCapacityExceeded, "scene holds %d instance sets", s.limits.MaxInstanceSets)
	}
	if capacity == 0 {
		return nil, errors.Newf("instance set %q has zero capacity", id)
	}
	mesh, err := s.Mesh(meshID)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = uuid.NewString()
	}
	if _, ok := s.instanceSetsByID[id]; ok {
		return nil, errors.Newf("instance set %q already exists", id)
	}

	set := newInstanceSet(id, mesh, capacity, uint32(len(s.instanceSets)))
	s.instanceSets = append(s.instanceSets, set)
	s.instanceSetsByID[id] = set
	return set, nil
}

func (s *Scene) InstanceSet(id string) (*InstanceSet, error) {
	set, ok := s.instanceSetsByID[id]
	if !ok {
		return nil, errors.Wrapf(core.ErrUnknownInstanceSet, "instance set %q", id)
	}
	return set, nil
}

// AddObjectToInstanceSet appends rec to the named set and returns its slot.
func (s *Scene) AddObjectToInstanceSet(rec InstanceRecord, id string) (uint32, error) {
	set, err := s.InstanceSet(id)
	if err != nil {
		return 0, err
	}
	return set.Add(rec)
}

func (s *Scene) AddLight(l Light) error {
	if uint32(len(s.lights)) >= s.limits.MaxLights {
		return errors.Wrapf(core.ErrCapacityExceeded, "scene holds %d lights", s.limits.MaxLights)
	}
	s.lights = append(s.lights, l)
	return nil
}

// Update runs the enabled animators and refreshes the per-object slots.
func (s *Scene) Update(dt, elapsed float64) error {
	step := float32(dt)
	if s.Animation.Has(AnimateCamera) {
		animateCamera(&s.camera, step)
	}
	if s.Animation.Has(AnimateObjects) {
		animateObjects(s.objects, step)
	}
	if s.Animation.Has(AnimateLights) {
		animateLights(s.lights, step)
	}
	return s.writeSlots()
}

func (s *Scene) writeSlots() error {
	if s.models == nil || s.overrides == nil {
		return nil
	}
	for _, o := range s.objects {
		if err := s.models.Put(o.Index, Pack(o.uniform())); err != nil {
			return err
		}
		if err := s.overrides.Put(o.Index, Pack(o.override())); err != nil {
			return err
		}
	}
	return nil
}

// SceneUniforms packs the set 0 uniform block.
func (s *Scene) SceneUniforms(aspect float32, elapsed, dt float64) []byte {
	u := SceneUniforms{
		View:      s.camera.View(),
		Proj:      s.camera.Projection(aspect),
		CameraPos: s.camera.Position.Vec4(1),
		Time:      mgl32.Vec4{float32(elapsed), float32(dt), float32(len(s.lights)), 0},
	}
	copy(u.Lights[:], s.lights)
	return Pack(u)
}

// ComputeParams packs the set 3 uniform block of one instance set.
func (s *Scene) ComputeParams(set *InstanceSet, dt, elapsed float64) []byte {
	return Pack(ComputeParams{
		DeltaTime: float32(dt),
		Time:      float32(elapsed),
		Count:     set.DrawCount(),
	})
}

// ObjectsByMaterial returns the opaque draws grouped by material in material
// registration order. Materials without objects are left out.
func (s *Scene) ObjectsByMaterial() []MaterialBatch {
	batches := make([]MaterialBatch, len(s.materials))
	for i, m := range s.materials {
		batches[i].Material = m
	}
	for _, o := range s.objects {
		m := s.materialsByID[o.Material]
		batches[m.Index].Objects = append(batches[m.Index].Objects, o)
	}
	out := batches[:0]
	for _, b := range batches {
		if len(b.Objects) > 0 {
			out = append(out, b)
		}
	}
	return out
}

// TakePendingMeshes returns and forgets the meshes added since the last call.
func (s *Scene) TakePendingMeshes() []PendingMesh {
	p := s.pendingMeshes
	s.pendingMeshes = nil
	return p
}

// TakePendingMaterials returns and forgets the materials added since the last call.
func (s *Scene) TakePendingMaterials() []*Material {
	p := s.pendingMaterials
	s.pendingMaterials = nil
	return p
}
