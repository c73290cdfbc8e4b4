package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/core"
	emath "github.com/droune2001/vulkan-sub000/engine/math"
	"github.com/droune2001/vulkan-sub000/engine/scene"
	vk "github.com/goki/vulkan"
	"github.com/google/uuid"
)

type materialResources struct {
	base       *VulkanTexture
	specular   *VulkanTexture
	descriptor vk.DescriptorSet
}

type instanceResources struct {
	set        *scene.InstanceSet
	buffer     *VulkanBuffer
	params     *VulkanBuffer
	descriptor vk.DescriptorSet
	ownership  *InstanceOwnership
}

// SceneResources is the GPU side of the scene: the global vertex and index
// buffers, the uniform buffers, material textures and the instance buffers,
// with the descriptor sets pointing at them.
type SceneResources struct {
	scene       *scene.Scene
	descriptors *VulkanDescriptors
	stager      *Stager
	families    QueueFamilyIndices
	workgroup   uint32

	vertexBuffer *VulkanBuffer
	indexBuffer  *VulkanBuffer

	sceneUBO    *VulkanBuffer
	modelUBO    *VulkanBuffer
	overrideUBO *VulkanBuffer
	sceneSet    vk.DescriptorSet
	objectSet   vk.DescriptorSet

	materials map[uuid.UUID]*materialResources
	instances []*instanceResources
}

func NewSceneResources(context *VulkanContext, sc *scene.Scene, descriptors *VulkanDescriptors, stager *Stager, workgroup uint32) (*SceneResources, error) {
	sc.ConfigureSlots(context.Device.MinUniformAlignment())

	r := &SceneResources{
		scene:       sc,
		descriptors: descriptors,
		stager:      stager,
		families:    context.Device.QueueFamilies,
		workgroup:   workgroup,
		materials:   make(map[uuid.UUID]*materialResources),
	}
	if err := r.createUniforms(context); err != nil {
		r.Destroy(context)
		return nil, err
	}
	return r, nil
}

func mappedUniformBuffer(context *VulkanContext, size uint64) (*VulkanBuffer, error) {
	buffer, err := HostVisibleBuffer(context, size, vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit), false)
	if err != nil {
		return nil, err
	}
	if err := buffer.Map(context); err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	return buffer, nil
}

func (r *SceneResources) createUniforms(context *VulkanContext) error {
	var err error
	if r.sceneUBO, err = mappedUniformBuffer(context, scene.SceneUniformsSize); err != nil {
		return errors.Wrap(err, "scene uniform buffer")
	}
	models := r.scene.ModelSlots()
	if r.modelUBO, err = mappedUniformBuffer(context, models.Size()); err != nil {
		return errors.Wrap(err, "model uniform buffer")
	}
	overrides := r.scene.MaterialOverrideSlots()
	if r.overrideUBO, err = mappedUniformBuffer(context, overrides.Size()); err != nil {
		return errors.Wrap(err, "material override uniform buffer")
	}

	if r.sceneSet, err = r.descriptors.Allocate(context, SetScene); err != nil {
		return err
	}
	if r.objectSet, err = r.descriptors.Allocate(context, SetObject); err != nil {
		return err
	}
	r.descriptors.Update(context, []vk.WriteDescriptorSet{
		BufferWrite(r.sceneSet, 0, vk.DescriptorTypeUniformBuffer, r.sceneUBO.Handle, 0, scene.SceneUniformsSize),
		BufferWrite(r.objectSet, 0, vk.DescriptorTypeUniformBufferDynamic, r.modelUBO.Handle, 0, models.RecordSize()),
		BufferWrite(r.objectSet, 1, vk.DescriptorTypeUniformBufferDynamic, r.overrideUBO.Handle, 0, overrides.RecordSize()),
	})
	return nil
}

// Upload stages pending meshes, materials and instance records, then writes
// the uniform buffers for this frame.
func (r *SceneResources) Upload(context *VulkanContext, aspect float32, dt, elapsed float64) error {
	if err := r.uploadMeshes(context); err != nil {
		return err
	}
	if err := r.uploadMaterials(context); err != nil {
		return err
	}
	if err := r.uploadInstanceSets(context); err != nil {
		return err
	}

	if err := r.sceneUBO.Upload(context, 0, r.scene.SceneUniforms(aspect, elapsed, dt)); err != nil {
		return err
	}
	if err := r.modelUBO.Upload(context, 0, r.scene.ModelSlots().Bytes()); err != nil {
		return err
	}
	if err := r.overrideUBO.Upload(context, 0, r.scene.MaterialOverrideSlots().Bytes()); err != nil {
		return err
	}
	for _, inst := range r.instances {
		if err := inst.params.Upload(context, 0, r.scene.ComputeParams(inst.set, dt, elapsed)); err != nil {
			return err
		}
	}
	return nil
}

func (r *SceneResources) uploadMeshes(context *VulkanContext) error {
	pending := r.scene.TakePendingMeshes()
	if len(pending) == 0 {
		return nil
	}
	if r.vertexBuffer == nil {
		arena := r.scene.Arena()
		var err error
		if r.vertexBuffer, err = DeviceLocalBuffer(context, arena.VertexCapacity(), vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)); err != nil {
			return errors.Wrap(err, "global vertex buffer")
		}
		if r.indexBuffer, err = DeviceLocalBuffer(context, arena.IndexCapacity(), vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)); err != nil {
			return errors.Wrap(err, "global index buffer")
		}
		core.LogDebug("Global geometry buffers created: %d vertex bytes, %d index bytes.", arena.VertexCapacity(), arena.IndexCapacity())
	}
	for _, m := range pending {
		if err := r.stager.CopyToBuffer(context, r.vertexBuffer, m.Record.VertexOffset, m.Vertex); err != nil {
			return errors.Wrapf(err, "mesh %d vertices", m.Record.ID)
		}
		if err := r.stager.CopyToBuffer(context, r.indexBuffer, m.Record.IndexOffset, m.Index); err != nil {
			return errors.Wrapf(err, "mesh %d indices", m.Record.ID)
		}
	}
	return nil
}

func (r *SceneResources) uploadMaterials(context *VulkanContext) error {
	for _, m := range r.scene.TakePendingMaterials() {
		res := &materialResources{}
		r.materials[m.ID] = res

		var err error
		if res.base, err = TextureCreate(context, r.stager, m.BaseColor.Width, m.BaseColor.Height, m.BaseColor.Pixels); err != nil {
			return errors.Wrapf(err, "material %s base color", m.Name)
		}
		if res.specular, err = TextureCreate(context, r.stager, m.Specular.Width, m.Specular.Height, m.Specular.Pixels); err != nil {
			return errors.Wrapf(err, "material %s specular", m.Name)
		}
		if res.descriptor, err = r.descriptors.Allocate(context, SetMaterial); err != nil {
			return err
		}
		r.descriptors.Update(context, []vk.WriteDescriptorSet{
			TextureWrite(res.descriptor, 0, res.base),
			TextureWrite(res.descriptor, 1, res.specular),
		})
	}
	return nil
}

func (r *SceneResources) uploadInstanceSets(context *VulkanContext) error {
	sets := r.scene.InstanceSets()
	for _, set := range sets[len(r.instances):] {
		inst, err := r.createInstanceResources(context, set)
		if err != nil {
			return errors.Wrapf(err, "instance set %q", set.ID)
		}
		r.instances = append(r.instances, inst)
	}

	for _, inst := range r.instances {
		if !inst.set.Dirty() {
			continue
		}
		data := inst.set.Bytes()
		before, after := inst.ownership.Upload()
		if err := r.stager.CopyToBufferWithBarriers(context, StagingCompute, inst.buffer, 0, data, before, after); err != nil {
			return errors.Wrapf(err, "instance set %q records", inst.set.ID)
		}
		inst.set.ClearDirty()
	}
	return nil
}

func (r *SceneResources) createInstanceResources(context *VulkanContext, set *scene.InstanceSet) (*instanceResources, error) {
	inst := &instanceResources{set: set}
	var err error
	usage := vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit) | vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit)
	if inst.buffer, err = DeviceLocalBuffer(context, set.BufferSize(), usage); err != nil {
		return nil, err
	}
	if inst.params, err = mappedUniformBuffer(context, scene.ComputeParamsSize); err != nil {
		inst.destroy(context)
		return nil, err
	}
	if inst.descriptor, err = r.descriptors.Allocate(context, SetCompute); err != nil {
		inst.destroy(context)
		return nil, err
	}
	r.descriptors.Update(context, []vk.WriteDescriptorSet{
		BufferWrite(inst.descriptor, 0, vk.DescriptorTypeStorageBuffer, inst.buffer.Handle, 0, inst.buffer.Size),
		BufferWrite(inst.descriptor, 1, vk.DescriptorTypeUniformBuffer, inst.params.Handle, 0, scene.ComputeParamsSize),
	})
	inst.ownership = NewInstanceOwnership(inst.buffer.Handle, inst.buffer.Size, r.families.Graphics, r.families.Compute)
	core.LogDebug("Instance set %q: %d instances, %d bytes.", set.ID, set.Capacity, inst.buffer.Size)
	return inst, nil
}

// RecordCompute records, per instance set, the acquire barrier, the
// dispatch over the live instances and the release barrier. Barriers are
// recorded even when there is nothing to dispatch.
func (r *SceneResources) RecordCompute(cmd *VulkanCommandBuffer, pipelines *VulkanPipelines) {
	if len(r.instances) == 0 {
		return
	}
	pipelines.Particles.Bind(cmd)
	for _, inst := range r.instances {
		before, after := inst.ownership.Compute()
		recordBufferBarriers(cmd.Handle, before)

		groups := emath.DivCeil(inst.set.DrawCount(), r.workgroup)
		if groups > 0 {
			vk.CmdBindDescriptorSets(cmd.Handle, vk.PipelineBindPointCompute, pipelines.ComputeLayout,
				SetCompute, 1, []vk.DescriptorSet{inst.descriptor}, 0, nil)
			vk.CmdDispatch(cmd.Handle, groups, 1, 1)
		}
		recordBufferBarriers(cmd.Handle, after)
	}
}

// RecordGraphicsAcquire takes the instance buffers over on the graphics
// queue. It must be recorded outside the render pass.
func (r *SceneResources) RecordGraphicsAcquire(cmd *VulkanCommandBuffer) {
	for _, inst := range r.instances {
		recordBufferBarriers(cmd.Handle, inst.ownership.GraphicsAcquire())
	}
}

// RecordGraphicsRelease hands the instance buffers back to compute for the
// next frame. It must be recorded after the render pass.
func (r *SceneResources) RecordGraphicsRelease(cmd *VulkanCommandBuffer) {
	for _, inst := range r.instances {
		recordBufferBarriers(cmd.Handle, inst.ownership.GraphicsRelease())
	}
}

// RecordDraws records the opaque objects grouped by material, then one
// instanced draw per non-empty instance set. It runs inside the render pass.
func (r *SceneResources) RecordDraws(cmd *VulkanCommandBuffer, pipelines *VulkanPipelines) {
	if r.vertexBuffer == nil {
		return
	}
	handle := cmd.Handle
	layout := pipelines.GraphicsLayout

	pipelines.Opaque.Bind(cmd)
	vk.CmdBindDescriptorSets(handle, vk.PipelineBindPointGraphics, layout, SetScene, 1, []vk.DescriptorSet{r.sceneSet}, 0, nil)

	models := r.scene.ModelSlots()
	overrides := r.scene.MaterialOverrideSlots()
	for _, batch := range r.scene.ObjectsByMaterial() {
		material, ok := r.materials[batch.Material.ID]
		if !ok {
			continue
		}
		vk.CmdBindDescriptorSets(handle, vk.PipelineBindPointGraphics, layout, SetMaterial, 1, []vk.DescriptorSet{material.descriptor}, 0, nil)
		for _, o := range batch.Objects {
			r.bindMesh(handle, o.Mesh)
			dynamicOffsets := []uint32{models.Offset(o.Index), overrides.Offset(o.Index)}
			vk.CmdBindDescriptorSets(handle, vk.PipelineBindPointGraphics, layout, SetObject, 1, []vk.DescriptorSet{r.objectSet}, uint32(len(dynamicOffsets)), dynamicOffsets)
			vk.CmdDrawIndexed(handle, o.Mesh.IndexCount, 1, 0, 0, 0)
		}
	}

	if len(r.instances) == 0 {
		return
	}
	pipelines.Instanced.Bind(cmd)
	if material, ok := r.materials[r.scene.DefaultMaterial()]; ok {
		vk.CmdBindDescriptorSets(handle, vk.PipelineBindPointGraphics, layout, SetMaterial, 1, []vk.DescriptorSet{material.descriptor}, 0, nil)
	}
	for _, inst := range r.instances {
		count := inst.set.DrawCount()
		if count == 0 {
			continue
		}
		mesh := inst.set.Mesh
		vk.CmdBindVertexBuffers(handle, VertexBinding, 2,
			[]vk.Buffer{r.vertexBuffer.Handle, inst.buffer.Handle},
			[]vk.DeviceSize{vk.DeviceSize(mesh.VertexOffset), 0})
		vk.CmdBindIndexBuffer(handle, r.indexBuffer.Handle, vk.DeviceSize(mesh.IndexOffset), vk.IndexTypeUint16)
		vk.CmdDrawIndexed(handle, mesh.IndexCount, count, 0, 0, 0)
	}
}

func (r *SceneResources) bindMesh(cmd vk.CommandBuffer, mesh scene.MeshRecord) {
	vk.CmdBindVertexBuffers(cmd, VertexBinding, 1, []vk.Buffer{r.vertexBuffer.Handle}, []vk.DeviceSize{vk.DeviceSize(mesh.VertexOffset)})
	vk.CmdBindIndexBuffer(cmd, r.indexBuffer.Handle, vk.DeviceSize(mesh.IndexOffset), vk.IndexTypeUint16)
}

func (inst *instanceResources) destroy(context *VulkanContext) {
	if inst.params != nil {
		inst.params.Destroy(context)
		inst.params = nil
	}
	if inst.buffer != nil {
		inst.buffer.Destroy(context)
		inst.buffer = nil
	}
}

// Destroy releases every buffer and texture. Descriptor sets go with the pool.
func (r *SceneResources) Destroy(context *VulkanContext) {
	for _, inst := range r.instances {
		inst.destroy(context)
	}
	r.instances = nil
	for id, m := range r.materials {
		if m.specular != nil {
			m.specular.Destroy(context)
		}
		if m.base != nil {
			m.base.Destroy(context)
		}
		delete(r.materials, id)
	}
	for _, b := range []*VulkanBuffer{r.overrideUBO, r.modelUBO, r.sceneUBO, r.indexBuffer, r.vertexBuffer} {
		if b != nil {
			b.Destroy(context)
		}
	}
	r.overrideUBO, r.modelUBO, r.sceneUBO, r.indexBuffer, r.vertexBuffer = nil, nil, nil, nil, nil
}
