package loaders

type ResourceType int

const (
	ResourceTypeNone ResourceType = iota
	ResourceTypeShader
	ResourceTypeTexture
	ResourceTypeMesh
)

// Resource is what a loader hands back. Data holds []uint32 for shaders,
// scene.Texture for textures and geometry.Mesh for meshes.
type Resource struct {
	Name     string
	FullPath string
	Type     ResourceType
	DataSize uint64
	Data     interface{}
}
