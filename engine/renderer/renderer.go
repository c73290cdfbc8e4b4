package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/config"
	"github.com/droune2001/vulkan-sub000/engine/renderer/vulkan"
)

type RendererType uint8

const (
	Vulkan RendererType = iota
	DirectX
	Metal
	OpenGL
)

func (t RendererType) String() string {
	switch t {
	case Vulkan:
		return "vulkan"
	case DirectX:
		return "directx"
	case Metal:
		return "metal"
	case OpenGL:
		return "opengl"
	}
	return "unknown"
}

// NewBackend returns the backend for kind. Only Vulkan is implemented.
func NewBackend(kind RendererType, provider vulkan.SurfaceProvider, shaders vulkan.ShaderLibrary, cfg config.Renderer) (Backend, error) {
	switch kind {
	case Vulkan:
		return vulkan.New(provider, shaders, cfg), nil
	}
	return nil, errors.Newf("renderer backend %s is not supported", kind)
}
