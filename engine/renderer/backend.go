package renderer

import "github.com/droune2001/vulkan-sub000/engine/scene"

// Backend is the GPU side of a frame. The orchestrator calls it in the order
// the methods are listed, once per frame.
type Backend interface {
	Initialize(appName string, sc *scene.Scene) error
	Shutdown() error

	Resized(width, height uint32)
	NeedsRebuild() bool
	// Rebuild recreates the presentation chain. It is a no-op while the
	// framebuffer has a zero extent.
	Rebuild() error
	Extent() (uint32, uint32)

	Upload(dt, elapsed float64) error
	AcquireImage() (uint32, error)
	RecordCompute() error
	RecordGraphics(imageIndex uint32) error
	SubmitCompute() error
	SubmitGraphics() error
	WaitRender() error
	Present(imageIndex uint32) error

	WaitIdle() error
	ReloadPipelines() error
}
