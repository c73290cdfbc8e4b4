package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/core"
)

// SceneUpdater advances the CPU side of the scene by one frame.
type SceneUpdater interface {
	Update(dt, elapsed float64) error
}

// ChangeSource reports, once, that the shader library changed.
type ChangeSource interface {
	TakeChanged() bool
}

// FrameTiming owns the frame clock, the frame counter and the frame stats.
type FrameTiming struct {
	clock       *core.Clock
	last        float64
	Delta       float64
	FrameNumber uint64
	Stats       *core.FrameStats
}

func NewFrameTiming() *FrameTiming {
	t := &FrameTiming{
		clock: core.NewClock(),
		Stats: core.NewFrameStats(),
	}
	t.clock.Start()
	return t
}

// Tick returns the seconds since the previous tick and since the clock
// started.
func (t *FrameTiming) Tick() (dt, elapsed float64) {
	t.clock.Update()
	elapsed = t.clock.Elapsed()
	dt = elapsed - t.last
	t.last = elapsed
	t.Delta = dt
	t.FrameNumber++

	if t.Stats.Update(dt) {
		core.LogDebug("FPS: %.0f, frame time: %.3fms", t.Stats.FPS(), t.Stats.FrameTime())
	}
	return dt, elapsed
}

// FrameOrchestrator drives one backend through the per-frame protocol.
type FrameOrchestrator struct {
	backend Backend
	scene   SceneUpdater
	timing  *FrameTiming
	shaders ChangeSource
}

func NewFrameOrchestrator(backend Backend, scene SceneUpdater) *FrameOrchestrator {
	return &FrameOrchestrator{
		backend: backend,
		scene:   scene,
		timing:  NewFrameTiming(),
	}
}

// WatchShaders makes DrawFrame rebuild the pipelines, at a frame boundary,
// whenever source reports a change.
func (o *FrameOrchestrator) WatchShaders(source ChangeSource) {
	o.shaders = source
}

func (o *FrameOrchestrator) Timing() *FrameTiming {
	return o.timing
}

func (o *FrameOrchestrator) OnResize(width, height uint32) {
	o.backend.Resized(width, height)
}

// DrawFrame runs one frame. A frame that needs a swapchain rebuild, or
// whose framebuffer has a zero extent, is skipped without recording
// anything. Every returned error ends the frame loop: a frame that failed
// between its submits leaves semaphores signaled that no later frame can
// consume. A stale swapchain is the only failure retried on the next frame.
func (o *FrameOrchestrator) DrawFrame() error {
	dt, elapsed := o.timing.Tick()

	if o.shaders != nil && o.shaders.TakeChanged() {
		if err := o.backend.ReloadPipelines(); err != nil {
			return err
		}
	}

	if err := o.scene.Update(dt, elapsed); err != nil {
		return errors.Wrap(err, "scene update")
	}
	if err := o.backend.Upload(dt, elapsed); err != nil {
		return errors.Wrap(err, "upload")
	}

	if o.backend.NeedsRebuild() {
		return o.rebuild()
	}
	if width, height := o.backend.Extent(); width == 0 || height == 0 {
		return nil
	}

	imageIndex, err := o.backend.AcquireImage()
	if errors.Is(err, core.ErrSwapchainOutOfDate) {
		core.LogDebug("Swapchain out of date at acquire, rebuilding.")
		return o.rebuild()
	}
	if err != nil {
		return errors.Wrap(err, "acquire")
	}

	if err := o.backend.RecordCompute(); err != nil {
		return errors.Wrap(err, "record compute")
	}
	if err := o.backend.RecordGraphics(imageIndex); err != nil {
		return errors.Wrap(err, "record graphics")
	}
	if err := o.backend.SubmitCompute(); err != nil {
		return errors.Wrap(err, "submit compute")
	}
	if err := o.backend.SubmitGraphics(); err != nil {
		return errors.Wrap(err, "submit graphics")
	}
	if err := o.backend.WaitRender(); err != nil {
		return errors.Wrap(err, "wait render")
	}

	err = o.backend.Present(imageIndex)
	if errors.Is(err, core.ErrSwapchainOutOfDate) {
		core.LogDebug("Swapchain out of date or suboptimal at present, rebuilding.")
		return o.rebuild()
	}
	return errors.Wrap(err, "present")
}

// rebuild recreates the swapchain. A surface that went stale again while
// rebuilding is retried next frame; the backend keeps reporting NeedsRebuild.
func (o *FrameOrchestrator) rebuild() error {
	err := o.backend.Rebuild()
	if errors.Is(err, core.ErrSwapchainOutOfDate) {
		core.LogDebug("Swapchain went stale during rebuild, retrying next frame.")
		return nil
	}
	return errors.Wrap(err, "rebuild")
}

// Shutdown waits for the GPU and releases the backend.
func (o *FrameOrchestrator) Shutdown() error {
	if err := o.backend.WaitIdle(); err != nil {
		core.LogWarn("wait idle before shutdown: %s", err)
	}
	o.timing.clock.Stop()
	return o.backend.Shutdown()
}
