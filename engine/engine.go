package engine

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/assets"
	"github.com/droune2001/vulkan-sub000/engine/core"
	"github.com/droune2001/vulkan-sub000/engine/platform"
	"github.com/droune2001/vulkan-sub000/engine/renderer"
	"github.com/droune2001/vulkan-sub000/engine/scene"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage Stage
	gameInstance *Game
	isRunning    bool
	isSuspended  bool

	// Set from outside the render loop, e.g. by a signal handler.
	quitRequested atomic.Bool

	events       *core.EventBus
	platform     *platform.Platform
	assetManager *assets.AssetManager
	scene        *scene.Scene
	backend      renderer.Backend
	frames       *renderer.FrameOrchestrator

	width  uint32
	height uint32
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, errors.New("game and application config are required")
	}
	events := core.NewEventBus()
	p := platform.New(events)
	am := assets.NewAssetManager()

	backend, err := renderer.NewBackend(renderer.Vulkan, p, am, g.ApplicationConfig.Renderer)
	if err != nil {
		return nil, err
	}

	r := g.ApplicationConfig.Renderer
	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		events:       events,
		platform:     p,
		assetManager: am,
		backend:      backend,
		scene: scene.NewScene(scene.Limits{
			MaxObjects:      r.MaxObjects,
			MaxMaterials:    r.MaxMaterials,
			MaxInstanceSets: r.MaxInstanceSets,
			MaxLights:       r.MaxLights,
			MaxVertices:     r.MaxVertices,
			MaxIndices:      r.MaxIndices,
		}),
		width:  g.ApplicationConfig.StartWidth,
		height: g.ApplicationConfig.StartHeight,
	}, nil
}

// Initialize opens the window, loads the shader library, lets the game build
// its scene and brings the renderer up. Any failure is an init error.
func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	app := e.gameInstance.ApplicationConfig

	if err := core.SetLogLevel(app.LogLevel); err != nil {
		core.LogWarn("%s", err)
	}

	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)

	if err := e.platform.Startup(app.Name, app.StartPosX, app.StartPosY, app.StartWidth, app.StartHeight); err != nil {
		return err
	}

	if err := e.assetManager.LoadShaders(app.Shaders.Dir); err != nil {
		return err
	}
	if app.Shaders.Watch {
		if err := e.assetManager.Watch(); err != nil {
			return err
		}
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(e.scene, e.assetManager); err != nil {
			return errors.Wrap(err, "game initialize")
		}
	}

	if err := e.backend.Initialize(app.Name, e.scene); err != nil {
		return err
	}
	e.frames = renderer.NewFrameOrchestrator(e.backend, e.scene)
	if app.Shaders.Watch {
		e.frames.WatchShaders(e.assetManager)
	}

	e.width, e.height = e.backend.Extent()
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	e.isRunning = true
	return nil
}

// Run draws frames until the window closes. It returns an error when a frame
// or the game update failed; either ends the loop.
func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning

	for e.isRunning {
		if e.quitRequested.Load() || !e.platform.PumpMessages() {
			e.isRunning = false
			break
		}

		if e.isSuspended {
			e.platform.WaitWhileMinimized()
			continue
		}

		if err := e.frames.DrawFrame(); err != nil {
			core.LogError("Frame failed, shutting down: %s", err)
			e.isRunning = false
			return err
		}

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(e.scene, e.frames.Timing().Delta); err != nil {
				core.LogError("Game update failed, shutting down.")
				e.isRunning = false
				return err
			}
		}
	}
	return nil
}

// RequestQuit stops the loop after the current frame. Safe from any goroutine.
func (e *Engine) RequestQuit() {
	e.quitRequested.Store(true)
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	e.isRunning = false

	var err error
	if e.frames != nil {
		err = e.frames.Shutdown()
	} else {
		err = e.backend.Shutdown()
	}
	if cerr := e.assetManager.Close(); cerr != nil {
		core.LogWarn("closing asset manager: %s", cerr)
	}
	if perr := e.platform.Shutdown(); perr != nil && err == nil {
		err = perr
	}
	e.events.Shutdown()
	e.currentStage = EngineStageUninitialized
	return err
}

func (e *Engine) onEvent(listener interface{}, context core.EventContext) bool {
	switch context.Code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onResized(listener interface{}, context core.EventContext) bool {
	if context.Code != core.EVENT_CODE_RESIZED {
		return false
	}
	width, height := context.Width, context.Height
	if width == e.width && height == e.height {
		return false
	}
	e.width, e.height = width, height
	core.LogDebug("Window resize: %d, %d", width, height)

	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError("game resize: %s", err)
		}
	}
	if e.frames != nil {
		e.frames.OnResize(width, height)
	}
	// Event purposely not handled to allow other listeners to get this.
	return false
}
