package engine

import (
	"github.com/droune2001/vulkan-sub000/engine/assets"
	"github.com/droune2001/vulkan-sub000/engine/scene"
)

type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnOnResize        OnResize
}

// Initialize populates the scene before the renderer uploads it.
type Initialize func(sc *scene.Scene, am *assets.AssetManager) error
type Update func(sc *scene.Scene, deltaTime float64) error
type OnResize func(width uint32, height uint32) error
