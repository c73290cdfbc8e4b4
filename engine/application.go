package engine

import "github.com/droune2001/vulkan-sub000/engine/config"

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32
	// Window starting position y axis, if applicable.
	StartPosY uint32
	// Window starting width, if applicable.
	StartWidth uint32
	// Window starting height, if applicable.
	StartHeight uint32
	// The application name used in windowing, if applicable.
	Name     string
	LogLevel string

	Renderer config.Renderer
	Shaders  config.Shaders
	// Directory of the optional textures and meshes.
	AssetDir string
}

// NewApplicationConfig flattens the compiled-in configuration.
func NewApplicationConfig(cfg *config.Config) *ApplicationConfig {
	return &ApplicationConfig{
		StartPosX:   cfg.Window.X,
		StartPosY:   cfg.Window.Y,
		StartWidth:  cfg.Window.Width,
		StartHeight: cfg.Window.Height,
		Name:        cfg.Window.Name,
		LogLevel:    cfg.Log.Level,
		Renderer:    cfg.Renderer,
		Shaders:     cfg.Shaders,
		AssetDir:    cfg.Assets.Dir,
	}
}
