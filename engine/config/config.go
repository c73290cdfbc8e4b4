package config

import (
	_ "embed"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
)

//go:embed default.toml
var defaultConfig []byte

// MaxLights is the capacity of the light array in the scene uniform block.
const MaxLights = 4

// ComputeLocalSize is local_size_x of shaders/particles.comp. Dispatches are
// sized in groups of this many instances.
const ComputeLocalSize = 256

type Window struct {
	Name   string `toml:"name"`
	X      uint32 `toml:"x"`
	Y      uint32 `toml:"y"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type Log struct {
	Level string `toml:"level"`
}

type Renderer struct {
	Validation      bool      `toml:"validation"`
	CheckResults    bool      `toml:"check_results"`
	ClearColor      []float32 `toml:"clear_color"`
	MaxObjects      uint32    `toml:"max_objects"`
	MaxMaterials    uint32    `toml:"max_materials"`
	MaxInstanceSets uint32    `toml:"max_instance_sets"`
	MaxLights       uint32    `toml:"max_lights"`
	MaxVertices     uint32    `toml:"max_vertices"`
	MaxIndices      uint32    `toml:"max_indices"`
	StagingSize     uint64    `toml:"staging_size"`
	WorkgroupSize   uint32    `toml:"workgroup_size"`
}

type Shaders struct {
	Dir   string `toml:"dir"`
	Watch bool   `toml:"watch"`
}

// Assets locates the optional textures and meshes a game loads at startup.
type Assets struct {
	Dir string `toml:"dir"`
}

type Config struct {
	Window   Window   `toml:"window"`
	Log      Log      `toml:"log"`
	Renderer Renderer `toml:"renderer"`
	Shaders  Shaders  `toml:"shaders"`
	Assets   Assets   `toml:"assets"`
}

// Load decodes the configuration compiled into the binary.
func Load() (*Config, error) {
	return Parse(defaultConfig)
}

func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return errors.Newf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	r := c.Renderer
	if len(r.ClearColor) != 4 {
		return errors.Newf("renderer.clear_color needs 4 components, got %d", len(r.ClearColor))
	}
	if r.MaxObjects == 0 || r.MaxMaterials == 0 || r.MaxInstanceSets == 0 {
		return errors.New("renderer object, material and instance set maxima must be positive")
	}
	if r.MaxVertices == 0 || r.MaxIndices == 0 {
		return errors.New("renderer vertex and index maxima must be positive")
	}
	if r.MaxLights > MaxLights {
		return errors.Newf("renderer.max_lights is %d, the uniform block holds %d", r.MaxLights, MaxLights)
	}
	if r.StagingSize == 0 {
		return errors.New("renderer.staging_size must be positive")
	}
	if r.WorkgroupSize != ComputeLocalSize {
		return errors.Newf("renderer.workgroup_size is %d, the particle shader is compiled for %d", r.WorkgroupSize, ComputeLocalSize)
	}
	if c.Shaders.Dir == "" {
		c.Shaders.Dir = "."
	}
	if c.Assets.Dir == "" {
		c.Assets.Dir = "."
	}
	return nil
}
