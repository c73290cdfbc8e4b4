package testbed

import (
	"math/rand"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine"
	"github.com/droune2001/vulkan-sub000/engine/assets"
	"github.com/droune2001/vulkan-sub000/engine/config"
	"github.com/droune2001/vulkan-sub000/engine/core"
	"github.com/droune2001/vulkan-sub000/engine/geometry"
	"github.com/droune2001/vulkan-sub000/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

const (
	ParticleSetID    = "particles"
	ParticleCount    = 1024
	particleSeed     = 42
	particleSpread   = 8.0
	particleCubeSize = 0.08

	// Optional files under the asset directory.
	SphereTexture = "textures/sphere_base.png"
	ParticleModel = "models/particle.obj"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	width  uint32
	height uint32

	particles *scene.InstanceSet
}

func NewTestGame(cfg *config.Config) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: engine.NewApplicationConfig(cfg),
			State:             &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnOnResize = tg.OnResize

	return tg
}

// Initialize builds the demo: an icosphere at the origin, a cloud of
// compute-animated cubes, two lights and an orbiting camera.
func (g *TestGame) Initialize(sc *scene.Scene, am *assets.AssetManager) error {
	core.LogInfo("initializing testbed...")
	state := g.State.(*gameState)

	sphere, err := sc.AddMesh(geometry.Icosphere(1.0, 3))
	if err != nil {
		return err
	}
	material, err := g.sphereMaterial(sc, am)
	if err != nil {
		return err
	}
	if _, err := sc.AddObject(sphere.ID, material, mgl32.Vec4{0.8, 0.8, 0.8, 1}, mgl32.Vec4{0.04, 0.04, 0.04, 1}); err != nil {
		return err
	}

	particle, err := g.particleMesh(am)
	if err != nil {
		return err
	}
	cube, err := sc.AddMesh(particle)
	if err != nil {
		return err
	}
	set, err := sc.AddInstanceSet(ParticleSetID, cube.ID, ParticleCount)
	if err != nil {
		return err
	}
	for _, rec := range ParticleRecords(particleSeed, ParticleCount) {
		if _, err := sc.AddObjectToInstanceSet(rec, ParticleSetID); err != nil {
			return err
		}
	}
	state.particles = set

	if err := sc.AddLight(scene.NewPointLight(mgl32.Vec3{3, 3, 3}, mgl32.Vec3{1, 0.9, 0.8}, 4, 20)); err != nil {
		return err
	}
	if err := sc.AddLight(scene.NewDirectionalLight(mgl32.Vec3{-0.3, -1, -0.2}, mgl32.Vec3{0.4, 0.45, 0.6}, 0.6)); err != nil {
		return err
	}

	sc.Animation = scene.AnimateCamera | scene.AnimateLights
	return nil
}

// sphereMaterial builds the icosphere's material from SphereTexture, or
// returns uuid.Nil (the default material) when the file is absent.
func (g *TestGame) sphereMaterial(sc *scene.Scene, am *assets.AssetManager) (uuid.UUID, error) {
	if am == nil {
		return uuid.Nil, nil
	}
	path := filepath.Join(g.ApplicationConfig.AssetDir, SphereTexture)
	base, err := am.LoadTexture(path)
	if errors.Is(err, core.ErrAssetNotFound) {
		core.LogInfo("No %s, the sphere uses the default material.", path)
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, err
	}
	m, err := sc.AddMaterial("sphere", base, scene.SolidTexture(255, 255, 255, 255))
	if err != nil {
		return uuid.Nil, err
	}
	return m.ID, nil
}

// particleMesh loads ParticleModel, falling back to a generated cube.
func (g *TestGame) particleMesh(am *assets.AssetManager) (geometry.Mesh, error) {
	if am == nil {
		return geometry.Cube(particleCubeSize), nil
	}
	path := filepath.Join(g.ApplicationConfig.AssetDir, ParticleModel)
	mesh, err := am.LoadMesh(path)
	if errors.Is(err, core.ErrAssetNotFound) {
		core.LogInfo("No %s, particles use a generated cube.", path)
		return geometry.Cube(particleCubeSize), nil
	}
	return mesh, err
}

// ParticleRecords returns count instance records with seeded random
// positions inside a cube of side particleSpread, and random speeds and
// jitters.
func ParticleRecords(seed int64, count int) []scene.InstanceRecord {
	rng := rand.New(rand.NewSource(seed))
	spread := func(half float32) float32 {
		return (rng.Float32()*2 - 1) * half
	}

	out := make([]scene.InstanceRecord, count)
	for i := range out {
		out[i] = scene.InstanceRecord{
			Position:  mgl32.Vec4{spread(particleSpread / 2), spread(particleSpread / 2), spread(particleSpread / 2), 0},
			Rotation:  mgl32.Vec4{spread(3.14), spread(3.14), spread(3.14), 0},
			Scale:     mgl32.Vec4{1, 1, 1, 0},
			Speed:     mgl32.Vec4{spread(0.5), spread(0.5), spread(0.5), 0},
			Jitter:    mgl32.Vec4{rng.Float32() * 0.2, rng.Float32() * 0.2, rng.Float32() * 0.2, rng.Float32() * 6.28},
			BaseColor: mgl32.Vec4{0.3 + rng.Float32()*0.7, 0.3 + rng.Float32()*0.7, 0.3 + rng.Float32()*0.7, 1},
			Specular:  mgl32.Vec4{0.5, 0.3, 0, 0},
		}
	}
	return out
}

func (g *TestGame) Update(sc *scene.Scene, deltaTime float64) error {
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	return nil
}
