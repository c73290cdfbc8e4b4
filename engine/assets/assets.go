package assets

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/assets/loaders"
	"github.com/droune2001/vulkan-sub000/engine/core"
	"github.com/droune2001/vulkan-sub000/engine/geometry"
	"github.com/droune2001/vulkan-sub000/engine/scene"
	"github.com/fsnotify/fsnotify"
)

// Fixed names of the SPIR-V binaries read from the shader directory.
const (
	ShaderOpaqueVert    = "vert.spv"
	ShaderOpaqueFrag    = "frag.spv"
	ShaderInstancedVert = "instanced.vert.spv"
	ShaderInstancedFrag = "instanced.frag.spv"
	ShaderParticlesComp = "particles.comp.spv"
)

var ShaderNames = []string{
	ShaderOpaqueVert,
	ShaderOpaqueFrag,
	ShaderInstancedVert,
	ShaderInstancedFrag,
	ShaderParticlesComp,
}

const maxTextureSize = 4096

type AssetInfo struct {
	Path       string
	Type       loaders.ResourceType
	LastLoaded time.Time
}

// AssetManager keeps the SPIR-V library and loads textures and meshes on
// request. With Watch enabled it reloads shaders written to the shader
// directory; callers poll TakeChanged at a frame boundary.
type AssetManager struct {
	dir     string
	assets  map[string]AssetInfo
	shaders map[string][]uint32
	loaders map[loaders.ResourceType]Loader

	mutex   sync.RWMutex
	changed atomic.Bool

	done     chan struct{}
	wg       sync.WaitGroup
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewAssetManager() *AssetManager {
	am := &AssetManager{
		assets:  make(map[string]AssetInfo),
		shaders: make(map[string][]uint32),
		loaders: make(map[loaders.ResourceType]Loader),
		done:    make(chan struct{}),
	}

	// Register loaders
	am.registerLoader(loaders.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(loaders.ResourceTypeTexture, &loaders.TextureLoader{MaxSize: maxTextureSize})
	am.registerLoader(loaders.ResourceTypeMesh, &loaders.MeshLoader{})
	return am
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType loaders.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

func (am *AssetManager) load(path string, resourceType loaders.ResourceType) (*loaders.Resource, error) {
	loader, ok := am.loaders[resourceType]
	if !ok {
		return nil, errors.Newf("no loader registered for asset type: %d", resourceType)
	}
	res, err := loader.Load(path, nil)
	if err != nil {
		return nil, err
	}

	am.mutex.Lock()
	am.assets[path] = AssetInfo{Path: path, Type: resourceType, LastLoaded: time.Now()}
	am.mutex.Unlock()
	return res, nil
}

// LoadShaders reads the five fixed shader binaries from dir. Any missing or
// malformed binary is an error.
func (am *AssetManager) LoadShaders(dir string) error {
	am.dir = dir
	for _, name := range ShaderNames {
		res, err := am.load(filepath.Join(dir, name), loaders.ResourceTypeShader)
		if err != nil {
			return err
		}
		am.mutex.Lock()
		am.shaders[name] = res.Data.([]uint32)
		am.mutex.Unlock()
		core.LogDebug("loaded shader %s (%d bytes)", name, res.DataSize)
	}
	return nil
}

// Shader returns the bytecode for one of the fixed names, or nil.
func (am *AssetManager) Shader(name string) []uint32 {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return am.shaders[name]
}

func (am *AssetManager) LoadTexture(path string) (scene.Texture, error) {
	res, err := am.load(path, loaders.ResourceTypeTexture)
	if err != nil {
		return scene.Texture{}, err
	}
	return res.Data.(scene.Texture), nil
}

func (am *AssetManager) LoadMesh(path string) (geometry.Mesh, error) {
	res, err := am.load(path, loaders.ResourceTypeMesh)
	if err != nil {
		return geometry.Mesh{}, err
	}
	return res.Data.(geometry.Mesh), nil
}

// Watch starts reloading shaders written to the shader directory.
func (am *AssetManager) Watch() error {
	if am.isClosed {
		return errors.New("asset manager already closed")
	}
	if am.fsnotify != nil {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create shader watcher")
	}
	if err := w.Add(am.dir); err != nil {
		w.Close()
		return errors.Wrapf(err, "watch %s", am.dir)
	}
	am.fsnotify = w

	am.wg.Add(1)
	go am.start()
	core.LogInfo("watching %s for shader changes", am.dir)
	return nil
}

// TakeChanged reports whether any shader was reloaded since the last call.
func (am *AssetManager) TakeChanged() bool {
	return am.changed.Swap(false)
}

func (am *AssetManager) start() {
	defer am.wg.Done()
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("shader watcher: %s", err)

		case <-am.done:
			return
		}
	}
}

// Handle the creation or modification of a shader binary. A binary that
// fails to load leaves the previous bytecode in place.
func (am *AssetManager) handleFileEvent(path string) {
	name := filepath.Base(path)
	if !isShaderName(name) {
		return
	}
	if fi, err := os.Stat(path); err != nil || fi.IsDir() {
		return
	}

	res, err := am.load(path, loaders.ResourceTypeShader)
	if err != nil {
		core.LogWarn("shader %s not reloaded, keeping previous bytecode: %s", name, err)
		return
	}
	am.mutex.Lock()
	am.shaders[name] = res.Data.([]uint32)
	am.mutex.Unlock()
	am.changed.Store(true)
	core.LogInfo("reloaded shader %s", name)
}

func isShaderName(name string) bool {
	for _, n := range ShaderNames {
		if n == name {
			return true
		}
	}
	return false
}

// Close stops the shader watcher, if any.
func (am *AssetManager) Close() error {
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	close(am.done)
	am.wg.Wait()
	if am.fsnotify != nil {
		return am.fsnotify.Close()
	}
	return nil
}
