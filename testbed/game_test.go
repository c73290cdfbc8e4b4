package testbed

import (
	"path/filepath"
	"testing"

	"github.com/droune2001/vulkan-sub000/engine/assets"
	"github.com/droune2001/vulkan-sub000/engine/config"
	"github.com/droune2001/vulkan-sub000/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

func TestParticleRecordsSeeded(t *testing.T) {
	a := ParticleRecords(7, 16)
	b := ParticleRecords(7, 16)
	if len(a) != 16 {
		t.Fatalf("got %d records, want 16", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("record %d differs between runs with the same seed", i)
		}
	}
	if ParticleRecords(8, 1)[0] == a[0] {
		t.Error("different seeds produced the same first record")
	}
}

func TestParticleRecordsInsideSpread(t *testing.T) {
	for i, r := range ParticleRecords(1, ParticleCount) {
		for axis := 0; axis < 3; axis++ {
			if v := r.Position[axis]; v < -particleSpread/2 || v > particleSpread/2 {
				t.Fatalf("record %d axis %d at %f, outside the spread", i, axis, v)
			}
		}
		if r.BaseColor[3] != 1 {
			t.Errorf("record %d has alpha %f", i, r.BaseColor[3])
		}
	}
}

func newTestScene() *scene.Scene {
	return scene.NewScene(scene.Limits{
		MaxObjects:      8,
		MaxMaterials:    4,
		MaxInstanceSets: 2,
		MaxLights:       4,
		MaxVertices:     65536,
		MaxIndices:      65536 * 3,
	})
}

func newTestGame(t *testing.T) *TestGame {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load() failed: %s", err)
	}
	return NewTestGame(cfg)
}

func TestInitializeBuildsScene(t *testing.T) {
	sc := newTestScene()
	g := newTestGame(t)
	if err := g.Initialize(sc, nil); err != nil {
		t.Fatalf("Initialize() failed: %s", err)
	}
	if len(sc.Objects()) != 1 {
		t.Fatalf("got %d objects, want 1", len(sc.Objects()))
	}
	sphere := sc.Objects()[0]
	if sphere.BaseColor != (mgl32.Vec4{0.8, 0.8, 0.8, 1}) {
		t.Errorf("sphere base color = %v", sphere.BaseColor)
	}
	if sphere.Specular != (mgl32.Vec4{0.04, 0.04, 0.04, 1}) {
		t.Errorf("sphere specular = %v", sphere.Specular)
	}
	set, err := sc.InstanceSet(ParticleSetID)
	if err != nil {
		t.Fatalf("particle set missing: %s", err)
	}
	if set.DrawCount() != ParticleCount {
		t.Errorf("DrawCount() = %d, want %d", set.DrawCount(), ParticleCount)
	}
	if len(sc.Lights()) != 2 {
		t.Errorf("got %d lights, want 2", len(sc.Lights()))
	}
}

func TestInitializeLoadsAssets(t *testing.T) {
	am := assets.NewAssetManager()
	defer am.Close()

	sc := newTestScene()
	g := newTestGame(t)
	g.ApplicationConfig.AssetDir = filepath.Join("..", "assets")
	if err := g.Initialize(sc, am); err != nil {
		t.Fatalf("Initialize() failed: %s", err)
	}

	sphere := sc.Objects()[0]
	if sphere.Material == sc.DefaultMaterial() {
		t.Error("sphere kept the default material")
	}
	m, err := sc.Material(sphere.Material)
	if err != nil {
		t.Fatalf("sphere material: %s", err)
	}
	if m.BaseColor.Width != 64 || m.BaseColor.Height != 64 {
		t.Errorf("sphere texture is %dx%d, want 64x64", m.BaseColor.Width, m.BaseColor.Height)
	}

	set, err := sc.InstanceSet(ParticleSetID)
	if err != nil {
		t.Fatalf("particle set missing: %s", err)
	}
	if set.Mesh.Name != "particle" || set.Mesh.VertexCount != 24 || set.Mesh.IndexCount != 36 {
		t.Errorf("particle mesh = %+v, want the 24 vertex cube from %s", set.Mesh, ParticleModel)
	}
}

func TestInitializeFallsBackWithoutAssets(t *testing.T) {
	am := assets.NewAssetManager()
	defer am.Close()

	sc := newTestScene()
	g := newTestGame(t)
	g.ApplicationConfig.AssetDir = t.TempDir()
	if err := g.Initialize(sc, am); err != nil {
		t.Fatalf("Initialize() failed: %s", err)
	}
	if sc.Objects()[0].Material != sc.DefaultMaterial() {
		t.Error("sphere should use the default material")
	}
	set, err := sc.InstanceSet(ParticleSetID)
	if err != nil {
		t.Fatalf("particle set missing: %s", err)
	}
	if set.Mesh.Name != "cube" {
		t.Errorf("particle mesh = %q, want the generated cube", set.Mesh.Name)
	}
}
