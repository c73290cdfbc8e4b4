package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %s", err)
	}
	if cfg.Window.Width != 1280 || cfg.Window.Height != 720 {
		t.Errorf("unexpected window size %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	want := []float32{1, 0, 0, 1}
	for i := range want {
		if cfg.Renderer.ClearColor[i] != want[i] {
			t.Errorf("clear color[%d] = %f, want %f", i, cfg.Renderer.ClearColor[i], want[i])
		}
	}
	if cfg.Renderer.WorkgroupSize != ComputeLocalSize {
		t.Errorf("workgroup size = %d, want %d", cfg.Renderer.WorkgroupSize, ComputeLocalSize)
	}
	if cfg.Shaders.Watch {
		t.Error("shader watch should be off by default")
	}
	if cfg.Assets.Dir != "assets" {
		t.Errorf("asset dir = %q, want %q", cfg.Assets.Dir, "assets")
	}
}

func TestParseRejectsBadWorkgroup(t *testing.T) {
	for _, size := range []string{"100", "128", "512"} {
		doc := []byte(`
[window]
width = 10
height = 10
[renderer]
clear_color = [0.0, 0.0, 0.0, 1.0]
max_objects = 1
max_materials = 1
max_instance_sets = 1
max_vertices = 1
max_indices = 1
staging_size = 1
workgroup_size = ` + size + `
`)
		if _, err := Parse(doc); err == nil {
			t.Errorf("workgroup size %s accepted, the compute shader runs %d invocations per group", size, ComputeLocalSize)
		}
	}
}

func TestParseDefaultsShaderDir(t *testing.T) {
	doc := []byte(`
[window]
width = 10
height = 10
[renderer]
clear_color = [0.0, 0.0, 0.0, 1.0]
max_objects = 1
max_materials = 1
max_instance_sets = 1
max_vertices = 1
max_indices = 1
staging_size = 1
workgroup_size = 256
`)
	cfg, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse() failed: %s", err)
	}
	if cfg.Shaders.Dir != "." {
		t.Errorf("shader dir = %q, want %q", cfg.Shaders.Dir, ".")
	}
	if cfg.Assets.Dir != "." {
		t.Errorf("asset dir = %q, want %q", cfg.Assets.Dir, ".")
	}
}

func TestParseRejectsShortClearColor(t *testing.T) {
	doc := []byte(`
[window]
width = 10
height = 10
[renderer]
clear_color = [0.0, 0.0]
`)
	if _, err := Parse(doc); err == nil {
		t.Error("expected an error for a two component clear color")
	}
}
