package game

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"mini-scene/internal/config"
	"mini-scene/internal/scene"
)

func TestRendererSettingsFromConfig(t *testing.T) {
	c := config.Default().Render
	c.Shadows = false
	c.ShadowMapSize = 1024
	c.ShadowDistance = 10
	c.ShadowExtent = 25
	c.PostScale = 0.5
	c.BlurRadius = 3
	c.Background = [4]float32{0.1, 0.2, 0.3, 1}

	s := RendererSettings(c)
	if s.Shadows || s.ShadowMapSize != 1024 {
		t.Fatalf("shadows: got %v/%d, want false/1024", s.Shadows, s.ShadowMapSize)
	}
	if s.Shadow.Distance != 10 || s.Shadow.Extent != 25 || s.Shadow.Far != 30 {
		t.Fatalf("shadow volume: got %+v", s.Shadow)
	}
	if s.Shadow.Fallback.Len() == 0 || s.Shadow.Near <= 0 {
		t.Fatalf("shadow defaults lost: %+v", s.Shadow)
	}
	if s.PostScale != 0.5 || s.BlurRadius != 3 || !s.PostProcess {
		t.Fatalf("post: got scale %v radius %d enabled %v", s.PostScale, s.BlurRadius, s.PostProcess)
	}
	if s.Background[2] != 0.3 {
		t.Fatalf("background: got %v", s.Background)
	}
}

func TestMaterialSetsCoverDemoMeshes(t *testing.T) {
	if len(materialSets) != len(scene.DemoMeshes) {
		t.Fatalf("got %d material sets for %d meshes", len(materialSets), len(scene.DemoMeshes))
	}
	seen := map[string]bool{floorMaterial: true}
	for _, set := range materialSets {
		if seen[set.name] {
			t.Fatalf("material name %q used twice", set.name)
		}
		seen[set.name] = true
		if got := len(set.slots()); got != 4 {
			t.Fatalf("%s: got %d texture slots, want 4", set.name, got)
		}
	}
	if got := texturePath("assets", "floor", "metalness"); got != filepath.Join("assets", "textures", "floor_metalness.png") {
		t.Fatalf("texture path: got %s", got)
	}
}

func TestCheckerStandInsDiffer(t *testing.T) {
	a := checkerFor("bronze")
	b := checkerFor("wood")
	if a.RGBAAt(0, 0) == b.RGBAAt(0, 0) {
		t.Fatal("different sets produced the same stand-in color")
	}
	if a.RGBAAt(0, 0) != checkerFor("bronze").RGBAAt(0, 0) {
		t.Fatal("stand-in color is not stable")
	}
}

func TestMeshBuildsPreferModelFiles(t *testing.T) {
	dir := t.TempDir()
	models := filepath.Join(dir, "models")
	if err := os.MkdirAll(models, 0o755); err != nil {
		t.Fatal(err)
	}
	obj := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	if err := os.WriteFile(filepath.Join(models, "torus.obj"), []byte(obj), 0o644); err != nil {
		t.Fatal(err)
	}

	builds := meshBuilds(dir)
	for _, name := range append([]string{scene.FloorMesh}, scene.DemoMeshes...) {
		if builds[name] == nil {
			t.Fatalf("no build for %s", name)
		}
	}

	torus, err := builds["torus"]()
	if err != nil {
		t.Fatal(err)
	}
	if got := torus.TriangleCount(); got != 1 {
		t.Fatalf("torus from file: got %d triangles, want 1", got)
	}
	sphere, err := builds["sphere"]()
	if err != nil {
		t.Fatal(err)
	}
	if sphere.TriangleCount() < 100 {
		t.Fatalf("generated sphere: got %d triangles", sphere.TriangleCount())
	}
}

func TestFPSLimiter(t *testing.T) {
	f := NewFPSLimiter()

	start := time.Now()
	f.Wait(0, false)
	if time.Since(start) > 5*time.Millisecond {
		t.Fatal("unlimited wait blocked")
	}

	start = time.Now()
	for i := 0; i < 3; i++ {
		f.Wait(100, false)
	}
	if got := time.Since(start); got < 25*time.Millisecond {
		t.Fatalf("three frames at 100 fps took %v, want at least 25ms", got)
	}
}

func TestIdleFrameInterval(t *testing.T) {
	cases := []struct {
		limit     int
		iconified bool
		want      time.Duration
	}{
		{0, false, 0},
		{144, false, time.Second / 144},
		{0, true, time.Second / idleFPS},
		{144, true, time.Second / idleFPS},
		{10, true, time.Second / 10},
	}
	for _, c := range cases {
		if got := frameInterval(c.limit, c.iconified); got != c.want {
			t.Fatalf("limit %d iconified %v: got %v, want %v", c.limit, c.iconified, got, c.want)
		}
	}
}

func TestToggleSkipsInvalidSettings(t *testing.T) {
	defer config.Set(config.Default())

	s := config.Default()
	s.Render.Shadows = false
	s.Render.ShadowMapSize = 0
	config.Set(s)
	v := config.Version()

	toggle("shadows", func(r *config.RenderSettings) *bool { return &r.Shadows })
	if config.Version() != v || config.Get().Render.Shadows {
		t.Fatalf("invalid toggle was published: version %d -> %d", v, config.Version())
	}

	config.Set(config.Default())
	v = config.Version()
	toggle("post-process", func(r *config.RenderSettings) *bool { return &r.PostProcess })
	if config.Version() != v+1 || config.Get().Render.PostProcess {
		t.Fatalf("post-process toggle: got %v at version %d", config.Get().Render.PostProcess, config.Version())
	}
}

func TestAspect(t *testing.T) {
	if got := aspect(1920, 1080); got != float32(1920)/1080 {
		t.Fatalf("got %v", got)
	}
	if got := aspect(800, 0); got != 1 {
		t.Fatalf("zero height: got %v, want 1", got)
	}
}
