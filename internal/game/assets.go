package game

import (
	"errors"
	"image"
	"image/color"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/schollz/progressbar/v3"

	"mini-scene/internal/config"
	"mini-scene/internal/graphics"
	"mini-scene/internal/graphics/gpu"
	"mini-scene/internal/graphics/renderer"
	"mini-scene/internal/graphics/texdata"
	"mini-scene/internal/material"
	"mini-scene/internal/meshing"
	"mini-scene/internal/scene"
)

const (
	defaultRoughness = 0.95
	skyFaceSize      = 256
	floorMaterial    = "ground"
)

// materialSet is a group of texture files sharing a prefix, such as
// bronze_albedo.png. Sets differ in how they name the metal map.
type materialSet struct {
	name  string
	metal string
}

// materialSets pair up with scene.DemoMeshes by index.
var materialSets = []materialSet{
	{"scratched", "metal"},
	{"floor", "metalness"},
	{"bronze", "metal"},
	{"cobblestone", "metal"},
	{"wood", "metal"},
}

// skyFaces are the cubemap face file names in +X, -X, +Y, -Y, +Z, -Z order.
var skyFaces = [6]string{"right", "left", "up", "down", "front", "back"}

// textureSlot is one map of a material: the sampler uniform it binds to,
// the file suffix and the stand-in used when the file is missing.
type textureSlot struct {
	uniform  string
	suffix   string
	fallback func(set string) *image.RGBA
}

func (m materialSet) slots() []textureSlot {
	return []textureSlot{
		{"albedoMap", "albedo", checkerFor},
		{"roughnessMap", "roughness", func(string) *image.RGBA { return texdata.Solid(color.RGBA{242, 242, 242, 255}) }},
		{"metalnessMap", m.metal, func(string) *image.RGBA { return texdata.Solid(color.RGBA{0, 0, 0, 255}) }},
		{"normalMap", "normals", func(string) *image.RGBA { return texdata.FlatNormal() }},
	}
}

// checkerFor derives a two-tone board from the set name so generated
// materials are still told apart.
func checkerFor(set string) *image.RGBA {
	var h uint32 = 2166136261
	for i := 0; i < len(set); i++ {
		h = (h ^ uint32(set[i])) * 16777619
	}
	a := color.RGBA{uint8(h), uint8(h >> 8), uint8(h >> 16), 255}
	b := color.RGBA{a.R / 2, a.G / 2, a.B / 2, 255}
	return texdata.Checker(128, 8, a, b)
}

func texturePath(dir, set, suffix string) string {
	return filepath.Join(dir, "textures", set+"_"+suffix+".png")
}

// Assets owns the GPU resources of the demo scene.
type Assets struct {
	scene.DemoAssets

	meshes []*graphics.Mesh
	sky    *graphics.Texture
}

// LoadAssets builds meshes on a worker pool, uploads them, and loads
// material and sky textures. Files that are missing are replaced with
// generated stand-ins.
func LoadAssets(cfg config.AssetSettings, programs *graphics.Programs) (*Assets, error) {
	a := &Assets{DemoAssets: scene.DemoAssets{Meshes: make(map[string]gpu.Mesh)}}

	geometry, err := buildGeometry(cfg)
	if err != nil {
		return nil, err
	}
	for name, g := range geometry {
		m := graphics.NewMesh(g)
		a.meshes = append(a.meshes, m)
		a.Meshes[name] = m
	}

	for _, set := range materialSets {
		a.Materials = append(a.Materials, newMaterial(cfg.Dir, set, programs.Main))
	}
	a.Floor = newMaterial(cfg.Dir, materialSet{floorMaterial, "metal"}, programs.Main)

	a.sky = loadSky(filepath.Join(cfg.Dir, cfg.Sky))
	a.Sky = &renderer.Sky{
		Mesh:    a.Meshes["cube"],
		Program: programs.Sky,
		Cubemap: a.sky,
	}
	return a, nil
}

// Release deletes meshes and textures. The assets are unusable afterwards.
func (a *Assets) Release() {
	for _, m := range a.meshes {
		m.Delete()
	}
	a.meshes = nil
	if a.sky != nil {
		a.sky.Delete()
		a.sky = nil
	}
	graphics.ReleaseTextures()
}

// meshBuilds returns a build for every mesh the demo needs. A model file
// under dir/models replaces the generated shape of the same name.
func meshBuilds(dir string) map[string]meshing.BuildFunc {
	shapes := map[string]meshing.BuildFunc{
		"sphere":   func() (*meshing.Geometry, error) { return meshing.Sphere(1, 48, 24), nil },
		"cube":     func() (*meshing.Geometry, error) { return meshing.Cube(1.6), nil },
		"helix":    func() (*meshing.Geometry, error) { return meshing.Helix(meshing.DefaultHelix()), nil },
		"cylinder": func() (*meshing.Geometry, error) { return meshing.Cylinder(0.8, 2, 32), nil },
		"torus":    func() (*meshing.Geometry, error) { return meshing.Torus(0.8, 0.3, 48, 24), nil },
	}
	builds := make(map[string]meshing.BuildFunc, len(shapes)+1)
	for name, shape := range shapes {
		path := filepath.Join(dir, "models", name+".obj")
		if _, err := os.Stat(path); err == nil {
			builds[name] = func() (*meshing.Geometry, error) { return meshing.LoadOBJFile(path) }
			continue
		}
		builds[name] = shape
	}
	builds[scene.FloorMesh] = func() (*meshing.Geometry, error) { return meshing.Plane(30, 10), nil }
	return builds
}

func buildGeometry(cfg config.AssetSettings) (map[string]*meshing.Geometry, error) {
	builds := meshBuilds(cfg.Dir)

	pool := meshing.NewWorkerPool(max(cfg.Workers, 1), len(builds))
	defer pool.Shutdown()

	bar := progressbar.Default(int64(len(builds)), "building meshes")
	geometry, err := pool.BuildAll(builds, func(string) { _ = bar.Add(1) })
	_ = bar.Finish()
	if err != nil {
		return nil, err
	}
	return geometry, nil
}

func newMaterial(dir string, set materialSet, program gpu.Program) *material.Material {
	m := material.New(set.name, program, mgl32.Vec3{1, 1, 1}, defaultRoughness)
	for _, slot := range set.slots() {
		path := texturePath(dir, set.name, slot.suffix)
		tex, err := graphics.GetTexture(path)
		if err != nil {
			logMissing(path, err)
			fallback := slot.fallback
			tex = graphics.GetGeneratedTexture("generated:"+set.name+"_"+slot.suffix, func() *image.RGBA {
				return fallback(set.name)
			})
		}
		m.AddTexture(slot.uniform, tex, gpu.SamplerLinearWrap)
	}
	return m
}

func loadSky(dir string) *graphics.Texture {
	var paths [6]string
	for i, face := range skyFaces {
		paths[i] = filepath.Join(dir, face+".png")
	}
	tex, err := graphics.LoadCubemap(paths)
	if err != nil {
		logMissing(dir, err)
		return graphics.NewCubemap(texdata.SkyFaces(skyFaceSize, texdata.DefaultSky))
	}
	return tex
}

// logMissing stays quiet about absent files, which are expected when no
// asset pack is installed.
func logMissing(path string, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	log.Printf("%s: %v, using generated stand-in", path, err)
}
