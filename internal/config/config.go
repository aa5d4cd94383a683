package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid settings")

// WindowSettings holds window and frame pacing configuration
type WindowSettings struct {
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Title    string `yaml:"title"`
	VSync    bool   `yaml:"vsync"`
	FPSLimit int    `yaml:"fpsLimit"` // 0 means unlimited
}

// RenderSettings holds frame pipeline configuration
type RenderSettings struct {
	Shadows        bool       `yaml:"shadows"`
	ShadowMapSize  int        `yaml:"shadowMapSize"`
	ShadowDistance float32    `yaml:"shadowDistance"`
	ShadowExtent   float32    `yaml:"shadowExtent"`
	PostProcess    bool       `yaml:"postProcess"`
	PostScale      float32    `yaml:"postScale"`
	BlurRadius     int        `yaml:"blurRadius"`
	Background     [4]float32 `yaml:"background"`
	Ambient        [3]float32 `yaml:"ambient"`
}

// CameraSettings holds fly camera configuration
type CameraSettings struct {
	MoveSpeed float32 `yaml:"moveSpeed"`
	LookSpeed float32 `yaml:"lookSpeed"`
	NearClip  float32 `yaml:"nearClip"`
	FarClip   float32 `yaml:"farClip"`
}

// AssetSettings locates files on disk. Missing meshes and textures fall
// back to generated ones.
type AssetSettings struct {
	Dir     string `yaml:"dir"`
	Shaders string `yaml:"shaders"`
	Sky     string `yaml:"sky"`
	Workers int    `yaml:"workers"`
}

// Settings is the whole configuration file.
type Settings struct {
	Window WindowSettings `yaml:"window"`
	Render RenderSettings `yaml:"render"`
	Camera CameraSettings `yaml:"camera"`
	Assets AssetSettings  `yaml:"assets"`
}

// Default returns the built-in configuration.
func Default() Settings {
	return Settings{
		Window: WindowSettings{
			Width:    1280,
			Height:   720,
			Title:    "mini-scene",
			VSync:    true,
			FPSLimit: 0,
		},
		Render: RenderSettings{
			Shadows:        true,
			ShadowMapSize:  2048,
			ShadowDistance: 20,
			ShadowExtent:   40,
			PostProcess:    true,
			PostScale:      1,
			BlurRadius:     0,
			Background:     [4]float32{0.4, 0.6, 0.75, 1},
			Ambient:        [3]float32{0.1, 0.1, 0.15},
		},
		Camera: CameraSettings{
			MoveSpeed: 5,
			LookSpeed: 0.005,
			NearClip:  0.01,
			FarClip:   100,
		},
		Assets: AssetSettings{
			Dir:     "assets",
			Shaders: "assets/shaders",
			Sky:     "skies/CloudsPink",
			Workers: 4,
		},
	}
}

// Validate reports every out-of-range field.
func (s Settings) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(s.Window.Width > 0 && s.Window.Height > 0, "window size %dx%d", s.Window.Width, s.Window.Height)
	check(s.Window.FPSLimit >= 0, "fpsLimit %d", s.Window.FPSLimit)

	r := s.Render
	// shadow fields are checked even when shadows are off, since a toggle
	// can enable them at runtime
	check(r.ShadowMapSize > 0, "shadowMapSize %d", r.ShadowMapSize)
	check(r.ShadowExtent > 0, "shadowExtent %v", r.ShadowExtent)
	check(r.ShadowDistance > 0, "shadowDistance %v", r.ShadowDistance)
	check(r.PostScale > 0 && r.PostScale <= 4, "postScale %v outside (0, 4]", r.PostScale)
	check(r.BlurRadius >= 0 && r.BlurRadius <= 16, "blurRadius %d outside [0, 16]", r.BlurRadius)

	c := s.Camera
	check(c.NearClip > 0, "nearClip %v", c.NearClip)
	check(c.FarClip > c.NearClip, "farClip %v not beyond nearClip %v", c.FarClip, c.NearClip)
	check(c.MoveSpeed >= 0 && c.LookSpeed >= 0, "camera speeds %v, %v", c.MoveSpeed, c.LookSpeed)

	return errors.Join(errs...)
}

// Parse overlays YAML onto the defaults and validates the result.
func Parse(data []byte) (Settings, error) {
	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadFile reads and parses a settings file.
func LoadFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}
	s, err := Parse(data)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

var global = struct {
	mu       sync.RWMutex
	settings Settings
	version  uint64
}{settings: Default()}

// Get returns the current settings
func Get() Settings {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.settings
}

// Set publishes new settings and bumps the version
func Set(s Settings) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.settings = s
	global.version++
}

// Update applies fn to a copy of the current settings and publishes the
// result only if it validates. The current settings are kept otherwise.
func Update(fn func(*Settings)) (Settings, error) {
	global.mu.Lock()
	defer global.mu.Unlock()

	s := global.settings
	fn(&s)
	if err := s.Validate(); err != nil {
		return global.settings, err
	}
	global.settings = s
	global.version++
	return s, nil
}

// Version increases on every Set, so a frame loop can detect changes
// without comparing settings.
func Version() uint64 {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.version
}
