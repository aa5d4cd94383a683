package game

import (
	"fmt"
	"log"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"mini-scene/internal/config"
	"mini-scene/internal/graphics"
	"mini-scene/internal/graphics/renderer"
	"mini-scene/internal/input"
	"mini-scene/internal/profiling"
	"mini-scene/internal/scene"
)

const slowFrame = 16 * time.Millisecond

// App drives the demo: it owns the window's GPU resources and runs the
// poll, update, render loop.
type App struct {
	window       *glfw.Window
	inputManager *input.InputManager

	device   *graphics.Device
	programs *graphics.Programs
	assets   *Assets
	renderer *renderer.Renderer
	scene    *scene.Scene

	fpsLimiter    *FPSLimiter
	lastTime      time.Time
	configVersion uint64
	profiling     bool
}

// NewApp loads shaders and assets and builds the demo scene for the
// current configuration. The window's context must be current.
func NewApp(window *glfw.Window, im *input.InputManager) (*App, error) {
	cfg := config.Get()
	a := &App{
		window:        window,
		inputManager:  im,
		fpsLimiter:    NewFPSLimiter(),
		configVersion: config.Version(),
	}

	graphics.ShadersDir = cfg.Assets.Shaders
	programs, err := graphics.LoadPrograms()
	if err != nil {
		return nil, err
	}
	a.programs = programs

	if a.assets, err = LoadAssets(cfg.Assets, programs); err != nil {
		a.Dispose()
		return nil, err
	}

	width, height := window.GetFramebufferSize()
	a.device = graphics.NewDevice(window, width, height)

	a.renderer, err = renderer.New(a.device, renderer.Programs{
		Shadow: programs.Shadow,
		Blur:   programs.Post,
	}, RendererSettings(cfg.Render), width, height)
	if err != nil {
		a.Dispose()
		return nil, err
	}

	if a.scene, err = scene.NewDemo(a.assets.DemoAssets, cfg.Camera, aspect(width, height)); err != nil {
		a.Dispose()
		return nil, err
	}
	a.scene.Ambient = mgl32.Vec3(cfg.Render.Ambient)

	return a, nil
}

// Run loops until the window is closed or a frame fails.
func (a *App) Run() error {
	a.lastTime = time.Now()
	for !a.window.ShouldClose() {
		if err := a.tick(); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) tick() error {
	profiling.ResetFrame()
	startTick := time.Now() // Measure pure processing time
	now := time.Now()
	dt := now.Sub(a.lastTime).Seconds()
	a.lastTime = now

	glfw.PollEvents()

	if err := a.applyConfig(); err != nil {
		return err
	}
	a.handleActions()
	a.scene.Update(float32(dt), a.inputManager.Controls())

	if err := a.render(); err != nil {
		return err
	}

	processingDuration := time.Since(startTick)
	if a.profiling && processingDuration > slowFrame {
		log.Printf("Slow frame: %v. Top tasks: %s", processingDuration, profiling.TopN(5))
	}

	a.inputManager.PostUpdate() // Clear "JustPressed" flags

	iconified := a.window.GetAttribute(glfw.Iconified) == glfw.True
	a.fpsLimiter.Wait(config.Get().Window.FPSLimit, iconified)
	return nil
}

func (a *App) render() error {
	defer profiling.Track("app.render")()
	return a.renderer.RenderFrame(a.scene.Frame())
}

// handleActions reacts to this frame's key presses. Render toggles go
// through the global settings so they take the same path as a config
// file reload.
func (a *App) handleActions() {
	im := a.inputManager

	if im.JustPressed(input.ActionQuit) {
		a.window.SetShouldClose(true)
	}
	if i := im.SelectedCamera(); i >= 0 {
		if err := a.scene.SelectCamera(i); err != nil {
			log.Printf("%v", err)
		}
	}
	if im.JustPressed(input.ActionToggleShadows) {
		toggle("shadows", func(r *config.RenderSettings) *bool { return &r.Shadows })
	}
	if im.JustPressed(input.ActionTogglePostProcess) {
		toggle("post-process", func(r *config.RenderSettings) *bool { return &r.PostProcess })
	}
	if im.JustPressed(input.ActionToggleProfiling) {
		a.profiling = !a.profiling
	}

	if im.JustPressed(input.ActionLook) {
		a.window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	} else if im.JustReleased(input.ActionLook) {
		a.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
}

// toggle flips one render switch through config.Update. Settings that would
// fail validation are not published.
func toggle(name string, field func(*config.RenderSettings) *bool) {
	s, err := config.Update(func(s *config.Settings) {
		f := field(&s.Render)
		*f = !*f
	})
	if err != nil {
		log.Printf("toggle %s: %v", name, err)
		return
	}
	log.Printf("%s: %v", name, *field(&s.Render))
}

// applyConfig pushes settings published since the last frame into the
// cameras and renderer.
func (a *App) applyConfig() error {
	v := config.Version()
	if v == a.configVersion {
		return nil
	}
	a.configVersion = v
	cfg := config.Get()

	a.scene.Ambient = mgl32.Vec3(cfg.Render.Ambient)
	for _, c := range a.scene.Cameras() {
		c.SetMovementSpeed(cfg.Camera.MoveSpeed)
		c.SetMouseLookSpeed(cfg.Camera.LookSpeed)
		c.SetNearClip(cfg.Camera.NearClip)
		c.SetFarClip(cfg.Camera.FarClip)
	}
	glfw.SwapInterval(swapInterval(cfg.Window.VSync))

	if err := a.renderer.Apply(RendererSettings(cfg.Render)); err != nil {
		return fmt.Errorf("apply settings: %w", err)
	}
	return nil
}

// Resize follows a framebuffer size change. Minimized windows report a
// zero size and are skipped by the renderer.
func (a *App) Resize(width, height int) {
	if width > 0 && height > 0 {
		a.device.SetWindowSize(width, height)
	}
	if err := a.scene.Resize(a.renderer, width, height); err != nil {
		log.Printf("resize %dx%d: %v", width, height, err)
	}
}

// RefreshRender handles window resize repaints
func (a *App) RefreshRender() {
	if err := a.render(); err != nil {
		log.Printf("refresh: %v", err)
	}
}

// Dispose frees everything NewApp created. It is safe on a partly built
// App.
func (a *App) Dispose() {
	if a.renderer != nil {
		a.renderer.Dispose()
		a.renderer = nil
	}
	if a.assets != nil {
		a.assets.Release()
		a.assets = nil
	}
	if a.programs != nil {
		a.programs.Delete()
		a.programs = nil
	}
	if a.device != nil {
		a.device.Release()
		a.device = nil
	}
}

func aspect(width, height int) float32 {
	if width <= 0 || height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}

func swapInterval(vsync bool) int {
	if vsync {
		return 1
	}
	return 0
}
