package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"

	"mini-scene/internal/config"
	"mini-scene/internal/game"
	"mini-scene/internal/input"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML settings file, watched for changes")
	width := flag.Int("width", 0, "window width, overrides the settings file")
	height := flag.Int("height", 0, "window height, overrides the settings file")
	flag.Parse()

	cfg, err := loadSettings(*configPath, *width, *height)
	if err != nil {
		log.Fatalf("mini-scene: %v", err)
	}
	config.Set(cfg)

	if err := run(cfg, *configPath); err != nil {
		closer.Fatalln("mini-scene:", err)
	}
	closer.Close()
}

// run owns the window and every GL resource. They are torn down here on
// the main thread, before closer exits the process.
func run(cfg config.Settings, configPath string) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw: %w", err)
	}
	defer glfw.Terminate()

	window, err := game.SetupWindow(cfg.Window)
	if err != nil {
		return fmt.Errorf("window: %w", err)
	}
	defer window.Destroy()

	app, err := game.NewApp(window, input.NewInputManager())
	if err != nil {
		return err
	}
	defer app.Dispose()
	game.SetupInputHandlers(app)

	if configPath != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		closer.Bind(cancel)
		if err := config.Watch(ctx, configPath); err != nil {
			log.Printf("mini-scene: %v", err)
		}
	}

	return app.Run()
}

// loadSettings reads path when given and applies the size flags on top.
func loadSettings(path string, width, height int) (config.Settings, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return config.Settings{}, err
		}
	}
	if width > 0 {
		cfg.Window.Width = width
	}
	if height > 0 {
		cfg.Window.Height = height
	}
	return cfg, cfg.Validate()
}
