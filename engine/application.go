package engine

import (
	"fmt"
	"os"

	"github.com/ironspire/engine/engine/assets"
	"github.com/ironspire/engine/engine/config"
	"github.com/ironspire/engine/engine/core"
	"github.com/ironspire/engine/engine/ecs"
	"github.com/ironspire/engine/engine/facade"
	"github.com/ironspire/engine/engine/gpu"
	stdmath "github.com/ironspire/engine/engine/math"
	"github.com/ironspire/engine/engine/platform"
	"github.com/ironspire/engine/engine/renderer/components"
	"github.com/ironspire/engine/engine/renderer/vulkan"
	"github.com/ironspire/engine/engine/renderpass"
)

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32
	// Window starting position y axis, if applicable.
	StartPosY uint32
	// Window starting width, if applicable.
	StartWidth uint32
	// Window starting height, if applicable.
	StartHeight uint32
	// The application name used in windowing, if applicable.
	Name string
	// Vsync enables the swapchain's present-mode wait.
	Vsync bool
	// ClearColor is the frame's ambient clear color before lighting.
	ClearColor stdmath.Vec3
	// FOV, near/far planes for the default camera's projection.
	FOVRadians float32
	NearClip   float32
	FarClip    float32
	// ConfigPath optionally names a TOML engine config file; when set,
	// its window/render/asset sections override the fields above.
	ConfigPath string
}

// Application is the single, long-lived instance threaded through
// application state ("global renderer singleton" design
// note). It owns the platform window, the concrete gpu.Context, the
// renderer façade, and the ECS world; Game's callbacks are handed a
// reference to it instead of reaching through package-level state.
type Application struct {
	GameInstance *Game

	Platform   *platform.Platform
	GfxContext gpu.Context
	Facade     *facade.Facade
	World      *ecs.World
	Camera     *components.Camera
	Assets     *assets.AssetManager

	IsRunning   bool
	IsSuspended bool

	Width, Height uint32
	Clock         *core.Clock
	LastTime      float64
}

var appState *Application

// ApplicationCreate brings up input/events, the platform window, the
// Vulkan gpu.Context, the renderer façade and the ECS world, then
// dispatches the game's Boot/Initialize/OnResize callbacks in that
// order.
func ApplicationCreate(gameInstance *Game) (*Application, error) {
	if appState != nil {
		return nil, fmt.Errorf("application already initialized")
	}

	cfg := gameInstance.ApplicationConfig

	engineCfg := config.Default()
	if cfg.ConfigPath != "" {
		loaded, err := config.Load(cfg.ConfigPath)
		if err != nil {
			core.LogWarn("falling back to built-in config: %s", err)
		} else {
			engineCfg = loaded
			cfg.Name = loaded.Window.Title
			cfg.StartPosX, cfg.StartPosY = loaded.Window.X, loaded.Window.Y
			cfg.StartWidth, cfg.StartHeight = loaded.Window.Width, loaded.Window.Height
			cfg.Vsync = loaded.Render.Vsync
		}
	}

	app := &Application{
		GameInstance: gameInstance,
		Clock:        core.NewClock(),
		IsRunning:    true,
		Camera:       components.NewCamera(),
		Width:        cfg.StartWidth,
		Height:       cfg.StartHeight,
	}
	appState = app

	if err := core.InputInitialize(); err != nil {
		return nil, err
	}
	if err := core.MetricsInitialize(); err != nil {
		return nil, err
	}
	if !core.EventInitialize() {
		return nil, fmt.Errorf("failed to initialize the event system")
	}

	core.EventRegister(core.EventApplicationQuit, app, app.onApplicationQuit)
	core.EventRegister(core.EventKeyPressed, app, app.onKey)
	core.EventRegister(core.EventKeyReleased, app, app.onKey)
	core.EventRegister(core.EventWindowFramebufferResized, app, app.onResized)

	p, err := platform.New()
	if err != nil {
		return nil, err
	}
	if err := p.Startup(cfg.Name, cfg.StartPosX, cfg.StartPosY, cfg.StartWidth, cfg.StartHeight); err != nil {
		return nil, err
	}
	app.Platform = p

	ctx, err := vulkan.NewContext(p, cfg.Name, cfg.StartWidth, cfg.StartHeight, gpu.ContextConfig{
		StatesMask: gpu.MaskOf(gpu.StateDepth, gpu.StateCull),
		Vsync:      cfg.Vsync,
	})
	if err != nil {
		return nil, fmt.Errorf("vulkan context init: %w", err)
	}
	app.GfxContext = ctx

	var passGraph *config.PassGraphDescriptor
	if engineCfg.Render.PassGraph != "" {
		passGraph, err = config.LoadPassGraph(engineCfg.Render.PassGraph)
		if err != nil {
			core.LogWarn("falling back to the default pass graph: %s", err)
			passGraph = nil
		}
	}

	f, err := facade.Init(ctx, passGraph)
	if err != nil {
		return nil, fmt.Errorf("facade init: %w", err)
	}
	app.Facade = f
	app.World = ecs.NewWorld()

	if _, err := os.Stat(engineCfg.AssetBasePath); err == nil {
		am, err := assets.NewAssetManager(engineCfg.AssetBasePath, f.Resources())
		if err != nil {
			return nil, fmt.Errorf("asset manager init: %w", err)
		}
		am.SetRealizer(f)
		if err := am.Initialize(); err != nil {
			return nil, fmt.Errorf("asset watcher init: %w", err)
		}
		app.Assets = am
	} else {
		core.LogDebug("asset path %s not present, hot-reload disabled", engineCfg.AssetBasePath)
	}

	if gameInstance.FnBoot != nil {
		if err := gameInstance.FnBoot(app); err != nil {
			return nil, err
		}
	}
	if gameInstance.FnInitialize != nil {
		if err := gameInstance.FnInitialize(app); err != nil {
			return nil, err
		}
	}
	if gameInstance.FnOnResize != nil {
		if err := gameInstance.FnOnResize(app, app.Width, app.Height); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Run drives the per-frame lifecycle: update -> begin ->
// world render -> game render -> end, until the window is asked to
// close or EventApplicationQuit fires.
func (app *Application) Run() error {
	app.Clock.Start()
	app.Clock.Update()
	app.LastTime = app.Clock.Elapsed()

	for app.IsRunning && !app.Platform.ShouldClose() {
		app.Platform.PumpMessages()

		app.Clock.Update()
		currentTime := app.Clock.Elapsed()
		deltaTime := currentTime - app.LastTime
		app.LastTime = currentTime

		core.InputUpdate(deltaTime)
		core.MetricsUpdate(deltaTime)

		if app.IsSuspended {
			continue
		}

		if app.GameInstance.FnUpdate != nil {
			if err := app.GameInstance.FnUpdate(app, deltaTime); err != nil {
				return err
			}
		}
		app.World.Update(float32(deltaTime))

		frame := app.buildFrameData()
		app.Facade.Begin(frame)
		app.World.Render(app.Facade)
		if app.GameInstance.FnRender != nil {
			if err := app.GameInstance.FnRender(app, deltaTime); err != nil {
				return err
			}
		}
		app.Facade.End(frame)
		app.GfxContext.Present()
		app.World.FlushDestroyed()
	}

	return nil
}

func (app *Application) buildFrameData() *renderpass.FrameData {
	cfg := app.GameInstance.ApplicationConfig
	aspect := float32(1.0)
	if app.Height != 0 {
		aspect = float32(app.Width) / float32(app.Height)
	}
	return &renderpass.FrameData{
		View:           app.Camera.GetView(),
		Projection:     stdmath.NewMat4Perspective(cfg.FOVRadians, aspect, cfg.NearClip, cfg.FarClip),
		CameraPosition: app.Camera.GetPosition(),
		Ambient:        cfg.ClearColor,
	}
}

// Shutdown tears down the game, the platform window, and the event
// system in reverse bring-up order.
func (app *Application) Shutdown() error {
	if app.GameInstance.FnShutdown != nil {
		if err := app.GameInstance.FnShutdown(app); err != nil {
			core.LogError(err.Error())
		}
	}
	if app.Assets != nil {
		if err := app.Assets.Close(); err != nil {
			core.LogError(err.Error())
		}
	}
	if d, ok := app.GfxContext.(interface{ Destroy() error }); ok {
		if err := d.Destroy(); err != nil {
			core.LogError(err.Error())
		}
	}
	if app.Platform != nil {
		app.Platform.Shutdown()
	}
	core.EventShutdown()
	return core.InputShutdown()
}

func (app *Application) onApplicationQuit(context core.EventContext) bool {
	core.LogInfo("Application quit event received, shutting down.")
	app.IsRunning = false
	return true
}

func (app *Application) onKey(context core.EventContext) bool {
	keyEvent, ok := context.Data.(*core.KeyEvent)
	if !ok {
		return false
	}
	if context.Type == core.EventKeyPressed && keyEvent.KeyCode == core.KEY_ESCAPE {
		core.EventFire(core.EventContext{Type: core.EventApplicationQuit})
		return true
	}
	return false
}

func (app *Application) onResized(context core.EventContext) bool {
	resizeEvent, ok := context.Data.(*core.WindowResizedEvent)
	if !ok {
		return false
	}
	width, height := resizeEvent.Width, resizeEvent.Height
	if width == app.Width && height == app.Height {
		return false
	}
	app.Width, app.Height = width, height

	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		app.IsSuspended = true
		return true
	}
	if app.IsSuspended {
		core.LogInfo("Window restored, resuming application.")
		app.IsSuspended = false
	}
	app.Facade.Resize(width, height)
	if app.GameInstance.FnOnResize != nil {
		if err := app.GameInstance.FnOnResize(app, width, height); err != nil {
			core.LogError("resize callback failed: %s", err.Error())
		}
	}
	return false
}
