// Package config loads the engine's TOML configuration (window
// geometry, vsync, msaa samples, asset base path, pass-graph
// descriptor override) with go-toml/v2 and watches the config file for
// hot-reload with fsnotify. The asset directory is watched by
// engine/assets, not by this package.
package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/ironspire/engine/engine/core"
	"github.com/pelletier/go-toml/v2"
)

// EventConfigReloaded is fired on core's event bus whenever the watched
// config file changes and is successfully re-parsed.
const EventConfigReloaded core.EventCode = core.MaxEngineEventCode + 1

// ConfigReloadedEvent is the payload of EventConfigReloaded.
type ConfigReloadedEvent struct {
	Config *EngineConfig
}

// WindowConfig mirrors the geometry platform.Startup expects.
type WindowConfig struct {
	Title string `toml:"title"`
	X uint32 `toml:"x"`
	Y uint32 `toml:"y"`
	Width uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

// RenderConfig mirrors gpu.ContextConfig's scalar knobs.
type RenderConfig struct {
	Vsync bool `toml:"vsync"`
	MSAASamples uint32 `toml:"msaa_samples"`
	PassGraph string `toml:"pass_graph"` // path to a YAML pass-graph descriptor override
}

// EngineConfig is the top-level TOML document.
type EngineConfig struct {
	Window WindowConfig `toml:"window"`
	Render RenderConfig `toml:"render"`
	AssetBasePath string `toml:"asset_base_path"`
}

// Default returns the engine's built-in configuration, used when no
// config file is present.
func Default() *EngineConfig {
	return &EngineConfig{
		Window: WindowConfig{Title: "ironspire", Width: 1280, Height: 720},
		Render: RenderConfig{Vsync: true, MSAASamples: 4},
		AssetBasePath: "assets",
	}
}

// Load reads and parses a TOML config file.
func Load(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		core.LogError("config: failed to parse %s: %s", path, err)
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Watcher reloads path whenever it changes on disk, firing
// EventConfigReloaded on the shared event bus rather than a bespoke
// channel.
type Watcher struct {
	path string
	fsw *fsnotify.Watcher
	current *EngineConfig

	mu sync.Mutex
	done chan struct{}
}

func NewWatcher(path string) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: watcher init: %w", err)
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	w := &Watcher{path: path, fsw: fsw, current: cfg, done: make(chan struct{})}
	go w.loop()
	return w, nil
}

func (w *Watcher) Current() *EngineConfig {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				core.LogWarn("config: reload of %s failed: %s", w.path, err)
				continue
			}
			w.mu.Lock()
			w.current = cfg
			w.mu.Unlock()
			core.EventFire(core.EventContext{Type: EventConfigReloaded, Data: ConfigReloadedEvent{Config: cfg}})
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			core.LogWarn("config: watcher error: %s", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
