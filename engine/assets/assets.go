// Package assets owns the engine's hot-reloadable asset pipeline:
// it watches an asset tree with fsnotify, determines each changed
// file's resources.Kind from its extension, and dispatches to a
// map[Kind]LoaderFunc registry that parses the file into the
// resources package's loaded-payload types. The registry makes NBR
// dispatch extensible to new resource kinds without touching a fixed
// switch statement.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ironspire/engine/engine/assets/loaders"
	"github.com/ironspire/engine/engine/core"
	"github.com/ironspire/engine/engine/resources"
)

// EventAssetReloaded fires on the shared event bus whenever a watched
// asset file is (re)loaded successfully.
const EventAssetReloaded core.EventCode = core.MaxEngineEventCode + 2

// AssetReloadedEvent is EventAssetReloaded's payload.
type AssetReloadedEvent struct {
	Path string
	Kind resources.Kind
	Data interface{}
}

// Realizer turns a loader's CPU payload into the engine-facing
// resource the manager should store: uploading pixels to a GPU
// texture, resolving a material's map names into bindless handles,
// converting a model into its queue-ready shape. A nil realizer
// stores the loader's payload unchanged.
type Realizer interface {
	Realize(path string, kind resources.Kind, data interface{}) (interface{}, error)
}

// AssetInfo tracks one watched file's last known kind and load time.
type AssetInfo struct {
	Path       string
	Kind       resources.Kind
	LastLoaded time.Time
}

// AssetManager watches basePath for changes and loads matched files
// through the registered LoaderFunc for their resources.Kind,
// publishing results into the engine's resources.Manager under the
// default group.
type AssetManager struct {
	basePath string
	mgr      *resources.Manager

	loaders  map[resources.Kind]LoaderFunc
	realizer Realizer

	mu     sync.RWMutex
	assets map[string]*AssetInfo

	fsw  *fsnotify.Watcher
	done chan struct{}
}

// NewAssetManager builds a manager rooted at basePath, pushing loaded
// resources into mgr's default group.
func NewAssetManager(basePath string, mgr *resources.Manager) (*AssetManager, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("assets: watcher init: %w", err)
	}

	am := &AssetManager{
		basePath: basePath,
		mgr:      mgr,
		loaders:  make(map[resources.Kind]LoaderFunc),
		assets:   make(map[string]*AssetInfo),
		fsw:      fsw,
		done:     make(chan struct{}),
	}
	am.registerDefaultLoaders()
	return am, nil
}

func (am *AssetManager) registerDefaultLoaders() {
	am.RegisterLoader(resources.KindTexture, loaders.LoadImage)
	am.RegisterLoader(resources.KindMaterial, loaders.LoadMaterial)
	am.RegisterLoader(resources.KindShader, loaders.LoadShader)
	am.RegisterLoader(resources.KindModel, loaders.LoadModel)
	am.RegisterLoader(resources.KindFont, loadFont)
	am.RegisterLoader(resources.KindShaderContext, loaders.LoadBinary)
}

// RegisterLoader installs (or overrides) the LoaderFunc for kind.
func (am *AssetManager) RegisterLoader(kind resources.Kind, fn LoaderFunc) {
	am.loaders[kind] = fn
}

// SetRealizer installs the realizer every subsequent Load runs its
// payload through before pushing into the resource manager.
func (am *AssetManager) SetRealizer(r Realizer) {
	am.realizer = r
}

// Initialize starts the hot-reload watcher and performs an initial
// recursive scan of basePath.
func (am *AssetManager) Initialize() error {
	go am.watchLoop()
	return am.watchRecursive(am.basePath)
}

// Load reads path through the loader registered for kind, pushing the
// result into the manager's default resource group and firing
// EventAssetReloaded. params is forwarded to the loader unchanged
// (e.g. a flip-on-load bool for textures).
func (am *AssetManager) Load(path string, kind resources.Kind, params interface{}) (resources.ResourceID, error) {
	fn, ok := am.loaders[kind]
	if !ok {
		return resources.ResourceID{}, fmt.Errorf("assets: no loader registered for kind %d", kind)
	}

	data, err := fn(path, params)
	if err != nil {
		return resources.ResourceID{}, fmt.Errorf("assets: load %s: %w", path, err)
	}
	if am.realizer != nil {
		data, err = am.realizer.Realize(path, kind, data)
		if err != nil {
			return resources.ResourceID{}, fmt.Errorf("assets: realize %s: %w", path, err)
		}
	}

	id := am.mgr.Push(resources.RESOURCE_CACHE_ID, kind, data)

	am.mu.Lock()
	am.assets[path] = &AssetInfo{Path: path, Kind: kind, LastLoaded: time.Now()}
	am.mu.Unlock()

	core.EventFire(core.EventContext{Type: EventAssetReloaded, Data: AssetReloadedEvent{Path: path, Kind: kind, Data: data}})
	return id, nil
}

// Close stops the hot-reload watcher.
func (am *AssetManager) Close() error {
	close(am.done)
	return am.fsw.Close()
}

func (am *AssetManager) watchLoop() {
	for {
		select {
		case ev, ok := <-am.fsw.Events:
			if !ok {
				return
			}
			am.handleEvent(ev)
		case err, ok := <-am.fsw.Errors:
			if !ok {
				return
			}
			core.LogWarn("assets: watcher error: %s", err)
		case <-am.done:
			return
		}
	}
}

func (am *AssetManager) handleEvent(ev fsnotify.Event) {
	if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
		if ev.Op&fsnotify.Create != 0 {
			if err := am.watchRecursive(ev.Name); err != nil {
				core.LogWarn("assets: failed to watch new directory %s: %s", ev.Name, err)
			}
		}
		return
	}

	switch {
	case ev.Op&(fsnotify.Write|fsnotify.Create) != 0:
		kind, ok := determineKind(ev.Name)
		if !ok {
			return
		}
		if _, err := am.Load(ev.Name, kind, nil); err != nil {
			core.LogWarn("assets: reload of %s failed: %s", ev.Name, err)
		}
	case ev.Op&fsnotify.Remove != 0:
		am.mu.Lock()
		delete(am.assets, ev.Name)
		am.mu.Unlock()
		am.fsw.Remove(ev.Name)
	}
}

func (am *AssetManager) watchRecursive(root string) error {
	return filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.fsw.Add(path)
		}
		return nil
	})
}

// loadFont dispatches on extension between the two font flavors that
// share resources.KindFont: pre-baked BMFont atlases and system TTF/OTF
// faces rasterized at load time.
func loadFont(path string, params interface{}) (interface{}, error) {
	if strings.EqualFold(filepath.Ext(path), ".fontcfg") {
		return loaders.LoadSystemFont(path, params)
	}
	return loaders.LoadBitmapFont(path, params)
}

// determineKind maps a file extension to the resources.Kind a loader
// is registered for. Binary NBR caches (identified by their header's
// Kind field rather than extension) are dispatched separately by
// callers that already know the Kind up front.
func determineKind(path string) (resources.Kind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".tga", ".bmp":
		return resources.KindTexture, true
	case ".amt":
		return resources.KindMaterial, true
	case ".shadercfg":
		return resources.KindShader, true
	case ".gltf", ".glb":
		return resources.KindModel, true
	case ".fnt", ".fontcfg":
		return resources.KindFont, true
	case ".spv":
		return resources.KindShaderContext, true
	default:
		return 0, false
	}
}
