package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ironspire/engine/engine/resources"
)

func TestDetermineKind(t *testing.T) {
	cases := []struct {
		path string
		kind resources.Kind
		ok   bool
	}{
		{"textures/wall.png", resources.KindTexture, true},
		{"textures/wall.JPG", resources.KindTexture, true},
		{"materials/stone.amt", resources.KindMaterial, true},
		{"models/knight.glb", resources.KindModel, true},
		{"fonts/mono.fnt", resources.KindFont, true},
		{"fonts/mono.fontcfg", resources.KindFont, true},
		{"shaders/light.spv", resources.KindShaderContext, true},
		{"notes/readme.txt", 0, false},
	}
	for _, c := range cases {
		kind, ok := determineKind(c.path)
		if ok != c.ok {
			t.Errorf("determineKind(%s): ok = %v, want %v", c.path, ok, c.ok)
			continue
		}
		if ok && kind != c.kind {
			t.Errorf("determineKind(%s) = %d, want %d", c.path, kind, c.kind)
		}
	}
}

func TestLoadDispatchesRegisteredLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "noise.png")
	if err := os.WriteFile(path, []byte{0}, 0o644); err != nil {
		t.Fatalf("write fixture: %s", err)
	}

	mgr := resources.NewManager()
	am, err := NewAssetManager(dir, mgr)
	if err != nil {
		t.Fatalf("NewAssetManager: %s", err)
	}
	defer am.Close()

	loaded := ""
	am.RegisterLoader(resources.KindTexture, func(p string, params interface{}) (interface{}, error) {
		loaded = p
		return &resources.TextureData{Width: 1, Height: 1, ChannelCount: 4, Pixels: []byte{0, 0, 0, 0xff}}, nil
	})

	id, err := am.Load(path, resources.KindTexture, nil)
	if err != nil {
		t.Fatalf("Load: %s", err)
	}
	if loaded != path {
		t.Errorf("expecting the registered loader to receive %s, got %s", path, loaded)
	}
	v, err := mgr.Get(id)
	if err != nil {
		t.Fatalf("expecting the loaded resource to be pushed into the default group: %s", err)
	}
	if _, ok := v.(*resources.TextureData); !ok {
		t.Errorf("expecting the pushed resource to be the loader's TextureData")
	}
}

func TestLoadUnregisteredKindFails(t *testing.T) {
	mgr := resources.NewManager()
	am, err := NewAssetManager(t.TempDir(), mgr)
	if err != nil {
		t.Fatalf("NewAssetManager: %s", err)
	}
	defer am.Close()

	if _, err := am.Load("whatever.bin", resources.KindAudioBuffer, nil); err == nil {
		t.Errorf("expecting Load to fail for a kind with no registered loader")
	}
}

type wrapRealizer struct{}

func (wrapRealizer) Realize(path string, kind resources.Kind, data interface{}) (interface{}, error) {
	td := data.(*resources.TextureData)
	return &realizedTexture{data: td}, nil
}

type realizedTexture struct{ data *resources.TextureData }

func TestLoadRunsPayloadThroughRealizer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "noise.png")
	if err := os.WriteFile(path, []byte{0}, 0o644); err != nil {
		t.Fatalf("write fixture: %s", err)
	}

	mgr := resources.NewManager()
	am, err := NewAssetManager(dir, mgr)
	if err != nil {
		t.Fatalf("NewAssetManager: %s", err)
	}
	defer am.Close()

	am.RegisterLoader(resources.KindTexture, func(p string, params interface{}) (interface{}, error) {
		return &resources.TextureData{Width: 1, Height: 1, ChannelCount: 4, Pixels: []byte{0, 0, 0, 0xff}}, nil
	})
	am.SetRealizer(wrapRealizer{})

	id, err := am.Load(path, resources.KindTexture, nil)
	if err != nil {
		t.Fatalf("Load: %s", err)
	}
	v, err := mgr.Get(id)
	if err != nil {
		t.Fatalf("Get: %s", err)
	}
	if _, ok := v.(*realizedTexture); !ok {
		t.Errorf("expecting the manager to store the realizer's output, got %T", v)
	}
}
