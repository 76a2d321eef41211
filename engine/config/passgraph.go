package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PassDescriptor describes one entry of the default render-pass chain
// as data instead of hard-coded Go control flow.
type PassDescriptor struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"` // shadow | light | particle | billboard | hdr | debug
	Queue string `yaml:"queue"` // opaque | particle | debug | billboard
	Parent string `yaml:"parent"` // name of the pass this one borrows its framebuffer from, "" if owner
	Width uint32 `yaml:"width"` // 0 = track window size
	Height uint32 `yaml:"height"`
}

// PassGraphDescriptor is the ordered list loaded once at renderer init.
type PassGraphDescriptor struct {
	Passes []PassDescriptor `yaml:"passes"`
}

// DefaultPassGraph is the built-in Shadow -> Light -> Particle ->
// Billboard -> HDR chain, with Debug borrowing Light's framebuffer.
func DefaultPassGraph() *PassGraphDescriptor {
	return &PassGraphDescriptor{Passes: []PassDescriptor{
		{Name: "shadow", Kind: "shadow", Queue: "opaque", Width: 1280, Height: 1280},
		{Name: "light", Kind: "light", Queue: "opaque"},
		{Name: "debug", Kind: "debug", Queue: "debug", Parent: "light"},
		{Name: "particle", Kind: "particle", Queue: "particle", Parent: "light"},
		{Name: "billboard", Kind: "billboard", Queue: "billboard"},
		{Name: "hdr", Kind: "hdr", Queue: "opaque"},
	}}
}

// LoadPassGraph reads a YAML pass-graph descriptor override.
func LoadPassGraph(path string) (*PassGraphDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("passgraph: read %s: %w", path, err)
	}
	var desc PassGraphDescriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("passgraph: parse %s: %w", path, err)
	}
	return &desc, nil
}
