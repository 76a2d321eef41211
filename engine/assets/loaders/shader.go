package loaders

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/ironspire/engine/engine/resources"
)

type tmpShaderConfig struct {
	Name        string `toml:"name"`
	CullMode    string `toml:"cull_mode"`
	Stages      []string `toml:"stages"`
	StageFiles  []string `toml:"stagefiles"`
	DepthTest   bool `toml:"depth_test"`
	StencilTest bool `toml:"stencil_test"`
}

// Validate checks that every stage entry has a matching source file.
func (config *tmpShaderConfig) Validate() error {
	if len(config.Stages) != len(config.StageFiles) {
		return fmt.Errorf("shader %s: %d stages but %d stage files", config.Name, len(config.Stages), len(config.StageFiles))
	}
	return nil
}

func (config *tmpShaderConfig) transform() (*resources.ShaderData, error) {
	data := &resources.ShaderData{
		Name:        config.Name,
		Stages:      make(map[resources.ShaderStage]string, len(config.Stages)),
		DepthTest:   config.DepthTest,
		StencilTest: config.StencilTest,
		CullBack:    config.CullMode != "none",
	}
	for i, st := range config.Stages {
		stage, err := shaderStageFromString(st)
		if err != nil {
			return nil, err
		}
		data.Stages[stage] = config.StageFiles[i]
	}
	return data, nil
}

func shaderStageFromString(s string) (resources.ShaderStage, error) {
	switch s {
	case "vertex":
		return resources.ShaderStageVertex, nil
	case "pixel", "fragment":
		return resources.ShaderStagePixel, nil
	case "compute":
		return resources.ShaderStageCompute, nil
	default:
		return 0, fmt.Errorf("unknown shader stage %q", s)
	}
}

// LoadShader parses a .shadercfg TOML document into a ShaderData.
func LoadShader(path string, params interface{}) (interface{}, error) {
	cfg := tmpShaderConfig{}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg.transform()
}
