package loaders

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ironspire/engine/engine/core"
	"github.com/ironspire/engine/engine/math"
	"github.com/ironspire/engine/engine/resources"
)

// LoadMaterial parses a .amt key=value file into a MaterialData: the
// PBR scalar/map set replaces the older diffuse/specular/shininess
// fields one for one.
func LoadMaterial(path string, params interface{}) (interface{}, error) {
	mat, err := parseAMTFile(path)
	if err != nil {
		return nil, err
	}
	if err := validateMaterial(mat); err != nil {
		return nil, err
	}
	return mat, nil
}

func parseAMTFile(filename string) (*resources.MaterialData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	mat := &resources.MaterialData{Transparency: 1, BlendFactor: math.Vec4{X: 1, Y: 1, Z: 1, W: 1}}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			core.LogWarn("material: skipping invalid line in %s: %s", filename, line)
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "name":
			mat.Name = value
		case "albedo_colour":
			c, err := parseVec3(value)
			if err != nil {
				return nil, fmt.Errorf("invalid albedo_colour: %w", err)
			}
			mat.Color = c
		case "metallic":
			f, err := strconv.ParseFloat(value, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid metallic value: %s", value)
			}
			mat.Metallic = float32(f)
		case "roughness":
			f, err := strconv.ParseFloat(value, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid roughness value: %s", value)
			}
			mat.Roughness = float32(f)
		case "emissive":
			f, err := strconv.ParseFloat(value, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid emissive value: %s", value)
			}
			mat.Emissive = float32(f)
		case "transparency":
			f, err := strconv.ParseFloat(value, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid transparency value: %s", value)
			}
			mat.Transparency = float32(f)
		case "albedo_map_name":
			mat.AlbedoMap = value
		case "roughness_map_name":
			mat.RoughnessMap = value
		case "metallic_map_name":
			mat.MetallicMap = value
		case "normal_map_name":
			mat.NormalMap = value
		case "emissive_map_name":
			mat.EmissiveMap = value
		case "depth_mask":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("invalid depth_mask value: %s", value)
			}
			mat.DepthMask = b
		default:
			core.LogWarn("material: unknown key %q in %s, skipping", key, filename)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return mat, nil
}

func parseVec3(value string) (math.Vec3, error) {
	fields := strings.Fields(value)
	if len(fields) != 3 {
		return math.Vec3{}, fmt.Errorf("expected 3 values, got %d", len(fields))
	}
	parsed := make([]float32, 3)
	for i, s := range fields {
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return math.Vec3{}, err
		}
		parsed[i] = float32(f)
	}
	return math.Vec3{X: parsed[0], Y: parsed[1], Z: parsed[2]}, nil
}

func validateMaterial(material *resources.MaterialData) error {
	if material.Name == "" {
		return fmt.Errorf("material name is required")
	}
	if material.Metallic < 0 || material.Metallic > 1 {
		return fmt.Errorf("metallic must be between 0.0 and 1.0")
	}
	if material.Roughness < 0 || material.Roughness > 1 {
		return fmt.Errorf("roughness must be between 0.0 and 1.0")
	}
	return nil
}
