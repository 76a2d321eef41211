package assets

import "github.com/ironspire/engine/engine/resources"

// LoaderFunc parses path on disk into the typed payload its Kind
// produces (*resources.TextureData, *resources.MaterialData, ...).
// Registered per-Kind in the map[Kind]LoaderFunc registry NBR dispatch
// uses.
type LoaderFunc func(path string, params interface{}) (interface{}, error)
