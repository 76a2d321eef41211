package core

import (
	"errors"
)

var (
	ErrSwapchainBooting = errors.New("swapchain resized or recreated, booting")
	ErrUnknown = errors.New("unknown")
)

// Resource/handle errors, shared by engine/resources, engine/anim, and
// engine/renderpass (category 2: asset errors surface as values,
// never panics).
var (
	ErrInvalidHandle = errors.New("invalid or stale resource handle")
	ErrMalformedResource = errors.New("malformed resource payload")
	ErrUnknownResourceKind = errors.New("unknown resource kind")
	ErrSkeletonTopology = errors.New("skeleton joint is not topologically ordered")
	ErrPassPoolExhausted = errors.New("render pass pool exhausted")
)
