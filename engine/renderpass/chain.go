// Package renderpass implements the render-pass graph: a fixed-pool
// arena of passes linked by previous/next slot indices (never
// pointers, so chain mutation stays safe and non-aliasing), walked
// head-to-tail each frame by the renderer.
package renderpass

import (
	"fmt"

	"github.com/ironspire/engine/engine/core"
	"github.com/ironspire/engine/engine/gpu"
	"github.com/ironspire/engine/engine/math"
	"github.com/ironspire/engine/engine/renderqueue"
)

// RenderPassesMax bounds the pass pool.
const RenderPassesMax = 16

// none is the sentinel for "no previous/next/parent".
const none = -1

// FrameData is the per-frame input described in
type FrameData struct {
	View, Projection math.Mat4
	CameraPosition math.Vec3
	SkyboxID uint32
	Ambient math.Vec3
	DirLight DirLight
	PointLights []PointLight
	SpotLights []SpotLight
}

const (
	MaxPointLights = 16
	MaxSpotLights = 16
)

type DirLight struct {
	Direction math.Vec3
	Color math.Vec3
}

type PointLight struct {
	Position math.Vec3
	Color math.Vec3
	Radius float32
}

type SpotLight struct {
	Position math.Vec3
	Direction math.Vec3
	Color math.Vec3
	InnerCone float32
	OuterCone float32
}

// Callbacks are the per-pass lifecycle hooks of RenderPass.
type Callbacks struct {
	Prepare func(p *Pass, frame *FrameData)
	Submit func(p *Pass, q *renderqueue.Queue)
	Resize func(p *Pass, width, height uint32)
	Destroy func(p *Pass)
}

// Pass is one slot in the chain's arena. It is either a framebuffer
// owner (creates/resizes/destroys its own attachments) or a borrower
// referencing another slot by index; Resize/Destroy are no-ops for a
// borrower (Framebuffer-Owner / Framebuffer-Borrower note).
type Pass struct {
	DebugName string
	QueueType renderqueue.Type

	GfxContext gpu.Context
	Callbacks Callbacks

	Framebuffer gpu.Framebuffer
	FramebufferDesc gpu.FramebufferDesc
	FrameWidth uint32
	FrameHeight uint32
	ShaderContext gpu.Shader

	Outputs [gpu.RenderTargetsMax]gpu.Texture
	OutputCount int

	// ParentSlot is the index of the pass this one borrows its
	// framebuffer from, or none if this pass owns its framebuffer.
	ParentSlot int

	occupied bool
	previous, next int
	chain *Chain
	self int
}

// ForwardOutputs copies the previous pass's outputs into this pass's,
// the boundary behavior keeping an empty-queue pass well-defined.
func (p *Pass) ForwardOutputs() {
	if p.chain == nil || p.previous == none {
		return
	}
	prev := &p.chain.slots[p.previous]
	p.Outputs = prev.Outputs
	p.OutputCount = prev.OutputCount
}

func (p *Pass) IsBorrower() bool { return p.ParentSlot != none }

// Previous returns the pass immediately before this one in the chain,
// or nil if this is the head. Used by a pass that consumes another
// pass's outputs (e.g. light sampling shadow's depth attachment)
// without needing to know its own predecessor's identity by name.
func (p *Pass) Previous() *Pass {
	if p.chain == nil || p.previous == none {
		return nil
	}
	return &p.chain.slots[p.previous]
}

// SelfIndex returns this pass's slot index in its owning chain, for
// callers that need to pass it back to Chain.ResolveFramebuffer.
func (p *Pass) SelfIndex() int { return p.self }

// Chain is the ordered doubly-linked sequence of passes, backed by a
// fixed pool so mutation only ever touches previous/next indices
// (design note).
type Chain struct {
	slots [RenderPassesMax]Pass
	head, tail int
	byName map[string]int
}

func NewChain() *Chain {
	c := &Chain{head: none, tail: none, byName: make(map[string]int)}
	return c
}

func (c *Chain) alloc() (int, error) {
	for i := range c.slots {
		if !c.slots[i].occupied {
			return i, nil
		}
	}
	return none, core.ErrPassPoolExhausted
}

// Append attaches a new pass after the current tail and returns its
// index. parentSlot is none when the pass owns its own framebuffer.
func (c *Chain) Append(name string, qt renderqueue.Type, parentSlot int, cb Callbacks) (int, error) {
	idx, err := c.alloc()
	if err != nil {
		return none, fmt.Errorf("append %q: %w", name, err)
	}
	c.slots[idx] = Pass{DebugName: name, QueueType: qt, ParentSlot: parentSlot, Callbacks: cb, occupied: true, previous: none, next: none, chain: c, self: idx}
	if c.tail == none {
		c.head = idx
		c.tail = idx
	} else {
		c.slots[c.tail].next = idx
		c.slots[idx].previous = c.tail
		c.tail = idx
	}
	c.byName[name] = idx
	return idx, nil
}

// Prepend attaches before the current head.
func (c *Chain) Prepend(name string, qt renderqueue.Type, parentSlot int, cb Callbacks) (int, error) {
	idx, err := c.alloc()
	if err != nil {
		return none, fmt.Errorf("prepend %q: %w", name, err)
	}
	c.slots[idx] = Pass{DebugName: name, QueueType: qt, ParentSlot: parentSlot, Callbacks: cb, occupied: true, previous: none, next: none, chain: c, self: idx}
	if c.head == none {
		c.head = idx
		c.tail = idx
	} else {
		c.slots[c.head].previous = idx
		c.slots[idx].next = c.head
		c.head = idx
	}
	c.byName[name] = idx
	return idx, nil
}

// Insert splices a new pass after the pass currently at slot after.
func (c *Chain) Insert(after int, name string, qt renderqueue.Type, parentSlot int, cb Callbacks) (int, error) {
	if after == c.tail || after == none {
		return c.Append(name, qt, parentSlot, cb)
	}
	idx, err := c.alloc()
	if err != nil {
		return none, fmt.Errorf("insert %q: %w", name, err)
	}
	nextIdx := c.slots[after].next
	c.slots[idx] = Pass{DebugName: name, QueueType: qt, ParentSlot: parentSlot, Callbacks: cb, occupied: true, previous: after, next: nextIdx, chain: c, self: idx}
	c.slots[after].next = idx
	if nextIdx != none {
		c.slots[nextIdx].previous = idx
	}
	c.byName[name] = idx
	return idx, nil
}

// Remove unlinks the pass at slot, relinking its neighbors, and calls
// its Destroy callback unless it is a framebuffer borrower (a
// borrower's destroy is a no-op per).
func (c *Chain) Remove(slot int) {
	p := &c.slots[slot]
	if !p.occupied {
		return
	}
	if p.Callbacks.Destroy != nil && !p.IsBorrower() {
		p.Callbacks.Destroy(p)
	}
	prev, next := p.previous, p.next
	if prev != none {
		c.slots[prev].next = next
	} else {
		c.head = next
	}
	if next != none {
		c.slots[next].previous = prev
	} else {
		c.tail = prev
	}
	for k, v := range c.byName {
		if v == slot {
			delete(c.byName, k)
			break
		}
	}
	*p = Pass{}
}

// Peek returns the pool slot by name, regardless of chain position
// (the peek_pass lookup of).
func (c *Chain) Peek(name string) (*Pass, bool) {
	idx, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return &c.slots[idx], true
}

// Walk drives the pass loop of renderer.End: head to tail, strictly
// in chain order (ordering guarantee).
func (c *Chain) Walk(fn func(p *Pass)) {
	for i := c.head; i != none; i = c.slots[i].next {
		fn(&c.slots[i])
	}
}

// Resize dispatches WINDOW_FRAMEBUFFER_RESIZED to every owning pass's
// Resize callback; borrowers are skipped since they hold no
// attachments of their own (Resize).
func (c *Chain) Resize(width, height uint32) {
	c.Walk(func(p *Pass) {
		if p.IsBorrower() || p.Callbacks.Resize == nil {
			return
		}
		p.Callbacks.Resize(p, width, height)
		p.FrameWidth, p.FrameHeight = width, height
	})
}

// ResolveFramebuffer returns a pass's own framebuffer, or its parent's
// if it borrows one.
func (c *Chain) ResolveFramebuffer(slot int) gpu.Framebuffer {
	p := &c.slots[slot]
	if !p.IsBorrower() {
		return p.Framebuffer
	}
	return c.slots[p.ParentSlot].Framebuffer
}
