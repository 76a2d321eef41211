package resources

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/ironspire/engine/engine/core"
)

// Kind discriminates the dense array a ResourceID indexes into.
type Kind int

const (
	KindTexture Kind = iota
	KindCubemap
	KindShader
	KindShaderContext
	KindBuffer
	KindMaterial
	KindMesh
	KindModel
	KindSkybox
	KindFont
	KindAnimation
	KindSkeleton
	KindAudioBuffer
	kindCount
)

// RESOURCE_CACHE_ID names the engine-owned default group.
const RESOURCE_CACHE_ID = "__default__"

// ResourceID is the opaque handle described in : a
// (group, kind, index, generation) tuple. The zero value is never
// valid since generation 0 is reserved, mirroring gazed-vu's eid-zero
// convention.
type ResourceID struct {
	GroupID string
	Kind Kind
	Index uint32
	Generation uint32
}

// IsValid is the sanctioned existence test (RESOURCE_IS_VALID).
func (id ResourceID) IsValid() bool {
	return id.Generation != 0
}

type slot struct {
	generation uint32
	occupied bool
	value interface{}
	contentID uuid.UUID
}

type kindArray struct {
	slots []slot
	free []uint32
}

func (k *kindArray) push(v interface{}) (uint32, uint32, uuid.UUID) {
	id := uuid.New()
	if n := len(k.free); n > 0 {
		idx := k.free[n-1]
		k.free = k.free[:n-1]
		s := &k.slots[idx]
		s.occupied = true
		s.value = v
		s.contentID = id
		return idx, s.generation, id
	}
	k.slots = append(k.slots, slot{generation: 1, occupied: true, value: v, contentID: id})
	return uint32(len(k.slots) - 1), 1, id
}

// ResourceGroup owns one dense array per resource kind. It is
// the unit of ownership: destroying a group invalidates every handle
// issued against it without reordering any array.
type ResourceGroup struct {
	name string
	arrays [kindCount]kindArray
}

func newResourceGroup(name string) *ResourceGroup {
	return &ResourceGroup{name: name}
}

func (g *ResourceGroup) push(kind Kind, v interface{}) ResourceID {
	idx, gen, _ := g.arrays[kind].push(v)
	return ResourceID{GroupID: g.name, Kind: kind, Index: idx, Generation: gen}
}

func (g *ResourceGroup) get(id ResourceID) (interface{}, error) {
	if id.GroupID != g.name {
		return nil, fmt.Errorf("%w: group mismatch", core.ErrInvalidHandle)
	}
	arr := &g.arrays[id.Kind]
	if int(id.Index) >= len(arr.slots) {
		return nil, fmt.Errorf("%w: index out of range", core.ErrInvalidHandle)
	}
	s := &arr.slots[id.Index]
	if !s.occupied || s.generation != id.Generation {
		return nil, fmt.Errorf("%w: stale generation", core.ErrInvalidHandle)
	}
	return s.value, nil
}

// destroy bumps every occupied slot's generation so outstanding handles
// fail validity without the arrays themselves being torn down or
// reordered, matching DestroyGroup contract.
func (g *ResourceGroup) destroy() {
	for k := range g.arrays {
		arr := &g.arrays[k]
		for i := range arr.slots {
			if arr.slots[i].occupied {
				arr.slots[i].occupied = false
				arr.slots[i].generation++
				arr.slots[i].value = nil
			}
		}
		arr.free = arr.free[:0]
		for i := range arr.slots {
			arr.free = append(arr.free, uint32(i))
		}
	}
}

// Manager owns a map of named groups plus the engine default group.
type Manager struct {
	groups map[string]*ResourceGroup
}

func NewManager() *Manager {
	m := &Manager{groups: make(map[string]*ResourceGroup)}
	m.groups[RESOURCE_CACHE_ID] = newResourceGroup(RESOURCE_CACHE_ID)
	return m
}

// Group returns (creating if needed) the named group. Levels call this
// with their own name; engine defaults use RESOURCE_CACHE_ID.
func (m *Manager) Group(name string) *ResourceGroup {
	g, ok := m.groups[name]
	if !ok {
		g = newResourceGroup(name)
		m.groups[name] = g
	}
	return g
}

// DestroyGroup invalidates every handle issued against name. It is a
// no-op on an unknown group name. The group stays registered, so later
// pushes under the same name reuse its slots at bumped generations.
func (m *Manager) DestroyGroup(name string) {
	if name == RESOURCE_CACHE_ID {
		core.LogWarn("resources: refusing to destroy the default group")
		return
	}
	if g, ok := m.groups[name]; ok {
		g.destroy()
	}
}

// Push adds v of the given kind to group and returns its handle.
func (m *Manager) Push(group string, kind Kind, v interface{}) ResourceID {
	return m.Group(group).push(kind, v)
}

// Get dereferences id, asserting both kind and validity 's
// resources_get_<kind> contract. The borrow returned is only valid
// for the remainder of the calling frame (design note on
// handle-to-pointer promotion).
func (m *Manager) Get(id ResourceID) (interface{}, error) {
	if !id.IsValid() {
		return nil, core.ErrInvalidHandle
	}
	g, ok := m.groups[id.GroupID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown group %q", core.ErrInvalidHandle, id.GroupID)
	}
	return g.get(id)
}
