package core

import "sync"

// EventCode discriminates the union carried by an EventContext. Core
// codes are reserved up to MaxEngineEventCode; engine/config and
// engine/assets use MaxEngineEventCode+1 and +2, so application event
// codes should start beyond MaxEngineEventCode+2.
type EventCode int

const (
	// EventApplicationQuit requests the application shut down on the next frame.
	EventApplicationQuit EventCode = 0x01
	// EventWindowFramebufferResized carries a *WindowResizedEvent.
	EventWindowFramebufferResized EventCode = 0x02
	// EventWindowFullscreen carries a *WindowFullscreenEvent.
	EventWindowFullscreen EventCode = 0x03
	// EventKeyPressed carries a *KeyEvent.
	EventKeyPressed EventCode = 0x04
	// EventKeyReleased carries a *KeyEvent.
	EventKeyReleased EventCode = 0x05
	// EventMouseMoved carries a *MouseMoveEvent.
	EventMouseMoved EventCode = 0x06
	// EventMouseButtonPressed carries a *MouseButtonEvent.
	EventMouseButtonPressed EventCode = 0x07
	// EventMouseButtonReleased carries a *MouseButtonEvent.
	EventMouseButtonReleased EventCode = 0x08
	// EventMouseWheel carries a *MouseWheelEvent.
	EventMouseWheel EventCode = 0x09
	// EventPhysicsContactAdded carries a *PhysicsContactEvent.
	EventPhysicsContactAdded EventCode = 0x0A
	// EventPhysicsContactRemoved carries a *PhysicsContactEvent.
	EventPhysicsContactRemoved EventCode = 0x0B
	// EventPhysicsContactPersisted carries a *PhysicsContactEvent.
	EventPhysicsContactPersisted EventCode = 0x0C
	// EventPhysicsRaycastHit carries a *PhysicsRaycastHitEvent.
	EventPhysicsRaycastHit EventCode = 0x0D
	// EventEntityAdded carries a *EntityEvent.
	EventEntityAdded EventCode = 0x0E
	// EventEntityDestroyed carries a *EntityEvent.
	EventEntityDestroyed EventCode = 0x0F
	// EventUI is the base code for GUI/IMGUI variants; out of core scope,
	// reserved so application-level UI codes don't collide with engine ones.
	EventUI EventCode = 0x10
	// EventSetRenderMode carries a *RenderModeEvent; debug view switching.
	EventSetRenderMode EventCode = 0x11
	// EventDefaultRenderTargetRefreshRequired signals that the default
	// render targets must be regenerated, e.g. after a swapchain resize.
	EventDefaultRenderTargetRefreshRequired EventCode = 0x12
	// EventObjectHoverIDChanged carries a *HoverIDEvent from a pick pass.
	EventObjectHoverIDChanged EventCode = 0x13
	// EventDebug0 and EventDebug1 are free-floating debug hooks used by
	// the testbed to toggle inspection overlays.
	EventDebug0 EventCode = 0x14
	EventDebug1 EventCode = 0x15

	// MaxEngineEventCode is the highest code reserved for the core event set.
	MaxEngineEventCode EventCode = 0xFF
)

// This should be more than enough codes for engine + application use.
const maxEventCodes = 16384

// WindowResizedEvent is the union payload for EventWindowFramebufferResized.
type WindowResizedEvent struct {
	Width  uint32
	Height uint32
}

// WindowFullscreenEvent is the union payload for EventWindowFullscreen.
type WindowFullscreenEvent struct {
	IsFullscreen bool
}

// KeyEvent is the union payload for EventKeyPressed/EventKeyReleased.
type KeyEvent struct {
	KeyCode  KeyCode
	Modifier uint16
}

// MouseMoveEvent is the union payload for EventMouseMoved.
type MouseMoveEvent struct {
	X, Y             float32
	OffsetX, OffsetY float32
}

// MouseButtonEvent is the union payload for EventMouseButtonPressed/EventMouseButtonReleased.
type MouseButtonEvent struct {
	Button   Button
	Modifier uint16
}

// MouseWheelEvent is the union payload for EventMouseWheel.
type MouseWheelEvent struct {
	ZDelta int8
}

// PhysicsContactEvent is the union payload for the PHYSICS_CONTACT_* variants.
type PhysicsContactEvent struct {
	Body1ID          uint32
	Body2ID          uint32
	BaseOffset       [3]float32
	Normal           [3]float32
	PenetrationDepth float32
}

// PhysicsRaycastHitEvent is the union payload for EventPhysicsRaycastHit.
type PhysicsRaycastHitEvent struct {
	BodyID    uint32
	Point     [3]float32
	Direction [3]float32
}

// EntityEvent is the union payload for EventEntityAdded/EventEntityDestroyed.
type EntityEvent struct {
	EntityID uint32
}

// RenderModeEvent is the union payload for EventSetRenderMode.
type RenderModeEvent struct {
	Mode int32
}

// HoverIDEvent is the union payload for EventObjectHoverIDChanged.
type HoverIDEvent struct {
	UniqueID uint32
}

// EventContext is the tagged record delivered to listeners: Type
// discriminates which concrete *Event struct Data holds.
type EventContext struct {
	Type   EventCode
	Sender interface{}
	Data   interface{}
}

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

type eventCodeEntry struct {
	events []*registeredEvent
}

// State structure.
type eventSystemState struct {
	// Lookup table for event codes.
	registered [maxEventCodes]eventCodeEntry
}

var onceEvent sync.Once
var isInitialized bool = false
var eventState *eventSystemState = nil

// FnOnEvent should return true if the event was handled and should not
// propagate to subsequent listeners.
type FnOnEvent func(context EventContext) bool

func EventInitialize() bool {
	if isInitialized {
		return false
	}
	onceEvent.Do(func() {
		eventState = &eventSystemState{}
	})
	isInitialized = true
	return true
}

func EventShutdown() error {
	for i := 0; i < maxEventCodes; i++ {
		if len(eventState.registered[i].events) != 0 {
			eventState.registered[i].events = nil
		}
	}
	isInitialized = false
	return nil
}

// EventRegister registers a listener for the given event code. A listener
// already registered for the code is not registered again (whatever the
// callback) and causes this to return false.
func EventRegister(code EventCode, listener interface{}, onEvent FnOnEvent) bool {
	if !isInitialized {
		return false
	}
	for _, e := range eventState.registered[code].events {
		if e.listener == listener {
			LogWarn("EventRegister: listener already registered for code %d", code)
			return false
		}
	}
	event := &registeredEvent{
		listener: listener,
		callback: onEvent,
	}
	eventState.registered[code].events = append(eventState.registered[code].events, event)
	return true
}

// EventUnregister removes a previously registered listener. Returns false if
// no matching registration was found.
func EventUnregister(code EventCode, listener interface{}) bool {
	if !isInitialized {
		return false
	}
	events := eventState.registered[code].events
	for i, e := range events {
		if e.listener == listener {
			eventState.registered[code].events = append(events[:i], events[i+1:]...)
			return true
		}
	}
	LogWarn("EventUnregister: no listener registered for code %d", code)
	return false
}

// EventFire dispatches an event to every listener registered for its code,
// in registration order, until one returns true (consumed).
func EventFire(context EventContext) bool {
	if !isInitialized {
		return false
	}
	events := eventState.registered[context.Type].events
	for _, e := range events {
		if e.callback(context) {
			return true
		}
	}
	return false
}
