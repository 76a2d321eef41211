package platform

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/ironspire/engine/engine/core"
)

var startTime float64 = 0

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

type Platform struct {
	Window *glfw.Window
}

func New() (*Platform, error) {
	return &Platform{
		Window: nil,
	}, nil
}

func (p *Platform) Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error {
	if err := glfw.Init(); err != nil {
		core.LogFatal("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogFatal("failed to create window: %s", err)
		return err
	}
	// window.MakeContextCurrent()
	p.Window = window

	p.Window.SetKeyCallback(keyCallback)
	p.Window.SetMouseButtonCallback(mouseButtonCallback)
	p.Window.SetCursorPosCallback(cursorPosCallback)
	p.Window.SetScrollCallback(scrollCallback)
	p.Window.SetFramebufferSizeCallback(framebufferSizeCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	startTime = glfw.GetTime()

	return nil
}

func (p *Platform) Shutdown() error {
	glfw.Terminate()
	return nil
}

// PumpMessages drains the windowing system's event queue, dispatching
// the callbacks registered in Startup. Firing EventApplicationQuit on
// ShouldClose is the caller's responsibility since Platform doesn't
// hold a reference to the event system's quit flag.
func (p *Platform) PumpMessages() {
	glfw.PollEvents()
}

// ShouldClose reports whether the OS asked the window to close (title
// bar close button, Alt+F4, etc).
func (p *Platform) ShouldClose() bool {
	return p.Window.ShouldClose()
}

func keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action == glfw.Repeat {
		return
	}
	core.InputProcessKey(glfwKeyToCode(key), action == glfw.Press)
}

func mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	var b core.Button
	switch button {
	case glfw.MouseButtonLeft:
		b = core.BUTTON_LEFT
	case glfw.MouseButtonRight:
		b = core.BUTTON_RIGHT
	case glfw.MouseButtonMiddle:
		b = core.BUTTON_MIDDLE
	default:
		return
	}
	code := core.EventMouseButtonReleased
	if action == glfw.Press {
		code = core.EventMouseButtonPressed
	}
	core.EventFire(core.EventContext{Type: code, Data: &core.MouseButtonEvent{Button: b}})
}

func cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	core.EventFire(core.EventContext{Type: core.EventMouseMoved, Data: &core.MouseMoveEvent{X: float32(xpos), Y: float32(ypos)}})
}

func scrollCallback(w *glfw.Window, xoff, yoff float64) {
	core.EventFire(core.EventContext{Type: core.EventMouseWheel, Data: &core.MouseWheelEvent{ZDelta: int8(yoff)}})
}

func framebufferSizeCallback(w *glfw.Window, width, height int) {
	core.EventFire(core.EventContext{Type: core.EventWindowFramebufferResized, Data: &core.WindowResizedEvent{Width: uint32(width), Height: uint32(height)}})
}

// glfwKeyToCode maps the handful of keys the engine cares about;
// anything else reports as KEY_SPACE's neighbor range is never hit
// since default falls through to 0, which no binding matches.
func glfwKeyToCode(key glfw.Key) core.KeyCode {
	switch key {
	case glfw.KeyEscape:
		return core.KEY_ESCAPE
	case glfw.KeySpace:
		return core.KEY_SPACE
	case glfw.KeyEnter:
		return core.KEY_ENTER
	case glfw.KeyTab:
		return core.KEY_TAB
	case glfw.KeyBackspace:
		return core.KEY_BACKSPACE
	case glfw.KeyUp:
		return core.KEY_UP
	case glfw.KeyDown:
		return core.KEY_DOWN
	case glfw.KeyLeft:
		return core.KEY_LEFT
	case glfw.KeyRight:
		return core.KEY_RIGHT
	}
	if key >= glfw.KeyA && key <= glfw.KeyZ {
		return core.KeyCode(int(core.KEY_A) + int(key-glfw.KeyA))
	}
	return core.KeyCode(0)
}
