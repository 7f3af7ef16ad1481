package platform

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/vizcore/dvz/engine/core"
)

var startTime float64 = 0

func init() {
	// GLFW event handling must run on the main OS thread.
	runtime.LockOSThread()
}

// EventKind discriminates the variants carried by Event.
type EventKind int

const (
	EventKeyPress EventKind = iota
	EventKeyRelease
	EventMouseButtonPress
	EventMouseButtonRelease
	EventCursorMove
	EventScroll
	EventFramebufferResize
)

// Event is the union of input/window events the runner's Frame queue
// consumes. Only the fields relevant to Kind are populated.
type Event struct {
	Kind EventKind

	Key   glfw.Key
	Mods  glfw.ModifierKey
	Button glfw.MouseButton

	X, Y float64

	Width, Height int
}

// Platform wraps the GLFW window and funnels its callbacks into a single
// buffered event channel so the runner can drain input without blocking
// the GLFW callback thread.
type Platform struct {
	Window *glfw.Window
	Events chan Event
}

func New() (*Platform, error) {
	return &Platform{
		Events: make(chan Event, 256),
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
	p.Window = window

	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetMouseButtonCallback(p.mouseButtonCallback)
	p.Window.SetCursorPosCallback(p.cursorPosCallback)
	p.Window.SetScrollCallback(p.scrollCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	startTime = glfw.GetTime()

	return nil
}

func (p *Platform) Shutdown() error {
	glfw.Terminate()
	return nil
}

// PumpMessages polls the OS event queue. Callbacks registered in Startup
// push onto p.Events as a side effect.
func (p *Platform) PumpMessages() {
	glfw.PollEvents()
}

func (p *Platform) ShouldClose() bool {
	return p.Window.ShouldClose()
}

// GetRequiredExtensionNames returns the Vulkan instance extensions GLFW
// needs for surface creation on the current platform.
func (p *Platform) GetRequiredExtensionNames() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

func (p *Platform) emit(e Event) {
	select {
	case p.Events <- e:
	default:
		core.LogWarn("platform event channel full, dropping event")
	}
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	kind := EventKeyPress
	if action == glfw.Release {
		kind = EventKeyRelease
	}
	p.emit(Event{Kind: kind, Key: key, Mods: mods})
}

func (p *Platform) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	kind := EventMouseButtonPress
	if action == glfw.Release {
		kind = EventMouseButtonRelease
	}
	p.emit(Event{Kind: kind, Button: button, Mods: mods})
}

func (p *Platform) cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	p.emit(Event{Kind: EventCursorMove, X: xpos, Y: ypos})
}

func (p *Platform) scrollCallback(w *glfw.Window, xoff, yoff float64) {
	p.emit(Event{Kind: EventScroll, X: xoff, Y: yoff})
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	p.emit(Event{Kind: EventFramebufferResize, Width: width, Height: height})
}
