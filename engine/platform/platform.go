package platform

import (
	"runtime"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/droune2001/vulkan-sub000/engine/core"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// Platform is the window surface provider: a glfw window without a client
// API, its Vulkan surface, its framebuffer size and its close signal.
type Platform struct {
	Window *glfw.Window

	events        *core.EventBus
	quitRequested bool
}

func New(events *core.EventBus) *Platform {
	return &Platform{
		events: events,
	}
}

func (p *Platform) Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error {
	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize glfw")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return errors.New("glfw reports no Vulkan loader")
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		glfw.Terminate()
		return errors.Wrap(err, "failed to create window")
	}
	p.Window = window

	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetCloseCallback(p.closeCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// VulkanProcAddr is the loader entry point handed to the Vulkan bindings.
func (p *Platform) VulkanProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

func (p *Platform) RequiredInstanceExtensions() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

// CreateSurface creates a VkSurfaceKHR for the window. instance is a
// vk.Instance.
func (p *Platform) CreateSurface(instance interface{}) (uintptr, error) {
	surface, err := p.Window.CreateWindowSurface(instance, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create window surface")
	}
	return surface, nil
}

func (p *Platform) FramebufferSize() (uint32, uint32) {
	w, h := p.Window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

// PumpMessages processes pending window events and returns false once a close
// has been requested.
func (p *Platform) PumpMessages() bool {
	glfw.PollEvents()
	if p.Window.ShouldClose() {
		p.requestQuit()
		return false
	}
	return true
}

// WaitWhileMinimized blocks on window events while the framebuffer has no
// area.
func (p *Platform) WaitWhileMinimized() {
	for {
		w, h := p.FramebufferSize()
		if (w != 0 && h != 0) || p.Window.ShouldClose() {
			return
		}
		glfw.WaitEvents()
	}
}

// Close asks the window to close; the loop notices on the next PumpMessages.
func (p *Platform) Close() {
	p.Window.SetShouldClose(true)
}

func (p *Platform) requestQuit() {
	if p.quitRequested {
		return
	}
	p.quitRequested = true
	p.events.Fire(core.EventContext{Code: core.EVENT_CODE_APPLICATION_QUIT, Sender: p})
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	code := core.EVENT_CODE_KEY_PRESSED
	if action == glfw.Release {
		code = core.EVENT_CODE_KEY_RELEASED
	}
	p.events.Fire(core.EventContext{Code: code, Sender: p, Key: int(key)})

	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}
}

func (p *Platform) closeCallback(w *glfw.Window) {
	p.requestQuit()
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	p.events.Fire(core.EventContext{
		Code:   core.EVENT_CODE_RESIZED,
		Sender: p,
		Width:  uint32(width),
		Height: uint32(height),
	})
}
