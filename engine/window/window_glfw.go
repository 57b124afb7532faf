package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type glfwWindow struct {
	window  *glfw.Window
	running bool
}

// glfwButtons maps GLFW buttons to mask bits. Other buttons are ignored.
var glfwButtons = map[glfw.MouseButton]uint32{
	glfw.MouseButtonLeft:   MouseButtonLeft,
	glfw.MouseButtonRight:  MouseButtonRight,
	glfw.MouseButtonMiddle: MouseButtonMiddle,
}

// newPlatformWindow creates a GLFW window without a client API and routes its events
// into the engineWindow dispatch methods.
//
// Reference: https://www.glfw.org/docs/latest/window_guide.html
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfwBool(w.resizable))

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("create GLFW window: %w", err)
	}
	maxW, maxH := w.maxWidth, w.maxHeight
	if maxW <= 0 {
		maxW = glfw.DontCare
	}
	if maxH <= 0 {
		maxH = glfw.DontCare
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, maxW, maxH)

	gw := &glfwWindow{window: win, running: true}
	w.internalWindow = gw

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Press || action == glfw.Repeat {
			w.keyPressed(uint32(key))
		}
	})
	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		w.scrolled(float32(yoff))
	})
	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		bit, ok := glfwButtons[button]
		if !ok || action == glfw.Repeat {
			return
		}
		w.buttonChanged(bit, action == glfw.Press)
	})
	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		w.cursorMoved(int32(xpos), int32(ypos))
	})
	// Framebuffer size, not window size: they differ on high-DPI displays.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.framebufferResized(width, height)
	})

	w.width, w.height = win.GetFramebufferSize()
	return nil
}

func glfwBool(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

func platformIsRunningCheck(w *engineWindow) bool {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok {
		return false
	}
	return gw.running && !gw.window.ShouldClose()
}

func platformCloseWindow(w *engineWindow) error {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok {
		return errors.New("window is not initialized")
	}
	if !gw.running {
		return nil
	}
	gw.running = false
	gw.window.Destroy()
	glfw.Terminate()
	return nil
}

// platformProcessMessages polls GLFW without blocking.
func platformProcessMessages(w *engineWindow) bool {
	glfw.PollEvents()
	return platformIsRunningCheck(w)
}
