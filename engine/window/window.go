package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Mouse button bits reported by the mouse button callback.
const (
	MouseButtonLeft uint32 = 1 << iota
	MouseButtonRight
	MouseButtonMiddle
)

// keyEscape is GLFW_KEY_ESCAPE.
const keyEscape uint32 = 256

// Window is the platform window the renderer presents into. It owns the surface handle
// and forwards input as plain values: key codes, a held-button mask and cursor positions
// in framebuffer pixels.
type Window interface {
	// SetResizeCallback sets the function called when the framebuffer size changes.
	//
	// Parameters:
	//   - callback: function receiving the new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse wheel events.
	//
	// Parameters:
	//   - callback: function receiving the vertical scroll offset (positive = away from the user)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key presses and key repeats.
	//
	// Parameters:
	//   - callback: function receiving the key code (see the common.Key* constants)
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetMouseButtonCallback sets the callback for mouse button presses and releases.
	//
	// Parameters:
	//   - callback: function receiving the held-button mask and the cursor position
	SetMouseButtonCallback(callback func(mask uint32, x, y int32))

	// SetMouseMoveCallback sets the callback for cursor movement.
	//
	// Parameters:
	//   - callback: function receiving the cursor position
	SetMouseMoveCallback(callback func(x, y int32))

	// SurfaceDescriptor returns the descriptor used to create the presentation surface,
	// or nil before the platform window exists.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is still open.
	IsRunning() bool

	// Close destroys the platform window.
	Close() error

	// ProcessMessages pumps platform events until the window closes.
	// It must run on the thread that created the window.
	ProcessMessages()

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int
}

type engineWindow struct {
	title     string
	resizable bool

	minWidth, minHeight int
	maxWidth, maxHeight int
	width, height       int

	// internalWindow holds the platform window (glfwWindow).
	internalWindow any

	buttons        uint32
	cursorX        int32
	cursorY        int32
	onResize       func(width, height int)
	onScroll       func(delta float32)
	onKeyDown      func(keyCode uint32)
	onMouseButton  func(mask uint32, x, y int32)
	onMouseMove    func(x, y int32)
	quitRequested  bool
	quitOnKeyCodes map[uint32]bool
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a platform window.
// Panics if the platform window cannot be created.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
func NewWindow(options ...WindowBuilderOption) Window {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

// newEngineWindow applies the defaults and options without touching the platform layer.
func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:          "oxy-deferred",
		resizable:      true,
		minWidth:       320,
		minHeight:      240,
		maxWidth:       3840,
		maxHeight:      2160,
		width:          1280,
		height:         720,
		quitOnKeyCodes: map[uint32]bool{keyEscape: true},
	}
	for _, opt := range options {
		opt(w)
	}
	w.width = clampInt(w.width, w.minWidth, w.maxWidth)
	w.height = clampInt(w.height, w.minHeight, w.maxHeight)
	return w
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetMouseButtonCallback(callback func(mask uint32, x, y int32)) {
	w.onMouseButton = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y int32)) {
	w.onMouseMove = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return !w.quitRequested && platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if !platformProcessMessages(w) {
			break
		}
		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// keyPressed dispatches a key press or repeat. Quit keys stop the message loop instead.
func (w *engineWindow) keyPressed(code uint32) {
	if w.quitOnKeyCodes[code] {
		w.quitRequested = true
		return
	}
	if w.onKeyDown != nil {
		w.onKeyDown(code)
	}
}

// buttonChanged updates the held-button mask and reports it with the last cursor position.
func (w *engineWindow) buttonChanged(bit uint32, pressed bool) {
	if pressed {
		w.buttons |= bit
	} else {
		w.buttons &^= bit
	}
	if w.onMouseButton != nil {
		w.onMouseButton(w.buttons, w.cursorX, w.cursorY)
	}
}

func (w *engineWindow) cursorMoved(x, y int32) {
	w.cursorX, w.cursorY = x, y
	if w.onMouseMove != nil {
		w.onMouseMove(x, y)
	}
}

func (w *engineWindow) scrolled(delta float32) {
	if delta != 0 && w.onScroll != nil {
		w.onScroll(delta)
	}
}

// framebufferResized records the new size. Repeated sizes are dropped.
func (w *engineWindow) framebufferResized(width, height int) {
	if width == w.width && height == w.height {
		return
	}
	w.width, w.height = width, height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}
