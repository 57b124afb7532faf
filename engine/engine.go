package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/profiler"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/settings"
	"github.com/Carmen-Shannon/oxy-deferred/engine/window"
	"go.uber.org/zap"
)

// Input sensitivities.
const (
	OrbitSpeed float32 = 0.005
	PanSpeed   float32 = 0.01
	ZoomSpeed  float32 = 1
	KeyOrbit   float32 = 0.05
)

// engine implements the Engine interface.
// Coordinates engine, render, and window threads.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once
	ctx         context.Context
	cancel      context.CancelFunc

	window   window.Window
	device   gpu.Device
	renderer renderer.Renderer
	rig      camera.Rig

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	// Input state, touched only by the window thread.
	buttons      uint32
	lastX, lastY int32
}

// Engine is the main entry point for the application.
// It owns the window message loop, a fixed-rate tick loop and the render loop that
// feeds camera snapshots to the renderer and draws one frame per iteration.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the frame orchestrator driven by the render loop.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Rig returns the camera rig whose snapshots are pushed to the renderer every frame.
	//
	// Returns:
	//   - camera.Rig: the rig
	Rig() camera.Rig

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for application logic updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each rendered frame.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the engine and render loops and runs the window message loop on the
	// calling goroutine. It blocks until the window closes, then waits for the loops
	// to stop.
	Run()

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// A renderer is required. Without WithRig a default rig is created, with its aspect
// taken from the window when there is one.
//
// Parameters:
//   - options: functional options for engine configuration (window, renderer, profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := newEngine(options...)
	if e.renderer == nil {
		panic("engine: a renderer is required")
	}
	if e.window != nil {
		e.rig.SetAspect(common.Aspect(e.window.Width(), e.window.Height()))
		e.window.SetResizeCallback(e.onResize)
		e.window.SetMouseMoveCallback(e.onMouseMove)
		e.window.SetMouseButtonCallback(e.onMouseButton)
		e.window.SetScrollCallback(e.onScroll)
		e.window.SetKeyDownCallback(e.onKeyDown)
	}
	return e
}

func newEngine(options ...EngineBuilderOption) *engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		ctx:             ctx,
		cancel:          cancel,
		engineTickRate:  time.Second / 60,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.rig == nil {
		e.rig = camera.NewRig()
	}
	if e.profiler == nil {
		var inFlight func() int
		if e.renderer != nil {
			inFlight = e.renderer.InFlight
		}
		e.profiler = profiler.NewProfiler(profiler.WithInFlight(inFlight))
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Rig() camera.Rig {
	return e.rig
}

func (e *engine) Run() {
	e.running = true
	e.handle()
	e.window.ProcessMessages()
	e.signalQuit()
	e.wg.Wait()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
	if e.window != nil {
		_ = e.window.Close()
	}
}

// signalQuit closes the quit channel and cancels the render context, which
// releases a render loop blocked on a full frame ring.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		e.cancel()
		close(e.quitChannel)
	})
}

// handle launches the engine and render goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("render goroutine recovered from panic", zap.Any("panic", r))
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		now := time.Now()
		dt := float32(now.Sub(lastRender).Seconds())
		lastRender = now

		if err := e.renderFrame(e.ctx, dt); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			common.Logger().Error("frame failed", zap.Error(err))
			e.signalQuit()
			return
		}

		// Frame rate limiting
		if e.renderFrameLimit > 0 {
			elapsed := time.Since(lastRender)
			if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// renderFrame pushes the current camera snapshots and draws one frame.
func (e *engine) renderFrame(ctx context.Context, dt float32) error {
	e.renderer.SetCameraData(e.rig.Data())
	e.renderer.SetShadowCameraData(e.rig.ShadowData())
	if err := e.renderer.DrawFrame(ctx); err != nil {
		return err
	}
	if e.renderCallback != nil {
		e.renderCallback(dt)
	}
	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}
	return nil
}

func (e *engine) onResize(width, height int) {
	if e.device != nil {
		e.device.ConfigureSurface(width, height)
	}
	e.renderer.Resize(width, height)
	e.rig.SetAspect(common.Aspect(width, height))
}

func (e *engine) onMouseMove(x, y int32) {
	dx, dy := float32(x-e.lastX), float32(y-e.lastY)
	e.lastX, e.lastY = x, y
	e.renderer.Settings().SetCursorPosition(float32(x), float32(y))

	switch {
	case e.buttons&window.MouseButtonRight != 0:
		e.rig.Controller().Orbit(-dx*OrbitSpeed, dy*OrbitSpeed)
	case e.buttons&window.MouseButtonMiddle != 0:
		e.rig.Controller().Pan(-dx*PanSpeed, dy*PanSpeed)
	}
}

// onMouseButton forwards the left button to the interactions kernel; the right
// and middle buttons drive the camera.
func (e *engine) onMouseButton(mask uint32, x, y int32) {
	e.buttons = mask
	e.lastX, e.lastY = x, y
	e.renderer.Settings().SetMouseButtons(mask & window.MouseButtonLeft)
}

func (e *engine) onScroll(delta float32) {
	e.rig.Controller().Zoom(delta * ZoomSpeed)
}

func (e *engine) onKeyDown(keyCode uint32) {
	s := e.renderer.Settings()
	switch keyCode {
	case common.Key1, common.Key2, common.Key3, common.Key4:
		s.SetFamily(int(keyCode-common.Key1) + 1)
	case common.KeyT:
		s.SetPrimitive(nextPrimitive(s.Primitive()))
	case common.KeyA:
		e.rig.Controller().Orbit(-KeyOrbit, 0)
	case common.KeyD:
		e.rig.Controller().Orbit(KeyOrbit, 0)
	case common.KeyQ:
		e.rig.Controller().Orbit(0, KeyOrbit)
	case common.KeyE:
		e.rig.Controller().Orbit(0, -KeyOrbit)
	case common.KeyW:
		e.rig.Controller().Zoom(ZoomSpeed)
	case common.KeyS:
		e.rig.Controller().Zoom(-ZoomSpeed)
	}
}

// nextPrimitive cycles through settings.Primitives.
func nextPrimitive(current gpu.Topology) gpu.Topology {
	for i, p := range settings.Primitives {
		if p == current {
			return settings.Primitives[(i+1)%len(settings.Primitives)]
		}
	}
	return settings.DefaultPrimitive
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Second / time.Duration(fps)
}
