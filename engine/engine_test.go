package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu/gpufake"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/shaders"
	"github.com/Carmen-Shannon/oxy-deferred/engine/window"
)

func newTestEngine(t *testing.T, dev *gpufake.Device) *engine {
	t.Helper()
	lib, err := shaders.Load(dev, nil, false)
	if err != nil {
		t.Fatalf("shaders.Load: %v", err)
	}
	r, err := renderer.Build(dev, lib, resource.NewSolidCatalog(), 64, 48, renderer.WithParticleCount(1000))
	if err != nil {
		t.Fatalf("renderer.Build: %v", err)
	}
	t.Cleanup(func() {
		r.Release()
		lib.Release()
	})
	return newEngine(WithRenderer(r), WithDevice(dev))
}

func TestRenderFramePushesCameraSnapshots(t *testing.T) {
	dev := gpufake.New(gpufake.WithSurfaceSize(64, 48))
	e := newTestEngine(t, dev)

	var rendered int
	e.SetRenderCallback(func(float32) { rendered++ })
	if err := e.renderFrame(t.Context(), 0); err != nil {
		t.Fatalf("engine.renderFrame: %v", err)
	}
	if rendered != 1 {
		t.Fatalf("engine.renderFrame: render callback ran %d times, want 1", rendered)
	}
	u := e.renderer.LastFrameUniforms()
	if u.ViewMatrix != e.rig.Data().View {
		t.Fatalf("engine.renderFrame: view matrix not taken from the rig")
	}
	if u.ShadowView != e.rig.ShadowData().View {
		t.Fatalf("engine.renderFrame: shadow view not taken from the rig")
	}
}

func TestRenderFrameStopsOnQuit(t *testing.T) {
	dev := gpufake.New(gpufake.WithManualCompletion())
	e := newTestEngine(t, dev)
	t.Cleanup(dev.CompleteAll)

	for i := 0; i < 3; i++ {
		if err := e.renderFrame(e.ctx, 0); err != nil {
			t.Fatalf("engine.renderFrame #%d: %v", i, err)
		}
	}
	e.signalQuit()
	if err := e.renderFrame(e.ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("engine.renderFrame after quit = %v, want context.Canceled", err)
	}
}

func TestResizeReconfiguresEverything(t *testing.T) {
	dev := gpufake.New()
	e := newTestEngine(t, dev)

	e.onResize(800, 400)
	if got := e.renderer.Aspect(); got != 2 {
		t.Fatalf("engine.onResize: renderer aspect = %v, want 2", got)
	}
	if got := e.rig.Data().Aspect; got != 2 {
		t.Fatalf("engine.onResize: rig aspect = %v, want 2", got)
	}
	d, err := dev.AcquireDrawable(t.Context())
	if err != nil {
		t.Fatalf("gpufake.Device.AcquireDrawable: %v", err)
	}
	if d.Texture().Width() != 800 || d.Texture().Height() != 400 {
		t.Fatalf("engine.onResize: surface = %dx%d, want 800x400", d.Texture().Width(), d.Texture().Height())
	}
}

func TestMouseInput(t *testing.T) {
	dev := gpufake.New()
	e := newTestEngine(t, dev)
	s := e.renderer.Settings()
	ctrl := e.rig.Controller()

	e.onMouseButton(window.MouseButtonLeft|window.MouseButtonRight, 10, 10)
	if s.MouseButtons() != window.MouseButtonLeft {
		t.Fatalf("engine.onMouseButton: settings mask = %b, want only the left button", s.MouseButtons())
	}

	azimuth := ctrl.Azimuth()
	e.onMouseMove(30, 10)
	if x, y := s.CursorPosition(); x != 30 || y != 10 {
		t.Fatalf("engine.onMouseMove: cursor = (%v, %v), want (30, 10)", x, y)
	}
	if ctrl.Azimuth() == azimuth {
		t.Fatalf("engine.onMouseMove: right drag did not orbit the camera")
	}

	e.onMouseButton(0, 30, 10)
	azimuth = ctrl.Azimuth()
	e.onMouseMove(60, 10)
	if ctrl.Azimuth() != azimuth {
		t.Fatalf("engine.onMouseMove: camera orbited without a held button")
	}
}

func TestKeyInput(t *testing.T) {
	dev := gpufake.New()
	e := newTestEngine(t, dev)
	s := e.renderer.Settings()

	e.onKeyDown(common.Key3)
	if s.Family() != 3 {
		t.Fatalf("engine.onKeyDown(3): family = %d, want 3", s.Family())
	}

	e.onKeyDown(common.KeyT)
	if s.Primitive() != gpu.TopologyPointList {
		t.Fatalf("engine.onKeyDown(T): primitive = %v, want it to wrap to point-list", s.Primitive())
	}
	e.onKeyDown(common.KeyT)
	if s.Primitive() != gpu.TopologyLineList {
		t.Fatalf("engine.onKeyDown(T): primitive = %v, want line-list", s.Primitive())
	}

	radius := e.rig.Controller().Radius()
	e.onKeyDown(common.KeyW)
	if e.rig.Controller().Radius() >= radius {
		t.Fatalf("engine.onKeyDown(W): radius %v did not shrink from %v", e.rig.Controller().Radius(), radius)
	}
}

func TestNewEngineRequiresRenderer(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("NewEngine: expected a panic without a renderer")
		}
	}()
	NewEngine(WithRig(camera.NewRig()))
}
