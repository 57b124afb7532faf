package renderer

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/engine/camera"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu/gpufake"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/frame"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/shaders"
	"github.com/Carmen-Shannon/oxy-deferred/engine/settings"
	"github.com/go-gl/mathgl/mgl32"
)

const testParticles = 1000

// within compares component-wise with an absolute tolerance. mgl32's ApproxEqual
// family falls back to epsilon squared when a component is zero.
func within(a, b []float32, tol float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if mgl32.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func newTestRenderer(t *testing.T, dev *gpufake.Device, width, height int, options ...RendererBuilderOption) (Renderer, shader.Library) {
	t.Helper()
	lib, err := shaders.Load(dev, nil, false)
	if err != nil {
		t.Fatalf("shaders.Load: %v", err)
	}
	options = append([]RendererBuilderOption{WithParticleCount(testParticles)}, options...)
	r, err := Build(dev, lib, resource.NewSolidCatalog(), width, height, options...)
	if err != nil {
		lib.Release()
		t.Fatalf("Build: %v", err)
	}
	return r, lib
}

func withCleanup(t *testing.T, r Renderer, lib shader.Library) {
	t.Cleanup(func() {
		r.Release()
		lib.Release()
	})
}

func TestDrawFrameEndToEnd(t *testing.T) {
	dev := gpufake.New(gpufake.WithSurfaceSize(1024, 768))
	r, lib := newTestRenderer(t, dev, 1024, 768)
	withCleanup(t, r, lib)

	rig := camera.NewRig(camera.WithAspect(1024.0 / 768.0))
	r.SetCameraData(rig.Data())
	r.SetShadowCameraData(rig.ShadowData())

	if err := r.DrawFrame(t.Context()); err != nil {
		t.Fatalf("Renderer.DrawFrame: %v", err)
	}

	u := r.LastFrameUniforms()
	if u.FramebufferWidth != 1024 || u.FramebufferHeight != 768 {
		t.Fatalf("Renderer.DrawFrame: framebuffer = %dx%d, want 1024x768", u.FramebufferWidth, u.FramebufferHeight)
	}
	if u.ShadowView == mgl32.Ident4() || u.ShadowProjection == mgl32.Ident4() {
		t.Fatalf("Renderer.DrawFrame: shadow view/projection not taken from the shadow camera")
	}
	if u.ShadowView != rig.ShadowData().View {
		t.Fatalf("Renderer.DrawFrame: shadow view = %v, want the shadow camera's view", u.ShadowView)
	}
	if u.ShadowTransform != frame.ShadowTextureTransform() || u.ShadowTransform == mgl32.Ident4() {
		t.Fatalf("Renderer.DrawFrame: shadow transform = %v", u.ShadowTransform)
	}
	if u.WorldTransform != u.ViewMatrix || u.PlaneModelView != u.ViewMatrix {
		t.Fatalf("Renderer.DrawFrame: world and plane transforms must equal the view matrix")
	}
	if u.ScaleMatrix != mgl32.Ident4() {
		t.Fatalf("Renderer.DrawFrame: scale matrix = %v, want identity", u.ScaleMatrix)
	}
	if id, want := u.PerspectiveTransform.Mul4(u.ProjectionInverse), mgl32.Ident4(); !within(id[:], want[:], 1e-4) {
		t.Fatalf("Renderer.DrawFrame: projection inverse does not invert the projection")
	}

	commits := dev.OpsMatching("commit ")
	want := []string{"commit " + GeometryStreamLabel, "commit " + CompositionStreamLabel}
	if fmt.Sprint(commits) != fmt.Sprint(want) {
		t.Fatalf("Renderer.DrawFrame: commits = %v, want %v", commits, want)
	}
	var passes []string
	for _, p := range dev.RenderPasses() {
		passes = append(passes, p.Label)
	}
	if got := strings.Join(passes, ","); got != "Shadow,GBuffer,Composition" {
		t.Fatalf("Renderer.DrawFrame: render passes = %s", got)
	}
	if dev.Presents() != 1 {
		t.Fatalf("Renderer.DrawFrame: presents = %d, want 1", dev.Presents())
	}
	if r.InFlight() != 0 {
		t.Fatalf("Renderer.DrawFrame: in flight = %d after completion, want 0", r.InFlight())
	}
	if !r.Simulation().Initialized() {
		t.Fatalf("Renderer.DrawFrame: simulation not initialized after the first frame")
	}
}

func TestDrawFrameStepsBeforeComposition(t *testing.T) {
	dev := gpufake.New(gpufake.WithSurfaceSize(64, 64))
	r, lib := newTestRenderer(t, dev, 64, 64)
	withCleanup(t, r, lib)

	if err := r.DrawFrame(t.Context()); err != nil {
		t.Fatalf("Renderer.DrawFrame: %v", err)
	}
	order := []string{"compute-pass Simulation", "render-pass Shadow", "render-pass GBuffer", "commit " + GeometryStreamLabel, "acquire", "render-pass Composition", "commit " + CompositionStreamLabel}
	next := 0
	for _, op := range dev.Ops() {
		if next < len(order) && op == order[next] {
			next++
		}
	}
	if next != len(order) {
		t.Fatalf("Renderer.DrawFrame: missing %q in order, ops = %v", order[next], dev.Ops())
	}
}

func TestDrawFrameGateBoundsFramesInFlight(t *testing.T) {
	dev := gpufake.New(gpufake.WithManualCompletion(), gpufake.WithSurfaceSize(64, 64))
	r, lib := newTestRenderer(t, dev, 64, 64)
	t.Cleanup(func() {
		dev.CompleteAll()
		r.Release()
		lib.Release()
	})

	for i := 0; i < frame.MaxFramesInFlight; i++ {
		if err := r.DrawFrame(t.Context()); err != nil {
			t.Fatalf("Renderer.DrawFrame #%d: %v", i, err)
		}
	}
	if r.InFlight() != frame.MaxFramesInFlight {
		t.Fatalf("Renderer.InFlight = %d, want %d", r.InFlight(), frame.MaxFramesInFlight)
	}

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	err := r.DrawFrame(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Renderer.DrawFrame with a full ring = %v, want deadline exceeded", err)
	}
	if r.FrameNumber() != frame.MaxFramesInFlight {
		t.Fatalf("Renderer.FrameNumber = %d, a refused frame must not start", r.FrameNumber())
	}

	if !dev.CompleteNext() {
		t.Fatalf("gpufake.Device.CompleteNext: nothing pending")
	}
	if err := r.DrawFrame(t.Context()); err != nil {
		t.Fatalf("Renderer.DrawFrame after a completion: %v", err)
	}
	if r.Slot().Index != 0 {
		t.Fatalf("Renderer.Slot = %d, want the ring to wrap to 0", r.Slot().Index)
	}
}

func TestDrawFrameWithoutDrawable(t *testing.T) {
	dev := gpufake.New(gpufake.WithSurfaceSize(64, 64))
	r, lib := newTestRenderer(t, dev, 64, 64)
	withCleanup(t, r, lib)

	dev.FailAcquire = gpu.ErrSurfaceLost
	if err := r.DrawFrame(t.Context()); err != nil {
		t.Fatalf("Renderer.DrawFrame: %v", err)
	}
	if dev.Commits() != 2 {
		t.Fatalf("Renderer.DrawFrame: commits = %d, want the empty composition stream committed too", dev.Commits())
	}
	if dev.Presents() != 0 {
		t.Fatalf("Renderer.DrawFrame: presents = %d, want 0", dev.Presents())
	}
	if len(dev.OpsMatching("render-pass Composition")) != 0 {
		t.Fatalf("Renderer.DrawFrame: composition recorded without a drawable")
	}
	if r.InFlight() != 0 {
		t.Fatalf("Renderer.DrawFrame: in flight = %d, want the gate released", r.InFlight())
	}

	dev.FailAcquire = nil
	if err := r.DrawFrame(t.Context()); err != nil {
		t.Fatalf("Renderer.DrawFrame after recovery: %v", err)
	}
	if dev.Presents() != 1 {
		t.Fatalf("Renderer.DrawFrame: presents = %d after recovery, want 1", dev.Presents())
	}
}

func TestResize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		aspect        float32
		gbW, gbH      uint32
	}{
		{"landscape", 1024, 768, 1024.0 / 768.0, 1024, 768},
		{"zero height", 800, 0, 800, 800, 1},
		{"portrait", 300, 600, 0.5, 300, 600},
	}

	dev := gpufake.New()
	r, lib := newTestRenderer(t, dev, 1, 1)
	withCleanup(t, r, lib)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := r.Resources().GBuffer
			r.Resize(tt.width, tt.height)
			if math.Abs(float64(r.Aspect()-tt.aspect)) > 1e-5 {
				t.Fatalf("Renderer.Resize: aspect = %v, want %v", r.Aspect(), tt.aspect)
			}
			if gb := r.Resources().GBuffer; gb.Albedo != before.Albedo {
				t.Fatalf("Renderer.Resize: g-buffer replaced outside DrawFrame")
			}
			if err := r.DrawFrame(t.Context()); err != nil {
				t.Fatalf("Renderer.DrawFrame: %v", err)
			}
			gb := r.Resources().GBuffer
			if gb.Width != tt.gbW || gb.Height != tt.gbH {
				t.Fatalf("Renderer.DrawFrame after Resize: g-buffer = %dx%d, want %dx%d", gb.Width, gb.Height, tt.gbW, tt.gbH)
			}
		})
	}
}

func TestResizeAndReadsDuringFrames(t *testing.T) {
	dev := gpufake.New()
	r, lib := newTestRenderer(t, dev, 64, 48)
	withCleanup(t, r, lib)

	const resizes = 200
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < resizes; i++ {
			r.Resize(640+i, 480+i)
			if tr, rot := r.Phases(); tr < 0 || tr >= 1 || rot < 0 || rot >= 1 {
				t.Errorf("Renderer.Phases = (%v, %v), want both in [0, 1)", tr, rot)
			}
			if r.Slot() == nil {
				t.Errorf("Renderer.Slot returned nil")
			}
		}
	}()

	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}
		if err := r.DrawFrame(t.Context()); err != nil {
			t.Fatalf("Renderer.DrawFrame: %v", err)
		}
		if albedo, ok := r.Resources().GBuffer.Albedo.(*gpufake.Texture); !ok || albedo.Released() {
			t.Fatalf("Renderer.DrawFrame: frame encoded against a released g-buffer")
		}
	}

	if err := r.DrawFrame(t.Context()); err != nil {
		t.Fatalf("Renderer.DrawFrame: %v", err)
	}
	gb := r.Resources().GBuffer
	if gb.Width != 640+resizes-1 || gb.Height != 480+resizes-1 {
		t.Fatalf("Renderer.DrawFrame: g-buffer = %dx%d, want the last requested size", gb.Width, gb.Height)
	}
}

func TestAnimationState(t *testing.T) {
	dev := gpufake.New()
	r, lib := newTestRenderer(t, dev, 64, 64)
	withCleanup(t, r, lib)

	for i := 0; i < 5; i++ {
		if err := r.DrawFrame(t.Context()); err != nil {
			t.Fatalf("Renderer.DrawFrame: %v", err)
		}
	}
	if r.FrameNumber() != 5 {
		t.Fatalf("Renderer.FrameNumber = %d, want 5", r.FrameNumber())
	}
	tr, rot := r.Phases()
	if math.Abs(float64(tr-5*TransformationSpeed)) > 1e-6 || math.Abs(float64(rot-5*RotationSpeed)) > 1e-6 {
		t.Fatalf("Renderer.Phases = (%v, %v), want (%v, %v)", tr, rot, 5*TransformationSpeed, 5*RotationSpeed)
	}
	if r.Slot().Index != 4%frame.MaxFramesInFlight {
		t.Fatalf("Renderer.Slot = %d, want %d", r.Slot().Index, 4%frame.MaxFramesInFlight)
	}
}

func TestPerFrameBuffers(t *testing.T) {
	dev := gpufake.New()
	s := settings.NewSettings()
	s.SetInstances(3, 3, 3)
	s.SetCursorPosition(32, 16)
	s.SetMouseButtons(1)
	r, lib := newTestRenderer(t, dev, 64, 64, WithSettings(s), WithInteractions(true))
	withCleanup(t, r, lib)

	if err := r.DrawFrame(t.Context()); err != nil {
		t.Fatalf("Renderer.DrawFrame: %v", err)
	}
	slot := r.Slot()

	sim := slot.SimulationUniforms.(*gpufake.Buffer).Bytes()
	if n := binary.LittleEndian.Uint32(sim[0:4]); n != testParticles {
		t.Fatalf("Renderer.DrawFrame: particle count uniform = %d, want %d", n, testParticles)
	}

	cursor := slot.Interactions.(*gpufake.Buffer).Bytes()
	x := math.Float32frombits(binary.LittleEndian.Uint32(cursor[0:4]))
	y := math.Float32frombits(binary.LittleEndian.Uint32(cursor[4:8]))
	if x != 1024 || y != 512 {
		t.Fatalf("Renderer.DrawFrame: cursor in field space = (%v, %v), want (1024, 512)", x, y)
	}

	var instanced int
	for _, op := range dev.OpsMatching("draw-indexed ") {
		if strings.HasSuffix(op, " 27") {
			instanced++
		}
	}
	if instanced != 2 {
		t.Fatalf("Renderer.DrawFrame: %d draws of 27 instances, want shadow and g-buffer", instanced)
	}
	if len(dev.OpsMatching("pipeline Interactions")) != 1 {
		t.Fatalf("Renderer.DrawFrame: interactions kernel not dispatched")
	}
}

func TestNewRendererPanicsOnBuildFailure(t *testing.T) {
	dev := gpufake.New()
	lib, err := shaders.Load(dev, nil, false)
	if err != nil {
		t.Fatalf("shaders.Load: %v", err)
	}
	defer lib.Release()
	dev.FailPipelines["Skybox"] = true

	defer func() {
		if recover() == nil {
			t.Fatalf("NewRenderer: expected a panic when a pipeline fails")
		}
	}()
	NewRenderer(dev, lib, resource.NewSolidCatalog(), 64, 64, WithParticleCount(testParticles))
}

func TestReleaseFreesEverything(t *testing.T) {
	dev := gpufake.New()
	r, lib := newTestRenderer(t, dev, 64, 64)
	if err := r.DrawFrame(t.Context()); err != nil {
		t.Fatalf("Renderer.DrawFrame: %v", err)
	}
	r.Release()
	lib.Release()
	if dev.Live() != 0 {
		t.Fatalf("Renderer.Release: %d handles still live", dev.Live())
	}
}
