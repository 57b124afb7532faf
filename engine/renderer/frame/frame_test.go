package frame

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu/gpufake"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

func TestRingAdvance(t *testing.T) {
	r, err := NewRing(MaxFramesInFlight, func(i int) (int, error) { return i * 10, nil }, nil)
	if err != nil {
		t.Fatalf("NewRing: %v", err)
	}
	if r.Index() != 0 || r.Current() != 0 {
		t.Fatalf("Ring.Current: expected slot 0, got %d", r.Index())
	}

	prev := r.Index()
	for i := 0; i < 10; i++ {
		next := r.Advance()
		if next < 0 || next >= r.Len() {
			t.Fatalf("Ring.Advance: index %d out of range", next)
		}
		if next != (prev+1)%MaxFramesInFlight {
			t.Fatalf("Ring.Advance: expected %d after %d, got %d", (prev+1)%MaxFramesInFlight, prev, next)
		}
		if r.Current() != next*10 {
			t.Fatalf("Ring.Current: expected %d, got %d", next*10, r.Current())
		}
		prev = next
	}
}

func TestRingBuildFailureCleansUp(t *testing.T) {
	var cleaned []int
	boom := errors.New("boom")
	_, err := NewRing(3, func(i int) (int, error) {
		if i == 2 {
			return 0, boom
		}
		return i, nil
	}, func(v int) { cleaned = append(cleaned, v) })
	if !errors.Is(err, boom) {
		t.Fatalf("NewRing: expected build error, got %v", err)
	}
	if len(cleaned) != 2 || cleaned[0] != 1 || cleaned[1] != 0 {
		t.Fatalf("NewRing: expected reverse cleanup [1 0], got %v", cleaned)
	}
}

func TestGateBoundsInFlight(t *testing.T) {
	g := NewGate(MaxFramesInFlight)
	ctx := context.Background()
	for i := 0; i < MaxFramesInFlight; i++ {
		if err := g.Acquire(ctx); err != nil {
			t.Fatalf("Gate.Acquire: %v", err)
		}
	}
	if g.InFlight() != MaxFramesInFlight {
		t.Fatalf("Gate.InFlight: expected %d, got %d", MaxFramesInFlight, g.InFlight())
	}
	if g.TryAcquire() {
		t.Fatalf("Gate.TryAcquire: admitted a frame past capacity")
	}

	admitted := make(chan struct{})
	go func() {
		if err := g.Acquire(ctx); err == nil {
			close(admitted)
		}
	}()
	select {
	case <-admitted:
		t.Fatalf("Gate.Acquire: admitted a frame before any release")
	case <-time.After(20 * time.Millisecond):
	}

	g.Release()
	select {
	case <-admitted:
	case <-time.After(time.Second):
		t.Fatalf("Gate.Release: blocked producer was not admitted")
	}
	if g.InFlight() != MaxFramesInFlight {
		t.Fatalf("Gate.InFlight: expected %d, got %d", MaxFramesInFlight, g.InFlight())
	}
}

func TestGateAcquireHonorsContext(t *testing.T) {
	g := NewGate(1)
	if err := g.Acquire(context.Background()); err != nil {
		t.Fatalf("Gate.Acquire: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := g.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Gate.Acquire: expected deadline error, got %v", err)
	}
	if g.InFlight() != 1 {
		t.Fatalf("Gate.InFlight: failed acquire changed the count to %d", g.InFlight())
	}
}

func TestGateExtraReleaseIsNoop(t *testing.T) {
	g := NewGate(2)
	g.Release()
	if g.InFlight() != 0 {
		t.Fatalf("Gate.Release: expected 0 in flight, got %d", g.InFlight())
	}
	if !g.TryAcquire() || !g.TryAcquire() || g.TryAcquire() {
		t.Fatalf("Gate.Release: extra release changed the capacity")
	}
	g.Release()
	g.Release()
	if err := g.Drain(context.Background()); err != nil {
		t.Fatalf("Gate.Drain: %v", err)
	}
}

func TestSlotAllocatesAndReleases(t *testing.T) {
	dev := gpufake.New()
	sizes := SlotSizes{Instances: 128, FrameUniforms: FrameUniformSize, SimulationUniforms: 48, LightPositions: 240, Time: 16, Interactions: 16}
	s, err := NewSlot(dev, 1, sizes)
	if err != nil {
		t.Fatalf("NewSlot: %v", err)
	}
	if s.FrameUniforms.Size() != FrameUniformSize || s.LightPositions.Size() != 240 {
		t.Fatalf("NewSlot: wrong buffer sizes")
	}
	if s.Instances.Label() != "Instance Data 1" {
		t.Fatalf("NewSlot: unexpected label %q", s.Instances.Label())
	}
	if dev.Live() != 6 {
		t.Fatalf("NewSlot: expected 6 live buffers, got %d", dev.Live())
	}
	s.Release()
	if dev.Live() != 0 {
		t.Fatalf("Slot.Release: %d buffers still live", dev.Live())
	}
	released := dev.Released()
	if released[0] != "Interactions 1" || released[len(released)-1] != "Instance Data 1" {
		t.Fatalf("Slot.Release: expected reverse order, got %v", released)
	}
}

func TestSlotFailureReleasesPartial(t *testing.T) {
	dev := gpufake.New()
	_, err := NewSlot(dev, 0, SlotSizes{Instances: 128, FrameUniforms: FrameUniformSize})
	if err == nil {
		t.Fatalf("NewSlot: expected error for zero-size buffer")
	}
	if dev.Live() != 0 {
		t.Fatalf("NewSlot: leaked %d buffers", dev.Live())
	}
}

func TestFrameUniformLayout(t *testing.T) {
	size, ok := shader.StructSize(FrameUniformsWGSL, "FrameUniforms")
	if !ok || size != FrameUniformSize {
		t.Fatalf("FrameUniformsWGSL: expected %d bytes, got %d (found %v)", FrameUniformSize, size, ok)
	}

	block := FrameUniformBlock{
		CameraPos:         mgl32.Vec3{1, 2, 3},
		FramebufferWidth:  1024,
		FramebufferHeight: 768,
		ShadowTransform:   ShadowTextureTransform(),
		MipLevel:          4,
	}
	b := block.Marshal()
	if len(b) != FrameUniformSize {
		t.Fatalf("FrameUniformBlock.Marshal: expected %d bytes, got %d", FrameUniformSize, len(b))
	}

	want := make([]byte, 4)
	common.PutUint32(want, 0, 1024)
	if string(b[640:644]) != string(want) {
		t.Fatalf("FrameUniformBlock.Marshal: framebuffer_width not at offset 640")
	}
	common.PutFloat32(want, 0, 3)
	if string(b[8:12]) != string(want) {
		t.Fatalf("FrameUniformBlock.Marshal: camera_pos.z not at offset 8")
	}
	common.PutFloat32(want, 0, 4)
	if string(b[928:932]) != string(want) {
		t.Fatalf("FrameUniformBlock.Marshal: mip_level not at offset 928")
	}
	// column 3 of the shadow transform holds the 0.5 translation
	common.PutFloat32(want, 0, 0.5)
	if string(b[848+48:848+52]) != string(want) {
		t.Fatalf("FrameUniformBlock.Marshal: shadow_xform_matrix translation misplaced")
	}
}

func TestShadowTextureTransform(t *testing.T) {
	m := ShadowTextureTransform()
	p := m.Mul4x1(mgl32.Vec4{-1, 1, 0.25, 1})
	if p.X() != 0 || p.Y() != 0 || p.Z() != 0.25 {
		t.Fatalf("ShadowTextureTransform: top-left clip corner mapped to %v", p)
	}
	p = m.Mul4x1(mgl32.Vec4{1, -1, 0, 1})
	if p.X() != 1 || p.Y() != 1 {
		t.Fatalf("ShadowTextureTransform: bottom-right clip corner mapped to %v", p)
	}
}
