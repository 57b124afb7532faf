package stage

import (
	"encoding/binary"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu/gpufake"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/frame"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/shaders"
	"github.com/Carmen-Shannon/oxy-deferred/engine/simulation"
)

const testParticles = 1000

func testResources(t *testing.T, dev *gpufake.Device, options ...resource.BuilderOption) (*resource.Resources, *frame.Slot) {
	t.Helper()
	lib, err := shaders.Load(dev, nil, false)
	if err != nil {
		t.Fatalf("shaders.Load: %v", err)
	}
	options = append([]resource.BuilderOption{resource.WithParticleCount(testParticles), resource.WithSurfaceSize(320, 240)}, options...)
	res, err := resource.NewBuilder(dev, lib, resource.NewSolidCatalog(),
		resource.DefaultFormats(dev.SurfaceFormat(), dev.DepthStencilFormat()), options...).Build()
	if err != nil {
		t.Fatalf("Builder.Build: %v", err)
	}
	slot, err := frame.NewSlot(dev, 0, frame.SlotSizes{
		Instances:          model.MaxInstances * model.InstanceDataSize,
		FrameUniforms:      frame.FrameUniformSize,
		SimulationUniforms: simulation.UniformBlockSize,
		LightPositions:     uint64(res.LightCount * light.LightPositionSize),
		Time:               simulation.TimeBlockSize,
		Interactions:       simulation.InteractionBlockSize,
	})
	if err != nil {
		t.Fatalf("frame.NewSlot: %v", err)
	}
	t.Cleanup(func() {
		slot.Release()
		res.Release()
		lib.Release()
	})
	return res, slot
}

func encode(t *testing.T, dev *gpufake.Device, fn func(cs gpu.CommandStream)) {
	t.Helper()
	cs, err := dev.NewCommandStream("test")
	if err != nil {
		t.Fatalf("Device.NewCommandStream: %v", err)
	}
	fn(cs)
	if err := dev.Commit(cs, nil); err != nil {
		t.Fatalf("Device.Commit: %v", err)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSimulationDispatchOrder(t *testing.T) {
	dev := gpufake.New()
	res, slot := testResources(t, dev)
	sim := NewSimulation(dev, res)
	now := time.Unix(100, 0)

	agents := fmt.Sprintf("dispatch %d 1 1", pipeline.WorkgroupCount(testParticles, simulation.AgentWorkgroupSize))
	tiles := fmt.Sprintf("dispatch %d %d 1", simulation.FieldWidth/simulation.FieldTileSize, simulation.FieldHeight/simulation.FieldTileSize)

	steps := []struct {
		name      string
		family    uint32
		pipelines []string
		dispatch  []string
	}{
		{"first frame", 1, []string{"pipeline Init", "pipeline Advance", "pipeline Trail"}, []string{agents, agents, tiles}},
		{"unchanged", 1, []string{"pipeline Advance", "pipeline Trail"}, []string{agents, tiles}},
		{"changed", 2, []string{"pipeline Advance", "pipeline Trail", "pipeline Update Family"}, []string{agents, tiles, agents}},
		{"repeat", 2, []string{"pipeline Advance", "pipeline Trail"}, []string{agents, tiles}},
	}
	for i, step := range steps {
		dev.ResetOps()
		encode(t, dev, func(cs gpu.CommandStream) {
			sim.Encode(cs, slot, now.Add(time.Duration(i)*10*time.Millisecond), step.family)
		})
		if got := dev.OpsMatching("pipeline"); !equal(got, step.pipelines) {
			t.Fatalf("Simulation.Encode (%s): pipelines %v, want %v", step.name, got, step.pipelines)
		}
		if got := dev.OpsMatching("dispatch"); !equal(got, step.dispatch) {
			t.Fatalf("Simulation.Encode (%s): dispatches %v, want %v", step.name, got, step.dispatch)
		}
	}
	if !sim.Initialized() || sim.FamilyDispatches() != 1 || sim.AppliedFamily() != 2 {
		t.Fatalf("Simulation: initialized=%v dispatches=%d applied=%d", sim.Initialized(), sim.FamilyDispatches(), sim.AppliedFamily())
	}
}

func TestSimulationBindings(t *testing.T) {
	dev := gpufake.New()
	res, slot := testResources(t, dev)
	sim := NewSimulation(dev, res)
	encode(t, dev, func(cs gpu.CommandStream) { sim.Encode(cs, slot, time.Unix(1, 0), 1) })

	want := []string{
		"bind 0 Particles,Simulation Uniforms 0,Trail Field",
		"bind 0 Particles,Simulation Uniforms 0,Time 0,Trail Field",
		"bind 0 Simulation Uniforms 0,Trail Field",
	}
	if got := dev.OpsMatching("bind"); !equal(got, want) {
		t.Fatalf("Simulation.Encode: bindings %v, want %v", got, want)
	}
}

func TestSimulationDeltaTime(t *testing.T) {
	dev := gpufake.New()
	res, slot := testResources(t, dev)
	sim := NewSimulation(dev, res)
	start := time.Unix(50, 0)

	steps := []struct {
		at   time.Time
		want float32
	}{
		{start, simulation.NominalDelta},
		{start.Add(10 * time.Millisecond), 0.01},
		{start.Add(10 * time.Millisecond), simulation.NominalDelta},
		{start.Add(time.Second), simulation.MaxDelta},
		{start, simulation.NominalDelta},
	}
	for i, step := range steps {
		// the family changes on odd steps; the clock must advance regardless
		encode(t, dev, func(cs gpu.CommandStream) { sim.Encode(cs, slot, step.at, uint32(1+i%2)) })
		if d := sim.LastDelta(); math.Abs(float64(d-step.want)) > 1e-6 {
			t.Fatalf("Simulation.Encode: step %d delta %f, want %f", i, d, step.want)
		}
		written := slot.Time.(*gpufake.Buffer).Bytes()
		if got := math.Float32frombits(binary.LittleEndian.Uint32(written)); got != sim.LastDelta() {
			t.Fatalf("Simulation.Encode: step %d wrote delta %f", i, got)
		}
		if frame := binary.LittleEndian.Uint32(written[8:]); frame != uint32(i) {
			t.Fatalf("Simulation.Encode: step %d wrote frame %d", i, frame)
		}
	}
}

func TestSimulationInteractionsRunEveryFrame(t *testing.T) {
	dev := gpufake.New()
	res, slot := testResources(t, dev, resource.WithInteractions(true))
	sim := NewSimulation(dev, res)
	for i, family := range []uint32{1, 1, 3} {
		dev.ResetOps()
		encode(t, dev, func(cs gpu.CommandStream) { sim.Encode(cs, slot, time.Unix(int64(i), 0), family) })
		ops := dev.OpsMatching("pipeline")
		if ops[len(ops)-1] != "pipeline Interactions" {
			t.Fatalf("Simulation.Encode: frame %d should end with the interactions kernel, got %v", i, ops)
		}
	}
}

func TestShadowPass(t *testing.T) {
	dev := gpufake.New()
	res, slot := testResources(t, dev)
	encode(t, dev, func(cs gpu.CommandStream) {
		NewShadow(res).Encode(cs, Frame{Slot: slot, Instances: 8, Primitive: gpu.TopologyLineList})
	})

	passes := dev.RenderPasses()
	if len(passes) != 1 || len(passes[0].Colors) != 0 || passes[0].DepthStencil.Target != res.ShadowMap {
		t.Fatalf("Shadow.Encode: expected one depth-only pass into the shadow map")
	}
	if ds := passes[0].DepthStencil; ds.DepthLoad != gpu.LoadClear || ds.DepthClear != 1 {
		t.Fatalf("Shadow.Encode: shadow map must be cleared to 1")
	}
	if got := dev.OpsMatching("pipeline"); !equal(got, []string{"pipeline Shadow line-list"}) {
		t.Fatalf("Shadow.Encode: pipelines %v", got)
	}
	want := fmt.Sprintf("draw-indexed %d 8", res.Meshes.Sphere.Mesh.IndexCount())
	if got := dev.OpsMatching("draw"); !equal(got, []string{want}) {
		t.Fatalf("Shadow.Encode: draws %v, want %s", got, want)
	}
}

func TestGBufferPass(t *testing.T) {
	dev := gpufake.New()
	res, slot := testResources(t, dev)
	encode(t, dev, func(cs gpu.CommandStream) {
		NewGBuffer(res).Encode(cs, Frame{Slot: slot, Instances: 27, Primitive: gpu.TopologyTriangleStrip})
	})

	passes := dev.RenderPasses()
	if len(passes) != 1 || len(passes[0].Colors) != 3 {
		t.Fatalf("G-buffer pass should have three color attachments")
	}
	p := passes[0]
	if p.Colors[0].Target != res.GBuffer.Albedo || p.Colors[2].Target != res.GBuffer.Depth || p.Colors[1].Load != gpu.LoadClear {
		t.Fatalf("GBuffer.Encode: attachments out of order")
	}
	if p.DepthStencil.Target != res.GBuffer.DepthStencil || p.DepthStencil.StencilLoad != gpu.LoadClear {
		t.Fatalf("GBuffer.Encode: depth/stencil must be cleared")
	}
	if got := dev.OpsMatching("stencil-ref"); !equal(got, []string{fmt.Sprintf("stencil-ref %d", pipeline.StencilReference)}) {
		t.Fatalf("GBuffer.Encode: stencil reference %v", got)
	}
	wantPipelines := []string{"pipeline GBuffer triangle-strip", "pipeline Ground"}
	if got := dev.OpsMatching("pipeline"); !equal(got, wantPipelines) {
		t.Fatalf("GBuffer.Encode: pipelines %v, want %v", got, wantPipelines)
	}
	wantDraws := []string{fmt.Sprintf("draw-indexed %d 27", res.Meshes.Sphere.Mesh.IndexCount()), "draw 6 1"}
	if got := dev.OpsMatching("draw"); !equal(got, wantDraws) {
		t.Fatalf("GBuffer.Encode: draws %v, want %v", got, wantDraws)
	}
	binds := dev.OpsMatching("bind")
	if len(binds) != 2 || binds[1] != "bind 0 Frame Uniforms 0,Trail Field,Shadow Map,Shadow Sampler" {
		t.Fatalf("GBuffer.Encode: ground bindings %v", binds)
	}
}

func TestLightingPass(t *testing.T) {
	dev := gpufake.New(gpufake.WithSurfaceSize(320, 240))
	res, slot := testResources(t, dev)
	drawable, err := dev.AcquireDrawable(t.Context())
	if err != nil {
		t.Fatalf("Device.AcquireDrawable: %v", err)
	}
	dev.ResetOps()
	encode(t, dev, func(cs gpu.CommandStream) {
		NewLighting(res).Encode(cs, Frame{Slot: slot, Instances: 1}, drawable.Texture())
	})

	p := dev.RenderPasses()[0]
	if p.Colors[0].Target != drawable.Texture() || p.Colors[0].Load != gpu.LoadClear {
		t.Fatalf("Lighting.Encode: drawable must be cleared")
	}
	if p.DepthStencil.Target != res.GBuffer.DepthStencil || p.DepthStencil.StencilLoad != gpu.LoadLoad || p.DepthStencil.DepthLoad != gpu.LoadLoad {
		t.Fatalf("Lighting.Encode: G-buffer depth/stencil must be loaded")
	}

	wantPipelines := []string{
		"pipeline Directional Light",
		"pipeline Point Light Mask",
		"pipeline Point Light",
		"pipeline Skybox",
		"pipeline Points",
	}
	if got := dev.OpsMatching("pipeline"); !equal(got, wantPipelines) {
		t.Fatalf("Lighting.Encode: pipelines %v, want %v", got, wantPipelines)
	}
	ico := res.Meshes.Icosahedron.Mesh.IndexCount()
	wantDraws := []string{
		"draw 6 1",
		fmt.Sprintf("draw-indexed %d %d", ico, light.NumLights),
		fmt.Sprintf("draw-indexed %d %d", ico, light.NumLights),
		fmt.Sprintf("draw-indexed %d 1", res.Meshes.Sky.Mesh.IndexCount()),
		fmt.Sprintf("draw %d %d", model.PointVertices, light.NumLights),
	}
	if got := dev.OpsMatching("draw"); !equal(got, wantDraws) {
		t.Fatalf("Lighting.Encode: draws %v, want %v", got, wantDraws)
	}
	binds := dev.OpsMatching("bind")
	if binds[0] != "bind 0 Frame Uniforms 0,Albedo GBuffer,Normal GBuffer,Depth GBuffer" {
		t.Fatalf("Lighting.Encode: directional bindings %v", binds[0])
	}
	if binds[3] != "bind 0 Frame Uniforms 0,"+resource.IrradianceMap+",Linear Sampler" {
		t.Fatalf("Lighting.Encode: sky bindings %v", binds[3])
	}
}
