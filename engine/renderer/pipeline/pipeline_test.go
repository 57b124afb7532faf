package pipeline

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu/gpufake"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/shader"
)

const testShaders = `
@vertex
fn depth_vertex(@location(0) p: vec3<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(p, 1.0);
}

@fragment
fn color_fragment() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}

@compute @workgroup_size(16, 16)
fn tile_function(@builtin(global_invocation_id) id: vec3<u32>) {
}
`

func testLibrary(t *testing.T, dev gpu.Device) shader.Library {
	t.Helper()
	lib, err := shader.Load(dev, fstest.MapFS{"test.wgsl": {Data: []byte(testShaders)}})
	if err != nil {
		t.Fatalf("shader.Load: %v", err)
	}
	return lib
}

func TestNewRenderPipelineDepthOnly(t *testing.T) {
	dev := gpufake.New()
	lib := testLibrary(t, dev)

	p, err := NewRenderPipeline(dev, lib, "Shadow", "depth_vertex", "",
		WithDepthStencil(gpu.FormatDepth16Unorm, ShadowDepth()),
		WithDepthBias(gpu.DepthBias{Constant: 7, SlopeScale: 0.015, Clamp: 0.02}),
		WithCullMode(gpu.CullBack),
	)
	if err != nil {
		t.Fatalf("NewRenderPipeline: %v", err)
	}
	if p.Type() != PipelineTypeRender || p.Render() == nil || p.Compute() != nil {
		t.Fatalf("NewRenderPipeline: wrong pipeline kind")
	}
	desc, ok := dev.RenderPipeline("Shadow")
	if !ok {
		t.Fatalf("NewRenderPipeline: device never saw the pipeline")
	}
	if desc.FragmentModule != nil || len(desc.Targets) != 0 {
		t.Fatalf("NewRenderPipeline: depth-only pipeline has a fragment stage")
	}
	if desc.DepthBias.Constant != 7 || desc.DepthStencil.DepthCompare != gpu.CompareLessEqual || !desc.DepthStencil.DepthWrite {
		t.Fatalf("NewRenderPipeline: depth state not forwarded: %+v", desc)
	}
}

func TestNewRenderPipelineMissingFunction(t *testing.T) {
	dev := gpufake.New()
	lib := testLibrary(t, dev)
	_, err := NewRenderPipeline(dev, lib, "Mask", "depth_vertex", "light_mask_fragment")
	if !errors.Is(err, shader.ErrEntryPointNotFound) {
		t.Fatalf("NewRenderPipeline: got %v, want ErrEntryPointNotFound", err)
	}
	if _, err := NewRenderPipeline(dev, lib, "Targets", "depth_vertex", "",
		WithColorTargets(gpu.ColorTarget{Format: gpu.FormatBGRA8Unorm})); err == nil {
		t.Fatalf("NewRenderPipeline: color targets without fragment should fail")
	}
}

func TestNewComputePipeline(t *testing.T) {
	dev := gpufake.New()
	lib := testLibrary(t, dev)
	p, err := NewComputePipeline(dev, lib, "Trail", "tile_function")
	if err != nil {
		t.Fatalf("NewComputePipeline: %v", err)
	}
	if p.WorkgroupSize() != [3]uint32{16, 16, 1} {
		t.Fatalf("NewComputePipeline: workgroup size %v", p.WorkgroupSize())
	}
	if _, err := NewComputePipeline(dev, lib, "Wrong", "color_fragment"); !errors.Is(err, shader.ErrStageMismatch) {
		t.Fatalf("NewComputePipeline: got %v, want ErrStageMismatch", err)
	}
	before := dev.Live()
	p.Release()
	p.Release()
	if dev.Live() != before-1 {
		t.Fatalf("Pipeline.Release: live %d, want %d", dev.Live(), before-1)
	}
}

func TestDepthStencilPresets(t *testing.T) {
	tests := []struct {
		name        string
		state       gpu.DepthStencilState
		compare     gpu.CompareFunc
		write       bool
		stencil     gpu.CompareFunc
		read, wmask uint32
	}{
		{"DontWriteDepth", DontWriteDepth(), gpu.CompareLess, false, gpu.CompareUndefined, 0, 0},
		{"ShadowDepth", ShadowDepth(), gpu.CompareLessEqual, true, gpu.CompareUndefined, 0, 0},
		{"GBufferDepthStencil", GBufferDepthStencil(), gpu.CompareLess, true, gpu.CompareAlways, 0, 0xFF},
		{"DirectionalLightDepthStencil", DirectionalLightDepthStencil(), gpu.CompareAlways, false, gpu.CompareEqual, 0xFF, 0},
		{"PointLightDepthStencil", PointLightDepthStencil(), gpu.CompareLessEqual, false, gpu.CompareLess, 0xFF, 0},
		{"LightMaskDepthStencil", LightMaskDepthStencil(), gpu.CompareLessEqual, false, gpu.CompareAlways, 0, 0xFF},
	}
	for _, tc := range tests {
		s := tc.state
		if s.DepthCompare != tc.compare || s.DepthWrite != tc.write {
			t.Fatalf("%s: depth %v/%v", tc.name, s.DepthCompare, s.DepthWrite)
		}
		if s.StencilFront.Compare != tc.stencil || s.StencilFront != s.StencilBack {
			t.Fatalf("%s: stencil faces %+v %+v", tc.name, s.StencilFront, s.StencilBack)
		}
		if s.StencilReadMask != tc.read || s.StencilWriteMask != tc.wmask {
			t.Fatalf("%s: masks %#x %#x", tc.name, s.StencilReadMask, s.StencilWriteMask)
		}
	}
	if GBufferDepthStencil().StencilFront.PassOp != gpu.StencilReplace {
		t.Fatalf("GBufferDepthStencil: pass op should replace")
	}
	if LightMaskDepthStencil().StencilFront.DepthFailOp != gpu.StencilIncrementClamp {
		t.Fatalf("LightMaskDepthStencil: depth-fail op should increment")
	}
}

func TestWorkgroupCount(t *testing.T) {
	if got := WorkgroupCount(100000, 64); got != 1563 {
		t.Fatalf("WorkgroupCount: got %d", got)
	}
	if got := WorkgroupCount(2048, 16); got != 128 {
		t.Fatalf("WorkgroupCount: got %d", got)
	}
	if got := WorkgroupCount(5, 0); got != 5 {
		t.Fatalf("WorkgroupCount: zero group got %d", got)
	}
}
