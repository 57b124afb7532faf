package shader

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu/gpufake"
)

const quadSource = `//@oxy:include quad
struct VertexOut {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn quad_vertex(in: QuadVertex) -> VertexOut {
    var out: VertexOut;
    out.position = vec4<f32>(in.position, 0.0, 1.0);
    out.uv = in.position * 0.5 + vec2<f32>(0.5);
    return out;
}

@fragment
fn quad_fragment(in: VertexOut) -> @location(0) vec4<f32> {
    return vec4<f32>(in.uv, 0.0, 1.0);
}
`

const quadInclude = `struct QuadVertex {
    @location(0) position: vec2<f32>,
}`

const computeSource = `@group(0) @binding(0) var<storage, read_write> values: array<f32>;

// doubles every value
@compute @workgroup_size(64)
fn double_values(@builtin(global_invocation_id) id: vec3<u32>) {
    values[id.x] = values[id.x] * 2.0;
}

@workgroup_size(16, 16) @compute
fn tile_values(@builtin(global_invocation_id) id: vec3<u32>) {
    values[id.x + id.y] = 0.0;
}
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"quad.wgsl":    {Data: []byte(quadSource)},
		"compute.wgsl": {Data: []byte(computeSource)},
		"README.md":    {Data: []byte("not a shader")},
	}
}

func TestLoadIndexesEntryPoints(t *testing.T) {
	dev := gpufake.New()
	lib, err := Load(dev, testFS(), WithIncludes(map[string]string{"quad": quadInclude}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer lib.Release()

	want := []string{"double_values", "quad_fragment", "quad_vertex", "tile_values"}
	got := lib.Functions()
	if len(got) != len(want) {
		t.Fatalf("Library.Functions: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Library.Functions: got %v, want %v", got, want)
		}
	}

	fn, err := lib.StageFunction("double_values", StageCompute)
	if err != nil {
		t.Fatalf("Library.StageFunction: %v", err)
	}
	if fn.WorkgroupSize != [3]uint32{64, 1, 1} {
		t.Fatalf("Library.StageFunction: workgroup size %v", fn.WorkgroupSize)
	}
	fn, _ = lib.Function("tile_values")
	if fn.WorkgroupSize != [3]uint32{16, 16, 1} {
		t.Fatalf("Library.Function: tile workgroup size %v", fn.WorkgroupSize)
	}

	vs, _ := lib.Function("quad_vertex")
	fs, _ := lib.Function("quad_fragment")
	if vs.Module != fs.Module {
		t.Fatalf("Library.Function: functions of one file should share a module")
	}
	if vs.Stage != StageVertex || fs.Stage != StageFragment {
		t.Fatalf("Library.Function: stages %v %v", vs.Stage, fs.Stage)
	}
	if dev.Live() != 2 {
		t.Fatalf("Load: want 2 modules, device holds %d", dev.Live())
	}
}

func TestLibraryMissingFunction(t *testing.T) {
	lib, err := Load(gpufake.New(), testFS(), WithIncludes(map[string]string{"quad": quadInclude}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := lib.Function("light_mask_fragment"); !errors.Is(err, ErrEntryPointNotFound) {
		t.Fatalf("Library.Function: got %v, want ErrEntryPointNotFound", err)
	}
	if _, err := lib.StageFunction("quad_vertex", StageFragment); !errors.Is(err, ErrStageMismatch) {
		t.Fatalf("Library.StageFunction: got %v, want ErrStageMismatch", err)
	}
}

func TestLoadRejectsUnknownInclude(t *testing.T) {
	if _, err := Load(gpufake.New(), testFS()); err == nil {
		t.Fatalf("Load: expected error for unregistered include")
	}
}

func TestLoadRejectsDuplicateEntryPoints(t *testing.T) {
	fsys := fstest.MapFS{
		"a.wgsl": {Data: []byte(computeSource)},
		"b.wgsl": {Data: []byte(computeSource)},
	}
	dev := gpufake.New()
	if _, err := Load(dev, fsys); err == nil {
		t.Fatalf("Load: expected duplicate entry point error")
	}
	if dev.Live() != 0 {
		t.Fatalf("Load: failed load leaked %d modules", dev.Live())
	}
}

func TestLoadEmpty(t *testing.T) {
	if _, err := Load(gpufake.New(), fstest.MapFS{}); err == nil {
		t.Fatalf("Load: expected error for empty file system")
	}
}

func TestLoadValidation(t *testing.T) {
	valid := `@group(0) @binding(0) var<storage, read_write> values: array<f32>;

@compute @workgroup_size(64)
fn double_values(@builtin(global_invocation_id) id: vec3<u32>) {
    values[id.x] = values[id.x] * 2.0;
}
`
	fsys := fstest.MapFS{"compute.wgsl": {Data: []byte(valid)}}
	if _, err := Load(gpufake.New(), fsys, WithValidation(true)); err != nil {
		t.Fatalf("Load: valid shader rejected: %v", err)
	}

	broken := fstest.MapFS{"broken.wgsl": {Data: []byte("@compute @workgroup_size(1)\nfn main( {\n")}}
	if _, err := Load(gpufake.New(), broken, WithValidation(true)); err == nil {
		t.Fatalf("Load: expected validation error")
	}
}
