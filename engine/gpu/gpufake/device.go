// Package gpufake is an in-memory gpu.Device that records every command it is given.
// Tests use it to check pass order, draw counts and buffer contents without a GPU.
package gpufake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
)

// Option configures a fake Device.
type Option func(*Device)

// WithManualCompletion holds completion callbacks until CompleteNext is called.
// By default callbacks run as soon as a stream is committed.
func WithManualCompletion() Option {
	return func(d *Device) { d.manual = true }
}

// WithSurfaceSize sets the initial drawable size.
func WithSurfaceSize(width, height int) Option {
	return func(d *Device) { d.ConfigureSurface(width, height) }
}

// Device records everything the renderer asks of it.
type Device struct {
	mu sync.Mutex

	ops      []string
	released []string
	passes   []gpu.RenderPassDesc

	renderPipelines  map[string]gpu.RenderPipelineDesc
	computePipelines map[string]gpu.ComputePipelineDesc
	shaderSources    map[string]string

	live     int
	manual   bool
	pending  []func()
	commits  int
	presents int

	width, height uint32
	depthStencil  *Texture

	// FailAcquire, when set, is returned by AcquireDrawable.
	FailAcquire error
	// FailPipelines names render or compute pipelines whose creation fails.
	FailPipelines map[string]bool
}

var _ gpu.Device = (*Device)(nil)

// New creates a fake device with a 1x1 surface.
func New(options ...Option) *Device {
	d := &Device{
		renderPipelines:  make(map[string]gpu.RenderPipelineDesc),
		computePipelines: make(map[string]gpu.ComputePipelineDesc),
		shaderSources:    make(map[string]string),
		FailPipelines:    make(map[string]bool),
		width:            1,
		height:           1,
	}
	for _, opt := range options {
		opt(d)
	}
	if d.depthStencil == nil {
		d.ConfigureSurface(1, 1)
	}
	return d
}

func (d *Device) record(format string, args ...any) {
	d.mu.Lock()
	d.ops = append(d.ops, fmt.Sprintf(format, args...))
	d.mu.Unlock()
}

// Ops returns a copy of the recorded command log.
func (d *Device) Ops() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.ops...)
}

// OpsMatching returns the recorded commands starting with prefix.
func (d *Device) OpsMatching(prefix string) []string {
	var out []string
	for _, op := range d.Ops() {
		if strings.HasPrefix(op, prefix) {
			out = append(out, op)
		}
	}
	return out
}

// ResetOps clears the command log and recorded render passes.
func (d *Device) ResetOps() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ops = nil
	d.passes = nil
}

// RenderPasses returns the descriptors of every render pass begun so far.
func (d *Device) RenderPasses() []gpu.RenderPassDesc {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]gpu.RenderPassDesc(nil), d.passes...)
}

// Released returns the labels of released resources in release order.
func (d *Device) Released() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.released...)
}

// Live is the number of created resources not yet released.
func (d *Device) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

// RenderPipeline returns the descriptor a render pipeline was created with.
func (d *Device) RenderPipeline(label string) (gpu.RenderPipelineDesc, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	desc, ok := d.renderPipelines[label]
	return desc, ok
}

// ComputePipeline returns the descriptor a compute pipeline was created with.
func (d *Device) ComputePipeline(label string) (gpu.ComputePipelineDesc, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	desc, ok := d.computePipelines[label]
	return desc, ok
}

// Commits is the number of committed command streams.
func (d *Device) Commits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.commits
}

// Presents is the number of presented drawables.
func (d *Device) Presents() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.presents
}

// Pending is the number of completion callbacks not yet run.
func (d *Device) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// CompleteNext runs the oldest pending completion callback.
// It reports false when nothing is pending.
func (d *Device) CompleteNext() bool {
	d.mu.Lock()
	if len(d.pending) == 0 {
		d.mu.Unlock()
		return false
	}
	fn := d.pending[0]
	d.pending = d.pending[1:]
	d.mu.Unlock()
	fn()
	return true
}

// CompleteAll runs every pending completion callback.
func (d *Device) CompleteAll() {
	for d.CompleteNext() {
	}
}

func (d *Device) created() {
	d.mu.Lock()
	d.live++
	d.mu.Unlock()
}

func (d *Device) releasedResource(label string) {
	d.mu.Lock()
	d.live--
	d.released = append(d.released, label)
	d.mu.Unlock()
}

func (d *Device) CreateShaderModule(label, source string) (gpu.ShaderModule, error) {
	if strings.TrimSpace(source) == "" {
		return nil, errors.New("gpufake: empty shader source")
	}
	d.mu.Lock()
	d.shaderSources[label] = source
	d.mu.Unlock()
	d.created()
	return &ShaderModule{resource: resource{device: d, label: label}, Source: source}, nil
}

func (d *Device) CreateBuffer(label string, size uint64, usage gpu.BufferUsage) (gpu.Buffer, error) {
	if size == 0 {
		return nil, fmt.Errorf("gpufake: buffer %s has zero size", label)
	}
	d.created()
	return &Buffer{resource: resource{device: d, label: label}, Usage: usage, data: make([]byte, size)}, nil
}

func (d *Device) WriteBuffer(b gpu.Buffer, offset uint64, data []byte) {
	buf, ok := b.(*Buffer)
	if !ok {
		return
	}
	buf.mu.Lock()
	defer buf.mu.Unlock()
	end := offset + uint64(len(data))
	if end > uint64(len(buf.data)) {
		panic(fmt.Sprintf("gpufake: write of %d bytes at %d overflows buffer %s (%d bytes)", len(data), offset, buf.label, len(buf.data)))
	}
	copy(buf.data[offset:end], data)
	buf.writes++
}

func (d *Device) CreateTexture(desc gpu.TextureDesc) (gpu.Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("gpufake: texture %s has zero extent", desc.Label)
	}
	d.created()
	return &Texture{resource: resource{device: d, label: desc.Label}, Desc: desc}, nil
}

func (d *Device) WriteTexture(t gpu.Texture, data []byte, bytesPerRow uint32) {
	tex, ok := t.(*Texture)
	if !ok {
		return
	}
	tex.mu.Lock()
	tex.Pixels = append([]byte(nil), data...)
	tex.BytesPerRow = bytesPerRow
	tex.mu.Unlock()
}

func (d *Device) CreateSampler(desc gpu.SamplerDesc) (gpu.Sampler, error) {
	d.created()
	return &Sampler{resource: resource{device: d, label: desc.Label}, Desc: desc}, nil
}

func (d *Device) CreateRenderPipeline(desc gpu.RenderPipelineDesc) (gpu.RenderPipeline, error) {
	switch {
	case d.FailPipelines[desc.Label]:
		return nil, fmt.Errorf("gpufake: pipeline %s rejected", desc.Label)
	case desc.VertexModule == nil:
		return nil, fmt.Errorf("gpufake: pipeline %s has no vertex module", desc.Label)
	case desc.FragmentModule == nil && len(desc.Targets) > 0:
		return nil, fmt.Errorf("gpufake: pipeline %s has color targets but no fragment stage", desc.Label)
	case desc.DepthStencil != nil && desc.DepthStencilFormat == gpu.FormatUndefined:
		return nil, fmt.Errorf("gpufake: pipeline %s has depth state but no depth format", desc.Label)
	}
	d.mu.Lock()
	d.renderPipelines[desc.Label] = desc
	d.mu.Unlock()
	d.created()
	return &RenderPipeline{resource: resource{device: d, label: desc.Label}, Desc: desc}, nil
}

func (d *Device) CreateComputePipeline(desc gpu.ComputePipelineDesc) (gpu.ComputePipeline, error) {
	if d.FailPipelines[desc.Label] {
		return nil, fmt.Errorf("gpufake: pipeline %s rejected", desc.Label)
	}
	if desc.Module == nil || desc.Entry == "" {
		return nil, fmt.Errorf("gpufake: compute pipeline %s is incomplete", desc.Label)
	}
	d.mu.Lock()
	d.computePipelines[desc.Label] = desc
	d.mu.Unlock()
	d.created()
	return &ComputePipeline{resource: resource{device: d, label: desc.Label}, Desc: desc}, nil
}

func (d *Device) NewCommandStream(label string) (gpu.CommandStream, error) {
	return &CommandStream{device: d, label: label}, nil
}

func (d *Device) Commit(cs gpu.CommandStream, onComplete func()) error {
	stream, ok := cs.(*CommandStream)
	if !ok {
		return errors.New("gpufake: foreign command stream")
	}
	if stream.committed {
		return fmt.Errorf("gpufake: stream %s committed twice", stream.label)
	}
	stream.committed = true
	d.record("commit %s", stream.label)

	d.mu.Lock()
	d.commits++
	d.mu.Unlock()

	if stream.drawable != nil {
		stream.drawable.Present()
	}

	if onComplete == nil {
		return nil
	}
	if d.manual {
		d.mu.Lock()
		d.pending = append(d.pending, onComplete)
		d.mu.Unlock()
		return nil
	}
	onComplete()
	return nil
}

func (d *Device) AcquireDrawable(ctx context.Context) (gpu.Drawable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.FailAcquire != nil {
		d.record("acquire failed")
		return nil, d.FailAcquire
	}
	d.mu.Lock()
	w, h, ds := d.width, d.height, d.depthStencil
	d.mu.Unlock()
	d.record("acquire")
	return &Drawable{
		device: d,
		color: &Texture{
			resource: resource{device: d, label: "Drawable"},
			Desc: gpu.TextureDesc{
				Label:  "Drawable",
				Width:  w,
				Height: h,
				Format: d.SurfaceFormat(),
				Usage:  gpu.TextureUsageRenderAttachment,
			},
		},
		depthStencil: ds,
	}, nil
}

func (d *Device) ConfigureSurface(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	d.mu.Lock()
	d.width, d.height = uint32(width), uint32(height)
	d.depthStencil = &Texture{
		resource: resource{device: d, label: "Drawable Depth Stencil"},
		Desc: gpu.TextureDesc{
			Label:  "Drawable Depth Stencil",
			Width:  uint32(width),
			Height: uint32(height),
			Format: gpu.FormatDepth24PlusStencil8,
			Usage:  gpu.TextureUsageRenderAttachment,
		},
	}
	d.mu.Unlock()
}

func (d *Device) SurfaceFormat() gpu.TextureFormat      { return gpu.FormatBGRA8Unorm }
func (d *Device) DepthStencilFormat() gpu.TextureFormat { return gpu.FormatDepth24PlusStencil8 }

func (d *Device) Release() {
	d.record("device release")
}
