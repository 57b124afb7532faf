package gpu

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// WGPUOption configures NewWGPUDevice.
type WGPUOption func(*wgpuDevice)

// WithPresentMode sets the surface present mode.
func WithPresentMode(mode PresentMode) WGPUOption {
	return func(d *wgpuDevice) {
		d.presentMode = wgpuPresentMode(mode)
	}
}

// WithForceSoftwareRenderer requests the fallback (software) adapter.
func WithForceSoftwareRenderer(force bool) WGPUOption {
	return func(d *wgpuDevice) {
		d.forceFallbackAdapter = force
	}
}

// completionPollInterval is how often the poller drives pending queue callbacks.
const completionPollInterval = time.Millisecond

type wgpuDevice struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        wgpu.TextureFormat
	presentMode          wgpu.PresentMode
	forceFallbackAdapter bool
	depthStencil         *wgpuTexture
	width, height        uint32

	// bindGroups caches bind groups keyed by pipeline, group and resources.
	bindGroups map[string]*wgpu.BindGroup

	// drawableToken holds one value while no drawable is outstanding.
	drawableToken chan struct{}

	pending atomic.Int64
	quit    chan struct{}
	done    chan struct{}
}

// NewWGPUDevice creates a WebGPU device bound to the given window surface and configures
// the surface at width x height. It must be called from the thread that owns the window.
// Panics if no adapter or device can be obtained.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor of the window
//   - width, height: the initial surface size in pixels
//   - options: functional options
//
// Returns:
//   - Device: the device
func NewWGPUDevice(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...WGPUOption) Device {
	runtime.LockOSThread()
	d := &wgpuDevice{
		mu:            &sync.Mutex{},
		instance:      wgpu.CreateInstance(nil),
		presentMode:   wgpu.PresentModeImmediate,
		bindGroups:    make(map[string]*wgpu.BindGroup),
		drawableToken: make(chan struct{}, 1),
		quit:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	for _, opt := range options {
		opt(d)
	}
	d.drawableToken <- struct{}{}
	d.surface = d.instance.CreateSurface(surfaceDescriptor)

	a, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: d.forceFallbackAdapter,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		panic(err)
	}
	d.adapter = a

	dev, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		panic(err)
	}
	d.device = dev
	d.queue = dev.GetQueue()

	d.ConfigureSurface(width, height)
	go d.poll()

	common.Logger().Info("gpu device ready",
		zap.String("surfaceFormat", d.SurfaceFormat().String()),
		zap.Int("width", width),
		zap.Int("height", height),
	)
	return d
}

// poll drives queue completion callbacks while submissions are outstanding.
func (d *wgpuDevice) poll() {
	defer close(d.done)
	ticker := time.NewTicker(completionPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-d.quit:
			return
		case <-ticker.C:
			if d.pending.Load() > 0 {
				d.device.Poll(false, nil)
			}
		}
	}
}

func (d *wgpuDevice) ConfigureSurface(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	capabilities := d.surface.GetCapabilities(d.adapter)
	d.surfaceFormat = capabilities.Formats[0]

	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      d.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: d.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if d.depthStencil != nil {
		d.depthStencil.release()
	}
	ds, err := d.createTexture(TextureDesc{
		Label:  "Drawable Depth Stencil",
		Width:  uint32(width),
		Height: uint32(height),
		Format: FormatDepth24PlusStencil8,
		Usage:  TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	d.depthStencil = ds
	d.width, d.height = uint32(width), uint32(height)
	d.dropBindGroups()
}

func (d *wgpuDevice) SurfaceFormat() TextureFormat {
	if f := fromWGPUFormat(d.surfaceFormat); f != FormatUndefined {
		return f
	}
	return FormatBGRA8Unorm
}

func (d *wgpuDevice) DepthStencilFormat() TextureFormat {
	return FormatDepth24PlusStencil8
}

func (d *wgpuDevice) CreateShaderModule(label, source string) (ShaderModule, error) {
	m, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create shader module %s: %w", label, err)
	}
	return &wgpuShaderModule{label: label, module: m}, nil
}

func (d *wgpuDevice) CreateBuffer(label string, size uint64, usage BufferUsage) (Buffer, error) {
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             size,
		Usage:            wgpuBufferUsage(usage),
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("create buffer %s: %w", label, err)
	}
	return &wgpuBuffer{label: label, size: size, buffer: buf}, nil
}

func (d *wgpuDevice) WriteBuffer(b Buffer, offset uint64, data []byte) {
	if len(data) == 0 {
		return
	}
	buf, ok := b.(*wgpuBuffer)
	if !ok {
		return
	}
	d.queue.WriteBuffer(buf.buffer, offset, data)
}

func (d *wgpuDevice) CreateTexture(desc TextureDesc) (Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.createTexture(desc)
}

func (d *wgpuDevice) createTexture(desc TextureDesc) (*wgpuTexture, error) {
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   cmp.Or(desc.SampleCount, 1),
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpuFormat(desc.Format),
		Usage:         wgpuTextureUsage(desc.Usage),
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %s: %w", desc.Label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("create view of texture %s: %w", desc.Label, err)
	}
	return &wgpuTexture{
		device:  d,
		label:   desc.Label,
		width:   desc.Width,
		height:  desc.Height,
		format:  desc.Format,
		texture: tex,
		view:    view,
	}, nil
}

func (d *wgpuDevice) WriteTexture(t Texture, data []byte, bytesPerRow uint32) {
	tex, ok := t.(*wgpuTexture)
	if !ok || len(data) == 0 {
		return
	}
	d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  bytesPerRow,
			RowsPerImage: tex.height,
		},
		&wgpu.Extent3D{
			Width:              tex.width,
			Height:             tex.height,
			DepthOrArrayLayers: 1,
		},
	)
}

func (d *wgpuDevice) CreateSampler(desc SamplerDesc) (Sampler, error) {
	mode := wgpuAddressMode(desc.AddressMode)
	filter := wgpuFilterMode(desc.Filter)
	mipFilter := wgpu.MipmapFilterModeLinear
	if desc.Filter == FilterNearest {
		mipFilter = wgpu.MipmapFilterModeNearest
	}
	var compare wgpu.CompareFunction
	if desc.Compare != CompareUndefined {
		compare = wgpuCompare(desc.Compare)
	}
	s, err := d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  mode,
		AddressModeV:  mode,
		AddressModeW:  mode,
		MagFilter:     filter,
		MinFilter:     filter,
		MipmapFilter:  mipFilter,
		LodMinClamp:   0.0,
		LodMaxClamp:   32.0,
		MaxAnisotropy: 1,
		Compare:       compare,
	})
	if err != nil {
		return nil, fmt.Errorf("create sampler %s: %w", desc.Label, err)
	}
	return &wgpuSampler{label: desc.Label, sampler: s}, nil
}

func (d *wgpuDevice) CreateRenderPipeline(desc RenderPipelineDesc) (RenderPipeline, error) {
	vs, ok := desc.VertexModule.(*wgpuShaderModule)
	if !ok {
		return nil, errors.New("render pipeline " + desc.Label + " has no vertex module")
	}

	var fragment *wgpu.FragmentState
	if desc.FragmentModule != nil {
		fs, ok := desc.FragmentModule.(*wgpuShaderModule)
		if !ok {
			return nil, errors.New("render pipeline " + desc.Label + " has a foreign fragment module")
		}
		fragment = &wgpu.FragmentState{
			Module:     fs.module,
			EntryPoint: desc.FragmentEntry,
			Targets:    wgpuColorTargets(desc.Targets),
		}
	}

	var depthStencil *wgpu.DepthStencilState
	if desc.DepthStencilFormat != FormatUndefined {
		state := DepthStencilState{DepthCompare: CompareAlways}
		if desc.DepthStencil != nil {
			state = *desc.DepthStencil
		}
		depthStencil = &wgpu.DepthStencilState{
			Format:              wgpuFormat(desc.DepthStencilFormat),
			DepthWriteEnabled:   state.DepthWrite,
			DepthCompare:        wgpuCompare(state.DepthCompare),
			StencilFront:        wgpuStencilFace(state.StencilFront),
			StencilBack:         wgpuStencilFace(state.StencilBack),
			StencilReadMask:     state.StencilReadMask,
			StencilWriteMask:    state.StencilWriteMask,
			DepthBias:           desc.DepthBias.Constant,
			DepthBiasSlopeScale: desc.DepthBias.SlopeScale,
			DepthBiasClamp:      desc.DepthBias.Clamp,
		}
	}

	created, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: desc.Label,
		Vertex: wgpu.VertexState{
			Module:     vs.module,
			EntryPoint: desc.VertexEntry,
			Buffers:    wgpuVertexLayouts(desc.VertexLayouts),
		},
		Fragment: fragment,
		Primitive: wgpu.PrimitiveState{
			Topology:         wgpuTopology(desc.Topology),
			StripIndexFormat: wgpuIndexFormat(desc.StripIndexFormat),
			FrontFace:        wgpuFrontFace(desc.FrontFace),
			CullMode:         wgpuCullMode(desc.CullMode),
		},
		Multisample: wgpu.MultisampleState{
			Count: cmp.Or(desc.SampleCount, 1),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencil,
	})
	if err != nil {
		return nil, fmt.Errorf("create render pipeline %s: %w", desc.Label, err)
	}
	return &wgpuRenderPipeline{label: desc.Label, pipeline: created}, nil
}

func (d *wgpuDevice) CreateComputePipeline(desc ComputePipelineDesc) (ComputePipeline, error) {
	m, ok := desc.Module.(*wgpuShaderModule)
	if !ok {
		return nil, errors.New("compute pipeline " + desc.Label + " has no module")
	}
	created, err := d.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: desc.Label,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     m.module,
			EntryPoint: desc.Entry,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create compute pipeline %s: %w", desc.Label, err)
	}
	return &wgpuComputePipeline{label: desc.Label, pipeline: created}, nil
}

func (d *wgpuDevice) NewCommandStream(label string) (CommandStream, error) {
	encoder, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("create command encoder %s: %w", label, err)
	}
	return &wgpuCommandStream{device: d, label: label, encoder: encoder}, nil
}

func (d *wgpuDevice) Commit(cs CommandStream, onComplete func()) error {
	stream, ok := cs.(*wgpuCommandStream)
	if !ok {
		return errors.New("commit: foreign command stream")
	}

	commandBuffer, err := stream.encoder.Finish(nil)
	if err != nil {
		stream.encoder.Release()
		if stream.drawable != nil {
			stream.drawable.Present()
		}
		return fmt.Errorf("finish command stream %s: %w", stream.label, err)
	}

	d.queue.Submit(commandBuffer)
	commandBuffer.Release()
	stream.encoder.Release()

	// Surface presentation is queued behind the submission above.
	if stream.drawable != nil {
		stream.drawable.Present()
	}

	if onComplete != nil {
		d.pending.Add(1)
		d.queue.OnSubmittedWorkDone(func(status wgpu.QueueWorkDoneStatus) {
			d.pending.Add(-1)
			if status != wgpu.QueueWorkDoneStatusSuccess {
				common.Logger().Warn("submitted work did not complete cleanly",
					zap.String("stream", stream.label),
					zap.Int("status", int(status)),
				)
			}
			onComplete()
		})
	}
	return nil
}

func (d *wgpuDevice) AcquireDrawable(ctx context.Context) (Drawable, error) {
	select {
	case <-d.drawableToken:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	surfaceTexture, err := d.surface.GetCurrentTexture()
	if err != nil {
		d.drawableToken <- struct{}{}
		return nil, fmt.Errorf("%w: %v", ErrSurfaceLost, err)
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		d.drawableToken <- struct{}{}
		return nil, fmt.Errorf("%w: %v", ErrSurfaceLost, err)
	}

	d.mu.Lock()
	ds := d.depthStencil
	width, height := d.width, d.height
	d.mu.Unlock()

	return &wgpuDrawable{
		device: d,
		color: &wgpuTexture{
			device:   d,
			label:    "Drawable",
			width:    width,
			height:   height,
			format:   d.SurfaceFormat(),
			texture:  surfaceTexture,
			view:     view,
			borrowed: true,
		},
		depthStencil: ds,
	}, nil
}

// bindGroup returns a cached bind group for the given layout owner, creating it on first use.
func (d *wgpuDevice) bindGroup(owner string, layoutOf func(uint32) *wgpu.BindGroupLayout, group uint32, bindings []Binding) (*wgpu.BindGroup, error) {
	key := fmt.Sprintf("%s/%d", owner, group)
	entries := make([]wgpu.BindGroupEntry, 0, len(bindings))
	for _, b := range bindings {
		entry := wgpu.BindGroupEntry{Binding: b.Slot}
		switch {
		case b.Buffer != nil:
			buf := b.Buffer.(*wgpuBuffer)
			entry.Buffer = buf.buffer
			entry.Offset = 0
			entry.Size = wgpu.WholeSize
			key += fmt.Sprintf("/%d:%p", b.Slot, buf)
		case b.Texture != nil:
			tex := b.Texture.(*wgpuTexture)
			entry.TextureView = tex.view
			key += fmt.Sprintf("/%d:%p", b.Slot, tex)
		case b.Sampler != nil:
			s := b.Sampler.(*wgpuSampler)
			entry.Sampler = s.sampler
			key += fmt.Sprintf("/%d:%p", b.Slot, s)
		}
		entries = append(entries, entry)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if bg, ok := d.bindGroups[key]; ok {
		return bg, nil
	}

	layout := layoutOf(group)
	defer layout.Release()

	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   key,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	d.bindGroups[key] = bg
	return bg, nil
}

// dropBindGroups releases every cached bind group. Called with d.mu held whenever a
// texture they might reference goes away.
func (d *wgpuDevice) dropBindGroups() {
	for k, bg := range d.bindGroups {
		bg.Release()
		delete(d.bindGroups, k)
	}
}

func (d *wgpuDevice) Release() {
	close(d.quit)
	<-d.done
	d.device.Poll(true, nil)

	d.mu.Lock()
	d.dropBindGroups()
	if d.depthStencil != nil {
		d.depthStencil.release()
		d.depthStencil = nil
	}
	d.mu.Unlock()

	d.queue.Release()
	d.device.Release()
	d.adapter.Release()
	d.surface.Release()
	d.instance.Release()
}

type wgpuShaderModule struct {
	label  string
	module *wgpu.ShaderModule
}

func (m *wgpuShaderModule) Label() string { return m.label }
func (m *wgpuShaderModule) Release()      { m.module.Release() }

type wgpuBuffer struct {
	label  string
	size   uint64
	buffer *wgpu.Buffer
}

func (b *wgpuBuffer) Label() string { return b.label }
func (b *wgpuBuffer) Size() uint64  { return b.size }
func (b *wgpuBuffer) Release()      { b.buffer.Release() }

type wgpuTexture struct {
	device   *wgpuDevice
	label    string
	width    uint32
	height   uint32
	format   TextureFormat
	texture  *wgpu.Texture
	view     *wgpu.TextureView
	borrowed bool
}

func (t *wgpuTexture) Label() string         { return t.label }
func (t *wgpuTexture) Width() uint32         { return t.width }
func (t *wgpuTexture) Height() uint32        { return t.height }
func (t *wgpuTexture) Format() TextureFormat { return t.format }

func (t *wgpuTexture) Release() {
	t.device.mu.Lock()
	t.device.dropBindGroups()
	t.device.mu.Unlock()
	t.release()
}

func (t *wgpuTexture) release() {
	t.view.Release()
	t.texture.Release()
}

type wgpuSampler struct {
	label   string
	sampler *wgpu.Sampler
}

func (s *wgpuSampler) Label() string { return s.label }
func (s *wgpuSampler) Release()      { s.sampler.Release() }

type wgpuRenderPipeline struct {
	label    string
	pipeline *wgpu.RenderPipeline
}

func (p *wgpuRenderPipeline) Label() string { return p.label }
func (p *wgpuRenderPipeline) Release()      { p.pipeline.Release() }

type wgpuComputePipeline struct {
	label    string
	pipeline *wgpu.ComputePipeline
}

func (p *wgpuComputePipeline) Label() string { return p.label }
func (p *wgpuComputePipeline) Release()      { p.pipeline.Release() }

type wgpuDrawable struct {
	device       *wgpuDevice
	color        *wgpuTexture
	depthStencil *wgpuTexture
	presented    atomic.Bool
}

func (d *wgpuDrawable) Texture() Texture      { return d.color }
func (d *wgpuDrawable) DepthStencil() Texture { return d.depthStencil }

// Present shows the surface texture and frees the drawable slot. Safe to call once
// from any goroutine; later calls do nothing.
func (d *wgpuDrawable) Present() {
	if !d.presented.CompareAndSwap(false, true) {
		return
	}
	d.device.surface.Present()
	d.color.release()
	d.device.drawableToken <- struct{}{}
}
