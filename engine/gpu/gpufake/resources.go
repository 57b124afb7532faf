package gpufake

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
)

type resource struct {
	device   *Device
	label    string
	released bool
}

func (r *resource) Label() string { return r.label }

// Released reports whether Release has been called.
func (r *resource) Released() bool { return r.released }

func (r *resource) Release() {
	if r.released {
		return
	}
	r.released = true
	r.device.releasedResource(r.label)
}

// ShaderModule is a fake shader module.
type ShaderModule struct {
	resource
	Source string
}

// Buffer is a fake buffer backed by host memory.
type Buffer struct {
	resource
	Usage gpu.BufferUsage

	mu     sync.Mutex
	data   []byte
	writes int
}

func (b *Buffer) Size() uint64 { return uint64(len(b.data)) }

// Bytes returns a copy of the buffer contents.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.data...)
}

// Writes is the number of WriteBuffer calls made against b.
func (b *Buffer) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}

// Texture is a fake texture.
type Texture struct {
	resource
	Desc gpu.TextureDesc

	mu          sync.Mutex
	Pixels      []byte
	BytesPerRow uint32
}

func (t *Texture) Width() uint32             { return t.Desc.Width }
func (t *Texture) Height() uint32            { return t.Desc.Height }
func (t *Texture) Format() gpu.TextureFormat { return t.Desc.Format }

// Sampler is a fake sampler.
type Sampler struct {
	resource
	Desc gpu.SamplerDesc
}

// RenderPipeline is a fake render pipeline.
type RenderPipeline struct {
	resource
	Desc gpu.RenderPipelineDesc
}

// ComputePipeline is a fake compute pipeline.
type ComputePipeline struct {
	resource
	Desc gpu.ComputePipelineDesc
}

// Drawable is a fake surface texture.
type Drawable struct {
	device       *Device
	color        *Texture
	depthStencil *Texture
	presented    bool
}

func (d *Drawable) Texture() gpu.Texture      { return d.color }
func (d *Drawable) DepthStencil() gpu.Texture { return d.depthStencil }

func (d *Drawable) Present() {
	if d.presented {
		return
	}
	d.presented = true
	d.device.record("present")
	d.device.mu.Lock()
	d.device.presents++
	d.device.mu.Unlock()
}
