package gpufake

import (
	"strings"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
)

// CommandStream records passes into the owning Device's log.
type CommandStream struct {
	device    *Device
	label     string
	drawable  gpu.Drawable
	committed bool
}

func (s *CommandStream) Label() string { return s.label }

func (s *CommandStream) PresentDrawable(d gpu.Drawable) { s.drawable = d }

func (s *CommandStream) BeginComputePass(label string) gpu.ComputePass {
	s.device.record("compute-pass %s", label)
	return &ComputePass{device: s.device, label: label}
}

func (s *CommandStream) BeginRenderPass(desc gpu.RenderPassDesc) gpu.RenderPass {
	s.device.record("render-pass %s", desc.Label)
	s.device.mu.Lock()
	s.device.passes = append(s.device.passes, desc)
	s.device.mu.Unlock()
	return &RenderPass{device: s.device, label: desc.Label}
}

func bindingLabels(bindings []gpu.Binding) string {
	labels := make([]string, 0, len(bindings))
	for _, b := range bindings {
		switch {
		case b.Buffer != nil:
			labels = append(labels, b.Buffer.Label())
		case b.Texture != nil:
			labels = append(labels, b.Texture.Label())
		case b.Sampler != nil:
			labels = append(labels, b.Sampler.Label())
		default:
			labels = append(labels, "<nil>")
		}
	}
	return strings.Join(labels, ",")
}

// ComputePass is a recording compute pass.
type ComputePass struct {
	device *Device
	label  string
}

func (p *ComputePass) SetPipeline(cp gpu.ComputePipeline) {
	p.device.record("pipeline %s", cp.Label())
}

func (p *ComputePass) SetBindings(group uint32, bindings ...gpu.Binding) {
	p.device.record("bind %d %s", group, bindingLabels(bindings))
}

func (p *ComputePass) Dispatch(x, y, z uint32) {
	p.device.record("dispatch %d %d %d", x, y, z)
}

func (p *ComputePass) End() {
	p.device.record("end %s", p.label)
}

// RenderPass is a recording render pass.
type RenderPass struct {
	device *Device
	label  string
}

func (p *RenderPass) SetPipeline(rp gpu.RenderPipeline) {
	p.device.record("pipeline %s", rp.Label())
}

func (p *RenderPass) SetBindings(group uint32, bindings ...gpu.Binding) {
	p.device.record("bind %d %s", group, bindingLabels(bindings))
}

func (p *RenderPass) SetVertexBuffer(slot uint32, b gpu.Buffer) {
	p.device.record("vertex %d %s", slot, b.Label())
}

func (p *RenderPass) SetIndexBuffer(b gpu.Buffer, format gpu.IndexFormat) {
	p.device.record("index %s", b.Label())
}

func (p *RenderPass) SetStencilReference(ref uint32) {
	p.device.record("stencil-ref %d", ref)
}

func (p *RenderPass) Draw(vertexCount, instanceCount uint32) {
	p.device.record("draw %d %d", vertexCount, instanceCount)
}

func (p *RenderPass) DrawIndexed(indexCount, instanceCount uint32) {
	p.device.record("draw-indexed %d %d", indexCount, instanceCount)
}

func (p *RenderPass) PushDebugGroup(label string) { p.device.record("push %s", label) }
func (p *RenderPass) PopDebugGroup()              { p.device.record("pop") }

func (p *RenderPass) End() {
	p.device.record("end %s", p.label)
}
