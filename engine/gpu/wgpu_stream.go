package gpu

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

type wgpuCommandStream struct {
	device   *wgpuDevice
	label    string
	encoder  *wgpu.CommandEncoder
	drawable Drawable
}

func (s *wgpuCommandStream) Label() string { return s.label }

func (s *wgpuCommandStream) PresentDrawable(d Drawable) { s.drawable = d }

func (s *wgpuCommandStream) BeginComputePass(label string) ComputePass {
	pass := s.encoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: label})
	return &wgpuComputePass{device: s.device, label: label, pass: pass}
}

func (s *wgpuCommandStream) BeginRenderPass(desc RenderPassDesc) RenderPass {
	colors := make([]wgpu.RenderPassColorAttachment, 0, len(desc.Colors))
	for _, c := range desc.Colors {
		colors = append(colors, wgpu.RenderPassColorAttachment{
			View:    c.Target.(*wgpuTexture).view,
			LoadOp:  wgpuLoadOp(c.Load),
			StoreOp: wgpuStoreOp(c.Store),
			ClearValue: wgpu.Color{
				R: c.Clear.R, G: c.Clear.G, B: c.Clear.B, A: c.Clear.A,
			},
		})
	}

	var depth *wgpu.RenderPassDepthStencilAttachment
	if ds := desc.DepthStencil; ds != nil {
		tex := ds.Target.(*wgpuTexture)
		depth = &wgpu.RenderPassDepthStencilAttachment{
			View:            tex.view,
			DepthLoadOp:     wgpuLoadOp(ds.DepthLoad),
			DepthStoreOp:    wgpuStoreOp(ds.DepthStore),
			DepthClearValue: ds.DepthClear,
		}
		if tex.format.HasStencil() {
			depth.StencilLoadOp = wgpuLoadOp(ds.StencilLoad)
			depth.StencilStoreOp = wgpuStoreOp(ds.StencilStore)
			depth.StencilClearValue = ds.StencilClear
		}
	}

	pass := s.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label:                  desc.Label,
		ColorAttachments:       colors,
		DepthStencilAttachment: depth,
	})
	return &wgpuRenderPass{device: s.device, label: desc.Label, pass: pass}
}

type wgpuComputePass struct {
	device   *wgpuDevice
	label    string
	pass     *wgpu.ComputePassEncoder
	pipeline *wgpuComputePipeline
}

func (p *wgpuComputePass) SetPipeline(cp ComputePipeline) {
	p.pipeline = cp.(*wgpuComputePipeline)
	p.pass.SetPipeline(p.pipeline.pipeline)
}

func (p *wgpuComputePass) SetBindings(group uint32, bindings ...Binding) {
	if p.pipeline == nil {
		return
	}
	owner := fmt.Sprintf("%p", p.pipeline)
	bg, err := p.device.bindGroup(owner, p.pipeline.pipeline.GetBindGroupLayout, group, bindings)
	if err != nil {
		common.Logger().Error("bind group creation failed",
			zap.String("pass", p.label),
			zap.String("pipeline", p.pipeline.label),
			zap.Uint32("group", group),
			zap.Error(err),
		)
		return
	}
	p.pass.SetBindGroup(group, bg, nil)
}

func (p *wgpuComputePass) Dispatch(x, y, z uint32) {
	p.pass.DispatchWorkgroups(x, y, z)
}

func (p *wgpuComputePass) End() {
	p.pass.End()
	p.pass.Release()
}

type wgpuRenderPass struct {
	device   *wgpuDevice
	label    string
	pass     *wgpu.RenderPassEncoder
	pipeline *wgpuRenderPipeline
}

func (p *wgpuRenderPass) SetPipeline(rp RenderPipeline) {
	p.pipeline = rp.(*wgpuRenderPipeline)
	p.pass.SetPipeline(p.pipeline.pipeline)
}

func (p *wgpuRenderPass) SetBindings(group uint32, bindings ...Binding) {
	if p.pipeline == nil {
		return
	}
	owner := fmt.Sprintf("%p", p.pipeline)
	bg, err := p.device.bindGroup(owner, p.pipeline.pipeline.GetBindGroupLayout, group, bindings)
	if err != nil {
		common.Logger().Error("bind group creation failed",
			zap.String("pass", p.label),
			zap.String("pipeline", p.pipeline.label),
			zap.Uint32("group", group),
			zap.Error(err),
		)
		return
	}
	p.pass.SetBindGroup(group, bg, nil)
}

func (p *wgpuRenderPass) SetVertexBuffer(slot uint32, b Buffer) {
	p.pass.SetVertexBuffer(slot, b.(*wgpuBuffer).buffer, 0, wgpu.WholeSize)
}

func (p *wgpuRenderPass) SetIndexBuffer(b Buffer, format IndexFormat) {
	p.pass.SetIndexBuffer(b.(*wgpuBuffer).buffer, wgpuIndexFormat(format), 0, wgpu.WholeSize)
}

func (p *wgpuRenderPass) SetStencilReference(ref uint32) {
	p.pass.SetStencilReference(ref)
}

func (p *wgpuRenderPass) Draw(vertexCount, instanceCount uint32) {
	p.pass.Draw(vertexCount, instanceCount, 0, 0)
}

func (p *wgpuRenderPass) DrawIndexed(indexCount, instanceCount uint32) {
	p.pass.DrawIndexed(indexCount, instanceCount, 0, 0, 0)
}

func (p *wgpuRenderPass) PushDebugGroup(label string) { p.pass.PushDebugGroup(label) }
func (p *wgpuRenderPass) PopDebugGroup()              { p.pass.PopDebugGroup() }

func (p *wgpuRenderPass) End() {
	p.pass.End()
	p.pass.Release()
}
