package stage

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/resource"
)

// GBuffer renders the scene geometry into the G-buffer set and tags every
// covered pixel with pipeline.StencilReference.
type GBuffer interface {
	// Encode records a pass that clears the G-buffer set, draws f.Instances
	// spheres and then the ground plane.
	Encode(cs gpu.CommandStream, f Frame)
}

type gbufferStage struct {
	res *resource.Resources
}

var _ GBuffer = &gbufferStage{}

// NewGBuffer creates the G-buffer stage.
func NewGBuffer(res *resource.Resources) GBuffer {
	return &gbufferStage{res: res}
}

func (g *gbufferStage) Encode(cs gpu.CommandStream, f Frame) {
	gb := g.res.GBuffer
	color := func(t gpu.Texture) gpu.ColorAttachment {
		return gpu.ColorAttachment{Target: t, Load: gpu.LoadClear, Store: gpu.StoreStore}
	}
	rp := cs.BeginRenderPass(gpu.RenderPassDesc{
		Label:  "GBuffer",
		Colors: []gpu.ColorAttachment{color(gb.Albedo), color(gb.Normal), color(gb.Depth)},
		DepthStencil: &gpu.DepthStencilAttachment{
			Target:       gb.DepthStencil,
			DepthLoad:    gpu.LoadClear,
			DepthStore:   gpu.StoreStore,
			DepthClear:   1,
			StencilLoad:  gpu.LoadClear,
			StencilStore: gpu.StoreStore,
		},
	})
	rp.SetStencilReference(pipeline.StencilReference)

	uniforms := gpu.BufferBinding(SlotFrameUniforms, f.Slot.FrameUniforms)
	field := gpu.TextureBinding(SlotFieldTexture, g.res.Field)
	shadowMap := gpu.TextureBinding(SlotShadowMap, g.res.ShadowMap)
	shadowSampler := gpu.SamplerBinding(SlotShadowSampler, g.res.ShadowSampler)

	rp.PushDebugGroup("Draw G-Buffer")
	rp.SetPipeline(forPrimitive(g.res.Pipelines.GBuffer, f.Primitive).Render())
	rp.SetBindings(BindGroup,
		uniforms,
		gpu.BufferBinding(SlotInstances, f.Slot.Instances),
		gpu.TextureBinding(SlotBaseColorMap, g.res.Textures[resource.BaseColorMap]),
		gpu.TextureBinding(SlotNormalMap, g.res.Textures[resource.NormalMap]),
		gpu.TextureBinding(SlotMetallicMap, g.res.Textures[resource.MetallicMap]),
		gpu.TextureBinding(SlotRoughnessMap, g.res.Textures[resource.RoughnessMap]),
		gpu.TextureBinding(SlotAOMap, g.res.Textures[resource.AOMap]),
		gpu.SamplerBinding(SlotLinearSampler, g.res.LinearSampler),
		field,
		shadowMap,
		shadowSampler,
	)
	drawMesh(rp, g.res.Meshes.Sphere, f.Instances)
	rp.PopDebugGroup()

	rp.PushDebugGroup("Draw Ground Plane to GBuffer")
	rp.SetPipeline(g.res.Pipelines.Ground.Render())
	rp.SetBindings(BindGroup, uniforms, field, shadowMap, shadowSampler)
	drawMesh(rp, g.res.Meshes.Ground, 1)
	rp.PopDebugGroup()
	rp.End()
}
