package stage

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/resource"
)

// Lighting resolves the G-buffer into the drawable and composites the overlays.
type Lighting interface {
	// Encode records the composition pass into target. The G-buffer depth/stencil
	// is loaded, never cleared, so the stencil tags written by the G-buffer stage
	// gate the directional light and the light volumes.
	//
	// Sequence: directional light, light mask, point lights, skybox, points.
	//
	// Parameters:
	//   - cs: the stream to record into
	//   - f: the frame input
	//   - target: the drawable color texture
	Encode(cs gpu.CommandStream, f Frame, target gpu.Texture)
}

type lightingStage struct {
	res *resource.Resources
}

var _ Lighting = &lightingStage{}

// NewLighting creates the lighting and composition stage.
func NewLighting(res *resource.Resources) Lighting {
	return &lightingStage{res: res}
}

func (l *lightingStage) Encode(cs gpu.CommandStream, f Frame, target gpu.Texture) {
	r := l.res
	lights := uint32(r.LightCount)
	rp := cs.BeginRenderPass(gpu.RenderPassDesc{
		Label:  "Composition",
		Colors: []gpu.ColorAttachment{{Target: target, Load: gpu.LoadClear, Store: gpu.StoreStore}},
		DepthStencil: &gpu.DepthStencilAttachment{
			Target:       r.GBuffer.DepthStencil,
			DepthLoad:    gpu.LoadLoad,
			DepthStore:   gpu.StoreStore,
			StencilLoad:  gpu.LoadLoad,
			StencilStore: gpu.StoreStore,
		},
	})
	rp.SetStencilReference(pipeline.StencilReference)

	uniforms := gpu.BufferBinding(SlotFrameUniforms, f.Slot.FrameUniforms)
	albedo := gpu.TextureBinding(SlotAlbedoGBuffer, r.GBuffer.Albedo)
	normal := gpu.TextureBinding(SlotNormalGBuffer, r.GBuffer.Normal)
	depth := gpu.TextureBinding(SlotDepthGBuffer, r.GBuffer.Depth)
	lightData := gpu.BufferBinding(SlotLightData, r.LightData)
	positions := gpu.BufferBinding(SlotLightPosition, f.Slot.LightPositions)
	sampler := gpu.SamplerBinding(SlotLinearSampler, r.LinearSampler)

	rp.PushDebugGroup("Draw Directional Light")
	rp.SetPipeline(r.Pipelines.DirectionalLight.Render())
	rp.SetBindings(BindGroup, uniforms, albedo, normal, depth)
	drawMesh(rp, r.Meshes.Quad, 1)
	rp.PopDebugGroup()

	rp.PushDebugGroup("Draw Light Mask")
	rp.SetPipeline(r.Pipelines.LightMask.Render())
	rp.SetBindings(BindGroup, uniforms, lightData, positions)
	drawMesh(rp, r.Meshes.Icosahedron, lights)
	rp.PopDebugGroup()

	rp.PushDebugGroup("Draw Point Lights")
	rp.SetPipeline(r.Pipelines.PointLight.Render())
	rp.SetBindings(BindGroup, uniforms, albedo, normal, depth, lightData, positions)
	drawMesh(rp, r.Meshes.Icosahedron, lights)
	rp.PopDebugGroup()

	rp.PushDebugGroup("Draw Sky")
	rp.SetPipeline(r.Pipelines.Skybox.Render())
	rp.SetBindings(BindGroup, uniforms, gpu.TextureBinding(SlotSkyMap, r.SkyMap()), sampler)
	drawMesh(rp, r.Meshes.Sky, 1)
	rp.PopDebugGroup()

	rp.PushDebugGroup("Draw Points")
	rp.SetPipeline(r.Pipelines.Points.Render())
	rp.SetBindings(BindGroup, uniforms, lightData, positions,
		gpu.TextureBinding(SlotPointMap, r.Textures[resource.PointMap]), sampler)
	drawMesh(rp, r.Meshes.PointDisc, lights)
	rp.PopDebugGroup()
	rp.End()
}
