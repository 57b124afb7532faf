package stage

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/resource"
)

// Shadow renders the instanced geometry into the shadow map from the sun's view.
type Shadow interface {
	// Encode records a depth-only pass that clears the shadow map to 1 and draws
	// f.Instances spheres with the shadow pipeline for f.Primitive.
	Encode(cs gpu.CommandStream, f Frame)
}

type shadowStage struct {
	res *resource.Resources
}

var _ Shadow = &shadowStage{}

// NewShadow creates the shadow stage.
func NewShadow(res *resource.Resources) Shadow {
	return &shadowStage{res: res}
}

func (s *shadowStage) Encode(cs gpu.CommandStream, f Frame) {
	rp := cs.BeginRenderPass(gpu.RenderPassDesc{
		Label: "Shadow",
		DepthStencil: &gpu.DepthStencilAttachment{
			Target:     s.res.ShadowMap,
			DepthLoad:  gpu.LoadClear,
			DepthStore: gpu.StoreStore,
			DepthClear: 1,
		},
	})
	rp.PushDebugGroup("Draw Shadows")
	rp.SetPipeline(forPrimitive(s.res.Pipelines.Shadow, f.Primitive).Render())
	rp.SetBindings(BindGroup,
		gpu.BufferBinding(SlotFrameUniforms, f.Slot.FrameUniforms),
		gpu.BufferBinding(SlotInstances, f.Slot.Instances),
	)
	drawMesh(rp, s.res.Meshes.Sphere, f.Instances)
	rp.PopDebugGroup()
	rp.End()
}
