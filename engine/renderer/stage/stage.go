// Package stage records the per-frame GPU work of the deferred renderer: the
// slime-mold simulation, the shadow pass, the G-buffer pass and the lighting and
// composition pass. Stages only record into a command stream; committing and
// presenting is the orchestrator's job.
package stage

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/frame"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-deferred/engine/settings"
)

// Frame is the per-frame input shared by the render stages.
type Frame struct {
	// Slot holds the buffers written for this frame.
	Slot *frame.Slot
	// Instances is the number of instances to draw.
	Instances uint32
	// Primitive selects the shadow and G-buffer pipelines for the instanced draw.
	Primitive gpu.Topology
}

// drawMesh binds m at vertex slot 0 and draws it instances times.
func drawMesh(rp gpu.RenderPass, m resource.MeshBuffers, instances uint32) {
	rp.SetVertexBuffer(SlotVertices, m.Vertices)
	if m.Indices != nil {
		rp.SetIndexBuffer(m.Indices, m.Mesh.IndexFormat())
		rp.DrawIndexed(m.Mesh.IndexCount(), instances)
		return
	}
	rp.Draw(m.Mesh.VertexCount(), instances)
}

// forPrimitive picks the pipeline built for t, or the default primitive's.
func forPrimitive(m map[gpu.Topology]pipeline.Pipeline, t gpu.Topology) pipeline.Pipeline {
	if p, ok := m[t]; ok {
		return p
	}
	return m[settings.DefaultPrimitive]
}
