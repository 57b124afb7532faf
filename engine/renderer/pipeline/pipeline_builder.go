package pipeline

import "github.com/Carmen-Shannon/oxy-deferred/engine/gpu"

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithVertexLayouts sets the vertex buffer layouts, one per buffer slot.
//
// Parameters:
//   - layouts: the layouts in slot order
//
// Returns:
//   - PipelineBuilderOption: a function that sets the vertex layouts for this pipeline
func WithVertexLayouts(layouts ...gpu.VertexLayout) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexLayouts = layouts
	}
}

// WithColorTargets sets the fragment outputs, one per color attachment.
//
// Parameters:
//   - targets: the color targets in attachment order
//
// Returns:
//   - PipelineBuilderOption: a function that sets the color targets for this pipeline
func WithColorTargets(targets ...gpu.ColorTarget) PipelineBuilderOption {
	return func(p *pipeline) {
		p.targets = targets
	}
}

// WithDepthStencil sets the depth/stencil attachment format and the depth/stencil state.
//
// Parameters:
//   - format: the format of the depth/stencil attachment the pipeline renders into
//   - state: the depth and stencil tests, usually one of the presets in this package
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth/stencil state for this pipeline
func WithDepthStencil(format gpu.TextureFormat, state gpu.DepthStencilState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthStencilFormat = format
		p.depthStencil = &state
	}
}

// WithDepthBias sets the depth bias applied to rasterized depth.
//
// Parameters:
//   - bias: the constant, slope-scaled and clamp parts of the bias
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth bias for this pipeline
func WithDepthBias(bias gpu.DepthBias) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthBias = bias
	}
}

// WithCullMode sets the cull mode for this pipeline.
func WithCullMode(mode gpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithTopology sets the primitive topology for this pipeline.
func WithTopology(topology gpu.Topology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithStripIndexFormat sets the index format used by indexed strip draws.
func WithStripIndexFormat(format gpu.IndexFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.stripIndexFormat = format
	}
}

// WithFrontFace sets the winding considered front facing.
func WithFrontFace(frontFace gpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = frontFace
	}
}
