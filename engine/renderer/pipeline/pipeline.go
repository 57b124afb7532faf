package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/shader"
)

// PipelineType identifies whether a pipeline is a compute pipeline or a render pipeline.
type PipelineType int

const (
	// PipelineTypeCompute indicates a compute pipeline with a single compute shader entry point.
	PipelineTypeCompute PipelineType = iota

	// PipelineTypeRender indicates a render pipeline with vertex and optional fragment entry points.
	PipelineTypeRender
)

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	// pipelineType indicates the type of pipeline this is; compute or render
	pipelineType PipelineType
	// pipelineKey is the unique identifier for this pipeline, used as the GPU label
	pipelineKey string

	vertexFunction, fragmentFunction, computeFunction string

	renderPipeline  gpu.RenderPipeline
	computePipeline gpu.ComputePipeline
	workgroupSize   [3]uint32

	// The following properties configure render pipelines and are set with the builder options.

	vertexLayouts      []gpu.VertexLayout
	targets            []gpu.ColorTarget
	depthStencilFormat gpu.TextureFormat
	depthStencil       *gpu.DepthStencilState
	depthBias          gpu.DepthBias
	cullMode           gpu.CullMode
	topology           gpu.Topology
	stripIndexFormat   gpu.IndexFormat
	frontFace          gpu.FrontFace
}

// Pipeline is a compiled GPU pipeline, either a render pipeline (vertex plus optional
// fragment function) or a compute pipeline (one compute function).
type Pipeline interface {
	// Type returns the type of the pipeline
	//
	// Returns:
	//   - PipelineType: the type of the pipeline (render or compute)
	Type() PipelineType

	// PipelineKey returns the unique key of the pipeline.
	PipelineKey() string

	// Render returns the render pipeline state, or nil for compute pipelines.
	Render() gpu.RenderPipeline

	// Compute returns the compute pipeline state, or nil for render pipelines.
	Compute() gpu.ComputePipeline

	// WorkgroupSize returns the compute function's workgroup size; [1, 1, 1] for render pipelines.
	WorkgroupSize() [3]uint32

	// Release releases the GPU pipeline state.
	Release()
}

var _ Pipeline = &pipeline{}

// NewRenderPipeline resolves the named functions in lib and creates a render pipeline.
// An empty fragmentFunction creates a depth-only pipeline.
//
// Parameters:
//   - device: the device that creates the pipeline state
//   - lib: the shader library holding the functions
//   - pipelineKey: the unique key for this pipeline
//   - vertexFunction: the @vertex entry point
//   - fragmentFunction: the @fragment entry point, or "" for none
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: the created pipeline
//   - error: shader.ErrEntryPointNotFound if a function is missing, or the device error
func NewRenderPipeline(device gpu.Device, lib shader.Library, pipelineKey, vertexFunction, fragmentFunction string, opts ...PipelineBuilderOption) (Pipeline, error) {
	p := &pipeline{
		pipelineKey:      pipelineKey,
		pipelineType:     PipelineTypeRender,
		vertexFunction:   vertexFunction,
		fragmentFunction: fragmentFunction,
		workgroupSize:    [3]uint32{1, 1, 1},
		cullMode:         gpu.CullNone,
		topology:         gpu.TopologyTriangleList,
		frontFace:        gpu.FrontFaceCCW,
	}
	for _, opt := range opts {
		opt(p)
	}

	vs, err := lib.StageFunction(vertexFunction, shader.StageVertex)
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", pipelineKey, err)
	}

	desc := gpu.RenderPipelineDesc{
		Label:              pipelineKey,
		VertexModule:       vs.Module,
		VertexEntry:        vs.Name,
		VertexLayouts:      p.vertexLayouts,
		Topology:           p.topology,
		StripIndexFormat:   p.stripIndexFormat,
		CullMode:           p.cullMode,
		FrontFace:          p.frontFace,
		DepthStencilFormat: p.depthStencilFormat,
		DepthStencil:       p.depthStencil,
		DepthBias:          p.depthBias,
		SampleCount:        1,
	}
	if fragmentFunction != "" {
		fs, err := lib.StageFunction(fragmentFunction, shader.StageFragment)
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: %w", pipelineKey, err)
		}
		desc.FragmentModule = fs.Module
		desc.FragmentEntry = fs.Name
		desc.Targets = p.targets
	} else if len(p.targets) > 0 {
		return nil, errors.New("pipeline " + pipelineKey + ": color targets need a fragment function")
	}

	p.renderPipeline, err = device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", pipelineKey, err)
	}
	return p, nil
}

// NewComputePipeline resolves the named function in lib and creates a compute pipeline.
//
// Parameters:
//   - device: the device that creates the pipeline state
//   - lib: the shader library holding the function
//   - pipelineKey: the unique key for this pipeline
//   - computeFunction: the @compute entry point
//
// Returns:
//   - Pipeline: the created pipeline
//   - error: shader.ErrEntryPointNotFound if the function is missing, or the device error
func NewComputePipeline(device gpu.Device, lib shader.Library, pipelineKey, computeFunction string) (Pipeline, error) {
	fn, err := lib.StageFunction(computeFunction, shader.StageCompute)
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", pipelineKey, err)
	}
	cp, err := device.CreateComputePipeline(gpu.ComputePipelineDesc{
		Label:  pipelineKey,
		Module: fn.Module,
		Entry:  fn.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", pipelineKey, err)
	}
	return &pipeline{
		pipelineKey:     pipelineKey,
		pipelineType:    PipelineTypeCompute,
		computeFunction: computeFunction,
		computePipeline: cp,
		workgroupSize:   fn.WorkgroupSize,
	}, nil
}

func (p *pipeline) Type() PipelineType {
	return p.pipelineType
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Render() gpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) Compute() gpu.ComputePipeline {
	return p.computePipeline
}

func (p *pipeline) WorkgroupSize() [3]uint32 {
	return p.workgroupSize
}

func (p *pipeline) Release() {
	switch p.pipelineType {
	case PipelineTypeRender:
		if p.renderPipeline != nil {
			p.renderPipeline.Release()
			p.renderPipeline = nil
		}
	case PipelineTypeCompute:
		if p.computePipeline != nil {
			p.computePipeline.Release()
			p.computePipeline = nil
		}
	}
}

// WorkgroupCount returns how many workgroups of size group cover n invocations.
func WorkgroupCount(n, group uint32) uint32 {
	if group == 0 {
		group = 1
	}
	return (n + group - 1) / group
}
