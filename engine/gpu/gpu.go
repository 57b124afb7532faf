// Package gpu is the narrow device interface the renderer core is written against.
// It exposes just enough of a modern explicit GPU API (buffers, textures, pipelines,
// command streams, drawables) for the deferred renderer, and keeps every
// backend-specific type out of the stages. The WebGPU implementation lives in
// wgpu_device.go; gpufake provides a recording device for tests.
package gpu

import (
	"context"
	"errors"
)

// ErrSurfaceLost is returned by AcquireDrawable when the presentation surface
// could not provide a texture for this frame.
var ErrSurfaceLost = errors.New("gpu: surface texture unavailable")

// Device is the main interface to the underlying GPU implementation.
// It creates resources and commits recorded command streams.
type Device interface {
	// CreateShaderModule compiles WGSL source into a shader module.
	CreateShaderModule(label, source string) (ShaderModule, error)

	// CreateBuffer allocates a GPU buffer of size bytes.
	CreateBuffer(label string, size uint64, usage BufferUsage) (Buffer, error)

	// WriteBuffer copies data into b at offset. The write is ordered before any
	// command stream committed after this call.
	WriteBuffer(b Buffer, offset uint64, data []byte)

	// CreateTexture allocates a 2D texture.
	CreateTexture(desc TextureDesc) (Texture, error)

	// WriteTexture uploads tightly packed pixel rows into mip level 0 of t.
	WriteTexture(t Texture, data []byte, bytesPerRow uint32)

	// CreateSampler creates a sampler.
	CreateSampler(desc SamplerDesc) (Sampler, error)

	// CreateRenderPipeline creates a render pipeline state.
	CreateRenderPipeline(desc RenderPipelineDesc) (RenderPipeline, error)

	// CreateComputePipeline creates a compute pipeline state.
	CreateComputePipeline(desc ComputePipelineDesc) (ComputePipeline, error)

	// NewCommandStream starts recording a new command stream.
	NewCommandStream(label string) (CommandStream, error)

	// Commit submits cs to the GPU queue. Streams execute in commit order.
	// onComplete, if non-nil, is called exactly once after the GPU has finished
	// executing cs. It may be called from another goroutine.
	Commit(cs CommandStream, onComplete func()) error

	// AcquireDrawable borrows the next presentable texture of the surface along
	// with the depth/stencil texture backing it. The drawable is valid until
	// Present is called on it.
	AcquireDrawable(ctx context.Context) (Drawable, error)

	// ConfigureSurface resizes the presentation surface and its depth/stencil texture.
	ConfigureSurface(width, height int)

	// SurfaceFormat is the color format of drawables.
	SurfaceFormat() TextureFormat

	// DepthStencilFormat is the format of the drawable's depth/stencil texture.
	DepthStencilFormat() TextureFormat

	// Release destroys the device and everything it still owns.
	Release()
}

// Releaser is implemented by every GPU resource handle. Handles are owned by a
// single component and must be released explicitly.
type Releaser interface {
	Release()
}

// ShaderModule is a compiled WGSL module.
type ShaderModule interface {
	Releaser
	Label() string
}

// Buffer is a linear GPU allocation.
type Buffer interface {
	Releaser
	Label() string
	Size() uint64
}

// Texture is a 2D GPU image with a default full view.
type Texture interface {
	Releaser
	Label() string
	Width() uint32
	Height() uint32
	Format() TextureFormat
}

// Sampler describes how textures are filtered when sampled.
type Sampler interface {
	Releaser
	Label() string
}

// RenderPipeline is an immutable render pipeline state, including its
// depth/stencil state and depth bias.
type RenderPipeline interface {
	Releaser
	Label() string
}

// ComputePipeline is an immutable compute pipeline state.
type ComputePipeline interface {
	Releaser
	Label() string
}

// Drawable is a presentable surface texture borrowed for one frame.
type Drawable interface {
	// Texture is the color target to compose into.
	Texture() Texture
	// DepthStencil is the depth/stencil texture sized to the drawable.
	DepthStencil() Texture
	// Present hands the texture back to the surface for display.
	// Prefer CommandStream.PresentDrawable, which orders presentation after the stream.
	Present()
}

// CommandStream records passes for one submission.
type CommandStream interface {
	Label() string
	BeginComputePass(label string) ComputePass
	BeginRenderPass(desc RenderPassDesc) RenderPass
	// PresentDrawable schedules d for presentation once the stream is committed.
	PresentDrawable(d Drawable)
}

// Binding attaches one resource to a binding slot inside a bind group.
// Exactly one of Buffer, Texture or Sampler is set.
type Binding struct {
	Slot    uint32
	Buffer  Buffer
	Texture Texture
	Sampler Sampler
}

// BufferBinding binds b at slot.
func BufferBinding(slot uint32, b Buffer) Binding { return Binding{Slot: slot, Buffer: b} }

// TextureBinding binds t at slot.
func TextureBinding(slot uint32, t Texture) Binding { return Binding{Slot: slot, Texture: t} }

// SamplerBinding binds s at slot.
func SamplerBinding(slot uint32, s Sampler) Binding { return Binding{Slot: slot, Sampler: s} }

// ComputePass records compute dispatches.
type ComputePass interface {
	SetPipeline(p ComputePipeline)
	SetBindings(group uint32, bindings ...Binding)
	// Dispatch launches x*y*z workgroups.
	Dispatch(x, y, z uint32)
	End()
}

// RenderPass records draws into the attachments of a RenderPassDesc.
type RenderPass interface {
	SetPipeline(p RenderPipeline)
	SetBindings(group uint32, bindings ...Binding)
	SetVertexBuffer(slot uint32, b Buffer)
	SetIndexBuffer(b Buffer, format IndexFormat)
	SetStencilReference(ref uint32)
	Draw(vertexCount, instanceCount uint32)
	DrawIndexed(indexCount, instanceCount uint32)
	PushDebugGroup(label string)
	PopDebugGroup()
	End()
}

// Color is an RGBA clear color.
type Color struct {
	R, G, B, A float64
}

// ColorAttachment is one color target of a render pass.
type ColorAttachment struct {
	Target Texture
	Load   LoadOp
	Store  StoreOp
	Clear  Color
}

// DepthStencilAttachment is the depth/stencil target of a render pass.
// Stencil operations are ignored for formats without a stencil aspect.
type DepthStencilAttachment struct {
	Target       Texture
	DepthLoad    LoadOp
	DepthStore   StoreOp
	DepthClear   float32
	StencilLoad  LoadOp
	StencilStore StoreOp
	StencilClear uint32
}

// RenderPassDesc describes the attachments of a render pass.
type RenderPassDesc struct {
	Label        string
	Colors       []ColorAttachment
	DepthStencil *DepthStencilAttachment
}

// TextureDesc describes a 2D texture allocation.
type TextureDesc struct {
	Label       string
	Width       uint32
	Height      uint32
	Format      TextureFormat
	Usage       TextureUsage
	SampleCount uint32
}

// SamplerDesc describes a sampler.
// A Compare function other than CompareUndefined makes it a comparison sampler.
type SamplerDesc struct {
	Label       string
	AddressMode AddressMode
	Filter      FilterMode
	Compare     CompareFunc
}

// StencilFace is the stencil test of one primitive facing.
type StencilFace struct {
	Compare     CompareFunc
	FailOp      StencilOp
	DepthFailOp StencilOp
	PassOp      StencilOp
}

// DepthStencilState configures depth testing and stencil testing for a render pipeline.
type DepthStencilState struct {
	Label            string
	DepthWrite       bool
	DepthCompare     CompareFunc
	StencilFront     StencilFace
	StencilBack      StencilFace
	StencilReadMask  uint32
	StencilWriteMask uint32
}

// DepthBias offsets rasterized depth: Constant units plus SlopeScale times the
// polygon slope, clamped to Clamp.
type DepthBias struct {
	Constant   int32
	SlopeScale float32
	Clamp      float32
}

// BlendComponent is one half (color or alpha) of a blend equation.
type BlendComponent struct {
	Src BlendFactor
	Dst BlendFactor
	Op  BlendOp
}

// BlendState is the blend equation of a color target.
type BlendState struct {
	Color BlendComponent
	Alpha BlendComponent
}

// ColorTarget is the output format and blending of one fragment output.
type ColorTarget struct {
	Format    TextureFormat
	Blend     *BlendState
	WriteMask ColorWriteMask
}

// VertexAttribute is one vertex shader input.
type VertexAttribute struct {
	Format   VertexFormat
	Offset   uint64
	Location uint32
}

// VertexLayout describes one vertex buffer slot.
type VertexLayout struct {
	Stride     uint64
	StepMode   StepMode
	Attributes []VertexAttribute
}

// RenderPipelineDesc is everything needed to create a RenderPipeline.
// A nil FragmentModule creates a depth-only pipeline.
type RenderPipelineDesc struct {
	Label          string
	VertexModule   ShaderModule
	VertexEntry    string
	FragmentModule ShaderModule
	FragmentEntry  string
	VertexLayouts  []VertexLayout
	Targets        []ColorTarget
	Topology       Topology
	// StripIndexFormat must match the index buffer for indexed strip draws.
	StripIndexFormat   IndexFormat
	CullMode           CullMode
	FrontFace          FrontFace
	DepthStencilFormat TextureFormat
	DepthStencil       *DepthStencilState
	DepthBias          DepthBias
	SampleCount        uint32
}

// ComputePipelineDesc is everything needed to create a ComputePipeline.
type ComputePipelineDesc struct {
	Label  string
	Module ShaderModule
	Entry  string
}
