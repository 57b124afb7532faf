package gpu

// TextureFormat is the pixel format of a texture.
type TextureFormat int

// Texture formats used by the renderer.
const (
	FormatUndefined TextureFormat = iota
	FormatBGRA8Unorm
	FormatBGRA8UnormSrgb
	FormatRGBA8Unorm
	FormatRGBA8UnormSrgb
	FormatRGBA8Snorm
	FormatR32Float
	FormatRGBA16Float
	FormatDepth16Unorm
	FormatDepth32Float
	FormatDepth24PlusStencil8
	FormatDepth32FloatStencil8
)

var formatNames = map[TextureFormat]string{
	FormatUndefined:            "undefined",
	FormatBGRA8Unorm:           "bgra8unorm",
	FormatBGRA8UnormSrgb:       "bgra8unorm-srgb",
	FormatRGBA8Unorm:           "rgba8unorm",
	FormatRGBA8UnormSrgb:       "rgba8unorm-srgb",
	FormatRGBA8Snorm:           "rgba8snorm",
	FormatR32Float:             "r32float",
	FormatRGBA16Float:          "rgba16float",
	FormatDepth16Unorm:         "depth16unorm",
	FormatDepth32Float:         "depth32float",
	FormatDepth24PlusStencil8:  "depth24plus-stencil8",
	FormatDepth32FloatStencil8: "depth32float-stencil8",
}

func (f TextureFormat) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return "unknown"
}

// IsDepth reports whether f has a depth aspect.
func (f TextureFormat) IsDepth() bool {
	switch f {
	case FormatDepth16Unorm, FormatDepth32Float, FormatDepth24PlusStencil8, FormatDepth32FloatStencil8:
		return true
	}
	return false
}

// HasStencil reports whether f has a stencil aspect.
func (f TextureFormat) HasStencil() bool {
	return f == FormatDepth24PlusStencil8 || f == FormatDepth32FloatStencil8
}

// TextureUsage is a bit set of the ways a texture may be used.
type TextureUsage uint32

// Texture usages.
const (
	TextureUsageCopySrc TextureUsage = 1 << iota
	TextureUsageCopyDst
	TextureUsageTextureBinding
	TextureUsageStorageBinding
	TextureUsageRenderAttachment
)

// BufferUsage is a bit set of the ways a buffer may be used.
type BufferUsage uint32

// Buffer usages.
const (
	BufferUsageCopyDst BufferUsage = 1 << iota
	BufferUsageVertex
	BufferUsageIndex
	BufferUsageUniform
	BufferUsageStorage
)

// CompareFunc is a depth, stencil or sampler comparison function.
type CompareFunc int

// Comparison functions.
const (
	CompareUndefined CompareFunc = iota
	CompareNever
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
)

// StencilOp is the action taken on the stencil value.
type StencilOp int

// Stencil operations.
const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilInvert
	StencilIncrementClamp
	StencilDecrementClamp
	StencilIncrementWrap
	StencilDecrementWrap
)

// CullMode selects which primitive facing is discarded.
type CullMode int

// Cull modes.
const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

// FrontFace is the winding order considered front facing.
type FrontFace int

// Front face windings.
const (
	FrontFaceCCW FrontFace = iota
	FrontFaceCW
)

// Topology is the primitive assembly mode.
type Topology int

// Primitive topologies.
const (
	TopologyTriangleList Topology = iota
	TopologyTriangleStrip
	TopologyLineList
	TopologyLineStrip
	TopologyPointList
)

var topologyNames = map[Topology]string{
	TopologyTriangleList:  "triangle-list",
	TopologyTriangleStrip: "triangle-strip",
	TopologyLineList:      "line-list",
	TopologyLineStrip:     "line-strip",
	TopologyPointList:     "point-list",
}

func (t Topology) String() string {
	if s, ok := topologyNames[t]; ok {
		return s
	}
	return "unknown"
}

// IsStrip reports whether t is a strip topology.
func (t Topology) IsStrip() bool {
	return t == TopologyTriangleStrip || t == TopologyLineStrip
}

// IndexFormat is the element type of an index buffer.
type IndexFormat int

// Index formats.
const (
	IndexUndefined IndexFormat = iota
	IndexUint16
	IndexUint32
)

// VertexFormat is the type of a vertex attribute.
type VertexFormat int

// Vertex formats.
const (
	VertexFloat32x2 VertexFormat = iota
	VertexFloat32x3
	VertexFloat32x4
)

// StepMode selects per-vertex or per-instance attribute stepping.
type StepMode int

// Step modes.
const (
	StepVertex StepMode = iota
	StepInstance
)

// BlendFactor is a blend equation operand multiplier.
type BlendFactor int

// Blend factors.
const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
)

// BlendOp combines the weighted source and destination.
type BlendOp int

// Blend operations.
const (
	BlendOpAdd BlendOp = iota
	BlendOpSubtract
	BlendOpMax
)

// ColorWriteMask selects which channels a color target writes.
type ColorWriteMask uint32

// Color write masks.
const (
	ColorWriteNone  ColorWriteMask = 0
	ColorWriteRed   ColorWriteMask = 1
	ColorWriteGreen ColorWriteMask = 2
	ColorWriteBlue  ColorWriteMask = 4
	ColorWriteAlpha ColorWriteMask = 8
	ColorWriteAll   ColorWriteMask = 15
)

// LoadOp is the action taken on an attachment at the start of a pass.
type LoadOp int

// Load operations.
const (
	LoadClear LoadOp = iota
	LoadLoad
)

// StoreOp is the action taken on an attachment at the end of a pass.
type StoreOp int

// Store operations.
const (
	StoreStore StoreOp = iota
	StoreDiscard
)

// AddressMode is the texture coordinate wrapping mode of a sampler.
type AddressMode int

// Address modes.
const (
	AddressRepeat AddressMode = iota
	AddressClampToEdge
	AddressMirrorRepeat
)

// FilterMode is the min/mag filter of a sampler.
type FilterMode int

// Filter modes.
const (
	FilterLinear FilterMode = iota
	FilterNearest
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)
