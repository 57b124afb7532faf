package gpu

import "github.com/cogentcore/webgpu/wgpu"

var toWGPUFormat = map[TextureFormat]wgpu.TextureFormat{
	FormatUndefined:            wgpu.TextureFormatUndefined,
	FormatBGRA8Unorm:           wgpu.TextureFormatBGRA8Unorm,
	FormatBGRA8UnormSrgb:       wgpu.TextureFormatBGRA8UnormSrgb,
	FormatRGBA8Unorm:           wgpu.TextureFormatRGBA8Unorm,
	FormatRGBA8UnormSrgb:       wgpu.TextureFormatRGBA8UnormSrgb,
	FormatRGBA8Snorm:           wgpu.TextureFormatRGBA8Snorm,
	FormatR32Float:             wgpu.TextureFormatR32Float,
	FormatRGBA16Float:          wgpu.TextureFormatRGBA16Float,
	FormatDepth16Unorm:         wgpu.TextureFormatDepth16Unorm,
	FormatDepth32Float:         wgpu.TextureFormatDepth32Float,
	FormatDepth24PlusStencil8:  wgpu.TextureFormatDepth24PlusStencil8,
	FormatDepth32FloatStencil8: wgpu.TextureFormatDepth32FloatStencil8,
}

func wgpuFormat(f TextureFormat) wgpu.TextureFormat {
	return toWGPUFormat[f]
}

// fromWGPUFormat maps a surface format reported by the adapter back to the engine enum.
func fromWGPUFormat(f wgpu.TextureFormat) TextureFormat {
	for k, v := range toWGPUFormat {
		if v == f {
			return k
		}
	}
	return FormatUndefined
}

func wgpuTextureUsage(u TextureUsage) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	if u&TextureUsageCopySrc != 0 {
		out |= wgpu.TextureUsageCopySrc
	}
	if u&TextureUsageCopyDst != 0 {
		out |= wgpu.TextureUsageCopyDst
	}
	if u&TextureUsageTextureBinding != 0 {
		out |= wgpu.TextureUsageTextureBinding
	}
	if u&TextureUsageStorageBinding != 0 {
		out |= wgpu.TextureUsageStorageBinding
	}
	if u&TextureUsageRenderAttachment != 0 {
		out |= wgpu.TextureUsageRenderAttachment
	}
	return out
}

func wgpuBufferUsage(u BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u&BufferUsageCopyDst != 0 {
		out |= wgpu.BufferUsageCopyDst
	}
	if u&BufferUsageVertex != 0 {
		out |= wgpu.BufferUsageVertex
	}
	if u&BufferUsageIndex != 0 {
		out |= wgpu.BufferUsageIndex
	}
	if u&BufferUsageUniform != 0 {
		out |= wgpu.BufferUsageUniform
	}
	if u&BufferUsageStorage != 0 {
		out |= wgpu.BufferUsageStorage
	}
	return out
}

var toWGPUCompare = map[CompareFunc]wgpu.CompareFunction{
	CompareUndefined:    wgpu.CompareFunctionUndefined,
	CompareNever:        wgpu.CompareFunctionNever,
	CompareLess:         wgpu.CompareFunctionLess,
	CompareEqual:        wgpu.CompareFunctionEqual,
	CompareLessEqual:    wgpu.CompareFunctionLessEqual,
	CompareGreater:      wgpu.CompareFunctionGreater,
	CompareNotEqual:     wgpu.CompareFunctionNotEqual,
	CompareGreaterEqual: wgpu.CompareFunctionGreaterEqual,
	CompareAlways:       wgpu.CompareFunctionAlways,
}

// wgpuCompare maps a comparison function. Undefined stencil/depth compares
// become Always so the test is a no-op.
func wgpuCompare(c CompareFunc) wgpu.CompareFunction {
	if c == CompareUndefined {
		return wgpu.CompareFunctionAlways
	}
	return toWGPUCompare[c]
}

var toWGPUStencilOp = map[StencilOp]wgpu.StencilOperation{
	StencilKeep:           wgpu.StencilOperationKeep,
	StencilZero:           wgpu.StencilOperationZero,
	StencilReplace:        wgpu.StencilOperationReplace,
	StencilInvert:         wgpu.StencilOperationInvert,
	StencilIncrementClamp: wgpu.StencilOperationIncrementClamp,
	StencilDecrementClamp: wgpu.StencilOperationDecrementClamp,
	StencilIncrementWrap:  wgpu.StencilOperationIncrementWrap,
	StencilDecrementWrap:  wgpu.StencilOperationDecrementWrap,
}

func wgpuStencilFace(f StencilFace) wgpu.StencilFaceState {
	return wgpu.StencilFaceState{
		Compare:     wgpuCompare(f.Compare),
		FailOp:      toWGPUStencilOp[f.FailOp],
		DepthFailOp: toWGPUStencilOp[f.DepthFailOp],
		PassOp:      toWGPUStencilOp[f.PassOp],
	}
}

func wgpuCullMode(c CullMode) wgpu.CullMode {
	switch c {
	case CullFront:
		return wgpu.CullModeFront
	case CullBack:
		return wgpu.CullModeBack
	default:
		return wgpu.CullModeNone
	}
}

func wgpuFrontFace(f FrontFace) wgpu.FrontFace {
	if f == FrontFaceCW {
		return wgpu.FrontFaceCW
	}
	return wgpu.FrontFaceCCW
}

func wgpuTopology(t Topology) wgpu.PrimitiveTopology {
	switch t {
	case TopologyTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	case TopologyLineList:
		return wgpu.PrimitiveTopologyLineList
	case TopologyLineStrip:
		return wgpu.PrimitiveTopologyLineStrip
	case TopologyPointList:
		return wgpu.PrimitiveTopologyPointList
	default:
		return wgpu.PrimitiveTopologyTriangleList
	}
}

func wgpuIndexFormat(f IndexFormat) wgpu.IndexFormat {
	switch f {
	case IndexUint16:
		return wgpu.IndexFormatUint16
	case IndexUint32:
		return wgpu.IndexFormatUint32
	}
	return wgpu.IndexFormatUndefined
}

func wgpuVertexFormat(f VertexFormat) wgpu.VertexFormat {
	switch f {
	case VertexFloat32x2:
		return wgpu.VertexFormatFloat32x2
	case VertexFloat32x4:
		return wgpu.VertexFormatFloat32x4
	default:
		return wgpu.VertexFormatFloat32x3
	}
}

func wgpuVertexLayouts(layouts []VertexLayout) []wgpu.VertexBufferLayout {
	out := make([]wgpu.VertexBufferLayout, 0, len(layouts))
	for _, l := range layouts {
		attrs := make([]wgpu.VertexAttribute, 0, len(l.Attributes))
		for _, a := range l.Attributes {
			attrs = append(attrs, wgpu.VertexAttribute{
				Format:         wgpuVertexFormat(a.Format),
				Offset:         a.Offset,
				ShaderLocation: a.Location,
			})
		}
		step := wgpu.VertexStepModeVertex
		if l.StepMode == StepInstance {
			step = wgpu.VertexStepModeInstance
		}
		out = append(out, wgpu.VertexBufferLayout{
			ArrayStride: l.Stride,
			StepMode:    step,
			Attributes:  attrs,
		})
	}
	return out
}

func wgpuBlendFactor(f BlendFactor) wgpu.BlendFactor {
	switch f {
	case BlendOne:
		return wgpu.BlendFactorOne
	case BlendSrcAlpha:
		return wgpu.BlendFactorSrcAlpha
	case BlendOneMinusSrcAlpha:
		return wgpu.BlendFactorOneMinusSrcAlpha
	case BlendDstAlpha:
		return wgpu.BlendFactorDstAlpha
	case BlendOneMinusDstAlpha:
		return wgpu.BlendFactorOneMinusDstAlpha
	default:
		return wgpu.BlendFactorZero
	}
}

func wgpuBlendOp(o BlendOp) wgpu.BlendOperation {
	switch o {
	case BlendOpSubtract:
		return wgpu.BlendOperationSubtract
	case BlendOpMax:
		return wgpu.BlendOperationMax
	default:
		return wgpu.BlendOperationAdd
	}
}

func wgpuColorTargets(targets []ColorTarget) []wgpu.ColorTargetState {
	out := make([]wgpu.ColorTargetState, 0, len(targets))
	for _, t := range targets {
		state := wgpu.ColorTargetState{
			Format:    wgpuFormat(t.Format),
			WriteMask: wgpu.ColorWriteMask(t.WriteMask),
		}
		if t.Blend != nil {
			state.Blend = &wgpu.BlendState{
				Color: wgpu.BlendComponent{
					SrcFactor: wgpuBlendFactor(t.Blend.Color.Src),
					DstFactor: wgpuBlendFactor(t.Blend.Color.Dst),
					Operation: wgpuBlendOp(t.Blend.Color.Op),
				},
				Alpha: wgpu.BlendComponent{
					SrcFactor: wgpuBlendFactor(t.Blend.Alpha.Src),
					DstFactor: wgpuBlendFactor(t.Blend.Alpha.Dst),
					Operation: wgpuBlendOp(t.Blend.Alpha.Op),
				},
			}
		}
		out = append(out, state)
	}
	return out
}

func wgpuLoadOp(op LoadOp) wgpu.LoadOp {
	if op == LoadLoad {
		return wgpu.LoadOpLoad
	}
	return wgpu.LoadOpClear
}

func wgpuStoreOp(op StoreOp) wgpu.StoreOp {
	if op == StoreDiscard {
		return wgpu.StoreOpDiscard
	}
	return wgpu.StoreOpStore
}

func wgpuAddressMode(m AddressMode) wgpu.AddressMode {
	switch m {
	case AddressClampToEdge:
		return wgpu.AddressModeClampToEdge
	case AddressMirrorRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}

func wgpuFilterMode(f FilterMode) wgpu.FilterMode {
	if f == FilterNearest {
		return wgpu.FilterModeNearest
	}
	return wgpu.FilterModeLinear
}

func wgpuPresentMode(m PresentMode) wgpu.PresentMode {
	if m == PresentModeVSync {
		return wgpu.PresentModeFifo
	}
	return wgpu.PresentModeImmediate
}
