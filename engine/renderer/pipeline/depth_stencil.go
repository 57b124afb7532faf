package pipeline

import "github.com/Carmen-Shannon/oxy-deferred/engine/gpu"

// StencilReference is the stencil value written by the G-buffer pass and tested by
// the lighting passes.
const StencilReference uint32 = 128

func bothFaces(s gpu.StencilFace) (gpu.StencilFace, gpu.StencilFace) {
	return s, s
}

// DontWriteDepth tests depth with Less and leaves the depth buffer untouched.
// Used by the skybox.
func DontWriteDepth() gpu.DepthStencilState {
	return gpu.DepthStencilState{
		Label:        "dont write depth",
		DepthCompare: gpu.CompareLess,
	}
}

// ShadowDepth is the depth state of the shadow pass.
func ShadowDepth() gpu.DepthStencilState {
	return gpu.DepthStencilState{
		Label:        "Shadow Depth Stencil",
		DepthWrite:   true,
		DepthCompare: gpu.CompareLessEqual,
	}
}

// GBufferDepthStencil writes depth and stamps the stencil reference on every covered pixel.
func GBufferDepthStencil() gpu.DepthStencilState {
	front, back := bothFaces(gpu.StencilFace{
		Compare:     gpu.CompareAlways,
		FailOp:      gpu.StencilKeep,
		DepthFailOp: gpu.StencilKeep,
		PassOp:      gpu.StencilReplace,
	})
	return gpu.DepthStencilState{
		Label:            "Buffer Depth Stencil",
		DepthWrite:       true,
		DepthCompare:     gpu.CompareLess,
		StencilFront:     front,
		StencilBack:      back,
		StencilReadMask:  0x0,
		StencilWriteMask: 0xFF,
	}
}

// DirectionalLightDepthStencil shades only pixels whose stencil equals the reference,
// i.e. pixels covered by G-buffer geometry.
func DirectionalLightDepthStencil() gpu.DepthStencilState {
	front, back := bothFaces(gpu.StencilFace{
		Compare:     gpu.CompareEqual,
		FailOp:      gpu.StencilKeep,
		DepthFailOp: gpu.StencilKeep,
		PassOp:      gpu.StencilKeep,
	})
	return gpu.DepthStencilState{
		Label:            "Deferred Directional Lighting Depth Stencil",
		DepthCompare:     gpu.CompareAlways,
		StencilFront:     front,
		StencilBack:      back,
		StencilReadMask:  0xFF,
		StencilWriteMask: 0x0,
	}
}

// PointLightDepthStencil shades pixels whose stencil was raised above the reference
// by the light mask.
func PointLightDepthStencil() gpu.DepthStencilState {
	front, back := bothFaces(gpu.StencilFace{
		Compare:     gpu.CompareLess,
		FailOp:      gpu.StencilKeep,
		DepthFailOp: gpu.StencilKeep,
		PassOp:      gpu.StencilKeep,
	})
	return gpu.DepthStencilState{
		Label:            "Point Light",
		DepthCompare:     gpu.CompareLessEqual,
		StencilFront:     front,
		StencilBack:      back,
		StencilReadMask:  0xFF,
		StencilWriteMask: 0x0,
	}
}

// LightMaskDepthStencil increments the stencil where a light volume's back faces fail
// the depth test, marking pixels that lie inside the volume.
func LightMaskDepthStencil() gpu.DepthStencilState {
	front, back := bothFaces(gpu.StencilFace{
		Compare:     gpu.CompareAlways,
		FailOp:      gpu.StencilKeep,
		DepthFailOp: gpu.StencilIncrementClamp,
		PassOp:      gpu.StencilKeep,
	})
	return gpu.DepthStencilState{
		Label:            "Point Light Mask",
		DepthCompare:     gpu.CompareLessEqual,
		StencilFront:     front,
		StencilBack:      back,
		StencilReadMask:  0x0,
		StencilWriteMask: 0xFF,
	}
}

// AdditiveBlend adds the fragment to the target: One, One.
var AdditiveBlend = gpu.BlendState{
	Color: gpu.BlendComponent{Src: gpu.BlendOne, Dst: gpu.BlendOne, Op: gpu.BlendOpAdd},
	Alpha: gpu.BlendComponent{Src: gpu.BlendOne, Dst: gpu.BlendOne, Op: gpu.BlendOpAdd},
}

// AlphaAdditiveBlend adds the fragment weighted by its alpha: SrcAlpha, One.
var AlphaAdditiveBlend = gpu.BlendState{
	Color: gpu.BlendComponent{Src: gpu.BlendSrcAlpha, Dst: gpu.BlendOne, Op: gpu.BlendOpAdd},
	Alpha: gpu.BlendComponent{Src: gpu.BlendSrcAlpha, Dst: gpu.BlendOne, Op: gpu.BlendOpAdd},
}
