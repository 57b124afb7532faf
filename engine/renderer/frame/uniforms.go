package frame

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/go-gl/mathgl/mgl32"
)

// FrameUniformSize is the size in bytes of the WGSL FrameUniforms struct.
const FrameUniformSize = 944

// FrameUniformsInclude is the include key shaders use to pull in FrameUniformsWGSL.
const FrameUniformsInclude = "frame_uniforms"

// FrameUniformsWGSL declares the GPU side of FrameUniformBlock.
// Marshal writes exactly this layout.
//
//go:embed assets/frame_uniforms.wgsl
var FrameUniformsWGSL string

// FrameUniformBlock is every per-frame constant the shaders read.
// It is rebuilt in full by the orchestrator at the start of each frame.
type FrameUniformBlock struct {
	CameraPos mgl32.Vec3
	CameraDir mgl32.Vec3

	ViewMatrix           mgl32.Mat4
	WorldTransform       mgl32.Mat4
	WorldNormalTransform mgl32.Mat3
	PerspectiveTransform mgl32.Mat4
	ProjectionInverse    mgl32.Mat4
	SkyModelView         mgl32.Mat4
	SkyModel             mgl32.Mat4
	PlaneModelView       mgl32.Mat4
	PlaneNormalModelView mgl32.Mat3
	ScaleMatrix          mgl32.Mat4

	FramebufferWidth  uint32
	FramebufferHeight uint32

	PointSize              float32
	PointSpecularIntensity float32

	SunColor             mgl32.Vec4
	SunEyeDirection      mgl32.Vec4
	SunPosition          mgl32.Vec4
	ShininessFactor      float32
	SunSpecularIntensity float32

	// Shadow transform chain: light view, light projection and the
	// clip-to-texture bias/scale applied after them.
	ShadowView       mgl32.Mat4
	ShadowProjection mgl32.Mat4
	ShadowTransform  mgl32.Mat4

	TextureScale  float32
	ColorMixBias  float32
	MetalnessBias float32
	RoughnessBias float32
	MipLevel      float32
}

// Marshal encodes the block in the FrameUniformsWGSL layout.
func (f *FrameUniformBlock) Marshal() []byte {
	b := make([]byte, FrameUniformSize)
	f.MarshalTo(b)
	return b
}

// MarshalTo encodes the block into dst, which must be at least FrameUniformSize bytes.
func (f *FrameUniformBlock) MarshalTo(dst []byte) {
	_ = dst[FrameUniformSize-1]
	common.PutVec3(dst, 0, f.CameraPos)
	common.PutVec3(dst, 16, f.CameraDir)
	common.PutMat4(dst, 32, f.ViewMatrix)
	common.PutMat4(dst, 96, f.WorldTransform)
	common.PutMat3(dst, 160, f.WorldNormalTransform)
	common.PutMat4(dst, 208, f.PerspectiveTransform)
	common.PutMat4(dst, 272, f.ProjectionInverse)
	common.PutMat4(dst, 336, f.SkyModelView)
	common.PutMat4(dst, 400, f.SkyModel)
	common.PutMat4(dst, 464, f.PlaneModelView)
	common.PutMat3(dst, 528, f.PlaneNormalModelView)
	common.PutMat4(dst, 576, f.ScaleMatrix)
	common.PutUint32(dst, 640, f.FramebufferWidth)
	common.PutUint32(dst, 644, f.FramebufferHeight)
	common.PutFloat32(dst, 648, f.PointSize)
	common.PutFloat32(dst, 652, f.PointSpecularIntensity)
	common.PutVec4(dst, 656, f.SunColor)
	common.PutVec4(dst, 672, f.SunEyeDirection)
	common.PutVec4(dst, 688, f.SunPosition)
	common.PutFloat32(dst, 704, f.ShininessFactor)
	common.PutFloat32(dst, 708, f.SunSpecularIntensity)
	common.PutMat4(dst, 720, f.ShadowView)
	common.PutMat4(dst, 784, f.ShadowProjection)
	common.PutMat4(dst, 848, f.ShadowTransform)
	common.PutFloat32(dst, 912, f.TextureScale)
	common.PutFloat32(dst, 916, f.ColorMixBias)
	common.PutFloat32(dst, 920, f.MetalnessBias)
	common.PutFloat32(dst, 924, f.RoughnessBias)
	common.PutFloat32(dst, 928, f.MipLevel)
}

// ShadowTextureTransform maps light clip space to shadow map texture space:
// translate(0.5, 0.5, 0) * scale(0.5, -0.5, 1).
func ShadowTextureTransform() mgl32.Mat4 {
	return mgl32.Translate3D(0.5, 0.5, 0).Mul4(mgl32.Scale3D(0.5, -0.5, 1))
}
