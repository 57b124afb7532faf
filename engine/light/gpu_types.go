package light

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/go-gl/mathgl/mgl32"
)

// PointLightDataInclude is the include key for PointLightDataSource.
const PointLightDataInclude = "point_light_data"

// PointLightDataSource is the canonical WGSL definition of the PointLightData struct.
//
//go:embed assets/point_light.wgsl
var PointLightDataSource string

// PointLightDataSize is the WGSL size of PointLightData, including tail padding.
const PointLightDataSize = 32

// LightPositionSize is the size of one light position (vec4<f32>) in the per-frame buffer.
const LightPositionSize = 16

// PointLightData is the static part of a light that the shaders read.
type PointLightData struct {
	Color  mgl32.Vec3 // offset  0
	Radius float32    // offset 12
	Speed  float32    // offset 16
}

// MarshalTo writes the light into dst at off.
func (d *PointLightData) MarshalTo(dst []byte, off int) {
	common.PutVec3(dst, off, d.Color)
	common.PutFloat32(dst, off+12, d.Radius)
	common.PutFloat32(dst, off+16, d.Speed)
}

// MarshalPositions encodes light positions back to back.
//
// Parameters:
//   - positions: the positions to encode
//
// Returns:
//   - []byte: len(positions)*LightPositionSize bytes
func MarshalPositions(positions []mgl32.Vec4) []byte {
	b := make([]byte, len(positions)*LightPositionSize)
	for i, p := range positions {
		common.PutVec4(b, i*LightPositionSize, p)
	}
	return b
}
