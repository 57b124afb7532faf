package model

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// InstanceDataInclude is the include key for InstanceDataSource.
const InstanceDataInclude = "instance_data"

// InstanceDataSource is the canonical WGSL definition of the InstanceData struct.
// Matches InstanceData.MarshalTo exactly (128 bytes).
//
//go:embed assets/instance.wgsl
var InstanceDataSource string

// InstanceDataSize is the size in bytes of one marshalled InstanceData.
const InstanceDataSize = 128

// InstanceData is the per-instance record read by the shadow and G-buffer vertex functions.
type InstanceData struct {
	Transform       mgl32.Mat4 // offset   0
	NormalTransform mgl32.Mat3 // offset  64, three 16-byte columns
	Color           mgl32.Vec4 // offset 112
}

// MarshalTo writes the instance into dst at off.
func (d *InstanceData) MarshalTo(dst []byte, off int) {
	common.PutMat4(dst, off, d.Transform)
	common.PutMat3(dst, off+64, d.NormalTransform)
	common.PutVec4(dst, off+112, d.Color)
}

// MarshalInstances encodes instances back to back.
func MarshalInstances(instances []InstanceData) []byte {
	b := make([]byte, len(instances)*InstanceDataSize)
	for i := range instances {
		instances[i].MarshalTo(b, i*InstanceDataSize)
	}
	return b
}

// Vertex is the interleaved vertex of the instance sphere: position, texcoord, normal.
// Stride 32 bytes.
type Vertex struct {
	Position mgl32.Vec3 // offset  0
	TexCoord mgl32.Vec2 // offset 12
	Normal   mgl32.Vec3 // offset 20
}

// VertexStride is the byte stride of Vertex.
const VertexStride = 32

// GroundVertex is a vertex of the ground plane. Stride 32 bytes.
type GroundVertex struct {
	Position mgl32.Vec4 // offset  0
	Normal   mgl32.Vec3 // offset 16
}

// GroundVertexStride is the byte stride of GroundVertex.
const GroundVertexStride = 32

// SimpleVertexStride is the byte stride of the 2D vertices used by the
// full-screen quad and the point disc.
const SimpleVertexStride = 8

// PositionVertexStride is the byte stride of the float4 position-only vertices
// used by the icosahedron and the sky sphere.
const PositionVertexStride = 16

// VertexLayout is the layout of Vertex at shader locations 0, 1 and 2.
func VertexLayout() gpu.VertexLayout {
	return gpu.VertexLayout{
		Stride:   VertexStride,
		StepMode: gpu.StepVertex,
		Attributes: []gpu.VertexAttribute{
			{Format: gpu.VertexFloat32x3, Offset: 0, Location: 0},
			{Format: gpu.VertexFloat32x2, Offset: 12, Location: 1},
			{Format: gpu.VertexFloat32x3, Offset: 20, Location: 2},
		},
	}
}

// ShadowVertexLayout reads only the position of Vertex.
func ShadowVertexLayout() gpu.VertexLayout {
	return gpu.VertexLayout{
		Stride:   VertexStride,
		StepMode: gpu.StepVertex,
		Attributes: []gpu.VertexAttribute{
			{Format: gpu.VertexFloat32x3, Offset: 0, Location: 0},
		},
	}
}

// GroundVertexLayout is the layout of GroundVertex at locations 0 and 1.
func GroundVertexLayout() gpu.VertexLayout {
	return gpu.VertexLayout{
		Stride:   GroundVertexStride,
		StepMode: gpu.StepVertex,
		Attributes: []gpu.VertexAttribute{
			{Format: gpu.VertexFloat32x4, Offset: 0, Location: 0},
			{Format: gpu.VertexFloat32x3, Offset: 16, Location: 1},
		},
	}
}

// SimpleVertexLayout is a single float2 position at location 0.
func SimpleVertexLayout() gpu.VertexLayout {
	return gpu.VertexLayout{
		Stride:     SimpleVertexStride,
		StepMode:   gpu.StepVertex,
		Attributes: []gpu.VertexAttribute{{Format: gpu.VertexFloat32x2, Offset: 0, Location: 0}},
	}
}

// PositionVertexLayout is a single float4 position at location 0.
func PositionVertexLayout() gpu.VertexLayout {
	return gpu.VertexLayout{
		Stride:     PositionVertexStride,
		StepMode:   gpu.StepVertex,
		Attributes: []gpu.VertexAttribute{{Format: gpu.VertexFloat32x4, Offset: 0, Location: 0}},
	}
}
