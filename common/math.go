package common

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Perspective builds a right-handed perspective projection with a [0, 1] depth range,
// the clip-space convention used by WebGPU. mgl32.Perspective targets OpenGL's [-1, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	out := mgl32.Mat4{}
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// Orthographic builds a right-handed orthographic projection with a [0, 1] depth range.
// Used for the directional light's shadow camera.
func Orthographic(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	out := mgl32.Ident4()
	out[0] = 2 / (right - left)
	out[5] = 2 / (top - bottom)
	out[10] = 1 / (near - far)
	out[12] = -(right + left) / (right - left)
	out[13] = -(top + bottom) / (top - bottom)
	out[14] = near / (near - far)
	return out
}

// Aspect returns width / max(height, 1), so a zero-height surface never divides by zero.
func Aspect(width, height int) float32 {
	if height < 1 {
		height = 1
	}
	return float32(width) / float32(height)
}

// UpperLeft3 returns the upper-left 3x3 block of a 4x4 matrix.
func UpperLeft3(m mgl32.Mat4) mgl32.Mat3 {
	return m.Mat3()
}

// EaseCircularInOut is the circular in/out easing curve on [0, 1].
func EaseCircularInOut(t float32) float32 {
	if t < 0.5 {
		return 0.5 * (1 - float32(math.Sqrt(float64(1-4*t*t))))
	}
	return 0.5 * (float32(math.Sqrt(float64(-((2*t)-3)*((2*t)-1)))) + 1)
}

// WrapPhase advances an animation phase by dir*speed and wraps it into [0, 1).
func WrapPhase(t, dir, speed float32) float32 {
	v := float32(math.Mod(float64(1+t+dir*speed), 1))
	if v < 0 {
		v += 1
	}
	return v
}

// PutFloat32 writes v little-endian at off.
func PutFloat32(dst []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(dst[off:off+4], math.Float32bits(v))
}

// PutUint32 writes v little-endian at off.
func PutUint32(dst []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(dst[off:off+4], v)
}

// PutVec3 writes the three components of v starting at off (12 bytes, no padding).
func PutVec3(dst []byte, off int, v mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		PutFloat32(dst, off+i*4, v[i])
	}
}

// PutVec4 writes the four components of v starting at off.
func PutVec4(dst []byte, off int, v mgl32.Vec4) {
	for i := 0; i < 4; i++ {
		PutFloat32(dst, off+i*4, v[i])
	}
}

// PutMat4 writes a column-major 4x4 matrix starting at off (64 bytes).
func PutMat4(dst []byte, off int, m mgl32.Mat4) {
	for i := 0; i < 16; i++ {
		PutFloat32(dst, off+i*4, m[i])
	}
}

// PutMat3 writes a column-major 3x3 matrix using the WGSL mat3x3<f32> layout:
// each column occupies 16 bytes, 48 bytes total.
func PutMat3(dst []byte, off int, m mgl32.Mat3) {
	for c := 0; c < 3; c++ {
		for r := 0; r < 3; r++ {
			PutFloat32(dst, off+c*16+r*4, m[c*3+r])
		}
		PutFloat32(dst, off+c*16+12, 0)
	}
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}
