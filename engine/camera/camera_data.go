// Package camera produces the per-frame camera snapshots the renderer reads:
// the main view and the orthographic view from the sun used for shadows.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

// CameraData is an immutable snapshot of a camera handed to the renderer.
type CameraData struct {
	FovY     float32
	Aspect   float32
	ViewSize float32
	Near     float32
	Far      float32

	// SunLightPosition is the world-space sun position (w = 1).
	SunLightPosition mgl32.Vec4
	// SunEyeDirection is the direction towards the sun in eye space (w = 0).
	SunEyeDirection mgl32.Vec4

	Center    mgl32.Vec3
	Direction mgl32.Vec3
	Position  mgl32.Vec3

	// SkyModel keeps the sky sphere centered on the viewer.
	SkyModel   mgl32.Mat4
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

// ViewProjection returns Projection * View.
func (d CameraData) ViewProjection() mgl32.Mat4 {
	return d.Projection.Mul4(d.View)
}
