package camera

import "github.com/go-gl/mathgl/mgl32"

// RigBuilderOption is a function that configures a Rig.
type RigBuilderOption func(*rig)

// WithController drives the rig from ctrl.
//
// Parameters:
//   - ctrl: the controller
//
// Returns:
//   - RigBuilderOption: the option
func WithController(ctrl Controller) RigBuilderOption {
	return func(r *rig) {
		r.controller = ctrl
	}
}

// WithClipPlanes sets the main view's near and far planes.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - RigBuilderOption: the option
func WithClipPlanes(near, far float32) RigBuilderOption {
	return func(r *rig) {
		r.near = near
		r.far = far
	}
}

// WithAspect sets the initial aspect ratio.
func WithAspect(aspect float32) RigBuilderOption {
	return func(r *rig) {
		r.aspect = aspect
	}
}

// WithSunPosition sets the initial sun position.
func WithSunPosition(p mgl32.Vec3) RigBuilderOption {
	return func(r *rig) {
		r.sun = p
	}
}

// WithShadowVolume sets the orthographic shadow volume: a square of 2*halfExtent
// on each side between near and far along the sun direction.
//
// Parameters:
//   - halfExtent: half the side length of the volume
//   - near: near plane distance from the sun
//   - far: far plane distance from the sun
//
// Returns:
//   - RigBuilderOption: the option
func WithShadowVolume(halfExtent, near, far float32) RigBuilderOption {
	return func(r *rig) {
		r.shadowHalfExtent = halfExtent
		r.shadowNear = near
		r.shadowFar = far
	}
}
