package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

// Rig defaults.
const (
	DefaultFovYDegrees float32 = 45
	DefaultNear        float32 = 0.1
	DefaultFar         float32 = 500
)

// DefaultSunPosition is the world-space sun position at startup.
var DefaultSunPosition = mgl32.Vec3{30, 60, 40}

// Rig turns a Controller's state into CameraData snapshots for the main view
// and for the shadow view from the sun.
type Rig interface {
	// Controller returns the controller driving the main view.
	//
	// Returns:
	//   - Controller: the controller
	Controller() Controller

	// SetAspect sets the main view's aspect ratio (width / height).
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// SetSunPosition moves the sun. The shadow view follows it.
	//
	// Parameters:
	//   - p: world-space position
	SetSunPosition(p mgl32.Vec3)

	// Data snapshots the main view.
	//
	// Returns:
	//   - CameraData: the snapshot
	Data() CameraData

	// ShadowData snapshots the orthographic view from the sun towards the target.
	//
	// Returns:
	//   - CameraData: the snapshot
	ShadowData() CameraData
}

type rig struct {
	mu sync.Mutex

	controller Controller

	fovY   float32
	aspect float32
	near   float32
	far    float32

	sun mgl32.Vec3

	shadowHalfExtent float32
	shadowNear       float32
	shadowFar        float32
}

var _ Rig = &rig{}

// NewRig creates a rig with a 45 degree field of view. Without WithController
// it drives a NewController with default orbit.
//
// Parameters:
//   - options: variadic list of RigBuilderOption functions
//
// Returns:
//   - Rig: the rig
func NewRig(options ...RigBuilderOption) Rig {
	r := &rig{
		fovY:             mgl32.DegToRad(DefaultFovYDegrees),
		aspect:           1,
		near:             DefaultNear,
		far:              DefaultFar,
		sun:              DefaultSunPosition,
		shadowHalfExtent: light.DefaultShadowHalfExtent,
		shadowNear:       light.DefaultShadowNear,
		shadowFar:        light.DefaultShadowFar,
	}
	for _, option := range options {
		option(r)
	}
	if r.controller == nil {
		r.controller = NewController()
	}
	return r
}

func (r *rig) Controller() Controller {
	return r.controller
}

func (r *rig) SetAspect(aspect float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aspect = aspect
}

func (r *rig) SetSunPosition(p mgl32.Vec3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sun = p
}

// upFor returns world up unless it is parallel to dir.
func upFor(dir mgl32.Vec3) mgl32.Vec3 {
	up := mgl32.Vec3{0, 1, 0}
	if math.Abs(float64(dir.Normalize().Dot(up))) > 0.999 {
		return mgl32.Vec3{0, 0, -1}
	}
	return up
}

func (r *rig) Data() CameraData {
	r.mu.Lock()
	defer r.mu.Unlock()

	eye := r.controller.Position()
	center := r.controller.Target()
	dir := center.Sub(eye)
	if dir.Len() < 1e-8 {
		dir = mgl32.Vec3{0, 0, -1}
	}
	dir = dir.Normalize()
	view := mgl32.LookAtV(eye, center, upFor(dir))

	return CameraData{
		FovY:             r.fovY,
		Aspect:           r.aspect,
		ViewSize:         2 * float32(math.Tan(float64(r.fovY)/2)),
		Near:             r.near,
		Far:              r.far,
		SunLightPosition: r.sun.Vec4(1),
		SunEyeDirection:  view.Mul4x1(r.sun.Normalize().Vec4(0)),
		Center:           center,
		Direction:        dir,
		Position:         eye,
		SkyModel:         mgl32.Translate3D(eye.X(), eye.Y(), eye.Z()),
		View:             view,
		Projection:       common.Perspective(r.fovY, r.aspect, r.near, r.far),
	}
}

func (r *rig) ShadowData() CameraData {
	r.mu.Lock()
	defer r.mu.Unlock()

	center := r.controller.Target()
	eye := r.sun
	dir := center.Sub(eye)
	if dir.Len() < 1e-8 {
		dir = mgl32.Vec3{0, -1, 0}
		eye = center.Sub(dir)
	}
	dir = dir.Normalize()
	view := mgl32.LookAtV(eye, center, upFor(dir))
	e := r.shadowHalfExtent

	return CameraData{
		Aspect:           1,
		ViewSize:         2 * e,
		Near:             r.shadowNear,
		Far:              r.shadowFar,
		SunLightPosition: r.sun.Vec4(1),
		SunEyeDirection:  view.Mul4x1(r.sun.Normalize().Vec4(0)),
		Center:           center,
		Direction:        dir,
		Position:         eye,
		SkyModel:         mgl32.Ident4(),
		View:             view,
		Projection:       common.Orthographic(-e, e, -e, e, r.shadowNear, r.shadowFar),
	}
}
