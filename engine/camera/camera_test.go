package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// within compares component-wise with an absolute tolerance. mgl32's ApproxEqual
// family falls back to epsilon squared when a component is zero.
func within(a, b []float32, tol float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if mgl32.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func near(a, b mgl32.Vec3) bool {
	return within(a[:], b[:], 1e-4)
}

func TestControllerOrbit(t *testing.T) {
	c := NewController(WithTarget(mgl32.Vec3{0, 0, 0}), WithOrbit(10, 0, 0))
	if !near(c.Position(), mgl32.Vec3{0, 0, 10}) {
		t.Fatalf("NewController: expected eye on +Z, got %v", c.Position())
	}
	c.Orbit(float32(math.Pi/2), 0)
	if !near(c.Position(), mgl32.Vec3{10, 0, 0}) {
		t.Fatalf("Controller.Orbit: expected eye on +X, got %v", c.Position())
	}
	c.Orbit(0, 10)
	if c.Elevation() >= float32(math.Pi/2) {
		t.Fatalf("Controller.Orbit: elevation should be clamped below the pole, got %f", c.Elevation())
	}
}

func TestControllerZoomAndPan(t *testing.T) {
	c := NewController(WithTarget(mgl32.Vec3{}), WithOrbit(10, 0, 0), WithRadiusBounds(5, 20))
	c.Zoom(100)
	if c.Radius() != 5 {
		t.Fatalf("Controller.Zoom: expected radius clamped to 5, got %f", c.Radius())
	}
	before := c.Position().Sub(c.Target())
	c.Pan(2, 1)
	if !near(c.Target(), mgl32.Vec3{2, 1, 0}) {
		t.Fatalf("Controller.Pan: expected target (2,1,0), got %v", c.Target())
	}
	if !near(c.Position().Sub(c.Target()), before) {
		t.Fatalf("Controller.Pan: pan should preserve the orbit offset")
	}
}

func TestRigData(t *testing.T) {
	ctrl := NewController(WithTarget(mgl32.Vec3{0, 0, 0}), WithOrbit(10, 0, 0))
	r := NewRig(WithController(ctrl), WithAspect(2), WithSunPosition(mgl32.Vec3{0, 10, 0}))
	d := r.Data()

	if !near(d.Position, mgl32.Vec3{0, 0, 10}) || !near(d.Direction, mgl32.Vec3{0, 0, -1}) {
		t.Fatalf("Rig.Data: unexpected eye %v / direction %v", d.Position, d.Direction)
	}
	origin := d.View.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if math.Abs(float64(origin.Z()+10)) > 1e-4 {
		t.Fatalf("Rig.Data: target should be 10 units in front of the eye, got %v", origin)
	}
	if d.SkyModel.Col(3).Vec3() != d.Position {
		t.Fatalf("Rig.Data: sky should follow the eye")
	}
	// Sun straight up is eye-space +Y for a level camera.
	if !near(d.SunEyeDirection.Vec3(), mgl32.Vec3{0, 1, 0}) || d.SunEyeDirection.W() != 0 {
		t.Fatalf("Rig.Data: unexpected sun eye direction %v", d.SunEyeDirection)
	}
	if d.Aspect != 2 || d.Projection[0]*2 != d.Projection[5] {
		t.Fatalf("Rig.Data: projection ignores aspect")
	}
}

func TestRigShadowData(t *testing.T) {
	ctrl := NewController(WithTarget(mgl32.Vec3{0, 0, 0}))
	r := NewRig(WithController(ctrl), WithSunPosition(mgl32.Vec3{0, 50, 0}), WithShadowVolume(10, 1, 100))
	d := r.ShadowData()

	clip := d.ViewProjection().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if math.Abs(float64(clip.X())) > 1e-4 || math.Abs(float64(clip.Y())) > 1e-4 {
		t.Fatalf("Rig.ShadowData: target should project to the center, got %v", clip)
	}
	if clip.Z() <= 0 || clip.Z() >= 1 {
		t.Fatalf("Rig.ShadowData: target depth %f outside [0,1]", clip.Z())
	}
	edge := d.ViewProjection().Mul4x1(mgl32.Vec4{10, 0, 0, 1})
	if math.Abs(math.Abs(float64(edge.X()))+math.Abs(float64(edge.Y()))-1) > 1e-4 {
		t.Fatalf("Rig.ShadowData: half extent should map to the clip edge, got %v", edge)
	}
}
