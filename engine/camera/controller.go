package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Controller owns the viewer's positional state. Orbit methods move the
// position on a sphere around the target; pan methods shift position and
// target together.
type Controller interface {
	// Position returns the world-space eye position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Position() mgl32.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: the target
	Target() mgl32.Vec3

	// SetTarget moves the pivot and recomputes the position from the orbit angles.
	//
	// Parameters:
	//   - target: the new pivot
	SetTarget(target mgl32.Vec3)

	// Orbit rotates around the target. Elevation is clamped to the controller bounds.
	//
	// Parameters:
	//   - dAzimuth: change of the horizontal angle in radians
	//   - dElevation: change of the vertical angle in radians
	Orbit(dAzimuth, dElevation float32)

	// Zoom moves towards the target. Positive delta zooms in.
	//
	// Parameters:
	//   - delta: zoom amount, scaled by the zoom speed
	Zoom(delta float32)

	// Pan translates position and target along the local right and up axes.
	//
	// Parameters:
	//   - right: distance along the right axis
	//   - up: distance along the up axis
	Pan(right, up float32)

	Radius() float32
	Azimuth() float32
	Elevation() float32
}

type controller struct {
	mu sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3

	radius    float32
	azimuth   float32
	elevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	zoomSpeed float32
}

var _ Controller = &controller{}

// NewController creates an orbit controller looking at the origin of the instance grid.
//
// Parameters:
//   - options: variadic list of ControllerBuilderOption functions
//
// Returns:
//   - Controller: the controller
func NewController(options ...ControllerBuilderOption) Controller {
	c := &controller{
		target:       mgl32.Vec3{0, 4, -2},
		radius:       14,
		elevation:    float32(math.Pi / 12),
		minRadius:    2,
		maxRadius:    140,
		minElevation: -float32(math.Pi/2 - 0.05),
		maxElevation: float32(math.Pi/2 - 0.05),
		zoomSpeed:    1,
	}
	for _, option := range options {
		option(c)
	}
	c.updatePosition()
	return c
}

// updatePosition recomputes the eye from the spherical coordinates. Caller holds mu.
func (c *controller) updatePosition() {
	c.radius = mgl32.Clamp(c.radius, c.minRadius, c.maxRadius)
	c.elevation = mgl32.Clamp(c.elevation, c.minElevation, c.maxElevation)
	cosE, sinE := float32(math.Cos(float64(c.elevation))), float32(math.Sin(float64(c.elevation)))
	cosA, sinA := float32(math.Cos(float64(c.azimuth))), float32(math.Sin(float64(c.azimuth)))
	c.position = c.target.Add(mgl32.Vec3{c.radius * cosE * sinA, c.radius * sinE, c.radius * cosE * cosA})
}

func (c *controller) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *controller) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *controller) SetTarget(target mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = target
	c.updatePosition()
}

func (c *controller) Orbit(dAzimuth, dElevation float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.azimuth += dAzimuth
	c.elevation += dElevation
	c.updatePosition()
}

func (c *controller) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.radius -= delta * c.zoomSpeed
	c.updatePosition()
}

func (c *controller) Pan(right, up float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	back := c.position.Sub(c.target)
	if back.Len() < 1e-8 {
		return
	}
	back = back.Normalize()
	r := mgl32.Vec3{0, 1, 0}.Cross(back)
	if r.Len() < 1e-8 {
		return
	}
	r = r.Normalize()
	u := back.Cross(r)
	offset := r.Mul(right).Add(u.Mul(up))
	c.target = c.target.Add(offset)
	c.position = c.position.Add(offset)
}

func (c *controller) Radius() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.radius
}

func (c *controller) Azimuth() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.azimuth
}

func (c *controller) Elevation() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elevation
}
