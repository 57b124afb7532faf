package camera

import "github.com/go-gl/mathgl/mgl32"

// ControllerBuilderOption is a function that configures a Controller.
type ControllerBuilderOption func(*controller)

// WithTarget sets the initial pivot.
//
// Parameters:
//   - target: the look-at point
//
// Returns:
//   - ControllerBuilderOption: the option
func WithTarget(target mgl32.Vec3) ControllerBuilderOption {
	return func(c *controller) {
		c.target = target
	}
}

// WithOrbit sets the initial spherical coordinates around the target.
//
// Parameters:
//   - radius: distance from the target
//   - azimuth: horizontal angle in radians, 0 looks down -Z
//   - elevation: vertical angle in radians
//
// Returns:
//   - ControllerBuilderOption: the option
func WithOrbit(radius, azimuth, elevation float32) ControllerBuilderOption {
	return func(c *controller) {
		c.radius = radius
		c.azimuth = azimuth
		c.elevation = elevation
	}
}

// WithRadiusBounds sets the zoom limits.
func WithRadiusBounds(minRadius, maxRadius float32) ControllerBuilderOption {
	return func(c *controller) {
		c.minRadius = minRadius
		c.maxRadius = maxRadius
	}
}

// WithZoomSpeed sets the zoom multiplier.
func WithZoomSpeed(speed float32) ControllerBuilderOption {
	return func(c *controller) {
		c.zoomSpeed = speed
	}
}
