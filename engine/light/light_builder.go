package light

import (
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// PointLightsBuilderOption is a function that configures a PointLights set during construction.
type PointLightsBuilderOption func(*pointLights)

// WithCount is an option builder that sets the number of lights.
//
// Parameters:
//   - count: the light count, at least 1
//
// Returns:
//   - PointLightsBuilderOption: a function that applies the count option
func WithCount(count int) PointLightsBuilderOption {
	return func(p *pointLights) {
		p.count = max(count, 1)
	}
}

// WithOrbit is an option builder that sets where the lights start: distance from
// the orbit axis, height, and the angle between consecutive lights in radians.
//
// Parameters:
//   - distance: orbit distance
//   - height: orbit height
//   - angleStep: initial angle increment per light
//
// Returns:
//   - PointLightsBuilderOption: a function that applies the orbit option
func WithOrbit(distance, height, angleStep float32) PointLightsBuilderOption {
	return func(p *pointLights) {
		p.distance = distance
		p.height = height
		p.angleStep = angleStep
	}
}

// WithSpeed is an option builder that sets the angular speed magnitude in radians per frame.
//
// Parameters:
//   - speed: the speed magnitude
//
// Returns:
//   - PointLightsBuilderOption: a function that applies the speed option
func WithSpeed(speed float32) PointLightsBuilderOption {
	return func(p *pointLights) {
		p.speed = speed
	}
}

// WithRadius is an option builder that sets the light volume radius.
//
// Parameters:
//   - radius: the radius
//
// Returns:
//   - PointLightsBuilderOption: a function that applies the radius option
func WithRadius(radius float32) PointLightsBuilderOption {
	return func(p *pointLights) {
		p.radius = radius
	}
}

// WithColor is an option builder that sets the RGB color of every light.
//
// Parameters:
//   - r: the red color component
//   - g: the green color component
//   - b: the blue color component
//
// Returns:
//   - PointLightsBuilderOption: a function that applies the color option
func WithColor(r, g, b float32) PointLightsBuilderOption {
	return func(p *pointLights) {
		p.color = mgl32.Vec3{r, g, b}
	}
}

// WithSeed is an option builder that makes the speed signs deterministic.
//
// Parameters:
//   - seed: the random seed
//
// Returns:
//   - PointLightsBuilderOption: a function that applies the seed option
func WithSeed(seed uint64) PointLightsBuilderOption {
	return func(p *pointLights) {
		p.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}
