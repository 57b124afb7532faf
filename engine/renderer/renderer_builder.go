package renderer

import (
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/engine/light"
	"github.com/Carmen-Shannon/oxy-deferred/engine/settings"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithSettings shares a Settings instance with the renderer, typically one a UI also holds.
// Without it the renderer creates its own with the defaults.
//
// Parameters:
//   - s: the settings to snapshot every frame
//
// Returns:
//   - RendererBuilderOption: a function that applies the settings option to a renderer
func WithSettings(s settings.Settings) RendererBuilderOption {
	return func(r *renderer) {
		r.settings = s
	}
}

// WithPointLights replaces the default set of point lights.
//
// Parameters:
//   - lights: the light set
//
// Returns:
//   - RendererBuilderOption: a function that applies the lights option to a renderer
func WithPointLights(lights light.PointLights) RendererBuilderOption {
	return func(r *renderer) {
		r.lights = lights
	}
}

// WithInteractions enables the cursor interactions kernel, which steers agents
// towards (left button) or away from (other buttons) the cursor every frame.
//
// Parameters:
//   - enabled: true to build and dispatch the kernel
//
// Returns:
//   - RendererBuilderOption: a function that applies the interactions option to a renderer
func WithInteractions(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.interactions = enabled
	}
}

// WithDebugOutput logs the camera, projection and shadow matrices of every frame at debug level.
//
// Parameters:
//   - enabled: true to log each frame
//
// Returns:
//   - RendererBuilderOption: a function that applies the debug option to a renderer
func WithDebugOutput(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.debug = enabled
	}
}

// WithClock replaces time.Now as the source of simulation step times.
func WithClock(clock func() time.Time) RendererBuilderOption {
	return func(r *renderer) {
		r.clock = clock
	}
}

// WithParticleCount overrides the agent population. Values below 1 are ignored.
func WithParticleCount(n int) RendererBuilderOption {
	return func(r *renderer) {
		if n > 0 {
			r.particleCount = n
		}
	}
}

// WithSeed sets the seed of the initial agent placement.
func WithSeed(seed uint64) RendererBuilderOption {
	return func(r *renderer) {
		r.seed = seed
	}
}
