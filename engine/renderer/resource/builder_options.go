package resource

import "github.com/Carmen-Shannon/oxy-deferred/engine/light"

// BuilderOption configures a Builder.
type BuilderOption func(*builder)

// WithPointLights sets the light set whose static data is uploaded.
func WithPointLights(lights light.PointLights) BuilderOption {
	return func(b *builder) {
		b.lights = lights
	}
}

// WithParticleCount overrides the agent population.
//
// Parameters:
//   - n: agent count, ignored if not positive
//
// Returns:
//   - BuilderOption: the option
func WithParticleCount(n int) BuilderOption {
	return func(b *builder) {
		if n > 0 {
			b.particleCount = n
		}
	}
}

// WithSeed sets the seed of the initial agent distribution.
func WithSeed(seed uint64) BuilderOption {
	return func(b *builder) {
		b.seed = seed
	}
}

// WithSurfaceSize sizes the initial G-buffer set.
func WithSurfaceSize(width, height int) BuilderOption {
	return func(b *builder) {
		b.width, b.height = width, height
	}
}

// WithInteractions also builds the cursor interaction kernel.
func WithInteractions(enabled bool) BuilderOption {
	return func(b *builder) {
		b.interactions = enabled
	}
}
