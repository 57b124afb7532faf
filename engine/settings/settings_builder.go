package settings

import (
	"github.com/Carmen-Shannon/oxy-deferred/engine/simulation"
)

// SettingsBuilderOption is a function that configures the startup values of Settings.
type SettingsBuilderOption func(*settings)

// WithInstances sets the startup grid dimensions, subject to the same fallback as SetInstances.
//
// Parameters:
//   - rows: the row count
//   - columns: the column count
//   - depth: the depth count
//
// Returns:
//   - SettingsBuilderOption: the option
func WithInstances(rows, columns, depth int) SettingsBuilderOption {
	return func(st *settings) {
		st.SetInstances(rows, columns, depth)
	}
}

// WithSimulation replaces the startup simulation parameters.
//
// Parameters:
//   - p: the parameters
//
// Returns:
//   - SettingsBuilderOption: the option
func WithSimulation(p simulation.Params) SettingsBuilderOption {
	return func(st *settings) {
		st.s.Simulation = p
	}
}

// WithMaterial sets the startup material biases.
func WithMaterial(colorMix, metalness, roughness float32) SettingsBuilderOption {
	return func(st *settings) {
		st.s.ColorMix = colorMix
		st.s.Metalness = metalness
		st.s.Roughness = roughness
	}
}
