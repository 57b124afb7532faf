package simulation

import "time"

const (
	// MaxDelta caps the step after a hitch so agents never jump across the field.
	MaxDelta float32 = 1.0 / 30.0

	// NominalDelta is used when the clock has not advanced since the last step.
	NominalDelta float32 = 1.0 / 60.0
)

// DeltaTime is the simulation step for a frame starting at now when the previous
// step ran at previous: min(now-previous, MaxDelta), or NominalDelta when the two
// are equal or the clock went backwards.
//
// Parameters:
//   - now: the current wall-clock time
//   - previous: the time recorded at the previous step
//
// Returns:
//   - float32: the step in seconds
func DeltaTime(now, previous time.Time) float32 {
	d := now.Sub(previous)
	if d <= 0 {
		return NominalDelta
	}
	return min(float32(d.Seconds()), MaxDelta)
}
