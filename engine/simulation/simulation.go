// Package simulation defines the data shared between the CPU and the slime-mold
// compute kernels: the agent population, the tunable uniform block and the
// trail field dimensions.
package simulation

import (
	_ "embed"
	"math"

	"github.com/Carmen-Shannon/oxy-deferred/common"
)

// Simulation defaults.
const (
	// ParticleCount is the fixed agent population.
	ParticleCount = 100000

	SenseAngle  float32 = 0.3
	SenseOffset float32 = 50
	TurnSpeed   float32 = 50
	MoveSpeed   float32 = 100
	Evaporation float32 = 0.1
	TrailWeight float32 = 2
	SensorSize  uint32  = 1

	// DefaultFamily is the active family id at startup. Valid ids are MinFamily..MaxFamily.
	DefaultFamily = 1
	MinFamily     = 1
	MaxFamily     = 4

	// FieldWidth and FieldHeight are the dimensions of the trail field texture.
	FieldWidth  = 2048
	FieldHeight = 2048

	// AgentWorkgroupSize is the workgroup width of the per-agent kernels.
	AgentWorkgroupSize = 64

	// FieldTileSize is the workgroup edge of the per-texel trail kernel.
	FieldTileSize = 16
)

// Include keys and sizes of the structs in Source.
const (
	Include = "simulation"

	ParticleSize         = 48
	UniformBlockSize     = 48
	TimeBlockSize        = 16
	InteractionBlockSize = 16
)

// Source declares Particle, SimulationUniforms, TimeData and Interactions for the kernels.
//
//go:embed assets/simulation.wgsl
var Source string

// UniformBlock is the snapshot of simulation parameters written into the current
// frame slot every frame.
type UniformBlock struct {
	ParticleCount uint32
	SensorOffset  float32
	// SensorAngle is in radians.
	SensorAngle float32
	MoveSpeed   float32
	SensorSize  uint32
	TurnSpeed   float32
	Evaporation float32
	TrailWeight float32
	Width       uint32
	Height      uint32
	Family      uint32
}

// Params are the UI-tunable simulation values.
type Params struct {
	// SenseAngle is a fraction of pi.
	SenseAngle  float32
	SenseOffset float32
	MoveSpeed   float32
	TurnSpeed   float32
	Evaporation float32
	TrailWeight float32
	Family      int
}

// DefaultParams returns the startup simulation parameters.
func DefaultParams() Params {
	return Params{
		SenseAngle:  SenseAngle,
		SenseOffset: SenseOffset,
		MoveSpeed:   MoveSpeed,
		TurnSpeed:   TurnSpeed,
		Evaporation: Evaporation,
		TrailWeight: TrailWeight,
		Family:      DefaultFamily,
	}
}

// NewUniformBlock snapshots p for the GPU.
//
// Parameters:
//   - p: the current parameters
//
// Returns:
//   - UniformBlock: the block for the current frame slot
func NewUniformBlock(p Params) UniformBlock {
	return UniformBlock{
		ParticleCount: ParticleCount,
		SensorOffset:  p.SenseOffset,
		SensorAngle:   p.SenseAngle * math.Pi,
		MoveSpeed:     p.MoveSpeed,
		SensorSize:    SensorSize,
		TurnSpeed:     p.TurnSpeed,
		Evaporation:   p.Evaporation,
		TrailWeight:   p.TrailWeight,
		Width:         FieldWidth,
		Height:        FieldHeight,
		Family:        uint32(p.Family),
	}
}

// Marshal encodes the block in the SimulationUniforms layout.
func (u *UniformBlock) Marshal() []byte {
	b := make([]byte, UniformBlockSize)
	common.PutUint32(b, 0, u.ParticleCount)
	common.PutFloat32(b, 4, u.SensorOffset)
	common.PutFloat32(b, 8, u.SensorAngle)
	common.PutFloat32(b, 12, u.MoveSpeed)
	common.PutUint32(b, 16, u.SensorSize)
	common.PutFloat32(b, 20, u.TurnSpeed)
	common.PutFloat32(b, 24, u.Evaporation)
	common.PutFloat32(b, 28, u.TrailWeight)
	common.PutUint32(b, 32, u.Width)
	common.PutUint32(b, 36, u.Height)
	common.PutUint32(b, 40, u.Family)
	return b
}

// TimeBlock carries the clamped frame delta to the advance kernel.
type TimeBlock struct {
	Delta   float32
	Elapsed float32
	Frame   uint32
}

// Marshal encodes the block in the TimeData layout, padded to TimeBlockSize.
func (t *TimeBlock) Marshal() []byte {
	b := make([]byte, TimeBlockSize)
	common.PutFloat32(b, 0, t.Delta)
	common.PutFloat32(b, 4, t.Elapsed)
	common.PutUint32(b, 8, t.Frame)
	return b
}

// InteractionBlock is the cursor state read by the interactions kernel.
type InteractionBlock struct {
	CursorX, CursorY float32
	Buttons          uint32
}

// Marshal encodes the block in the Interactions layout.
func (i *InteractionBlock) Marshal() []byte {
	b := make([]byte, InteractionBlockSize)
	common.PutFloat32(b, 0, i.CursorX)
	common.PutFloat32(b, 4, i.CursorY)
	common.PutUint32(b, 8, i.Buttons)
	return b
}
