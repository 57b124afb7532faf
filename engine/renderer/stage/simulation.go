package stage

import (
	"time"

	"github.com/Carmen-Shannon/oxy-deferred/common"
	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/frame"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-deferred/engine/simulation"
	"go.uber.org/zap"
)

// Simulation records the compute kernels that evolve the agent population and
// the trail field. It is not safe for concurrent use; the frame producer owns it.
type Simulation interface {
	// Encode writes the frame's time block into slot and records, in order: the
	// init kernel (first call only), the advance kernel, the trail kernel, the
	// family kernel when family differs from the last applied one, and the
	// interactions kernel when it was built.
	//
	// Parameters:
	//   - cs: the stream to record into
	//   - slot: the current frame slot; its simulation uniforms must already be written
	//   - now: the wall-clock time of this step
	//   - family: the active family id
	Encode(cs gpu.CommandStream, slot *frame.Slot, now time.Time, family uint32)

	// Initialized reports whether the init kernel has been recorded.
	Initialized() bool

	// FamilyDispatches is the number of times the family kernel was recorded.
	FamilyDispatches() int

	// AppliedFamily is the family id the agents were last assigned to.
	AppliedFamily() uint32

	// LastDelta is the step written by the most recent Encode.
	LastDelta() float32
}

type simulationStage struct {
	device gpu.Device
	res    *resource.Resources

	initialized      bool
	appliedFamily    uint32
	familyDispatches int

	start     time.Time
	previous  time.Time
	lastDelta float32
	frames    uint32
}

var _ Simulation = &simulationStage{}

// NewSimulation creates the simulation stage over the particle buffer and field of res.
func NewSimulation(device gpu.Device, res *resource.Resources) Simulation {
	return &simulationStage{device: device, res: res}
}

func (s *simulationStage) Encode(cs gpu.CommandStream, slot *frame.Slot, now time.Time, family uint32) {
	delta := simulation.NominalDelta
	if s.previous.IsZero() {
		s.start = now
	} else {
		delta = simulation.DeltaTime(now, s.previous)
	}
	s.previous = now
	s.lastDelta = delta

	block := simulation.TimeBlock{Delta: delta, Elapsed: float32(now.Sub(s.start).Seconds()), Frame: s.frames}
	s.device.WriteBuffer(slot.Time, 0, block.Marshal())
	s.frames++

	p := s.res.Pipelines
	agents := uint32(s.res.ParticleCount)
	cp := cs.BeginComputePass("Simulation")

	if !s.initialized {
		cp.SetPipeline(p.Init.Compute())
		cp.SetBindings(BindGroup,
			gpu.BufferBinding(SlotParticles, s.res.Particles),
			gpu.BufferBinding(SlotSimulationUniforms, slot.SimulationUniforms),
			gpu.TextureBinding(SlotField, s.res.Field),
		)
		cp.Dispatch(pipeline.WorkgroupCount(agents, p.Init.WorkgroupSize()[0]), 1, 1)
		s.initialized = true
		s.appliedFamily = family
	}

	cp.SetPipeline(p.Advance.Compute())
	cp.SetBindings(BindGroup,
		gpu.BufferBinding(SlotParticles, s.res.Particles),
		gpu.BufferBinding(SlotSimulationUniforms, slot.SimulationUniforms),
		gpu.BufferBinding(SlotTime, slot.Time),
		gpu.TextureBinding(SlotField, s.res.Field),
	)
	cp.Dispatch(pipeline.WorkgroupCount(agents, p.Advance.WorkgroupSize()[0]), 1, 1)

	tile := p.Trail.WorkgroupSize()
	cp.SetPipeline(p.Trail.Compute())
	cp.SetBindings(BindGroup,
		gpu.BufferBinding(SlotSimulationUniforms, slot.SimulationUniforms),
		gpu.TextureBinding(SlotField, s.res.Field),
	)
	cp.Dispatch(
		pipeline.WorkgroupCount(s.res.Field.Width(), tile[0]),
		pipeline.WorkgroupCount(s.res.Field.Height(), tile[1]),
		1,
	)

	if family != s.appliedFamily {
		cp.SetPipeline(p.UpdateFamily.Compute())
		cp.SetBindings(BindGroup,
			gpu.BufferBinding(SlotParticles, s.res.Particles),
			gpu.BufferBinding(SlotSimulationUniforms, slot.SimulationUniforms),
		)
		cp.Dispatch(pipeline.WorkgroupCount(agents, p.UpdateFamily.WorkgroupSize()[0]), 1, 1)
		common.Logger().Debug("agent family reassigned", zap.Uint32("from", s.appliedFamily), zap.Uint32("to", family))
		s.appliedFamily = family
		s.familyDispatches++
	}

	// Runs whether or not the family changed this frame.
	if p.Interactions != nil {
		cp.SetPipeline(p.Interactions.Compute())
		cp.SetBindings(BindGroup,
			gpu.BufferBinding(SlotParticles, s.res.Particles),
			gpu.BufferBinding(SlotSimulationUniforms, slot.SimulationUniforms),
			gpu.BufferBinding(SlotInteractions, slot.Interactions),
		)
		cp.Dispatch(pipeline.WorkgroupCount(agents, p.Interactions.WorkgroupSize()[0]), 1, 1)
	}
	cp.End()
}

func (s *simulationStage) Initialized() bool {
	return s.initialized
}

func (s *simulationStage) FamilyDispatches() int {
	return s.familyDispatches
}

func (s *simulationStage) AppliedFamily() uint32 {
	return s.appliedFamily
}

func (s *simulationStage) LastDelta() float32 {
	return s.lastDelta
}
