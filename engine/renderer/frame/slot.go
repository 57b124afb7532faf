package frame

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
)

// SlotSizes are the byte sizes of the buffers owned by each slot.
type SlotSizes struct {
	Instances          uint64
	FrameUniforms      uint64
	SimulationUniforms uint64
	LightPositions     uint64
	Time               uint64
	Interactions       uint64
}

// Slot is one set of per-frame buffers. The producer writes a slot only after
// the gate has admitted the frame, so the GPU is never still reading it.
type Slot struct {
	Index int

	Instances          gpu.Buffer
	FrameUniforms      gpu.Buffer
	SimulationUniforms gpu.Buffer
	LightPositions     gpu.Buffer
	Time               gpu.Buffer
	Interactions       gpu.Buffer
}

// NewSlot allocates the buffers of slot index. On failure every buffer
// allocated so far is released.
func NewSlot(device gpu.Device, index int, sizes SlotSizes) (*Slot, error) {
	s := &Slot{Index: index}
	allocs := []struct {
		dst   *gpu.Buffer
		name  string
		size  uint64
		usage gpu.BufferUsage
	}{
		{&s.Instances, "Instance Data", sizes.Instances, gpu.BufferUsageStorage | gpu.BufferUsageCopyDst},
		{&s.FrameUniforms, "Frame Uniforms", sizes.FrameUniforms, gpu.BufferUsageUniform | gpu.BufferUsageCopyDst},
		{&s.SimulationUniforms, "Simulation Uniforms", sizes.SimulationUniforms, gpu.BufferUsageUniform | gpu.BufferUsageCopyDst},
		{&s.LightPositions, "Light Positions", sizes.LightPositions, gpu.BufferUsageStorage | gpu.BufferUsageCopyDst},
		{&s.Time, "Time", sizes.Time, gpu.BufferUsageUniform | gpu.BufferUsageCopyDst},
		{&s.Interactions, "Interactions", sizes.Interactions, gpu.BufferUsageUniform | gpu.BufferUsageCopyDst},
	}
	for _, a := range allocs {
		b, err := device.CreateBuffer(fmt.Sprintf("%s %d", a.name, index), a.size, a.usage)
		if err != nil {
			s.Release()
			return nil, fmt.Errorf("frame slot %d: %w", index, err)
		}
		*a.dst = b
	}
	return s, nil
}

// Release releases the slot's buffers in reverse allocation order.
func (s *Slot) Release() {
	for _, b := range []*gpu.Buffer{&s.Interactions, &s.Time, &s.LightPositions, &s.SimulationUniforms, &s.FrameUniforms, &s.Instances} {
		if *b != nil {
			(*b).Release()
			*b = nil
		}
	}
}
