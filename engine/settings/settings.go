// Package settings holds the values a UI adjusts while the renderer runs.
// Setters may be called from any goroutine at any time; the renderer takes a
// Snapshot once per frame.
package settings

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/Carmen-Shannon/oxy-deferred/engine/simulation"
)

// Accepted ranges. Values outside them are ignored, except grid dimensions,
// which fall back to model.DefaultGridDimension.
const (
	MinGridDimension = 2
	MaxGridDimension = model.MaxGridDimension

	MinScale            float32 = 0.01
	MaxInstanceSize     float32 = 1
	MaxGroupScale       float32 = 1
	MaxTextureScale     float32 = 2
	DefaultColorMix     float32 = 0.5
	DefaultMetalness    float32 = 1
	DefaultRoughness    float32 = 0
	DefaultInstanceSize float32 = 1
	DefaultGroupScale   float32 = 1
	DefaultTextureScale float32 = 1
)

// DefaultPrimitive is the topology the instance sphere's indices are generated for.
const DefaultPrimitive = gpu.TopologyTriangleStrip

// Primitives lists the topologies the instanced object draw can switch between.
var Primitives = []gpu.Topology{
	gpu.TopologyPointList,
	gpu.TopologyLineList,
	gpu.TopologyLineStrip,
	gpu.TopologyTriangleList,
	gpu.TopologyTriangleStrip,
}

// Snapshot is a consistent copy of every setting.
type Snapshot struct {
	Rows, Columns, Depth int
	NumberOfInstances    int

	InstanceSize float32
	GroupScale   float32
	TextureScale float32

	ColorMix  float32
	Metalness float32
	Roughness float32

	Simulation simulation.Params
	Primitive  gpu.Topology

	CursorX, CursorY float32
	MouseButtons     uint32

	// ChangeCount is the number of accepted mutations so far.
	ChangeCount uint64
}

// Settings is the UI/control state consumed by the renderer.
// Every setter is a no-op when the new value equals the current one or is rejected.
type Settings interface {
	// SetInstances sets the grid dimensions. Each dimension outside
	// [MinGridDimension, MaxGridDimension) falls back to model.DefaultGridDimension.
	//
	// Parameters:
	//   - rows: the row count
	//   - columns: the column count
	//   - depth: the depth count
	SetInstances(rows, columns, depth int)

	// Instances returns the grid dimensions.
	//
	// Returns:
	//   - [3]int: rows, columns, depth
	Instances() [3]int

	// NumberOfInstances returns rows*columns*depth.
	//
	// Returns:
	//   - int: the instance count
	NumberOfInstances() int

	SetInstanceSize(size float32)
	InstanceSize() float32
	SetGroupScale(scale float32)
	GroupScale() float32
	SetTextureScale(scale float32)
	TextureScale() float32

	SetColorMix(v float32)
	ColorMix() float32
	SetMetalness(v float32)
	Metalness() float32
	SetRoughness(v float32)
	Roughness() float32

	SetMoveSpeed(v float32)
	MoveSpeed() float32
	SetTurnSpeed(v float32)
	TurnSpeed() float32
	SetEvaporation(v float32)
	Evaporation() float32
	SetTrailWeight(v float32)
	TrailWeight() float32

	// SetFamily selects the active family id. Ids outside simulation.MinFamily..MaxFamily
	// are rejected. A change triggers one reassignment dispatch.
	SetFamily(id int)
	Family() int

	// SetPrimitive selects the topology of the instanced object draw.
	// Topologies not listed in Primitives are rejected.
	SetPrimitive(t gpu.Topology)
	Primitive() gpu.Topology

	SetCursorPosition(x, y float32)
	CursorPosition() (float32, float32)
	SetMouseButtons(mask uint32)
	MouseButtons() uint32

	// ChangeCount returns the number of accepted mutations.
	//
	// Returns:
	//   - uint64: the change count
	ChangeCount() uint64

	// Snapshot returns a copy of every setting taken under one lock.
	//
	// Returns:
	//   - Snapshot: the copy
	Snapshot() Snapshot
}

// settings is the implementation of the Settings interface.
type settings struct {
	mu sync.RWMutex
	s  Snapshot
}

var _ Settings = &settings{}

// NewSettings creates settings holding the startup defaults, then applies options.
//
// Parameters:
//   - options: variadic list of SettingsBuilderOption functions
//
// Returns:
//   - Settings: the settings
func NewSettings(options ...SettingsBuilderOption) Settings {
	st := &settings{s: Snapshot{
		Rows:              model.DefaultGridDimension,
		Columns:           model.DefaultGridDimension,
		Depth:             model.DefaultGridDimension,
		NumberOfInstances: model.DefaultGridDimension * model.DefaultGridDimension * model.DefaultGridDimension,
		InstanceSize:      DefaultInstanceSize,
		GroupScale:        DefaultGroupScale,
		TextureScale:      DefaultTextureScale,
		ColorMix:          DefaultColorMix,
		Metalness:         DefaultMetalness,
		Roughness:         DefaultRoughness,
		Simulation:        simulation.DefaultParams(),
		Primitive:         DefaultPrimitive,
	}}
	for _, option := range options {
		option(st)
	}
	st.s.ChangeCount = 0
	return st
}

func gridDimension(v int) int {
	if v >= MinGridDimension && v < MaxGridDimension {
		return v
	}
	return model.DefaultGridDimension
}

func (st *settings) SetInstances(rows, columns, depth int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	r, c, d := gridDimension(rows), gridDimension(columns), gridDimension(depth)
	if r == st.s.Rows && c == st.s.Columns && d == st.s.Depth {
		return
	}
	st.s.Rows, st.s.Columns, st.s.Depth = r, c, d
	st.s.NumberOfInstances = r * c * d
	st.s.ChangeCount++
}

func (st *settings) Instances() [3]int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return [3]int{st.s.Rows, st.s.Columns, st.s.Depth}
}

func (st *settings) NumberOfInstances() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s.NumberOfInstances
}

// setFloat stores v into *dst if it differs and, when bounded, lies in (lo, hi].
func (st *settings) setFloat(dst *float32, v, lo, hi float32, bounded bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if *dst == v {
		return
	}
	if bounded && (v <= lo || v > hi) {
		return
	}
	*dst = v
	st.s.ChangeCount++
}

func (st *settings) getFloat(src *float32) float32 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return *src
}

func (st *settings) SetInstanceSize(size float32) {
	st.setFloat(&st.s.InstanceSize, size, MinScale, MaxInstanceSize, true)
}
func (st *settings) InstanceSize() float32 { return st.getFloat(&st.s.InstanceSize) }

func (st *settings) SetGroupScale(scale float32) {
	st.setFloat(&st.s.GroupScale, scale, MinScale, MaxGroupScale, true)
}
func (st *settings) GroupScale() float32 { return st.getFloat(&st.s.GroupScale) }

func (st *settings) SetTextureScale(scale float32) {
	st.setFloat(&st.s.TextureScale, scale, MinScale, MaxTextureScale, true)
}
func (st *settings) TextureScale() float32 { return st.getFloat(&st.s.TextureScale) }

func (st *settings) SetColorMix(v float32) { st.setFloat(&st.s.ColorMix, v, 0, 0, false) }
func (st *settings) ColorMix() float32     { return st.getFloat(&st.s.ColorMix) }
func (st *settings) SetMetalness(v float32) {
	st.setFloat(&st.s.Metalness, v, 0, 0, false)
}
func (st *settings) Metalness() float32 { return st.getFloat(&st.s.Metalness) }
func (st *settings) SetRoughness(v float32) {
	st.setFloat(&st.s.Roughness, v, 0, 0, false)
}
func (st *settings) Roughness() float32 { return st.getFloat(&st.s.Roughness) }

func (st *settings) SetMoveSpeed(v float32) {
	st.setFloat(&st.s.Simulation.MoveSpeed, v, 0, 0, false)
}
func (st *settings) MoveSpeed() float32 { return st.getFloat(&st.s.Simulation.MoveSpeed) }
func (st *settings) SetTurnSpeed(v float32) {
	st.setFloat(&st.s.Simulation.TurnSpeed, v, 0, 0, false)
}
func (st *settings) TurnSpeed() float32 { return st.getFloat(&st.s.Simulation.TurnSpeed) }
func (st *settings) SetEvaporation(v float32) {
	st.setFloat(&st.s.Simulation.Evaporation, v, 0, 0, false)
}
func (st *settings) Evaporation() float32 { return st.getFloat(&st.s.Simulation.Evaporation) }
func (st *settings) SetTrailWeight(v float32) {
	st.setFloat(&st.s.Simulation.TrailWeight, v, 0, 0, false)
}
func (st *settings) TrailWeight() float32 { return st.getFloat(&st.s.Simulation.TrailWeight) }

func (st *settings) SetFamily(id int) {
	if id < simulation.MinFamily || id > simulation.MaxFamily {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.s.Simulation.Family == id {
		return
	}
	st.s.Simulation.Family = id
	st.s.ChangeCount++
}

func (st *settings) Family() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s.Simulation.Family
}

func (st *settings) SetPrimitive(t gpu.Topology) {
	supported := false
	for _, p := range Primitives {
		if p == t {
			supported = true
			break
		}
	}
	if !supported {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.s.Primitive == t {
		return
	}
	st.s.Primitive = t
	st.s.ChangeCount++
}

func (st *settings) Primitive() gpu.Topology {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s.Primitive
}

func (st *settings) SetCursorPosition(x, y float32) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.s.CursorX == x && st.s.CursorY == y {
		return
	}
	st.s.CursorX, st.s.CursorY = x, y
	st.s.ChangeCount++
}

func (st *settings) CursorPosition() (float32, float32) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s.CursorX, st.s.CursorY
}

func (st *settings) SetMouseButtons(mask uint32) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.s.MouseButtons == mask {
		return
	}
	st.s.MouseButtons = mask
	st.s.ChangeCount++
}

func (st *settings) MouseButtons() uint32 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s.MouseButtons
}

func (st *settings) ChangeCount() uint64 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s.ChangeCount
}

func (st *settings) Snapshot() Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s
}
