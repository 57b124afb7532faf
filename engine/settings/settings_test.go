package settings

import (
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/engine/gpu"
	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/Carmen-Shannon/oxy-deferred/engine/simulation"
)

func TestDefaults(t *testing.T) {
	s := NewSettings().Snapshot()
	if s.NumberOfInstances != 1 || s.Rows != 1 || s.Columns != 1 || s.Depth != 1 {
		t.Fatalf("NewSettings: expected a single instance, got %+v", s)
	}
	if s.Simulation != simulation.DefaultParams() {
		t.Fatalf("NewSettings: expected default simulation params, got %+v", s.Simulation)
	}
	if s.Primitive != DefaultPrimitive || s.ColorMix != DefaultColorMix || s.ChangeCount != 0 {
		t.Fatalf("NewSettings: unexpected defaults %+v", s)
	}
}

func TestSetInstances(t *testing.T) {
	cases := []struct {
		name            string
		rows, cols, dep int
		expected        [3]int
	}{
		{"in range", 3, 4, 5, [3]int{3, 4, 5}},
		{"upper bound is exclusive", 10, 9, 2, [3]int{1, 9, 2}},
		{"below range falls back", 1, 0, -4, [3]int{1, 1, 1}},
	}
	for _, c := range cases {
		s := NewSettings()
		s.SetInstances(c.rows, c.cols, c.dep)
		if got := s.Instances(); got != c.expected {
			t.Fatalf("Settings.SetInstances: %s: expected %v, got %v", c.name, c.expected, got)
		}
		want := c.expected[0] * c.expected[1] * c.expected[2]
		if s.NumberOfInstances() != want {
			t.Fatalf("Settings.SetInstances: %s: expected %d instances, got %d", c.name, want, s.NumberOfInstances())
		}
	}

	s := NewSettings()
	s.SetInstances(9, 9, 9)
	if s.NumberOfInstances() != model.MaxInstances {
		t.Fatalf("Settings.SetInstances: expected %d instances at the largest grid, got %d", model.MaxInstances, s.NumberOfInstances())
	}
}

func TestSettersAreIdempotent(t *testing.T) {
	s := NewSettings()
	s.SetEvaporation(0.2)
	if s.Evaporation() != 0.2 || s.ChangeCount() != 1 {
		t.Fatalf("Settings.SetEvaporation: expected 0.2 after one change, got %f after %d", s.Evaporation(), s.ChangeCount())
	}
	s.SetEvaporation(0.2)
	s.SetInstances(1, 1, 1)
	s.SetPrimitive(DefaultPrimitive)
	s.SetFamily(simulation.DefaultFamily)
	if s.ChangeCount() != 1 {
		t.Fatalf("Settings: same-value sets should not count as changes, got %d", s.ChangeCount())
	}
}

func TestScaleClamps(t *testing.T) {
	s := NewSettings()
	s.SetInstanceSize(0)
	s.SetGroupScale(1.5)
	s.SetTextureScale(2.5)
	if s.InstanceSize() != DefaultInstanceSize || s.GroupScale() != DefaultGroupScale || s.TextureScale() != DefaultTextureScale {
		t.Fatalf("Settings: out of range scales should be ignored")
	}
	s.SetTextureScale(2)
	s.SetInstanceSize(0.5)
	if s.TextureScale() != 2 || s.InstanceSize() != 0.5 || s.ChangeCount() != 2 {
		t.Fatalf("Settings: in range scales should be accepted")
	}
}

func TestSetPrimitive(t *testing.T) {
	s := NewSettings()
	s.SetPrimitive(gpu.Topology(99))
	if s.Primitive() != DefaultPrimitive {
		t.Fatalf("Settings.SetPrimitive: unsupported topology was accepted")
	}
	s.SetPrimitive(gpu.TopologyLineList)
	if s.Primitive() != gpu.TopologyLineList {
		t.Fatalf("Settings.SetPrimitive: expected line list, got %v", s.Primitive())
	}
}

func TestSetFamilyRange(t *testing.T) {
	s := NewSettings()
	for _, id := range []int{-1, 0, simulation.MaxFamily + 1} {
		s.SetFamily(id)
		if s.Family() != simulation.DefaultFamily || s.ChangeCount() != 0 {
			t.Fatalf("Settings.SetFamily(%d): out of range id was accepted, family = %d", id, s.Family())
		}
	}
	s.SetFamily(simulation.MaxFamily)
	if s.Family() != simulation.MaxFamily || s.Snapshot().Simulation.Family != simulation.MaxFamily {
		t.Fatalf("Settings.SetFamily: expected family %d, got %d", simulation.MaxFamily, s.Family())
	}
}

func TestConcurrentSetters(t *testing.T) {
	s := NewSettings()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.SetCursorPosition(float32(i), float32(j))
				_ = s.Snapshot()
			}
		}(i)
	}
	wg.Wait()
	if s.ChangeCount() == 0 {
		t.Fatalf("Settings.SetCursorPosition: expected recorded changes")
	}
}

func TestBuilderOptions(t *testing.T) {
	s := NewSettings(WithInstances(2, 3, 4), WithMaterial(0.1, 0.2, 0.3))
	snap := s.Snapshot()
	if snap.NumberOfInstances != 24 || snap.Metalness != 0.2 {
		t.Fatalf("NewSettings: options not applied: %+v", snap)
	}
	if snap.ChangeCount != 0 {
		t.Fatalf("NewSettings: startup options should not count as changes")
	}
}
