package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestAspect(t *testing.T) {
	tests := []struct {
		w, h int
		want float32
	}{
		{1024, 768, 1024.0 / 768.0},
		{800, 0, 800},
		{0, 0, 0},
		{640, 1, 640},
	}
	for _, tc := range tests {
		if got := Aspect(tc.w, tc.h); got != tc.want {
			t.Fatalf("Aspect(%d, %d): got %v, want %v", tc.w, tc.h, got, tc.want)
		}
	}
}

func TestWrapPhase(t *testing.T) {
	v := WrapPhase(0.9999, 1, 0.004)
	if v < 0 || v >= 1 {
		t.Fatalf("WrapPhase: %v out of [0,1)", v)
	}
	if math.Abs(float64(v-0.0039)) > 1e-4 {
		t.Fatalf("WrapPhase: got %v, want ~0.0039", v)
	}
	v = WrapPhase(0, -1, 0.25)
	if math.Abs(float64(v-0.75)) > 1e-6 {
		t.Fatalf("WrapPhase: backwards got %v, want 0.75", v)
	}
}

func TestEaseCircularInOut(t *testing.T) {
	if got := EaseCircularInOut(0); got != 0 {
		t.Fatalf("EaseCircularInOut(0): got %v", got)
	}
	if got := EaseCircularInOut(1); math.Abs(float64(got-1)) > 1e-6 {
		t.Fatalf("EaseCircularInOut(1): got %v", got)
	}
	if got := EaseCircularInOut(0.5); math.Abs(float64(got-0.5)) > 1e-6 {
		t.Fatalf("EaseCircularInOut(0.5): got %v", got)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	p := Perspective(mgl32.DegToRad(45), 1, 1, 100)
	near := p.Mul4x1(mgl32.Vec4{0, 0, -1, 1})
	far := p.Mul4x1(mgl32.Vec4{0, 0, -100, 1})
	if d := near.Z() / near.W(); math.Abs(float64(d)) > 1e-5 {
		t.Fatalf("Perspective: near plane depth %v, want 0", d)
	}
	if d := far.Z() / far.W(); math.Abs(float64(d-1)) > 1e-5 {
		t.Fatalf("Perspective: far plane depth %v, want 1", d)
	}
}

func TestPutMat3Padding(t *testing.T) {
	buf := make([]byte, 48)
	for i := range buf {
		buf[i] = 0xFF
	}
	PutMat3(buf, 0, mgl32.Ident3())
	for c := 0; c < 3; c++ {
		for r := 0; r < 4; r++ {
			off := c*16 + r*4
			got := math.Float32frombits(uint32(buf[off]) | uint32(buf[off+1])<<8 | uint32(buf[off+2])<<16 | uint32(buf[off+3])<<24)
			want := float32(0)
			if r == c {
				want = 1
			}
			if got != want {
				t.Fatalf("PutMat3: column %d row %d got %v, want %v", c, r, got, want)
			}
		}
	}
}
