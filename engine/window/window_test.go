package window

import "testing"

func TestNewEngineWindowClampsSize(t *testing.T) {
	tests := []struct {
		name          string
		options       []WindowBuilderOption
		width, height int
	}{
		{"defaults", nil, 1280, 720},
		{"too small", []WindowBuilderOption{WithSize(10, 10)}, 320, 240},
		{"too large", []WindowBuilderOption{WithSize(8000, 8000)}, 3840, 2160},
		{"unbounded max", []WindowBuilderOption{WithSizeLimits(1, 1, 0, 0), WithSize(8000, 6000)}, 8000, 6000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newEngineWindow(tt.options...)
			if w.Width() != tt.width || w.Height() != tt.height {
				t.Fatalf("newEngineWindow: size = %dx%d, want %dx%d", w.Width(), w.Height(), tt.width, tt.height)
			}
		})
	}
}

func TestButtonMask(t *testing.T) {
	w := newEngineWindow()
	var gotMask uint32
	var gotX, gotY int32
	w.SetMouseButtonCallback(func(mask uint32, x, y int32) {
		gotMask, gotX, gotY = mask, x, y
	})

	w.cursorMoved(12, 34)
	w.buttonChanged(MouseButtonLeft, true)
	w.buttonChanged(MouseButtonMiddle, true)
	if gotMask != MouseButtonLeft|MouseButtonMiddle {
		t.Fatalf("engineWindow.buttonChanged: mask = %b, want left|middle", gotMask)
	}
	if gotX != 12 || gotY != 34 {
		t.Fatalf("engineWindow.buttonChanged: position = (%d, %d), want (12, 34)", gotX, gotY)
	}
	w.buttonChanged(MouseButtonLeft, false)
	if gotMask != MouseButtonMiddle {
		t.Fatalf("engineWindow.buttonChanged: mask after release = %b, want middle", gotMask)
	}
}

func TestQuitKeys(t *testing.T) {
	w := newEngineWindow(WithQuitKeys('X'))
	var keys []uint32
	w.SetKeyDownCallback(func(code uint32) { keys = append(keys, code) })

	w.keyPressed(keyEscape)
	w.keyPressed('X')
	if len(keys) != 1 || keys[0] != keyEscape {
		t.Fatalf("engineWindow.keyPressed: forwarded %v, want only escape", keys)
	}
	if !w.quitRequested {
		t.Fatalf("engineWindow.keyPressed: quit key did not request quit")
	}
	if w.IsRunning() {
		t.Fatalf("engineWindow.IsRunning: true after quit")
	}
}

func TestFramebufferResizedDropsRepeats(t *testing.T) {
	w := newEngineWindow()
	var calls int
	w.SetResizeCallback(func(int, int) { calls++ })

	w.framebufferResized(800, 600)
	w.framebufferResized(800, 600)
	w.framebufferResized(0, 0)
	if calls != 2 {
		t.Fatalf("engineWindow.framebufferResized: %d callbacks, want 2", calls)
	}
	if w.Width() != 0 || w.Height() != 0 {
		t.Fatalf("engineWindow.framebufferResized: size = %dx%d, want 0x0", w.Width(), w.Height())
	}
}

func TestScrollIgnoresZero(t *testing.T) {
	w := newEngineWindow()
	var deltas []float32
	w.SetScrollCallback(func(d float32) { deltas = append(deltas, d) })
	w.scrolled(0)
	w.scrolled(-1.5)
	if len(deltas) != 1 || deltas[0] != -1.5 {
		t.Fatalf("engineWindow.scrolled: got %v, want [-1.5]", deltas)
	}
}
