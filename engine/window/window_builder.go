package window

// WindowBuilderOption is a functional option for configuring an engineWindow.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the title bar text.
//
// Parameters:
//   - title: the window title
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the initial framebuffer size. It is clamped to the size limits.
//
// Parameters:
//   - width: initial width in pixels
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width, w.height = width, height
	}
}

// WithSizeLimits bounds interactive resizing. A max of 0 leaves that axis unbounded.
//
// Parameters:
//   - minWidth, minHeight: smallest allowed size in pixels
//   - maxWidth, maxHeight: largest allowed size in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSizeLimits(minWidth, minHeight, maxWidth, maxHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth, w.minHeight = minWidth, minHeight
		w.maxWidth, w.maxHeight = maxWidth, maxHeight
	}
}

// WithResizable toggles whether the user can resize the window.
func WithResizable(resizable bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.resizable = resizable
	}
}

// WithQuitKeys replaces the keys that close the window (Escape by default).
//
// Parameters:
//   - codes: key codes that stop the message loop
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithQuitKeys(codes ...uint32) WindowBuilderOption {
	return func(w *engineWindow) {
		w.quitOnKeyCodes = make(map[uint32]bool, len(codes))
		for _, c := range codes {
			w.quitOnKeyCodes[c] = true
		}
	}
}
